package task

import (
	"context"
	"encoding/json"
	"time"

	qport "github.com/akashwav/ConnectGo/internal/infrastructure/queue/port"
	repository "github.com/akashwav/ConnectGo/internal/pkg/chat/persistence/repository/port"
)

// UpdateChatStateTaskType is the queue task name for the post-send write-behind:
// advancing the conversation's latest-message slot and bumping unread counters.
const UpdateChatStateTaskType = "chat:update_state"

// UpdateChatStatePayload is the JSON payload transported via the queue.
// Kept decoupled from domain types to avoid tight coupling with JSON tags.
type UpdateChatStatePayload struct {
	ConversationID string `json:"conversationId"`
	MessageID      string `json:"messageId"`
	SenderID       string `json:"senderId"`
}

// NewUpdateChatStateTask builds the enqueueable task for a committed message.
func NewUpdateChatStateTask(conversationID, messageID, senderID string) (qport.Task, error) {
	b, err := json.Marshal(UpdateChatStatePayload{
		ConversationID: conversationID,
		MessageID:      messageID,
		SenderID:       senderID,
	})
	if err != nil {
		return qport.Task{}, err
	}
	return qport.Task{Type: UpdateChatStateTaskType, Payload: b}, nil
}

// RegisterUpdateChatStateTask binds the task handler to the provided server.
// The handler is idempotent on the latest-message slot; the unread bump is the
// only at-least-once effect and over-counting by one on a retry is acceptable
// for a counter the client resets on open.
func RegisterUpdateChatStateTask(srv qport.Server, repo repository.ChatRepository) {
	srv.Register(UpdateChatStateTaskType, func(ctx context.Context, t qport.Task) error {
		var p UpdateChatStatePayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			// malformed payload: do not retry indefinitely
			return err
		}
		if p.ConversationID == "" || p.MessageID == "" {
			return nil
		}

		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		if err := repo.SetLatestMessage(ctx, p.ConversationID, p.MessageID); err != nil {
			return err
		}
		if p.SenderID != "" {
			if err := repo.BumpUnread(ctx, p.ConversationID, p.SenderID); err != nil {
				return err
			}
		}
		return nil
	})
}
