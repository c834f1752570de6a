package controller

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/akashwav/ConnectGo/internal/infrastructure/logger"
	queueport "github.com/akashwav/ConnectGo/internal/infrastructure/queue/port"
	chat "github.com/akashwav/ConnectGo/internal/pkg/chat/application/domain"
	"github.com/akashwav/ConnectGo/internal/pkg/chat/application/task"
	"github.com/akashwav/ConnectGo/internal/pkg/chat/application/usecase"
	"github.com/akashwav/ConnectGo/pkg/wire"
)

// SendMessageController handles the send-message endpoint only (one controller
// per endpoint). The message is persisted synchronously so the client holds a
// committed record before it emits the new-message socket event; the
// denormalized chat-state update rides the queue afterwards.
type SendMessageController struct {
	UC           *usecase.SendMessageUseCase
	Participants *usecase.ListParticipantsUseCase
	Q            queueport.Client // optional; nil skips the write-behind
}

func NewSendMessageController(uc *usecase.SendMessageUseCase, participants *usecase.ListParticipantsUseCase, q queueport.Client) *SendMessageController {
	return &SendMessageController{UC: uc, Participants: participants, Q: q}
}

// sendMessageRequest is the DTO for the HTTP request body
type sendMessageRequest struct {
	SenderID string `json:"sender_id" binding:"required"`
	Content  string `json:"content" binding:"required"`
}

func (h *SendMessageController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		chatID := c.Param("chatId")
		if chatID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "chatId is required"})
			return
		}

		var req sendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		msg, err := h.UC.Execute(ctx, usecase.SendMessageInput{
			ConversationID: chatID,
			SenderID:       req.SenderID,
			Content:        req.Content,
		})
		if err != nil {
			status := http.StatusBadRequest
			switch {
			case errors.Is(err, usecase.ErrPersistence):
				status = http.StatusInternalServerError
			case errors.Is(err, chat.ErrNotParticipant):
				status = http.StatusForbidden
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		// Embed the membership summary so the client can hand the response
		// straight to the new-message socket event.
		members, err := h.Participants.Execute(ctx, usecase.ListParticipantsInput{ConversationID: chatID})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "message saved but membership lookup failed"})
			return
		}
		summary := &wire.Chat{ID: chatID, IsGroup: len(members) > 2, MemberIDs: members}

		h.enqueueStateUpdate(ctx, msg)

		c.JSON(http.StatusCreated, toWireMessage(*msg, summary))
	}
}

func (h *SendMessageController) enqueueStateUpdate(ctx context.Context, msg *chat.Message) {
	if h.Q == nil {
		return
	}
	t, err := task.NewUpdateChatStateTask(msg.ConversationID, msg.ID, msg.SenderID)
	if err != nil {
		return
	}
	// Best-effort: the list endpoint re-derives order from message timestamps,
	// so a lost task degrades sorting hints, not correctness.
	if _, err := h.Q.Enqueue(ctx, t, queueport.EnqueueOption{Queue: "chat", MaxRetry: 10}); err != nil {
		logger.L().Warn().Err(err).Str("message_id", msg.ID).Msg("failed to enqueue chat state update")
	}
}
