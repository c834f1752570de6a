package usecase

import (
	"context"
	"fmt"

	repository "github.com/akashwav/ConnectGo/internal/pkg/chat/persistence/repository/port"
)

// MarkChatReadInput identifies the participant whose counter resets.
type MarkChatReadInput struct {
	ConversationID string
	UserID         string
}

// MarkChatReadUseCase clears the server-side unread counter when a client
// opens a conversation. The client's own unread flag is cleared locally by
// its reconciler; this keeps the initial-load state in agreement.
type MarkChatReadUseCase struct {
	Repo repository.ChatRepository
}

func NewMarkChatReadUseCase(repo repository.ChatRepository) *MarkChatReadUseCase {
	return &MarkChatReadUseCase{Repo: repo}
}

func (uc *MarkChatReadUseCase) Execute(ctx context.Context, in MarkChatReadInput) error {
	if in.ConversationID == "" || in.UserID == "" {
		return fmt.Errorf("conversation_id and user_id are required")
	}
	if err := uc.Repo.ClearUnread(ctx, in.ConversationID, in.UserID); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}
