package usecase

import (
	"context"
	"fmt"

	chat "github.com/akashwav/ConnectGo/internal/pkg/chat/application/domain"
	repository "github.com/akashwav/ConnectGo/internal/pkg/chat/persistence/repository/port"
)

// ListChatsInput wraps the viewer identity.
type ListChatsInput struct {
	UserID string
}

// ListChatsUseCase returns the viewer's conversations pre-sorted by latest
// activity, the order the client seeds its chat list with.
type ListChatsUseCase struct {
	Repo repository.ChatRepository
}

func NewListChatsUseCase(repo repository.ChatRepository) *ListChatsUseCase {
	return &ListChatsUseCase{Repo: repo}
}

func (uc *ListChatsUseCase) Execute(ctx context.Context, in ListChatsInput) ([]chat.Overview, error) {
	if in.UserID == "" {
		return nil, fmt.Errorf("user_id is required")
	}
	overviews, err := uc.Repo.ListConversationsForUser(ctx, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return overviews, nil
}
