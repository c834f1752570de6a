package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	chat "github.com/akashwav/ConnectGo/internal/pkg/chat/application/domain"
	repository "github.com/akashwav/ConnectGo/internal/pkg/chat/persistence/repository/port"
)

// AccessChatInput identifies the two parties of a direct conversation.
type AccessChatInput struct {
	UserID string
	PeerID string
}

// AccessChatUseCase returns the direct conversation between two users,
// creating it on first contact. Group threads are created elsewhere; this is
// the access-or-create path behind starting a chat from the user search.
type AccessChatUseCase struct {
	Repo repository.ChatRepository
}

func NewAccessChatUseCase(repo repository.ChatRepository) *AccessChatUseCase {
	return &AccessChatUseCase{Repo: repo}
}

// Execute finds or creates the 1:1 conversation and returns it with its
// membership.
func (uc *AccessChatUseCase) Execute(ctx context.Context, in AccessChatInput) (*chat.Overview, error) {
	if in.UserID == "" || in.PeerID == "" {
		return nil, fmt.Errorf("user_id and peer_id are required")
	}
	if in.UserID == in.PeerID {
		return nil, fmt.Errorf("cannot open a conversation with yourself")
	}

	existing, err := uc.Repo.FindDirectConversation(ctx, in.UserID, in.PeerID)
	switch {
	case err == nil:
		return &chat.Overview{Conversation: *existing, MemberIDs: []string{in.UserID, in.PeerID}}, nil
	case errors.Is(err, chat.ErrChatNotFound):
		// fall through to create
	default:
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	members := []string{in.UserID, in.PeerID}
	conv, err := chat.NewConversation("", false, members, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	id, err := uc.Repo.CreateConversation(ctx, *conv, members)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	conv.ID = id
	return &chat.Overview{Conversation: *conv, MemberIDs: members}, nil
}
