package usecase

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	chat "github.com/akashwav/ConnectGo/internal/pkg/chat/application/domain"
)

// JoinConversationInput validates a request to attach a user session to a
// conversation room.
type JoinConversationInput struct {
	ConversationID string
	UserID         string
}

// JoinConversationUseCase ensures the user belongs to the conversation before
// the session joins the realtime room. Membership comes through the cached
// participant lookup.
type JoinConversationUseCase struct {
	Participants *ListParticipantsUseCase
}

func NewJoinConversationUseCase(participants *ListParticipantsUseCase) *JoinConversationUseCase {
	return &JoinConversationUseCase{Participants: participants}
}

func (uc *JoinConversationUseCase) Execute(ctx context.Context, in JoinConversationInput) error {
	if in.ConversationID == "" || in.UserID == "" {
		return fmt.Errorf("conversation_id and user_id are required")
	}

	ids, err := uc.Participants.Execute(ctx, ListParticipantsInput{ConversationID: in.ConversationID})
	if err != nil {
		return err
	}
	if !lo.Contains(ids, in.UserID) {
		return chat.ErrNotParticipant
	}
	return nil
}
