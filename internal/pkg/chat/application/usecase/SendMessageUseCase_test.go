package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	chat "github.com/akashwav/ConnectGo/internal/pkg/chat/application/domain"
)

// fakeChatRepo is an in-memory ChatRepository good enough for use case tests.
type fakeChatRepo struct {
	participants map[string][]string // conversationID -> member ids
	saved        []chat.Message
	saveErr      error
	lookupErr    error

	listCalls int
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{participants: make(map[string][]string)}
}

func (f *fakeChatRepo) CreateConversation(_ context.Context, c chat.Conversation, memberIDs []string) (string, error) {
	id := "conv-" + c.Name
	if c.Name == "" {
		id = "conv-new"
	}
	f.participants[id] = memberIDs
	return id, nil
}

func (f *fakeChatRepo) FindDirectConversation(_ context.Context, userA, userB string) (*chat.Conversation, error) {
	for id, members := range f.participants {
		if len(members) == 2 && contains(members, userA) && contains(members, userB) {
			return &chat.Conversation{ID: id, CreatedAt: time.Now().UTC()}, nil
		}
	}
	return nil, chat.ErrChatNotFound
}

func (f *fakeChatRepo) SaveMessage(_ context.Context, m chat.Message) (string, error) {
	if f.saveErr != nil {
		return "", f.saveErr
	}
	f.saved = append(f.saved, m)
	return "msg-1", nil
}

func (f *fakeChatRepo) GetMessagesByConversation(_ context.Context, conversationID string, _ int) ([]chat.Message, error) {
	var out []chat.Message
	for _, m := range f.saved {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeChatRepo) ListConversationsForUser(_ context.Context, _ string) ([]chat.Overview, error) {
	return nil, nil
}

func (f *fakeChatRepo) ListParticipantIDs(_ context.Context, conversationID string) ([]string, error) {
	f.listCalls++
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	return f.participants[conversationID], nil
}

func (f *fakeChatRepo) IsParticipant(_ context.Context, conversationID, userID string) (bool, error) {
	if f.lookupErr != nil {
		return false, f.lookupErr
	}
	return contains(f.participants[conversationID], userID), nil
}

func (f *fakeChatRepo) SetLatestMessage(_ context.Context, _, _ string) error { return nil }

func (f *fakeChatRepo) BumpUnread(_ context.Context, _, _ string) error { return nil }

func (f *fakeChatRepo) ClearUnread(_ context.Context, _, _ string) error { return nil }

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func TestSendMessagePersistsForParticipant(t *testing.T) {
	repo := newFakeChatRepo()
	repo.participants["c1"] = []string{"alice", "bob"}
	uc := NewSendMessageUseCase(repo)

	msg, err := uc.Execute(context.Background(), SendMessageInput{
		ConversationID: "c1",
		SenderID:       "alice",
		Content:        "  hi  ",
	})

	require.NoError(t, err)
	require.Equal(t, "msg-1", msg.ID)
	require.Equal(t, "hi", msg.Content, "content should be trimmed")
	require.Len(t, repo.saved, 1)
	require.False(t, msg.CreatedAt.IsZero())
}

func TestSendMessageRejectsNonParticipant(t *testing.T) {
	repo := newFakeChatRepo()
	repo.participants["c1"] = []string{"alice", "bob"}
	uc := NewSendMessageUseCase(repo)

	_, err := uc.Execute(context.Background(), SendMessageInput{
		ConversationID: "c1",
		SenderID:       "eve",
		Content:        "hi",
	})

	require.ErrorIs(t, err, chat.ErrNotParticipant)
	require.Empty(t, repo.saved)
}

func TestSendMessageRejectsEmptyContent(t *testing.T) {
	repo := newFakeChatRepo()
	repo.participants["c1"] = []string{"alice", "bob"}
	uc := NewSendMessageUseCase(repo)

	_, err := uc.Execute(context.Background(), SendMessageInput{
		ConversationID: "c1",
		SenderID:       "alice",
		Content:        "   ",
	})

	require.ErrorIs(t, err, chat.ErrEmptyMessage)
	require.Empty(t, repo.saved)
}

func TestSendMessagePersistenceFailureAbortsSend(t *testing.T) {
	repo := newFakeChatRepo()
	repo.participants["c1"] = []string{"alice", "bob"}
	repo.saveErr = errors.New("disk on fire")
	uc := NewSendMessageUseCase(repo)

	msg, err := uc.Execute(context.Background(), SendMessageInput{
		ConversationID: "c1",
		SenderID:       "alice",
		Content:        "hi",
	})

	require.ErrorIs(t, err, ErrPersistence)
	require.Nil(t, msg, "no committed message, so nothing may be distributed")
}
