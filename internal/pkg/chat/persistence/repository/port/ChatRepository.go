package repository

import (
	"context"

	chat "github.com/akashwav/ConnectGo/internal/pkg/chat/application/domain"
)

// ChatRepository defines persistence operations for the chat domain.
// The realtime core never touches this directly; it consumes committed
// messages handed over by the application layer.
type ChatRepository interface {
	// CreateConversation persists a conversation and its membership rows in
	// one transaction, returning the generated id.
	CreateConversation(ctx context.Context, c chat.Conversation, memberIDs []string) (string, error)

	// FindDirectConversation locates the existing 2-member thread between two
	// users. Returns chat.ErrChatNotFound when none exists.
	FindDirectConversation(ctx context.Context, userA, userB string) (*chat.Conversation, error)

	// SaveMessage persists m letting the database generate the id.
	SaveMessage(ctx context.Context, m chat.Message) (string, error)

	// GetMessagesByConversation returns messages in ascending creation order.
	GetMessagesByConversation(ctx context.Context, conversationID string, limit int) ([]chat.Message, error)

	// ListConversationsForUser returns the user's conversations hydrated with
	// membership, latest message and unread counter, most recent activity first.
	ListConversationsForUser(ctx context.Context, userID string) ([]chat.Overview, error)

	ListParticipantIDs(ctx context.Context, conversationID string) ([]string, error)
	IsParticipant(ctx context.Context, conversationID, userID string) (bool, error)

	// SetLatestMessage advances the conversation's latest-message slot.
	SetLatestMessage(ctx context.Context, conversationID, messageID string) error

	// BumpUnread increments the unread counter of every participant except
	// exceptUserID (the sender).
	BumpUnread(ctx context.Context, conversationID, exceptUserID string) error

	// ClearUnread resets the unread counter for one participant.
	ClearUnread(ctx context.Context, conversationID, userID string) error
}
