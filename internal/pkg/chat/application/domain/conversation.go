package chat

import (
	"errors"
	"time"
)

// Domain-level errors for chat behaviors
var (
	ErrNotParticipant = errors.New("chat: sender is not a participant in the conversation")
	ErrEmptyMessage   = errors.New("chat: message content is empty")
	ErrTooFewMembers  = errors.New("chat: a conversation needs at least two members")
	ErrChatNotFound   = errors.New("chat: conversation not found")
)

// Conversation is a direct (2-member) or group thread. Membership lives in
// Participant rows; LatestMessageID is a denormalized slot advanced after each
// committed message so the chat list can be served pre-sorted by activity.
type Conversation struct {
	ID              string    `db:"id"`
	Name            string    `db:"name"`
	IsGroup         bool      `db:"is_group"`
	CreatedAt       time.Time `db:"created_at"`
	LatestMessageID *string   `db:"latest_message"`
}

// NewConversation validates member count and stamps creation time.
func NewConversation(name string, isGroup bool, memberIDs []string, now time.Time) (*Conversation, error) {
	if len(memberIDs) < 2 {
		return nil, ErrTooFewMembers
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}
	return &Conversation{Name: name, IsGroup: isGroup, CreatedAt: now.UTC()}, nil
}

// Overview is a conversation hydrated with everything the chat list needs:
// membership, the latest message and the viewer's unread counter.
type Overview struct {
	Conversation
	MemberIDs []string
	Latest    *Message
	Unread    int
}
