package chat

// Participant captures membership and the server-side unread counter.
// Primary key: (ConversationID, UserID). Unread is a denormalized supplement
// maintained by the background state task; the client reconciler owns the
// authoritative unread flag while connected.
type Participant struct {
	ConversationID string `db:"conversation_id"`
	UserID         string `db:"user_id"`
	Unread         int    `db:"unread"`
}
