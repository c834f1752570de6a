// Package wire defines the JSON payloads exchanged over the realtime socket
// and the REST surface. Both the server and the client SDK depend on it.
package wire

import "time"

// Frame types carried in the "type" field of every socket frame.
const (
	FrameSetup           = "setup"            // client -> server: bind identity
	FrameConnected       = "connected"        // server -> client: setup ack
	FrameJoinChat        = "join-chat"        // client -> server: join conversation room
	FrameNewMessage      = "new-message"      // client -> server: distribute a committed message
	FrameMessageReceived = "message-received" // server -> client: inbound message event
	FrameError           = "error"            // server -> client: diagnostic
)

// Frame is the envelope for every socket event. Fields are populated per type.
type Frame struct {
	Type    string   `json:"type"`
	UserID  string   `json:"user_id,omitempty"`
	ChatID  string   `json:"chat_id,omitempty"`
	Message *Message `json:"message,omitempty"`
	Code    string   `json:"code,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// Message is a committed chat message as carried inside distribution events.
// The embedded Chat summary is what lets a receiving client synthesize a chat
// list entry for a conversation it has never seen.
type Message struct {
	ID        string    `json:"id"`
	ChatID    string    `json:"chat_id"`
	SenderID  string    `json:"sender_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	Chat      *Chat     `json:"chat,omitempty"`
}

// Chat is a conversation summary. When returned by the chat-list endpoint it
// also carries the latest message and the server-side unread counter; when
// embedded in a Message only the identity fields are set.
type Chat struct {
	ID            string   `json:"id"`
	Name          string   `json:"name,omitempty"`
	IsGroup       bool     `json:"is_group"`
	MemberIDs     []string `json:"member_ids"`
	MemberNames   []string `json:"member_names,omitempty"`
	LatestMessage *Message `json:"latest_message,omitempty"`
	Unread        int      `json:"unread,omitempty"`
}
