package client

import "github.com/akashwav/ConnectGo/pkg/wire"

// ShouldNotify decides whether an inbound message warrants a system-level
// notification. It is a pure decision: true unless the message's conversation
// is the one currently open AND the application is visible. Surfacing the
// notification is the caller's job.
func ShouldNotify(msg wire.Message, openChatID string, appVisible bool) bool {
	return msg.ChatID != openChatID || !appVisible
}
