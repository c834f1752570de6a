package controller

import (
	chat "github.com/akashwav/ConnectGo/internal/pkg/chat/application/domain"
	"github.com/akashwav/ConnectGo/pkg/wire"
)

func toWireMessage(m chat.Message, summary *wire.Chat) wire.Message {
	return wire.Message{
		ID:        m.ID,
		ChatID:    m.ConversationID,
		SenderID:  m.SenderID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
		Chat:      summary,
	}
}

func toWireChat(ov chat.Overview, names map[string]string) wire.Chat {
	out := wire.Chat{
		ID:        ov.ID,
		Name:      ov.Name,
		IsGroup:   ov.IsGroup,
		MemberIDs: ov.MemberIDs,
		Unread:    ov.Unread,
	}
	if names != nil {
		out.MemberNames = make([]string, 0, len(ov.MemberIDs))
		for _, id := range ov.MemberIDs {
			out.MemberNames = append(out.MemberNames, names[id])
		}
	}
	if ov.Latest != nil {
		latest := toWireMessage(*ov.Latest, nil)
		out.LatestMessage = &latest
	}
	return out
}
