package realtime

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/samber/lo"

	"github.com/akashwav/ConnectGo/internal/infrastructure/logger"
	"github.com/akashwav/ConnectGo/pkg/wire"
)

// ErrMalformedEvent marks an inbound distribution event that is missing
// required fields. Such events are dropped with a diagnostic and never reach
// any room.
var ErrMalformedEvent = errors.New("realtime: malformed event")

// Publisher is the slice of the room router the dispatcher needs.
type Publisher interface {
	Publish(roomID string, payload []byte) int
}

// Dispatcher fans a committed message out to the personal room of every
// conversation member except the sender. Persistence is assumed already
// committed by the caller; a member with no live session is simply skipped.
type Dispatcher struct {
	rooms Publisher
}

// NewDispatcher constructs a Dispatcher publishing through rooms.
func NewDispatcher(rooms Publisher) *Dispatcher {
	return &Dispatcher{rooms: rooms}
}

// Distribute publishes msg to each member's personal room, excluding the
// sender. It returns the number of sessions the event was delivered to.
// Validation failures return ErrMalformedEvent before anything is published;
// per-recipient delivery is independent and never fails the rest.
func (d *Dispatcher) Distribute(msg wire.Message, members []string) (int, error) {
	if msg.ChatID == "" || msg.SenderID == "" {
		return 0, fmt.Errorf("%w: message missing chat or sender id", ErrMalformedEvent)
	}
	if len(members) == 0 {
		return 0, fmt.Errorf("%w: empty member list", ErrMalformedEvent)
	}
	if !lo.Contains(members, msg.SenderID) {
		return 0, fmt.Errorf("%w: sender %s is not a conversation member", ErrMalformedEvent, msg.SenderID)
	}

	frame := wire.Frame{Type: wire.FrameMessageReceived, Message: &msg}
	payload, err := json.Marshal(frame)
	if err != nil {
		return 0, fmt.Errorf("realtime: encode event: %w", err)
	}

	recipients := lo.Filter(lo.Uniq(members), func(id string, _ int) bool {
		return id != msg.SenderID
	})

	delivered := 0
	for _, identity := range recipients {
		n := d.rooms.Publish(PersonalRoom(identity), payload)
		if n == 0 {
			logger.L().Debug().
				Str("chat_id", msg.ChatID).
				Str("recipient", identity).
				Msg("no live session, event dropped")
		}
		delivered += n
	}

	logger.L().Debug().
		Str("chat_id", msg.ChatID).
		Str("message_id", msg.ID).
		Int("sessions", delivered).
		Msg("message distributed")
	return delivered, nil
}
