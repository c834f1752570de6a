package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/akashwav/ConnectGo/pkg/wire"
)

// ErrSocketClosed is returned by emits after Close.
var ErrSocketClosed = errors.New("client: socket closed")

const (
	writeTimeout = 10 * time.Second
	reconnectMin = time.Second
	reconnectMax = 30 * time.Second
)

// Socket is a websocket session against the realtime endpoint. It implements
// Transport for a Reconciler: Run dials, performs the setup handshake, hands
// message-received frames to the reconciler and redials with backoff when the
// connection drops. Missed events are not replayed; the history fetch on
// conversation open closes any gap.
type Socket struct {
	url string
	log zerolog.Logger

	mu   sync.Mutex
	conn *websocket.Conn

	done      chan struct{}
	closeOnce sync.Once
}

func NewSocket(url string, logger *zerolog.Logger) *Socket {
	log := zerolog.Nop()
	if logger != nil {
		log = *logger
	}
	return &Socket{url: url, log: log, done: make(chan struct{})}
}

var _ Transport = (*Socket)(nil)

// Run connects and serves the session until ctx is canceled or Close is
// called. After every successful handshake it invokes
// rec.OnConnectionEstablished so identity binding and room joins are
// re-issued on the new connection.
func (s *Socket) Run(ctx context.Context, rec *Reconciler) error {
	backoff := reconnectMin
	for {
		if err := s.closed(ctx); err != nil {
			return err
		}

		conn, err := s.dial(ctx)
		if err != nil {
			s.log.Warn().Err(err).Dur("retry_in", backoff).Msg("socket dial failed")
			if err := s.sleep(ctx, backoff); err != nil {
				return err
			}
			backoff = nextBackoff(backoff)
			continue
		}
		backoff = reconnectMin

		s.setConn(conn)
		if err := rec.OnConnectionEstablished(ctx); err != nil {
			s.log.Warn().Err(err).Msg("connection setup failed")
			s.setConn(nil)
			_ = conn.Close()
			continue
		}

		s.readLoop(conn, rec)
		s.setConn(nil)
		_ = conn.Close()
	}
}

// Close tears down the session. Run returns after the current read unblocks.
func (s *Socket) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.mu.Lock()
		if s.conn != nil {
			_ = s.conn.Close()
		}
		s.mu.Unlock()
	})
}

func (s *Socket) EmitSetup(identity string) error {
	return s.emit(wire.Frame{Type: wire.FrameSetup, UserID: identity})
}

func (s *Socket) EmitJoinChat(chatID string) error {
	return s.emit(wire.Frame{Type: wire.FrameJoinChat, ChatID: chatID})
}

func (s *Socket) EmitNewMessage(msg wire.Message) error {
	return s.emit(wire.Frame{Type: wire.FrameNewMessage, Message: &msg})
}

func (s *Socket) emit(frame wire.Frame) error {
	payload, err := json.Marshal(frame)
	if err != nil {
		return fmt.Errorf("client: encode frame: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return ErrSocketClosed
	}
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return s.conn.WriteMessage(websocket.TextMessage, payload)
}

// dial opens the websocket. The setup frame is emitted by the reconciler via
// EmitSetup; dial only establishes the transport and waits for nothing.
func (s *Socket) dial(ctx context.Context) (*websocket.Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("client: dial %s: %w", s.url, err)
	}
	return conn, nil
}

func (s *Socket) readLoop(conn *websocket.Conn, rec *Reconciler) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug().Err(err).Msg("socket read ended")
			}
			return
		}

		var frame wire.Frame
		if err := json.Unmarshal(data, &frame); err != nil {
			s.log.Warn().Err(err).Msg("undecodable frame, dropped")
			continue
		}

		switch frame.Type {
		case wire.FrameConnected:
			// Setup ack; nothing to do, binding already happened.
		case wire.FrameMessageReceived:
			if frame.Message == nil {
				s.log.Warn().Msg("message-received without message, dropped")
				continue
			}
			rec.OnInboundMessage(*frame.Message)
		case wire.FrameError:
			s.log.Warn().Str("code", frame.Code).Str("error", frame.Error).Msg("server error frame")
		default:
			s.log.Debug().Str("type", frame.Type).Msg("unexpected frame type, ignored")
		}
	}
}

func (s *Socket) setConn(conn *websocket.Conn) {
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
}

func (s *Socket) closed(ctx context.Context) error {
	select {
	case <-s.done:
		return ErrSocketClosed
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

func (s *Socket) sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-s.done:
		return ErrSocketClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func nextBackoff(d time.Duration) time.Duration {
	d *= 2
	if d > reconnectMax {
		return reconnectMax
	}
	return d
}
