package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/akashwav/ConnectGo/internal/infrastructure/logger"
	"github.com/akashwav/ConnectGo/internal/infrastructure/realtime"
	chat "github.com/akashwav/ConnectGo/internal/pkg/chat/application/domain"
	"github.com/akashwav/ConnectGo/internal/pkg/chat/application/usecase"
	"github.com/akashwav/ConnectGo/pkg/wire"
)

// SocketOptions tunes the websocket endpoint.
type SocketOptions struct {
	ReadLimit   int64
	ReadTimeout time.Duration
	SendBuffer  int
}

func (o SocketOptions) withDefaults() SocketOptions {
	if o.ReadLimit <= 0 {
		o.ReadLimit = 1 << 20
	}
	if o.ReadTimeout <= 0 {
		o.ReadTimeout = 60 * time.Second
	}
	if o.SendBuffer <= 0 {
		o.SendBuffer = 128
	}
	return o
}

// ChatSocketController handles the websocket endpoint for realtime chat
// traffic: the setup handshake, conversation-room joins and message fan-out.
type ChatSocketController struct {
	registry        *realtime.Registry
	dispatcher      *realtime.Dispatcher
	joinUC          *usecase.JoinConversationUseCase
	opts            SocketOptions
	inflightTimeout time.Duration
}

func NewChatSocketController(registry *realtime.Registry, dispatcher *realtime.Dispatcher, joinUC *usecase.JoinConversationUseCase, opts SocketOptions) *ChatSocketController {
	return &ChatSocketController{
		registry:        registry,
		dispatcher:      dispatcher,
		joinUC:          joinUC,
		opts:            opts.withDefaults(),
		inflightTimeout: 5 * time.Second,
	}
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow all origins for now; plug a proper checker when auth is added.
		return true
	},
}

// Handle upgrades HTTP connections to websocket and processes frames until the
// client disconnects. Identity is established by the setup frame, not by the
// HTTP request, so a reconnecting client re-binds the same way it first did.
func (ctl *ChatSocketController) Handle() gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the response; just log and return.
			return
		}

		conn := realtime.NewConnection(ws, ctl.opts.SendBuffer)
		conn.Start()
		defer func() {
			ctl.registry.Unbind(conn)
			conn.Close(websocket.CloseNormalClosure, "session closed")
		}()

		ws.SetReadLimit(ctl.opts.ReadLimit)
		_ = ws.SetReadDeadline(time.Now().Add(ctl.opts.ReadTimeout))
		ws.SetPongHandler(func(string) error {
			return ws.SetReadDeadline(time.Now().Add(ctl.opts.ReadTimeout))
		})

		for {
			_, data, err := ws.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) ||
					errors.Is(err, websocket.ErrCloseSent) {
					return
				}
				ctl.replyError(conn, "read_error", err.Error())
				return
			}

			var frame wire.Frame
			if err := json.Unmarshal(data, &frame); err != nil {
				ctl.replyError(conn, "bad_request", "invalid payload")
				continue
			}

			switch frame.Type {
			case wire.FrameSetup:
				ctl.handleSetup(conn, frame)
			case wire.FrameJoinChat:
				ctl.handleJoinChat(c, conn, frame)
			case wire.FrameNewMessage:
				ctl.handleNewMessage(conn, frame)
			default:
				ctl.replyError(conn, "unsupported_type", "unknown frame type")
			}
		}
	}
}

// handleSetup binds the session to the identity's personal room and acks.
// Binding twice is harmless; the ack is re-sent so reconnect logic stays dumb.
func (ctl *ChatSocketController) handleSetup(conn *realtime.Connection, frame wire.Frame) {
	if frame.UserID == "" {
		ctl.replyError(conn, "bad_request", "user_id is required")
		return
	}
	ctl.registry.Bind(conn, frame.UserID)

	if payload, err := json.Marshal(wire.Frame{Type: wire.FrameConnected}); err == nil {
		_ = conn.Deliver(payload)
	}
}

// handleJoinChat enrolls the session in the conversation room after a
// membership check. The room is reserved for presence-style features; message
// fan-out goes through personal rooms and does not depend on this join.
func (ctl *ChatSocketController) handleJoinChat(c *gin.Context, conn *realtime.Connection, frame wire.Frame) {
	if frame.ChatID == "" {
		ctl.replyError(conn, "bad_request", "chat_id is required")
		return
	}
	identity, bound := ctl.registry.Identity(conn.SessionID())
	if !bound {
		ctl.replyError(conn, "bad_request", "setup is required before join-chat")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), ctl.inflightTimeout)
	defer cancel()

	err := ctl.joinUC.Execute(ctx, usecase.JoinConversationInput{
		ConversationID: frame.ChatID,
		UserID:         identity,
	})
	if err != nil {
		ctl.handleUseCaseError(conn, err)
		return
	}

	ctl.registry.JoinRoom(conn, realtime.ConversationRoom(frame.ChatID))
	logger.L().Debug().Str("chat_id", frame.ChatID).Str("user_id", identity).Msg("joined conversation room")
}

// handleNewMessage distributes an already-committed message to every other
// member's personal room. Persistence happened on the REST path before the
// client emitted this frame; malformed events are dropped with a diagnostic.
func (ctl *ChatSocketController) handleNewMessage(conn *realtime.Connection, frame wire.Frame) {
	if frame.Message == nil {
		ctl.replyError(conn, "bad_request", "message is required")
		return
	}
	msg := *frame.Message
	if msg.Chat == nil || len(msg.Chat.MemberIDs) == 0 {
		logger.L().Warn().Str("message_id", msg.ID).Msg("new-message without membership, dropped")
		ctl.replyError(conn, "bad_request", "message.chat.member_ids is required")
		return
	}

	if _, err := ctl.dispatcher.Distribute(msg, msg.Chat.MemberIDs); err != nil {
		logger.L().Warn().Err(err).Str("message_id", msg.ID).Msg("distribution rejected")
		ctl.replyError(conn, "bad_request", err.Error())
	}
}

func (ctl *ChatSocketController) handleUseCaseError(conn *realtime.Connection, err error) {
	switch {
	case errors.Is(err, usecase.ErrPersistence):
		ctl.replyError(conn, "internal_error", "unexpected persistence error")
	case errors.Is(err, chat.ErrNotParticipant):
		ctl.replyError(conn, "forbidden", "user is not a participant in this conversation")
	default:
		ctl.replyError(conn, "bad_request", err.Error())
	}
}

func (ctl *ChatSocketController) replyError(conn *realtime.Connection, code string, message string) {
	frame := wire.Frame{Type: wire.FrameError, Code: code, Error: message}
	if payload, err := json.Marshal(frame); err == nil {
		_ = conn.Deliver(payload)
	}
}
