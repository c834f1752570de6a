package controller

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akashwav/ConnectGo/internal/infrastructure/realtime"
	chat "github.com/akashwav/ConnectGo/internal/pkg/chat/application/domain"
	"github.com/akashwav/ConnectGo/internal/pkg/chat/application/usecase"
	"github.com/akashwav/ConnectGo/pkg/wire"
)

// memberRepo satisfies the repository port with a fixed membership table;
// only the participant lookups matter to the socket path.
type memberRepo struct {
	members map[string][]string // conversationID -> userIDs
}

func (m *memberRepo) CreateConversation(context.Context, chat.Conversation, []string) (string, error) {
	return "", nil
}
func (m *memberRepo) FindDirectConversation(context.Context, string, string) (*chat.Conversation, error) {
	return nil, chat.ErrChatNotFound
}
func (m *memberRepo) SaveMessage(context.Context, chat.Message) (string, error) { return "", nil }
func (m *memberRepo) GetMessagesByConversation(context.Context, string, int) ([]chat.Message, error) {
	return nil, nil
}
func (m *memberRepo) ListConversationsForUser(context.Context, string) ([]chat.Overview, error) {
	return nil, nil
}
func (m *memberRepo) ListParticipantIDs(_ context.Context, conversationID string) ([]string, error) {
	return m.members[conversationID], nil
}
func (m *memberRepo) IsParticipant(_ context.Context, conversationID, userID string) (bool, error) {
	for _, id := range m.members[conversationID] {
		if id == userID {
			return true, nil
		}
	}
	return false, nil
}
func (m *memberRepo) SetLatestMessage(context.Context, string, string) error { return nil }
func (m *memberRepo) BumpUnread(context.Context, string, string) error       { return nil }
func (m *memberRepo) ClearUnread(context.Context, string, string) error      { return nil }

func newSocketServer(t *testing.T, members map[string][]string) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rooms := realtime.NewRouter()
	registry := realtime.NewRegistry(rooms)
	dispatcher := realtime.NewDispatcher(rooms)
	joinUC := usecase.NewJoinConversationUseCase(
		usecase.NewListParticipantsUseCase(&memberRepo{members: members}, nil, 0))

	r := gin.New()
	ctl := NewChatSocketController(registry, dispatcher, joinUC, SocketOptions{})
	r.GET("/ws", ctl.Handle())

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func dialSocket(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func sendFrame(t *testing.T, conn *websocket.Conn, frame wire.Frame) {
	t.Helper()
	payload, err := json.Marshal(frame)
	require.NoError(t, err)
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, payload))
}

func readFrame(t *testing.T, conn *websocket.Conn) wire.Frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var frame wire.Frame
	require.NoError(t, json.Unmarshal(data, &frame))
	return frame
}

func setupAs(t *testing.T, conn *websocket.Conn, identity string) {
	t.Helper()
	sendFrame(t, conn, wire.Frame{Type: wire.FrameSetup, UserID: identity})
	ack := readFrame(t, conn)
	require.Equal(t, wire.FrameConnected, ack.Type)
}

func TestSocketSetupIsAcknowledged(t *testing.T) {
	srv := newSocketServer(t, nil)
	conn := dialSocket(t, srv)
	setupAs(t, conn, "userA")
}

func TestSocketDistributesToEveryDeviceExceptSender(t *testing.T) {
	srv := newSocketServer(t, map[string][]string{"c1": {"userA", "userB"}})

	deviceA1 := dialSocket(t, srv)
	deviceA2 := dialSocket(t, srv)
	sender := dialSocket(t, srv)
	setupAs(t, deviceA1, "userA")
	setupAs(t, deviceA2, "userA")
	setupAs(t, sender, "userB")

	msg := wire.Message{
		ID:       "m1",
		ChatID:   "c1",
		SenderID: "userB",
		Content:  "hi",
		Chat:     &wire.Chat{ID: "c1", MemberIDs: []string{"userA", "userB"}},
	}
	sendFrame(t, sender, wire.Frame{Type: wire.FrameNewMessage, Message: &msg})

	for _, conn := range []*websocket.Conn{deviceA1, deviceA2} {
		got := readFrame(t, conn)
		require.Equal(t, wire.FrameMessageReceived, got.Type)
		require.NotNil(t, got.Message)
		assert.Equal(t, "m1", got.Message.ID)
		assert.Equal(t, "hi", got.Message.Content)
	}

	// The sender must not receive its own message back.
	require.NoError(t, sender.SetReadDeadline(time.Now().Add(300*time.Millisecond)))
	_, _, err := sender.ReadMessage()
	assert.Error(t, err, "expected read timeout, sender got an event")
}

func TestSocketRejectsMalformedNewMessage(t *testing.T) {
	srv := newSocketServer(t, nil)
	conn := dialSocket(t, srv)
	setupAs(t, conn, "userA")

	// No membership list embedded in the message.
	sendFrame(t, conn, wire.Frame{Type: wire.FrameNewMessage, Message: &wire.Message{
		ID: "m1", ChatID: "c1", SenderID: "userA", Content: "x",
	}})

	reply := readFrame(t, conn)
	assert.Equal(t, wire.FrameError, reply.Type)
	assert.Equal(t, "bad_request", reply.Code)
}

func TestSocketJoinChatRequiresMembership(t *testing.T) {
	srv := newSocketServer(t, map[string][]string{"c1": {"userA", "userB"}})
	conn := dialSocket(t, srv)
	setupAs(t, conn, "userC")

	sendFrame(t, conn, wire.Frame{Type: wire.FrameJoinChat, ChatID: "c1"})
	reply := readFrame(t, conn)
	assert.Equal(t, wire.FrameError, reply.Type)
	assert.Equal(t, "forbidden", reply.Code)
}

func TestSocketJoinChatRequiresSetupFirst(t *testing.T) {
	srv := newSocketServer(t, map[string][]string{"c1": {"userA"}})
	conn := dialSocket(t, srv)

	sendFrame(t, conn, wire.Frame{Type: wire.FrameJoinChat, ChatID: "c1"})
	reply := readFrame(t, conn)
	assert.Equal(t, wire.FrameError, reply.Type)
	assert.Equal(t, "bad_request", reply.Code)
}
