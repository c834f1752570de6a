package client

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akashwav/ConnectGo/pkg/wire"
)

type fakeAPI struct {
	chats     []wire.Chat
	history   map[string][]wire.Message
	createErr error
	created   []wire.Message
	readCalls []string
	nextID    int
}

func (f *fakeAPI) CreateMessage(_ context.Context, chatID, senderID, content string) (*wire.Message, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.nextID++
	msg := wire.Message{
		ID:        fmt.Sprintf("m%d", f.nextID),
		ChatID:    chatID,
		SenderID:  senderID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	f.created = append(f.created, msg)
	return &msg, nil
}

func (f *fakeAPI) FetchMessages(_ context.Context, chatID string) ([]wire.Message, error) {
	return f.history[chatID], nil
}

func (f *fakeAPI) FetchConversations(_ context.Context, _ string) ([]wire.Chat, error) {
	return f.chats, nil
}

func (f *fakeAPI) MarkChatRead(_ context.Context, chatID, _ string) error {
	f.readCalls = append(f.readCalls, chatID)
	return nil
}

type fakeTransport struct {
	setups    []string
	joins     []string
	published []wire.Message
}

func (f *fakeTransport) EmitSetup(identity string) error { f.setups = append(f.setups, identity); return nil }
func (f *fakeTransport) EmitJoinChat(chatID string) error { f.joins = append(f.joins, chatID); return nil }
func (f *fakeTransport) EmitNewMessage(msg wire.Message) error {
	f.published = append(f.published, msg)
	return nil
}

func newTestReconciler(t *testing.T, identity string, api *fakeAPI, tr Transport) *Reconciler {
	t.Helper()
	rec := NewReconciler(identity, Options{API: api, Transport: tr})
	t.Cleanup(rec.Close)
	return rec
}

func inbound(id, chatID, sender, content string) wire.Message {
	return wire.Message{ID: id, ChatID: chatID, SenderID: sender, Content: content, CreatedAt: time.Now().UTC()}
}

func chatIDs(entries []ChatListEntry) []string {
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.Chat.ID)
	}
	return ids
}

func TestInboundMessageMovesChatToFrontAndFlagsUnread(t *testing.T) {
	api := &fakeAPI{
		chats: []wire.Chat{
			{ID: "c2", MemberIDs: []string{"userB", "userC"}},
			{ID: "c1", MemberIDs: []string{"userA", "userB"}},
		},
		history: map[string][]wire.Message{
			"c1": {inbound("m1", "c1", "userA", "hi")},
		},
	}
	rec := newTestReconciler(t, "userB", api, &fakeTransport{})
	require.NoError(t, rec.OnConnectionEstablished(context.Background()))
	require.Equal(t, []string{"c2", "c1"}, chatIDs(rec.Chats()))

	rec.OnInboundMessage(inbound("m1", "c1", "userA", "hi"))

	entries := rec.Chats()
	require.Equal(t, []string{"c1", "c2"}, chatIDs(entries))
	assert.True(t, entries[0].Unread)
	require.NotNil(t, entries[0].Latest)
	assert.Equal(t, "hi", entries[0].Latest.Content)

	// Opening the chat clears the flag without reordering the list.
	require.NoError(t, rec.OnOpenConversation(context.Background(), "c1"))
	entries = rec.Chats()
	require.Equal(t, []string{"c1", "c2"}, chatIDs(entries))
	assert.False(t, entries[0].Unread)
	require.Len(t, rec.Messages(), 1)
	assert.Equal(t, []string{"c1"}, api.readCalls)
}

func TestDuplicateInboundMessageIsIdempotent(t *testing.T) {
	api := &fakeAPI{
		chats:   []wire.Chat{{ID: "c1", MemberIDs: []string{"userA", "userB"}}},
		history: map[string][]wire.Message{},
	}
	rec := newTestReconciler(t, "userB", api, &fakeTransport{})
	require.NoError(t, rec.OnConnectionEstablished(context.Background()))
	require.NoError(t, rec.OnOpenConversation(context.Background(), "c1"))

	msg := inbound("m1", "c1", "userA", "hello")
	rec.OnInboundMessage(msg)
	rec.OnInboundMessage(msg)

	require.Len(t, rec.Messages(), 1)
	assert.Equal(t, "m1", rec.Messages()[0].ID)
	assert.Equal(t, []string{"c1"}, chatIDs(rec.Chats()))
}

func TestMoveToFrontPreservesRelativeOrder(t *testing.T) {
	api := &fakeAPI{chats: []wire.Chat{{ID: "a"}, {ID: "b"}, {ID: "c"}}}
	rec := newTestReconciler(t, "userA", api, nil)
	require.NoError(t, rec.OnConnectionEstablished(context.Background()))

	rec.OnInboundMessage(inbound("m1", "b", "userB", "x"))
	require.Equal(t, []string{"b", "a", "c"}, chatIDs(rec.Chats()))

	rec.OnInboundMessage(inbound("m2", "c", "userB", "y"))
	require.Equal(t, []string{"c", "b", "a"}, chatIDs(rec.Chats()))
}

func TestLocalSendMovesToFrontWithoutUnread(t *testing.T) {
	api := &fakeAPI{chats: []wire.Chat{{ID: "c1"}, {ID: "c2"}}}
	tr := &fakeTransport{}
	rec := newTestReconciler(t, "userA", api, tr)
	require.NoError(t, rec.OnConnectionEstablished(context.Background()))

	msg, err := rec.OnLocalSend(context.Background(), "c2", "ahoy")
	require.NoError(t, err)
	require.NotNil(t, msg)

	entries := rec.Chats()
	require.Equal(t, []string{"c2", "c1"}, chatIDs(entries))
	assert.False(t, entries[0].Unread, "a locally sent message never marks its own chat unread")

	// The committed message is published for the other sessions.
	require.Len(t, tr.published, 1)
	assert.Equal(t, msg.ID, tr.published[0].ID)
}

func TestFailedSendLeavesStateUntouched(t *testing.T) {
	api := &fakeAPI{
		chats:     []wire.Chat{{ID: "c1"}, {ID: "c2"}},
		createErr: errors.New("storage unavailable"),
	}
	tr := &fakeTransport{}
	rec := newTestReconciler(t, "userA", api, tr)
	require.NoError(t, rec.OnConnectionEstablished(context.Background()))

	msg, err := rec.OnLocalSend(context.Background(), "c2", "lost?")
	require.Error(t, err)
	assert.Nil(t, msg)

	assert.Equal(t, []string{"c1", "c2"}, chatIDs(rec.Chats()), "list order unchanged")
	assert.Empty(t, tr.published, "nothing distributed on persistence failure")
}

func TestInboundSynthesizesUnknownChatEntry(t *testing.T) {
	api := &fakeAPI{}
	rec := newTestReconciler(t, "userB", api, nil)
	require.NoError(t, rec.OnConnectionEstablished(context.Background()))

	msg := inbound("m1", "c9", "userA", "first contact")
	msg.Chat = &wire.Chat{ID: "c9", MemberIDs: []string{"userA", "userB"}}
	rec.OnInboundMessage(msg)

	entries := rec.Chats()
	require.Len(t, entries, 1)
	assert.Equal(t, "c9", entries[0].Chat.ID)
	assert.Equal(t, []string{"userA", "userB"}, entries[0].Chat.MemberIDs)
	assert.True(t, entries[0].Unread)
}

func TestNotifyHookFollowsPolicy(t *testing.T) {
	api := &fakeAPI{
		chats:   []wire.Chat{{ID: "c1"}, {ID: "c2"}},
		history: map[string][]wire.Message{},
	}
	var notified []string
	rec := NewReconciler("userB", Options{
		API:     api,
		Visible: func() bool { return true },
		Notify:  func(m wire.Message) { notified = append(notified, m.ID) },
	})
	t.Cleanup(rec.Close)
	require.NoError(t, rec.OnConnectionEstablished(context.Background()))
	require.NoError(t, rec.OnOpenConversation(context.Background(), "c1"))

	rec.OnInboundMessage(inbound("m1", "c1", "userA", "open and visible"))
	rec.OnInboundMessage(inbound("m2", "c2", "userA", "other chat"))

	assert.Equal(t, []string{"m2"}, notified)
}

func TestReconnectReissuesSetupAndOpenRoomJoin(t *testing.T) {
	api := &fakeAPI{
		chats:   []wire.Chat{{ID: "c1"}},
		history: map[string][]wire.Message{},
	}
	tr := &fakeTransport{}
	rec := newTestReconciler(t, "userB", api, tr)

	require.NoError(t, rec.OnConnectionEstablished(context.Background()))
	require.NoError(t, rec.OnOpenConversation(context.Background(), "c1"))
	require.NoError(t, rec.OnConnectionEstablished(context.Background()))

	assert.Equal(t, []string{"userB", "userB"}, tr.setups)
	assert.Equal(t, []string{"c1", "c1"}, tr.joins, "open chat room is re-joined after reconnect")
}
