package client

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/akashwav/ConnectGo/pkg/wire"
)

// Transport is the socket surface the Reconciler drives: identity binding on
// (re)connect, best-effort room joins, and the post-persist publish.
type Transport interface {
	EmitSetup(identity string) error
	EmitJoinChat(chatID string) error
	EmitNewMessage(msg wire.Message) error
}

// ChatListEntry is one row of the ordered chat list. The list is kept sorted
// so that the conversation most recently touched by a message is first; the
// relative order of all other entries is preserved on every update.
type ChatListEntry struct {
	Chat   wire.Chat
	Latest *wire.Message
	Unread bool
}

// Options configures a Reconciler. API is required; the rest are optional.
type Options struct {
	API       API
	Transport Transport
	// Visible reports whether the application is in the foreground. nil
	// means always visible, which suppresses same-chat notifications.
	Visible func() bool
	// Notify is invoked when the notification policy fires for an inbound
	// message. It runs on the reconciler goroutine, so keep it short.
	Notify func(wire.Message)
	// Scroll is invoked after a message is appended to the open sequence.
	Scroll    func()
	Logger    *zerolog.Logger
	QueueSize int
}

// Reconciler owns the client's canonical chat state: the ordered chat list,
// the open-conversation pointer and the open conversation's message sequence.
// Every mutation goes through a bounded event queue drained by one goroutine,
// so concurrent inbound events and user actions are applied one at a time in
// arrival order. Handlers always read the current state object rather than a
// captured snapshot.
type Reconciler struct {
	identity string
	opts     Options
	log      zerolog.Logger

	events    chan func()
	done      chan struct{}
	closeOnce sync.Once

	mu      sync.RWMutex
	entries []ChatListEntry
	openID  string
	openSeq []wire.Message
	seen    map[string]struct{}
}

func NewReconciler(identity string, opts Options) *Reconciler {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}
	r := &Reconciler{
		identity: identity,
		opts:     opts,
		log:      log,
		events:   make(chan func(), opts.QueueSize),
		done:     make(chan struct{}),
		seen:     make(map[string]struct{}),
	}
	go r.loop()
	return r
}

func (r *Reconciler) loop() {
	for {
		select {
		case fn := <-r.events:
			fn()
		case <-r.done:
			return
		}
	}
}

// do runs fn on the reconciler goroutine and waits for it to finish. Waiting
// keeps caller error handling synchronous while the queue still serializes
// concurrent callers in arrival order.
func (r *Reconciler) do(fn func()) {
	ran := make(chan struct{})
	select {
	case r.events <- func() { fn(); close(ran) }:
		<-ran
	case <-r.done:
	}
}

// Close stops the event loop. Pending operations are abandoned.
func (r *Reconciler) Close() {
	r.closeOnce.Do(func() { close(r.done) })
}

// Identity returns the identity this reconciler was built for.
func (r *Reconciler) Identity() string { return r.identity }

// Chats returns a copy of the ordered chat list, most recently active first.
func (r *Reconciler) Chats() []ChatListEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]ChatListEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// OpenChatID returns the open-conversation pointer, empty when none is open.
func (r *Reconciler) OpenChatID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.openID
}

// Messages returns a copy of the open conversation's message sequence.
func (r *Reconciler) Messages() []wire.Message {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]wire.Message, len(r.openSeq))
	copy(out, r.openSeq)
	return out
}

// OnConnectionEstablished re-issues the identity binding and the open chat's
// room join. Room membership does not survive a transport reconnect, so this
// must run after every connect; repeating it is harmless.
func (r *Reconciler) OnConnectionEstablished(ctx context.Context) error {
	var err error
	r.do(func() {
		if r.opts.Transport != nil {
			if e := r.opts.Transport.EmitSetup(r.identity); e != nil {
				err = e
				return
			}
			if r.openID != "" {
				_ = r.opts.Transport.EmitJoinChat(r.openID)
			}
		}
		if len(r.entries) > 0 {
			return // already seeded; reconnect closes gaps per chat on open
		}
		chats, e := r.opts.API.FetchConversations(ctx, r.identity)
		if e != nil {
			err = e
			return
		}
		r.mu.Lock()
		r.entries = r.entries[:0]
		for _, ch := range chats {
			r.entries = append(r.entries, ChatListEntry{
				Chat:   ch,
				Latest: ch.LatestMessage,
				Unread: ch.Unread > 0,
			})
		}
		r.mu.Unlock()
	})
	return err
}

// OnOpenConversation sets the open pointer, joins the conversation room
// (reserved for presence, delivery does not depend on it), replaces the open
// message sequence with fetched history and clears the unread flag. List
// order is not changed by opening a chat.
func (r *Reconciler) OnOpenConversation(ctx context.Context, chatID string) error {
	var err error
	r.do(func() {
		history, e := r.opts.API.FetchMessages(ctx, chatID)
		if e != nil {
			err = e
			return
		}
		if r.opts.Transport != nil {
			_ = r.opts.Transport.EmitJoinChat(chatID)
		}
		// Server-side counter reset is best-effort; the local flag is
		// authoritative for rendering.
		if e := r.opts.API.MarkChatRead(ctx, chatID, r.identity); e != nil {
			r.log.Warn().Err(e).Str("chat_id", chatID).Msg("mark-read failed")
		}

		r.mu.Lock()
		r.openID = chatID
		r.openSeq = history
		r.seen = make(map[string]struct{}, len(history))
		for _, m := range history {
			r.seen[m.ID] = struct{}{}
		}
		for i := range r.entries {
			if r.entries[i].Chat.ID == chatID {
				r.entries[i].Unread = false
				break
			}
		}
		r.mu.Unlock()
	})
	return err
}

// OnInboundMessage merges a message-received event into local state: update
// or synthesize the chat-list entry, flag unread when the chat is not open,
// stable move-to-front, and append to the open sequence. Duplicate events
// (same message id) are absorbed without changing the outcome.
func (r *Reconciler) OnInboundMessage(msg wire.Message) {
	r.do(func() {
		if msg.ChatID == "" {
			r.log.Warn().Str("message_id", msg.ID).Msg("inbound message without chat id, dropped")
			return
		}
		r.apply(msg, msg.ChatID != r.openID)

		if ShouldNotify(msg, r.openID, r.visible()) && r.opts.Notify != nil {
			r.opts.Notify(msg)
		}
	})
}

// OnLocalSend persists the message through the API and, once committed,
// applies the same list update as an inbound event minus the unread flag,
// then emits the new-message event so other sessions are notified. On a
// persistence failure nothing is distributed and local state is unchanged;
// the caller keeps the content for retry.
func (r *Reconciler) OnLocalSend(ctx context.Context, chatID, content string) (*wire.Message, error) {
	var (
		msg *wire.Message
		err error
	)
	r.do(func() {
		msg, err = r.opts.API.CreateMessage(ctx, chatID, r.identity, content)
		if err != nil {
			return
		}
		r.apply(*msg, false)
		if r.opts.Transport != nil {
			if e := r.opts.Transport.EmitNewMessage(*msg); e != nil {
				r.log.Warn().Err(e).Str("message_id", msg.ID).Msg("new-message emit failed")
			}
		}
	})
	return msg, err
}

// apply performs the core merge: entry lookup or synthesis, latest-message
// update, optional unread flag, stable move-to-front, open-sequence append.
// Runs on the reconciler goroutine only.
func (r *Reconciler) apply(msg wire.Message, markUnread bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := -1
	for i := range r.entries {
		if r.entries[i].Chat.ID == msg.ChatID {
			idx = i
			break
		}
	}

	var entry ChatListEntry
	if idx >= 0 {
		entry = r.entries[idx]
	} else {
		// Unknown conversation: synthesize the entry from the embedded
		// summary and treat it as most recently active.
		if msg.Chat != nil {
			entry.Chat = *msg.Chat
		} else {
			entry.Chat = wire.Chat{ID: msg.ChatID}
		}
	}

	m := msg
	entry.Latest = &m
	if markUnread {
		entry.Unread = true
	}

	// Stable move-to-front: relocate the touched entry, preserve the rest.
	// Not a re-sort by timestamp; order means most recently touched, and
	// sender clocks may skew.
	if idx >= 0 {
		r.entries = append(r.entries[:idx], r.entries[idx+1:]...)
	}
	r.entries = append([]ChatListEntry{entry}, r.entries...)

	if msg.ChatID == r.openID {
		if _, dup := r.seen[msg.ID]; !dup {
			r.seen[msg.ID] = struct{}{}
			r.openSeq = append(r.openSeq, msg)
			if r.opts.Scroll != nil {
				r.opts.Scroll()
			}
		}
	}
}

func (r *Reconciler) visible() bool {
	if r.opts.Visible == nil {
		return true
	}
	return r.opts.Visible()
}
