package realtime

import (
	"sync"
)

// Room name helpers. Personal rooms are keyed by identity, conversation rooms
// by conversation id; the prefixes keep the two namespaces from colliding.
func PersonalRoom(identity string) string { return "user:" + identity }

func ConversationRoom(chatID string) string { return "chat:" + chatID }

// Router maintains the set of sessions registered in each room and fans events
// out to them. It makes no ordering promise across rooms; within one room,
// events are delivered to every member in publish order.
type Router struct {
	mu    sync.RWMutex
	rooms map[string]map[string]Session // roomID -> sessionID -> session
}

// NewRouter constructs an initialized Router.
func NewRouter() *Router {
	return &Router{rooms: make(map[string]map[string]Session)}
}

// Add registers the session in the room. Adding twice is a no-op.
func (r *Router) Add(roomID string, sess Session) {
	r.mu.Lock()
	room := r.rooms[roomID]
	if room == nil {
		room = make(map[string]Session)
		r.rooms[roomID] = room
	}
	room[sess.SessionID()] = sess
	r.mu.Unlock()
}

// Remove drops the session from the room, deleting the room when it empties.
func (r *Router) Remove(roomID string, sessionID string) {
	r.mu.Lock()
	r.removeLocked(roomID, sessionID)
	r.mu.Unlock()
}

func (r *Router) removeLocked(roomID string, sessionID string) {
	room := r.rooms[roomID]
	if room == nil {
		return
	}
	delete(room, sessionID)
	if len(room) == 0 {
		delete(r.rooms, roomID)
	}
}

// Publish delivers payload to every session currently registered in roomID and
// returns the number of sessions the payload was handed to. A session whose
// send buffer is exhausted is skipped; one slow member never blocks the rest.
//
// The write lock (rather than a read lock) makes concurrent publishes to the
// same room enqueue in a single order, which is what gives per-room FIFO.
func (r *Router) Publish(roomID string, payload []byte) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	delivered := 0
	for _, sess := range r.rooms[roomID] {
		if err := sess.Deliver(payload); err == nil {
			delivered++
		}
	}
	return delivered
}

// Count reports how many sessions are registered in roomID.
func (r *Router) Count(roomID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms[roomID])
}
