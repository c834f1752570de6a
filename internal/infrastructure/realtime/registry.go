package realtime

import (
	"sync"
)

// Registry tracks which identity each session authenticated as and which rooms
// it joined. All room membership changes flow through here so that Unbind can
// release everything a session touched. Multiple concurrent sessions may bind
// the same identity (one per device); each is enrolled in the identity's
// personal room and receives its own copy of every publish.
type Registry struct {
	mu         sync.RWMutex
	identities map[string]string              // sessionID -> identity
	joined     map[string]map[string]struct{} // sessionID -> roomIDs
	sessions   map[string]Session             // sessionID -> session

	router *Router
}

// NewRegistry constructs a Registry writing room membership through router.
func NewRegistry(router *Router) *Registry {
	return &Registry{
		identities: make(map[string]string),
		joined:     make(map[string]map[string]struct{}),
		sessions:   make(map[string]Session),
		router:     router,
	}
}

// Bind records identity for the session and enrolls it in that identity's
// personal room. A session already bound keeps its first identity; rebinding
// is a silent no-op.
func (g *Registry) Bind(sess Session, identity string) {
	if identity == "" {
		return
	}
	g.mu.Lock()
	if _, bound := g.identities[sess.SessionID()]; bound {
		g.mu.Unlock()
		return
	}
	g.identities[sess.SessionID()] = identity
	g.sessions[sess.SessionID()] = sess
	g.joinLocked(sess, PersonalRoom(identity))
	g.mu.Unlock()
}

// Unbind releases the session from every room it joined and drops the identity
// binding. Safe to call for sessions that never bound.
func (g *Registry) Unbind(sess Session) {
	id := sess.SessionID()
	g.mu.Lock()
	for roomID := range g.joined[id] {
		g.router.Remove(roomID, id)
	}
	delete(g.joined, id)
	delete(g.identities, id)
	delete(g.sessions, id)
	g.mu.Unlock()
}

// JoinRoom adds the session to roomID. Only bound sessions may join; joining
// the same room twice is a no-op.
func (g *Registry) JoinRoom(sess Session, roomID string) {
	g.mu.Lock()
	if _, bound := g.identities[sess.SessionID()]; bound {
		g.joinLocked(sess, roomID)
	}
	g.mu.Unlock()
}

func (g *Registry) joinLocked(sess Session, roomID string) {
	id := sess.SessionID()
	memberships := g.joined[id]
	if memberships == nil {
		memberships = make(map[string]struct{})
		g.joined[id] = memberships
	}
	if _, ok := memberships[roomID]; ok {
		return
	}
	memberships[roomID] = struct{}{}
	g.router.Add(roomID, sess)
}

// Identity reports the identity the session bound as, if any.
func (g *Registry) Identity(sessionID string) (string, bool) {
	g.mu.RLock()
	identity, ok := g.identities[sessionID]
	g.mu.RUnlock()
	return identity, ok
}
