package server

import (
	"sync"

	"github.com/google/uuid"

	"github.com/banterhq/banter/pkg/protocol"
)

// Registry is the server-wide collection of live sessions. It is shared by
// the accept loop (adds) and every session goroutine (removes itself, reads
// all for broadcast and lookup), so every access goes through the mutex.
//
// Iteration happens under a read lock over a point-in-time set: a broadcast
// observes every session added before it started and may or may not observe
// concurrent removals. That is the consistency the chat semantics need;
// nothing here is linearizable.
type Registry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
	metrics  *Metrics
}

// NewRegistry creates an empty registry. metrics may be nil.
func NewRegistry(metrics *Metrics) *Registry {
	return &Registry{
		sessions: make(map[uuid.UUID]*Session),
		metrics:  metrics,
	}
}

// Add registers a session
func (r *Registry) Add(sess *Session) {
	r.mu.Lock()
	r.sessions[sess.ID] = sess
	count := len(r.sessions)
	r.mu.Unlock()

	if r.metrics != nil {
		r.metrics.RecordActiveSessions(count)
		r.metrics.RecordSessionCreated()
	}
}

// TryAdd registers the session only while fewer than max sessions are held.
// The count check and the insert happen under one lock, so concurrent
// admissions can never push the registry past max.
func (r *Registry) TryAdd(sess *Session, max int) bool {
	r.mu.Lock()
	if len(r.sessions) >= max {
		r.mu.Unlock()
		return false
	}
	r.sessions[sess.ID] = sess
	count := len(r.sessions)
	r.mu.Unlock()

	if r.metrics != nil {
		r.metrics.RecordActiveSessions(count)
		r.metrics.RecordSessionCreated()
	}
	return true
}

// Remove unregisters a session and closes its connection. Removing an
// unknown ID is a no-op.
func (r *Registry) Remove(id uuid.UUID) {
	r.mu.Lock()
	sess, ok := r.sessions[id]
	if !ok {
		r.mu.Unlock()
		return
	}
	delete(r.sessions, id)
	count := len(r.sessions)
	r.mu.Unlock()

	if r.metrics != nil {
		r.metrics.RecordActiveSessions(count)
		r.metrics.RecordSessionDisconnected()
	}

	sess.Conn.Close()
}

// Count returns the number of registered sessions, logged in or not
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// FindByUsername returns the logged-in session with the given username
func (r *Registry) FindByUsername(name string) (*Session, bool) {
	if name == "" {
		return nil, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, sess := range r.sessions {
		if sess.Username() == name {
			return sess, true
		}
	}
	return nil, false
}

// Usernames returns all logged-in usernames except the excluded one.
// Iteration order is map order; callers treat the result as a set.
func (r *Registry) Usernames(excluding string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.sessions))
	for _, sess := range r.sessions {
		name := sess.Username()
		if name == "" || name == excluding {
			continue
		}
		names = append(names, name)
	}
	return names
}

// Broadcast sends a message to every in-room session, the sender included.
// Sessions whose connection fails are collected and removed after iteration.
// Returns the number of sessions the message was delivered to.
func (r *Registry) Broadcast(m protocol.Message) int {
	var dead []uuid.UUID
	delivered := 0

	r.mu.RLock()
	for _, sess := range r.sessions {
		if !sess.InRoom() {
			continue
		}
		if err := sess.Conn.Send(m); err != nil {
			debugLog.Printf("session %s: broadcast send failed (%s): %v", sess.ID, m.Type(), err)
			dead = append(dead, sess.ID)
			continue
		}
		delivered++
	}
	r.mu.RUnlock()

	for _, id := range dead {
		r.Remove(id)
	}
	return delivered
}

// CloseAll closes every connection and empties the registry
func (r *Registry) CloseAll() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, sess := range r.sessions {
		sess.Conn.Close()
	}
	r.sessions = make(map[uuid.UUID]*Session)
}
