package server

import (
	"errors"
	"net"
	"sync"

	"github.com/google/uuid"
)

// ErrUsernameSet is returned when a session's username is assigned twice
var ErrUsernameSet = errors.New("session username already set")

// Session holds the server-side state for one connected client. It moves
// through three states: awaiting login (empty username), in room, and
// terminated (removed from the registry, connection closed).
type Session struct {
	ID   uuid.UUID
	Conn *SafeConn

	mu       sync.RWMutex
	username string
	inRoom   bool
}

// NewSession creates a session for an accepted connection
func NewSession(conn net.Conn) *Session {
	return &Session{
		ID:   uuid.New(),
		Conn: NewSafeConn(conn),
	}
}

// Username returns the logged-in username, or "" before login
func (s *Session) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.username
}

// SetUsername assigns the username exactly once, on successful login
func (s *Session) SetUsername(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.username != "" {
		return ErrUsernameSet
	}
	s.username = name
	return nil
}

// InRoom reports whether the session participates in broadcasts
func (s *Session) InRoom() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inRoom
}

// EnterRoom marks the session as a broadcast participant
func (s *Session) EnterRoom() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inRoom = true
}

// LeaveRoom removes the session from broadcast participation
func (s *Session) LeaveRoom() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inRoom = false
}
