package repository

import (
	"errors"
	"sync"
	"time"

	"carvalue/internal/model"
)

// ErrSessionNotFound is returned for unknown or expired sessions
var ErrSessionNotFound = errors.New("session not found")

// SessionStore keeps chat sessions in memory. Sessions idle for longer
// than the TTL are dropped on access and by Evict.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*model.ChatSession
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionStore creates an empty store
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*model.ChatSession),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Put stores a copy of the session, replacing any previous one with the same ID
func (s *SessionStore) Put(session *model.ChatSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := session.Clone()
	c.UpdatedAt = s.now()
	s.sessions[c.ID] = c
}

// Get returns a copy of the session
func (s *SessionStore) Get(id string) (*model.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.live(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session.Clone(), nil
}

// Update applies fn to the stored session under the store lock.
// If fn returns an error the session is left unchanged.
func (s *SessionStore) Update(id string, fn func(session *model.ChatSession) error) (*model.ChatSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.live(id)
	if !ok {
		return nil, ErrSessionNotFound
	}

	working := session.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	working.UpdatedAt = s.now()
	s.sessions[id] = working
	return working.Clone(), nil
}

// Delete removes a session. Deleting an unknown session is not an error.
func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len returns the number of stored sessions, expired ones included
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Evict drops every expired session and returns how many were removed
func (s *SessionStore) Evict() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl)
	removed := 0
	for id, session := range s.sessions {
		if session.UpdatedAt.Before(cutoff) && !session.Processing {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// live must be called with mu held
func (s *SessionStore) live(id string) (*model.ChatSession, bool) {
	session, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	if !session.Processing && session.UpdatedAt.Before(s.now().Add(-s.ttl)) {
		delete(s.sessions, id)
		return nil, false
	}
	return session, true
}
