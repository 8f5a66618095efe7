// Package session owns per-session state: the in-memory table with its
// one-writer-per-session locking, JSON save slots on disk, and the
// sqlite journal of applied turns.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"driftworld/internal/state"
)

// Session is one player's live state. The mutex serializes turns: only
// one in-flight turn per session, while other sessions run in parallel.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu    sync.Mutex
	state *state.GameState
	turns uint64
}

// Store is the session table.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

// NewStore creates an empty session table.
func NewStore() *Store {
	return &Store{
		sessions: map[string]*Session{},
		now:      time.Now,
	}
}

// Resolve returns the session for id, creating one when id is empty or
// unknown. The second return is the resolved id for the response header.
func (s *Store) Resolve(id string, seed uint32) (*Session, string) {
	if id != "" {
		s.mu.RLock()
		sess, ok := s.sessions[id]
		s.mu.RUnlock()
		if ok {
			return sess, id
		}
	}
	if id == "" {
		id = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		return sess, id
	}
	now := s.now()
	sess := &Session{
		ID:        id,
		CreatedAt: now,
		state:     state.New(seed, now),
	}
	s.sessions[id] = sess
	return sess, id
}

// Reset replaces a session's state with a fresh world.
func (s *Store) Reset(id string, seed uint32) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	sess := &Session{
		ID:        id,
		CreatedAt: now,
		state:     state.New(seed, now),
	}
	s.sessions[id] = sess
	return sess
}

// Count returns the number of live sessions.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Each calls fn with a snapshot view of every session.
func (s *Store) Each(fn func(id string, turns uint64, created time.Time)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id, sess := range s.sessions {
		fn(id, sess.Turns(), sess.CreatedAt)
	}
}

// State returns the session's current state snapshot. Callers must not
// mutate it; turns work on clones.
func (sess *Session) State() *state.GameState {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.state
}

// Turns returns the number of applied turns.
func (sess *Session) Turns() uint64 {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.turns
}

// Apply runs fn holding the session's turn lock. fn receives the current
// state and returns the replacement (or nil to keep the old one). This is
// the single-writer barrier: the swap is atomic from any reader's view.
func (sess *Session) Apply(fn func(gs *state.GameState) *state.GameState) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if next := fn(sess.state); next != nil {
		sess.state = next
		sess.turns++
	}
}

// Update runs fn holding the turn lock without counting a turn, for
// out-of-band mutations like the quest endpoints.
func (sess *Session) Update(fn func(gs *state.GameState) *state.GameState) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if next := fn(sess.state); next != nil {
		sess.state = next
	}
}

// Replace swaps in a loaded state outside the turn path (save restore).
func (sess *Session) Replace(gs *state.GameState) {
	sess.mu.Lock()
	defer sess.mu.Unlock()
	sess.state = gs
}
