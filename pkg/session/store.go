// Package session owns per-browser state: the session store, each session's
// page instances, and the path-partitioned key/value storage pages share.
//
// The store is an explicitly owned object handed to the request-handling
// component; there is no ambient global state. The session map is only
// structurally mutated by the request path, never by poll timers.
package session

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Store maps opaque session tokens to sessions.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	logger   *slog.Logger
}

// NewStore creates an empty session store.
func NewStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		sessions: make(map[string]*Session),
		logger:   logger.With("component", "session"),
	}
}

// Ensure returns the session for token, creating a new one when the token
// is blank or unknown. A client-supplied token is never adopted for a new
// session; fresh tokens are always generated server-side. The second return
// reports whether a session was created.
func (st *Store) Ensure(token string) (*Session, bool) {
	if token != "" {
		st.mu.RLock()
		s, ok := st.sessions[token]
		st.mu.RUnlock()
		if ok {
			return s, false
		}
	}

	s := newSession(uuid.NewString(), st.logger)
	st.mu.Lock()
	st.sessions[s.Token] = s
	n := len(st.sessions)
	st.mu.Unlock()

	st.logger.Info("session created", "token", s.Token, "sessions", n)
	return s, true
}

// Get returns the session for token without creating one.
func (st *Store) Get(token string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[token]
	return s, ok
}

// Reset destroys a session: its pages and storage are dropped and the token
// stops resolving. This is the administrative reset; per-page lazy eviction
// is handled by Session.Replace.
func (st *Store) Reset(token string) bool {
	st.mu.Lock()
	s, ok := st.sessions[token]
	if ok {
		delete(st.sessions, token)
	}
	st.mu.Unlock()

	if !ok {
		return false
	}
	s.Reset()
	st.logger.Info("session reset", "token", token)
	return true
}

// Each calls fn for every live session. The store lock is not held during
// the callback.
func (st *Store) Each(fn func(s *Session)) {
	st.mu.RLock()
	sessions := make([]*Session, 0, len(st.sessions))
	for _, s := range st.sessions {
		sessions = append(sessions, s)
	}
	st.mu.RUnlock()

	for _, s := range sessions {
		fn(s)
	}
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
