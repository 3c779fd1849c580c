package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// ErrSessionNotFound is returned when a session id is unknown. Lookups never
// create sessions implicitly.
var ErrSessionNotFound = errors.New("session not found")

// Store owns the session records for the process lifetime. Sessions are
// never deleted; unbounded growth is an accepted operational constraint.
type Store struct {
	mu           sync.RWMutex
	sessions     map[string]*Session
	userSessions map[string][]string

	logger zerolog.Logger
	now    func() time.Time
}

// NewStore creates an empty in-memory session store.
func NewStore(logger zerolog.Logger) *Store {
	return &Store{
		sessions:     make(map[string]*Session),
		userSessions: make(map[string][]string),
		logger:       logger.With().Str("component", "session_store").Logger(),
		now:          time.Now,
	}
}

// Create opens a session for a user. Without a custom id a deterministic
// "{userID}_{yyyyMMddHHmmss}" id is generated. A caller-supplied id that
// collides with an existing session silently overwrites it.
func (s *Store) Create(userID, sessionID string) *Session {
	now := s.now()
	if sessionID == "" {
		sessionID = fmt.Sprintf("%s_%s", userID, now.Format("20060102150405"))
	}

	sess := &Session{
		ID:        sessionID,
		UserID:    userID,
		StartTime: now,
		Active:    true,
		attempts:  make(map[string]int),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sessions[sessionID]; exists {
		s.logger.Warn().Str("session_id", sessionID).Msg("custom session id reuses an existing session; overwriting")
	}
	s.sessions[sessionID] = sess
	s.userSessions[userID] = append(s.userSessions[userID], sessionID)

	return sess
}

// Get looks a session up by exact id.
func (s *Store) Get(sessionID string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return sess, nil
}

// End closes a session and fixes its duration. Ending an already-inactive
// session is a no-op returning the current state; the second return value
// reports whether this call performed the transition.
func (s *Store) End(sessionID string) (*Session, bool, error) {
	sess, err := s.Get(sessionID)
	if err != nil {
		return nil, false, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if !sess.Active {
		return sess, false, nil
	}

	end := s.now()
	sess.EndTime = &end
	sess.Duration = end.Sub(sess.StartTime).Seconds()
	sess.Active = false

	return sess, true, nil
}

// IsActive reports whether a known session is still open. Unknown ids are
// simply inactive.
func (s *Store) IsActive(sessionID string) bool {
	sess, err := s.Get(sessionID)
	if err != nil {
		return false
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.Active
}

// UserSessions returns the ids of every session a user has started, in
// creation order.
func (s *Store) UserSessions(userID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.userSessions[userID]...)
}
