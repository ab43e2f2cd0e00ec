package client

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// sessionTTL bounds how long a persisted session is trusted. It matches
// the server-side token lifetime of one day.
const sessionTTL = 24 * time.Hour

// SessionState tracks the lifecycle of a restored session.
type SessionState string

const (
	SessionUninitialized SessionState = "UNINITIALIZED"
	SessionRestoring     SessionState = "RESTORING"
	SessionAuthenticated SessionState = "AUTHENTICATED"
	SessionAnonymous     SessionState = "ANONYMOUS"
)

// Session is the persisted credential snapshot written after sign-in.
type Session struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	UserID      int64     `json:"userId"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Role        string    `json:"role"`
	IssuedAt    time.Time `json:"issuedAt"`
}

func (s *Session) expired(now time.Time) bool {
	return now.Sub(s.IssuedAt) >= sessionTTL
}

// SessionStore persists one session to a JSON file. Restore moves the
// store from UNINITIALIZED through RESTORING to AUTHENTICATED or
// ANONYMOUS; an expired or unreadable file is dropped, landing on
// ANONYMOUS rather than erroring.
type SessionStore struct {
	mu      sync.Mutex
	path    string
	state   SessionState
	session *Session
	now     func() time.Time
}

// NewSessionStore creates a store backed by path.
func NewSessionStore(path string) *SessionStore {
	return &SessionStore{
		path:  path,
		state: SessionUninitialized,
		now:   time.Now,
	}
}

// State reports the current lifecycle state.
func (s *SessionStore) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Current returns the active session, or nil when anonymous.
func (s *SessionStore) Current() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != SessionAuthenticated || s.session == nil {
		return nil
	}
	clone := *s.session
	return &clone
}

// Restore loads the persisted session. Only filesystem faults other than
// absence are reported; a missing, corrupt or expired file is anonymous.
func (s *SessionStore) Restore() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = SessionRestoring

	raw, err := os.ReadFile(s.path)
	if err != nil {
		s.session = nil
		s.state = SessionAnonymous
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}

	var session Session
	if err := json.Unmarshal(raw, &session); err != nil || session.AccessToken == "" {
		s.dropLocked()
		return nil
	}
	if session.expired(s.now()) {
		s.dropLocked()
		return nil
	}

	s.session = &session
	s.state = SessionAuthenticated
	return nil
}

// Save persists the session and marks the store authenticated.
func (s *SessionStore) Save(session Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session.IssuedAt.IsZero() {
		session.IssuedAt = s.now()
	}
	raw, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return err
	}
	s.session = &session
	s.state = SessionAuthenticated
	return nil
}

// Clear removes the persisted session and marks the store anonymous.
func (s *SessionStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropLocked()
}

func (s *SessionStore) dropLocked() {
	_ = os.Remove(s.path)
	s.session = nil
	s.state = SessionAnonymous
}
