// Package auth holds the process-wide session: who is logged in and whether
// that login is still usable.
package auth

import (
	"context"
	"sync"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// Session is an authenticated login.
type Session struct {
	Token     string
	UserID    string
	Username  string
	AvatarURL string
	// ExpiresAt is zero when the server did not say; the token's own exp
	// claim is consulted then.
	ExpiresAt time.Time
}

// Persister stores the session across runs.
type Persister interface {
	Load(ctx context.Context) (*Session, error)
	Save(ctx context.Context, s Session) error
	Clear(ctx context.Context) error
}

// Store is safe for concurrent use. Reads vastly outnumber writes: every
// navigation and request checks it, only login and logout change it.
type Store struct {
	mu      sync.RWMutex
	session *Session
	persist Persister
	now     func() time.Time
}

// NewStore creates a store. persist may be nil for a memory-only session.
func NewStore(persist Persister) *Store {
	return &Store{persist: persist, now: time.Now}
}

// Restore loads a previously saved session.
func (s *Store) Restore(ctx context.Context) error {
	if s.persist == nil {
		return nil
	}
	sess, err := s.persist.Load(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.session = sess
	s.mu.Unlock()
	return nil
}

// Login replaces the current session.
func (s *Store) Login(ctx context.Context, sess Session) error {
	if s.persist != nil {
		if err := s.persist.Save(ctx, sess); err != nil {
			return err
		}
	}
	s.mu.Lock()
	s.session = &sess
	s.mu.Unlock()
	return nil
}

// Logout drops the current session. The in-memory session is dropped even
// when clearing the persisted copy fails.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.session = nil
	s.mu.Unlock()
	if s.persist != nil {
		return s.persist.Clear(ctx)
	}
	return nil
}

// IsAuthenticated reports whether a usable session exists right now.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	sess := s.session
	s.mu.RUnlock()
	if sess == nil || sess.Token == "" {
		return false
	}
	exp := sess.ExpiresAt
	if exp.IsZero() {
		exp = tokenExpiry(sess.Token)
	}
	return exp.IsZero() || s.now().Before(exp)
}

// Token returns the bearer token, or "" when not authenticated.
func (s *Store) Token() string {
	if !s.IsAuthenticated() {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return ""
	}
	return s.session.Token
}

// Session returns a copy of the current session when authenticated.
func (s *Store) Session() (Session, bool) {
	if !s.IsAuthenticated() {
		return Session{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return Session{}, false
	}
	return *s.session, true
}

// tokenExpiry reads the exp claim of a JWT without verifying it. Opaque
// tokens have no expiry as far as the client can tell.
func tokenExpiry(token string) time.Time {
	parser := gojwt.NewParser()
	t, _, err := parser.ParseUnverified(token, gojwt.MapClaims{})
	if err != nil {
		return time.Time{}
	}
	exp, err := t.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}
