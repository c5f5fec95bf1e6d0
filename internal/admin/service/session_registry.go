package service

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"strings"
	"sync"
	"time"

	pkgerrors "examarchive/pkg/errors"

	"golang.org/x/crypto/bcrypt"
)

// DefaultSessionTTL bounds how long an admin token stays valid.
const DefaultSessionTTL = 24 * time.Hour

const tokenBytes = 32

// Session is one live admin login.
type Session struct {
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionRegistry is the in-memory admin token store. Sessions never
// survive a process restart; every instance holds its own registry.
type SessionRegistry struct {
	mu       sync.Mutex
	sessions map[string]*Session

	password string
	ttl      time.Duration
	now      func() time.Time
}

// RegistryOptions tunes a SessionRegistry.
type RegistryOptions struct {
	// Password is the configured admin secret. A value starting with a
	// bcrypt prefix is treated as a hash, anything else as plaintext.
	Password string
	// TTL overrides DefaultSessionTTL when positive.
	TTL time.Duration
}

// NewSessionRegistry creates an empty registry.
func NewSessionRegistry(opts RegistryOptions) *SessionRegistry {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionRegistry{
		sessions: make(map[string]*Session),
		password: opts.Password,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Login checks the password and mints a new session token.
func (r *SessionRegistry) Login(_ context.Context, password string) (*Session, error) {
	if r.password == "" {
		return nil, pkgerrors.New(pkgerrors.InternalServerError).
			WithMessage("Admin password is not configured")
	}
	if !r.checkPassword(password) {
		return nil, pkgerrors.New(pkgerrors.InvalidCredentials)
	}

	token, err := newToken()
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.InternalServerError)
	}

	now := r.now()
	session := &Session{
		Token:     token,
		CreatedAt: now,
		ExpiresAt: now.Add(r.ttl),
	}

	r.mu.Lock()
	r.sessions[token] = session
	r.mu.Unlock()

	return session, nil
}

// Verify resolves a token to its live session. Expired entries found
// along the way are purged.
func (r *SessionRegistry) Verify(_ context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.TokenInvalid)
	}

	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[token]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.TokenInvalid)
	}
	if now.After(session.ExpiresAt) {
		delete(r.sessions, token)
		return nil, pkgerrors.New(pkgerrors.TokenExpired)
	}

	copied := *session
	return &copied, nil
}

// Logout invalidates a token. Unknown tokens are a no-op, so repeated
// logouts succeed.
func (r *SessionRegistry) Logout(_ context.Context, token string) {
	r.mu.Lock()
	delete(r.sessions, token)
	r.mu.Unlock()
}

// Purge drops every expired session and reports how many were removed.
func (r *SessionRegistry) Purge() int {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for token, session := range r.sessions {
		if now.After(session.ExpiresAt) {
			delete(r.sessions, token)
			removed++
		}
	}
	return removed
}

func (r *SessionRegistry) checkPassword(candidate string) bool {
	if strings.HasPrefix(r.password, "$2a$") ||
		strings.HasPrefix(r.password, "$2b$") ||
		strings.HasPrefix(r.password, "$2y$") {
		return bcrypt.CompareHashAndPassword([]byte(r.password), []byte(candidate)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(r.password), []byte(candidate)) == 1
}

func newToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
