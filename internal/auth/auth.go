// Package auth verifies admin credentials and issues short-lived session
// tokens. Credentials never leave the server: the password is checked against
// a bcrypt hash supplied by configuration.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DefaultTTL is the lifetime of an issued session.
const DefaultTTL = 12 * time.Hour

var (
	// ErrInvalidCredentials is returned for any failed login.
	ErrInvalidCredentials = errors.New("Invalid credentials or unauthorized email.")
	// ErrUnauthorized is returned for missing, unknown or expired tokens.
	ErrUnauthorized = errors.New("unauthorized")
)

// Session is an issued admin session.
type Session struct {
	Token     string    `json:"token"`
	Email     string    `json:"email"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Config lists the accepted admins.
type Config struct {
	Emails       []string
	PasswordHash string
	TTL          time.Duration
	Now          func() time.Time
}

// Authenticator checks credentials and tracks live sessions.
type Authenticator struct {
	emails map[string]bool
	hash   []byte
	ttl    time.Duration
	now    func() time.Time

	mu       sync.Mutex
	sessions map[string]Session
}

// New validates cfg. With no admins configured every login fails.
func New(cfg Config) (*Authenticator, error) {
	a := &Authenticator{
		emails:   map[string]bool{},
		ttl:      cfg.TTL,
		now:      cfg.Now,
		sessions: map[string]Session{},
	}
	if a.ttl <= 0 {
		a.ttl = DefaultTTL
	}
	if a.now == nil {
		a.now = time.Now
	}
	for _, email := range cfg.Emails {
		if email = normalizeEmail(email); email != "" {
			a.emails[email] = true
		}
	}
	if cfg.PasswordHash != "" {
		if _, err := bcrypt.Cost([]byte(cfg.PasswordHash)); err != nil {
			return nil, fmt.Errorf("admin password hash: %w", err)
		}
		a.hash = []byte(cfg.PasswordHash)
	}
	return a, nil
}

// Enabled reports whether any admin can log in.
func (a *Authenticator) Enabled() bool {
	return len(a.emails) > 0 && len(a.hash) > 0
}

// Login verifies email and password and issues a session.
func (a *Authenticator) Login(email, password string) (Session, error) {
	email = normalizeEmail(email)
	if !a.Enabled() || !a.emails[email] {
		return Session{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(a.hash, []byte(password)); err != nil {
		return Session{}, ErrInvalidCredentials
	}
	now := a.now()
	session := Session{
		Token:     uuid.NewString(),
		Email:     email,
		IssuedAt:  now,
		ExpiresAt: now.Add(a.ttl),
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pruneLocked(now)
	a.sessions[session.Token] = session
	return session, nil
}

// Authorize returns the live session for token.
func (a *Authenticator) Authorize(token string) (Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Session{}, ErrUnauthorized
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	session, ok := a.sessions[token]
	if !ok {
		return Session{}, ErrUnauthorized
	}
	if !a.now().Before(session.ExpiresAt) {
		delete(a.sessions, token)
		return Session{}, ErrUnauthorized
	}
	return session, nil
}

// Logout ends the session for token. Unknown tokens are ignored.
func (a *Authenticator) Logout(token string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.sessions, strings.TrimSpace(token))
}

func (a *Authenticator) pruneLocked(now time.Time) {
	for token, session := range a.sessions {
		if !now.Before(session.ExpiresAt) {
			delete(a.sessions, token)
		}
	}
}

// HashPassword returns a bcrypt hash suitable for EDUGENIUS_ADMIN_PASSWORD_HASH.
// Operators get one from `edugenius-server -hash-password <password>`.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
