// Package auth implements the household login: a fixed set of credential
// pairs from configuration and in-memory session tokens. There are no
// authorization levels — a session only establishes who is logging entries.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"
	"sync"
	"time"
)

var ErrInvalidCredentials = errors.New("invalid username or password")

type session struct {
	user      string
	expiresAt time.Time
}

// Manager checks credentials and tracks active sessions. Sessions live in
// process memory only; a restart logs everyone out, which is acceptable for
// a two-person household app.
type Manager struct {
	mu       sync.Mutex
	users    map[string]string
	sessions map[string]session
	ttl      time.Duration
	now      func() time.Time
}

func NewManager(users map[string]string, ttl time.Duration) *Manager {
	return &Manager{
		users:    users,
		sessions: make(map[string]session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Login verifies the credential pair and returns a session token. Usernames
// are case-insensitive; comparison is constant-time.
func (m *Manager) Login(username, password string) (string, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	expected, ok := m.users[username]
	// Compare even on unknown users so timing does not leak which usernames
	// exist.
	if subtle.ConstantTimeCompare([]byte(expected), []byte(password)) != 1 || !ok {
		return "", ErrInvalidCredentials
	}

	token, err := newToken()
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[token] = session{
		user:      DisplayName(username),
		expiresAt: m.now().Add(m.ttl),
	}
	return token, nil
}

// UserFor resolves a session token to the logged-in user's display name.
func (m *Manager) UserFor(token string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[token]
	if !ok {
		return "", false
	}
	if m.now().After(s.expiresAt) {
		delete(m.sessions, token)
		return "", false
	}
	return s.user, true
}

// Logout invalidates the session token.
func (m *Manager) Logout(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
}

// DisplayName capitalizes a username for display and for the ledger's
// owner column ("ethan" -> "Ethan").
func DisplayName(username string) string {
	username = strings.TrimSpace(username)
	if username == "" {
		return ""
	}
	return strings.ToUpper(username[:1]) + strings.ToLower(username[1:])
}

func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
