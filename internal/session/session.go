// Package session holds the bearer token of a signed-in user. The token is
// the only durable client state and is passed explicitly to whatever needs it.
package session

import (
	"errors"
	"strings"
	"sync"
)

// NoTokenMessage is shown to the user when an authenticated call has no token
const NoTokenMessage = "No access token found."

// ErrNoToken is returned for authenticated calls made without a token
var ErrNoToken = errors.New("no access token found")

// Store persists the token between requests or commands
type Store interface {
	// Load returns "" with a nil error when no token is stored
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// Session is the token lifecycle over a Store: Begin at sign-in, End at logout
type Session struct {
	store Store
}

// New creates a session over store
func New(store Store) *Session {
	return &Session{store: store}
}

// Begin stores the token issued at sign-in
func (s *Session) Begin(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrNoToken
	}
	return s.store.Save(token)
}

// End forgets the token. Logout is local only.
func (s *Session) End() error {
	return s.store.Clear()
}

// Token returns the stored token or ErrNoToken
func (s *Session) Token() (string, error) {
	token, err := s.store.Load()
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", ErrNoToken
	}
	return token, nil
}

// Active reports whether a token is stored
func (s *Session) Active() bool {
	_, err := s.Token()
	return err == nil
}

// MemoryStore keeps the token in memory
type MemoryStore struct {
	mu    sync.Mutex
	token string
}

func (m *MemoryStore) Load() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *MemoryStore) Save(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *MemoryStore) Clear() error {
	return m.Save("")
}
