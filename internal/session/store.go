package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// ErrNotLoggedIn is returned when no saved credentials exist.
var ErrNotLoggedIn = errors.New("not logged in")

// Credentials is the operator identity issued by /auth/login.
type Credentials struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	Username    string `json:"username"`
}

func (c Credentials) Valid() bool {
	return strings.TrimSpace(c.AccessToken) != ""
}

// Store persists credentials in a session file between invocations. It is the
// single owner of the operator identity: initialized on login, torn down on
// logout or on the first 401 from the API.
type Store struct {
	path   string
	logger *zap.Logger

	mu      sync.Mutex
	current *Credentials
}

func NewStore(path string, logger *zap.Logger) *Store {
	return &Store{
		path:   path,
		logger: logger.Named("session"),
	}
}

// Load returns the saved credentials, reading the session file once and
// caching the result for the life of the process.
func (s *Store) Load() (Credentials, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		return *s.current, nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Credentials{}, ErrNotLoggedIn
		}
		return Credentials{}, fmt.Errorf("read session file: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return Credentials{}, fmt.Errorf("parse session file: %w", err)
	}
	if !creds.Valid() {
		return Credentials{}, ErrNotLoggedIn
	}

	s.current = &creds
	return creds, nil
}

func (s *Store) Save(creds Credentials) error {
	if !creds.Valid() {
		return errors.New("refusing to save empty credentials")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create session dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}

	s.current = &creds
	s.logger.Info("session saved", zap.String("username", creds.Username), zap.String("role", creds.Role))
	return nil
}

// Clear removes the session file. Called on logout and after a 401 so the
// next command forces a fresh login.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = nil
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	s.logger.Info("session cleared")
	return nil
}
