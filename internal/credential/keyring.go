// Package credential stores the API bearer token in the system keyring.
package credential

import (
	"errors"
	"fmt"
	"os"

	"github.com/99designs/keyring"
)

const serviceName = "taskboard"

// TokenKey is the keyring key holding the API bearer token.
const TokenKey = "api-token"

// TokenEnv overrides the keyring when set.
const TokenEnv = "TASKBOARD_TOKEN"

// openKeyring returns the system keyring, falling back to an encrypted
// file under ~/.config/taskboard.
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/taskboard/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("taskboard-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Store reads and writes the API token.
type Store struct {
	ring   keyring.Keyring
	getenv func(string) string
}

// NewStore wraps ring. The TASKBOARD_TOKEN environment variable still
// takes precedence on reads.
func NewStore(ring keyring.Keyring) *Store {
	return &Store{ring: ring, getenv: os.Getenv}
}

// Open returns a Store backed by the system keyring.
func Open() (*Store, error) {
	ring, err := openKeyring()
	if err != nil {
		return nil, err
	}
	return NewStore(ring), nil
}

// Token returns the API bearer token. The environment variable wins over
// the keyring. A token that was never stored yields "" and no error.
func (s *Store) Token() (string, error) {
	if v := s.getenv(TokenEnv); v != "" {
		return v, nil
	}
	item, err := s.ring.Get(TokenKey)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", TokenKey, err)
	}
	return string(item.Data), nil
}

// SetToken stores token in the keyring.
func (s *Store) SetToken(token string) error {
	err := s.ring.Set(keyring.Item{
		Key:   TokenKey,
		Data:  []byte(token),
		Label: "taskboard API token",
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", TokenKey, err)
	}
	return nil
}

// ClearToken removes the stored token. Clearing an absent token is not an
// error.
func (s *Store) ClearToken() error {
	err := s.ring.Remove(TokenKey)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting credential %q: %w", TokenKey, err)
	}
	return nil
}

// Token reads the token from the environment or the system keyring.
func Token() (string, error) {
	if v := os.Getenv(TokenEnv); v != "" {
		return v, nil
	}
	s, err := Open()
	if err != nil {
		return "", err
	}
	return s.Token()
}

// SetToken stores token in the system keyring.
func SetToken(token string) error {
	s, err := Open()
	if err != nil {
		return err
	}
	return s.SetToken(token)
}

// ClearToken removes the token from the system keyring.
func ClearToken() error {
	s, err := Open()
	if err != nil {
		return err
	}
	return s.ClearToken()
}
