// Package session signs users in and owns the per-user state of each
// signed-in browser: its mirror, its syncer, its presence heartbeat and
// its mutation controller.
package session

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/MrSnakeDoc/kupovina/internal/sources"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrSessionNotFound    = errors.New("session not found")
)

// Authenticator checks passwords against the users file.
type Authenticator struct {
	hashes map[string][]byte
}

// NewAuthenticator builds an authenticator from loaded user entries.
func NewAuthenticator(users []sources.UserEntry) *Authenticator {
	hashes := make(map[string][]byte, len(users))
	for _, u := range users {
		hashes[u.Username] = []byte(u.PasswordHash)
	}
	return &Authenticator{hashes: hashes}
}

// LoadAuthenticator reads the users file at path.
func LoadAuthenticator(path string) (*Authenticator, error) {
	users, err := sources.NewUsersLoader(path).Load()
	if err != nil {
		return nil, err
	}
	return NewAuthenticator(users), nil
}

// Authenticate verifies the username and password.
func (a *Authenticator) Authenticate(username, password string) error {
	hash, ok := a.hashes[username]
	if !ok {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// Users returns the number of known accounts.
func (a *Authenticator) Users() int { return len(a.hashes) }

// HashPassword returns a bcrypt hash suitable for the users file.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password is empty")
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(h), nil
}
