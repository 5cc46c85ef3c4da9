// Package sources loads the YAML files the service is configured with.
package sources

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// UsersFile is the layout of the users file.
//
//	users:
//	  - username: Marko
//	    password_hash: $2a$10$...
type UsersFile struct {
	Users []UserEntry `yaml:"users"`
}

// UserEntry is one account. PasswordHash is a bcrypt hash.
type UserEntry struct {
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"password_hash"`
}

// UsersLoader handles loading and validation of the users file
type UsersLoader struct {
	filePath string
}

// NewUsersLoader creates a new users loader
func NewUsersLoader(filePath string) *UsersLoader {
	return &UsersLoader{
		filePath: filePath,
	}
}

// Load reads, parses and validates the users file.
func (l *UsersLoader) Load() ([]UserEntry, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read users file: %w", err)
	}

	var file UsersFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse users yaml: %w", err)
	}

	seen := make(map[string]bool, len(file.Users))
	for i, u := range file.Users {
		u.Username = strings.TrimSpace(u.Username)
		if u.Username == "" {
			return nil, fmt.Errorf("users[%d]: username is empty", i)
		}
		if u.PasswordHash == "" {
			return nil, fmt.Errorf("users[%d] (%s): password_hash is empty", i, u.Username)
		}
		if seen[u.Username] {
			return nil, fmt.Errorf("users[%d]: duplicate username %q", i, u.Username)
		}
		seen[u.Username] = true
		file.Users[i] = u
	}

	if len(file.Users) == 0 {
		return nil, fmt.Errorf("users file %s defines no users", l.filePath)
	}
	return file.Users, nil
}
