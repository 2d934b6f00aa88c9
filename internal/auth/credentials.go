// Package auth checks users against a YAML credentials file with bcrypt
// password hashes.
package auth

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/akolanti/delphi/internal/domain/commonModels"
	"github.com/akolanti/delphi/pkg/logger_i"
)

// credentials file layout:
//
//	credentials:
//	  usernames:
//	    alice:
//	      name: Alice
//	      password: $2a$10$...
type credentialsFile struct {
	Credentials struct {
		Usernames map[string]userEntry `yaml:"usernames"`
	} `yaml:"credentials"`
}

type userEntry struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email,omitempty"`
	Password string `yaml:"password"`
}

var ErrNoUsers = errors.New("credentials file has no users")

type Authenticator struct {
	mu        sync.RWMutex
	users     map[string]userEntry
	adminUser string
	logger    *logger_i.Logger
}

// Load reads the credentials file at path. Entries whose password is not a
// bcrypt hash are refused; run HashPasswords on the file first.
func Load(path string, adminUser string) (*Authenticator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading credentials: %w", err)
	}
	return Parse(data, adminUser)
}

func Parse(data []byte, adminUser string) (*Authenticator, error) {
	var file credentialsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing credentials: %w", err)
	}
	a := &Authenticator{
		users:     map[string]userEntry{},
		adminUser: adminUser,
		logger:    logger_i.NewLogger("Auth"),
	}
	for username, entry := range file.Credentials.Usernames {
		if !isHashed(entry.Password) {
			a.logger.Warn("ignoring user with a plaintext password", "user", username)
			continue
		}
		a.users[username] = entry
	}
	if len(a.users) == 0 {
		return nil, ErrNoUsers
	}
	return a, nil
}

// Authenticate returns the identity of username when password matches.
func (a *Authenticator) Authenticate(username string, password string) (commonModels.Identity, bool) {
	a.mu.RLock()
	entry, ok := a.users[username]
	a.mu.RUnlock()
	if !ok {
		// same cost as a real comparison so unknown users are not told apart
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return commonModels.Identity{}, false
	}
	if err := bcrypt.CompareHashAndPassword([]byte(entry.Password), []byte(password)); err != nil {
		return commonModels.Identity{}, false
	}
	return a.identity(username, entry), true
}

// Lookup returns the identity of a known user without checking a password.
func (a *Authenticator) Lookup(username string) (commonModels.Identity, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	entry, ok := a.users[username]
	if !ok {
		return commonModels.Identity{}, false
	}
	return a.identity(username, entry), true
}

func (a *Authenticator) identity(username string, entry userEntry) commonModels.Identity {
	name := entry.Name
	if name == "" {
		name = username
	}
	return commonModels.Identity{
		Username: username,
		Name:     name,
		IsAdmin:  username == a.adminUser,
	}
}

var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("not-a-password"), bcrypt.MinCost)

func isHashed(password string) bool {
	for _, prefix := range []string{"$2a$", "$2b$", "$2y$"} {
		if strings.HasPrefix(password, prefix) {
			return true
		}
	}
	return false
}
