package mocks

import (
	"errors"
	"sync"

	"github.com/supportportal/portal-client/internal/models"
)

// Authenticator implements the auth.Authenticator interface with in-memory
// state for testing
type Authenticator struct {
	mu sync.Mutex

	// Control behavior
	CurrentUserFunc func() (*models.User, error)
	CacheUserFunc   func(user *models.User) error

	// State
	LoggedIn bool
	User     *models.User

	// Call tracking
	CacheUserCalls int
	LogoutCalls    int
}

// NewAuthenticator creates a mock authenticator with an optional session user
func NewAuthenticator(user *models.User) *Authenticator {
	return &Authenticator{
		LoggedIn: user != nil,
		User:     user,
	}
}

// IsLoggedIn implements auth.Authenticator
func (m *Authenticator) IsLoggedIn() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.LoggedIn
}

// CurrentUser implements auth.Authenticator
func (m *Authenticator) CurrentUser() (*models.User, error) {
	if m.CurrentUserFunc != nil {
		return m.CurrentUserFunc()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.User == nil {
		return nil, errors.New("no session user")
	}
	copied := *m.User
	return &copied, nil
}

// CacheUser implements auth.Authenticator
func (m *Authenticator) CacheUser(user *models.User) error {
	m.mu.Lock()
	m.CacheUserCalls++
	m.mu.Unlock()

	if m.CacheUserFunc != nil {
		return m.CacheUserFunc(user)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *user
	m.User = &copied
	return nil
}

// Logout implements auth.Authenticator
func (m *Authenticator) Logout() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LogoutCalls++
	m.LoggedIn = false
	m.User = nil
	return nil
}
