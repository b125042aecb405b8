package mocks

import (
	"context"
	"sync"

	"github.com/supportportal/portal-client/internal/directory"
	"github.com/supportportal/portal-client/internal/models"
	"github.com/supportportal/portal-client/internal/store"
	"github.com/supportportal/portal-client/internal/upload"
)

// DirectoryService implements the controller's directory interface with
// function fields for testing
type DirectoryService struct {
	mu sync.Mutex

	// Control behavior
	ListUsersFunc          func(ctx context.Context) ([]models.User, error)
	CachedUsersFunc        func() ([]models.User, error)
	CreateUserFunc         func(ctx context.Context, form *directory.UserForm) (*models.User, error)
	UpdateUserFunc         func(ctx context.Context, form *directory.UserForm) (*models.User, error)
	ResetPasswordFunc      func(ctx context.Context, email string) (*models.APIResponse, error)
	DeleteUserFunc         func(ctx context.Context, id int64) (*models.APIResponse, error)
	UpdateProfileImageFunc func(ctx context.Context, form *directory.UserForm) <-chan upload.Event

	// Backing collection for the default behaviors
	Users []models.User

	// Call tracking
	ListUsersCalls     int
	CreateUserCalls    int
	UpdateUserCalls    int
	ResetPasswordCalls int
	DeleteUserCalls    int
	LastForm           *directory.UserForm
}

// NewDirectoryService creates a mock backed by the given collection
func NewDirectoryService(users []models.User) *DirectoryService {
	return &DirectoryService{Users: users}
}

// ListUsers implements controller.DirectoryService
func (m *DirectoryService) ListUsers(ctx context.Context) ([]models.User, error) {
	m.mu.Lock()
	m.ListUsersCalls++
	m.mu.Unlock()

	if m.ListUsersFunc != nil {
		return m.ListUsersFunc(ctx)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.User, len(m.Users))
	copy(out, m.Users)
	return out, nil
}

// CachedUsers implements controller.DirectoryService
func (m *DirectoryService) CachedUsers() ([]models.User, error) {
	if m.CachedUsersFunc != nil {
		return m.CachedUsersFunc()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Users == nil {
		return nil, store.ErrNotFound
	}
	out := make([]models.User, len(m.Users))
	copy(out, m.Users)
	return out, nil
}

// CreateUser implements controller.DirectoryService
func (m *DirectoryService) CreateUser(ctx context.Context, form *directory.UserForm) (*models.User, error) {
	m.mu.Lock()
	m.CreateUserCalls++
	m.LastForm = form
	m.mu.Unlock()

	if m.CreateUserFunc != nil {
		return m.CreateUserFunc(ctx, form)
	}

	firstName, _ := form.Field("firstName")
	lastName, _ := form.Field("lastName")
	username, _ := form.Field("username")
	return &models.User{ID: 99, Username: username, FirstName: firstName, LastName: lastName}, nil
}

// UpdateUser implements controller.DirectoryService
func (m *DirectoryService) UpdateUser(ctx context.Context, form *directory.UserForm) (*models.User, error) {
	m.mu.Lock()
	m.UpdateUserCalls++
	m.LastForm = form
	m.mu.Unlock()

	if m.UpdateUserFunc != nil {
		return m.UpdateUserFunc(ctx, form)
	}

	firstName, _ := form.Field("firstName")
	lastName, _ := form.Field("lastName")
	username, _ := form.Field("username")
	return &models.User{ID: 1, Username: username, FirstName: firstName, LastName: lastName}, nil
}

// ResetPassword implements controller.DirectoryService
func (m *DirectoryService) ResetPassword(ctx context.Context, email string) (*models.APIResponse, error) {
	m.mu.Lock()
	m.ResetPasswordCalls++
	m.mu.Unlock()

	if m.ResetPasswordFunc != nil {
		return m.ResetPasswordFunc(ctx, email)
	}
	return &models.APIResponse{
		HTTPStatusCode: 200,
		Message:        "An email with a new password was sent to: " + email,
	}, nil
}

// DeleteUser implements controller.DirectoryService
func (m *DirectoryService) DeleteUser(ctx context.Context, id int64) (*models.APIResponse, error) {
	m.mu.Lock()
	m.DeleteUserCalls++
	m.mu.Unlock()

	if m.DeleteUserFunc != nil {
		return m.DeleteUserFunc(ctx, id)
	}
	return &models.APIResponse{HTTPStatusCode: 200, Message: "User deleted successfully"}, nil
}

// UpdateProfileImage implements controller.DirectoryService
func (m *DirectoryService) UpdateProfileImage(ctx context.Context, form *directory.UserForm) <-chan upload.Event {
	m.mu.Lock()
	m.LastForm = form
	m.mu.Unlock()

	if m.UpdateProfileImageFunc != nil {
		return m.UpdateProfileImageFunc(ctx, form)
	}

	events := make(chan upload.Event, 4)
	events <- upload.Event{Kind: upload.EventProgress, Loaded: 100, Total: 100}
	events <- upload.Event{Kind: upload.EventResponse, StatusCode: 200, User: &models.User{FirstName: "Mock"}}
	close(events)
	return events
}
