/*
 * Package directory performs the remote CRUD operations for portal users and
 * keeps the local cache store synchronized with confirmed server state.
 */
package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/supportportal/portal-client/internal/config"
	"github.com/supportportal/portal-client/internal/models"
	"github.com/supportportal/portal-client/internal/store"
	"github.com/supportportal/portal-client/internal/upload"
	"github.com/supportportal/portal-client/pkg/debug"
)

// TokenProvider supplies the session token for request authorization.
// A nil provider or empty token leaves requests unauthenticated.
type TokenProvider func() string

// Service performs user directory operations against the backend
type Service struct {
	client *http.Client
	urls   *config.URLConfig
	store  *store.Store
	token  TokenProvider
}

// NewService creates a directory service. token may be nil.
func NewService(client *http.Client, urls *config.URLConfig, st *store.Store, token TokenProvider) *Service {
	if client == nil {
		client = &http.Client{}
	}
	return &Service{client: client, urls: urls, store: st, token: token}
}

func (s *Service) authorize(req *http.Request) {
	if s.token == nil {
		return
	}
	if tok := s.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
}

// ListUsers fetches the full user collection and overwrites the cached copy
// on success. The cache is only ever written from a confirmed server
// response, never from partial local edits.
func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.urls.GetListUsersURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create list request: %w", err)
	}
	s.authorize(req)

	resp, err := s.client.Do(req)
	if err != nil {
		debug.Error("Failed to fetch users: %v", err)
		return nil, fmt.Errorf("failed to fetch users: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, models.DecodeAPIError(resp)
	}

	var users []models.User
	if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
		return nil, fmt.Errorf("failed to decode user list: %w", err)
	}

	if err := s.store.Put(store.KeyUsers, users); err != nil {
		debug.Error("Failed to cache user collection: %v", err)
		return nil, err
	}

	debug.Info("Fetched and cached %d user(s)", len(users))
	return users, nil
}

// CachedUsers returns the last fetched collection from the local cache.
// Returns store.ErrNotFound when no fetch has completed yet.
func (s *Service) CachedUsers() ([]models.User, error) {
	var users []models.User
	if err := s.store.Get(store.KeyUsers, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// CreateUser submits a new user record. The server assigns the id and emails
// a one-time password.
func (s *Service) CreateUser(ctx context.Context, form *UserForm) (*models.User, error) {
	return s.postUserForm(ctx, s.urls.GetAddUserURL(), form)
}

// UpdateUser submits changed profile fields. The form's currentUsername
// field is the correlation key locating the record server-side.
func (s *Service) UpdateUser(ctx context.Context, form *UserForm) (*models.User, error) {
	return s.postUserForm(ctx, s.urls.GetUpdateUserURL(), form)
}

func (s *Service) postUserForm(ctx context.Context, url string, form *UserForm) (*models.User, error) {
	body, contentType, err := form.Encode()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	s.authorize(req)

	resp, err := s.client.Do(req)
	if err != nil {
		debug.Error("User form submission failed: %v", err)
		return nil, fmt.Errorf("user form submission failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, models.DecodeAPIError(resp)
	}

	var user models.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode user response: %w", err)
	}
	return &user, nil
}

// ResetPassword asks the backend to email a new password to the account
// registered under email
func (s *Service) ResetPassword(ctx context.Context, email string) (*models.APIResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.urls.GetResetPasswordURL(email), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create reset request: %w", err)
	}
	s.authorize(req)

	return s.doEnvelope(req)
}

// DeleteUser removes the user with the given id
func (s *Service) DeleteUser(ctx context.Context, id int64) (*models.APIResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.urls.GetDeleteUserURL(id), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create delete request: %w", err)
	}
	s.authorize(req)

	return s.doEnvelope(req)
}

func (s *Service) doEnvelope(req *http.Request) (*models.APIResponse, error) {
	resp, err := s.client.Do(req)
	if err != nil {
		debug.Error("Request to %s failed: %v", req.URL, err)
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, models.DecodeAPIError(resp)
	}

	var envelope models.APIResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to decode response envelope: %w", err)
	}
	return &envelope, nil
}

// UpdateProfileImage uploads a new profile image, streaming progress events
// on the returned channel. The stream carries zero or more progress events
// and is terminated by exactly one response or error event, after which the
// channel is closed.
func (s *Service) UpdateProfileImage(ctx context.Context, form *UserForm) <-chan upload.Event {
	events := make(chan upload.Event, 64)

	go func() {
		defer close(events)

		attemptID := uuid.New().String()
		debug.Info("Starting profile image upload %s", attemptID)

		body, contentType, err := form.Encode()
		if err != nil {
			events <- upload.Event{Kind: upload.EventError, Err: err}
			return
		}

		total := int64(len(body))
		reader := &progressReader{
			r:     bytes.NewReader(body),
			total: total,
			emit: func(loaded, total int64) {
				// Progress events may be dropped when the channel is full
				select {
				case events <- upload.Event{Kind: upload.EventProgress, Loaded: loaded, Total: total}:
				default:
				}
			},
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.urls.GetUpdateProfileImageURL(), reader)
		if err != nil {
			events <- upload.Event{Kind: upload.EventError, Err: fmt.Errorf("failed to create upload request: %w", err)}
			return
		}
		req.ContentLength = total
		req.Header.Set("Content-Type", contentType)
		s.authorize(req)

		resp, err := s.client.Do(req)
		if err != nil {
			debug.Error("Upload %s failed before a response: %v", attemptID, err)
			events <- upload.Event{Kind: upload.EventError, Err: err}
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			apiErr := models.DecodeAPIError(resp)
			debug.Warning("Upload %s rejected: %v", attemptID, apiErr)
			events <- upload.Event{Kind: upload.EventResponse, StatusCode: resp.StatusCode}
			return
		}

		var user models.User
		if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
			events <- upload.Event{Kind: upload.EventError, Err: fmt.Errorf("failed to decode upload response: %w", err)}
			return
		}

		debug.Info("Upload %s completed for %s", attemptID, user.Username)
		events <- upload.Event{Kind: upload.EventResponse, StatusCode: resp.StatusCode, User: &user}
	}()

	return events
}
