/*
 * Package auth provides the authentication capability for the portal client:
 * session state backed by the local cache store plus the login and
 * registration calls against the backend.
 */
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/supportportal/portal-client/internal/config"
	"github.com/supportportal/portal-client/internal/models"
	"github.com/supportportal/portal-client/internal/store"
	"github.com/supportportal/portal-client/pkg/debug"
)

// JWTTokenHeader is the response header the backend uses to deliver the
// session token on login
const JWTTokenHeader = "Jwt-Token"

// Authenticator is the session capability consumed by the rest of the client
type Authenticator interface {
	IsLoggedIn() bool
	CurrentUser() (*models.User, error)
	CacheUser(user *models.User) error
	Logout() error
}

// Client implements Authenticator over the shared cache store and performs
// login/registration against the backend
type Client struct {
	http  *http.Client
	urls  *config.URLConfig
	store *store.Store
}

// NewClient creates an authentication client
func NewClient(httpClient *http.Client, urls *config.URLConfig, st *store.Store) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{http: httpClient, urls: urls, store: st}
}

// IsLoggedIn reports whether a session token is cached
func (c *Client) IsLoggedIn() bool {
	return c.store.Has(store.KeyToken)
}

// CurrentUser returns the cached session user record
func (c *Client) CurrentUser() (*models.User, error) {
	var user models.User
	if err := c.store.Get(store.KeyUser, &user); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, errors.New("no user in session")
		}
		return nil, err
	}
	return &user, nil
}

// CacheUser replaces the cached session user record
func (c *Client) CacheUser(user *models.User) error {
	return c.store.Put(store.KeyUser, user)
}

// Token returns the cached session token, or empty when logged out
func (c *Client) Token() string {
	var token string
	if err := c.store.Get(store.KeyToken, &token); err != nil {
		return ""
	}
	return token
}

// Logout drops the session token and user record from the cache
func (c *Client) Logout() error {
	if err := c.store.Delete(store.KeyToken); err != nil {
		return err
	}
	if err := c.store.Delete(store.KeyUser); err != nil {
		return err
	}
	debug.Info("Session cleared")
	return nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates against the backend, caching the returned token and
// user record on success
func (c *Client) Login(ctx context.Context, username, password string) (*models.User, error) {
	body, err := json.Marshal(loginRequest{Username: username, Password: password})
	if err != nil {
		return nil, fmt.Errorf("failed to encode login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.urls.GetLoginURL(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		debug.Error("Login request failed: %v", err)
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, models.DecodeAPIError(resp)
	}

	var user models.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("failed to decode login response: %w", err)
	}

	token := resp.Header.Get(JWTTokenHeader)
	if token == "" {
		return nil, errors.New("login response missing token header")
	}

	if err := c.store.Put(store.KeyToken, token); err != nil {
		return nil, err
	}
	if err := c.CacheUser(&user); err != nil {
		return nil, err
	}

	debug.Info("Logged in as %s", user.Username)
	return &user, nil
}

// Register creates a new account. The backend emails the temporary password;
// the response carries the created user record.
func (c *Client) Register(ctx context.Context, user *models.User) (*models.User, error) {
	body, err := json.Marshal(user)
	if err != nil {
		return nil, fmt.Errorf("failed to encode registration request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.urls.GetRegisterURL(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create registration request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		debug.Error("Registration request failed: %v", err)
		return nil, fmt.Errorf("registration request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, models.DecodeAPIError(resp)
	}

	var created models.User
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("failed to decode registration response: %w", err)
	}

	debug.Info("Registered new account %s", created.Username)
	return &created, nil
}
