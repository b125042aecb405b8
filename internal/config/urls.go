/*
 * Package config provides configuration and URL handling for the
 * support-portal client.
 */
package config

import (
	"fmt"
	"net/url"
	"os"

	"github.com/supportportal/portal-client/pkg/debug"
)

// URLConfig holds the backend URL configuration
type URLConfig struct {
	BaseURL string // Base HTTP URL (http:// or https://)
}

// NewURLConfig creates a new URL configuration from environment variables
func NewURLConfig() *URLConfig {
	// Defaults match the backend's dev setup
	host := GetEnvOrDefault("PORTAL_HOST", "localhost")
	port := GetEnvOrDefault("PORTAL_PORT", "8081")

	useTLS := os.Getenv("USE_TLS") == "true"
	protocol := map[bool]string{true: "https", false: "http"}[useTLS]

	baseURL := fmt.Sprintf("%s://%s:%s", protocol, host, port)

	debug.Info("URL Configuration:")
	debug.Info("  Host: %s", host)
	debug.Info("  Port: %s", port)
	debug.Info("  TLS: %v", useTLS)
	debug.Info("  Base URL: %s", baseURL)

	return &URLConfig{BaseURL: baseURL}
}

// GetListUsersURL returns the URL for fetching all users
func (c *URLConfig) GetListUsersURL() string {
	return fmt.Sprintf("%s/user/all", c.BaseURL)
}

// GetAddUserURL returns the URL for creating a user
func (c *URLConfig) GetAddUserURL() string {
	return fmt.Sprintf("%s/user/add", c.BaseURL)
}

// GetUpdateUserURL returns the URL for updating a user
func (c *URLConfig) GetUpdateUserURL() string {
	return fmt.Sprintf("%s/user/update", c.BaseURL)
}

// GetResetPasswordURL returns the URL for resetting the password of the
// account registered under email
func (c *URLConfig) GetResetPasswordURL(email string) string {
	return fmt.Sprintf("%s/user/reset-password/%s", c.BaseURL, url.PathEscape(email))
}

// GetUpdateProfileImageURL returns the URL for the profile image upload
func (c *URLConfig) GetUpdateProfileImageURL() string {
	return fmt.Sprintf("%s/user/update-profile-image", c.BaseURL)
}

// GetDeleteUserURL returns the URL for deleting a user by id
func (c *URLConfig) GetDeleteUserURL(id int64) string {
	return fmt.Sprintf("%s/user/delete/%d", c.BaseURL, id)
}

// GetRegisterURL returns the URL for self-registration
func (c *URLConfig) GetRegisterURL() string {
	return fmt.Sprintf("%s/user/register", c.BaseURL)
}

// GetLoginURL returns the URL for authentication
func (c *URLConfig) GetLoginURL() string {
	return fmt.Sprintf("%s/user/login", c.BaseURL)
}
