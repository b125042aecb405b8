package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// APIError is a server-reported failure carrying the decoded error envelope
// when the response body held one
type APIError struct {
	StatusCode int
	Envelope   *APIResponse
}

// Error implements error
func (e *APIError) Error() string {
	if e.Envelope != nil && e.Envelope.Message != "" {
		return fmt.Sprintf("server returned status %d: %s", e.StatusCode, e.Envelope.Message)
	}
	return fmt.Sprintf("server returned status %d", e.StatusCode)
}

// ServerMessage returns the server-provided message, or empty when the body
// was malformed or carried none. Empty messages are replaced by the
// notification router's fallback text at the display boundary.
func (e *APIError) ServerMessage() string {
	if e.Envelope == nil {
		return ""
	}
	return e.Envelope.Message
}

// DecodeAPIError builds an APIError from a non-2xx response, attempting to
// decode the standard envelope from the body
func DecodeAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	data, err := io.ReadAll(resp.Body)
	if err == nil && len(data) > 0 {
		var envelope APIResponse
		if json.Unmarshal(data, &envelope) == nil {
			apiErr.Envelope = &envelope
		}
	}
	return apiErr
}

// ErrorMessage extracts the server message from err when it is an APIError,
// otherwise returns empty so callers fall back to the generic text
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.ServerMessage()
	}
	return ""
}
