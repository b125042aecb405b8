package models

import "time"

// APIResponse is the operation-result envelope the backend returns for
// commands that do not yield a user record (delete, reset-password).
type APIResponse struct {
	HTTPStatusCode int       `json:"httpStatusCode"`
	HTTPStatus     string    `json:"httpStatus"`
	Reason         string    `json:"reason"`
	Message        string    `json:"message"`
	Timestamp      time.Time `json:"timestamp"`
}
