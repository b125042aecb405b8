package mocks

import (
	"sync"

	"github.com/supportportal/portal-client/internal/notify"
)

// NotificationCall records one delivered notification
type NotificationCall struct {
	Severity notify.Severity
	Message  string
}

// NotificationSink implements notify.Sink and records every call for testing
type NotificationSink struct {
	mu sync.Mutex

	// Control behavior
	NotifyFunc func(severity notify.Severity, message string)

	// Call tracking
	Calls []NotificationCall
}

// NewNotificationSink creates a new recording sink
func NewNotificationSink() *NotificationSink {
	return &NotificationSink{}
}

// Notify implements notify.Sink
func (m *NotificationSink) Notify(severity notify.Severity, message string) {
	m.mu.Lock()
	m.Calls = append(m.Calls, NotificationCall{Severity: severity, Message: message})
	m.mu.Unlock()

	if m.NotifyFunc != nil {
		m.NotifyFunc(severity, message)
	}
}

// CallCount returns the number of notifications delivered so far
func (m *NotificationSink) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// Last returns the most recent notification, or a zero value if none
func (m *NotificationSink) Last() NotificationCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return NotificationCall{}
	}
	return m.Calls[len(m.Calls)-1]
}

// BySeverity returns all recorded calls with the given severity
func (m *NotificationSink) BySeverity(severity notify.Severity) []NotificationCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []NotificationCall
	for _, c := range m.Calls {
		if c.Severity == severity {
			out = append(out, c)
		}
	}
	return out
}
