/*
 * Package notify routes operation outcomes to a human-visible alert sink.
 */
package notify

import (
	"github.com/supportportal/portal-client/pkg/console"
	"github.com/supportportal/portal-client/pkg/debug"
)

// Severity classifies a notification
type Severity string

const (
	Success Severity = "SUCCESS"
	Error   Severity = "ERROR"
	Warning Severity = "WARNING"
	Info    Severity = "INFO"
)

// FallbackMessage replaces empty messages so the user never sees a blank alert
const FallbackMessage = "Something went wrong. Please try again"

// Sink receives fully resolved notifications for display
type Sink interface {
	Notify(severity Severity, message string)
}

// Router applies the default-message policy and forwards to a sink. Every
// outcome boundary in the client goes through Notify; nothing bypasses it.
type Router struct {
	sink Sink
}

// NewRouter creates a router over the given sink
func NewRouter(sink Sink) *Router {
	return &Router{sink: sink}
}

// Notify forwards message at the given severity, substituting the fallback
// text when the message is empty
func (r *Router) Notify(severity Severity, message string) {
	if message == "" {
		message = FallbackMessage
	}
	debug.Debug("Notification [%s]: %s", severity, message)
	r.sink.Notify(severity, message)
}

// ConsoleSink displays notifications on the terminal
type ConsoleSink struct{}

// Notify implements Sink
func (ConsoleSink) Notify(severity Severity, message string) {
	switch severity {
	case Success:
		console.Success("%s", message)
	case Error:
		console.Error("%s", message)
	case Warning:
		console.Warning("%s", message)
	default:
		console.Info("%s", message)
	}
}
