/*
 * Package upload tracks the progress of a profile image upload as a small
 * state machine over the transport events emitted by the directory service.
 */
package upload

import (
	"fmt"
	"math"
	"time"

	"github.com/supportportal/portal-client/internal/models"
	"github.com/supportportal/portal-client/internal/notify"
	"github.com/supportportal/portal-client/pkg/debug"
)

// EventKind identifies a transport event during an upload
type EventKind int

const (
	// EventSent signals the request headers were written. No state change.
	EventSent EventKind = iota
	// EventProgress carries the bytes transferred so far
	EventProgress
	// EventResponse is the terminal event with the server's response
	EventResponse
	// EventError is the terminal event for a transport-level failure
	EventError
)

// Event is one transport event of an upload attempt
type Event struct {
	Kind       EventKind
	Loaded     int64
	Total      int64
	StatusCode int
	User       *models.User
	Err        error
}

// Status describes where an upload attempt currently stands
type Status string

const (
	StatusIdle     Status = "idle"
	StatusProgress Status = "progress"
	StatusDone     Status = "done"
)

// SessionCache is the slice of the authentication capability the tracker
// needs to refresh the session user's image URL after a successful upload
type SessionCache interface {
	CurrentUser() (*models.User, error)
	CacheUser(user *models.User) error
}

// Tracker reduces a stream of upload events into a displayable percentage
// and status. Exactly one terminal notification is emitted per attempt; the
// status stays done until Begin arms the next attempt.
type Tracker struct {
	percentage int
	status     Status
	notified   bool

	notifier *notify.Router
	session  SessionCache
	now      func() time.Time
}

// NewTracker creates an idle tracker
func NewTracker(notifier *notify.Router, session SessionCache) *Tracker {
	return &Tracker{
		status:   StatusIdle,
		notifier: notifier,
		session:  session,
		now:      time.Now,
	}
}

// Begin arms the tracker for a new upload attempt
func (t *Tracker) Begin() {
	t.percentage = 0
	t.status = StatusIdle
	t.notified = false
}

// Percentage returns the last computed progress percentage. On success the
// value is deliberately left where the final progress event put it rather
// than forced to 100.
func (t *Tracker) Percentage() int {
	return t.percentage
}

// Status returns the current attempt status
func (t *Tracker) Status() Status {
	return t.status
}

// Apply advances the state machine with one transport event
func (t *Tracker) Apply(ev Event) {
	switch ev.Kind {
	case EventProgress:
		if t.status == StatusDone {
			// Stale event after the terminal outcome
			return
		}
		pct := 0
		if ev.Total > 0 {
			pct = int(math.Round(100 * float64(ev.Loaded) / float64(ev.Total)))
		}
		if pct < 0 {
			pct = 0
		}
		if pct > 100 {
			pct = 100
		}
		if pct > t.percentage {
			t.percentage = pct
		}
		t.status = StatusProgress
		debug.Debug("Upload progress: %d%%", t.percentage)

	case EventResponse:
		if t.notified {
			return
		}
		t.status = StatusDone
		t.notified = true

		if ev.StatusCode == 200 && ev.User != nil {
			t.applySuccess(ev.User)
		} else {
			debug.Warning("Image upload rejected with status %d", ev.StatusCode)
			t.notifier.Notify(notify.Error, "Unable to upload image. Please try again")
		}

	case EventError:
		if t.notified {
			return
		}
		t.status = StatusDone
		t.notified = true
		debug.Error("Image upload failed: %v", ev.Err)
		t.notifier.Notify(notify.Error, models.ErrorMessage(ev.Err))

	default:
		// Other event kinds carry nothing the tracker cares about
	}
}

func (t *Tracker) applySuccess(updated *models.User) {
	// Cache-busting parameter so the UI refetches the changed image
	busted := fmt.Sprintf("%s?time=%d", updated.ProfileImageURL, t.now().UnixMilli())

	if user, err := t.session.CurrentUser(); err == nil {
		user.ProfileImageURL = busted
		if err := t.session.CacheUser(user); err != nil {
			debug.Error("Failed to cache updated session user: %v", err)
		}
	} else {
		debug.Warning("No session user to receive updated image URL: %v", err)
	}

	t.notifier.Notify(notify.Success,
		fmt.Sprintf("%s's profile image updated successfully", updated.FirstName))
}
