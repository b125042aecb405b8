/*
 * Package controller orchestrates the user directory screen: it triggers
 * fetches, holds selection and edit state, filters the cached collection,
 * drives image uploads through the progress tracker, and releases all
 * pending asynchronous work on teardown.
 */
package controller

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/supportportal/portal-client/internal/auth"
	"github.com/supportportal/portal-client/internal/directory"
	"github.com/supportportal/portal-client/internal/models"
	"github.com/supportportal/portal-client/internal/notify"
	"github.com/supportportal/portal-client/internal/upload"
	"github.com/supportportal/portal-client/pkg/debug"
)

// DirectoryService is the slice of the directory package the controller
// consumes, abstracted for testing
type DirectoryService interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	CachedUsers() ([]models.User, error)
	CreateUser(ctx context.Context, form *directory.UserForm) (*models.User, error)
	UpdateUser(ctx context.Context, form *directory.UserForm) (*models.User, error)
	ResetPassword(ctx context.Context, email string) (*models.APIResponse, error)
	DeleteUser(ctx context.Context, id int64) (*models.APIResponse, error)
	UpdateProfileImage(ctx context.Context, form *directory.UserForm) <-chan upload.Event
}

// UserController drives the user directory screen
type UserController struct {
	mu              sync.Mutex
	users           []models.User
	refreshing      bool
	selected        *models.User
	editDraft       models.User
	editUsername    string // pre-edit username, the update correlation key
	pendingImage    *directory.ImageFile
	sessionUser     *models.User

	service  DirectoryService
	notifier *notify.Router
	auth     auth.Authenticator
	tracker  *upload.Tracker
	title    *Title

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a controller over the given collaborators
func New(service DirectoryService, notifier *notify.Router, authn auth.Authenticator) *UserController {
	ctx, cancel := context.WithCancel(context.Background())

	c := &UserController{
		service:  service,
		notifier: notifier,
		auth:     authn,
		tracker:  upload.NewTracker(notifier, authn),
		title:    NewTitle("Users"),
		ctx:      ctx,
		cancel:   cancel,
	}

	if user, err := authn.CurrentUser(); err == nil {
		c.sessionUser = user
	} else {
		debug.Warning("Controller created without a session user: %v", err)
	}
	return c
}

// Title returns the screen heading broadcast
func (c *UserController) Title() *Title {
	return c.title
}

// ChangeTitle publishes a new screen heading
func (c *UserController) ChangeTitle(title string) {
	c.title.Set(title)
}

// Users returns the currently displayed (possibly filtered) sequence
func (c *UserController) Users() []models.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.User, len(c.users))
	copy(out, c.users)
	return out
}

// Refreshing reports whether a fetch is in flight
func (c *UserController) Refreshing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshing
}

// Selected returns the selected user, or nil
func (c *UserController) Selected() *models.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

// UploadStatus returns the current upload percentage and status
func (c *UserController) UploadStatus() (int, upload.Status) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tracker.Percentage(), c.tracker.Status()
}

// run executes fn on the controller's scope; the registration is released
// by Teardown
func (c *UserController) run(fn func(ctx context.Context)) {
	if c.ctx.Err() != nil {
		return
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		fn(c.ctx)
	}()
}

// apply mutates controller state under the lock unless the controller has
// been torn down. Outcome handlers route every mutation and notification
// through here so late results never touch released state.
func (c *UserController) apply(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ctx.Err() != nil {
		return
	}
	fn()
}

// Refresh fetches the user collection. A success notification is emitted
// only when showNotification is set; errors always notify.
func (c *UserController) Refresh(showNotification bool) {
	c.apply(func() { c.refreshing = true })

	c.run(func(ctx context.Context) {
		users, err := c.service.ListUsers(ctx)
		if err != nil {
			c.apply(func() {
				c.refreshing = false
				c.notifier.Notify(notify.Error, models.ErrorMessage(err))
			})
			return
		}

		c.apply(func() {
			c.users = users
			c.refreshing = false
			if showNotification {
				c.notifier.Notify(notify.Success,
					fmt.Sprintf("%d user(s) loaded successfully.", len(users)))
			}
		})
	})
}

// Search replaces the displayed sequence with every cached user whose
// first name, last name, username, or email contains term, ignoring case.
// An empty term matches the whole cached collection.
func (c *UserController) Search(term string) []models.User {
	cached, err := c.service.CachedUsers()
	if err != nil {
		cached = nil
	}

	needle := strings.ToLower(term)
	results := make([]models.User, 0, len(cached))
	for _, user := range cached {
		if strings.Contains(strings.ToLower(user.FirstName), needle) ||
			strings.Contains(strings.ToLower(user.LastName), needle) ||
			strings.Contains(strings.ToLower(user.Username), needle) ||
			strings.Contains(strings.ToLower(user.Email), needle) {
			results = append(results, user)
		}
	}

	c.apply(func() { c.users = results })
	return results
}

// SelectUser records the user whose details the view should show
func (c *UserController) SelectUser(user models.User) {
	c.apply(func() { c.selected = &user })
}

// EditUser captures the edit draft and the pre-edit username. The draft's
// username field may change before submission; the captured correlation key
// must not.
func (c *UserController) EditUser(user models.User) {
	c.apply(func() {
		c.editDraft = user
		c.editUsername = user.Username
	})
}

// EditDraft returns a pointer to the in-progress edit draft
func (c *UserController) EditDraft() *models.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	return &c.editDraft
}

// SetPendingImage stages a profile image for the next submission
func (c *UserController) SetPendingImage(image *directory.ImageFile) {
	c.apply(func() { c.pendingImage = image })
}

// AddUser submits a new user record built from user plus any staged image
func (c *UserController) AddUser(user models.User) {
	c.mu.Lock()
	form := directory.BuildUserForm("", &user, c.pendingImage)
	c.mu.Unlock()

	c.run(func(ctx context.Context) {
		created, err := c.service.CreateUser(ctx, form)
		if err != nil {
			c.apply(func() {
				c.pendingImage = nil
				c.notifier.Notify(notify.Error, models.ErrorMessage(err))
			})
			return
		}

		c.apply(func() {
			c.pendingImage = nil
			c.notifier.Notify(notify.Success,
				fmt.Sprintf("%s %s created successfully.", created.FirstName, created.LastName))
		})
		c.Refresh(false)
	})
}

// UpdateUser submits the current edit draft under the correlation key
// captured by EditUser
func (c *UserController) UpdateUser() {
	c.mu.Lock()
	draft := c.editDraft
	form := directory.BuildUserForm(c.editUsername, &draft, c.pendingImage)
	c.mu.Unlock()

	c.run(func(ctx context.Context) {
		updated, err := c.service.UpdateUser(ctx, form)
		if err != nil {
			c.apply(func() {
				c.pendingImage = nil
				c.notifier.Notify(notify.Error, models.ErrorMessage(err))
			})
			return
		}

		c.apply(func() {
			c.pendingImage = nil
			c.notifier.Notify(notify.Success,
				fmt.Sprintf("%s %s updated successfully.", updated.FirstName, updated.LastName))
		})
		c.Refresh(false)
	})
}

// UpdateCurrentUser submits changes to the session user's own record and
// re-caches the returned record on success
func (c *UserController) UpdateCurrentUser(user models.User) {
	current, err := c.auth.CurrentUser()
	if err != nil {
		c.apply(func() { c.notifier.Notify(notify.Error, "") })
		return
	}

	c.mu.Lock()
	c.refreshing = true
	form := directory.BuildUserForm(current.Username, &user, c.pendingImage)
	c.mu.Unlock()

	c.run(func(ctx context.Context) {
		updated, err := c.service.UpdateUser(ctx, form)
		if err != nil {
			c.apply(func() {
				c.refreshing = false
				c.pendingImage = nil
				c.notifier.Notify(notify.Error, models.ErrorMessage(err))
			})
			return
		}

		if err := c.auth.CacheUser(updated); err != nil {
			debug.Error("Failed to cache updated session user: %v", err)
		}

		c.apply(func() {
			c.refreshing = false
			c.pendingImage = nil
			c.sessionUser = updated
			c.notifier.Notify(notify.Success,
				fmt.Sprintf("%s %s updated successfully.", updated.FirstName, updated.LastName))
		})
		c.Refresh(false)
	})
}

// DeleteUser removes the user with the given id
func (c *UserController) DeleteUser(id int64) {
	c.run(func(ctx context.Context) {
		envelope, err := c.service.DeleteUser(ctx, id)
		if err != nil {
			c.apply(func() {
				c.notifier.Notify(notify.Error, models.ErrorMessage(err))
			})
			return
		}

		c.apply(func() {
			c.notifier.Notify(notify.Success, envelope.Message)
		})
		c.Refresh(false)
	})
}

// ResetPassword asks the backend to email a new password to the given
// address. Failures notify at WARNING severity, matching the original
// screen's softer treatment of this non-destructive flow.
func (c *UserController) ResetPassword(email string) {
	c.apply(func() { c.refreshing = true })

	c.run(func(ctx context.Context) {
		envelope, err := c.service.ResetPassword(ctx, email)
		if err != nil {
			c.apply(func() {
				c.refreshing = false
				c.notifier.Notify(notify.Warning, models.ErrorMessage(err))
			})
			return
		}

		c.apply(func() {
			c.refreshing = false
			c.notifier.Notify(notify.Success, envelope.Message)
		})
	})
}

// UpdateProfileImage uploads the staged image for the session user,
// forwarding every transport event to the progress tracker
func (c *UserController) UpdateProfileImage() {
	c.mu.Lock()
	user := c.sessionUser
	image := c.pendingImage
	c.mu.Unlock()

	if user == nil {
		c.apply(func() { c.notifier.Notify(notify.Error, "") })
		return
	}
	if image == nil {
		debug.Warning("No image staged for profile image update")
		return
	}

	form := directory.BuildProfileImageForm(user.Username, image)
	c.apply(func() { c.tracker.Begin() })

	c.run(func(ctx context.Context) {
		for ev := range c.service.UpdateProfileImage(ctx, form) {
			event := ev
			c.apply(func() { c.tracker.Apply(event) })
		}
		c.apply(func() { c.pendingImage = nil })
	})
}

// Logout ends the session
func (c *UserController) Logout() {
	if err := c.auth.Logout(); err != nil {
		c.apply(func() { c.notifier.Notify(notify.Error, "") })
		return
	}
	c.apply(func() {
		c.sessionUser = nil
		c.notifier.Notify(notify.Success, "You've been successfully logged out")
	})
}

func (c *UserController) sessionRole() models.Role {
	user, err := c.auth.CurrentUser()
	if err != nil {
		return ""
	}
	return user.Role
}

// IsAdmin reports whether the session user holds an admin role
func (c *UserController) IsAdmin() bool {
	return c.sessionRole().IsAdmin()
}

// IsManager reports whether the session user holds at least a manager role
func (c *UserController) IsManager() bool {
	return c.sessionRole().IsManager()
}

// IsAdminOrManager reports whether the session user may manage users
func (c *UserController) IsAdminOrManager() bool {
	return c.IsAdmin() || c.IsManager()
}

// Wait blocks until all in-flight operations have completed. Intended for
// command-line callers and tests.
func (c *UserController) Wait() {
	c.wg.Wait()
}

// Teardown releases every asynchronous registration. Outcomes resolving
// afterwards are dropped without touching controller state.
func (c *UserController) Teardown() {
	c.cancel()
	c.wg.Wait()
	debug.Debug("Controller torn down")
}
