package directory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/supportportal/portal-client/internal/config"
	"github.com/supportportal/portal-client/internal/models"
	"github.com/supportportal/portal-client/internal/store"
	"github.com/supportportal/portal-client/internal/upload"
)

func newTestService(t *testing.T, handler http.Handler) (*Service, *store.Store) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	st, err := store.New(t.TempDir())
	require.NoError(t, err)

	urls := &config.URLConfig{BaseURL: server.URL}
	return NewService(server.Client(), urls, st, nil), st
}

func testUsers() []models.User {
	return []models.User{
		{ID: 1, Username: "alice", FirstName: "Alice", LastName: "Archer", Email: "alice@example.com", Role: models.RoleAdmin, Active: true, NotLocked: true},
		{ID: 2, Username: "bob", FirstName: "Bob", LastName: "Baker", Email: "bob@example.com", Role: models.RoleUser, Active: true, NotLocked: true},
		{ID: 3, Username: "carol", FirstName: "Carol", LastName: "Cooper", Email: "carol@example.com", Role: models.RoleManager, Active: false, NotLocked: true},
	}
}

func TestListUsersCachesCollection(t *testing.T) {
	users := testUsers()

	svc, st := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/user/all", r.URL.Path)
		json.NewEncoder(w).Encode(users)
	}))

	got, err := svc.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 3)

	var cached []models.User
	require.NoError(t, st.Get(store.KeyUsers, &cached))
	assert.Equal(t, got, cached)

	fromService, err := svc.CachedUsers()
	require.NoError(t, err)
	assert.Equal(t, got, fromService)
}

func TestListUsersServerError(t *testing.T) {
	svc, st := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(models.APIResponse{
			HTTPStatusCode: 500,
			Message:        "An error occurred while processing the request",
		})
	}))

	_, err := svc.ListUsers(context.Background())
	require.Error(t, err)
	assert.Equal(t, "An error occurred while processing the request", models.ErrorMessage(err))

	// A failed fetch must not touch the cache
	assert.False(t, st.Has(store.KeyUsers))
}

func TestCachedUsersBeforeFirstFetch(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	_, err := svc.CachedUsers()
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCreateUser(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/user/add", r.URL.Path)

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Dave", r.FormValue("firstName"))
		assert.Equal(t, "true", r.FormValue("isActive"))
		assert.Empty(t, r.FormValue("currentUsername"))

		json.NewEncoder(w).Encode(models.User{
			ID: 4, Username: "dave", FirstName: "Dave", LastName: "Dunn",
		})
	}))

	form := BuildUserForm("", &models.User{
		FirstName: "Dave", LastName: "Dunn", Username: "dave",
		Email: "dave@example.com", Role: models.RoleUser, Active: true, NotLocked: true,
	}, nil)

	created, err := svc.CreateUser(context.Background(), form)
	require.NoError(t, err)
	assert.Equal(t, int64(4), created.ID)
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(models.APIResponse{
			HTTPStatusCode: 400,
			Message:        "Username already exists",
		})
	}))

	form := BuildUserForm("", &models.User{Username: "alice"}, nil)
	_, err := svc.CreateUser(context.Background(), form)
	require.Error(t, err)
	assert.Equal(t, "Username already exists", models.ErrorMessage(err))
}

func TestUpdateUserCarriesCorrelationKey(t *testing.T) {
	var gotCurrent, gotUsername string

	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user/update", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotCurrent = r.FormValue("currentUsername")
		gotUsername = r.FormValue("username")

		json.NewEncoder(w).Encode(models.User{ID: 1, Username: gotUsername})
	}))

	// The username field changes while the correlation key stays pre-edit
	form := BuildUserForm("alice", &models.User{Username: "alice_new"}, nil)
	updated, err := svc.UpdateUser(context.Background(), form)
	require.NoError(t, err)

	assert.Equal(t, "alice", gotCurrent)
	assert.Equal(t, "alice_new", gotUsername)
	assert.Equal(t, "alice_new", updated.Username)
}

func TestResetPassword(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/user/reset-password/alice@example.com", r.URL.Path)

		json.NewEncoder(w).Encode(models.APIResponse{
			HTTPStatusCode: 200,
			Message:        "An email with a new password was sent to: alice@example.com",
		})
	}))

	envelope, err := svc.ResetPassword(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Contains(t, envelope.Message, "alice@example.com")
}

func TestDeleteUser(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/user/delete/2", r.URL.Path)

		json.NewEncoder(w).Encode(models.APIResponse{
			HTTPStatusCode: 200,
			Message:        "User deleted successfully",
		})
	}))

	envelope, err := svc.DeleteUser(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "User deleted successfully", envelope.Message)
}

func TestAuthorizationHeader(t *testing.T) {
	var gotAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]models.User{})
	}))
	t.Cleanup(server.Close)

	st, err := store.New(t.TempDir())
	require.NoError(t, err)

	svc := NewService(server.Client(), &config.URLConfig{BaseURL: server.URL}, st,
		func() string { return "session-jwt" })

	_, err = svc.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer session-jwt", gotAuth)
}

func collectEvents(ch <-chan upload.Event) []upload.Event {
	var events []upload.Event
	for ev := range ch {
		events = append(events, ev)
	}
	return events
}

func TestUpdateProfileImageSuccess(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/user/update-profile-image", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "alice", r.FormValue("username"))

		json.NewEncoder(w).Encode(models.User{
			Username:        "alice",
			FirstName:       "Alice",
			ProfileImageURL: "http://host/user/image/profile/alice",
		})
	}))

	image := &ImageFile{Name: "avatar.png", Content: make([]byte, 64*1024)}
	events := collectEvents(svc.UpdateProfileImage(context.Background(), BuildProfileImageForm("alice", image)))

	require.NotEmpty(t, events)

	terminal := events[len(events)-1]
	assert.Equal(t, upload.EventResponse, terminal.Kind)
	assert.Equal(t, http.StatusOK, terminal.StatusCode)
	require.NotNil(t, terminal.User)
	assert.Equal(t, "Alice", terminal.User.FirstName)

	// All preceding events are progress with non-decreasing loaded counts
	var lastLoaded int64
	for _, ev := range events[:len(events)-1] {
		assert.Equal(t, upload.EventProgress, ev.Kind)
		assert.GreaterOrEqual(t, ev.Loaded, lastLoaded)
		assert.LessOrEqual(t, ev.Loaded, ev.Total)
		lastLoaded = ev.Loaded
	}
}

func TestUpdateProfileImageRejected(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(models.APIResponse{
			HTTPStatusCode: 400,
			Message:        "doc.pdf is not an image file. please upload an image",
		})
	}))

	image := &ImageFile{Name: "doc.pdf", Content: []byte("not an image")}
	events := collectEvents(svc.UpdateProfileImage(context.Background(), BuildProfileImageForm("alice", image)))

	require.NotEmpty(t, events)
	terminal := events[len(events)-1]
	assert.Equal(t, upload.EventResponse, terminal.Kind)
	assert.Equal(t, http.StatusBadRequest, terminal.StatusCode)
	assert.Nil(t, terminal.User)
}

func TestUpdateProfileImageTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	st, err := store.New(t.TempDir())
	require.NoError(t, err)
	svc := NewService(server.Client(), &config.URLConfig{BaseURL: server.URL}, st, nil)

	// Kill the server before the upload starts
	server.Close()

	image := &ImageFile{Name: "avatar.png", Content: []byte("bytes")}
	events := collectEvents(svc.UpdateProfileImage(context.Background(), BuildProfileImageForm("alice", image)))

	require.NotEmpty(t, events)
	terminal := events[len(events)-1]
	assert.Equal(t, upload.EventError, terminal.Kind)
	assert.Error(t, terminal.Err)
}

func TestUpdateProfileImageExactlyOneTerminalEvent(t *testing.T) {
	svc, _ := newTestService(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.User{Username: "alice", FirstName: "Alice"})
	}))

	image := &ImageFile{Name: "avatar.png", Content: make([]byte, 256*1024)}
	events := collectEvents(svc.UpdateProfileImage(context.Background(), BuildProfileImageForm("alice", image)))

	terminals := 0
	for _, ev := range events {
		if ev.Kind == upload.EventResponse || ev.Kind == upload.EventError {
			terminals++
		}
	}
	assert.Equal(t, 1, terminals)
}
