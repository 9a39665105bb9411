package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goalpost/matchbooking/internal/session"
	"github.com/goalpost/matchbooking/internal/store"
)

// scriptedAuth is a minimal session.AuthStore for handler tests.
type scriptedAuth struct {
	session *store.Session
}

func (a *scriptedAuth) GetSession(ctx context.Context) (*store.Session, error) {
	if a.session == nil {
		return nil, store.ErrNoSession
	}
	return a.session, nil
}

func (a *scriptedAuth) SignUpWithPassword(ctx context.Context, email, password string, meta store.SignUpMetadata) (*store.User, error) {
	return a.session.User, nil
}

func (a *scriptedAuth) SignInWithPassword(ctx context.Context, email, password string) (*store.Session, error) {
	if a.session == nil {
		return nil, store.ErrInvalidCredentials
	}
	return a.session, nil
}

func (a *scriptedAuth) SignOut(ctx context.Context) error                      { return nil }
func (a *scriptedAuth) UpdateUser(ctx context.Context, p store.UserPatch) error { return nil }
func (a *scriptedAuth) ApplySession(ctx context.Context, s *store.Session)      {}

func signedInSession() *store.Session {
	return &store.Session{
		AccessToken: "access",
		ExpiresAt:   time.Now().Add(time.Hour),
		User:        &store.User{ID: "u-1", Email: "fan@example.com"},
	}
}

func TestStreamStateDeliversTransitions(t *testing.T) {
	m := session.NewManager(&scriptedAuth{session: signedInSession()}, nil, nil, zerolog.Nop())
	defer m.Close()
	m.Initialize(context.Background())
	require.NoError(t, m.SignIn(context.Background(), "fan@example.com", "pw"))

	h := NewAuthHandler(m)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/auth/state/stream", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	require.NoError(t, h.StreamState(c))

	assert.Equal(t, "text/event-stream", rec.Header().Get(echo.HeaderContentType))
	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "data: "), "stream opens with the current state")
	assert.Contains(t, body, `"authenticated":true`)
	// Initialization and sign-in were published before the stream attached;
	// the buffered transitions are replayed after the opening snapshot.
	assert.GreaterOrEqual(t, strings.Count(body, "data: "), 2)
}

func TestStreamStateEndsWhenManagerCloses(t *testing.T) {
	m := session.NewManager(&scriptedAuth{}, nil, nil, zerolog.Nop())
	m.Initialize(context.Background())
	h := NewAuthHandler(m)

	req := httptest.NewRequest(http.MethodGet, "/auth/state/stream", nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	done := make(chan error, 1)
	go func() { done <- h.StreamState(c) }()

	time.Sleep(20 * time.Millisecond)
	m.Close()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("stream did not end after the manager closed")
	}
	assert.Contains(t, rec.Body.String(), `"initialized":true`)
}
