package guard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/goalpost/matchbooking/internal/session"
	"github.com/goalpost/matchbooking/internal/store"
)

func authedState() session.State {
	u := &store.User{ID: "u-1", Email: "fan@example.com"}
	return session.State{
		Session:     &store.Session{AccessToken: "t", ExpiresAt: time.Now().Add(time.Hour), User: u},
		User:        u,
		Initialized: true,
	}
}

func TestDecideNeverRedirectsBeforeInitialization(t *testing.T) {
	// Whatever User holds, an unsettled state must not produce a redirect.
	// This is what keeps a page refresh from bouncing a signed-in user to
	// the login view.
	cases := []session.State{
		{Loading: true},
		{Loading: true, Initialized: true},
		{},
		func() session.State {
			st := authedState()
			st.Initialized = false
			st.Loading = true
			return st
		}(),
	}
	for _, st := range cases {
		assert.Equal(t, Pending, Decide(st))
	}
}

func TestDecideRedirectsSettledAnonymous(t *testing.T) {
	st := session.State{Initialized: true}
	assert.Equal(t, RedirectToLogin, Decide(st))
}

func TestDecideAllowsSettledAuthenticated(t *testing.T) {
	assert.Equal(t, Allow, Decide(authedState()))
}

func TestDecideErrorStateStillRedirects(t *testing.T) {
	// A failed initialization settles anonymous; the guard treats it like
	// any other signed-out state rather than blocking forever.
	st := session.State{Initialized: true, LastError: session.KindStoreUnreachable}
	assert.Equal(t, RedirectToLogin, Decide(st))
}
