package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/goalpost/matchbooking/internal/store"
)

// AuthStore is the slice of the session store client the manager depends
// on.  *store.Client satisfies it; tests substitute fakes.
type AuthStore interface {
	GetSession(ctx context.Context) (*store.Session, error)
	SignUpWithPassword(ctx context.Context, email, password string, meta store.SignUpMetadata) (*store.User, error)
	SignInWithPassword(ctx context.Context, email, password string) (*store.Session, error)
	SignOut(ctx context.Context) error
	UpdateUser(ctx context.Context, patch store.UserPatch) error
	ApplySession(ctx context.Context, s *store.Session)
}

// ProfileStore writes the app-owned profile rows that shadow store
// identities.  The identity is the source of truth; profile writes are
// best-effort.
type ProfileStore interface {
	InsertProfile(ctx context.Context, p Profile) error
	UpdateProfile(ctx context.Context, userID string, patch map[string]any) error
}

// Profile is the row created in the profiles table at sign-up.
type Profile struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
	Phone       string `json:"phone,omitempty"`
}

// State mirrors the authentication status for consumers (route guard,
// handlers).  Session and User always change together; readers never see
// one without the other.
type State struct {
	Session     *store.Session
	User        *store.User
	Loading     bool
	Initialized bool
	LastError   Kind
}

// Authenticated reports whether a user is present.
func (s State) Authenticated() bool { return s.User != nil }

// Manager tracks the auth session for the lifetime of the process.  It is
// created once, initialized once, and closed on shutdown; there is no
// terminal state in between.  All state transitions replace the
// {Session, User} pair atomically under the mutex.
type Manager struct {
	auth     AuthStore
	profiles ProfileStore
	log      zerolog.Logger

	mu     sync.RWMutex
	state  State
	closed bool

	sub     *store.Subscription
	watch   chan State
	wg      sync.WaitGroup
	closeMu sync.Once
}

// NewManager builds a manager and registers exactly one listener on the
// notifier.  notifier may be nil when no change feed is available (tests,
// broker down); the manager then only reflects its own operations.
func NewManager(auth AuthStore, profiles ProfileStore, notifier store.Notifier, log zerolog.Logger) *Manager {
	m := &Manager{
		auth:     auth,
		profiles: profiles,
		log:      log,
		state:    State{Loading: true},
		watch:    make(chan State, 16),
	}
	if notifier != nil {
		m.sub = notifier.Subscribe()
		m.wg.Add(1)
		go m.listen()
	}
	return m
}

// State returns a copy of the current auth state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Watch delivers a State copy after every transition.  Slow consumers miss
// intermediate states, never the latest one for long: delivery is
// non-blocking and every transition re-publishes the full state.
func (m *Manager) Watch() <-chan State { return m.watch }

// Initialize asks the store for the current session and settles the state.
// Failures degrade to anonymous and are recorded, never raised: the app
// must come up even when the store is down.  The final step (Loading=false,
// Initialized=true) always runs, unless the manager was closed while the
// request was in flight, in which case the whole result is discarded.
func (m *Manager) Initialize(ctx context.Context) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.state.Loading = true
	m.publishLocked()
	m.mu.Unlock()

	s, err := m.auth.GetSession(ctx)

	m.mu.Lock()
	if m.closed {
		// Torn down mid-flight: do not apply to a dead state.
		m.mu.Unlock()
		return
	}
	switch {
	case err == nil:
		m.state.Session = s
		m.state.User = s.User
		m.state.LastError = KindNone
	case errors.Is(err, store.ErrNoSession):
		m.state.Session = nil
		m.state.User = nil
		m.state.LastError = KindNone
	default:
		m.state.Session = nil
		m.state.User = nil
		m.state.LastError = KindOf(err)
		m.log.Warn().Err(err).Msg("session init failed; continuing anonymous")
	}
	m.state.Loading = false
	m.state.Initialized = true
	m.publishLocked()
	m.mu.Unlock()
}

// SignUp registers an identity, then best-effort creates the matching
// profile row.  A profile failure is logged and swallowed: the identity is
// the source of truth and the user can still sign in.
func (m *Manager) SignUp(ctx context.Context, email, password, displayName, phone string) (*store.User, error) {
	u, err := m.auth.SignUpWithPassword(ctx, email, password, store.SignUpMetadata{
		DisplayName: displayName,
		Phone:       phone,
	})
	if err != nil {
		return nil, err
	}

	if m.profiles != nil {
		p := Profile{ID: u.ID, Email: u.Email, DisplayName: displayName, Phone: phone}
		if perr := m.profiles.InsertProfile(ctx, p); perr != nil {
			m.log.Warn().Err(perr).Str("user_id", u.ID).Msg("profile creation failed after sign-up")
		}
	}
	return u, nil
}

// SignIn exchanges credentials for a session and applies it.  Distinct
// failures: store.ErrInvalidCredentials, store.ErrEmailUnconfirmed, or the
// underlying error for anything else.  An unconfirmed email is an error
// the caller must handle; no session is ever fabricated around it.
func (m *Manager) SignIn(ctx context.Context, email, password string) error {
	s, err := m.auth.SignInWithPassword(ctx, email, password)
	if err != nil {
		return err
	}
	m.apply(s)
	return nil
}

// SignOut revokes the session at the store and clears the local pair.  A
// nil return signals the caller to navigate home; the manager itself never
// touches navigation.
func (m *Manager) SignOut(ctx context.Context) error {
	err := m.auth.SignOut(ctx)
	// The local pair is cleared regardless: a failed revoke must not leave
	// the app believing it is signed in.
	m.apply(nil)
	return err
}

// UpdateProfile patches the signed-in user's profile row.
func (m *Manager) UpdateProfile(ctx context.Context, patch map[string]any) error {
	st := m.State()
	if st.User == nil {
		return ErrNotAuthenticated
	}
	if m.profiles == nil {
		return nil
	}
	p := make(map[string]any, len(patch)+1)
	for k, v := range patch {
		p[k] = v
	}
	p["updated_at"] = time.Now().UTC()
	return m.profiles.UpdateProfile(ctx, st.User.ID, p)
}

// ChangePassword sets a new password on the signed-in identity.
func (m *Manager) ChangePassword(ctx context.Context, newPassword string) error {
	st := m.State()
	if st.User == nil {
		return ErrNotAuthenticated
	}
	return m.auth.UpdateUser(ctx, store.UserPatch{Password: &newPassword})
}

// Close unsubscribes from change notifications and marks the manager dead.
// Any in-flight Initialize result is discarded after this point.
func (m *Manager) Close() {
	m.closeMu.Do(func() {
		m.mu.Lock()
		m.closed = true
		close(m.watch) // publishes are guarded by closed under the same lock
		m.mu.Unlock()
		if m.sub != nil {
			m.sub.Unsubscribe()
		}
		m.wg.Wait()
	})
}

// listen applies change notifications.  Each event replaces the pair
// atomically and never re-runs Initialize.
func (m *Manager) listen() {
	defer m.wg.Done()
	for ev := range m.sub.C {
		switch ev.Type {
		case store.EventSignedIn, store.EventTokenRefreshed:
			m.apply(ev.Session)
		case store.EventSignedOut:
			m.apply(nil)
		default:
			m.log.Debug().Str("type", ev.Type).Msg("ignoring unknown auth event")
		}
	}
}

// apply replaces {Session, User} as a pair.  s == nil means anonymous.
func (m *Manager) apply(s *store.Session) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	if s != nil {
		m.state.Session = s
		m.state.User = s.User
	} else {
		m.state.Session = nil
		m.state.User = nil
	}
	m.state.Loading = false
	m.publishLocked()
	m.mu.Unlock()

	// Keep the store client's token copy in step with the notification so
	// table writes use the right bearer.
	m.auth.ApplySession(context.Background(), s)
}

// publishLocked sends the current state to watchers.  Callers must hold
// m.mu with m.closed == false; that invariant is what makes the send on a
// possibly-closed channel safe.
func (m *Manager) publishLocked() {
	select {
	case m.watch <- m.state:
	default:
	}
}
