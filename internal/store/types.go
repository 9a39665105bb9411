// Package store is the client for the external session store service: the
// hosted auth/database system that owns identities, session tokens and the
// relational tables (profiles, teams, stadiums, matches, bookings).  The
// rest of the app treats it as an opaque collaborator; nothing here caches
// business data beyond the caller's own session tokens.
package store

import "time"

// User is the identity record owned by the session store.  The app
// references users but never owns them.
type User struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	DisplayName      string     `json:"display_name,omitempty"`
	AvatarURL        string     `json:"avatar_url,omitempty"`
	Phone            string     `json:"phone,omitempty"`
	EmailConfirmedAt *time.Time `json:"email_confirmed_at,omitempty"`
}

// Session is the token bundle issued by the session store.  Its validity
// lifetime is controlled by the store; the client only carries it.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         *User     `json:"user"`
}

// UserPatch is a partial update applied through UpdateUser.  Nil fields are
// left untouched.
type UserPatch struct {
	Password    *string `json:"password,omitempty"`
	DisplayName *string `json:"display_name,omitempty"`
	AvatarURL   *string `json:"avatar_url,omitempty"`
	Phone       *string `json:"phone,omitempty"`
}

// SignUpMetadata carries the optional profile fields collected at
// registration.
type SignUpMetadata struct {
	DisplayName string `json:"display_name,omitempty"`
	Phone       string `json:"phone,omitempty"`
}

// Auth change event types, mirroring what the store broadcasts.
const (
	EventSignedIn       = "SIGNED_IN"
	EventSignedOut      = "SIGNED_OUT"
	EventTokenRefreshed = "TOKEN_REFRESHED"
)

// AuthEvent is an asynchronous session-change notification.  Session is nil
// for sign-out and expiry events.
type AuthEvent struct {
	Type    string   `json:"type"`
	UserID  string   `json:"user_id,omitempty"`
	Session *Session `json:"session,omitempty"`
}
