// Package session owns the client-side authentication session lifecycle:
// the single source of truth for "is someone signed in, and who".
package session

import (
	"errors"

	"github.com/goalpost/matchbooking/internal/store"
)

// ErrNotAuthenticated is returned by operations that require a signed-in
// user when the state is anonymous.
var ErrNotAuthenticated = errors.New("not authenticated")

// Kind classifies an auth failure for display and for tests.  Handlers
// should prefer errors.Is against the sentinels; Kind exists for the state
// record and API payloads.
type Kind string

const (
	KindNone               Kind = ""
	KindStoreUnreachable   Kind = "store_unreachable"
	KindInvalidCredentials Kind = "invalid_credentials"
	KindEmailUnconfirmed   Kind = "email_unconfirmed"
	KindNotAuthenticated   Kind = "not_authenticated"
	KindUnknown            Kind = "unknown"
)

// KindOf maps an error onto the failure taxonomy.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, store.ErrUnreachable):
		return KindStoreUnreachable
	case errors.Is(err, store.ErrInvalidCredentials):
		return KindInvalidCredentials
	case errors.Is(err, store.ErrEmailUnconfirmed):
		return KindEmailUnconfirmed
	case errors.Is(err, ErrNotAuthenticated):
		return KindNotAuthenticated
	default:
		return KindUnknown
	}
}
