// Sentinel errors shared by the store client and the layers above it.
// Handlers and the session manager distinguish failure modes by matching
// these with errors.Is rather than by inspecting messages.
package store

import "errors"

// ErrUnreachable is returned when the store cannot be reached at all:
// transport failures, timeouts, or the placeholder configuration. Callers
// degrade to anonymous rather than crash.
var ErrUnreachable = errors.New("session store unreachable")

// ErrInvalidCredentials is returned when the store rejects an email/password
// pair.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrEmailUnconfirmed is returned when the store refuses sign-in because the
// identity exists but its email was never confirmed.  This is surfaced
// distinctly so the caller can decide policy; the client never fabricates a
// session around it.
var ErrEmailUnconfirmed = errors.New("email not confirmed")

// ErrNoSession is returned by GetSession when no session is current.  It is
// an expected outcome, not a failure.
var ErrNoSession = errors.New("no active session")

// Wire error codes used by the session store service.
const (
	codeInvalidCredentials = "invalid_credentials"
	codeEmailUnconfirmed   = "email_not_confirmed"
	codeEmailExists        = "email_exists"
)

// ErrEmailExists is returned by SignUp when the address is already
// registered.
var ErrEmailExists = errors.New("email already registered")
