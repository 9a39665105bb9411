// Package repository persists the session store's relational data.  The
// sentinel values here let the HTTP layer distinguish failure scenarios
// without string matching: ErrEmailExists maps to 409, ErrUnknownTable to
// 404, and so on.
package repository

import "errors"

// ErrEmailExists is returned when a sign-up collides with an existing
// identity.
var ErrEmailExists = errors.New("email already exists")

// ErrUnknownTable is returned by the table repository for collections the
// store does not serve.
var ErrUnknownTable = errors.New("unknown table")
