// Package guard gates access to protected views based on the auth session
// state.  The one correctness-critical rule: never decide a redirect before
// initialization has completed, or a page refresh bounces a signed-in user
// to the login view.
package guard

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/goalpost/matchbooking/internal/session"
)

// Decision is the outcome of evaluating an auth state against a protected
// route.
type Decision int

const (
	// Pending means initialization has not settled yet; show a placeholder
	// and make no navigation decision.
	Pending Decision = iota
	// RedirectToLogin means the state is settled and anonymous.
	RedirectToLogin
	// Allow means the state is settled and authenticated.
	Allow
)

// Decide maps an auth state onto a gate decision.  The Loading /
// !Initialized check comes first unconditionally, regardless of what User
// holds at that moment.
func Decide(st session.State) Decision {
	if st.Loading || !st.Initialized {
		return Pending
	}
	if !st.Authenticated() {
		return RedirectToLogin
	}
	return Allow
}

// LoginPath is where anonymous requests to protected routes are sent.
const LoginPath = "/login"

// Protect returns Echo middleware gating a route group on the session
// manager's state.  Pending renders a placeholder (202) so clients retry
// once initialization settles; anonymous requests are redirected to the
// login view.
func Protect(m *session.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			switch Decide(m.State()) {
			case Pending:
				return c.JSON(http.StatusAccepted, echo.Map{"status": "initializing"})
			case RedirectToLogin:
				return c.Redirect(http.StatusFound, LoginPath)
			default:
				return next(c)
			}
		}
	}
}
