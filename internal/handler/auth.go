package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/goalpost/matchbooking/internal/session"
	"github.com/goalpost/matchbooking/internal/store"
)

// AuthHandler exposes the session manager over HTTP: sign-up, sign-in,
// sign-out, and the profile operations of the signed-in user.
type AuthHandler struct {
	Sessions *session.Manager
}

// NewAuthHandler wires the handler to the process-wide session manager.
func NewAuthHandler(m *session.Manager) *AuthHandler {
	return &AuthHandler{Sessions: m}
}

type registerReq struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
	Phone       string `json:"phone"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type profileReq struct {
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
	Phone       string `json:"phone"`
}

type passwordReq struct {
	NewPassword string `json:"new_password"`
}

// stateView is the auth state as serialized to clients.  The access token
// never leaves the process; only its presence does.
type stateView struct {
	Authenticated bool        `json:"authenticated"`
	Loading       bool        `json:"loading"`
	Initialized   bool        `json:"initialized"`
	User          *store.User `json:"user,omitempty"`
	LastError     string      `json:"last_error,omitempty"`
	ExpiresAt     *time.Time  `json:"expires_at,omitempty"`
}

func viewOf(st session.State) stateView {
	v := stateView{
		Authenticated: st.Authenticated(),
		Loading:       st.Loading,
		Initialized:   st.Initialized,
		User:          st.User,
		LastError:     string(st.LastError),
	}
	if st.Session != nil {
		exp := st.Session.ExpiresAt
		v.ExpiresAt = &exp
	}
	return v
}

// authErr maps a session operation failure onto an HTTP response, keyed by
// the failure taxonomy so clients can branch without parsing messages.
func authErr(c echo.Context, err error) error {
	kind := session.KindOf(err)
	status := http.StatusInternalServerError
	switch kind {
	case session.KindInvalidCredentials, session.KindNotAuthenticated:
		status = http.StatusUnauthorized
	case session.KindEmailUnconfirmed:
		status = http.StatusForbidden
	case session.KindStoreUnreachable:
		status = http.StatusBadGateway
	}
	if errors.Is(err, store.ErrEmailExists) {
		status = http.StatusConflict
		kind = "email_exists"
	}
	return c.JSON(status, echo.Map{"error": err.Error(), "kind": string(kind)})
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Sessions.SignUp(ctx, req.Email, req.Password, req.DisplayName, req.Phone)
	if err != nil {
		return authErr(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"user": u})
}

// Login handles POST /auth/login.  On success the new state is returned;
// on failure the previous state is untouched and only the error is
// reported.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Sessions.SignIn(ctx, req.Email, req.Password); err != nil {
		return authErr(c, err)
	}
	return c.JSON(http.StatusOK, viewOf(h.Sessions.State()))
}

// Logout handles POST /auth/logout.  The local session is always cleared;
// a nil error doubles as the signal to navigate back to the home view.
func (h *AuthHandler) Logout(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Sessions.SignOut(ctx); err != nil {
		return authErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "signed out", "redirect": "/"})
}

// AuthState handles GET /auth/state.  It is served unguarded: the whole
// point is letting clients poll until initialization settles.
func (h *AuthHandler) AuthState(c echo.Context) error {
	return c.JSON(http.StatusOK, viewOf(h.Sessions.State()))
}

// StreamState handles GET /auth/state/stream: the current auth state as a
// server-sent event, then one event per transition from the manager's
// watch channel.  Clients use it instead of polling to react to sign-in
// and sign-out as they happen, including ones triggered by another
// session.
func (h *AuthHandler) StreamState(c echo.Context) error {
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.WriteHeader(http.StatusOK)

	send := func(st session.State) error {
		bs, err := json.Marshal(viewOf(st))
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(res, "data: %s\n\n", bs); err != nil {
			return err
		}
		res.Flush()
		return nil
	}

	if err := send(h.Sessions.State()); err != nil {
		return nil
	}
	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case st, ok := <-h.Sessions.Watch():
			if !ok {
				// Manager closed; the stream ends with the process.
				return nil
			}
			if err := send(st); err != nil {
				return nil
			}
		}
	}
}

// Me handles GET /me and returns the signed-in user.
func (h *AuthHandler) Me(c echo.Context) error {
	st := h.Sessions.State()
	if !st.Authenticated() {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
	}
	return c.JSON(http.StatusOK, echo.Map{"user": st.User})
}

// UpdateProfile handles PUT /me/profile.  The patch is applied to the
// store identity and shadowed into the profiles table.
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	var req profileReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	patch := map[string]any{}
	if req.DisplayName != "" {
		patch["display_name"] = req.DisplayName
	}
	if req.AvatarURL != "" {
		patch["avatar_url"] = req.AvatarURL
	}
	if req.Phone != "" {
		patch["phone"] = req.Phone
	}
	if len(patch) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nothing to update"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Sessions.UpdateProfile(ctx, patch); err != nil {
		return authErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": h.Sessions.State().User})
}

// ChangePassword handles PUT /me/password.
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	var req passwordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if len(req.NewPassword) < 6 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 6 characters"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Sessions.ChangePassword(ctx, req.NewPassword); err != nil {
		return authErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "password updated"})
}
