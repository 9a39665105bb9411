// Package sessionstore is the development stand-in for the hosted session
// store service.  It speaks the same HTTP surface the store client
// consumes: the auth API under /auth/v1 and the table API under /rest/v1,
// backed by MySQL.  Auth-change events are broadcast on the auth.events
// fanout exchange so every live client session observes them.
package sessionstore

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/goalpost/matchbooking/internal/config"
	"github.com/goalpost/matchbooking/internal/repository"
	queue_publisher "github.com/goalpost/matchbooking/internal/service"
	"github.com/goalpost/matchbooking/internal/store"
	"github.com/goalpost/matchbooking/internal/utils"
)

// Handler bundles dependencies for the store endpoints.
type Handler struct {
	Cfg    config.SessionStore
	Users  *repository.UserRepo
	Tokens *repository.TokenRepo
	Tables *repository.TableRepo
}

func NewHandler(cfg config.SessionStore, u *repository.UserRepo, t *repository.TokenRepo, tb *repository.TableRepo) *Handler {
	return &Handler{Cfg: cfg, Users: u, Tokens: t, Tables: tb}
}

// ----- DTOs -----

type signUpReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Data     struct {
		DisplayName string `json:"display_name"`
		Phone       string `json:"phone"`
	} `json:"data"`
}

type passwordGrantReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type logoutReq struct {
	RefreshToken string `json:"refresh_token"`
}

type confirmReq struct {
	Email string `json:"email"`
}

type updateUserReq struct {
	Password    *string `json:"password"`
	DisplayName *string `json:"display_name"`
	AvatarURL   *string `json:"avatar_url"`
	Phone       *string `json:"phone"`
}

func wireUser(u repository.User) store.User {
	return store.User{
		ID:               u.ID,
		Email:            u.Email,
		DisplayName:      u.DisplayName,
		AvatarURL:        u.AvatarURL,
		Phone:            u.Phone,
		EmailConfirmedAt: u.EmailConfirmedAt,
	}
}

func apiErr(c echo.Context, status int, msg, code string) error {
	return c.JSON(status, echo.Map{"error": msg, "error_code": code})
}

// SignUp creates an identity and returns the wire user.  No session is
// issued here; the client signs in afterwards.
func (h *Handler) SignUp(c echo.Context) error {
	var req signUpReq
	if err := c.Bind(&req); err != nil {
		return apiErr(c, http.StatusBadRequest, "invalid body", "")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return apiErr(c, http.StatusBadRequest, "email/password required", "")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	uid, err := h.Users.Create(ctx, req.Email, req.Password, req.Data.DisplayName, req.Data.Phone, h.Cfg.BcryptCost, h.Cfg.AutoConfirm)
	if err != nil {
		if err == repository.ErrEmailExists {
			return apiErr(c, http.StatusConflict, "email already exists", "email_exists")
		}
		return apiErr(c, http.StatusInternalServerError, "create user failed", "")
	}

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return apiErr(c, http.StatusInternalServerError, "load user failed", "")
	}
	return c.JSON(http.StatusCreated, wireUser(u))
}

// Token handles POST /auth/v1/token?grant_type=password.  Unconfirmed
// identities are refused with a distinct error code; the client surfaces
// that instead of fabricating a session.
func (h *Handler) Token(c echo.Context) error {
	if c.QueryParam("grant_type") != "password" {
		return apiErr(c, http.StatusBadRequest, "unsupported grant_type", "")
	}
	var req passwordGrantReq
	if err := c.Bind(&req); err != nil {
		return apiErr(c, http.StatusBadRequest, "invalid body", "")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return apiErr(c, http.StatusBadRequest, "email/password required", "")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			return apiErr(c, http.StatusBadRequest, "invalid credentials", "invalid_credentials")
		}
		return apiErr(c, http.StatusInternalServerError, "query failed", "")
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return apiErr(c, http.StatusBadRequest, "invalid credentials", "invalid_credentials")
	}
	if u.EmailConfirmedAt == nil {
		return apiErr(c, http.StatusBadRequest, "email not confirmed", "email_not_confirmed")
	}

	sess, err := h.issueSession(ctx, u)
	if err != nil {
		return apiErr(c, http.StatusInternalServerError, "issue session failed", "")
	}

	// Broadcast so other live sessions of this user can pick the change up.
	_ = queue_publisher.PublishAuthEvent(ctx, store.AuthEvent{
		Type: store.EventSignedIn, UserID: u.ID, Session: sess,
	})
	return c.JSON(http.StatusOK, sess)
}

// Confirm marks an identity's email as confirmed.  With auto-confirm
// disabled this is the development stand-in for the hosted store's
// confirmation-link flow; confirming twice is a no-op.
func (h *Handler) Confirm(c echo.Context) error {
	var req confirmReq
	if err := c.Bind(&req); err != nil {
		return apiErr(c, http.StatusBadRequest, "invalid body", "")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" {
		return apiErr(c, http.StatusBadRequest, "email required", "")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			return apiErr(c, http.StatusNotFound, "unknown email", "")
		}
		return apiErr(c, http.StatusInternalServerError, "query failed", "")
	}
	if err := h.Users.ConfirmEmail(ctx, u.ID); err != nil {
		return apiErr(c, http.StatusInternalServerError, "confirm failed", "")
	}
	return c.NoContent(http.StatusNoContent)
}

// Logout revokes the presented refresh token and broadcasts the sign-out.
func (h *Handler) Logout(c echo.Context) error {
	var req logoutReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return apiErr(c, http.StatusBadRequest, "refresh_token required", "")
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	userID, err := h.Tokens.ValidateRefresh(ctx, hash)
	if err == nil {
		_ = h.Tokens.RevokeByHash(ctx, hash)
		_ = queue_publisher.PublishAuthEvent(ctx, store.AuthEvent{
			Type: store.EventSignedOut, UserID: userID,
		})
	}
	// An already-dead token still yields 204: logout is idempotent.
	return c.NoContent(http.StatusNoContent)
}

// GetUser returns the identity behind the bearer token.  The store client
// uses this to revalidate a recovered session.
func (h *Handler) GetUser(c echo.Context) error {
	uid, _ := c.Get("user_id").(string)
	if uid == "" {
		return apiErr(c, http.StatusUnauthorized, "invalid token", "")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if err == sql.ErrNoRows {
			return apiErr(c, http.StatusUnauthorized, "invalid token", "")
		}
		return apiErr(c, http.StatusInternalServerError, "load user failed", "")
	}
	return c.JSON(http.StatusOK, wireUser(u))
}

// UpdateUser applies a password and/or metadata patch to the caller's
// identity.  A password change revokes every refresh token the user holds.
func (h *Handler) UpdateUser(c echo.Context) error {
	uid, _ := c.Get("user_id").(string)
	if uid == "" {
		return apiErr(c, http.StatusUnauthorized, "invalid token", "")
	}
	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return apiErr(c, http.StatusBadRequest, "invalid body", "")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if req.Password != nil {
		if len(*req.Password) < 6 {
			return apiErr(c, http.StatusBadRequest, "password too short", "")
		}
		if err := h.Users.UpdatePassword(ctx, uid, *req.Password, h.Cfg.BcryptCost); err != nil {
			return apiErr(c, http.StatusInternalServerError, "update password failed", "")
		}
		_ = h.Tokens.RevokeAllForUser(ctx, uid)
	}

	displayName, avatarURL, phone := deref(req.DisplayName), deref(req.AvatarURL), deref(req.Phone)
	if displayName != "" || avatarURL != "" || phone != "" {
		if err := h.Users.UpdateMetadata(ctx, uid, displayName, avatarURL, phone); err != nil {
			return apiErr(c, http.StatusInternalServerError, "update metadata failed", "")
		}
	}

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return apiErr(c, http.StatusInternalServerError, "load user failed", "")
	}
	return c.JSON(http.StatusOK, wireUser(u))
}

func (h *Handler) issueSession(ctx context.Context, u repository.User) (*store.Session, error) {
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Email, h.Cfg.AccessTTLMin)
	if err != nil {
		return nil, err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return nil, err
	}
	if err := h.Tokens.StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return nil, err
	}
	wu := wireUser(u)
	return &store.Session{
		AccessToken:  access.Token,
		RefreshToken: refresh.Raw, // raw goes back to the client
		ExpiresAt:    access.Exp,
		User:         &wu,
	}, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
