package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goalpost/matchbooking/internal/utils"
)

const testSecret = "test-secret"

func echoIdentity(c echo.Context) error {
	uid, _ := c.Get("user_id").(string)
	return c.String(http.StatusOK, uid)
}

func runMiddleware(t *testing.T, mw echo.MiddlewareFunc, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	require.NoError(t, mw(echoIdentity)(c))
	return rec
}

func TestJWTAuthAcceptsIssuedToken(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, "u-1", "fan@example.com", 15)
	require.NoError(t, err)

	rec := runMiddleware(t, JWTAuth(testSecret), "Bearer "+tok.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u-1", rec.Body.String())
}

func TestJWTAuthRejectsMissingAndBadTokens(t *testing.T) {
	rec := runMiddleware(t, JWTAuth(testSecret), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = runMiddleware(t, JWTAuth(testSecret), "Bearer not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	tok, err := utils.NewAccessToken("other-secret", "u-1", "fan@example.com", 15)
	require.NoError(t, err)
	rec = runMiddleware(t, JWTAuth(testSecret), "Bearer "+tok.Token)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOptionalJWTPassesAnonymousThrough(t *testing.T) {
	rec := runMiddleware(t, OptionalJWT(testSecret), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())

	// A bad token is treated as anonymous, not rejected.
	rec = runMiddleware(t, OptionalJWT(testSecret), "Bearer garbage")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestOptionalJWTInjectsValidIdentity(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, "u-2", "fan@example.com", 15)
	require.NoError(t, err)

	rec := runMiddleware(t, OptionalJWT(testSecret), "Bearer "+tok.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u-2", rec.Body.String())
}
