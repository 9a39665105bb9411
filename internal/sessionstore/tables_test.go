package sessionstore

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ctxFor(t *testing.T, method, target string) echo.Context {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	return echo.New().NewContext(req, rec)
}

func TestListTablesNamesServedCollections(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/rest/v1", nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	h := &Handler{}
	require.NoError(t, h.ListTables(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Tables []string `json:"tables"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"profiles", "teams", "stadiums", "matches", "bookings"}, body.Tables)
}

func TestConfirmRequiresEmail(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/auth/v1/confirm", strings.NewReader(`{"email":"  "}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)

	h := &Handler{}
	require.NoError(t, h.Confirm(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestParseQueryFiltersOrderLimit(t *testing.T) {
	c := ctxFor(t, http.MethodGet, "/rest/v1/bookings?user_id=eq.u-1&order=created_at.desc&limit=10")

	filters, orderCol, desc, limit := parseQuery(c)
	assert.Equal(t, map[string]any{"user_id": "u-1"}, filters)
	assert.Equal(t, "created_at", orderCol)
	assert.True(t, desc)
	assert.Equal(t, 10, limit)
}

func TestParseQueryIgnoresUnprefixedParams(t *testing.T) {
	c := ctxFor(t, http.MethodGet, "/rest/v1/matches?status=SCHEDULED&id=eq.3")

	filters, _, desc, limit := parseQuery(c)
	assert.Equal(t, map[string]any{"id": "3"}, filters, "params without the eq. prefix are not filters")
	assert.False(t, desc)
	assert.Zero(t, limit)
}

func TestWriteAllowedAnonymousProfilesInsertOnly(t *testing.T) {
	h := &Handler{}

	c := ctxFor(t, http.MethodPost, "/rest/v1/profiles")
	assert.True(t, h.writeAllowed(c, "profiles"), "profile rows are created right after sign-up, before a session exists")

	c = ctxFor(t, http.MethodPost, "/rest/v1/bookings")
	assert.False(t, h.writeAllowed(c, "bookings"))

	c = ctxFor(t, http.MethodPost, "/rest/v1/bookings")
	c.Set("user_id", "u-1")
	assert.True(t, h.writeAllowed(c, "bookings"))
}
