package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goalpost/matchbooking/internal/model"
)

func referenceGet(t *testing.T, h echo.HandlerFunc, target string, params ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	for i := 0; i+1 < len(params); i += 2 {
		c.SetParamNames(params[i])
		c.SetParamValues(params[i+1])
	}
	require.NoError(t, h(c))
	return rec
}

func TestPredictionsFeed(t *testing.T) {
	h := NewReferenceHandler()
	rec := referenceGet(t, h.Predictions, "/api/predictions")
	require.Equal(t, http.StatusOK, rec.Code)

	var preds []model.MatchPrediction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &preds))
	require.Len(t, preds, 3)
	assert.Equal(t, "Arsenal", preds[0].HomeTeam)
	assert.Equal(t, "2-1", preds[0].PredictedScore)
	assert.InDelta(t, 1.0, preds[0].WinProbability.Home+preds[0].WinProbability.Draw+preds[0].WinProbability.Away, 1e-9)

	// Wire field names match the feed's consumers.
	assert.Contains(t, rec.Body.String(), `"matchId"`)
	assert.Contains(t, rec.Body.String(), `"winProbability"`)
}

func TestPredictionByMatch(t *testing.T) {
	h := NewReferenceHandler()

	rec := referenceGet(t, h.PredictionByMatch, "/api/predictions/2", "matchId", "2")
	require.Equal(t, http.StatusOK, rec.Code)
	var p model.MatchPrediction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, uint64(2), p.MatchID)
	assert.Equal(t, "Liverpool", p.AwayTeam)

	rec = referenceGet(t, h.PredictionByMatch, "/api/predictions/99", "matchId", "99")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = referenceGet(t, h.PredictionByMatch, "/api/predictions/abc", "matchId", "abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStadiumCatalogPrices(t *testing.T) {
	h := NewReferenceHandler()
	rec := referenceGet(t, h.Stadiums, "/api/stadiums")
	require.Equal(t, http.StatusOK, rec.Code)

	var stadiums []model.Stadium
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stadiums))
	require.Len(t, stadiums, 5)
	assert.Equal(t, "Old Trafford", stadiums[0].Name)
	assert.Equal(t, uint32(5000), stadiums[0].PriceCents)
}

func TestCreateMatchAssignsNextID(t *testing.T) {
	h := NewReferenceHandler()

	body := `{"home_team":{"name":"Everton"},"away_team":{"name":"Fulham"},"date":"2026-10-03","time":"15:00"}`
	req := httptest.NewRequest(http.MethodPost, "/api/matches", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	require.NoError(t, h.CreateMatch(echo.New().NewContext(req, rec)))
	require.Equal(t, http.StatusCreated, rec.Code)

	var created model.Match
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, uint64(5), created.ID, "ids continue past the seeded fixtures")
	assert.Equal(t, "SCHEDULED", created.Status)

	got, ok := h.MatchByID(created.ID)
	require.True(t, ok)
	assert.Equal(t, "Everton", got.HomeTeam.Name)
}
