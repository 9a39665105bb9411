package handler

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/goalpost/matchbooking/internal/model"
)

// ReferenceHandler serves the match, stadium, and live-score catalogs.
// The data is a static fixture seeded at startup; POST /api/matches lets
// operators append fixtures at runtime, nothing is persisted.
type ReferenceHandler struct {
	mu          sync.RWMutex
	matches     []model.Match
	stadiums    []model.Stadium
	scores      []model.LiveScore
	predictions []model.MatchPrediction
	nextID      uint64
}

// NewReferenceHandler builds the handler with the seeded catalog.
func NewReferenceHandler() *ReferenceHandler {
	matches := seedMatches()
	var max uint64
	for _, m := range matches {
		if m.ID > max {
			max = m.ID
		}
	}
	return &ReferenceHandler{
		matches:     matches,
		stadiums:    seedStadiums(),
		scores:      seedScores(),
		predictions: seedPredictions(),
		nextID:      max + 1,
	}
}

// Stadiums handles GET /api/stadiums.
func (h *ReferenceHandler) Stadiums(c echo.Context) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return c.JSON(http.StatusOK, h.stadiums)
}

// Matches handles GET /api/matches.
func (h *ReferenceHandler) Matches(c echo.Context) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return c.JSON(http.StatusOK, h.matches)
}

// Scores handles GET /api/scores.
func (h *ReferenceHandler) Scores(c echo.Context) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return c.JSON(http.StatusOK, h.scores)
}

// Predictions handles GET /api/predictions.
func (h *ReferenceHandler) Predictions(c echo.Context) error {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return c.JSON(http.StatusOK, h.predictions)
}

// PredictionByMatch handles GET /api/predictions/:matchId.
func (h *ReferenceHandler) PredictionByMatch(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("matchId"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid match id"})
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, p := range h.predictions {
		if p.MatchID == id {
			return c.JSON(http.StatusOK, p)
		}
	}
	return c.JSON(http.StatusNotFound, echo.Map{"error": "no prediction for match"})
}

// CreateMatch handles POST /api/matches.  The match is assigned the next
// identifier and echoed back.
func (h *ReferenceHandler) CreateMatch(c echo.Context) error {
	var m model.Match
	if err := c.Bind(&m); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if m.HomeTeam.Name == "" || m.AwayTeam.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "home and away teams are required"})
	}
	if m.Status == "" {
		m.Status = "SCHEDULED"
	}

	h.mu.Lock()
	m.ID = h.nextID
	h.nextID++
	h.matches = append(h.matches, m)
	h.mu.Unlock()

	return c.JSON(http.StatusCreated, m)
}

// MatchByID resolves a match from the catalog for the booking flow.
func (h *ReferenceHandler) MatchByID(id uint64) (model.Match, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, m := range h.matches {
		if m.ID == id {
			return m, true
		}
	}
	return model.Match{}, false
}

func seedStadiums() []model.Stadium {
	return []model.Stadium{
		{ID: 1, Name: "Old Trafford", Team: "Manchester United", Capacity: 74140, PriceCents: 5000},
		{ID: 2, Name: "Emirates Stadium", Team: "Arsenal", Capacity: 60704, PriceCents: 4500},
		{ID: 3, Name: "Anfield", Team: "Liverpool", Capacity: 53394, PriceCents: 4000},
		{ID: 4, Name: "Etihad Stadium", Team: "Manchester City", Capacity: 53400, PriceCents: 3500},
		{ID: 5, Name: "Stamford Bridge", Team: "Chelsea", Capacity: 41837, PriceCents: 5500},
	}
}

func seedMatches() []model.Match {
	stadiums := seedStadiums()
	return []model.Match{
		{
			ID:       1,
			HomeTeam: model.Team{ID: 1, Name: "Manchester United"},
			AwayTeam: model.Team{ID: 3, Name: "Liverpool"},
			Date:     "2026-09-12", Time: "17:30",
			Stadium: stadiums[0], Status: "SCHEDULED", PriceCents: stadiums[0].PriceCents,
		},
		{
			ID:       2,
			HomeTeam: model.Team{ID: 2, Name: "Arsenal"},
			AwayTeam: model.Team{ID: 5, Name: "Chelsea"},
			Date:     "2026-09-13", Time: "16:00",
			Stadium: stadiums[1], Status: "SCHEDULED", PriceCents: stadiums[1].PriceCents,
		},
		{
			ID:       3,
			HomeTeam: model.Team{ID: 4, Name: "Manchester City"},
			AwayTeam: model.Team{ID: 6, Name: "Tottenham Hotspur"},
			Date:     "2026-09-19", Time: "15:00",
			Stadium: stadiums[3], Status: "SCHEDULED", PriceCents: stadiums[3].PriceCents,
		},
		{
			ID:       4,
			HomeTeam: model.Team{ID: 5, Name: "Chelsea"},
			AwayTeam: model.Team{ID: 1, Name: "Manchester United"},
			Date:     "2026-09-20", Time: "17:30",
			Stadium: stadiums[4], Status: "SCHEDULED", PriceCents: stadiums[4].PriceCents,
		},
	}
}

func seedPredictions() []model.MatchPrediction {
	return []model.MatchPrediction{
		{
			MatchID: 1, HomeTeam: "Arsenal", AwayTeam: "Chelsea",
			PredictedScore: "2-1",
			WinProbability: model.WinProbability{Home: 0.45, Draw: 0.25, Away: 0.3},
		},
		{
			MatchID: 2, HomeTeam: "Manchester United", AwayTeam: "Liverpool",
			PredictedScore: "1-2",
			WinProbability: model.WinProbability{Home: 0.3, Draw: 0.25, Away: 0.45},
		},
		{
			MatchID: 3, HomeTeam: "Manchester City", AwayTeam: "Tottenham Hotspur",
			PredictedScore: "3-1",
			WinProbability: model.WinProbability{Home: 0.6, Draw: 0.2, Away: 0.2},
		},
	}
}

func seedScores() []model.LiveScore {
	return []model.LiveScore{
		{
			MatchID: 101, HomeTeam: "Arsenal", AwayTeam: "Chelsea",
			Score: "2 - 1", Minute: 75, Status: "LIVE",
			Stats: model.MatchStats{
				Possession:    model.HomeAway{Home: 58, Away: 42},
				Shots:         model.HomeAway{Home: 14, Away: 9},
				ShotsOnTarget: model.HomeAway{Home: 6, Away: 3},
				Corners:       model.HomeAway{Home: 7, Away: 4},
				Fouls:         model.HomeAway{Home: 8, Away: 12},
				YellowCards:   model.HomeAway{Home: 1, Away: 3},
				RedCards:      model.HomeAway{Home: 0, Away: 0},
			},
		},
		{
			MatchID: 102, HomeTeam: "Manchester United", AwayTeam: "Liverpool",
			Score: "1 - 2", Minute: 60, Status: "LIVE",
			Stats: model.MatchStats{
				Possession:    model.HomeAway{Home: 45, Away: 55},
				Shots:         model.HomeAway{Home: 10, Away: 13},
				ShotsOnTarget: model.HomeAway{Home: 4, Away: 7},
				Corners:       model.HomeAway{Home: 5, Away: 6},
				Fouls:         model.HomeAway{Home: 11, Away: 9},
				YellowCards:   model.HomeAway{Home: 2, Away: 1},
				RedCards:      model.HomeAway{Home: 0, Away: 0},
			},
		},
		{
			MatchID: 103, HomeTeam: "Manchester City", AwayTeam: "Tottenham Hotspur",
			Score: "3 - 0", Minute: 90, Status: "FINISHED",
			Stats: model.MatchStats{
				Possession:    model.HomeAway{Home: 67, Away: 33},
				Shots:         model.HomeAway{Home: 18, Away: 6},
				ShotsOnTarget: model.HomeAway{Home: 9, Away: 2},
				Corners:       model.HomeAway{Home: 9, Away: 2},
				Fouls:         model.HomeAway{Home: 6, Away: 10},
				YellowCards:   model.HomeAway{Home: 0, Away: 2},
				RedCards:      model.HomeAway{Home: 0, Away: 1},
			},
		},
	}
}
