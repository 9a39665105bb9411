package model

// Match is a scheduled football match as served by the reference data API
// and by the session store's matches table.  Team and stadium details are
// embedded rather than referenced so a match row is displayable on its own.
type Match struct {
	ID         uint64  `json:"id"`
	HomeTeam   Team    `json:"home_team"`
	AwayTeam   Team    `json:"away_team"`
	Date       string  `json:"date"` // YYYY-MM-DD
	Time       string  `json:"time"` // HH:MM, kick-off local time
	Stadium    Stadium `json:"stadium"`
	Status     string  `json:"status"` // SCHEDULED | LIVE | FINISHED
	PriceCents uint32  `json:"price_cents"`
}

// Team identifies a club.
type Team struct {
	ID      uint64 `json:"id"`
	Name    string `json:"name"`
	LogoURL string `json:"logo_url,omitempty"`
}

// MatchSnapshot is the denormalized copy of a match captured when a booking
// draft is created.  It is a snapshot, not a foreign key: the booking stays
// displayable even if the match row later changes or disappears.
type MatchSnapshot struct {
	MatchID  uint64 `json:"match_id"`
	HomeTeam string `json:"home_team"`
	AwayTeam string `json:"away_team"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Stadium  string `json:"stadium"`
}

// Snapshot captures the displayable parts of a match for embedding in a
// booking draft.
func (m Match) Snapshot() MatchSnapshot {
	return MatchSnapshot{
		MatchID:  m.ID,
		HomeTeam: m.HomeTeam.Name,
		AwayTeam: m.AwayTeam.Name,
		Date:     m.Date,
		Time:     m.Time,
		Stadium:  m.Stadium.Name,
	}
}
