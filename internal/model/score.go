package model

// LiveScore is one entry of the live scores feed.  The feed is reference
// data served from a static fixture; it never feeds back into bookings.
type LiveScore struct {
	MatchID  uint64     `json:"matchId"`
	HomeTeam string     `json:"homeTeam"`
	AwayTeam string     `json:"awayTeam"`
	Score    string     `json:"score"`
	Minute   int        `json:"minute"`
	Status   string     `json:"status"` // LIVE | FINISHED
	Stats    MatchStats `json:"stats"`
}

// MatchStats carries the in-match statistics shown next to a live score.
type MatchStats struct {
	Possession    HomeAway `json:"possession"`
	Shots         HomeAway `json:"shots"`
	ShotsOnTarget HomeAway `json:"shotsOnTarget"`
	Corners       HomeAway `json:"corners"`
	Fouls         HomeAway `json:"fouls"`
	YellowCards   HomeAway `json:"yellowCards"`
	RedCards      HomeAway `json:"redCards"`
}

// HomeAway is a pair of per-side values for a single statistic.
type HomeAway struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// MatchPrediction is one entry of the predictions feed: a mock predicted
// score with win probabilities.  Like the scores, it is reference data
// only, nothing prices or books off it.
type MatchPrediction struct {
	MatchID        uint64         `json:"matchId"`
	HomeTeam       string         `json:"homeTeam"`
	AwayTeam       string         `json:"awayTeam"`
	PredictedScore string         `json:"predictedScore"`
	WinProbability WinProbability `json:"winProbability"`
}

// WinProbability holds the three outcome probabilities; they sum to 1.
type WinProbability struct {
	Home float64 `json:"home"`
	Draw float64 `json:"draw"`
	Away float64 `json:"away"`
}
