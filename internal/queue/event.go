// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingConfirmedEvent is published when a ticket booking is confirmed on
// the payment step.  It carries enough to log, email, or feed analytics
// without reading the booking history back.
type BookingConfirmedEvent struct {
	BookingID       string `json:"booking_id"`
	UserID          string `json:"user_id"`
	MatchID         uint64 `json:"match_id"`
	HomeTeam        string `json:"home_team"`
	AwayTeam        string `json:"away_team"`
	MatchDate       string `json:"match_date"`
	KickOff         string `json:"kick_off"`
	Stadium         string `json:"stadium"`
	TicketCount     int    `json:"ticket_count"`
	TotalPriceCents uint64 `json:"total_price_cents"`
	ConfirmedAt     string `json:"confirmed_at"`
}
