package model

// Stadium describes a venue and its per-ticket price.
//
// Fields:
//  ID         – primary key identifier.
//  Name       – stadium name.
//  Team       – home club that plays at the venue.
//  Capacity   – seating capacity.
//  PriceCents – ticket price in cents.
type Stadium struct {
	ID         uint64 `json:"id"`
	Name       string `json:"name"`
	Team       string `json:"team"`
	Capacity   uint32 `json:"capacity"`
	PriceCents uint32 `json:"price_cents"`
}
