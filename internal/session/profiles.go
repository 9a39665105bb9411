package session

import (
	"context"

	"github.com/goalpost/matchbooking/internal/store"
)

// StoreProfiles writes profile rows through the session store's table API.
type StoreProfiles struct {
	c *store.Client
}

// NewStoreProfiles wraps a store client as a ProfileStore.
func NewStoreProfiles(c *store.Client) *StoreProfiles { return &StoreProfiles{c: c} }

func (p *StoreProfiles) InsertProfile(ctx context.Context, prof Profile) error {
	return p.c.From("profiles").Insert(ctx, prof)
}

func (p *StoreProfiles) UpdateProfile(ctx context.Context, userID string, patch map[string]any) error {
	return p.c.From("profiles").Eq("id", userID).Update(ctx, patch)
}
