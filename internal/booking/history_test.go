package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(id string) Booking {
	return Booking{ID: id, ConfirmedAt: time.Now().UTC(), Draft: Draft{Match: testMatch(), TicketCount: 1, Status: StatusConfirmed}}
}

func TestMemoryHistoryOrderAndReplace(t *testing.T) {
	h := NewMemoryHistory()
	ctx := context.Background()

	require.NoError(t, h.Prepend(ctx, entry("a")))
	require.NoError(t, h.Prepend(ctx, entry("b")))

	all, err := h.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "b", all[0].ID)
	assert.Equal(t, "a", all[1].ID)

	require.NoError(t, h.Replace(ctx, []Booking{entry("c")}))
	all, err = h.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "c", all[0].ID)
}

func TestMemoryHistoryListReturnsCopy(t *testing.T) {
	h := NewMemoryHistory()
	ctx := context.Background()
	require.NoError(t, h.Prepend(ctx, entry("a")))

	all, _ := h.List(ctx)
	all[0].ID = "mutated"

	again, _ := h.List(ctx)
	assert.Equal(t, "a", again[0].ID)
}

func TestMemoryHandoffIsOneShot(t *testing.T) {
	s := NewMemoryHandoff()
	ctx := context.Background()

	d := Draft{Match: testMatch(), TicketCount: 2, UnitPriceCents: 5000, TotalPriceCents: 10000}
	require.NoError(t, s.Put(ctx, d))

	got, err := s.Take(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2, got.TicketCount)

	again, err := s.Take(ctx)
	require.NoError(t, err)
	assert.Nil(t, again, "second take must find the slot empty")
}
