package booking

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goalpost/matchbooking/internal/model"
)

func testMatch() model.MatchSnapshot {
	return model.MatchSnapshot{
		MatchID:  1,
		HomeTeam: "Manchester United",
		AwayTeam: "Liverpool",
		Date:     "2026-09-12",
		Time:     "17:30",
		Stadium:  "Old Trafford",
	}
}

func newTestFlow() *Flow {
	return NewFlow(NewMemoryHistory(), NewMemoryHandoff(), nil, zerolog.Nop())
}

func TestBeginOpensAtOneTicket(t *testing.T) {
	f := newTestFlow()
	d := f.Begin(testMatch(), 5000, "u-1")

	assert.Equal(t, 1, d.TicketCount)
	assert.Equal(t, uint32(5000), d.UnitPriceCents)
	assert.Equal(t, uint64(5000), d.TotalPriceCents)
	assert.Equal(t, StatusPending, d.Status)
	assert.Equal(t, Collecting, f.State())
}

func TestTotalRecomputedOnEveryCountChange(t *testing.T) {
	f := newTestFlow()
	f.Begin(testMatch(), 5000, "u-1")

	d, err := f.SetTicketCount(3)
	require.NoError(t, err)
	assert.Equal(t, uint64(15000), d.TotalPriceCents)

	d, err = f.SetTicketCount(2)
	require.NoError(t, err)
	assert.Equal(t, uint64(10000), d.TotalPriceCents)
}

func TestTotalHoldsForVeryLargeCounts(t *testing.T) {
	f := newTestFlow()
	f.Begin(testMatch(), 5000, "u-1")

	d, err := f.SetTicketCount(1_000_000)
	require.NoError(t, err)
	assert.Equal(t, uint64(5_000_000_000), d.TotalPriceCents, "the product must never wrap")
}

func TestTicketCountBelowOneRejected(t *testing.T) {
	f := newTestFlow()
	f.Begin(testMatch(), 5000, "u-1")

	d, err := f.SetTicketCount(0)
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, 1, d.TicketCount, "rejected change must leave the draft as it was")
}

func TestSubmitRequiresSignedInUser(t *testing.T) {
	f := newTestFlow()
	f.Begin(testMatch(), 5000, "")

	err := f.Submit(context.Background())
	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, Collecting, f.State(), "failed validation keeps the flow collecting")
}

func TestSubmitMovesToAwaitingPayment(t *testing.T) {
	f := newTestFlow()
	f.Begin(testMatch(), 5000, "u-1")

	require.NoError(t, f.Submit(context.Background()))
	assert.Equal(t, AwaitingPayment, f.State())
}

func TestConfirmPaymentRecordsExactlyOnce(t *testing.T) {
	history := NewMemoryHistory()
	f := NewFlow(history, NewMemoryHandoff(), nil, zerolog.Nop())
	f.Begin(testMatch(), 5000, "u-1")
	_, err := f.SetTicketCount(3)
	require.NoError(t, err)
	require.NoError(t, f.Submit(context.Background()))

	b, err := f.ConfirmPayment(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, b.ID)
	assert.False(t, b.ConfirmedAt.IsZero())
	assert.Equal(t, StatusConfirmed, b.Status)
	assert.Equal(t, uint64(15000), b.TotalPriceCents)

	_, err = f.ConfirmPayment(context.Background())
	require.ErrorIs(t, err, ErrAlreadyConfirmed)

	all, err := history.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1, "a repeat confirmation must never append a second entry")
	assert.Equal(t, b.ID, all[0].ID)
}

func TestConfirmPaymentOutsideAwaitingRejected(t *testing.T) {
	f := newTestFlow()

	_, err := f.ConfirmPayment(context.Background())
	require.ErrorIs(t, err, ErrNotAwaitingPayment)

	f.Begin(testMatch(), 5000, "u-1")
	_, err = f.ConfirmPayment(context.Background())
	require.ErrorIs(t, err, ErrNotAwaitingPayment)
}

func TestConfirmedBookingIsHistoryHead(t *testing.T) {
	history := NewMemoryHistory()
	f := NewFlow(history, NewMemoryHandoff(), nil, zerolog.Nop())

	f.Begin(testMatch(), 4000, "u-1")
	require.NoError(t, f.Submit(context.Background()))
	first, err := f.ConfirmPayment(context.Background())
	require.NoError(t, err)

	second := testMatch()
	second.MatchID = 2
	second.Stadium = "Anfield"
	f.Begin(second, 4500, "u-1")
	require.NoError(t, f.Submit(context.Background()))
	latest, err := f.ConfirmPayment(context.Background())
	require.NoError(t, err)

	all, err := history.List(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, latest.ID, all[0].ID, "history is most recent first")
	assert.Equal(t, first.ID, all[1].ID)
}

func TestConfirmRecoversDraftFromHandoff(t *testing.T) {
	handoff := NewMemoryHandoff()
	submitter := NewFlow(NewMemoryHistory(), handoff, nil, zerolog.Nop())
	submitter.Begin(testMatch(), 5000, "u-1")
	require.NoError(t, submitter.Submit(context.Background()))

	// A fresh flow sharing the handoff slot stands in for the process that
	// serves the payment view after a restart.
	history := NewMemoryHistory()
	payer := NewFlow(history, handoff, nil, zerolog.Nop())
	require.NoError(t, payer.Resume(context.Background()))
	require.Equal(t, AwaitingPayment, payer.State())

	b, err := payer.ConfirmPayment(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Old Trafford", b.Match.Stadium)

	all, err := history.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestResumeEmptySlotIsNoOp(t *testing.T) {
	f := newTestFlow()
	require.NoError(t, f.Resume(context.Background()))
	assert.Equal(t, Collecting, f.State())
	_, ok := f.Draft()
	assert.False(t, ok)
}

func TestResumeDoesNotClobberLiveDraft(t *testing.T) {
	handoff := NewMemoryHandoff()
	stale := Draft{Match: testMatch(), TicketCount: 9, Status: StatusPending}
	require.NoError(t, handoff.Put(context.Background(), stale))

	f := NewFlow(NewMemoryHistory(), handoff, nil, zerolog.Nop())
	f.Begin(testMatch(), 5000, "u-1")
	require.NoError(t, f.Resume(context.Background()))

	d, ok := f.Draft()
	require.True(t, ok)
	assert.Equal(t, 1, d.TicketCount, "a draft being collected wins over a staged one")
	assert.Equal(t, Collecting, f.State())
}

func TestHistoryFailureKeepsAwaitingPayment(t *testing.T) {
	f := NewFlow(failingHistory{}, NewMemoryHandoff(), nil, zerolog.Nop())
	f.Begin(testMatch(), 5000, "u-1")
	require.NoError(t, f.Submit(context.Background()))

	_, err := f.ConfirmPayment(context.Background())
	require.Error(t, err)
	assert.Equal(t, AwaitingPayment, f.State(), "an unrecorded booking is not confirmed")
}

func TestNotifyFiredOncePerConfirmation(t *testing.T) {
	var notified []Booking
	f := NewFlow(NewMemoryHistory(), NewMemoryHandoff(), func(ctx context.Context, b Booking) {
		notified = append(notified, b)
	}, zerolog.Nop())

	f.Begin(testMatch(), 5000, "u-1")
	require.NoError(t, f.Submit(context.Background()))
	b, err := f.ConfirmPayment(context.Background())
	require.NoError(t, err)
	_, _ = f.ConfirmPayment(context.Background())

	require.Len(t, notified, 1)
	assert.Equal(t, b.ID, notified[0].ID)
}

func TestAbortDiscardsDraft(t *testing.T) {
	f := newTestFlow()
	f.Begin(testMatch(), 5000, "u-1")
	f.Abort()

	assert.Equal(t, Aborted, f.State())
	_, ok := f.Draft()
	assert.False(t, ok)
}

type failingHistory struct{}

func (failingHistory) Prepend(ctx context.Context, b Booking) error { return errors.New("store down") }
func (failingHistory) List(ctx context.Context) ([]Booking, error)  { return nil, errors.New("store down") }
func (failingHistory) Replace(ctx context.Context, all []Booking) error {
	return errors.New("store down")
}
