// Package booking implements the client-side booking flow: collecting a
// draft, handing it to the payment step, and committing confirmed bookings
// to the locally persisted history.  The history is non-authoritative by
// design; there is no server-side booking ledger behind it.
package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/goalpost/matchbooking/internal/model"
)

// Booking record statuses.
const (
	StatusPending   = "PENDING"
	StatusConfirmed = "CONFIRMED"
)

// FlowState tracks where the flow is between the booking form and the
// payment confirmation.
type FlowState int

const (
	Collecting FlowState = iota
	Submitting
	AwaitingPayment
	Confirmed
	Aborted
)

func (s FlowState) String() string {
	switch s {
	case Collecting:
		return "collecting"
	case Submitting:
		return "submitting"
	case AwaitingPayment:
		return "awaiting_payment"
	case Confirmed:
		return "confirmed"
	case Aborted:
		return "aborted"
	}
	return "unknown"
}

// ErrValidation blocks a submit whose draft is incomplete.  The user fixes
// the form and resubmits; nothing is retried automatically.
var ErrValidation = errors.New("validation failed")

// ErrNotAwaitingPayment is returned by ConfirmPayment outside the
// AwaitingPayment state.
var ErrNotAwaitingPayment = errors.New("no draft awaiting payment")

// ErrAlreadyConfirmed rejects a second confirmation of the same draft.  The
// first confirmation's history entry stands; there is never a duplicate
// append.
var ErrAlreadyConfirmed = errors.New("booking already confirmed")

// Draft is an uncommitted booking intent.  The match is a denormalized
// snapshot captured at draft time, not a live reference.
type Draft struct {
	Match           model.MatchSnapshot `json:"match"`
	UserID          string              `json:"user_id,omitempty"`
	TicketCount     int                 `json:"ticket_count"`
	UnitPriceCents  uint32              `json:"unit_price_cents"`
	TotalPriceCents uint64              `json:"total_price_cents"`
	Notes           string              `json:"notes,omitempty"`
	Status          string              `json:"status"`
}

// Booking is a confirmed draft with its generated identifier and
// confirmation time.
type Booking struct {
	ID          string    `json:"id"`
	ConfirmedAt time.Time `json:"confirmed_at"`
	Draft
}

// Flow is the booking state machine for one prospective booking.  It owns
// the draft exclusively until confirmation converts it into a history
// entry.  Methods are safe for concurrent use; the confirm path in
// particular must stay single-shot even when the surrounding view fires it
// twice.
type Flow struct {
	history HistoryStore
	handoff HandoffSlot
	notify  func(ctx context.Context, b Booking) // best-effort, may be nil
	log     zerolog.Logger

	mu    sync.Mutex
	state FlowState
	draft *Draft
}

// NewFlow builds a flow in the Collecting state with no draft.  notify is
// invoked after each successful confirmation; its failures are the
// callee's to log.
func NewFlow(history HistoryStore, handoff HandoffSlot, notify func(context.Context, Booking), log zerolog.Logger) *Flow {
	return &Flow{history: history, handoff: handoff, notify: notify, log: log, state: Collecting}
}

// Begin starts collecting a draft for the given match.  Ticket count opens
// at 1; any previous unconfirmed draft is discarded.
func (f *Flow) Begin(match model.MatchSnapshot, unitPriceCents uint32, userID string) Draft {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = Collecting
	f.draft = &Draft{
		Match:           match,
		UserID:          userID,
		TicketCount:     1,
		UnitPriceCents:  unitPriceCents,
		TotalPriceCents: uint64(unitPriceCents),
		Status:          StatusPending,
	}
	return *f.draft
}

// SetTicketCount updates the count and recomputes the total.  The total is
// recomputed on every change, never patched incrementally, and the product
// is carried in 64 bits so no count a caller can pass silently wraps it.
func (f *Flow) SetTicketCount(n int) (Draft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != Collecting || f.draft == nil {
		return Draft{}, fmt.Errorf("%w: not collecting a draft", ErrValidation)
	}
	if n < 1 {
		return *f.draft, fmt.Errorf("%w: ticket count must be at least 1", ErrValidation)
	}
	f.draft.TicketCount = n
	f.draft.TotalPriceCents = uint64(f.draft.UnitPriceCents) * uint64(n)
	return *f.draft, nil
}

// SetNotes replaces the optional notes field.
func (f *Flow) SetNotes(notes string) (Draft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != Collecting || f.draft == nil {
		return Draft{}, fmt.Errorf("%w: not collecting a draft", ErrValidation)
	}
	f.draft.Notes = notes
	return *f.draft, nil
}

// Submit validates the draft and stages it for the payment step.  On
// success the flow moves through Submitting to AwaitingPayment and the
// draft is written to the one-shot handoff slot.
func (f *Flow) Submit(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != Collecting || f.draft == nil {
		return fmt.Errorf("%w: nothing to submit", ErrValidation)
	}
	d := f.draft
	switch {
	case d.TicketCount < 1:
		return fmt.Errorf("%w: ticket count must be at least 1", ErrValidation)
	case d.Match.MatchID == 0 && d.Match.Stadium == "":
		return fmt.Errorf("%w: a match is required", ErrValidation)
	case d.UserID == "":
		return fmt.Errorf("%w: sign in to book tickets", ErrValidation)
	}

	f.state = Submitting
	if f.handoff != nil {
		if err := f.handoff.Put(ctx, *d); err != nil {
			// The draft survives in memory; the slot only serves a restart
			// between the booking and payment views.
			f.log.Warn().Err(err).Msg("booking handoff write failed")
		}
	}
	f.state = AwaitingPayment
	return nil
}

// Abort discards an unsubmitted draft, e.g. when the user navigates away.
func (f *Flow) Abort() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == Collecting || f.state == AwaitingPayment {
		f.state = Aborted
		f.draft = nil
	}
}

// Resume recovers a previously submitted draft from the handoff slot,
// putting the flow back into AwaitingPayment.  Called once at startup so a
// process restarted between the booking and payment steps can still
// confirm.  No-op when the slot is empty or a draft is already in flight.
func (f *Flow) Resume(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.draft != nil || f.state != Collecting || f.handoff == nil {
		return nil
	}
	d, err := f.handoff.Take(ctx)
	if err != nil || d == nil {
		return err
	}
	f.draft = d
	f.state = AwaitingPayment
	return nil
}

// ConfirmPayment converts the awaited draft into a confirmed booking:
// generated identifier, confirmation timestamp, exactly one prepend to the
// history.  A second call is rejected with ErrAlreadyConfirmed.  Payment
// itself is simulated; the contract preserved here is the single history
// entry per confirmation.
func (f *Flow) ConfirmPayment(ctx context.Context) (Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.state {
	case Confirmed:
		return Booking{}, ErrAlreadyConfirmed
	case AwaitingPayment:
	default:
		return Booking{}, ErrNotAwaitingPayment
	}

	d := f.draft
	if d == nil && f.handoff != nil {
		// The submitting process may have restarted; recover the draft from
		// the handoff slot.  Take is one-shot, so a second reader finds
		// nothing.
		recovered, err := f.handoff.Take(ctx)
		if err != nil {
			return Booking{}, fmt.Errorf("recover draft: %w", err)
		}
		d = recovered
	}
	if d == nil {
		return Booking{}, ErrNotAwaitingPayment
	}

	b := Booking{
		ID:          uuid.NewString(),
		ConfirmedAt: time.Now().UTC(),
		Draft:       *d,
	}
	b.Status = StatusConfirmed

	if err := f.history.Prepend(ctx, b); err != nil {
		// The booking is not confirmed if it cannot be recorded; the flow
		// stays in AwaitingPayment so the user can retry.
		return Booking{}, fmt.Errorf("record booking: %w", err)
	}

	f.state = Confirmed
	f.draft = nil
	if f.handoff != nil {
		_, _ = f.handoff.Take(ctx) // drain the slot so nothing replays it
	}
	if f.notify != nil {
		f.notify(ctx, b)
	}
	return b, nil
}

// State returns the flow's current position.
func (f *Flow) State() FlowState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Draft returns a copy of the current draft, when one exists.
func (f *Flow) Draft() (Draft, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.draft == nil {
		return Draft{}, false
	}
	return *f.draft, true
}
