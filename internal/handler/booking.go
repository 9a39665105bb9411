package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/goalpost/matchbooking/internal/booking"
	"github.com/goalpost/matchbooking/internal/session"
)

// BookingHandler drives the booking flow for the signed-in user: draft
// collection, submit, payment confirmation, and the booking history.
type BookingHandler struct {
	Sessions *session.Manager
	Flow     *booking.Flow
	History  booking.HistoryStore
	Catalog  *ReferenceHandler
}

// NewBookingHandler wires the booking flow to the session manager and the
// match catalog.
func NewBookingHandler(m *session.Manager, f *booking.Flow, h booking.HistoryStore, cat *ReferenceHandler) *BookingHandler {
	return &BookingHandler{Sessions: m, Flow: f, History: h, Catalog: cat}
}

type beginDraftReq struct {
	MatchID uint64 `json:"match_id"`
}

type updateDraftReq struct {
	TicketCount *int    `json:"ticket_count"`
	Notes       *string `json:"notes"`
}

func bookingErr(c echo.Context, err error) error {
	switch {
	case errors.Is(err, booking.ErrValidation):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrNotAwaitingPayment):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrAlreadyConfirmed):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
}

func draftView(d booking.Draft, state booking.FlowState) echo.Map {
	return echo.Map{"draft": d, "state": state.String()}
}

// BeginDraft handles POST /bookings/draft.  The match is resolved from the
// catalog and snapshotted into the draft; any previous unconfirmed draft is
// discarded.
func (h *BookingHandler) BeginDraft(c echo.Context) error {
	var req beginDraftReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	m, ok := h.Catalog.MatchByID(req.MatchID)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "match not found"})
	}
	st := h.Sessions.State()
	if !st.Authenticated() {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "not authenticated"})
	}

	d := h.Flow.Begin(m.Snapshot(), m.PriceCents, st.User.ID)
	return c.JSON(http.StatusCreated, draftView(d, h.Flow.State()))
}

// GetDraft handles GET /bookings/draft.
func (h *BookingHandler) GetDraft(c echo.Context) error {
	d, ok := h.Flow.Draft()
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no active draft", "state": h.Flow.State().String()})
	}
	return c.JSON(http.StatusOK, draftView(d, h.Flow.State()))
}

// UpdateDraft handles PATCH /bookings/draft.  Ticket count changes
// recompute the total; notes replace wholesale.
func (h *BookingHandler) UpdateDraft(c echo.Context) error {
	var req updateDraftReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	var (
		d   booking.Draft
		err error
	)
	if req.TicketCount != nil {
		if d, err = h.Flow.SetTicketCount(*req.TicketCount); err != nil {
			return bookingErr(c, err)
		}
	}
	if req.Notes != nil {
		if d, err = h.Flow.SetNotes(*req.Notes); err != nil {
			return bookingErr(c, err)
		}
	}
	if req.TicketCount == nil && req.Notes == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nothing to update"})
	}
	return c.JSON(http.StatusOK, draftView(d, h.Flow.State()))
}

// SubmitDraft handles POST /bookings/draft/submit and stages the draft for
// payment.
func (h *BookingHandler) SubmitDraft(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Flow.Submit(ctx); err != nil {
		return bookingErr(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"state": h.Flow.State().String(), "next": "/payment"})
}

// AbortDraft handles DELETE /bookings/draft.
func (h *BookingHandler) AbortDraft(c echo.Context) error {
	h.Flow.Abort()
	return c.JSON(http.StatusOK, echo.Map{"state": h.Flow.State().String()})
}

// ConfirmPayment handles POST /bookings/confirm.  Exactly one booking is
// recorded per awaited draft; repeat calls get a conflict.
func (h *BookingHandler) ConfirmPayment(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	b, err := h.Flow.ConfirmPayment(ctx)
	if err != nil {
		return bookingErr(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"booking": b, "state": h.Flow.State().String()})
}

// ListBookings handles GET /bookings, most recent first.
func (h *BookingHandler) ListBookings(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	all, err := h.History.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load history failed"})
	}
	return c.JSON(http.StatusOK, all)
}
