package sessionstore

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/goalpost/matchbooking/internal/repository"
	"github.com/goalpost/matchbooking/internal/store"
)

// Table API: a deliberately small slice of a generic REST-over-SQL
// surface.  Filters are equality-only ("col=eq.value"), ordering is a
// single column ("order=col.desc"), and only the five served collections
// resolve.

// ListTables handles GET /rest/v1 and names the served collections, so a
// client can discover the surface without guessing.
func (h *Handler) ListTables(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"tables": store.Tables()})
}

// SelectRows handles GET /rest/v1/:table.
func (h *Handler) SelectRows(c echo.Context) error {
	table := c.Param("table")
	filters, orderCol, desc, limit := parseQuery(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rows, err := h.Tables.Select(ctx, table, filters, orderCol, desc, limit)
	if err != nil {
		if err == repository.ErrUnknownTable {
			return apiErr(c, http.StatusNotFound, "unknown table", "")
		}
		return apiErr(c, http.StatusInternalServerError, "query failed", "")
	}
	return c.JSON(http.StatusOK, rows)
}

// InsertRow handles POST /rest/v1/:table.  Inserts into profiles are
// allowed without a bearer token: the row is created right after sign-up,
// before the user has a session.
func (h *Handler) InsertRow(c echo.Context) error {
	table := c.Param("table")
	if !h.writeAllowed(c, table) {
		return apiErr(c, http.StatusUnauthorized, "authentication required", "")
	}
	var row map[string]any
	if err := c.Bind(&row); err != nil {
		return apiErr(c, http.StatusBadRequest, "invalid body", "")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Tables.Insert(ctx, table, row); err != nil {
		if err == repository.ErrUnknownTable {
			return apiErr(c, http.StatusNotFound, "unknown table", "")
		}
		return apiErr(c, http.StatusInternalServerError, "insert failed", "")
	}
	return c.NoContent(http.StatusCreated)
}

// UpdateRows handles PATCH /rest/v1/:table.
func (h *Handler) UpdateRows(c echo.Context) error {
	table := c.Param("table")
	if !h.writeAllowed(c, table) {
		return apiErr(c, http.StatusUnauthorized, "authentication required", "")
	}
	filters, _, _, _ := parseQuery(c)
	if len(filters) == 0 {
		return apiErr(c, http.StatusBadRequest, "update requires a filter", "")
	}
	var patch map[string]any
	if err := c.Bind(&patch); err != nil {
		return apiErr(c, http.StatusBadRequest, "invalid body", "")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Tables.Update(ctx, table, filters, patch); err != nil {
		if err == repository.ErrUnknownTable {
			return apiErr(c, http.StatusNotFound, "unknown table", "")
		}
		return apiErr(c, http.StatusInternalServerError, "update failed", "")
	}
	return c.NoContent(http.StatusNoContent)
}

// writeAllowed permits authenticated writes everywhere, plus anonymous
// inserts into profiles (self-registration).
func (h *Handler) writeAllowed(c echo.Context, table string) bool {
	if uid, _ := c.Get("user_id").(string); uid != "" {
		return true
	}
	return strings.EqualFold(table, "profiles") && c.Request().Method == http.MethodPost
}

func parseQuery(c echo.Context) (filters map[string]any, orderCol string, desc bool, limit int) {
	filters = map[string]any{}
	for key, vals := range c.QueryParams() {
		if len(vals) == 0 {
			continue
		}
		switch key {
		case "order":
			col, dir, _ := strings.Cut(vals[0], ".")
			orderCol = col
			desc = dir == "desc"
		case "limit":
			limit, _ = strconv.Atoi(vals[0])
		default:
			if v, ok := strings.CutPrefix(vals[0], "eq."); ok {
				filters[key] = v
			}
		}
	}
	return filters, orderCol, desc, limit
}
