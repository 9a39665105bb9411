package store

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Query is a builder for one request against the session store's table API.
// Tables exposed by the store: profiles, teams, stadiums, matches,
// bookings.  The builder covers the small subset this app needs: equality
// filters, single-column ordering and a row limit.
type Query struct {
	c       *Client
	table   string
	filters url.Values
	order   string
	limit   int
}

// From starts a query against a named table.
func (c *Client) From(table string) *Query {
	return &Query{c: c, table: table, filters: url.Values{}}
}

// Eq adds an equality filter on a column.
func (q *Query) Eq(column string, value any) *Query {
	q.filters.Add(column, fmt.Sprintf("eq.%v", value))
	return q
}

// Order sets result ordering.  desc=true for most-recent-first listings.
func (q *Query) Order(column string, desc bool) *Query {
	dir := "asc"
	if desc {
		dir = "desc"
	}
	q.order = column + "." + dir
	return q
}

// Limit caps the number of returned rows.
func (q *Query) Limit(n int) *Query {
	q.limit = n
	return q
}

func (q *Query) path() string {
	vals := url.Values{}
	for k, vs := range q.filters {
		for _, v := range vs {
			vals.Add(k, v)
		}
	}
	if q.order != "" {
		vals.Set("order", q.order)
	}
	if q.limit > 0 {
		vals.Set("limit", strconv.Itoa(q.limit))
	}
	p := "/rest/v1/" + q.table
	if enc := vals.Encode(); enc != "" {
		p += "?" + enc
	}
	return p
}

// Select fetches matching rows into dest, which must be a pointer to a
// slice of row structs.
func (q *Query) Select(ctx context.Context, dest any) error {
	return q.c.do(ctx, http.MethodGet, q.path(), nil, q.c.AccessToken(), dest)
}

// Insert writes one row.  The store enforces authentication on writable
// tables; the current access token is always attached when present.
func (q *Query) Insert(ctx context.Context, row any) error {
	return q.c.do(ctx, http.MethodPost, q.path(), row, q.c.AccessToken(), nil)
}

// Update applies a partial row patch to every row matching the filters.
// Refusing an unfiltered update guards against rewriting a whole table.
func (q *Query) Update(ctx context.Context, patch any) error {
	if len(q.filters) == 0 {
		return fmt.Errorf("store: update on %q requires at least one filter", q.table)
	}
	return q.c.do(ctx, http.MethodPatch, q.path(), patch, q.c.AccessToken(), nil)
}

// validTable reports whether a table name is one the store serves.  Used by
// the dev session store server; kept here so client and server agree.
func validTable(name string) bool {
	switch strings.ToLower(name) {
	case "profiles", "teams", "stadiums", "matches", "bookings":
		return true
	}
	return false
}

// Tables lists the collections the session store serves.
func Tables() []string {
	return []string{"profiles", "teams", "stadiums", "matches", "bookings"}
}

// ValidTable reports whether name is a served collection.
func ValidTable(name string) bool { return validTable(name) }
