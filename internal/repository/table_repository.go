package repository

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/goalpost/matchbooking/internal/store"
)

// TableRepo serves the store's generic table API (/rest/v1) over MySQL.
// Only the five named collections are reachable, and every identifier is
// validated before it is spliced into SQL; values always go through
// placeholders.
type TableRepo struct{ DB *sql.DB }

func NewTableRepo(db *sql.DB) *TableRepo { return &TableRepo{DB: db} }

var identRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// checkTable defers to the client package's table list: client and server
// agreeing on the served collections is the whole contract.
func checkTable(table string) error {
	if !store.ValidTable(table) {
		return ErrUnknownTable
	}
	return nil
}

func checkIdent(name string) error {
	if !identRe.MatchString(strings.ToLower(name)) {
		return fmt.Errorf("invalid identifier %q", name)
	}
	return nil
}

// Select returns matching rows as generic maps, in the column order MySQL
// reports.  filters are equality-only, mirroring the client's query
// builder.
func (r *TableRepo) Select(ctx context.Context, table string, filters map[string]any, orderCol string, desc bool, limit int) ([]map[string]any, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	where, args, err := buildWhere(filters)
	if err != nil {
		return nil, err
	}
	q := "SELECT * FROM " + table + where
	if orderCol != "" {
		if err := checkIdent(orderCol); err != nil {
			return nil, err
		}
		q += " ORDER BY " + orderCol
		if desc {
			q += " DESC"
		}
	}
	if limit > 0 {
		q += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanGeneric(rows)
}

// Insert writes one row built from the given column map.
func (r *TableRepo) Insert(ctx context.Context, table string, row map[string]any) error {
	if err := checkTable(table); err != nil {
		return err
	}
	if len(row) == 0 {
		return fmt.Errorf("empty row for %s", table)
	}
	cols := make([]string, 0, len(row))
	marks := make([]string, 0, len(row))
	args := make([]any, 0, len(row))
	for col, v := range row {
		if err := checkIdent(col); err != nil {
			return err
		}
		cols = append(cols, col)
		marks = append(marks, "?")
		args = append(args, v)
	}
	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(cols, ","), strings.Join(marks, ","))
	_, err := r.DB.ExecContext(ctx, q, args...)
	return err
}

// Update patches matching rows.  An empty filter set is refused.
func (r *TableRepo) Update(ctx context.Context, table string, filters map[string]any, patch map[string]any) error {
	if err := checkTable(table); err != nil {
		return err
	}
	if len(filters) == 0 {
		return fmt.Errorf("update on %s requires a filter", table)
	}
	if len(patch) == 0 {
		return nil
	}
	sets := make([]string, 0, len(patch))
	args := make([]any, 0, len(patch)+len(filters))
	for col, v := range patch {
		if err := checkIdent(col); err != nil {
			return err
		}
		sets = append(sets, col+"=?")
		args = append(args, v)
	}
	where, whereArgs, err := buildWhere(filters)
	if err != nil {
		return err
	}
	args = append(args, whereArgs...)
	q := fmt.Sprintf("UPDATE %s SET %s%s", table, strings.Join(sets, ","), where)
	_, err = r.DB.ExecContext(ctx, q, args...)
	return err
}

func buildWhere(filters map[string]any) (string, []any, error) {
	if len(filters) == 0 {
		return "", nil, nil
	}
	conds := make([]string, 0, len(filters))
	args := make([]any, 0, len(filters))
	for col, v := range filters {
		if err := checkIdent(col); err != nil {
			return "", nil, err
		}
		conds = append(conds, col+"=?")
		args = append(args, v)
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

// scanGeneric reads every row into a column map, converting []byte values
// to strings so the JSON encoding is readable.
func scanGeneric(rows *sql.Rows) ([]map[string]any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, 16)
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(map[string]any, len(cols))
		for i, c := range cols {
			if b, ok := vals[i].([]byte); ok {
				row[c] = string(b)
			} else {
				row[c] = vals[i]
			}
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
