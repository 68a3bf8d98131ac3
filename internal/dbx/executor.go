package dbx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Result holds the columns and rows of one executed query, in database
// order. It is consumed once and discarded after projection.
type Result struct {
	Columns []string
	Rows    [][]any
}

// Maps projects the result into one column-name-to-value map per row,
// built in column order. An empty result projects to an empty slice,
// not nil, so it serializes as [] rather than null.
func (r *Result) Maps() []map[string]any {
	out := make([]map[string]any, 0, len(r.Rows))
	for _, row := range r.Rows {
		m := make(map[string]any, len(r.Columns))
		for i, col := range r.Columns {
			m[col] = row[i]
		}
		out = append(out, m)
	}
	return out
}

// Executor runs validated queries against the database. It does not
// re-validate: the caller guarantees only classified-ALLOW text reaches
// Execute, keeping the safety boundary singular.
type Executor struct {
	db      *sql.DB
	timeout time.Duration
}

// NewExecutor creates an Executor with the given per-query timeout.
func NewExecutor(db *sql.DB, timeout time.Duration) *Executor {
	return &Executor{db: db, timeout: timeout}
}

// Execute runs the query under the bounded timeout and returns its
// columns and rows. Never retries; partial results are never returned.
func (e *Executor) Execute(ctx context.Context, query string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	rows, err := e.db.QueryContext(ctx, query)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("query timed out after %s", e.timeout)
		}
		return nil, err
	}
	defer rows.Close()

	return scanRows(rows)
}

// scanRows builds a Result from sql.Rows using generic value scanning.
// Byte slices are converted to strings so text columns survive JSON
// encoding; drivers report text as []byte depending on column typing.
func scanRows(rows *sql.Rows) (*Result, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	res := &Result{Columns: cols}
	scan := make([]any, len(cols))
	for i := range scan {
		scan[i] = new(any)
	}
	for rows.Next() {
		if err := rows.Scan(scan...); err != nil {
			return nil, err
		}
		row := make([]any, len(cols))
		for i := range cols {
			v := *(scan[i].(*any))
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			row[i] = v
		}
		res.Rows = append(res.Rows, row)
	}
	if err := rows.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, errors.New("query timed out while streaming rows")
		}
		return nil, err
	}
	return res, nil
}
