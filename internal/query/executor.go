package query

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/erazemk/lostfound/internal/metrics"
)

// Querier is satisfied by *sql.DB, *sql.Tx and *sql.Conn.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Result is a tabular read result. Rows are in the order the engine
// returned them.
type Result struct {
	Columns []string `json:"columns"`
	Rows    [][]any  `json:"rows"`
}

// Records returns the rows keyed by column name.
func (r *Result) Records() []map[string]any {
	out := make([]map[string]any, len(r.Rows))
	for i, row := range r.Rows {
		rec := make(map[string]any, len(r.Columns))
		for j, c := range r.Columns {
			rec[c] = row[j]
		}
		out[i] = rec
	}
	return out
}

// WriteResult reports the effect of a write.
type WriteResult struct {
	RowsAffected int64
	// ID is the generated identity when the statement names a Returning column.
	ID int64
}

// Executor runs statements against a Querier. Each statement is attempted
// once; failures are classified into StorageError.
type Executor struct {
	Dialect Dialect
}

// Read runs a row-returning statement and materialises the result.
func (e Executor) Read(ctx context.Context, q Querier, stmt Statement) (*Result, error) {
	res := &Result{}
	err := e.Each(ctx, q, stmt, func(rows *sql.Rows) error {
		if res.Columns == nil {
			cols, err := resultColumns(rows, stmt.Columns)
			if err != nil {
				return err
			}
			res.Columns = cols
		}
		vals := make([]any, len(res.Columns))
		ptrs := make([]any, len(vals))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return fmt.Errorf("scanning %s row: %w", stmt.Op, err)
		}
		for i, v := range vals {
			vals[i] = normalize(v)
		}
		res.Rows = append(res.Rows, vals)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if res.Columns == nil {
		res.Columns = stmt.Columns
	}
	if res.Rows == nil {
		res.Rows = [][]any{}
	}
	return res, nil
}

// Each runs a row-returning statement and calls fn for every row. The rows
// are closed before Each returns.
func (e Executor) Each(ctx context.Context, q Querier, stmt Statement, fn func(*sql.Rows) error) (err error) {
	defer e.observe(stmt.Op, time.Now(), &err)

	query, err := e.Dialect.Rebind(stmt.SQL)
	if err != nil {
		return fmt.Errorf("rebinding %s: %w", stmt.Op, err)
	}
	rows, err := q.QueryContext(ctx, query, stmt.Args...)
	if err != nil {
		return fmt.Errorf("running %s: %w", stmt.Op, classify(err))
	}
	defer rows.Close()

	for rows.Next() {
		if err := fn(rows); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("reading %s: %w", stmt.Op, classify(err))
	}
	return nil
}

// Write runs a data-changing statement. With Returning set the generated
// identity is read back through the statement's RETURNING clause.
func (e Executor) Write(ctx context.Context, q Querier, stmt Statement) (res WriteResult, err error) {
	defer e.observe(stmt.Op, time.Now(), &err)

	query, err := e.Dialect.Rebind(stmt.SQL)
	if err != nil {
		return res, fmt.Errorf("rebinding %s: %w", stmt.Op, err)
	}

	if stmt.Returning != "" {
		if err := q.QueryRowContext(ctx, query, stmt.Args...).Scan(&res.ID); err != nil {
			if errors.Is(err, sql.ErrNoRows) && stmt.MustAffect {
				return res, fmt.Errorf("running %s: %w", stmt.Op, ErrNotFound)
			}
			return res, fmt.Errorf("running %s: %w", stmt.Op, classify(err))
		}
		res.RowsAffected = 1
		return res, nil
	}

	r, err := q.ExecContext(ctx, query, stmt.Args...)
	if err != nil {
		return res, fmt.Errorf("running %s: %w", stmt.Op, classify(err))
	}
	if res.RowsAffected, err = r.RowsAffected(); err != nil {
		return res, fmt.Errorf("counting %s rows: %w", stmt.Op, classify(err))
	}
	if stmt.MustAffect && res.RowsAffected == 0 {
		return res, fmt.Errorf("running %s: %w", stmt.Op, ErrNotFound)
	}
	return res, nil
}

func (e Executor) observe(op string, start time.Time, err *error) {
	if op == "" {
		op = "statement"
	}
	outcome := "ok"
	switch {
	case *err == nil:
	case errors.Is(*err, ErrNotFound):
		outcome = "not_found"
	case errors.Is(*err, ErrConstraintViolation):
		outcome = "constraint"
	case errors.Is(*err, ErrStorageUnavailable):
		outcome = "unavailable"
	default:
		outcome = "error"
	}
	metrics.StatementsTotal.WithLabelValues(op, outcome).Inc()
	metrics.StatementDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func resultColumns(rows *sql.Rows, hint []string) ([]string, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("reading columns: %w", err)
	}
	if len(hint) == len(cols) {
		return hint, nil
	}
	return cols, nil
}

// normalize maps driver-specific scan types onto JSON-friendly values.
// Dates without a time of day are rendered as YYYY-MM-DD on every engine.
func normalize(v any) any {
	switch x := v.(type) {
	case []byte:
		return string(x)
	case int32:
		return int64(x)
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format(time.DateOnly)
		}
		return x.UTC().Format(time.RFC3339)
	}
	return v
}
