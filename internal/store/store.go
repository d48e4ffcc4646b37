// Package store is the service layer over the lost-and-found database. It
// owns transaction boundaries; statements are built and executed by the
// query package.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/erazemk/lostfound/internal/query"
)

// Store runs lost-and-found operations against one database handle.
type Store struct {
	db      *sql.DB
	exec    query.Executor
	builder query.Builder
}

// New returns a store over db. The caller keeps ownership of db.
func New(db *sql.DB, dialect query.Dialect) *Store {
	return &Store{
		db:      db,
		exec:    query.Executor{Dialect: dialect},
		builder: query.NewBuilder(),
	}
}

// DB returns the underlying handle.
func (s *Store) DB() *sql.DB { return s.db }

// Dialect returns the storage dialect statements are rebound for.
func (s *Store) Dialect() query.Dialect { return s.exec.Dialect }

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("pinging database: %w", &query.StorageError{Kind: query.ErrStorageUnavailable, Err: err})
	}
	return nil
}

// inTx runs fn in a transaction that is committed only if fn succeeds.
func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// dateString scans a DATE column into a YYYY-MM-DD string. Drivers disagree
// on whether dates come back as time.Time or text.
type dateString struct{ s *string }

func (d dateString) Scan(v any) error {
	switch x := v.(type) {
	case nil:
		*d.s = ""
	case time.Time:
		*d.s = x.Format(time.DateOnly)
	case string:
		*d.s = trimDate(x)
	case []byte:
		*d.s = trimDate(string(x))
	default:
		return fmt.Errorf("unsupported date value %T", v)
	}
	return nil
}

func trimDate(s string) string {
	if len(s) > len(time.DateOnly) {
		return s[:len(time.DateOnly)]
	}
	return s
}

// parseDate validates a YYYY-MM-DD date. An empty string means today.
func parseDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Now().Format(time.DateOnly), nil
	}
	if _, err := time.Parse(time.DateOnly, s); err != nil {
		return "", fmt.Errorf("%w: date %q is not YYYY-MM-DD", query.ErrInvalidValue, s)
	}
	return s, nil
}
