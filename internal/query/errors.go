package query

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/erazemk/lostfound/internal/schema"
)

// Input validation errors. They are detected before a statement is built and
// never reach storage.
var (
	ErrInvalidAttribute = errors.New("invalid attribute")
	ErrInvalidOperator  = errors.New("invalid operator")
	ErrInvalidLogicMode = errors.New("invalid logic mode")
	ErrInvalidThreshold = errors.New("invalid threshold")
	ErrInvalidValue     = errors.New("invalid value")
	ErrEmptyProjection  = errors.New("empty projection")
	ErrEmptyAssignment  = errors.New("empty assignment")
	ErrUnknownEntity    = schema.ErrUnknownTable
)

// Storage errors.
var (
	ErrConstraintViolation = errors.New("constraint violation")
	ErrNotFound            = errors.New("not found")
	ErrStorageUnavailable  = errors.New("storage unavailable")
)

// IsValidation reports whether err is one of the input validation errors.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrInvalidAttribute, ErrInvalidOperator, ErrInvalidLogicMode, ErrInvalidThreshold,
		ErrInvalidValue, ErrEmptyProjection, ErrEmptyAssignment, ErrUnknownEntity,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// StorageError is a classified failure reported by the storage driver.
type StorageError struct {
	// Kind is ErrConstraintViolation or ErrStorageUnavailable.
	Kind error
	// Constraint names the violated constraint when the driver reports it,
	// otherwise the constraint class (unique, foreign key, not null, check).
	Constraint string
	Err        error
}

func (e *StorageError) Error() string {
	if e.Constraint != "" {
		return fmt.Sprintf("%v (%s): %v", e.Kind, e.Constraint, e.Err)
	}
	return fmt.Sprintf("%v: %v", e.Kind, e.Err)
}

func (e *StorageError) Unwrap() []error { return []error{e.Kind, e.Err} }

// classify maps a driver error onto the storage taxonomy. Errors it does not
// recognise are returned unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var serr *StorageError
	if errors.As(err, &serr) {
		return err
	}

	// database/sql does not export its closed-pool error.
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.DeadlineExceeded) || err.Error() == "sql: database is closed" {
		return &StorageError{Kind: ErrStorageUnavailable, Err: err}
	}

	var lite *sqlite.Error
	if errors.As(err, &lite) {
		return classifySQLite(lite)
	}

	var pg *pgconn.PgError
	if errors.As(err, &pg) {
		return classifyPostgres(pg)
	}

	var connect *pgconn.ConnectError
	if errors.As(err, &connect) {
		return &StorageError{Kind: ErrStorageUnavailable, Err: err}
	}

	return err
}

func classifySQLite(e *sqlite.Error) error {
	code := e.Code()
	switch code & 0xff {
	case sqlite3.SQLITE_CONSTRAINT:
		return &StorageError{Kind: ErrConstraintViolation, Constraint: sqliteConstraint(code, e.Error()), Err: e}
	case sqlite3.SQLITE_BUSY, sqlite3.SQLITE_LOCKED, sqlite3.SQLITE_CANTOPEN,
		sqlite3.SQLITE_IOERR, sqlite3.SQLITE_FULL, sqlite3.SQLITE_READONLY:
		return &StorageError{Kind: ErrStorageUnavailable, Err: e}
	}
	return e
}

// sqliteConstraint derives a constraint identifier from an extended result
// code plus the columns SQLite names in the message, e.g.
// "constraint failed: UNIQUE constraint failed: Users.Email (2067)".
func sqliteConstraint(code int, msg string) string {
	var kind string
	switch code {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		kind = "unique"
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		kind = "foreign key"
	case sqlite3.SQLITE_CONSTRAINT_NOTNULL:
		kind = "not null"
	case sqlite3.SQLITE_CONSTRAINT_CHECK:
		kind = "check"
	default:
		return ""
	}

	const marker = "constraint failed: "
	i := strings.LastIndex(msg, marker)
	if i < 0 {
		return kind
	}
	detail := msg[i+len(marker):]
	if j := strings.LastIndex(detail, " ("); j >= 0 {
		detail = detail[:j]
	}
	if !strings.Contains(detail, ".") {
		return kind
	}
	return kind + ": " + detail
}

func classifyPostgres(e *pgconn.PgError) error {
	switch {
	case strings.HasPrefix(e.Code, "23"):
		constraint := e.ConstraintName
		if constraint == "" {
			constraint = e.Code
		}
		return &StorageError{Kind: ErrConstraintViolation, Constraint: constraint, Err: e}
	case strings.HasPrefix(e.Code, "08"), strings.HasPrefix(e.Code, "53"), strings.HasPrefix(e.Code, "57P"):
		return &StorageError{Kind: ErrStorageUnavailable, Err: e}
	}
	return e
}
