package query

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// Dialect selects the placeholder syntax of the storage engine. Statements are
// always built with '?' placeholders and rebound by the Executor.
type Dialect int

const (
	SQLite Dialect = iota
	Postgres
)

// Driver names registered with database/sql.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

// DialectFor returns the dialect for a database/sql driver name.
func DialectFor(driverName string) (Dialect, error) {
	switch driverName {
	case DriverSQLite:
		return SQLite, nil
	case DriverPostgres, "postgres":
		return Postgres, nil
	}
	return 0, fmt.Errorf("unsupported database driver %q", driverName)
}

func (d Dialect) String() string {
	if d == Postgres {
		return DriverPostgres
	}
	return DriverSQLite
}

// Rebind rewrites '?' placeholders into the dialect's syntax.
func (d Dialect) Rebind(query string) (string, error) {
	if d == Postgres {
		return sq.Dollar.ReplacePlaceholders(query)
	}
	return query, nil
}
