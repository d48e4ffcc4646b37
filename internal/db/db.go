package db

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/erazemk/lostfound/internal/query"
)

// sqlitePragmas are applied to every pooled SQLite connection through the DSN.
var sqlitePragmas = []string{
	"journal_mode(WAL)",
	"busy_timeout(5000)",
	"foreign_keys(1)",
	"synchronous(NORMAL)",
}

// Open opens a database for the given driver ("sqlite" or "pgx") and checks
// that it is reachable.
func Open(driver, dsn string) (*sql.DB, error) {
	d, err := query.DialectFor(driver)
	if err != nil {
		return nil, err
	}

	if d == query.SQLite {
		dsn = sqliteDSN(dsn)
	}

	db, err := sql.Open(d.String(), dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if d == query.SQLite && isMemory(dsn) {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return db, nil
}

func sqliteDSN(dsn string) string {
	if dsn == "" || dsn == ":memory:" {
		dsn = "file::memory:"
	}
	var b strings.Builder
	b.WriteString(dsn)
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	for _, p := range sqlitePragmas {
		if isMemory(dsn) && strings.HasPrefix(p, "journal_mode") {
			continue
		}
		b.WriteString(sep + "_pragma=" + p)
		sep = "&"
	}
	return b.String()
}

func isMemory(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}
