package db

import (
	"context"
	"database/sql"
	"testing"

	"github.com/erazemk/lostfound/internal/query"
)

// NewTestDB creates a fresh in-memory SQLite database with the schema applied
// and the reference data seeded.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := Open(query.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	mg := Migrator{DB: db, Driver: query.DriverSQLite}
	if err := mg.Up(); err != nil {
		t.Fatalf("migrating test database: %v", err)
	}
	if err := Seed(context.Background(), mg); err != nil {
		t.Fatalf("seeding test database: %v", err)
	}

	return db
}
