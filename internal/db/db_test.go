package db

import (
	"context"
	"testing"

	"github.com/erazemk/lostfound/internal/query"
)

func countRows(t *testing.T, mg Migrator, table string) int {
	t.Helper()
	var n int
	if err := mg.DB.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&n); err != nil {
		t.Fatalf("counting %s: %v", table, err)
	}
	return n
}

func TestSeedIsIdempotent(t *testing.T) {
	mg := Migrator{DB: NewTestDB(t), Driver: query.DriverSQLite}

	if err := Seed(context.Background(), mg); err != nil {
		t.Fatalf("second seed: %v", err)
	}

	for table, want := range map[string]int{
		"ItemStatus":   len(SeedStatuses),
		"Category":     len(SeedCategories),
		"BuildingInfo": len(SeedBuildings),
		"LocationInfo": len(SeedRooms),
	} {
		if got := countRows(t, mg, table); got != want {
			t.Errorf("%s rows = %d, want %d", table, got, want)
		}
	}
}

func TestSeedAssignsIdentifiersInOrder(t *testing.T) {
	database := NewTestDB(t)

	var name string
	if err := database.QueryRow("SELECT StatusDescription FROM ItemStatus WHERE StatusID = 3").Scan(&name); err != nil {
		t.Fatalf("querying status: %v", err)
	}
	if name != "Claimed" {
		t.Errorf("status 3 = %q, want Claimed", name)
	}

	var code string
	var room int
	if err := database.QueryRow("SELECT BuildingCode, RoomNumber FROM LocationInfo WHERE LocationID = 2").Scan(&code, &room); err != nil {
		t.Fatalf("querying location: %v", err)
	}
	if code != "DMP" || room != 110 {
		t.Errorf("location 2 = %s %d, want DMP 110", code, room)
	}
}

func TestForeignKeysEnforced(t *testing.T) {
	database := NewTestDB(t)

	_, err := database.Exec(`INSERT INTO Item (Description, CategoryID, StatusID, LocationID) VALUES ('x', 99, 1, 1)`)
	if err == nil {
		t.Fatal("expected foreign key violation")
	}
}

func TestResetClearsData(t *testing.T) {
	mg := Migrator{DB: NewTestDB(t), Driver: query.DriverSQLite}

	if _, err := mg.DB.Exec(`INSERT INTO Users (Name, Email, Role) VALUES ('Ana', 'ana@example.com', 'Student')`); err != nil {
		t.Fatalf("inserting user: %v", err)
	}
	if _, err := mg.DB.Exec(`INSERT INTO Account (Username, PasswordHash, Role) VALUES ('admin', 'x', 'admin')`); err != nil {
		t.Fatalf("inserting account: %v", err)
	}

	if err := Reset(context.Background(), mg); err != nil {
		t.Fatalf("reset: %v", err)
	}

	if got := countRows(t, mg, "Users"); got != 0 {
		t.Errorf("users after reset = %d, want 0", got)
	}
	if got := countRows(t, mg, "Category"); got != len(SeedCategories) {
		t.Errorf("categories after reset = %d, want %d", got, len(SeedCategories))
	}
	if got := countRows(t, mg, "Account"); got != 1 {
		t.Errorf("accounts after reset = %d, want 1", got)
	}
}

func TestVersion(t *testing.T) {
	mg := Migrator{DB: NewTestDB(t), Driver: query.DriverSQLite}

	v, dirty, err := mg.Version()
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if v != VersionLostFound || dirty {
		t.Errorf("version = %d dirty=%v, want 2 clean", v, dirty)
	}
}

func TestDownToKeepsOperators(t *testing.T) {
	mg := Migrator{DB: NewTestDB(t), Driver: query.DriverSQLite}

	if err := mg.DownTo(VersionOperators); err != nil {
		t.Fatalf("down to operators: %v", err)
	}
	v, _, err := mg.Version()
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if v != VersionOperators {
		t.Errorf("version = %d, want %d", v, VersionOperators)
	}
	if _, err := mg.DB.Exec(`SELECT COUNT(*) FROM Item`); err == nil {
		t.Error("Item table should be gone")
	}
	if got := countRows(t, mg, "Account"); got != 0 {
		t.Errorf("accounts = %d, want 0", got)
	}

	// Already below the target: no-op.
	if err := mg.DownTo(VersionLostFound); err != nil {
		t.Fatalf("no-op down: %v", err)
	}
}

func TestPgxURL(t *testing.T) {
	got, err := pgxURL("postgres://u:p@localhost:5432/lostfound?sslmode=disable")
	if err != nil {
		t.Fatalf("pgxURL: %v", err)
	}
	if got != "pgx5://u:p@localhost:5432/lostfound?sslmode=disable" {
		t.Errorf("pgxURL = %q", got)
	}

	if _, err := pgxURL("host=localhost dbname=x"); err == nil {
		t.Error("expected error for keyword DSN")
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open("oracle", "x"); err == nil {
		t.Fatal("expected error")
	}
}
