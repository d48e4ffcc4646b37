package db

import (
	"context"
	"fmt"

	"github.com/erazemk/lostfound/internal/query"
	"github.com/erazemk/lostfound/internal/schema"
)

// Building is a reference building row.
type Building struct {
	Code, Name, Address string
}

// Reference data loaded by Seed. Identifiers are assigned by the database in
// slice order, so a fresh database numbers them from 1.
var (
	SeedStatuses   = schema.Statuses
	SeedCategories = []string{"Electronics", "Clothing", "Accessories", "Stationery", "Keys"}
	SeedBuildings  = []Building{
		{"IKB", "Irving K. Barber Learning Centre", "1961 East Mall, Vancouver, BC"},
		{"DMP", "Hugh Dempster Pavilion", "6245 Agronomy Rd, Vancouver, BC"},
		{"HA", "Henry Angus Building", "2053 Main Mall, Vancouver, BC"},
		{"BUCH", "Buchanan Tower", "1873 East Mall, Vancouver, BC"},
		{"FSC", "Forest Sciences Centre", "2424 Main Mall, Vancouver, BC"},
	}
	SeedRooms = []struct {
		Building string
		Room     int
	}{
		{"IKB", 1961}, {"DMP", 110}, {"HA", 235}, {"BUCH", 200}, {"FSC", 1221},
	}
)

// Seed inserts the reference statuses, categories, buildings and locations.
// Rows that already exist are left alone.
func Seed(ctx context.Context, mg Migrator) error {
	d, err := query.DialectFor(mg.Driver)
	if err != nil {
		return err
	}
	exec := query.Executor{Dialect: d}

	tx, err := mg.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var stmts []query.Statement
	for _, s := range SeedStatuses {
		stmts = append(stmts, query.Statement{
			Op: "seed",
			SQL: `INSERT INTO ItemStatus (StatusDescription)
			      SELECT ? WHERE NOT EXISTS (SELECT 1 FROM ItemStatus WHERE StatusDescription = ?)`,
			Args: []any{s, s},
		})
	}
	for _, c := range SeedCategories {
		stmts = append(stmts, query.Statement{
			Op:   "seed",
			SQL:  `INSERT INTO Category (CategoryName) VALUES (?) ON CONFLICT DO NOTHING`,
			Args: []any{c},
		})
	}
	for _, b := range SeedBuildings {
		stmts = append(stmts, query.Statement{
			Op:   "seed",
			SQL:  `INSERT INTO BuildingInfo (BuildingCode, BuildingName, BuildingAddress) VALUES (?, ?, ?) ON CONFLICT DO NOTHING`,
			Args: []any{b.Code, b.Name, b.Address},
		})
	}
	for _, r := range SeedRooms {
		stmts = append(stmts, query.Statement{
			Op:   "seed",
			SQL:  `INSERT INTO LocationInfo (BuildingCode, RoomNumber) VALUES (?, ?) ON CONFLICT DO NOTHING`,
			Args: []any{r.Building, r.Room},
		})
	}

	for _, stmt := range stmts {
		if _, err := exec.Write(ctx, tx, stmt); err != nil {
			return fmt.Errorf("seeding reference data: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Reset drops the lost-and-found tables, re-applies their migration and
// seeds the reference data. Reported items and users are lost; operator
// accounts and settings are kept.
func Reset(ctx context.Context, mg Migrator) error {
	if err := mg.DownTo(VersionOperators); err != nil {
		return err
	}
	if err := mg.Up(); err != nil {
		return err
	}
	return Seed(ctx, mg)
}
