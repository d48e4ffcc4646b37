package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/query"
)

// ListCategories returns all categories ordered by ID.
func (s *Store) ListCategories(ctx context.Context) ([]model.Category, error) {
	cats := []model.Category{}
	err := s.exec.Each(ctx, s.db, query.Statement{
		Op:  "list_categories",
		SQL: `SELECT CategoryID, CategoryName FROM Category ORDER BY CategoryID`,
	}, func(rows *sql.Rows) error {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return fmt.Errorf("scanning category: %w", err)
		}
		cats = append(cats, c)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return cats, nil
}

// ListStatuses returns all item statuses ordered by ID.
func (s *Store) ListStatuses(ctx context.Context) ([]model.Status, error) {
	statuses := []model.Status{}
	err := s.exec.Each(ctx, s.db, query.Statement{
		Op:  "list_statuses",
		SQL: `SELECT StatusID, StatusDescription FROM ItemStatus ORDER BY StatusID`,
	}, func(rows *sql.Rows) error {
		var st model.Status
		if err := rows.Scan(&st.ID, &st.Description); err != nil {
			return fmt.Errorf("scanning status: %w", err)
		}
		statuses = append(statuses, st)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing statuses: %w", err)
	}
	return statuses, nil
}

// ListLocations returns all locations with their building details.
func (s *Store) ListLocations(ctx context.Context) ([]model.Location, error) {
	locs := []model.Location{}
	err := s.exec.Each(ctx, s.db, query.Statement{
		Op: "list_locations",
		SQL: `SELECT li.LocationID, li.BuildingCode, li.RoomNumber, bi.BuildingName, bi.BuildingAddress
		      FROM LocationInfo li
		      JOIN BuildingInfo bi ON li.BuildingCode = bi.BuildingCode
		      ORDER BY li.LocationID`,
	}, func(rows *sql.Rows) error {
		var l model.Location
		if err := rows.Scan(&l.ID, &l.BuildingCode, &l.RoomNumber, &l.BuildingName, &l.BuildingAddress); err != nil {
			return fmt.Errorf("scanning location: %w", err)
		}
		locs = append(locs, l)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing locations: %w", err)
	}
	return locs, nil
}
