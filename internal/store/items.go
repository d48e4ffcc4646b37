package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/query"
	"github.com/erazemk/lostfound/internal/schema"
)

const itemColumns = `ItemID, Description, DateReported, CategoryID, StatusID, LocationID`

func scanItem(rows *sql.Rows) (model.Item, error) {
	var it model.Item
	err := rows.Scan(&it.ID, &it.Description, dateString{&it.DateReported}, &it.CategoryID, &it.StatusID, &it.LocationID)
	if err != nil {
		return it, fmt.Errorf("scanning item: %w", err)
	}
	return it, nil
}

// ReportLostItem records a new item with status Lost together with the
// user's Lost report. Both rows are written or neither is.
func (s *Store) ReportLostItem(ctx context.Context, in model.ItemReport) (*model.ReportResult, error) {
	return s.reportItem(ctx, in, schema.StatusLost, schema.ReportLost)
}

// ReportFoundItem records a new item with status Found together with the
// user's Found report.
func (s *Store) ReportFoundItem(ctx context.Context, in model.ItemReport) (*model.ReportResult, error) {
	return s.reportItem(ctx, in, schema.StatusFound, schema.ReportFound)
}

// reportItem inserts the item and its report in one transaction. Category,
// location and user existence is enforced by the foreign keys, so an
// unknown reference surfaces as a constraint violation on both paths.
func (s *Store) reportItem(ctx context.Context, in model.ItemReport, status, reportType string) (*model.ReportResult, error) {
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return nil, fmt.Errorf("%w: description is required", query.ErrInvalidValue)
	}
	date, err := parseDate(in.Date)
	if err != nil {
		return nil, err
	}

	out := &model.ReportResult{}
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		item, err := s.exec.Write(ctx, tx, query.Statement{
			Op: "insert_item",
			SQL: `INSERT INTO Item (Description, DateReported, CategoryID, StatusID, LocationID)
			      VALUES (?, ?, ?, (SELECT StatusID FROM ItemStatus WHERE StatusDescription = ?), ?)
			      RETURNING ItemID`,
			Args:      []any{desc, date, in.CategoryID, status, in.LocationID},
			Returning: "ItemID",
		})
		if err != nil {
			return fmt.Errorf("inserting item: %w", err)
		}
		out.ItemID = item.ID

		report, err := s.exec.Write(ctx, tx, query.Statement{
			Op:        "insert_report",
			SQL:       `INSERT INTO Report (ReportType, ReportDate, UserID, ItemID) VALUES (?, ?, ?, ?) RETURNING ReportID`,
			Args:      []any{reportType, date, in.UserID, item.ID},
			Returning: "ReportID",
		})
		if err != nil {
			return fmt.Errorf("inserting report: %w", err)
		}
		out.ReportID = report.ID
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reporting %s item: %w", strings.ToLower(reportType), err)
	}
	return out, nil
}

// GetItem returns an item by ID, or nil if there is none.
func (s *Store) GetItem(ctx context.Context, id int64) (*model.Item, error) {
	var item *model.Item
	err := s.exec.Each(ctx, s.db, query.Statement{
		Op:   "get_item",
		SQL:  `SELECT ` + itemColumns + ` FROM Item WHERE ItemID = ?`,
		Args: []any{id},
	}, func(rows *sql.Rows) error {
		it, err := scanItem(rows)
		item = &it
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListItems returns every item ordered by ID.
func (s *Store) ListItems(ctx context.Context) ([]model.Item, error) {
	return s.SearchItems(ctx, nil, "")
}

// SearchItems returns the items matching conds combined with logic.
func (s *Store) SearchItems(ctx context.Context, conds []query.Condition, logic string) ([]model.Item, error) {
	stmt, err := s.builder.Search(schema.Item, conds, logic)
	if err != nil {
		return nil, err
	}
	items := []model.Item{}
	err = s.exec.Each(ctx, s.db, stmt, func(rows *sql.Rows) error {
		it, err := scanItem(rows)
		items = append(items, it)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("searching items: %w", err)
	}
	return items, nil
}

// ProjectItems returns the requested item attributes for every item.
func (s *Store) ProjectItems(ctx context.Context, attrs []string) (*query.Result, error) {
	return s.Project(ctx, schema.Item, attrs)
}

// Search runs a filtered read over any registered entity.
func (s *Store) Search(ctx context.Context, entity string, conds []query.Condition, logic string) (*query.Result, error) {
	stmt, err := s.builder.Search(entity, conds, logic)
	if err != nil {
		return nil, err
	}
	res, err := s.exec.Read(ctx, s.db, stmt)
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", entity, err)
	}
	return res, nil
}

// Project runs a projected read over any registered entity.
func (s *Store) Project(ctx context.Context, entity string, attrs []string) (*query.Result, error) {
	stmt, err := s.builder.Project(entity, attrs)
	if err != nil {
		return nil, err
	}
	res, err := s.exec.Read(ctx, s.db, stmt)
	if err != nil {
		return nil, fmt.Errorf("projecting %s: %w", entity, err)
	}
	return res, nil
}

// UpdateItem assigns the given attributes of an item. It returns
// query.ErrNotFound when the item does not exist.
func (s *Store) UpdateItem(ctx context.Context, id int64, attrs map[string]any) error {
	stmt, err := s.builder.Update(schema.Item, id, attrs)
	if err != nil {
		return err
	}
	if _, err := s.exec.Write(ctx, s.db, stmt); err != nil {
		return fmt.Errorf("updating item: %w", err)
	}
	return nil
}

// SetItemImage stores or replaces an item's photo.
func (s *Store) SetItemImage(ctx context.Context, id int64, image []byte, mime string) error {
	_, err := s.exec.Write(ctx, s.db, query.Statement{
		Op: "set_item_image",
		SQL: `INSERT INTO ItemImage (ItemID, Image, Mime) VALUES (?, ?, ?)
		      ON CONFLICT (ItemID) DO UPDATE
		      SET Image = excluded.Image, Mime = excluded.Mime, UpdatedAt = CURRENT_TIMESTAMP`,
		Args: []any{id, image, mime},
	})
	if err != nil {
		return fmt.Errorf("setting item image: %w", err)
	}
	return nil
}

// GetItemImage returns an item's photo and MIME type. A missing photo
// returns nil data and no error.
func (s *Store) GetItemImage(ctx context.Context, id int64) ([]byte, string, error) {
	var image []byte
	var mime string
	err := s.exec.Each(ctx, s.db, query.Statement{
		Op:   "get_item_image",
		SQL:  `SELECT Image, Mime FROM ItemImage WHERE ItemID = ?`,
		Args: []any{id},
	}, func(rows *sql.Rows) error {
		return rows.Scan(&image, &mime)
	})
	if err != nil {
		return nil, "", fmt.Errorf("getting item image: %w", err)
	}
	return image, mime, nil
}
