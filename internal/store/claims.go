package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/query"
	"github.com/erazemk/lostfound/internal/report"
	"github.com/erazemk/lostfound/internal/schema"
)

// ClaimItem records userID's claim on itemID, marks the item Claimed and
// notifies every user who reported the item. A second claim by the same user
// is a constraint violation.
func (s *Store) ClaimItem(ctx context.Context, userID, itemID int64) (*model.Claim, error) {
	claim := &model.Claim{UserID: userID, ItemID: itemID}
	date, _ := parseDate("")
	claim.ClaimDate = date

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := s.exec.Write(ctx, tx, query.Statement{
			Op:        "insert_claim",
			SQL:       `INSERT INTO Claim (UserID, ItemID, ClaimDate) VALUES (?, ?, ?) RETURNING ClaimID`,
			Args:      []any{userID, itemID, date},
			Returning: "ClaimID",
		})
		if err != nil {
			return fmt.Errorf("inserting claim: %w", err)
		}
		claim.ID = res.ID

		_, err = s.exec.Write(ctx, tx, query.Statement{
			Op: "claim_item",
			SQL: `UPDATE Item SET StatusID = (SELECT StatusID FROM ItemStatus WHERE StatusDescription = ?)
			      WHERE ItemID = ?`,
			Args:       []any{schema.StatusClaimed, itemID},
			MustAffect: true,
		})
		if err != nil {
			return fmt.Errorf("updating item status: %w", err)
		}

		var reporters []int64
		err = s.exec.Each(ctx, tx, query.Statement{
			Op:   "claim_reporters",
			SQL:  `SELECT DISTINCT UserID FROM Report WHERE ItemID = ? ORDER BY UserID`,
			Args: []any{itemID},
		}, func(rows *sql.Rows) error {
			var id int64
			if err := rows.Scan(&id); err != nil {
				return err
			}
			reporters = append(reporters, id)
			return nil
		})
		if err != nil {
			return fmt.Errorf("listing reporters: %w", err)
		}

		// Notifications share the claim's date so the one-per-day key
		// follows the same calendar as ClaimDate.
		for _, uid := range reporters {
			_, err = s.exec.Write(ctx, tx, query.Statement{
				Op: "insert_notification",
				SQL: `INSERT INTO Notification (UserID, ItemID, NotificationDate) VALUES (?, ?, ?)
				      ON CONFLICT DO NOTHING`,
				Args: []any{uid, itemID, date},
			})
			if err != nil {
				return fmt.Errorf("notifying reporter %d: %w", uid, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("claiming item: %w", err)
	}
	return claim, nil
}

// ListNotifications returns a user's notifications, newest first.
func (s *Store) ListNotifications(ctx context.Context, userID int64) ([]model.Notification, error) {
	notes := []model.Notification{}
	err := s.exec.Each(ctx, s.db, query.Statement{
		Op: "list_notifications",
		SQL: `SELECT n.NotificationID, n.UserID, n.ItemID, n.NotificationDate, i.Description
		      FROM Notification n
		      JOIN Item i ON n.ItemID = i.ItemID
		      WHERE n.UserID = ?
		      ORDER BY n.NotificationDate DESC, n.NotificationID DESC`,
		Args: []any{userID},
	}, func(rows *sql.Rows) error {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.ItemID, dateString{&n.NotificationDate}, &n.ItemDescription); err != nil {
			return fmt.Errorf("scanning notification: %w", err)
		}
		notes = append(notes, n)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing notifications: %w", err)
	}
	return notes, nil
}

// DeleteReport removes userID's reports on itemID. The item stays. It
// returns query.ErrNotFound when the user never reported the item.
func (s *Store) DeleteReport(ctx context.Context, userID, itemID int64) error {
	stmt, err := s.builder.Delete(schema.Report, []query.Condition{
		{Attribute: "UserID", Operator: "=", Value: userID},
		{Attribute: "ItemID", Operator: "=", Value: itemID},
	}, string(query.And))
	if err != nil {
		return err
	}
	if _, err := s.exec.Write(ctx, s.db, stmt); err != nil {
		return fmt.Errorf("deleting report: %w", err)
	}
	return nil
}

// ListReports returns the reports filed on an item.
func (s *Store) ListReports(ctx context.Context, itemID int64) ([]model.Report, error) {
	reports := []model.Report{}
	err := s.exec.Each(ctx, s.db, query.Statement{
		Op:   "list_reports",
		SQL:  `SELECT ReportID, ReportType, ReportDate, UserID, ItemID FROM Report WHERE ItemID = ? ORDER BY ReportID`,
		Args: []any{itemID},
	}, func(rows *sql.Rows) error {
		var r model.Report
		if err := rows.Scan(&r.ID, &r.ReportType, dateString{&r.ReportDate}, &r.UserID, &r.ItemID); err != nil {
			return fmt.Errorf("scanning report: %w", err)
		}
		reports = append(reports, r)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}
	return reports, nil
}

// RunReport executes a named report from the report catalogue.
func (s *Store) RunReport(ctx context.Context, name string, args ...string) (*query.Result, error) {
	return report.Run(ctx, s.exec, s.db, name, args...)
}
