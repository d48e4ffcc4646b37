package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erazemk/lostfound/internal/model"
	"github.com/erazemk/lostfound/internal/query"
	"github.com/erazemk/lostfound/internal/report"
)

func registerTestUser(t *testing.T, s *Store, name string) *model.User {
	t.Helper()
	u, err := s.RegisterUser(context.Background(), name, name+"@example.com", "", "Student")
	if err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	return u
}

func TestRegisterUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u, err := s.RegisterUser(ctx, "Ana", "ana@example.com", "604-555-0101", "Student")
	if err != nil {
		t.Fatalf("RegisterUser: %v", err)
	}
	if u.ID == 0 || u.Phone != "604-555-0101" {
		t.Errorf("unexpected user %+v", u)
	}

	_, err = s.RegisterUser(ctx, "Ana Two", "ana@example.com", "", "Staff")
	if !errors.Is(err, query.ErrConstraintViolation) {
		t.Fatalf("expected constraint violation for duplicate email, got %v", err)
	}

	_, err = s.RegisterUser(ctx, "", "x@example.com", "", "Student")
	if !errors.Is(err, query.ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue for missing name, got %v", err)
	}

	users, _ := s.ListUsers(ctx)
	if len(users) != 1 {
		t.Errorf("expected 1 user, got %d", len(users))
	}
}

func TestReportLostItem(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := registerTestUser(t, s, "ana")

	res, err := s.ReportLostItem(ctx, model.ItemReport{
		Description: "Blue backpack", CategoryID: 3, LocationID: 1, UserID: u.ID, Date: "2024-03-05",
	})
	if err != nil {
		t.Fatalf("ReportLostItem: %v", err)
	}

	item, err := s.GetItem(ctx, res.ItemID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if item.Description != "Blue backpack" || item.DateReported != "2024-03-05" {
		t.Errorf("unexpected item %+v", item)
	}
	if item.StatusID != 1 {
		t.Errorf("expected status Lost (1), got %d", item.StatusID)
	}

	reports, _ := s.ListReports(ctx, res.ItemID)
	if len(reports) != 1 || reports[0].ReportType != "Lost" || reports[0].UserID != u.ID {
		t.Errorf("unexpected reports %+v", reports)
	}
}

func TestReportFoundItemDefaultsDate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := registerTestUser(t, s, "ben")

	res, err := s.ReportFoundItem(ctx, model.ItemReport{Description: "Keys", CategoryID: 5, LocationID: 2, UserID: u.ID})
	if err != nil {
		t.Fatalf("ReportFoundItem: %v", err)
	}
	item, _ := s.GetItem(ctx, res.ItemID)
	if item.StatusID != 2 {
		t.Errorf("expected status Found (2), got %d", item.StatusID)
	}
	if len(item.DateReported) != len("2006-01-02") {
		t.Errorf("expected a date, got %q", item.DateReported)
	}
}

func TestReportItemUnknownReferenceRollsBack(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := registerTestUser(t, s, "cy")

	tests := []model.ItemReport{
		{Description: "Phone", CategoryID: 99, LocationID: 1, UserID: u.ID},
		{Description: "Phone", CategoryID: 1, LocationID: 99, UserID: u.ID},
		// The item insert succeeds; the report insert must roll it back.
		{Description: "Phone", CategoryID: 1, LocationID: 1, UserID: 99},
	}
	for _, in := range tests {
		if _, err := s.ReportFoundItem(ctx, in); !errors.Is(err, query.ErrConstraintViolation) {
			t.Errorf("ReportFoundItem(%+v): expected constraint violation, got %v", in, err)
		}
		if _, err := s.ReportLostItem(ctx, in); !errors.Is(err, query.ErrConstraintViolation) {
			t.Errorf("ReportLostItem(%+v): expected constraint violation, got %v", in, err)
		}
	}

	items, _ := s.ListItems(ctx)
	if len(items) != 0 {
		t.Errorf("expected no items after failed reports, got %d", len(items))
	}
}

func TestReportItemValidation(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.ReportLostItem(ctx, model.ItemReport{Description: " "}); !errors.Is(err, query.ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue for blank description, got %v", err)
	}
	if _, err := s.ReportLostItem(ctx, model.ItemReport{Description: "x", Date: "03/05/2024"}); !errors.Is(err, query.ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue for bad date, got %v", err)
	}
}

func TestUpdateItem(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := registerTestUser(t, s, "dee")
	res, _ := s.ReportLostItem(ctx, model.ItemReport{Description: "Scarf", CategoryID: 2, LocationID: 1, UserID: u.ID})

	err := s.UpdateItem(ctx, res.ItemID, map[string]any{"Description": "Red scarf", "LocationID": "3"})
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	item, _ := s.GetItem(ctx, res.ItemID)
	if item.Description != "Red scarf" || item.LocationID != 3 {
		t.Errorf("unexpected item after update %+v", item)
	}

	if err := s.UpdateItem(ctx, 999, map[string]any{"Description": "x"}); !errors.Is(err, query.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := s.UpdateItem(ctx, res.ItemID, map[string]any{"Colour": "red"}); !errors.Is(err, query.ErrInvalidAttribute) {
		t.Errorf("expected ErrInvalidAttribute, got %v", err)
	}
	if err := s.UpdateItem(ctx, res.ItemID, map[string]any{"CategoryID": 42}); !errors.Is(err, query.ErrConstraintViolation) {
		t.Errorf("expected ErrConstraintViolation, got %v", err)
	}
}

func TestSearchAndProjectItems(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := registerTestUser(t, s, "eve")
	s.ReportLostItem(ctx, model.ItemReport{Description: "iPhone 13", CategoryID: 1, LocationID: 1, UserID: u.ID})
	s.ReportLostItem(ctx, model.ItemReport{Description: "Pencil case", CategoryID: 4, LocationID: 2, UserID: u.ID})
	s.ReportFoundItem(ctx, model.ItemReport{Description: "Phone charger", CategoryID: 1, LocationID: 2, UserID: u.ID})

	items, err := s.SearchItems(ctx, []query.Condition{
		{Attribute: "Description", Operator: "LIKE", Value: "%hone%"},
		{Attribute: "StatusID", Operator: "=", Value: "1"},
	}, "AND")
	if err != nil {
		t.Fatalf("SearchItems: %v", err)
	}
	if len(items) != 1 || items[0].Description != "iPhone 13" {
		t.Errorf("unexpected AND search result %+v", items)
	}

	items, _ = s.SearchItems(ctx, []query.Condition{
		{Attribute: "CategoryID", Operator: "=", Value: "4"},
		{Attribute: "LocationID", Operator: "=", Value: "1"},
	}, "or")
	if len(items) != 2 {
		t.Errorf("expected 2 items for OR search, got %d", len(items))
	}

	if _, err := s.SearchItems(ctx, []query.Condition{{Attribute: "Nope", Operator: "=", Value: "1"}}, ""); !errors.Is(err, query.ErrInvalidAttribute) {
		t.Errorf("expected ErrInvalidAttribute, got %v", err)
	}

	res, err := s.ProjectItems(ctx, []string{"ItemID", "Description"})
	if err != nil {
		t.Fatalf("ProjectItems: %v", err)
	}
	if len(res.Columns) != 2 || len(res.Rows) != 3 {
		t.Errorf("unexpected projection %v / %d rows", res.Columns, len(res.Rows))
	}
	if res.Records()[2]["Description"] != "Phone charger" {
		t.Errorf("unexpected third record %v", res.Records()[2])
	}

	cats, err := s.Search(ctx, "category", []query.Condition{{Attribute: "CategoryName", Operator: "=", Value: "Keys"}}, "")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(cats.Rows) != 1 || cats.Rows[0][0] != int64(5) {
		t.Errorf("unexpected category search %v", cats.Rows)
	}

	if _, err := s.Project(ctx, "Account", []string{"PasswordHash"}); !errors.Is(err, query.ErrUnknownEntity) {
		t.Errorf("expected ErrUnknownEntity, got %v", err)
	}
}

func TestItemImage(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := registerTestUser(t, s, "fay")
	res, _ := s.ReportFoundItem(ctx, model.ItemReport{Description: "Photo Item", CategoryID: 3, LocationID: 1, UserID: u.ID})

	data, mime, err := s.GetItemImage(ctx, res.ItemID)
	if err != nil || data != nil || mime != "" {
		t.Fatalf("expected no image, got %v %q %v", data, mime, err)
	}

	s.SetItemImage(ctx, res.ItemID, []byte("first"), "image/png")
	if err := s.SetItemImage(ctx, res.ItemID, []byte("fake image data"), "image/jpeg"); err != nil {
		t.Fatalf("SetItemImage: %v", err)
	}

	data, mime, err = s.GetItemImage(ctx, res.ItemID)
	if err != nil {
		t.Fatalf("GetItemImage: %v", err)
	}
	if string(data) != "fake image data" {
		t.Errorf("expected image data, got %q", string(data))
	}
	if mime != "image/jpeg" {
		t.Errorf("expected image/jpeg, got %q", mime)
	}
}

func TestClaimItem(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	finder := registerTestUser(t, s, "finder")
	owner := registerTestUser(t, s, "owner")

	lost, _ := s.ReportLostItem(ctx, model.ItemReport{Description: "Wallet", CategoryID: 3, LocationID: 1, UserID: owner.ID})
	found, _ := s.ReportFoundItem(ctx, model.ItemReport{Description: "Wallet", CategoryID: 3, LocationID: 1, UserID: finder.ID})

	claim, err := s.ClaimItem(ctx, owner.ID, found.ItemID)
	if err != nil {
		t.Fatalf("ClaimItem: %v", err)
	}
	if claim.ID == 0 {
		t.Error("expected claim id")
	}

	item, _ := s.GetItem(ctx, found.ItemID)
	if item.StatusID != 3 {
		t.Errorf("expected status Claimed (3), got %d", item.StatusID)
	}

	notes, err := s.ListNotifications(ctx, finder.ID)
	if err != nil {
		t.Fatalf("ListNotifications: %v", err)
	}
	if len(notes) != 1 || notes[0].ItemID != found.ItemID || notes[0].ItemDescription != "Wallet" {
		t.Errorf("unexpected notifications %+v", notes)
	}
	if notes, _ := s.ListNotifications(ctx, owner.ID); len(notes) != 0 {
		t.Errorf("owner reported a different item, got %+v", notes)
	}

	if _, err := s.ClaimItem(ctx, owner.ID, found.ItemID); !errors.Is(err, query.ErrConstraintViolation) {
		t.Errorf("expected constraint violation on second claim, got %v", err)
	}
	if _, err := s.ClaimItem(ctx, owner.ID, 999); !errors.Is(err, query.ErrConstraintViolation) {
		t.Errorf("expected constraint violation for unknown item, got %v", err)
	}

	claims, err := s.RunReport(ctx, report.NameClaims)
	if err != nil {
		t.Fatalf("RunReport: %v", err)
	}
	if len(claims.Rows) != 1 || claims.Records()[0]["UserName"] != "owner" {
		t.Errorf("unexpected claims %v", claims.Rows)
	}

	lostItem, _ := s.GetItem(ctx, lost.ItemID)
	if lostItem.StatusID != 1 {
		t.Errorf("unrelated item changed status to %d", lostItem.StatusID)
	}
}

func TestClaimNotificationSharesClaimDate(t *testing.T) {
	// Between them these zones disagree with UTC's calendar day at every hour.
	zones := []*time.Location{
		time.FixedZone("UTC+14", 14*60*60),
		time.FixedZone("UTC-12", -12*60*60),
	}
	orig := time.Local
	t.Cleanup(func() { time.Local = orig })

	for _, loc := range zones {
		t.Run(loc.String(), func(t *testing.T) {
			time.Local = loc
			s := newTestStore(t)
			ctx := context.Background()
			finder := registerTestUser(t, s, "finder")
			owner := registerTestUser(t, s, "owner")

			found, err := s.ReportFoundItem(ctx, model.ItemReport{Description: "Scarf", CategoryID: 2, LocationID: 1, UserID: finder.ID})
			if err != nil {
				t.Fatalf("ReportFoundItem: %v", err)
			}
			claim, err := s.ClaimItem(ctx, owner.ID, found.ItemID)
			if err != nil {
				t.Fatalf("ClaimItem: %v", err)
			}
			if want := time.Now().Format(time.DateOnly); claim.ClaimDate != want {
				t.Errorf("claim date = %s, want %s", claim.ClaimDate, want)
			}

			notes, err := s.ListNotifications(ctx, finder.ID)
			if err != nil {
				t.Fatalf("ListNotifications: %v", err)
			}
			if len(notes) != 1 {
				t.Fatalf("expected one notification, got %+v", notes)
			}
			if notes[0].NotificationDate != claim.ClaimDate {
				t.Errorf("notification dated %s, claim dated %s", notes[0].NotificationDate, claim.ClaimDate)
			}
		})
	}
}

func TestDeleteReport(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := registerTestUser(t, s, "gus")
	res, _ := s.ReportLostItem(ctx, model.ItemReport{Description: "Umbrella", CategoryID: 3, LocationID: 4, UserID: u.ID})

	if err := s.DeleteReport(ctx, u.ID, res.ItemID); err != nil {
		t.Fatalf("DeleteReport: %v", err)
	}
	if err := s.DeleteReport(ctx, u.ID, res.ItemID); !errors.Is(err, query.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}

	item, _ := s.GetItem(ctx, res.ItemID)
	if item == nil {
		t.Error("expected item to survive report deletion")
	}
}

func TestLookups(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	cats, err := s.ListCategories(ctx)
	if err != nil || len(cats) != 5 || cats[0].Name != "Electronics" {
		t.Errorf("unexpected categories %+v (%v)", cats, err)
	}
	statuses, err := s.ListStatuses(ctx)
	if err != nil || len(statuses) != 4 || statuses[3].Description != "Unclaimed" {
		t.Errorf("unexpected statuses %+v (%v)", statuses, err)
	}
	locs, err := s.ListLocations(ctx)
	if err != nil || len(locs) != 5 || locs[0].BuildingName != "Irving K. Barber Learning Centre" || locs[0].RoomNumber != 1961 {
		t.Errorf("unexpected locations %+v (%v)", locs, err)
	}
}
