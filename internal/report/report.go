// Package report holds the fixed aggregation and listing queries.
//
// Every report is a constant statement shape. Caller input only ever reaches
// a report as a bound parameter, and rows are ordered on the output columns
// so repeated runs over unchanged data return identical results.
package report

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/erazemk/lostfound/internal/query"
	"github.com/erazemk/lostfound/internal/schema"
)

// ErrUnknownReport is returned by Build and Run for names not in the catalogue.
var ErrUnknownReport = errors.New("unknown report")

// ErrInvalidArguments is returned when a report gets the wrong number of
// arguments.
var ErrInvalidArguments = errors.New("invalid report arguments")

// LostItemsCountPerCategory counts items with status Lost per category.
// Categories without lost items are absent.
func LostItemsCountPerCategory() query.Statement {
	return query.Statement{
		Op: "report",
		SQL: `SELECT c.CategoryName, COUNT(*) AS LostItemCount
FROM Item i
JOIN Category c ON i.CategoryID = c.CategoryID
JOIN ItemStatus s ON i.StatusID = s.StatusID
WHERE s.StatusDescription = ?
GROUP BY c.CategoryName
ORDER BY c.CategoryName`,
		Args:    []any{schema.StatusLost},
		Columns: []string{"CategoryName", "LostItemCount"},
	}
}

// CategoriesWithLostItemsOver is LostItemsCountPerCategory restricted to
// categories whose count strictly exceeds threshold.
func CategoriesWithLostItemsOver(threshold int) (query.Statement, error) {
	if threshold < 0 {
		return query.Statement{}, fmt.Errorf("%w: %d is negative", query.ErrInvalidThreshold, threshold)
	}
	return query.Statement{
		Op: "report",
		SQL: `SELECT c.CategoryName, COUNT(*) AS LostItemCount
FROM Item i
JOIN Category c ON i.CategoryID = c.CategoryID
JOIN ItemStatus s ON i.StatusID = s.StatusID
WHERE s.StatusDescription = ?
GROUP BY c.CategoryName
HAVING COUNT(*) > ?
ORDER BY c.CategoryName`,
		Args:    []any{schema.StatusLost, threshold},
		Columns: []string{"CategoryName", "LostItemCount"},
	}, nil
}

// ParseThreshold parses a non-negative decimal threshold.
func ParseThreshold(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", query.ErrInvalidThreshold, s)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: %d is negative", query.ErrInvalidThreshold, n)
	}
	return n, nil
}

// TopCategoryPerBuilding returns, for every building, the category or
// categories with the most lost items there.
func TopCategoryPerBuilding() query.Statement {
	return query.Statement{
		Op: "report",
		SQL: `WITH ItemCounts AS (
    SELECT li.BuildingCode, i.CategoryID, COUNT(*) AS ItemCount
    FROM Item i
    JOIN LocationInfo li ON i.LocationID = li.LocationID
    JOIN ItemStatus s ON i.StatusID = s.StatusID
    WHERE s.StatusDescription = ?
    GROUP BY li.BuildingCode, i.CategoryID
), MaxCounts AS (
    SELECT BuildingCode, MAX(ItemCount) AS MaxCount
    FROM ItemCounts
    GROUP BY BuildingCode
)
SELECT bi.BuildingName, c.CategoryName, ic.ItemCount
FROM ItemCounts ic
JOIN MaxCounts mc ON ic.BuildingCode = mc.BuildingCode AND ic.ItemCount = mc.MaxCount
JOIN BuildingInfo bi ON ic.BuildingCode = bi.BuildingCode
JOIN Category c ON ic.CategoryID = c.CategoryID
ORDER BY bi.BuildingName, c.CategoryName`,
		Args:    []any{schema.StatusLost},
		Columns: []string{"BuildingName", "CategoryName", "ItemCount"},
	}
}

// UsersReportingAllCategories returns users whose reports cover every
// category: no category exists that the user never reported an item in.
func UsersReportingAllCategories() query.Statement {
	return query.Statement{
		Op: "report",
		SQL: `SELECT u.UserID, u.Name
FROM Users u
WHERE NOT EXISTS (
    SELECT c.CategoryID FROM Category c
    EXCEPT
    SELECT i.CategoryID
    FROM Item i
    JOIN Report r ON i.ItemID = r.ItemID
    WHERE r.UserID = u.UserID
)
ORDER BY u.UserID`,
		Columns: []string{"UserID", "Name"},
	}
}

// ItemsByCategory lists the ID and description of items in the named category.
func ItemsByCategory(name string) query.Statement {
	return query.Statement{
		Op: "report",
		SQL: `SELECT i.ItemID, i.Description
FROM Item i
JOIN Category c ON i.CategoryID = c.CategoryID
WHERE c.CategoryName = ?
ORDER BY i.ItemID`,
		Args:    []any{name},
		Columns: []string{"ItemID", "Description"},
	}
}

func itemsWithStatus(status string) query.Statement {
	return query.Statement{
		Op: "report",
		SQL: `SELECT i.ItemID, i.Description, i.DateReported, c.CategoryName, s.StatusDescription, li.LocationID
FROM Item i
JOIN ItemStatus s ON i.StatusID = s.StatusID
JOIN Category c ON i.CategoryID = c.CategoryID
JOIN LocationInfo li ON i.LocationID = li.LocationID
WHERE s.StatusDescription = ?
ORDER BY i.ItemID`,
		Args:    []any{status},
		Columns: []string{"ItemID", "Description", "DateReported", "CategoryName", "StatusDescription", "LocationID"},
	}
}

// LostItems lists items whose status is Lost with their category and status names.
func LostItems() query.Statement { return itemsWithStatus(schema.StatusLost) }

// FoundItems lists items whose status is Found.
func FoundItems() query.Statement { return itemsWithStatus(schema.StatusFound) }

// Claims lists claims with the claimant's name and the item description.
func Claims() query.Statement {
	return query.Statement{
		Op: "report",
		SQL: `SELECT cl.ClaimID, cl.UserID, u.Name AS UserName, cl.ItemID, i.Description AS ItemDescription, cl.ClaimDate
FROM Claim cl
JOIN Users u ON cl.UserID = u.UserID
JOIN Item i ON cl.ItemID = i.ItemID
ORDER BY cl.ClaimID`,
		Columns: []string{"ClaimID", "UserID", "UserName", "ItemID", "ItemDescription", "ClaimDate"},
	}
}

// Report names accepted by Build and Run.
const (
	NameLostItemsCount     = "lost-items-count"
	NameCategoriesOver     = "categories-with-lost-items-over"
	NameTopCategory        = "top-category-per-building"
	NameUsersAllCategories = "users-reporting-all-categories"
	NameItemsByCategory    = "items-by-category"
	NameLostItems          = "lost-items"
	NameFoundItems         = "found-items"
	NameClaims             = "claims"
)

type entry struct {
	arg   string
	build func(arg string) (query.Statement, error)
}

func fixed(s func() query.Statement) entry {
	return entry{build: func(string) (query.Statement, error) { return s(), nil }}
}

var catalogue = map[string]entry{
	NameLostItemsCount: fixed(LostItemsCountPerCategory),
	NameCategoriesOver: {arg: "threshold", build: func(arg string) (query.Statement, error) {
		n, err := ParseThreshold(arg)
		if err != nil {
			return query.Statement{}, err
		}
		return CategoriesWithLostItemsOver(n)
	}},
	NameTopCategory:        fixed(TopCategoryPerBuilding),
	NameUsersAllCategories: fixed(UsersReportingAllCategories),
	NameItemsByCategory: {arg: "category", build: func(arg string) (query.Statement, error) {
		return ItemsByCategory(arg), nil
	}},
	NameLostItems:  fixed(LostItems),
	NameFoundItems: fixed(FoundItems),
	NameClaims:     fixed(Claims),
}

// Names returns the catalogue's report names sorted alphabetically.
func Names() []string {
	names := make([]string, 0, len(catalogue))
	for n := range catalogue {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Argument returns the name of the argument a report takes, or "" if it
// takes none.
func Argument(name string) (string, error) {
	e, ok := catalogue[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownReport, name)
	}
	return e.arg, nil
}

// Build returns the statement for a named report. Reports that take an
// argument read it from args[0]; extra arguments are an error.
func Build(name string, args ...string) (query.Statement, error) {
	e, ok := catalogue[name]
	if !ok {
		return query.Statement{}, fmt.Errorf("%w: %q", ErrUnknownReport, name)
	}
	want := 0
	if e.arg != "" {
		want = 1
	}
	if len(args) < want {
		return query.Statement{}, fmt.Errorf("%w: %s requires %s", ErrInvalidArguments, name, e.arg)
	}
	if len(args) > want {
		return query.Statement{}, fmt.Errorf("%w: %s takes %d arguments, got %d", ErrInvalidArguments, name, want, len(args))
	}
	var arg string
	if want == 1 {
		arg = args[0]
	}
	return e.build(arg)
}

// Run builds and executes a named report.
func Run(ctx context.Context, exec query.Executor, q query.Querier, name string, args ...string) (*query.Result, error) {
	stmt, err := Build(name, args...)
	if err != nil {
		return nil, err
	}
	res, err := exec.Read(ctx, q, stmt)
	if err != nil {
		return nil, fmt.Errorf("running report %s: %w", name, err)
	}
	return res, nil
}
