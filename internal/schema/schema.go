// Package schema describes the tables, columns and relationships of the
// lost-and-found database. Query builders validate every identifier they emit
// against this registry.
package schema

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownTable is returned when a table name is not part of the registry.
var ErrUnknownTable = errors.New("unknown entity")

// Kind is the value domain of a column.
type Kind int

// Column kinds.
const (
	KindText Kind = iota
	KindInteger
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindDate:
		return "date"
	default:
		return "text"
	}
}

// Column is a single attribute of a table.
type Column struct {
	Name string
	Kind Kind
}

// ForeignKey references the primary key of another table.
type ForeignKey struct {
	Column     string
	References string
}

// Table describes one entity.
type Table struct {
	Name        string
	PrimaryKey  string
	Columns     []Column
	ForeignKeys []ForeignKey

	byName map[string]Column
}

// Column returns the canonical column for name, matched case-insensitively.
func (t *Table) Column(name string) (Column, bool) {
	c, ok := t.byName[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}

// ColumnNames returns the column identifiers in declaration order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Table names.
const (
	Users        = "Users"
	Category     = "Category"
	ItemStatus   = "ItemStatus"
	BuildingInfo = "BuildingInfo"
	LocationInfo = "LocationInfo"
	Item         = "Item"
	Report       = "Report"
	Claim        = "Claim"
	Notification = "Notification"
)

// Item statuses as stored in ItemStatus.StatusDescription.
const (
	StatusLost      = "Lost"
	StatusFound     = "Found"
	StatusClaimed   = "Claimed"
	StatusUnclaimed = "Unclaimed"
)

// Statuses lists every item status in seed order.
var Statuses = []string{StatusLost, StatusFound, StatusClaimed, StatusUnclaimed}

// Report types as stored in Report.ReportType.
const (
	ReportLost  = "Lost"
	ReportFound = "Found"
)

// Registry is an immutable set of tables.
type Registry struct {
	tables map[string]*Table
}

// NewRegistry builds a registry from table definitions. Column and table
// names must be unique case-insensitively and foreign keys must resolve.
func NewRegistry(tables ...Table) (*Registry, error) {
	r := &Registry{tables: make(map[string]*Table, len(tables))}
	for i := range tables {
		t := tables[i]
		key := strings.ToLower(t.Name)
		if _, dup := r.tables[key]; dup {
			return nil, fmt.Errorf("duplicate table %q", t.Name)
		}
		t.byName = make(map[string]Column, len(t.Columns))
		for _, c := range t.Columns {
			ck := strings.ToLower(c.Name)
			if _, dup := t.byName[ck]; dup {
				return nil, fmt.Errorf("duplicate column %s.%s", t.Name, c.Name)
			}
			t.byName[ck] = c
		}
		if _, ok := t.byName[strings.ToLower(t.PrimaryKey)]; !ok {
			return nil, fmt.Errorf("table %s: primary key %q is not a column", t.Name, t.PrimaryKey)
		}
		r.tables[key] = &t
	}
	for _, t := range r.tables {
		for _, fk := range t.ForeignKeys {
			if _, ok := t.Column(fk.Column); !ok {
				return nil, fmt.Errorf("table %s: foreign key column %q is not a column", t.Name, fk.Column)
			}
			if _, ok := r.tables[strings.ToLower(fk.References)]; !ok {
				return nil, fmt.Errorf("table %s: foreign key references unknown table %q", t.Name, fk.References)
			}
		}
	}
	return r, nil
}

// Table looks up a table case-insensitively.
func (r *Registry) Table(name string) (*Table, error) {
	t, ok := r.tables[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTable, name)
	}
	return t, nil
}

// MustTable is like Table but panics on unknown names. Use it only with the
// table name constants of this package.
func (r *Registry) MustTable(name string) *Table {
	t, err := r.Table(name)
	if err != nil {
		panic(err)
	}
	return t
}

// Names returns all table names sorted alphabetically.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tables))
	for _, t := range r.tables {
		names = append(names, t.Name)
	}
	sort.Strings(names)
	return names
}

// Default is the registry for the lost-and-found schema.
var Default = mustRegistry(
	Table{
		Name:       Users,
		PrimaryKey: "UserID",
		Columns: []Column{
			{"UserID", KindInteger},
			{"Name", KindText},
			{"Email", KindText},
			{"Phone", KindText},
			{"Role", KindText},
		},
	},
	Table{
		Name:       Category,
		PrimaryKey: "CategoryID",
		Columns: []Column{
			{"CategoryID", KindInteger},
			{"CategoryName", KindText},
		},
	},
	Table{
		Name:       ItemStatus,
		PrimaryKey: "StatusID",
		Columns: []Column{
			{"StatusID", KindInteger},
			{"StatusDescription", KindText},
		},
	},
	Table{
		Name:       BuildingInfo,
		PrimaryKey: "BuildingCode",
		Columns: []Column{
			{"BuildingCode", KindText},
			{"BuildingName", KindText},
			{"BuildingAddress", KindText},
		},
	},
	Table{
		Name:       LocationInfo,
		PrimaryKey: "LocationID",
		Columns: []Column{
			{"LocationID", KindInteger},
			{"BuildingCode", KindText},
			{"RoomNumber", KindInteger},
		},
		ForeignKeys: []ForeignKey{{"BuildingCode", BuildingInfo}},
	},
	Table{
		Name:       Item,
		PrimaryKey: "ItemID",
		Columns: []Column{
			{"ItemID", KindInteger},
			{"Description", KindText},
			{"DateReported", KindDate},
			{"CategoryID", KindInteger},
			{"StatusID", KindInteger},
			{"LocationID", KindInteger},
		},
		ForeignKeys: []ForeignKey{
			{"CategoryID", Category},
			{"StatusID", ItemStatus},
			{"LocationID", LocationInfo},
		},
	},
	Table{
		Name:       Report,
		PrimaryKey: "ReportID",
		Columns: []Column{
			{"ReportID", KindInteger},
			{"ReportType", KindText},
			{"ReportDate", KindDate},
			{"UserID", KindInteger},
			{"ItemID", KindInteger},
		},
		ForeignKeys: []ForeignKey{{"UserID", Users}, {"ItemID", Item}},
	},
	Table{
		Name:       Claim,
		PrimaryKey: "ClaimID",
		Columns: []Column{
			{"ClaimID", KindInteger},
			{"UserID", KindInteger},
			{"ItemID", KindInteger},
			{"ClaimDate", KindDate},
		},
		ForeignKeys: []ForeignKey{{"UserID", Users}, {"ItemID", Item}},
	},
	Table{
		Name:       Notification,
		PrimaryKey: "NotificationID",
		Columns: []Column{
			{"NotificationID", KindInteger},
			{"UserID", KindInteger},
			{"ItemID", KindInteger},
			{"NotificationDate", KindDate},
		},
		ForeignKeys: []ForeignKey{{"UserID", Users}, {"ItemID", Item}},
	},
)

func mustRegistry(tables ...Table) *Registry {
	r, err := NewRegistry(tables...)
	if err != nil {
		panic(err)
	}
	return r
}
