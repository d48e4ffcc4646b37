package schema

import (
	"errors"
	"testing"
)

func TestTableLookupIsCaseInsensitive(t *testing.T) {
	for _, name := range []string{"Item", "item", "ITEM", " Item "} {
		tbl, err := Default.Table(name)
		if err != nil {
			t.Fatalf("Table(%q): %v", name, err)
		}
		if tbl.Name != Item {
			t.Errorf("Table(%q).Name = %q, want %q", name, tbl.Name, Item)
		}
	}
}

func TestUnknownTable(t *testing.T) {
	_, err := Default.Table("Accounts")
	if !errors.Is(err, ErrUnknownTable) {
		t.Errorf("expected ErrUnknownTable, got %v", err)
	}
}

func TestColumnCanonicalName(t *testing.T) {
	tbl := Default.MustTable(Item)

	tests := []struct {
		in   string
		want string
		kind Kind
		ok   bool
	}{
		{"Description", "Description", KindText, true},
		{"categoryid", "CategoryID", KindInteger, true},
		{"DATEREPORTED", "DateReported", KindDate, true},
		{"CategoryName", "", KindText, false},
		{"ItemID; DROP TABLE Item", "", KindText, false},
		{"", "", KindText, false},
	}

	for _, tt := range tests {
		col, ok := tbl.Column(tt.in)
		if ok != tt.ok {
			t.Errorf("Column(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if ok && (col.Name != tt.want || col.Kind != tt.kind) {
			t.Errorf("Column(%q) = %+v, want %s (%s)", tt.in, col, tt.want, tt.kind)
		}
	}
}

func TestDefaultRegistryTables(t *testing.T) {
	names := Default.Names()
	if len(names) != 9 {
		t.Fatalf("expected 9 tables, got %d: %v", len(names), names)
	}

	item := Default.MustTable(Item)
	want := []string{"ItemID", "Description", "DateReported", "CategoryID", "StatusID", "LocationID"}
	got := item.ColumnNames()
	if len(got) != len(want) {
		t.Fatalf("Item columns = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Item column %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestNewRegistryRejectsDanglingForeignKey(t *testing.T) {
	_, err := NewRegistry(Table{
		Name:        "Child",
		PrimaryKey:  "ID",
		Columns:     []Column{{"ID", KindInteger}, {"ParentID", KindInteger}},
		ForeignKeys: []ForeignKey{{"ParentID", "Parent"}},
	})
	if err == nil {
		t.Error("expected error for foreign key to unknown table")
	}
}

func TestNewRegistryRejectsDuplicateColumn(t *testing.T) {
	_, err := NewRegistry(Table{
		Name:       "T",
		PrimaryKey: "ID",
		Columns:    []Column{{"ID", KindInteger}, {"id", KindText}},
	})
	if err == nil {
		t.Error("expected error for duplicate column")
	}
}
