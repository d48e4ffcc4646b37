package query

import (
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/erazemk/lostfound/internal/schema"
)

// Statement is a SQL template with '?' placeholders and its arguments.
type Statement struct {
	// Op labels the statement in metrics ("search", "report", "insert_item").
	Op   string
	SQL  string
	Args []any
	// Columns, when set, names the result columns instead of the driver's
	// names, which differ in case between engines.
	Columns []string
	// Returning names a generated identity column Write should report.
	Returning string
	// MustAffect makes Write fail with ErrNotFound when no row changed.
	MustAffect bool
}

// Builder turns validated query intent into statements over a registry.
type Builder struct {
	Registry *schema.Registry
}

// NewBuilder returns a builder over the default lost-and-found registry.
func NewBuilder() Builder {
	return Builder{Registry: schema.Default}
}

// Search selects every column of entity filtered by conds. No conditions
// selects all rows.
func (b Builder) Search(entity string, conds []Condition, logic string) (Statement, error) {
	t, err := b.Registry.Table(entity)
	if err != nil {
		return Statement{}, err
	}
	filter, err := BuildFilter(t, conds, logic)
	if err != nil {
		return Statement{}, err
	}

	cols := t.ColumnNames()
	sel := sq.Select(cols...).From(t.Name).OrderBy(t.PrimaryKey)
	if !filter.Empty() {
		sel = sel.Where(filter)
	}
	return toStatement("search", sel, cols)
}

// Project selects the requested attributes of every row of entity.
func (b Builder) Project(entity string, attrs []string) (Statement, error) {
	t, err := b.Registry.Table(entity)
	if err != nil {
		return Statement{}, err
	}
	cols, err := BuildProjection(t, attrs)
	if err != nil {
		return Statement{}, err
	}
	return toStatement("projection", sq.Select(cols...).From(t.Name).OrderBy(t.PrimaryKey), cols)
}

// Update assigns attrs on the row of entity whose primary key equals key.
func (b Builder) Update(entity string, key any, attrs map[string]any) (Statement, error) {
	t, err := b.Registry.Table(entity)
	if err != nil {
		return Statement{}, err
	}
	pk, _ := t.Column(t.PrimaryKey)
	keyVal, err := coerce(pk, "=", key)
	if err != nil {
		return Statement{}, err
	}
	asg, err := BuildAssignment(t, attrs)
	if err != nil {
		return Statement{}, err
	}

	upd := sq.Update(t.Name)
	for i, c := range asg.Columns {
		upd = upd.Set(c, asg.Values[i])
	}
	upd = upd.Where(sq.Eq{pk.Name: keyVal})

	query, args, err := upd.ToSql()
	if err != nil {
		return Statement{}, fmt.Errorf("building update: %w", err)
	}
	return Statement{Op: "update", SQL: query, Args: args, MustAffect: true}, nil
}

// Delete removes the rows of entity matching conds. At least one condition
// is required so a malformed request cannot empty a table.
func (b Builder) Delete(entity string, conds []Condition, logic string) (Statement, error) {
	t, err := b.Registry.Table(entity)
	if err != nil {
		return Statement{}, err
	}
	filter, err := BuildFilter(t, conds, logic)
	if err != nil {
		return Statement{}, err
	}
	if filter.Empty() {
		return Statement{}, fmt.Errorf("%w: delete from %s needs a condition", ErrInvalidAttribute, t.Name)
	}

	query, args, err := sq.Delete(t.Name).Where(filter).ToSql()
	if err != nil {
		return Statement{}, fmt.Errorf("building delete: %w", err)
	}
	return Statement{Op: "delete", SQL: query, Args: args, MustAffect: true}, nil
}

func toStatement(op string, sel sq.SelectBuilder, cols []string) (Statement, error) {
	query, args, err := sel.ToSql()
	if err != nil {
		return Statement{}, fmt.Errorf("building %s: %w", op, err)
	}
	return Statement{Op: op, SQL: query, Args: args, Columns: cols}, nil
}
