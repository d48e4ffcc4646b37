package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/erazemk/lostfound/internal/schema"
)

// BuildProjection validates attrs against t and returns the canonical column
// identifiers in request order. Duplicates are kept. An empty request is an
// error rather than a SELECT with no columns.
func BuildProjection(t *schema.Table, attrs []string) ([]string, error) {
	if len(attrs) == 0 {
		return nil, fmt.Errorf("%w: select at least one attribute of %s", ErrEmptyProjection, t.Name)
	}

	cols := make([]string, len(attrs))
	for i, a := range attrs {
		col, ok := t.Column(a)
		if !ok {
			return nil, fmt.Errorf("%w: %s has no attribute %q", ErrInvalidAttribute, t.Name, a)
		}
		cols[i] = col.Name
	}
	return cols, nil
}

// Assignment is a validated SET list. Columns are sorted so the generated SQL
// does not depend on map iteration order.
type Assignment struct {
	Columns []string
	Values  []any
}

// BuildAssignment validates attribute/value pairs for an UPDATE of t. The
// primary key cannot be reassigned.
func BuildAssignment(t *schema.Table, attrs map[string]any) (Assignment, error) {
	if len(attrs) == 0 {
		return Assignment{}, fmt.Errorf("%w: nothing to update on %s", ErrEmptyAssignment, t.Name)
	}

	values := make(map[string]any, len(attrs))
	for a, v := range attrs {
		col, ok := t.Column(a)
		if !ok {
			return Assignment{}, fmt.Errorf("%w: %s has no attribute %q", ErrInvalidAttribute, t.Name, a)
		}
		if strings.EqualFold(col.Name, t.PrimaryKey) {
			return Assignment{}, fmt.Errorf("%w: %s.%s cannot be updated", ErrInvalidAttribute, t.Name, col.Name)
		}
		if _, dup := values[col.Name]; dup {
			return Assignment{}, fmt.Errorf("%w: %s.%s given more than once", ErrInvalidAttribute, t.Name, col.Name)
		}
		cv, err := coerce(col, "=", v)
		if err != nil {
			return Assignment{}, err
		}
		values[col.Name] = cv
	}

	asg := Assignment{Columns: make([]string, 0, len(values))}
	for c := range values {
		asg.Columns = append(asg.Columns, c)
	}
	sort.Strings(asg.Columns)
	asg.Values = make([]any, len(asg.Columns))
	for i, c := range asg.Columns {
		asg.Values[i] = values[c]
	}
	return asg, nil
}
