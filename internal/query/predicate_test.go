package query

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/lostfound/internal/schema"
)

func itemTable(t *testing.T) *schema.Table {
	t.Helper()
	tbl, err := schema.Default.Table(schema.Item)
	require.NoError(t, err)
	return tbl
}

func TestBuildFilterEmpty(t *testing.T) {
	f, err := BuildFilter(itemTable(t), nil, "")
	require.NoError(t, err)
	assert.True(t, f.Empty())
	assert.Empty(t, f.Args())
}

func TestBuildFilterPlaceholdersMatchParams(t *testing.T) {
	conds := []Condition{
		{Attribute: "Description", Operator: "LIKE", Value: "%phone%"},
		{Attribute: "categoryid", Operator: "=", Value: "2"},
		{Attribute: "StatusID", Operator: "!=", Value: 3},
	}
	f, err := BuildFilter(itemTable(t), conds, "and")
	require.NoError(t, err)

	assert.Equal(t, "(Description LIKE ? AND CategoryID = ? AND StatusID <> ?)", f.Expr)
	assert.Equal(t, len(f.Params), strings.Count(f.Expr, "?"))
	assert.Equal(t, []any{"%phone%", int64(2), int64(3)}, f.Args())
	assert.Equal(t, "value0", f.Params[0].Name)
	assert.Equal(t, "value2", f.Params[2].Name)
}

func TestBuildFilterOr(t *testing.T) {
	conds := []Condition{
		{Attribute: "CategoryID", Operator: "=", Value: 1},
		{Attribute: "CategoryID", Operator: "=", Value: 2},
	}
	f, err := BuildFilter(itemTable(t), conds, "Or")
	require.NoError(t, err)
	assert.Equal(t, "(CategoryID = ? OR CategoryID = ?)", f.Expr)
}

func TestBuildFilterValuesNeverInlined(t *testing.T) {
	payload := "x'; DROP TABLE Item; --"
	f, err := BuildFilter(itemTable(t), []Condition{{Attribute: "Description", Operator: "=", Value: payload}}, "")
	require.NoError(t, err)
	assert.NotContains(t, f.Expr, "DROP")
	assert.Equal(t, []any{payload}, f.Args())
}

func TestBuildFilterRejects(t *testing.T) {
	tests := []struct {
		name  string
		conds []Condition
		logic string
		want  error
	}{
		{"unknown attribute", []Condition{{Attribute: "Foo", Operator: "=", Value: "1"}}, "AND", ErrInvalidAttribute},
		{"injected attribute", []Condition{{Attribute: "ItemID; DROP TABLE Item", Operator: "=", Value: "1"}}, "AND", ErrInvalidAttribute},
		{"operator", []Condition{{Attribute: "ItemID", Operator: ">=", Value: "1"}}, "AND", ErrInvalidOperator},
		{"logic", []Condition{{Attribute: "ItemID", Operator: "=", Value: "1"}}, "XOR", ErrInvalidLogicMode},
		{"logic without conditions", nil, "NOT", ErrInvalidLogicMode},
		{"non numeric integer", []Condition{{Attribute: "ItemID", Operator: "=", Value: "abc"}}, "", ErrInvalidValue},
		{"fractional integer", []Condition{{Attribute: "ItemID", Operator: "<", Value: 1.5}}, "", ErrInvalidValue},
		{"float above int64", []Condition{{Attribute: "ItemID", Operator: "=", Value: 1e19}}, "", ErrInvalidValue},
		{"float below int64", []Condition{{Attribute: "ItemID", Operator: "=", Value: -1e19}}, "", ErrInvalidValue},
		{"float at 2^63", []Condition{{Attribute: "ItemID", Operator: "=", Value: float64(1 << 63)}}, "", ErrInvalidValue},
		{"infinite float", []Condition{{Attribute: "ItemID", Operator: "=", Value: math.Inf(1)}}, "", ErrInvalidValue},
		{"NaN", []Condition{{Attribute: "ItemID", Operator: "=", Value: math.NaN()}}, "", ErrInvalidValue},
		{"nil value", []Condition{{Attribute: "Description", Operator: "=", Value: nil}}, "", ErrInvalidValue},
		{"non text pattern", []Condition{{Attribute: "Description", Operator: "LIKE", Value: true}}, "", ErrInvalidValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildFilter(itemTable(t), tt.conds, tt.logic)
			require.ErrorIs(t, err, tt.want)
			assert.True(t, IsValidation(err))
		})
	}
}

func TestCoerceIntegerForms(t *testing.T) {
	col := schema.Column{Name: "ItemID", Kind: schema.KindInteger}
	for _, v := range []any{7, int64(7), float64(7), json.Number("7"), " 7 "} {
		got, err := coerce(col, "=", v)
		require.NoError(t, err)
		assert.Equal(t, int64(7), got)
	}
}

func TestCoerceIntegerFloatBounds(t *testing.T) {
	col := schema.Column{Name: "ItemID", Kind: schema.KindInteger}

	got, err := coerce(col, "=", float64(math.MinInt64))
	require.NoError(t, err)
	assert.Equal(t, int64(math.MinInt64), got)

	got, err = coerce(col, "=", float64(1<<62))
	require.NoError(t, err)
	assert.Equal(t, int64(1<<62), got)
}

func TestCoerceLikeOnIntegerColumnBindsText(t *testing.T) {
	col := schema.Column{Name: "RoomNumber", Kind: schema.KindInteger}
	got, err := coerce(col, "LIKE", "12%")
	require.NoError(t, err)
	assert.Equal(t, "12%", got)
}

func TestParseLogic(t *testing.T) {
	for in, want := range map[string]Logic{"": And, "and": And, " OR ": Or, "or": Or} {
		got, err := ParseLogic(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}
}
