package query

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/lostfound/internal/schema"
)

func TestSearchStatement(t *testing.T) {
	b := NewBuilder()
	stmt, err := b.Search("item", []Condition{
		{Attribute: "Description", Operator: "LIKE", Value: "%key%"},
		{Attribute: "LocationID", Operator: ">", Value: "0"},
	}, "OR")
	require.NoError(t, err)

	assert.Equal(t,
		"SELECT ItemID, Description, DateReported, CategoryID, StatusID, LocationID FROM Item "+
			"WHERE (Description LIKE ? OR LocationID > ?) ORDER BY ItemID",
		stmt.SQL)
	assert.Equal(t, []any{"%key%", int64(0)}, stmt.Args)
	assert.Equal(t, schema.Default.MustTable(schema.Item).ColumnNames(), stmt.Columns)
}

func TestSearchWithoutConditionsSelectsAll(t *testing.T) {
	stmt, err := NewBuilder().Search(schema.Category, nil, "")
	require.NoError(t, err)
	assert.Equal(t, "SELECT CategoryID, CategoryName FROM Category ORDER BY CategoryID", stmt.SQL)
	assert.Empty(t, stmt.Args)
}

func TestSearchUnknownEntity(t *testing.T) {
	_, err := NewBuilder().Search("Account", nil, "")
	require.ErrorIs(t, err, ErrUnknownEntity)
}

func TestProjectStatement(t *testing.T) {
	stmt, err := NewBuilder().Project(schema.Item, []string{"description", "ItemID", "Description"})
	require.NoError(t, err)
	assert.Equal(t, "SELECT Description, ItemID, Description FROM Item ORDER BY ItemID", stmt.SQL)
	assert.Equal(t, []string{"Description", "ItemID", "Description"}, stmt.Columns)
}

func TestProjectRejects(t *testing.T) {
	_, err := NewBuilder().Project(schema.Item, nil)
	require.ErrorIs(t, err, ErrEmptyProjection)

	_, err = NewBuilder().Project(schema.Item, []string{"ItemID", "*"})
	require.ErrorIs(t, err, ErrInvalidAttribute)
}

func TestUpdateStatement(t *testing.T) {
	stmt, err := NewBuilder().Update(schema.Item, "4", map[string]any{
		"StatusID":    "3",
		"Description": "Black umbrella",
	})
	require.NoError(t, err)
	assert.Equal(t, "UPDATE Item SET Description = ?, StatusID = ? WHERE ItemID = ?", stmt.SQL)
	assert.Equal(t, []any{"Black umbrella", int64(3), int64(4)}, stmt.Args)
	assert.True(t, stmt.MustAffect)
}

func TestUpdateRejects(t *testing.T) {
	b := NewBuilder()

	_, err := b.Update(schema.Item, 1, nil)
	require.ErrorIs(t, err, ErrEmptyAssignment)

	_, err = b.Update(schema.Item, 1, map[string]any{"ItemID": 2})
	require.ErrorIs(t, err, ErrInvalidAttribute)

	_, err = b.Update(schema.Item, 1, map[string]any{"statusid": 1, "StatusID": 2})
	require.ErrorIs(t, err, ErrInvalidAttribute)

	_, err = b.Update(schema.Item, 1, map[string]any{"Description = 'x', StatusID": 1})
	require.ErrorIs(t, err, ErrInvalidAttribute)

	_, err = b.Update(schema.Item, "one", map[string]any{"StatusID": 1})
	require.ErrorIs(t, err, ErrInvalidValue)
}

func TestDeleteStatement(t *testing.T) {
	stmt, err := NewBuilder().Delete(schema.Report, []Condition{
		{Attribute: "UserID", Operator: "=", Value: "1"},
		{Attribute: "ItemID", Operator: "=", Value: "2"},
	}, "AND")
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM Report WHERE (UserID = ? AND ItemID = ?)", stmt.SQL)
	assert.Equal(t, []any{int64(1), int64(2)}, stmt.Args)
	assert.True(t, stmt.MustAffect)

	_, err = NewBuilder().Delete(schema.Report, nil, "")
	require.ErrorIs(t, err, ErrInvalidAttribute)
}

func TestRebind(t *testing.T) {
	q := "SELECT * FROM Item WHERE ItemID = ? AND StatusID = ?"

	got, err := SQLite.Rebind(q)
	require.NoError(t, err)
	assert.Equal(t, q, got)

	got, err = Postgres.Rebind(q)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM Item WHERE ItemID = $1 AND StatusID = $2", got)
	assert.False(t, strings.Contains(got, "?"))
}

func TestDialectFor(t *testing.T) {
	d, err := DialectFor("sqlite")
	require.NoError(t, err)
	assert.Equal(t, SQLite, d)

	d, err = DialectFor("postgres")
	require.NoError(t, err)
	assert.Equal(t, Postgres, d)

	_, err = DialectFor("oracle")
	require.Error(t, err)
}
