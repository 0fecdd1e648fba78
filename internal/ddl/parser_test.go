package ddl

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seedforge/seedforge/internal/expr"
)

func TestParse_SimplePKAndCheck(t *testing.T) {
	schema, warnings, err := Parse(`
CREATE TABLE users (
  id SERIAL PRIMARY KEY,
  name VARCHAR(255) NOT NULL,
  age INT CHECK (age >= 18 AND age <= 30),
  role VARCHAR(50) CHECK (role IN ('admin', 'user'))
);`)
	require.NoError(t, err)
	require.Empty(t, warnings)
	require.Len(t, schema.Names(), 1)

	u, ok := schema.Get("users")
	require.True(t, ok)
	require.Len(t, u.Columns, 4)
	require.Equal(t, SERIAL, u.Columns[0].Type.Kind)
	require.Equal(t, []string{"id"}, u.PrimaryKey())
	require.False(t, u.Columns[1].Nullable)

	checks := u.Checks()
	require.Len(t, checks, 2)
}

func TestParse_CompositeForeignKey(t *testing.T) {
	schema, _, err := Parse(`
CREATE TABLE theaters (
  id SERIAL PRIMARY KEY,
  name VARCHAR(100) NOT NULL
);
CREATE TABLE seats (
  row INTEGER NOT NULL,
  seat INTEGER NOT NULL,
  theater_id INTEGER NOT NULL,
  PRIMARY KEY (row, seat, theater_id),
  FOREIGN KEY (theater_id) REFERENCES theaters(id)
);`)
	require.NoError(t, err)
	seats, ok := schema.Get("seats")
	require.True(t, ok)
	require.Equal(t, []string{"row", "seat", "theater_id"}, seats.PrimaryKey())
	fks := seats.ForeignKeys()
	require.Len(t, fks, 1)
	require.Equal(t, "theaters", fks[0].RefTable)
}

func TestParse_InlineReferencesWithOnDelete(t *testing.T) {
	schema, _, err := Parse(`
CREATE TABLE a (id SERIAL PRIMARY KEY);
CREATE TABLE b (
  id SERIAL PRIMARY KEY,
  a_id INTEGER REFERENCES a(id) ON DELETE CASCADE
);`)
	require.NoError(t, err)
	b, _ := schema.Get("b")
	col := b.ColumnByName("a_id")
	require.Len(t, col.Constraints, 1)
	require.Equal(t, "a", col.Constraints[0].RefTable)
	require.Equal(t, "CASCADE", col.Constraints[0].OnDelete)
}

func TestParse_UnknownTypeWarns(t *testing.T) {
	_, warnings, err := Parse(`CREATE TABLE t (id GEOMETRY);`)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
}

func TestParse_UnsignedWarns(t *testing.T) {
	_, warnings, err := Parse(`CREATE TABLE t (id BIGINT UNSIGNED);`)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
}

func TestParse_UnknownColumnReferenceErrors(t *testing.T) {
	_, _, err := Parse(`CREATE TABLE t (id INTEGER, CHECK (missing_col > 0));`)
	require.Error(t, err)
}

func TestParse_DecimalPrecisionScale(t *testing.T) {
	schema, _, err := Parse(`CREATE TABLE t (price DECIMAL(5,2) CHECK (price > 0));`)
	require.NoError(t, err)
	tbl, _ := schema.Get("t")
	require.Equal(t, 5, tbl.Columns[0].Type.Precision)
	require.Equal(t, 2, tbl.Columns[0].Type.Scale)
}

func TestParse_EnumType(t *testing.T) {
	schema, _, err := Parse(`CREATE TABLE t (status ENUM('a','b','c'));`)
	require.NoError(t, err)
	tbl, _ := schema.Get("t")
	require.Equal(t, ENUM, tbl.Columns[0].Type.Kind)
	require.Equal(t, []string{"a", "b", "c"}, tbl.Columns[0].Type.EnumValues)
}

func TestParse_CaseInsensitiveKeywordsCasePreservingIdents(t *testing.T) {
	schema, _, err := Parse(`create table "Users" ( "Id" serial primary key );`)
	require.NoError(t, err)
	_, ok := schema.Get("Users")
	require.True(t, ok)
}

func TestParse_RetainsExprAST(t *testing.T) {
	schema, _, err := Parse(`CREATE TABLE t (isbn VARCHAR(13) CHECK (isbn ~ '^[0-9]{13}$'));`)
	require.NoError(t, err)
	tbl, _ := schema.Get("t")
	checks := tbl.Checks()
	require.Len(t, checks, 1)
	_, ok := checks[0].(*expr.Regex)
	require.True(t, ok)
}
