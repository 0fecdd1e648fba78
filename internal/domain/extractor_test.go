package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/seedforge/seedforge/internal/ddl"
	"github.com/seedforge/seedforge/internal/expr"
)

func parseChecks(t *testing.T, src string) (*ddl.TableDef, []expr.Expr) {
	t.Helper()
	schema, _, err := ddl.Parse(src)
	require.NoError(t, err)
	tbl, ok := schema.Get("t")
	require.True(t, ok)
	return tbl, tbl.Checks()
}

func TestExtract_IntegerRangeNarrowsDefault(t *testing.T) {
	tbl, checks := parseChecks(t, `CREATE TABLE t (age INT CHECK (age >= 18 AND age <= 30));`)
	d := Extract(tbl.ColumnByName("age"), checks, time.Now())
	require.Equal(t, KindNumeric, d.Kind)
	require.True(t, d.HasMin)
	require.Equal(t, 18.0, d.Min)
	require.True(t, d.HasMax)
	require.Equal(t, 30.0, d.Max)
}

func TestExtract_ConstOnLeftFlipsOperator(t *testing.T) {
	tbl, checks := parseChecks(t, `CREATE TABLE t (age INT CHECK (18 <= age));`)
	d := Extract(tbl.ColumnByName("age"), checks, time.Now())
	require.True(t, d.HasMin)
	require.Equal(t, 18.0, d.Min)
	require.True(t, d.InclusiveMin)
}

func TestExtract_Between(t *testing.T) {
	tbl, checks := parseChecks(t, `CREATE TABLE t (score INT CHECK (score BETWEEN 0 AND 100));`)
	d := Extract(tbl.ColumnByName("score"), checks, time.Now())
	require.Equal(t, 0.0, d.Min)
	require.Equal(t, 100.0, d.Max)
}

func TestExtract_InNarrowsEnum(t *testing.T) {
	tbl, checks := parseChecks(t, `CREATE TABLE t (role VARCHAR(20) CHECK (role IN ('admin', 'user', 'guest')));`)
	d := Extract(tbl.ColumnByName("role"), checks, time.Now())
	require.Equal(t, KindEnum, d.Kind)
	require.ElementsMatch(t, []string{"admin", "user", "guest"}, d.EnumSet)
}

func TestExtract_RegexSetsPattern(t *testing.T) {
	tbl, checks := parseChecks(t, `CREATE TABLE t (isbn VARCHAR(13) CHECK (isbn ~ '^[0-9]{13}$'));`)
	d := Extract(tbl.ColumnByName("isbn"), checks, time.Now())
	require.NotNil(t, d.Regex)
	require.True(t, d.Regex.MatchString("1234567890123"))
	require.False(t, d.Regex.MatchString("abc"))
}

func TestExtract_LengthBound(t *testing.T) {
	tbl, checks := parseChecks(t, `CREATE TABLE t (code VARCHAR(50) CHECK (LENGTH(code) <= 5));`)
	d := Extract(tbl.ColumnByName("code"), checks, time.Now())
	require.True(t, d.HasMaxLength)
	require.Equal(t, 5, d.MaxLength)
}

func TestExtract_MultiColumnConjunctIgnored(t *testing.T) {
	tbl, checks := parseChecks(t, `CREATE TABLE t (lo INT, hi INT CHECK (lo < hi));`)
	d := Extract(tbl.ColumnByName("hi"), checks, time.Now())
	// lo < hi mentions two columns: too weak to tighten bounds from.
	require.Equal(t, -(1<<31 - 1), int(d.Min))
}

func TestExtract_DisjunctionIgnored(t *testing.T) {
	tbl, checks := parseChecks(t, `CREATE TABLE t (status VARCHAR(10) CHECK (status = 'a' OR status = 'b'));`)
	d := Extract(tbl.ColumnByName("status"), checks, time.Now())
	// an OR at the top level is not an AND-spine conjunct, so it's not narrowed.
	require.Empty(t, d.EnumSet)
}

func TestExtract_DateDefaultBounds(t *testing.T) {
	tbl, checks := parseChecks(t, `CREATE TABLE t (created_at DATE);`)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	d := Extract(tbl.ColumnByName("created_at"), checks, now)
	require.Equal(t, KindDate, d.Kind)
	require.Equal(t, 1970, d.DateMin.Year())
	require.Equal(t, 2036, d.DateMax.Year())
}

func TestExtract_VarcharLengthDefault(t *testing.T) {
	tbl, checks := parseChecks(t, `CREATE TABLE t (name VARCHAR(40));`)
	d := Extract(tbl.ColumnByName("name"), checks, time.Now())
	require.True(t, d.HasMaxLength)
	require.Equal(t, 40, d.MaxLength)
}

func TestExtract_EnumTypeDefault(t *testing.T) {
	tbl, checks := parseChecks(t, `CREATE TABLE t (status ENUM('open','closed'));`)
	d := Extract(tbl.ColumnByName("status"), checks, time.Now())
	require.Equal(t, KindEnum, d.Kind)
	require.Equal(t, []string{"open", "closed"}, d.EnumSet)
}

func TestExtract_DecimalBounds(t *testing.T) {
	tbl, checks := parseChecks(t, `CREATE TABLE t (price DECIMAL(5,2) CHECK (price > 0));`)
	d := Extract(tbl.ColumnByName("price"), checks, time.Now())
	require.True(t, d.HasMin)
	require.Equal(t, 0.0, d.Min)
	require.False(t, d.InclusiveMin)
	require.True(t, d.HasMax)
}
