package expr

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func parseExpr(t *testing.T, s string) Expr {
	t.Helper()
	toks, err := Lex(s)
	require.NoError(t, err)
	e, err := Parse(toks)
	require.NoError(t, err)
	return e
}

func TestCheckPasses_AgeBetween(t *testing.T) {
	e := parseExpr(t, "age >= 18 AND age <= 30")
	env := Env{Row: Row{"age": IntVal(25)}, Now: time.Now()}
	require.True(t, CheckPasses(e, env))

	env.Row["age"] = IntVal(5)
	require.False(t, CheckPasses(e, env))
}

func TestCheckPasses_NullIsUnknownPasses(t *testing.T) {
	e := parseExpr(t, "age >= 18")
	env := Env{Row: Row{"age": Null}}
	require.True(t, CheckPasses(e, env), "NULL comparison is UNKNOWN, which passes a CHECK")
}

func TestIn(t *testing.T) {
	e := parseExpr(t, "country IN ('A', 'B', 'C')")
	env := Env{Row: Row{"country": StringVal("B")}}
	require.True(t, CheckPasses(e, env))
	env.Row["country"] = StringVal("Z")
	require.False(t, CheckPasses(e, env))
}

func TestBetween(t *testing.T) {
	e := parseExpr(t, "price BETWEEN 10 AND 20")
	require.True(t, CheckPasses(e, Env{Row: Row{"price": IntVal(10)}}))
	require.True(t, CheckPasses(e, Env{Row: Row{"price": IntVal(20)}}))
	require.False(t, CheckPasses(e, Env{Row: Row{"price": IntVal(21)}}))
}

func TestUnsatisfiableConjunction(t *testing.T) {
	e := parseExpr(t, "price > 100 AND price < 50")
	for _, p := range []int64{0, 49, 60, 100, 101, 1000} {
		require.False(t, CheckPasses(e, Env{Row: Row{"price": IntVal(p)}}))
	}
}

func TestRegex(t *testing.T) {
	e := parseExpr(t, "isbn ~ '^[0-9]{13}$'")
	require.True(t, CheckPasses(e, Env{Row: Row{"isbn": StringVal("1234567890123")}}))
	require.False(t, CheckPasses(e, Env{Row: Row{"isbn": StringVal("abc")}}))
}

func TestLike(t *testing.T) {
	e := parseExpr(t, "name LIKE 'A%'")
	require.True(t, CheckPasses(e, Env{Row: Row{"name": StringVal("Alice")}}))
	require.False(t, CheckPasses(e, Env{Row: Row{"name": StringVal("Bob")}}))
}

func TestExtractAndCurrentDate(t *testing.T) {
	e := parseExpr(t, "EXTRACT(YEAR FROM CURRENT_DATE) >= 2020")
	now := time.Date(2026, 8, 6, 0, 0, 0, 0, time.UTC)
	require.True(t, CheckPasses(e, Env{Now: now, Row: Row{}}))
}

func TestDivisionByZeroIsUnknown(t *testing.T) {
	e := parseExpr(t, "10 / qty > 1")
	require.True(t, CheckPasses(e, Env{Row: Row{"qty": IntVal(0)}}), "division by zero is UNKNOWN, passes CHECK")
}

func TestDecimalArithmeticPreservesScale(t *testing.T) {
	e := parseExpr(t, "price * 1")
	env := Env{Row: Row{"price": DecimalVal(Decimal{Unscaled: 12345, Scale: 2})}}
	v, err := evalValue(e, env)
	require.NoError(t, err)
	require.Equal(t, "123.45", v.String())
}

func TestColumnRefs(t *testing.T) {
	e := parseExpr(t, "a + b > c AND d IN (1,2)")
	require.ElementsMatch(t, []string{"a", "b", "c", "d"}, ColumnRefs(e))
}

func TestAndSpine(t *testing.T) {
	e := parseExpr(t, "a > 1 AND b < 2 AND c = 3")
	require.Len(t, AndSpine(e), 3)
	e2 := parseExpr(t, "a > 1 OR b < 2")
	require.Len(t, AndSpine(e2), 1)
}
