package depgraph

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seedforge/seedforge/internal/ddl"
	"github.com/seedforge/seedforge/internal/errs"
)

func mustParse(t *testing.T, src string) *ddl.Schema {
	t.Helper()
	s, _, err := ddl.Parse(src)
	require.NoError(t, err)
	return s
}

func tableNames(levels []Level) []string {
	var out []string
	for _, l := range levels {
		out = append(out, l.Tables...)
	}
	return out
}

func levelIndexOf(levels []Level, table string) int {
	for i, l := range levels {
		for _, t := range l.Tables {
			if t == table {
				return i
			}
		}
	}
	return -1
}

func TestBuild_LinearChainOrdersParentsBeforeChildren(t *testing.T) {
	s := mustParse(t, `
CREATE TABLE theaters (id SERIAL PRIMARY KEY);
CREATE TABLE movies (id SERIAL PRIMARY KEY, theater_id INTEGER NOT NULL REFERENCES theaters(id));
CREATE TABLE showings (id SERIAL PRIMARY KEY, movie_id INTEGER NOT NULL REFERENCES movies(id));
`)
	plan, err := Build(s)
	require.NoError(t, err)
	require.Less(t, levelIndexOf(plan.Levels, "theaters"), levelIndexOf(plan.Levels, "movies"))
	require.Less(t, levelIndexOf(plan.Levels, "movies"), levelIndexOf(plan.Levels, "showings"))
}

func TestBuild_IndependentTablesShareALevel(t *testing.T) {
	s := mustParse(t, `
CREATE TABLE a (id SERIAL PRIMARY KEY);
CREATE TABLE b (id SERIAL PRIMARY KEY);
`)
	plan, err := Build(s)
	require.NoError(t, err)
	require.Len(t, plan.Levels, 1)
	require.ElementsMatch(t, []string{"a", "b"}, plan.Levels[0].Tables)
}

func TestBuild_SelfReferenceIsNotACycleError(t *testing.T) {
	s := mustParse(t, `
CREATE TABLE employees (
  id SERIAL PRIMARY KEY,
  manager_id INTEGER REFERENCES employees(id)
);`)
	plan, err := Build(s)
	require.NoError(t, err)
	require.Len(t, tableNames(plan.Levels), 1)
}

func TestBuild_NullableCycleIsBrokenNotRejected(t *testing.T) {
	s := mustParse(t, `
CREATE TABLE a (id SERIAL PRIMARY KEY, b_id INTEGER REFERENCES b(id));
CREATE TABLE b (id SERIAL PRIMARY KEY, a_id INTEGER NOT NULL REFERENCES a(id));
`)
	plan, err := Build(s)
	require.NoError(t, err)
	require.NotEmpty(t, plan.Cyclic)
}

func TestBuild_AllNotNullCycleIsRejected(t *testing.T) {
	s := mustParse(t, `
CREATE TABLE a (id SERIAL PRIMARY KEY, b_id INTEGER NOT NULL REFERENCES b(id));
CREATE TABLE b (id SERIAL PRIMARY KEY, a_id INTEGER NOT NULL REFERENCES a(id));
`)
	_, err := Build(s)
	require.Error(t, err)
	var cycErr *errs.CyclicDependencyError
	require.ErrorAs(t, err, &cycErr)
}
