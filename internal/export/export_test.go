package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seedforge/seedforge/internal/expr"
	"github.com/seedforge/seedforge/internal/filler"
)

func sampleTables() (map[string]*filler.GeneratedTable, []string) {
	users := &filler.GeneratedTable{
		Name:    "users",
		Columns: []string{"id", "name", "balance", "bio"},
		Rows: []expr.Row{
			{"id": expr.IntVal(1), "name": expr.StringVal("O'Brien"), "balance": expr.DecimalVal(expr.Decimal{Unscaled: 1050, Scale: 2}), "bio": expr.Null},
			{"id": expr.IntVal(2), "name": expr.StringVal("Ann"), "balance": expr.DecimalVal(expr.Decimal{Unscaled: 200, Scale: 2}), "bio": expr.StringVal("hi, there")},
		},
	}
	return map[string]*filler.GeneratedTable{"users": users}, []string{"users"}
}

func TestSQL_QuotesAndNullsAndBatches(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.sql")
	tables, order := sampleTables()

	require.NoError(t, SQL(path, order, tables))

	out, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(out)

	require.Contains(t, text, "INSERT INTO users (id, name, balance, bio) VALUES")
	require.Contains(t, text, "'O''Brien'")
	require.Contains(t, text, "10.50")
	require.Contains(t, text, "NULL")
	require.True(t, strings.HasSuffix(strings.TrimSpace(text), ";"))
}

func TestSQL_SkipsEmptyTables(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.sql")
	empty := &filler.GeneratedTable{Name: "empty", Columns: []string{"id"}}
	tables := map[string]*filler.GeneratedTable{"empty": empty}

	require.NoError(t, SQL(path, []string{"empty"}, tables))
	out, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Empty(t, strings.TrimSpace(string(out)))
}

func TestCSV_HeaderAndNullAsEmptyField(t *testing.T) {
	dir := t.TempDir()
	tables, order := sampleTables()

	require.NoError(t, CSV(dir, order, tables))

	out, err := os.ReadFile(filepath.Join(dir, "users.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(out), "\n"), "\n")
	require.Equal(t, "id,name,balance,bio", lines[0])
	require.Len(t, lines, 3)
	require.Contains(t, lines[1], "O'Brien")
	require.True(t, strings.HasSuffix(lines[1], ","), "NULL bio should render as an empty trailing field")
}

func TestJSON_DecimalsAsStringsAndNullAsNull(t *testing.T) {
	dir := t.TempDir()
	tables, order := sampleTables()

	require.NoError(t, JSON(dir, order, tables))

	out, err := os.ReadFile(filepath.Join(dir, "users.json"))
	require.NoError(t, err)

	var rows []map[string]interface{}
	require.NoError(t, json.Unmarshal(out, &rows))
	require.Len(t, rows, 2)
	require.Equal(t, "10.50", rows[0]["balance"])
	require.Nil(t, rows[0]["bio"])
	require.Equal(t, "hi, there", rows[1]["bio"])
}
