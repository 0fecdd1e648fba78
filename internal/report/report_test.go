package report

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/seedforge/seedforge/internal/errs"
)

func TestReporter_OkWarnErrWriteToUnderlyingWriter(t *testing.T) {
	var buf bytes.Buffer
	r := &Reporter{w: &buf}

	r.Ok("users 10 rows")
	r.Warn("orders 3/10 rows")
	r.Err("boom")

	out := buf.String()
	require.Contains(t, out, "users 10 rows")
	require.Contains(t, out, "orders 3/10 rows")
	require.Contains(t, out, "boom")
}

func TestRunReport_PrintMarksUnderfilledTablesAsWarnings(t *testing.T) {
	var buf bytes.Buffer
	r := &Reporter{w: &buf}
	rep := &RunReport{
		Tables: []TableSummary{
			{Table: "users", Produced: 10, Requested: 10},
			{Table: "orders", Produced: 3, Requested: 10},
		},
		UnknownTypes: []errs.UnknownTypeWarning{
			{Table: "orders", Column: "meta", Type: "JSONB"},
		},
	}
	rep.Finalize()
	rep.Print(r)

	out := buf.String()
	require.Contains(t, out, "users")
	require.Contains(t, out, "3/10")
	require.Contains(t, out, "unknown type")
}

func TestRunReport_FinalizeMirrorsUnderfilledIntoYAMLFields(t *testing.T) {
	rep := &RunReport{
		Underfilled: []errs.UnderfilledTable{
			{Table: "orders", Produced: 3, Requested: 10, LastFailures: []string{"CHECK failed referencing [total]"}},
		},
	}
	rep.Finalize()

	require.Len(t, rep.UnderfilledYAML, 1)
	require.Equal(t, "orders", rep.UnderfilledYAML[0].Table)
	require.Equal(t, []string{"CHECK failed referencing [total]"}, rep.UnderfilledYAML[0].Failures)
}

func TestRunReport_WriteYAMLRoundTrips(t *testing.T) {
	rep := &RunReport{
		Tables: []TableSummary{{Table: "users", Produced: 10, Requested: 10}},
		Underfilled: []errs.UnderfilledTable{
			{Table: "orders", Produced: 3, Requested: 10},
		},
	}
	path := filepath.Join(t.TempDir(), "report.yaml")
	require.NoError(t, rep.WriteYAML(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal(raw, &decoded))
	require.Contains(t, decoded, "tables")
	require.Contains(t, decoded, "underfilled")
}
