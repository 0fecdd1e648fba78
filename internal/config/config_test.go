package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seedforge/seedforge/internal/ddl"
	"github.com/seedforge/seedforge/internal/errs"
)

func writeConfig(t *testing.T, yamlText string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seedforge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yamlText), 0o644))
	return path
}

func TestLoad_AppliesDocumentedDefaults(t *testing.T) {
	path := writeConfig(t, "seed: 42\n")
	f, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 10, f.NumRows)
	require.Equal(t, 80, f.ThresholdForGuessing)
	require.Equal(t, 20, f.MaxAttemptsPerRow)
	require.Equal(t, 10, f.MaxAttemptsPerValue)
	require.Equal(t, 3, f.MaxTotalAttemptMultiplier)
}

func TestLoad_RejectsOutOfRangeThreshold(t *testing.T) {
	path := writeConfig(t, "threshold_for_guessing: 150\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestResolver_PerTableOverridesGlobal(t *testing.T) {
	f := Default()
	f.PredefinedValues = map[string]map[string][]string{
		"global": {"status": {"active", "inactive"}},
		"orders": {"status": {"shipped", "cancelled"}},
	}
	r := NewResolver(f)

	cc := r.ColumnConfig("orders", "status")
	require.Equal(t, []string{"shipped", "cancelled"}, cc.PredefinedValues)

	cc2 := r.ColumnConfig("users", "status")
	require.Equal(t, []string{"active", "inactive"}, cc2.PredefinedValues)
}

func TestResolver_ColumnTypeMappingFallsBackToGlobal(t *testing.T) {
	f := Default()
	f.ColumnTypeMappings = map[string]map[string]string{
		"global": {"email_addr": "email"},
	}
	r := NewResolver(f)
	cc := r.ColumnConfig("users", "email_addr")
	require.Equal(t, "email", cc.MappingKey)
}

func TestResolver_ThresholdForGuessingIsFraction(t *testing.T) {
	f := Default()
	f.ThresholdForGuessing = 80
	r := NewResolver(f)
	require.InDelta(t, 0.8, r.ThresholdForGuessing(), 0.0001)
}

func TestValidateAgainstSchema_RejectsPredefinedValueViolatingCheck(t *testing.T) {
	schema, _, err := ddl.Parse(`
		CREATE TABLE users (
			id SERIAL PRIMARY KEY,
			age INTEGER NOT NULL CHECK (age >= 18)
		);
	`)
	require.NoError(t, err)

	f := Default()
	f.PredefinedValues = map[string]map[string][]string{
		"users": {"age": {"12"}},
	}

	err = ValidateAgainstSchema(f, schema)
	require.Error(t, err)
	var cfgErr *errs.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	require.Equal(t, "predefined_values.users.age", cfgErr.Option)
}

func TestValidateAgainstSchema_AllowsValueSatisfyingCheck(t *testing.T) {
	schema, _, err := ddl.Parse(`
		CREATE TABLE users (
			id SERIAL PRIMARY KEY,
			age INTEGER NOT NULL CHECK (age >= 18)
		);
	`)
	require.NoError(t, err)

	f := Default()
	f.PredefinedValues = map[string]map[string][]string{
		"users": {"age": {"21", "40"}},
	}

	require.NoError(t, ValidateAgainstSchema(f, schema))
}
