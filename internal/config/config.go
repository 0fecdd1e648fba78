// Package config loads the YAML run configuration (spec §6) and resolves it
// into the two-level (global vs. per-table) view internal/filler needs,
// grounded in the teacher's yaml.v3 dependency and its scoped per-table
// override conventions.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/seedforge/seedforge/internal/ddl"
	"github.com/seedforge/seedforge/internal/errs"
	"github.com/seedforge/seedforge/internal/expr"
	"github.com/seedforge/seedforge/internal/filler"
)

const globalScope = "global"

// File is the on-disk shape of a config YAML document.
type File struct {
	NumRows                 int                         `yaml:"num_rows"`
	NumRowsPerTable         map[string]int              `yaml:"num_rows_per_table"`
	PredefinedValues        map[string]map[string][]string `yaml:"predefined_values"`
	ColumnTypeMappings      map[string]map[string]string   `yaml:"column_type_mappings"`
	GuessColumnTypeMappings bool    `yaml:"guess_column_type_mappings"`
	ThresholdForGuessing    int     `yaml:"threshold_for_guessing"`
	Seed                    *int64  `yaml:"seed"`
	MaxAttemptsPerRow       int     `yaml:"max_attempts_per_row"`
	MaxAttemptsPerValue     int     `yaml:"max_attempts_per_value"`
	MaxTotalAttemptMultiplier int   `yaml:"max_total_attempt_multiplier"`
}

// Load reads and validates a config file at path, filling in spec §6's
// documented defaults for any field left zero.
func Load(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &errs.ConfigError{Option: path, Reason: err.Error()}
	}
	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, &errs.ConfigError{Option: path, Reason: err.Error()}
	}
	applyDefaults(&f)
	if err := validate(&f); err != nil {
		return nil, err
	}
	return &f, nil
}

// Default returns the all-defaults configuration used when no --config flag
// is given.
func Default() *File {
	f := &File{}
	applyDefaults(f)
	return f
}

func applyDefaults(f *File) {
	if f.NumRows == 0 {
		f.NumRows = 10
	}
	if f.ThresholdForGuessing == 0 {
		f.ThresholdForGuessing = 80
	}
	if f.MaxAttemptsPerRow == 0 {
		f.MaxAttemptsPerRow = 20
	}
	if f.MaxAttemptsPerValue == 0 {
		f.MaxAttemptsPerValue = 10
	}
	if f.MaxTotalAttemptMultiplier == 0 {
		f.MaxTotalAttemptMultiplier = 3
	}
}

func validate(f *File) error {
	if f.ThresholdForGuessing < 0 || f.ThresholdForGuessing > 100 {
		return &errs.ConfigError{Option: "threshold_for_guessing", Reason: "must be between 0 and 100"}
	}
	for _, n := range f.NumRowsPerTable {
		if n < 0 {
			return &errs.ConfigError{Option: "num_rows_per_table", Reason: "row counts must be non-negative"}
		}
	}
	return nil
}

// ValidateAgainstSchema cross-checks predefined_values against the target
// column's CHECK constraints, so a value that can never satisfy its column's
// constraint is rejected at run start rather than silently degrading into an
// UnderfilledTable once every generation attempt fails validateFinal.
func ValidateAgainstSchema(f *File, schema *ddl.Schema) error {
	for scope, cols := range f.PredefinedValues {
		tables := []*ddl.TableDef{}
		if scope == globalScope {
			tables = schema.Tables()
		} else if t, ok := schema.Get(scope); ok {
			tables = []*ddl.TableDef{t}
		}
		for _, t := range tables {
			for column, values := range cols {
				col := t.ColumnByName(column)
				if col == nil {
					continue
				}
				if scope == globalScope {
					// A table-specific override shadows the global value at
					// generation time (spec §9's per-table-over-global
					// precedence), and is validated on its own pass through
					// this loop, so skip it here to avoid judging a value
					// that this table will never actually sample.
					if scopedVals, ok := f.PredefinedValues[t.Name]; ok {
						if _, shadowed := scopedVals[column]; shadowed {
							continue
						}
					}
				}
				for _, check := range t.Checks() {
					if !mentionsOnly(check, column) {
						continue // multi-column CHECK: a single value can't be judged in isolation
					}
					for _, raw := range values {
						row := expr.Row{column: valueForColumn(col, raw)}
						if !expr.CheckPasses(check, expr.Env{Row: row}) {
							return &errs.ConfigError{
								Option: fmt.Sprintf("predefined_values.%s.%s", t.Name, column),
								Reason: fmt.Sprintf("value %q violates its CHECK constraint", raw),
							}
						}
					}
				}
			}
		}
	}
	return nil
}

// mentionsOnly reports whether check references col and no other column, the
// same single-column shape internal/filler's repair heuristic already
// assumes for the columns it can resample in isolation.
func mentionsOnly(check expr.Expr, col string) bool {
	refs := expr.ColumnRefs(check)
	return len(refs) == 1 && refs[0] == col
}

// valueForColumn parses a raw predefined_values string the way its column's
// type would interpret it, so numeric/date CHECKs compare against the right
// expr.Value kind instead of always falling back to a string.
func valueForColumn(col *ddl.ColumnDef, raw string) expr.Value {
	switch col.Type.Kind {
	case ddl.INTEGER, ddl.SERIAL:
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return expr.IntVal(n)
		}
	case ddl.DECIMAL:
		if d, err := expr.ParseDecimal(raw); err == nil {
			return expr.DecimalVal(d)
		}
	case ddl.BOOLEAN:
		if b, err := strconv.ParseBool(raw); err == nil {
			return expr.BoolVal(b)
		}
	case ddl.DATE:
		for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05"} {
			if t, err := time.Parse(layout, raw); err == nil {
				return expr.DateVal(t)
			}
		}
	}
	return expr.StringVal(raw)
}

// Resolver implements filler.Resolver over a loaded File, applying §9's
// per-table-over-global precedence.
type Resolver struct {
	file *File
}

// NewResolver builds a Resolver from a loaded or default File.
func NewResolver(f *File) *Resolver { return &Resolver{file: f} }

func (r *Resolver) ColumnConfig(table, column string) filler.ColumnConfig {
	cc := filler.ColumnConfig{}
	if vals, ok := lookup(r.file.PredefinedValues, table, column); ok {
		cc.PredefinedValues = vals
	}
	if key, ok := lookupScalar(r.file.ColumnTypeMappings, table, column); ok {
		cc.MappingKey = key
	}
	return cc
}

func (r *Resolver) GuessEnabled() bool { return r.file.GuessColumnTypeMappings }

func (r *Resolver) ThresholdForGuessing() float64 {
	return float64(r.file.ThresholdForGuessing) / 100.0
}

// Budgets surfaces the file's attempt-budget knobs as a filler.Budgets.
func (r *Resolver) Budgets() filler.Budgets {
	return filler.Budgets{
		MaxAttemptsPerRow:         r.file.MaxAttemptsPerRow,
		MaxAttemptsPerValue:       r.file.MaxAttemptsPerValue,
		MaxTotalAttemptMultiplier: r.file.MaxTotalAttemptMultiplier,
	}
}

func lookup(scoped map[string]map[string][]string, table, column string) ([]string, bool) {
	if scoped == nil {
		return nil, false
	}
	if cols, ok := scoped[table]; ok {
		if v, ok := cols[column]; ok {
			return v, true
		}
	}
	if cols, ok := scoped[globalScope]; ok {
		if v, ok := cols[column]; ok {
			return v, true
		}
	}
	return nil, false
}

func lookupScalar(scoped map[string]map[string]string, table, column string) (string, bool) {
	if scoped == nil {
		return "", false
	}
	if cols, ok := scoped[table]; ok {
		if v, ok := cols[column]; ok {
			return v, true
		}
	}
	if cols, ok := scoped[globalScope]; ok {
		if v, ok := cols[column]; ok {
			return v, true
		}
	}
	return "", false
}
