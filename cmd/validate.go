package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/seedforge/seedforge/internal/expr"
	"github.com/seedforge/seedforge/internal/report"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Generate a sample and check it against every constraint invariant",
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringP("table", "t", "", "Only this table")
}

// runValidate re-derives the same constraints the filler already enforced
// during generation and re-checks every committed row against them,
// surfacing anything that should be structurally impossible — a defense in
// depth check on the generator itself, not a live-database validation.
func runValidate(cmd *cobra.Command, args []string) error {
	rep := report.New()
	schema, res, err := runPipeline(cmd, rep)
	if err != nil {
		return err
	}

	only, _ := cmd.Flags().GetString("table")
	names := schema.Names()
	if only != "" {
		names = []string{only}
	}

	allPassed := true
	for _, name := range names {
		t, ok := schema.Get(name)
		if !ok {
			continue
		}
		gt, ok := res.Tables[name]
		if !ok {
			continue
		}
		violations := validateRows(t, gt.Rows, res.Now)
		if len(violations) == 0 {
			rep.Ok(fmt.Sprintf("%-20s %d rows valid", name, len(gt.Rows)))
			continue
		}
		allPassed = false
		rep.Err(fmt.Sprintf("%-20s %d violations", name, len(violations)))
		for _, v := range violations {
			fmt.Printf("  • %s\n", v)
		}
	}

	for _, u := range res.Underfilled {
		allPassed = false
		rep.Warn(fmt.Sprintf("%s underfilled: %d/%d rows produced", u.Table, u.Produced, u.Requested))
	}

	if !allPassed {
		return fmt.Errorf("validation failed")
	}
	rep.Ok("All tables passed validation")
	return nil
}

// validateRows re-checks NOT NULL, CHECK, and uniqueness against already
// generated rows — a re-derivation, not a second generation pass.
func validateRows(t interface {
	NotNullColumns() map[string]bool
	Checks() []expr.Expr
	UniqueSets() [][]string
}, rows []expr.Row, now time.Time) []string {
	var out []string
	notNull := t.NotNullColumns()
	checks := t.Checks()
	uniqueSets := t.UniqueSets()
	seen := make([]map[string]bool, len(uniqueSets))
	for i := range seen {
		seen[i] = map[string]bool{}
	}

	for _, row := range rows {
		for col, required := range notNull {
			if required && row[col].IsNull() {
				out = append(out, fmt.Sprintf("%s: NOT NULL violated", col))
			}
		}
		for _, check := range checks {
			if !expr.CheckPasses(check, expr.Env{Row: row, Now: now}) {
				out = append(out, fmt.Sprintf("CHECK failed referencing %v", expr.ColumnRefs(check)))
			}
		}
		for i, cols := range uniqueSets {
			key, ok := uniqueKeyForValidate(row, cols)
			if !ok {
				continue
			}
			if seen[i][key] {
				out = append(out, fmt.Sprintf("duplicate on unique set %v", cols))
			}
			seen[i][key] = true
		}
	}
	return out
}

func uniqueKeyForValidate(row expr.Row, cols []string) (string, bool) {
	key := ""
	for i, c := range cols {
		v := row[c]
		if v.IsNull() {
			return "", false
		}
		if i > 0 {
			key += "\x1f"
		}
		key += v.String()
	}
	return key, true
}
