package cmd

import (
	"github.com/spf13/cobra"

	"github.com/seedforge/seedforge/internal/config"
	"github.com/seedforge/seedforge/internal/expr"
	"github.com/seedforge/seedforge/internal/mapping"
	"github.com/seedforge/seedforge/internal/report"
)

var suggestMappingsCmd = &cobra.Command{
	Use:   "suggest-mappings",
	Short: "Print the fuzzy column_type_mappings this schema would resolve to, without generating any rows",
	RunE:  runSuggestMappings,
}

func init() {
	rootCmd.AddCommand(suggestMappingsCmd)
}

// runSuggestMappings mirrors the decoupling in the original generator, where
// mapping suggestion is its own pass over the schema that a user inspects
// and edits before it ever feeds a generation run. It never runs the filler.
func runSuggestMappings(cmd *cobra.Command, args []string) error {
	rep := report.New()
	schemaPath, _ := cmd.Flags().GetString("schema")
	schema, err := loadSchema(schemaPath, rep)
	if err != nil {
		return err
	}
	configPath, _ := cmd.Flags().GetString("config")
	cf, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	resolver := config.NewResolver(cf)
	threshold := resolver.ThresholdForGuessing()

	columns := []string{"table", "column", "type", "suggested_category", "score"}
	var rows []expr.Row
	for _, name := range schema.Names() {
		t, _ := schema.Get(name)
		for _, col := range t.Columns {
			cat, score := mapping.BestCategory(col.Name)
			if score < threshold {
				cat = "(none)"
			}
			rows = append(rows, expr.Row{
				"table":              expr.StringVal(name),
				"column":             expr.StringVal(col.Name),
				"type":               expr.StringVal(col.Type.Kind.String()),
				"suggested_category": expr.StringVal(cat),
				"score":              expr.DecimalVal(expr.DecimalFromFloat(score*100, 0)),
			})
		}
	}
	rep.Table(columns, rows)
	return nil
}
