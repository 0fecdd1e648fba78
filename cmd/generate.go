package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seedforge/seedforge/internal/depgraph"
	"github.com/seedforge/seedforge/internal/export"
	"github.com/seedforge/seedforge/internal/report"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate synthetic rows for every table and write them to --out",
	RunE:  runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().String("format", "sql", "Output format: sql, csv, or json")
	generateCmd.Flags().String("out", "seedforge_out", "Output file (sql) or directory (csv/json)")
	generateCmd.Flags().String("report", "", "Optional path to write a YAML run report")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	rep := report.New()

	schema, res, err := runPipeline(cmd, rep)
	if err != nil {
		return err
	}

	plan, err := depgraph.Build(schema)
	if err != nil {
		return err
	}
	var order []string
	for _, level := range plan.Levels {
		order = append(order, level.Tables...)
	}

	format, _ := cmd.Flags().GetString("format")
	out, _ := cmd.Flags().GetString("out")

	switch format {
	case "sql":
		if err := export.SQL(out, order, res.Tables); err != nil {
			return err
		}
	case "csv":
		if err := export.CSV(out, order, res.Tables); err != nil {
			return err
		}
	case "json":
		if err := export.JSON(out, order, res.Tables); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown --format %q (want sql, csv, or json)", format)
	}

	rr := buildReport(schema, res)
	rr.Finalize()
	rr.Print(rep)

	if reportPath, _ := cmd.Flags().GetString("report"); reportPath != "" {
		if err := rr.WriteYAML(reportPath); err != nil {
			return err
		}
	}
	return nil
}
