package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seedforge/seedforge/internal/report"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Generate a small sample and print it, without writing any output",
	RunE:  runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)
	previewCmd.Flags().StringP("table", "t", "", "Only this table (required)")
	previewCmd.Flags().IntP("rows", "r", 5, "Maximum rows to print; how many are generated comes from num_rows")
}

func runPreview(cmd *cobra.Command, args []string) error {
	tableName, _ := cmd.Flags().GetString("table")
	if tableName == "" {
		return fmt.Errorf("preview requires --table")
	}
	rows, _ := cmd.Flags().GetInt("rows")

	rep := report.New()
	schema, res, err := runPipeline(cmd, rep)
	if err != nil {
		return err
	}
	if _, ok := schema.Get(tableName); !ok {
		return fmt.Errorf("table %q not found in schema", tableName)
	}

	gt, ok := res.Tables[tableName]
	if !ok {
		rep.Warn(fmt.Sprintf("%s produced no rows", tableName))
		return nil
	}
	n := rows
	if n > len(gt.Rows) {
		n = len(gt.Rows)
	}
	rep.Table(gt.Columns, gt.Rows[:n])
	return nil
}
