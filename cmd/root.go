package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "seedforge",
	Short: "Generate synthetic, constraint-compliant relational data from SQL DDL",
}

func init() {
	rootCmd.PersistentFlags().StringP("schema", "s", "", "Path to a .sql DDL file")
	rootCmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().Int64("seed", 0, "Random seed (0 picks the config/default seed)")
	rootCmd.PersistentFlags().Int("workers", 0, "Worker pool size (0 = GOMAXPROCS)")
}

// Execute runs the root command, dispatching to whichever subcommand the
// user invoked.
func Execute() error {
	return rootCmd.Execute()
}
