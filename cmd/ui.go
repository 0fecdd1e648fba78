package cmd

import (
	"github.com/spf13/cobra"

	"github.com/seedforge/seedforge/internal/tui"
)

var uiCmd = &cobra.Command{
	Use:   "ui",
	Short: "Launch the interactive terminal dashboard",
	RunE:  func(cmd *cobra.Command, args []string) error { return tui.Run() },
}

func init() {
	rootCmd.AddCommand(uiCmd)
}
