package cmd

import (
	"fmt"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/seedforge/seedforge/internal/report"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run generate every time the schema or config file changes",
	RunE:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().String("format", "sql", "Output format: sql, csv, or json")
	watchCmd.Flags().String("out", "seedforge_out", "Output file (sql) or directory (csv/json)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	rep := report.New()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting file watcher: %w", err)
	}
	defer watcher.Close()

	schemaPath, _ := cmd.Flags().GetString("schema")
	if schemaPath == "" {
		return fmt.Errorf("--schema is required")
	}
	if err := watcher.Add(schemaPath); err != nil {
		return fmt.Errorf("watching %s: %w", schemaPath, err)
	}
	if configPath, _ := cmd.Flags().GetString("config"); configPath != "" {
		if err := watcher.Add(configPath); err != nil {
			return fmt.Errorf("watching %s: %w", configPath, err)
		}
	}

	run := func() {
		if err := runGenerate(cmd, args); err != nil {
			rep.Err(err.Error())
			return
		}
		rep.Ok("regenerated")
	}

	rep.Ok(fmt.Sprintf("watching %s — press Ctrl+C to stop", schemaPath))
	run()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			run()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			rep.Err(err.Error())
		}
	}
}
