package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/seedforge/seedforge/internal/config"
	"github.com/seedforge/seedforge/internal/ddl"
	"github.com/seedforge/seedforge/internal/depgraph"
	"github.com/seedforge/seedforge/internal/filler"
	"github.com/seedforge/seedforge/internal/report"
)

// loadSchema reads and parses the --schema file, printing any non-fatal
// dialect warnings through rep before returning the normalized schema.
func loadSchema(path string, rep *report.Reporter) (*ddl.Schema, error) {
	if path == "" {
		return nil, fmt.Errorf("--schema is required")
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema file: %w", err)
	}
	schema, warnings, err := ddl.Parse(string(src))
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		rep.Warn(w.String())
	}
	return schema, nil
}

// loadConfig reads --config if given, else returns the all-defaults file.
func loadConfig(path string) (*config.File, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// runPipeline ties schema parsing, dependency planning, and row generation
// together the way every subcommand (generate/preview/validate) needs it.
func runPipeline(cmd *cobra.Command, rep *report.Reporter) (*ddl.Schema, *filler.Result, error) {
	schemaPath, _ := cmd.Flags().GetString("schema")
	configPath, _ := cmd.Flags().GetString("config")
	seed, _ := cmd.Flags().GetInt64("seed")
	workers, _ := cmd.Flags().GetInt("workers")

	schema, err := loadSchema(schemaPath, rep)
	if err != nil {
		return nil, nil, err
	}

	cf, err := loadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}
	if seed != 0 {
		cf.Seed = &seed
	}
	if err := config.ValidateAgainstSchema(cf, schema); err != nil {
		return nil, nil, err
	}

	plan, err := depgraph.Build(schema)
	if err != nil {
		return nil, nil, err
	}

	resolver := config.NewResolver(cf)
	runSeed := int64(0)
	if cf.Seed != nil {
		runSeed = *cf.Seed
	}
	fcfg := filler.Config{
		NumRows:         cf.NumRows,
		NumRowsPerTable: cf.NumRowsPerTable,
		Seed:            runSeed,
		Workers:         workers,
		Budgets:         resolver.Budgets(),
		Resolver:        resolver,
	}

	res, err := filler.Run(context.Background(), schema, plan, fcfg)
	if err != nil {
		return nil, nil, err
	}
	return schema, res, nil
}

// buildReport turns a filler.Result into the run report printed/persisted
// by generate and validate.
func buildReport(schema *ddl.Schema, res *filler.Result) *report.RunReport {
	rr := &report.RunReport{Underfilled: res.Underfilled, UnknownTypes: res.UnknownTypes}
	for _, name := range schema.Names() {
		gt, ok := res.Tables[name]
		if !ok {
			continue
		}
		produced := len(gt.Rows)
		requested := produced
		for _, u := range res.Underfilled {
			if u.Table == name {
				requested = u.Requested
			}
		}
		rr.Tables = append(rr.Tables, report.TableSummary{Table: name, Produced: produced, Requested: requested})
	}
	return rr
}
