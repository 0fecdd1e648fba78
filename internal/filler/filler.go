// Package filler implements the dependency-aware row generator: it walks a
// depgraph.Plan level by level, generating candidate rows for every table in
// a level concurrently, validating them against NOT NULL/UNIQUE/CHECK/FK
// constraints, repairing or dropping violations, and committing accepted
// rows before the next level starts (spec §4.6, §5).
package filler

import (
	"context"
	"hash/fnv"
	"math/rand"
	"runtime"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/seedforge/seedforge/internal/ddl"
	"github.com/seedforge/seedforge/internal/depgraph"
	"github.com/seedforge/seedforge/internal/errs"
	"github.com/seedforge/seedforge/internal/expr"
)

// Budgets holds the three attempt-budget knobs of spec §6, named after the
// config options they come from.
type Budgets struct {
	MaxAttemptsPerRow         int // K1: per-column resample attempts, default 20
	MaxAttemptsPerValue       int // K2: domain-narrowing retry attempts, default 10
	MaxTotalAttemptMultiplier int // K3: total candidate multiplier, default 3
}

// DefaultBudgets returns spec §6's documented defaults.
func DefaultBudgets() Budgets {
	return Budgets{MaxAttemptsPerRow: 20, MaxAttemptsPerValue: 10, MaxTotalAttemptMultiplier: 3}
}

// ColumnConfig is the resolved, column-scoped configuration a Resolver hands
// back for one column (spec §9's per-table-over-global precedence).
type ColumnConfig struct {
	PredefinedValues []string
	MappingKey       string // forces a specific realistic-generator category
}

// Resolver supplies per-column configuration and fuzzy-matching settings,
// implemented by internal/config's two-level lookup.
type Resolver interface {
	ColumnConfig(table, column string) ColumnConfig
	GuessEnabled() bool
	ThresholdForGuessing() float64 // 0..1
}

// Config drives one generation run.
type Config struct {
	NumRows         int
	NumRowsPerTable map[string]int
	Seed            int64
	Workers         int
	Budgets         Budgets
	Resolver        Resolver

	// Now freezes CURRENT_DATE for the whole run (spec
	// §4.2: "the process-start date, frozen for a run"). Zero means Run
	// captures time.Now() itself; tests set it explicitly for reproducible
	// CHECK/domain evaluation.
	Now time.Time
}

// GeneratedTable is the committed, ordered result for one table.
type GeneratedTable struct {
	Name    string
	Columns []string
	Rows    []expr.Row
}

// Result is the outcome of a full run.
type Result struct {
	Tables       map[string]*GeneratedTable
	Underfilled  []errs.UnderfilledTable
	UnknownTypes []errs.UnknownTypeWarning

	// Now is the CURRENT_DATE timestamp this run was frozen at, so a later
	// re-check (cmd validate) can evaluate CHECK predicates against the same
	// instant the original generation run used.
	Now time.Time
}

// Run executes the full plan. It returns early, with no partial Result, if
// ctx is cancelled at a level boundary. Invalid option combinations such as
// a predefined value that violates a column's CHECK are rejected earlier, by
// internal/config, before Run is ever called.
func Run(ctx context.Context, schema *ddl.Schema, plan *depgraph.Plan, cfg Config) (*Result, error) {
	now := cfg.Now
	if now.IsZero() {
		now = time.Now()
	}
	cfg.Now = now
	res := &Result{Tables: map[string]*GeneratedTable{}, Now: now}

	for _, level := range plan.Levels {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		sem := make(chan struct{}, workers(cfg.Workers))
		g, gctx := errgroup.WithContext(ctx)

		tables := append([]string(nil), level.Tables...)
		sort.Strings(tables)
		results := make([]*tableResult, len(tables))

		for i, name := range tables {
			i, name := i, name
			tbl, ok := schema.Get(name)
			if !ok {
				continue
			}
			g.Go(func() error {
				select {
				case sem <- struct{}{}:
				case <-gctx.Done():
					return gctx.Err()
				}
				defer func() { <-sem }()

				tr, err := fillTable(gctx, schema, tbl, plan, cfg, res)
				if err != nil {
					return err
				}
				results[i] = tr
				return nil
			})
		}

		if err := g.Wait(); err != nil {
			return nil, err
		}

		for _, tr := range results {
			if tr == nil {
				continue
			}
			res.Tables[tr.table.Name] = &GeneratedTable{Name: tr.table.Name, Columns: tr.columnOrder, Rows: tr.rows}
			if tr.underfilled != nil {
				res.Underfilled = append(res.Underfilled, *tr.underfilled)
			}
			res.UnknownTypes = append(res.UnknownTypes, tr.unknownTypes...)
		}

		backpatchCycles(schema, plan, level, res, cfg.Seed)
	}

	return res, nil
}

func workers(n int) int {
	if n > 0 {
		return n
	}
	return runtime.GOMAXPROCS(0)
}

// subSeed derives a per-table deterministic seed from the run seed and table
// name (spec §5), so a table's output does not shift when sibling tables'
// row counts change.
func subSeed(seed int64, table string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(table))
	mixed := uint64(seed) ^ h.Sum64()
	return int64(mixed)
}

func newRNG(seed int64, table string) *rand.Rand {
	return rand.New(rand.NewSource(subSeed(seed, table)))
}

func rowCountFor(cfg Config, table string) int {
	if n, ok := cfg.NumRowsPerTable[table]; ok {
		return n
	}
	if cfg.NumRows > 0 {
		return cfg.NumRows
	}
	return 10
}
