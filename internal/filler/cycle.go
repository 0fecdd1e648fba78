package filler

import (
	"github.com/seedforge/seedforge/internal/ddl"
	"github.com/seedforge/seedforge/internal/depgraph"
)

// backpatchCycles fills in the cyclic FK columns depgraph.Build left NULL
// during the level's generation pass, once every table in the level has
// committed (spec §9: null-first, then back-patch). Only a fraction of rows
// are patched, leaving the rest NULL, so a nullable cyclic FK stays
// genuinely nullable rather than always-populated (spec §8 scenario E).
func backpatchCycles(schema *ddl.Schema, plan *depgraph.Plan, level depgraph.Level, res *Result, seed int64) {
	for _, tableName := range level.Tables {
		cols, ok := plan.Cyclic[tableName]
		if !ok || len(cols) == 0 {
			continue
		}
		t, ok := schema.Get(tableName)
		if !ok {
			continue
		}
		gt, ok := res.Tables[tableName]
		if !ok {
			continue
		}
		rng := newRNG(seed, tableName+"#backpatch")

		for _, col := range cols {
			fk := fkConstraintFor(t, col)
			if fk == nil {
				continue
			}
			parent, ok := res.Tables[fk.RefTable]
			if !ok || len(parent.Rows) == 0 {
				continue
			}
			pool := projectTuples(parent, fk.RefCols)
			if len(pool) == 0 {
				continue
			}
			for _, row := range gt.Rows {
				if rng.Intn(2) == 0 {
					continue // leave this one NULL
				}
				tuple := pool[rng.Intn(len(pool))]
				row[col] = tuple[0]
			}
		}
	}
}

func fkConstraintFor(t *ddl.TableDef, col string) *ddl.Constraint {
	for _, fk := range t.ForeignKeys() {
		if len(fk.Columns) > 0 && fk.Columns[0] == col {
			fk := fk
			return &fk
		}
	}
	return nil
}
