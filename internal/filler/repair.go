package filler

import (
	"fmt"
	"sort"

	"github.com/seedforge/seedforge/internal/expr"
)

// repair mutates row in place, attempting to fix each constraint violation
// independently (spec §4.6 step 3). It never returns an error: a row that
// remains invalid afterward is simply dropped by the caller's final
// validateFinal check.
func (tf *tableFiller) repair(row expr.Row) {
	for _, col := range tf.table.Columns {
		if tf.notNull[col.Name] && row[col.Name].IsNull() {
			tf.resampleColumn(row, col.Name)
		}
	}

	for _, check := range tf.checks {
		if tf.checkPasses(row, check) {
			continue
		}
		target := repairTarget(check)
		if target == "" {
			continue
		}
		tf.resampleColumn(row, target)
	}
}

// repairTarget picks the lexicographically-last column referenced by a
// multi-column CHECK (spec §4.6's heuristic), or the sole column for a
// single-column CHECK.
func repairTarget(check expr.Expr) string {
	refs := append([]string(nil), expr.ColumnRefs(check)...)
	if len(refs) == 0 {
		return ""
	}
	sort.Strings(refs)
	return refs[len(refs)-1]
}

// resampleColumn retries sampling col up to K1 times, then, approximating a
// domain-narrowing retry, up to K2 further times from the same
// domain-derived sampler (the sampler already draws from the conservative
// domain §4.3 extracted for the column, so a second resampling tier mostly
// pays off when the first K1 draws were simply unlucky).
func (tf *tableFiller) resampleColumn(row expr.Row, col string) {
	s, ok := tf.samplers[col]
	if !ok {
		return
	}
	if tf.fkAnchoredAt(col) {
		return // FK columns are drawn from a parent pool, not resampled here
	}

	total := tf.cfg.Budgets.MaxAttemptsPerRow + tf.cfg.Budgets.MaxAttemptsPerValue
	if total <= 0 {
		total = 30
	}
	for i := 0; i < total; i++ {
		row[col] = s.Sample(tf.rng)
		if tf.columnSatisfiesAll(row, col) {
			return
		}
	}
}

func (tf *tableFiller) fkAnchoredAt(col string) bool {
	for _, fk := range tf.fks {
		for _, c := range fk.Columns {
			if c == col {
				return true
			}
		}
	}
	return false
}

// columnSatisfiesAll reports whether every CHECK mentioning col currently
// passes (or is UNKNOWN) and, if col is NOT NULL, that it is non-NULL.
func (tf *tableFiller) columnSatisfiesAll(row expr.Row, col string) bool {
	if tf.notNull[col] && row[col].IsNull() {
		return false
	}
	for _, check := range tf.checks {
		mentions := false
		for _, c := range expr.ColumnRefs(check) {
			if c == col {
				mentions = true
				break
			}
		}
		if mentions && !tf.checkPasses(row, check) {
			return false
		}
	}
	return true
}

func (tf *tableFiller) checkPasses(row expr.Row, check expr.Expr) bool {
	return expr.CheckPasses(check, expr.Env{Row: row, Now: tf.now})
}

// validateFinal runs the full validation pass of spec §4.6 step 2 plus the
// uniqueness check, returning a human-readable reason on failure for
// UnderfilledTable's last_failures sample.
func (tf *tableFiller) validateFinal(row expr.Row) (string, bool) {
	for col, required := range tf.notNull {
		if required && row[col].IsNull() {
			return fmt.Sprintf("%s: NOT NULL violated", col), false
		}
	}
	for _, check := range tf.checks {
		if !tf.checkPasses(row, check) {
			return fmt.Sprintf("CHECK failed referencing %v", expr.ColumnRefs(check)), false
		}
	}
	for i, cols := range tf.uniqueSets {
		key, ok := uniqueKey(row, cols)
		if !ok {
			continue // a NULL component exempts this tuple from uniqueness
		}
		if tf.uniqueSeen[i][key] {
			return fmt.Sprintf("duplicate on unique set %v", cols), false
		}
	}
	return "", true
}
