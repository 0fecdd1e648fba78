package filler

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/seedforge/seedforge/internal/ddl"
	"github.com/seedforge/seedforge/internal/depgraph"
	"github.com/seedforge/seedforge/internal/domain"
	"github.com/seedforge/seedforge/internal/errs"
	"github.com/seedforge/seedforge/internal/expr"
	"github.com/seedforge/seedforge/internal/mapping"
)

type tableResult struct {
	table        *ddl.TableDef
	columnOrder  []string
	rows         []expr.Row
	underfilled  *errs.UnderfilledTable
	unknownTypes []errs.UnknownTypeWarning
}

// tableFiller holds everything needed to generate and validate rows for one
// table: samplers, extracted domains, uniqueness indices, and the parent-key
// pools its FK columns draw from.
type tableFiller struct {
	schema *ddl.Schema
	table  *ddl.TableDef
	cfg    Config
	rng    *rand.Rand

	samplers map[string]mapping.Sampler
	domains  map[string]domain.Domain
	notNull  map[string]bool

	checks []expr.Expr

	uniqueSets []([]string)
	uniqueSeen []map[string]bool // parallel to uniqueSets

	fks        []ddl.Constraint
	parentPool map[int][][]expr.Value // fks[i] -> tuples of (refcol values)
	selfPool   [][]expr.Value         // this table's own committed PK values, for self-FKs

	cyclicCols map[string]bool

	// serialCols holds columns whose dense auto-increment identifier is
	// assigned in commit, not here: a candidate that is later dropped must
	// never have consumed a real identifier (spec §9).
	serialCols     []string
	placeholderSeq int64

	committed []expr.Row
	now       time.Time
}

func fillTable(ctx interface{ Err() error }, schema *ddl.Schema, t *ddl.TableDef, plan *depgraph.Plan, cfg Config, res *Result) (*tableResult, error) {
	tf := &tableFiller{
		schema:     schema,
		table:      t,
		cfg:        cfg,
		rng:        newRNG(cfg.Seed, t.Name),
		samplers:   map[string]mapping.Sampler{},
		domains:    map[string]domain.Domain{},
		notNull:    t.NotNullColumns(),
		checks:     t.Checks(),
		uniqueSets: t.UniqueSets(),
		fks:        t.ForeignKeys(),
		parentPool: map[int][][]expr.Value{},
		cyclicCols: map[string]bool{},
	}
	for _, c := range plan.Cyclic[t.Name] {
		tf.cyclicCols[c] = true
	}
	for range tf.uniqueSets {
		tf.uniqueSeen = append(tf.uniqueSeen, map[string]bool{})
	}

	now := cfg.Now
	tf.now = now
	resolver := cfg.Resolver
	var unknownTypes []errs.UnknownTypeWarning
	for i := range t.Columns {
		col := &t.Columns[i]
		d := domain.Extract(col, tf.checks, now)
		tf.domains[col.Name] = d

		threshold := 0.8
		guess := false
		if resolver != nil {
			threshold = resolver.ThresholdForGuessing()
			guess = resolver.GuessEnabled()
		}

		if resolver != nil {
			cc := resolver.ColumnConfig(t.Name, col.Name)
			if len(cc.PredefinedValues) > 0 {
				tf.samplers[col.Name] = mapping.UserProvidedSampler(cc.PredefinedValues)
				continue
			}
			if cc.MappingKey != "" {
				tf.samplers[col.Name] = mapping.RealisticSampler(cc.MappingKey)
				continue
			}
		}

		if col.Type.Kind == ddl.SERIAL {
			// No sampler: generateOne assigns a per-attempt placeholder and
			// commit assigns the real dense identifier, so a dropped
			// candidate never advances the count.
			tf.serialCols = append(tf.serialCols, col.Name)
			continue
		}

		if col.Type.Kind == ddl.OPAQUE {
			unknownTypes = append(unknownTypes, errs.UnknownTypeWarning{Table: t.Name, Column: col.Name, Type: col.Type.RawName})
		}

		if !guess {
			threshold = 1.01 // disables fuzzy realistic-generator matching
		}
		tf.samplers[col.Name] = mapping.ForColumn(col, d, threshold, now)
	}

	for i, fk := range tf.fks {
		if fk.RefTable == t.Name {
			continue // self-reference: pool is this table's own committed rows
		}
		parent, ok := res.Tables[fk.RefTable]
		if !ok {
			continue
		}
		tf.parentPool[i] = projectTuples(parent, fk.RefCols)
	}

	n := rowCountFor(cfg, t.Name)
	maxTotal := n * cfg.Budgets.MaxTotalAttemptMultiplier
	if maxTotal <= 0 {
		maxTotal = n * 3
	}

	var lastFailures []string
	attempts := 0
	for len(tf.committed) < n && attempts < maxTotal {
		attempts++
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		row, ok, reason := tf.generateOne()
		if !ok {
			if reason != "" && len(lastFailures) < 10 {
				lastFailures = append(lastFailures, reason)
			}
			continue
		}
		tf.commit(row)
	}

	tr := &tableResult{table: t, columnOrder: columnNames(t), rows: tf.committed, unknownTypes: unknownTypes}
	if len(tf.committed) < n {
		tr.underfilled = &errs.UnderfilledTable{Table: t.Name, Produced: len(tf.committed), Requested: n, LastFailures: lastFailures}
	}
	return tr, nil
}

func columnNames(t *ddl.TableDef) []string {
	var out []string
	for _, c := range t.Columns {
		out = append(out, c.Name)
	}
	return out
}

func projectTuples(t *GeneratedTable, cols []string) [][]expr.Value {
	var out [][]expr.Value
	for _, row := range t.Rows {
		tuple := make([]expr.Value, len(cols))
		complete := true
		for i, c := range cols {
			v, ok := row[c]
			if !ok || v.IsNull() {
				complete = false
				break
			}
			tuple[i] = v
		}
		if complete {
			out = append(out, tuple)
		}
	}
	return out
}

// generateOne builds one candidate row, validates it, repairs offending
// columns, and reports whether it was accepted.
func (tf *tableFiller) generateOne() (expr.Row, bool, string) {
	row := expr.Row{}
	assigned := map[string]bool{}

	for _, col := range tf.table.Columns {
		if assigned[col.Name] {
			continue
		}
		if tf.isSerialColumn(col.Name) {
			// Placeholder only: unique and distinct across attempts, but
			// never a real identifier. commit() replaces it on acceptance.
			tf.placeholderSeq++
			row[col.Name] = expr.IntVal(-tf.placeholderSeq)
			assigned[col.Name] = true
			continue
		}
		if idx, fk, ok := tf.fkFor(col.Name); ok {
			values, drawOK := tf.drawFK(idx, fk)
			if !drawOK {
				return nil, false, fmt.Sprintf("fk %s: empty parent pool", col.Name)
			}
			for i, c := range fk.Columns {
				row[c] = values[i]
				assigned[c] = true
			}
			continue
		}
		row[col.Name] = tf.sample(col.Name)
		assigned[col.Name] = true
	}

	tf.repair(row)

	if reason, ok := tf.validateFinal(row); !ok {
		return nil, false, reason
	}

	return row, true, ""
}

// fkFor reports the FK constraint (if any) anchored at col — only the first
// column of a (possibly composite) FK is treated as the anchor, so the FK's
// whole tuple is drawn and assigned together rather than column by column.
func (tf *tableFiller) fkFor(col string) (int, ddl.Constraint, bool) {
	for i, fk := range tf.fks {
		if len(fk.Columns) > 0 && fk.Columns[0] == col {
			return i, fk, true
		}
	}
	return 0, ddl.Constraint{}, false
}

// drawFK returns one value per fk.Columns entry, drawn jointly from a single
// parent tuple so composite FKs stay internally consistent.
func (tf *tableFiller) drawFK(idx int, fk ddl.Constraint) ([]expr.Value, bool) {
	nullable := true
	for _, c := range fk.Columns {
		if col := tf.table.ColumnByName(c); col != nil && !col.Nullable {
			nullable = false
		}
	}
	if tf.cyclicCols[fk.Columns[0]] {
		// null-first pass: backpatch fills this in once the whole level
		// commits (spec §9's two-phase cyclic fill).
		return nullValues(len(fk.Columns)), true
	}

	var pool [][]expr.Value
	if fk.RefTable == tf.table.Name {
		pool = tf.selfPool
		if len(pool) == 0 {
			if nullable {
				return nullValues(len(fk.Columns)), true
			}
			// first row, non-nullable self-reference: point at its own
			// identity, which dense SERIAL numbering makes predictable.
			id := int64(len(tf.committed) + 1)
			out := make([]expr.Value, len(fk.Columns))
			for i := range out {
				out[i] = expr.IntVal(id)
			}
			return out, true
		}
	} else {
		pool = tf.parentPool[idx]
		if len(pool) == 0 {
			return nil, false
		}
	}
	tuple := pool[tf.rng.Intn(len(pool))]
	return tuple, true
}

func nullValues(n int) []expr.Value {
	out := make([]expr.Value, n)
	for i := range out {
		out[i] = expr.Null
	}
	return out
}

func (tf *tableFiller) sample(col string) expr.Value {
	s, ok := tf.samplers[col]
	if !ok {
		return expr.Null
	}
	if tf.notNull[col] {
		return s.Sample(tf.rng)
	}
	// nullable columns get a small NULL probability so invariant 1 (NotNull
	// closure) is exercised honestly rather than vacuously.
	if tf.rng.Intn(10) == 0 {
		return expr.Null
	}
	return s.Sample(tf.rng)
}

// isSerialColumn reports whether col is a SERIAL column whose value is
// assigned at commit time rather than during candidate construction.
func (tf *tableFiller) isSerialColumn(col string) bool {
	for _, c := range tf.serialCols {
		if c == col {
			return true
		}
	}
	return false
}

// commit records an accepted row and updates the uniqueness and self-FK
// indices it contributes to. SERIAL columns get their real, dense identifier
// here — this is the only place the counter advances, so a dropped candidate
// never consumes one (spec §9).
func (tf *tableFiller) commit(row expr.Row) {
	if len(tf.serialCols) > 0 {
		id := int64(len(tf.committed) + 1)
		for _, c := range tf.serialCols {
			row[c] = expr.IntVal(id)
		}
	}
	tf.committed = append(tf.committed, row)
	for i, cols := range tf.uniqueSets {
		if key, ok := uniqueKey(row, cols); ok {
			tf.uniqueSeen[i][key] = true
		}
	}
	if pk := tf.table.PrimaryKey(); len(pk) == 1 {
		if v, ok := row[pk[0]]; ok && !v.IsNull() {
			tf.selfPool = append(tf.selfPool, []expr.Value{v})
		}
	}
}

// uniqueKey builds a composite key for a UNIQUE/PK tuple. SQL semantics:
// any NULL component makes the tuple exempt from the uniqueness check, so
// ok is false in that case.
func uniqueKey(row expr.Row, cols []string) (string, bool) {
	var sb strings.Builder
	for i, c := range cols {
		v := row[c]
		if v.IsNull() {
			return "", false
		}
		if i > 0 {
			sb.WriteByte('\x1f')
		}
		sb.WriteString(v.String())
	}
	return sb.String(), true
}
