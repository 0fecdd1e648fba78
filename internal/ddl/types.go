// Package ddl implements the DDL lexer/parser of spec §4.1: it consumes one
// or more CREATE TABLE statements (a Postgres/MySQL-overlapping subset) and
// produces a normalized, dialect-independent Schema. CHECK bodies are
// tokenized once and handed to internal/expr as a token slice rather than
// re-lexed from text.
package ddl

import "github.com/seedforge/seedforge/internal/expr"

// TypeKind is the normalized type tag of spec §3.
type TypeKind int

const (
	INTEGER TypeKind = iota
	DECIMAL
	VARCHAR
	CHAR
	TEXT
	DATE
	TIME
	TIMESTAMP
	BOOLEAN
	SERIAL
	ENUM
	OPAQUE // unrecognized type; nullable unless NOT NULL present, fallback sampler
)

func (k TypeKind) String() string {
	switch k {
	case INTEGER:
		return "INTEGER"
	case DECIMAL:
		return "DECIMAL"
	case VARCHAR:
		return "VARCHAR"
	case CHAR:
		return "CHAR"
	case TEXT:
		return "TEXT"
	case DATE:
		return "DATE"
	case TIME:
		return "TIME"
	case TIMESTAMP:
		return "TIMESTAMP"
	case BOOLEAN:
		return "BOOLEAN"
	case SERIAL:
		return "SERIAL"
	case ENUM:
		return "ENUM"
	default:
		return "OPAQUE"
	}
}

// TypeTag is a normalized column type, spec §3.
type TypeTag struct {
	Kind       TypeKind
	Precision  int      // DECIMAL(p,s)
	Scale      int      // DECIMAL(p,s)
	Length     int      // VARCHAR(n) / CHAR(n); 0 = unbounded
	EnumValues []string // ENUM('a','b',...)
	RawName    string   // original source text, for OPAQUE diagnostics
}

// ConstraintKind tags a TableConstraint variant (spec §3).
type ConstraintKind int

const (
	ConstraintPrimaryKey ConstraintKind = iota
	ConstraintUnique
	ConstraintNotNull
	ConstraintCheck
	ConstraintForeignKey
)

// Constraint is the tagged-variant TableConstraint of spec §3.
type Constraint struct {
	Kind ConstraintKind

	// PrimaryKey / Unique / NotNull(single column) / ForeignKey(local cols)
	Columns []string

	// Check
	Check expr.Expr

	// ForeignKey
	RefTable  string
	RefCols   []string
	OnDelete  string
	OnUpdate  string
}

// ColumnDef is a table column (spec §3).
type ColumnDef struct {
	Name       string
	Type       TypeTag
	Nullable   bool // default true; false if NOT NULL
	Default    expr.Expr
	// Constraints written inline on this column definition (PRIMARY KEY,
	// UNIQUE, CHECK, REFERENCES). Table-level constraints are not copied
	// here, even when their column list is exactly {Name}.
	Constraints []Constraint
}

// TableDef is an ordered sequence of columns plus table-level constraints
// and foreign keys (spec §3).
type TableDef struct {
	Name        string
	Columns     []ColumnDef
	Constraints []Constraint // table-level PrimaryKey/Unique/Check/ForeignKey, plus each column's inline PrimaryKey/Unique/ForeignKey
}

// ColumnByName returns the column definition, or nil if absent.
func (t *TableDef) ColumnByName(name string) *ColumnDef {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i]
		}
	}
	return nil
}

// PrimaryKey returns the primary key column list, or nil if none declared.
func (t *TableDef) PrimaryKey() []string {
	for _, c := range t.Constraints {
		if c.Kind == ConstraintPrimaryKey {
			return c.Columns
		}
	}
	return nil
}

// UniqueSets returns every UNIQUE column tuple, including the primary key
// (a PK is implicitly unique). A SERIAL column that is neither PRIMARY KEY
// nor UNIQUE is not listed.
func (t *TableDef) UniqueSets() [][]string {
	var out [][]string
	if pk := t.PrimaryKey(); len(pk) > 0 {
		out = append(out, pk)
	}
	for _, c := range t.Constraints {
		if c.Kind == ConstraintUnique {
			out = append(out, c.Columns)
		}
	}
	return out
}

// ForeignKeys returns every FK constraint declared on the table.
func (t *TableDef) ForeignKeys() []Constraint {
	var out []Constraint
	for _, c := range t.Constraints {
		if c.Kind == ConstraintForeignKey {
			out = append(out, c)
		}
	}
	return out
}

// Checks returns every CHECK expression attached to the table, at either
// column or table scope.
func (t *TableDef) Checks() []expr.Expr {
	var out []expr.Expr
	for _, c := range t.Columns {
		for _, cons := range c.Constraints {
			if cons.Kind == ConstraintCheck {
				out = append(out, cons.Check)
			}
		}
	}
	for _, c := range t.Constraints {
		if c.Kind == ConstraintCheck {
			out = append(out, c.Check)
		}
	}
	return out
}

// NotNullColumns returns the set of column names that must never be NULL.
func (t *TableDef) NotNullColumns() map[string]bool {
	out := map[string]bool{}
	for _, c := range t.Columns {
		if !c.Nullable {
			out[c.Name] = true
		}
	}
	return out
}

// Schema maps table name to TableDef, preserving insertion order (spec §3).
type Schema struct {
	order  []string
	tables map[string]*TableDef
}

// NewSchema returns an empty Schema.
func NewSchema() *Schema {
	return &Schema{tables: map[string]*TableDef{}}
}

// Add registers t, preserving first-insertion order. Re-adding a table with
// the same name replaces it in place without reordering.
func (s *Schema) Add(t *TableDef) {
	if _, exists := s.tables[t.Name]; !exists {
		s.order = append(s.order, t.Name)
	}
	s.tables[t.Name] = t
}

// Get returns the table definition by exact (case-sensitive) name.
func (s *Schema) Get(name string) (*TableDef, bool) {
	t, ok := s.tables[name]
	return t, ok
}

// Tables returns every table in insertion order.
func (s *Schema) Tables() []*TableDef {
	out := make([]*TableDef, 0, len(s.order))
	for _, n := range s.order {
		out = append(out, s.tables[n])
	}
	return out
}

// Names returns every table name in insertion order.
func (s *Schema) Names() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}
