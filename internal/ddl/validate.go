package ddl

import (
	"fmt"

	"github.com/seedforge/seedforge/internal/expr"
)

// validate checks the structural invariants of spec §3: every column
// referenced by any constraint or FK exists in its table, and FK-referenced
// columns exist in the target table.
func validate(s *Schema) error {
	for _, t := range s.Tables() {
		names := map[string]bool{}
		for _, c := range t.Columns {
			names[c.Name] = true
		}
		for _, c := range t.Constraints {
			for _, col := range c.Columns {
				if !names[col] {
					return &parseErr{msg: fmt.Sprintf("table %s: constraint references unknown column %q", t.Name, col)}
				}
			}
			if c.Kind == ConstraintCheck {
				for _, col := range expr.ColumnRefs(c.Check) {
					if !names[col] {
						return &parseErr{msg: fmt.Sprintf("table %s: CHECK references unknown column %q", t.Name, col)}
					}
				}
			}
			if c.Kind == ConstraintForeignKey {
				ref, ok := s.Get(c.RefTable)
				if !ok {
					return &parseErr{msg: fmt.Sprintf("table %s: foreign key references unknown table %q", t.Name, c.RefTable)}
				}
				for _, rc := range c.RefCols {
					if ref.ColumnByName(rc) == nil {
						return &parseErr{msg: fmt.Sprintf("table %s: foreign key references unknown column %s.%s", t.Name, c.RefTable, rc)}
					}
				}
			}
		}
		for _, c := range t.Columns {
			for _, cons := range c.Constraints {
				if cons.Kind == ConstraintCheck {
					for _, col := range expr.ColumnRefs(cons.Check) {
						if !names[col] {
							return &parseErr{msg: fmt.Sprintf("table %s: CHECK references unknown column %q", t.Name, col)}
						}
					}
				}
				if cons.Kind == ConstraintForeignKey {
					ref, ok := s.Get(cons.RefTable)
					if !ok {
						return &parseErr{msg: fmt.Sprintf("table %s: foreign key references unknown table %q", t.Name, cons.RefTable)}
					}
					for _, rc := range cons.RefCols {
						if ref.ColumnByName(rc) == nil {
							return &parseErr{msg: fmt.Sprintf("table %s: foreign key references unknown column %s.%s", t.Name, cons.RefTable, rc)}
						}
					}
				}
			}
		}
	}
	return nil
}
