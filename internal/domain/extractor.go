package domain

import (
	"regexp"
	"time"

	"github.com/seedforge/seedforge/internal/ddl"
	"github.com/seedforge/seedforge/internal/expr"
)

// Extract derives col's ValueDomain from its type default plus every CHECK
// expression in checks that mentions it, per spec §4.3. now anchors the
// DATE type default's CURRENT_DATE+10y upper bound.
func Extract(col *ddl.ColumnDef, checks []expr.Expr, now time.Time) Domain {
	d := typeDefault(col.Type, now)
	d.Nullable = col.Nullable

	for _, check := range checks {
		if !mentions(check, col.Name) {
			continue
		}
		for _, conjunct := range expr.AndSpine(check) {
			refs := expr.ColumnRefs(conjunct)
			if len(refs) != 1 || refs[0] != col.Name {
				continue // multi-column or unrelated conjunct: too weak to use
			}
			tighten(&d, conjunct, col.Name)
		}
	}
	return d
}

func mentions(e expr.Expr, col string) bool {
	for _, c := range expr.ColumnRefs(e) {
		if c == col {
			return true
		}
	}
	return false
}

func typeDefault(t ddl.TypeTag, now time.Time) Domain {
	switch t.Kind {
	case ddl.INTEGER, ddl.SERIAL:
		return Domain{Kind: KindNumeric, Min: -(1<<31 - 1), Max: 1<<31 - 1, HasMin: true, HasMax: true, InclusiveMin: true, InclusiveMax: true}
	case ddl.DECIMAL:
		max := 1e12
		if t.Precision > 0 {
			intDigits := t.Precision - t.Scale
			if intDigits < 0 {
				intDigits = 0
			}
			max = pow10(intDigits) - pow10(-t.Scale)
		}
		return Domain{Kind: KindNumeric, Min: -max, Max: max, HasMin: true, HasMax: true, InclusiveMin: true, InclusiveMax: true}
	case ddl.VARCHAR, ddl.CHAR:
		d := Domain{Kind: KindString}
		if t.Length > 0 {
			d.MaxLength = t.Length
			d.HasMaxLength = true
		}
		return d
	case ddl.TEXT:
		return Domain{Kind: KindString}
	case ddl.DATE, ddl.TIMESTAMP, ddl.TIME:
		return Domain{
			Kind: KindDate,
			DateMin: time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC), HasDateMin: true,
			DateMax: now.AddDate(10, 0, 0), HasDateMax: true,
		}
	case ddl.BOOLEAN:
		return Domain{Kind: KindEnum, EnumSet: []string{"true", "false"}}
	case ddl.ENUM:
		return Domain{Kind: KindEnum, EnumSet: append([]string(nil), t.EnumValues...)}
	default:
		return Domain{Kind: KindAny}
	}
}

func pow10(n int) float64 {
	if n <= 0 {
		v := 1.0
		for i := 0; i < -n; i++ {
			v /= 10
		}
		return v
	}
	v := 1.0
	for i := 0; i < n; i++ {
		v *= 10
	}
	return v
}

// tighten applies one recognized pattern from spec §4.3 to d.
func tighten(d *Domain, e expr.Expr, col string) {
	switch v := e.(type) {
	case *expr.BinaryOp:
		tightenComparison(d, v, col)
	case *expr.Between:
		lo, okLo := literalFloat(v.Lo)
		hi, okHi := literalFloat(v.Hi)
		if isColumnRef(v.Operand, col) && okLo && okHi {
			d.IntersectNumeric(lo, hi, true, true, true, true)
		}
	case *expr.In:
		if isColumnRef(v.Operand, col) {
			var values []string
			allLiteral := true
			for _, item := range v.List {
				lit, ok := item.(*expr.Literal)
				if !ok {
					allLiteral = false
					break
				}
				values = append(values, literalText(lit))
			}
			if allLiteral && len(values) > 0 {
				d.IntersectEnum(values)
			}
		}
	case *expr.Regex:
		if isColumnRef(v.Operand, col) && !v.Negated {
			if lit, ok := v.Pattern.(*expr.Literal); ok && lit.Kind == expr.LitString {
				if re, err := compileRegex(lit.Str); err == nil {
					d.Regex = re
					d.RegexSrc = lit.Str
				}
			}
		}
	}
}

func compileRegex(pattern string) (*regexp.Regexp, error) {
	return regexp.Compile(pattern)
}

func tightenComparison(d *Domain, b *expr.BinaryOp, col string) {
	switch b.Op {
	case "=", "<>", "<", "<=", ">", ">=":
	default:
		return // AND/OR handled by AndSpine; arithmetic isn't a top-level predicate
	}

	// LENGTH(col) op const
	if fc, ok := b.Left.(*expr.FuncCall); ok && fc.Name == "LENGTH" && len(fc.Args) == 1 && isColumnRef(fc.Args[0], col) {
		if c, ok := literalFloat(b.Right); ok {
			applyLengthBound(d, b.Op, c)
		}
		return
	}
	if fc, ok := b.Right.(*expr.FuncCall); ok && fc.Name == "LENGTH" && len(fc.Args) == 1 && isColumnRef(fc.Args[0], col) {
		if c, ok := literalFloat(b.Left); ok {
			applyLengthBound(d, flipOp(b.Op), c)
		}
		return
	}

	// col op const
	if isColumnRef(b.Left, col) {
		if c, ok := literalFloat(b.Right); ok {
			applyNumericOp(d, b.Op, c)
			return
		}
		if lit, ok := b.Right.(*expr.Literal); ok && b.Op == "=" && lit.Kind == expr.LitString {
			d.IntersectEnum([]string{lit.Str})
		}
		return
	}
	// const op col
	if isColumnRef(b.Right, col) {
		if c, ok := literalFloat(b.Left); ok {
			applyNumericOp(d, flipOp(b.Op), c)
		}
	}
}

func applyNumericOp(d *Domain, op string, c float64) {
	switch op {
	case "=":
		d.IntersectNumeric(c, c, true, true, true, true)
	case ">":
		d.IntersectNumeric(c, 0, true, false, false, false)
	case ">=":
		d.IntersectNumeric(c, 0, true, false, true, false)
	case "<":
		d.IntersectNumeric(0, c, false, true, false, false)
	case "<=":
		d.IntersectNumeric(0, c, false, true, false, true)
	}
}

func applyLengthBound(d *Domain, op string, c float64) {
	n := int(c)
	switch op {
	case "=", "<=":
		if !d.HasMaxLength || n < d.MaxLength {
			d.MaxLength = n
			d.HasMaxLength = true
		}
	case "<":
		if !d.HasMaxLength || n-1 < d.MaxLength {
			d.MaxLength = n - 1
			d.HasMaxLength = true
		}
	}
}

func flipOp(op string) string {
	switch op {
	case "<":
		return ">"
	case "<=":
		return ">="
	case ">":
		return "<"
	case ">=":
		return "<="
	default:
		return op
	}
}

func isColumnRef(e expr.Expr, col string) bool {
	ref, ok := e.(*expr.ColumnRef)
	return ok && ref.Name == col
}

func literalFloat(e expr.Expr) (float64, bool) {
	switch v := e.(type) {
	case *expr.Literal:
		switch v.Kind {
		case expr.LitInt:
			return float64(v.Int), true
		case expr.LitDecimal:
			return v.Dec.Float64(), true
		}
	case *expr.UnaryOp:
		if v.Op == "-" {
			if f, ok := literalFloat(v.Operand); ok {
				return -f, true
			}
		}
	}
	return 0, false
}

func literalText(lit *expr.Literal) string {
	switch lit.Kind {
	case expr.LitString:
		return lit.Str
	case expr.LitInt:
		return expr.FormatInt(lit.Int)
	case expr.LitDecimal:
		return lit.Dec.String()
	case expr.LitBool:
		if lit.Bool {
			return "true"
		}
		return "false"
	}
	return ""
}
