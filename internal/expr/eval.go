package expr

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Tri is SQL three-valued logic: True, False, or Unknown. Any comparison
// involving a NULL operand yields Unknown; AND/OR follow Kleene's rules;
// NOT Unknown = Unknown. A CHECK constraint passes unless it evaluates to
// False (spec §4.2, §3).
type Tri int

const (
	Unknown Tri = iota
	False
	True
)

func boolToTri(b bool) Tri {
	if b {
		return True
	}
	return False
}

func (t Tri) Not() Tri {
	switch t {
	case True:
		return False
	case False:
		return True
	default:
		return Unknown
	}
}

func kleeneAnd(a, b Tri) Tri {
	if a == False || b == False {
		return False
	}
	if a == True && b == True {
		return True
	}
	return Unknown
}

func kleeneOr(a, b Tri) Tri {
	if a == True || b == True {
		return True
	}
	if a == False && b == False {
		return False
	}
	return Unknown
}

// Env carries the evaluation context: the row under construction and the
// frozen process-start date used for CURRENT_DATE (spec §4.2: "frozen for a
// run, for testability").
type Env struct {
	Row Row
	Now time.Time
}

// CheckPasses reports whether a CHECK predicate passes: true unless e
// evaluates to False. Type mismatches and evaluation errors degrade to
// Unknown rather than propagating as Go errors (spec §4.2, §7).
func CheckPasses(e Expr, env Env) bool {
	return evalBool(e, env) != False
}

// EvalBool evaluates e as a boolean predicate under three-valued logic.
func EvalBool(e Expr, env Env) Tri { return evalBool(e, env) }

func evalBool(e Expr, env Env) Tri {
	switch v := e.(type) {
	case *UnaryOp:
		if v.Op == "NOT" {
			return evalBool(v.Operand, env).Not()
		}
	case *BinaryOp:
		switch v.Op {
		case "AND":
			return kleeneAnd(evalBool(v.Left, env), evalBool(v.Right, env))
		case "OR":
			return kleeneOr(evalBool(v.Left, env), evalBool(v.Right, env))
		case "=", "<>", "<", "<=", ">", ">=":
			return evalComparison(v, env)
		}
	case *Between:
		operand, err := evalValue(v.Operand, env)
		lo, errLo := evalValue(v.Lo, env)
		hi, errHi := evalValue(v.Hi, env)
		if err != nil || errLo != nil || errHi != nil || operand.IsNull() || lo.IsNull() || hi.IsNull() {
			return Unknown
		}
		ge, ok1 := compareValues(operand, lo)
		le, ok2 := compareValues(hi, operand)
		if !ok1 || !ok2 {
			return Unknown
		}
		return boolToTri(ge >= 0 && le >= 0)
	case *In:
		operand, err := evalValue(v.Operand, env)
		if err != nil || operand.IsNull() {
			return Unknown
		}
		sawNull := false
		for _, item := range v.List {
			iv, err := evalValue(item, env)
			if err != nil {
				continue
			}
			if iv.IsNull() {
				sawNull = true
				continue
			}
			if cmp, ok := compareValues(operand, iv); ok && cmp == 0 {
				return True
			}
		}
		if sawNull {
			return Unknown
		}
		return False
	case *Like:
		operand, err1 := evalValue(v.Operand, env)
		pattern, err2 := evalValue(v.Pattern, env)
		if err1 != nil || err2 != nil || operand.IsNull() || pattern.IsNull() {
			return Unknown
		}
		return boolToTri(matchLike(operand.String(), pattern.String()))
	case *Regex:
		operand, err1 := evalValue(v.Operand, env)
		pattern, err2 := evalValue(v.Pattern, env)
		if err1 != nil || err2 != nil || operand.IsNull() || pattern.IsNull() {
			return Unknown
		}
		re, err := regexp.Compile(pattern.String())
		if err != nil {
			return Unknown
		}
		matched := re.MatchString(operand.String())
		if v.Negated {
			matched = !matched
		}
		return boolToTri(matched)
	case *IsNull:
		operand, err := evalValue(v.Operand, env)
		if err != nil {
			return Unknown
		}
		isNull := operand.IsNull()
		if v.Negated {
			isNull = !isNull
		}
		return boolToTri(isNull)
	case *Literal:
		if v.Kind == LitBool {
			return boolToTri(v.Bool)
		}
	}
	// Non-boolean-shaped node used in boolean position: evaluate as a value
	// and coerce.
	val, err := evalValue(e, env)
	if err != nil || val.IsNull() {
		return Unknown
	}
	if val.Kind == VBool {
		return boolToTri(val.Bool)
	}
	return Unknown
}

func evalComparison(b *BinaryOp, env Env) Tri {
	l, errL := evalValue(b.Left, env)
	r, errR := evalValue(b.Right, env)
	if errL != nil || errR != nil || l.IsNull() || r.IsNull() {
		return Unknown
	}
	cmp, ok := compareValues(l, r)
	if !ok {
		return Unknown
	}
	switch b.Op {
	case "=":
		return boolToTri(cmp == 0)
	case "<>":
		return boolToTri(cmp != 0)
	case "<":
		return boolToTri(cmp < 0)
	case "<=":
		return boolToTri(cmp <= 0)
	case ">":
		return boolToTri(cmp > 0)
	case ">=":
		return boolToTri(cmp >= 0)
	}
	return Unknown
}

// compareValues returns -1/0/1 for l</=/>r. Returns ok=false on
// incomparable kinds (a type mismatch, which degrades to Unknown at the
// call site rather than erroring, per spec §4.2).
func compareValues(l, r Value) (int, bool) {
	if lf, ok := l.Numeric(); ok {
		if rf, ok2 := r.Numeric(); ok2 {
			switch {
			case lf < rf:
				return -1, true
			case lf > rf:
				return 1, true
			default:
				return 0, true
			}
		}
		return 0, false
	}
	if l.Kind == VString && r.Kind == VString {
		return strings.Compare(l.Str, r.Str), true
	}
	if l.Kind == VDate && r.Kind == VDate {
		switch {
		case l.Date.Before(r.Date):
			return -1, true
		case l.Date.After(r.Date):
			return 1, true
		default:
			return 0, true
		}
	}
	if l.Kind == VBool && r.Kind == VBool {
		if l.Bool == r.Bool {
			return 0, true
		}
		if !l.Bool {
			return -1, true
		}
		return 1, true
	}
	return 0, false
}

// evalValue evaluates e to a scalar Value (for use inside arithmetic,
// comparisons, function args).
func evalValue(e Expr, env Env) (Value, error) {
	switch v := e.(type) {
	case *Literal:
		switch v.Kind {
		case LitInt:
			return IntVal(v.Int), nil
		case LitDecimal:
			return DecimalVal(v.Dec), nil
		case LitString:
			return StringVal(v.Str), nil
		case LitBool:
			return BoolVal(v.Bool), nil
		case LitNull:
			return Null, nil
		case LitDate:
			t, err := ParseDateLiteral(v.Str)
			if err != nil {
				return Null, nil
			}
			return DateVal(t), nil
		}
	case *ColumnRef:
		val, ok := env.Row[v.Name]
		if !ok {
			return Null, nil
		}
		return val, nil
	case *UnaryOp:
		if v.Op == "-" {
			operand, err := evalValue(v.Operand, env)
			if err != nil || operand.IsNull() {
				return Null, nil
			}
			if operand.IsDecimal() {
				d := operand.Dec
				return DecimalVal(Decimal{Unscaled: -d.Unscaled, Scale: d.Scale}), nil
			}
			if f, ok := operand.Numeric(); ok {
				return IntVal(-int64(f)), nil
			}
			return Null, nil
		}
		if v.Op == "NOT" {
			return BoolVal(evalBool(v, env) == True), nil
		}
	case *BinaryOp:
		if v.Op == "AND" || v.Op == "OR" {
			return BoolVal(evalBool(v, env) == True), nil
		}
		if cmpOps[v.Op] {
			return BoolVal(evalBool(v, env) == True), nil
		}
		return evalArith(v, env)
	case *Between, *In, *Like, *Regex, *IsNull:
		return BoolVal(evalBool(v, env) == True), nil
	case *FuncCall:
		return evalFunc(v, env)
	}
	return Null, nil
}

func evalArith(b *BinaryOp, env Env) (Value, error) {
	l, err := evalValue(b.Left, env)
	if err != nil {
		return Null, nil
	}
	r, err := evalValue(b.Right, env)
	if err != nil {
		return Null, nil
	}
	if l.IsNull() || r.IsNull() {
		return Null, nil
	}
	lf, lok := l.Numeric()
	rf, rok := r.Numeric()
	if !lok || !rok {
		return Null, nil
	}
	decimal := l.IsDecimal() || r.IsDecimal()
	var result float64
	switch b.Op {
	case "+":
		result = lf + rf
	case "-":
		result = lf - rf
	case "*":
		result = lf * rf
	case "/":
		if rf == 0 {
			return Null, nil // division by zero yields UNKNOWN
		}
		result = lf / rf
	case "%":
		if rf == 0 {
			return Null, nil
		}
		li, ri := int64(lf), int64(rf)
		return IntVal(li % ri), nil
	}
	if decimal {
		scale := l.Dec.Scale
		if r.Dec.Scale > scale {
			scale = r.Dec.Scale
		}
		if scale == 0 {
			scale = 2
		}
		return DecimalVal(DecimalFromFloat(result, scale)), nil
	}
	return IntVal(int64(result)), nil
}

func evalFunc(f *FuncCall, env Env) (Value, error) {
	switch f.Name {
	case "CURRENT_DATE":
		return DateVal(env.Now), nil
	case "DATE":
		if len(f.Args) != 1 {
			return Null, nil
		}
		arg, err := evalValue(f.Args[0], env)
		if err != nil || arg.IsNull() {
			return Null, nil
		}
		if arg.Kind == VDate {
			return arg, nil
		}
		t, err := ParseDateLiteral(arg.String())
		if err != nil {
			return Null, nil
		}
		return DateVal(t), nil
	case "EXTRACT":
		if len(f.Args) != 1 {
			return Null, nil
		}
		arg, err := evalValue(f.Args[0], env)
		if err != nil || arg.IsNull() {
			return Null, nil
		}
		t := arg.Date
		if arg.Kind != VDate {
			parsed, err := ParseDateLiteral(arg.String())
			if err != nil {
				return Null, nil
			}
			t = parsed
		}
		switch f.Part {
		case "YEAR":
			return IntVal(int64(t.Year())), nil
		case "MONTH":
			return IntVal(int64(t.Month())), nil
		case "DAY":
			return IntVal(int64(t.Day())), nil
		case "HOUR":
			return IntVal(int64(t.Hour())), nil
		case "MINUTE":
			return IntVal(int64(t.Minute())), nil
		case "SECOND":
			return IntVal(int64(t.Second())), nil
		}
		return Null, nil
	case "LENGTH":
		if len(f.Args) != 1 {
			return Null, nil
		}
		arg, err := evalValue(f.Args[0], env)
		if err != nil || arg.IsNull() {
			return Null, nil
		}
		return IntVal(int64(len([]rune(arg.String())))), nil
	case "UPPER":
		if len(f.Args) != 1 {
			return Null, nil
		}
		arg, err := evalValue(f.Args[0], env)
		if err != nil || arg.IsNull() {
			return Null, nil
		}
		return StringVal(strings.ToUpper(arg.String())), nil
	case "LOWER":
		if len(f.Args) != 1 {
			return Null, nil
		}
		arg, err := evalValue(f.Args[0], env)
		if err != nil || arg.IsNull() {
			return Null, nil
		}
		return StringVal(strings.ToLower(arg.String())), nil
	}
	return Null, nil
}

// matchLike implements SQL LIKE with % (any run) and _ (single char),
// case-sensitive, by translating to a regexp.
func matchLike(s, pattern string) bool {
	var sb strings.Builder
	sb.WriteString("^")
	for _, r := range pattern {
		switch r {
		case '%':
			sb.WriteString(".*")
		case '_':
			sb.WriteString(".")
		default:
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	sb.WriteString("$")
	re, err := regexp.Compile(sb.String())
	if err != nil {
		return false
	}
	return re.MatchString(s)
}

// FormatInt is a small helper used by the exporter and samplers to avoid an
// extra strconv import at call sites that already import this package.
func FormatInt(i int64) string { return strconv.FormatInt(i, 10) }
