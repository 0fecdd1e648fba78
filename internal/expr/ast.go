package expr

// Expr is the retained AST for a CHECK predicate (spec §3). Both the
// evaluator and the domain extractor traverse the same structure — source
// text is never kept once a predicate has been parsed.
type Expr interface {
	exprNode()
}

// LitKind tags the literal's underlying value.
type LitKind int

const (
	LitInt LitKind = iota
	LitDecimal
	LitString
	LitDate
	LitBool
	LitNull
)

// Literal is a constant value: int, decimal, string, date, bool, or null.
type Literal struct {
	Kind LitKind
	Int  int64
	Dec  Decimal
	Str  string
	Bool bool
}

// ColumnRef resolves against the enclosing table at evaluation time.
type ColumnRef struct {
	Name string
}

// UnaryOp is - or NOT.
type UnaryOp struct {
	Op      string // "-", "NOT"
	Operand Expr
}

// BinaryOp covers arithmetic, comparison, and AND/OR.
type BinaryOp struct {
	Op    string // + - * / % = <> < <= > >= AND OR
	Left  Expr
	Right Expr
}

// Between is inclusive on both ends.
type Between struct {
	Operand Expr
	Lo      Expr
	Hi      Expr
}

// In matches by typed equality against a literal list.
type In struct {
	Operand Expr
	List    []Expr
}

// Like supports % and _ wildcards, case-sensitive.
type Like struct {
	Operand Expr
	Pattern Expr
}

// Regex is spelled `~` or REGEXP; Negated handles `!~`/NOT REGEXP.
type Regex struct {
	Operand Expr
	Pattern Expr
	Negated bool
}

// IsNull is `IS NULL` / `IS NOT NULL`.
type IsNull struct {
	Operand Expr
	Negated bool
}

// FuncCall covers EXTRACT, DATE, LENGTH, CURRENT_DATE, UPPER, LOWER.
type FuncCall struct {
	Name string
	Args []Expr
	// Part is set only for EXTRACT(part FROM arg) — part is not itself an
	// expression, it's a keyword (YEAR, MONTH, DAY, HOUR, MINUTE, SECOND).
	Part string
}

func (*Literal) exprNode()  {}
func (*ColumnRef) exprNode() {}
func (*UnaryOp) exprNode()  {}
func (*BinaryOp) exprNode() {}
func (*Between) exprNode()  {}
func (*In) exprNode()       {}
func (*Like) exprNode()     {}
func (*Regex) exprNode()    {}
func (*IsNull) exprNode()   {}
func (*FuncCall) exprNode() {}

// ColumnRefs returns every distinct column name mentioned anywhere in e, in
// first-seen order. Used by the domain extractor and by repair-target
// selection (spec §4.6's "lexicographically-last referenced column").
func ColumnRefs(e Expr) []string {
	var out []string
	seen := map[string]bool{}
	var walk func(Expr)
	walk = func(n Expr) {
		switch v := n.(type) {
		case *ColumnRef:
			if !seen[v.Name] {
				seen[v.Name] = true
				out = append(out, v.Name)
			}
		case *UnaryOp:
			walk(v.Operand)
		case *BinaryOp:
			walk(v.Left)
			walk(v.Right)
		case *Between:
			walk(v.Operand)
			walk(v.Lo)
			walk(v.Hi)
		case *In:
			walk(v.Operand)
			for _, e := range v.List {
				walk(e)
			}
		case *Like:
			walk(v.Operand)
			walk(v.Pattern)
		case *Regex:
			walk(v.Operand)
			walk(v.Pattern)
		case *IsNull:
			walk(v.Operand)
		case *FuncCall:
			for _, a := range v.Args {
				walk(a)
			}
		}
	}
	walk(e)
	return out
}

// AndSpine flattens the top-level conjunction of e into its conjuncts. A
// non-AND expression returns a single-element slice. Used by the domain
// extractor, which only tightens bounds across AND, never across OR (spec
// §4.3: "bounds within a disjunction are ignored").
func AndSpine(e Expr) []Expr {
	if b, ok := e.(*BinaryOp); ok && b.Op == "AND" {
		return append(AndSpine(b.Left), AndSpine(b.Right)...)
	}
	return []Expr{e}
}
