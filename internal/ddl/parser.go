package ddl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/seedforge/seedforge/internal/expr"
)

// Warning is a non-fatal diagnostic collected during parsing (spec §4.1,
// §7's UnknownTypeWarning, plus the unsigned-integer open question).
type Warning struct {
	Table   string
	Column  string
	Message string
}

func (w Warning) String() string {
	if w.Column != "" {
		return fmt.Sprintf("%s.%s: %s", w.Table, w.Column, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Table, w.Message)
}

// Parse tokenizes and parses one or more CREATE TABLE statements into a
// Schema. Comments are stripped before tokenizing.
func Parse(src string) (*Schema, []Warning, error) {
	clean := stripComments(src)
	toks, err := expr.Lex(clean)
	if err != nil {
		return nil, nil, &parseErr{msg: err.Error()}
	}
	p := &parser{toks: toks}
	schema := NewSchema()
	var warnings []Warning

	for !p.atEnd() {
		if p.isKeyword("CREATE") {
			t, w, err := p.parseCreateTable()
			if err != nil {
				return nil, nil, err
			}
			schema.Add(t)
			warnings = append(warnings, w...)
			continue
		}
		// Skip stray tokens between statements (e.g. a trailing ';').
		p.advance()
	}

	if err := validate(schema); err != nil {
		return nil, nil, err
	}
	return schema, warnings, nil
}

type parseErr struct{ msg string }

func (e *parseErr) Error() string { return e.msg }

type parser struct {
	toks []expr.Token
	pos  int
}

func (p *parser) cur() expr.Token {
	if p.pos >= len(p.toks) {
		return expr.Token{Kind: expr.KindEOF}
	}
	return p.toks[p.pos]
}

func (p *parser) atEnd() bool { return p.pos >= len(p.toks) || p.cur().Kind == expr.KindEOF }

func (p *parser) advance() expr.Token {
	t := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *parser) isKeyword(kw string) bool {
	t := p.cur()
	return t.Kind == expr.KindIdent && t.Upper() == kw
}

func (p *parser) isPunct(s string) bool {
	t := p.cur()
	return t.Kind == expr.KindPunct && t.Text == s
}

func (p *parser) expectKeyword(kw string) error {
	if !p.isKeyword(kw) {
		return &parseErr{msg: fmt.Sprintf("parse error at %d:%d: expected %s, found %q", p.cur().Line, p.cur().Column, kw, p.cur().Text)}
	}
	p.advance()
	return nil
}

func (p *parser) expectPunct(s string) error {
	if !p.isPunct(s) {
		return &parseErr{msg: fmt.Sprintf("parse error at %d:%d: expected %q, found %q", p.cur().Line, p.cur().Column, s, p.cur().Text)}
	}
	p.advance()
	return nil
}

// parseCreateTable parses `CREATE TABLE [IF NOT EXISTS] name ( ... ) ;`.
func (p *parser) parseCreateTable() (*TableDef, []Warning, error) {
	if err := p.expectKeyword("CREATE"); err != nil {
		return nil, nil, err
	}
	if err := p.expectKeyword("TABLE"); err != nil {
		return nil, nil, err
	}
	if p.isKeyword("IF") {
		p.advance()
		if err := p.expectKeyword("NOT"); err != nil {
			return nil, nil, err
		}
		if err := p.expectKeyword("EXISTS"); err != nil {
			return nil, nil, err
		}
	}
	if p.cur().Kind != expr.KindIdent {
		return nil, nil, &parseErr{msg: fmt.Sprintf("parse error at %d:%d: expected table name, found %q", p.cur().Line, p.cur().Column, p.cur().Text)}
	}
	name := p.advance().Text

	if err := p.expectPunct("("); err != nil {
		return nil, nil, err
	}

	t := &TableDef{Name: name}
	var warnings []Warning

	for {
		if p.isPunct(")") {
			p.advance()
			break
		}
		itemToks, err := p.collectItem()
		if err != nil {
			return nil, nil, err
		}
		w, err := parseTableItem(t, itemToks)
		if err != nil {
			return nil, nil, err
		}
		warnings = append(warnings, w...)

		if p.isPunct(",") {
			p.advance()
			continue
		}
	}
	if p.isPunct(";") {
		p.advance()
	}
	return t, warnings, nil
}

// collectItem returns the token slice for one comma-separated column or
// table-constraint definition, respecting nested parentheses.
func (p *parser) collectItem() ([]expr.Token, error) {
	start := p.pos
	depth := 0
	for {
		if p.atEnd() {
			return nil, &parseErr{msg: "parse error: unexpected end of input inside CREATE TABLE"}
		}
		t := p.cur()
		if t.Kind == expr.KindPunct {
			switch t.Text {
			case "(":
				depth++
			case ")":
				if depth == 0 {
					return p.toks[start:p.pos], nil
				}
				depth--
			case ",":
				if depth == 0 {
					item := p.toks[start:p.pos]
					return item, nil
				}
			}
		}
		p.advance()
	}
}

// parseTableItem dispatches a single comma-separated item to either a
// table-level constraint or a column definition.
func parseTableItem(t *TableDef, toks []expr.Token) ([]Warning, error) {
	if len(toks) == 0 {
		return nil, nil
	}
	upper := toks[0].Upper()
	if upper == "CONSTRAINT" {
		// CONSTRAINT name <PRIMARY KEY|UNIQUE|CHECK|FOREIGN KEY> ...
		toks = toks[2:] // skip CONSTRAINT <name>
		if len(toks) == 0 {
			return nil, nil
		}
		upper = toks[0].Upper()
	}
	switch upper {
	case "PRIMARY":
		cols, err := parseColumnList(toks, 2) // PRIMARY KEY (...)
		if err != nil {
			return nil, err
		}
		t.Constraints = append(t.Constraints, Constraint{Kind: ConstraintPrimaryKey, Columns: cols})
		return nil, nil
	case "UNIQUE":
		cols, err := parseColumnList(toks, 1)
		if err != nil {
			return nil, err
		}
		t.Constraints = append(t.Constraints, Constraint{Kind: ConstraintUnique, Columns: cols})
		return nil, nil
	case "FOREIGN":
		return nil, parseTableForeignKey(t, toks)
	case "CHECK":
		e, err := parseCheckBody(toks[1:])
		if err != nil {
			return nil, err
		}
		t.Constraints = append(t.Constraints, Constraint{Kind: ConstraintCheck, Check: e})
		return nil, nil
	default:
		return parseColumnDef(t, toks)
	}
}

// parseColumnList parses `... ( col, col, ... )`, skipping the first
// skip tokens (e.g. PRIMARY KEY or UNIQUE).
func parseColumnList(toks []expr.Token, skip int) ([]string, error) {
	if skip >= len(toks) || toks[skip].Text != "(" {
		return nil, &parseErr{msg: "parse error: expected ( in column list"}
	}
	var cols []string
	for i := skip + 1; i < len(toks) && toks[i].Text != ")"; i++ {
		if toks[i].Kind == expr.KindIdent {
			cols = append(cols, toks[i].Text)
		}
	}
	return cols, nil
}

func parseTableForeignKey(t *TableDef, toks []expr.Token) error {
	// FOREIGN KEY ( cols ) REFERENCES table ( cols ) [ON DELETE x] [ON UPDATE y]
	if len(toks) < 2 || toks[1].Upper() != "KEY" {
		return &parseErr{msg: "parse error: expected FOREIGN KEY"}
	}
	cols, err := parseColumnList(toks, 2)
	if err != nil {
		return err
	}
	idx := indexOfClosingThenKeyword(toks, 2, "REFERENCES")
	if idx == -1 {
		return &parseErr{msg: "parse error: expected REFERENCES"}
	}
	idx++ // consume REFERENCES
	if idx >= len(toks) || toks[idx].Kind != expr.KindIdent {
		return &parseErr{msg: "parse error: expected reference table name"}
	}
	refTable := toks[idx].Text
	idx++
	refCols, rest := parseParenColsAt(toks, idx)
	onDelete, onUpdate := parseOnActions(rest)
	t.Constraints = append(t.Constraints, Constraint{
		Kind: ConstraintForeignKey, Columns: cols,
		RefTable: refTable, RefCols: refCols,
		OnDelete: onDelete, OnUpdate: onUpdate,
	})
	return nil
}

func indexOfClosingThenKeyword(toks []expr.Token, openIdx int, kw string) int {
	close := expr.FindMatchingParen(toks, openIdx)
	if close == -1 {
		return -1
	}
	for i := close + 1; i < len(toks); i++ {
		if toks[i].Upper() == kw {
			return i
		}
	}
	return -1
}

func parseParenColsAt(toks []expr.Token, idx int) (cols []string, rest []expr.Token) {
	if idx >= len(toks) || toks[idx].Text != "(" {
		return nil, toks[idx:]
	}
	close := expr.FindMatchingParen(toks, idx)
	for i := idx + 1; i < close; i++ {
		if toks[i].Kind == expr.KindIdent {
			cols = append(cols, toks[i].Text)
		}
	}
	return cols, toks[close+1:]
}

func parseOnActions(toks []expr.Token) (onDelete, onUpdate string) {
	i := 0
	for i < len(toks) {
		if toks[i].Upper() == "ON" && i+1 < len(toks) {
			switch toks[i+1].Upper() {
			case "DELETE":
				if i+2 < len(toks) {
					onDelete = collectActionWords(toks, i+2)
				}
			case "UPDATE":
				if i+2 < len(toks) {
					onUpdate = collectActionWords(toks, i+2)
				}
			}
		}
		i++
	}
	return
}

func collectActionWords(toks []expr.Token, start int) string {
	var words []string
	for i := start; i < len(toks) && len(words) < 2; i++ {
		if toks[i].Kind != expr.KindIdent {
			break
		}
		u := toks[i].Upper()
		if u == "ON" {
			break
		}
		words = append(words, u)
		if u != "SET" && u != "NO" {
			break
		}
	}
	return strings.Join(words, " ")
}

// parseCheckBody parses `( expr )` immediately following CHECK.
func parseCheckBody(toks []expr.Token) (expr.Expr, error) {
	if len(toks) == 0 || toks[0].Text != "(" {
		return nil, &parseErr{msg: "parse error: expected ( after CHECK"}
	}
	close := expr.FindMatchingParen(toks, 0)
	if close == -1 {
		return nil, &parseErr{msg: "parse error: unterminated CHECK("}
	}
	inner := toks[1:close]
	e, err := expr.Parse(inner)
	if err != nil {
		return nil, &parseErr{msg: "parse error in CHECK expression: " + err.Error()}
	}
	return e, nil
}

// parseColumnDef parses `name type [inline_constraint*]`.
func parseColumnDef(t *TableDef, toks []expr.Token) ([]Warning, error) {
	if len(toks) == 0 || toks[0].Kind != expr.KindIdent {
		return nil, &parseErr{msg: "parse error: expected column name"}
	}
	col := ColumnDef{Name: toks[0].Text, Nullable: true}
	i := 1

	typeTag, next, warn, err := parseType(toks, i)
	if err != nil {
		return nil, err
	}
	col.Type = typeTag
	i = next

	var warnings []Warning
	if warn != "" {
		warnings = append(warnings, Warning{Table: t.Name, Column: col.Name, Message: warn})
	}

	autoIncrement := false
	for i < len(toks) {
		switch toks[i].Upper() {
		case "NOT":
			if i+1 < len(toks) && toks[i+1].Upper() == "NULL" {
				col.Nullable = false
				i += 2
				continue
			}
			i++
		case "NULL":
			col.Nullable = true
			i++
		case "PRIMARY":
			if i+1 < len(toks) && toks[i+1].Upper() == "KEY" {
				col.Constraints = append(col.Constraints, Constraint{Kind: ConstraintPrimaryKey, Columns: []string{col.Name}})
				col.Nullable = false
				i += 2
				continue
			}
			i++
		case "UNIQUE":
			col.Constraints = append(col.Constraints, Constraint{Kind: ConstraintUnique, Columns: []string{col.Name}})
			i++
		case "AUTO_INCREMENT":
			autoIncrement = true
			i++
		case "DEFAULT":
			i++
			defToks, consumed := collectDefaultExpr(toks, i)
			if len(defToks) > 0 {
				e, err := expr.Parse(defToks)
				if err == nil {
					col.Default = e
				}
			}
			i += consumed
		case "CHECK":
			close := expr.FindMatchingParen(toks, i+1)
			if close == -1 {
				return nil, &parseErr{msg: "parse error: unterminated CHECK("}
			}
			e, err := expr.Parse(toks[i+2 : close])
			if err != nil {
				return nil, &parseErr{msg: "parse error in CHECK expression: " + err.Error()}
			}
			col.Constraints = append(col.Constraints, Constraint{Kind: ConstraintCheck, Check: e, Columns: []string{col.Name}})
			i = close + 1
		case "REFERENCES":
			i++
			if i >= len(toks) || toks[i].Kind != expr.KindIdent {
				return nil, &parseErr{msg: "parse error: expected reference table name"}
			}
			refTable := toks[i].Text
			i++
			refCols, rest := parseParenColsAt(toks, i)
			consumedRefColsLen := len(toks) - len(rest) - i
			_ = consumedRefColsLen
			onDelete, onUpdate := parseOnActions(rest)
			col.Constraints = append(col.Constraints, Constraint{
				Kind: ConstraintForeignKey, Columns: []string{col.Name},
				RefTable: refTable, RefCols: refCols, OnDelete: onDelete, OnUpdate: onUpdate,
			})
			i = len(toks) // REFERENCES clause consumes the remainder of this item
		default:
			i++
		}
	}

	if autoIncrement && typeTag.Kind == INTEGER {
		col.Type = TypeTag{Kind: SERIAL}
		col.Nullable = false
	}

	// Inline PRIMARY KEY/UNIQUE/REFERENCES also apply at table scope, where
	// PrimaryKey, UniqueSets and ForeignKeys look for them.
	for _, c := range col.Constraints {
		if c.Kind != ConstraintCheck {
			t.Constraints = append(t.Constraints, c)
		}
	}

	t.Columns = append(t.Columns, col)
	return warnings, nil
}

// collectDefaultExpr greedily consumes tokens for a DEFAULT value: either a
// single literal/function-call, or a parenthesized expression.
func collectDefaultExpr(toks []expr.Token, i int) ([]expr.Token, int) {
	if i >= len(toks) {
		return nil, 0
	}
	if toks[i].Text == "(" {
		close := expr.FindMatchingParen(toks, i)
		if close == -1 {
			return toks[i:], len(toks) - i
		}
		return toks[i : close+1], close + 1 - i
	}
	// Single token default (literal, CURRENT_DATE, function call with args).
	if toks[i].Kind == expr.KindIdent && i+1 < len(toks) && toks[i+1].Text == "(" {
		close := expr.FindMatchingParen(toks, i+1)
		if close != -1 {
			return toks[i : close+1], close + 1 - i
		}
	}
	return toks[i : i+1], 1
}

var intTypes = map[string]bool{"INT": true, "INTEGER": true, "SMALLINT": true, "BIGINT": true}
var decimalTypes = map[string]bool{"DECIMAL": true, "NUMERIC": true, "REAL": true, "DOUBLE": true, "FLOAT": true}

// parseType parses a column type starting at toks[i], returning the
// TypeTag, the next unconsumed index, and an optional warning message.
func parseType(toks []expr.Token, i int) (TypeTag, int, string, error) {
	if i >= len(toks) || toks[i].Kind != expr.KindIdent {
		return TypeTag{}, i, "", &parseErr{msg: fmt.Sprintf("parse error at %d:%d: expected type name", toks[min(i, len(toks)-1)].Line, toks[min(i, len(toks)-1)].Column)}
	}
	name := toks[i].Upper()
	raw := toks[i].Text
	i++

	switch {
	case name == "SERIAL" || name == "BIGSERIAL" || name == "SMALLSERIAL":
		return TypeTag{Kind: SERIAL}, i, "", nil

	case intTypes[name]:
		unsigned := false
		if i < len(toks) && toks[i].Upper() == "UNSIGNED" {
			unsigned = true
			i++
		}
		warn := ""
		if unsigned {
			warn = "UNSIGNED normalizes to signed INTEGER; range may be lost"
		}
		return TypeTag{Kind: INTEGER}, i, warn, nil

	case name == "DECIMAL" || name == "NUMERIC":
		prec, scale, next := parsePrecScale(toks, i)
		return TypeTag{Kind: DECIMAL, Precision: prec, Scale: scale}, next, "", nil

	case decimalTypes[name]:
		// REAL/DOUBLE[ PRECISION]/FLOAT: no precision/scale in source.
		if name == "DOUBLE" && i < len(toks) && toks[i].Upper() == "PRECISION" {
			i++
		}
		return TypeTag{Kind: DECIMAL, Precision: 0, Scale: 6}, i, "", nil

	case name == "VARCHAR" || name == "CHARACTER":
		if name == "CHARACTER" && i < len(toks) && toks[i].Upper() == "VARYING" {
			i++
		}
		length, next := parseLength(toks, i)
		return TypeTag{Kind: VARCHAR, Length: length}, next, "", nil

	case name == "CHAR":
		length, next := parseLength(toks, i)
		return TypeTag{Kind: CHAR, Length: length}, next, "", nil

	case name == "TEXT" || name == "CLOB":
		return TypeTag{Kind: TEXT}, i, "", nil

	case name == "DATE":
		return TypeTag{Kind: DATE}, i, "", nil

	case name == "TIME":
		return TypeTag{Kind: TIME}, i, "", nil

	case name == "TIMESTAMP" || name == "DATETIME":
		if i < len(toks) && toks[i].Upper() == "WITH" {
			i++
			if i < len(toks) && toks[i].Upper() == "TIME" {
				i++
			}
			if i < len(toks) && toks[i].Upper() == "ZONE" {
				i++
			}
		}
		return TypeTag{Kind: TIMESTAMP}, i, "", nil

	case name == "BOOLEAN" || name == "BOOL":
		return TypeTag{Kind: BOOLEAN}, i, "", nil

	case name == "ENUM":
		var values []string
		if i < len(toks) && toks[i].Text == "(" {
			close := expr.FindMatchingParen(toks, i)
			for j := i + 1; j < close; j++ {
				if toks[j].Kind == expr.KindString {
					values = append(values, toks[j].Text)
				}
			}
			i = close + 1
		}
		return TypeTag{Kind: ENUM, EnumValues: values}, i, "", nil

	default:
		// Unknown type: consume an optional (n) or (p,s) modifier, warn,
		// fall back to OPAQUE (spec §4.1).
		if i < len(toks) && toks[i].Text == "(" {
			close := expr.FindMatchingParen(toks, i)
			if close != -1 {
				i = close + 1
			}
		}
		return TypeTag{Kind: OPAQUE, RawName: raw}, i, fmt.Sprintf("unrecognized type %q, using fallback string sampler", raw), nil
	}
}

func parsePrecScale(toks []expr.Token, i int) (prec, scale, next int) {
	if i >= len(toks) || toks[i].Text != "(" {
		return 0, 0, i
	}
	close := expr.FindMatchingParen(toks, i)
	if close == -1 {
		return 0, 0, i
	}
	if i+1 < close && toks[i+1].Kind == expr.KindNumber {
		prec, _ = strconv.Atoi(toks[i+1].Text)
	}
	if i+3 < close && toks[i+3].Kind == expr.KindNumber {
		scale, _ = strconv.Atoi(toks[i+3].Text)
	}
	return prec, scale, close + 1
}

func parseLength(toks []expr.Token, i int) (length, next int) {
	if i >= len(toks) || toks[i].Text != "(" {
		return 0, i
	}
	close := expr.FindMatchingParen(toks, i)
	if close == -1 {
		return 0, i
	}
	if i+1 < close && toks[i+1].Kind == expr.KindNumber {
		length, _ = strconv.Atoi(toks[i+1].Text)
	}
	return length, close + 1
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
