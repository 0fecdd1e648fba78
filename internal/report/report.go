// Package report prints colorized run status to the terminal and
// accumulates the structured RunReport a generate run returns, completing
// the fatih/color dependency the teacher's cmd/validate.go already imported
// but never wired into go.mod.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"

	"github.com/seedforge/seedforge/internal/errs"
	"github.com/seedforge/seedforge/internal/expr"
)

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
	errColor  = color.New(color.FgRed)
)

// Reporter writes ok/warn/err lines to w (os.Stderr in normal use).
type Reporter struct {
	w io.Writer
}

// New returns a Reporter writing to os.Stderr.
func New() *Reporter { return &Reporter{w: os.Stderr} }

func (r *Reporter) Ok(msg string) {
	fmt.Fprintf(r.w, "  %s %s\n", okColor.Sprint("✓"), msg)
}

func (r *Reporter) Warn(msg string) {
	fmt.Fprintf(r.w, "  %s %s\n", warnColor.Sprint("⚠"), msg)
}

func (r *Reporter) Err(msg string) {
	fmt.Fprintf(r.w, "  %s %s\n", errColor.Sprint("✗"), msg)
}

// Table prints an ASCII preview of rows for the given column order (used by
// the preview subcommand's single-table dry run).
func (r *Reporter) Table(columns []string, rows []expr.Row) {
	if len(rows) == 0 {
		return
	}
	widths := make([]int, len(columns))
	for i, col := range columns {
		widths[i] = len(col)
	}
	cells := make([][]string, len(rows))
	for ri, row := range rows {
		cells[ri] = make([]string, len(columns))
		for i, col := range columns {
			s := row[col].String()
			if len(s) > 40 {
				s = s[:37] + "..."
			}
			cells[ri][i] = s
			if len(s) > widths[i] {
				widths[i] = len(s)
			}
		}
	}
	for i := range widths {
		if widths[i] > 40 {
			widths[i] = 40
		}
	}

	sep := "+"
	for _, w := range widths {
		sep += strings.Repeat("-", w+2) + "+"
	}
	fmt.Fprintln(r.w, sep)
	header := "|"
	for i, col := range columns {
		header += " " + pad(col, widths[i]) + " |"
	}
	fmt.Fprintln(r.w, header)
	fmt.Fprintln(r.w, sep)
	for _, row := range cells {
		line := "|"
		for i, s := range row {
			line += " " + pad(s, widths[i]) + " |"
		}
		fmt.Fprintln(r.w, line)
	}
	fmt.Fprintln(r.w, sep)
}

func pad(s string, w int) string {
	if len(s) > w {
		return s[:w]
	}
	return s + strings.Repeat(" ", w-len(s))
}

// TableSummary is one table's line in a RunReport.
type TableSummary struct {
	Table    string `yaml:"table"`
	Produced int    `yaml:"produced"`
	Requested int   `yaml:"requested"`
}

// RunReport is the structured summary of one generate run, printed to the
// terminal via Print and optionally persisted via WriteYAML.
type RunReport struct {
	Tables       []TableSummary          `yaml:"tables"`
	Underfilled  []errs.UnderfilledTable `yaml:"-"`
	UnknownTypes []errs.UnknownTypeWarning `yaml:"-"`

	UnderfilledYAML  []underfilledYAML  `yaml:"underfilled,omitempty"`
	UnknownTypesYAML []unknownTypeYAML  `yaml:"unknown_types,omitempty"`
}

type underfilledYAML struct {
	Table     string   `yaml:"table"`
	Produced  int      `yaml:"produced"`
	Requested int      `yaml:"requested"`
	Failures  []string `yaml:"sample_failures,omitempty"`
}

type unknownTypeYAML struct {
	Table  string `yaml:"table"`
	Column string `yaml:"column"`
	Type   string `yaml:"type"`
}

// Finalize rebuilds the YAML-friendly mirrors of Underfilled/UnknownTypes.
// Print reads the mirrors, so call it before Print; WriteYAML calls it itself.
func (r *RunReport) Finalize() {
	r.UnderfilledYAML, r.UnknownTypesYAML = nil, nil
	for _, u := range r.Underfilled {
		r.UnderfilledYAML = append(r.UnderfilledYAML, underfilledYAML{
			Table: u.Table, Produced: u.Produced, Requested: u.Requested, Failures: u.LastFailures,
		})
	}
	for _, w := range r.UnknownTypes {
		r.UnknownTypesYAML = append(r.UnknownTypesYAML, unknownTypeYAML{Table: w.Table, Column: w.Column, Type: w.Type})
	}
}

// Print writes a human-readable summary through rep.
func (r *RunReport) Print(rep *Reporter) {
	for _, t := range r.Tables {
		if t.Produced < t.Requested {
			rep.Warn(fmt.Sprintf("%-20s %d/%d rows", t.Table, t.Produced, t.Requested))
		} else {
			rep.Ok(fmt.Sprintf("%-20s %d rows", t.Table, t.Produced))
		}
	}
	for _, w := range r.UnknownTypesYAML {
		rep.Warn(fmt.Sprintf("%s.%s: unknown type %q, used fallback sampler", w.Table, w.Column, w.Type))
	}
}

// WriteYAML persists the report to path.
func (r *RunReport) WriteYAML(path string) error {
	r.Finalize()
	out, err := yaml.Marshal(r)
	if err != nil {
		return &errs.ExportError{Mode: "report", Path: path, Err: err}
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return &errs.ExportError{Mode: "report", Path: path, Err: err}
	}
	return nil
}
