// Package export renders a completed generation result as SQL INSERT
// statements, a CSV directory, or a JSON directory (spec §4.7). All three
// modes consume the same {table -> rows} structure and share no state.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/seedforge/seedforge/internal/errs"
	"github.com/seedforge/seedforge/internal/expr"
	"github.com/seedforge/seedforge/internal/filler"
)

const (
	maxBatchRows  = 1000
	maxBatchBytes = 1 << 20
)

// SQL writes one file at path containing batched INSERT statements for
// every table in tableOrder, in that order.
func SQL(path string, tableOrder []string, tables map[string]*filler.GeneratedTable) error {
	f, err := os.Create(path)
	if err != nil {
		return &errs.ExportError{Mode: "sql", Path: path, Err: err}
	}
	defer f.Close()

	for _, name := range tableOrder {
		gt, ok := tables[name]
		if !ok || len(gt.Rows) == 0 {
			continue
		}
		if err := writeInsertBatches(f, gt); err != nil {
			return &errs.ExportError{Mode: "sql", Path: path, Err: err}
		}
	}
	return nil
}

func writeInsertBatches(w *os.File, gt *filler.GeneratedTable) error {
	cols := gt.Columns
	prefix := fmt.Sprintf("INSERT INTO %s (%s) VALUES ", gt.Name, strings.Join(cols, ", "))

	var batch []string
	size := len(prefix)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if _, err := fmt.Fprintf(w, "%s%s;\n", prefix, strings.Join(batch, ",")); err != nil {
			return err
		}
		batch = nil
		size = len(prefix)
		return nil
	}

	for _, row := range gt.Rows {
		tuple := rowTuple(row, cols)
		if len(batch) >= maxBatchRows || size+len(tuple) > maxBatchBytes {
			if err := flush(); err != nil {
				return err
			}
		}
		batch = append(batch, tuple)
		size += len(tuple)
	}
	return flush()
}

func rowTuple(row expr.Row, cols []string) string {
	var sb strings.Builder
	sb.WriteByte('(')
	for i, c := range cols {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(sqlLiteral(row[c]))
	}
	sb.WriteByte(')')
	return sb.String()
}

func sqlLiteral(v expr.Value) string {
	switch v.Kind {
	case expr.VNull:
		return "NULL"
	case expr.VInt:
		return v.String()
	case expr.VDecimal:
		return v.Dec.String()
	case expr.VString:
		return "'" + strings.ReplaceAll(v.Str, "'", "''") + "'"
	case expr.VDate:
		return "'" + v.Date.Format("2006-01-02") + "'"
	case expr.VBool:
		if v.Bool {
			return "TRUE"
		}
		return "FALSE"
	default:
		return "NULL"
	}
}

// CSV writes one RFC-4180 file per table under dir.
func CSV(dir string, tableOrder []string, tables map[string]*filler.GeneratedTable) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &errs.ExportError{Mode: "csv", Path: dir, Err: err}
	}
	for _, name := range tableOrder {
		gt, ok := tables[name]
		if !ok {
			continue
		}
		path := filepath.Join(dir, gt.Name+".csv")
		if err := writeCSV(path, gt); err != nil {
			return &errs.ExportError{Mode: "csv", Path: path, Err: err}
		}
	}
	return nil
}

func writeCSV(path string, gt *filler.GeneratedTable) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(gt.Columns); err != nil {
		return err
	}
	for _, row := range gt.Rows {
		rec := make([]string, len(gt.Columns))
		for i, c := range gt.Columns {
			v := row[c]
			if v.IsNull() {
				rec[i] = ""
				continue
			}
			rec[i] = v.String()
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// JSON writes one array-of-objects file per table under dir, decimals
// rendered as strings to preserve precision.
func JSON(dir string, tableOrder []string, tables map[string]*filler.GeneratedTable) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &errs.ExportError{Mode: "json", Path: dir, Err: err}
	}
	for _, name := range tableOrder {
		gt, ok := tables[name]
		if !ok {
			continue
		}
		path := filepath.Join(dir, gt.Name+".json")
		if err := writeJSON(path, gt); err != nil {
			return &errs.ExportError{Mode: "json", Path: path, Err: err}
		}
	}
	return nil
}

func writeJSON(path string, gt *filler.GeneratedTable) error {
	objs := make([]map[string]interface{}, len(gt.Rows))
	for i, row := range gt.Rows {
		obj := map[string]interface{}{}
		for _, c := range gt.Columns {
			obj[c] = jsonValue(row[c])
		}
		objs[i] = obj
	}
	out, err := json.MarshalIndent(objs, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o644)
}

func jsonValue(v expr.Value) interface{} {
	switch v.Kind {
	case expr.VNull:
		return nil
	case expr.VInt:
		return v.Int
	case expr.VDecimal:
		return v.Dec.String()
	case expr.VString:
		return v.Str
	case expr.VDate:
		return v.Date.Format("2006-01-02")
	case expr.VBool:
		return v.Bool
	default:
		return nil
	}
}
