// Package model holds the in-memory table and run types shared across the
// ingest, pipeline, report, and store packages.
package model

import (
	"strconv"
	"strings"
)

// Row is a single project record keyed by canonical column name. Financial
// cells hold float64 after coercion; descriptor cells stay string.
type Row map[string]any

// Str returns the cell as a string, or "" when the column is absent.
func (r Row) Str(col string) string {
	v, ok := r[col]
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	default:
		return ""
	}
}

// Float returns the cell as a float64. Absent columns and cells that were
// never coerced to a number yield 0.
func (r Row) Float(col string) float64 {
	v, ok := r[col]
	if !ok || v == nil {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(n), ",", ""), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// Table is a column-ordered set of project rows. A table is owned by a single
// pipeline invocation; stages mutate it in place and nothing mutates it after
// the derive stage.
type Table struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// NewTable builds a table from canonical column names and raw string records.
// Short records are padded with empty cells; extra cells are dropped.
func NewTable(columns []string, records [][]string) *Table {
	t := &Table{Columns: columns, Rows: make([]Row, 0, len(records))}
	for _, rec := range records {
		row := make(Row, len(columns))
		for i, col := range columns {
			if i < len(rec) {
				row[col] = rec[i]
			} else {
				row[col] = ""
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// AddColumn registers a column name, keeping Columns free of duplicates.
// Cell values are set per row by the caller.
func (t *Table) AddColumn(name string) {
	if !t.HasColumn(name) {
		t.Columns = append(t.Columns, name)
	}
}

// Filter returns a new table holding the rows for which keep returns true.
// Rows are shared, not copied; filtering happens after the table is frozen.
func (t *Table) Filter(keep func(Row) bool) *Table {
	out := &Table{Columns: t.Columns}
	for _, row := range t.Rows {
		if keep(row) {
			out.Rows = append(out.Rows, row)
		}
	}
	return out
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.Rows) }
