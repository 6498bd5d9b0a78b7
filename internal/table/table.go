// Package table holds the in-memory column-oriented table shared by the
// generator, the chaos transformer and the codecs.
package table

import (
	"fmt"
	"strconv"
	"time"
)

// Kind describes how the cells of a column are formatted and exported.
type Kind string

const (
	KindString   Kind = "string"
	KindText     Kind = "text"
	KindInteger  Kind = "integer"
	KindFloat    Kind = "float"
	KindBool     Kind = "bool"
	KindDate     Kind = "date"
	KindDateTime Kind = "datetime"
)

// Layouts used when a time.Time cell is rendered as text.
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02 15:04:05"
)

// Column is a named sequence of cells. A nil cell is the missing marker;
// other cells are string, int64, float64, bool or time.Time.
type Column struct {
	Name  string
	Kind  Kind
	Cells []any
}

// Table is an ordered list of equally long columns with unique names.
type Table struct {
	Name    string
	Columns []Column
}

// New returns an empty table.
func New(name string) *Table {
	return &Table{Name: name}
}

// AddColumn appends a column. The name must be unique and the cell count must
// match the existing row count.
func (t *Table) AddColumn(name string, kind Kind, cells []any) error {
	if name == "" {
		return fmt.Errorf("add column: empty name")
	}
	if t.Index(name) >= 0 {
		return fmt.Errorf("add column: duplicate name %q", name)
	}
	if len(t.Columns) > 0 && len(cells) != t.NumRows() {
		return fmt.Errorf("add column %q: %d cells, table has %d rows", name, len(cells), t.NumRows())
	}
	t.Columns = append(t.Columns, Column{Name: name, Kind: kind, Cells: cells})
	return nil
}

// NumRows reports the row count. A table without columns has no rows.
func (t *Table) NumRows() int {
	if t == nil || len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Cells)
}

// NumCols reports the column count.
func (t *Table) NumCols() int {
	if t == nil {
		return 0
	}
	return len(t.Columns)
}

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Index returns the position of the named column or -1.
func (t *Table) Index(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Column looks up a column by name.
func (t *Table) Column(name string) (*Column, bool) {
	i := t.Index(name)
	if i < 0 {
		return nil, false
	}
	return &t.Columns[i], true
}

// Row returns the cells of row i across all columns.
func (t *Table) Row(i int) []any {
	row := make([]any, len(t.Columns))
	for j := range t.Columns {
		row[j] = t.Columns[j].Cells[i]
	}
	return row
}

// Records renders every row as text, nil cells as empty strings.
func (t *Table) Records() [][]string {
	n := t.NumRows()
	out := make([][]string, n)
	for i := 0; i < n; i++ {
		rec := make([]string, len(t.Columns))
		for j, c := range t.Columns {
			rec[j] = FormatCell(c.Cells[i], c.Kind)
		}
		out[i] = rec
	}
	return out
}

// NullCount reports how many cells of column j are missing.
func (t *Table) NullCount(j int) int {
	n := 0
	for _, v := range t.Columns[j].Cells {
		if v == nil {
			n++
		}
	}
	return n
}

// Clone returns a deep copy; the copy shares no slices with t.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	out := &Table{Name: t.Name, Columns: make([]Column, len(t.Columns))}
	for i, c := range t.Columns {
		cells := make([]any, len(c.Cells))
		copy(cells, c.Cells)
		out.Columns[i] = Column{Name: c.Name, Kind: c.Kind, Cells: cells}
	}
	return out
}

// Validate checks that names are unique and non-empty and that all columns
// have the same length.
func (t *Table) Validate() error {
	seen := make(map[string]struct{}, len(t.Columns))
	rows := t.NumRows()
	for _, c := range t.Columns {
		if c.Name == "" {
			return fmt.Errorf("table %q: unnamed column", t.Name)
		}
		if _, dup := seen[c.Name]; dup {
			return fmt.Errorf("table %q: duplicate column %q", t.Name, c.Name)
		}
		seen[c.Name] = struct{}{}
		if len(c.Cells) != rows {
			return fmt.Errorf("table %q: column %q has %d cells, want %d", t.Name, c.Name, len(c.Cells), rows)
		}
	}
	return nil
}

// FormatCell renders a cell as text. Missing cells render as "".
func FormatCell(v any, kind Kind) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		if kind == KindDate {
			return x.Format(DateLayout)
		}
		return x.Format(DateTimeLayout)
	default:
		return fmt.Sprint(x)
	}
}
