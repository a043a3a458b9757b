// Package table provides the canonical row/column structure produced by
// ingestion, independent of the source file format. All downstream
// components (audit, redaction, context building) operate on read-only
// views of a Table and return derived values.
package table

import "fmt"

// Column is a named, ordered sequence of cell values. Cells are kept in
// their textual representation; an empty string is the null value.
type Column struct {
	Name  string
	Cells []string
}

// Table is an ordered sequence of named columns. Invariants: all columns
// have equal length and column names are unique within a table.
type Table struct {
	Columns []Column
}

// RowCount returns the common length of all columns.
func (t *Table) RowCount() int {
	if t == nil || len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Cells)
}

// ColumnCount returns the number of columns.
func (t *Table) ColumnCount() int {
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

// Column returns the column with the given name, or false if absent.
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Row returns the i-th row as a slice of cell values in column order.
func (t *Table) Row(i int) []string {
	row := make([]string, len(t.Columns))
	for j, c := range t.Columns {
		if i < len(c.Cells) {
			row[j] = c.Cells[i]
		}
	}
	return row
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	out := &Table{Columns: make([]Column, len(t.Columns))}
	for i, c := range t.Columns {
		cells := make([]string, len(c.Cells))
		copy(cells, c.Cells)
		out.Columns[i] = Column{Name: c.Name, Cells: cells}
	}
	return out
}

// NullCounts returns the number of empty cells per column, keyed by
// column name.
func (t *Table) NullCounts() map[string]int {
	counts := make(map[string]int, len(t.Columns))
	for _, c := range t.Columns {
		n := 0
		for _, v := range c.Cells {
			if v == "" {
				n++
			}
		}
		counts[c.Name] = n
	}
	return counts
}

// validate checks the table invariants: equal column lengths and unique
// column names.
func (t *Table) validate() error {
	seen := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		if seen[c.Name] {
			return fmt.Errorf("duplicate column name %q", c.Name)
		}
		seen[c.Name] = true
		if len(c.Cells) != t.RowCount() {
			return fmt.Errorf("column %q has %d cells, want %d", c.Name, len(c.Cells), t.RowCount())
		}
	}
	return nil
}
