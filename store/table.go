package store

import "sort"

// Row maps column names to values. Values loaded from storage are strings;
// nil marks an absent value.
type Row map[string]any

// Clone returns a shallow copy of the row.
func (r Row) Clone() Row {
	c := make(Row, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}

// Table is an ordered sequence of rows sharing the same columns.
type Table struct {
	Columns []string
	Rows    []Row
}

// Clone returns a copy of the table whose rows can be modified without
// affecting the original.
func (t Table) Clone() Table {
	c := Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([]Row, len(t.Rows)),
	}
	for i, row := range t.Rows {
		c.Rows[i] = row.Clone()
	}
	return c
}

// HasColumn reports whether the table declares the column.
func (t Table) HasColumn(name string) bool {
	for _, col := range t.Columns {
		if col == name {
			return true
		}
	}
	return false
}

// ColumnNames returns the declared columns, or, when none are declared, the
// sorted union of keys found in the rows.
func (t Table) ColumnNames() []string {
	if len(t.Columns) > 0 {
		return t.Columns
	}

	seen := make(map[string]bool)
	var columns []string
	for _, row := range t.Rows {
		for col := range row {
			if !seen[col] {
				seen[col] = true
				columns = append(columns, col)
			}
		}
	}
	sort.Strings(columns)
	return columns
}
