package warehouse

// Table is an ordered tabular result set. Statements that produce no
// result set (DDL, INSERT) yield a nil *Table instead.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool {
	return t == nil || len(t.Rows) == 0
}

// Value returns the cell at row/column, or "" when the row or column does
// not exist or the cell was NULL.
func (t *Table) Value(row int, column string) string {
	if t == nil || row < 0 || row >= len(t.Rows) {
		return ""
	}
	for i, name := range t.Columns {
		if name == column {
			if i < len(t.Rows[row]) {
				return t.Rows[row][i]
			}
			return ""
		}
	}
	return ""
}
