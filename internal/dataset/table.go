// Package dataset reads and writes the tabular music catalog. A Table keeps
// every cell as text in source order together with the capability set of the
// logical columns it carries; typed access happens in the catalog package.
package dataset

// Table is an in-memory table of uniform width
type Table struct {
	Header   []string
	Rows     [][]string
	Schema   Schema
	Encoding string // encoding that decoded the source
	Source   string // path the table was read from, if any
}

// NewTable builds a table, padding short rows with empty cells
func NewTable(header []string, rows [][]string) *Table {
	t := &Table{
		Header: append([]string(nil), header...),
		Rows:   make([][]string, 0, len(rows)),
		Schema: DetectSchema(header),
	}
	for _, r := range rows {
		t.Rows = append(t.Rows, padRow(r, len(header)))
	}
	return t
}

func padRow(r []string, width int) []string {
	row := make([]string, width)
	copy(row, r)
	return row
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.Rows)
}

// Width returns the number of columns
func (t *Table) Width() int {
	return len(t.Header)
}

// Clone returns a deep copy so callers can transform it freely
func (t *Table) Clone() *Table {
	out := &Table{
		Header:   append([]string(nil), t.Header...),
		Rows:     make([][]string, len(t.Rows)),
		Encoding: t.Encoding,
		Source:   t.Source,
	}
	for i, r := range t.Rows {
		out.Rows[i] = append([]string(nil), r...)
	}
	out.Schema = DetectSchema(out.Header)
	return out
}

// Get returns the cell for column c in row i, or "" when c is absent
func (t *Table) Get(i int, c Column) string {
	idx := t.Schema.Index(c)
	if idx < 0 {
		return ""
	}
	return t.Rows[i][idx]
}

// Set writes the cell for column c in row i. Absent columns are ignored.
func (t *Table) Set(i int, c Column, v string) {
	idx := t.Schema.Index(c)
	if idx < 0 {
		return
	}
	t.Rows[i][idx] = v
}

// EnsureColumn appends c to the header (with empty cells) if it is absent
func (t *Table) EnsureColumn(c Column) {
	if t.Schema.Has(c) {
		return
	}
	t.Header = append(t.Header, string(c))
	for i := range t.Rows {
		t.Rows[i] = append(t.Rows[i], "")
	}
	t.Schema = DetectSchema(t.Header)
}

// Filter keeps the rows for which keep returns true, preserving order.
// It returns the number of rows removed.
func (t *Table) Filter(keep func(i int, row []string) bool) int {
	kept := make([][]string, 0, len(t.Rows))
	for i, r := range t.Rows {
		if keep(i, r) {
			kept = append(kept, r)
		}
	}
	removed := len(t.Rows) - len(kept)
	t.Rows = kept
	return removed
}
