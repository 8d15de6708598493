package table

import (
	"strings"

	"github.com/pfrederiksen/evalregistry/internal/registry"
)

// Columns every table starts with, ahead of the page's own field labels.
const (
	ColURL         = "url"
	ColTitle       = "title"
	ColDescription = "description"
)

// Row is one evaluation. Cells are keyed by column name; a column absent
// from the map is null for that row. ID is assigned once at assembly and
// survives every later transformation, so reshaping steps can join results
// back without relying on row position.
type Row struct {
	ID    int               `json:"id"`
	Cells map[string]string `json:"cells"`
}

// Table is an ordered set of columns over a list of rows.
type Table struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// FromRecords assembles the working table from scraped records. Columns
// appear in first-encounter order across all records, after the fixed
// url/title/description columns. Multi-valued fields are joined with the
// standard separator; the joined encoding is split again by the event
// reshaping.
func FromRecords(records []*registry.Record) *Table {
	t := &Table{Columns: []string{ColURL, ColTitle, ColDescription}}
	known := map[string]bool{ColURL: true, ColTitle: true, ColDescription: true}

	for i, rec := range records {
		row := Row{ID: i, Cells: map[string]string{
			ColURL:   rec.URL,
			ColTitle: rec.Title,
		}}
		if !rec.NotFound() {
			row.Cells[ColDescription] = rec.Description
		}
		for _, f := range rec.Fields {
			if !known[f.Label] {
				known[f.Label] = true
				t.Columns = append(t.Columns, f.Label)
			}
			row.Cells[f.Label] = strings.Join(f.Values, registry.Separator)
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}

// clone copies the table so transformations never mutate their input.
func (t *Table) clone() *Table {
	out := &Table{
		Columns: append([]string(nil), t.Columns...),
		Rows:    make([]Row, len(t.Rows)),
	}
	for i, row := range t.Rows {
		cells := make(map[string]string, len(row.Cells))
		for k, v := range row.Cells {
			cells[k] = v
		}
		out.Rows[i] = Row{ID: row.ID, Cells: cells}
	}
	return out
}

// columnIndex returns the position of the named column, or -1.
func (t *Table) columnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// insertColumnsAfter places the named columns directly after the anchor
// column, preserving their given order. Columns the table already has stay
// where they are, which keeps re-running a transformation from duplicating
// its own output.
func (t *Table) insertColumnsAfter(anchor string, names ...string) {
	missing := make([]string, 0, len(names))
	for _, n := range names {
		if t.columnIndex(n) < 0 {
			missing = append(missing, n)
		}
	}
	if len(missing) == 0 {
		return
	}
	pos := t.columnIndex(anchor) + 1
	rest := append([]string(nil), t.Columns[pos:]...)
	t.Columns = append(t.Columns[:pos], append(missing, rest...)...)
}

// Get returns the cell value for the named column and whether it is
// non-null.
func (r Row) Get(column string) (string, bool) {
	v, ok := r.Cells[column]
	return v, ok
}

// rowKey builds the full-row value identity used for deduplication: every
// column's presence and value, in column order.
func (t *Table) rowKey(row Row) string {
	var b strings.Builder
	for _, c := range t.Columns {
		if v, ok := row.Cells[c]; ok {
			b.WriteString("v:")
			b.WriteString(v)
		} else {
			b.WriteString("-")
		}
		b.WriteByte('\x1f')
	}
	return b.String()
}
