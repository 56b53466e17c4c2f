package dataset

import (
	"fmt"
	"strings"
)

// Column is one named column stored either as raw text or as numbers.
type Column struct {
	name    string
	numeric bool
	text    []string
	nums    []Float
}

// Name returns the column header.
func (c *Column) Name() string { return c.name }

// IsNumeric reports whether the column has been converted to numeric storage.
func (c *Column) IsNumeric() bool { return c.numeric }

// Raw returns the textual value of row i. Numeric cells are formatted with
// Float.String.
func (c *Column) Raw(i int) string {
	if c.numeric {
		return c.nums[i].String()
	}
	return c.text[i]
}

// Float returns the numeric value of row i. Text columns always report
// missing; convert them with Dataset.SetNumeric first.
func (c *Column) Float(i int) Float {
	if !c.numeric {
		return Float{}
	}
	return c.nums[i]
}

// Floats returns a copy of the numeric values, or nil for text columns.
func (c *Column) Floats() []Float {
	if !c.numeric {
		return nil
	}
	out := make([]Float, len(c.nums))
	copy(out, c.nums)
	return out
}

// Dataset is an ordered table of rows.
type Dataset struct {
	columns []*Column
	index   map[string]int
	rows    int
}

// New builds a text-only dataset. Rows shorter than the header are padded
// with empty cells; longer rows are rejected.
func New(header []string, rows [][]string) (*Dataset, error) {
	if len(header) == 0 {
		return nil, ErrEmptyHeader
	}
	ds := &Dataset{
		columns: make([]*Column, len(header)),
		index:   make(map[string]int, len(header)),
		rows:    len(rows),
	}
	for i, name := range header {
		if _, dup := ds.index[name]; dup {
			return nil, fmt.Errorf("duplicate column %q", name)
		}
		ds.index[name] = i
		ds.columns[i] = &Column{name: name, text: make([]string, len(rows))}
	}
	for r, row := range rows {
		if len(row) > len(header) {
			return nil, &RowWidthError{Line: r + 2, Fields: len(row), Want: len(header)}
		}
		for c, value := range row {
			ds.columns[c].text[r] = value
		}
	}
	return ds, nil
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return d.rows }

// ColumnNames returns the header in order.
func (d *Dataset) ColumnNames() []string {
	names := make([]string, len(d.columns))
	for i, c := range d.columns {
		names[i] = c.name
	}
	return names
}

// HasColumn reports whether name is part of the header.
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Column looks up a column by name.
func (d *Dataset) Column(name string) (*Column, error) {
	idx, ok := d.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}
	return d.columns[idx], nil
}

// Require verifies every name is present in the header.
func (d *Dataset) Require(names ...string) error {
	var missing []string
	for _, name := range names {
		if !d.HasColumn(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnsError{Columns: missing}
	}
	return nil
}

// SetNumeric replaces the storage of an existing column with vals.
func (d *Dataset) SetNumeric(name string, vals []Float) error {
	col, err := d.Column(name)
	if err != nil {
		return err
	}
	if len(vals) != d.rows {
		return fmt.Errorf("column %q: got %d values for %d rows", name, len(vals), d.rows)
	}
	col.numeric = true
	col.text = nil
	col.nums = append([]Float(nil), vals...)
	return nil
}

// AddNumeric appends a new numeric column.
func (d *Dataset) AddNumeric(name string, vals []Float) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("column name must not be empty")
	}
	if d.HasColumn(name) {
		return fmt.Errorf("%w: %q", ErrColumnExists, name)
	}
	if len(vals) != d.rows {
		return fmt.Errorf("column %q: got %d values for %d rows", name, len(vals), d.rows)
	}
	d.index[name] = len(d.columns)
	d.columns = append(d.columns, &Column{name: name, numeric: true, nums: append([]Float(nil), vals...)})
	return nil
}

// Record returns a view over row i.
func (d *Dataset) Record(i int) Record {
	return Record{ds: d, index: i}
}

// Row returns the textual cells of row i in header order.
func (d *Dataset) Row(i int) []string {
	out := make([]string, len(d.columns))
	for c, col := range d.columns {
		out[c] = col.Raw(i)
	}
	return out
}

// Head returns up to n rows as text.
func (d *Dataset) Head(n int) [][]string {
	if n > d.rows {
		n = d.rows
	}
	out := make([][]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, d.Row(i))
	}
	return out
}

// Record is a read-only view of one row.
type Record struct {
	ds    *Dataset
	index int
}

// Index returns the original row position.
func (r Record) Index() int { return r.index }

// Text returns the textual cell for column name, or "" when the column is absent.
func (r Record) Text(name string) string {
	col, err := r.ds.Column(name)
	if err != nil {
		return ""
	}
	return col.Raw(r.index)
}

// Float returns the numeric cell for column name, or missing when the column
// is absent or not numeric.
func (r Record) Float(name string) Float {
	col, err := r.ds.Column(name)
	if err != nil {
		return Float{}
	}
	return col.Float(r.index)
}
