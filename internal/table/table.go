// Package table implements the columnar container produced by the GTF
// pipeline: ordered, named columns of a single concrete type each, with an
// explicit validity mask for missing values. It is deliberately independent
// of parsing; upstream stages hand it finished column data through the
// Builder interface.
package table

import "fmt"

// Kind enumerates the concrete storage type of a column.
type Kind uint8

const (
	String Kind = iota
	Int
	Float
)

// String returns the lowercase name of the kind, matching the type names
// accepted in pipeline configuration ("text", "int", "float").
func (k Kind) String() string {
	switch k {
	case Int:
		return "int"
	case Float:
		return "float"
	default:
		return "text"
	}
}

// Column is a typed value sequence. Exactly one of Str/Ints/Floats is
// populated, selected by Kind. Valid marks real values; Valid[i] == false
// means the value at row i is missing (not empty, not zero: missing).
type Column struct {
	Kind   Kind
	Str    []string
	Ints   []int64
	Floats []float64
	Valid  []bool
}

// NewStringColumn builds a string column. A nil valid mask means all
// values are present.
func NewStringColumn(vals []string, valid []bool) *Column {
	if valid == nil {
		valid = allValid(len(vals))
	}
	return &Column{Kind: String, Str: vals, Valid: valid}
}

// NewIntColumn builds an int64 column. A nil valid mask means all values
// are present.
func NewIntColumn(vals []int64, valid []bool) *Column {
	if valid == nil {
		valid = allValid(len(vals))
	}
	return &Column{Kind: Int, Ints: vals, Valid: valid}
}

// NewFloatColumn builds a float64 column. A nil valid mask means all
// values are present.
func NewFloatColumn(vals []float64, valid []bool) *Column {
	if valid == nil {
		valid = allValid(len(vals))
	}
	return &Column{Kind: Float, Floats: vals, Valid: valid}
}

func allValid(n int) []bool {
	v := make([]bool, n)
	for i := range v {
		v[i] = true
	}
	return v
}

// Len returns the number of rows in the column.
func (c *Column) Len() int { return len(c.Valid) }

// IsNull reports whether the value at row i is missing.
func (c *Column) IsNull(i int) bool { return !c.Valid[i] }

// Value returns the value at row i as string, int64 or float64, or nil
// when the row is missing. This is the shape database sinks expect.
func (c *Column) Value(i int) any {
	if !c.Valid[i] {
		return nil
	}
	switch c.Kind {
	case Int:
		return c.Ints[i]
	case Float:
		return c.Floats[i]
	default:
		return c.Str[i]
	}
}

// AppendNull extends the column by one missing row.
func (c *Column) AppendNull() {
	c.Valid = append(c.Valid, false)
	switch c.Kind {
	case Int:
		c.Ints = append(c.Ints, 0)
	case Float:
		c.Floats = append(c.Floats, 0)
	default:
		c.Str = append(c.Str, "")
	}
}

// Append extends the column by one value. The value must match the column
// kind; a mismatch is a programming error and returns an error rather than
// panicking so callers can surface it.
func (c *Column) Append(v any) error {
	switch c.Kind {
	case Int:
		n, ok := v.(int64)
		if !ok {
			return fmt.Errorf("append %T to int column", v)
		}
		c.Ints = append(c.Ints, n)
	case Float:
		f, ok := v.(float64)
		if !ok {
			return fmt.Errorf("append %T to float column", v)
		}
		c.Floats = append(c.Floats, f)
	default:
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("append %T to string column", v)
		}
		c.Str = append(c.Str, s)
	}
	c.Valid = append(c.Valid, true)
	return nil
}

// Table is a rectangular collection of named columns with a stable order
// and uniform row count.
type Table struct {
	names []string
	cols  map[string]*Column
	rows  int
}

// Builder constructs tables from finished column data. The pipeline only
// depends on this interface; MemBuilder is the in-memory implementation.
type Builder interface {
	CreateTable(names []string, cols map[string]*Column) (*Table, error)
}

// MemBuilder builds in-memory tables and enforces the rectangular
// invariant: every named column exists and all columns share one length.
type MemBuilder struct{}

// CreateTable validates and assembles a Table. Column slices are adopted,
// not copied.
func (MemBuilder) CreateTable(names []string, cols map[string]*Column) (*Table, error) {
	if len(names) != len(cols) {
		return nil, fmt.Errorf("create table: %d names but %d columns", len(names), len(cols))
	}
	rows := -1
	for _, name := range names {
		c, ok := cols[name]
		if !ok {
			return nil, fmt.Errorf("create table: column %q named but not provided", name)
		}
		if rows == -1 {
			rows = c.Len()
		} else if c.Len() != rows {
			return nil, fmt.Errorf("create table: column %q has %d rows, want %d", name, c.Len(), rows)
		}
	}
	if rows == -1 {
		rows = 0
	}
	ns := make([]string, len(names))
	copy(ns, names)
	return &Table{names: ns, cols: cols, rows: rows}, nil
}

// Names returns the column names in order.
func (t *Table) Names() []string { return t.names }

// NumRows returns the row count shared by all columns.
func (t *Table) NumRows() int { return t.rows }

// Column returns the named column, or nil when absent.
func (t *Table) Column(name string) *Column { return t.cols[name] }

// Has reports whether the table contains the named column.
func (t *Table) Has(name string) bool {
	_, ok := t.cols[name]
	return ok
}

// Project returns a new table restricted to the requested columns, in the
// requested order. Unknown names are an error so that typos in a usecols
// list do not silently drop data.
func (t *Table) Project(names []string) (*Table, error) {
	cols := make(map[string]*Column, len(names))
	for _, name := range names {
		c := t.cols[name]
		if c == nil {
			return nil, fmt.Errorf("project: no column %q", name)
		}
		cols[name] = c
	}
	return MemBuilder{}.CreateTable(names, cols)
}

// AddColumn appends a column at the end of the order. The column must match
// the table's row count.
func (t *Table) AddColumn(name string, c *Column) error {
	if t.Has(name) {
		return fmt.Errorf("add column: %q already exists", name)
	}
	if c.Len() != t.rows {
		return fmt.Errorf("add column: %q has %d rows, want %d", name, c.Len(), t.rows)
	}
	t.names = append(t.names, name)
	t.cols[name] = c
	return nil
}

// GrowRows records that n rows were appended to every column through the
// shared column pointers. It is the caller's job to have actually appended
// them; the rectangular invariant is re-checked.
func (t *Table) GrowRows(n int) error {
	want := t.rows + n
	for _, name := range t.names {
		if got := t.cols[name].Len(); got != want {
			return fmt.Errorf("grow rows: column %q has %d rows, want %d", name, got, want)
		}
	}
	t.rows = want
	return nil
}

// FilterRows returns a new table containing only rows where keep[i] is
// true. Used by post-coercion feature filtering.
func (t *Table) FilterRows(keep []bool) (*Table, error) {
	if len(keep) != t.rows {
		return nil, fmt.Errorf("filter rows: mask has %d rows, want %d", len(keep), t.rows)
	}
	n := 0
	for _, k := range keep {
		if k {
			n++
		}
	}
	cols := make(map[string]*Column, len(t.names))
	for name, c := range t.cols {
		nc := &Column{Kind: c.Kind, Valid: make([]bool, 0, n)}
		for i := 0; i < t.rows; i++ {
			if !keep[i] {
				continue
			}
			nc.Valid = append(nc.Valid, c.Valid[i])
			switch c.Kind {
			case Int:
				nc.Ints = append(nc.Ints, c.Ints[i])
			case Float:
				nc.Floats = append(nc.Floats, c.Floats[i])
			default:
				nc.Str = append(nc.Str, c.Str[i])
			}
		}
		cols[name] = nc
	}
	names := make([]string, len(t.names))
	copy(names, t.names)
	return MemBuilder{}.CreateTable(names, cols)
}
