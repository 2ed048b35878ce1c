// Package frame holds survey data in memory: tagged cell values, ordered
// nested records, immutable row frames and the Transform pipeline that turns
// one frame into the next.
package frame

import (
	"errors"
	"fmt"
)

// ErrDuplicateColumn is returned when a frame would hold two columns with the
// same name.
var ErrDuplicateColumn = errors.New("duplicate column")

// Schema describes the logical shape of a frame.
type Schema struct {
	Columns []ColumnSchema
}

type ColumnSchema struct {
	Name     string
	Type     Kind
	Nullable bool
}

// Names returns the column names in order.
func (s Schema) Names() []string {
	out := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		out[i] = c.Name
	}
	return out
}

// Frame is an ordered set of rows over an ordered set of uniquely named
// columns. A Frame is never modified once built; every operation that changes
// shape or content returns a new Frame, sharing untouched rows.
type Frame struct {
	cols  []string
	index map[string]int // name -> col index
	rows  [][]Value
}

// New builds a frame from column names and rows. Short rows are padded with
// nulls; long rows are an error.
func New(cols []string, rows [][]Value) (*Frame, error) {
	b := NewBuilder(cols)
	for _, r := range rows {
		b.Append(r...)
	}
	return b.Frame()
}

// Empty returns a frame with no columns and no rows.
func Empty() *Frame {
	return &Frame{index: map[string]int{}}
}

func (f *Frame) Rows() int { return len(f.rows) }
func (f *Frame) Cols() int { return len(f.cols) }

// Columns returns a copy of the column names.
func (f *Frame) Columns() []string {
	out := make([]string, len(f.cols))
	copy(out, f.cols)
	return out
}

func (f *Frame) Has(name string) bool {
	_, ok := f.index[name]
	return ok
}

func (f *Frame) Index(name string) (int, bool) {
	i, ok := f.index[name]
	return i, ok
}

// At returns the cell at row r, column c.
func (f *Frame) At(r, c int) Value { return f.rows[r][c] }

// Cell returns the cell at row r in the named column.
func (f *Frame) Cell(r int, name string) (Value, bool) {
	i, ok := f.index[name]
	if !ok {
		return Null(), false
	}
	return f.rows[r][i], true
}

// Row returns a map view of row r.
func (f *Frame) Row(r int) map[string]Value {
	out := make(map[string]Value, len(f.cols))
	for i, c := range f.cols {
		out[c] = f.rows[r][i]
	}
	return out
}

// RowValues returns a copy of row r aligned with Columns().
func (f *Frame) RowValues(r int) []Value {
	out := make([]Value, len(f.cols))
	copy(out, f.rows[r])
	return out
}

// Column returns a copy of the named column's values.
func (f *Frame) Column(name string) ([]Value, bool) {
	i, ok := f.index[name]
	if !ok {
		return nil, false
	}
	out := make([]Value, len(f.rows))
	for r, row := range f.rows {
		out[r] = row[i]
	}
	return out, true
}

// Schema summarizes each column. A column's Type is the kind shared by all of
// its non-null cells; int mixed with float reports float, other scalar mixes
// report string, and any non-scalar cell wins.
func (f *Frame) Schema() Schema {
	s := Schema{Columns: make([]ColumnSchema, len(f.cols))}
	for c, name := range f.cols {
		kind := KindNull
		nullable := false
		for _, row := range f.rows {
			v := row[c]
			switch {
			case v.IsNull():
				nullable = true
			case kind == KindNull:
				kind = v.Kind()
			case kind == v.Kind() || !kind.Scalar():
			case !v.Kind().Scalar():
				kind = v.Kind()
			case (kind == KindInt && v.Kind() == KindFloat) || (kind == KindFloat && v.Kind() == KindInt):
				kind = KindFloat
			default:
				kind = KindString
			}
		}
		s.Columns[c] = ColumnSchema{Name: name, Type: kind, Nullable: nullable}
	}
	return s
}

// Select returns a frame holding only the named columns, in the given order.
func (f *Frame) Select(names ...string) (*Frame, error) {
	idx := make([]int, len(names))
	for i, n := range names {
		c, ok := f.index[n]
		if !ok {
			return nil, fmt.Errorf("select: unknown column: %s", n)
		}
		idx[i] = c
	}
	b := NewBuilder(names)
	for _, row := range f.rows {
		vals := make([]Value, len(idx))
		for i, c := range idx {
			vals[i] = row[c]
		}
		b.Append(vals...)
	}
	return b.Frame()
}

// Drop returns a frame without the named columns. Unknown names are ignored.
func (f *Frame) Drop(names ...string) *Frame {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		if f.Has(n) {
			drop[n] = true
		}
	}
	if len(drop) == 0 {
		return f
	}
	keep := make([]string, 0, len(f.cols))
	for _, c := range f.cols {
		if !drop[c] {
			keep = append(keep, c)
		}
	}
	out, _ := f.Select(keep...)
	return out
}

// Take returns a frame holding rows idx of f, in that order. Rows are shared.
func (f *Frame) Take(idx []int) *Frame {
	rows := make([][]Value, len(idx))
	for i, r := range idx {
		rows[i] = f.rows[r]
	}
	return &Frame{cols: f.cols, index: f.index, rows: rows}
}

// Filter returns a frame holding the rows for which keep returns true.
func (f *Frame) Filter(keep func(r int) bool) *Frame {
	idx := make([]int, 0, len(f.rows))
	for r := range f.rows {
		if keep(r) {
			idx = append(idx, r)
		}
	}
	if len(idx) == len(f.rows) {
		return f
	}
	return f.Take(idx)
}

// WithColumn returns a frame where the named column holds vals. A new name is
// appended as the last column.
func (f *Frame) WithColumn(name string, vals []Value) (*Frame, error) {
	if len(vals) != len(f.rows) {
		return nil, fmt.Errorf("with column %s: got %d values for %d rows", name, len(vals), len(f.rows))
	}
	c, exists := f.index[name]
	cols := f.cols
	if !exists {
		cols = append(f.Columns(), name)
		c = len(cols) - 1
	}
	b := NewBuilder(cols)
	for r, row := range f.rows {
		next := make([]Value, len(cols))
		copy(next, row)
		next[c] = vals[r]
		b.Append(next...)
	}
	return b.Frame()
}

// MapColumn applies fn to every cell of the named column. It returns f itself
// when the column does not exist.
func (f *Frame) MapColumn(name string, fn func(Value) Value) (*Frame, error) {
	vals, ok := f.Column(name)
	if !ok {
		return f, nil
	}
	for i, v := range vals {
		vals[i] = fn(v)
	}
	return f.WithColumn(name, vals)
}

// Equal reports whether two frames have the same columns and equal cells.
func (f *Frame) Equal(g *Frame) bool {
	if f.Cols() != g.Cols() || f.Rows() != g.Rows() {
		return false
	}
	for i := range f.cols {
		if f.cols[i] != g.cols[i] {
			return false
		}
	}
	for r := range f.rows {
		for c := range f.cols {
			if !f.rows[r][c].Equal(g.rows[r][c]) {
				return false
			}
		}
	}
	return true
}

// Builder accumulates rows for a new frame.
type Builder struct {
	cols  []string
	index map[string]int
	rows  [][]Value
	err   error
}

func NewBuilder(cols []string) *Builder {
	b := &Builder{cols: make([]string, len(cols)), index: make(map[string]int, len(cols))}
	copy(b.cols, cols)
	for i, c := range cols {
		if _, dup := b.index[c]; dup && b.err == nil {
			b.err = fmt.Errorf("%w: %s", ErrDuplicateColumn, c)
		}
		b.index[c] = i
	}
	return b
}

// Append adds a row. Missing trailing values are null. The builder keeps the
// slice, so callers must not modify it afterwards.
func (b *Builder) Append(vals ...Value) *Builder {
	if len(vals) > len(b.cols) {
		if b.err == nil {
			b.err = fmt.Errorf("row %d: need %d fields, got %d", len(b.rows), len(b.cols), len(vals))
		}
		return b
	}
	row := vals
	if len(vals) < len(b.cols) {
		row = make([]Value, len(b.cols))
		copy(row, vals)
	}
	b.rows = append(b.rows, row)
	return b
}

// AppendMap adds a row from a column name map. Unknown names are an error.
func (b *Builder) AppendMap(m map[string]Value) *Builder {
	row := make([]Value, len(b.cols))
	for k, v := range m {
		i, ok := b.index[k]
		if !ok {
			if b.err == nil {
				b.err = fmt.Errorf("row %d: unknown column: %s", len(b.rows), k)
			}
			return b
		}
		row[i] = v
	}
	b.rows = append(b.rows, row)
	return b
}

func (b *Builder) Rows() int { return len(b.rows) }

// Frame finishes the build. The builder must not be reused afterwards.
func (b *Builder) Frame() (*Frame, error) {
	if b.err != nil {
		return nil, b.err
	}
	return &Frame{cols: b.cols, index: b.index, rows: b.rows}, nil
}
