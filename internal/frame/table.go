// Package frame holds the in-memory table shared by the loader, profiler,
// transformer and plotter.
//
// A Table is never modified after construction. Every operation that changes
// rows or columns returns a new Table, so a caller that keeps a reference to
// an earlier table keeps the earlier data.
package frame

import (
	"fmt"
)

// Table is an ordered set of equal-length columns plus integer row labels.
type Table struct {
	cols   []*Column
	byName map[string]int
	index  []int
}

// New builds a table from columns. Column names must be unique and all
// columns must have the same length. Row labels start at 0.
func New(cols ...*Column) (*Table, error) {
	t := &Table{byName: make(map[string]int, len(cols))}
	rows := -1
	for _, c := range cols {
		if _, dup := t.byName[c.name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c.name)
		}
		if rows >= 0 && c.Len() != rows {
			return nil, fmt.Errorf("%w: %q has %d rows, expected %d", ErrLengthMismatch, c.name, c.Len(), rows)
		}
		rows = c.Len()
		t.byName[c.name] = len(t.cols)
		t.cols = append(t.cols, c)
	}
	if rows < 0 {
		rows = 0
	}
	t.index = sequence(rows)
	return t, nil
}

// MustNew is like New but panics on error. Intended for fixtures.
func MustNew(cols ...*Column) *Table {
	t, err := New(cols...)
	if err != nil {
		panic(err)
	}
	return t
}

func sequence(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}

// Shape returns (rows, columns).
func (t *Table) Shape() (int, int) { return t.NumRows(), len(t.cols) }

func (t *Table) NumRows() int { return len(t.index) }
func (t *Table) NumCols() int { return len(t.cols) }

// Names returns the column names in order.
func (t *Table) Names() []string {
	out := make([]string, len(t.cols))
	for i, c := range t.cols {
		out[i] = c.name
	}
	return out
}

// Columns returns the columns in order. The slice is a copy; the columns are
// shared and must not be modified.
func (t *Table) Columns() []*Column { return append([]*Column(nil), t.cols...) }

// Column returns the named column or ErrColumnNotFound.
func (t *Table) Column(name string) (*Column, error) {
	i, ok := t.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	return t.cols[i], nil
}

// Has reports whether the table has a column with this name.
func (t *Table) Has(name string) bool {
	_, ok := t.byName[name]
	return ok
}

// Index returns a copy of the row labels.
func (t *Table) Index() []int { return append([]int(nil), t.index...) }

// NumericNames returns the names of Int and Float columns in table order.
func (t *Table) NumericNames() []string {
	var out []string
	for _, c := range t.cols {
		if c.kind.IsNumeric() {
			out = append(out, c.name)
		}
	}
	return out
}

// CategoricalNames returns the names of Text and Category columns in table order.
func (t *Table) CategoricalNames() []string {
	var out []string
	for _, c := range t.cols {
		if c.kind.IsCategorical() {
			out = append(out, c.name)
		}
	}
	return out
}

// WithColumn returns a table where c replaces the column of the same name, or
// is appended when no such column exists.
func (t *Table) WithColumn(c *Column) (*Table, error) {
	if c.Len() != t.NumRows() && len(t.cols) > 0 {
		return nil, fmt.Errorf("%w: %q has %d rows, expected %d", ErrLengthMismatch, c.name, c.Len(), t.NumRows())
	}
	out := t.shallow()
	if i, ok := out.byName[c.name]; ok {
		out.cols[i] = c
		return out, nil
	}
	out.byName[c.name] = len(out.cols)
	out.cols = append(out.cols, c)
	if len(t.cols) == 0 {
		out.index = sequence(c.Len())
	}
	return out, nil
}

// Drop returns a table without the named columns. Unknown names are ignored.
func (t *Table) Drop(names ...string) *Table {
	skip := make(map[string]bool, len(names))
	for _, n := range names {
		skip[n] = true
	}
	out := &Table{byName: make(map[string]int, len(t.cols)), index: t.Index()}
	for _, c := range t.cols {
		if skip[c.name] {
			continue
		}
		out.byName[c.name] = len(out.cols)
		out.cols = append(out.cols, c)
	}
	return out
}

// Select returns a table with only the named columns, in the given order.
func (t *Table) Select(names ...string) (*Table, error) {
	out := &Table{byName: make(map[string]int, len(names)), index: t.Index()}
	for _, n := range names {
		c, err := t.Column(n)
		if err != nil {
			return nil, err
		}
		if _, dup := out.byName[n]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, n)
		}
		out.byName[n] = len(out.cols)
		out.cols = append(out.cols, c)
	}
	return out, nil
}

// Filter keeps the rows where keep is true. Row labels of surviving rows are
// preserved.
func (t *Table) Filter(keep []bool) (*Table, error) {
	if len(keep) != t.NumRows() {
		return nil, fmt.Errorf("%w: mask has %d rows, table has %d", ErrLengthMismatch, len(keep), t.NumRows())
	}
	var idx []int
	for i, k := range keep {
		if k {
			idx = append(idx, i)
		}
	}
	if idx == nil {
		idx = []int{}
	}
	return t.take(idx), nil
}

// DropNullRows removes every row that has a missing value in any column.
func (t *Table) DropNullRows() *Table {
	keep := make([]bool, t.NumRows())
	for i := range keep {
		keep[i] = true
		for _, c := range t.cols {
			if c.null[i] {
				keep[i] = false
				break
			}
		}
	}
	out, _ := t.Filter(keep)
	return out
}

// ResetIndex returns the same rows labelled 0..n-1.
func (t *Table) ResetIndex() *Table {
	out := t.shallow()
	out.index = sequence(t.NumRows())
	return out
}

// WithIndex returns the same rows under the given labels.
func (t *Table) WithIndex(labels []int) (*Table, error) {
	if len(labels) != t.NumRows() {
		return nil, fmt.Errorf("%w: index has %d labels, table has %d rows", ErrLengthMismatch, len(labels), t.NumRows())
	}
	out := t.shallow()
	out.index = append([]int(nil), labels...)
	return out, nil
}

// Head returns the first n rows.
func (t *Table) Head(n int) *Table {
	if n > t.NumRows() {
		n = t.NumRows()
	}
	if n < 0 {
		n = 0
	}
	return t.take(sequence(n))
}

func (t *Table) take(idx []int) *Table {
	out := &Table{byName: make(map[string]int, len(t.cols)), index: make([]int, len(idx))}
	for j, i := range idx {
		out.index[j] = t.index[i]
	}
	for _, c := range t.cols {
		out.byName[c.name] = len(out.cols)
		out.cols = append(out.cols, c.take(idx))
	}
	return out
}

// shallow copies the table structure; columns are shared.
func (t *Table) shallow() *Table {
	out := &Table{
		cols:   append([]*Column(nil), t.cols...),
		byName: make(map[string]int, len(t.byName)),
		index:  t.Index(),
	}
	for k, v := range t.byName {
		out.byName[k] = v
	}
	return out
}
