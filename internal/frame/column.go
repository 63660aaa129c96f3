package frame

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Column is a named, typed vector with a null mask. Columns are treated as
// immutable once built; operations that change values return new columns.
type Column struct {
	name  string
	kind  Kind
	nums  []float64   // Int, Float
	strs  []string    // Text, Category
	times []time.Time // Time
	null  []bool
}

// NewFloat builds a Float column; NaN entries are recorded as missing.
func NewFloat(name string, vals []float64) *Column {
	return newNumeric(name, Float, vals)
}

// NewInt builds an Int column with no missing entries.
func NewInt(name string, vals []int64) *Column {
	nums := make([]float64, len(vals))
	for i, v := range vals {
		nums[i] = float64(v)
	}
	return &Column{name: name, kind: Int, nums: nums, null: make([]bool, len(vals))}
}

// NewText builds a Text column with no missing entries.
func NewText(name string, vals []string) *Column {
	return &Column{name: name, kind: Text, strs: append([]string(nil), vals...), null: make([]bool, len(vals))}
}

// NewCategory builds a Category column with no missing entries.
func NewCategory(name string, vals []string) *Column {
	c := NewText(name, vals)
	c.kind = Category
	return c
}

// NewTime builds a Time column; zero times are recorded as missing.
func NewTime(name string, vals []time.Time) *Column {
	c := &Column{name: name, kind: Time, times: append([]time.Time(nil), vals...), null: make([]bool, len(vals))}
	for i, v := range vals {
		c.null[i] = v.IsZero()
	}
	return c
}

// NewColumn builds a column of the given kind from loosely typed values.
// A nil entry is missing.
func NewColumn(name string, kind Kind, vals []any) (*Column, error) {
	c := &Column{name: name, kind: kind, null: make([]bool, len(vals))}
	switch {
	case kind.IsNumeric():
		c.nums = make([]float64, len(vals))
	case kind.IsCategorical():
		c.strs = make([]string, len(vals))
	case kind == Time:
		c.times = make([]time.Time, len(vals))
	default:
		return nil, fmt.Errorf("new column %q: unsupported kind %d", name, kind)
	}
	for i, v := range vals {
		if v == nil {
			c.null[i] = true
			if kind.IsNumeric() {
				c.nums[i] = math.NaN()
			}
			continue
		}
		if err := c.set(i, v); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func newNumeric(name string, kind Kind, vals []float64) *Column {
	c := &Column{name: name, kind: kind, nums: append([]float64(nil), vals...), null: make([]bool, len(vals))}
	for i, v := range vals {
		c.null[i] = math.IsNaN(v)
	}
	return c
}

// set stores v at row i, converting it to the column kind.
func (c *Column) set(i int, v any) error {
	fail := func(err error) error {
		return &TypeError{Column: c.name, Kind: c.kind, Row: i, Value: fmt.Sprint(v), Err: err}
	}
	switch {
	case c.kind.IsNumeric():
		var f float64
		switch x := v.(type) {
		case float64:
			f = x
		case float32:
			f = float64(x)
		case int:
			f = float64(x)
		case int64:
			f = float64(x)
		case int32:
			f = float64(x)
		default:
			return fail(fmt.Errorf("expected a number, got %T", v))
		}
		if math.IsNaN(f) {
			c.null[i] = true
			c.nums[i] = f
			return nil
		}
		if c.kind == Int {
			if math.IsInf(f, 0) {
				return fail(fmt.Errorf("infinite value"))
			}
			f = math.Trunc(f)
		}
		c.nums[i] = f
	case c.kind.IsCategorical():
		s, ok := v.(string)
		if !ok {
			return fail(fmt.Errorf("expected a string, got %T", v))
		}
		c.strs[i] = s
	case c.kind == Time:
		switch x := v.(type) {
		case time.Time:
			if x.IsZero() {
				c.null[i] = true
				return nil
			}
			c.times[i] = x
		case string:
			t, err := parseMixed(x)
			if err != nil {
				return fail(err)
			}
			c.times[i] = t
		default:
			return fail(fmt.Errorf("expected a time, got %T", v))
		}
	}
	c.null[i] = false
	return nil
}

func (c *Column) Name() string { return c.name }
func (c *Column) Kind() Kind   { return c.kind }
func (c *Column) Len() int     { return len(c.null) }

// IsNull reports whether row i is missing.
func (c *Column) IsNull(i int) bool { return c.null[i] }

// NullCount returns the number of missing entries.
func (c *Column) NullCount() int {
	n := 0
	for _, b := range c.null {
		if b {
			n++
		}
	}
	return n
}

// Float returns row i as a number. Missing and non-numeric cells are NaN.
func (c *Column) Float(i int) float64 {
	if c.null[i] || !c.kind.IsNumeric() {
		return math.NaN()
	}
	return c.nums[i]
}

// Value returns row i as nil, float64 (Float), int64 (Int), string or time.Time.
func (c *Column) Value(i int) any {
	if c.null[i] {
		return nil
	}
	switch c.kind {
	case Int:
		return int64(c.nums[i])
	case Float:
		return c.nums[i]
	case Time:
		return c.times[i]
	default:
		return c.strs[i]
	}
}

// Record formats row i for delimited output; missing cells are empty.
func (c *Column) Record(i int) string {
	if c.null[i] {
		return ""
	}
	switch c.kind {
	case Int:
		return strconv.FormatFloat(c.nums[i], 'f', -1, 64)
	case Float:
		return FormatFloat(c.nums[i])
	case Time:
		t := c.times[i]
		if t.Equal(t.Truncate(24*time.Hour)) && t.Location() == time.UTC {
			return t.Format("2006-01-02")
		}
		return t.Format(time.RFC3339Nano)
	default:
		return c.strs[i]
	}
}

// FormatFloat keeps a decimal point on integral values so the cell is read
// back as a float.
func FormatFloat(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if math.IsInf(v, 0) || strings.ContainsAny(s, ".eN") {
		return s
	}
	return s + ".0"
}

// Floats returns a copy of the numeric values with NaN for missing cells.
// Non-numeric columns return nil.
func (c *Column) Floats() []float64 {
	if !c.kind.IsNumeric() {
		return nil
	}
	out := make([]float64, len(c.nums))
	for i, v := range c.nums {
		if c.null[i] {
			out[i] = math.NaN()
			continue
		}
		out[i] = v
	}
	return out
}

// Valid returns the non-missing numeric values in row order.
func (c *Column) Valid() []float64 {
	if !c.kind.IsNumeric() {
		return nil
	}
	out := make([]float64, 0, len(c.nums))
	for i, v := range c.nums {
		if !c.null[i] {
			out = append(out, v)
		}
	}
	return out
}

// Strings returns a copy of the string values; missing cells are empty.
func (c *Column) Strings() []string {
	out := make([]string, c.Len())
	for i := range out {
		if c.kind.IsCategorical() {
			out[i] = c.strs[i]
			continue
		}
		out[i] = c.Record(i)
	}
	return out
}

// Rename returns a copy of the column under a new name.
func (c *Column) Rename(name string) *Column {
	out := c.take(nil)
	out.name = name
	return out
}

// take copies the rows at idx, or every row when idx is nil.
func (c *Column) take(idx []int) *Column {
	if idx == nil {
		idx = make([]int, c.Len())
		for i := range idx {
			idx[i] = i
		}
	}
	out := &Column{name: c.name, kind: c.kind, null: make([]bool, len(idx))}
	switch {
	case c.kind.IsNumeric():
		out.nums = make([]float64, len(idx))
	case c.kind.IsCategorical():
		out.strs = make([]string, len(idx))
	default:
		out.times = make([]time.Time, len(idx))
	}
	for j, i := range idx {
		out.null[j] = c.null[i]
		switch {
		case c.kind.IsNumeric():
			out.nums[j] = c.nums[i]
		case c.kind.IsCategorical():
			out.strs[j] = c.strs[i]
		default:
			out.times[j] = c.times[i]
		}
	}
	return out
}

// FromFloats builds an Int or Float column from a float slice; NaN entries are
// missing and Int values are truncated toward zero.
func FromFloats(name string, kind Kind, vals []float64) (*Column, error) {
	if !kind.IsNumeric() {
		return nil, &TypeError{Column: name, Kind: kind, Row: -1, Err: fmt.Errorf("not a numeric kind")}
	}
	c := newNumeric(name, kind, vals)
	if kind == Int {
		for i, v := range c.nums {
			if c.null[i] {
				continue
			}
			if math.IsInf(v, 0) {
				return nil, &TypeError{Column: name, Kind: kind, Row: i, Value: FormatFloat(v), Err: fmt.Errorf("infinite value")}
			}
			c.nums[i] = math.Trunc(v)
		}
	}
	return c, nil
}
