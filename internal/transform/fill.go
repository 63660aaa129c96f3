package transform

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/KaramelBytes/loaneda/internal/frame"
)

// FillNull replaces the missing cells of each named column with its literal.
// Numeric columns take a number, Text and Category columns a string, Time
// columns a time.Time or a date string. Columns not named are untouched.
func FillNull(t *frame.Table, values map[string]any) (*frame.Table, error) {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	out := t
	for _, name := range names {
		c, err := out.Column(name)
		if err != nil {
			return nil, fmt.Errorf("fill %q: %w", name, err)
		}
		lit, err := literal(c, values[name])
		if err != nil {
			return nil, err
		}
		vals := make([]any, c.Len())
		for i := range vals {
			if c.IsNull(i) {
				vals[i] = lit
				continue
			}
			vals[i] = c.Value(i)
		}
		filled, err := frame.NewColumn(name, c.Kind(), vals)
		if err != nil {
			return nil, err
		}
		if out, err = out.WithColumn(filled); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// literal checks v against the column kind and normalizes numbers to float64.
func literal(c *frame.Column, v any) (any, error) {
	fail := func(reason string) error {
		return &frame.TypeError{Column: c.Name(), Kind: c.Kind(), Row: -1, Value: fmt.Sprint(v), Err: fmt.Errorf("%s", reason)}
	}
	if v == nil {
		return nil, fail("fill value is nil")
	}
	switch {
	case c.Kind().IsNumeric():
		var f float64
		switch x := v.(type) {
		case int:
			f = float64(x)
		case int64:
			f = float64(x)
		case float64:
			f = x
		case float32:
			f = float64(x)
		default:
			return nil, fail(fmt.Sprintf("expected a number, got %T", v))
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fail("fill value must be finite")
		}
		if c.Kind() == frame.Int && f != math.Trunc(f) {
			return nil, fail("fill value is not an integer")
		}
		return f, nil
	case c.Kind().IsCategorical():
		if _, ok := v.(string); !ok {
			return nil, fail(fmt.Sprintf("expected a string, got %T", v))
		}
		return v, nil
	default:
		switch v.(type) {
		case time.Time, string:
			return v, nil
		}
		return nil, fail(fmt.Sprintf("expected a time, got %T", v))
	}
}
