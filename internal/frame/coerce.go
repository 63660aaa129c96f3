package frame

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// SetType returns a table where column is reinterpreted as kind.
//
// Text to numeric parses every non-missing value and fails with a *TypeError
// on the first value that does not parse. Float to Int truncates toward zero.
// Time to Int yields Unix nanoseconds. Use SetDatetime to produce timestamps.
func SetType(t *Table, column string, kind Kind) (*Table, error) {
	c, err := t.Column(column)
	if err != nil {
		return nil, err
	}
	if c.kind == kind {
		return t, nil
	}
	var out *Column
	switch {
	case kind == Time:
		if c.kind.IsCategorical() {
			return SetDatetime(t, column, PatternMixed)
		}
		return nil, &TypeError{Column: column, Kind: kind, Row: -1, Err: fmt.Errorf("cannot convert %s to %s", c.kind, kind)}
	case kind.IsCategorical():
		out = c.take(nil)
		if !c.kind.IsCategorical() {
			out = &Column{name: c.name, kind: kind, strs: c.Strings(), null: append([]bool(nil), c.null...)}
		}
		out.kind = kind
	case kind.IsNumeric():
		out, err = toNumeric(c, kind)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("set type %q: unsupported kind %d", column, kind)
	}
	return t.WithColumn(out)
}

func toNumeric(c *Column, kind Kind) (*Column, error) {
	vals := make([]float64, c.Len())
	for i := range vals {
		if c.null[i] {
			vals[i] = math.NaN()
			continue
		}
		switch {
		case c.kind.IsNumeric():
			vals[i] = c.nums[i]
		case c.kind == Time:
			vals[i] = float64(c.times[i].UnixNano())
		default:
			raw := strings.TrimSpace(c.strs[i])
			f, err := parseNumber(raw, kind)
			if err != nil {
				return nil, &TypeError{Column: c.name, Kind: kind, Row: i, Value: c.strs[i], Err: err}
			}
			vals[i] = f
		}
	}
	return FromFloats(c.name, kind, vals)
}

func parseNumber(raw string, kind Kind) (float64, error) {
	if raw == "" {
		return math.NaN(), nil
	}
	if kind == Int {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return float64(n), nil
		}
		// "12.0" is an integer written by a float formatter.
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, err
		}
		if f != math.Trunc(f) {
			return 0, fmt.Errorf("%q is not an integer", raw)
		}
		return f, nil
	}
	return strconv.ParseFloat(raw, 64)
}
