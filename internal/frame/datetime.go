package frame

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// PatternMixed asks SetDatetime to detect the layout of each value separately.
const PatternMixed = "mixed"

// mixedLayouts are tried in order for PatternMixed. Day-first slash dates are
// only reached when the month-first reading fails.
var mixedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"02/01/2006",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"Jan-2006",
	"Jan 2006",
	"January 2006",
	"Jan-06",
	"02-Jan-2006",
	"2 Jan 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	time.RFC1123,
	time.RFC1123Z,
}

var errNoLayout = errors.New("no recognized date layout")

func parseMixed(s string) (time.Time, error) {
	v := strings.TrimSpace(s)
	for _, l := range mixedLayouts {
		if t, err := time.Parse(l, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errNoLayout
}

// SetDatetime returns a table where column is parsed into timestamps. With
// PatternMixed (or an empty pattern) each value may use a different layout;
// otherwise pattern is a Go reference layout. A single unparseable value fails
// the whole call with a *ParseError and the input table is left as it was.
func SetDatetime(t *Table, column, pattern string) (*Table, error) {
	c, err := t.Column(column)
	if err != nil {
		return nil, err
	}
	if c.kind == Time {
		return t, nil
	}
	if c.kind.IsNumeric() {
		return nil, &TypeError{Column: column, Kind: Time, Row: -1, Err: fmt.Errorf("numeric column cannot be parsed as dates")}
	}
	if pattern == "" {
		pattern = PatternMixed
	}
	out := &Column{name: c.name, kind: Time, times: make([]time.Time, c.Len()), null: make([]bool, c.Len())}
	for i := 0; i < c.Len(); i++ {
		raw := strings.TrimSpace(c.strs[i])
		if c.null[i] || raw == "" {
			out.null[i] = true
			continue
		}
		var ts time.Time
		var perr error
		if pattern == PatternMixed {
			ts, perr = parseMixed(raw)
		} else {
			ts, perr = time.Parse(pattern, raw)
		}
		if perr != nil {
			return nil, &ParseError{Column: column, Row: i, Value: raw, Pattern: pattern}
		}
		out.times[i] = ts
	}
	return t.WithColumn(out)
}
