package transform

import (
	"fmt"

	"github.com/KaramelBytes/loaneda/internal/frame"
)

// DummyOptions controls one-hot expansion.
type DummyOptions struct {
	// Columns limits the expansion; every Text and Category column when empty.
	Columns []string
	// Bare names indicators by category alone instead of "column:category".
	// Two categories with the same name then collide and Dummies fails.
	Bare bool
}

// Dummies expands each categorical column of source into one Float indicator
// column per distinct value, in order of first occurrence, and appends them
// to target. The source column itself is removed from target when present.
// Missing cells yield 0 in every indicator.
func Dummies(source, target *frame.Table, opts DummyOptions) (*frame.Table, error) {
	var cols []*frame.Column
	if len(opts.Columns) == 0 {
		for _, c := range source.Columns() {
			if c.Kind().IsCategorical() {
				cols = append(cols, c)
			}
		}
	} else {
		for _, name := range opts.Columns {
			c, err := source.Column(name)
			if err != nil {
				return nil, err
			}
			if !c.Kind().IsCategorical() {
				return nil, &frame.TypeError{Column: name, Kind: c.Kind(), Row: -1, Err: fmt.Errorf("categorical column required")}
			}
			cols = append(cols, c)
		}
	}
	if source.NumRows() != target.NumRows() {
		return nil, fmt.Errorf("%w: source has %d rows, target has %d", frame.ErrLengthMismatch, source.NumRows(), target.NumRows())
	}

	out := target
	for _, c := range cols {
		out = out.Drop(c.Name())
		for _, cat := range categories(c) {
			name := c.Name() + ":" + cat
			if opts.Bare {
				name = cat
			}
			if out.Has(name) {
				return nil, fmt.Errorf("dummy column %q: %w", name, frame.ErrDuplicateColumn)
			}
			ind := make([]float64, c.Len())
			for i := range ind {
				if !c.IsNull(i) && c.Record(i) == cat {
					ind[i] = 1
				}
			}
			var err error
			if out, err = out.WithColumn(frame.NewFloat(name, ind)); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

func categories(c *frame.Column) []string {
	seen := map[string]bool{}
	var out []string
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			continue
		}
		v := c.Record(i)
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
