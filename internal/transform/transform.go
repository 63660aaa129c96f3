// Package transform rewrites table columns: skew correction (log, Box-Cox,
// Yeo-Johnson), IQR outlier removal, null filling and one-hot dummies.
//
// Every function returns a new table and leaves its input unchanged.
package transform

import (
	"fmt"
	"math"

	"github.com/KaramelBytes/loaneda/internal/frame"
)

// Result is the outcome of a fitted power transform.
type Result struct {
	Table *frame.Table
	// Lambdas holds the fitted exponent per transformed column.
	Lambdas map[string]float64
	// Dropped lists columns removed by the Box-Cox scan, in table order.
	Dropped []string
}

// numericScope resolves the columns a numeric transform applies to. With no
// names every Int and Float column is used; a named column must exist and be
// numeric.
func numericScope(t *frame.Table, names []string) ([]*frame.Column, error) {
	if len(names) == 0 {
		var out []*frame.Column
		for _, c := range t.Columns() {
			if c.Kind().IsNumeric() {
				out = append(out, c)
			}
		}
		return out, nil
	}
	out := make([]*frame.Column, 0, len(names))
	for _, name := range names {
		c, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		if !c.Kind().IsNumeric() {
			return nil, &frame.TypeError{Column: name, Kind: c.Kind(), Row: -1, Err: fmt.Errorf("numeric column required")}
		}
		out = append(out, c)
	}
	return out, nil
}

// Log replaces every value v with ln(v) when v > 0 and with 0 otherwise.
// Missing cells stay missing; Int columns come back as Float.
func Log(t *frame.Table, columns ...string) (*frame.Table, error) {
	cols, err := numericScope(t, columns)
	if err != nil {
		return nil, err
	}
	out := t
	for _, c := range cols {
		vals := c.Floats()
		for i, v := range vals {
			if math.IsNaN(v) {
				continue
			}
			if v > 0 {
				vals[i] = math.Log(v)
			} else {
				vals[i] = 0
			}
		}
		if out, err = out.WithColumn(frame.NewFloat(c.Name(), vals)); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// DropColumns removes the named columns. Unlike Table.Drop, every name must
// exist.
func DropColumns(t *frame.Table, names ...string) (*frame.Table, error) {
	for _, name := range names {
		if !t.Has(name) {
			return nil, fmt.Errorf("drop %q: %w", name, frame.ErrColumnNotFound)
		}
	}
	return t.Drop(names...), nil
}
