// Package profile computes descriptive information about a table: shape,
// skew, missing values, correlations, summary statistics and unique values.
// Nothing here modifies the table it is given.
package profile

import (
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/loaneda/internal/frame"
)

// Shape returns (rows, columns).
func Shape(t *frame.Table) (int, int) { return t.Shape() }

// Skew returns the skewness of every Int and Float column over its non-null
// values. Columns that cannot be measured map to NaN.
func Skew(t *frame.Table) map[string]float64 {
	out := make(map[string]float64)
	for _, c := range t.Columns() {
		if !c.Kind().IsNumeric() {
			continue
		}
		out[c.Name()] = SkewOf(c.Valid())
	}
	return out
}

// MissingStat is the missing-value count of one column.
type MissingStat struct {
	Column  string
	Count   int
	Percent float64
}

// Missing returns the number of missing cells in column and their share of
// the current row count, as a percentage rounded to two decimals.
func Missing(t *frame.Table, column string) (int, float64, error) {
	c, err := t.Column(column)
	if err != nil {
		return 0, 0, err
	}
	n := c.NullCount()
	return n, percent(n, t.NumRows()), nil
}

// MissingAll returns Missing for every column in table order.
func MissingAll(t *frame.Table) []MissingStat {
	out := make([]MissingStat, 0, t.NumCols())
	for _, c := range t.Columns() {
		n := c.NullCount()
		out = append(out, MissingStat{Column: c.Name(), Count: n, Percent: percent(n, t.NumRows())})
	}
	return out
}

func percent(n, rows int) float64 {
	if rows == 0 {
		return 0
	}
	return math.Round(float64(n)/float64(rows)*100*100) / 100
}

// CorrMatrix holds a symmetric Pearson correlation matrix across numeric columns.
type CorrMatrix struct {
	Columns []string
	Values  [][]float64 // row-major, Values[i][j]
}

// At returns the coefficient for columns a and b, or NaN when either is absent.
func (m *CorrMatrix) At(a, b string) float64 {
	i, j := -1, -1
	for k, name := range m.Columns {
		if name == a {
			i = k
		}
		if name == b {
			j = k
		}
	}
	if i < 0 || j < 0 {
		return math.NaN()
	}
	return m.Values[i][j]
}

// Correlation computes Pearson coefficients between numeric columns using
// the rows where both values are present. Pairs with fewer than two such rows
// or with a constant side are NaN.
func Correlation(t *frame.Table) *CorrMatrix {
	var cols []*frame.Column
	for _, c := range t.Columns() {
		if c.Kind().IsNumeric() {
			cols = append(cols, c)
		}
	}
	m := &CorrMatrix{Columns: make([]string, len(cols)), Values: make([][]float64, len(cols))}
	for i, c := range cols {
		m.Columns[i] = c.Name()
		m.Values[i] = make([]float64, len(cols))
	}
	for i := range cols {
		for j := i; j < len(cols); j++ {
			r := pairwise(cols[i], cols[j])
			m.Values[i][j] = r
			m.Values[j][i] = r
		}
	}
	return m
}

func pairwise(a, b *frame.Column) float64 {
	var x, y []float64
	for i := 0; i < a.Len(); i++ {
		if a.IsNull(i) || b.IsNull(i) {
			continue
		}
		x = append(x, a.Float(i))
		y = append(y, b.Float(i))
	}
	if len(x) < 2 || isConstant(x) || isConstant(y) {
		return math.NaN()
	}
	r := stat.Correlation(x, y, nil)
	return math.Max(-1, math.Min(1, r))
}

func isConstant(vals []float64) bool {
	for _, v := range vals[1:] {
		if v != vals[0] {
			return false
		}
	}
	return true
}

// Description holds summary statistics of one numeric column.
type Description struct {
	Column string
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	Q1     float64
	Median float64
	Q3     float64
	Max    float64
}

// Describe summarizes every numeric column over its non-null values. Std is
// the sample standard deviation; it is NaN for fewer than two values.
func Describe(t *frame.Table) []Description {
	var out []Description
	for _, c := range t.Columns() {
		if !c.Kind().IsNumeric() {
			continue
		}
		out = append(out, describe(c.Name(), c.Valid()))
	}
	return out
}

func describe(name string, vals []float64) Description {
	d := Description{Column: name, Count: len(vals)}
	if len(vals) == 0 {
		nan := math.NaN()
		d.Mean, d.Std, d.Min, d.Q1, d.Median, d.Q3, d.Max = nan, nan, nan, nan, nan, nan, nan
		return d
	}
	d.Mean = stat.Mean(vals, nil)
	d.Std = math.NaN()
	if len(vals) > 1 {
		d.Std = stat.StdDev(vals, nil)
	}
	d.Min = floats.Min(vals)
	d.Max = floats.Max(vals)
	s := sortedCopy(vals)
	d.Q1 = Quantile(s, 0.25)
	d.Median = Quantile(s, 0.5)
	d.Q3 = Quantile(s, 0.75)
	return d
}

// Unique returns the distinct values of column in order of first occurrence.
// A missing value is reported once as nil at the position it first appears.
func Unique(t *frame.Table, column string) ([]any, error) {
	c, err := t.Column(column)
	if err != nil {
		return nil, err
	}
	seen := make(map[any]bool)
	var out []any
	for i := 0; i < c.Len(); i++ {
		v := c.Value(i)
		key := v
		if ts, ok := v.(time.Time); ok {
			key = ts.UnixNano()
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out, nil
}

// ColumnInfo is one line of Info.
type ColumnInfo struct {
	Name    string
	Kind    frame.Kind
	NonNull int
}

// Info lists every column with its kind and non-null count.
func Info(t *frame.Table) []ColumnInfo {
	out := make([]ColumnInfo, 0, t.NumCols())
	for _, c := range t.Columns() {
		out = append(out, ColumnInfo{Name: c.Name(), Kind: c.Kind(), NonNull: c.Len() - c.NullCount()})
	}
	return out
}
