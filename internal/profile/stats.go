package profile

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// OutlierK is the IQR multiplier of the outlier fence.
const OutlierK = 1.5

// Quantile returns the q-th quantile of sorted values using linear
// interpolation between the closest ranks. Empty input yields NaN.
func Quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

// Quartiles returns Q1 and Q3 of vals. The input is not modified.
func Quartiles(vals []float64) (q1, q3 float64) {
	cp := sortedCopy(vals)
	return Quantile(cp, 0.25), Quantile(cp, 0.75)
}

// Fence returns the closed interval [Q1 - 1.5*IQR, Q3 + 1.5*IQR].
func Fence(vals []float64) (lo, hi float64) {
	q1, q3 := Quartiles(vals)
	iqr := q3 - q1
	return q1 - OutlierK*iqr, q3 + OutlierK*iqr
}

// SkewOf returns the adjusted Fisher-Pearson skewness of vals. Fewer than
// three values or zero variance yields NaN.
func SkewOf(vals []float64) float64 {
	if len(vals) < 3 {
		return math.NaN()
	}
	_, std := stat.MeanStdDev(vals, nil)
	if std == 0 || math.IsNaN(std) {
		return math.NaN()
	}
	return stat.Skew(vals, nil)
}

func sortedCopy(vals []float64) []float64 {
	cp := append([]float64(nil), vals...)
	sort.Float64s(cp)
	return cp
}
