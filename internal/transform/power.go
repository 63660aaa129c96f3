package transform

import (
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"

	"github.com/KaramelBytes/loaneda/internal/frame"
)

// DropRule decides whether a Box-Cox input column is removed before fitting.
type DropRule int

const (
	// DropNonPositive removes columns holding any value <= 0.
	DropNonPositive DropRule = iota
	// DropMultipleOfTen removes columns holding any exact multiple of 10.
	// Kept for parity with older notebooks; it does not guarantee positive
	// input, so a surviving column can still fail.
	DropMultipleOfTen
)

func (r DropRule) String() string {
	if r == DropMultipleOfTen {
		return "multiple-of-ten"
	}
	return "nonpositive"
}

// ParseDropRule accepts "nonpositive" and "multiple-of-ten" (or "mod10").
func ParseDropRule(s string) (DropRule, error) {
	switch s {
	case "", "nonpositive", "non-positive":
		return DropNonPositive, nil
	case "multiple-of-ten", "mod10", "legacy":
		return DropMultipleOfTen, nil
	}
	return 0, fmt.Errorf("unknown box-cox rule %q", s)
}

func (r DropRule) drops(v float64) bool {
	if r == DropMultipleOfTen {
		return math.Mod(v, 10) == 0
	}
	return v <= 0
}

// BoxCox scans the in-scope numeric columns with rule, removes every column
// that trips it, then replaces each remaining column with its Box-Cox
// transform at the maximum-likelihood lambda. Missing cells are ignored by
// the scan and the fit and stay missing.
func BoxCox(t *frame.Table, rule DropRule, columns ...string) (*Result, error) {
	cols, err := numericScope(t, columns)
	if err != nil {
		return nil, err
	}
	res := &Result{Lambdas: map[string]float64{}}
	var keep []*frame.Column
	for _, c := range cols {
		dropped := false
		for _, v := range c.Valid() {
			if rule.drops(v) {
				dropped = true
				break
			}
		}
		if dropped {
			res.Dropped = append(res.Dropped, c.Name())
			continue
		}
		keep = append(keep, c)
	}
	out := t.Drop(res.Dropped...)
	for _, c := range keep {
		vals := c.Valid()
		if len(vals) == 0 {
			return nil, &frame.ValueError{Column: c.Name(), Reason: "no values to fit"}
		}
		for _, v := range vals {
			if v <= 0 {
				return nil, &frame.ValueError{Column: c.Name(), Reason: fmt.Sprintf("box-cox requires positive values, found %s", frame.FormatFloat(v))}
			}
		}
		if isConstant(vals) {
			return nil, &frame.ValueError{Column: c.Name(), Reason: "box-cox cannot fit a constant column"}
		}
		lambda, err := maximize(func(l float64) float64 { return boxCoxLLF(vals, l) })
		if err != nil {
			return nil, fmt.Errorf("fit box-cox %q: %w", c.Name(), err)
		}
		res.Lambdas[c.Name()] = lambda
		if out, err = out.WithColumn(apply(c, func(v float64) float64 { return boxCox(v, lambda) })); err != nil {
			return nil, err
		}
	}
	slog.Debug("box-cox applied", "rule", rule.String(), "lambdas", res.Lambdas, "dropped", res.Dropped)
	res.Table = out
	return res, nil
}

// YeoJohnson replaces each in-scope numeric column with its Yeo-Johnson
// transform at the maximum-likelihood lambda. Columns with fewer than two
// distinct values are left as they are, recorded with lambda 1.
func YeoJohnson(t *frame.Table, columns ...string) (*Result, error) {
	cols, err := numericScope(t, columns)
	if err != nil {
		return nil, err
	}
	res := &Result{Lambdas: map[string]float64{}}
	out := t
	for _, c := range cols {
		vals := c.Valid()
		if len(vals) < 2 || isConstant(vals) {
			res.Lambdas[c.Name()] = 1
			continue
		}
		lambda, err := maximize(func(l float64) float64 { return yeoJohnsonLLF(vals, l) })
		if err != nil {
			return nil, fmt.Errorf("fit yeo-johnson %q: %w", c.Name(), err)
		}
		res.Lambdas[c.Name()] = lambda
		if out, err = out.WithColumn(apply(c, func(v float64) float64 { return yeoJohnson(v, lambda) })); err != nil {
			return nil, err
		}
	}
	slog.Debug("yeo-johnson applied", "lambdas", res.Lambdas)
	res.Table = out
	return res, nil
}

// apply maps f over the non-missing cells of c into a Float column.
func apply(c *frame.Column, f func(float64) float64) *frame.Column {
	vals := c.Floats()
	for i, v := range vals {
		if !math.IsNaN(v) {
			vals[i] = f(v)
		}
	}
	return frame.NewFloat(c.Name(), vals)
}

func isConstant(vals []float64) bool {
	for _, v := range vals[1:] {
		if v != vals[0] {
			return false
		}
	}
	return true
}

// maximize finds the lambda maximizing llf with Nelder-Mead, starting at 1.
func maximize(llf func(float64) float64) (float64, error) {
	p := optimize.Problem{
		Func: func(x []float64) float64 {
			v := -llf(x[0])
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return math.Inf(1)
			}
			return v
		},
	}
	settings := &optimize.Settings{
		Converger: &optimize.FunctionConverge{Absolute: 1e-10, Iterations: 200},
	}
	r, err := optimize.Minimize(p, []float64{1}, settings, &optimize.NelderMead{})
	if err != nil {
		return 0, err
	}
	return r.X[0], nil
}

func boxCox(x, lambda float64) float64 {
	if math.Abs(lambda) < 1e-12 {
		return math.Log(x)
	}
	return (math.Pow(x, lambda) - 1) / lambda
}

// boxCoxLLF is the profile log-likelihood of the Box-Cox model up to a
// constant: (lambda-1)*sum(ln x) - n/2*ln(var(y)).
func boxCoxLLF(vals []float64, lambda float64) float64 {
	y := make([]float64, len(vals))
	var logSum float64
	for i, v := range vals {
		y[i] = boxCox(v, lambda)
		logSum += math.Log(v)
	}
	n := float64(len(vals))
	return (lambda-1)*logSum - n/2*math.Log(stat.Variance(y, nil))
}

func yeoJohnson(x, lambda float64) float64 {
	const eps = 1e-12
	if x >= 0 {
		if math.Abs(lambda) < eps {
			return math.Log1p(x)
		}
		return (math.Pow(x+1, lambda) - 1) / lambda
	}
	if math.Abs(lambda-2) < eps {
		return -math.Log1p(-x)
	}
	return -(math.Pow(1-x, 2-lambda) - 1) / (2 - lambda)
}

// yeoJohnsonLLF is the Yeo-Johnson log-likelihood up to a constant:
// -n/2*ln(var(psi)) + (lambda-1)*sum(sign(x)*ln(|x|+1)).
func yeoJohnsonLLF(vals []float64, lambda float64) float64 {
	y := make([]float64, len(vals))
	var jac float64
	for i, v := range vals {
		y[i] = yeoJohnson(v, lambda)
		s := 1.0
		if v < 0 {
			s = -1
		}
		jac += s * math.Log1p(math.Abs(v))
	}
	n := float64(len(vals))
	return -n/2*math.Log(stat.Variance(y, nil)) + (lambda-1)*jac
}
