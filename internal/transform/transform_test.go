package transform

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/loaneda/internal/frame"
	"github.com/KaramelBytes/loaneda/internal/profile"
)

func floats(t *testing.T, tbl *frame.Table, name string) []float64 {
	t.Helper()
	c, err := tbl.Column(name)
	require.NoError(t, err)
	return c.Floats()
}

func TestLog(t *testing.T) {
	tbl := frame.MustNew(
		frame.NewFloat("x", []float64{-1, 0, 2}),
		frame.NewInt("n", []int64{1, 10, 100}),
		frame.NewText("grade", []string{"A", "B", "C"}),
	)
	out, err := Log(tbl)
	require.NoError(t, err)

	// non-positive cells collapse to 0: the sign and magnitude are lost
	assert.Equal(t, []float64{0, 0, math.Log(2)}, floats(t, out, "x"))
	n, _ := out.Column("n")
	assert.Equal(t, frame.Float, n.Kind())
	assert.InDeltaSlice(t, []float64{0, math.Log(10), math.Log(100)}, n.Floats(), 1e-12)
	assert.Equal(t, []float64{-1, 0, 2}, floats(t, tbl, "x"), "input untouched")

	withNull := frame.MustNew(frame.NewFloat("x", []float64{math.NaN(), math.E}))
	out, err = Log(withNull)
	require.NoError(t, err)
	got := floats(t, out, "x")
	assert.True(t, math.IsNaN(got[0]))
	assert.InDelta(t, 1, got[1], 1e-12)

	_, err = Log(tbl, "grade")
	var te *frame.TypeError
	assert.True(t, errors.As(err, &te))
	_, err = Log(tbl, "nope")
	assert.ErrorIs(t, err, frame.ErrColumnNotFound)
}

func TestRemoveOutliers(t *testing.T) {
	tbl := frame.MustNew(frame.NewFloat("x", []float64{1, 2, 3, 4, 100}))
	out, err := RemoveOutliers(tbl)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4}, floats(t, out, "x"))
	assert.Equal(t, []int{0, 1, 2, 3}, out.Index())

	// nothing outside the fence: rows unchanged
	clean := frame.MustNew(frame.NewFloat("x", []float64{1, 2, 3, 4, 5}))
	out, err = RemoveOutliers(clean)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4, 5}, floats(t, out, "x"))
}

func TestRemoveOutliers_SequentialAndNulls(t *testing.T) {
	tbl := frame.MustNew(
		frame.NewFloat("a", []float64{1, 2, 3, 4, 100, 5}),
		frame.NewFloat("b", []float64{10, 11, math.NaN(), 12, 13, 50}),
		frame.NewText("grade", []string{"A", "B", "C", "D", "E", "F"}),
	)
	out, err := RemoveOutliers(tbl, "a", "b")
	require.NoError(t, err)
	// a drops 100; b is fenced on the remaining rows [10 11 12 50] and drops
	// 50; the row with the missing b goes last.
	assert.Equal(t, []float64{1, 2, 4}, floats(t, out, "a"))
	assert.Equal(t, []float64{10, 11, 12}, floats(t, out, "b"))
	assert.Equal(t, []int{0, 1, 2}, out.Index())
	assert.Equal(t, 6, tbl.NumRows(), "input untouched")

	_, err = RemoveOutliers(tbl, "grade")
	var te *frame.TypeError
	assert.True(t, errors.As(err, &te))
}

func TestRemoveOutliers_OrderMatters(t *testing.T) {
	tbl := frame.MustNew(
		frame.NewFloat("a", []float64{3, 3, 1, 15, 1, 9}),
		frame.NewFloat("b", []float64{8, 9, 4, 20, 6, 12}),
	)
	ab, err := RemoveOutliers(tbl, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 3, 1, 1, 9}, floats(t, ab, "a"))

	// once b drops its 20, the 9 in a falls outside the narrower fence
	ba, err := RemoveOutliers(tbl, "b", "a")
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 3, 1, 1}, floats(t, ba, "a"))
}

func TestFillNull(t *testing.T) {
	tbl := frame.MustNew(
		frame.NewFloat("colA", []float64{1, math.NaN(), 3, math.NaN()}),
		frame.NewFloat("colB", []float64{math.NaN(), 2, math.NaN(), 4}),
		mustColumn(t, "term", frame.Text, []any{"36 months", nil, "60 months", nil}),
		mustColumn(t, "last_payment", frame.Time, []any{"2021-01-01", nil, "2021-03-01", "2021-04-01"}),
	)
	out, err := FillNull(tbl, map[string]any{"colA": 0})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0, 3, 0}, floats(t, out, "colA"))
	b := floats(t, out, "colB")
	assert.True(t, math.IsNaN(b[0]))
	assert.True(t, math.IsNaN(b[2]))
	term, _ := out.Column("term")
	assert.Equal(t, 2, term.NullCount())

	out, err = FillNull(tbl, map[string]any{"term": "36 months", "last_payment": "Feb-2021"})
	require.NoError(t, err)
	term, _ = out.Column("term")
	assert.Equal(t, "36 months", term.Value(1))
	paid, _ := out.Column("last_payment")
	assert.Equal(t, time.Date(2021, 2, 1, 0, 0, 0, 0, time.UTC), paid.Value(1))

	_, err = FillNull(tbl, map[string]any{"missing": 1})
	assert.ErrorIs(t, err, frame.ErrColumnNotFound)

	var te *frame.TypeError
	_, err = FillNull(tbl, map[string]any{"colA": "zero"})
	assert.True(t, errors.As(err, &te))
	_, err = FillNull(tbl, map[string]any{"term": 36})
	assert.True(t, errors.As(err, &te))

	ints := frame.MustNew(mustColumn(t, "n", frame.Int, []any{int64(1), nil}))
	_, err = FillNull(ints, map[string]any{"n": 1.5})
	assert.True(t, errors.As(err, &te))
}

func mustColumn(t *testing.T, name string, kind frame.Kind, vals []any) *frame.Column {
	t.Helper()
	c, err := frame.NewColumn(name, kind, vals)
	require.NoError(t, err)
	return c
}

func TestBoxCox_NonPositiveRule(t *testing.T) {
	tbl := frame.MustNew(
		frame.NewFloat("loan_amount", []float64{1, 2, 3, 4, 100}),
		frame.NewFloat("recoveries", []float64{-1, 2, 3, 4, 5}),
		frame.NewFloat("instalment", []float64{10, 20, 30, 40, 55}),
		frame.NewText("grade", []string{"A", "B", "C", "D", "E"}),
	)
	res, err := BoxCox(tbl, DropNonPositive)
	require.NoError(t, err)
	assert.Equal(t, []string{"recoveries"}, res.Dropped)
	assert.Equal(t, []string{"loan_amount", "instalment", "grade"}, res.Table.Names())
	require.Contains(t, res.Lambdas, "loan_amount")
	require.Contains(t, res.Lambdas, "instalment")

	before := profile.SkewOf([]float64{1, 2, 3, 4, 100})
	after := profile.SkewOf(floats(t, res.Table, "loan_amount"))
	assert.Less(t, math.Abs(after), math.Abs(before))

	lambda := res.Lambdas["loan_amount"]
	got := floats(t, res.Table, "loan_amount")
	assert.InDelta(t, (math.Pow(100, lambda)-1)/lambda, got[4], 1e-9)
}

func TestBoxCox_MultipleOfTenRule(t *testing.T) {
	tbl := frame.MustNew(
		frame.NewFloat("loan_amount", []float64{1, 2, 3, 4, 100}),
		frame.NewFloat("instalment", []float64{10, 21, 33, 47, 55}),
		frame.NewFloat("rate", []float64{5, 7, 9, 11, 13}),
	)
	res, err := BoxCox(tbl, DropMultipleOfTen)
	require.NoError(t, err)
	assert.Equal(t, []string{"loan_amount", "instalment"}, res.Dropped)
	assert.Equal(t, []string{"rate"}, res.Table.Names())

	// under the legacy rule a negative column survives the scan and then fails
	neg := frame.MustNew(frame.NewFloat("recoveries", []float64{-5, 3, 7}))
	_, err = BoxCox(neg, DropMultipleOfTen)
	var ve *frame.ValueError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, "recoveries", ve.Column)

	res, err = BoxCox(neg, DropNonPositive)
	require.NoError(t, err)
	assert.Equal(t, []string{"recoveries"}, res.Dropped)
	assert.Zero(t, res.Table.NumCols())

	constant := frame.MustNew(frame.NewFloat("c", []float64{3, 3, 3}))
	_, err = BoxCox(constant, DropNonPositive)
	assert.True(t, errors.As(err, &ve))
}

func TestParseDropRule(t *testing.T) {
	r, err := ParseDropRule("")
	require.NoError(t, err)
	assert.Equal(t, DropNonPositive, r)
	r, err = ParseDropRule("multiple-of-ten")
	require.NoError(t, err)
	assert.Equal(t, DropMultipleOfTen, r)
	_, err = ParseDropRule("sometimes")
	assert.Error(t, err)
}

func TestYeoJohnson(t *testing.T) {
	right := []float64{-3, 0, 1, 2, 3, 4, 5, 8, 20, 60, 150}
	tbl := frame.MustNew(
		frame.NewFloat("x", right),
		frame.NewInt("flat", []int64{7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7}),
		frame.NewText("grade", []string{"A", "B", "C", "D", "E", "F", "G", "A", "B", "C", "D"}),
	)
	res, err := YeoJohnson(tbl)
	require.NoError(t, err)
	assert.Empty(t, res.Dropped)
	assert.Equal(t, tbl.Names(), res.Table.Names())

	before := profile.SkewOf(right)
	after := profile.SkewOf(floats(t, res.Table, "x"))
	assert.Less(t, math.Abs(after), math.Abs(before))

	assert.Equal(t, 1.0, res.Lambdas["flat"])
	flat, _ := res.Table.Column("flat")
	assert.Equal(t, frame.Int, flat.Kind(), "constant column left as is")
}

func TestYeoJohnsonFormula(t *testing.T) {
	for _, x := range []float64{-4, -0.5, 0, 0.5, 9} {
		assert.InDelta(t, x, yeoJohnson(x, 1), 1e-12, "lambda 1 is the identity")
	}
	assert.InDelta(t, math.Log1p(3), yeoJohnson(3, 0), 1e-12)
	assert.InDelta(t, -math.Log1p(3), yeoJohnson(-3, 2), 1e-12)
	assert.InDelta(t, math.Log(5), boxCox(5, 0), 1e-12)
}

func TestDummies(t *testing.T) {
	source := frame.MustNew(
		frame.NewText("grade", []string{"A", "B", "A"}),
		mustColumn(t, "term", frame.Category, []any{"36 months", nil, "60 months"}),
		frame.NewFloat("loan_amount", []float64{1, 2, 3}),
	)
	out, err := Dummies(source, source, DummyOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"loan_amount", "grade:A", "grade:B", "term:36 months", "term:60 months"}, out.Names())
	assert.Equal(t, []float64{1, 0, 1}, floats(t, out, "grade:A"))
	assert.Equal(t, []float64{1, 0, 0}, floats(t, out, "term:36 months"))
	assert.Equal(t, 3, source.NumCols(), "input untouched")

	// a separate target keeps its own columns
	target := frame.MustNew(frame.NewInt("id", []int64{1, 2, 3}))
	out, err = Dummies(source, target, DummyOptions{Columns: []string{"grade"}, Bare: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "A", "B"}, out.Names())

	// bare names collide across columns
	clash := frame.MustNew(
		frame.NewText("home_ownership", []string{"OTHER", "RENT"}),
		frame.NewText("purpose", []string{"OTHER", "car"}),
	)
	_, err = Dummies(clash, clash, DummyOptions{Bare: true})
	assert.ErrorIs(t, err, frame.ErrDuplicateColumn)
	out, err = Dummies(clash, clash, DummyOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"home_ownership:OTHER", "home_ownership:RENT", "purpose:OTHER", "purpose:car"}, out.Names())

	_, err = Dummies(source, frame.MustNew(frame.NewInt("id", []int64{1})), DummyOptions{})
	assert.ErrorIs(t, err, frame.ErrLengthMismatch)
}

func TestDropColumns(t *testing.T) {
	tbl := frame.MustNew(frame.NewInt("id", []int64{1}), frame.NewInt("member_id", []int64{2}))
	out, err := DropColumns(tbl, "member_id")
	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, out.Names())
	_, err = DropColumns(tbl, "policy_code")
	assert.ErrorIs(t, err, frame.ErrColumnNotFound)
}
