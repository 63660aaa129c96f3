package plot

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/loaneda/internal/frame"
)

func chartTable() *frame.Table {
	return frame.MustNew(
		frame.NewFloat("loan_amount", []float64{8000, 13200, math.NaN(), 16000, 5000, 24000}),
		frame.NewInt("term_months", []int64{36, 60, 36, 36, 60, 36}),
		frame.NewText("grade", []string{"A", "B", "A", "C", "B", "A"}),
	)
}

func assertFile(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0), path)
}

func TestBarAndMissing(t *testing.T) {
	p := New(filepath.Join(t.TempDir(), "plots"))
	path, err := p.Bar("Loan status", []string{"Fully Paid", "Charged Off", "Current"}, []float64{120, 15, 300})
	require.NoError(t, err)
	assert.Equal(t, "loan_status.png", filepath.Base(path))
	assertFile(t, path)

	_, err = p.Bar("x", []string{"a"}, []float64{1, 2})
	assert.ErrorIs(t, err, frame.ErrLengthMismatch)
	_, err = p.Bar("x", nil, nil)
	assert.ErrorIs(t, err, ErrNoData)

	path, err = p.Missing(chartTable())
	require.NoError(t, err)
	assertFile(t, path)
}

func TestBox(t *testing.T) {
	p := New(t.TempDir())
	path, err := p.Box(chartTable())
	require.NoError(t, err)
	assert.Equal(t, "box.png", filepath.Base(path))
	assertFile(t, path)

	_, err = p.Box(chartTable(), "grade")
	var te *frame.TypeError
	assert.True(t, errors.As(err, &te))
}

func TestScatterAndHistogram(t *testing.T) {
	p := New(t.TempDir())
	paths, err := p.Scatter(chartTable())
	require.NoError(t, err)
	require.Len(t, paths, 2)
	assert.Equal(t, "scatter_loan_amount.png", filepath.Base(paths[0]))
	for _, path := range paths {
		assertFile(t, path)
	}

	p.Format = "svg"
	paths, err = p.Histogram(chartTable(), 5, "loan_amount")
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, "hist_loan_amount.svg", filepath.Base(paths[0]))
	assertFile(t, paths[0])

	empty := frame.MustNew(frame.NewFloat("x", []float64{math.NaN()}))
	_, err = p.Histogram(empty, 10)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestPie(t *testing.T) {
	p := New(t.TempDir())
	path, err := p.Pie([]float64{60, 30, 10}, []string{"36 months", "60 months", "unknown"}, "Loan terms")
	require.NoError(t, err)
	assert.Equal(t, "pie_loan_terms.png", filepath.Base(path))
	assertFile(t, path)

	_, err = p.Pie([]float64{1, -1}, []string{"a", "b"}, "bad")
	assert.Error(t, err)
	_, err = p.Pie([]float64{0, 0}, []string{"a", "b"}, "zero")
	assert.ErrorIs(t, err, ErrNoData)
}
