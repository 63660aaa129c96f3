package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/loaneda/internal/config"
	"github.com/KaramelBytes/loaneda/internal/frame"
	"github.com/KaramelBytes/loaneda/internal/loader"
	"github.com/KaramelBytes/loaneda/internal/utils"
)

const loansCSV = `id,loan_amount,int_rate,total_payment,grade
1,1000,7.5,0,A
2,1500,8.1,100.5,B
3,2000,,250.25,
4,2500,9.9,310.75,A
5,3000,10.2,400.5,C
6,3500,11.3,520.5,B
7,4000,12.7,610.25,A
8,5000,13.1,720.5,B
9,8000,14.9,880.75,A
10,35000,20.5,990.5,C
`

func writePlanDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "loans.csv"), []byte(loansCSV), 0o644))
	return dir
}

func TestPlanSaveLoad(t *testing.T) {
	dir := t.TempDir()
	p := NewPlan("loans", filepath.Join(dir, utils.PlanFileName))
	p.FillNull = map[string]any{"grade": "unknown", "int_rate": 0.0}
	require.NoError(t, p.Save())

	sub := filepath.Join(dir, "notebooks", "eda")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	got, err := LoadPlan(sub)
	require.NoError(t, err)
	assert.Equal(t, p.Path(), got.Path())
	assert.Equal(t, "loans", got.Name)
	assert.Equal(t, p.Steps, got.Steps)
	assert.Equal(t, p.Types, got.Types)
	assert.Equal(t, "unknown", got.FillNull["grade"])
	assert.False(t, got.CreatedAt.IsZero())

	again, err := LoadPlan(p.Path())
	require.NoError(t, err)
	assert.Equal(t, got.Name, again.Name)
	assert.Equal(t, filepath.Join(dir, "plots"), again.Resolve("plots"))
	assert.Equal(t, "/abs/out.csv", again.Resolve("/abs/out.csv"))
}

func TestPlanValidate(t *testing.T) {
	base := func() *Plan { return &Plan{Name: "x", Source: Source{Path: "a.csv"}} }
	require.NoError(t, base().Validate())

	cases := map[string]func(p *Plan){
		"name":       func(p *Plan) { p.Name = " " },
		"source":     func(p *Plan) { p.Source = Source{} },
		"both":       func(p *Plan) { p.Source.Query = "SELECT 1" },
		"delimiter":  func(p *Plan) { p.Source.Delimiter = ";;" },
		"kind":       func(p *Plan) { p.Types = map[string]string{"a": "decimal"} },
		"rule":       func(p *Plan) { p.BoxCoxRule = "odd" },
		"op":         func(p *Plan) { p.Steps = []Step{{Op: "sqrt"}} },
		"drop":       func(p *Plan) { p.Steps = []Step{{Op: OpDrop}} },
		"plot":       func(p *Plan) { p.Plots.Kinds = []string{"violin"} },
		"categories": func(p *Plan) { p.Plots.Kinds = []string{PlotPie} },
	}
	for name, mutate := range cases {
		p := base()
		mutate(p)
		assert.Error(t, p.Validate(), name)
	}
}

func TestLoadPlanRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: bad\nsource:\n  path: a.csv\nsteps:\n  - op: sqrt\n"), 0o644))
	_, err := LoadPlan(path)
	assert.ErrorContains(t, err, "unknown op")
}

func TestRunEndToEnd(t *testing.T) {
	dir := writePlanDir(t)
	p := &Plan{
		Name:     "loans",
		Source:   Source{Path: "loans.csv"},
		Drop:     []string{"id"},
		FillNull: map[string]any{"grade": "unknown"},
		Steps: []Step{
			{Op: OpBoxCox, Columns: []string{"loan_amount", "int_rate", "total_payment"}},
			{Op: OpOutliers, Columns: []string{"loan_amount"}},
			{Op: OpDummies, Columns: []string{"grade"}},
		},
		Output: "out/clean.csv",
		Report: "out/report.md",
		Plots:  Plots{Dir: "charts", Kinds: []string{PlotMissing, PlotHistogram}, Bins: 5},
		path:   filepath.Join(dir, utils.PlanFileName),
	}

	res, err := Run(context.Background(), p, Env{})
	require.NoError(t, err)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, 10, res.Before.Rows)
	assert.Equal(t, []string{"total_payment"}, res.Dropped)
	assert.Contains(t, res.Lambdas, "loan_amount")
	assert.Contains(t, res.Lambdas, "int_rate")

	tbl := res.Table
	assert.False(t, tbl.Has("id"))
	assert.False(t, tbl.Has("grade"))
	assert.False(t, tbl.Has("total_payment"))
	assert.True(t, tbl.Has("grade:A"))
	assert.LessOrEqual(t, tbl.NumRows(), 9)
	assert.Greater(t, tbl.NumRows(), 0)
	assert.Equal(t, res.After.Rows, tbl.NumRows())
	for _, c := range tbl.Columns() {
		assert.Zero(t, c.NullCount(), c.Name())
	}

	clean := filepath.Join(dir, "out", "clean.csv")
	report := filepath.Join(dir, "out", "report.md")
	assert.Contains(t, res.Files, clean)
	assert.Contains(t, res.Files, report)
	assert.Contains(t, res.Files, filepath.Join(dir, "charts", "missing_values.png"))
	assert.Contains(t, res.Files, filepath.Join(dir, "charts", "hist_loan_amount.png"))
	for _, f := range res.Files {
		assert.FileExists(t, f)
	}

	reloaded, err := loader.LoadFile(clean, loader.Options{})
	require.NoError(t, err)
	assert.Equal(t, tbl.Names(), reloaded.Names())
	assert.Equal(t, tbl.NumRows(), reloaded.NumRows())

	md, err := os.ReadFile(report)
	require.NoError(t, err)
	assert.Contains(t, string(md), "## Before")
	assert.Contains(t, string(md), "## Lambdas")
	assert.Contains(t, string(md), "total_payment")
}

func TestRunCategoryCharts(t *testing.T) {
	dir := writePlanDir(t)
	p := &Plan{
		Name:   "grades",
		Source: Source{Path: "loans.csv"},
		Types:  map[string]string{"grade": "category"},
		Plots:  Plots{Kinds: []string{PlotBar, PlotPie}, Categories: []string{"grade"}, Format: "svg"},
		path:   filepath.Join(dir, utils.PlanFileName),
	}
	res, err := Run(context.Background(), p, Env{Config: &config.Global{PlotsDir: "figs"}})
	require.NoError(t, err)

	col, err := res.Table.Column("grade")
	require.NoError(t, err)
	assert.Equal(t, frame.Category, col.Kind())
	assert.Equal(t, []string{
		filepath.Join(dir, "figs", "grade.svg"),
		filepath.Join(dir, "figs", "pie_grade.svg"),
	}, res.Files)
}

func TestRunFailsBeforeWriting(t *testing.T) {
	dir := writePlanDir(t)
	p := &Plan{
		Name:   "bad",
		Source: Source{Path: "loans.csv"},
		Steps:  []Step{{Op: OpLog, Columns: []string{"grade"}}},
		Output: "clean.csv",
		path:   filepath.Join(dir, utils.PlanFileName),
	}
	_, err := Run(context.Background(), p, Env{})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "steps[0] log"))
	assert.NoFileExists(t, filepath.Join(dir, "clean.csv"))
}

func TestRunFromSQLite(t *testing.T) {
	dir := writePlanDir(t)
	ctx := context.Background()
	db := filepath.Join(dir, "loans.db")
	src, err := loader.LoadFile(filepath.Join(dir, "loans.csv"), loader.Options{})
	require.NoError(t, err)
	require.NoError(t, loader.WriteTable(ctx, loader.Query{Driver: "sqlite", Credentials: config.Credentials{Database: db}}, loader.DefaultTable, src))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "credentials.yaml"), []byte("RDS_DATABASE: "+db+"\n"), 0o600))

	p := &Plan{
		Name:   "db",
		Source: Source{Driver: "sqlite", Credentials: "credentials.yaml"},
		Steps:  []Step{{Op: OpYeoJohnson, Columns: []string{"loan_amount"}}},
		path:   filepath.Join(dir, utils.PlanFileName),
	}
	res, err := Run(ctx, p, Env{Config: &config.Global{QueryTimeoutSec: 30}})
	require.NoError(t, err)
	assert.Equal(t, 10, res.Table.NumRows())
	assert.Contains(t, res.Lambdas, "loan_amount")
	assert.Empty(t, res.Files)
}
