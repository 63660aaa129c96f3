package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/plot/vg"

	"github.com/KaramelBytes/loaneda/internal/config"
	"github.com/KaramelBytes/loaneda/internal/frame"
	"github.com/KaramelBytes/loaneda/internal/loader"
	"github.com/KaramelBytes/loaneda/internal/logging"
	"github.com/KaramelBytes/loaneda/internal/plot"
	"github.com/KaramelBytes/loaneda/internal/profile"
	"github.com/KaramelBytes/loaneda/internal/transform"
	"github.com/KaramelBytes/loaneda/internal/utils"
)

// Env carries the settings a plan does not spell out itself.
type Env struct {
	Config *config.Global
	// Credentials overrides the credentials file for query sources.
	Credentials *config.Credentials
}

// RunResult describes one execution of a plan.
type RunResult struct {
	RunID     string
	Plan      string
	StartedAt time.Time
	Duration  time.Duration

	Before *profile.Report
	After  *profile.Report
	Table  *frame.Table

	// Lambdas holds the fitted Box-Cox and Yeo-Johnson parameters by column.
	Lambdas map[string]float64
	// Dropped lists columns removed by the Box-Cox scan.
	Dropped []string
	// Files lists every file written, in order.
	Files []string
}

// Run executes p: load, profile, coerce, clean, transform, profile, save
// and plot. Nothing is written when a stage before saving fails.
func Run(ctx context.Context, p *Plan, env Env) (*RunResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	cfg := env.Config
	if cfg == nil {
		cfg = &config.Global{}
	}
	res := &RunResult{
		RunID:     uuid.NewString(),
		Plan:      p.Name,
		StartedAt: time.Now(),
		Lambdas:   map[string]float64{},
	}
	ctx = logging.WithRunID(ctx, res.RunID)
	slog.InfoContext(ctx, "run started", "plan", p.Name)

	t, err := load(ctx, p, cfg, env.Credentials)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	rows, cols := profile.Shape(t)
	slog.InfoContext(ctx, "table loaded", "rows", rows, "cols", cols)
	res.Before = profile.Analyze(p.Name, t, profile.DefaultOptions())

	if len(p.Drop) > 0 {
		if t, err = transform.DropColumns(t, p.Drop...); err != nil {
			return nil, fmt.Errorf("drop: %w", err)
		}
	}
	if len(p.FillNull) > 0 {
		if t, err = transform.FillNull(t, p.FillNull); err != nil {
			return nil, fmt.Errorf("fill_null: %w", err)
		}
	}

	rule := p.BoxCoxRule
	if rule == "" {
		rule = cfg.BoxCoxRule
	}
	dropRule, err := transform.ParseDropRule(rule)
	if err != nil {
		return nil, err
	}
	for i, s := range p.Steps {
		if t, err = res.step(t, s, dropRule); err != nil {
			return nil, fmt.Errorf("steps[%d] %s: %w", i, s.Op, err)
		}
		rows, cols = t.Shape()
		slog.DebugContext(ctx, "step done", "op", s.Op, "rows", rows, "cols", cols)
	}
	res.Table = t
	res.After = profile.Analyze(p.Name, t, profile.DefaultOptions())

	if p.Output != "" {
		out := p.Resolve(p.Output)
		opts := loader.SaveOptions{Index: cfg.IndexColumn}
		if err := loader.Save(t, out, opts); err != nil {
			return nil, fmt.Errorf("save: %w", err)
		}
		res.Files = append(res.Files, out)
	}
	if p.Report != "" {
		out := p.Resolve(p.Report)
		if err := utils.SafeWriteFile(out, []byte(res.markdown())); err != nil {
			return nil, fmt.Errorf("report: %w", err)
		}
		res.Files = append(res.Files, out)
	}
	charts, err := drawPlots(p, cfg, t)
	if err != nil {
		return nil, fmt.Errorf("plots: %w", err)
	}
	res.Files = append(res.Files, charts...)

	res.Duration = time.Since(res.StartedAt)
	slog.InfoContext(ctx, "run finished", "files", len(res.Files), "dropped", len(res.Dropped), "duration", res.Duration)
	return res, nil
}

func (r *RunResult) step(t *frame.Table, s Step, rule transform.DropRule) (*frame.Table, error) {
	switch s.Op {
	case OpLog:
		return transform.Log(t, s.Columns...)
	case OpBoxCox:
		out, err := transform.BoxCox(t, rule, s.Columns...)
		if err != nil {
			return nil, err
		}
		r.merge(out)
		return out.Table, nil
	case OpYeoJohnson:
		out, err := transform.YeoJohnson(t, s.Columns...)
		if err != nil {
			return nil, err
		}
		r.merge(out)
		return out.Table, nil
	case OpOutliers:
		return transform.RemoveOutliers(t, s.Columns...)
	case OpDummies:
		return transform.Dummies(t, t, transform.DummyOptions{Columns: s.Columns, Bare: s.Bare})
	case OpDrop:
		return transform.DropColumns(t, s.Columns...)
	}
	return nil, fmt.Errorf("unknown op %q", s.Op)
}

func (r *RunResult) merge(out *transform.Result) {
	for col, l := range out.Lambdas {
		r.Lambdas[col] = l
	}
	r.Dropped = append(r.Dropped, out.Dropped...)
}

func load(ctx context.Context, p *Plan, cfg *config.Global, creds *config.Credentials) (*frame.Table, error) {
	src := p.Source
	opts := loader.Options{
		IndexColumn: src.IndexColumn || cfg.IndexColumn,
		ParseDates:  p.ParseDates,
		Types:       p.kinds(),
		Sheet:       src.Sheet,
		MaxRows:     src.MaxRows,
	}
	delim := src.Delimiter
	if delim == "" {
		delim = cfg.Delimiter
	}
	if r := []rune(delim); len(r) == 1 {
		opts.Delimiter = r[0]
	}
	if !src.IsQuery() {
		return loader.LoadFile(p.Resolve(src.Path), opts)
	}

	q := loader.Query{
		Driver:  firstNonEmpty(src.Driver, cfg.Driver),
		DSN:     src.DSN,
		SSLMode: cfg.SSLMode,
		SQL:     src.Query,
		Options: opts,
	}
	if q.SQL == "" && cfg.Table != "" {
		q.SQL = "SELECT * FROM " + cfg.Table
	}
	switch {
	case creds != nil:
		q.Credentials = *creds
	case q.DSN == "":
		file := src.Credentials
		if file == "" {
			file = cfg.CredentialsFile
		}
		c, err := config.LoadCredentials(p.Resolve(file))
		if err != nil {
			return nil, err
		}
		q.Credentials = c
	}
	if cfg.QueryTimeoutSec > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(cfg.QueryTimeoutSec)*time.Second)
		defer cancel()
	}
	return loader.LoadQuery(ctx, q)
}

func drawPlots(p *Plan, cfg *config.Global, t *frame.Table) ([]string, error) {
	if len(p.Plots.Kinds) == 0 {
		return nil, nil
	}
	dir := firstNonEmpty(p.Plots.Dir, cfg.PlotsDir, "plots")
	pl := plot.New(p.Resolve(dir))
	if f := firstNonEmpty(p.Plots.Format, cfg.PlotFormat); f != "" {
		pl.Format = f
	}
	if cfg.PlotWidthIn > 0 && cfg.PlotHeightIn > 0 {
		pl.Width = vg.Length(cfg.PlotWidthIn) * vg.Inch
		pl.Height = vg.Length(cfg.PlotHeightIn) * vg.Inch
	}
	bins := p.Plots.Bins
	if bins <= 0 {
		bins = cfg.HistBins
	}

	var files []string
	add := func(paths ...string) { files = append(files, paths...) }
	for _, kind := range p.Plots.Kinds {
		switch kind {
		case PlotMissing:
			path, err := pl.Missing(t)
			if err != nil {
				return files, err
			}
			add(path)
		case PlotBox:
			path, err := pl.Box(t, p.Plots.Columns...)
			if err != nil {
				return files, err
			}
			add(path)
		case PlotScatter:
			paths, err := pl.Scatter(t, p.Plots.Columns...)
			if err != nil {
				return files, err
			}
			add(paths...)
		case PlotHistogram:
			paths, err := pl.Histogram(t, bins, p.Plots.Columns...)
			if err != nil {
				return files, err
			}
			add(paths...)
		case PlotBar, PlotPie:
			for _, col := range p.Plots.Categories {
				counts, err := profile.ValueCounts(t, col, 0)
				if err != nil {
					return files, err
				}
				labels, values := splitCounts(counts)
				var path string
				if kind == PlotBar {
					path, err = pl.Bar(col, labels, values)
				} else {
					path, err = pl.Pie(values, labels, col)
				}
				if err != nil {
					return files, err
				}
				add(path)
			}
		}
	}
	return files, nil
}

func splitCounts(counts []profile.CategoryCount) ([]string, []float64) {
	labels := make([]string, len(counts))
	values := make([]float64, len(counts))
	for i, c := range counts {
		labels[i] = c.Value
		values[i] = float64(c.Count)
	}
	return labels, values
}

func (r *RunResult) markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\nrun %s, %s\n\n", r.Plan, r.RunID, r.StartedAt.UTC().Format(time.RFC3339))
	b.WriteString("## Before\n\n")
	b.WriteString(r.Before.Markdown())
	b.WriteString("\n## After\n\n")
	b.WriteString(r.After.Markdown())
	if len(r.Lambdas) > 0 {
		b.WriteString("\n## Lambdas\n\n")
		names := make([]string, 0, len(r.Lambdas))
		for n := range r.Lambdas {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			fmt.Fprintf(&b, "- %s: %.4f\n", n, r.Lambdas[n])
		}
	}
	if len(r.Dropped) > 0 {
		fmt.Fprintf(&b, "\n## Dropped\n\n%s\n", strings.Join(r.Dropped, ", "))
	}
	return b.String()
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
