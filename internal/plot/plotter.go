// Package plot renders charts of table columns to image files with gonum/plot.
package plot

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"

	gplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	_ "gonum.org/v1/plot/vg/vgimg"
	_ "gonum.org/v1/plot/vg/vgsvg"

	"github.com/KaramelBytes/loaneda/internal/frame"
	"github.com/KaramelBytes/loaneda/internal/profile"
	"github.com/KaramelBytes/loaneda/internal/utils"
)

// ErrNoData is returned when a chart has nothing to draw.
var ErrNoData = errors.New("no data to plot")

// Plotter writes one image file per chart into Dir.
type Plotter struct {
	Dir string
	// Format is the file extension: png, jpg, tif or svg.
	Format string
	Width  vg.Length
	Height vg.Length
}

// New returns a Plotter writing PNG files of 8x5 inches into dir.
func New(dir string) *Plotter {
	return &Plotter{Dir: dir, Format: "png", Width: 8 * vg.Inch, Height: 5 * vg.Inch}
}

var unsafeChars = regexp.MustCompile(`[^a-z0-9]+`)

func (p *Plotter) path(name string) string {
	base := strings.Trim(unsafeChars.ReplaceAllString(strings.ToLower(name), "_"), "_")
	if base == "" {
		base = "chart"
	}
	format := strings.TrimPrefix(strings.ToLower(p.Format), ".")
	if format == "" {
		format = "png"
	}
	return filepath.Join(p.Dir, base+"."+format)
}

func (p *Plotter) save(pl *gplot.Plot, name string) (string, error) {
	if err := utils.EnsureDir(p.Dir); err != nil {
		return "", fmt.Errorf("create plot dir: %w", err)
	}
	out := p.path(name)
	if err := pl.Save(p.Width, p.Height, out); err != nil {
		return "", fmt.Errorf("save %s: %w", out, err)
	}
	slog.Debug("chart written", "path", out)
	return out, nil
}

// Bar draws one bar per label.
func (p *Plotter) Bar(name string, labels []string, values []float64) (string, error) {
	if len(values) == 0 {
		return "", ErrNoData
	}
	if len(labels) != len(values) {
		return "", fmt.Errorf("bar %q: %w: %d labels, %d values", name, frame.ErrLengthMismatch, len(labels), len(values))
	}
	pl := gplot.New()
	pl.Title.Text = name
	bars, err := plotter.NewBarChart(plotter.Values(values), vg.Points(20))
	if err != nil {
		return "", fmt.Errorf("bar %q: %w", name, err)
	}
	bars.Color = plotutil.Color(0)
	bars.LineStyle.Width = vg.Length(0)
	pl.Add(bars)
	pl.NominalX(labels...)
	return p.save(pl, name)
}

// Box draws side-by-side box plots of the named numeric columns, or of every
// numeric column when none are named, on one chart.
func (p *Plotter) Box(t *frame.Table, columns ...string) (string, error) {
	cols, err := numericColumns(t, columns)
	if err != nil {
		return "", err
	}
	pl := gplot.New()
	pl.Title.Text = "Box plot"
	var names []string
	for _, c := range cols {
		vals := c.Valid()
		if len(vals) == 0 {
			continue
		}
		box, err := plotter.NewBoxPlot(vg.Points(20), float64(len(names)), plotter.Values(vals))
		if err != nil {
			return "", fmt.Errorf("box %q: %w", c.Name(), err)
		}
		box.FillColor = plotutil.Color(len(names))
		pl.Add(box)
		names = append(names, c.Name())
	}
	if len(names) == 0 {
		return "", ErrNoData
	}
	pl.NominalX(names...)
	name := "box"
	if len(columns) > 0 {
		name = "box_" + strings.Join(columns, "_")
	}
	return p.save(pl, name)
}

// Scatter draws each value against its row position, one file per column.
func (p *Plotter) Scatter(t *frame.Table, columns ...string) ([]string, error) {
	cols, err := numericColumns(t, columns)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, c := range cols {
		pts := make(plotter.XYs, 0, c.Len())
		for i := 0; i < c.Len(); i++ {
			if c.IsNull(i) {
				continue
			}
			pts = append(pts, plotter.XY{X: float64(i), Y: c.Float(i)})
		}
		if len(pts) == 0 {
			continue
		}
		pl := gplot.New()
		pl.Title.Text = c.Name()
		pl.X.Label.Text = "row"
		pl.Y.Label.Text = c.Name()
		s, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, fmt.Errorf("scatter %q: %w", c.Name(), err)
		}
		s.Color = color.NRGBA{R: 31, G: 119, B: 180, A: 26}
		pl.Add(s)
		path, err := p.save(pl, "scatter_"+c.Name())
		if err != nil {
			return nil, err
		}
		out = append(out, path)
	}
	if len(out) == 0 {
		return nil, ErrNoData
	}
	return out, nil
}

// Histogram draws the distribution of each numeric column with the given
// number of bins, one file per column.
func (p *Plotter) Histogram(t *frame.Table, bins int, columns ...string) ([]string, error) {
	if bins <= 0 {
		bins = 30
	}
	cols, err := numericColumns(t, columns)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, c := range cols {
		vals := c.Valid()
		if len(vals) == 0 {
			continue
		}
		pl := gplot.New()
		pl.Title.Text = c.Name()
		pl.Y.Label.Text = "count"
		h, err := plotter.NewHist(plotter.Values(vals), bins)
		if err != nil {
			return nil, fmt.Errorf("histogram %q: %w", c.Name(), err)
		}
		h.FillColor = plotutil.Color(2)
		pl.Add(h)
		path, err := p.save(pl, "hist_"+c.Name())
		if err != nil {
			return nil, err
		}
		out = append(out, path)
	}
	if len(out) == 0 {
		return nil, ErrNoData
	}
	return out, nil
}

// Missing draws the number of missing cells per column.
func (p *Plotter) Missing(t *frame.Table) (string, error) {
	stats := profile.MissingAll(t)
	labels := make([]string, len(stats))
	values := make([]float64, len(stats))
	for i, s := range stats {
		labels[i] = s.Column
		values[i] = float64(s.Count)
	}
	return p.Bar("Missing values", labels, values)
}

func numericColumns(t *frame.Table, names []string) ([]*frame.Column, error) {
	if len(names) == 0 {
		names = t.NumericNames()
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
