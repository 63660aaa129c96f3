package plot

import (
	"fmt"
	"image/color"
	"math"

	gplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// pieChart draws filled wedges proportional to its values, starting at
// twelve o'clock and going clockwise.
type pieChart struct {
	values []float64
	colors []color.Color
}

func (pc pieChart) Plot(c draw.Canvas, _ *gplot.Plot) {
	var total float64
	for _, v := range pc.values {
		total += v
	}
	cx := (c.Min.X + c.Max.X) / 2
	cy := (c.Min.Y + c.Max.Y) / 2
	r := vg.Length(math.Min(float64(c.Max.X-c.Min.X), float64(c.Max.Y-c.Min.Y))) * 0.45
	center := vg.Point{X: cx, Y: cy}

	start := math.Pi / 2
	for i, v := range pc.values {
		if v == 0 {
			continue
		}
		sweep := -2 * math.Pi * v / total
		var path vg.Path
		path.Move(center)
		path.Line(vg.Point{X: cx + r*vg.Length(math.Cos(start)), Y: cy + r*vg.Length(math.Sin(start))})
		path.Arc(center, r, start, sweep)
		path.Close()
		c.SetColor(pc.colors[i])
		c.Fill(path)
		start += sweep
	}
}

// swatch is a legend entry filled with one color.
type swatch struct{ color color.Color }

func (s swatch) Thumbnail(c *draw.Canvas) {
	pts := []vg.Point{
		{X: c.Min.X, Y: c.Min.Y},
		{X: c.Min.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Min.Y},
	}
	c.FillPolygon(s.color, pts)
}

// Pie draws a pie chart with one wedge per value. The legend shows each
// label with its share of the total.
func (p *Plotter) Pie(values []float64, labels []string, title string) (string, error) {
	if len(values) == 0 {
		return "", ErrNoData
	}
	if len(labels) != len(values) {
		return "", fmt.Errorf("pie %q: %d labels for %d values", title, len(labels), len(values))
	}
	var total float64
	for i, v := range values {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return "", fmt.Errorf("pie %q: invalid value %v for %q", title, v, labels[i])
		}
		total += v
	}
	if total == 0 {
		return "", ErrNoData
	}

	pl := gplot.New()
	pl.Title.Text = title
	pl.HideAxes()
	pc := pieChart{values: values, colors: make([]color.Color, len(values))}
	for i := range values {
		pc.colors[i] = plotutil.Color(i)
		pl.Legend.Add(fmt.Sprintf("%s (%.1f%%)", labels[i], values[i]/total*100), swatch{color: pc.colors[i]})
	}
	pl.Legend.Top = true
	pl.Add(pc)
	return p.save(pl, "pie_"+title)
}
