package cmd

import (
	"fmt"

	"github.com/KaramelBytes/loaneda/internal/plot"
	"github.com/KaramelBytes/loaneda/internal/profile"
	"github.com/spf13/cobra"
	"gonum.org/v1/plot/vg"
)

var (
	plotSrc      sourceFlags
	plotKinds    []string
	plotColumns  []string
	plotCategory string
	plotDir      string
	plotFormat   string
	plotBins     int
)

var plotCmd = &cobra.Command{
	Use:   "plot [file]",
	Short: "Render charts of a table to image files",
	Long: `Plot draws one or more chart kinds: missing, box, scatter, hist, bar, pie.
box, scatter and hist use --columns (default every numeric column); bar and
pie count the values of --category.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := settings()
		t, err := plotSrc.load(cmd.Context(), args)
		if err != nil {
			return err
		}
		dir := plotDir
		if dir == "" {
			dir = c.PlotsDir
		}
		p := plot.New(dir)
		if plotFormat != "" {
			p.Format = plotFormat
		} else if c.PlotFormat != "" {
			p.Format = c.PlotFormat
		}
		if c.PlotWidthIn > 0 && c.PlotHeightIn > 0 {
			p.Width = vg.Length(c.PlotWidthIn) * vg.Inch
			p.Height = vg.Length(c.PlotHeightIn) * vg.Inch
		}
		bins := plotBins
		if bins <= 0 {
			bins = c.HistBins
		}

		var files []string
		for _, kind := range plotKinds {
			var paths []string
			switch kind {
			case "missing":
				var path string
				path, err = p.Missing(t)
				paths = []string{path}
			case "box":
				var path string
				path, err = p.Box(t, plotColumns...)
				paths = []string{path}
			case "scatter":
				paths, err = p.Scatter(t, plotColumns...)
			case "hist":
				paths, err = p.Histogram(t, bins, plotColumns...)
			case "bar", "pie":
				if plotCategory == "" {
					return fmt.Errorf("%s needs --category", kind)
				}
				var counts []profile.CategoryCount
				if counts, err = profile.ValueCounts(t, plotCategory, 0); err != nil {
					return err
				}
				labels := make([]string, len(counts))
				values := make([]float64, len(counts))
				for i, cc := range counts {
					labels[i], values[i] = cc.Value, float64(cc.Count)
				}
				var path string
				if kind == "bar" {
					path, err = p.Bar(plotCategory, labels, values)
				} else {
					path, err = p.Pie(values, labels, plotCategory)
				}
				paths = []string{path}
			default:
				return fmt.Errorf("unknown --kind %q (use missing, box, scatter, hist, bar or pie)", kind)
			}
			if err != nil {
				return fmt.Errorf("%s: %w", kind, err)
			}
			files = append(files, paths...)
		}
		for _, f := range files {
			success(cmd.OutOrStdout(), "Wrote %s", f)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(plotCmd)
	plotSrc.bind(plotCmd)
	f := plotCmd.Flags()
	f.StringSliceVar(&plotKinds, "kind", []string{"missing"}, "chart kinds: missing, box, scatter, hist, bar, pie")
	f.StringSliceVar(&plotColumns, "columns", nil, "numeric columns to chart (default all)")
	f.StringVar(&plotCategory, "category", "", "column whose value counts feed bar and pie charts")
	f.StringVar(&plotDir, "dir", "", "output directory (default from config)")
	f.StringVar(&plotFormat, "format", "", "image format: png, jpg, tif or svg (default from config)")
	f.IntVar(&plotBins, "bins", 0, "histogram bins (default from config)")
}
