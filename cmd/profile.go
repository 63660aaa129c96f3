package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/KaramelBytes/loaneda/internal/frame"
	"github.com/KaramelBytes/loaneda/internal/profile"
	"github.com/spf13/cobra"
)

var (
	profSrc        sourceFlags
	profOutput     string
	profSampleRows int
	profCorr       bool
	profSections   []string
	profUnique     []string
)

var profileCmd = &cobra.Command{
	Use:   "profile [file]",
	Short: "Summarize a table: schema, missing values, skew and statistics",
	Long: `Profile prints a markdown report of the table. Use --section to print
only some of: shape, info, missing, skew, describe, corr.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := profSrc.load(cmd.Context(), args)
		if err != nil {
			return err
		}
		var b strings.Builder
		if len(profSections) == 0 && len(profUnique) == 0 {
			opt := profile.DefaultOptions()
			if profSampleRows > 0 {
				opt.SampleRows = profSampleRows
			}
			opt.Correlations = profCorr
			name := "query"
			if len(args) > 0 {
				name = args[0]
			}
			b.WriteString(profile.Analyze(name, t, opt).Markdown())
		}
		for _, s := range profSections {
			if err := writeSection(&b, t, s); err != nil {
				return err
			}
		}
		for _, col := range profUnique {
			vals, err := profile.Unique(t, col)
			if err != nil {
				return err
			}
			fmt.Fprintf(&b, "[UNIQUE %s]\n", col)
			for _, v := range vals {
				if v == nil {
					b.WriteString("- <missing>\n")
					continue
				}
				fmt.Fprintf(&b, "- %v\n", v)
			}
		}

		if profOutput != "" {
			if err := os.WriteFile(profOutput, []byte(b.String()), 0o644); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			success(cmd.OutOrStdout(), "Wrote profile to %s", profOutput)
			return nil
		}
		fmt.Fprint(cmd.OutOrStdout(), b.String())
		return nil
	},
}

func writeSection(w io.Writer, t *frame.Table, section string) error {
	switch strings.ToLower(section) {
	case "shape":
		rows, cols := profile.Shape(t)
		fmt.Fprintf(w, "[SHAPE]\n%d rows x %d columns\n", rows, cols)
	case "info":
		fmt.Fprintln(w, "[INFO]")
		for _, ci := range profile.Info(t) {
			fmt.Fprintf(w, "- %s: %s (%d non-null)\n", ci.Name, ci.Kind, ci.NonNull)
		}
	case "missing":
		fmt.Fprintln(w, "[MISSING]")
		for _, m := range profile.MissingAll(t) {
			fmt.Fprintf(w, "- %s: %d (%.2f%%)\n", m.Column, m.Count, m.Percent)
		}
	case "skew":
		fmt.Fprintln(w, "[SKEW]")
		skew := profile.Skew(t)
		for _, name := range t.NumericNames() {
			fmt.Fprintf(w, "- %s: %s\n", name, frame.FormatFloat(skew[name]))
		}
	case "describe":
		fmt.Fprintln(w, "[DESCRIBE]")
		fmt.Fprintln(w, "| column | count | mean | std | min | 25% | 50% | 75% | max |")
		fmt.Fprintln(w, "|---|---|---|---|---|---|---|---|---|")
		for _, d := range profile.Describe(t) {
			fmt.Fprintf(w, "| %s | %d | %.4g | %.4g | %.4g | %.4g | %.4g | %.4g | %.4g |\n",
				d.Column, d.Count, d.Mean, d.Std, d.Min, d.Q1, d.Median, d.Q3, d.Max)
		}
	case "corr":
		fmt.Fprintln(w, "[CORRELATION]")
		m := profile.Correlation(t)
		pairs := m.TopPairs(0)
		sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].A < pairs[j].A })
		for _, p := range pairs {
			fmt.Fprintf(w, "- %s ~ %s: r=%.3f\n", p.A, p.B, p.R)
		}
	default:
		return fmt.Errorf("unknown --section %q (use shape, info, missing, skew, describe or corr)", section)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profSrc.bind(profileCmd)
	profileCmd.Flags().StringVarP(&profOutput, "output", "o", "", "write the profile to this path instead of stdout")
	profileCmd.Flags().IntVar(&profSampleRows, "sample-rows", 5, "number of sample rows in the report")
	profileCmd.Flags().BoolVar(&profCorr, "correlations", true, "include top correlation pairs in the report")
	profileCmd.Flags().StringSliceVar(&profSections, "section", nil, "print only these sections: shape, info, missing, skew, describe, corr")
	profileCmd.Flags().StringSliceVar(&profUnique, "unique", nil, "list the distinct values of these columns")
}
