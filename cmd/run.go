package cmd

import (
	"fmt"
	"sort"
	"time"

	"github.com/KaramelBytes/loaneda/internal/pipeline"
	"github.com/KaramelBytes/loaneda/internal/utils"
	"github.com/spf13/cobra"
)

var runJSON bool

// runSummary is the --json form of a run.
type runSummary struct {
	RunID      string             `json:"run_id"`
	Plan       string             `json:"plan"`
	RowsBefore int                `json:"rows_before"`
	RowsAfter  int                `json:"rows_after"`
	Dropped    []string           `json:"dropped"`
	Lambdas    map[string]float64 `json:"lambdas"`
	Files      []string           `json:"files"`
	DurationMs int64              `json:"duration_ms"`
}

var runCmd = &cobra.Command{
	Use:   "run [plan]",
	Short: "Run a loaneda.yaml plan end to end",
	Long: `Run loads the plan (a file, or loaneda.yaml found in the given directory
or its parents; default the working directory), then loads the table,
profiles it, applies the steps, profiles the result and writes the outputs.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		start := ""
		if len(args) > 0 {
			start = args[0]
		}
		p, err := pipeline.LoadPlan(start)
		if err != nil {
			return err
		}
		res, err := pipeline.Run(cmd.Context(), p, pipeline.Env{Config: settings()})
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if runJSON {
			b, err := utils.PrettyJSON(runSummary{
				RunID:      res.RunID,
				Plan:       res.Plan,
				RowsBefore: res.Before.Rows,
				RowsAfter:  res.After.Rows,
				Dropped:    res.Dropped,
				Lambdas:    res.Lambdas,
				Files:      res.Files,
				DurationMs: res.Duration.Milliseconds(),
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(w, string(b))
			return nil
		}
		heading(w, fmt.Sprintf("%s (run %s)", res.Plan, res.RunID))
		fmt.Fprintf(w, "rows: %d -> %d\n", res.Before.Rows, res.After.Rows)
		fmt.Fprintf(w, "columns: %d -> %d\n", len(res.Before.Cols), len(res.After.Cols))
		for _, col := range res.Dropped {
			warn(w, "dropped %s", col)
		}
		names := make([]string, 0, len(res.Lambdas))
		for n := range res.Lambdas {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			fmt.Fprintf(w, "lambda %s: %.4f\n", n, res.Lambdas[n])
		}
		for _, f := range res.Files {
			success(w, "Wrote %s", f)
		}
		fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("finished in %s", res.Duration.Round(time.Millisecond))))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&runJSON, "json", false, "print the run summary as JSON")
}
