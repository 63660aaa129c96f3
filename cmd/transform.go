package cmd

import (
	"fmt"
	"sort"

	"github.com/KaramelBytes/loaneda/internal/frame"
	"github.com/KaramelBytes/loaneda/internal/pipeline"
	"github.com/KaramelBytes/loaneda/internal/transform"
	"github.com/spf13/cobra"
)

var (
	trSrc     sourceFlags
	trOps     []string
	trColumns []string
	trRule    string
	trFill    []string
	trDrop    []string
	trBare    bool
	trOutput  string
)

var transformCmd = &cobra.Command{
	Use:   "transform [file]",
	Short: "Drop, fill, skew-correct, de-outlier or one-hot encode a table",
	Long: `Transform applies --drop and --fill first, then each --op in the order
given: log, boxcox, yeojohnson, outliers, dummies. --columns limits every op
to those columns; by default ops use every numeric (or, for dummies, every
text) column.

Outlier removal is sequential: each column's IQR fence is computed on the
rows that survived the previous columns, so column order changes the result.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rule := trRule
		if rule == "" {
			rule = settings().BoxCoxRule
		}
		dropRule, err := transform.ParseDropRule(rule)
		if err != nil {
			return err
		}
		t, err := trSrc.load(cmd.Context(), args)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if len(trDrop) > 0 {
			if t, err = transform.DropColumns(t, trDrop...); err != nil {
				return err
			}
		}
		if len(trFill) > 0 {
			values, err := fillValues(t, trFill)
			if err != nil {
				return err
			}
			if t, err = transform.FillNull(t, values); err != nil {
				return err
			}
		}
		for _, op := range trOps {
			before := t.NumRows()
			switch op {
			case pipeline.OpLog:
				t, err = transform.Log(t, trColumns...)
			case pipeline.OpBoxCox, pipeline.OpYeoJohnson:
				var res *transform.Result
				if op == pipeline.OpBoxCox {
					res, err = transform.BoxCox(t, dropRule, trColumns...)
				} else {
					res, err = transform.YeoJohnson(t, trColumns...)
				}
				if err != nil {
					return err
				}
				t = res.Table
				printLambdas(cmd, op, res)
			case pipeline.OpOutliers:
				t, err = transform.RemoveOutliers(t, trColumns...)
				if err == nil {
					success(w, "outliers: %d -> %d rows", before, t.NumRows())
				}
			case pipeline.OpDummies:
				t, err = transform.Dummies(t, t, transform.DummyOptions{Columns: trColumns, Bare: trBare})
			default:
				return fmt.Errorf("unknown --op %q", op)
			}
			if err != nil {
				return fmt.Errorf("%s: %w", op, err)
			}
		}
		if trOutput == "" {
			warn(w, "no --output given; result not saved")
			return nil
		}
		return saveTable(cmd, t, trOutput)
	},
}

func printLambdas(cmd *cobra.Command, op string, res *transform.Result) {
	w := cmd.OutOrStdout()
	for _, col := range res.Dropped {
		warn(w, "%s: dropped %s", op, col)
	}
	names := make([]string, 0, len(res.Lambdas))
	for n := range res.Lambdas {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		success(w, "%s: %s lambda=%s", op, n, frame.FormatFloat(res.Lambdas[n]))
	}
}

func init() {
	rootCmd.AddCommand(transformCmd)
	trSrc.bind(transformCmd)
	f := transformCmd.Flags()
	f.StringSliceVar(&trOps, "op", nil, "operations in order: log, boxcox, yeojohnson, outliers, dummies")
	f.StringSliceVar(&trColumns, "columns", nil, "columns the ops apply to (default all eligible)")
	f.StringVar(&trRule, "rule", "", "Box-Cox column drop rule: nonpositive | multiple-of-ten (default from config)")
	f.StringSliceVar(&trFill, "fill", nil, "col=value to fill missing cells with (repeatable)")
	f.StringSliceVar(&trDrop, "drop", nil, "columns to remove before transforming")
	f.BoolVar(&trBare, "bare", false, "dummies: name indicator columns by category only")
	f.StringVarP(&trOutput, "output", "o", "", "save the transformed table to this path")
}
