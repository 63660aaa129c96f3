package cmd

import (
	"fmt"

	"github.com/KaramelBytes/loaneda/internal/frame"
	"github.com/spf13/cobra"
)

var (
	coeSrc      sourceFlags
	coeSet      []string
	coeDatetime []string
	coeOutput   string
)

var coerceCmd = &cobra.Command{
	Use:   "coerce [file]",
	Short: "Change column kinds and parse date columns",
	Long: `Coerce rewrites the kind of the named columns. --set takes col=kind
(int, float, text, category; pandas spellings such as int64 or object work
too). --datetime takes col or col=layout, where layout is a Go time layout;
without a layout each value may use any supported date format.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(coeSet) == 0 && len(coeDatetime) == 0 {
			return fmt.Errorf("nothing to do: pass --set or --datetime")
		}
		t, err := coeSrc.load(cmd.Context(), args)
		if err != nil {
			return err
		}
		for _, pair := range coeSet {
			col, name, err := splitPair(pair)
			if err != nil {
				return err
			}
			kind, err := frame.ParseKind(name)
			if err != nil {
				return fmt.Errorf("--set %s: %w", pair, err)
			}
			if t, err = frame.SetType(t, col, kind); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "%s -> %s", col, kind)
		}
		for _, spec := range coeDatetime {
			col, layout := spec, frame.PatternMixed
			if c, l, err := splitPair(spec); err == nil && l != "" {
				col, layout = c, l
			}
			if t, err = frame.SetDatetime(t, col, layout); err != nil {
				return err
			}
			success(cmd.OutOrStdout(), "%s -> %s", col, frame.Time)
		}
		if coeOutput == "" {
			warn(cmd.OutOrStdout(), "no --output given; result not saved")
			return nil
		}
		return saveTable(cmd, t, coeOutput)
	},
}

func init() {
	rootCmd.AddCommand(coerceCmd)
	coeSrc.bind(coerceCmd)
	coerceCmd.Flags().StringSliceVar(&coeSet, "set", nil, "col=kind to convert (repeatable)")
	coerceCmd.Flags().StringArrayVar(&coeDatetime, "datetime", nil, "col or col=layout to parse as datetime (repeatable)")
	coerceCmd.Flags().StringVarP(&coeOutput, "output", "o", "", "save the converted table to this path")
}
