package cmd

import (
	"fmt"

	"github.com/KaramelBytes/loaneda/internal/profile"
	"github.com/spf13/cobra"
)

var (
	loadSrc    sourceFlags
	loadOutput string
)

var loadCmd = &cobra.Command{
	Use:   "load [file]",
	Short: "Load a table from a file or the database and optionally save it",
	Long: `Load reads a CSV/TSV/XLSX file, or runs a query against the configured
database when no file is given, prints its schema and can save a local copy.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := loadSrc.load(cmd.Context(), args)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		rows, cols := profile.Shape(t)
		heading(w, fmt.Sprintf("%d rows x %d columns", rows, cols))
		for _, ci := range profile.Info(t) {
			fmt.Fprintf(w, "- %s: %s %s\n", ci.Name, ci.Kind, mutedStyle.Render(fmt.Sprintf("(%d non-null)", ci.NonNull)))
		}
		return saveTable(cmd, t, loadOutput)
	},
}

func init() {
	rootCmd.AddCommand(loadCmd)
	loadSrc.bind(loadCmd)
	loadCmd.Flags().StringVarP(&loadOutput, "output", "o", "", "save the table to this path (.csv, .tsv or .xlsx)")
}
