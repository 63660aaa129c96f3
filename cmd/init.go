package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/loaneda/internal/pipeline"
	"github.com/KaramelBytes/loaneda/internal/utils"
	"github.com/spf13/cobra"
)

var (
	initDir   string
	initForce bool
)

var initCmd = &cobra.Command{
	Use:   "init [name]",
	Short: "Write a starter loaneda.yaml plan",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := initDir
		if dir == "" {
			wd, err := os.Getwd()
			if err != nil {
				return err
			}
			dir = wd
		}
		name := filepath.Base(dir)
		if len(args) > 0 {
			name = args[0]
		}
		path := filepath.Join(dir, utils.PlanFileName)
		// Refuse to overwrite an existing plan.
		if _, err := os.Stat(path); err == nil && !initForce {
			return fmt.Errorf("plan already exists at %s (use --force to overwrite)", path)
		} else if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("stat plan: %w", err)
		}
		p := pipeline.NewPlan(name, path)
		if c := settings(); c.BoxCoxRule != "" {
			p.BoxCoxRule = c.BoxCoxRule
		}
		if err := p.Save(); err != nil {
			return err
		}
		success(cmd.OutOrStdout(), "Plan initialized: %s", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVarP(&initDir, "dir", "d", "", "directory for the plan (default working directory)")
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite an existing plan")
}
