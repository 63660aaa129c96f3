package cmd

import (
	"fmt"
	"os"

	cfgpkg "github.com/KaramelBytes/loaneda/internal/config"
	"github.com/KaramelBytes/loaneda/internal/logging"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile   string
	debug     bool
	logFormat string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "loaneda",
	Short: "loaneda: exploratory analysis for loan payment tables",
	Long: `loaneda loads a loan payments table from a database or a CSV/XLSX file,
profiles it, corrects skew (log, Box-Cox, Yeo-Johnson), removes outliers and
renders charts. Steps can be run one at a time or from a loaneda.yaml plan.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errStyle.Render("✗ Error:"), err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.loaneda/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text | json (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: allow running commands that don't need config
		fmt.Fprintln(os.Stderr, warnStyle.Render("⚠ Warning:"), "failed to load config:", err)
		c = &cfgpkg.Global{}
	}
	cfg = c

	level, format := cfg.LogLevel, cfg.LogFormat
	if debug {
		level = "debug"
	}
	if logFormat != "" {
		format = logFormat
	}
	logging.Setup(logging.Options{Level: level, Format: format, Output: os.Stderr})
}

// settings returns the loaded configuration, loading it when a command runs
// outside Execute (tests call rootCmd.Execute directly).
func settings() *cfgpkg.Global {
	if cfg == nil {
		loadConfig()
	}
	return cfg
}
