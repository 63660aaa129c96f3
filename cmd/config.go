package cmd

import (
	"fmt"
	"strconv"

	cfgpkg "github.com/KaramelBytes/loaneda/internal/config"
	"github.com/KaramelBytes/loaneda/internal/transform"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set loaneda configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := settings()
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "driver: %s\n", c.Driver)
		fmt.Fprintf(w, "credentials_file: %s\n", c.CredentialsFile)
		if creds, err := cfgpkg.LoadCredentials(c.CredentialsFile); err == nil {
			fmt.Fprintf(w, "  user: %s\n", creds.User)
			fmt.Fprintf(w, "  password: %s\n", mask(creds.Password))
			fmt.Fprintf(w, "  host: %s:%d\n", creds.Host, creds.Port)
			fmt.Fprintf(w, "  database: %s\n", creds.Database)
		}
		fmt.Fprintf(w, "table: %s\n", c.Table)
		fmt.Fprintf(w, "ssl_mode: %s\n", c.SSLMode)
		fmt.Fprintf(w, "query_timeout_sec: %d\n", c.QueryTimeoutSec)
		fmt.Fprintf(w, "delimiter: %q\n", c.Delimiter)
		fmt.Fprintf(w, "index_column: %t\n", c.IndexColumn)
		fmt.Fprintf(w, "boxcox_rule: %s\n", c.BoxCoxRule)
		fmt.Fprintf(w, "plots_dir: %s\n", c.PlotsDir)
		fmt.Fprintf(w, "plot_format: %s\n", c.PlotFormat)
		fmt.Fprintf(w, "plot_size_in: %.1fx%.1f\n", c.PlotWidthIn, c.PlotHeightIn)
		fmt.Fprintf(w, "hist_bins: %d\n", c.HistBins)
		fmt.Fprintf(w, "log_level: %s\n", c.LogLevel)
		fmt.Fprintf(w, "log_format: %s\n", c.LogFormat)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c := settings()
		switch key {
		case "driver":
			switch val {
			case "postgres", "postgresql":
				c.Driver = "postgres"
			case "sqlite", "sqlite3":
				c.Driver = "sqlite"
			default:
				return fmt.Errorf("invalid driver: %s (use postgres or sqlite)", val)
			}
		case "credentials_file":
			c.CredentialsFile = val
		case "table":
			c.Table = val
		case "ssl_mode":
			c.SSLMode = val
		case "query_timeout_sec":
			i, err := strconv.Atoi(val)
			if err != nil || i < 0 {
				return fmt.Errorf("invalid int for query_timeout_sec: %v", val)
			}
			c.QueryTimeoutSec = i
		case "delimiter":
			if _, err := parseDelimiter(val); err != nil {
				return err
			}
			c.Delimiter = val
		case "index_column":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid bool for index_column: %w", err)
			}
			c.IndexColumn = b
		case "boxcox_rule":
			rule, err := transform.ParseDropRule(val)
			if err != nil {
				return err
			}
			c.BoxCoxRule = rule.String()
		case "plots_dir":
			c.PlotsDir = val
		case "plot_format":
			switch val {
			case "png", "jpg", "jpeg", "tif", "tiff", "svg":
				c.PlotFormat = val
			default:
				return fmt.Errorf("invalid plot_format: %s", val)
			}
		case "plot_width_in", "plot_height_in":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil || f <= 0 {
				return fmt.Errorf("invalid size for %s: %v", key, val)
			}
			if key == "plot_width_in" {
				c.PlotWidthIn = f
			} else {
				c.PlotHeightIn = f
			}
		case "hist_bins":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid int for hist_bins: %v", val)
			}
			c.HistBins = i
		case "log_level":
			c.LogLevel = val
		case "log_format":
			if val != "text" && val != "json" {
				return fmt.Errorf("invalid log_format: %s (use text or json)", val)
			}
			c.LogFormat = val
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		success(cmd.OutOrStdout(), "Saved %s", key)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 6 {
		return "******"
	}
	return s[:3] + "****" + s[len(s)-3:]
}
