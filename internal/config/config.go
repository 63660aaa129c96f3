package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Database source
	Driver          string `mapstructure:"driver" yaml:"driver"`
	CredentialsFile string `mapstructure:"credentials_file" yaml:"credentials_file"`
	Table           string `mapstructure:"table" yaml:"table"`
	SSLMode         string `mapstructure:"ssl_mode" yaml:"ssl_mode"`
	QueryTimeoutSec int    `mapstructure:"query_timeout_sec" yaml:"query_timeout_sec"`

	// File handling
	Delimiter   string `mapstructure:"delimiter" yaml:"delimiter"`
	IndexColumn bool   `mapstructure:"index_column" yaml:"index_column"`

	// Transform defaults
	BoxCoxRule string `mapstructure:"boxcox_rule" yaml:"boxcox_rule"`

	// Plot output
	PlotsDir     string  `mapstructure:"plots_dir" yaml:"plots_dir"`
	PlotFormat   string  `mapstructure:"plot_format" yaml:"plot_format"`
	PlotWidthIn  float64 `mapstructure:"plot_width_in" yaml:"plot_width_in"`
	PlotHeightIn float64 `mapstructure:"plot_height_in" yaml:"plot_height_in"`
	HistBins     int     `mapstructure:"hist_bins" yaml:"hist_bins"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.loaneda/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".loaneda")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("LOANEDA")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("driver", "postgres")
	v.SetDefault("credentials_file", "credentials.yaml")
	v.SetDefault("table", "loan_payments")
	v.SetDefault("ssl_mode", "require")
	v.SetDefault("query_timeout_sec", 120)
	v.SetDefault("delimiter", ",")
	v.SetDefault("index_column", false)
	v.SetDefault("boxcox_rule", "nonpositive")
	v.SetDefault("plots_dir", "plots")
	v.SetDefault("plot_format", "png")
	v.SetDefault("plot_width_in", 8.0)
	v.SetDefault("plot_height_in", 5.0)
	v.SetDefault("hist_bins", 30)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	// Config file
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		dir := filepath.Join(home, ".loaneda")
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// optional read
	_ = v.ReadInConfig()

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}
