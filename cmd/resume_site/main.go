// Package main provides the entry point for the resume site generator.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-site/internal/config"
	"github.com/jonathan/resume-site/internal/observability"
)

var rootCmd = &cobra.Command{
	Use:   "resume_site",
	Short: "Static resume site generator",
	Long: `resume_site renders every resume variant listed in a data registry into a static HTML site,
with one page per slug@version, per-slug redirects to the newest version and a root redirect to the default.

Configuration can be loaded from a JSON or YAML file using --config. Command-line flags override config file values.`,
	SilenceUsage: true,
}

var (
	configPath string
	verbose    bool
	logLevel   string
	logFile    string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (.json, .yaml or .yml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print detailed information")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to this file instead of stderr")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the optional config file, applies the command's flag
// overrides and fills the remaining fields from config.Defaults. Commands
// that need the data directory call Validate on the result.
func loadConfig(cmd *cobra.Command, overrides func(*config.Config)) (config.Config, error) {
	var cfg config.Config
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return config.Config{}, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}

	flags := cmd.Flags()
	if flags.Changed("verbose") {
		cfg.Verbose = verbose
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("log-file") {
		cfg.LogFile = logFile
	}
	if overrides != nil {
		overrides(&cfg)
	}

	return cfg.MergeWithDefaults(config.Defaults()), nil
}

// newLogger builds the process logger from cfg. The caller must Sync it.
func newLogger(cfg config.Config) (*zap.Logger, error) {
	level := cfg.LogLevel
	if cfg.Verbose && level == config.DefaultLogLevel {
		level = "debug"
	}
	logger, err := observability.NewLogger(level, cfg.LogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}
