package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-site/internal/config"
	"github.com/jonathan/resume-site/internal/site"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Build the site and rebuild whenever data or the template changes",
	Long:  `Runs a build, then watches the data directory and the template and rebuilds after each burst of changes until interrupted.`,
	RunE:  runWatch,
}

var (
	watchDataDir   string
	watchOutDir    string
	watchTemplate  string
	watchBasePath  string
	watchUntrusted bool
	watchDebounce  time.Duration
)

func init() {
	addSiteFlags(watchCmd, &watchDataDir, &watchTemplate, &watchBasePath, &watchUntrusted)
	watchCmd.Flags().StringVarP(&watchOutDir, "out", "o", "", "Output directory for the site (default \".\")")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", site.DefaultDebounce, "Quiet period before a rebuild")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd, func(cfg *config.Config) {
		siteOverrides(cmd, watchDataDir, watchTemplate, watchBasePath, watchUntrusted)(cfg)
		if cmd.Flags().Changed("out") {
			cfg.OutDir = watchOutDir
		}
	})
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Watch rebuilds in place; database storage and PDF export stay with build.
	cfg.DatabaseURL = ""
	cfg.PDF = false
	opts, cleanup, err := builderOptions(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	_, _ = fmt.Fprintf(os.Stdout, "Watching %s and %s (Ctrl+C to stop)\n", cfg.DataDir, cfg.Template)
	err = site.NewBuilder(opts).Watch(ctx, site.WatchOptions{
		Debounce: watchDebounce,
		OnBuild: func(report *site.Report, err error) {
			if err != nil {
				logger.Error("build failed", zap.Error(err))
				return
			}
			logger.Info("build finished",
				zap.Int("built", len(report.Built)),
				zap.Int("failed", len(report.Failed)),
				zap.Duration("duration", report.Duration))
		},
	})
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("watch failed: %w", err)
	}
	return nil
}
