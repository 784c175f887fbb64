package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/resume-site/internal/config"
	"github.com/jonathan/resume-site/internal/db"
	"github.com/jonathan/resume-site/internal/export"
	"github.com/jonathan/resume-site/internal/observability"
	"github.com/jonathan/resume-site/internal/site"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Render every registered variant into the static site",
	Long: `Reads <data>/index.json, renders each variant's document from <data>/resumes with the template
and writes resume/<slug>/v<version>/index.html under --out, plus per-slug and root redirects.

A variant that fails is reported and the others are still built. The command exits non-zero if any failed.
With --db-url (or DATABASE_URL) every page is also stored in PostgreSQL under a build ID.`,
	RunE: runBuild,
}

var (
	buildDataDir     string
	buildOutDir      string
	buildTemplate    string
	buildBasePath    string
	buildConcurrency int
	buildUntrusted   bool
	buildPDF         bool
	buildDatabaseURL string
)

func init() {
	addSiteFlags(buildCmd, &buildDataDir, &buildTemplate, &buildBasePath, &buildUntrusted)
	buildCmd.Flags().StringVarP(&buildOutDir, "out", "o", "", "Output directory for the site (default \".\")")
	buildCmd.Flags().IntVar(&buildConcurrency, "concurrency", 0, "Variants rendered in parallel (default: number of CPUs)")
	buildCmd.Flags().BoolVar(&buildPDF, "pdf", false, "Also print each variant to index.pdf (requires Chrome)")
	buildCmd.Flags().StringVar(&buildDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(buildCmd)
}

// addSiteFlags registers the flags shared by build, watch and serve
func addSiteFlags(cmd *cobra.Command, dataDir, template, basePath *string, untrusted *bool) {
	cmd.Flags().StringVarP(dataDir, "data", "d", "", "Data directory holding index.json and resumes/ (default \"data\")")
	cmd.Flags().StringVarP(template, "template", "t", "", "Path to HTML template (default \"templates/resume.html\")")
	cmd.Flags().StringVar(basePath, "base", "", "Base path prefixed to site links (optional, defaults to RESUME_SITE_BASE env var)")
	cmd.Flags().BoolVar(untrusted, "untrusted", false, "Strip markup from every document string before rendering")
}

func siteOverrides(cmd *cobra.Command, dataDir, template, basePath string, untrusted bool) func(*config.Config) {
	return func(cfg *config.Config) {
		if cmd.Flags().Changed("data") {
			cfg.DataDir = dataDir
		}
		if cmd.Flags().Changed("template") {
			cfg.Template = template
		}
		if cmd.Flags().Changed("base") {
			cfg.BasePath = basePath
		}
		if cmd.Flags().Changed("untrusted") {
			cfg.UntrustedData = untrusted
		}
		if cfg.BasePath == "" {
			cfg.BasePath = os.Getenv("RESUME_SITE_BASE")
		}
	}
}

func runBuild(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd, func(cfg *config.Config) {
		siteOverrides(cmd, buildDataDir, buildTemplate, buildBasePath, buildUntrusted)(cfg)
		if cmd.Flags().Changed("out") {
			cfg.OutDir = buildOutDir
		}
		if cmd.Flags().Changed("concurrency") {
			cfg.Concurrency = buildConcurrency
		}
		if cmd.Flags().Changed("pdf") {
			cfg.PDF = buildPDF
		}
		if cmd.Flags().Changed("db-url") {
			cfg.DatabaseURL = buildDatabaseURL
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

	opts, cleanup, err := builderOptions(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	report, err := site.NewBuilder(opts).Build(ctx)
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	if cfg.Verbose {
		observability.NewPrinter(os.Stdout).PrintBuildReport(report)
	} else {
		_, _ = fmt.Fprintf(os.Stdout, "Built %d variant(s) into %s (build %s)\n", len(report.Built), cfg.OutDir, report.BuildID)
		for _, f := range report.Failed {
			_, _ = fmt.Fprintf(os.Stdout, "  failed %s: %s\n", f.Variant, f.Message)
		}
	}

	if !report.OK() {
		return fmt.Errorf("%d of %d variant(s) failed", len(report.Failed), len(report.Built)+len(report.Failed))
	}
	return nil
}

// builderOptions turns cfg into site.Options, connecting to the database and
// starting the PDF exporter when configured. cleanup releases both.
func builderOptions(ctx context.Context, cfg config.Config, logger *zap.Logger) (site.Options, func(), error) {
	opts := site.Options{
		DataDir:      cfg.DataDir,
		OutDir:       cfg.OutDir,
		TemplatePath: cfg.Template,
		BasePath:     cfg.BasePath,
		Concurrency:  cfg.Concurrency,
		Untrusted:    cfg.UntrustedData,
		Logger:       logger,
	}
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	databaseURL := cfg.DatabaseURL
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL != "" {
		database, err := db.Connect(ctx, databaseURL)
		if err != nil {
			return site.Options{}, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		closers = append(closers, database.Close)
		if err := database.EnsureSchema(ctx); err != nil {
			cleanup()
			return site.Options{}, nil, fmt.Errorf("failed to prepare database: %w", err)
		}
		opts.Store = site.MultiStore{
			site.FileStore{Root: cfg.OutDir},
			site.DBStore{Pages: database},
		}
		opts.Recorder = database
		logger.Info("storing pages in database")
	}

	if cfg.PDF {
		chrome := export.NewChrome(export.DefaultTimeout)
		closers = append(closers, chrome.Close)
		opts.Exporter = chrome
	}

	if cfg.Verbose {
		opts.OnProgress = func(event site.ProgressEvent) {
			logger.Debug("progress",
				zap.String("stage", event.Stage),
				zap.String("variant", event.Variant.String()),
				zap.String("message", event.Message))
		}
	}

	return opts, cleanup, nil
}
