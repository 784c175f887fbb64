package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-site/internal/config"
	"github.com/jonathan/resume-site/internal/db"
	"github.com/jonathan/resume-site/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the preview server",
	Long: `Start an HTTP server that renders variants on request (/view/{id}) and exposes the registry and
normalized models as JSON. With --db-url (or DATABASE_URL) stored builds are served under /builds.`,
	RunE: runServe,
}

var (
	serveAddr        string
	serveDataDir     string
	serveTemplate    string
	serveBasePath    string
	serveUntrusted   bool
	serveDatabaseURL string
)

func init() {
	addSiteFlags(serveCmd, &serveDataDir, &serveTemplate, &serveBasePath, &serveUntrusted)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Address to listen on (default \":8080\")")
	serveCmd.Flags().StringVar(&serveDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd, func(cfg *config.Config) {
		siteOverrides(cmd, serveDataDir, serveTemplate, serveBasePath, serveUntrusted)(cfg)
		if cmd.Flags().Changed("addr") {
			cfg.Addr = serveAddr
		}
		if cmd.Flags().Changed("db-url") {
			cfg.DatabaseURL = serveDatabaseURL
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

	srvCfg := server.Config{
		Addr:         cfg.Addr,
		DataDir:      cfg.DataDir,
		TemplatePath: cfg.Template,
		BasePath:     cfg.BasePath,
		Untrusted:    cfg.UntrustedData,
		Logger:       logger,
	}

	databaseURL := cfg.DatabaseURL
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL != "" {
		database, err := db.Connect(ctx, databaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer database.Close()
		if err := database.EnsureSchema(ctx); err != nil {
			return fmt.Errorf("failed to prepare database: %w", err)
		}
		srvCfg.Builds = database
	}

	return server.New(srvCfg).Run(ctx)
}
