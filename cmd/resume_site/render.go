package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-site/internal/config"
	"github.com/jonathan/resume-site/internal/document"
	"github.com/jonathan/resume-site/internal/observability"
	"github.com/jonathan/resume-site/internal/rendering"
	"github.com/jonathan/resume-site/internal/site"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a single resume document to HTML",
	Long:  `Normalizes one resume JSON document and renders it with the template, writing the page to --out or stdout.`,
	RunE:  runRender,
}

var (
	renderInput     string
	renderOutput    string
	renderTemplate  string
	renderBasePath  string
	renderUntrusted bool
)

func init() {
	renderCmd.Flags().StringVarP(&renderInput, "in", "i", "", "Path to resume JSON document")
	renderCmd.Flags().StringVarP(&renderOutput, "out", "o", "", "Output HTML file (default: stdout)")
	renderCmd.Flags().StringVarP(&renderTemplate, "template", "t", "", "Path to HTML template (default \"templates/resume.html\")")
	renderCmd.Flags().StringVar(&renderBasePath, "base", "", "Base path prefixed to site links (optional, defaults to RESUME_SITE_BASE env var)")
	renderCmd.Flags().BoolVar(&renderUntrusted, "untrusted", false, "Strip markup from every document string before rendering")

	if err := renderCmd.MarkFlagRequired("in"); err != nil {
		panic(fmt.Sprintf("failed to mark in flag as required: %v", err))
	}

	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd, func(cfg *config.Config) {
		if cmd.Flags().Changed("template") {
			cfg.Template = renderTemplate
		}
		if cmd.Flags().Changed("base") {
			cfg.BasePath = renderBasePath
		}
		if cmd.Flags().Changed("untrusted") {
			cfg.UntrustedData = renderUntrusted
		}
		if cfg.BasePath == "" {
			cfg.BasePath = os.Getenv("RESUME_SITE_BASE")
		}
	})
	if err != nil {
		return err
	}

	doc, err := document.LoadFile(renderInput)
	if err != nil {
		return fmt.Errorf("failed to load document: %w", err)
	}
	tmpl, err := rendering.LoadTemplate(cfg.Template)
	if err != nil {
		return fmt.Errorf("failed to load template: %w", err)
	}

	html, model := site.RenderDocument(tmpl, doc, site.RenderOptions{
		BasePath:  cfg.BasePath,
		Untrusted: cfg.UntrustedData,
	})

	if cfg.Verbose {
		// Keep stdout for the page when no output file is given
		summary := os.Stdout
		if renderOutput == "" {
			summary = os.Stderr
		}
		observability.NewPrinter(summary).PrintModel(model)
	}

	if renderOutput == "" {
		_, err := fmt.Fprint(os.Stdout, html)
		return err
	}
	if err := os.WriteFile(renderOutput, []byte(html), 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	_, _ = fmt.Fprintf(os.Stdout, "Successfully rendered %s to %s\n", renderInput, renderOutput)
	return nil
}
