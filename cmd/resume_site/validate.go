package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-site/internal/config"
	"github.com/jonathan/resume-site/internal/observability"
	"github.com/jonathan/resume-site/internal/registry"
	"github.com/jonathan/resume-site/internal/schemas"
	"github.com/jonathan/resume-site/internal/site"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate resume documents and the registry against their JSON schemas",
	Long: `Checks every JSON document under <data>/resumes against the resume schema and <data>/index.json
against the registry schema, then checks that each registered variant has a document.
Every problem is reported; the command exits non-zero if any check failed.`,
	RunE: runValidate,
}

var (
	validateDataDir   string
	validateSchemaDir string
)

func init() {
	validateCmd.Flags().StringVarP(&validateDataDir, "data", "d", "", "Data directory holding index.json and resumes/ (default \"data\")")
	validateCmd.Flags().StringVar(&validateSchemaDir, "schemas", "", "Directory holding resume.schema.json and registry.schema.json (default: ./schemas)")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd, func(cfg *config.Config) {
		if cmd.Flags().Changed("data") {
			cfg.DataDir = validateDataDir
		}
		if cmd.Flags().Changed("schemas") {
			cfg.SchemaDir = validateSchemaDir
		}
	})
	if err != nil {
		return err
	}

	resumeValidator, err := schemas.NewValidator(schemaPath(cfg.SchemaDir, schemas.ResumeSchemaFile))
	if err != nil {
		return err
	}
	registryValidator, err := schemas.NewValidator(schemaPath(cfg.SchemaDir, schemas.RegistrySchemaFile))
	if err != nil {
		return err
	}

	documents, err := site.Documents(filepath.Join(cfg.DataDir, site.ResumesDir))
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	registryPath := filepath.Join(cfg.DataDir, site.RegistryFile)
	results := resumeValidator.ValidateFiles(documents)
	results = append(results, registryValidator.ValidateFiles([]string{registryPath})...)
	results = append(results, checkVariants(registryPath, filepath.Join(cfg.DataDir, site.ResumesDir))...)

	failed := schemas.Failed(results)
	if cfg.Verbose || failed > 0 {
		observability.NewPrinter(os.Stdout).PrintValidation(results)
	} else {
		_, _ = fmt.Fprintf(os.Stdout, "Validated %d file(s)\n", len(documents)+1)
	}

	if failed > 0 {
		return fmt.Errorf("validation failed: %d problem(s)", failed)
	}
	return nil
}

// schemaPath returns the schema file inside dir, or searches upwards from the
// working directory when dir is empty.
func schemaPath(dir, file string) string {
	if dir != "" {
		return filepath.Join(dir, filepath.Base(file))
	}
	if resolved := schemas.ResolveSchemaPath(file); resolved != "" {
		return resolved
	}
	return file
}

// checkVariants reports every registered variant that has no document. A
// registry that cannot be loaded is already reported by the schema check.
func checkVariants(registryPath, resumesDir string) []schemas.FileResult {
	reg, err := registry.Load(registryPath)
	if err != nil {
		return nil
	}
	locator := site.NewLocator(resumesDir, nil)
	var results []schemas.FileResult
	for _, v := range reg.Variants {
		ref := v.Ref()
		if _, err := locator.Locate(ref); err != nil {
			results = append(results, schemas.FileResult{Path: ref.String(), Err: err})
		}
	}
	return results
}
