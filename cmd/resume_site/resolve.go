package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-site/internal/config"
	"github.com/jonathan/resume-site/internal/observability"
	"github.com/jonathan/resume-site/internal/registry"
	"github.com/jonathan/resume-site/internal/site"
	"github.com/jonathan/resume-site/internal/types"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve [identifier]",
	Short: "Print the slug@version an identifier resolves to",
	Long: `Resolves a slug, alias or slug@version against <data>/index.json and prints the chosen variant.
Without an identifier the registry default is resolved. Unknown identifiers fall back to the default
unless --strict is set. --all prints the newest version of every slug instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runResolve,
}

var (
	resolveDataDir string
	resolveStrict  bool
	resolveAll     bool
)

func init() {
	resolveCmd.Flags().StringVarP(&resolveDataDir, "data", "d", "", "Data directory holding index.json (default \"data\")")
	resolveCmd.Flags().BoolVar(&resolveStrict, "strict", false, "Fail instead of falling back when the identifier matches nothing")
	resolveCmd.Flags().BoolVar(&resolveAll, "all", false, "Print the newest version of every slug")

	rootCmd.AddCommand(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, func(cfg *config.Config) {
		if cmd.Flags().Changed("data") {
			cfg.DataDir = resolveDataDir
		}
	})
	if err != nil {
		return err
	}

	reg, err := registry.Load(filepath.Join(cfg.DataDir, site.RegistryFile))
	if err != nil {
		return err
	}

	if resolveAll {
		for _, ref := range registry.LatestBySlug(reg) {
			_, _ = fmt.Fprintln(os.Stdout, ref)
		}
		return nil
	}

	identifier := ""
	if len(args) > 0 {
		identifier = args[0]
	}

	var ref types.VariantRef
	if resolveStrict {
		ref, err = registry.Lookup(reg, identifier)
	} else {
		ref, err = registry.Resolve(reg, identifier)
	}
	if err != nil {
		return err
	}

	if cfg.Verbose {
		observability.NewPrinter(os.Stdout).PrintRegistry(reg, ref)
		return nil
	}
	_, _ = fmt.Fprintln(os.Stdout, ref)
	return nil
}
