// Package cmd provides the CLI commands for fenquote.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fenquote/adapters/storage"
	"fenquote/core/catalog"
	"fenquote/internal/config"
	"fenquote/internal/logging"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:     "fenquote",
	Version: "0.1.0",
	Short:   "Price configurable window and door quotes",
	Long: `fenquote is a quote pricing tool for configurable window and door products.

It prices line items by United Inches against a versioned dealer catalog,
locks quote snapshots, and manages published pricing versions.

Examples:
  fenquote quote price ./quote.json
  fenquote addons --product prod-dh-400 --width 36 --height 48
  fenquote version publish --notes "spring rate increase"`,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.fenquote.json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}

func initConfig() {
	if cfgFile != "" {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		config.Set(cfg)
	}

	// Initialize logging
	cfg := config.Get()
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// openStore opens the configured storage backend. Callers own Close.
func openStore() (storage.Store, error) {
	cfg := config.Get()
	return storage.Open(storage.Backend(cfg.Storage.Backend), storage.Options{
		Directory:  cfg.Storage.Directory,
		SQLitePath: cfg.Storage.SQLitePath,
	})
}

// pricingCatalog returns the catalog quotes price against: the current
// published version, or the working catalog before the first publish.
func pricingCatalog(ctx context.Context, st storage.Store) (*catalog.Catalog, error) {
	return storage.ActiveCatalog(ctx, st)
}
