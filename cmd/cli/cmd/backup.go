// Package cmd - CLI commands: fenquote backup export/import
package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"fenquote/adapters/storage"
	"fenquote/core/output"
	"fenquote/internal/errors"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Export or import a full data bundle",
}

var backupExportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Write everything in the store to one bundle file",
	Long: `Write the working catalog, settings, quotes, locked quote versions,
published pricing versions, and the current-version pointer to a single
JSON bundle. Every pricing version is hash-verified on the way out; a
corrupted store refuses to export.`,
	Args: cobra.ExactArgs(1),
	RunE: runBackupExport,
}

var backupImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Load a bundle file into the store",
	Long: `Load a bundle file into the store.

Versions that already exist are skipped, never overwritten. Products
missing a product line reference are repaired: a legacy lineId field is
migrated, and anything still dangling gets the first available line.`,
	Args: cobra.ExactArgs(1),
	RunE: runBackupImport,
}

func init() {
	rootCmd.AddCommand(backupCmd)
	backupCmd.AddCommand(backupExportCmd)
	backupCmd.AddCommand(backupImportCmd)
}

func runBackupExport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	data, err := storage.ExportBundle(ctx, st)
	if err != nil {
		return err
	}
	if err := os.WriteFile(args[0], data, 0644); err != nil {
		return errors.Wrap(errors.TypeStorage, "writing bundle file", err)
	}

	w := output.NewWriter(os.Stdout, false)
	w.Success("Exported bundle to %s (%d bytes)", args[0], len(data))
	return nil
}

func runBackupImport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return errors.Wrap(errors.TypeInput, "reading bundle file", err)
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	report, err := storage.ImportBundle(ctx, st, data)
	if err != nil {
		return err
	}

	w := output.NewWriter(os.Stdout, false)
	w.Success("Bundle imported from %s", args[0])
	w.Print("  Quotes:           %d\n", report.Quotes)
	w.Print("  Quote versions:   %d\n", report.QuoteVersions)
	w.Print("  Pricing versions: %d\n", report.PricingVersions)
	if report.Skipped > 0 {
		w.Info("%d versions already existed and were skipped", report.Skipped)
	}
	for _, id := range report.RepairedProducts {
		w.Warning("repaired product line reference on %s", id)
	}
	return nil
}
