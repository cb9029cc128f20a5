// Package cmd - CLI commands: fenquote version export/import
package cmd

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"fenquote/core/catalog"
	"fenquote/core/codec"
	"fenquote/core/output"
	"fenquote/core/version"
	"fenquote/internal/errors"
)

var versionExportCmd = &cobra.Command{
	Use:   "export <version-id>",
	Short: "Export a published version to a file",
	Long: `Export a published version as JSON or CSV.

JSON is lossless and re-importable. CSV carries the spreadsheet contract:
size limits and allowed-addon lists have no columns there.`,
	Args: cobra.ExactArgs(1),
	RunE: runVersionExport,
}

var versionImportCmd = &cobra.Command{
	Use:   "import <file.json|file.csv>",
	Short: "Import a version file into the store",
	Long: `Import a pricing version from an exported file.

A JSON file keeps its own version id; importing an id that already
exists fails, sealed versions are never overwritten. A CSV file carries
no id, so the import publishes a fresh one.

With --publish the imported version also becomes current.`,
	Args: cobra.ExactArgs(1),
	RunE: runVersionImport,
}

var (
	exportFormat  string
	exportOut     string
	importPublish bool
)

func init() {
	versionCmd.AddCommand(versionExportCmd)
	versionCmd.AddCommand(versionImportCmd)

	versionExportCmd.Flags().StringVarP(&exportFormat, "format", "f", "json", "export format (json, csv)")
	versionExportCmd.Flags().StringVarP(&exportOut, "output", "o", "", "output path (default derives from the version name)")

	versionImportCmd.Flags().BoolVar(&importPublish, "publish", false, "make the imported version current")
}

func runVersionExport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	v, err := st.PricingVersion(ctx, args[0])
	if err != nil {
		return err
	}

	var data []byte
	var path string
	switch exportFormat {
	case "json":
		data, err = codec.ExportJSON(v)
		if err != nil {
			return err
		}
		path = codec.ExportJSONFilename(v)
	case "csv":
		data = codec.ExportCSV(v)
		path = codec.ExportCSVFilename(v)
	default:
		return errors.Newf(errors.TypeInput, "format must be json or csv, got %q", exportFormat)
	}
	if exportOut != "" {
		path = exportOut
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(errors.TypeStorage, "writing export file", err)
	}

	w := output.NewWriter(os.Stdout, false)
	w.Success("Exported %s to %s (%d bytes)", v.ID, path, len(data))
	return nil
}

func runVersionImport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	path := args[0]

	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(errors.TypeInput, "reading version file", err)
	}

	var v *version.PricingVersion
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		v, err = codec.ImportJSON(data)
		if err != nil {
			return err
		}
	case ".csv":
		// CSV carries collections only; publish them under a fresh id.
		cat, err := codec.ImportCSV(data)
		if err != nil {
			return err
		}
		base := filepath.Base(path)
		v = version.Publish(cat, strings.TrimSuffix(base, filepath.Ext(base)), "imported from "+base)
	default:
		return errors.Newf(errors.TypeInput, "unsupported version format %q, use .json or .csv", filepath.Ext(path))
	}

	w := output.NewWriter(os.Stdout, false)
	if importPublish {
		// The publish gate applies: current rates must validate.
		if violations := v.Catalog().Validate(catalog.DefaultValidationRules()); len(violations) > 0 {
			for _, violation := range violations {
				w.Error("%v", violation)
			}
			return errors.Newf(errors.TypeInvalidConfiguration, "refusing to publish import: %d validation problems", len(violations))
		}
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.StorePricingVersion(ctx, v); err != nil {
		return err
	}
	w.Success("Imported version %s from %s", v.ID, path)

	if importPublish {
		if err := st.SetCurrentVersionID(ctx, v.ID); err != nil {
			return err
		}
		w.Print("  Quotes now price against this version.\n")
	}
	return nil
}
