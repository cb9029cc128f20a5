// Package cmd - CLI commands: fenquote catalog show/validate/import
package cmd

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"fenquote/adapters/hclcat"
	"fenquote/core/catalog"
	"fenquote/core/output"
	"fenquote/internal/errors"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect and load the working catalog",
}

var catalogShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the working catalog",
	RunE:  runCatalogShow,
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the working catalog for integrity problems",
	RunE:  runCatalogValidate,
}

var catalogImportCmd = &cobra.Command{
	Use:   "import <file.json|file.hcl>",
	Short: "Replace the working catalog from a file",
	Long: `Replace the working catalog with the contents of a catalog file.

HCL files use the dealer authoring format (manufacturer/product_line/
product/addon blocks). JSON files carry the four collections keyed by id;
a pricing version export works too, its envelope fields are ignored.

The file must pass validation. Published versions are not touched; run
'version publish' to put the imported rates into effect.`,
	Args: cobra.ExactArgs(1),
	RunE: runCatalogImport,
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogShowCmd)
	catalogCmd.AddCommand(catalogValidateCmd)
	catalogCmd.AddCommand(catalogImportCmd)
}

func runCatalogShow(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	cat, err := st.Catalog(ctx)
	if err != nil {
		return err
	}

	w := output.NewWriter(os.Stdout, false)
	w.Header("Working catalog")

	stats := cat.Stats()
	w.Print("  Manufacturers: %d\n", stats.Manufacturers)
	w.Print("  Product lines: %d\n", stats.ProductLines)
	w.Print("  Products:      %d\n", stats.Products)
	w.Print("  Addons:        %d (%d mandatory, %d job-based)\n",
		stats.Addons, stats.MandatoryAddons, stats.JobBasedAddons)

	if currentID, err := st.CurrentVersionID(ctx); err == nil && currentID != "" {
		w.Info("Quotes currently price against published version %s", currentID)
	}

	if stats.Products > 0 {
		w.SubHeader("Products")
		table := w.NewTable("ID", "Name", "Line", "Type", "Pricing")
		for _, p := range cat.SortedProducts() {
			table.AddRow(p.ID, p.Name, p.ProductLineID, p.TypeKey(), productPricingCell(p))
		}
		table.Render()
	}
	if stats.Addons > 0 {
		w.SubHeader("Addons")
		table := w.NewTable("ID", "Name", "Pricing", "Flags")
		for _, a := range cat.SortedAddons() {
			table.AddRow(a.ID, a.Name, addonPricingCell(a), addonFlagsCell(a))
		}
		table.Render()
	}
	return nil
}

func productPricingCell(p *catalog.Product) string {
	switch {
	case p.PricingModel == catalog.PricingModelUI && p.UIRate != nil:
		cell := "$" + p.UIRate.StringFixed(2) + "/UI"
		if p.MinimumUI > 0 {
			cell += " (min " + strconv.Itoa(p.MinimumUI) + ")"
		}
		return cell
	case p.PricingModel == catalog.PricingModelFlat && p.FlatPrice != nil:
		return "$" + p.FlatPrice.StringFixed(2)
	default:
		return string(p.PricingModel)
	}
}

func runCatalogValidate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	cat, err := st.Catalog(ctx)
	if err != nil {
		return err
	}

	w := output.NewWriter(os.Stdout, false)
	violations := cat.Validate(catalog.DefaultValidationRules())
	if len(violations) == 0 {
		w.Success("Catalog is valid")
		return nil
	}

	for _, v := range violations {
		w.Error("%v", v)
	}
	return errors.Newf(errors.TypeInvalidConfiguration, "catalog has %d validation problems", len(violations))
}

// readCatalogFile loads a catalog from JSON or HCL based on extension
func readCatalogFile(path string) (*catalog.Catalog, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hcl":
		return hclcat.DecodeFile(path)
	case ".json":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(errors.TypeInput, "reading catalog file", err)
		}
		var cat catalog.Catalog
		if err := json.Unmarshal(data, &cat); err != nil {
			return nil, errors.Wrap(errors.TypeParsing, "catalog file is not valid JSON", err)
		}
		return cat.Normalize(), nil
	default:
		return nil, errors.Newf(errors.TypeInput, "unsupported catalog format %q, use .json or .hcl", filepath.Ext(path))
	}
}

func runCatalogImport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cat, err := readCatalogFile(args[0])
	if err != nil {
		return err
	}

	if violations := cat.Validate(catalog.DefaultValidationRules()); len(violations) > 0 {
		w := output.NewWriter(os.Stdout, false)
		for _, v := range violations {
			w.Error("%v", v)
		}
		return errors.Newf(errors.TypeInvalidConfiguration, "refusing to import: %d validation problems", len(violations))
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.SaveCatalog(ctx, cat); err != nil {
		return err
	}

	stats := cat.Stats()
	w := output.NewWriter(os.Stdout, false)
	w.Success("Imported %d products, %d addons from %s", stats.Products, stats.Addons, args[0])
	return nil
}
