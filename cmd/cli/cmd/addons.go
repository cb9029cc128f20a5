// Package cmd - CLI command: fenquote addons
package cmd

import (
	"context"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"fenquote/core/catalog"
	"fenquote/core/output"
	"fenquote/core/pricing"
	"fenquote/internal/errors"
)

var addonsCmd = &cobra.Command{
	Use:   "addons",
	Short: "List addons eligible for a product at a size",
	Long: `List the addons a product qualifies for at the given dimensions.

Eligibility is judged on the raw United Inches of the size, before any
product minimum lifts the billable UI.`,
	RunE: runAddons,
}

var (
	addonsProduct string
	addonsWidth   float64
	addonsHeight  float64
)

func init() {
	rootCmd.AddCommand(addonsCmd)

	addonsCmd.Flags().StringVarP(&addonsProduct, "product", "p", "", "product id [REQUIRED]")
	addonsCmd.Flags().Float64Var(&addonsWidth, "width", 0, "width in inches [REQUIRED]")
	addonsCmd.Flags().Float64Var(&addonsHeight, "height", 0, "height in inches [REQUIRED]")
	addonsCmd.MarkFlagRequired("product")
	addonsCmd.MarkFlagRequired("width")
	addonsCmd.MarkFlagRequired("height")
}

func runAddons(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	cat, err := pricingCatalog(ctx, st)
	if err != nil {
		return err
	}
	product, ok := cat.Product(addonsProduct)
	if !ok {
		return errors.NotFound("product", addonsProduct)
	}

	ui := pricing.UnitedInches(addonsWidth, addonsHeight)
	ids := pricing.AvailableAddons(product, ui, cat.Addons)

	w := output.NewWriter(os.Stdout, false)
	w.Header(product.Name + " @ " + strconv.Itoa(ui) + " UI")
	for _, problem := range pricing.ValidateSize(product, addonsWidth, addonsHeight).Errors {
		w.Warning("%s", problem)
	}
	for _, problem := range pricing.ValidateUI(product, ui).Errors {
		w.Warning("%s", problem)
	}
	if len(ids) == 0 {
		w.Info("No addons are eligible at this size")
		return nil
	}

	table := w.NewTable("Addon", "Name", "Pricing", "Flags")
	for _, id := range ids {
		addon := cat.Addons[id]
		table.AddRow(id, addon.Name, addonPricingCell(addon), addonFlagsCell(addon))
	}
	table.Render()
	return nil
}

func addonPricingCell(addon *catalog.Addon) string {
	switch {
	case addon.PricingModel == catalog.PricingModelUI && addon.UIRate != nil:
		return "$" + addon.UIRate.StringFixed(2) + "/UI"
	case addon.PricingModel == catalog.PricingModelFlat && addon.FlatPrice != nil:
		return "$" + addon.FlatPrice.StringFixed(2)
	default:
		return string(addon.PricingModel)
	}
}

func addonFlagsCell(addon *catalog.Addon) string {
	var flags []string
	if addon.Mandatory {
		flags = append(flags, "mandatory")
	}
	if addon.HiddenFromCustomer {
		flags = append(flags, "hidden")
	}
	if addon.IsJobBased {
		flags = append(flags, "job")
	}
	if addon.ExclusiveGroup != "" {
		flags = append(flags, "group:"+addon.ExclusiveGroup)
	}
	return strings.Join(flags, ", ")
}
