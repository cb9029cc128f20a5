// Package hclcat decodes dealer-authored catalog files written in HCL.
// Blocks map one-to-one onto catalog entities; nothing here evaluates
// expressions beyond literals, so a catalog file can never compute.
package hclcat

import (
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/shopspring/decimal"

	"fenquote/core/catalog"
	"fenquote/internal/errors"
)

type catalogFile struct {
	Manufacturers []manufacturerBlock `hcl:"manufacturer,block"`
	ProductLines  []productLineBlock  `hcl:"product_line,block"`
	Products      []productBlock      `hcl:"product,block"`
	Addons        []addonBlock        `hcl:"addon,block"`
}

type manufacturerBlock struct {
	ID   string `hcl:"id,label"`
	Name string `hcl:"name"`
}

type productLineBlock struct {
	ID             string `hcl:"id,label"`
	ManufacturerID string `hcl:"manufacturer"`
	Name           string `hcl:"name"`
}

// Prices are written as strings ("10.50") and parsed as exact decimals.
// An HCL number would ride through float64 on its way in.
type productBlock struct {
	ID              string           `hcl:"id,label"`
	ProductLineID   string           `hcl:"product_line"`
	ProductType     string           `hcl:"product_type,optional"`
	ProductTypeCode string           `hcl:"product_type_code,optional"`
	Name            string           `hcl:"name"`
	PricingModel    string           `hcl:"pricing_model"`
	UIRate          *string          `hcl:"ui_rate,optional"`
	FlatPrice       *string          `hcl:"flat_price,optional"`
	MinimumUI       int              `hcl:"minimum_ui,optional"`
	MaximumUI       *int             `hcl:"maximum_ui,optional"`
	AllowedAddons   []string         `hcl:"allowed_addons,optional"`
	SizeLimits      *sizeLimitsBlock `hcl:"size_limits,block"`
}

type sizeLimitsBlock struct {
	MinWidth  *float64 `hcl:"min_width,optional"`
	MaxWidth  *float64 `hcl:"max_width,optional"`
	MinHeight *float64 `hcl:"min_height,optional"`
	MaxHeight *float64 `hcl:"max_height,optional"`
}

type addonBlock struct {
	ID                  string   `hcl:"id,label"`
	Name                string   `hcl:"name"`
	PricingModel        string   `hcl:"pricing_model"`
	UIRate              *string  `hcl:"ui_rate,optional"`
	FlatPrice           *string  `hcl:"flat_price,optional"`
	ExclusiveGroup      string   `hcl:"exclusive_group,optional"`
	Mandatory           bool     `hcl:"mandatory,optional"`
	HiddenFromCustomer  bool     `hcl:"hidden_from_customer,optional"`
	IsJobBased          bool     `hcl:"job_based,optional"`
	AllowedProductTypes []string `hcl:"product_types,optional"`
	AllowedProductLines []string `hcl:"product_lines,optional"`
	MinSize             *int     `hcl:"min_size,optional"`
	MaxSize             *int     `hcl:"max_size,optional"`
}

// DecodeFile reads and decodes one catalog file.
func DecodeFile(path string) (*catalog.Catalog, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Storage("reading catalog file", err)
	}
	return Decode(src, path)
}

// Decode parses HCL source into a catalog. It rejects what it can see
// locally: bad syntax, unknown pricing models, unparseable prices,
// duplicate ids. Referential integrity across entities is the
// validator's job, so a file can be decoded and then reported on as a
// whole.
func Decode(src []byte, filename string) (*catalog.Catalog, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, errors.Parsing("parsing catalog hcl", diags)
	}

	var root catalogFile
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, errors.Parsing("decoding catalog blocks", diags)
	}

	cat := catalog.New()

	for _, b := range root.Manufacturers {
		if _, exists := cat.Manufacturers[b.ID]; exists {
			return nil, errors.InvalidConfiguration("manufacturer", b.ID, "duplicate id")
		}
		cat.Manufacturers[b.ID] = &catalog.Manufacturer{ID: b.ID, Name: b.Name}
	}

	for _, b := range root.ProductLines {
		if _, exists := cat.ProductLines[b.ID]; exists {
			return nil, errors.InvalidConfiguration("product line", b.ID, "duplicate id")
		}
		cat.ProductLines[b.ID] = &catalog.ProductLine{
			ID:             b.ID,
			ManufacturerID: b.ManufacturerID,
			Name:           b.Name,
		}
	}

	for _, b := range root.Products {
		if _, exists := cat.Products[b.ID]; exists {
			return nil, errors.InvalidConfiguration("product", b.ID, "duplicate id")
		}
		model, err := pricingModel("product", b.ID, b.PricingModel)
		if err != nil {
			return nil, err
		}
		uiRate, err := parsePrice("product", b.ID, "ui_rate", b.UIRate)
		if err != nil {
			return nil, err
		}
		flatPrice, err := parsePrice("product", b.ID, "flat_price", b.FlatPrice)
		if err != nil {
			return nil, err
		}

		p := &catalog.Product{
			ID:              b.ID,
			ProductLineID:   b.ProductLineID,
			ProductType:     b.ProductType,
			ProductTypeCode: b.ProductTypeCode,
			Name:            b.Name,
			PricingModel:    model,
			UIRate:          uiRate,
			FlatPrice:       flatPrice,
			MinimumUI:       b.MinimumUI,
			MaximumUI:       b.MaximumUI,
			AllowedAddons:   b.AllowedAddons,
		}
		if b.SizeLimits != nil {
			p.SizeLimits = &catalog.SizeLimits{
				MinWidth:  b.SizeLimits.MinWidth,
				MaxWidth:  b.SizeLimits.MaxWidth,
				MinHeight: b.SizeLimits.MinHeight,
				MaxHeight: b.SizeLimits.MaxHeight,
			}
		}
		cat.Products[b.ID] = p
	}

	for _, b := range root.Addons {
		if _, exists := cat.Addons[b.ID]; exists {
			return nil, errors.InvalidConfiguration("addon", b.ID, "duplicate id")
		}
		model, err := pricingModel("addon", b.ID, b.PricingModel)
		if err != nil {
			return nil, err
		}
		uiRate, err := parsePrice("addon", b.ID, "ui_rate", b.UIRate)
		if err != nil {
			return nil, err
		}
		flatPrice, err := parsePrice("addon", b.ID, "flat_price", b.FlatPrice)
		if err != nil {
			return nil, err
		}

		cat.Addons[b.ID] = &catalog.Addon{
			ID:                  b.ID,
			Name:                b.Name,
			PricingModel:        model,
			UIRate:              uiRate,
			FlatPrice:           flatPrice,
			ExclusiveGroup:      b.ExclusiveGroup,
			Mandatory:           b.Mandatory,
			HiddenFromCustomer:  b.HiddenFromCustomer,
			IsJobBased:          b.IsJobBased,
			AllowedProductTypes: b.AllowedProductTypes,
			AllowedProductLines: b.AllowedProductLines,
			MinSize:             b.MinSize,
			MaxSize:             b.MaxSize,
		}
	}

	return cat.Normalize(), nil
}

func pricingModel(entity, id, value string) (catalog.PricingModel, error) {
	model := catalog.PricingModel(value)
	if !model.Valid() {
		return "", errors.InvalidConfiguration(entity, id, "unknown pricing model "+value)
	}
	return model, nil
}

func parsePrice(entity, id, attr string, value *string) (*decimal.Decimal, error) {
	if value == nil {
		return nil, nil
	}
	d, err := decimal.NewFromString(*value)
	if err != nil {
		return nil, errors.InvalidConfiguration(entity, id, attr+" is not a decimal: "+*value)
	}
	return &d, nil
}
