// Package catalog - Catalog validation
// Ensures catalog integrity and enforces invariants.
package catalog

import (
	"fmt"

	"fenquote/core/determinism"
)

// ValidationRule checks one aspect of catalog integrity
type ValidationRule func(*Catalog) []error

// DefaultValidationRules returns the standard validation rules
func DefaultValidationRules() []ValidationRule {
	return []ValidationRule{
		validateLineReferences,
		validateProductReferences,
		validateProductPricing,
		validateAddonPricing,
		validateAllowedAddonReferences,
		validateSizeBounds,
	}
}

// Validate checks the catalog against all rules and returns every
// violation, not the first.
func (c *Catalog) Validate(rules []ValidationRule) []error {
	var errs []error
	for _, rule := range rules {
		errs = append(errs, rule(c)...)
	}
	return errs
}

// validateLineReferences ensures product lines point at existing manufacturers
func validateLineReferences(c *Catalog) []error {
	var errs []error
	determinism.RangeMapSorted(c.ProductLines, func(id string, l *ProductLine) bool {
		if _, ok := c.Manufacturers[l.ManufacturerID]; !ok {
			errs = append(errs, fmt.Errorf("product line %s: unknown manufacturer %q", id, l.ManufacturerID))
		}
		return true
	})
	return errs
}

// validateProductReferences ensures products point at existing lines
func validateProductReferences(c *Catalog) []error {
	var errs []error
	determinism.RangeMapSorted(c.Products, func(id string, p *Product) bool {
		if p.ProductLineID == "" {
			errs = append(errs, fmt.Errorf("product %s: missing product line", id))
		} else if _, ok := c.ProductLines[p.ProductLineID]; !ok {
			errs = append(errs, fmt.Errorf("product %s: unknown product line %q", id, p.ProductLineID))
		}
		return true
	})
	return errs
}

// validateProductPricing ensures each product can produce a price
func validateProductPricing(c *Catalog) []error {
	var errs []error
	determinism.RangeMapSorted(c.Products, func(id string, p *Product) bool {
		switch p.PricingModel {
		case PricingModelUI:
			if p.UIRate == nil {
				errs = append(errs, fmt.Errorf("product %s: UI pricing without uiRate", id))
			}
		case PricingModelFlat:
			if p.FlatPrice == nil {
				errs = append(errs, fmt.Errorf("product %s: FLAT pricing without flatPrice", id))
			}
		default:
			errs = append(errs, fmt.Errorf("product %s: unknown pricing model %q", id, p.PricingModel))
		}
		if p.MinimumUI < 0 {
			errs = append(errs, fmt.Errorf("product %s: negative minimumUI %d", id, p.MinimumUI))
		}
		if p.MaximumUI != nil && *p.MaximumUI < p.MinimumUI {
			errs = append(errs, fmt.Errorf("product %s: maximumUI %d below minimumUI %d", id, *p.MaximumUI, p.MinimumUI))
		}
		return true
	})
	return errs
}

// validateAddonPricing ensures each addon can produce a price
func validateAddonPricing(c *Catalog) []error {
	var errs []error
	determinism.RangeMapSorted(c.Addons, func(id string, a *Addon) bool {
		switch a.PricingModel {
		case PricingModelUI:
			if a.UIRate == nil {
				errs = append(errs, fmt.Errorf("addon %s: UI pricing without uiRate", id))
			}
		case PricingModelFlat:
			if a.FlatPrice == nil {
				errs = append(errs, fmt.Errorf("addon %s: FLAT pricing without flatPrice", id))
			}
		default:
			errs = append(errs, fmt.Errorf("addon %s: unknown pricing model %q", id, a.PricingModel))
		}
		return true
	})
	return errs
}

// validateAllowedAddonReferences ensures products only allow known addons
func validateAllowedAddonReferences(c *Catalog) []error {
	var errs []error
	determinism.RangeMapSorted(c.Products, func(id string, p *Product) bool {
		for _, addonID := range p.AllowedAddons {
			if _, ok := c.Addons[addonID]; !ok {
				errs = append(errs, fmt.Errorf("product %s: allowedAddons references unknown addon %q", id, addonID))
			}
		}
		return true
	})
	return errs
}

// validateSizeBounds ensures size constraints are orderable
func validateSizeBounds(c *Catalog) []error {
	var errs []error
	determinism.RangeMapSorted(c.Products, func(id string, p *Product) bool {
		if s := p.SizeLimits; s != nil {
			if s.MinWidth != nil && s.MaxWidth != nil && *s.MinWidth > *s.MaxWidth {
				errs = append(errs, fmt.Errorf("product %s: minWidth %g above maxWidth %g", id, *s.MinWidth, *s.MaxWidth))
			}
			if s.MinHeight != nil && s.MaxHeight != nil && *s.MinHeight > *s.MaxHeight {
				errs = append(errs, fmt.Errorf("product %s: minHeight %g above maxHeight %g", id, *s.MinHeight, *s.MaxHeight))
			}
		}
		return true
	})
	determinism.RangeMapSorted(c.Addons, func(id string, a *Addon) bool {
		if a.MinSize != nil && a.MaxSize != nil && *a.MinSize > *a.MaxSize {
			errs = append(errs, fmt.Errorf("addon %s: minSize %d above maxSize %d", id, *a.MinSize, *a.MaxSize))
		}
		return true
	})
	return errs
}
