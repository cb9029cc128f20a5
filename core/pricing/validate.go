// Package pricing - Dimension and UI validation
package pricing

import (
	"fmt"

	"fenquote/core/catalog"
)

// Validation collects every violated constraint, not just the first
type Validation struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// ValidateSize checks dimensions against the product's size limits.
// A missing limit is unconstrained.
func ValidateSize(product *catalog.Product, width, height float64) Validation {
	var errs []string
	if s := product.SizeLimits; s != nil {
		if s.MinWidth != nil && width < *s.MinWidth {
			errs = append(errs, fmt.Sprintf("width %g below minimum %g", width, *s.MinWidth))
		}
		if s.MaxWidth != nil && width > *s.MaxWidth {
			errs = append(errs, fmt.Sprintf("width %g above maximum %g", width, *s.MaxWidth))
		}
		if s.MinHeight != nil && height < *s.MinHeight {
			errs = append(errs, fmt.Sprintf("height %g below minimum %g", height, *s.MinHeight))
		}
		if s.MaxHeight != nil && height > *s.MaxHeight {
			errs = append(errs, fmt.Sprintf("height %g above maximum %g", height, *s.MaxHeight))
		}
	}
	return Validation{Valid: len(errs) == 0, Errors: errs}
}

// ValidateUI checks a computed UI against the product's UI bounds
func ValidateUI(product *catalog.Product, ui int) Validation {
	var errs []string
	if ui < product.MinimumUI {
		errs = append(errs, fmt.Sprintf("united inches %d below minimum %d", ui, product.MinimumUI))
	}
	if product.MaximumUI != nil && ui > *product.MaximumUI {
		errs = append(errs, fmt.Sprintf("united inches %d above maximum %d", ui, *product.MaximumUI))
	}
	return Validation{Valid: len(errs) == 0, Errors: errs}
}
