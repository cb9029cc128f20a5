// Package pricing - Addon eligibility
package pricing

import (
	"fenquote/core/catalog"
	"fenquote/core/determinism"
)

// IsAddonAllowed reports whether an addon may apply to a product at the
// given United Inches. Every clause is AND-ed; a single failing clause
// excludes the addon. An absent restriction (nil/empty list, nil bound)
// is unrestricted.
func IsAddonAllowed(addon *catalog.Addon, product *catalog.Product, ui int) bool {
	if len(addon.AllowedProductTypes) > 0 && !contains(addon.AllowedProductTypes, product.TypeKey()) {
		return false
	}
	if len(addon.AllowedProductLines) > 0 && !contains(addon.AllowedProductLines, product.ProductLineID) {
		return false
	}
	// MinSize/MaxSize compare against UI by long-standing behavior, even
	// though the fields were once documented as square feet.
	if addon.MaxSize != nil && ui > *addon.MaxSize {
		return false
	}
	if addon.MinSize != nil && ui < *addon.MinSize {
		return false
	}
	return true
}

// AvailableAddons filters the addon catalog through IsAddonAllowed and
// returns the eligible addon ids. Order is sorted by id; callers must not
// rely on it for correctness.
func AvailableAddons(product *catalog.Product, ui int, addons map[string]*catalog.Addon) []string {
	var eligible []string
	determinism.RangeMapSorted(addons, func(id string, addon *catalog.Addon) bool {
		if IsAddonAllowed(addon, product, ui) {
			eligible = append(eligible, id)
		}
		return true
	})
	return eligible
}

func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
