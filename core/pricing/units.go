// Package pricing - Line item and quote computation
// Pure functions over catalog data. The engine takes plain data as input and
// returns new data; it never retains references across calls and never
// touches a store.
package pricing

import (
	"math"
)

// UnitedInches is the sizing unit driving UI-based pricing and addon
// eligibility: ceil(width + height). Never below 0.
func UnitedInches(width, height float64) int {
	ui := int(math.Ceil(width + height))
	if ui < 0 {
		return 0
	}
	return ui
}

// SquareFootage converts inch dimensions to square feet. Reporting only;
// addon eligibility compares United Inches, not square footage.
func SquareFootage(width, height float64) float64 {
	return (width * height) / 144
}

// EffectiveUI clamps a computed UI up to the product's minimum billable UI.
// Eligibility checks use the raw UI; pricing uses the effective UI.
func EffectiveUI(ui, minimumUI int) int {
	if ui < minimumUI {
		return minimumUI
	}
	return ui
}
