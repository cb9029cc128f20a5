// Package pricing - Pricing invariant tests
// These tests PROVE the invariants are real by intentionally violating them.
package pricing

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"fenquote/core/catalog"
	"fenquote/internal/errors"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func intp(i int) *int { return &i }

func uiProduct(rate string) *catalog.Product {
	return &catalog.Product{
		ID:            "prod-dh",
		ProductLineID: "line-400",
		ProductType:   "window",
		Name:          "Double Hung",
		PricingModel:  catalog.PricingModelUI,
		UIRate:        dec(rate),
	}
}

// TestUnitedInchesContract proves ui = ceil(width + height), never below 0
func TestUnitedInchesContract(t *testing.T) {
	cases := []struct {
		width, height float64
		want          int
	}{
		{30, 20, 50},
		{30.2, 20.2, 51},
		{0, 0, 0},
		{35.5, 24.5, 60},
		{0.1, 0.1, 1},
		{-10, 5, 0},
	}
	for _, tc := range cases {
		if got := UnitedInches(tc.width, tc.height); got != tc.want {
			t.Errorf("UnitedInches(%g, %g) = %d, want %d", tc.width, tc.height, got, tc.want)
		}
	}
}

// TestUnitedInchesMonotonic proves ui never decreases as either dimension grows
func TestUnitedInchesMonotonic(t *testing.T) {
	prev := -1
	for w := 0.0; w <= 100; w += 7.3 {
		ui := UnitedInches(w, 25)
		if ui < prev {
			t.Fatalf("UnitedInches decreased: width %g gave %d after %d", w, ui, prev)
		}
		prev = ui
	}
}

// TestSquareFootage proves the inches-to-feet conversion
func TestSquareFootage(t *testing.T) {
	if got := SquareFootage(24, 36); got != 6 {
		t.Errorf("SquareFootage(24, 36) = %g, want 6", got)
	}
	if got := SquareFootage(12, 12); got != 1 {
		t.Errorf("SquareFootage(12, 12) = %g, want 1", got)
	}
}

// TestLineItemBaseCase pins the canonical example: rate 10, 30x20, no
// addons gives ui 50 and base price 500
func TestLineItemBaseCase(t *testing.T) {
	item, err := CalculateLineItem(uiProduct("10"), 30, 20, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if item.UI != 50 {
		t.Errorf("ui = %d, want 50", item.UI)
	}
	if !item.BasePrice.Equal(decimal.NewFromInt(500)) {
		t.Errorf("basePrice = %s, want 500", item.BasePrice)
	}
	if !item.AddonTotal.IsZero() {
		t.Errorf("addonTotal = %s, want 0", item.AddonTotal)
	}
	if !item.ParTotal.Equal(decimal.NewFromInt(500)) {
		t.Errorf("lineItemParTotal = %s, want 500", item.ParTotal)
	}
	if len(item.AppliedAddons) != 0 {
		t.Errorf("appliedAddons = %v, want empty", item.AppliedAddons)
	}
}

// TestMinimumUISplit proves billing clamps to minimumUI while addon
// eligibility keeps seeing the raw UI
func TestMinimumUISplit(t *testing.T) {
	product := uiProduct("10")
	product.MinimumUI = 60
	product.AllowedAddons = []string{"addon-narrow"}

	// Eligible only below UI 55; raw ui is 50, clamped billing ui is 60.
	addons := map[string]*catalog.Addon{
		"addon-narrow": {
			ID:           "addon-narrow",
			Name:         "Narrow Frame Kit",
			PricingModel: catalog.PricingModelFlat,
			FlatPrice:    dec("25"),
			Mandatory:    true,
			MaxSize:      intp(55),
		},
	}

	item, err := CalculateLineItem(product, 30, 20, nil, addons)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if item.UI != 60 {
		t.Errorf("effective ui = %d, want 60", item.UI)
	}
	if !item.BasePrice.Equal(decimal.NewFromInt(600)) {
		t.Errorf("basePrice = %s, want 600 (billed at minimum ui)", item.BasePrice)
	}
	// The addon allows up to UI 55. Raw ui 50 passes; if eligibility used
	// the clamped 60 the addon would be dropped.
	if len(item.AppliedAddons) != 1 {
		t.Fatalf("expected the narrow addon to stay eligible at raw ui 50, got %v", item.AppliedAddons)
	}
}

// TestUIAddonsBillAtEffectiveUI proves UI-model addon prices use the
// clamped UI, not the raw one
func TestUIAddonsBillAtEffectiveUI(t *testing.T) {
	product := uiProduct("10")
	product.MinimumUI = 60

	addons := map[string]*catalog.Addon{
		"addon-grid": {
			ID:           "addon-grid",
			Name:         "Grid Pattern",
			PricingModel: catalog.PricingModelUI,
			UIRate:       dec("2"),
		},
	}

	item, err := CalculateLineItem(product, 30, 20, []string{"addon-grid"}, addons)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(item.AppliedAddons) != 1 {
		t.Fatalf("expected applied addon, got %v", item.AppliedAddons)
	}
	if !item.AppliedAddons[0].Price.Equal(decimal.NewFromInt(120)) {
		t.Errorf("addon price = %s, want 120 (2 x effective ui 60)", item.AppliedAddons[0].Price)
	}
}

// TestMandatoryAddonCannotBeOmitted proves mandatory addons apply without
// selection
func TestMandatoryAddonCannotBeOmitted(t *testing.T) {
	product := uiProduct("10")
	product.AllowedAddons = []string{"addon-tempered"}

	addons := map[string]*catalog.Addon{
		"addon-tempered": {
			ID:           "addon-tempered",
			Name:         "Tempered Glass",
			PricingModel: catalog.PricingModelFlat,
			FlatPrice:    dec("75"),
			Mandatory:    true,
		},
	}

	// Intentionally NOT selected
	item, err := CalculateLineItem(product, 30, 20, nil, addons)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(item.AppliedAddons) != 1 || item.AppliedAddons[0].ID != "addon-tempered" {
		t.Fatalf("mandatory addon missing from appliedAddons: %v", item.AppliedAddons)
	}
	if !item.AddonTotal.Equal(decimal.NewFromInt(75)) {
		t.Errorf("addonTotal = %s, want 75", item.AddonTotal)
	}
	if !item.ParTotal.Equal(decimal.NewFromInt(575)) {
		t.Errorf("lineItemParTotal = %s, want 575", item.ParTotal)
	}
}

// TestMandatorySelectedDeduplicated proves selecting a mandatory addon does
// not double-charge it
func TestMandatorySelectedDeduplicated(t *testing.T) {
	product := uiProduct("10")
	product.AllowedAddons = []string{"addon-tempered"}

	addons := map[string]*catalog.Addon{
		"addon-tempered": {
			ID:           "addon-tempered",
			Name:         "Tempered Glass",
			PricingModel: catalog.PricingModelFlat,
			FlatPrice:    dec("75"),
			Mandatory:    true,
		},
	}

	item, err := CalculateLineItem(product, 30, 20, []string{"addon-tempered"}, addons)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(item.AppliedAddons) != 1 {
		t.Fatalf("expected single application, got %v", item.AppliedAddons)
	}
	if !item.AddonTotal.Equal(decimal.NewFromInt(75)) {
		t.Errorf("addonTotal = %s, want 75 (charged once)", item.AddonTotal)
	}
}

// TestExclusiveGroupConflictFails proves two addons sharing a group are a
// hard error, not a silent drop
func TestExclusiveGroupConflictFails(t *testing.T) {
	product := uiProduct("10")

	addons := map[string]*catalog.Addon{
		"glass-lowe": {
			ID: "glass-lowe", Name: "Low-E", PricingModel: catalog.PricingModelFlat,
			FlatPrice: dec("40"), ExclusiveGroup: "glass",
		},
		"glass-tinted": {
			ID: "glass-tinted", Name: "Tinted", PricingModel: catalog.PricingModelFlat,
			FlatPrice: dec("55"), ExclusiveGroup: "glass",
		},
	}

	_, err := CalculateLineItem(product, 30, 20, []string{"glass-lowe", "glass-tinted"}, addons)
	if err == nil {
		t.Fatal("expected ExclusiveGroupConflict, got nil")
	}
	if !errors.IsType(err, errors.TypeExclusiveGroupConflict) {
		t.Fatalf("expected EXCLUSIVE_GROUP_CONFLICT, got %v", err)
	}
	if !strings.Contains(err.Error(), "glass") {
		t.Errorf("conflict error should name the group: %v", err)
	}
}

// TestUnknownAndIneligibleAddonsSkippedSilently proves bad selections never
// abort the line item
func TestUnknownAndIneligibleAddonsSkippedSilently(t *testing.T) {
	product := uiProduct("10")

	addons := map[string]*catalog.Addon{
		"addon-doors-only": {
			ID: "addon-doors-only", Name: "Threshold", PricingModel: catalog.PricingModelFlat,
			FlatPrice: dec("30"), AllowedProductTypes: []string{"door"},
		},
	}

	item, err := CalculateLineItem(product, 30, 20, []string{"no-such-addon", "addon-doors-only"}, addons)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(item.AppliedAddons) != 0 {
		t.Errorf("expected no applied addons, got %v", item.AppliedAddons)
	}
	if !item.AddonTotal.IsZero() {
		t.Errorf("addonTotal = %s, want 0", item.AddonTotal)
	}
}

// TestUnknownPricingModelFails proves bad catalog data surfaces as
// InvalidConfiguration instead of a wrong price
func TestUnknownPricingModelFails(t *testing.T) {
	product := uiProduct("10")
	product.PricingModel = "SQFT"

	_, err := CalculateLineItem(product, 30, 20, nil, nil)
	if err == nil {
		t.Fatal("expected InvalidConfiguration, got nil")
	}
	if !errors.IsType(err, errors.TypeInvalidConfiguration) {
		t.Fatalf("expected INVALID_CONFIGURATION, got %v", err)
	}
}

// TestMissingRateFails proves a UI product without a rate cannot price
func TestMissingRateFails(t *testing.T) {
	product := uiProduct("10")
	product.UIRate = nil

	_, err := CalculateLineItem(product, 30, 20, nil, nil)
	if !errors.IsType(err, errors.TypeInvalidConfiguration) {
		t.Fatalf("expected INVALID_CONFIGURATION, got %v", err)
	}
}

// TestFlatProductIgnoresSize proves FLAT pricing is size-independent
func TestFlatProductIgnoresSize(t *testing.T) {
	product := &catalog.Product{
		ID: "prod-entry", Name: "Entry Door", ProductLineID: "line-door",
		PricingModel: catalog.PricingModelFlat, FlatPrice: dec("899.50"),
	}

	small, err := CalculateLineItem(product, 30, 20, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	large, err := CalculateLineItem(product, 48, 96, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !small.BasePrice.Equal(large.BasePrice) {
		t.Errorf("flat price varied with size: %s vs %s", small.BasePrice, large.BasePrice)
	}
	if !small.BasePrice.Equal(decimal.RequireFromString("899.50")) {
		t.Errorf("basePrice = %s, want 899.50", small.BasePrice)
	}
}

// TestAddonEligibilityClauses walks every AND clause of IsAddonAllowed
func TestAddonEligibilityClauses(t *testing.T) {
	product := &catalog.Product{
		ID: "prod-dh", ProductLineID: "line-400", ProductType: "window",
	}

	cases := []struct {
		name  string
		addon catalog.Addon
		ui    int
		want  bool
	}{
		{"unrestricted", catalog.Addon{}, 50, true},
		{"type match", catalog.Addon{AllowedProductTypes: []string{"window", "patio-door"}}, 50, true},
		{"type mismatch", catalog.Addon{AllowedProductTypes: []string{"door"}}, 50, false},
		{"line match", catalog.Addon{AllowedProductLines: []string{"line-400"}}, 50, true},
		{"line mismatch", catalog.Addon{AllowedProductLines: []string{"line-200"}}, 50, false},
		{"under max", catalog.Addon{MaxSize: intp(60)}, 50, true},
		{"at max", catalog.Addon{MaxSize: intp(50)}, 50, true},
		{"over max", catalog.Addon{MaxSize: intp(49)}, 50, false},
		{"at min", catalog.Addon{MinSize: intp(50)}, 50, true},
		{"under min", catalog.Addon{MinSize: intp(51)}, 50, false},
		{"all clauses pass", catalog.Addon{AllowedProductTypes: []string{"window"}, AllowedProductLines: []string{"line-400"}, MinSize: intp(40), MaxSize: intp(60)}, 50, true},
		{"one clause fails", catalog.Addon{AllowedProductTypes: []string{"window"}, AllowedProductLines: []string{"line-400"}, MinSize: intp(40), MaxSize: intp(45)}, 50, false},
	}

	for _, tc := range cases {
		if got := IsAddonAllowed(&tc.addon, product, tc.ui); got != tc.want {
			t.Errorf("%s: IsAddonAllowed = %v, want %v", tc.name, got, tc.want)
		}
	}
}

// TestEligibilityTypeFallback proves the productType fallback chain feeds
// the type clause
func TestEligibilityTypeFallback(t *testing.T) {
	addon := &catalog.Addon{AllowedProductTypes: []string{"WIN"}}
	product := &catalog.Product{ProductTypeCode: "WIN"}

	if !IsAddonAllowed(addon, product, 50) {
		t.Error("expected productTypeCode fallback to satisfy the type clause")
	}

	product.ProductType = "window"
	if IsAddonAllowed(addon, product, 50) {
		t.Error("productType should shadow productTypeCode once set")
	}
}

// TestAvailableAddonsFilters proves the catalog filter and its stable order
func TestAvailableAddonsFilters(t *testing.T) {
	product := &catalog.Product{ID: "prod-dh", ProductLineID: "line-400", ProductType: "window"}
	addons := map[string]*catalog.Addon{
		"c-screen": {ID: "c-screen"},
		"a-lowe":   {ID: "a-lowe"},
		"b-doors":  {ID: "b-doors", AllowedProductTypes: []string{"door"}},
	}

	got := AvailableAddons(product, 50, addons)
	want := []string{"a-lowe", "c-screen"}
	if len(got) != len(want) {
		t.Fatalf("AvailableAddons = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("AvailableAddons = %v, want %v", got, want)
		}
	}
}

// TestQuoteTotals proves par, job addon, and uplift accumulation
func TestQuoteTotals(t *testing.T) {
	items := []LineItem{
		{ParTotal: decimal.NewFromInt(500)},
		{ParTotal: decimal.NewFromInt(325)},
	}
	jobAddons := []AppliedAddon{
		{ID: "job-delivery", Name: "Delivery", Price: decimal.NewFromInt(150)},
		{ID: "job-permit", Name: "Permit"}, // no price set, counts as 0
	}

	totals, err := CalculateQuote(items, jobAddons, decimal.NewFromInt(200))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !totals.TotalParPrice.Equal(decimal.NewFromInt(825)) {
		t.Errorf("totalParPrice = %s, want 825", totals.TotalParPrice)
	}
	if !totals.JobAddonTotal.Equal(decimal.NewFromInt(150)) {
		t.Errorf("jobAddonTotal = %s, want 150", totals.JobAddonTotal)
	}
	if !totals.FinalPrice.Equal(decimal.NewFromInt(1175)) {
		t.Errorf("finalPrice = %s, want 1175", totals.FinalPrice)
	}
}

// TestNegativeUpliftFails proves negative margin is rejected regardless of
// line items
func TestNegativeUpliftFails(t *testing.T) {
	_, err := CalculateQuote(nil, nil, decimal.NewFromInt(-1))
	if err == nil {
		t.Fatal("expected NegativeUplift, got nil")
	}
	if !errors.IsType(err, errors.TypeNegativeUplift) {
		t.Fatalf("expected NEGATIVE_UPLIFT, got %v", err)
	}
}

// TestZeroUpliftHoldsFloor proves the final price equals par at zero uplift
func TestZeroUpliftHoldsFloor(t *testing.T) {
	items := []LineItem{{ParTotal: decimal.NewFromInt(500)}}
	totals, err := CalculateQuote(items, nil, decimal.Zero)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !totals.FinalPrice.Equal(totals.TotalParPrice) {
		t.Errorf("finalPrice %s != totalParPrice %s at zero uplift", totals.FinalPrice, totals.TotalParPrice)
	}
}

// TestValidateSizeReturnsAllViolations proves every violated bound is
// reported, not just the first
func TestValidateSizeReturnsAllViolations(t *testing.T) {
	product := &catalog.Product{
		SizeLimits: &catalog.SizeLimits{
			MinWidth:  floatp(20),
			MaxWidth:  floatp(48),
			MinHeight: floatp(24),
			MaxHeight: floatp(72),
		},
	}

	result := ValidateSize(product, 10, 100)
	if result.Valid {
		t.Fatal("expected invalid result")
	}
	if len(result.Errors) != 2 {
		t.Fatalf("expected 2 violations (width low, height high), got %d: %v", len(result.Errors), result.Errors)
	}
}

// TestValidateSizeUnconstrained proves missing limits validate anything
func TestValidateSizeUnconstrained(t *testing.T) {
	result := ValidateSize(&catalog.Product{}, 1, 10000)
	if !result.Valid || len(result.Errors) != 0 {
		t.Errorf("expected valid result with no limits, got %+v", result)
	}
}

// TestValidateUIBounds proves UI bound checking collects all violations
func TestValidateUIBounds(t *testing.T) {
	product := &catalog.Product{MinimumUI: 40, MaximumUI: intp(120)}

	if r := ValidateUI(product, 80); !r.Valid {
		t.Errorf("80 should be in bounds: %+v", r)
	}
	if r := ValidateUI(product, 30); r.Valid || len(r.Errors) != 1 {
		t.Errorf("30 should violate the minimum: %+v", r)
	}
	if r := ValidateUI(product, 130); r.Valid || len(r.Errors) != 1 {
		t.Errorf("130 should violate the maximum: %+v", r)
	}
}

func floatp(f float64) *float64 { return &f }
