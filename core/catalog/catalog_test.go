// Package catalog - Catalog integrity tests
package catalog

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func intp(i int) *int { return &i }

func floatp(f float64) *float64 { return &f }

func testCatalog() *Catalog {
	c := New()
	c.Manufacturers["mfr-1"] = &Manufacturer{ID: "mfr-1", Name: "Climate Shield"}
	c.ProductLines["line-1"] = &ProductLine{ID: "line-1", ManufacturerID: "mfr-1", Name: "Series 400"}
	c.Products["prod-1"] = &Product{
		ID:            "prod-1",
		ProductLineID: "line-1",
		ProductType:   "window",
		Name:          "Double Hung",
		PricingModel:  PricingModelUI,
		UIRate:        dec("10"),
		MinimumUI:     40,
		MaximumUI:     intp(120),
		SizeLimits:    &SizeLimits{MinWidth: floatp(12), MaxWidth: floatp(60)},
		AllowedAddons: []string{"addon-1"},
	}
	c.Addons["addon-1"] = &Addon{
		ID:           "addon-1",
		Name:         "Low-E Glass",
		PricingModel: PricingModelFlat,
		FlatPrice:    dec("45"),
	}
	return c
}

// TestCloneIsIndependent proves mutating a clone never leaks into the source
func TestCloneIsIndependent(t *testing.T) {
	original := testCatalog()
	clone := original.Clone()

	clone.Products["prod-1"].Name = "Mutated"
	*clone.Products["prod-1"].UIRate = decimal.RequireFromString("999")
	clone.Products["prod-1"].AllowedAddons[0] = "mutated-addon"
	*clone.Products["prod-1"].SizeLimits.MinWidth = 1
	clone.Addons["addon-2"] = &Addon{ID: "addon-2", Name: "New", PricingModel: PricingModelFlat, FlatPrice: dec("1")}

	if original.Products["prod-1"].Name != "Double Hung" {
		t.Error("clone mutation leaked into original product name")
	}
	if !original.Products["prod-1"].UIRate.Equal(decimal.RequireFromString("10")) {
		t.Errorf("clone mutation leaked into original uiRate: %s", original.Products["prod-1"].UIRate)
	}
	if original.Products["prod-1"].AllowedAddons[0] != "addon-1" {
		t.Error("clone mutation leaked into original allowedAddons")
	}
	if *original.Products["prod-1"].SizeLimits.MinWidth != 12 {
		t.Error("clone mutation leaked into original size limits")
	}
	if len(original.Addons) != 1 {
		t.Errorf("clone addon insertion leaked into original: %d addons", len(original.Addons))
	}
}

// TestNormalizeFillsNilCollections proves imported payloads with missing
// sections become usable catalogs
func TestNormalizeFillsNilCollections(t *testing.T) {
	c := (&Catalog{}).Normalize()
	if c.Manufacturers == nil || c.ProductLines == nil || c.Products == nil || c.Addons == nil {
		t.Fatal("Normalize left a nil collection")
	}
	if len(c.Products) != 0 {
		t.Errorf("expected empty products, got %d", len(c.Products))
	}
}

// TestValidateAcceptsWellFormedCatalog proves the baseline fixture is clean
func TestValidateAcceptsWellFormedCatalog(t *testing.T) {
	errs := testCatalog().Validate(DefaultValidationRules())
	if len(errs) != 0 {
		t.Fatalf("expected no violations, got %d: %v", len(errs), errs)
	}
}

// TestValidateReportsEveryViolation proves validation collects all
// violations instead of stopping at the first
func TestValidateReportsEveryViolation(t *testing.T) {
	c := testCatalog()
	c.Products["prod-1"].ProductLineID = "missing-line"
	c.Products["prod-1"].UIRate = nil
	c.Products["prod-1"].AllowedAddons = []string{"missing-addon"}
	c.Addons["addon-1"].FlatPrice = nil

	errs := c.Validate(DefaultValidationRules())
	if len(errs) != 4 {
		t.Fatalf("expected 4 violations, got %d: %v", len(errs), errs)
	}

	wantFragments := []string{"unknown product line", "UI pricing without uiRate", "FLAT pricing without flatPrice", "unknown addon"}
	for _, fragment := range wantFragments {
		found := false
		for _, err := range errs {
			if strings.Contains(err.Error(), fragment) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("no violation mentioning %q in %v", fragment, errs)
		}
	}
}

// TestValidateRejectsUnknownPricingModel proves bad enum values are caught
func TestValidateRejectsUnknownPricingModel(t *testing.T) {
	c := testCatalog()
	c.Products["prod-1"].PricingModel = "SQFT"

	errs := c.Validate(DefaultValidationRules())
	if len(errs) != 1 {
		t.Fatalf("expected 1 violation, got %d: %v", len(errs), errs)
	}
	if !strings.Contains(errs[0].Error(), "unknown pricing model") {
		t.Errorf("unexpected violation: %v", errs[0])
	}
}

// TestValidateRejectsInvertedBounds proves size bound ordering is enforced
func TestValidateRejectsInvertedBounds(t *testing.T) {
	c := testCatalog()
	c.Products["prod-1"].MaximumUI = intp(10) // below MinimumUI 40
	c.Addons["addon-1"].MinSize = intp(90)
	c.Addons["addon-1"].MaxSize = intp(50)

	errs := c.Validate(DefaultValidationRules())
	if len(errs) != 2 {
		t.Fatalf("expected 2 violations, got %d: %v", len(errs), errs)
	}
}

// TestTypeKeyFallbackChain proves productType wins, then the legacy type
// field, then productTypeCode
func TestTypeKeyFallbackChain(t *testing.T) {
	p := &Product{ProductType: "window", LegacyType: "old-window", ProductTypeCode: "WIN"}
	if p.TypeKey() != "window" {
		t.Errorf("expected productType to win, got %q", p.TypeKey())
	}

	p.ProductType = ""
	if p.TypeKey() != "old-window" {
		t.Errorf("expected fallback to legacy type, got %q", p.TypeKey())
	}

	p.LegacyType = ""
	if p.TypeKey() != "WIN" {
		t.Errorf("expected fallback to productTypeCode, got %q", p.TypeKey())
	}
}

// TestSortedAccessorsAreDeterministic proves listing order is stable by id
func TestSortedAccessorsAreDeterministic(t *testing.T) {
	c := testCatalog()
	c.Products["prod-0"] = &Product{ID: "prod-0", ProductLineID: "line-1", Name: "Casement", PricingModel: PricingModelFlat, FlatPrice: dec("300")}
	c.Products["prod-2"] = &Product{ID: "prod-2", ProductLineID: "line-1", Name: "Slider", PricingModel: PricingModelFlat, FlatPrice: dec("250")}

	products := c.SortedProducts()
	want := []string{"prod-0", "prod-1", "prod-2"}
	for i, p := range products {
		if p.ID != want[i] {
			t.Fatalf("position %d: expected %s, got %s", i, want[i], p.ID)
		}
	}
}

// TestStatsCountsCollections proves stats reflect the catalog contents
func TestStatsCountsCollections(t *testing.T) {
	c := testCatalog()
	c.Addons["addon-2"] = &Addon{ID: "addon-2", Name: "Install", PricingModel: PricingModelFlat, FlatPrice: dec("99"), Mandatory: true, IsJobBased: true}

	stats := c.Stats()
	if stats.Products != 1 || stats.Addons != 2 || stats.Manufacturers != 1 || stats.ProductLines != 1 {
		t.Errorf("unexpected counts: %+v", stats)
	}
	if stats.MandatoryAddons != 1 || stats.JobBasedAddons != 1 {
		t.Errorf("unexpected addon flags: %+v", stats)
	}
	if stats.ByLine["line-1"] != 1 {
		t.Errorf("expected 1 product in line-1, got %d", stats.ByLine["line-1"])
	}
}
