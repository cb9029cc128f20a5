// Package pricing - Quote version immutability tests
package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"fenquote/internal/errors"
)

func sampleLineItems() []LineItem {
	return []LineItem{
		{
			ProductID: "prod-dh", UI: 50,
			BasePrice:  decimal.NewFromInt(500),
			AddonTotal: decimal.NewFromInt(75),
			ParTotal:   decimal.NewFromInt(575),
			AppliedAddons: []AppliedAddon{
				{ID: "addon-tempered", Name: "Tempered Glass", Price: decimal.NewFromInt(75)},
			},
		},
		{
			ProductID: "prod-entry", UI: 110,
			BasePrice:     decimal.RequireFromString("899.50"),
			ParTotal:      decimal.RequireFromString("899.50"),
			AppliedAddons: []AppliedAddon{},
		},
	}
}

// TestQuoteVersionRecomputesTotals proves the version captures freshly
// computed totals with locked=true
func TestQuoteVersionRecomputesTotals(t *testing.T) {
	version, err := NewQuoteVersion("quote-1", sampleLineItems(), decimal.NewFromInt(100), map[string]string{"customer": "Hale Residence"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !version.TotalParPrice.Equal(decimal.RequireFromString("1474.50")) {
		t.Errorf("totalParPrice = %s, want 1474.50", version.TotalParPrice)
	}
	if !version.FinalPrice.Equal(decimal.RequireFromString("1574.50")) {
		t.Errorf("finalPrice = %s, want 1574.50", version.FinalPrice)
	}
	if !version.Locked {
		t.Error("version must be locked at creation")
	}
	if version.QuoteID != "quote-1" {
		t.Errorf("quoteId = %s, want quote-1", version.QuoteID)
	}
	if version.Timestamp.IsZero() {
		t.Error("timestamp not stamped")
	}
	if version.Metadata["customer"] != "Hale Residence" {
		t.Errorf("metadata lost: %v", version.Metadata)
	}
}

// TestQuoteVersionDistinctIdentity proves two snapshots of identical inputs
// agree on price but never share an id
func TestQuoteVersionDistinctIdentity(t *testing.T) {
	items := sampleLineItems()

	v1, err := NewQuoteVersion("quote-1", items, decimal.NewFromInt(50), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v2, err := NewQuoteVersion("quote-1", items, decimal.NewFromInt(50), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if v1.ID == v2.ID {
		t.Errorf("two versions share id %s", v1.ID)
	}
	if !v1.FinalPrice.Equal(v2.FinalPrice) || !v1.TotalParPrice.Equal(v2.TotalParPrice) {
		t.Errorf("identical inputs priced differently: %s/%s vs %s/%s",
			v1.TotalParPrice, v1.FinalPrice, v2.TotalParPrice, v2.FinalPrice)
	}
}

// TestQuoteVersionIsolatedFromCallerMutation proves the snapshot is a deep
// copy, decoupled from the live quote's future edits
func TestQuoteVersionIsolatedFromCallerMutation(t *testing.T) {
	items := sampleLineItems()
	version, err := NewQuoteVersion("quote-1", items, decimal.Zero, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Mutate the live quote after the snapshot
	items[0].ParTotal = decimal.NewFromInt(999999)
	items[0].AppliedAddons[0].Name = "Mutated"
	items[1].ProductID = "mutated"

	if !version.LineItems[0].ParTotal.Equal(decimal.NewFromInt(575)) {
		t.Errorf("snapshot parTotal changed to %s after caller mutation", version.LineItems[0].ParTotal)
	}
	if version.LineItems[0].AppliedAddons[0].Name != "Tempered Glass" {
		t.Errorf("snapshot addon changed to %q after caller mutation", version.LineItems[0].AppliedAddons[0].Name)
	}
	if version.LineItems[1].ProductID != "prod-entry" {
		t.Errorf("snapshot product changed to %q after caller mutation", version.LineItems[1].ProductID)
	}
}

// TestQuoteVersionRejectsNegativeUplift proves version creation enforces
// the same uplift rule as quoting
func TestQuoteVersionRejectsNegativeUplift(t *testing.T) {
	_, err := NewQuoteVersion("quote-1", sampleLineItems(), decimal.NewFromInt(-5), nil)
	if !errors.IsType(err, errors.TypeNegativeUplift) {
		t.Fatalf("expected NEGATIVE_UPLIFT, got %v", err)
	}
}

// TestDiffVersions proves the version comparison arithmetic
func TestDiffVersions(t *testing.T) {
	old := &QuoteVersion{ID: "v1", TotalParPrice: decimal.NewFromInt(1000), FinalPrice: decimal.NewFromInt(1200), LineItems: make([]LineItem, 2)}
	new := &QuoteVersion{ID: "v2", TotalParPrice: decimal.NewFromInt(1100), FinalPrice: decimal.NewFromInt(1500), LineItems: make([]LineItem, 3)}

	diff := DiffVersions(old, new)
	if !diff.FinalDelta.Equal(decimal.NewFromInt(300)) {
		t.Errorf("finalDelta = %s, want 300", diff.FinalDelta)
	}
	if !diff.ParDelta.Equal(decimal.NewFromInt(100)) {
		t.Errorf("parDelta = %s, want 100", diff.ParDelta)
	}
	if !diff.PercentChange.Equal(decimal.NewFromInt(25)) {
		t.Errorf("percentChange = %s, want 25", diff.PercentChange)
	}
	if diff.LineItemsAdded != 1 {
		t.Errorf("lineItemsAdded = %d, want 1", diff.LineItemsAdded)
	}
}

// TestDiffVersionsZeroBase proves no division blowup when the old final
// price is zero
func TestDiffVersionsZeroBase(t *testing.T) {
	old := &QuoteVersion{ID: "v1"}
	new := &QuoteVersion{ID: "v2", FinalPrice: decimal.NewFromInt(500)}

	diff := DiffVersions(old, new)
	if !diff.PercentChange.IsZero() {
		t.Errorf("percentChange = %s, want 0 for zero base", diff.PercentChange)
	}
}
