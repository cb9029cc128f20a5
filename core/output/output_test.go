// Package output - Rendering tests
// Customer mode must hide names without moving a single total.
package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"fenquote/core/pricing"
	"fenquote/internal/errors"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func pricedQuote() *QuoteResult {
	return &QuoteResult{
		QuoteID:   "quote-1",
		QuoteName: "Smith kitchen",
		Pricing: &pricing.QuotePricing{
			LineItems: []pricing.LineItem{{
				ProductID:   "prod-1",
				ProductName: "Double Hung",
				Width:       30,
				Height:      20,
				UI:          50,
				BasePrice:   dec("500"),
				AddonTotal:  dec("70"),
				ParTotal:    dec("570"),
				AppliedAddons: []pricing.AppliedAddon{
					{ID: "addon-lowe", Name: "Low-E Glass", Price: dec("45")},
					{ID: "addon-prep", Name: "Dealer Prep", Price: dec("25"), Hidden: true},
				},
			}},
			JobAddons: []pricing.AppliedAddon{
				{ID: "addon-delivery", Name: "Job Site Delivery", Price: dec("150"), Hidden: true},
			},
			Totals: pricing.QuoteTotals{
				TotalParPrice: dec("570"),
				JobAddonTotal: dec("150"),
				SalesUplift:   dec("100"),
				FinalPrice:    dec("820"),
			},
		},
	}
}

// TestCLIRenderDealerView proves the dealer rendering itemizes
// everything, hidden addons included, with their hidden flag visible.
func TestCLIRenderDealerView(t *testing.T) {
	f, err := New(FormatCLI, Options{NoColor: true})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	var buf bytes.Buffer
	if err := f.Render(&buf, pricedQuote()); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"Smith kitchen",
		"Double Hung",
		`30x20"`,
		"Low-E Glass",
		"Dealer Prep",
		"(hidden)",
		"Job Site Delivery",
		"$570.00",
		"$820.00",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Dealer view missing %q\n%s", want, out)
		}
	}
	if strings.Contains(out, "\033") {
		t.Error("NoColor output still contains ANSI escapes")
	}
}

// TestCLIRenderCustomerMode proves hidden addons disappear from the
// itemization while every total stays put.
func TestCLIRenderCustomerMode(t *testing.T) {
	f, err := New(FormatCLI, Options{Customer: true, NoColor: true})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	var buf bytes.Buffer
	if err := f.Render(&buf, pricedQuote()); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	out := buf.String()

	for _, hiddenName := range []string{"Dealer Prep", "Job Site Delivery", "(hidden)"} {
		if strings.Contains(out, hiddenName) {
			t.Errorf("Customer view leaked %q\n%s", hiddenName, out)
		}
	}
	if !strings.Contains(out, "Low-E Glass") {
		t.Error("Customer view dropped a visible addon")
	}
	// The hidden prices are still in there. $570 par includes the $25
	// prep, $820 final includes the $150 delivery.
	if !strings.Contains(out, "$570.00") || !strings.Contains(out, "$820.00") {
		t.Errorf("Customer view moved the totals\n%s", out)
	}
	t.Log("Hidden addons bill invisibly: names gone, money present")
}

// TestCustomerViewLeavesOriginalAlone proves the presentation filter is
// a copy, not a mutation.
func TestCustomerViewLeavesOriginalAlone(t *testing.T) {
	result := pricedQuote()
	view := CustomerView(result.Pricing)

	if len(result.Pricing.LineItems[0].AppliedAddons) != 2 {
		t.Fatal("CustomerView mutated the source line items")
	}
	if len(result.Pricing.JobAddons) != 1 {
		t.Fatal("CustomerView mutated the source job addons")
	}
	if len(view.LineItems[0].AppliedAddons) != 1 {
		t.Fatalf("Expected 1 visible addon, got %d", len(view.LineItems[0].AppliedAddons))
	}
	if len(view.JobAddons) != 0 {
		t.Fatalf("Expected no visible job addons, got %d", len(view.JobAddons))
	}
	if !view.Totals.FinalPrice.Equal(result.Pricing.Totals.FinalPrice) {
		t.Error("CustomerView changed the final price")
	}
}

// TestJSONRenderCustomerMode proves the JSON rendering applies the same
// filter, so integrations cannot leak hidden names either.
func TestJSONRenderCustomerMode(t *testing.T) {
	f, err := New(FormatJSON, Options{Customer: true})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	var buf bytes.Buffer
	if err := f.Render(&buf, pricedQuote()); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	var decoded QuoteResult
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("Rendered JSON does not parse: %v", err)
	}
	if len(decoded.Pricing.LineItems[0].AppliedAddons) != 1 {
		t.Errorf("JSON customer view kept hidden addons: %+v", decoded.Pricing.LineItems[0].AppliedAddons)
	}
	if !decoded.Pricing.Totals.FinalPrice.Equal(dec("820")) {
		t.Errorf("JSON totals wrong: %s", decoded.Pricing.Totals.FinalPrice)
	}
	if strings.Contains(buf.String(), "Dealer Prep") {
		t.Error("JSON customer view leaked a hidden addon name")
	}
}

// TestNewUnknownFormat proves format selection fails loudly.
func TestNewUnknownFormat(t *testing.T) {
	if _, err := New(Format("yaml"), Options{}); !errors.IsType(err, errors.TypeInput) {
		t.Fatalf("Expected INPUT_ERROR, got %v", err)
	}

	cli, err := New(FormatCLI, Options{})
	if err != nil || cli.Format() != FormatCLI {
		t.Errorf("FormatCLI selection broken: %v", err)
	}
	js, err := New(FormatJSON, Options{})
	if err != nil || js.Format() != FormatJSON {
		t.Errorf("FormatJSON selection broken: %v", err)
	}
}

// TestConfirm proves only an explicit yes proceeds.
func TestConfirm(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"yes\n", true},
		{"y\n", true},
		{"Y\n", true},
		{"no\n", false},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}
	for _, tc := range cases {
		var buf bytes.Buffer
		w := NewWriter(&buf, true)
		got := w.Confirm(strings.NewReader(tc.input), "Publish this version?")
		if got != tc.want {
			t.Errorf("Confirm(%q) = %v, want %v", tc.input, got, tc.want)
		}
		if !strings.Contains(buf.String(), "[y/N]") {
			t.Errorf("Prompt missing [y/N]: %q", buf.String())
		}
	}
}

// TestVersionDiffViewRenders proves the diff view reports direction and
// magnitude.
func TestVersionDiffViewRenders(t *testing.T) {
	diff := &pricing.VersionDiff{
		OldID:          "v-old",
		NewID:          "v-new",
		OldFinalPrice:  dec("545"),
		NewFinalPrice:  dec("650"),
		FinalDelta:     dec("105"),
		ParDelta:       dec("105"),
		PercentChange:  dec("19.27"),
		LineItemsAdded: 1,
	}

	var buf bytes.Buffer
	w := NewWriter(&buf, true)
	w.NewVersionDiffView(diff).Render()
	out := buf.String()

	for _, want := range []string{
		"v-old",
		"v-new",
		"$545.00",
		"$650.00",
		"+$105.00",
		"19.27%",
		"1 line item(s) added",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Diff view missing %q\n%s", want, out)
		}
	}
}
