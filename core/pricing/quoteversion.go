// Package pricing - Locked quote versions
package pricing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuoteVersion is IMMUTABLE after creation.
// It is the locked historical record of a quote's pricing at save time:
// once created, its pricing is never recalculated even when the catalog
// changes later. That is the guarantee that protects customers from
// retroactive repricing.
type QuoteVersion struct {
	ID            string            `json:"id"`
	QuoteID       string            `json:"quoteId"`
	Timestamp     time.Time         `json:"timestamp"`
	LineItems     []LineItem        `json:"lineItems"`
	TotalParPrice decimal.Decimal   `json:"totalParPrice"`
	SalesUplift   decimal.Decimal   `json:"salesUplift"`
	FinalPrice    decimal.Decimal   `json:"finalPrice"`
	Locked        bool              `json:"locked"`
	Metadata      map[string]string `json:"metadata,omitempty"`
}

// NewQuoteVersion recomputes totals and captures a locked snapshot of the
// line items. The copy is structural, not a serialize/deserialize round
// trip, so later mutation of the caller's slice never reaches the version.
// Each call produces a distinct id and timestamp.
func NewQuoteVersion(quoteID string, lineItems []LineItem, salesUplift decimal.Decimal, metadata map[string]string) (*QuoteVersion, error) {
	totals, err := CalculateQuote(lineItems, nil, salesUplift)
	if err != nil {
		return nil, err
	}

	return &QuoteVersion{
		ID:            uuid.NewString(),
		QuoteID:       quoteID,
		Timestamp:     time.Now().UTC(),
		LineItems:     CloneLineItems(lineItems),
		TotalParPrice: totals.TotalParPrice,
		SalesUplift:   salesUplift,
		FinalPrice:    totals.FinalPrice,
		Locked:        true,
		Metadata:      cloneMetadata(metadata),
	}, nil
}

// Clone returns a structurally independent copy of the whole version
func (v *QuoteVersion) Clone() *QuoteVersion {
	if v == nil {
		return nil
	}
	out := *v
	out.LineItems = CloneLineItems(v.LineItems)
	out.Metadata = cloneMetadata(v.Metadata)
	return &out
}

// CloneLineItems returns a structurally independent copy
func CloneLineItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	for i := range items {
		out[i] = items[i]
		out[i].AppliedAddons = make([]AppliedAddon, len(items[i].AppliedAddons))
		copy(out[i].AppliedAddons, items[i].AppliedAddons)
	}
	return out
}

func cloneMetadata(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// VersionDiff compares two locked versions of the same quote
type VersionDiff struct {
	OldID          string          `json:"oldId"`
	NewID          string          `json:"newId"`
	OldFinalPrice  decimal.Decimal `json:"oldFinalPrice"`
	NewFinalPrice  decimal.Decimal `json:"newFinalPrice"`
	FinalDelta     decimal.Decimal `json:"finalDelta"`
	ParDelta       decimal.Decimal `json:"parDelta"`
	PercentChange  decimal.Decimal `json:"percentChange"`
	LineItemsAdded int             `json:"lineItemsAdded"`
}

// DiffVersions reports how pricing moved between two versions.
// Pure computation; neither version is touched.
func DiffVersions(old, new *QuoteVersion) *VersionDiff {
	diff := &VersionDiff{
		OldID:          old.ID,
		NewID:          new.ID,
		OldFinalPrice:  old.FinalPrice,
		NewFinalPrice:  new.FinalPrice,
		FinalDelta:     new.FinalPrice.Sub(old.FinalPrice),
		ParDelta:       new.TotalParPrice.Sub(old.TotalParPrice),
		LineItemsAdded: len(new.LineItems) - len(old.LineItems),
	}
	if !old.FinalPrice.IsZero() {
		diff.PercentChange = diff.FinalDelta.Div(old.FinalPrice).Mul(decimal.NewFromInt(100)).Round(2)
	}
	return diff
}
