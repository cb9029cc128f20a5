package storage

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"fenquote/core/catalog"
	"fenquote/core/determinism"
	"fenquote/core/pricing"
	"fenquote/core/version"
	"fenquote/internal/errors"
)

// Bundle is the full-backup document: everything a store holds, in one
// file. It works across backends, so a file-store backup restores into
// sqlite and back.
type Bundle struct {
	ExportedAt       time.Time                          `json:"exportedAt"`
	Catalog          *catalog.Catalog                   `json:"catalog,omitempty"`
	Settings         catalog.GlobalSettings             `json:"settings"`
	Quotes           []*pricing.Quote                   `json:"quotes,omitempty"`
	QuoteVersions    map[string][]*pricing.QuoteVersion `json:"quoteVersions,omitempty"`
	PricingVersions  []*version.PricingVersion          `json:"pricingVersions,omitempty"`
	CurrentVersionID string                             `json:"currentVersionId,omitempty"`
}

// ImportReport summarizes what a bundle import actually did
type ImportReport struct {
	Quotes           int
	QuoteVersions    int
	PricingVersions  int
	Skipped          int
	RepairedProducts []string
}

// ExportBundle serializes the entire store contents. Pricing versions
// pass through the usual hash verification, so a corrupted store fails
// the export instead of poisoning the backup.
func ExportBundle(ctx context.Context, st Store) ([]byte, error) {
	cat, err := st.Catalog(ctx)
	if err != nil {
		return nil, err
	}
	settings, err := st.Settings(ctx)
	if err != nil {
		return nil, err
	}
	quotes, err := st.ListQuotes(ctx)
	if err != nil {
		return nil, err
	}

	quoteVersions := make(map[string][]*pricing.QuoteVersion)
	for _, q := range quotes {
		versions, err := st.QuoteVersions(ctx, q.ID)
		if err != nil {
			return nil, err
		}
		if len(versions) > 0 {
			quoteVersions[q.ID] = versions
		}
	}

	summaries, err := st.ListPricingVersions(ctx)
	if err != nil {
		return nil, err
	}
	var pricingVersions []*version.PricingVersion
	for _, summary := range summaries {
		v, err := st.PricingVersion(ctx, summary.ID)
		if err != nil {
			return nil, err
		}
		pricingVersions = append(pricingVersions, v)
	}

	current, err := st.CurrentVersionID(ctx)
	if err != nil {
		return nil, err
	}

	bundle := &Bundle{
		ExportedAt:       time.Now().UTC(),
		Catalog:          cat,
		Settings:         settings,
		Quotes:           quotes,
		QuoteVersions:    quoteVersions,
		PricingVersions:  pricingVersions,
		CurrentVersionID: current,
	}

	data, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return nil, errors.Internal("serializing backup bundle", err)
	}
	return data, nil
}

// ImportBundle restores a backup into the store. Versions are
// write-once, so anything already present is skipped rather than
// rewritten. Products with broken line references are repaired, never
// rejected: a legacy `lineId` is migrated to productLineId, and a
// product with no line at all is attached to the first line id in
// sorted order.
func ImportBundle(ctx context.Context, st Store, data []byte) (*ImportReport, error) {
	var bundle Bundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, errors.Parsing("backup bundle is not valid JSON", err)
	}

	report := &ImportReport{}
	report.RepairedProducts = repairLineReferences(&bundle, data)

	if bundle.Catalog != nil {
		if err := st.SaveCatalog(ctx, bundle.Catalog.Normalize()); err != nil {
			return nil, err
		}
	}
	if err := st.SaveSettings(ctx, bundle.Settings); err != nil {
		return nil, err
	}

	for _, q := range bundle.Quotes {
		if err := st.SaveQuote(ctx, q); err != nil {
			return nil, err
		}
		report.Quotes++
	}

	var err error
	determinism.RangeMapSorted(bundle.QuoteVersions, func(_ string, versions []*pricing.QuoteVersion) bool {
		for _, v := range versions {
			appendErr := st.AppendQuoteVersion(ctx, v)
			switch {
			case appendErr == nil:
				report.QuoteVersions++
			case stderrors.Is(appendErr, ErrVersionExists):
				report.Skipped++
			default:
				err = appendErr
				return false
			}
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	for _, v := range bundle.PricingVersions {
		storeErr := st.StorePricingVersion(ctx, v)
		switch {
		case storeErr == nil:
			report.PricingVersions++
		case stderrors.Is(storeErr, ErrVersionExists):
			report.Skipped++
		default:
			return nil, storeErr
		}
	}

	if bundle.CurrentVersionID != "" {
		if err := st.SetCurrentVersionID(ctx, bundle.CurrentVersionID); err != nil {
			if !errors.IsType(err, errors.TypeNotFound) {
				return nil, err
			}
		}
	}

	return report, nil
}

// lineIDProbe re-reads only the legacy lineId fields the typed
// unmarshal drops
type lineIDProbe struct {
	Catalog struct {
		Products map[string]struct {
			LineID string `json:"lineId"`
		} `json:"products"`
	} `json:"catalog"`
	PricingVersions []struct {
		ID       string `json:"id"`
		Products map[string]struct {
			LineID string `json:"lineId"`
		} `json:"products"`
	} `json:"pricingVersions"`
}

func repairLineReferences(bundle *Bundle, data []byte) []string {
	var probe lineIDProbe
	// The bundle already unmarshaled, so this cannot fail on syntax.
	// A shape mismatch just leaves the probe empty.
	_ = json.Unmarshal(data, &probe)

	var repaired []string

	if bundle.Catalog != nil {
		legacy := func(id string) string { return probe.Catalog.Products[id].LineID }
		repaired = append(repaired, repairProducts(bundle.Catalog.Products, bundle.Catalog.ProductLines, legacy)...)
	}

	for i, v := range bundle.PricingVersions {
		legacy := func(id string) string {
			if i < len(probe.PricingVersions) {
				return probe.PricingVersions[i].Products[id].LineID
			}
			return ""
		}
		repaired = append(repaired, repairProducts(v.Products, v.ProductLines, legacy)...)
	}

	determinism.SortStrings(repaired)
	return repaired
}

func repairProducts(products map[string]*catalog.Product, lines map[string]*catalog.ProductLine, legacy func(id string) string) []string {
	fallback, _ := (&catalog.Catalog{ProductLines: lines}).FirstProductLineID()

	var repaired []string
	determinism.RangeMapSorted(products, func(id string, p *catalog.Product) bool {
		if p == nil || p.ProductLineID != "" {
			return true
		}
		if lineID := legacy(id); lineID != "" {
			p.ProductLineID = lineID
			repaired = append(repaired, id)
			return true
		}
		if fallback != "" {
			p.ProductLineID = fallback
			repaired = append(repaired, id)
		}
		return true
	})
	return repaired
}
