// Package pricing - Quote aggregate
// A Quote stores the customer's configuration requests, not computed
// prices. Pricing happens against a catalog at call time; locked history
// lives in QuoteVersions.
package pricing

import (
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fenquote/core/catalog"
	"fenquote/internal/errors"
)

// LineItemRequest is one configured unit as the customer asked for it
type LineItemRequest struct {
	ProductID        string   `json:"productId"`
	Width            float64  `json:"width"`
	Height           float64  `json:"height"`
	SelectedAddonIDs []string `json:"selectedAddonIds,omitempty"`
}

// Quote is the persisted request state for one customer quote
type Quote struct {
	ID          string            `json:"id"`
	Name        string            `json:"name,omitempty"`
	LineItems   []LineItemRequest `json:"lineItems"`
	JobAddonIDs []string          `json:"jobAddonIds,omitempty"`
	SalesUplift decimal.Decimal   `json:"salesUplift"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// NewQuote creates an empty quote with a fresh identity
func NewQuote(name string) *Quote {
	now := time.Now().UTC()
	return &Quote{
		ID:          uuid.NewString(),
		Name:        name,
		SalesUplift: decimal.Zero,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Clone returns a deep copy
func (q *Quote) Clone() *Quote {
	if q == nil {
		return nil
	}
	out := *q
	if q.LineItems != nil {
		out.LineItems = make([]LineItemRequest, len(q.LineItems))
		for i, li := range q.LineItems {
			out.LineItems[i] = li
			if li.SelectedAddonIDs != nil {
				out.LineItems[i].SelectedAddonIDs = append([]string(nil), li.SelectedAddonIDs...)
			}
		}
	}
	if q.JobAddonIDs != nil {
		out.JobAddonIDs = append([]string(nil), q.JobAddonIDs...)
	}
	if q.Metadata != nil {
		out.Metadata = make(map[string]string, len(q.Metadata))
		for k, v := range q.Metadata {
			out.Metadata[k] = v
		}
	}
	return &out
}

// QuotePricing is the full computed result for a quote request
type QuotePricing struct {
	LineItems []LineItem     `json:"lineItems"`
	JobAddons []AppliedAddon `json:"jobAddons,omitempty"`
	Totals    QuoteTotals    `json:"totals"`
}

// PriceQuote resolves and prices every line of a quote against a catalog.
// A line naming an unknown product is a hard error; a quote cannot be
// partially priced.
func PriceQuote(cat *catalog.Catalog, q *Quote) (*QuotePricing, error) {
	items := make([]LineItem, 0, len(q.LineItems))
	for i, req := range q.LineItems {
		product, ok := cat.Product(req.ProductID)
		if !ok {
			return nil, errors.InvalidConfiguration("quote line", strconv.Itoa(i+1), "unknown product "+req.ProductID)
		}
		li, err := CalculateLineItem(product, req.Width, req.Height, req.SelectedAddonIDs, cat.Addons)
		if err != nil {
			return nil, err
		}
		items = append(items, *li)
	}

	jobAddons := ResolveJobAddons(cat, q.JobAddonIDs)

	totals, err := CalculateQuote(items, jobAddons, q.SalesUplift)
	if err != nil {
		return nil, err
	}

	return &QuotePricing{
		LineItems: items,
		JobAddons: jobAddons,
		Totals:    *totals,
	}, nil
}

// ResolveJobAddons turns job addon selections into priced applications.
// Only isJobBased addons qualify; unknown ids are skipped like line-level
// selections. Job addons bill flat; one without a flatPrice contributes
// zero because there is no line UI to rate against.
func ResolveJobAddons(cat *catalog.Catalog, ids []string) []AppliedAddon {
	var out []AppliedAddon
	for _, id := range ids {
		addon, ok := cat.Addon(id)
		if !ok || !addon.IsJobBased {
			continue
		}
		price := decimal.Zero
		if addon.FlatPrice != nil {
			price = *addon.FlatPrice
		}
		out = append(out, AppliedAddon{
			ID:     id,
			Name:   addon.Name,
			Price:  price,
			Hidden: addon.HiddenFromCustomer,
		})
	}
	return out
}
