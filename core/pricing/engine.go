// Package pricing - Line item and quote calculation
package pricing

import (
	"github.com/shopspring/decimal"

	"fenquote/core/catalog"
	"fenquote/internal/errors"
)

// AppliedAddon records one addon applied to a line item or job.
// Hidden addons still contribute to totals; hiding is presentation-only.
type AppliedAddon struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
	Hidden bool            `json:"hidden"`
}

// LineItem is the computed pricing for one configured unit.
// UI holds the effective (minimum-clamped) United Inches the price was
// billed at. ProductID through SquareFootage carry reporting context.
type LineItem struct {
	ProductID     string          `json:"productId,omitempty"`
	ProductName   string          `json:"productName,omitempty"`
	Width         float64         `json:"width,omitempty"`
	Height        float64         `json:"height,omitempty"`
	SquareFootage float64         `json:"squareFootage,omitempty"`
	UI            int             `json:"ui"`
	BasePrice     decimal.Decimal `json:"basePrice"`
	AddonTotal    decimal.Decimal `json:"addonTotal"`
	ParTotal      decimal.Decimal `json:"lineItemParTotal"`
	AppliedAddons []AppliedAddon  `json:"appliedAddons"`
}

// QuoteTotals is the computed pricing for a whole quote
type QuoteTotals struct {
	TotalParPrice decimal.Decimal `json:"totalParPrice"`
	JobAddonTotal decimal.Decimal `json:"jobAddonTotal"`
	SalesUplift   decimal.Decimal `json:"salesUplift"`
	FinalPrice    decimal.Decimal `json:"finalPrice"`
}

// CalculateLineItem prices one configured unit. Mandatory addons in the
// product's allowed set apply even when not selected; unknown or ineligible
// addon ids are skipped silently; a second addon from an exclusive group is
// a hard error. Any error aborts the whole computation with no partial result.
func CalculateLineItem(product *catalog.Product, width, height float64, selectedAddonIDs []string, addons map[string]*catalog.Addon) (*LineItem, error) {
	ui := UnitedInches(width, height)
	effectiveUI := EffectiveUI(ui, product.MinimumUI)

	basePrice, err := basePriceFor(product, effectiveUI)
	if err != nil {
		return nil, err
	}

	// Union of mandatory allowed addons and caller selections, mandatory
	// first, deduplicated.
	applyIDs := make([]string, 0, len(product.AllowedAddons)+len(selectedAddonIDs))
	seen := make(map[string]bool)
	for _, id := range product.AllowedAddons {
		if addon, ok := addons[id]; ok && addon.Mandatory && !seen[id] {
			seen[id] = true
			applyIDs = append(applyIDs, id)
		}
	}
	for _, id := range selectedAddonIDs {
		if !seen[id] {
			seen[id] = true
			applyIDs = append(applyIDs, id)
		}
	}

	addonTotal := decimal.Zero
	applied := make([]AppliedAddon, 0, len(applyIDs))
	usedGroups := make(map[string]string)

	for _, id := range applyIDs {
		addon, ok := addons[id]
		if !ok {
			continue
		}
		// Eligibility uses the raw UI, not the clamped billing UI.
		if !IsAddonAllowed(addon, product, ui) {
			continue
		}
		if group := addon.ExclusiveGroup; group != "" {
			if _, taken := usedGroups[group]; taken {
				return nil, errors.ExclusiveGroupConflict(group, id)
			}
			usedGroups[group] = id
		}

		price, err := addonPriceFor(addon, effectiveUI)
		if err != nil {
			return nil, err
		}
		addonTotal = addonTotal.Add(price)
		applied = append(applied, AppliedAddon{
			ID:     id,
			Name:   addon.Name,
			Price:  price,
			Hidden: addon.HiddenFromCustomer,
		})
	}

	return &LineItem{
		ProductID:     product.ID,
		ProductName:   product.Name,
		Width:         width,
		Height:        height,
		SquareFootage: SquareFootage(width, height),
		UI:            effectiveUI,
		BasePrice:     basePrice,
		AddonTotal:    addonTotal,
		ParTotal:      basePrice.Add(addonTotal),
		AppliedAddons: applied,
	}, nil
}

// CalculateQuote totals line items, job-based addons, and sales uplift.
// A negative uplift is never valid. The final price must never undercut
// the par total; the floor check is unreachable under current inputs but
// stays as an invariant assertion.
func CalculateQuote(lineItems []LineItem, jobAddons []AppliedAddon, salesUplift decimal.Decimal) (*QuoteTotals, error) {
	if salesUplift.IsNegative() {
		return nil, errors.NegativeUplift(salesUplift.String())
	}

	totalPar := decimal.Zero
	for i := range lineItems {
		totalPar = totalPar.Add(lineItems[i].ParTotal)
	}

	jobTotal := decimal.Zero
	for i := range jobAddons {
		jobTotal = jobTotal.Add(jobAddons[i].Price)
	}

	finalPrice := totalPar.Add(jobTotal).Add(salesUplift)
	if finalPrice.LessThan(totalPar) {
		return nil, errors.PriceFloorViolation(finalPrice.String(), totalPar.String())
	}

	return &QuoteTotals{
		TotalParPrice: totalPar,
		JobAddonTotal: jobTotal,
		SalesUplift:   salesUplift,
		FinalPrice:    finalPrice,
	}, nil
}

func basePriceFor(product *catalog.Product, effectiveUI int) (decimal.Decimal, error) {
	switch product.PricingModel {
	case catalog.PricingModelUI:
		if product.UIRate == nil {
			return decimal.Zero, errors.InvalidConfiguration("product", product.ID, "UI pricing without uiRate")
		}
		return decimal.NewFromInt(int64(effectiveUI)).Mul(*product.UIRate), nil
	case catalog.PricingModelFlat:
		if product.FlatPrice == nil {
			return decimal.Zero, errors.InvalidConfiguration("product", product.ID, "FLAT pricing without flatPrice")
		}
		return *product.FlatPrice, nil
	default:
		return decimal.Zero, errors.InvalidConfiguration("product", product.ID, "unknown pricing model "+string(product.PricingModel))
	}
}

func addonPriceFor(addon *catalog.Addon, effectiveUI int) (decimal.Decimal, error) {
	switch addon.PricingModel {
	case catalog.PricingModelUI:
		if addon.UIRate == nil {
			return decimal.Zero, errors.InvalidConfiguration("addon", addon.ID, "UI pricing without uiRate")
		}
		return decimal.NewFromInt(int64(effectiveUI)).Mul(*addon.UIRate), nil
	case catalog.PricingModelFlat:
		if addon.FlatPrice == nil {
			return decimal.Zero, errors.InvalidConfiguration("addon", addon.ID, "FLAT pricing without flatPrice")
		}
		return *addon.FlatPrice, nil
	default:
		return decimal.Zero, errors.InvalidConfiguration("addon", addon.ID, "unknown pricing model "+string(addon.PricingModel))
	}
}
