// Package catalog - Authoritative product catalog
// Defines manufacturers, product lines, products, and addons with their
// pricing configuration. This is the source of truth for quoting.
package catalog

import (
	"github.com/shopspring/decimal"
)

// PricingModel selects how an entity is priced
type PricingModel string

const (
	// PricingModelUI prices by United Inches times a per-UI rate
	PricingModelUI PricingModel = "UI"

	// PricingModelFlat prices at a fixed amount regardless of size
	PricingModelFlat PricingModel = "FLAT"
)

// Valid reports whether the pricing model is a known value
func (m PricingModel) Valid() bool {
	return m == PricingModelUI || m == PricingModelFlat
}

// String returns the wire representation
func (m PricingModel) String() string {
	return string(m)
}

// Manufacturer is a product vendor
type Manufacturer struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Clone returns a deep copy
func (m *Manufacturer) Clone() *Manufacturer {
	if m == nil {
		return nil
	}
	c := *m
	return &c
}

// ProductLine groups products under a manufacturer
type ProductLine struct {
	ID             string `json:"id"`
	ManufacturerID string `json:"manufacturerId"`
	Name           string `json:"name"`
}

// Clone returns a deep copy
func (l *ProductLine) Clone() *ProductLine {
	if l == nil {
		return nil
	}
	c := *l
	return &c
}

// SizeLimits bounds the orderable dimensions of a product, in inches.
// A nil bound is unconstrained.
type SizeLimits struct {
	MinWidth  *float64 `json:"minWidth,omitempty"`
	MaxWidth  *float64 `json:"maxWidth,omitempty"`
	MinHeight *float64 `json:"minHeight,omitempty"`
	MaxHeight *float64 `json:"maxHeight,omitempty"`
}

// Clone returns a deep copy
func (s *SizeLimits) Clone() *SizeLimits {
	if s == nil {
		return nil
	}
	return &SizeLimits{
		MinWidth:  cloneFloat(s.MinWidth),
		MaxWidth:  cloneFloat(s.MaxWidth),
		MinHeight: cloneFloat(s.MinHeight),
		MaxHeight: cloneFloat(s.MaxHeight),
	}
}

// Product is an orderable configurable unit (a window or door style).
// Exactly one of UIRate/FlatPrice is meaningful, selected by PricingModel.
// ProductLineID and ProductType are fixed once the product exists.
type Product struct {
	ID            string `json:"id"`
	ProductLineID string `json:"productLineId"`
	ProductType   string `json:"productType,omitempty"`

	// LegacyType predates ProductType; old data bundles still carry it
	LegacyType      string           `json:"type,omitempty"`
	ProductTypeCode string           `json:"productTypeCode,omitempty"`
	Name            string           `json:"name"`
	PricingModel    PricingModel     `json:"pricingModel"`
	UIRate          *decimal.Decimal `json:"uiRate,omitempty"`
	FlatPrice       *decimal.Decimal `json:"flatPrice,omitempty"`
	MinimumUI       int              `json:"minimumUI,omitempty"`
	MaximumUI       *int             `json:"maximumUI,omitempty"`
	SizeLimits      *SizeLimits      `json:"sizeLimits,omitempty"`
	AllowedAddons   []string         `json:"allowedAddons,omitempty"`
}

// Clone returns a deep copy
func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	c := *p
	c.UIRate = cloneDecimal(p.UIRate)
	c.FlatPrice = cloneDecimal(p.FlatPrice)
	c.MaximumUI = cloneInt(p.MaximumUI)
	c.SizeLimits = p.SizeLimits.Clone()
	c.AllowedAddons = cloneStrings(p.AllowedAddons)
	return &c
}

// TypeKey returns the value addon type restrictions match against:
// ProductType, falling back to LegacyType, then ProductTypeCode.
func (p *Product) TypeKey() string {
	if p.ProductType != "" {
		return p.ProductType
	}
	if p.LegacyType != "" {
		return p.LegacyType
	}
	return p.ProductTypeCode
}

// Addon is an optional or mandatory extra applied to a line item.
// MinSize/MaxSize are compared against United Inches; the fields date from
// an era when they were documented as square feet, and the UI comparison
// is the behavior dealers have priced against ever since.
type Addon struct {
	ID                  string           `json:"id"`
	Name                string           `json:"name"`
	PricingModel        PricingModel     `json:"pricingModel"`
	UIRate              *decimal.Decimal `json:"uiRate,omitempty"`
	FlatPrice           *decimal.Decimal `json:"flatPrice,omitempty"`
	ExclusiveGroup      string           `json:"exclusiveGroup,omitempty"`
	Mandatory           bool             `json:"mandatory,omitempty"`
	HiddenFromCustomer  bool             `json:"hiddenFromCustomer,omitempty"`
	IsJobBased          bool             `json:"isJobBased,omitempty"`
	AllowedProductTypes []string         `json:"allowedProductTypes,omitempty"`
	AllowedProductLines []string         `json:"allowedProductLines,omitempty"`
	MinSize             *int             `json:"minSize,omitempty"`
	MaxSize             *int             `json:"maxSize,omitempty"`
}

// Clone returns a deep copy
func (a *Addon) Clone() *Addon {
	if a == nil {
		return nil
	}
	c := *a
	c.UIRate = cloneDecimal(a.UIRate)
	c.FlatPrice = cloneDecimal(a.FlatPrice)
	c.AllowedProductTypes = cloneStrings(a.AllowedProductTypes)
	c.AllowedProductLines = cloneStrings(a.AllowedProductLines)
	c.MinSize = cloneInt(a.MinSize)
	c.MaxSize = cloneInt(a.MaxSize)
	return &c
}

// GlobalSettings are dealer-wide preferences persisted alongside the
// catalog. They inform presentation and validation; line-item math uses
// only the product's own MinimumUI.
type GlobalSettings struct {
	MinimumUI     int               `json:"minimumUI"`
	AlertsEnabled bool              `json:"alertsEnabled"`
	Rules         map[string]string `json:"rules,omitempty"`
}

// DefaultSettings returns the settings a fresh store starts with
func DefaultSettings() GlobalSettings {
	return GlobalSettings{
		MinimumUI:     0,
		AlertsEnabled: true,
	}
}

// Clone returns a deep copy
func (g GlobalSettings) Clone() GlobalSettings {
	c := g
	if g.Rules != nil {
		c.Rules = make(map[string]string, len(g.Rules))
		for k, v := range g.Rules {
			c.Rules[k] = v
		}
	}
	return c
}

func cloneFloat(f *float64) *float64 {
	if f == nil {
		return nil
	}
	c := *f
	return &c
}

func cloneInt(i *int) *int {
	if i == nil {
		return nil
	}
	c := *i
	return &c
}

func cloneDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	c := make([]string, len(s))
	copy(c, s)
	return c
}
