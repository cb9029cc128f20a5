// Package catalog - Catalog collections
// The working catalog holds the four entity collections keyed by id.
package catalog

import (
	"fenquote/core/determinism"
)

// Catalog is the complete set of priceable entities.
// Collections are maps keyed by entity id; use the Sorted accessors wherever
// iteration order is observable.
type Catalog struct {
	Manufacturers map[string]*Manufacturer `json:"manufacturers"`
	ProductLines  map[string]*ProductLine  `json:"productLines"`
	Products      map[string]*Product      `json:"products"`
	Addons        map[string]*Addon        `json:"addons"`
}

// New creates an empty catalog
func New() *Catalog {
	return &Catalog{
		Manufacturers: make(map[string]*Manufacturer),
		ProductLines:  make(map[string]*ProductLine),
		Products:      make(map[string]*Product),
		Addons:        make(map[string]*Addon),
	}
}

// Normalize replaces nil collections with empty ones.
// Imported payloads may omit sections entirely.
func (c *Catalog) Normalize() *Catalog {
	if c.Manufacturers == nil {
		c.Manufacturers = make(map[string]*Manufacturer)
	}
	if c.ProductLines == nil {
		c.ProductLines = make(map[string]*ProductLine)
	}
	if c.Products == nil {
		c.Products = make(map[string]*Product)
	}
	if c.Addons == nil {
		c.Addons = make(map[string]*Addon)
	}
	return c
}

// Clone returns a structurally independent deep copy
func (c *Catalog) Clone() *Catalog {
	clone := New()
	for id, m := range c.Manufacturers {
		clone.Manufacturers[id] = m.Clone()
	}
	for id, l := range c.ProductLines {
		clone.ProductLines[id] = l.Clone()
	}
	for id, p := range c.Products {
		clone.Products[id] = p.Clone()
	}
	for id, a := range c.Addons {
		clone.Addons[id] = a.Clone()
	}
	return clone
}

// Manufacturer returns a manufacturer by id
func (c *Catalog) Manufacturer(id string) (*Manufacturer, bool) {
	m, ok := c.Manufacturers[id]
	return m, ok
}

// ProductLine returns a product line by id
func (c *Catalog) ProductLine(id string) (*ProductLine, bool) {
	l, ok := c.ProductLines[id]
	return l, ok
}

// Product returns a product by id
func (c *Catalog) Product(id string) (*Product, bool) {
	p, ok := c.Products[id]
	return p, ok
}

// Addon returns an addon by id
func (c *Catalog) Addon(id string) (*Addon, bool) {
	a, ok := c.Addons[id]
	return a, ok
}

// SortedManufacturers returns manufacturers ordered by id
func (c *Catalog) SortedManufacturers() []*Manufacturer {
	out := make([]*Manufacturer, 0, len(c.Manufacturers))
	for _, id := range determinism.SortedKeys(c.Manufacturers) {
		out = append(out, c.Manufacturers[id])
	}
	return out
}

// SortedProductLines returns product lines ordered by id
func (c *Catalog) SortedProductLines() []*ProductLine {
	out := make([]*ProductLine, 0, len(c.ProductLines))
	for _, id := range determinism.SortedKeys(c.ProductLines) {
		out = append(out, c.ProductLines[id])
	}
	return out
}

// SortedProducts returns products ordered by id
func (c *Catalog) SortedProducts() []*Product {
	out := make([]*Product, 0, len(c.Products))
	for _, id := range determinism.SortedKeys(c.Products) {
		out = append(out, c.Products[id])
	}
	return out
}

// SortedAddons returns addons ordered by id
func (c *Catalog) SortedAddons() []*Addon {
	out := make([]*Addon, 0, len(c.Addons))
	for _, id := range determinism.SortedKeys(c.Addons) {
		out = append(out, c.Addons[id])
	}
	return out
}

// FirstProductLineID returns the lowest product line id, used as the
// repair target for products that lost their line reference.
func (c *Catalog) FirstProductLineID() (string, bool) {
	ids := determinism.SortedKeys(c.ProductLines)
	if len(ids) == 0 {
		return "", false
	}
	return ids[0], true
}

// Stats returns catalog statistics
func (c *Catalog) Stats() Stats {
	stats := Stats{
		Manufacturers: len(c.Manufacturers),
		ProductLines:  len(c.ProductLines),
		Products:      len(c.Products),
		Addons:        len(c.Addons),
		ByLine:        make(map[string]int),
	}

	for _, p := range c.Products {
		stats.ByLine[p.ProductLineID]++
	}
	for _, a := range c.Addons {
		if a.Mandatory {
			stats.MandatoryAddons++
		}
		if a.IsJobBased {
			stats.JobBasedAddons++
		}
	}

	return stats
}

// Stats holds catalog statistics
type Stats struct {
	Manufacturers   int
	ProductLines    int
	Products        int
	Addons          int
	MandatoryAddons int
	JobBasedAddons  int
	ByLine          map[string]int
}
