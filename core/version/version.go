// Package version provides immutable pricing-version snapshots.
// A pricing version is a full, timestamped capture of the catalog taken by
// an explicit publish action. Versions are write-once; no silent updates.
package version

import (
	"time"

	"github.com/google/uuid"

	"fenquote/core/catalog"
)

// PricingVersion is IMMUTABLE after creation.
// It carries the four catalog collections keyed by id, exactly as the
// export file shape does.
type PricingVersion struct {
	ID            string                           `json:"id"`
	Name          string                           `json:"name,omitempty"`
	Timestamp     time.Time                        `json:"timestamp"`
	Notes         string                           `json:"notes"`
	Manufacturers map[string]*catalog.Manufacturer `json:"manufacturers"`
	ProductLines  map[string]*catalog.ProductLine  `json:"productLines"`
	Products      map[string]*catalog.Product      `json:"products"`
	Addons        map[string]*catalog.Addon        `json:"addons"`
}

// Publish captures the working catalog into a new pricing version.
// The capture is a structural deep copy; later catalog edits never reach
// the version. Each call produces a distinct id and timestamp.
func Publish(cat *catalog.Catalog, name, notes string) *PricingVersion {
	snapshot := cat.Clone()
	return &PricingVersion{
		ID:            uuid.NewString(),
		Name:          name,
		Timestamp:     time.Now().UTC(),
		Notes:         notes,
		Manufacturers: snapshot.Manufacturers,
		ProductLines:  snapshot.ProductLines,
		Products:      snapshot.Products,
		Addons:        snapshot.Addons,
	}
}

// FromCatalogData assembles a version around already-parsed collections.
// Used by import paths; collections are adopted as-is, so callers must not
// hold references afterward.
func FromCatalogData(id, name, notes string, ts time.Time, cat *catalog.Catalog) *PricingVersion {
	cat.Normalize()
	return &PricingVersion{
		ID:            id,
		Name:          name,
		Timestamp:     ts,
		Notes:         notes,
		Manufacturers: cat.Manufacturers,
		ProductLines:  cat.ProductLines,
		Products:      cat.Products,
		Addons:        cat.Addons,
	}
}

// Catalog returns a working catalog copied out of the snapshot.
// The copy is deep: restore flows may edit it freely without touching the
// published version.
func (v *PricingVersion) Catalog() *catalog.Catalog {
	cat := &catalog.Catalog{
		Manufacturers: v.Manufacturers,
		ProductLines:  v.ProductLines,
		Products:      v.Products,
		Addons:        v.Addons,
	}
	return cat.Normalize().Clone()
}

// Clone returns a structurally independent copy of the version
func (v *PricingVersion) Clone() *PricingVersion {
	c := *v
	snapshot := v.Catalog()
	c.Manufacturers = snapshot.Manufacturers
	c.ProductLines = snapshot.ProductLines
	c.Products = snapshot.Products
	c.Addons = snapshot.Addons
	return &c
}

// Stats summarizes the snapshot's collections
func (v *PricingVersion) Stats() catalog.Stats {
	cat := &catalog.Catalog{
		Manufacturers: v.Manufacturers,
		ProductLines:  v.ProductLines,
		Products:      v.Products,
		Addons:        v.Addons,
	}
	return cat.Normalize().Stats()
}
