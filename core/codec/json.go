// Package codec serializes pricing versions for exchange.
// JSON is the lossless format: a full snapshot round-trips exactly. CSV
// carries the spreadsheet-facing subset defined by the column contract.
package codec

import (
	"encoding/json"
	"strings"

	"fenquote/core/catalog"
	"fenquote/core/version"
	"fenquote/internal/errors"
)

// ExportJSON serializes the full snapshot with stable two-space
// indentation. Collections render as objects keyed by id; map keys are
// emitted in sorted order, so equal versions produce identical bytes.
func ExportJSON(v *version.PricingVersion) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, errors.Internal("serializing pricing version", err)
	}
	return data, nil
}

// ExportJSONFilename derives the export filename from the version's name,
// falling back to its id.
func ExportJSONFilename(v *version.PricingVersion) string {
	return "pricing-version-" + slug(versionLabel(v)) + ".json"
}

// ImportJSON parses a pricing version file. A payload missing id or
// manufacturers is malformed; missing productLines/products/addons are
// optional sections defaulting to empty, distinguishing "partial" from
// "malformed".
func ImportJSON(data []byte) (*version.PricingVersion, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, errors.Parsing("pricing version is not valid JSON", err)
	}

	if raw, ok := probe["id"]; !ok || isJSONNull(raw) || string(raw) == `""` {
		return nil, errors.InvalidVersionFormat("missing id")
	}
	if raw, ok := probe["manufacturers"]; !ok || isJSONNull(raw) {
		return nil, errors.InvalidVersionFormat("missing manufacturers")
	}

	var v version.PricingVersion
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, errors.Parsing("decoding pricing version", err)
	}

	normalizeVersion(&v)
	return &v, nil
}

func isJSONNull(raw json.RawMessage) bool {
	return string(raw) == "null"
}

func normalizeVersion(v *version.PricingVersion) {
	cat := (&catalog.Catalog{
		Manufacturers: v.Manufacturers,
		ProductLines:  v.ProductLines,
		Products:      v.Products,
		Addons:        v.Addons,
	}).Normalize()
	v.Manufacturers = cat.Manufacturers
	v.ProductLines = cat.ProductLines
	v.Products = cat.Products
	v.Addons = cat.Addons
}

func versionLabel(v *version.PricingVersion) string {
	if v.Name != "" {
		return v.Name
	}
	return v.ID
}

// slug reduces a label to filename-safe characters
func slug(s string) string {
	var b strings.Builder
	lastDash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash && b.Len() > 0 {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
