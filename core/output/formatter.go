// Package output renders priced quotes for humans and machines.
// Hiding is presentation-only: every rendering mode reports the same
// totals, customer mode just omits the itemization of hidden addons.
package output

import (
	"io"

	"fenquote/core/pricing"
	"fenquote/internal/errors"
)

// Format selects a rendering
type Format string

const (
	// FormatCLI is a human-readable terminal table
	FormatCLI Format = "cli"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"
)

// Formatter renders one priced quote
type Formatter interface {
	// Format returns the format type
	Format() Format

	// Render writes the result to w
	Render(w io.Writer, result *QuoteResult) error
}

// QuoteResult is everything a renderer may show
type QuoteResult struct {
	QuoteID   string `json:"quoteId,omitempty"`
	QuoteName string `json:"quoteName,omitempty"`

	// VersionID is set when rendering a locked version instead of a
	// live pricing pass
	VersionID string `json:"versionId,omitempty"`

	Pricing *pricing.QuotePricing `json:"pricing"`
}

// Options tune rendering
type Options struct {
	// Customer omits addons flagged HiddenFromCustomer. Totals are
	// untouched.
	Customer bool

	// NoColor disables ANSI escapes
	NoColor bool
}

// New returns the formatter for a format
func New(format Format, opts Options) (Formatter, error) {
	switch format {
	case FormatCLI:
		return &CLIFormatter{opts: opts}, nil
	case FormatJSON:
		return &JSONFormatter{opts: opts}, nil
	default:
		return nil, errors.Newf(errors.TypeInput, "unsupported output format %q", format)
	}
}

// CustomerView returns a presentation copy with hidden addons folded
// away. Their prices are already inside AddonTotal and the totals, so
// only the named lines disappear.
func CustomerView(p *pricing.QuotePricing) *pricing.QuotePricing {
	if p == nil {
		return nil
	}
	view := &pricing.QuotePricing{Totals: p.Totals}
	for _, item := range p.LineItems {
		line := item
		line.AppliedAddons = visibleAddons(item.AppliedAddons)
		view.LineItems = append(view.LineItems, line)
	}
	view.JobAddons = visibleAddons(p.JobAddons)
	return view
}

func visibleAddons(addons []pricing.AppliedAddon) []pricing.AppliedAddon {
	var visible []pricing.AppliedAddon
	for _, a := range addons {
		if a.Hidden {
			continue
		}
		visible = append(visible, a)
	}
	return visible
}
