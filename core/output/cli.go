// Package output - CLI table rendering
package output

import (
	"io"
	"strconv"

	"github.com/shopspring/decimal"

	"fenquote/core/pricing"
	"fenquote/internal/errors"
)

// CLIFormatter renders a priced quote as terminal tables with a totals
// box.
type CLIFormatter struct {
	opts Options
}

// Format returns the format type
func (f *CLIFormatter) Format() Format {
	return FormatCLI
}

// Render writes the quote to out
func (f *CLIFormatter) Render(out io.Writer, result *QuoteResult) error {
	if result == nil || result.Pricing == nil {
		return errors.New(errors.TypeInput, "nothing to render")
	}
	p := result.Pricing
	if f.opts.Customer {
		p = CustomerView(p)
	}

	w := NewWriter(out, f.opts.NoColor)

	title := "Quote"
	if result.QuoteName != "" {
		title = "Quote: " + result.QuoteName
	}
	w.Header(title)
	if result.VersionID != "" {
		w.Println(w.color(Dim, "  locked version "+result.VersionID))
		w.Println("")
	}

	table := w.NewTable("Product", "Size", "UI", "Base", "Addons", "Line Total")
	for _, item := range p.LineItems {
		table.AddRow(
			item.ProductName,
			sizeCell(item),
			strconv.Itoa(item.UI),
			money(item.BasePrice),
			money(item.AddonTotal),
			money(item.ParTotal),
		)
	}
	table.Render()

	for _, item := range p.LineItems {
		if len(item.AppliedAddons) == 0 {
			continue
		}
		w.Println("")
		w.SubHeader(item.ProductName)
		for _, a := range item.AppliedAddons {
			marker := ""
			if a.Hidden {
				marker = w.color(Dim, " (hidden)")
			}
			w.Println("  + %s: %s%s", a.Name, money(a.Price), marker)
		}
	}

	if len(p.JobAddons) > 0 {
		w.Println("")
		w.SubHeader("Job addons")
		for _, a := range p.JobAddons {
			marker := ""
			if a.Hidden {
				marker = w.color(Dim, " (hidden)")
			}
			w.Println("  + %s: %s%s", a.Name, money(a.Price), marker)
		}
	}

	w.Println("")
	box := w.NewQuoteTotalsBox()
	box.ParTotal = money(p.Totals.TotalParPrice)
	if !p.Totals.JobAddonTotal.IsZero() {
		box.JobAddons = money(p.Totals.JobAddonTotal)
	}
	box.Uplift = money(p.Totals.SalesUplift)
	box.Final = money(p.Totals.FinalPrice)
	box.Lines = len(p.LineItems)
	box.Render()

	return nil
}

// money renders a display amount. Wire formats keep exact decimals;
// two places is for eyes only.
func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

func sizeCell(item pricing.LineItem) string {
	if item.Width == 0 && item.Height == 0 {
		return ""
	}
	return strconv.FormatFloat(item.Width, 'f', -1, 64) +
		"x" +
		strconv.FormatFloat(item.Height, 'f', -1, 64) + `"`
}
