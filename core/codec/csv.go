// Package codec - CSV export/import
// The CSV layout is a fixed positional contract shared with dealer
// spreadsheets: four labeled sections, each a header label line, a
// column-title line, then one row per entity. Parsing is positional; the
// column-title line is consumed, never read.
package codec

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"fenquote/core/catalog"
	"fenquote/core/version"
	"fenquote/internal/errors"
)

const (
	sectionManufacturers = "MANUFACTURERS"
	sectionProductLines  = "PRODUCT LINES"
	sectionProducts      = "PRODUCTS"
	sectionAddons        = "ADDONS"
)

// ExportCSV renders the four catalog sections in fixed order, rows sorted
// by id. Booleans render YES/NO; list fields join with "; "; absent
// optionals render as empty fields. SizeLimits and allowedAddons have no
// columns in this contract, JSON is the lossless format.
func ExportCSV(v *version.PricingVersion) []byte {
	var b strings.Builder

	cat := (&catalog.Catalog{
		Manufacturers: v.Manufacturers,
		ProductLines:  v.ProductLines,
		Products:      v.Products,
		Addons:        v.Addons,
	}).Normalize()

	b.WriteString(sectionManufacturers + "\n")
	b.WriteString("id,name\n")
	for _, m := range cat.SortedManufacturers() {
		writeRow(&b, m.ID, m.Name)
	}
	b.WriteString("\n")

	b.WriteString(sectionProductLines + "\n")
	b.WriteString("id,manufacturerId,name\n")
	for _, l := range cat.SortedProductLines() {
		writeRow(&b, l.ID, l.ManufacturerID, l.Name)
	}
	b.WriteString("\n")

	b.WriteString(sectionProducts + "\n")
	b.WriteString("id,productLineId,productType,productTypeCode,name,pricingModel,uiRate,flatPrice,minimumUI,maximumUI\n")
	for _, p := range cat.SortedProducts() {
		writeRow(&b,
			p.ID,
			p.ProductLineID,
			p.ProductType,
			p.ProductTypeCode,
			p.Name,
			p.PricingModel.String(),
			decimalField(p.UIRate),
			decimalField(p.FlatPrice),
			strconv.Itoa(p.MinimumUI),
			intField(p.MaximumUI),
		)
	}
	b.WriteString("\n")

	b.WriteString(sectionAddons + "\n")
	b.WriteString("id,name,pricingModel,uiRate,flatPrice,exclusiveGroup,mandatory,hiddenFromCustomer,isJobBased,allowedProductTypes,allowedProductLines,minSize,maxSize\n")
	for _, a := range cat.SortedAddons() {
		writeRow(&b,
			a.ID,
			a.Name,
			a.PricingModel.String(),
			decimalField(a.UIRate),
			decimalField(a.FlatPrice),
			a.ExclusiveGroup,
			yesNo(a.Mandatory),
			yesNo(a.HiddenFromCustomer),
			yesNo(a.IsJobBased),
			strings.Join(a.AllowedProductTypes, "; "),
			strings.Join(a.AllowedProductLines, "; "),
			intField(a.MinSize),
			intField(a.MaxSize),
		)
	}

	return []byte(b.String())
}

// ExportCSVFilename derives the export filename from the version's name,
// falling back to its id.
func ExportCSVFilename(v *version.PricingVersion) string {
	return "pricing-version-" + slug(versionLabel(v)) + ".csv"
}

// ImportCSV scans lines sequentially, switching the active section on the
// four header labels; each label consumes the following column-title line.
// Rows parse positionally. A present-but-empty field is absent, never
// zero. Returns the parsed collections; wrapping them into a fresh
// pricing version is the caller's move.
func ImportCSV(data []byte) (*catalog.Catalog, error) {
	cat := catalog.New()

	lines := strings.Split(string(data), "\n")
	section := ""
	skipColumnLine := false

	for n, raw := range lines {
		line := strings.TrimRight(raw, "\r")
		if skipColumnLine {
			skipColumnLine = false
			continue
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		switch trimmed {
		case sectionManufacturers, sectionProductLines, sectionProducts, sectionAddons:
			section = trimmed
			skipColumnLine = true
			continue
		}

		fields := splitCSVLine(line)
		var err error
		switch section {
		case sectionManufacturers:
			err = parseManufacturerRow(cat, fields)
		case sectionProductLines:
			err = parseProductLineRow(cat, fields)
		case sectionProducts:
			err = parseProductRow(cat, fields)
		case sectionAddons:
			err = parseAddonRow(cat, fields)
		default:
			// Content before the first section header is ignored.
			continue
		}
		if err != nil {
			return nil, errors.Wrapf(errors.TypeParsing, err, "csv line %d", n+1)
		}
	}

	return cat, nil
}

// splitCSVLine splits one row on commas outside quotes. The quote
// character only toggles state; there is no escaped-quote-within-quote
// support, so a doubled quote contributes nothing to the field.
func splitCSVLine(line string) []string {
	var fields []string
	var field strings.Builder
	inQuotes := false

	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			fields = append(fields, field.String())
			field.Reset()
		default:
			field.WriteRune(r)
		}
	}
	fields = append(fields, field.String())
	return fields
}

func parseManufacturerRow(cat *catalog.Catalog, fields []string) error {
	id := col(fields, 0)
	if id == "" {
		return nil
	}
	cat.Manufacturers[id] = &catalog.Manufacturer{
		ID:   id,
		Name: col(fields, 1),
	}
	return nil
}

func parseProductLineRow(cat *catalog.Catalog, fields []string) error {
	id := col(fields, 0)
	if id == "" {
		return nil
	}
	cat.ProductLines[id] = &catalog.ProductLine{
		ID:             id,
		ManufacturerID: col(fields, 1),
		Name:           col(fields, 2),
	}
	return nil
}

func parseProductRow(cat *catalog.Catalog, fields []string) error {
	id := col(fields, 0)
	if id == "" {
		return nil
	}

	uiRate, err := parseDecimalField(col(fields, 6), "uiRate")
	if err != nil {
		return err
	}
	flatPrice, err := parseDecimalField(col(fields, 7), "flatPrice")
	if err != nil {
		return err
	}
	minimumUI, err := parseIntDefault(col(fields, 8), "minimumUI")
	if err != nil {
		return err
	}
	maximumUI, err := parseIntField(col(fields, 9), "maximumUI")
	if err != nil {
		return err
	}

	cat.Products[id] = &catalog.Product{
		ID:              id,
		ProductLineID:   col(fields, 1),
		ProductType:     col(fields, 2),
		ProductTypeCode: col(fields, 3),
		Name:            col(fields, 4),
		PricingModel:    catalog.PricingModel(col(fields, 5)),
		UIRate:          uiRate,
		FlatPrice:       flatPrice,
		MinimumUI:       minimumUI,
		MaximumUI:       maximumUI,
	}
	return nil
}

func parseAddonRow(cat *catalog.Catalog, fields []string) error {
	id := col(fields, 0)
	if id == "" {
		return nil
	}

	uiRate, err := parseDecimalField(col(fields, 3), "uiRate")
	if err != nil {
		return err
	}
	flatPrice, err := parseDecimalField(col(fields, 4), "flatPrice")
	if err != nil {
		return err
	}
	minSize, err := parseIntField(col(fields, 11), "minSize")
	if err != nil {
		return err
	}
	maxSize, err := parseIntField(col(fields, 12), "maxSize")
	if err != nil {
		return err
	}

	cat.Addons[id] = &catalog.Addon{
		ID:                  id,
		Name:                col(fields, 1),
		PricingModel:        catalog.PricingModel(col(fields, 2)),
		UIRate:              uiRate,
		FlatPrice:           flatPrice,
		ExclusiveGroup:      col(fields, 5),
		Mandatory:           col(fields, 6) == "YES",
		HiddenFromCustomer:  col(fields, 7) == "YES",
		IsJobBased:          col(fields, 8) == "YES",
		AllowedProductTypes: splitList(col(fields, 9)),
		AllowedProductLines: splitList(col(fields, 10)),
		MinSize:             minSize,
		MaxSize:             maxSize,
	}
	return nil
}

// col indexes a row tolerantly: short rows read as empty fields
func col(fields []string, i int) string {
	if i < 0 || i >= len(fields) {
		return ""
	}
	return fields[i]
}

func splitList(field string) []string {
	if field == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(field, ";") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseDecimalField(field, name string) (*decimal.Decimal, error) {
	if field == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(field)
	if err != nil {
		return nil, errors.Newf(errors.TypeParsing, "%s: not a number: %q", name, field)
	}
	return &d, nil
}

func parseIntField(field, name string) (*int, error) {
	if field == "" {
		return nil, nil
	}
	i, err := strconv.Atoi(field)
	if err != nil {
		return nil, errors.Newf(errors.TypeParsing, "%s: not an integer: %q", name, field)
	}
	return &i, nil
}

func parseIntDefault(field, name string) (int, error) {
	p, err := parseIntField(field, name)
	if err != nil {
		return 0, err
	}
	if p == nil {
		return 0, nil
	}
	return *p, nil
}

func writeRow(b *strings.Builder, fields ...string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(escapeCSV(f))
	}
	b.WriteByte('\n')
}

// escapeCSV quotes a field containing commas, quotes, or newlines,
// doubling interior quotes. Note the importer's splitter drops doubled
// quotes rather than restoring them; fields that contain literal quote
// characters do not survive a round trip. Commas do.
func escapeCSV(field string) string {
	if !strings.ContainsAny(field, ",\"\n") {
		return field
	}
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

func decimalField(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return d.String()
}

func intField(i *int) string {
	if i == nil {
		return ""
	}
	return strconv.Itoa(*i)
}

func yesNo(v bool) string {
	if v {
		return "YES"
	}
	return "NO"
}
