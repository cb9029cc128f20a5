package output

import (
	"encoding/json"
	"io"

	"fenquote/internal/errors"
)

// JSONFormatter emits the machine-readable rendering. Customer mode
// applies the same presentation filter as the CLI so an integration
// cannot leak hidden addon names either.
type JSONFormatter struct {
	opts Options
}

// Format returns the format type
func (f *JSONFormatter) Format() Format {
	return FormatJSON
}

// Render writes the quote to out
func (f *JSONFormatter) Render(out io.Writer, result *QuoteResult) error {
	if result == nil || result.Pricing == nil {
		return errors.New(errors.TypeInput, "nothing to render")
	}

	view := *result
	if f.opts.Customer {
		view.Pricing = CustomerView(result.Pricing)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(&view); err != nil {
		return errors.Internal("encoding quote output", err)
	}
	return nil
}
