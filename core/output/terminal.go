// Package output - Terminal widgets
// ANSI colors, tables, and summary boxes for CLI rendering.
package output

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"fenquote/core/pricing"
)

// Colors for terminal output
const (
	Reset  = "\033[0m"
	Bold   = "\033[1m"
	Dim    = "\033[2m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Blue   = "\033[34m"
	Cyan   = "\033[36m"
)

// Writer is the terminal output destination
type Writer struct {
	out       io.Writer
	noColor   bool
	verbosity int
}

// NewWriter creates a terminal writer
func NewWriter(out io.Writer, noColor bool) *Writer {
	if out == nil {
		out = os.Stdout
	}
	return &Writer{
		out:       out,
		noColor:   noColor,
		verbosity: 1,
	}
}

// SetVerbosity sets output verbosity (0=quiet, 1=normal, 2=verbose)
func (w *Writer) SetVerbosity(level int) {
	w.verbosity = level
}

// color applies color if enabled
func (w *Writer) color(c, text string) string {
	if w.noColor {
		return text
	}
	return c + text + Reset
}

// Print writes formatted text
func (w *Writer) Print(format string, args ...interface{}) {
	fmt.Fprintf(w.out, format, args...)
}

// Println writes a line with newline
func (w *Writer) Println(format string, args ...interface{}) {
	fmt.Fprintf(w.out, format+"\n", args...)
}

// Header prints a section header
func (w *Writer) Header(title string) {
	w.Println("")
	w.Println(w.color(Bold+Cyan, "━━━ "+title+" ━━━"))
	w.Println("")
}

// SubHeader prints a subsection header
func (w *Writer) SubHeader(title string) {
	w.Println(w.color(Bold, "▸ "+title))
}

// Success prints a success message
func (w *Writer) Success(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	w.Println(w.color(Green, "✓ ")+msg)
}

// Warning prints a warning
func (w *Writer) Warning(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	w.Println(w.color(Yellow, "⚠ ")+msg)
}

// Error prints an error
func (w *Writer) Error(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	w.Println(w.color(Red, "✗ ")+msg)
}

// Info prints an info message
func (w *Writer) Info(format string, args ...interface{}) {
	if w.verbosity < 1 {
		return
	}
	msg := fmt.Sprintf(format, args...)
	w.Println(w.color(Blue, "ℹ ")+msg)
}

// Debug prints a debug message
func (w *Writer) Debug(format string, args ...interface{}) {
	if w.verbosity < 2 {
		return
	}
	msg := fmt.Sprintf(format, args...)
	w.Println(w.color(Dim, "  "+msg))
}

// Confirm prompts for explicit consent and reads one line from in.
// Only "y" or "yes" (any case) proceeds. EOF means no.
func (w *Writer) Confirm(in io.Reader, prompt string) bool {
	w.Print("%s [y/N]: ", prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// Table renders a table
type Table struct {
	w       *Writer
	headers []string
	rows    [][]string
	widths  []int
}

// NewTable creates a table
func (w *Writer) NewTable(headers ...string) *Table {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	return &Table{
		w:       w,
		headers: headers,
		rows:    [][]string{},
		widths:  widths,
	}
}

// AddRow adds a row to the table
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.headers))
	for i := range row {
		if i < len(cells) {
			row[i] = cells[i]
		}
		if len(row[i]) > t.widths[i] {
			t.widths[i] = len(row[i])
		}
	}
	t.rows = append(t.rows, row)
}

// Render prints the table
func (t *Table) Render() {
	format := ""
	for i, w := range t.widths {
		if i > 0 {
			format += " │ "
		}
		format += fmt.Sprintf("%%-%ds", w)
	}
	format += "\n"

	headerArgs := make([]interface{}, len(t.headers))
	for i, h := range t.headers {
		headerArgs[i] = h
	}
	t.w.Print(t.w.color(Bold, fmt.Sprintf(format, headerArgs...)))

	sep := ""
	for i, w := range t.widths {
		if i > 0 {
			sep += "─┼─"
		}
		sep += strings.Repeat("─", w)
	}
	t.w.Println(sep)

	for _, row := range t.rows {
		args := make([]interface{}, len(row))
		for i, cell := range row {
			args[i] = cell
		}
		t.w.Print(format, args...)
	}
}

// QuoteTotalsBox renders the money summary for a priced quote
type QuoteTotalsBox struct {
	w         *Writer
	ParTotal  string
	JobAddons string
	Uplift    string
	Final     string
	Lines     int
}

// NewQuoteTotalsBox creates a totals box
func (w *Writer) NewQuoteTotalsBox() *QuoteTotalsBox {
	return &QuoteTotalsBox{w: w}
}

// Render prints the totals box
func (b *QuoteTotalsBox) Render() {
	border := strings.Repeat("─", 37)
	row := func(color, label, value string) {
		cell := fmt.Sprintf("  %-13s %-21s", label, value)
		b.w.Println(b.w.color(Bold, "│") + b.w.color(color, cell) + b.w.color(Bold, "│"))
	}

	b.w.Println(b.w.color(Bold, "╭"+border+"╮"))
	row(Dim, "Par total:", b.ParTotal)
	if b.JobAddons != "" {
		row(Dim, "Job addons:", b.JobAddons)
	}
	row(Dim, "Uplift:", b.Uplift)
	row(Green, "Final price:", b.Final)
	b.w.Println(b.w.color(Bold, "╰"+border+"╯"))

	b.w.Println(b.w.color(Dim, fmt.Sprintf("  Line items: %d", b.Lines)))
}

// VersionDiffView renders how a quote's price moved between two locked
// versions
type VersionDiffView struct {
	w    *Writer
	Diff *pricing.VersionDiff
}

// NewVersionDiffView creates a diff view
func (w *Writer) NewVersionDiffView(diff *pricing.VersionDiff) *VersionDiffView {
	return &VersionDiffView{w: w, Diff: diff}
}

// Render prints the diff
func (v *VersionDiffView) Render() {
	d := v.Diff
	v.w.Header("Version Comparison")
	v.w.Println("  %s %s %s", d.OldID, v.w.color(Yellow, "→"), d.NewID)
	v.w.Println("")

	sign := ""
	deltaColor := Green
	switch {
	case d.FinalDelta.IsPositive():
		sign = "+"
		deltaColor = Red
	case d.FinalDelta.IsNegative():
		sign = "-"
	}

	v.w.Println("  Final: $%s %s $%s (%s)",
		d.OldFinalPrice.StringFixed(2),
		v.w.color(Yellow, "→"),
		d.NewFinalPrice.StringFixed(2),
		v.w.color(deltaColor, sign+"$"+d.FinalDelta.Abs().StringFixed(2)))

	if !d.PercentChange.IsZero() {
		pct := d.PercentChange.String() + "%"
		if d.PercentChange.IsPositive() {
			pct = "+" + pct
		}
		v.w.Println("  Change: %s", v.w.color(deltaColor, pct))
	}
	if !d.ParDelta.IsZero() {
		v.w.Println(v.w.color(Dim, "  Par moved $"+d.ParDelta.StringFixed(2)))
	}

	switch {
	case d.LineItemsAdded > 0:
		v.w.Println(v.w.color(Dim, fmt.Sprintf("  %d line item(s) added", d.LineItemsAdded)))
	case d.LineItemsAdded < 0:
		v.w.Println(v.w.color(Dim, fmt.Sprintf("  %d line item(s) removed", -d.LineItemsAdded)))
	}
}
