// Package cmd - CLI commands: fenquote quote price/save/history/diff
package cmd

import (
	"context"
	"encoding/json"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"fenquote/core/output"
	"fenquote/core/pricing"
	"fenquote/internal/config"
	"fenquote/internal/errors"
	"fenquote/internal/logging"
)

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Price and version customer quotes",
}

var quotePriceCmd = &cobra.Command{
	Use:   "price <quote.json>",
	Short: "Price a quote request file",
	Long: `Price a quote request file against the active pricing catalog.

The file carries line items (product, width, height, selected addons),
optional job addons, and the sales uplift:

  {
    "name": "Smith kitchen",
    "lineItems": [
      {"productId": "prod-dh-400", "width": 36, "height": 48}
    ],
    "jobAddonIds": ["addon-delivery"],
    "salesUplift": "250"
  }

Pricing is read-only; nothing is persisted. Use 'quote save' to lock a
version.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuotePrice,
}

var quoteSaveCmd = &cobra.Command{
	Use:   "save <quote.json>",
	Short: "Price a quote and lock the result as a new version",
	Long: `Price a quote request file and persist the result as a locked version.

The quote named by --quote-id is created on first save. Every save appends
a new locked version; existing versions never change.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuoteSave,
}

var quoteHistoryCmd = &cobra.Command{
	Use:   "history <quote-id>",
	Short: "List the locked versions of a quote",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuoteHistory,
}

var quoteDiffCmd = &cobra.Command{
	Use:   "diff <quote-id> <version-a> <version-b>",
	Short: "Compare two locked versions of a quote",
	Args:  cobra.ExactArgs(3),
	RunE:  runQuoteDiff,
}

var (
	quoteFormat   string
	quoteCustomer bool
	quoteNoColor  bool
	quoteSaveID   string
)

func init() {
	rootCmd.AddCommand(quoteCmd)
	quoteCmd.AddCommand(quotePriceCmd)
	quoteCmd.AddCommand(quoteSaveCmd)
	quoteCmd.AddCommand(quoteHistoryCmd)
	quoteCmd.AddCommand(quoteDiffCmd)

	quotePriceCmd.Flags().StringVarP(&quoteFormat, "format", "f", "", "output format (cli, json)")
	quotePriceCmd.Flags().BoolVar(&quoteCustomer, "customer", false, "customer view: hide dealer-only addon lines")
	quotePriceCmd.Flags().BoolVar(&quoteNoColor, "no-color", false, "disable ANSI colors")

	quoteSaveCmd.Flags().StringVar(&quoteSaveID, "quote-id", "", "quote to save the version under [REQUIRED]")
	quoteSaveCmd.MarkFlagRequired("quote-id")
}

// readQuoteFile parses a quote request file. The id and timestamps are
// assigned by save, never read from the file.
func readQuoteFile(path string) (*pricing.Quote, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.TypeInput, "reading quote file", err)
	}
	var q pricing.Quote
	if err := json.Unmarshal(data, &q); err != nil {
		return nil, errors.Wrap(errors.TypeParsing, "quote file is not valid JSON", err)
	}
	if len(q.LineItems) == 0 {
		return nil, errors.New(errors.TypeInput, "quote file has no line items")
	}
	return &q, nil
}

func runQuotePrice(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	q, err := readQuoteFile(args[0])
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	cat, err := pricingCatalog(ctx, st)
	if err != nil {
		return err
	}

	result, err := pricing.PriceQuote(cat, q)
	if err != nil {
		return err
	}

	cfg := config.Get()
	format := quoteFormat
	if format == "" {
		format = cfg.Output.DefaultFormat
	}
	customer := quoteCustomer || !cfg.Output.ShowHidden

	formatter, err := output.New(output.Format(format), output.Options{
		Customer: customer,
		NoColor:  quoteNoColor,
	})
	if err != nil {
		return err
	}
	return formatter.Render(os.Stdout, &output.QuoteResult{
		QuoteID:   q.ID,
		QuoteName: q.Name,
		Pricing:   result,
	})
}

func runQuoteSave(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	req, err := readQuoteFile(args[0])
	if err != nil {
		return err
	}

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	cat, err := pricingCatalog(ctx, st)
	if err != nil {
		return err
	}

	q, err := st.Quote(ctx, quoteSaveID)
	if err != nil {
		if !errors.IsType(err, errors.TypeNotFound) {
			return err
		}
		q = pricing.NewQuote(req.Name)
		q.ID = quoteSaveID
	}
	if req.Name != "" {
		q.Name = req.Name
	}
	q.LineItems = req.LineItems
	q.JobAddonIDs = req.JobAddonIDs
	q.SalesUplift = req.SalesUplift
	q.Metadata = req.Metadata
	q.UpdatedAt = time.Now().UTC()

	result, err := pricing.PriceQuote(cat, q)
	if err != nil {
		return err
	}

	v, err := pricing.NewQuoteVersion(q.ID, result.LineItems, q.SalesUplift, q.Metadata)
	if err != nil {
		return err
	}

	if err := st.SaveQuote(ctx, q); err != nil {
		return err
	}
	if err := st.AppendQuoteVersion(ctx, v); err != nil {
		return err
	}
	logging.Named("cli").Debug("quote version locked")

	w := output.NewWriter(os.Stdout, quoteNoColor)
	w.Success("Locked version %s for quote %s", v.ID, q.ID)
	w.Print("  Par total:  $%s\n", v.TotalParPrice.StringFixed(2))
	w.Print("  Final:      $%s\n", v.FinalPrice.StringFixed(2))
	return nil
}

func runQuoteHistory(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	versions, err := st.QuoteVersions(ctx, args[0])
	if err != nil {
		return err
	}

	w := output.NewWriter(os.Stdout, quoteNoColor)
	if len(versions) == 0 {
		w.Info("No versions saved for quote %s", args[0])
		return nil
	}

	w.Header("Quote " + args[0])
	table := w.NewTable("Version", "Created", "Lines", "Par", "Final")
	for _, v := range versions {
		table.AddRow(
			v.ID,
			v.Timestamp.Format("2006-01-02 15:04"),
			strconv.Itoa(len(v.LineItems)),
			"$"+v.TotalParPrice.StringFixed(2),
			"$"+v.FinalPrice.StringFixed(2),
		)
	}
	table.Render()
	return nil
}

func runQuoteDiff(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	quoteID, oldID, newID := args[0], args[1], args[2]

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	versions, err := st.QuoteVersions(ctx, quoteID)
	if err != nil {
		return err
	}

	var oldV, newV *pricing.QuoteVersion
	for _, v := range versions {
		if v.ID == oldID {
			oldV = v
		}
		if v.ID == newID {
			newV = v
		}
	}
	if oldV == nil {
		return errors.NotFound("quote version", oldID)
	}
	if newV == nil {
		return errors.NotFound("quote version", newID)
	}

	w := output.NewWriter(os.Stdout, quoteNoColor)
	w.NewVersionDiffView(pricing.DiffVersions(oldV, newV)).Render()
	return nil
}
