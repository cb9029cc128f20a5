// Package cmd - CLI commands: fenquote version list/show/verify
// Published pricing versions are write-once; these commands only read.
package cmd

import (
	"context"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"fenquote/core/output"
	"fenquote/internal/errors"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Manage published pricing versions",
	Long: `Manage published pricing versions.

A published version is a sealed snapshot of the whole catalog. Quotes
price against the current version; publishing or restoring moves the
pointer, nothing ever edits a sealed snapshot.`,
}

var versionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List published versions, newest first",
	RunE:  runVersionList,
}

var versionShowCmd = &cobra.Command{
	Use:   "show <version-id>",
	Short: "Show one published version",
	Args:  cobra.ExactArgs(1),
	RunE:  runVersionShow,
}

var versionVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Recheck every stored version against its content hash",
	RunE:  runVersionVerify,
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.AddCommand(versionListCmd)
	versionCmd.AddCommand(versionShowCmd)
	versionCmd.AddCommand(versionVerifyCmd)
}

func runVersionList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	summaries, err := st.ListPricingVersions(ctx)
	if err != nil {
		return err
	}
	currentID, err := st.CurrentVersionID(ctx)
	if err != nil {
		return err
	}

	w := output.NewWriter(os.Stdout, false)
	if len(summaries) == 0 {
		w.Info("No pricing versions published yet")
		return nil
	}

	w.Header("Published pricing versions")
	table := w.NewTable("", "Version", "Name", "Published", "Products", "Addons")
	for _, s := range summaries {
		marker := ""
		if s.ID == currentID {
			marker = "*"
		}
		table.AddRow(
			marker,
			s.ID,
			s.Name,
			s.Timestamp.Format("2006-01-02 15:04"),
			strconv.Itoa(s.Products),
			strconv.Itoa(s.Addons),
		)
	}
	table.Render()
	if currentID != "" {
		w.Print("\n  * current\n")
	}
	return nil
}

func runVersionShow(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	v, err := st.PricingVersion(ctx, args[0])
	if err != nil {
		return err
	}
	currentID, _ := st.CurrentVersionID(ctx)

	w := output.NewWriter(os.Stdout, false)
	title := v.ID
	if v.Name != "" {
		title = v.Name + " (" + v.ID + ")"
	}
	w.Header(title)
	w.Print("  Published: %s\n", v.Timestamp.Format("2006-01-02 15:04:05 MST"))
	if v.Notes != "" {
		w.Print("  Notes:     %s\n", v.Notes)
	}
	stats := v.Stats()
	w.Print("  Contents:  %d manufacturers, %d lines, %d products, %d addons\n",
		stats.Manufacturers, stats.ProductLines, stats.Products, stats.Addons)
	if v.ID == currentID {
		w.Success("This is the current version")
	}
	return nil
}

func runVersionVerify(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	problems, err := st.VerifyIntegrity(ctx)
	if err != nil {
		return err
	}

	w := output.NewWriter(os.Stdout, false)
	if len(problems) == 0 {
		w.Success("All stored versions verified")
		return nil
	}
	for _, p := range problems {
		w.Error("%s", p)
	}
	return errors.Newf(errors.TypeStorage, "%d versions failed verification", len(problems))
}
