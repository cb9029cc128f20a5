// Package cmd - CLI commands: fenquote version publish/restore
// Both commands change what live quotes price against, so both require
// --confirm or an interactive yes.
package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"fenquote/core/catalog"
	"fenquote/core/output"
	"fenquote/core/version"
	"fenquote/internal/errors"
	"fenquote/internal/logging"
)

var versionPublishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Seal the working catalog into a new pricing version",
	Long: `Seal the working catalog into a new published pricing version.

The catalog must pass validation. The new version immediately becomes
current: every quote priced after this command uses the sealed rates.`,
	RunE: runVersionPublish,
}

var versionRestoreCmd = &cobra.Command{
	Use:   "restore <version-id>",
	Short: "Re-publish an old version's rates as a new current version",
	Long: `Restore the rates of an old published version.

This publishes a NEW version carrying the old snapshot's catalog and
makes it current. The old version is untouched; nothing is ever
overwritten, and the history shows the restore as its own entry.`,
	Args: cobra.ExactArgs(1),
	RunE: runVersionRestore,
}

var (
	versionName    string
	versionNotes   string
	versionConfirm bool
)

func init() {
	versionCmd.AddCommand(versionPublishCmd)
	versionCmd.AddCommand(versionRestoreCmd)

	versionPublishCmd.Flags().StringVar(&versionName, "name", "", "display name for the version")
	versionPublishCmd.Flags().StringVar(&versionNotes, "notes", "", "notes recorded on the version")
	versionPublishCmd.Flags().BoolVar(&versionConfirm, "confirm", false, "skip the interactive confirmation")

	versionRestoreCmd.Flags().BoolVar(&versionConfirm, "confirm", false, "skip the interactive confirmation")
}

func runVersionPublish(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	cat, err := st.Catalog(ctx)
	if err != nil {
		return err
	}

	w := output.NewWriter(os.Stdout, false)
	if violations := cat.Validate(catalog.DefaultValidationRules()); len(violations) > 0 {
		for _, v := range violations {
			w.Error("%v", v)
		}
		return errors.Newf(errors.TypeInvalidConfiguration, "refusing to publish: %d validation problems", len(violations))
	}

	stats := cat.Stats()
	w.Print("Publishing %d products and %d addons as the new current version.\n", stats.Products, stats.Addons)
	if !versionConfirm {
		if !w.Confirm(os.Stdin, "Publish and make current?") {
			w.Print("Aborted.\n")
			return nil
		}
	}

	v := version.Publish(cat, versionName, versionNotes)
	if err := st.StorePricingVersion(ctx, v); err != nil {
		return err
	}
	if err := st.SetCurrentVersionID(ctx, v.ID); err != nil {
		return err
	}
	logging.Named("cli").Info("pricing version published")

	w.Success("Published %s", v.ID)
	w.Print("  Quotes now price against this version.\n")
	return nil
}

func runVersionRestore(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	oldID := args[0]

	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	old, err := st.PricingVersion(ctx, oldID)
	if err != nil {
		return err
	}

	w := output.NewWriter(os.Stdout, false)
	w.Print("Restoring rates from %s (published %s).\n", oldID, old.Timestamp.Format("2006-01-02"))
	if !versionConfirm {
		if !w.Confirm(os.Stdin, "Publish these rates as a new current version?") {
			w.Print("Aborted.\n")
			return nil
		}
	}

	name := old.Name
	if name != "" {
		name += " (restored)"
	}
	v := version.Publish(old.Catalog(), name, "restored from "+oldID)
	if err := st.StorePricingVersion(ctx, v); err != nil {
		return err
	}
	if err := st.SetCurrentVersionID(ctx, v.ID); err != nil {
		return err
	}

	w.Success("Restored %s as new version %s", oldID, v.ID)
	return nil
}
