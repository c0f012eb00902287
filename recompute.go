package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/spf13/cobra"

	"boqrevisions/collections"
	"boqrevisions/services"
)

// newRecomputeCmd prints the totals of a stored revision and, with
// --previous, the lines that changed since that revision.
func newRecomputeCmd(app *pocketbase.PocketBase, currency string) *cobra.Command {
	var version, previous int

	cmd := &cobra.Command{
		Use:   "recompute <boqID>",
		Short: "Recompute the totals of a BOQ revision",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			collections.Setup(app)
			return runRecompute(app, cmd.OutOrStdout(), currency, args[0], version, previous)
		},
	}
	cmd.Flags().IntVar(&version, "version", -1, "revision to recompute (default latest)")
	cmd.Flags().IntVar(&previous, "previous", -1, "revision to diff against")
	return cmd
}

func runRecompute(app *pocketbase.PocketBase, out io.Writer, currency, boqID string, version, previous int) error {
	boq, err := services.LoadBOQInfo(app, boqID)
	if err != nil {
		return err
	}

	if version < 0 {
		versions, err := services.ListVersions(app, boqID)
		if err != nil {
			return err
		}
		if len(versions) == 0 {
			return fmt.Errorf("BOQ %s has no revisions", boqID)
		}
		version = versions[len(versions)-1]
	}

	current, err := services.LoadRevision(app, boqID, version)
	if err != nil {
		return err
	}

	totals := services.CalcBOQTotals(current.Snapshot).Rounded()
	money := func(v float64) string { return services.FormatCurrency(currency, v) }

	fmt.Fprintf(out, "%s (%s) revision %d [%s]\n", boq.Title, boq.ID, current.VersionNumber, current.Status)
	row := func(label, value string) { fmt.Fprintf(out, "  %-26s %18s\n", label, value) }
	row("Items subtotal", money(totals.ItemsSubtotal))
	row("Preliminaries", money(totals.PreliminariesAmount))
	row("Discount ("+services.FormatPercent(totals.DiscountPercent)+")", money(totals.DiscountAmount))
	row("Total excl. VAT", money(totals.GrandTotalExclVAT))
	if totals.VATEnabled {
		row("VAT ("+services.FormatPercent(totals.VATPercent)+")", money(totals.VATAmount))
	}
	row("Grand total", money(totals.GrandTotal))
	row("Internal cost", money(totals.TotalInternalCost))
	row("Profit ("+services.FormatPercent(totals.ProfitMarginPercent)+")", money(totals.ActualProfit))

	if previous < 0 {
		return nil
	}

	prev, err := services.LoadRevision(app, boqID, previous)
	if err != nil {
		return err
	}
	diff := services.DiffRevisions(current.Snapshot, prev.Snapshot)

	fmt.Fprintf(out, "\nChanges since revision %d: %d item(s)\n", prev.VersionNumber, diff.ChangedItemCount())
	for _, it := range diff.Items {
		if !it.Changed() {
			continue
		}
		printItemChange(out, it)
	}
	var top []string
	if diff.DiscountChanged {
		top = append(top, "discount")
	}
	if diff.VATChanged {
		top = append(top, "vat")
	}
	if diff.PreliminariesChanged {
		top = append(top, "preliminaries")
	}
	if len(top) > 0 {
		fmt.Fprintf(out, "  ~ BOQ: %s\n", strings.Join(top, ", "))
	}
	return nil
}

func printItemChange(out io.Writer, it services.ItemDiff) {
	if it.IsNew {
		fmt.Fprintf(out, "  + %s (new)\n", it.Name)
		return
	}
	fields := changedFields([]fieldFlag{
		{"quantity", it.QuantityChanged},
		{"rate", it.RateChanged},
		{"description", it.DescriptionChanged},
		{"percentages", it.PercentChanged},
		{"client cost", it.ClientCostChanged},
		{"internal cost", it.InternalCostChanged},
	})
	fmt.Fprintf(out, "  ~ %s: %s\n", it.Name, orLines(fields))

	for _, s := range it.SubItems {
		if !s.Changed() {
			continue
		}
		if s.IsNew {
			fmt.Fprintf(out, "      + %s (new)\n", s.Name)
			continue
		}
		sf := changedFields([]fieldFlag{
			{"quantity", s.QuantityChanged},
			{"rate", s.RateChanged},
			{"percentages", s.PercentChanged()},
			{"amount", s.ClientAmountChanged},
			{"scope", s.ScopeChanged},
			{"size", s.SizeChanged},
			{"location", s.LocationChanged},
			{"brand", s.BrandChanged},
			{"unit", s.UnitChanged},
		})
		fmt.Fprintf(out, "      ~ %s: %s\n", s.Name, orLines(sf))
	}
}

type fieldFlag struct {
	label string
	set   bool
}

func changedFields(flags []fieldFlag) []string {
	var out []string
	for _, f := range flags {
		if f.set {
			out = append(out, f.label)
		}
	}
	return out
}

func orLines(fields []string) string {
	if len(fields) == 0 {
		return "lines"
	}
	return strings.Join(fields, ", ")
}
