package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"vatdesk/internal/invoice"
	"vatdesk/internal/logger"
)

var invoiceCmd = &cobra.Command{
	Use:   "invoice [document.json]",
	Short: "Recalculate an invoice's lines, adjustments and totals",
	Long: `Recalculate every line and adjustment of an invoice document and
aggregate the invoice totals.

The document is a JSON object:

  {
    "mode": "quantity" | "total",
    "lines": [{"product_name": "...", "quantity": 2, "unit_price": 100,
               "is_unit_price_inclusive": false, "edited": "quantity"}],
    "adjustments": [{"title": "...", "type": "discount" | "addition",
                     "amount": 10, "is_taxable": true, "is_inclusive": false}]
  }

"edited" names the field the user changed last (quantity, unit_price or
total); it defaults to quantity in quantity mode and total in total mode.
Lines without a product name are recalculated but left out of the totals.`,
	Example: `  # Recalculate at the configured VAT rate, rounded to 2 decimals
  vatdesk invoice invoice.json

  # Full precision, written to a file
  vatdesk invoice invoice.json --round -1 -o result.json

  # Also compare the stated totals in the document against a recomputation
  vatdesk invoice invoice.json --check`,
	Args: cobra.ExactArgs(1),
	RunE: runInvoice,
}

// InvoiceOutput represents the JSON output structure for invoice recalculation
type InvoiceOutput struct {
	Invoice  *invoice.Result `json:"invoice"`
	Warnings []string        `json:"warnings,omitempty"`
	Metadata OutputMetadata  `json:"metadata"`
}

// OutputMetadata describes how a result was produced
type OutputMetadata struct {
	FileName    string    `json:"file_name,omitempty"`
	VATRate     string    `json:"vat_rate,omitempty"`
	ProcessedAt time.Time `json:"processed_at"`
}

func init() {
	rootCmd.AddCommand(invoiceCmd)

	invoiceCmd.Flags().Bool("check", false, "Report lines, adjustments or totals that are inconsistent")
	invoiceCmd.Flags().Float64("tolerance", invoice.DefaultTolerance, "Absolute tolerance for --check")
}

func runInvoice(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("invoice")

	check, _ := cmd.Flags().GetBool("check")
	tolerance, _ := cmd.Flags().GetFloat64("tolerance")
	places, _ := cmd.Flags().GetInt32("round")

	rate, err := vatRate(cmd)
	if err != nil {
		return err
	}

	path := args[0]
	log.Info().
		Str("file", path).
		Str("rate", rate.String()).
		Bool("check", check).
		Msg("Starting invoice recalculation")

	var doc invoice.Document
	if err := readInput(path, &doc, log); err != nil {
		return err
	}

	res, err := doc.Recalculate(rate)
	if err != nil {
		if errors.Is(err, invoice.ErrNoUsedLines) {
			return fmt.Errorf("invoice has no line with a product name")
		}
		return fmt.Errorf("invoice recalculation failed: %w", err)
	}

	output := InvoiceOutput{
		Invoice: res,
		Metadata: OutputMetadata{
			FileName:    filepath.Base(path),
			VATRate:     rate.String(),
			ProcessedAt: time.Now(),
		},
	}

	if check {
		output.Warnings = consistencyWarnings(&doc, res, tolerance)
	}

	if places >= 0 {
		output.Invoice = res.Rounded(places)
	}

	log.Info().
		Int("lines", len(res.Lines)).
		Int("skipped_lines", res.SkippedLines).
		Float64("total_with_vat", res.Totals.TotalWithVAT).
		Int("warnings", len(output.Warnings)).
		Msg("Invoice recalculated")

	return writeOutput(cmd, output, log)
}

// consistencyWarnings checks the recalculated invoice, and the totals stated in the document if any.
func consistencyWarnings(doc *invoice.Document, res *invoice.Result, tolerance float64) []string {
	check := invoice.NewConsistencyCheck(tolerance)
	return check.Check(res.UsedLines(), res.Adjustments, doc.Totals).Warnings
}
