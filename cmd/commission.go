package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"vatdesk/internal/commission"
	"vatdesk/internal/logger"
	"vatdesk/internal/vat"
	"vatdesk/pkg/models"
)

var commissionCmd = &cobra.Command{
	Use:   "commission [batch.json]",
	Short: "Recalculate a commission batch and summarize what is due",
	Long: `Recalculate every record of a commission batch for the batch's mode
and report the amount due over the selected records.

The batch is a JSON object:

  {
    "month": "2025-03",
    "package": "sales",
    "mode": "fixed_daily" | "fixed_monthly" | "percentage",
    "records": [{"employee_id": "E1", "daily_amount": 100, "days": 20,
                 "percentage": 5, "revenue": 10000, "bonus": 0,
                 "deduction": 0, "selected": true, "status": "unpaid"}]
  }

Net due per record is base + bonus - deduction, where base is total in the
fixed modes and commission in percentage mode.`,
	Example: `  # Recalculate and summarize
  vatdesk commission march.json

  # Mark the whole batch paid (or unpaid, if it already is)
  vatdesk commission march.json --toggle-status

  # Select every record before summarizing
  vatdesk commission march.json --select-all`,
	Args: cobra.ExactArgs(1),
	RunE: runCommission,
}

// CommissionBatch is the input document of the commission command
type CommissionBatch struct {
	Month   string                    `json:"month,omitempty"`
	Package string                    `json:"package,omitempty"`
	Mode    commission.Mode           `json:"mode" validate:"required,oneof=fixed_daily fixed_monthly percentage"`
	Records []models.CommissionRecord `json:"records" validate:"dive"`
}

// CommissionOutput represents the JSON output structure for a commission batch
type CommissionOutput struct {
	Month       string                  `json:"month,omitempty"`
	Package     string                  `json:"package,omitempty"`
	BatchStatus models.CommissionStatus `json:"batch_status"`
	Summary     commission.Summary      `json:"summary"`
	Records     []CommissionLine        `json:"records"`
	Metadata    OutputMetadata          `json:"metadata"`
}

// CommissionLine is a recalculated record with its net due
type CommissionLine struct {
	models.CommissionRecord
	NetDue float64 `json:"net_due"`
}

func init() {
	rootCmd.AddCommand(commissionCmd)

	commissionCmd.Flags().Bool("toggle-status", false, "Flip the whole batch between paid and unpaid")
	commissionCmd.Flags().Bool("select-all", false, "Toggle selection of all records (all selected -> none)")
}

func runCommission(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("commission")

	toggleStatus, _ := cmd.Flags().GetBool("toggle-status")
	selectAll, _ := cmd.Flags().GetBool("select-all")
	places, _ := cmd.Flags().GetInt32("round")

	path := args[0]
	log.Info().
		Str("file", path).
		Bool("toggle_status", toggleStatus).
		Bool("select_all", selectAll).
		Msg("Starting commission recalculation")

	var batch CommissionBatch
	if err := readInput(path, &batch, log); err != nil {
		return err
	}

	mode, err := commission.ParseMode(string(batch.Mode))
	if err != nil {
		return fmt.Errorf("invalid batch: %w", err)
	}

	records := commission.RecalculateAll(batch.Records, mode)
	if selectAll {
		records = commission.ToggleSelectAll(records)
	}
	if toggleStatus {
		before := commission.BatchStatus(records)
		records = commission.ToggleBatchStatus(records)
		log.Info().
			Str("from", string(before)).
			Str("to", string(commission.BatchStatus(records))).
			Int("records", len(records)).
			Msg("Batch status toggled")
	}

	summary := commission.Summarize(records, mode)

	output := CommissionOutput{
		Month:       batch.Month,
		Package:     batch.Package,
		BatchStatus: commission.BatchStatus(records),
		Summary:     summary,
		Records:     make([]CommissionLine, len(records)),
		Metadata: OutputMetadata{
			FileName:    filepath.Base(path),
			ProcessedAt: time.Now(),
		},
	}
	for i, r := range records {
		output.Records[i] = CommissionLine{CommissionRecord: r, NetDue: commission.NetDue(r, mode)}
	}
	if places >= 0 {
		roundCommission(&output, places)
	}

	log.Info().
		Str("mode", string(mode)).
		Int("records", summary.Records).
		Int("selected", summary.Selected).
		Float64("total_due", summary.TotalDue).
		Msg("Commission batch recalculated")

	return writeOutput(cmd, output, log)
}

func roundCommission(out *CommissionOutput, places int32) {
	out.Summary.TotalDue = vat.Round(out.Summary.TotalDue, places)
	for i := range out.Records {
		r := &out.Records[i]
		r.Total = vat.Round(r.Total, places)
		r.Commission = vat.Round(r.Commission, places)
		r.Remaining = vat.Round(r.Remaining, places)
		r.NetDue = vat.Round(r.NetDue, places)
	}
}
