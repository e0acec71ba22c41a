package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"vatdesk/internal/config"
	"vatdesk/internal/declaration"
	"vatdesk/internal/ledger"
	"vatdesk/internal/logger"
	"vatdesk/internal/sheets"
	"vatdesk/internal/vat"
	"vatdesk/pkg/models"
	"vatdesk/pkg/services"
)

var declarationCmd = &cobra.Command{
	Use:   "declaration",
	Short: "Prepare a quarterly VAT declaration",
	Long: `Prepare a draft VAT declaration for a calendar quarter.

Taxable totals are either given with --sales and --purchases or collected
from the ledger source configured by LEDGER_SOURCE:

  sheets    one worksheet per ledger in GOOGLE_SHEET_URL
            (columns: Date, Reference, Taxable amount, VAT)
  database  ledger tables in DATABASE_DSN (DATABASE_DRIVER=postgres|sqlite)

Output tax sales x rate, input tax purchases x rate, and the net payable
(output - input, negative for a refundable credit) are computed from them.`,
	Example: `  # Current quarter from the configured ledgers
  vatdesk declaration

  # Q2 2025 from manually entered figures
  vatdesk declaration --year 2025 --quarter 2 --sales 100000 --purchases 40000

  # Submit a saved draft
  vatdesk declaration status q2.json submitted`,
	Args: cobra.NoArgs,
	RunE: runDeclaration,
}

var declarationStatusCmd = &cobra.Command{
	Use:   "status [declaration.json] [draft|submitted|completed|deleted]",
	Short: "Move a saved declaration to another status",
	Long: `Move a saved declaration along draft -> submitted -> completed, or
draft -> deleted. Any other change is rejected.`,
	Args: cobra.ExactArgs(2),
	RunE: runDeclarationStatus,
}

var declarationRecollectCmd = &cobra.Command{
	Use:   "recollect [declaration.json]",
	Short: "Refresh the figures of a saved draft from the ledgers",
	Args:  cobra.ExactArgs(1),
	RunE:  runDeclarationRecollect,
}

// SavedDeclaration is a declaration read back from a previous run's output
type SavedDeclaration struct {
	Declaration models.TaxDeclaration `json:"declaration"`
}

// DeclarationOutput represents the JSON output structure for a declaration
type DeclarationOutput struct {
	Declaration models.TaxDeclaration      `json:"declaration"`
	NextStatus  []models.DeclarationStatus `json:"next_status"`
	Metadata    OutputMetadata             `json:"metadata"`
}

func init() {
	rootCmd.AddCommand(declarationCmd)
	declarationCmd.AddCommand(declarationStatusCmd)
	declarationCmd.AddCommand(declarationRecollectCmd)

	now := time.Now()
	declarationCmd.Flags().Int("year", now.Year(), "Declaration year")
	declarationCmd.Flags().Int("quarter", declaration.QuarterOf(now), "Declaration quarter (1-4)")
	declarationCmd.Flags().Float64("sales", 0, "Total taxable sales for the quarter (skips ledger collection)")
	declarationCmd.Flags().Float64("purchases", 0, "Total taxable purchases for the quarter (skips ledger collection)")
	declarationCmd.PersistentFlags().Uint("company-id", 0, "Restrict database ledgers to one company (0 = all)")
	declarationCmd.PersistentFlags().Int("timeout", 60, "Ledger collection timeout in seconds")
}

func runDeclaration(cmd *cobra.Command, args []string) error {
	year, _ := cmd.Flags().GetInt("year")
	quarter, _ := cmd.Flags().GetInt("quarter")
	sales, _ := cmd.Flags().GetFloat64("sales")
	purchases, _ := cmd.Flags().GetFloat64("purchases")
	manual := cmd.Flags().Changed("sales") || cmd.Flags().Changed("purchases")

	log := logger.WithFields(map[string]interface{}{
		"component": "declaration",
		"year":      year,
		"quarter":   quarter,
	})

	rate, err := vatRate(cmd)
	if err != nil {
		return err
	}

	log.Info().
		Bool("manual", manual).
		Str("rate", rate.String()).
		Msg("Preparing tax declaration")

	var decl *models.TaxDeclaration
	if manual {
		if sales < 0 || purchases < 0 {
			return fmt.Errorf("--sales and --purchases must not be negative")
		}
		decl, err = declaration.NewDraft(year, quarter, models.PeriodFigures{
			TotalSalesTaxable:     sales,
			TotalPurchasesTaxable: purchases,
		}, rate)
	} else {
		decl, err = collectDeclaration(cmd, year, quarter, rate, log)
	}
	if err != nil {
		return handleDeclarationError(err, log)
	}

	return writeDeclaration(cmd, decl, rate.String(), log)
}

func collectDeclaration(cmd *cobra.Command, year, quarter int, rate vat.Rate, log zerolog.Logger) (*models.TaxDeclaration, error) {
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")
	ctx, cancel := commandContext(time.Duration(timeoutSecs)*time.Second, log)
	defer cancel()

	source, closeSource, err := openLedgerSource(ctx, cmd, log)
	if err != nil {
		return nil, err
	}
	defer closeSource()

	return declaration.NewCollector(source, rate).Collect(ctx, year, quarter)
}

func runDeclarationStatus(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("declaration-status")

	var saved SavedDeclaration
	if err := readInput(args[0], &saved, log); err != nil {
		return err
	}
	decl := saved.Declaration
	target := models.DeclarationStatus(args[1])

	from := decl.Status
	if err := declaration.Transition(&decl, target); err != nil {
		log.Error().
			Err(err).
			Str("declaration_id", decl.ID).
			Str("from", string(from)).
			Str("to", string(target)).
			Msg("Status change rejected")
		if errors.Is(err, declaration.ErrInvalidTransition) {
			return fmt.Errorf("cannot move declaration from %s to %s (allowed: %v)",
				from, target, declaration.AllowedTransitions(from))
		}
		return err
	}

	log.Info().
		Str("declaration_id", decl.ID).
		Str("from", string(from)).
		Str("to", string(decl.Status)).
		Msg("Declaration status changed")

	return writeDeclaration(cmd, &decl, "", log)
}

func runDeclarationRecollect(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("declaration-recollect")

	var saved SavedDeclaration
	if err := readInput(args[0], &saved, log); err != nil {
		return err
	}
	decl := saved.Declaration

	if declaration.IsLocked(&decl) {
		return handleDeclarationError(&declaration.DeclarationError{
			Op: "Recollect", Err: declaration.ErrDeclarationLocked, DeclarationID: decl.ID,
		}, log)
	}

	rate, err := vatRate(cmd)
	if err != nil {
		return err
	}

	timeoutSecs, _ := cmd.Flags().GetInt("timeout")
	ctx, cancel := commandContext(time.Duration(timeoutSecs)*time.Second, log)
	defer cancel()

	source, closeSource, err := openLedgerSource(ctx, cmd, log)
	if err != nil {
		return err
	}
	defer closeSource()

	if err := declaration.NewCollector(source, rate).Recollect(ctx, &decl); err != nil {
		return handleDeclarationError(err, log)
	}

	return writeDeclaration(cmd, &decl, rate.String(), log)
}

// openLedgerSource builds the ledger source selected by LEDGER_SOURCE.
func openLedgerSource(ctx context.Context, cmd *cobra.Command, log zerolog.Logger) (services.LedgerService, func(), error) {
	noop := func() {}

	if appConfig == nil || appConfig.LedgerSource == config.LedgerSourceNone {
		return nil, noop, fmt.Errorf("no ledger source configured. Either pass --sales and --purchases, or set:\n" +
			"  LEDGER_SOURCE=sheets with GOOGLE_SHEET_URL, or\n" +
			"  LEDGER_SOURCE=database with DATABASE_DRIVER and DATABASE_DSN")
	}

	switch appConfig.LedgerSource {
	case config.LedgerSourceSheets:
		svc, err := sheets.NewSheetsService(ctx, appConfig.GoogleSheetURL)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to initialize Google Sheets service: %w", err)
		}
		log.Info().Str("spreadsheet_id", svc.SpreadsheetID()).Msg("Google Sheets ledger source initialized")
		return ledger.NewSheetsSource(svc), noop, nil

	case config.LedgerSourceDatabase:
		companyID, _ := cmd.Flags().GetUint("company-id")
		db, err := ledger.OpenDatabase(appConfig.DatabaseDriver, appConfig.DatabaseDSN, appConfig.DatabaseDebug)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to open ledger database: %w", err)
		}
		closeDB := func() {
			if sqlDB, err := db.DB(); err == nil {
				if closeErr := sqlDB.Close(); closeErr != nil {
					log.Warn().Err(closeErr).Msg("Failed to close ledger database")
				}
			}
		}
		log.Info().
			Str("driver", appConfig.DatabaseDriver).
			Uint("company_id", companyID).
			Msg("Database ledger source initialized")
		return ledger.NewDatabaseSource(db, companyID), closeDB, nil
	}

	return nil, noop, fmt.Errorf("unsupported ledger source %q", appConfig.LedgerSource)
}

func writeDeclaration(cmd *cobra.Command, decl *models.TaxDeclaration, rate string, log zerolog.Logger) error {
	places, _ := cmd.Flags().GetInt32("round")

	out := *decl
	if places >= 0 {
		out = declaration.Rounded(out, places)
	}

	log.Info().
		Str("declaration_id", decl.ID).
		Str("status", string(decl.Status)).
		Float64("net_tax_payable", decl.NetTaxPayable).
		Int("warnings", len(decl.Warnings)).
		Msg("Tax declaration ready")

	return writeOutput(cmd, DeclarationOutput{
		Declaration: out,
		NextStatus:  declaration.AllowedTransitions(decl.Status),
		Metadata: OutputMetadata{
			VATRate:     rate,
			ProcessedAt: time.Now(),
		},
	}, log)
}

// handleDeclarationError provides user-friendly error messages for declaration failures
func handleDeclarationError(err error, log zerolog.Logger) error {
	log.Error().Err(err).Msg("Tax declaration failed")

	switch {
	case errors.Is(err, declaration.ErrInvalidQuarter):
		return fmt.Errorf("invalid --quarter: must be between 1 and 4")
	case errors.Is(err, declaration.ErrDeclarationLocked):
		return fmt.Errorf("declaration is no longer a draft; its figures cannot be recollected")
	case errors.Is(err, declaration.ErrLedgerUnavailable):
		return fmt.Errorf("could not read all ledgers, no declaration was produced:\n%w", err)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("ledger collection timed out. Try increasing --timeout")
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("ledger collection was canceled")
	default:
		return fmt.Errorf("tax declaration failed: %w", err)
	}
}
