package declaration

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"vatdesk/internal/logger"
	"vatdesk/internal/vat"
	"vatdesk/pkg/models"
	"vatdesk/pkg/services"
)

// DefaultDiscrepancyTolerance is the percentage gap between booked and computed
// tax above which a declaration carries a warning.
const DefaultDiscrepancyTolerance = 1.0

// Collector builds declarations from the sales and purchase ledgers.
type Collector struct {
	ledgers   services.LedgerService
	rate      vat.Rate
	tolerance float64
	log       zerolog.Logger
}

// NewCollector creates a collector reading from ledgers and taxing at rate.
func NewCollector(ledgers services.LedgerService, rate vat.Rate) *Collector {
	return &Collector{
		ledgers:   ledgers,
		rate:      rate,
		tolerance: DefaultDiscrepancyTolerance,
		log:       logger.WithComponent("declaration-collector"),
	}
}

// Collect creates a draft declaration for the quarter.
func (c *Collector) Collect(ctx context.Context, year, quarter int) (*models.TaxDeclaration, error) {
	const op = "Collect"

	start, end, err := QuarterPeriod(year, quarter)
	if err != nil {
		return nil, &DeclarationError{Op: op, Err: err}
	}

	c.log.Info().
		Int("year", year).
		Int("quarter", quarter).
		Str("source", c.ledgers.Name()).
		Msg("Collecting tax declaration figures")

	figures, details, err := c.collect(ctx, start, end)
	if err != nil {
		return nil, &DeclarationError{Op: op, Err: err, Details: fmt.Sprintf("period %d Q%d", year, quarter)}
	}

	decl, err := NewDraft(year, quarter, figures, c.rate)
	if err != nil {
		return nil, err
	}
	decl.Details = details
	decl.Warnings = c.compareBookedTax(decl)

	c.log.Info().
		Str("declaration_id", decl.ID).
		Float64("output_tax", decl.TotalOutputTax).
		Float64("input_tax", decl.TotalInputTax).
		Float64("net_tax_payable", decl.NetTaxPayable).
		Int("warnings", len(decl.Warnings)).
		Msg("Tax declaration collected")

	return decl, nil
}

// Recollect refreshes the figures of a draft declaration over its own date range.
// Submitted and completed declarations are left untouched.
func (c *Collector) Recollect(ctx context.Context, decl *models.TaxDeclaration) error {
	const op = "Recollect"

	if IsLocked(decl) {
		c.log.Warn().
			Str("declaration_id", decl.ID).
			Str("status", string(decl.Status)).
			Msg("Refusing to recollect a locked declaration")
		return &DeclarationError{Op: op, Err: ErrDeclarationLocked, DeclarationID: decl.ID}
	}

	figures, details, err := c.collect(ctx, decl.StartDate, decl.EndDate)
	if err != nil {
		return &DeclarationError{Op: op, Err: err, DeclarationID: decl.ID}
	}

	Aggregate(figures, c.rate).ApplyTo(decl)
	decl.Details = details
	decl.Warnings = c.compareBookedTax(decl)
	return nil
}

// collect reads every ledger even when some fail, so all failures are reported together.
func (c *Collector) collect(ctx context.Context, start, end time.Time) (models.PeriodFigures, []models.LedgerTotals, error) {
	var (
		figures models.PeriodFigures
		details []models.LedgerTotals
		errs    *multierror.Error
	)

	read := func(kind models.LedgerKind) (float64, bool) {
		totals, err := c.ledgers.LedgerTotals(ctx, kind, start, end)
		if err != nil {
			c.log.Error().
				Err(err).
				Str("ledger", string(kind)).
				Msg("Failed to read ledger")
			errs = multierror.Append(errs, fmt.Errorf("%w: %s: %v", ErrLedgerUnavailable, kind, err))
			return 0, false
		}
		totals.Ledger = kind
		details = append(details, totals)

		c.log.Debug().
			Str("ledger", string(kind)).
			Float64("taxable", totals.Taxable).
			Float64("vat", totals.VAT).
			Int("entries", totals.Entries).
			Msg("Ledger totals read")
		return totals.Taxable, true
	}

	for _, kind := range models.OutputLedgers {
		if v, ok := read(kind); ok {
			figures.TotalSalesTaxable += v
		}
	}
	for _, kind := range models.InputLedgers {
		if v, ok := read(kind); ok {
			figures.TotalPurchasesTaxable += v
		}
	}

	if err := errs.ErrorOrNil(); err != nil {
		return models.PeriodFigures{}, nil, err
	}
	return figures, details, nil
}

// compareBookedTax flags periods where the VAT booked in the ledgers differs
// from the tax computed on their taxable amounts.
func (c *Collector) compareBookedTax(decl *models.TaxDeclaration) []string {
	var bookedOutput, bookedInput float64
	for _, d := range decl.Details {
		if isOutput(d.Ledger) {
			bookedOutput += d.VAT
		} else {
			bookedInput += d.VAT
		}
	}

	var warnings []string
	check := func(side string, booked, computed float64) {
		// ledgers that do not book VAT separately have nothing to compare
		if booked == 0 {
			return
		}
		pct := discrepancy(booked, computed)
		if pct <= c.tolerance {
			return
		}
		warnings = append(warnings, fmt.Sprintf("%s tax discrepancy: booked=%.2f, computed=%.2f (%.1f%% difference)",
			side, booked, computed, pct))
		c.log.Warn().
			Str("side", side).
			Float64("booked", booked).
			Float64("computed", computed).
			Float64("discrepancy_pct", pct).
			Msg("Booked VAT differs from computed VAT")
	}
	check("output", bookedOutput, decl.TotalOutputTax)
	check("input", bookedInput, decl.TotalInputTax)
	return warnings
}

func isOutput(kind models.LedgerKind) bool {
	for _, k := range models.OutputLedgers {
		if k == kind {
			return true
		}
	}
	return false
}

// discrepancy returns the percentage difference between two amounts.
func discrepancy(a, b float64) float64 {
	a, b = math.Abs(a), math.Abs(b)
	if a == 0 && b == 0 {
		return 0
	}
	if a == 0 || b == 0 {
		return 100
	}
	larger, smaller := math.Max(a, b), math.Min(a, b)
	return (larger - smaller) / larger * 100
}
