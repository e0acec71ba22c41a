// Package ledger reads period totals from the sales and purchase ledgers that
// feed tax declarations.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"vatdesk/internal/logger"
	"vatdesk/internal/sheets"
	"vatdesk/pkg/models"
	"vatdesk/pkg/services"
)

// RangeReader reads raw cell values; *sheets.Service implements it.
type RangeReader interface {
	ReadRange(ctx context.Context, rangeSpec string) ([][]interface{}, error)
}

var _ RangeReader = (*sheets.Service)(nil)

// SheetsSource reads one worksheet per ledger, named after the ledger
// (e.g. "sales_invoices") unless overridden.
//
// Expected columns: A=Date, B=Reference, C=Taxable amount, D=VAT. Row 1 is a header.
type SheetsSource struct {
	reader     RangeReader
	sheetNames map[models.LedgerKind]string
	log        zerolog.Logger
}

var _ services.LedgerService = (*SheetsSource)(nil)

// NewSheetsSource creates a ledger source over a spreadsheet.
func NewSheetsSource(reader RangeReader) *SheetsSource {
	return &SheetsSource{
		reader:     reader,
		sheetNames: map[models.LedgerKind]string{},
		log:        logger.WithComponent("ledger-sheets"),
	}
}

// WithSheetName maps a ledger to a differently named worksheet.
func (s *SheetsSource) WithSheetName(kind models.LedgerKind, sheet string) *SheetsSource {
	s.sheetNames[kind] = sheet
	return s
}

// Name implements services.LedgerService.
func (s *SheetsSource) Name() string { return "sheets" }

func (s *SheetsSource) sheetName(kind models.LedgerKind) string {
	if name, ok := s.sheetNames[kind]; ok {
		return name
	}
	return string(kind)
}

// LedgerTotals implements services.LedgerService.
func (s *SheetsSource) LedgerTotals(ctx context.Context, kind models.LedgerKind, start, end time.Time) (models.LedgerTotals, error) {
	const op = "LedgerTotals"
	log := logger.WithContext(ctx, s.log)

	sheetName := s.sheetName(kind)
	log.Info().Str("sheet", sheetName).Str("ledger", string(kind)).Msg("Reading ledger")

	values, err := s.reader.ReadRange(ctx, fmt.Sprintf("'%s'!A:D", sheetName))
	if err != nil {
		return models.LedgerTotals{}, fmt.Errorf("%s: failed to read %s sheet: %w", op, sheetName, err)
	}

	totals := models.LedgerTotals{Ledger: kind}
	if len(values) <= 1 {
		return totals, nil
	}

	taxable, vatSum := decimal.Zero, decimal.Zero
	skipped := 0
	for i, row := range values[1:] {
		rowNum := i + 2 // header row and 1-based numbering

		date, err := parseDate(getString(row, 0))
		if err != nil {
			if getString(row, 0) != "" {
				log.Warn().Err(err).Int("row", rowNum).Str("sheet", sheetName).Msg("Skipping ledger row with invalid date")
				skipped++
			}
			continue
		}
		if !within(date, start, end) {
			continue
		}

		net, err := parseAmount(getString(row, 2))
		if err != nil {
			log.Warn().Err(err).Int("row", rowNum).Str("sheet", sheetName).Msg("Skipping ledger row with invalid amount")
			skipped++
			continue
		}
		tax, err := parseAmount(getString(row, 3))
		if err != nil {
			log.Warn().Err(err).Int("row", rowNum).Str("sheet", sheetName).Msg("Invalid VAT amount, using 0")
			tax = decimal.Zero
		}

		taxable = taxable.Add(net)
		vatSum = vatSum.Add(tax)
		totals.Entries++
	}

	totals.Taxable = taxable.InexactFloat64()
	totals.VAT = vatSum.InexactFloat64()

	log.Info().
		Str("sheet", sheetName).
		Int("total_rows", len(values)-1).
		Int("entries", totals.Entries).
		Int("skipped", skipped).
		Float64("taxable", totals.Taxable).
		Msg("Ledger read successfully")

	return totals, nil
}
