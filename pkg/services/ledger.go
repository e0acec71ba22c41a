package services

import (
	"context"
	"time"

	"vatdesk/pkg/models"
)

// LedgerService supplies period totals from the sales and purchase ledgers.
// Implementations live outside the calculation core (Google Sheets, SQL).
type LedgerService interface {
	// LedgerTotals sums one ledger for entries dated within [start, end], both inclusive.
	LedgerTotals(ctx context.Context, ledger models.LedgerKind, start, end time.Time) (models.LedgerTotals, error)

	// Name identifies the backing source in logs.
	Name() string
}
