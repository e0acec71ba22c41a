package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"vatdesk/internal/logger"
	"vatdesk/pkg/models"
	"vatdesk/pkg/services"
)

// SalesInvoice is a row of the sales_invoices table.
type SalesInvoice struct {
	ID          uint      `gorm:"primaryKey"`
	CompanyID   uint      `gorm:"index"`
	IssueDate   time.Time `gorm:"index;not null"`
	TotalAmount float64   `gorm:"column:total_amount"`
	VATTotal    float64   `gorm:"column:vat_total"`
}

func (SalesInvoice) TableName() string { return "sales_invoices" }

// ManualIncome is a row of the manual_income table.
type ManualIncome struct {
	ID         uint      `gorm:"primaryKey"`
	CompanyID  uint      `gorm:"index"`
	IncomeDate time.Time `gorm:"index;not null"`
	Amount     float64   `gorm:"column:amount"`
	VAT        float64   `gorm:"column:vat"`
}

func (ManualIncome) TableName() string { return "manual_income" }

// ReceiptVoucher is a row of the receipt_vouchers table.
type ReceiptVoucher struct {
	ID          uint      `gorm:"primaryKey"`
	CompanyID   uint      `gorm:"index"`
	ReceiptDate time.Time `gorm:"index;not null"`
	Amount      float64   `gorm:"column:amount"`
	TaxValue    float64   `gorm:"column:tax_value"`
}

func (ReceiptVoucher) TableName() string { return "receipt_vouchers" }

// MonthlyExpense is a row of the monthly_expenses table.
type MonthlyExpense struct {
	ID          uint      `gorm:"primaryKey"`
	CompanyID   uint      `gorm:"index"`
	ExpenseDate time.Time `gorm:"index;not null"`
	Amount      float64   `gorm:"column:amount"`
	TaxValue    float64   `gorm:"column:tax_value"`
}

func (MonthlyExpense) TableName() string { return "monthly_expenses" }

// PaymentVoucher is a row of the payment_vouchers table.
type PaymentVoucher struct {
	ID          uint      `gorm:"primaryKey"`
	CompanyID   uint      `gorm:"index"`
	VoucherDate time.Time `gorm:"index;not null"`
	Amount      float64   `gorm:"column:amount"`
	TaxValue    float64   `gorm:"column:tax_value"`
}

func (PaymentVoucher) TableName() string { return "payment_vouchers" }

// Tables lists every ledger model, for AutoMigrate.
var Tables = []interface{}{
	&SalesInvoice{}, &ManualIncome{}, &ReceiptVoucher{}, &MonthlyExpense{}, &PaymentVoucher{},
}

type tableSpec struct {
	table, dateColumn, taxableColumn, vatColumn string
}

var ledgerTables = map[models.LedgerKind]tableSpec{
	models.LedgerSalesInvoices:   {"sales_invoices", "issue_date", "total_amount", "vat_total"},
	models.LedgerManualIncome:    {"manual_income", "income_date", "amount", "vat"},
	models.LedgerReceiptVouchers: {"receipt_vouchers", "receipt_date", "amount", "tax_value"},
	models.LedgerMonthlyExpenses: {"monthly_expenses", "expense_date", "amount", "tax_value"},
	models.LedgerPaymentVouchers: {"payment_vouchers", "voucher_date", "amount", "tax_value"},
}

// OpenDatabase connects to postgres or sqlite. SQL logging is silent unless debug is set.
func OpenDatabase(driver, dsn string, debug bool) (*gorm.DB, error) {
	const op = "OpenDatabase"

	logLevel := gormlogger.Silent
	if debug {
		logLevel = gormlogger.Info
	}
	cfg := &gorm.Config{Logger: gormlogger.Default.LogMode(logLevel)}

	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(normalizeDSN(dsn))
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("%s: unsupported database driver %q", op, driver)
	}

	db, err := gorm.Open(dialector, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to connect database: %w", op, err)
	}
	if err := db.Exec("SELECT 1").Error; err != nil {
		return nil, fmt.Errorf("%s: db ping failed: %w", op, err)
	}
	return db, nil
}

// normalizeDSN trims quotes and adds sslmode=disable to key=value DSNs that lack it.
func normalizeDSN(raw string) string {
	s := strings.Trim(strings.TrimSpace(raw), "\"'")
	lower := strings.ToLower(s)
	if s == "" || strings.HasPrefix(lower, "postgres://") || strings.HasPrefix(lower, "postgresql://") {
		return s
	}
	if !strings.Contains(s, "=") {
		return s
	}
	s = strings.Join(strings.Fields(s), " ")
	if !strings.Contains(lower, "sslmode=") {
		s += " sslmode=disable"
	}
	return s
}

// DatabaseSource sums ledger tables with SQL aggregates.
type DatabaseSource struct {
	db        *gorm.DB
	companyID uint
	log       zerolog.Logger
}

var _ services.LedgerService = (*DatabaseSource)(nil)

// NewDatabaseSource reads ledgers from db. A non-zero companyID restricts every query to that company.
func NewDatabaseSource(db *gorm.DB, companyID uint) *DatabaseSource {
	return &DatabaseSource{
		db:        db,
		companyID: companyID,
		log:       logger.WithComponent("ledger-database"),
	}
}

// Name implements services.LedgerService.
func (s *DatabaseSource) Name() string { return "database" }

// LedgerTotals implements services.LedgerService.
func (s *DatabaseSource) LedgerTotals(ctx context.Context, kind models.LedgerKind, start, end time.Time) (models.LedgerTotals, error) {
	const op = "LedgerTotals"
	log := logger.WithContext(ctx, s.log)

	spec, ok := ledgerTables[kind]
	if !ok {
		return models.LedgerTotals{}, fmt.Errorf("%s: unknown ledger %q", op, kind)
	}

	var row struct {
		Taxable float64
		VAT     float64 `gorm:"column:vat"`
		Entries int
	}

	// end is a calendar day; everything before the next midnight belongs to it
	until := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, end.Location()).AddDate(0, 0, 1)

	q := s.db.WithContext(ctx).
		Table(spec.table).
		Select(fmt.Sprintf("COALESCE(SUM(%s), 0) AS taxable, COALESCE(SUM(%s), 0) AS vat, COUNT(*) AS entries",
			spec.taxableColumn, spec.vatColumn)).
		Where(fmt.Sprintf("%s >= ? AND %s < ?", spec.dateColumn, spec.dateColumn), start, until)
	if s.companyID != 0 {
		q = q.Where("company_id = ?", s.companyID)
	}
	if err := q.Scan(&row).Error; err != nil {
		return models.LedgerTotals{}, fmt.Errorf("%s: failed to sum %s: %w", op, spec.table, err)
	}

	log.Debug().
		Str("table", spec.table).
		Uint("company_id", s.companyID).
		Int("entries", row.Entries).
		Float64("taxable", row.Taxable).
		Msg("Ledger summed")

	return models.LedgerTotals{Ledger: kind, Taxable: row.Taxable, VAT: row.VAT, Entries: row.Entries}, nil
}
