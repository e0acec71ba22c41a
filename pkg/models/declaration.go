package models

import "time"

// DeclarationStatus is the lifecycle state of a tax declaration.
type DeclarationStatus string

const (
	DeclarationDraft     DeclarationStatus = "draft"
	DeclarationSubmitted DeclarationStatus = "submitted"
	DeclarationCompleted DeclarationStatus = "completed"
	DeclarationDeleted   DeclarationStatus = "deleted"
)

// TaxDeclaration is a quarterly VAT return.
type TaxDeclaration struct {
	ID            string    `json:"id"`
	PeriodYear    int       `json:"period_year"`
	PeriodQuarter int       `json:"period_quarter"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`

	TotalSalesTaxable     float64 `json:"total_sales_taxable"`
	TotalOutputTax        float64 `json:"total_output_tax"`
	TotalPurchasesTaxable float64 `json:"total_purchases_taxable"`
	TotalInputTax         float64 `json:"total_input_tax"`

	// Positive is owed to the authority, negative is a refundable credit.
	NetTaxPayable float64 `json:"net_tax_payable"`

	Status DeclarationStatus `json:"status"`

	Details  []LedgerTotals `json:"details,omitempty"`
	Warnings []string       `json:"warnings,omitempty"`
}

// LedgerKind identifies a source ledger feeding a declaration.
type LedgerKind string

const (
	LedgerSalesInvoices   LedgerKind = "sales_invoices"
	LedgerManualIncome    LedgerKind = "manual_income"
	LedgerReceiptVouchers LedgerKind = "receipt_vouchers"
	LedgerMonthlyExpenses LedgerKind = "monthly_expenses"
	LedgerPaymentVouchers LedgerKind = "payment_vouchers"
)

// OutputLedgers feed the sales (output tax) side.
var OutputLedgers = []LedgerKind{LedgerSalesInvoices, LedgerManualIncome, LedgerReceiptVouchers}

// InputLedgers feed the purchases (input tax) side.
var InputLedgers = []LedgerKind{LedgerMonthlyExpenses, LedgerPaymentVouchers}

// LedgerTotals is the sum of one ledger over a period.
type LedgerTotals struct {
	Ledger  LedgerKind `json:"ledger"`
	Taxable float64    `json:"taxable"`
	// VAT as booked in the ledger itself.
	VAT     float64 `json:"vat"`
	Entries int     `json:"entries"`
}

// PeriodFigures are the externally collected taxable totals for a period.
type PeriodFigures struct {
	TotalSalesTaxable     float64
	TotalPurchasesTaxable float64
}
