package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"vatdesk/internal/config"
	"vatdesk/internal/ledger"
	"vatdesk/internal/vat"
	"vatdesk/pkg/models"
)

// execute runs the root command with fresh flag values and returns stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func withConfig(t *testing.T, cfg *config.Config) {
	t.Helper()
	prev := appConfig
	appConfig = cfg
	t.Cleanup(func() { appConfig = prev })
}

func TestInvoiceCommand(t *testing.T) {
	path := writeFile(t, "invoice.json", `{
		"mode": "quantity",
		"lines": [
			{"product_name": "Licence", "quantity": 2, "unit_price": 100},
			{"product_name": "Support", "quantity": 1, "unit_price": 115, "is_unit_price_inclusive": true},
			{"product_name": "", "quantity": 5, "unit_price": 5}
		],
		"adjustments": [
			{"title": "Delivery", "type": "addition", "amount": 20, "is_taxable": true}
		]
	}`)

	stdout, err := execute(t, "invoice", path)
	require.NoError(t, err)

	var out InvoiceOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	require.NotNil(t, out.Invoice)
	assert.Equal(t, 1, out.Invoice.SkippedLines)
	assert.Equal(t, "15%", out.Metadata.VATRate)
	assert.Equal(t, "invoice.json", out.Metadata.FileName)

	// 200 + 100 net, 30 + 15 VAT, plus 20 net / 3 VAT delivery
	assert.Equal(t, 320.0, out.Invoice.Totals.TotalBeforeVAT)
	assert.Equal(t, 48.0, out.Invoice.Totals.TotalVAT)
	assert.Equal(t, 368.0, out.Invoice.Totals.TotalWithVAT)
	assert.Empty(t, out.Warnings)
}

func TestInvoiceCommandRateAndCheck(t *testing.T) {
	path := writeFile(t, "invoice.json", `{
		"mode": "total",
		"lines": [{"product_name": "Audit", "quantity": 4, "total_with_vat": 120}],
		"totals": {"total_before_vat": 100, "total_vat": 25, "total_with_vat": 125}
	}`)

	stdout, err := execute(t, "invoice", path, "--rate", "20%", "--check")
	require.NoError(t, err)

	var out InvoiceOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, 100.0, out.Invoice.Totals.TotalBeforeVAT)
	assert.Equal(t, 25.0, out.Invoice.Lines[0].UnitPrice)
	// stated VAT and total are 5 off the recomputation
	assert.Len(t, out.Warnings, 2)
}

func TestInvoiceCommandErrors(t *testing.T) {
	_, err := execute(t, "invoice", filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "not found")

	bad := writeFile(t, "bad.json", `{"mode": "hourly", "lines": []}`)
	_, err = execute(t, "invoice", bad)
	assert.ErrorContains(t, err, "invalid input")

	empty := writeFile(t, "empty.json", `{"mode": "total", "lines": [{"product_name": " ", "total_with_vat": 10}]}`)
	_, err = execute(t, "invoice", empty)
	assert.ErrorContains(t, err, "no line with a product name")

	negative := writeFile(t, "negative.json", `{"mode": "quantity", "lines": [{"product_name": "x", "quantity": -1}]}`)
	_, err = execute(t, "invoice", negative)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Field, "Lines[0]")
	assert.Contains(t, verr.Field, "Quantity")
	assert.Equal(t, "must not be less than 0", verr.Message)
}

func TestInvoiceCommandUsesConfiguredRate(t *testing.T) {
	withConfig(t, &config.Config{VATRate: vat.Rate(0.05), LedgerSource: config.LedgerSourceNone})

	path := writeFile(t, "invoice.json", `{"mode": "quantity", "lines": [{"product_name": "Book", "quantity": 1, "unit_price": 40}]}`)
	stdout, err := execute(t, "invoice", path)
	require.NoError(t, err)

	var out InvoiceOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, 2.0, out.Invoice.Totals.TotalVAT)
	assert.Equal(t, "5%", out.Metadata.VATRate)
}

const commissionBatch = `{
	"month": "2025-03",
	"mode": "fixed_daily",
	"records": [
		{"employee_id": "E1", "daily_amount": 100, "days": 20, "bonus": 50, "selected": true, "status": "paid"},
		{"employee_id": "E2", "daily_amount": 80, "days": 10, "deduction": 30, "selected": true},
		{"employee_id": "E3", "daily_amount": 90, "days": 5}
	]
}`

func TestCommissionCommand(t *testing.T) {
	path := writeFile(t, "batch.json", commissionBatch)

	stdout, err := execute(t, "commission", path)
	require.NoError(t, err)

	var out CommissionOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	require.Len(t, out.Records, 3)
	assert.Equal(t, 2000.0, out.Records[0].Total)
	assert.Equal(t, 2050.0, out.Records[0].NetDue)
	assert.Equal(t, models.CommissionUnpaid, out.Records[1].Status)
	assert.Equal(t, models.CommissionUnpaid, out.BatchStatus)

	assert.Equal(t, 2, out.Summary.Selected)
	assert.Equal(t, 1, out.Summary.Paid)
	assert.Equal(t, 1, out.Summary.Unpaid)
	assert.Equal(t, 2050.0+770.0, out.Summary.TotalDue)
}

func TestCommissionCommandToggles(t *testing.T) {
	path := writeFile(t, "batch.json", commissionBatch)

	stdout, err := execute(t, "commission", path, "--toggle-status", "--select-all")
	require.NoError(t, err)

	var out CommissionOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, models.CommissionPaid, out.BatchStatus)
	assert.Equal(t, 3, out.Summary.Selected)
	assert.Equal(t, 3, out.Summary.Paid)
	assert.Equal(t, 2050.0+770.0+450.0, out.Summary.TotalDue)
}

func TestDeclarationCommandManual(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "q2.json")
	_, err := execute(t, "declaration", "--year", "2025", "--quarter", "2",
		"--sales", "100000", "--purchases", "40000", "-o", outPath)
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)

	var out DeclarationOutput
	require.NoError(t, json.Unmarshal(data, &out))
	decl := out.Declaration
	assert.NotEmpty(t, decl.ID)
	assert.Equal(t, models.DeclarationDraft, decl.Status)
	assert.Equal(t, "2025-04-01", decl.StartDate.Format("2006-01-02"))
	assert.Equal(t, "2025-06-30", decl.EndDate.Format("2006-01-02"))
	assert.Equal(t, 15000.0, decl.TotalOutputTax)
	assert.Equal(t, 6000.0, decl.TotalInputTax)
	assert.Equal(t, 9000.0, decl.NetTaxPayable)
	assert.ElementsMatch(t, []models.DeclarationStatus{models.DeclarationSubmitted, models.DeclarationDeleted}, out.NextStatus)

	// submit, then complete, then a second completion is a no-op
	stdout, err := execute(t, "declaration", "status", outPath, "submitted")
	require.NoError(t, err)
	submitted := filepath.Join(t.TempDir(), "submitted.json")
	require.NoError(t, os.WriteFile(submitted, []byte(stdout), 0o644))

	_, err = execute(t, "declaration", "status", submitted, "draft")
	assert.ErrorContains(t, err, "cannot move declaration")

	_, err = execute(t, "declaration", "recollect", submitted)
	assert.ErrorContains(t, err, "no longer a draft")

	stdout, err = execute(t, "declaration", "status", submitted, "completed")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, models.DeclarationCompleted, out.Declaration.Status)
	assert.Empty(t, out.NextStatus)
}

func TestDeclarationCommandErrors(t *testing.T) {
	withConfig(t, nil)

	_, err := execute(t, "declaration", "--year", "2025", "--quarter", "5", "--sales", "1")
	assert.ErrorContains(t, err, "between 1 and 4")

	_, err = execute(t, "declaration", "--year", "2025", "--quarter", "1")
	assert.ErrorContains(t, err, "no ledger source configured")
}

func TestDeclarationCommandFromDatabase(t *testing.T) {
	dsn := "file:cmd_declaration?mode=memory&cache=shared"
	db, err := ledger.OpenDatabase("sqlite", dsn, false)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	require.NoError(t, db.AutoMigrate(ledger.Tables...))
	require.NoError(t, db.Create(&ledger.SalesInvoice{IssueDate: day(2025, 8, 4), TotalAmount: 1000, VATTotal: 150}).Error)
	require.NoError(t, db.Create(&ledger.MonthlyExpense{ExpenseDate: day(2025, 9, 30), Amount: 400, TaxValue: 60}).Error)
	require.NoError(t, db.Create(&ledger.MonthlyExpense{ExpenseDate: day(2025, 10, 1), Amount: 999, TaxValue: 1}).Error)

	withConfig(t, &config.Config{
		VATRate:        vat.Standard,
		LedgerSource:   config.LedgerSourceDatabase,
		DatabaseDriver: "sqlite",
		DatabaseDSN:    dsn,
	})

	stdout, err := execute(t, "declaration", "--year", "2025", "--quarter", "3")
	require.NoError(t, err)

	var out DeclarationOutput
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	decl := out.Declaration
	assert.Equal(t, 1000.0, decl.TotalSalesTaxable)
	assert.Equal(t, 400.0, decl.TotalPurchasesTaxable)
	assert.Equal(t, 90.0, decl.NetTaxPayable)
	assert.Len(t, decl.Details, 5)
	assert.Empty(t, decl.Warnings)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
