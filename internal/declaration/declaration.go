// Package declaration builds quarterly VAT declarations from period sales and purchase figures.
package declaration

import (
	"github.com/google/uuid"
	"vatdesk/internal/vat"
	"vatdesk/pkg/models"
)

// Totals are the monetary fields of a declaration.
type Totals struct {
	TotalSalesTaxable     float64
	TotalOutputTax        float64
	TotalPurchasesTaxable float64
	TotalInputTax         float64
	NetTaxPayable         float64
}

// Aggregate applies rate to both sides of the period. A negative NetTaxPayable
// is a refundable credit.
func Aggregate(figures models.PeriodFigures, rate vat.Rate) Totals {
	t := Totals{
		TotalSalesTaxable:     figures.TotalSalesTaxable,
		TotalPurchasesTaxable: figures.TotalPurchasesTaxable,
		TotalOutputTax:        figures.TotalSalesTaxable * float64(rate),
		TotalInputTax:         figures.TotalPurchasesTaxable * float64(rate),
	}
	t.NetTaxPayable = t.TotalOutputTax - t.TotalInputTax
	return t
}

// ApplyTo copies the totals onto decl.
func (t Totals) ApplyTo(decl *models.TaxDeclaration) {
	decl.TotalSalesTaxable = t.TotalSalesTaxable
	decl.TotalOutputTax = t.TotalOutputTax
	decl.TotalPurchasesTaxable = t.TotalPurchasesTaxable
	decl.TotalInputTax = t.TotalInputTax
	decl.NetTaxPayable = t.NetTaxPayable
}

// NewDraft creates a draft declaration for a quarter from already collected figures.
func NewDraft(year, quarter int, figures models.PeriodFigures, rate vat.Rate) (*models.TaxDeclaration, error) {
	start, end, err := QuarterPeriod(year, quarter)
	if err != nil {
		return nil, &DeclarationError{Op: "NewDraft", Err: err}
	}

	decl := &models.TaxDeclaration{
		ID:            uuid.NewString(),
		PeriodYear:    year,
		PeriodQuarter: quarter,
		StartDate:     start,
		EndDate:       end,
		Status:        models.DeclarationDraft,
	}
	Aggregate(figures, rate).ApplyTo(decl)
	return decl, nil
}

// Rounded returns a copy of decl with its amounts rounded for display.
func Rounded(decl models.TaxDeclaration, places int32) models.TaxDeclaration {
	decl.TotalSalesTaxable = vat.Round(decl.TotalSalesTaxable, places)
	decl.TotalOutputTax = vat.Round(decl.TotalOutputTax, places)
	decl.TotalPurchasesTaxable = vat.Round(decl.TotalPurchasesTaxable, places)
	decl.TotalInputTax = vat.Round(decl.TotalInputTax, places)
	decl.NetTaxPayable = vat.Round(decl.NetTaxPayable, places)

	details := make([]models.LedgerTotals, len(decl.Details))
	for i, d := range decl.Details {
		d.Taxable = vat.Round(d.Taxable, places)
		d.VAT = vat.Round(d.VAT, places)
		details[i] = d
	}
	decl.Details = details
	return decl
}
