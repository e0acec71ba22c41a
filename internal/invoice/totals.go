package invoice

import "vatdesk/pkg/models"

// Aggregate folds lines and adjustments into invoice totals. Additions add,
// discounts subtract. Totals are not floored: a discount larger than the lines
// gives a negative invoice.
func Aggregate(lines []models.InvoiceLine, adjustments []models.Adjustment) models.InvoiceTotals {
	var t models.InvoiceTotals

	for _, l := range lines {
		t.TotalBeforeVAT += l.BeforeVAT
		t.TotalVAT += l.VATAmount
		t.TotalWithVAT += l.TotalWithVAT
	}

	for _, a := range adjustments {
		sign := -1.0
		if a.Type == models.AdjustmentAddition {
			sign = 1.0
		}
		t.TotalVAT += sign * a.VATAmount
		t.TotalWithVAT += sign * a.TotalWithVAT
		t.TotalBeforeVAT += sign * (a.TotalWithVAT - a.VATAmount)
	}

	return t
}
