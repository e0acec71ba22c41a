// Package invoice derives VAT-consistent sales invoice lines, adjustments and totals.
//
// Every function here is pure: it takes the current record and returns a new
// one with the derived fields recomputed. Nothing is rounded; rounding is a
// presentation concern (see vat.Round).
//
// Calculation modes:
//   - ModeQuantity: quantity and unit price are authoritative, the line total follows.
//     IsUnitPriceInclusive says whether the unit price already carries VAT.
//   - ModeTotal: the user may overwrite either the unit price or the gross total;
//     the other one is derived.
package invoice

import (
	"strings"

	"vatdesk/internal/vat"
	"vatdesk/pkg/models"
)

// Mode selects how an invoice's lines are calculated. It applies to the whole invoice.
type Mode string

const (
	ModeTotal    Mode = "total"
	ModeQuantity Mode = "quantity"
)

// Edit names the line field the user just changed.
type Edit string

const (
	EditedQuantity  Edit = "quantity"
	EditedUnitPrice Edit = "unit_price"
	EditedTotal     Edit = "total"
)

// CalculateLine returns line with unit price and VAT breakdown recomputed after edit.
//
// Invariant: result.TotalWithVAT == result.BeforeVAT + result.VATAmount.
// A zero quantity in total mode yields a zero unit price.
func CalculateLine(line models.InvoiceLine, edit Edit, mode Mode, rate vat.Rate) models.InvoiceLine {
	line.Quantity = vat.Sanitize(line.Quantity)
	line.UnitPrice = vat.Sanitize(line.UnitPrice)
	line.TotalWithVAT = vat.Sanitize(line.TotalWithVAT)

	if mode == ModeQuantity {
		return byQuantity(line, rate)
	}
	return byTotal(line, edit, rate)
}

func byQuantity(line models.InvoiceLine, rate vat.Rate) models.InvoiceLine {
	amount := line.Quantity * line.UnitPrice
	if line.IsUnitPriceInclusive {
		line.TotalWithVAT = amount
		line.BeforeVAT, line.VATAmount = rate.GrossToNet(amount)
		return line
	}
	line.BeforeVAT = amount
	line.TotalWithVAT, line.VATAmount = rate.NetToGross(amount)
	return line
}

func byTotal(line models.InvoiceLine, edit Edit, rate vat.Rate) models.InvoiceLine {
	switch edit {
	case EditedUnitPrice:
		// net is authoritative here; deriving it back from the gross would drift.
		line.BeforeVAT = line.UnitPrice * line.Quantity
		line.TotalWithVAT, line.VATAmount = rate.NetToGross(line.BeforeVAT)
	default:
		line.BeforeVAT, line.VATAmount = rate.GrossToNet(line.TotalWithVAT)
		line.UnitPrice = 0
		if line.Quantity > 0 {
			line.UnitPrice = line.BeforeVAT / line.Quantity
		}
	}
	return line
}

// IsUsed reports whether a line has been filled in. Blank product names mark
// placeholder rows that callers drop before saving.
func IsUsed(line models.InvoiceLine) bool {
	return strings.TrimSpace(line.ProductName) != ""
}
