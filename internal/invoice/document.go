package invoice

import (
	"fmt"

	"vatdesk/internal/vat"
	"vatdesk/pkg/models"
)

// DocumentLine is an invoice line together with the field last edited on it.
type DocumentLine struct {
	models.InvoiceLine
	Edit Edit `json:"edited,omitempty" validate:"omitempty,oneof=quantity unit_price total"`
}

// Document is a whole invoice as submitted by the caller.
type Document struct {
	Mode        Mode                `json:"mode" validate:"required,oneof=total quantity"`
	Lines       []DocumentLine      `json:"lines" validate:"dive"`
	Adjustments []models.Adjustment `json:"adjustments" validate:"dive"`

	// Totals as stated on an imported invoice; never used for calculation.
	Totals *models.InvoiceTotals `json:"totals,omitempty"`
}

// Result is a recalculated document.
type Result struct {
	Mode        Mode                 `json:"mode"`
	Lines       []models.InvoiceLine `json:"lines"`
	Adjustments []models.Adjustment  `json:"adjustments"`
	Totals      models.InvoiceTotals `json:"totals"`

	// SkippedLines counts lines left out of the totals because they have no product name.
	SkippedLines int `json:"skipped_lines"`
}

// defaultEdit is the authoritative field for a line that does not say what changed.
func (d *Document) defaultEdit() Edit {
	if d.Mode == ModeQuantity {
		return EditedQuantity
	}
	return EditedTotal
}

// Recalculate runs every line and adjustment through its calculator and
// aggregates the used lines. The document itself is not modified.
func (d *Document) Recalculate(rate vat.Rate) (*Result, error) {
	const op = "Recalculate"

	if _, err := ParseMode(string(d.Mode)); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	res := &Result{
		Mode:        d.Mode,
		Lines:       make([]models.InvoiceLine, 0, len(d.Lines)),
		Adjustments: make([]models.Adjustment, 0, len(d.Adjustments)),
	}

	used := make([]models.InvoiceLine, 0, len(d.Lines))
	for _, dl := range d.Lines {
		edit := dl.Edit
		if edit == "" {
			edit = d.defaultEdit()
		}
		line := CalculateLine(dl.InvoiceLine, edit, d.Mode, rate)
		res.Lines = append(res.Lines, line)
		if IsUsed(line) {
			used = append(used, line)
		} else {
			res.SkippedLines++
		}
	}
	if len(used) == 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrNoUsedLines)
	}

	for _, a := range d.Adjustments {
		res.Adjustments = append(res.Adjustments, CalculateAdjustment(a, rate))
	}

	res.Totals = Aggregate(used, res.Adjustments)
	return res, nil
}

// Rounded returns a copy of r with every amount rounded to places decimals.
func (r *Result) Rounded(places int32) *Result {
	out := &Result{
		Mode:         r.Mode,
		Lines:        make([]models.InvoiceLine, len(r.Lines)),
		Adjustments:  make([]models.Adjustment, len(r.Adjustments)),
		SkippedLines: r.SkippedLines,
	}
	for i, l := range r.Lines {
		l.UnitPrice = vat.Round(l.UnitPrice, places)
		l.BeforeVAT = vat.Round(l.BeforeVAT, places)
		l.VATAmount = vat.Round(l.VATAmount, places)
		l.TotalWithVAT = vat.Round(l.TotalWithVAT, places)
		out.Lines[i] = l
	}
	for i, a := range r.Adjustments {
		a.VATAmount = vat.Round(a.VATAmount, places)
		a.TotalWithVAT = vat.Round(a.TotalWithVAT, places)
		out.Adjustments[i] = a
	}
	out.Totals = models.InvoiceTotals{
		TotalBeforeVAT: vat.Round(r.Totals.TotalBeforeVAT, places),
		TotalVAT:       vat.Round(r.Totals.TotalVAT, places),
		TotalWithVAT:   vat.Round(r.Totals.TotalWithVAT, places),
	}
	return out
}

// UsedLines returns the recalculated lines that count towards the totals.
func (r *Result) UsedLines() []models.InvoiceLine {
	used := make([]models.InvoiceLine, 0, len(r.Lines))
	for _, l := range r.Lines {
		if IsUsed(l) {
			used = append(used, l)
		}
	}
	return used
}

// CheckConsistency verifies the result's lines and adjustments against its own totals.
func (r *Result) CheckConsistency(tolerance float64) *ConsistencyResult {
	return NewConsistencyCheck(tolerance).Check(r.UsedLines(), r.Adjustments, &r.Totals)
}
