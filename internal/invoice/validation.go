package invoice

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"vatdesk/internal/logger"
	"vatdesk/pkg/models"
)

// DefaultTolerance is the largest accepted gap between an amount and the sum of its parts.
const DefaultTolerance = 0.005

// ConsistencyCheck looks for invoices whose derived fields were edited by hand
// or went stale, i.e. where the invariants the calculators guarantee no longer hold.
type ConsistencyCheck struct {
	tolerance float64
	log       zerolog.Logger
}

// NewConsistencyCheck creates a check with the given absolute tolerance.
// A non-positive tolerance falls back to DefaultTolerance.
func NewConsistencyCheck(tolerance float64) *ConsistencyCheck {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	return &ConsistencyCheck{
		tolerance: tolerance,
		log:       logger.WithComponent("invoice-consistency"),
	}
}

// ConsistencyResult lists every broken invariant found.
type ConsistencyResult struct {
	Warnings       []string
	HasDiscrepancy bool
	MaxDiscrepancy float64 // absolute amount
}

func (r *ConsistencyResult) add(gap float64, format string, args ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
	r.HasDiscrepancy = true
	if gap > r.MaxDiscrepancy {
		r.MaxDiscrepancy = gap
	}
}

// Check validates lines and adjustments. When stated is non-nil it is also
// compared against totals recomputed from the same lines and adjustments.
func (c *ConsistencyCheck) Check(lines []models.InvoiceLine, adjustments []models.Adjustment, stated *models.InvoiceTotals) *ConsistencyResult {
	result := &ConsistencyResult{Warnings: []string{}}

	for i, l := range lines {
		gap := math.Abs(l.BeforeVAT + l.VATAmount - l.TotalWithVAT)
		if gap > c.tolerance {
			result.add(gap, "line %d (%s): before VAT %.2f + VAT %.2f != total %.2f",
				i+1, l.ProductName, l.BeforeVAT, l.VATAmount, l.TotalWithVAT)
		}
	}

	for i, a := range adjustments {
		if a.IsTaxable {
			continue
		}
		if gap := math.Abs(a.VATAmount); gap > c.tolerance {
			result.add(gap, "adjustment %d (%s): not taxable but carries VAT %.2f", i+1, a.Title, a.VATAmount)
		}
		if gap := math.Abs(a.TotalWithVAT - a.Amount); gap > c.tolerance {
			result.add(gap, "adjustment %d (%s): not taxable but total %.2f != amount %.2f",
				i+1, a.Title, a.TotalWithVAT, a.Amount)
		}
	}

	if stated != nil {
		c.compareTotals(*stated, Aggregate(lines, adjustments), result)
	}

	if result.HasDiscrepancy {
		c.log.Warn().
			Int("lines", len(lines)).
			Int("adjustments", len(adjustments)).
			Float64("max_discrepancy", result.MaxDiscrepancy).
			Strs("warnings", result.Warnings).
			Msg("Invoice consistency check failed")
	} else {
		c.log.Debug().
			Int("lines", len(lines)).
			Int("adjustments", len(adjustments)).
			Msg("Invoice consistency check passed")
	}

	return result
}

func (c *ConsistencyCheck) compareTotals(stated, computed models.InvoiceTotals, result *ConsistencyResult) {
	pairs := []struct {
		name             string
		stated, computed float64
	}{
		{"total before VAT", stated.TotalBeforeVAT, computed.TotalBeforeVAT},
		{"total VAT", stated.TotalVAT, computed.TotalVAT},
		{"total with VAT", stated.TotalWithVAT, computed.TotalWithVAT},
	}
	for _, p := range pairs {
		if gap := math.Abs(p.stated - p.computed); gap > c.tolerance {
			result.add(gap, "%s: stated %.2f, recomputed %.2f", p.name, p.stated, p.computed)
		}
	}
}
