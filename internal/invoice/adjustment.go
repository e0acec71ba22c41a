package invoice

import (
	"vatdesk/internal/vat"
	"vatdesk/pkg/models"
)

// CalculateAdjustment derives VATAmount and TotalWithVAT for a discount or addition.
// The adjustment type plays no part here; the sign is applied by Aggregate.
func CalculateAdjustment(adj models.Adjustment, rate vat.Rate) models.Adjustment {
	amount := vat.Sanitize(adj.Amount)
	adj.Amount = amount

	switch {
	case !adj.IsTaxable:
		adj.VATAmount = 0
		adj.TotalWithVAT = amount
	case adj.IsInclusive:
		_, adj.VATAmount = rate.GrossToNet(amount)
		adj.TotalWithVAT = amount
	default:
		adj.TotalWithVAT, adj.VATAmount = rate.NetToGross(amount)
	}
	return adj
}
