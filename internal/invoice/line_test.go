package invoice

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"vatdesk/internal/vat"
	"vatdesk/pkg/models"
)

const tolerance = 1e-9

func assertBalanced(t *testing.T, l models.InvoiceLine) {
	t.Helper()
	assert.InDelta(t, l.TotalWithVAT, l.BeforeVAT+l.VATAmount, tolerance, "total must equal before VAT + VAT")
}

func TestCalculateLineQuantityExclusive(t *testing.T) {
	for _, tt := range []struct{ qty, price float64 }{
		{3, 10}, {0, 99}, {1, 0}, {12.5, 7.3}, {1000, 0.01},
	} {
		got := CalculateLine(models.InvoiceLine{Quantity: tt.qty, UnitPrice: tt.price}, EditedQuantity, ModeQuantity, vat.Standard)

		assert.InDelta(t, tt.qty*tt.price, got.BeforeVAT, tolerance)
		assert.InDelta(t, tt.qty*tt.price*1.15, got.TotalWithVAT, 1e-6)
		assert.InDelta(t, got.BeforeVAT, got.TotalWithVAT-got.VATAmount, tolerance)
		assert.Equal(t, tt.price, got.UnitPrice, "unit price is input in quantity mode")
	}
}

func TestCalculateLineQuantityInclusive(t *testing.T) {
	line := models.InvoiceLine{Quantity: 2, UnitPrice: 57.5, IsUnitPriceInclusive: true}

	got := CalculateLine(line, EditedUnitPrice, ModeQuantity, vat.Standard)

	assert.InDelta(t, 115, got.TotalWithVAT, tolerance)
	assert.InDelta(t, 100, got.BeforeVAT, tolerance)
	assert.InDelta(t, 15, got.VATAmount, tolerance)
	assert.InDelta(t, got.TotalWithVAT-got.TotalWithVAT/1.15, got.VATAmount, tolerance)
	assertBalanced(t, got)
}

func TestCalculateLineQuantityModeIgnoresTypedTotal(t *testing.T) {
	line := models.InvoiceLine{Quantity: 1, UnitPrice: 100, TotalWithVAT: 999}

	got := CalculateLine(line, EditedTotal, ModeQuantity, vat.Standard)

	assert.InDelta(t, 115, got.TotalWithVAT, tolerance)
}

func TestCalculateLineTotalModeTotalEdited(t *testing.T) {
	line := models.InvoiceLine{Quantity: 4, TotalWithVAT: 230}

	got := CalculateLine(line, EditedTotal, ModeTotal, vat.Standard)

	assert.InDelta(t, 200, got.BeforeVAT, tolerance)
	assert.InDelta(t, 30, got.VATAmount, tolerance)
	assert.InDelta(t, 50, got.UnitPrice, tolerance)
	assert.Equal(t, 230.0, got.TotalWithVAT)
	assertBalanced(t, got)
}

func TestCalculateLineTotalModeUnitPriceEdited(t *testing.T) {
	line := models.InvoiceLine{Quantity: 5, UnitPrice: 20, TotalWithVAT: 1}

	got := CalculateLine(line, EditedUnitPrice, ModeTotal, vat.Standard)

	assert.Equal(t, 100.0, got.BeforeVAT, "net comes straight from quantity x unit price")
	assert.InDelta(t, 15, got.VATAmount, tolerance)
	assert.InDelta(t, 115, got.TotalWithVAT, tolerance)
	assert.Equal(t, 20.0, got.UnitPrice)
	assertBalanced(t, got)
}

func TestCalculateLineTotalModeQuantityEditedKeepsTotal(t *testing.T) {
	line := models.InvoiceLine{Quantity: 2, UnitPrice: 50, TotalWithVAT: 115}

	got := CalculateLine(line, EditedQuantity, ModeTotal, vat.Standard)

	assert.Equal(t, 115.0, got.TotalWithVAT)
	assert.InDelta(t, 50, got.UnitPrice, tolerance)
}

func TestCalculateLineZeroQuantityGuard(t *testing.T) {
	for _, total := range []float64{0, 1, 115, 1e9} {
		line := models.InvoiceLine{Quantity: 0, UnitPrice: 12, TotalWithVAT: total}

		got := CalculateLine(line, EditedTotal, ModeTotal, vat.Standard)

		assert.Equal(t, 0.0, got.UnitPrice)
		assertBalanced(t, got)
	}
}

func TestCalculateLineIsIdempotent(t *testing.T) {
	line := models.InvoiceLine{ProductName: "Hosting", Quantity: 3, UnitPrice: 33.33, TotalWithVAT: 101.17}

	for _, mode := range []Mode{ModeTotal, ModeQuantity} {
		for _, edit := range []Edit{EditedQuantity, EditedUnitPrice, EditedTotal} {
			first := CalculateLine(line, edit, mode, vat.Standard)
			second := CalculateLine(line, edit, mode, vat.Standard)
			assert.Equal(t, first, second, "mode=%s edit=%s", mode, edit)
		}
	}
}

func TestCalculateLineDoesNotMutateInput(t *testing.T) {
	line := models.InvoiceLine{Quantity: 2, UnitPrice: 10}
	_ = CalculateLine(line, EditedQuantity, ModeQuantity, vat.Standard)
	assert.Equal(t, 0.0, line.BeforeVAT)
}

func TestCalculateLineCoercesInvalidInput(t *testing.T) {
	line := models.InvoiceLine{Quantity: math.NaN(), UnitPrice: -4, TotalWithVAT: math.Inf(1)}

	got := CalculateLine(line, EditedTotal, ModeTotal, vat.Standard)

	assert.Equal(t, models.InvoiceLine{}, got)
}

func TestCalculateLineUsesInjectedRate(t *testing.T) {
	got := CalculateLine(models.InvoiceLine{Quantity: 1, UnitPrice: 100}, EditedQuantity, ModeQuantity, vat.Rate(0.05))

	assert.InDelta(t, 5, got.VATAmount, tolerance)
	assert.InDelta(t, 105, got.TotalWithVAT, tolerance)
}

func TestIsUsed(t *testing.T) {
	assert.False(t, IsUsed(models.InvoiceLine{}))
	assert.False(t, IsUsed(models.InvoiceLine{ProductName: "  \t"}))
	assert.True(t, IsUsed(models.InvoiceLine{ProductName: "Consulting"}))
}
