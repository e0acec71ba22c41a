package models

// InvoiceLine is a single sales invoice row. BeforeVAT, VATAmount and
// TotalWithVAT are derived and owned by the line calculator.
type InvoiceLine struct {
	ProductName string  `json:"product_name"`
	Quantity    float64 `json:"quantity" validate:"gte=0"`
	UnitPrice   float64 `json:"unit_price" validate:"gte=0"`

	BeforeVAT    float64 `json:"before_vat"`
	VATAmount    float64 `json:"vat_amount"`
	TotalWithVAT float64 `json:"total_with_vat" validate:"gte=0"`

	// Only meaningful when the invoice is calculated by quantity.
	IsUnitPriceInclusive bool `json:"is_unit_price_inclusive"`

	// Opaque to the calculators.
	PeriodFrom string `json:"period_from,omitempty"`
	PeriodTo   string `json:"period_to,omitempty"`
}

// AdjustmentType tells the aggregator which sign to apply.
type AdjustmentType string

const (
	AdjustmentDiscount AdjustmentType = "discount"
	AdjustmentAddition AdjustmentType = "addition"
)

// Adjustment is an invoice-level discount or addition.
type Adjustment struct {
	Title string         `json:"title"`
	Type  AdjustmentType `json:"type" validate:"oneof=discount addition"`

	// Amount is what the user typed; gross when IsInclusive, net otherwise.
	Amount      float64 `json:"amount" validate:"gte=0"`
	IsTaxable   bool    `json:"is_taxable"`
	IsInclusive bool    `json:"is_inclusive"`

	VATAmount    float64 `json:"vat_amount"`
	TotalWithVAT float64 `json:"total_with_vat"`
}

// InvoiceTotals is always recomputed from lines and adjustments, never stored on its own.
type InvoiceTotals struct {
	TotalBeforeVAT float64 `json:"total_before_vat"`
	TotalVAT       float64 `json:"total_vat"`
	TotalWithVAT   float64 `json:"total_with_vat"`
}
