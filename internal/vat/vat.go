// Package vat provides the VAT arithmetic shared by every calculator.
//
// The rate is always passed in explicitly. Standard is the 15% rate the
// back office has used historically; a configured rate (VAT_RATE) replaces it
// wherever the caller has one.
package vat

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Rate is a VAT rate expressed as a fraction (0.15 for 15%).
type Rate float64

// Standard is the 15% rate.
const Standard Rate = 0.15

// ErrInvalidRate is returned when a rate cannot be parsed or is out of range.
var ErrInvalidRate = errors.New("invalid VAT rate")

// GrossToNet splits a VAT-inclusive amount into its net part and the tax it contains.
func (r Rate) GrossToNet(gross float64) (net, tax float64) {
	net = gross / (1 + float64(r))
	tax = gross - net
	return net, tax
}

// NetToGross adds VAT to a net amount.
func (r Rate) NetToGross(net float64) (gross, tax float64) {
	tax = net * float64(r)
	gross = net + tax
	return gross, tax
}

// Percent returns the rate in percent (15 for 0.15).
func (r Rate) Percent() float64 {
	return decimal.NewFromFloat(float64(r)).Shift(2).InexactFloat64()
}

func (r Rate) String() string {
	return decimal.NewFromFloat(r.Percent()).String() + "%"
}

// ParseRate accepts "0.15", "15" or "15%". Values above 1 are read as percentages.
func ParseRate(s string) (Rate, error) {
	cleaned := strings.TrimSpace(s)
	percent := strings.HasSuffix(cleaned, "%")
	cleaned = strings.TrimSpace(strings.TrimSuffix(cleaned, "%"))

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidRate, s)
	}
	if percent || d.GreaterThan(decimal.NewFromInt(1)) {
		d = d.Shift(-2)
	}
	if d.IsNegative() || d.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return 0, fmt.Errorf("%w: %q is outside [0%%, 100%%)", ErrInvalidRate, s)
	}
	return Rate(d.InexactFloat64()), nil
}

// Round rounds an amount half away from zero to the given number of decimal places.
// Calculators never round; this is for presentation and export only.
func Round(amount float64, places int32) float64 {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return amount
	}
	return decimal.NewFromFloat(amount).Round(places).InexactFloat64()
}

// Sanitize coerces blank-equivalent numeric input (NaN, ±Inf, negatives) to 0.
func Sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
