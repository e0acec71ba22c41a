// Package commission computes employee commission payouts for a batch.
//
// A batch is keyed by (company, month, package, mode). The mode is picked
// once for the batch and passed into every call; records never carry it.
package commission

import (
	"errors"
	"fmt"

	"vatdesk/internal/vat"
	"vatdesk/pkg/models"
)

// Mode is the commission computation strategy of a batch.
type Mode string

const (
	ModeFixedDaily   Mode = "fixed_daily"
	ModeFixedMonthly Mode = "fixed_monthly"
	ModePercentage   Mode = "percentage"
)

// IsFixed reports whether Total (rather than Commission) is the payable base.
func (m Mode) IsFixed() bool {
	return m == ModeFixedDaily || m == ModeFixedMonthly
}

// Field is the record field the user just changed.
type Field string

const (
	FieldDailyAmount Field = "daily_amount"
	FieldDays        Field = "days"
	FieldPercentage  Field = "percentage"
	FieldRevenue     Field = "revenue"
	FieldBonus       Field = "bonus"
	FieldDeduction   Field = "deduction"
	FieldSelected    Field = "selected"
	FieldStatus      Field = "status"
)

var (
	// ErrUnknownMode is returned when a commission mode name is not recognised.
	ErrUnknownMode = errors.New("unknown commission mode")

	// ErrUnknownField is returned when an edited field name is not recognised.
	ErrUnknownField = errors.New("unknown commission field")
)

// ParseMode converts user input into a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeFixedDaily, ModeFixedMonthly, ModePercentage:
		return Mode(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// ParseField converts a field name into a Field.
func ParseField(s string) (Field, error) {
	switch Field(s) {
	case FieldDailyAmount, FieldDays, FieldPercentage, FieldRevenue,
		FieldBonus, FieldDeduction, FieldSelected, FieldStatus:
		return Field(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
}

// Recalculate returns rec with the payable base recomputed after field was edited.
//
//   - fixed_daily: daily_amount or days -> total = daily_amount * days
//   - fixed_monthly: daily_amount or days -> total = daily_amount, days pinned to 1
//   - percentage: percentage or revenue -> commission = revenue * percentage / 100,
//     remaining = revenue - commission
//
// Any other field leaves the monetary fields untouched.
func Recalculate(rec models.CommissionRecord, mode Mode, field Field) models.CommissionRecord {
	switch mode {
	case ModeFixedDaily:
		if field == FieldDailyAmount || field == FieldDays {
			rec.Total = vat.Sanitize(rec.DailyAmount) * vat.Sanitize(rec.Days)
		}
	case ModeFixedMonthly:
		if field == FieldDailyAmount || field == FieldDays {
			// days has no meaning for a monthly amount; it stays as a fixed 1.
			rec.Days = 1
			rec.Total = vat.Sanitize(rec.DailyAmount)
		}
	case ModePercentage:
		if field == FieldPercentage || field == FieldRevenue {
			revenue := vat.Sanitize(rec.Revenue)
			rec.Commission = revenue * vat.Sanitize(rec.Percentage) / 100
			rec.Remaining = revenue - rec.Commission
		}
	}
	return rec
}

// RecalculateAll recomputes the base of every record, as after loading a saved batch.
func RecalculateAll(records []models.CommissionRecord, mode Mode) []models.CommissionRecord {
	out := make([]models.CommissionRecord, len(records))
	for i, rec := range records {
		if mode.IsFixed() {
			rec = Recalculate(rec, mode, FieldDailyAmount)
		} else {
			rec = Recalculate(rec, mode, FieldRevenue)
		}
		if rec.Status == "" {
			rec.Status = models.CommissionUnpaid
		}
		out[i] = rec
	}
	return out
}

// Base returns the payable base of rec under mode.
func Base(rec models.CommissionRecord, mode Mode) float64 {
	if mode.IsFixed() {
		return rec.Total
	}
	return rec.Commission
}

// NetDue is the base plus bonus minus deduction. It is reported, never stored.
func NetDue(rec models.CommissionRecord, mode Mode) float64 {
	return Base(rec, mode) + vat.Sanitize(rec.Bonus) - vat.Sanitize(rec.Deduction)
}
