package ledger

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var dateFormats = []string{
	"2006-01-02", // ISO
	"02.01.2006", // DD.MM.YYYY
	"2.1.2006",   // D.M.YYYY
	"02/01/2006", // DD/MM/YYYY
	"2/1/2006",   // D/M/YYYY
	time.RFC3339,
}

// parseDate accepts ISO, dotted and slashed day-first dates.
func parseDate(s string) (time.Time, error) {
	cleaned := strings.TrimSpace(s)
	if cleaned == "" {
		return time.Time{}, fmt.Errorf("empty date string")
	}
	for _, format := range dateFormats {
		if t, err := time.Parse(format, cleaned); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %s", s)
}

// parseAmount reads amounts written with either "." or "," as decimal separator.
// Blank cells are 0.
func parseAmount(s string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(s)
	if cleaned == "" {
		return decimal.Zero, nil
	}

	negative := strings.HasPrefix(cleaned, "-") || (strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")"))
	cleaned = strings.Trim(cleaned, "-()")

	cleaned = strings.Map(func(r rune) rune {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			return r
		}
		return -1
	}, cleaned)

	lastDot := strings.LastIndex(cleaned, ".")
	lastComma := strings.LastIndex(cleaned, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		// whichever separator comes last is the decimal one
		if lastComma > lastDot {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case lastComma >= 0:
		parts := strings.Split(cleaned, ",")
		if len(parts) == 2 && len(parts[1]) <= 2 {
			cleaned = parts[0] + "." + parts[1]
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unable to parse amount: %s (cleaned: %s)", s, cleaned)
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

// getString safely extracts a string value from a row slice
func getString(row []interface{}, index int) string {
	if index >= len(row) || row[index] == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprintf("%v", row[index]))
}

// within reports whether t falls on a day in [start, end].
func within(t, start, end time.Time) bool {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	from := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return !day.Before(from) && !day.After(to)
}
