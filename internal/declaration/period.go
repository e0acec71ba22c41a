package declaration

import (
	"fmt"
	"time"
)

// QuarterPeriod returns the first and last day of a calendar quarter, in UTC.
func QuarterPeriod(year, quarter int) (start, end time.Time, err error) {
	if quarter < 1 || quarter > 4 {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: got %d", ErrInvalidQuarter, quarter)
	}
	start = time.Date(year, time.Month(3*(quarter-1)+1), 1, 0, 0, 0, 0, time.UTC)
	end = start.AddDate(0, 3, -1)
	return start, end, nil
}

// QuarterOf returns the quarter a date falls in.
func QuarterOf(t time.Time) int {
	return (int(t.Month())-1)/3 + 1
}
