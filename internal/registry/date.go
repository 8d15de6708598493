package registry

import (
	"strings"
	"time"
)

// Event dates on the registry are written as a full month name and year,
// e.g. "January 2024". The output table carries them as "2024-01".
const (
	monthYearLayout = "January 2006"
	yearMonthLayout = "2006-01"
)

// ParseMonthYear parses "Month YYYY" date text. The second return value is
// false when the text does not parse; an unparseable date is treated as
// unknown downstream, not as an error.
func ParseMonthYear(text string) (time.Time, bool) {
	t, err := time.Parse(monthYearLayout, strings.TrimSpace(text))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FormatYearMonth renders a parsed event date as "YYYY-MM".
func FormatYearMonth(t time.Time) string {
	return t.Format(yearMonthLayout)
}
