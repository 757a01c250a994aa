package report

import (
	"fmt"
	"math"
	"regexp"
	"time"
)

const isoDate = "2006-01-02"

var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ParseISODate parses a strict YYYY-MM-DD date. Legacy data carries
// free-text dates, so anything else is rejected rather than guessed at.
func ParseISODate(s string) (time.Time, bool) {
	if !isoDatePattern.MatchString(s) {
		return time.Time{}, false
	}
	t, err := time.Parse(isoDate, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// CutoffDate returns the inclusive expiry cutoff for a horizon of the
// given months: the last day of the month `months` ahead of today.
func CutoffDate(today time.Time, months int) string {
	year, month := today.Year(), int(today.Month())+months
	for month > 12 {
		month -= 12
		year++
	}
	last := daysInMonth(year, time.Month(month))
	return fmt.Sprintf("%04d-%02d-%02d", year, month, last)
}

// AMCWindow returns the inclusive consumption window for an N-month
// average: from the first day of the month N-1 months back through the
// last day of the current month.
func AMCWindow(today time.Time, months int) (from, to string) {
	if months <= 0 {
		return "", ""
	}
	start := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(months - 1), 0)
	from = start.Format(isoDate)
	to = fmt.Sprintf("%04d-%02d-%02d", today.Year(), today.Month(), daysInMonth(today.Year(), today.Month()))
	return from, to
}

// MonthKeys lists the YYYY-MM buckets between two dates, inclusive,
// ascending. Unparseable bounds yield nil.
func MonthKeys(from, to string) []string {
	start, ok := ParseISODate(from)
	if !ok {
		return nil
	}
	end, ok := ParseISODate(to)
	if !ok {
		return nil
	}
	var keys []string
	cur := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cur.After(end) {
		keys = append(keys, cur.Format("2006-01"))
		cur = cur.AddDate(0, 1, 0)
	}
	return keys
}

// MonthsBetweenInclusive counts the calendar months from the current
// month through the month of t, inclusive. The current month counts 1; a
// month already passed yields 0.
func MonthsBetweenInclusive(today, t time.Time) int {
	months := (t.Year()-today.Year())*12 + int(t.Month()) - int(today.Month()) + 1
	if months < 0 {
		return 0
	}
	return months
}

// ClampMonths bounds a user-supplied month count into [min, max],
// falling back when unset.
func ClampMonths(v, min, max, fallback int) int {
	if v == 0 {
		return fallback
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func roundFloat(v float64, decimals int) float64 {
	if decimals <= 0 {
		return math.Round(v)
	}
	factor := math.Pow(10, float64(decimals))
	return math.Round(v*factor) / factor
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, -1).Day()
}
