package rollup

import (
	"fmt"
	"time"
)

// Range is an inclusive span of UTC calendar days.
type Range struct {
	From time.Time
	To   time.Time
}

// LastDays covers the trailing n days including today.
func LastDays(n int) Range {
	if n < 1 {
		n = 1
	}
	today := time.Now().UTC().Truncate(24 * time.Hour)
	return Range{From: today.AddDate(0, 0, -(n - 1)), To: today}
}

// SingleDay parses one YYYY-MM-DD date.
func SingleDay(iso string) (Range, error) {
	d, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return Range{}, fmt.Errorf("invalid date %q: %w", iso, err)
	}
	return Range{From: d, To: d}, nil
}

// Between parses an explicit from/to pair of YYYY-MM-DD dates.
func Between(fromISO, toISO string) (Range, error) {
	from, err := time.Parse("2006-01-02", fromISO)
	if err != nil {
		return Range{}, fmt.Errorf("invalid from date %q: %w", fromISO, err)
	}
	to, err := time.Parse("2006-01-02", toISO)
	if err != nil {
		return Range{}, fmt.Errorf("invalid to date %q: %w", toISO, err)
	}
	if to.Before(from) {
		return Range{}, fmt.Errorf("invalid range: %s is before %s", toISO, fromISO)
	}
	return Range{From: from, To: to}, nil
}

// Days enumerates every day in the range.
func (r Range) Days() []time.Time {
	var days []time.Time
	for d := r.From; !d.After(r.To); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
