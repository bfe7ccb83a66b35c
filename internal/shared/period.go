package shared

import (
	"fmt"
	"time"
)

// Period identifies one calendar month of the ledger. Months are 1-based
// throughout; the canonical key is zero padded, e.g. "2024-03".
type Period struct {
	Year  int
	Month time.Month
}

// PeriodOf returns the period containing t.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// ParsePeriodKey parses a "YYYY-MM" key.
func ParsePeriodKey(key string) (Period, error) {
	t, err := time.Parse("2006-01", key)
	if err != nil {
		return Period{}, fmt.Errorf("shared: invalid period key %q", key)
	}
	return Period{Year: t.Year(), Month: t.Month()}, nil
}

// Key returns the canonical "YYYY-MM" identifier.
func (p Period) Key() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Prev returns the immediately preceding calendar month.
func (p Period) Prev() Period {
	if p.Month == time.January {
		return Period{Year: p.Year - 1, Month: time.December}
	}
	return Period{Year: p.Year, Month: p.Month - 1}
}

// Next returns the immediately following calendar month.
func (p Period) Next() Period {
	if p.Month == time.December {
		return Period{Year: p.Year + 1, Month: time.January}
	}
	return Period{Year: p.Year, Month: p.Month + 1}
}

// Compare orders two periods chronologically: -1, 0 or 1.
func (p Period) Compare(q Period) int {
	switch {
	case p.Year != q.Year:
		if p.Year < q.Year {
			return -1
		}
		return 1
	case p.Month != q.Month:
		if p.Month < q.Month {
			return -1
		}
		return 1
	default:
		return 0
	}
}

// Before reports whether p precedes q.
func (p Period) Before(q Period) bool { return p.Compare(q) < 0 }

// Start returns midnight UTC on the first day of the month.
func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Contains reports whether t falls inside the period.
func (p Period) Contains(t time.Time) bool {
	return t.Year() == p.Year && t.Month() == p.Month
}
