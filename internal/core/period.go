package core

import (
	"fmt"
	"time"
)

// Period identifies one calendar month. Month is zero-based (0 = January).
type Period struct {
	Year  int
	Month int
}

// PeriodOf returns the period containing t.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: int(t.Month()) - 1}
}

// CurrentPeriod returns the period of the local clock.
func CurrentPeriod() Period {
	return PeriodOf(time.Now())
}

// Valid reports whether Month is within 0..11.
func (p Period) Valid() bool {
	return p.Month >= 0 && p.Month <= 11
}

// Prev returns the previous month, rolling back the year in January.
func (p Period) Prev() Period {
	if p.Month == 0 {
		return Period{Year: p.Year - 1, Month: 11}
	}
	return Period{Year: p.Year, Month: p.Month - 1}
}

// Next returns the following month, rolling the year after December.
func (p Period) Next() Period {
	if p.Month == 11 {
		return Period{Year: p.Year + 1, Month: 0}
	}
	return Period{Year: p.Year, Month: p.Month + 1}
}

// Contains reports whether d falls in the period.
func (p Period) Contains(d Date) bool {
	return d.Year() == p.Year && int(d.Month())-1 == p.Month
}

// FileStamp returns YYYY_MM with the month one-based and zero padded.
func (p Period) FileStamp() string {
	return fmt.Sprintf("%d_%02d", p.Year, p.Month+1)
}

// Key identifies the period in caches and sheet tabs (YYYY-MM, one-based).
func (p Period) Key() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month+1)
}
