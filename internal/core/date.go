package core

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidDate = errors.New("invalid date")

// Date is a calendar day. The time part is always midnight UTC so that
// comparisons never shift across a timezone boundary.
type Date struct {
	time.Time
}

// NewDate creates a new Date from year, month (1-12) and day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string as a calendar day. It is strict: the
// three parts must be integers and form an existing day, so "2024-13-40"
// and "2024-02-30" are rejected instead of rolling over.
func ParseDate(s string) (Date, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
		}
		nums[i] = n
	}
	year, month, day := nums[0], nums[1], nums[2]
	if month < 1 || month > 12 || day < 1 {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	d := NewDate(year, month, day)
	if d.Year() != year || int(d.Month()) != month || d.Day() != day {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return d, nil
}

// ISO returns the YYYY-MM-DD form used for persistence.
func (d Date) ISO() string {
	return d.Format("2006-01-02")
}

// Display returns the DD/MM/YYYY form used on cards and in reports.
func (d Date) Display() string {
	return d.Format("02/01/2006")
}

// DisplayDate formats a persisted date string, or "" when it does not parse.
func DisplayDate(s string) string {
	d, err := ParseDate(s)
	if err != nil {
		return ""
	}
	return d.Display()
}

// Timestamp formats a local wall-clock time as DD/MM/YYYY HH:MM.
func Timestamp(t time.Time) string {
	return t.Format("02/01/2006 15:04")
}
