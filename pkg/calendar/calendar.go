// Package calendar converts Gregorian dates to and from day numbers counted
// from 1900-01-01, which is day 0.
package calendar

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Calendar bounds.
const (
	// MinYear is the earliest accepted year.
	MinYear = 1900
	// maxYearDigits caps the year field so conversions stay in int64.
	maxYearDigits = 9

	secondsPerDay = 24 * 60 * 60
)

// Sentinel errors.
var (
	// ErrInvalidDate indicates a string that is not a valid YYYY-MM-DD date.
	ErrInvalidDate = errors.New("invalid date")
	// ErrBeforeEpoch indicates a date or day number before 1900-01-01.
	ErrBeforeEpoch = errors.New("date before 1900-01-01")
)

var epoch = time.Date(MinYear, time.January, 1, 0, 0, 0, 0, time.UTC).Unix()

// Date is a Gregorian calendar date.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate validates the fields and returns the date.
func NewDate(year int, month time.Month, day int) (Date, error) {
	if year < MinYear {
		return Date{}, fmt.Errorf("%w: year %d", ErrBeforeEpoch, year)
	}

	if month < time.January || month > time.December {
		return Date{}, fmt.Errorf("%w: month %d", ErrInvalidDate, month)
	}

	if day < 1 || day > DaysIn(year, month) {
		return Date{}, fmt.Errorf("%w: day %d of %d-%02d", ErrInvalidDate, day, year, month)
	}

	return Date{Year: year, Month: month, Day: day}, nil
}

// Parse reads a date written as YYYY-MM-DD. Month and day may have one or two
// digits; the year has at least one digit.
func Parse(s string) (Date, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}

	year, err := field(parts[0], maxYearDigits)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}

	month, err := field(parts[1], 2)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}

	day, err := field(parts[2], 2)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}

	return NewDate(year, time.Month(month), day)
}

// ParseDay parses a date and returns its day number.
func ParseDay(s string) (int64, error) {
	d, err := Parse(s)
	if err != nil {
		return 0, err
	}

	return d.DayNumber(), nil
}

// DayNumber returns the number of days between 1900-01-01 and d.
func (d Date) DayNumber() int64 {
	t := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)

	return (t.Unix() - epoch) / secondsPerDay
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// FromDayNumber returns the date that is day days after 1900-01-01.
func FromDayNumber(day int64) (Date, error) {
	if day < 0 {
		return Date{}, fmt.Errorf("%w: day %d", ErrBeforeEpoch, day)
	}

	t := time.Unix(epoch+day*secondsPerDay, 0).UTC()

	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// DaysIn returns the number of days in the month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// IsLeap reports whether year is a Gregorian leap year.
func IsLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

func field(s string, maxDigits int) (int, error) {
	if s == "" || len(s) > maxDigits {
		return 0, ErrInvalidDate
	}

	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, ErrInvalidDate
		}
	}

	return strconv.Atoi(s)
}
