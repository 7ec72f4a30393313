package calendar

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidDate is returned when a date string cannot be parsed.
var ErrInvalidDate = errors.New("invalid date")

const (
	canonicalLayout = "2006-01-02"
	displayLayout   = "02-01-2006"
)

// Months is the fixed month-name table used for display and parsing.
var Months = []string{
	"January",
	"February",
	"March",
	"April",
	"May",
	"June",
	"July",
	"August",
	"September",
	"October",
	"November",
	"December",
}

// MonthNumber resolves an English month name to 1-12.
func MonthNumber(name string) (int, bool) {
	for i, m := range Months {
		if strings.EqualFold(m, strings.TrimSpace(name)) {
			return i + 1, true
		}
	}
	return 0, false
}

// ParseTaskDate parses the "<day>-<MonthName>-<year>" form, e.g. "05-March-2024".
func ParseTaskDate(s string) (time.Time, error) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}

	day, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: day %q", ErrInvalidDate, parts[0])
	}
	month, ok := MonthNumber(parts[1])
	if !ok {
		return time.Time{}, fmt.Errorf("%w: month %q", ErrInvalidDate, parts[1])
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: year %q", ErrInvalidDate, parts[2])
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, fmt.Errorf("%w: %q does not exist", ErrInvalidDate, s)
	}
	return t, nil
}

// ParseCanonical parses the YYYY-MM-DD key sent by date inputs.
func ParseCanonical(s string) (time.Time, error) {
	t, err := time.Parse(canonicalLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// ParseAny accepts either the canonical or the month-name form.
func ParseAny(s string) (time.Time, error) {
	if t, err := ParseCanonical(s); err == nil {
		return t, nil
	}
	return ParseTaskDate(s)
}

// CanonicalDate formats t as the stored, sortable key.
func CanonicalDate(t time.Time) string {
	return t.Format(canonicalLayout)
}

// DisplayDate formats t as DD-MM-YYYY.
func DisplayDate(t time.Time) string {
	return t.Format(displayLayout)
}

// DisplayFromCanonical converts a stored key into DD-MM-YYYY, returning the
// input unchanged when it is not a canonical date.
func DisplayFromCanonical(key string) string {
	t, err := time.Parse(canonicalLayout, key)
	if err != nil {
		return key
	}
	return DisplayDate(t)
}
