package rowparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Spreadsheet serial dates count days from 1899-12-30.
var serialEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// maxSerial is 9999-12-31.
const maxSerial = 2958465

var (
	serialPattern    = regexp.MustCompile(`^\d{3,7}(\.\d+)?$`)
	separatedPattern = regexp.MustCompile(`^(\d{1,4})([./-])(\d{1,2})([./-])(\d{1,4})$`)
)

// ParseDate accepts day-month-year and year-month-day with '.', '/' or '-'
// separators, an optional trailing time component, and spreadsheet serial day
// numbers. Two-digit years are rejected rather than guessed. The result is a
// UTC date at midnight.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrEmpty
	}

	if serialPattern.MatchString(s) {
		return parseSerial(s)
	}

	datePart := s
	if i := strings.IndexAny(s, " T"); i > 0 {
		datePart = s[:i]
	}

	m := separatedPattern.FindStringSubmatch(datePart)
	if m == nil || m[2] != m[4] {
		return time.Time{}, ErrInvalidDate
	}

	var yearStr, monthStr, dayStr string
	switch {
	case len(m[1]) == 4:
		yearStr, monthStr, dayStr = m[1], m[3], m[5]
		if len(dayStr) > 2 {
			return time.Time{}, ErrInvalidDate
		}
	case len(m[5]) == 4:
		dayStr, monthStr, yearStr = m[1], m[3], m[5]
		if len(dayStr) > 2 {
			return time.Time{}, ErrInvalidDate
		}
	case len(m[1]) <= 2 && len(m[5]) <= 2:
		return time.Time{}, ErrAmbiguousDate
	default:
		return time.Time{}, ErrInvalidDate
	}

	year, _ := strconv.Atoi(yearStr)
	month, _ := strconv.Atoi(monthStr)
	day, _ := strconv.Atoi(dayStr)
	return buildDate(year, month, day)
}

func parseSerial(s string) (time.Time, error) {
	whole := s
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole = s[:i]
	}
	days, err := strconv.Atoi(whole)
	if err != nil || days < 1 || days > maxSerial {
		return time.Time{}, fmt.Errorf("%w: serial %s out of range", ErrInvalidDate, s)
	}
	return serialEpoch.AddDate(0, 0, days), nil
}

// buildDate rejects dates that time.Date would silently normalize, such as 31.02.
func buildDate(year, month, day int) (time.Time, error) {
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, ErrInvalidDate
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}
