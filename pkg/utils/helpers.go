package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var dateColumnRe = regexp.MustCompile(`^\d+/\d+/\d+$`)

// IsDateColumn reports whether a header names a M/D/YY style date column.
func IsDateColumn(header string) bool {
	return dateColumnRe.MatchString(header)
}

// ParseDate parses a M/D/YY (or M/D/YYYY) header into a UTC calendar date.
// Two-digit years are read as 20YY.
func ParseDate(s string) (time.Time, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("date %q: want month/day/year", s)
	}
	month, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: bad month: %w", s, err)
	}
	day, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: bad day: %w", s, err)
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q: bad year: %w", s, err)
	}
	if year < 100 {
		year += 2000
	}
	if month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("date %q: month out of range", s)
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow; a mismatch means the day does not exist.
	if t.Day() != day || t.Month() != time.Month(month) {
		return time.Time{}, fmt.Errorf("date %q: day out of range", s)
	}
	return t, nil
}

// ParseCount parses an integer cell. Surrounding whitespace is ignored; anything
// else that is not a base-10 integer is an error.
func ParseCount(s string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
}

// SplitList splits a delimited list, trimming entries and dropping empty ones.
func SplitList(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// FormatDate renders a date the way the source headers do (M/D/YY).
func FormatDate(t time.Time) string {
	return t.Format("1/2/06")
}
