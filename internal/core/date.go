package core

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var (
	datePattern     = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)
	monthKeyPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)
)

// IsValidDate reports whether s is a calendar-correct date in exact
// dd/mm/yyyy form. The day/month/year components are range checked and
// then rebuilt through the Gregorian calendar, which rejects overflows
// such as 31/02 or 29/02 outside leap years. Anything shorter than the
// full mask simply fails; callers treat in-progress typing separately.
func IsValidDate(s string) bool {
	if !datePattern.MatchString(s) {
		return false
	}
	day, _ := strconv.Atoi(s[0:2])
	month, _ := strconv.Atoi(s[3:5])
	year, _ := strconv.Atoi(s[6:10])

	if year < 1 || year > 9999 {
		return false
	}
	if month < 1 || month > 12 {
		return false
	}
	if day < 1 || day > 31 {
		return false
	}

	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return d.Year() == year && int(d.Month()) == month && d.Day() == day
}

// DateSortKey encodes a valid dd/mm/yyyy date as year*10000+month*100+day,
// an integer that orders identically to chronological order. The flag is
// false for anything IsValidDate rejects.
func DateSortKey(s string) (int, bool) {
	if !IsValidDate(s) {
		return 0, false
	}
	day, _ := strconv.Atoi(s[0:2])
	month, _ := strconv.Atoi(s[3:5])
	year, _ := strconv.Atoi(s[6:10])
	return year*10000 + month*100 + day, true
}

// IsMonthKey reports whether s has the yyyy-mm competence shape.
func IsMonthKey(s string) bool {
	return monthKeyPattern.MatchString(s)
}

// MonthKeyAt returns the competence key of t, e.g. "2025-03".
func MonthKeyAt(t time.Time) string {
	return t.Format("2006-01")
}

// ParseMonthKey splits a competence key into year and month numbers.
// Keys with a zero year or month are rejected.
func ParseMonthKey(key string) (year, month int, ok bool) {
	if !IsMonthKey(key) {
		return 0, 0, false
	}
	year, _ = strconv.Atoi(key[0:4])
	month, _ = strconv.Atoi(key[5:7])
	if year == 0 || month == 0 {
		return 0, 0, false
	}
	return year, month, true
}

// NextMonthKey returns the competence that follows key chronologically,
// falling back to the current competence when key is malformed.
func NextMonthKey(key string, now time.Time) string {
	year, month, ok := ParseMonthKey(key)
	if !ok {
		return MonthKeyAt(now)
	}
	if month == 12 {
		year++
		month = 1
	} else {
		month++
	}
	return fmt.Sprintf("%04d-%02d", year, month)
}
