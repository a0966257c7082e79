package utils

import (
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// ParseDate splits an ISO calendar date (YYYY-MM-DD) into its parts.
func ParseDate(date string) (year, month, day int, err error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(date))
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", date)
	}
	return t.Year(), int(t.Month()), t.Day(), nil
}

// ValidDayParts checks the ranges accepted for availability keys. Day 31 is
// allowed for every month, as admins configure days independently of the
// calendar.
func ValidDayParts(year, month, day int) bool {
	return year >= 1 && year <= 9999 && month >= 1 && month <= 12 && day >= 1 && day <= 31
}
