// Package query derives temporal fields on trip tables and filters them by
// month and weekday selectors.
package query

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// All is the wildcard selector.
const All = "all"

// ErrInvalidSelector is returned for month or day selectors outside the
// supported sets.
var ErrInvalidSelector = errors.New("invalid selector")

// Months lists the month selectors in calendar order. Source data only
// covers the first half of the year.
var Months = []string{"january", "february", "march", "april", "may", "june"}

// Days lists the weekday selectors.
var Days = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// MonthSelector selects a single calendar month, or every month when Any
// is true.
type MonthSelector struct {
	Any   bool
	Month time.Month
}

// DaySelector selects a single weekday, or every day when Any is true.
type DaySelector struct {
	Any     bool
	Weekday time.Weekday
}

func (m MonthSelector) String() string {
	if m.Any {
		return All
	}
	return strings.ToLower(m.Month.String())
}

func (d DaySelector) String() string {
	if d.Any {
		return All
	}
	return strings.ToLower(d.Weekday.String())
}

// ParseMonth parses "all" or one of Months, ignoring case and surrounding
// space.
func ParseMonth(s string) (MonthSelector, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == All {
		return MonthSelector{Any: true}, nil
	}
	for i, name := range Months {
		if v == name {
			return MonthSelector{Month: time.Month(i + 1)}, nil
		}
	}
	return MonthSelector{}, fmt.Errorf("%w: month %q", ErrInvalidSelector, s)
}

// ParseDay parses "all" or one of Days, ignoring case and surrounding space.
func ParseDay(s string) (DaySelector, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == All {
		return DaySelector{Any: true}, nil
	}
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if v == strings.ToLower(wd.String()) {
			return DaySelector{Weekday: wd}, nil
		}
	}
	return DaySelector{}, fmt.Errorf("%w: day %q", ErrInvalidSelector, s)
}
