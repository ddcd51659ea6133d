package query

import (
	"fmt"
	"strings"
)

// Plan represents a validated filter request
type Plan struct {
	Month MonthSelector
	Day   DaySelector
}

// NewPlan validates month and day selectors and creates a plan for them
func NewPlan(month, day string) (*Plan, error) {
	m, err := ParseMonth(month)
	if err != nil {
		return nil, err
	}
	d, err := ParseDay(day)
	if err != nil {
		return nil, err
	}
	return &Plan{Month: m, Day: d}, nil
}

// Passthrough reports whether the plan keeps every row
func (p *Plan) Passthrough() bool {
	return p.Month.Any && p.Day.Any
}

// Columns returns the derived columns the plan filters on
func (p *Plan) Columns() []string {
	cols := make([]string, 0, 2)
	if !p.Month.Any {
		cols = append(cols, "month")
	}
	if !p.Day.Any {
		cols = append(cols, "day_of_week")
	}
	return cols
}

func (p *Plan) String() string {
	if p.Passthrough() {
		return "no filter"
	}
	parts := make([]string, 0, 2)
	if !p.Month.Any {
		parts = append(parts, fmt.Sprintf("month=%s", p.Month))
	}
	if !p.Day.Any {
		parts = append(parts, fmt.Sprintf("day=%s", p.Day))
	}
	return strings.Join(parts, " AND ")
}
