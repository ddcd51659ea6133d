package stats

import (
	"time"

	"github.com/TFMV/bikeshare/trip"
)

// TimeReport holds the most frequent times of travel.
type TimeReport struct {
	Month      time.Month
	MonthCount int
	// Weekday is the capitalized weekday name, e.g. "Monday".
	Weekday      string
	WeekdayCount int
	Hour         int
	HourCount    int
}

// Times returns the modal month, weekday and start hour of t. Records
// without derived fields are derived from their start time on the fly.
func Times(t *trip.Table) (TimeReport, error) {
	if t.Empty() {
		return TimeReport{}, emptyInput("time stats")
	}

	months := newCounter[time.Month]()
	days := newCounter[string]()
	hours := newCounter[int]()
	for _, rec := range t.Records {
		month, day, hour := rec.Month, rec.DayName(), rec.Hour
		if !rec.Derived {
			month, day, hour = rec.StartTime.Month(), rec.StartTime.Weekday().String(), rec.StartTime.Hour()
		}
		months.add(month)
		days.add(day)
		hours.add(hour)
	}

	var r TimeReport
	r.Month, r.MonthCount, _ = months.mode()
	r.Weekday, r.WeekdayCount, _ = days.mode()
	r.Hour, r.HourCount, _ = hours.mode()
	return r, nil
}
