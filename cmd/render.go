package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/TFMV/bikeshare"
	"github.com/TFMV/bikeshare/stats"
)

// render prints a report in the order the aggregators ran.
func render(w io.Writer, r *bikeshare.Report) {
	fmt.Fprintf(w, "City: %s, filter: %s, trips: %d\n", r.City, r.Filter, r.Rows)
	if r.Dropped > 0 {
		fmt.Fprintf(w, "Skipped %d rows with malformed start times.\n", r.Dropped)
	}
	fmt.Fprintln(w, rule)
	if r.Rows == 0 {
		fmt.Fprintln(w, "No trips match the selected filters.")
		fmt.Fprintln(w, rule)
		return
	}

	section(w, "Calculating The Most Frequent Times of Travel...", r.Elapsed[bikeshare.TimeStats], func() {
		t := r.Times
		fmt.Fprintf(w, "The most popular month is: %s (%d trips)\n", t.Month, t.MonthCount)
		fmt.Fprintf(w, "The most popular day of week is: %s (%d trips)\n", t.Weekday, t.WeekdayCount)
		fmt.Fprintf(w, "The most common start hour is: %d (%d trips)\n", t.Hour, t.HourCount)
	})

	section(w, "Calculating The Most Popular Stations and Trip...", r.Elapsed[bikeshare.StationStats], func() {
		s := r.Stations
		fmt.Fprintf(w, "The most common starting station is: %s (%d trips)\n", s.Start, s.StartCount)
		fmt.Fprintf(w, "The most common ending station is: %s (%d trips)\n", s.End, s.EndCount)
		fmt.Fprintf(w, "The most frequent trip is: %s -> %s (%d trips)\n", s.Route.Start, s.Route.End, s.RouteCount)
	})

	section(w, "Calculating Trip Duration...", r.Elapsed[bikeshare.DurationStats], func() {
		d := r.Durations
		fmt.Fprintf(w, "The total travel time is: %s seconds (%s)\n", formatSeconds(d.Total), d.TotalDuration().Round(time.Second))
		fmt.Fprintf(w, "The average travel time is: %s seconds (%s)\n", formatSeconds(d.Mean), d.MeanDuration().Round(time.Second))
	})

	section(w, "Calculating User Stats...", r.Elapsed[bikeshare.UserStats], func() {
		u := r.Users
		counts(w, "User Type", u.UserTypes)
		if u.Demographics == nil {
			return
		}
		fmt.Fprintln(w, "\nGender Stats:")
		counts(w, "Gender", u.Demographics.Genders)

		fmt.Fprintln(w, "\nBirth Year Stats:")
		by := u.Demographics.BirthYears
		if by == nil {
			fmt.Fprintln(w, "No birth year data.")
			return
		}
		fmt.Fprintf(w, "The most common user birth year is: %d (%d users)\n", by.Common, by.CommonCount)
		fmt.Fprintf(w, "The most recent users birth year is: %d\n", by.MostRecent)
		fmt.Fprintf(w, "The earliest users birth year is: %d\n", by.Earliest)
	})
}

func section(w io.Writer, title string, elapsed time.Duration, body func()) {
	fmt.Fprintf(w, "\n%s\n\n", title)
	body()
	fmt.Fprintf(w, "\nThis took %s seconds.\n", strconv.FormatFloat(elapsed.Seconds(), 'f', 6, 64))
	fmt.Fprintln(w, rule)
}

// counts prints a value-count table.
func counts(w io.Writer, header string, values []stats.Count) {
	if len(values) == 0 {
		fmt.Fprintf(w, "No %s data.\n", header)
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\tCount\n", header)
	for _, c := range values {
		fmt.Fprintf(tw, "%s\t%d\n", c.Value, c.Count)
	}
	_ = tw.Flush()
}

func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
