package stats

import (
	"time"

	"github.com/TFMV/bikeshare/trip"
)

// DurationReport holds total and mean trip duration in seconds.
type DurationReport struct {
	Trips int
	Total float64
	Mean  float64
}

// TotalDuration returns Total as a time.Duration.
func (r DurationReport) TotalDuration() time.Duration {
	return time.Duration(r.Total * float64(time.Second))
}

// MeanDuration returns Mean as a time.Duration.
func (r DurationReport) MeanDuration() time.Duration {
	return time.Duration(r.Mean * float64(time.Second))
}

// Durations sums and averages the trip durations of t.
func Durations(t *trip.Table) (DurationReport, error) {
	if t.Empty() {
		return DurationReport{}, emptyInput("duration stats")
	}

	var total float64
	for _, rec := range t.Records {
		total += rec.Duration
	}
	n := t.Len()
	return DurationReport{
		Trips: n,
		Total: total,
		Mean:  total / float64(n),
	}, nil
}
