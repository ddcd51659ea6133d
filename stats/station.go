package stats

import (
	"github.com/TFMV/bikeshare/trip"
)

// Route is an ordered (start, end) station pair. A→B and B→A are
// different routes.
type Route struct {
	Start string
	End   string
}

func (r Route) less(o Route) bool {
	if r.Start != o.Start {
		return r.Start < o.Start
	}
	return r.End < o.End
}

// StationReport holds the most popular stations and trip.
type StationReport struct {
	Start      string
	StartCount int
	End        string
	EndCount   int
	Route      Route
	RouteCount int
}

// Stations returns the modal start station, end station and route of t.
func Stations(t *trip.Table) (StationReport, error) {
	if t.Empty() {
		return StationReport{}, emptyInput("station stats")
	}

	starts := newCounter[string]()
	ends := newCounter[string]()
	routes := newCounterFunc(Route.less)
	for _, rec := range t.Records {
		starts.add(rec.StartStation)
		ends.add(rec.EndStation)
		routes.add(Route{Start: rec.StartStation, End: rec.EndStation})
	}

	var r StationReport
	r.Start, r.StartCount, _ = starts.mode()
	r.End, r.EndCount, _ = ends.mode()
	r.Route, r.RouteCount, _ = routes.mode()
	return r, nil
}
