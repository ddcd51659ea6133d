// Package bikeshare answers descriptive-statistics questions about
// bike-share trips: it loads a city's trips, narrows them by month and day
// of week, and computes the time, station, duration and rider reports.
package bikeshare

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/TFMV/bikeshare/query"
	"github.com/TFMV/bikeshare/stats"
	"github.com/TFMV/bikeshare/trip"
)

// ---------------------------------------------------------------------
// Prometheus Metrics
// ---------------------------------------------------------------------

var (
	filterLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name: "bikeshare_filter_latency_seconds",
		Help: "Derive and filter latency distribution",
	})
	aggregateLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name: "bikeshare_aggregate_latency_seconds",
		Help: "Aggregator latency distribution",
	}, []string{"aggregator"})
)

func init() {
	prometheus.MustRegister(filterLatency, aggregateLatency)
}

// Aggregator names, in report order.
const (
	TimeStats     = "times"
	StationStats  = "stations"
	DurationStats = "durations"
	UserStats     = "users"
)

// Loader loads the trip table of a city. *db.Store implements it.
type Loader interface {
	Load(ctx context.Context, city string) (*trip.Table, error)
}

// Query selects the trips a report covers.
type Query struct {
	City  string
	Month string
	Day   string
}

// Report holds the statistics of one query. A report is returned alongside
// aggregator errors, so sections whose aggregator failed hold zero values.
type Report struct {
	Query Query
	City  trip.City
	// Filter describes the applied selectors.
	Filter string
	Schema trip.Schema
	// Rows is the number of trips left after filtering.
	Rows    int
	Dropped int

	// Table is the derived, filtered table the statistics were computed on.
	Table *trip.Table

	Times     stats.TimeReport
	Stations  stats.StationReport
	Durations stats.DurationReport
	Users     stats.UserReport

	// Elapsed maps aggregator names to their run time.
	Elapsed map[string]time.Duration
}

// Engine runs queries against a Loader.
type Engine struct {
	loader Loader
	logger *zap.Logger
}

// NewEngine creates an Engine. A nil logger discards logs.
func NewEngine(loader Loader, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{loader: loader, logger: logger}
}

// Run loads q.City, derives month, weekday and hour, applies the month and
// day selectors and runs the four aggregators.
//
// Selector and load errors are returned as-is with a nil report. Aggregator
// errors are joined and returned with the report, so a filter that matches
// nothing yields stats.ErrEmptyInput next to a report with zero rows.
func (e *Engine) Run(ctx context.Context, q Query) (*Report, error) {
	plan, err := query.NewPlan(q.Month, q.Day)
	if err != nil {
		return nil, err
	}

	table, err := e.loader.Load(ctx, q.City)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	filtered, err := plan.Apply(query.Derive(table))
	if err != nil {
		return nil, err
	}
	filterLatency.Observe(time.Since(start).Seconds())

	e.logger.Info("Filtered trips",
		zap.String("city", table.City.String()),
		zap.String("filter", plan.String()),
		zap.Int("loaded", table.Len()),
		zap.Int("rows", filtered.Len()),
		zap.Duration("elapsed", time.Since(start)))

	report := &Report{
		Query:   q,
		City:    table.City,
		Filter:  plan.String(),
		Schema:  filtered.Schema,
		Rows:    filtered.Len(),
		Dropped: filtered.Dropped,
		Table:   filtered,
		Elapsed: make(map[string]time.Duration, 4),
	}

	var errs []error
	run := func(name string, fn func() error) {
		start := time.Now()
		err := fn()
		elapsed := time.Since(start)
		report.Elapsed[name] = elapsed
		aggregateLatency.WithLabelValues(name).Observe(elapsed.Seconds())
		if err != nil {
			e.logger.Warn("Aggregator failed", zap.String("aggregator", name), zap.Error(err))
			errs = append(errs, err)
		}
	}

	run(TimeStats, func() (err error) {
		report.Times, err = stats.Times(filtered)
		return err
	})
	run(StationStats, func() (err error) {
		report.Stations, err = stats.Stations(filtered)
		return err
	})
	run(DurationStats, func() (err error) {
		report.Durations, err = stats.Durations(filtered)
		return err
	})
	run(UserStats, func() (err error) {
		report.Users, err = stats.Users(filtered)
		return err
	})

	return report, errors.Join(errs...)
}
