// Package db implements the record store: it resolves a city to its trip
// data source and loads the source into an in-memory trip table.
package db

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/golang/groupcache/lru"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/TFMV/bikeshare/storage"
	"github.com/TFMV/bikeshare/trip"
)

// ---------------------------------------------------------------------
// Prometheus Metrics
// ---------------------------------------------------------------------

var (
	loadLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name: "bikeshare_load_latency_seconds",
		Help: "Trip source load latency distribution",
	})
	droppedRows = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bikeshare_dropped_rows_total",
		Help: "Rows dropped because of malformed start times",
	}, []string{"city"})
)

func init() {
	prometheus.MustRegister(loadLatency, droppedRows)
}

// DefaultChunkSize is the number of CSV rows per Arrow record batch.
const DefaultChunkSize = 4096

// Options configures a Store.
type Options struct {
	// Sources overrides entries of DefaultSources.
	Sources    map[trip.City]string
	Timestamps TimestampPolicy
	// CacheSize is the number of parsed tables kept in memory. Zero
	// disables caching.
	CacheSize int
	ChunkSize int
	Logger    *zap.Logger
}

// ---------------------------------------------------------------------
// Store: The Record Store
// ---------------------------------------------------------------------

// Store loads trip tables from a Source.
type Store struct {
	mu      sync.Mutex
	src     Source
	sources map[trip.City]string
	policy  TimestampPolicy
	chunk   int
	cache   *lru.Cache
	logger  *zap.Logger
}

// NewStore creates a Store reading from src.
func NewStore(src Source, opts Options) *Store {
	sources := make(map[trip.City]string, len(DefaultSources))
	for city, name := range DefaultSources {
		sources[city] = name
	}
	for city, name := range opts.Sources {
		if c, ok := trip.ParseCity(string(city)); ok && name != "" {
			sources[c] = name
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	chunk := opts.ChunkSize
	if chunk <= 0 {
		chunk = DefaultChunkSize
	}

	s := &Store{
		src:     src,
		sources: sources,
		policy:  opts.Timestamps,
		chunk:   chunk,
		logger:  logger,
	}
	if opts.CacheSize > 0 {
		s.cache = lru.New(opts.CacheSize)
	}
	return s
}

// SourceName returns the source a city resolves to.
func (s *Store) SourceName(city string) (string, error) {
	c, _ := trip.ParseCity(city)
	name, ok := s.sources[c]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCity, city)
	}
	return name, nil
}

// Load reads the trip table of city. Records keep source order and carry
// parsed start times; derived fields are left unset.
//
// Errors match ErrUnknownCity, ErrSourceUnavailable or
// ErrMalformedTimestamp. The returned table belongs to the caller.
func (s *Store) Load(ctx context.Context, city string) (*trip.Table, error) {
	name, err := s.SourceName(city)
	if err != nil {
		return nil, err
	}
	c, _ := trip.ParseCity(city)

	if t, ok := s.cached(name); ok {
		t.City = c
		s.logger.Debug("Loaded trips from cache", zap.String("city", c.String()), zap.Int("rows", t.Len()))
		return t, nil
	}

	start := time.Now()
	t, err := s.read(ctx, c, name)
	if err != nil {
		return nil, err
	}
	loadLatency.Observe(time.Since(start).Seconds())
	if t.Dropped > 0 {
		droppedRows.WithLabelValues(c.String()).Add(float64(t.Dropped))
		s.logger.Warn("Dropped rows with malformed start times",
			zap.String("city", c.String()),
			zap.Int("dropped", t.Dropped))
	}
	s.logger.Info("Loaded trips",
		zap.String("city", c.String()),
		zap.String("source", name),
		zap.Int("rows", t.Len()),
		zap.Bool("demographics", t.Schema.Demographics),
		zap.Duration("elapsed", time.Since(start)))

	s.store(name, t)
	return t.Clone(), nil
}

func (s *Store) read(ctx context.Context, city trip.City, name string) (*trip.Table, error) {
	rc, err := s.src.Open(ctx, name)
	if err != nil {
		return nil, unavailable(name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, unavailable(name, err)
	}

	if strings.HasSuffix(strings.ToLower(name), storage.Extension) {
		t, err := storage.Decode(data)
		if err != nil {
			return nil, unavailable(name, err)
		}
		t.City = city
		return t, nil
	}

	d := &decoder{source: name, policy: s.policy, chunk: s.chunk}
	if err := d.decodeCSV(data); err != nil {
		return nil, err
	}
	t := trip.NewTable(city, d.schema)
	t.Records = append(t.Records, d.records...)
	t.Dropped = d.dropped
	return t, nil
}

func (s *Store) cached(name string) (*trip.Table, bool) {
	if s.cache == nil {
		return nil, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.cache.Get(name)
	if !ok {
		return nil, false
	}
	return v.(*trip.Table).Clone(), true
}

func (s *Store) store(name string, t *trip.Table) {
	if s.cache == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Add(name, t)
}

// Purge empties the table cache.
func (s *Store) Purge() {
	if s.cache == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Clear()
}
