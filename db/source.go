package db

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"time"

	"cloud.google.com/go/storage"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// ErrSourceNotFound is returned by a Source when the named object does not
// exist.
var ErrSourceNotFound = errors.New("source not found")

// Source opens named trip data sources.
type Source interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
}

// ---------------------------------------------------------------------
// Local directory
// ---------------------------------------------------------------------

// DirSource reads sources from a local directory.
type DirSource struct {
	Dir string
}

// Open opens Dir/name.
func (s DirSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(s.Dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %v", ErrSourceNotFound, err)
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

// ---------------------------------------------------------------------
// Google Cloud Storage
// ---------------------------------------------------------------------

// GCSOptions configures a bucket-backed source.
type GCSOptions struct {
	Bucket string
	Prefix string
	// Endpoint overrides the storage API endpoint, e.g. for an emulator.
	Endpoint  string
	Anonymous bool
}

// GCSSource reads sources from objects in a Cloud Storage bucket.
type GCSSource struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewGCSSource creates a storage client for opts.Bucket.
func NewGCSSource(ctx context.Context, opts GCSOptions) (*GCSSource, error) {
	var clientOpts []option.ClientOption
	if opts.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(opts.Endpoint))
	}
	if opts.Anonymous {
		clientOpts = append(clientOpts, option.WithoutAuthentication())
	}
	client, err := storage.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}
	return &GCSSource{client: client, bucket: opts.Bucket, prefix: opts.Prefix}, nil
}

// Open opens the object prefix/name.
func (s *GCSSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	obj := s.client.Bucket(s.bucket).Object(path.Join(s.prefix, name))
	r, err := obj.NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, fmt.Errorf("%w: gs://%s/%s", ErrSourceNotFound, s.bucket, obj.ObjectName())
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Close releases the storage client.
func (s *GCSSource) Close() error {
	return s.client.Close()
}

// ---------------------------------------------------------------------
// Circuit breaker
// ---------------------------------------------------------------------

// BreakerSource guards a remote Source with a circuit breaker. After
// consecutive failures it rejects opens with gobreaker.ErrOpenState until
// the timeout elapses. Missing objects do not count as failures.
type BreakerSource struct {
	src Source
	cb  *gobreaker.CircuitBreaker
}

// WithBreaker wraps src. A zero timeout uses gobreaker's default.
func WithBreaker(src Source, timeout time.Duration, logger *zap.Logger) *BreakerSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "SourceCircuitBreaker",
		Timeout: timeout,
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrSourceNotFound) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return &BreakerSource{src: src, cb: cb}
}

// Open opens name through the breaker.
func (b *BreakerSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	rc, err := b.cb.Execute(func() (interface{}, error) {
		return b.src.Open(ctx, name)
	})
	if err != nil {
		return nil, err
	}
	return rc.(io.ReadCloser), nil
}

// State reports the breaker state.
func (b *BreakerSource) State() gobreaker.State {
	return b.cb.State()
}
