package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/docopt/docopt.go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/TFMV/bikeshare"
	"github.com/TFMV/bikeshare/config"
	"github.com/TFMV/bikeshare/db"
	"github.com/TFMV/bikeshare/stats"
	"github.com/TFMV/bikeshare/storage"
	"github.com/TFMV/bikeshare/trip"
)

const version = "1.0.0"

const usage = `Bikeshare trip statistics.

Usage:
  bikeshare query <city> [--month=<month>] [--day=<day>] [--config=<file>] [--data=<dir>] [--export=<path>]
  bikeshare explore [--config=<file>] [--data=<dir>] [--metrics-addr=<addr>]
  bikeshare (-h | --help)
  bikeshare --version

Options:
  -h --help              Show this screen.
  --version              Show version.
  --month=<month>        january to june, or all [default: all].
  --day=<day>            Day of week, or all [default: all].
  --config=<file>        YAML configuration file (default bikeshare.yml when present).
  --data=<dir>           Directory holding the city CSV files; overrides data.dir.
  --export=<path>        Write the filtered trips to an Arrow IPC file.
  --metrics-addr=<addr>  Serve Prometheus metrics on this address, e.g. :9090.
`

func main() {
	arguments, err := docopt.ParseDoc(usage)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing arguments: %v\n", err)
		os.Exit(1)
	}
	if v, _ := arguments.Bool("--version"); v {
		fmt.Printf("bikeshare version %s\n", version)
		os.Exit(0)
	}

	configPath, _ := arguments.String("--config")
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if dir, _ := arguments.String("--data"); dir != "" {
		cfg.Data.Dir = dir
		cfg.Data.GCS.Bucket = ""
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, closeStore, err := newStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to create record store", zap.Error(err))
		os.Exit(1)
	}
	defer closeStore()
	engine := bikeshare.NewEngine(store, logger)

	if isQuery, _ := arguments.Bool("query"); isQuery {
		city, _ := arguments.String("<city>")
		month, _ := arguments.String("--month")
		day, _ := arguments.String("--day")
		path, _ := arguments.String("--export")
		codec, err := storage.ParseCodec(cfg.ExportCompression)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		q := bikeshare.Query{City: city, Month: month, Day: day}
		if err := runQuery(ctx, engine, q, exportTarget{path: path, codec: codec}, os.Stdout); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if addr, _ := arguments.String("--metrics-addr"); addr != "" {
		srv := serveMetrics(addr, logger)
		defer func() {
			shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	// Listen for OS signals for graceful shutdown.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	doneCh := make(chan error, 1)
	go func() {
		doneCh <- explore(ctx, engine, os.Stdin, os.Stdout)
	}()

	select {
	case err := <-doneCh:
		if err != nil {
			logger.Error("Session failed", zap.Error(err))
		}
	case sig := <-sigCh:
		logger.Info("Received OS signal, shutting down", zap.String("signal", sig.String()))
		cancel()
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewProductionConfig()
	if lvl.Level() == zap.DebugLevel {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = lvl
	return cfg.Build()
}

// newStore builds the record store for cfg. Bucket sources sit behind a
// circuit breaker.
func newStore(ctx context.Context, cfg config.AppConfig, logger *zap.Logger) (*db.Store, func(), error) {
	policy, err := db.ParseTimestampPolicy(cfg.Timestamps)
	if err != nil {
		return nil, nil, err
	}
	opts := db.Options{
		Sources:    make(map[trip.City]string, len(cfg.Cities)),
		Timestamps: policy,
		CacheSize:  cfg.CacheSize,
		Logger:     logger,
	}
	for city, name := range cfg.Cities {
		opts.Sources[trip.City(city)] = name
	}

	gcs := cfg.Data.GCS
	if gcs.Bucket == "" {
		return db.NewStore(db.DirSource{Dir: cfg.Data.Dir}, opts), func() {}, nil
	}
	src, err := db.NewGCSSource(ctx, db.GCSOptions{
		Bucket:    gcs.Bucket,
		Prefix:    gcs.Prefix,
		Endpoint:  gcs.Endpoint,
		Anonymous: gcs.Anonymous,
	})
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := src.Close(); err != nil {
			logger.Warn("Failed to close storage client", zap.Error(err))
		}
	}
	return db.NewStore(db.WithBreaker(src, gcs.BreakerTimeout, logger), opts), closeFn, nil
}

func serveMetrics(addr string, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Info("Serving metrics", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", zap.Error(err))
		}
	}()
	return srv
}

// exportTarget is where runQuery writes the filtered trips. An empty path
// disables the export.
type exportTarget struct {
	path  string
	codec storage.Codec
}

// runQuery runs q, prints its report and optionally exports the filtered
// trips. An empty result is reported, not treated as a failure.
func runQuery(ctx context.Context, engine *bikeshare.Engine, q bikeshare.Query, export exportTarget, out io.Writer) error {
	report, err := engine.Run(ctx, q)
	if report == nil {
		return err
	}
	if err != nil && !errors.Is(err, stats.ErrEmptyInput) {
		return err
	}
	render(out, report)
	if export.path != "" {
		if err := storage.SaveToDisk(report.Table, export.path, export.codec); err != nil {
			return err
		}
		fmt.Fprintf(out, "Exported %d trips to %s\n", report.Rows, export.path)
	}
	return nil
}

// explore runs interactive queries until the user declines to restart or
// input ends.
func explore(ctx context.Context, engine *bikeshare.Engine, in io.Reader, out io.Writer) error {
	p := newPrompter(in, out)
	for {
		q, err := p.filters()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := runQuery(ctx, engine, q, exportTarget{}, out); err != nil {
			fmt.Fprintf(out, "Sorry, the query failed: %v\n", err)
		}
		if ctx.Err() != nil || !p.restart() {
			return ctx.Err()
		}
	}
}
