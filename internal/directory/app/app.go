// Package app assembles a running directory from its configuration: the
// logger, the record source, the lifecycle event producer and the
// controller.Directory that ties them together. Both binaries share it.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gartstein/companydir/internal/directory/config"
	"github.com/gartstein/companydir/internal/directory/controller"
	"github.com/gartstein/companydir/internal/directory/db"
	e "github.com/gartstein/companydir/internal/directory/errors"
	"github.com/gartstein/companydir/internal/directory/events"
	"github.com/gartstein/companydir/internal/directory/seed"
	"github.com/gartstein/companydir/internal/directory/sorting"
	"github.com/gartstein/companydir/internal/directory/source"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/text/language"
)

const (
	dbConnectRetries  = 5
	dbConnectInterval = 500 * time.Millisecond
)

// NewLogger builds a zap logger for the configured level and format.
func NewLogger(level, format string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	if format == "console" {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

// Runtime is an assembled directory and the resources it holds.
type Runtime struct {
	Directory *controller.Directory

	logger   *zap.Logger
	repo     *db.Repository
	producer *events.Producer
}

// Build wires a Directory for cfg. The directory is not loaded yet; call
// Load on it once the presentation is ready to observe it.
func Build(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts ...controller.Option) (*Runtime, error) {
	rt := &Runtime{logger: logger.Named("app")}

	tag, err := language.Parse(cfg.Collation)
	if err != nil {
		return nil, fmt.Errorf("invalid collation %q: %w", cfg.Collation, err)
	}

	src, err := rt.newSource(ctx, cfg)
	if err != nil {
		rt.Close()
		return nil, err
	}
	if cfg.FetchRetries > 0 {
		src = source.NewRetrying(src, cfg.FetchRetries, cfg.RetryInterval, logger)
	}

	var producer controller.EventProducer = events.NopProducer{}
	if len(cfg.KafkaBrokers) > 0 {
		rt.producer, err = events.NewProducer(cfg.KafkaBrokers, cfg.Topic, logger)
		if err != nil {
			rt.Close()
			return nil, fmt.Errorf("failed to initialize Kafka producer: %w", err)
		}
		producer = rt.producer
	}

	opts = append([]controller.Option{controller.WithSorter(sorting.NewSorter(tag))}, opts...)
	rt.Directory = controller.NewDirectory(src, producer, logger, opts...)
	return rt, nil
}

func (rt *Runtime) newSource(ctx context.Context, cfg *config.Config) (source.Source, error) {
	records, err := seed.Companies()
	if err != nil {
		return nil, fmt.Errorf("failed to load seed data: %w", err)
	}

	switch cfg.Source {
	case config.SourceDatabase:
		repo, err := connect(ctx, dbConfig(cfg), rt.logger)
		if err != nil {
			return nil, err
		}
		rt.repo = repo
		seeded, err := repo.SeedIfEmpty(ctx, records)
		if err != nil {
			return nil, fmt.Errorf("failed to seed database: %w", err)
		}
		rt.logger.Info("database source ready",
			zap.String("driver", cfg.DBDriver),
			zap.Bool("seeded", seeded),
			zap.Duration("delay", cfg.FetchDelay),
			zap.Bool("fail", cfg.FetchFail),
		)
		return source.NewDelayed(source.NewStore(repo), cfg.FetchDelay, cfg.FetchFail), nil
	default:
		rt.logger.Info("memory source ready",
			zap.Int("records", len(records)),
			zap.Duration("delay", cfg.FetchDelay),
			zap.Bool("fail", cfg.FetchFail),
		)
		return source.NewSimulated(records, cfg.FetchDelay, cfg.FetchFail), nil
	}
}

func dbConfig(cfg *config.Config) *db.Config {
	return &db.Config{
		Driver:   cfg.DBDriver,
		Path:     cfg.DBPath,
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		DBName:   cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
	}
}

// connect opens the repository, retrying while the database comes up.
func connect(ctx context.Context, cfg *db.Config, logger *zap.Logger) (*db.Repository, error) {
	var repo *db.Repository
	operation := func() error {
		r, err := db.NewRepository(cfg)
		if errors.Is(err, e.ErrInvalidInput) {
			return backoff.Permanent(err)
		}
		if err != nil {
			logger.Warn("database not reachable", zap.Error(err))
			return err
		}
		repo = r
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = dbConnectInterval
	if err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(b, dbConnectRetries), ctx)); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return repo, nil
}

// Close disposes the directory and releases everything Build acquired.
func (rt *Runtime) Close() {
	if rt.Directory != nil {
		rt.Directory.Dispose()
	}
	if rt.producer != nil {
		rt.producer.Close()
	}
	if rt.repo != nil {
		if err := rt.repo.Close(); err != nil {
			rt.logger.Error("failed to close database", zap.Error(err))
		}
	}
}
