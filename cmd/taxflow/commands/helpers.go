package commands

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/taxdeedflow/extraction-engine/internal/cache"
	"github.com/taxdeedflow/extraction-engine/internal/config"
	"github.com/taxdeedflow/extraction-engine/internal/extraction"
	"github.com/taxdeedflow/extraction-engine/internal/fetch"
	"github.com/taxdeedflow/extraction-engine/internal/observability"
	"github.com/taxdeedflow/extraction-engine/internal/pipeline"
	"github.com/taxdeedflow/extraction-engine/internal/storage"
)

// app bundles the wired-up services a command needs.
type app struct {
	cfg      *config.Config
	logger   *observability.Logger
	db       *sql.DB
	repos    *storage.Repositories
	cache    cache.Client
	pipeline *pipeline.Pipeline
}

// newApp loads configuration and wires up the service graph. Commands that
// only touch local files should use newEngineOnly instead.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger := newLogger(cfg)

	db, err := storage.Open(cfg.DriverName(), cfg.DatabaseDSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if cfg.Database.Driver == "postgres" {
		db.SetMaxOpenConns(cfg.Database.Postgres.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Database.Postgres.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.Database.Postgres.ConnMaxLifetime)
	} else {
		db.SetMaxOpenConns(cfg.Database.SQLite.MaxOpenConns)
	}

	if err := storage.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	cacheClient, err := newCache(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	repos := storage.NewRepositories(db)
	fetcher := fetch.NewFetcher(logger,
		fetch.WithTimeout(cfg.Fetch.Timeout),
		fetch.WithMaxSize(int64(cfg.Fetch.MaxSizeMB)<<20),
	)

	pipe := pipeline.New(pipeline.Deps{
		Logger:         logger,
		Engine:         extraction.NewEngine(logger),
		Repos:          repos,
		Fetch:          fetcher,
		Cache:          cacheClient,
		CacheTTL:       cfg.Cache.TTL,
		DownloadDir:    cfg.Fetch.DownloadDir,
		KeepFiles:      cfg.Fetch.KeepFiles,
		DefaultTaxYear: cfg.Parser.DefaultTaxYear,
		BatchLimit:     cfg.Parser.BatchLimit,
	})

	return &app{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		repos:    repos,
		cache:    cacheClient,
		pipeline: pipe,
	}, nil
}

// Close releases the app's connections.
func (a *app) Close() {
	if a.cache != nil {
		a.cache.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}

func newLogger(cfg *config.Config) *observability.Logger {
	level := cfg.Observability.LogLevel
	format := cfg.Observability.LogFormat
	if verbose {
		level = "debug"
		format = "console"
	}
	return observability.NewLogger(observability.LogConfig{
		Level:       level,
		Format:      format,
		ServiceName: "taxflow",
	})
}

func newCache(cfg *config.Config) (cache.Client, error) {
	if cfg.Cache.Driver == "redis" {
		client, err := cache.NewRedisClient(cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			PoolSize: cfg.Cache.Redis.PoolSize,
		})
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		return client, nil
	}
	return cache.NewMemoryClient(cfg.Cache.MaxEntries), nil
}

// commandContext returns a context bounded to typical batch run length.
func commandContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Minute)
}
