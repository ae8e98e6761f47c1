// Package app wires the inspector's backing services from configuration.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"docinspect/internal/cache"
	"docinspect/internal/config"
	"docinspect/internal/database"
	"docinspect/internal/database/migration"
	"docinspect/internal/loader"
	"docinspect/internal/repository/postgres"
	"docinspect/internal/service"
	"docinspect/internal/storage"
)

// Components are the long-lived collaborators shared by the API and the CLI.
type Components struct {
	DB       *sql.DB
	Info     service.InfoService
	Loader   *loader.Loader
	Registry *prometheus.Registry

	closers []func() error
}

// Build connects to Postgres, MinIO and (when configured) Redis, and assembles
// the info service and loader on top of them. Close releases whatever was opened,
// including on a partial failure.
func Build(ctx context.Context, cfg *config.AppConfig, log zerolog.Logger) (_ *Components, err error) {
	c := &Components{Registry: prometheus.NewRegistry()}
	defer func() {
		if err != nil {
			_ = c.Close()
		}
	}()

	c.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	c.DB, err = database.NewPostgres(ctx, cfg.Database, log)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	c.closers = append(c.closers, c.DB.Close)

	if cfg.Database.AutoMigrate {
		if err = migration.EnsureMigrated(ctx, c.DB, log, cfg.Database.Host); err != nil {
			return nil, fmt.Errorf("migrate database: %w", err)
		}
	}

	store, err := storage.NewMinIO(ctx, cfg.MinIO)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	var infoCache cache.Cache = cache.Noop{}
	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("init cache: %w", err)
		}
		c.closers = append(c.closers, rc.Close)
		infoCache = rc
	} else {
		log.Info().Str("event", "cache_disabled").Msg("REDIS_ADDR not set, info cache disabled")
	}

	c.Info = service.NewInfoService(
		postgres.NewDocumentPostgres(c.DB),
		store,
		infoCache,
		service.Options{
			CacheTTL:      cfg.Inspector.CacheTTL,
			PresignExpiry: cfg.Inspector.PresignExpiry,
		},
		log,
	)

	metrics, err := loader.NewMetrics(c.Registry)
	if err != nil {
		return nil, fmt.Errorf("register loader metrics: %w", err)
	}
	c.Loader = loader.New(c.Info,
		loader.WithTimeout(cfg.Inspector.LoadTimeout),
		loader.WithLogger(log),
		loader.WithMetrics(metrics),
	)
	return c, nil
}

// Close cancels the loads of the root loader and every session, waits for
// their goroutines, then closes connections in reverse order.
func (c *Components) Close() error {
	if c.Loader != nil {
		c.Loader.Reset()
		c.Loader.Wait()
	}
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		errs = append(errs, c.closers[i]())
	}
	c.closers = nil
	return errors.Join(errs...)
}
