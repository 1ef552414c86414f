package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/asterix-health/opsboard/internal/opsdata"
	"github.com/asterix-health/opsboard/internal/platform/db"
)

// OpenDataService builds the payload service for the configured source. The
// returned cleanup releases the database pool when one was opened. A nil
// redis client disables caching; a nil registerer disables source metrics.
func OpenDataService(ctx context.Context, cfg *Config, logger *slog.Logger, redisClient *redis.Client, reg prometheus.Registerer) (*opsdata.Service, func(), error) {
	cleanup := func() {}

	var source opsdata.Source
	switch cfg.DataSource {
	case DataSourcePostgres:
		pool, err := db.New(ctx, cfg.PGDSN, db.Options{MaxConns: 4})
		if err != nil {
			return nil, cleanup, err
		}
		cleanup = pool.Close
		source = opsdata.NewPostgresSource(pool)
	case DataSourceFile, "":
		source = opsdata.FileSource{Path: cfg.DataFile}
	default:
		return nil, cleanup, fmt.Errorf("unknown DATA_SOURCE %q", cfg.DataSource)
	}

	var metrics *opsdata.Metrics
	if reg != nil {
		m, err := opsdata.NewMetrics(reg)
		if err != nil {
			cleanup()
			return nil, func() {}, err
		}
		metrics = m
	}

	var cache *opsdata.Cache
	if redisClient != nil {
		cache = opsdata.NewCache(redisClient, cfg.CacheTTL)
	}
	if logger != nil {
		logger.Info("data source configured", slog.String("source", source.Name()), slog.Bool("cache", cache != nil))
	}
	return opsdata.NewService(source, cache, metrics), cleanup, nil
}
