package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	jobmetrics "github.com/asterix-health/opsboard/internal/jobs"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// DataService is the slice of opsdata.Service the jobs drive.
type DataService interface {
	Warm(ctx context.Context) (int, error)
	Refresh(ctx context.Context) (int64, error)
}

// Pinger checks a downstream dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DataWarmupJob keeps the dashboard payload hot in the cache.
type DataWarmupJob struct {
	Data    DataService
	PDF     Pinger
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	Timeout time.Duration
}

// NewDataWarmupJob wires dependencies for the warm-up and refresh handlers.
func NewDataWarmupJob(data DataService, pdf Pinger, logger *slog.Logger, metrics *jobmetrics.Metrics) *DataWarmupJob {
	return &DataWarmupJob{Data: data, PDF: pdf, Logger: logger, Metrics: metrics, Timeout: 30 * time.Second}
}

// HandleWarmup processes TaskDataWarmup. The PDF backend is probed alongside
// so a broken Gotenberg shows up in the job log; its failure is not fatal.
func (j *DataWarmupJob) HandleWarmup(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Data == nil {
		return errors.New("data warmup: handler not configured")
	}
	var payload WarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("data warmup payload: %v: %w", err, asynq.SkipRetry)
	}
	tracker := j.metrics().Track(TaskDataWarmup)
	defer func() { err = tracker.End(err) }()

	logger := j.logger(TaskDataWarmup).With(slog.String("reason", payload.Reason))
	ctx, cancel := j.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	var weeks int
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := j.Data.Warm(gctx)
		weeks = n
		return err
	})
	if j.PDF != nil {
		g.Go(func() error {
			if err := j.PDF.Ping(gctx); err != nil {
				logger.Warn("pdf backend unavailable", slog.Any("error", err))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Error("warm dashboard data", slog.Any("error", err))
		return err
	}
	logger.Info("dashboard data warmed", slog.Int("weeks", weeks), slog.Duration("duration", time.Since(start)))
	return nil
}

// HandleRefresh processes TaskDataRefresh: bump the cache version, then load
// the fresh payload.
func (j *DataWarmupJob) HandleRefresh(ctx context.Context, t *asynq.Task) (err error) {
	if j == nil || j.Data == nil {
		return errors.New("data refresh: handler not configured")
	}
	var payload RefreshPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("data refresh payload: %v: %w", err, asynq.SkipRetry)
	}
	tracker := j.metrics().Track(TaskDataRefresh)
	defer func() { err = tracker.End(err) }()

	logger := j.logger(TaskDataRefresh).With(slog.String("request_id", payload.RequestID))
	ctx, cancel := j.withTimeout(ctx)
	defer cancel()

	version, err := j.Data.Refresh(ctx)
	if err != nil {
		logger.Error("bump data cache", slog.Any("error", err))
		return err
	}
	weeks, err := j.Data.Warm(ctx)
	if err != nil {
		logger.Error("reload dashboard data", slog.Any("error", err))
		return err
	}
	logger.Info("dashboard data refreshed", slog.Int64("version", version), slog.Int("weeks", weeks),
		slog.Duration("lag", time.Since(payload.RequestedAt)))
	return nil
}

func (j *DataWarmupJob) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if j.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, j.Timeout)
}

func (j *DataWarmupJob) logger(task string) *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", task))
	}
	return slog.Default().With(slog.String("job", task))
}

func (j *DataWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
