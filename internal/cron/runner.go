package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/linescout/linescout-backend/pkg/logger"
	"github.com/linescout/linescout-backend/pkg/metrics"
)

type lockStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	CronLockKey(jobName string) string
}

// Job is a unit of scheduled work.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Runner executes jobs under a Redis lock so only one worker instance runs a
// job at a time.
type Runner struct {
	locks   lockStore
	metrics *metrics.CronJobMetrics
	logger  *logger.Logger
	lockTTL time.Duration
}

// NewRunner wires the shared cron execution scaffolding.
func NewRunner(locks lockStore, m *metrics.CronJobMetrics, logg *logger.Logger, lockTTL time.Duration) (*Runner, error) {
	if locks == nil {
		return nil, fmt.Errorf("lock store required")
	}
	if m == nil {
		return nil, fmt.Errorf("metrics required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if lockTTL <= 0 {
		lockTTL = 10 * time.Minute
	}
	return &Runner{locks: locks, metrics: m, logger: logg, lockTTL: lockTTL}, nil
}

// RunOnce executes the job if the lock is free. A held lock is not an error;
// another instance is doing the work.
func (r *Runner) RunOnce(ctx context.Context, job Job) error {
	key := r.locks.CronLockKey(job.Name())
	acquired, err := r.locks.SetNX(ctx, key, time.Now().Format(time.RFC3339), r.lockTTL)
	if err != nil {
		return fmt.Errorf("acquire lock for %s: %w", job.Name(), err)
	}
	if !acquired {
		r.logger.Info(r.logger.WithField(ctx, "job", job.Name()), "cron lock held elsewhere, skipping")
		return nil
	}
	defer func() {
		if err := r.locks.Del(ctx, key); err != nil {
			r.logger.Error(ctx, "release cron lock", err)
		}
	}()

	ctx = r.logger.WithField(ctx, "job", job.Name())
	start := time.Now()
	runErr := job.Run(ctx)
	r.metrics.ObserveDuration(job.Name(), time.Since(start))
	if runErr != nil {
		r.metrics.IncFailure(job.Name())
		r.logger.Error(ctx, "cron job failed", runErr)
		return runErr
	}
	r.metrics.IncSuccess(job.Name())
	r.logger.Info(ctx, "cron job finished")
	return nil
}
