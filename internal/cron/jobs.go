package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/linescout/linescout-backend/internal/handoffs"
	"github.com/linescout/linescout-backend/internal/notifications"
	"github.com/linescout/linescout-backend/pkg/logger"
)

// NotificationCleanupJob deletes read notifications older than the retention
// window.
type NotificationCleanupJob struct {
	repo      notifications.Repository
	retention time.Duration
	logger    *logger.Logger
}

// NewNotificationCleanupJob builds the retention job.
func NewNotificationCleanupJob(repo notifications.Repository, retention time.Duration, logg *logger.Logger) (*NotificationCleanupJob, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if retention <= 0 {
		return nil, fmt.Errorf("retention must be positive")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &NotificationCleanupJob{repo: repo, retention: retention, logger: logg}, nil
}

func (j *NotificationCleanupJob) Name() string { return "notification_cleanup" }

func (j *NotificationCleanupJob) Run(ctx context.Context) error {
	cutoff := time.Now().Add(-j.retention)
	deleted, err := j.repo.DeleteReadBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("delete read notifications: %w", err)
	}
	j.logger.Info(j.logger.WithField(ctx, "deleted", deleted), "notification cleanup done")
	return nil
}

// StaleHandoffReminderJob re-notifies eligible agents about handoffs that have
// sat unclaimed past the configured threshold.
type StaleHandoffReminderJob struct {
	repo       handoffs.Repository
	fanout     *notifications.Fanout
	staleAfter time.Duration
	logger     *logger.Logger
}

// NewStaleHandoffReminderJob builds the reminder job.
func NewStaleHandoffReminderJob(repo handoffs.Repository, fanout *notifications.Fanout, staleAfter time.Duration, logg *logger.Logger) (*StaleHandoffReminderJob, error) {
	if repo == nil {
		return nil, fmt.Errorf("handoffs repository required")
	}
	if fanout == nil {
		return nil, fmt.Errorf("fanout required")
	}
	if staleAfter <= 0 {
		return nil, fmt.Errorf("stale threshold must be positive")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &StaleHandoffReminderJob{repo: repo, fanout: fanout, staleAfter: staleAfter, logger: logg}, nil
}

func (j *StaleHandoffReminderJob) Name() string { return "stale_handoff_reminder" }

func (j *StaleHandoffReminderJob) Run(ctx context.Context) error {
	cutoffHours := int(j.staleAfter.Hours())
	if cutoffHours < 1 {
		cutoffHours = 1
	}
	stale, err := j.repo.ListPendingOlderThan(ctx, cutoffHours)
	if err != nil {
		return fmt.Errorf("list stale handoffs: %w", err)
	}
	for i := range stale {
		// Delivery failures are already logged by the fan-out.
		_ = j.fanout.HandoffStale(ctx, &stale[i])
	}
	j.logger.Info(j.logger.WithField(ctx, "stale_count", len(stale)), "stale handoff reminders sent")
	return nil
}
