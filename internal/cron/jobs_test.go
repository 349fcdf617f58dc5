package cron

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/linescout/linescout-backend/internal/handoffs"
	"github.com/linescout/linescout-backend/internal/notifications"
	"github.com/linescout/linescout-backend/pkg/db/models"
	"github.com/linescout/linescout-backend/pkg/enums"
	"github.com/linescout/linescout-backend/pkg/logger"
	"github.com/linescout/linescout-backend/pkg/metrics"
	"github.com/linescout/linescout-backend/pkg/pagination"
)

type memoryLockStore struct {
	mu    sync.Mutex
	locks map[string]struct{}
}

func newMemoryLockStore() *memoryLockStore {
	return &memoryLockStore{locks: map[string]struct{}{}}
}

func (m *memoryLockStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, held := m.locks[key]; held {
		return false, nil
	}
	m.locks[key] = struct{}{}
	return true, nil
}

func (m *memoryLockStore) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.locks, key)
	}
	return nil
}

func (m *memoryLockStore) CronLockKey(jobName string) string {
	return "ls:cron:lock:" + jobName
}

type recordingJob struct {
	name string
	runs int
	err  error
}

func (j *recordingJob) Name() string { return j.name }

func (j *recordingJob) Run(ctx context.Context) error {
	j.runs++
	return j.err
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func testRunner(t *testing.T, locks *memoryLockStore) *Runner {
	t.Helper()
	m := metrics.NewCronJobMetrics(prometheus.NewRegistry())
	runner, err := NewRunner(locks, m, testLogger(), time.Minute)
	if err != nil {
		t.Fatalf("runner error: %v", err)
	}
	return runner
}

func TestRunnerSkipsWhenLockHeld(t *testing.T) {
	locks := newMemoryLockStore()
	runner := testRunner(t, locks)
	job := &recordingJob{name: "notification_cleanup"}

	locks.locks[locks.CronLockKey(job.Name())] = struct{}{}
	if err := runner.RunOnce(context.Background(), job); err != nil {
		t.Fatalf("RunOnce error: %v", err)
	}
	if job.runs != 0 {
		t.Fatal("job must not run while the lock is held")
	}
}

func TestRunnerReleasesLockAfterRun(t *testing.T) {
	locks := newMemoryLockStore()
	runner := testRunner(t, locks)
	job := &recordingJob{name: "stale_handoff_reminder"}

	if err := runner.RunOnce(context.Background(), job); err != nil {
		t.Fatalf("RunOnce error: %v", err)
	}
	if job.runs != 1 {
		t.Fatalf("expected one run, got %d", job.runs)
	}
	if _, held := locks.locks[locks.CronLockKey(job.Name())]; held {
		t.Fatal("lock must be released after the run")
	}

	if err := runner.RunOnce(context.Background(), job); err != nil {
		t.Fatalf("second RunOnce error: %v", err)
	}
	if job.runs != 2 {
		t.Fatalf("expected second run, got %d", job.runs)
	}
}

func TestRunnerPropagatesJobFailure(t *testing.T) {
	locks := newMemoryLockStore()
	runner := testRunner(t, locks)
	job := &recordingJob{name: "notification_cleanup", err: errors.New("boom")}

	if err := runner.RunOnce(context.Background(), job); err == nil {
		t.Fatal("expected job error to propagate")
	}
	if _, held := locks.locks[locks.CronLockKey(job.Name())]; held {
		t.Fatal("lock must be released even on failure")
	}
}

type cleanupRepo struct {
	rows   []models.Notification
	cutoff time.Time
}

func (c *cleanupRepo) WithTx(tx *gorm.DB) notifications.Repository { return c }

func (c *cleanupRepo) Create(ctx context.Context, n *models.Notification) (*models.Notification, error) {
	c.rows = append(c.rows, *n)
	return n, nil
}

func (c *cleanupRepo) CreateBatch(ctx context.Context, ns []models.Notification) error {
	c.rows = append(c.rows, ns...)
	return nil
}

func (c *cleanupRepo) ListByRecipient(ctx context.Context, recipientID uuid.UUID, params pagination.Params, filters notifications.ListFilters) (*notifications.NotificationList, error) {
	return &notifications.NotificationList{}, nil
}

func (c *cleanupRepo) MarkRead(ctx context.Context, recipientID, notificationID uuid.UUID) (int64, error) {
	return 0, nil
}

func (c *cleanupRepo) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	return 0, nil
}

func (c *cleanupRepo) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	c.cutoff = cutoff
	var kept []models.Notification
	var deleted int64
	for _, n := range c.rows {
		if n.ReadAt != nil && n.CreatedAt.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, n)
	}
	c.rows = kept
	return deleted, nil
}

func TestNotificationCleanupDeletesOldReadEntries(t *testing.T) {
	repo := &cleanupRepo{}
	read := time.Now().Add(-40 * 24 * time.Hour)
	repo.rows = []models.Notification{
		{ID: uuid.New(), CreatedAt: read, ReadAt: &read},
		{ID: uuid.New(), CreatedAt: read},
		{ID: uuid.New(), CreatedAt: time.Now(), ReadAt: &read},
	}

	job, err := NewNotificationCleanupJob(repo, 30*24*time.Hour, testLogger())
	if err != nil {
		t.Fatalf("job error: %v", err)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	// only the old read entry goes; unread and recent entries stay
	if len(repo.rows) != 2 {
		t.Fatalf("expected 2 surviving rows, got %d", len(repo.rows))
	}
	expected := time.Now().Add(-30 * 24 * time.Hour)
	if repo.cutoff.Before(expected.Add(-time.Minute)) || repo.cutoff.After(expected.Add(time.Minute)) {
		t.Fatalf("cutoff outside retention window: %v", repo.cutoff)
	}
}

type staleHandoffRepo struct {
	stale       []models.Handoff
	cutoffHours int
}

func (s *staleHandoffRepo) WithTx(tx *gorm.DB) handoffs.Repository { return s }

func (s *staleHandoffRepo) Create(ctx context.Context, handoff *models.Handoff) (*models.Handoff, error) {
	return handoff, nil
}

func (s *staleHandoffRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Handoff, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *staleHandoffRepo) FindByToken(ctx context.Context, token string) (*models.Handoff, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *staleHandoffRepo) FindFinancials(ctx context.Context, handoffID uuid.UUID) (*models.HandoffFinancials, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *staleHandoffRepo) ClaimPending(ctx context.Context, handoffID, agentID uuid.UUID) (int64, error) {
	return 0, nil
}

func (s *staleHandoffRepo) Update(ctx context.Context, handoffID uuid.UUID, updates map[string]any) error {
	return nil
}

func (s *staleHandoffRepo) ListPendingUnclaimed(ctx context.Context, params pagination.Params) (*handoffs.HandoffList, error) {
	return &handoffs.HandoffList{}, nil
}

func (s *staleHandoffRepo) ListByAgent(ctx context.Context, agentID uuid.UUID, params pagination.Params) (*handoffs.HandoffList, error) {
	return &handoffs.HandoffList{}, nil
}

func (s *staleHandoffRepo) ListPendingOlderThan(ctx context.Context, cutoffHours int) ([]models.Handoff, error) {
	s.cutoffHours = cutoffHours
	return s.stale, nil
}

type staleAgentDir struct{}

func (staleAgentDir) ListEligible(ctx context.Context) ([]models.AgentProfile, error) {
	return []models.AgentProfile{{
		ID:             uuid.New(),
		UserID:         uuid.New(),
		Username:       "chinedu",
		Email:          "chinedu@example.com",
		IsActive:       true,
		ApprovalStatus: enums.AgentApprovalApproved,
	}}, nil
}

func (staleAgentDir) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.AgentProfile, error) {
	return nil, gorm.ErrRecordNotFound
}

type staleAdminDir struct{}

func (staleAdminDir) ListAdmins(ctx context.Context) ([]models.User, error) { return nil, nil }

func TestStaleHandoffReminderNotifiesAgents(t *testing.T) {
	inbox := &cleanupRepo{}
	fanout, err := notifications.NewFanout(inbox, staleAgentDir{}, staleAdminDir{}, nil, nil, "", testLogger())
	if err != nil {
		t.Fatalf("fanout error: %v", err)
	}

	repo := &staleHandoffRepo{stale: []models.Handoff{
		{ID: uuid.New(), Token: "ho_old1", Status: enums.HandoffStatusPending, CreatedAt: time.Now().Add(-8 * time.Hour)},
		{ID: uuid.New(), Token: "ho_old2", Status: enums.HandoffStatusPending, CreatedAt: time.Now().Add(-9 * time.Hour)},
	}}
	job, err := NewStaleHandoffReminderJob(repo, fanout, 6*time.Hour, testLogger())
	if err != nil {
		t.Fatalf("job error: %v", err)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if repo.cutoffHours != 6 {
		t.Fatalf("expected 6h cutoff, got %d", repo.cutoffHours)
	}
	if len(inbox.rows) != 2 {
		t.Fatalf("expected one inbox row per stale handoff, got %d", len(inbox.rows))
	}
	for _, row := range inbox.rows {
		if row.Type != enums.NotificationTypeHandoffStale {
			t.Fatalf("unexpected type %s", row.Type)
		}
	}
}
