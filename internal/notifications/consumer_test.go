package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/linescout/linescout-backend/internal/handoffs"
	"github.com/linescout/linescout-backend/internal/reorders"
	"github.com/linescout/linescout-backend/pkg/config"
	"github.com/linescout/linescout-backend/pkg/db/models"
	"github.com/linescout/linescout-backend/pkg/enums"
	"github.com/linescout/linescout-backend/pkg/outbox"
	"github.com/linescout/linescout-backend/pkg/outbox/payloads"
	"github.com/linescout/linescout-backend/pkg/outbox/registry"
	"github.com/linescout/linescout-backend/pkg/pagination"
)

type stubHandoffStore struct {
	handoff *models.Handoff
}

func (s *stubHandoffStore) WithTx(tx *gorm.DB) handoffs.Repository { return s }

func (s *stubHandoffStore) Create(ctx context.Context, handoff *models.Handoff) (*models.Handoff, error) {
	return handoff, nil
}

func (s *stubHandoffStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Handoff, error) {
	if s.handoff != nil && s.handoff.ID == id {
		return s.handoff, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubHandoffStore) FindByToken(ctx context.Context, token string) (*models.Handoff, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubHandoffStore) FindFinancials(ctx context.Context, handoffID uuid.UUID) (*models.HandoffFinancials, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubHandoffStore) ClaimPending(ctx context.Context, handoffID, agentID uuid.UUID) (int64, error) {
	return 0, nil
}

func (s *stubHandoffStore) Update(ctx context.Context, handoffID uuid.UUID, updates map[string]any) error {
	return nil
}

func (s *stubHandoffStore) ListPendingUnclaimed(ctx context.Context, params pagination.Params) (*handoffs.HandoffList, error) {
	return &handoffs.HandoffList{}, nil
}

func (s *stubHandoffStore) ListByAgent(ctx context.Context, agentID uuid.UUID, params pagination.Params) (*handoffs.HandoffList, error) {
	return &handoffs.HandoffList{}, nil
}

func (s *stubHandoffStore) ListPendingOlderThan(ctx context.Context, cutoffHours int) ([]models.Handoff, error) {
	return nil, nil
}

type stubReorderStore struct {
	reorder *models.ReorderRequest
}

func (s *stubReorderStore) WithTx(tx *gorm.DB) reorders.Repository { return s }

func (s *stubReorderStore) Create(ctx context.Context, reorder *models.ReorderRequest) (*models.ReorderRequest, error) {
	return reorder, nil
}

func (s *stubReorderStore) FindByID(ctx context.Context, id uuid.UUID) (*models.ReorderRequest, error) {
	if s.reorder != nil && s.reorder.ID == id {
		return s.reorder, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubReorderStore) FindByPaystackRef(ctx context.Context, ref string) (*models.ReorderRequest, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubReorderStore) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return nil
}

func (s *stubReorderStore) List(ctx context.Context, params pagination.Params, filters reorders.ListFilters) (*reorders.ReorderList, error) {
	return &reorders.ReorderList{}, nil
}

func (s *stubReorderStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.ReorderRequest, error) {
	return nil, nil
}

func encodeEnvelope(t *testing.T, data any) []byte {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	envelope := outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now(),
		Data:       raw,
	}
	encoded, err := json.Marshal(envelope)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return encoded
}

func newConsumerFixture(t *testing.T, handoffStore *stubHandoffStore, reorderStore *stubReorderStore) (*Consumer, *fakeNotifRepo) {
	t.Helper()
	reg, err := registry.NewEventRegistry(config.PubSubConfig{
		NotificationTopic:        "ls-notification-events",
		NotificationSubscription: "ls-notify-worker",
	})
	if err != nil {
		t.Fatalf("registry error: %v", err)
	}
	repo := &fakeNotifRepo{}
	fanout, err := NewFanout(repo, &fakeAgentDir{eligible: []models.AgentProfile{eligibleAgent(false)}}, &fakeAdminDir{
		admins: []models.User{{ID: uuid.New(), SystemRole: "admin"}},
	}, nil, nil, "", testLogger())
	if err != nil {
		t.Fatalf("fanout error: %v", err)
	}
	consumer, err := NewConsumer(reg, fanout, handoffStore, reorderStore, testLogger())
	if err != nil {
		t.Fatalf("consumer error: %v", err)
	}
	return consumer, repo
}

func TestConsumerHandlesHandoffCreated(t *testing.T) {
	handoff := &models.Handoff{ID: uuid.New(), Token: "ho_evt", CustomerName: "Ada"}
	consumer, repo := newConsumerFixture(t, &stubHandoffStore{handoff: handoff}, &stubReorderStore{})

	data := encodeEnvelope(t, payloads.HandoffCreatedEvent{
		HandoffID:    handoff.ID,
		Token:        handoff.Token,
		Type:         enums.HandoffTypeSourcing,
		Mode:         enums.HandoffModePaidHuman,
		CustomerName: handoff.CustomerName,
	})
	err := consumer.Handle(context.Background(), data, map[string]string{
		AttrEventType:     string(enums.EventHandoffCreated),
		AttrAggregateType: string(enums.AggregateHandoff),
		AttrAggregateID:   handoff.ID.String(),
	})
	if err != nil {
		t.Fatalf("Handle error: %v", err)
	}
	if len(repo.rows) != 1 || repo.rows[0].Type != enums.NotificationTypeHandoffAvailable {
		t.Fatalf("expected agent inbox row, got %+v", repo.rows)
	}
}

func TestConsumerHandlesHandoffPaid(t *testing.T) {
	agentID := uuid.New()
	handoff := &models.Handoff{ID: uuid.New(), Token: "ho_paid", ClaimedBy: &agentID}
	consumer, repo := newConsumerFixture(t, &stubHandoffStore{handoff: handoff}, &stubReorderStore{})

	data := encodeEnvelope(t, payloads.HandoffPaidEvent{
		HandoffID:     handoff.ID,
		TotalPaidKobo: 450_000,
		BalanceKobo:   0,
		PaidAt:        time.Now(),
	})
	err := consumer.Handle(context.Background(), data, map[string]string{
		AttrEventType:     string(enums.EventHandoffPaid),
		AttrAggregateType: string(enums.AggregateHandoff),
		AttrAggregateID:   handoff.ID.String(),
	})
	if err != nil {
		t.Fatalf("Handle error: %v", err)
	}
	if len(repo.rows) != 2 {
		t.Fatalf("expected agent and admin inbox rows, got %+v", repo.rows)
	}
	if repo.rows[0].RecipientID != agentID || repo.rows[0].Type != enums.NotificationTypeHandoffPaid {
		t.Fatalf("expected claiming agent row first, got %+v", repo.rows[0])
	}
	if repo.rows[1].Type != enums.NotificationTypeHandoffPaid {
		t.Fatalf("expected admin inbox row, got %+v", repo.rows[1])
	}
}

func TestConsumerHandlesHandoffPaidUnclaimed(t *testing.T) {
	handoff := &models.Handoff{ID: uuid.New(), Token: "ho_paid_unclaimed"}
	consumer, repo := newConsumerFixture(t, &stubHandoffStore{handoff: handoff}, &stubReorderStore{})

	data := encodeEnvelope(t, payloads.HandoffPaidEvent{
		HandoffID:     handoff.ID,
		TotalPaidKobo: 450_000,
		PaidAt:        time.Now(),
	})
	err := consumer.Handle(context.Background(), data, map[string]string{
		AttrEventType:     string(enums.EventHandoffPaid),
		AttrAggregateType: string(enums.AggregateHandoff),
		AttrAggregateID:   handoff.ID.String(),
	})
	if err != nil {
		t.Fatalf("Handle error: %v", err)
	}
	if len(repo.rows) != 1 || repo.rows[0].Type != enums.NotificationTypeHandoffPaid {
		t.Fatalf("expected only admin inbox row, got %+v", repo.rows)
	}
}

func TestConsumerRoutesPendingReorderToAdmins(t *testing.T) {
	reorder := &models.ReorderRequest{
		ID:         uuid.New(),
		Status:     enums.ReorderStatusPendingAdmin,
		AmountKobo: 600_000,
	}
	consumer, repo := newConsumerFixture(t, &stubHandoffStore{}, &stubReorderStore{reorder: reorder})

	data := encodeEnvelope(t, payloads.ReorderCreatedEvent{
		ReorderID: reorder.ID,
		Status:    reorder.Status,
	})
	err := consumer.Handle(context.Background(), data, map[string]string{
		AttrEventType:     string(enums.EventReorderCreated),
		AttrAggregateType: string(enums.AggregateReorder),
		AttrAggregateID:   reorder.ID.String(),
	})
	if err != nil {
		t.Fatalf("Handle error: %v", err)
	}
	if len(repo.rows) != 1 || repo.rows[0].Type != enums.NotificationTypeReorderPendingAdmin {
		t.Fatalf("expected admin inbox row, got %+v", repo.rows)
	}
}

func TestConsumerRejectsUnknownAttributes(t *testing.T) {
	consumer, _ := newConsumerFixture(t, &stubHandoffStore{}, &stubReorderStore{})

	err := consumer.Handle(context.Background(), []byte("{}"), map[string]string{
		AttrEventType:     "not_a_real_event",
		AttrAggregateType: string(enums.AggregateHandoff),
		AttrAggregateID:   uuid.NewString(),
	})
	var nonRetryable registry.NonRetryableError
	if !errors.As(err, &nonRetryable) {
		t.Fatalf("expected non-retryable error, got %v", err)
	}
}

func TestConsumerIgnoresLifecycleOnlyEvents(t *testing.T) {
	consumer, repo := newConsumerFixture(t, &stubHandoffStore{}, &stubReorderStore{})

	data := encodeEnvelope(t, payloads.HandoffShippedEvent{
		HandoffID:   uuid.New(),
		Shipper:     "DHL",
		TrackingRef: "TRK-1",
		ShippedAt:   time.Now(),
	})
	err := consumer.Handle(context.Background(), data, map[string]string{
		AttrEventType:     string(enums.EventHandoffShipped),
		AttrAggregateType: string(enums.AggregateHandoff),
		AttrAggregateID:   uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("Handle error: %v", err)
	}
	if len(repo.rows) != 0 {
		t.Fatalf("no delivery expected, got %+v", repo.rows)
	}
}
