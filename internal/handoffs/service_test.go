package handoffs

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/linescout/linescout-backend/pkg/db/models"
	"github.com/linescout/linescout-backend/pkg/enums"
	pkgerrors "github.com/linescout/linescout-backend/pkg/errors"
	"github.com/linescout/linescout-backend/pkg/outbox"
	"github.com/linescout/linescout-backend/pkg/outbox/payloads"
	"github.com/linescout/linescout-backend/pkg/pagination"
)

type stubHandoffRepo struct {
	handoff     *models.Handoff
	financials  *models.HandoffFinancials
	claimRows   int64
	claimErr    error
	claimCalls  int
	updates     map[string]any
	updatedID   uuid.UUID
	pendingList *HandoffList
	agentList   *HandoffList
}

func (s *stubHandoffRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubHandoffRepo) Create(ctx context.Context, handoff *models.Handoff) (*models.Handoff, error) {
	if handoff.ID == uuid.Nil {
		handoff.ID = uuid.New()
	}
	return handoff, nil
}

func (s *stubHandoffRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Handoff, error) {
	if s.handoff == nil || s.handoff.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.handoff, nil
}

func (s *stubHandoffRepo) FindByToken(ctx context.Context, token string) (*models.Handoff, error) {
	if s.handoff == nil || s.handoff.Token != token {
		return nil, gorm.ErrRecordNotFound
	}
	return s.handoff, nil
}

func (s *stubHandoffRepo) FindFinancials(ctx context.Context, handoffID uuid.UUID) (*models.HandoffFinancials, error) {
	if s.financials == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.financials, nil
}

func (s *stubHandoffRepo) ClaimPending(ctx context.Context, handoffID, agentID uuid.UUID) (int64, error) {
	s.claimCalls++
	if s.claimErr != nil {
		return 0, s.claimErr
	}
	if s.claimRows > 0 && s.handoff != nil {
		s.handoff.Status = enums.HandoffStatusClaimed
		s.handoff.ClaimedBy = &agentID
	}
	return s.claimRows, nil
}

func (s *stubHandoffRepo) Update(ctx context.Context, handoffID uuid.UUID, updates map[string]any) error {
	s.updatedID = handoffID
	s.updates = updates
	return nil
}

func (s *stubHandoffRepo) ListPendingUnclaimed(ctx context.Context, params pagination.Params) (*HandoffList, error) {
	if s.pendingList != nil {
		return s.pendingList, nil
	}
	return &HandoffList{}, nil
}

func (s *stubHandoffRepo) ListByAgent(ctx context.Context, agentID uuid.UUID, params pagination.Params) (*HandoffList, error) {
	if s.agentList != nil {
		return s.agentList, nil
	}
	return &HandoffList{}, nil
}

func (s *stubHandoffRepo) ListPendingOlderThan(ctx context.Context, cutoffHours int) ([]models.Handoff, error) {
	return nil, nil
}

type stubOutboxPublisher struct {
	events []outbox.DomainEvent
	err    error
}

func (s *stubOutboxPublisher) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

type stubAgentGate struct {
	eligible bool
	err      error
}

func (s *stubAgentGate) ClaimEligible(ctx context.Context, userID uuid.UUID) (bool, error) {
	return s.eligible, s.err
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newTestService(t *testing.T, repo Repository, pub *stubOutboxPublisher, gate *stubAgentGate) Service {
	t.Helper()
	svc, err := NewService(repo, stubTxRunner{}, pub, gate)
	if err != nil {
		t.Fatalf("service constructor failed: %v", err)
	}
	return svc
}

func TestClaimSuccess(t *testing.T) {
	handoffID := uuid.New()
	agentID := uuid.New()
	repo := &stubHandoffRepo{
		handoff:   &models.Handoff{ID: handoffID, Status: enums.HandoffStatusPending},
		claimRows: 1,
	}
	pub := &stubOutboxPublisher{}
	svc := newTestService(t, repo, pub, &stubAgentGate{eligible: true})

	handoff, err := svc.Claim(context.Background(), ClaimInput{HandoffID: handoffID, AgentID: agentID})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if handoff.Status != enums.HandoffStatusClaimed {
		t.Fatalf("unexpected status %s", handoff.Status)
	}
	if handoff.ClaimedBy == nil || *handoff.ClaimedBy != agentID {
		t.Fatalf("claimed_by not set")
	}
	if len(pub.events) != 1 || pub.events[0].EventType != enums.EventHandoffClaimed {
		t.Fatalf("expected claimed event, got %+v", pub.events)
	}
}

func TestClaimRaceLoser(t *testing.T) {
	handoffID := uuid.New()
	other := uuid.New()
	repo := &stubHandoffRepo{
		handoff: &models.Handoff{
			ID:        handoffID,
			Status:    enums.HandoffStatusClaimed,
			ClaimedBy: &other,
		},
		claimRows: 0,
	}
	pub := &stubOutboxPublisher{}
	svc := newTestService(t, repo, pub, &stubAgentGate{eligible: true})

	_, err := svc.Claim(context.Background(), ClaimInput{HandoffID: handoffID, AgentID: uuid.New()})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
	if len(pub.events) != 0 {
		t.Fatal("loser must not emit events")
	}
}

func TestClaimUnknownHandoff(t *testing.T) {
	repo := &stubHandoffRepo{claimRows: 0}
	svc := newTestService(t, repo, &stubOutboxPublisher{}, &stubAgentGate{eligible: true})

	_, err := svc.Claim(context.Background(), ClaimInput{HandoffID: uuid.New(), AgentID: uuid.New()})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestClaimRejectsUnapprovedAgent(t *testing.T) {
	repo := &stubHandoffRepo{
		handoff:   &models.Handoff{ID: uuid.New(), Status: enums.HandoffStatusPending},
		claimRows: 1,
	}
	svc := newTestService(t, repo, &stubOutboxPublisher{}, &stubAgentGate{eligible: false})

	_, err := svc.Claim(context.Background(), ClaimInput{HandoffID: repo.handoff.ID, AgentID: uuid.New()})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if repo.claimCalls != 0 {
		t.Fatal("ineligible agent must never reach the claim write")
	}
}

func TestMarkManufacturerFound(t *testing.T) {
	handoffID := uuid.New()
	agentID := uuid.New()
	repo := &stubHandoffRepo{
		handoff: &models.Handoff{
			ID:        handoffID,
			Status:    enums.HandoffStatusClaimed,
			ClaimedBy: &agentID,
		},
	}
	pub := &stubOutboxPublisher{}
	svc := newTestService(t, repo, pub, &stubAgentGate{eligible: true})

	handoff, err := svc.MarkManufacturerFound(context.Background(), ManufacturerFoundInput{
		HandoffID:           handoffID,
		ManufacturerName:    "Shenzhen Tooling Co",
		ManufacturerContact: "+86 755 1234",
		Actor:               Actor{UserID: agentID, Role: enums.SystemRoleAgent},
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if handoff.Status != enums.HandoffStatusManufacturerFound {
		t.Fatalf("unexpected status %s", handoff.Status)
	}
	if repo.updates["manufacturer_name"] != "Shenzhen Tooling Co" {
		t.Fatalf("unexpected updates %+v", repo.updates)
	}
	if len(pub.events) != 1 || pub.events[0].EventType != enums.EventManufacturerFound {
		t.Fatalf("expected manufacturer_found event")
	}
}

func TestMarkManufacturerFoundRequiresFields(t *testing.T) {
	svc := newTestService(t, &stubHandoffRepo{}, &stubOutboxPublisher{}, &stubAgentGate{})

	_, err := svc.MarkManufacturerFound(context.Background(), ManufacturerFoundInput{
		HandoffID:        uuid.New(),
		ManufacturerName: "  ",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestMarkManufacturerFoundWrongOwner(t *testing.T) {
	handoffID := uuid.New()
	owner := uuid.New()
	repo := &stubHandoffRepo{
		handoff: &models.Handoff{
			ID:        handoffID,
			Status:    enums.HandoffStatusClaimed,
			ClaimedBy: &owner,
		},
	}
	svc := newTestService(t, repo, &stubOutboxPublisher{}, &stubAgentGate{})

	_, err := svc.MarkManufacturerFound(context.Background(), ManufacturerFoundInput{
		HandoffID:           handoffID,
		ManufacturerName:    "Factory",
		ManufacturerContact: "contact",
		Actor:               Actor{UserID: uuid.New(), Role: enums.SystemRoleAgent},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestMarkPaidSettled(t *testing.T) {
	handoffID := uuid.New()
	agentID := uuid.New()
	repo := &stubHandoffRepo{
		handoff: &models.Handoff{
			ID:        handoffID,
			Status:    enums.HandoffStatusManufacturerFound,
			ClaimedBy: &agentID,
			Financials: &models.HandoffFinancials{
				TotalDueKobo:  1_500_000,
				TotalPaidKobo: 1_500_000,
				BalanceKobo:   0,
			},
		},
	}
	pub := &stubOutboxPublisher{}
	svc := newTestService(t, repo, pub, &stubAgentGate{})

	handoff, err := svc.MarkPaid(context.Background(), MarkPaidInput{
		HandoffID: handoffID,
		Actor:     Actor{UserID: agentID, Role: enums.SystemRoleAgent},
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if handoff.Status != enums.HandoffStatusPaid {
		t.Fatalf("unexpected status %s", handoff.Status)
	}
	if len(pub.events) != 1 || pub.events[0].EventType != enums.EventHandoffPaid {
		t.Fatalf("expected paid event")
	}
}

func TestMarkPaidBalanceOutstanding(t *testing.T) {
	handoffID := uuid.New()
	agentID := uuid.New()
	repo := &stubHandoffRepo{
		handoff: &models.Handoff{
			ID:        handoffID,
			Status:    enums.HandoffStatusManufacturerFound,
			ClaimedBy: &agentID,
			Financials: &models.HandoffFinancials{
				TotalDueKobo:  1_500_000,
				TotalPaidKobo: 500_000,
				BalanceKobo:   1_000_000,
			},
		},
	}
	svc := newTestService(t, repo, &stubOutboxPublisher{}, &stubAgentGate{})

	_, err := svc.MarkPaid(context.Background(), MarkPaidInput{
		HandoffID: handoffID,
		Actor:     Actor{UserID: agentID, Role: enums.SystemRoleAgent},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestMarkPaidAdminOverride(t *testing.T) {
	handoffID := uuid.New()
	agentID := uuid.New()
	repo := &stubHandoffRepo{
		handoff: &models.Handoff{
			ID:        handoffID,
			Status:    enums.HandoffStatusManufacturerFound,
			ClaimedBy: &agentID,
			Financials: &models.HandoffFinancials{
				TotalDueKobo:  1_500_000,
				TotalPaidKobo: 500_000,
				BalanceKobo:   1_000_000,
			},
		},
	}
	pub := &stubOutboxPublisher{}
	svc := newTestService(t, repo, pub, &stubAgentGate{})

	_, err := svc.MarkPaid(context.Background(), MarkPaidInput{
		HandoffID:     handoffID,
		AdminOverride: true,
		Actor:         Actor{UserID: uuid.New(), Role: enums.SystemRoleAdmin},
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	event, ok := pub.events[0].Data.(payloads.HandoffPaidEvent)
	if !ok {
		t.Fatalf("unexpected event payload %T", pub.events[0].Data)
	}
	if !event.AdminOverride {
		t.Fatal("expected admin_override flag on event")
	}
}

func TestMarkPaidOverrideRequiresAdmin(t *testing.T) {
	svc := newTestService(t, &stubHandoffRepo{}, &stubOutboxPublisher{}, &stubAgentGate{})

	_, err := svc.MarkPaid(context.Background(), MarkPaidInput{
		HandoffID:     uuid.New(),
		AdminOverride: true,
		Actor:         Actor{UserID: uuid.New(), Role: enums.SystemRoleAgent},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestMarkShippedValidation(t *testing.T) {
	svc := newTestService(t, &stubHandoffRepo{}, &stubOutboxPublisher{}, &stubAgentGate{})

	_, err := svc.MarkShipped(context.Background(), MarkShippedInput{
		HandoffID: uuid.New(),
		Shipper:   "DHL",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestMarkShippedFromPaid(t *testing.T) {
	handoffID := uuid.New()
	agentID := uuid.New()
	repo := &stubHandoffRepo{
		handoff: &models.Handoff{
			ID:        handoffID,
			Status:    enums.HandoffStatusPaid,
			ClaimedBy: &agentID,
		},
	}
	pub := &stubOutboxPublisher{}
	svc := newTestService(t, repo, pub, &stubAgentGate{})

	handoff, err := svc.MarkShipped(context.Background(), MarkShippedInput{
		HandoffID:   handoffID,
		Shipper:     "DHL",
		TrackingRef: "DHL-998877",
		Actor:       Actor{UserID: agentID, Role: enums.SystemRoleAgent},
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if handoff.Status != enums.HandoffStatusShipped {
		t.Fatalf("unexpected status %s", handoff.Status)
	}
	if len(pub.events) != 1 || pub.events[0].EventType != enums.EventHandoffShipped {
		t.Fatalf("expected shipped event")
	}
}

func TestMarkDeliveredOutOfOrder(t *testing.T) {
	handoffID := uuid.New()
	agentID := uuid.New()
	repo := &stubHandoffRepo{
		handoff: &models.Handoff{
			ID:        handoffID,
			Status:    enums.HandoffStatusClaimed,
			ClaimedBy: &agentID,
		},
	}
	svc := newTestService(t, repo, &stubOutboxPublisher{}, &stubAgentGate{})

	_, err := svc.MarkDelivered(context.Background(), MarkDeliveredInput{
		HandoffID: handoffID,
		Actor:     Actor{UserID: agentID, Role: enums.SystemRoleAgent},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestCancelRequiresReason(t *testing.T) {
	svc := newTestService(t, &stubHandoffRepo{}, &stubOutboxPublisher{}, &stubAgentGate{})

	_, err := svc.Cancel(context.Background(), CancelInput{HandoffID: uuid.New()})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCancelTerminal(t *testing.T) {
	handoffID := uuid.New()
	repo := &stubHandoffRepo{
		handoff: &models.Handoff{ID: handoffID, Status: enums.HandoffStatusCancelled},
	}
	svc := newTestService(t, repo, &stubOutboxPublisher{}, &stubAgentGate{})

	_, err := svc.Cancel(context.Background(), CancelInput{
		HandoffID: handoffID,
		Reason:    "customer withdrew",
		Actor:     Actor{UserID: uuid.New(), Role: enums.SystemRoleAdmin},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestCancelFromPending(t *testing.T) {
	handoffID := uuid.New()
	repo := &stubHandoffRepo{
		handoff: &models.Handoff{ID: handoffID, Status: enums.HandoffStatusPending},
	}
	pub := &stubOutboxPublisher{}
	svc := newTestService(t, repo, pub, &stubAgentGate{})

	handoff, err := svc.Cancel(context.Background(), CancelInput{
		HandoffID: handoffID,
		Reason:    "duplicate request",
		Actor:     Actor{UserID: uuid.New(), Role: enums.SystemRoleAdmin},
	})
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	if handoff.Status != enums.HandoffStatusCancelled {
		t.Fatalf("unexpected status %s", handoff.Status)
	}
	if handoff.CancelReason == nil || *handoff.CancelReason != "duplicate request" {
		t.Fatalf("reason not recorded")
	}
	if len(pub.events) != 1 || pub.events[0].EventType != enums.EventHandoffCancelled {
		t.Fatalf("expected cancelled event")
	}
}

func TestActionsEndpointShape(t *testing.T) {
	handoffID := uuid.New()
	repo := &stubHandoffRepo{
		handoff: &models.Handoff{
			ID:     handoffID,
			Status: enums.HandoffStatusManufacturerFound,
			Financials: &models.HandoffFinancials{
				TotalDueKobo:  100,
				TotalPaidKobo: 100,
				BalanceKobo:   0,
			},
		},
	}
	svc := newTestService(t, repo, &stubOutboxPublisher{}, &stubAgentGate{})

	list, err := svc.Actions(context.Background(), handoffID)
	if err != nil {
		t.Fatalf("expected success got %v", err)
	}
	want := []enums.HandoffAction{enums.ActionRecordPayment, enums.ActionMarkPaid, enums.ActionCancel}
	if !actionsEqual(list.Actions, want) {
		t.Fatalf("expected %v, got %v", want, list.Actions)
	}
}
