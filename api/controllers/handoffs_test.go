package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/linescout/linescout-backend/api/middleware"
	"github.com/linescout/linescout-backend/internal/handoffs"
	"github.com/linescout/linescout-backend/pkg/db/models"
	"github.com/linescout/linescout-backend/pkg/enums"
	"github.com/linescout/linescout-backend/pkg/logger"
	"github.com/linescout/linescout-backend/pkg/pagination"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func addRouteParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func authenticate(req *http.Request, userID uuid.UUID, role enums.SystemRole) *http.Request {
	ctx := middleware.WithUserID(req.Context(), userID.String())
	ctx = middleware.WithRole(ctx, string(role))
	return req.WithContext(ctx)
}

type testHandoffsService struct {
	claimFn   func(ctx context.Context, input handoffs.ClaimInput) (*models.Handoff, error)
	cancelFn  func(ctx context.Context, input handoffs.CancelInput) (*models.Handoff, error)
	shipFn    func(ctx context.Context, input handoffs.MarkShippedInput) (*models.Handoff, error)
	queueFn   func(ctx context.Context, params pagination.Params) (*handoffs.HandoffList, error)
	actionsFn func(ctx context.Context, handoffID uuid.UUID) (*handoffs.ActionList, error)
}

func (s *testHandoffsService) Claim(ctx context.Context, input handoffs.ClaimInput) (*models.Handoff, error) {
	if s.claimFn != nil {
		return s.claimFn(ctx, input)
	}
	return &models.Handoff{}, nil
}

func (s *testHandoffsService) MarkManufacturerFound(ctx context.Context, input handoffs.ManufacturerFoundInput) (*models.Handoff, error) {
	return &models.Handoff{}, nil
}

func (s *testHandoffsService) MarkPaid(ctx context.Context, input handoffs.MarkPaidInput) (*models.Handoff, error) {
	return &models.Handoff{}, nil
}

func (s *testHandoffsService) MarkShipped(ctx context.Context, input handoffs.MarkShippedInput) (*models.Handoff, error) {
	if s.shipFn != nil {
		return s.shipFn(ctx, input)
	}
	return &models.Handoff{}, nil
}

func (s *testHandoffsService) MarkDelivered(ctx context.Context, input handoffs.MarkDeliveredInput) (*models.Handoff, error) {
	return &models.Handoff{}, nil
}

func (s *testHandoffsService) Cancel(ctx context.Context, input handoffs.CancelInput) (*models.Handoff, error) {
	if s.cancelFn != nil {
		return s.cancelFn(ctx, input)
	}
	return &models.Handoff{}, nil
}

func (s *testHandoffsService) Actions(ctx context.Context, handoffID uuid.UUID) (*handoffs.ActionList, error) {
	if s.actionsFn != nil {
		return s.actionsFn(ctx, handoffID)
	}
	return &handoffs.ActionList{}, nil
}

func (s *testHandoffsService) Get(ctx context.Context, handoffID uuid.UUID) (*models.Handoff, error) {
	return &models.Handoff{ID: handoffID}, nil
}

func (s *testHandoffsService) Queue(ctx context.Context, params pagination.Params) (*handoffs.HandoffList, error) {
	if s.queueFn != nil {
		return s.queueFn(ctx, params)
	}
	return &handoffs.HandoffList{}, nil
}

func (s *testHandoffsService) ListForAgent(ctx context.Context, agentUserID uuid.UUID, params pagination.Params) (*handoffs.HandoffList, error) {
	return &handoffs.HandoffList{}, nil
}

func TestHandoffClaimSuccess(t *testing.T) {
	agentID := uuid.New()
	handoffID := uuid.New()
	called := false
	svc := &testHandoffsService{
		claimFn: func(ctx context.Context, input handoffs.ClaimInput) (*models.Handoff, error) {
			called = true
			if input.HandoffID != handoffID {
				t.Fatalf("unexpected handoff %s", input.HandoffID)
			}
			if input.AgentID != agentID {
				t.Fatalf("unexpected agent %s", input.AgentID)
			}
			return &models.Handoff{ID: handoffID, Status: enums.HandoffStatusClaimed}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/agent/handoffs/"+handoffID.String()+"/claim", nil)
	req = authenticate(req, agentID, enums.SystemRoleAgent)
	req = addRouteParam(req, "handoffID", handoffID.String())

	resp := httptest.NewRecorder()
	HandoffClaim(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if !called {
		t.Fatal("expected service called")
	}
}

func TestHandoffClaimRequiresIdentity(t *testing.T) {
	handoffID := uuid.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/agent/handoffs/"+handoffID.String()+"/claim", nil)
	req = addRouteParam(req, "handoffID", handoffID.String())

	resp := httptest.NewRecorder()
	HandoffClaim(&testHandoffsService{}, testLogger())(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestHandoffClaimInvalidID(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/agent/handoffs/bad/claim", nil)
	req = authenticate(req, uuid.New(), enums.SystemRoleAgent)
	req = addRouteParam(req, "handoffID", "bad")

	resp := httptest.NewRecorder()
	HandoffClaim(&testHandoffsService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestHandoffCancelRequiresReason(t *testing.T) {
	handoffID := uuid.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/agent/handoffs/"+handoffID.String()+"/cancel", strings.NewReader(`{}`))
	req = authenticate(req, uuid.New(), enums.SystemRoleAgent)
	req = addRouteParam(req, "handoffID", handoffID.String())

	resp := httptest.NewRecorder()
	HandoffCancel(&testHandoffsService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestHandoffShipPassesBody(t *testing.T) {
	handoffID := uuid.New()
	agentID := uuid.New()
	svc := &testHandoffsService{
		shipFn: func(ctx context.Context, input handoffs.MarkShippedInput) (*models.Handoff, error) {
			if input.Shipper != "DHL" || input.TrackingRef != "TRK-99" {
				t.Fatalf("unexpected shipping details %+v", input)
			}
			if input.Actor.Role != enums.SystemRoleAgent {
				t.Fatalf("unexpected actor role %s", input.Actor.Role)
			}
			return &models.Handoff{ID: handoffID, Status: enums.HandoffStatusShipped}, nil
		},
	}

	body := `{"shipper":"DHL","tracking_ref":"TRK-99"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/agent/handoffs/"+handoffID.String()+"/ship", strings.NewReader(body))
	req = authenticate(req, agentID, enums.SystemRoleAgent)
	req = addRouteParam(req, "handoffID", handoffID.String())

	resp := httptest.NewRecorder()
	HandoffShip(svc, testLogger())(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
}

func TestHandoffQueueRejectsBadLimit(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/agent/handoffs/queue?limit=-2", nil)
	resp := httptest.NewRecorder()
	HandoffQueue(&testHandoffsService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestHandoffActionsReturnsList(t *testing.T) {
	handoffID := uuid.New()
	svc := &testHandoffsService{
		actionsFn: func(ctx context.Context, id uuid.UUID) (*handoffs.ActionList, error) {
			return &handoffs.ActionList{
				HandoffID: id,
				Status:    enums.HandoffStatusClaimed,
				Actions:   []enums.HandoffAction{enums.ActionManufacturerFound, enums.ActionCancel},
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/agent/handoffs/"+handoffID.String()+"/actions", nil)
	req = addRouteParam(req, "handoffID", handoffID.String())

	resp := httptest.NewRecorder()
	HandoffActions(svc, testLogger())(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	var envelope struct {
		Data handoffs.ActionList `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(envelope.Data.Actions) != 2 {
		t.Fatalf("expected 2 actions got %d", len(envelope.Data.Actions))
	}
}
