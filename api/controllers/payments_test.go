package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/linescout/linescout-backend/internal/payments"
	"github.com/linescout/linescout-backend/pkg/db/models"
	"github.com/linescout/linescout-backend/pkg/enums"
)

type testPaymentsService struct {
	verifyFn func(ctx context.Context, input payments.VerifyInput) (*payments.VerifyResult, error)
}

func (s *testPaymentsService) Verify(ctx context.Context, input payments.VerifyInput) (*payments.VerifyResult, error) {
	if s.verifyFn != nil {
		return s.verifyFn(ctx, input)
	}
	return &payments.VerifyResult{}, nil
}

func TestPaymentVerifySuccess(t *testing.T) {
	userID := uuid.New()
	handoffID := uuid.New()
	svc := &testPaymentsService{
		verifyFn: func(ctx context.Context, input payments.VerifyInput) (*payments.VerifyResult, error) {
			if input.UserID != userID {
				t.Fatalf("unexpected user %s", input.UserID)
			}
			if input.Reference != "ps_ref_123" {
				t.Fatalf("unexpected reference %s", input.Reference)
			}
			return &payments.VerifyResult{
				Token:     &models.PaymentToken{PaystackRef: input.Reference},
				HandoffID: &handoffID,
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/verify", strings.NewReader(`{"reference":"ps_ref_123"}`))
	req = authenticate(req, userID, enums.SystemRoleCustomer)
	resp := httptest.NewRecorder()
	PaymentVerify(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestPaymentVerifyReplayReturnsOK(t *testing.T) {
	userID := uuid.New()
	svc := &testPaymentsService{
		verifyFn: func(ctx context.Context, input payments.VerifyInput) (*payments.VerifyResult, error) {
			return &payments.VerifyResult{
				Token:            &models.PaymentToken{PaystackRef: input.Reference},
				AlreadyProcessed: true,
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/verify", strings.NewReader(`{"reference":"ps_ref_123"}`))
	req = authenticate(req, userID, enums.SystemRoleCustomer)
	resp := httptest.NewRecorder()
	PaymentVerify(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestPaymentVerifyRequiresReference(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/verify", strings.NewReader(`{}`))
	req = authenticate(req, uuid.New(), enums.SystemRoleCustomer)
	resp := httptest.NewRecorder()
	PaymentVerify(&testPaymentsService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestPaymentVerifyRejectsUnknownPurpose(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/payments/verify", strings.NewReader(`{"reference":"ps_ref_123","purpose":"tip"}`))
	req = authenticate(req, uuid.New(), enums.SystemRoleCustomer)
	resp := httptest.NewRecorder()
	PaymentVerify(&testPaymentsService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
