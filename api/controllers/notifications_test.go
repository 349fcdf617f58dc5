package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/linescout/linescout-backend/internal/notifications"
	"github.com/linescout/linescout-backend/pkg/enums"
	"github.com/linescout/linescout-backend/pkg/pagination"
)

type testNotificationsService struct {
	listFn        func(ctx context.Context, recipientID uuid.UUID, params pagination.Params, filters notifications.ListFilters) (*notifications.NotificationList, error)
	markReadFn    func(ctx context.Context, recipientID, notificationID uuid.UUID) error
	markAllReadFn func(ctx context.Context, recipientID uuid.UUID) (int64, error)
}

func (s *testNotificationsService) List(ctx context.Context, recipientID uuid.UUID, params pagination.Params, filters notifications.ListFilters) (*notifications.NotificationList, error) {
	if s.listFn != nil {
		return s.listFn(ctx, recipientID, params, filters)
	}
	return &notifications.NotificationList{}, nil
}

func (s *testNotificationsService) MarkRead(ctx context.Context, recipientID, notificationID uuid.UUID) error {
	if s.markReadFn != nil {
		return s.markReadFn(ctx, recipientID, notificationID)
	}
	return nil
}

func (s *testNotificationsService) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	if s.markAllReadFn != nil {
		return s.markAllReadFn(ctx, recipientID)
	}
	return 0, nil
}

func TestMarkNotificationReadSuccess(t *testing.T) {
	recipientID := uuid.New()
	notificationID := uuid.New()
	called := false
	svc := &testNotificationsService{
		markReadFn: func(ctx context.Context, rid, nid uuid.UUID) error {
			called = true
			if rid != recipientID {
				t.Fatalf("unexpected recipient %s", rid)
			}
			if nid != notificationID {
				t.Fatalf("unexpected notification %s", nid)
			}
			return nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/"+notificationID.String()+"/read", nil)
	req = authenticate(req, recipientID, enums.SystemRoleAgent)
	req = addRouteParam(req, "notificationID", notificationID.String())

	resp := httptest.NewRecorder()
	MarkNotificationRead(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if !called {
		t.Fatal("expected service called")
	}
}

func TestMarkNotificationReadRequiresIdentity(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/"+uuid.NewString()+"/read", nil)
	req = addRouteParam(req, "notificationID", uuid.NewString())
	resp := httptest.NewRecorder()
	MarkNotificationRead(&testNotificationsService{}, testLogger())(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestMarkNotificationReadInvalidID(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/invalid/read", nil)
	req = authenticate(req, uuid.New(), enums.SystemRoleAgent)
	req = addRouteParam(req, "notificationID", "invalid")
	resp := httptest.NewRecorder()
	MarkNotificationRead(&testNotificationsService{}, testLogger())(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestMarkAllNotificationsReadSuccess(t *testing.T) {
	recipientID := uuid.New()
	svc := &testNotificationsService{
		markAllReadFn: func(ctx context.Context, rid uuid.UUID) (int64, error) {
			if rid != recipientID {
				t.Fatalf("unexpected recipient %s", rid)
			}
			return 5, nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/notifications/read-all", nil)
	req = authenticate(req, recipientID, enums.SystemRoleAgent)
	resp := httptest.NewRecorder()
	MarkAllNotificationsRead(svc, testLogger())(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	var envelope struct {
		Data map[string]float64 `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data["updated"] != 5 {
		t.Fatalf("expected updated=5 got %v", envelope.Data["updated"])
	}
}

func TestListNotificationsPassesUnreadFilter(t *testing.T) {
	recipientID := uuid.New()
	svc := &testNotificationsService{
		listFn: func(ctx context.Context, rid uuid.UUID, params pagination.Params, filters notifications.ListFilters) (*notifications.NotificationList, error) {
			if !filters.UnreadOnly {
				t.Fatal("expected unread filter set")
			}
			if params.Limit != 10 {
				t.Fatalf("expected limit 10 got %d", params.Limit)
			}
			return &notifications.NotificationList{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/notifications?limit=10&unreadOnly=true", nil)
	req = authenticate(req, recipientID, enums.SystemRoleAgent)
	resp := httptest.NewRecorder()
	ListNotifications(svc, testLogger())(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
}
