package notifications

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	pkgerrors "github.com/linescout/linescout-backend/pkg/errors"
	"github.com/linescout/linescout-backend/pkg/pagination"
)

// Service exposes the inbox operations used by the HTTP surface.
type Service interface {
	List(ctx context.Context, recipientID uuid.UUID, params pagination.Params, filters ListFilters) (*NotificationList, error)
	MarkRead(ctx context.Context, recipientID, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error)
}

type service struct {
	repo Repository
}

// NewService wires the inbox service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, recipientID uuid.UUID, params pagination.Params, filters ListFilters) (*NotificationList, error) {
	if recipientID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "recipient identity missing")
	}
	list, err := s.repo.ListByRecipient(ctx, recipientID, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notifications")
	}
	return list, nil
}

// MarkRead is scoped to the recipient; a zero row count means the entry does
// not exist, belongs to someone else, or was already read.
func (s *service) MarkRead(ctx context.Context, recipientID, notificationID uuid.UUID) error {
	if recipientID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "recipient identity missing")
	}
	if notificationID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "notification id required")
	}
	rows, err := s.repo.MarkRead(ctx, recipientID, notificationID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark notification read")
	}
	if rows == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found or already read")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	if recipientID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeUnauthorized, "recipient identity missing")
	}
	rows, err := s.repo.MarkAllRead(ctx, recipientID)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark all notifications read")
	}
	return rows, nil
}
