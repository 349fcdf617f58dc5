package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/linescout/linescout-backend/pkg/db/models"
	"github.com/linescout/linescout-backend/pkg/pagination"
)

// NotificationList is a cursor-paginated page of inbox entries.
type NotificationList struct {
	Notifications []models.Notification `json:"notifications"`
	NextCursor    string                `json:"next_cursor,omitempty"`
}

// ListFilters narrows an inbox listing.
type ListFilters struct {
	UnreadOnly bool
}

// Repository manages persistence for notifications.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, notification *models.Notification) (*models.Notification, error)
	CreateBatch(ctx context.Context, notifications []models.Notification) error
	ListByRecipient(ctx context.Context, recipientID uuid.UUID, params pagination.Params, filters ListFilters) (*NotificationList, error)
	MarkRead(ctx context.Context, recipientID, notificationID uuid.UUID) (int64, error)
	MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error)
	DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a notification repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, notification *models.Notification) (*models.Notification, error) {
	if err := r.db.WithContext(ctx).Create(notification).Error; err != nil {
		return nil, err
	}
	return notification, nil
}

func (r *repository) CreateBatch(ctx context.Context, notifications []models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&notifications).Error
}

func (r *repository) ListByRecipient(ctx context.Context, recipientID uuid.UUID, params pagination.Params, filters ListFilters) (*NotificationList, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ?", recipientID)
	if filters.UnreadOnly {
		query = query.Where("read_at IS NULL")
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var notifications []models.Notification
	err = query.
		Order("created_at DESC, id DESC").
		Limit(limit + 1).
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}

	list := &NotificationList{Notifications: notifications}
	if len(notifications) > limit {
		list.Notifications = notifications[:limit]
		last := list.Notifications[limit-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return list, nil
}

func (r *repository) MarkRead(ctx context.Context, recipientID, notificationID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ? AND read_at IS NULL", notificationID, recipientID).
		Update("read_at", time.Now())
	return result.RowsAffected, result.Error
}

func (r *repository) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ? AND read_at IS NULL", recipientID).
		Update("read_at", time.Now())
	return result.RowsAffected, result.Error
}

func (r *repository) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("read_at IS NOT NULL AND created_at < ?", cutoff).
		Delete(&models.Notification{})
	return result.RowsAffected, result.Error
}
