package conversations

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/linescout/linescout-backend/pkg/db/models"
)

// Repository manages persistence for conversations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, conversation *models.Conversation) (*models.Conversation, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a conversation repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, conversation *models.Conversation) (*models.Conversation, error) {
	if err := r.db.WithContext(ctx).Create(conversation).Error; err != nil {
		return nil, err
	}
	return conversation, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	var conversation models.Conversation
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&conversation).Error; err != nil {
		return nil, err
	}
	return &conversation, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Conversation{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error) {
	var conversations []models.Conversation
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&conversations).Error
	if err != nil {
		return nil, err
	}
	return conversations, nil
}
