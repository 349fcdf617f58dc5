package quotes

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/linescout/linescout-backend/pkg/db/models"
)

// Repository manages persistence for quotes.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, quote *models.Quote) (*models.Quote, error)
	LatestForHandoff(ctx context.Context, handoffID uuid.UUID) (*models.Quote, error)
	ListByHandoff(ctx context.Context, handoffID uuid.UUID) ([]models.Quote, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a quote repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, quote *models.Quote) (*models.Quote, error) {
	if err := r.db.WithContext(ctx).Create(quote).Error; err != nil {
		return nil, err
	}
	return quote, nil
}

func (r *repository) LatestForHandoff(ctx context.Context, handoffID uuid.UUID) (*models.Quote, error) {
	var quote models.Quote
	err := r.db.WithContext(ctx).
		Where("handoff_id = ?", handoffID).
		Order("created_at DESC").
		First(&quote).Error
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *repository) ListByHandoff(ctx context.Context, handoffID uuid.UUID) ([]models.Quote, error) {
	var quotes []models.Quote
	err := r.db.WithContext(ctx).
		Where("handoff_id = ?", handoffID).
		Order("created_at DESC").
		Find(&quotes).Error
	if err != nil {
		return nil, err
	}
	return quotes, nil
}
