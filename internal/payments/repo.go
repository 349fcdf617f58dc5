package payments

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/linescout/linescout-backend/pkg/db/models"
)

// Repository manages persistence for payment tokens.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, token *models.PaymentToken) (*models.PaymentToken, error)
	FindByPaystackRef(ctx context.Context, paystackRef string) (*models.PaymentToken, error)
	FindByToken(ctx context.Context, token string) (*models.PaymentToken, error)
	MarkConsumed(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a payment token repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, token *models.PaymentToken) (*models.PaymentToken, error) {
	if err := r.db.WithContext(ctx).Create(token).Error; err != nil {
		return nil, err
	}
	return token, nil
}

func (r *repository) FindByPaystackRef(ctx context.Context, paystackRef string) (*models.PaymentToken, error) {
	var token models.PaymentToken
	if err := r.db.WithContext(ctx).Where("paystack_ref = ?", paystackRef).First(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *repository) FindByToken(ctx context.Context, value string) (*models.PaymentToken, error) {
	var token models.PaymentToken
	if err := r.db.WithContext(ctx).Where("token = ?", value).First(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *repository) MarkConsumed(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.PaymentToken{}).
		Where("id = ?", id).
		Update("consumed", true).Error
}
