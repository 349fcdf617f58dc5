package ledger

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/linescout/linescout-backend/pkg/db/models"
)

// Repository manages persistence for payment entries and the cached summary.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreatePayment(ctx context.Context, payment *models.HandoffPayment) error
	ListPayments(ctx context.Context, handoffID uuid.UUID) ([]models.HandoffPayment, error)
	FindFinancials(ctx context.Context, handoffID uuid.UUID) (*models.HandoffFinancials, error)
	FindFinancialsForUpdate(ctx context.Context, handoffID uuid.UUID) (*models.HandoffFinancials, error)
	CreateFinancials(ctx context.Context, fin *models.HandoffFinancials) error
	UpdateFinancials(ctx context.Context, handoffID uuid.UUID, updates map[string]any) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreatePayment(ctx context.Context, payment *models.HandoffPayment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *repository) ListPayments(ctx context.Context, handoffID uuid.UUID) ([]models.HandoffPayment, error) {
	var payments []models.HandoffPayment
	if err := r.db.WithContext(ctx).
		Where("handoff_id = ?", handoffID).
		Order("paid_at ASC, created_at ASC").
		Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *repository) FindFinancials(ctx context.Context, handoffID uuid.UUID) (*models.HandoffFinancials, error) {
	var fin models.HandoffFinancials
	if err := r.db.WithContext(ctx).
		Where("handoff_id = ?", handoffID).
		First(&fin).Error; err != nil {
		return nil, err
	}
	return &fin, nil
}

// FindFinancialsForUpdate takes a row lock so concurrent payments against the
// same handoff serialize on the summary row.
func (r *repository) FindFinancialsForUpdate(ctx context.Context, handoffID uuid.UUID) (*models.HandoffFinancials, error) {
	var fin models.HandoffFinancials
	if err := r.db.WithContext(ctx).
		Clauses(forUpdateClause()).
		Where("handoff_id = ?", handoffID).
		First(&fin).Error; err != nil {
		return nil, err
	}
	return &fin, nil
}

func forUpdateClause() clause.Expression {
	return clause.Locking{Strength: "UPDATE"}
}

func (r *repository) CreateFinancials(ctx context.Context, fin *models.HandoffFinancials) error {
	return r.db.WithContext(ctx).Create(fin).Error
}

func (r *repository) UpdateFinancials(ctx context.Context, handoffID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.HandoffFinancials{}).
		Where("handoff_id = ?", handoffID).
		Updates(updates).Error
}
