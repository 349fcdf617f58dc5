package handoffs

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/linescout/linescout-backend/pkg/db/models"
	"github.com/linescout/linescout-backend/pkg/enums"
	"github.com/linescout/linescout-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a handoff repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, handoff *models.Handoff) (*models.Handoff, error) {
	if err := r.db.WithContext(ctx).Create(handoff).Error; err != nil {
		return nil, err
	}
	return handoff, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Handoff, error) {
	var handoff models.Handoff
	err := r.db.WithContext(ctx).
		Preload("Financials").
		Where("id = ?", id).
		First(&handoff).Error
	if err != nil {
		return nil, err
	}
	return &handoff, nil
}

func (r *repository) FindByToken(ctx context.Context, token string) (*models.Handoff, error) {
	var handoff models.Handoff
	err := r.db.WithContext(ctx).
		Preload("Financials").
		Where("token = ?", token).
		First(&handoff).Error
	if err != nil {
		return nil, err
	}
	return &handoff, nil
}

func (r *repository) FindFinancials(ctx context.Context, handoffID uuid.UUID) (*models.HandoffFinancials, error) {
	var fin models.HandoffFinancials
	err := r.db.WithContext(ctx).
		Where("handoff_id = ?", handoffID).
		First(&fin).Error
	if err != nil {
		return nil, err
	}
	return &fin, nil
}

// ClaimPending performs the conditional claim write. Zero rows affected means
// the handoff was already claimed, moved on, or does not exist; the caller
// disambiguates.
func (r *repository) ClaimPending(ctx context.Context, handoffID, agentID uuid.UUID) (int64, error) {
	now := time.Now()
	res := r.db.WithContext(ctx).
		Model(&models.Handoff{}).
		Where("id = ? AND status = ? AND claimed_by IS NULL", handoffID, enums.HandoffStatusPending).
		Updates(map[string]any{
			"status":     enums.HandoffStatusClaimed,
			"claimed_by": agentID,
			"claimed_at": now,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *repository) Update(ctx context.Context, handoffID uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.Handoff{}).
		Where("id = ?", handoffID).
		Updates(updates).Error
}

func (r *repository) ListPendingUnclaimed(ctx context.Context, params pagination.Params) (*HandoffList, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Handoff{}).
		Where("status = ? AND claimed_by IS NULL", enums.HandoffStatusPending)
	return r.paginate(query, params)
}

func (r *repository) ListByAgent(ctx context.Context, agentID uuid.UUID, params pagination.Params) (*HandoffList, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Handoff{}).
		Preload("Financials").
		Where("claimed_by = ?", agentID)
	return r.paginate(query, params)
}

func (r *repository) ListPendingOlderThan(ctx context.Context, cutoffHours int) ([]models.Handoff, error) {
	cutoff := time.Now().Add(-time.Duration(cutoffHours) * time.Hour)
	var handoffs []models.Handoff
	err := r.db.WithContext(ctx).
		Where("status = ? AND claimed_by IS NULL AND created_at < ?", enums.HandoffStatusPending, cutoff).
		Order("created_at ASC").
		Find(&handoffs).Error
	if err != nil {
		return nil, err
	}
	return handoffs, nil
}

func (r *repository) paginate(query *gorm.DB, params pagination.Params) (*HandoffList, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at, id) < (?, ?)",
			cursor.CreatedAt, cursor.ID,
		)
	}

	var handoffs []models.Handoff
	err = query.
		Order("created_at DESC, id DESC").
		Limit(limit + 1).
		Find(&handoffs).Error
	if err != nil {
		return nil, err
	}

	list := &HandoffList{Handoffs: handoffs}
	if len(handoffs) > limit {
		list.Handoffs = handoffs[:limit]
		last := list.Handoffs[limit-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return list, nil
}
