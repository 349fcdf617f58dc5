package agents

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/linescout/linescout-backend/pkg/db/models"
	"github.com/linescout/linescout-backend/pkg/enums"
	"github.com/linescout/linescout-backend/pkg/pagination"
)

// Repository manages persistence for agent profiles.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, profile *models.AgentProfile) (*models.AgentProfile, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.AgentProfile, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*models.AgentProfile, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	ListEligible(ctx context.Context) ([]models.AgentProfile, error)
	List(ctx context.Context, params pagination.Params) (*AgentList, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an agent repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, profile *models.AgentProfile) (*models.AgentProfile, error) {
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		return nil, err
	}
	return profile, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.AgentProfile, error) {
	var profile models.AgentProfile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *repository) FindByUserID(ctx context.Context, userID uuid.UUID) (*models.AgentProfile, error) {
	var profile models.AgentProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.AgentProfile{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// ListEligible returns approved, active agents. Used by the notification
// fan-out and reorder auto-assignment.
func (r *repository) ListEligible(ctx context.Context) ([]models.AgentProfile, error) {
	var profiles []models.AgentProfile
	err := r.db.WithContext(ctx).
		Where("approval_status = ? AND is_active = ?", enums.AgentApprovalApproved, true).
		Order("created_at ASC").
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}
	return profiles, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params) (*AgentList, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).Model(&models.AgentProfile{})
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var profiles []models.AgentProfile
	err = query.
		Order("created_at DESC, id DESC").
		Limit(limit + 1).
		Find(&profiles).Error
	if err != nil {
		return nil, err
	}

	list := &AgentList{Agents: profiles}
	if len(profiles) > limit {
		list.Agents = profiles[:limit]
		last := list.Agents[limit-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return list, nil
}
