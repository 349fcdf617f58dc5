package reorders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/linescout/linescout-backend/pkg/db/models"
	"github.com/linescout/linescout-backend/pkg/enums"
	"github.com/linescout/linescout-backend/pkg/pagination"
)

// ReorderList is a cursor-paginated page of reorder requests.
type ReorderList struct {
	Reorders   []models.ReorderRequest `json:"reorders"`
	NextCursor string                  `json:"next_cursor,omitempty"`
}

// ListFilters narrows the admin reorder queue.
type ListFilters struct {
	Status *enums.ReorderStatus
}

// Repository manages persistence for reorder requests.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, reorder *models.ReorderRequest) (*models.ReorderRequest, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.ReorderRequest, error)
	FindByPaystackRef(ctx context.Context, paystackRef string) (*models.ReorderRequest, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*ReorderList, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.ReorderRequest, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a reorder repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, reorder *models.ReorderRequest) (*models.ReorderRequest, error) {
	if err := r.db.WithContext(ctx).Create(reorder).Error; err != nil {
		return nil, err
	}
	return reorder, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ReorderRequest, error) {
	var reorder models.ReorderRequest
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&reorder).Error; err != nil {
		return nil, err
	}
	return &reorder, nil
}

func (r *repository) FindByPaystackRef(ctx context.Context, paystackRef string) (*models.ReorderRequest, error) {
	var reorder models.ReorderRequest
	if err := r.db.WithContext(ctx).Where("paystack_ref = ?", paystackRef).First(&reorder).Error; err != nil {
		return nil, err
	}
	return &reorder, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return r.db.WithContext(ctx).
		Model(&models.ReorderRequest{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) List(ctx context.Context, params pagination.Params, filters ListFilters) (*ReorderList, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	query := r.db.WithContext(ctx).Model(&models.ReorderRequest{})
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var reorders []models.ReorderRequest
	err = query.
		Order("created_at DESC, id DESC").
		Limit(limit + 1).
		Find(&reorders).Error
	if err != nil {
		return nil, err
	}

	list := &ReorderList{Reorders: reorders}
	if len(reorders) > limit {
		list.Reorders = reorders[:limit]
		last := list.Reorders[limit-1]
		list.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return list, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.ReorderRequest, error) {
	var reorders []models.ReorderRequest
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&reorders).Error
	if err != nil {
		return nil, err
	}
	return reorders, nil
}
