package handoffs

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/linescout/linescout-backend/pkg/db/models"
	"github.com/linescout/linescout-backend/pkg/pagination"
)

// Repository defines persistence operations for handoff rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, handoff *models.Handoff) (*models.Handoff, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Handoff, error)
	FindByToken(ctx context.Context, token string) (*models.Handoff, error)
	FindFinancials(ctx context.Context, handoffID uuid.UUID) (*models.HandoffFinancials, error)
	ClaimPending(ctx context.Context, handoffID, agentID uuid.UUID) (int64, error)
	Update(ctx context.Context, handoffID uuid.UUID, updates map[string]any) error
	ListPendingUnclaimed(ctx context.Context, params pagination.Params) (*HandoffList, error)
	ListByAgent(ctx context.Context, agentID uuid.UUID, params pagination.Params) (*HandoffList, error)
	ListPendingOlderThan(ctx context.Context, cutoffHours int) ([]models.Handoff, error)
}
