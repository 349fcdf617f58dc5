package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/linescout/linescout-backend/pkg/enums"
)

// HandoffFinancials caches the payment aggregate for a handoff. The row is
// recomputable from the immutable payment entries.
type HandoffFinancials struct {
	ID            uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	HandoffID     uuid.UUID      `gorm:"column:handoff_id;type:uuid;not null;uniqueIndex"`
	Currency      enums.Currency `gorm:"column:currency;type:text;not null;default:'NGN'"`
	TotalDueKobo  int64          `gorm:"column:total_due_kobo;not null;default:0"`
	TotalPaidKobo int64          `gorm:"column:total_paid_kobo;not null;default:0"`
	BalanceKobo   int64          `gorm:"column:balance_kobo;not null;default:0"`
	CreatedAt     time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
