package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/linescout/linescout-backend/pkg/enums"
)

// Quote captures the price an agent put in front of a customer for a handoff.
type Quote struct {
	ID             uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	HandoffID      uuid.UUID            `gorm:"column:handoff_id;type:uuid;not null;index"`
	Token          string               `gorm:"column:token;type:text;not null;uniqueIndex"`
	Status         string               `gorm:"column:status;not null;default:'open'"`
	PaymentPurpose enums.PaymentPurpose `gorm:"column:payment_purpose;type:payment_purpose;not null"`
	AgentNote      *string              `gorm:"column:agent_note"`
	TotalDueKobo   int64                `gorm:"column:total_due_kobo;not null"`
	Currency       enums.Currency       `gorm:"column:currency;type:text;not null;default:'NGN'"`
	CreatedBy      uuid.UUID            `gorm:"column:created_by;type:uuid;not null"`
	CreatedAt      time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
