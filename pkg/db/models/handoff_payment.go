package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/linescout/linescout-backend/pkg/enums"
)

// HandoffPayment records a single immutable payment against a handoff ledger.
type HandoffPayment struct {
	ID         uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	HandoffID  uuid.UUID            `gorm:"column:handoff_id;type:uuid;not null;index"`
	AmountKobo int64                `gorm:"column:amount_kobo;not null"`
	Currency   enums.Currency       `gorm:"column:currency;type:text;not null;default:'NGN'"`
	Purpose    enums.PaymentPurpose `gorm:"column:purpose;type:payment_purpose;not null"`
	Note       *string              `gorm:"column:note"`
	RecordedBy *uuid.UUID           `gorm:"column:recorded_by;type:uuid"`
	PaidAt     time.Time            `gorm:"column:paid_at;not null"`
	CreatedAt  time.Time            `gorm:"column:created_at;autoCreateTime"`
}
