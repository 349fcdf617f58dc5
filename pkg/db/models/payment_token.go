package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/linescout/linescout-backend/pkg/enums"
)

// PaymentToken anchors a verified Paystack reference to the artifacts it
// produced. The unique reference makes verification idempotent.
type PaymentToken struct {
	ID          uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Token       string               `gorm:"column:token;type:text;not null;uniqueIndex"`
	UserID      uuid.UUID            `gorm:"column:user_id;type:uuid;not null;index"`
	Purpose     enums.PaymentPurpose `gorm:"column:purpose;type:payment_purpose;not null"`
	PaystackRef string               `gorm:"column:paystack_ref;not null;uniqueIndex:payment_tokens_paystack_ref_key"`
	AmountKobo  int64                `gorm:"column:amount_kobo;not null"`
	Currency    enums.Currency       `gorm:"column:currency;type:text;not null;default:'NGN'"`
	HandoffID   *uuid.UUID           `gorm:"column:handoff_id;type:uuid"`
	Consumed    bool                 `gorm:"column:consumed;not null;default:false"`
	CreatedAt   time.Time            `gorm:"column:created_at;autoCreateTime"`
}
