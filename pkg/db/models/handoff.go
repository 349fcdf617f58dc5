package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/linescout/linescout-backend/pkg/enums"
)

// Handoff represents a sourcing request handed from the product to a human agent.
type Handoff struct {
	ID                  uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Token               string              `gorm:"column:token;type:text;not null;uniqueIndex"`
	Type                enums.HandoffType   `gorm:"column:type;type:handoff_type;not null;default:'sourcing'"`
	Mode                enums.HandoffMode   `gorm:"column:mode;type:handoff_mode;not null;default:'paid_human'"`
	Status              enums.HandoffStatus `gorm:"column:status;type:handoff_status;not null;default:'pending'"`
	CustomerName        string              `gorm:"column:customer_name;not null"`
	CustomerEmail       string              `gorm:"column:customer_email;not null"`
	CustomerWhatsapp    *string             `gorm:"column:customer_whatsapp"`
	Context             *string             `gorm:"column:context"`
	ManufacturerName    *string             `gorm:"column:manufacturer_name"`
	ManufacturerAddress *string             `gorm:"column:manufacturer_address"`
	ManufacturerContact *string             `gorm:"column:manufacturer_contact"`
	ClaimedBy           *uuid.UUID          `gorm:"column:claimed_by;type:uuid"`
	ClaimedAt           *time.Time          `gorm:"column:claimed_at"`
	ManufacturerFoundAt *time.Time          `gorm:"column:manufacturer_found_at"`
	PaidAt              *time.Time          `gorm:"column:paid_at"`
	ShippedAt           *time.Time          `gorm:"column:shipped_at"`
	Shipper             *string             `gorm:"column:shipper"`
	TrackingRef         *string             `gorm:"column:tracking_ref"`
	DeliveredAt         *time.Time          `gorm:"column:delivered_at"`
	CancelledAt         *time.Time          `gorm:"column:cancelled_at"`
	CancelReason        *string             `gorm:"column:cancel_reason"`
	ConversationID      *uuid.UUID          `gorm:"column:conversation_id;type:uuid"`
	Financials          *HandoffFinancials  `gorm:"foreignKey:HandoffID;constraint:OnDelete:CASCADE"`
	Payments            []HandoffPayment    `gorm:"foreignKey:HandoffID;constraint:OnDelete:CASCADE"`
	CreatedAt           time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
