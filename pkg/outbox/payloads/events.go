package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/linescout/linescout-backend/pkg/enums"
)

// HandoffCreatedEvent signals a new handoff entered the agent queue.
type HandoffCreatedEvent struct {
	HandoffID    uuid.UUID         `json:"handoff_id"`
	Token        string            `json:"token"`
	Type         enums.HandoffType `json:"type"`
	Mode         enums.HandoffMode `json:"mode"`
	CustomerName string            `json:"customer_name"`
}

// HandoffClaimedEvent is emitted when an agent wins the claim.
type HandoffClaimedEvent struct {
	HandoffID uuid.UUID `json:"handoff_id"`
	AgentID   uuid.UUID `json:"agent_id"`
	ClaimedAt time.Time `json:"claimed_at"`
}

// ManufacturerFoundEvent records the sourcing milestone.
type ManufacturerFoundEvent struct {
	HandoffID        uuid.UUID `json:"handoff_id"`
	AgentID          uuid.UUID `json:"agent_id"`
	ManufacturerName string    `json:"manufacturer_name"`
}

// HandoffPaidEvent is emitted when the handoff moves to paid.
type HandoffPaidEvent struct {
	HandoffID     uuid.UUID `json:"handoff_id"`
	TotalPaidKobo int64     `json:"total_paid_kobo"`
	BalanceKobo   int64     `json:"balance_kobo"`
	PaidAt        time.Time `json:"paid_at"`
	AdminOverride bool      `json:"admin_override,omitempty"`
}

// PaymentRecordedEvent captures a single ledger entry append.
type PaymentRecordedEvent struct {
	HandoffID  uuid.UUID            `json:"handoff_id"`
	PaymentID  uuid.UUID            `json:"payment_id"`
	AmountKobo int64                `json:"amount_kobo"`
	Purpose    enums.PaymentPurpose `json:"purpose"`
	PaidAt     time.Time            `json:"paid_at"`
}

// HandoffShippedEvent carries the shipping details.
type HandoffShippedEvent struct {
	HandoffID   uuid.UUID `json:"handoff_id"`
	Shipper     string    `json:"shipper"`
	TrackingRef string    `json:"tracking_ref"`
	ShippedAt   time.Time `json:"shipped_at"`
}

// HandoffDeliveredEvent marks terminal success.
type HandoffDeliveredEvent struct {
	HandoffID   uuid.UUID `json:"handoff_id"`
	DeliveredAt time.Time `json:"delivered_at"`
}

// HandoffCancelledEvent marks terminal cancellation.
type HandoffCancelledEvent struct {
	HandoffID   uuid.UUID `json:"handoff_id"`
	Reason      string    `json:"reason"`
	CancelledAt time.Time `json:"cancelled_at"`
}

// ReorderCreatedEvent is emitted when a repeat purchase spawns a new handoff.
type ReorderCreatedEvent struct {
	ReorderID       uuid.UUID           `json:"reorder_id"`
	SourceHandoffID uuid.UUID           `json:"source_handoff_id"`
	NewHandoffID    uuid.UUID           `json:"new_handoff_id"`
	Status          enums.ReorderStatus `json:"status"`
	AssignedAgentID *uuid.UUID          `json:"assigned_agent_id,omitempty"`
}

// ReorderAssignedEvent is emitted when an admin routes a pending reorder.
type ReorderAssignedEvent struct {
	ReorderID  uuid.UUID `json:"reorder_id"`
	AgentID    uuid.UUID `json:"agent_id"`
	AssignedAt time.Time `json:"assigned_at"`
}

// AgentApprovedEvent is emitted when an agent clears the readiness gate.
type AgentApprovedEvent struct {
	AgentID    uuid.UUID `json:"agent_id"`
	ApprovedAt time.Time `json:"approved_at"`
}

// NotificationRequestedEvent tells the notify worker to deliver push/email.
type NotificationRequestedEvent struct {
	Type        enums.NotificationType `json:"type"`
	RecipientID *uuid.UUID             `json:"recipient_id,omitempty"`
	HandoffID   *uuid.UUID             `json:"handoff_id,omitempty"`
	ReorderID   *uuid.UUID             `json:"reorder_id,omitempty"`
	Title       string                 `json:"title"`
	Body        string                 `json:"body"`
}
