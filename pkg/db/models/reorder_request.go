package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/linescout/linescout-backend/pkg/enums"
)

// ReorderRequest links a delivered handoff to the fresh conversation and
// handoff spawned by a repeat purchase.
type ReorderRequest struct {
	ID                   uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID               uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	SourceConversationID *uuid.UUID          `gorm:"column:source_conversation_id;type:uuid"`
	SourceHandoffID      uuid.UUID           `gorm:"column:source_handoff_id;type:uuid;not null"`
	NewConversationID    uuid.UUID           `gorm:"column:new_conversation_id;type:uuid;not null"`
	NewHandoffID         uuid.UUID           `gorm:"column:new_handoff_id;type:uuid;not null"`
	RouteType            string              `gorm:"column:route_type;not null;default:'reorder'"`
	Status               enums.ReorderStatus `gorm:"column:status;type:reorder_status;not null;default:'pending_admin'"`
	OriginalAgentID      *uuid.UUID          `gorm:"column:original_agent_id;type:uuid"`
	AssignedAgentID      *uuid.UUID          `gorm:"column:assigned_agent_id;type:uuid"`
	UserNote             *string             `gorm:"column:user_note"`
	AdminNote            *string             `gorm:"column:admin_note"`
	PaystackRef          string              `gorm:"column:paystack_ref;not null;uniqueIndex:reorder_requests_paystack_ref_key"`
	AmountKobo           int64               `gorm:"column:amount_kobo;not null"`
	CreatedAt            time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
