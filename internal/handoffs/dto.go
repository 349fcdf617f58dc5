package handoffs

import (
	"github.com/google/uuid"

	"github.com/linescout/linescout-backend/pkg/db/models"
	"github.com/linescout/linescout-backend/pkg/enums"
)

// Actor identifies who is performing a mutation.
type Actor struct {
	UserID uuid.UUID
	Role   enums.SystemRole
}

// ClaimInput carries the claim request.
type ClaimInput struct {
	HandoffID uuid.UUID
	AgentID   uuid.UUID
}

// ManufacturerFoundInput carries the sourcing milestone details.
type ManufacturerFoundInput struct {
	HandoffID           uuid.UUID
	ManufacturerName    string
	ManufacturerAddress *string
	ManufacturerContact string
	Actor               Actor
}

// MarkPaidInput moves a settled handoff to paid. AdminOverride lets an admin
// force the transition with a balance still outstanding.
type MarkPaidInput struct {
	HandoffID     uuid.UUID
	AdminOverride bool
	Actor         Actor
}

// MarkShippedInput carries the shipping details.
type MarkShippedInput struct {
	HandoffID   uuid.UUID
	Shipper     string
	TrackingRef string
	Actor       Actor
}

// MarkDeliveredInput closes out the shipping leg.
type MarkDeliveredInput struct {
	HandoffID uuid.UUID
	Actor     Actor
}

// CancelInput terminates a handoff with a required reason.
type CancelInput struct {
	HandoffID uuid.UUID
	Reason    string
	Actor     Actor
}

// HandoffList is a cursor-paginated page of handoffs.
type HandoffList struct {
	Handoffs   []models.Handoff `json:"handoffs"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

// ActionList is the server-computed set of valid next actions for a handoff.
type ActionList struct {
	HandoffID uuid.UUID             `json:"handoff_id"`
	Status    enums.HandoffStatus   `json:"status"`
	Actions   []enums.HandoffAction `json:"actions"`
}
