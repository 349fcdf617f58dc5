package handoffs

import (
	"github.com/linescout/linescout-backend/pkg/db/models"
	"github.com/linescout/linescout-backend/pkg/enums"
)

// actionsByStatus is the authoritative transition table. Both the HTTP
// actions endpoint and every mutating guard read from this map; the UI must
// never offer an action the server would refuse.
var actionsByStatus = map[enums.HandoffStatus][]enums.HandoffAction{
	enums.HandoffStatusPending: {
		enums.ActionClaim,
		enums.ActionCancel,
	},
	enums.HandoffStatusClaimed: {
		enums.ActionManufacturerFound,
		enums.ActionCancel,
	},
	enums.HandoffStatusManufacturerFound: {
		enums.ActionRecordPayment,
		enums.ActionMarkPaid,
		enums.ActionCancel,
	},
	enums.HandoffStatusPaid: {
		enums.ActionRecordPayment,
		enums.ActionMarkShipped,
		enums.ActionCancel,
	},
	enums.HandoffStatusShipped: {
		enums.ActionRecordPayment,
		enums.ActionMarkDelivered,
		enums.ActionCancel,
	},
	enums.HandoffStatusDelivered: {
		enums.ActionRecordPayment,
		enums.ActionCancel,
	},
	enums.HandoffStatusCancelled: nil,
}

// StatusAllows reports whether the action is valid in the given status,
// ignoring payment-settlement guards.
func StatusAllows(status enums.HandoffStatus, action enums.HandoffAction) bool {
	for _, candidate := range actionsByStatus[status] {
		if candidate == action {
			return true
		}
	}
	return false
}

// Settled reports whether the ledger shows a reference due amount that has
// been fully covered.
func Settled(fin *models.HandoffFinancials) bool {
	return fin != nil && fin.TotalDueKobo > 0 && fin.BalanceKobo <= 0
}

// AllowedNextActions returns the ordered action list for the handoff's
// current state. mark_paid is only offered once the balance is settled;
// the admin override path bypasses this at the service layer, not here.
func AllowedNextActions(h *models.Handoff, fin *models.HandoffFinancials) []enums.HandoffAction {
	if h == nil {
		return nil
	}
	candidates := actionsByStatus[h.Status]
	actions := make([]enums.HandoffAction, 0, len(candidates))
	for _, action := range candidates {
		if action == enums.ActionMarkPaid && !Settled(fin) {
			continue
		}
		actions = append(actions, action)
	}
	return actions
}
