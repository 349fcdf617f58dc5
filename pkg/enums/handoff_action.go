package enums

import "fmt"

// HandoffAction names the operations an agent or admin may take on a handoff.
type HandoffAction string

const (
	ActionClaim              HandoffAction = "claim"
	ActionManufacturerFound  HandoffAction = "manufacturer_found"
	ActionRecordPayment      HandoffAction = "record_payment"
	ActionMarkPaid           HandoffAction = "mark_paid"
	ActionMarkShipped        HandoffAction = "mark_shipped"
	ActionMarkDelivered      HandoffAction = "mark_delivered"
	ActionCancel             HandoffAction = "cancel"
)

var validHandoffActions = []HandoffAction{
	ActionClaim,
	ActionManufacturerFound,
	ActionRecordPayment,
	ActionMarkPaid,
	ActionMarkShipped,
	ActionMarkDelivered,
	ActionCancel,
}

// String implements fmt.Stringer.
func (a HandoffAction) String() string {
	return string(a)
}

// IsValid reports whether the value is a known HandoffAction.
func (a HandoffAction) IsValid() bool {
	for _, candidate := range validHandoffActions {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseHandoffAction converts raw input into a HandoffAction.
func ParseHandoffAction(value string) (HandoffAction, error) {
	for _, candidate := range validHandoffActions {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid handoff action %q", value)
}
