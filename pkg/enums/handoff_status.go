package enums

import "fmt"

// HandoffStatus tracks the operational lifecycle of a sourcing handoff.
type HandoffStatus string

const (
	HandoffStatusPending           HandoffStatus = "pending"
	HandoffStatusClaimed           HandoffStatus = "claimed"
	HandoffStatusManufacturerFound HandoffStatus = "manufacturer_found"
	HandoffStatusPaid              HandoffStatus = "paid"
	HandoffStatusShipped           HandoffStatus = "shipped"
	HandoffStatusDelivered         HandoffStatus = "delivered"
	HandoffStatusCancelled         HandoffStatus = "cancelled"
)

var validHandoffStatuses = []HandoffStatus{
	HandoffStatusPending,
	HandoffStatusClaimed,
	HandoffStatusManufacturerFound,
	HandoffStatusPaid,
	HandoffStatusShipped,
	HandoffStatusDelivered,
	HandoffStatusCancelled,
}

// String implements fmt.Stringer.
func (h HandoffStatus) String() string {
	return string(h)
}

// IsValid reports whether the value is a known HandoffStatus.
func (h HandoffStatus) IsValid() bool {
	for _, candidate := range validHandoffStatuses {
		if candidate == h {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are accepted.
func (h HandoffStatus) IsTerminal() bool {
	return h == HandoffStatusCancelled
}

// ParseHandoffStatus converts raw input into a HandoffStatus.
func ParseHandoffStatus(value string) (HandoffStatus, error) {
	for _, candidate := range validHandoffStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid handoff status %q", value)
}
