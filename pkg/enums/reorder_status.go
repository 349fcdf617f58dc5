package enums

import "fmt"

// ReorderStatus tracks the assignment lifecycle of a reorder request.
type ReorderStatus string

const (
	ReorderStatusPendingAdmin ReorderStatus = "pending_admin"
	ReorderStatusAssigned     ReorderStatus = "assigned"
	ReorderStatusInProgress   ReorderStatus = "in_progress"
	ReorderStatusClosed       ReorderStatus = "closed"
)

var validReorderStatuses = []ReorderStatus{
	ReorderStatusPendingAdmin,
	ReorderStatusAssigned,
	ReorderStatusInProgress,
	ReorderStatusClosed,
}

// String implements fmt.Stringer.
func (r ReorderStatus) String() string {
	return string(r)
}

// IsValid reports whether the value is a known ReorderStatus.
func (r ReorderStatus) IsValid() bool {
	for _, candidate := range validReorderStatuses {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseReorderStatus converts raw input into a ReorderStatus.
func ParseReorderStatus(value string) (ReorderStatus, error) {
	for _, candidate := range validReorderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid reorder status %q", value)
}
