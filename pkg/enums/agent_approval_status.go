package enums

import "fmt"

// AgentApprovalStatus gates which internal agents may claim handoffs.
type AgentApprovalStatus string

const (
	AgentApprovalPending  AgentApprovalStatus = "pending"
	AgentApprovalApproved AgentApprovalStatus = "approved"
	AgentApprovalBlocked  AgentApprovalStatus = "blocked"
)

var validAgentApprovalStatuses = []AgentApprovalStatus{
	AgentApprovalPending,
	AgentApprovalApproved,
	AgentApprovalBlocked,
}

// String implements fmt.Stringer.
func (a AgentApprovalStatus) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AgentApprovalStatus.
func (a AgentApprovalStatus) IsValid() bool {
	for _, candidate := range validAgentApprovalStatuses {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAgentApprovalStatus converts raw input into an AgentApprovalStatus.
func ParseAgentApprovalStatus(value string) (AgentApprovalStatus, error) {
	for _, candidate := range validAgentApprovalStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid agent approval status %q", value)
}
