package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateHandoff      OutboxAggregateType = "handoff"
	AggregateReorder      OutboxAggregateType = "reorder_request"
	AggregateAgent        OutboxAggregateType = "agent_profile"
	AggregateNotification OutboxAggregateType = "notification"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateHandoff,
	AggregateReorder,
	AggregateAgent,
	AggregateNotification,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventHandoffCreated       OutboxEventType = "handoff_created"
	EventHandoffClaimed       OutboxEventType = "handoff_claimed"
	EventManufacturerFound    OutboxEventType = "manufacturer_found"
	EventHandoffPaid          OutboxEventType = "handoff_paid"
	EventHandoffShipped       OutboxEventType = "handoff_shipped"
	EventHandoffDelivered     OutboxEventType = "handoff_delivered"
	EventHandoffCancelled     OutboxEventType = "handoff_cancelled"
	EventPaymentRecorded      OutboxEventType = "payment_recorded"
	EventReorderCreated       OutboxEventType = "reorder_created"
	EventReorderAssigned      OutboxEventType = "reorder_assigned"
	EventAgentApproved        OutboxEventType = "agent_approved"
	EventNotificationRequested OutboxEventType = "notification_requested"
)

var validOutboxEventTypes = []OutboxEventType{
	EventHandoffCreated,
	EventHandoffClaimed,
	EventManufacturerFound,
	EventHandoffPaid,
	EventHandoffShipped,
	EventHandoffDelivered,
	EventHandoffCancelled,
	EventPaymentRecorded,
	EventReorderCreated,
	EventReorderAssigned,
	EventAgentApproved,
	EventNotificationRequested,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
