package enums

import "fmt"

// NotificationType maps to the notification_type enum in Postgres.
type NotificationType string

const (
	NotificationTypeHandoffAvailable   NotificationType = "handoff_available"
	NotificationTypeHandoffPaid        NotificationType = "handoff_paid"
	NotificationTypeHandoffStale       NotificationType = "handoff_stale"
	NotificationTypeReorderPendingAdmin NotificationType = "reorder_pending_admin"
	NotificationTypeReorderAssigned    NotificationType = "reorder_assigned"
	NotificationTypeSystemAnnouncement NotificationType = "system_announcement"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeHandoffAvailable,
	NotificationTypeHandoffPaid,
	NotificationTypeHandoffStale,
	NotificationTypeReorderPendingAdmin,
	NotificationTypeReorderAssigned,
	NotificationTypeSystemAnnouncement,
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
