package enums

import "fmt"

// NotificationType maps to the notification_type enum in Postgres.
type NotificationType string

const (
	NotificationTypeOrderPlaced        NotificationType = "order_placed"
	NotificationTypeOrderStatus        NotificationType = "order_status"
	NotificationTypeNewProduct         NotificationType = "new_product"
	NotificationTypeLowStock           NotificationType = "low_stock"
	NotificationTypeWelcome            NotificationType = "welcome"
	NotificationTypeSystemAnnouncement NotificationType = "system_announcement"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeOrderPlaced,
	NotificationTypeOrderStatus,
	NotificationTypeNewProduct,
	NotificationTypeLowStock,
	NotificationTypeWelcome,
	NotificationTypeSystemAnnouncement,
}

// NotificationTypes returns every known type in declaration order.
func NotificationTypes() []NotificationType {
	out := make([]NotificationType, len(validNotificationTypes))
	copy(out, validNotificationTypes)
	return out
}

// String implements fmt.Stringer.
func (n NotificationType) String() string {
	return string(n)
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

// NotificationFilter narrows a notification listing.
type NotificationFilter string

const (
	NotificationFilterAll    NotificationFilter = "all"
	NotificationFilterUnread NotificationFilter = "unread"
)

// ParseNotificationFilter accepts "all", "unread" or a notification type.
// Empty input resolves to "all".
func ParseNotificationFilter(value string) (NotificationFilter, error) {
	switch value {
	case "", string(NotificationFilterAll):
		return NotificationFilterAll, nil
	case string(NotificationFilterUnread):
		return NotificationFilterUnread, nil
	}
	if _, err := ParseNotificationType(value); err != nil {
		return "", fmt.Errorf("invalid notification filter %q", value)
	}
	return NotificationFilter(value), nil
}

// Type returns the notification type carried by the filter, if any.
func (f NotificationFilter) Type() (NotificationType, bool) {
	t := NotificationType(f)
	if t.IsValid() {
		return t, true
	}
	return "", false
}
