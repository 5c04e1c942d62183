package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/agromart/agromart-backend/pkg/enums"
)

// NotificationPreference holds per-type in-app toggles for a user.
type NotificationPreference struct {
	UserID      uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey"`
	OrderPlaced bool      `gorm:"column:order_placed;not null"`
	OrderStatus bool      `gorm:"column:order_status;not null"`
	NewProduct  bool      `gorm:"column:new_product;not null"`
	LowStock    bool      `gorm:"column:low_stock;not null"`
	Welcome     bool      `gorm:"column:welcome;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// DefaultNotificationPreference is what a user without a stored row gets.
func DefaultNotificationPreference(userID uuid.UUID) NotificationPreference {
	return NotificationPreference{
		UserID:      userID,
		OrderPlaced: true,
		OrderStatus: true,
		NewProduct:  true,
		LowStock:    true,
		Welcome:     true,
	}
}

// Allows reports whether notifications of type t should be delivered.
// System announcements cannot be muted.
func (p NotificationPreference) Allows(t enums.NotificationType) bool {
	switch t {
	case enums.NotificationTypeOrderPlaced:
		return p.OrderPlaced
	case enums.NotificationTypeOrderStatus:
		return p.OrderStatus
	case enums.NotificationTypeNewProduct:
		return p.NewProduct
	case enums.NotificationTypeLowStock:
		return p.LowStock
	case enums.NotificationTypeWelcome:
		return p.Welcome
	default:
		return true
	}
}
