package types

import (
	"fmt"

	"github.com/agromart/agromart-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// NotificationData is the structured payload attached to a notification.
// Exactly one variant may be set and it must match the notification type.
type NotificationData struct {
	OrderPlaced  *OrderPlacedData  `json:"orderPlaced,omitempty"`
	OrderStatus  *OrderStatusData  `json:"orderStatus,omitempty"`
	NewProduct   *NewProductData   `json:"newProduct,omitempty"`
	LowStock     *LowStockData     `json:"lowStock,omitempty"`
	Welcome      *WelcomeData      `json:"welcome,omitempty"`
	Announcement *AnnouncementData `json:"announcement,omitempty"`
}

type OrderPlacedData struct {
	OrderID     uuid.UUID       `json:"orderId"`
	OrderNumber string          `json:"orderNumber"`
	Total       decimal.Decimal `json:"total"`
	ItemCount   int             `json:"itemCount"`
}

type OrderStatusData struct {
	OrderID     uuid.UUID         `json:"orderId"`
	OrderNumber string            `json:"orderNumber"`
	Status      enums.OrderStatus `json:"status"`
}

type NewProductData struct {
	ProductID   uuid.UUID       `json:"productId"`
	ProductName string          `json:"productName"`
	SellerID    uuid.UUID       `json:"sellerId"`
	Price       decimal.Decimal `json:"price"`
}

type LowStockData struct {
	ProductID     uuid.UUID `json:"productId"`
	ProductName   string    `json:"productName"`
	StockQuantity int       `json:"stockQuantity"`
	Threshold     int       `json:"threshold"`
}

type WelcomeData struct {
	Role enums.Role `json:"role"`
}

type AnnouncementData struct {
	Link string `json:"link,omitempty"`
}

// Variant returns the notification type implied by the populated variant.
func (d *NotificationData) Variant() (enums.NotificationType, int) {
	if d == nil {
		return "", 0
	}
	var (
		kind  enums.NotificationType
		count int
	)
	mark := func(set bool, t enums.NotificationType) {
		if set {
			kind = t
			count++
		}
	}
	mark(d.OrderPlaced != nil, enums.NotificationTypeOrderPlaced)
	mark(d.OrderStatus != nil, enums.NotificationTypeOrderStatus)
	mark(d.NewProduct != nil, enums.NotificationTypeNewProduct)
	mark(d.LowStock != nil, enums.NotificationTypeLowStock)
	mark(d.Welcome != nil, enums.NotificationTypeWelcome)
	mark(d.Announcement != nil, enums.NotificationTypeSystemAnnouncement)
	return kind, count
}

// Validate checks the payload against the notification type. A nil payload
// or one with no variant set is always accepted.
func (d *NotificationData) Validate(t enums.NotificationType) error {
	kind, count := d.Variant()
	switch {
	case count == 0:
		return nil
	case count > 1:
		return fmt.Errorf("notification data must carry a single variant, got %d", count)
	case kind != t:
		return fmt.Errorf("notification data variant %q does not match type %q", kind, t)
	}
	return nil
}

// Normalize drops an empty payload so it persists as NULL.
func (d *NotificationData) Normalize() *NotificationData {
	if _, count := d.Variant(); count == 0 {
		return nil
	}
	return d
}
