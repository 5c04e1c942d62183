package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/agromart/agromart-backend/pkg/enums"
)

// Order is a customer checkout of their cart.
type Order struct {
	ID                uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber       string            `gorm:"column:order_number;not null;uniqueIndex"`
	CustomerID        uuid.UUID         `gorm:"column:customer_id;type:uuid;not null"`
	ShippingAddressID *uuid.UUID        `gorm:"column:shipping_address_id;type:uuid"`
	Status            enums.OrderStatus `gorm:"column:status;type:order_status;not null;default:'pending'"`
	Total             decimal.Decimal   `gorm:"column:total;type:numeric(12,2);not null"`
	Items             []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	ensureID(&o.ID)
	return nil
}
