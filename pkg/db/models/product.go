package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/agromart/agromart-backend/pkg/enums"
)

// Product represents a seller listing.
type Product struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SellerID         uuid.UUID           `gorm:"column:seller_id;type:uuid;not null"`
	ShopID           *uuid.UUID          `gorm:"column:shop_id;type:uuid"`
	Name             string              `gorm:"column:name;not null"`
	Description      *string             `gorm:"column:description"`
	Unit             string              `gorm:"column:unit;not null;default:'kg'"`
	Price            decimal.Decimal     `gorm:"column:price;type:numeric(12,2);not null"`
	StockQuantity    int                 `gorm:"column:stock_quantity;not null;default:0"`
	MinOrderQuantity int                 `gorm:"column:min_order_quantity;not null;default:1"`
	MaxOrderQuantity *int                `gorm:"column:max_order_quantity"`
	Status           enums.ProductStatus `gorm:"column:status;type:product_status;not null;default:'active'"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (p *Product) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

// UpperBound is the configured maximum, or current stock when none is set.
func (p *Product) UpperBound() int {
	if p.MaxOrderQuantity != nil {
		return *p.MaxOrderQuantity
	}
	return p.StockQuantity
}
