package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Review rates exactly one of a product, shop or rider for an order.
type Review struct {
	ID         uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CustomerID uuid.UUID  `gorm:"column:customer_id;type:uuid;not null"`
	OrderID    uuid.UUID  `gorm:"column:order_id;type:uuid;not null"`
	ProductID  *uuid.UUID `gorm:"column:product_id;type:uuid"`
	ShopID     *uuid.UUID `gorm:"column:shop_id;type:uuid"`
	RiderID    *uuid.UUID `gorm:"column:rider_id;type:uuid"`
	Rating     int        `gorm:"column:rating;not null"`
	Comment    *string    `gorm:"column:comment"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

var (
	ErrReviewTarget = errors.New("review must reference exactly one of product, shop or rider")
	ErrReviewRating = errors.New("review rating must be between 1 and 5")
)

// Validate enforces the single-target and rating range rules.
func (r *Review) Validate() error {
	targets := 0
	for _, id := range []*uuid.UUID{r.ProductID, r.ShopID, r.RiderID} {
		if id != nil {
			targets++
		}
	}
	if targets != 1 {
		return ErrReviewTarget
	}
	if r.Rating < 1 || r.Rating > 5 {
		return ErrReviewRating
	}
	return nil
}

func (r *Review) BeforeCreate(*gorm.DB) error {
	ensureID(&r.ID)
	return r.Validate()
}
