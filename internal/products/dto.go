package product

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agromart/agromart-backend/pkg/db/models"
	"github.com/agromart/agromart-backend/pkg/enums"
)

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Name             string
	Description      *string
	Unit             string
	Price            decimal.Decimal
	StockQuantity    int
	MinOrderQuantity int
	MaxOrderQuantity *int
	Status           enums.ProductStatus
	ShopID           *uuid.UUID
}

// ProductDTO is the API shape of a product.
type ProductDTO struct {
	ID               uuid.UUID           `json:"id"`
	SellerID         uuid.UUID           `json:"sellerId"`
	ShopID           *uuid.UUID          `json:"shopId,omitempty"`
	Name             string              `json:"name"`
	Description      *string             `json:"description,omitempty"`
	Unit             string              `json:"unit"`
	Price            decimal.Decimal     `json:"price"`
	StockQuantity    int                 `json:"stockQuantity"`
	MinOrderQuantity int                 `json:"minOrderQuantity"`
	MaxOrderQuantity *int                `json:"maxOrderQuantity,omitempty"`
	Status           enums.ProductStatus `json:"status"`
	CreatedAt        time.Time           `json:"createdAt"`
	UpdatedAt        time.Time           `json:"updatedAt"`
}

func toDTO(p models.Product) ProductDTO {
	return ProductDTO{
		ID:               p.ID,
		SellerID:         p.SellerID,
		ShopID:           p.ShopID,
		Name:             p.Name,
		Description:      p.Description,
		Unit:             p.Unit,
		Price:            p.Price,
		StockQuantity:    p.StockQuantity,
		MinOrderQuantity: p.MinOrderQuantity,
		MaxOrderQuantity: p.MaxOrderQuantity,
		Status:           p.Status,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}
