package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agromart/agromart-backend/pkg/checkout"
	"github.com/agromart/agromart-backend/pkg/db/models"
	"github.com/agromart/agromart-backend/pkg/enums"
)

// AddInput is the add-to-cart request.
type AddInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// ProductSummary is the product snapshot shown next to a cart line.
type ProductSummary struct {
	ID               uuid.UUID           `json:"id"`
	Name             string              `json:"name"`
	Unit             string              `json:"unit"`
	Price            decimal.Decimal     `json:"price"`
	StockQuantity    int                 `json:"stockQuantity"`
	MinOrderQuantity int                 `json:"minOrderQuantity"`
	MaxOrderQuantity *int                `json:"maxOrderQuantity,omitempty"`
	Status           enums.ProductStatus `json:"status"`
}

// CartItemDTO is one cart line as returned to clients.
type CartItemDTO struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"productId"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"lineTotal"`
	// Purchasable is false when the product changed since the line was
	// written and checkout would reject it.
	Purchasable bool            `json:"purchasable"`
	Product     *ProductSummary `json:"product,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// CartDTO is the full cart of a user.
type CartDTO struct {
	Items     []CartItemDTO   `json:"items"`
	ItemCount int             `json:"itemCount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

func toItemDTO(item models.CartItem) CartItemDTO {
	dto := CartItemDTO{
		ID:        item.ID,
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
		LineTotal: decimal.Zero,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
	if p := item.Product; p != nil {
		dto.Product = &ProductSummary{
			ID:               p.ID,
			Name:             p.Name,
			Unit:             p.Unit,
			Price:            p.Price,
			StockQuantity:    p.StockQuantity,
			MinOrderQuantity: p.MinOrderQuantity,
			MaxOrderQuantity: p.MaxOrderQuantity,
			Status:           p.Status,
		}
		dto.LineTotal = p.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
		dto.Purchasable = p.Status == enums.ProductStatusActive &&
			checkout.CheckQuantity(quantityInput(p, item.Quantity)) == nil
	}
	return dto
}

func toCartDTO(items []models.CartItem) *CartDTO {
	out := &CartDTO{Items: make([]CartItemDTO, 0, len(items)), Subtotal: decimal.Zero}
	for _, item := range items {
		dto := toItemDTO(item)
		out.Items = append(out.Items, dto)
		out.ItemCount += dto.Quantity
		out.Subtotal = out.Subtotal.Add(dto.LineTotal)
	}
	return out
}

func quantityInput(p *models.Product, quantity int) checkout.QuantityInput {
	return checkout.QuantityInput{
		ProductID:   p.ID,
		ProductName: p.Name,
		Quantity:    quantity,
		Min:         p.MinOrderQuantity,
		Max:         p.MaxOrderQuantity,
		Stock:       p.StockQuantity,
	}
}
