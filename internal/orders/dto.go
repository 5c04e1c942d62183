package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agromart/agromart-backend/pkg/db/models"
	"github.com/agromart/agromart-backend/pkg/enums"
	"github.com/agromart/agromart-backend/pkg/pagination"
)

// CheckoutInput selects where the order ships. Without an address the
// customer's default address is used when one exists.
type CheckoutInput struct {
	ShippingAddressID *uuid.UUID
}

type OrderItemDTO struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"productId"`
	SellerID    uuid.UUID       `json:"sellerId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type OrderDTO struct {
	ID                uuid.UUID         `json:"id"`
	OrderNumber       string            `json:"orderNumber"`
	CustomerID        uuid.UUID         `json:"customerId"`
	ShippingAddressID *uuid.UUID        `json:"shippingAddressId,omitempty"`
	Status            enums.OrderStatus `json:"status"`
	Total             decimal.Decimal   `json:"total"`
	Items             []OrderItemDTO    `json:"items"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

type ListResult struct {
	Orders     []OrderDTO      `json:"orders"`
	Pagination pagination.Page `json:"pagination"`
}

func toDTO(o models.Order) OrderDTO {
	items := make([]OrderItemDTO, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemDTO{
			ID:          item.ID,
			ProductID:   item.ProductID,
			SellerID:    item.SellerID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.Subtotal,
		})
	}
	return OrderDTO{
		ID:                o.ID,
		OrderNumber:       o.OrderNumber,
		CustomerID:        o.CustomerID,
		ShippingAddressID: o.ShippingAddressID,
		Status:            o.Status,
		Total:             o.Total,
		Items:             items,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
}
