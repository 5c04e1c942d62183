package dbtest

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/agromart/agromart-backend/pkg/db/models"
	"github.com/agromart/agromart-backend/pkg/enums"
)

// CreateUser inserts an active user with the given role.
func CreateUser(t testing.TB, conn *gorm.DB, role enums.Role) *models.User {
	t.Helper()
	user := &models.User{
		Email:        fmt.Sprintf("agro_%s@example.com", uuid.NewString()),
		PasswordHash: "hash",
		Name:         "Test " + role.String(),
		Role:         role,
		IsActive:     true,
	}
	if err := conn.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

// ProductOption tweaks a product fixture before insert.
type ProductOption func(*models.Product)

func WithStock(stock int) ProductOption {
	return func(p *models.Product) { p.StockQuantity = stock }
}

func WithBounds(min int, max *int) ProductOption {
	return func(p *models.Product) {
		p.MinOrderQuantity = min
		p.MaxOrderQuantity = max
	}
}

func WithStatus(status enums.ProductStatus) ProductOption {
	return func(p *models.Product) { p.Status = status }
}

func WithPrice(price string) ProductOption {
	return func(p *models.Product) { p.Price = decimal.RequireFromString(price) }
}

// CreateProduct inserts an active product owned by sellerID.
func CreateProduct(t testing.TB, conn *gorm.DB, sellerID uuid.UUID, opts ...ProductOption) *models.Product {
	t.Helper()
	product := &models.Product{
		SellerID:         sellerID,
		Name:             "Rice " + uuid.NewString()[:8],
		Unit:             "kg",
		Price:            decimal.RequireFromString("45.50"),
		StockQuantity:    100,
		MinOrderQuantity: 1,
		Status:           enums.ProductStatusActive,
	}
	for _, opt := range opts {
		opt(product)
	}
	if err := conn.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}
