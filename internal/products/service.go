package product

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/agromart/agromart-backend/internal/notifications"
	"github.com/agromart/agromart-backend/pkg/checkout"
	"github.com/agromart/agromart-backend/pkg/db"
	"github.com/agromart/agromart-backend/pkg/db/models"
	"github.com/agromart/agromart-backend/pkg/enums"
	pkgerrors "github.com/agromart/agromart-backend/pkg/errors"
	"github.com/agromart/agromart-backend/pkg/logger"
	"github.com/agromart/agromart-backend/pkg/visibility"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type notifier interface {
	NewProduct(ctx context.Context, ev notifications.NewProductEvent, recipients []uuid.UUID) (int64, error)
	LowStock(ctx context.Context, ev notifications.LowStockEvent) error
}

type buyerSource interface {
	PastBuyersOf(ctx context.Context, sellerID uuid.UUID) ([]uuid.UUID, error)
}

// Service exposes the product operations the marketplace core depends on.
type Service interface {
	CreateProduct(ctx context.Context, sellerID uuid.UUID, input CreateProductInput) (*ProductDTO, error)
	UpdateStock(ctx context.Context, actorID uuid.UUID, role enums.Role, productID uuid.UUID, stock int) (*ProductDTO, error)
	GetProduct(ctx context.Context, viewerID, productID uuid.UUID) (*ProductDTO, error)
}

type service struct {
	repo              *Repository
	tx                txRunner
	notify            notifier
	buyers            buyerSource
	lowStockThreshold int
	logg              *logger.Logger
}

// NewService builds the product service. Notification failures after a
// successful write are logged and never returned.
func NewService(repo *Repository, tx txRunner, notify notifier, buyers buyerSource, lowStockThreshold int, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if notify == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if buyers == nil {
		return nil, fmt.Errorf("buyer source required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{
		repo:              repo,
		tx:                tx,
		notify:            notify,
		buyers:            buyers,
		lowStockThreshold: lowStockThreshold,
		logg:              logg,
	}, nil
}

func (s *service) CreateProduct(ctx context.Context, sellerID uuid.UUID, input CreateProductInput) (*ProductDTO, error) {
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id required")
	}
	if err := validateCreate(&input); err != nil {
		return nil, err
	}

	row := &models.Product{
		SellerID:         sellerID,
		ShopID:           input.ShopID,
		Name:             strings.TrimSpace(input.Name),
		Description:      input.Description,
		Unit:             input.Unit,
		Price:            input.Price,
		StockQuantity:    input.StockQuantity,
		MinOrderQuantity: input.MinOrderQuantity,
		MaxOrderQuantity: input.MaxOrderQuantity,
		Status:           input.Status,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		if db.IsForeignKeyViolation(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "seller or shop not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}

	if row.Status == enums.ProductStatusActive {
		s.announceNewProduct(ctx, row)
	}
	dto := toDTO(*row)
	return &dto, nil
}

func (s *service) announceNewProduct(ctx context.Context, row *models.Product) {
	recipients, err := s.buyers.PastBuyersOf(ctx, row.SellerID)
	if err != nil {
		s.logg.Error(ctx, "failed to resolve new product audience", err)
		return
	}
	if _, err := s.notify.NewProduct(ctx, notifications.NewProductEvent{
		ProductID:   row.ID,
		ProductName: row.Name,
		SellerID:    row.SellerID,
		Price:       row.Price,
	}, recipients); err != nil {
		s.logg.Error(ctx, "failed to send new product notifications", err)
	}
}

// UpdateStock sets the stock level. Dropping below the low-stock threshold
// from at or above it notifies the seller.
func (s *service) UpdateStock(ctx context.Context, actorID uuid.UUID, role enums.Role, productID uuid.UUID, stock int) (*ProductDTO, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock quantity cannot be negative")
	}

	var (
		row      *models.Product
		previous int
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := repo.FindForUpdate(ctx, productID)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		if role != enums.RoleAdmin && current.SellerID != actorID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "product belongs to another seller")
		}
		if err := repo.UpdateStock(ctx, productID, stock); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update stock")
		}
		previous = current.StockQuantity
		current.StockQuantity = stock
		row = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	if CrossedLowStock(previous, stock, s.lowStockThreshold) {
		if err := s.notify.LowStock(ctx, lowStockEvent(row, s.lowStockThreshold)); err != nil {
			s.logg.Error(ctx, "failed to send low stock notification", err)
		}
	}
	dto := toDTO(*row)
	return &dto, nil
}

func (s *service) GetProduct(ctx context.Context, viewerID, productID uuid.UUID) (*ProductDTO, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	row, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if err := visibility.EnsureVisible(row, viewerID); err != nil {
		return nil, err
	}
	dto := toDTO(*row)
	return &dto, nil
}

// CrossedLowStock reports whether stock moved from at or above threshold to
// below it. A non-positive threshold disables alerts.
func CrossedLowStock(previous, current, threshold int) bool {
	if threshold <= 0 {
		return false
	}
	return previous >= threshold && current < threshold
}

func lowStockEvent(p *models.Product, threshold int) notifications.LowStockEvent {
	return notifications.LowStockEvent{
		SellerID:      p.SellerID,
		ProductID:     p.ID,
		ProductName:   p.Name,
		StockQuantity: p.StockQuantity,
		Threshold:     threshold,
	}
}

func validateCreate(input *CreateProductInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if !input.Price.GreaterThan(decimal.Zero) {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must be greater than zero")
	}
	if input.StockQuantity < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "stock quantity cannot be negative")
	}
	if input.MinOrderQuantity == 0 {
		input.MinOrderQuantity = 1
	}
	if input.MinOrderQuantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "min order quantity must be at least 1").
			WithDetails(map[string]any{"bound": checkout.BoundMin})
	}
	if input.MaxOrderQuantity != nil && *input.MaxOrderQuantity < input.MinOrderQuantity {
		return pkgerrors.New(pkgerrors.CodeValidation, "max order quantity cannot be below min order quantity").
			WithDetails(map[string]any{"bound": checkout.BoundMax})
	}
	if strings.TrimSpace(input.Unit) == "" {
		input.Unit = "kg"
	}
	if input.Status == "" {
		input.Status = enums.ProductStatusActive
	}
	if !input.Status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid product status")
	}
	return nil
}
