package orders

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/agromart/agromart-backend/internal/address"
	"github.com/agromart/agromart-backend/internal/cart"
	"github.com/agromart/agromart-backend/internal/notifications"
	product "github.com/agromart/agromart-backend/internal/products"
	"github.com/agromart/agromart-backend/pkg/checkout"
	"github.com/agromart/agromart-backend/pkg/db"
	"github.com/agromart/agromart-backend/pkg/db/models"
	"github.com/agromart/agromart-backend/pkg/enums"
	pkgerrors "github.com/agromart/agromart-backend/pkg/errors"
	"github.com/agromart/agromart-backend/pkg/logger"
	"github.com/agromart/agromart-backend/pkg/pagination"
	"github.com/agromart/agromart-backend/pkg/visibility"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type notifier interface {
	OrderPlaced(ctx context.Context, ev notifications.OrderPlacedEvent) error
	OrderStatusChanged(ctx context.Context, ev notifications.OrderStatusEvent) error
	LowStock(ctx context.Context, ev notifications.LowStockEvent) error
}

// Service converts carts into orders and moves orders through their lifecycle.
type Service interface {
	Checkout(ctx context.Context, customerID uuid.UUID, input CheckoutInput) (*OrderDTO, error)
	UpdateStatus(ctx context.Context, actorID uuid.UUID, role enums.Role, orderID uuid.UUID, status enums.OrderStatus) (*OrderDTO, error)
	List(ctx context.Context, customerID uuid.UUID, params pagination.Params) (*ListResult, error)
}

// Deps groups the collaborators of the order service.
type Deps struct {
	Orders            Repository
	Carts             cart.Repository
	Products          *product.Repository
	Addresses         address.Repository
	Tx                txRunner
	Notify            notifier
	LowStockThreshold int
	Logger            *logger.Logger
}

type service struct {
	Deps
	now func() time.Time
}

func NewService(deps Deps) (Service, error) {
	switch {
	case deps.Orders == nil:
		return nil, fmt.Errorf("orders repository required")
	case deps.Carts == nil:
		return nil, fmt.Errorf("cart repository required")
	case deps.Products == nil:
		return nil, fmt.Errorf("product repository required")
	case deps.Addresses == nil:
		return nil, fmt.Errorf("address repository required")
	case deps.Tx == nil:
		return nil, fmt.Errorf("transaction runner required")
	case deps.Notify == nil:
		return nil, fmt.Errorf("notifier required")
	}
	if deps.Logger == nil {
		deps.Logger = logger.Nop()
	}
	return &service{Deps: deps, now: func() time.Time { return time.Now().UTC() }}, nil
}

// Checkout re-validates every cart line against the locked product rows,
// decrements stock, writes the order and empties the cart in one
// transaction. Notifications go out after commit and never fail the call.
func (s *service) Checkout(ctx context.Context, customerID uuid.UUID, input CheckoutInput) (*OrderDTO, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}

	var (
		order    *models.Order
		lowStock []notifications.LowStockEvent
	)
	err := s.Tx.WithTx(ctx, func(tx *gorm.DB) error {
		carts := s.Carts.WithTx(tx)
		products := s.Products.WithTx(tx)

		shippingID, err := s.resolveAddress(ctx, s.Addresses.WithTx(tx), customerID, input.ShippingAddressID)
		if err != nil {
			return err
		}

		lines, err := carts.ListByUser(ctx, customerID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}
		if len(lines) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}
		sort.Slice(lines, func(i, j int) bool {
			return lines[i].ProductID.String() < lines[j].ProductID.String()
		})

		locked := make([]*models.Product, len(lines))
		inputs := make([]checkout.QuantityInput, len(lines))
		for i, line := range lines {
			p, err := carts.LockProduct(ctx, line.ProductID)
			if err != nil {
				if db.IsNotFound(err) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
			}
			if err := visibility.EnsurePurchasable(p); err != nil {
				return err
			}
			locked[i] = p
			inputs[i] = checkout.QuantityInput{
				ProductID:   p.ID,
				ProductName: p.Name,
				Quantity:    line.Quantity,
				Min:         p.MinOrderQuantity,
				Max:         p.MaxOrderQuantity,
				Stock:       p.StockQuantity,
			}
		}
		if err := checkout.ValidateLines(inputs); err != nil {
			return err
		}

		order = &models.Order{
			OrderNumber:       newOrderNumber(s.now()),
			CustomerID:        customerID,
			ShippingAddressID: shippingID,
			Status:            enums.OrderStatusPending,
			Total:             decimal.Zero,
		}
		for i, line := range lines {
			p := locked[i]
			ok, err := products.DecrementStock(ctx, p.ID, line.Quantity)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve stock")
			}
			if !ok {
				return checkout.ValidateQuantity(inputs[i])
			}
			remaining := p.StockQuantity - line.Quantity
			if product.CrossedLowStock(p.StockQuantity, remaining, s.LowStockThreshold) {
				lowStock = append(lowStock, notifications.LowStockEvent{
					SellerID:      p.SellerID,
					ProductID:     p.ID,
					ProductName:   p.Name,
					StockQuantity: remaining,
					Threshold:     s.LowStockThreshold,
				})
			}

			subtotal := p.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
			order.Items = append(order.Items, models.OrderItem{
				ProductID:   p.ID,
				SellerID:    p.SellerID,
				ProductName: p.Name,
				Quantity:    line.Quantity,
				UnitPrice:   p.Price,
				Subtotal:    subtotal,
			})
			order.Total = order.Total.Add(subtotal)
		}

		if err := s.Orders.WithTx(tx).Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		if _, err := carts.ClearUser(ctx, customerID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterCheckout(ctx, order, lowStock)
	dto := toDTO(*order)
	return &dto, nil
}

func (s *service) afterCheckout(ctx context.Context, order *models.Order, lowStock []notifications.LowStockEvent) {
	itemCount := 0
	for _, item := range order.Items {
		itemCount += item.Quantity
	}
	errs := s.Notify.OrderPlaced(ctx, notifications.OrderPlacedEvent{
		CustomerID:  order.CustomerID,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Total:       order.Total,
		ItemCount:   itemCount,
	})
	for _, ev := range lowStock {
		errs = multierr.Append(errs, s.Notify.LowStock(ctx, ev))
	}
	if errs != nil {
		s.Logger.Error(ctx, "checkout notifications failed", errs)
	}
}

func (s *service) resolveAddress(ctx context.Context, repo address.Repository, customerID uuid.UUID, requested *uuid.UUID) (*uuid.UUID, error) {
	if requested != nil {
		row, err := repo.FindOwned(ctx, customerID, *requested)
		if err != nil {
			if db.IsNotFound(err) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shipping address not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shipping address")
		}
		return &row.ID, nil
	}
	rows, err := repo.ListByUser(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load addresses")
	}
	if len(rows) > 0 && rows[0].IsDefault {
		return &rows[0].ID, nil
	}
	return nil, nil
}

// UpdateStatus lets admins move any order and sellers move orders that
// contain at least one of their items.
func (s *service) UpdateStatus(ctx context.Context, actorID uuid.UUID, role enums.Role, orderID uuid.UUID, status enums.OrderStatus) (*OrderDTO, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status").
			WithDetails(map[string]any{"status": status, "allowed": enums.OrderStatuses()})
	}

	order, err := s.Orders.FindByID(ctx, orderID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if role != enums.RoleAdmin && !sellsIn(order, actorID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not contain your products")
	}
	if !order.Status.CanTransitionTo(status) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("cannot move order from %s to %s", order.Status, status))
	}

	updated, err := s.Orders.UpdateStatus(ctx, orderID, order.Status, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	if !updated {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order status changed concurrently, reload and retry")
	}
	order.Status = status

	if err := s.Notify.OrderStatusChanged(ctx, notifications.OrderStatusEvent{
		CustomerID:  order.CustomerID,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Status:      status,
	}); err != nil {
		s.Logger.Error(ctx, "order status notification failed", err)
	}
	dto := toDTO(*order)
	return &dto, nil
}

func (s *service) List(ctx context.Context, customerID uuid.UUID, params pagination.Params) (*ListResult, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	page := params.Normalize()
	rows, total, err := s.Orders.ListByCustomer(ctx, customerID, page.Offset(), page.Limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	out := make([]OrderDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDTO(row))
	}
	return &ListResult{Orders: out, Pagination: pagination.Build(page, total)}, nil
}

func sellsIn(order *models.Order, sellerID uuid.UUID) bool {
	for _, item := range order.Items {
		if item.SellerID == sellerID {
			return true
		}
	}
	return false
}

func newOrderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("AGR-%s-%s", now.Format("20060102"), suffix)
}
