package notifications

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agromart/agromart-backend/pkg/db/models"
	"github.com/agromart/agromart-backend/pkg/enums"
	pkgerrors "github.com/agromart/agromart-backend/pkg/errors"
	"github.com/agromart/agromart-backend/pkg/metrics"
	"github.com/agromart/agromart-backend/pkg/types"
)

type preferenceSource interface {
	GetPreference(ctx context.Context, userID uuid.UUID) (*models.NotificationPreference, error)
	PreferencesFor(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]models.NotificationPreference, error)
}

type activeUserSource interface {
	ActiveIDs(ctx context.Context) ([]uuid.UUID, error)
}

// Dispatcher turns domain events into notifications. Every helper returns
// its error to the caller, which decides whether the failure is fatal.
type Dispatcher struct {
	store   Service
	prefs   preferenceSource
	users   activeUserSource
	metrics *metrics.NotificationMetrics
}

// NewDispatcher wires the dispatch helpers. prefs and m may be nil; without
// prefs every recipient is treated as opted in.
func NewDispatcher(store Service, prefs preferenceSource, users activeUserSource, m *metrics.NotificationMetrics) (*Dispatcher, error) {
	if store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notification service required")
	}
	if users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "user source required")
	}
	return &Dispatcher{store: store, prefs: prefs, users: users, metrics: m}, nil
}

var orderStatusMessages = map[enums.OrderStatus]string{
	enums.OrderStatusPending:        "Your order #%s has been received and is awaiting confirmation.",
	enums.OrderStatusConfirmed:      "Your order #%s has been confirmed by the seller.",
	enums.OrderStatusProcessing:     "Your order #%s is being prepared.",
	enums.OrderStatusShipped:        "Your order #%s has been shipped.",
	enums.OrderStatusOutForDelivery: "Your order #%s is out for delivery.",
	enums.OrderStatusDelivered:      "Your order #%s has been delivered. Enjoy your fresh produce!",
	enums.OrderStatusCancelled:      "Your order #%s has been cancelled.",
	enums.OrderStatusRefunded:       "Your order #%s has been refunded.",
}

// OrderStatusMessage picks the customer-facing text for a status change.
func OrderStatusMessage(orderNumber string, status enums.OrderStatus) string {
	if tmpl, ok := orderStatusMessages[status]; ok {
		return fmt.Sprintf(tmpl, orderNumber)
	}
	return fmt.Sprintf("Your order #%s status updated to %s", orderNumber, status)
}

// OrderStatusEvent describes a status transition of a customer order.
type OrderStatusEvent struct {
	CustomerID  uuid.UUID
	OrderID     uuid.UUID
	OrderNumber string
	Status      enums.OrderStatus
}

func (d *Dispatcher) OrderStatusChanged(ctx context.Context, ev OrderStatusEvent) error {
	return d.single(ctx, CreateInput{
		UserID:  ev.CustomerID,
		Type:    enums.NotificationTypeOrderStatus,
		Title:   "Order Status Updated",
		Message: OrderStatusMessage(ev.OrderNumber, ev.Status),
		Data: &types.NotificationData{OrderStatus: &types.OrderStatusData{
			OrderID:     ev.OrderID,
			OrderNumber: ev.OrderNumber,
			Status:      ev.Status,
		}},
	})
}

// OrderPlacedEvent describes a completed checkout.
type OrderPlacedEvent struct {
	CustomerID  uuid.UUID
	OrderID     uuid.UUID
	OrderNumber string
	Total       decimal.Decimal
	ItemCount   int
}

func (d *Dispatcher) OrderPlaced(ctx context.Context, ev OrderPlacedEvent) error {
	return d.single(ctx, CreateInput{
		UserID:  ev.CustomerID,
		Type:    enums.NotificationTypeOrderPlaced,
		Title:   "Order Placed",
		Message: fmt.Sprintf("Your order #%s for ৳%s has been placed successfully.", ev.OrderNumber, ev.Total.StringFixed(2)),
		Data: &types.NotificationData{OrderPlaced: &types.OrderPlacedData{
			OrderID:     ev.OrderID,
			OrderNumber: ev.OrderNumber,
			Total:       ev.Total,
			ItemCount:   ev.ItemCount,
		}},
	})
}

// NewProductEvent describes a freshly listed product.
type NewProductEvent struct {
	ProductID   uuid.UUID
	ProductName string
	SellerID    uuid.UUID
	Price       decimal.Decimal
}

// NewProduct notifies the given recipients. Building the recipient list is
// the caller's job.
func (d *Dispatcher) NewProduct(ctx context.Context, ev NewProductEvent, recipients []uuid.UUID) (int64, error) {
	return d.bulk(ctx, BulkInput{
		UserIDs: recipients,
		Type:    enums.NotificationTypeNewProduct,
		Title:   "New Product Available",
		Message: fmt.Sprintf("%s is now available for ৳%s.", ev.ProductName, ev.Price.StringFixed(2)),
		Data: &types.NotificationData{NewProduct: &types.NewProductData{
			ProductID:   ev.ProductID,
			ProductName: ev.ProductName,
			SellerID:    ev.SellerID,
			Price:       ev.Price,
		}},
	}, true)
}

// LowStockEvent carries the stock level that crossed the threshold.
type LowStockEvent struct {
	SellerID      uuid.UUID
	ProductID     uuid.UUID
	ProductName   string
	StockQuantity int
	Threshold     int
}

func (d *Dispatcher) LowStock(ctx context.Context, ev LowStockEvent) error {
	return d.single(ctx, CreateInput{
		UserID:  ev.SellerID,
		Type:    enums.NotificationTypeLowStock,
		Title:   "Low Stock Alert",
		Message: fmt.Sprintf("%s is running low. Only %d left in stock.", ev.ProductName, ev.StockQuantity),
		Data: &types.NotificationData{LowStock: &types.LowStockData{
			ProductID:     ev.ProductID,
			ProductName:   ev.ProductName,
			StockQuantity: ev.StockQuantity,
			Threshold:     ev.Threshold,
		}},
	})
}

func (d *Dispatcher) Welcome(ctx context.Context, userID uuid.UUID, name string, role enums.Role) error {
	greeting := "Welcome to AgroMart!"
	if name != "" {
		greeting = fmt.Sprintf("Welcome to AgroMart, %s!", name)
	}
	return d.single(ctx, CreateInput{
		UserID:  userID,
		Type:    enums.NotificationTypeWelcome,
		Title:   "Welcome to AgroMart",
		Message: greeting + " " + welcomeBody(role),
		Data:    &types.NotificationData{Welcome: &types.WelcomeData{Role: role}},
	})
}

func welcomeBody(role enums.Role) string {
	switch role {
	case enums.RoleSeller:
		return "Start listing your produce to reach customers."
	case enums.RoleShopOwner:
		return "Set up your shop and start selling."
	case enums.RoleRider:
		return "You can now accept delivery assignments."
	default:
		return "Browse fresh produce directly from local farmers."
	}
}

// Announcement fans a system message out to every active user. Preferences
// do not apply.
func (d *Dispatcher) Announcement(ctx context.Context, title, message, link string) (int64, error) {
	ids, err := d.users.ActiveIDs(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list active users")
	}
	var data *types.NotificationData
	if link != "" {
		data = &types.NotificationData{Announcement: &types.AnnouncementData{Link: link}}
	}
	return d.bulk(ctx, BulkInput{
		UserIDs: ids,
		Type:    enums.NotificationTypeSystemAnnouncement,
		Title:   title,
		Message: message,
		Data:    data,
	}, false)
}

func (d *Dispatcher) single(ctx context.Context, input CreateInput) error {
	allowed, err := d.allows(ctx, input.UserID, input.Type)
	if err != nil {
		d.metrics.Add(input.Type.String(), metrics.OutcomeFailed, 1)
		return err
	}
	if !allowed {
		d.metrics.Add(input.Type.String(), metrics.OutcomeSkipped, 1)
		return nil
	}
	if _, err := d.store.Create(ctx, input); err != nil {
		d.metrics.Add(input.Type.String(), metrics.OutcomeFailed, 1)
		return err
	}
	d.metrics.Add(input.Type.String(), metrics.OutcomeDelivered, 1)
	return nil
}

func (d *Dispatcher) bulk(ctx context.Context, input BulkInput, filter bool) (int64, error) {
	recipients := uniqueIDs(input.UserIDs)
	if filter {
		kept, err := d.filterRecipients(ctx, recipients, input.Type)
		if err != nil {
			d.metrics.Add(input.Type.String(), metrics.OutcomeFailed, len(recipients))
			return 0, err
		}
		d.metrics.Add(input.Type.String(), metrics.OutcomeSkipped, len(recipients)-len(kept))
		recipients = kept
	}
	if len(recipients) == 0 {
		return 0, nil
	}

	input.UserIDs = recipients
	count, err := d.store.CreateBulk(ctx, input)
	if err != nil {
		d.metrics.Add(input.Type.String(), metrics.OutcomeFailed, len(recipients))
		return 0, err
	}
	d.metrics.Add(input.Type.String(), metrics.OutcomeDelivered, int(count))
	return count, nil
}

func (d *Dispatcher) allows(ctx context.Context, userID uuid.UUID, t enums.NotificationType) (bool, error) {
	if d.prefs == nil || t == enums.NotificationTypeSystemAnnouncement {
		return true, nil
	}
	pref, err := d.prefs.GetPreference(ctx, userID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load notification preferences")
	}
	if pref == nil {
		return true, nil
	}
	return pref.Allows(t), nil
}

func (d *Dispatcher) filterRecipients(ctx context.Context, ids []uuid.UUID, t enums.NotificationType) ([]uuid.UUID, error) {
	if d.prefs == nil || len(ids) == 0 {
		return ids, nil
	}
	prefs, err := d.prefs.PreferencesFor(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load notification preferences")
	}
	kept := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if pref, ok := prefs[id]; ok && !pref.Allows(t) {
			continue
		}
		kept = append(kept, id)
	}
	return kept, nil
}
