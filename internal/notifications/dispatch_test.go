package notifications

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/shopspring/decimal"

	"github.com/agromart/agromart-backend/pkg/db/models"
	"github.com/agromart/agromart-backend/pkg/enums"
	"github.com/agromart/agromart-backend/pkg/metrics"
)

type recordingStore struct {
	Service
	created []CreateInput
	bulk    []BulkInput
	err     error
}

func (r *recordingStore) Create(ctx context.Context, input CreateInput) (*NotificationDTO, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.created = append(r.created, input)
	return &NotificationDTO{UserID: input.UserID, Type: input.Type}, nil
}

func (r *recordingStore) CreateBulk(ctx context.Context, input BulkInput) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	r.bulk = append(r.bulk, input)
	return int64(len(input.UserIDs)), nil
}

type staticUsers struct {
	ids []uuid.UUID
	err error
}

func (s staticUsers) ActiveIDs(ctx context.Context) ([]uuid.UUID, error) {
	return s.ids, s.err
}

func newTestDispatcher(t *testing.T, store *recordingStore, prefs *fakeRepository, users staticUsers) (*Dispatcher, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	var source preferenceSource
	if prefs != nil {
		source = prefs
	}
	d, err := NewDispatcher(store, source, users, metrics.NewNotificationMetrics(reg))
	if err != nil {
		t.Fatalf("new dispatcher: %v", err)
	}
	return d, reg
}

func TestOrderStatusMessage(t *testing.T) {
	if got := OrderStatusMessage("AGR-1001", enums.OrderStatusShipped); got != "Your order #AGR-1001 has been shipped." {
		t.Fatalf("unexpected shipped text %q", got)
	}
	if got := OrderStatusMessage("AGR-1001", enums.OrderStatus("on_hold")); got != "Your order #AGR-1001 status updated to on_hold" {
		t.Fatalf("unexpected fallback text %q", got)
	}
	for _, status := range enums.OrderStatuses() {
		if strings.Contains(OrderStatusMessage("X", status), "status updated to") {
			t.Fatalf("status %s should have dedicated text", status)
		}
	}
}

func TestDispatchOrderStatusCarriesPayload(t *testing.T) {
	store := &recordingStore{}
	d, _ := newTestDispatcher(t, store, nil, staticUsers{})
	customer, orderID := uuid.New(), uuid.New()

	err := d.OrderStatusChanged(context.Background(), OrderStatusEvent{
		CustomerID: customer, OrderID: orderID, OrderNumber: "AGR-7", Status: enums.OrderStatusDelivered,
	})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(store.created) != 1 {
		t.Fatalf("expected one notification, got %d", len(store.created))
	}
	got := store.created[0]
	if got.UserID != customer || got.Type != enums.NotificationTypeOrderStatus {
		t.Fatalf("unexpected notification %+v", got)
	}
	if got.Data == nil || got.Data.OrderStatus == nil || got.Data.OrderStatus.OrderID != orderID {
		t.Fatalf("expected order status payload, got %+v", got.Data)
	}
	if err := got.Data.Validate(got.Type); err != nil {
		t.Fatalf("payload does not match type: %v", err)
	}
}

func TestDispatchLowStockRespectsPreference(t *testing.T) {
	seller := uuid.New()
	pref := models.DefaultNotificationPreference(seller)
	pref.LowStock = false
	store := &recordingStore{}
	d, reg := newTestDispatcher(t, store, &fakeRepository{prefs: map[uuid.UUID]models.NotificationPreference{seller: pref}}, staticUsers{})

	err := d.LowStock(context.Background(), LowStockEvent{SellerID: seller, ProductName: "Aman rice", StockQuantity: 3, Threshold: 10})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if len(store.created) != 0 {
		t.Fatal("expected muted seller to be skipped")
	}
	if got := counterValue(t, reg, "low_stock", metrics.OutcomeSkipped); got != 1 {
		t.Fatalf("expected one skipped, got %f", got)
	}
}

func TestDispatchNewProductFiltersRecipients(t *testing.T) {
	muted, a, b := uuid.New(), uuid.New(), uuid.New()
	pref := models.DefaultNotificationPreference(muted)
	pref.NewProduct = false
	store := &recordingStore{}
	d, reg := newTestDispatcher(t, store, &fakeRepository{prefs: map[uuid.UUID]models.NotificationPreference{muted: pref}}, staticUsers{})

	count, err := d.NewProduct(context.Background(), NewProductEvent{
		ProductID: uuid.New(), ProductName: "Hilsa", SellerID: uuid.New(), Price: decimal.RequireFromString("850"),
	}, []uuid.UUID{a, muted, b, a})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 recipients, got %d", count)
	}
	if len(store.bulk) != 1 || len(store.bulk[0].UserIDs) != 2 {
		t.Fatalf("unexpected bulk calls %+v", store.bulk)
	}
	if !strings.Contains(store.bulk[0].Message, "850.00") {
		t.Fatalf("expected formatted price in %q", store.bulk[0].Message)
	}
	if got := counterValue(t, reg, "new_product", metrics.OutcomeDelivered); got != 2 {
		t.Fatalf("expected 2 delivered, got %f", got)
	}
}

func TestDispatchNewProductWithoutRecipients(t *testing.T) {
	store := &recordingStore{}
	d, _ := newTestDispatcher(t, store, nil, staticUsers{})
	count, err := d.NewProduct(context.Background(), NewProductEvent{ProductName: "Okra"}, nil)
	if err != nil || count != 0 {
		t.Fatalf("expected no-op, got count=%d err=%v", count, err)
	}
	if len(store.bulk) != 0 {
		t.Fatal("expected store to be untouched")
	}
}

func TestDispatchAnnouncementTargetsActiveUsersIgnoringPreferences(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	pref := models.DefaultNotificationPreference(a)
	pref.NewProduct, pref.LowStock, pref.Welcome = false, false, false
	store := &recordingStore{}
	d, _ := newTestDispatcher(t, store, &fakeRepository{prefs: map[uuid.UUID]models.NotificationPreference{a: pref}}, staticUsers{ids: []uuid.UUID{a, b}})

	count, err := d.Announcement(context.Background(), "Price update", "Fertilizer subsidy announced", "")
	if err != nil {
		t.Fatalf("announcement: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2, got %d", count)
	}
	if store.bulk[0].Data != nil {
		t.Fatal("expected no payload without a link")
	}
}

func TestDispatchSurfacesStoreErrors(t *testing.T) {
	store := &recordingStore{err: errors.New("db down")}
	d, reg := newTestDispatcher(t, store, nil, staticUsers{})
	if err := d.Welcome(context.Background(), uuid.New(), "Rahim", enums.RoleCustomer); err == nil {
		t.Fatal("expected error to reach the caller")
	}
	if got := counterValue(t, reg, "welcome", metrics.OutcomeFailed); got != 1 {
		t.Fatalf("expected one failure, got %f", got)
	}
}

func TestDispatchAnnouncementUserLookupFails(t *testing.T) {
	d, _ := newTestDispatcher(t, &recordingStore{}, nil, staticUsers{err: errors.New("boom")})
	if _, err := d.Announcement(context.Background(), "t", "m", ""); err == nil {
		t.Fatal("expected error")
	}
}

func counterValue(t *testing.T, reg *prometheus.Registry, typ, outcome string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() != "agromart_notifications_dispatched_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			if labelsMatch(m, map[string]string{"type": typ, "outcome": outcome}) {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func labelsMatch(m *dto.Metric, want map[string]string) bool {
	matched := 0
	for _, lp := range m.GetLabel() {
		if v, ok := want[lp.GetName()]; ok && v == lp.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
