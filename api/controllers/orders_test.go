package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agromart/agromart-backend/internal/orders"
	productsvc "github.com/agromart/agromart-backend/internal/products"
	"github.com/agromart/agromart-backend/pkg/enums"
	pkgerrors "github.com/agromart/agromart-backend/pkg/errors"
	"github.com/agromart/agromart-backend/pkg/pagination"
)

type testOrdersService struct {
	orders.Service
	checkoutFn     func(ctx context.Context, customerID uuid.UUID, input orders.CheckoutInput) (*orders.OrderDTO, error)
	updateStatusFn func(ctx context.Context, actorID uuid.UUID, role enums.Role, orderID uuid.UUID, status enums.OrderStatus) (*orders.OrderDTO, error)
	listFn         func(ctx context.Context, customerID uuid.UUID, params pagination.Params) (*orders.ListResult, error)
}

func (s *testOrdersService) Checkout(ctx context.Context, customerID uuid.UUID, input orders.CheckoutInput) (*orders.OrderDTO, error) {
	return s.checkoutFn(ctx, customerID, input)
}

func (s *testOrdersService) UpdateStatus(ctx context.Context, actorID uuid.UUID, role enums.Role, orderID uuid.UUID, status enums.OrderStatus) (*orders.OrderDTO, error) {
	return s.updateStatusFn(ctx, actorID, role, orderID, status)
}

func (s *testOrdersService) List(ctx context.Context, customerID uuid.UUID, params pagination.Params) (*orders.ListResult, error) {
	return s.listFn(ctx, customerID, params)
}

func TestCheckoutWithoutBodyUsesDefaultAddress(t *testing.T) {
	userID := uuid.New()
	svc := &testOrdersService{
		checkoutFn: func(ctx context.Context, customerID uuid.UUID, input orders.CheckoutInput) (*orders.OrderDTO, error) {
			if customerID != userID {
				t.Fatalf("unexpected customer %s", customerID)
			}
			if input.ShippingAddressID != nil {
				t.Fatalf("expected no explicit address, got %s", input.ShippingAddressID)
			}
			return &orders.OrderDTO{ID: uuid.New(), Status: enums.OrderStatusPending, Total: decimal.RequireFromString("402.5")}, nil
		},
	}

	req := newRequest(http.MethodPost, "/api/v1/orders/checkout", "", userID, enums.RoleCustomer, nil)
	rec := httptest.NewRecorder()
	Checkout(svc, testLogger())(rec, req)

	expectStatus(t, rec, http.StatusCreated)
	var order orders.OrderDTO
	decodeData(t, rec, &order)
	if !order.Total.Equal(decimal.RequireFromString("402.5")) {
		t.Fatalf("unexpected total %s", order.Total)
	}
}

func TestCheckoutWithExplicitAddress(t *testing.T) {
	addressID := uuid.New()
	svc := &testOrdersService{
		checkoutFn: func(ctx context.Context, customerID uuid.UUID, input orders.CheckoutInput) (*orders.OrderDTO, error) {
			if input.ShippingAddressID == nil || *input.ShippingAddressID != addressID {
				t.Fatalf("expected address %s, got %v", addressID, input.ShippingAddressID)
			}
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		},
	}

	req := newRequest(http.MethodPost, "/api/v1/orders/checkout", `{"shippingAddressId":"`+addressID.String()+`"}`, uuid.New(), enums.RoleCustomer, nil)
	rec := httptest.NewRecorder()
	Checkout(svc, testLogger())(rec, req)

	expectStatus(t, rec, http.StatusBadRequest)
}

func TestUpdateOrderStatusPassesRole(t *testing.T) {
	sellerID := uuid.New()
	orderID := uuid.New()
	svc := &testOrdersService{
		updateStatusFn: func(ctx context.Context, actorID uuid.UUID, role enums.Role, oid uuid.UUID, status enums.OrderStatus) (*orders.OrderDTO, error) {
			if actorID != sellerID || role != enums.RoleSeller || oid != orderID || status != enums.OrderStatusConfirmed {
				t.Fatalf("unexpected call %s %s %s %s", actorID, role, oid, status)
			}
			return &orders.OrderDTO{ID: oid, Status: status}, nil
		},
	}

	req := newRequest(http.MethodPut, "/api/v1/orders/"+orderID.String()+"/status", `{"status":"confirmed"}`, sellerID, enums.RoleSeller,
		map[string]string{"orderId": orderID.String()})
	rec := httptest.NewRecorder()
	UpdateOrderStatus(svc, testLogger())(rec, req)

	expectStatus(t, rec, http.StatusOK)
}

func TestUpdateOrderStatusRejectsUnknownStatus(t *testing.T) {
	orderID := uuid.New()
	req := newRequest(http.MethodPut, "/", `{"status":"teleported"}`, uuid.New(), enums.RoleAdmin,
		map[string]string{"orderId": orderID.String()})
	rec := httptest.NewRecorder()
	UpdateOrderStatus(&testOrdersService{}, testLogger())(rec, req)

	expectStatus(t, rec, http.StatusBadRequest)
}

func TestListOrdersPaginates(t *testing.T) {
	svc := &testOrdersService{
		listFn: func(ctx context.Context, customerID uuid.UUID, params pagination.Params) (*orders.ListResult, error) {
			if params.Page != 2 || params.Limit != 5 {
				t.Fatalf("unexpected params %+v", params)
			}
			return &orders.ListResult{Orders: []orders.OrderDTO{}, Pagination: pagination.Build(params, 7)}, nil
		},
	}

	req := newRequest(http.MethodGet, "/api/v1/orders?page=2&limit=5", "", uuid.New(), enums.RoleCustomer, nil)
	rec := httptest.NewRecorder()
	ListOrders(svc, testLogger())(rec, req)

	expectStatus(t, rec, http.StatusOK)
	var result orders.ListResult
	decodeData(t, rec, &result)
	if result.Pagination.HasNext || !result.Pagination.HasPrev {
		t.Fatalf("unexpected pagination %+v", result.Pagination)
	}
}

type testProductService struct {
	productsvc.Service
	createFn      func(ctx context.Context, sellerID uuid.UUID, input productsvc.CreateProductInput) (*productsvc.ProductDTO, error)
	updateStockFn func(ctx context.Context, actorID uuid.UUID, role enums.Role, productID uuid.UUID, stock int) (*productsvc.ProductDTO, error)
	getFn         func(ctx context.Context, viewerID, productID uuid.UUID) (*productsvc.ProductDTO, error)
}

func (s *testProductService) CreateProduct(ctx context.Context, sellerID uuid.UUID, input productsvc.CreateProductInput) (*productsvc.ProductDTO, error) {
	return s.createFn(ctx, sellerID, input)
}

func (s *testProductService) UpdateStock(ctx context.Context, actorID uuid.UUID, role enums.Role, productID uuid.UUID, stock int) (*productsvc.ProductDTO, error) {
	return s.updateStockFn(ctx, actorID, role, productID, stock)
}

func (s *testProductService) GetProduct(ctx context.Context, viewerID, productID uuid.UUID) (*productsvc.ProductDTO, error) {
	return s.getFn(ctx, viewerID, productID)
}

func TestCreateProductMapsPayload(t *testing.T) {
	sellerID := uuid.New()
	svc := &testProductService{
		createFn: func(ctx context.Context, sid uuid.UUID, input productsvc.CreateProductInput) (*productsvc.ProductDTO, error) {
			if sid != sellerID {
				t.Fatalf("unexpected seller %s", sid)
			}
			if !input.Price.Equal(decimal.RequireFromString("80.50")) || input.MinOrderQuantity != 2 || input.MaxOrderQuantity == nil || *input.MaxOrderQuantity != 10 {
				t.Fatalf("unexpected input %+v", input)
			}
			return &productsvc.ProductDTO{ID: uuid.New(), SellerID: sid, Name: input.Name, Price: input.Price}, nil
		},
	}

	body := `{"name":"Rice","price":"80.50","stockQuantity":5,"minOrderQuantity":2,"maxOrderQuantity":10}`
	req := newRequest(http.MethodPost, "/api/v1/products", body, sellerID, enums.RoleSeller, nil)
	rec := httptest.NewRecorder()
	CreateProduct(svc, testLogger())(rec, req)

	expectStatus(t, rec, http.StatusCreated)
}

func TestCreateProductRejectsUnknownStatus(t *testing.T) {
	req := newRequest(http.MethodPost, "/api/v1/products", `{"name":"Rice","price":"1","status":"sold"}`, uuid.New(), enums.RoleSeller, nil)
	rec := httptest.NewRecorder()
	CreateProduct(&testProductService{}, testLogger())(rec, req)

	expectStatus(t, rec, http.StatusBadRequest)
}

func TestUpdateProductStockRequiresValue(t *testing.T) {
	productID := uuid.New()
	req := newRequest(http.MethodPatch, "/", `{}`, uuid.New(), enums.RoleSeller, map[string]string{"productId": productID.String()})
	rec := httptest.NewRecorder()
	UpdateProductStock(&testProductService{}, testLogger())(rec, req)

	expectStatus(t, rec, http.StatusBadRequest)
}

func TestUpdateProductStockPassesZero(t *testing.T) {
	productID := uuid.New()
	svc := &testProductService{
		updateStockFn: func(ctx context.Context, actorID uuid.UUID, role enums.Role, pid uuid.UUID, stock int) (*productsvc.ProductDTO, error) {
			if pid != productID || stock != 0 || role != enums.RoleShopOwner {
				t.Fatalf("unexpected call %s %d %s", pid, stock, role)
			}
			return &productsvc.ProductDTO{ID: pid}, nil
		},
	}

	req := newRequest(http.MethodPatch, "/", `{"stockQuantity":0}`, uuid.New(), enums.RoleShopOwner, map[string]string{"productId": productID.String()})
	rec := httptest.NewRecorder()
	UpdateProductStock(svc, testLogger())(rec, req)

	expectStatus(t, rec, http.StatusOK)
}

func TestGetProductAnonymousViewer(t *testing.T) {
	productID := uuid.New()
	svc := &testProductService{
		getFn: func(ctx context.Context, viewerID, pid uuid.UUID) (*productsvc.ProductDTO, error) {
			if viewerID != uuid.Nil {
				t.Fatalf("expected anonymous viewer, got %s", viewerID)
			}
			return &productsvc.ProductDTO{ID: pid, Status: enums.ProductStatusActive}, nil
		},
	}

	req := newRequest(http.MethodGet, "/", "", uuid.Nil, "", map[string]string{"productId": productID.String()})
	rec := httptest.NewRecorder()
	GetProduct(svc, testLogger())(rec, req)

	expectStatus(t, rec, http.StatusOK)
}
