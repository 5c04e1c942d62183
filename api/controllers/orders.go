package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/agromart/agromart-backend/api/middleware"
	"github.com/agromart/agromart-backend/api/responses"
	"github.com/agromart/agromart-backend/api/validators"
	"github.com/agromart/agromart-backend/internal/orders"
	"github.com/agromart/agromart-backend/pkg/enums"
	"github.com/agromart/agromart-backend/pkg/logger"
)

type checkoutRequest struct {
	ShippingAddressID *uuid.UUID `json:"shippingAddressId"`
}

type updateOrderStatusRequest struct {
	Status enums.OrderStatus `json:"status" validate:"required,order_status"`
}

// Checkout turns the caller's cart into an order. An empty body uses the
// caller's default address.
func Checkout(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "orders")
			return
		}
		userID, ok := currentUser(w, r, logg)
		if !ok {
			return
		}

		var payload checkoutRequest
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		order, err := svc.Checkout(r.Context(), userID, orders.CheckoutInput{
			ShippingAddressID: payload.ShippingAddressID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

func UpdateOrderStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "orders")
			return
		}
		userID, ok := currentUser(w, r, logg)
		if !ok {
			return
		}
		orderID, err := validators.ParseUUIDParam(r, "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateOrderStatusRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.UpdateStatus(r.Context(), userID, middleware.RoleFromContext(r.Context()), orderID, payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

func ListOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "orders")
			return
		}
		userID, ok := currentUser(w, r, logg)
		if !ok {
			return
		}
		page, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.List(r.Context(), userID, page)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
