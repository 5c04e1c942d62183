package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/agromart/agromart-backend/api/responses"
	"github.com/agromart/agromart-backend/api/validators"
	"github.com/agromart/agromart-backend/internal/cart"
	"github.com/agromart/agromart-backend/pkg/logger"
)

type addCartItemRequest struct {
	ProductID uuid.UUID `json:"productId" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gt=0"`
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,gt=0"`
}

func CartList(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "cart")
			return
		}
		userID, ok := currentUser(w, r, logg)
		if !ok {
			return
		}
		result, err := svc.List(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// CartAdd adds a product to the caller's cart, merging into an existing line.
func CartAdd(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "cart")
			return
		}
		userID, ok := currentUser(w, r, logg)
		if !ok {
			return
		}

		var payload addCartItemRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.Add(r.Context(), userID, cart.AddInput{
			ProductID: payload.ProductID,
			Quantity:  payload.Quantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

// CartUpdateItem sets the quantity of a line. A line owned by another user
// is rejected with 403.
func CartUpdateItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "cart")
			return
		}
		userID, ok := currentUser(w, r, logg)
		if !ok {
			return
		}
		itemID, err := validators.ParseUUIDParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateCartItemRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.SetQuantity(r.Context(), userID, itemID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}

func CartRemoveItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "cart")
			return
		}
		userID, ok := currentUser(w, r, logg)
		if !ok {
			return
		}
		itemID, err := validators.ParseUUIDParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Remove(r.Context(), userID, itemID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"message": "cart item removed"})
	}
}
