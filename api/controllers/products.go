package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/agromart/agromart-backend/api/middleware"
	"github.com/agromart/agromart-backend/api/responses"
	"github.com/agromart/agromart-backend/api/validators"
	productsvc "github.com/agromart/agromart-backend/internal/products"
	"github.com/agromart/agromart-backend/pkg/enums"
	"github.com/agromart/agromart-backend/pkg/logger"
)

type createProductRequest struct {
	Name             string              `json:"name" validate:"required,max=200"`
	Description      *string             `json:"description" validate:"omitempty,max=5000"`
	Unit             string              `json:"unit" validate:"omitempty,max=20"`
	Price            decimal.Decimal     `json:"price"`
	StockQuantity    int                 `json:"stockQuantity" validate:"gte=0"`
	MinOrderQuantity int                 `json:"minOrderQuantity" validate:"gte=0"`
	MaxOrderQuantity *int                `json:"maxOrderQuantity" validate:"omitempty,gt=0"`
	Status           enums.ProductStatus `json:"status" validate:"omitempty,oneof=active inactive draft archived"`
	ShopID           *uuid.UUID          `json:"shopId"`
}

func (p createProductRequest) toCreateInput() productsvc.CreateProductInput {
	return productsvc.CreateProductInput{
		Name:             p.Name,
		Description:      p.Description,
		Unit:             p.Unit,
		Price:            p.Price,
		StockQuantity:    p.StockQuantity,
		MinOrderQuantity: p.MinOrderQuantity,
		MaxOrderQuantity: p.MaxOrderQuantity,
		Status:           p.Status,
		ShopID:           p.ShopID,
	}
}

type updateStockRequest struct {
	StockQuantity *int `json:"stockQuantity" validate:"required,gte=0"`
}

// CreateProduct lists a new product owned by the caller.
func CreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "product")
			return
		}
		userID, ok := currentUser(w, r, logg)
		if !ok {
			return
		}

		var payload createProductRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), userID, payload.toCreateInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

func UpdateProductStock(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "product")
			return
		}
		userID, ok := currentUser(w, r, logg)
		if !ok {
			return
		}
		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateStockRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		role := middleware.RoleFromContext(r.Context())
		product, err := svc.UpdateStock(r.Context(), userID, role, productID, *payload.StockQuantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// GetProduct is public. Products that are not active resolve only for their seller.
func GetProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			serviceUnavailable(w, r, logg, "product")
			return
		}
		productID, err := validators.ParseUUIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		product, err := svc.GetProduct(r.Context(), middleware.UserIDFromContext(r.Context()), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}
