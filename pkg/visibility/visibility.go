package visibility

import (
	"github.com/google/uuid"

	"github.com/agromart/agromart-backend/pkg/db/models"
	"github.com/agromart/agromart-backend/pkg/enums"
	pkgerrors "github.com/agromart/agromart-backend/pkg/errors"
)

// EnsurePurchasable rejects products that cannot be added to a cart or ordered.
func EnsurePurchasable(product *models.Product) error {
	if product == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if product.Status != enums.ProductStatusActive {
		return pkgerrors.New(pkgerrors.CodeValidation, "product is not available for purchase").WithDetails(map[string]any{
			"product_id": product.ID,
			"status":     product.Status,
		})
	}
	return nil
}

// EnsureVisible hides non-active products from everyone except their seller.
// Unpublished listings surface as not found so their existence does not leak.
func EnsureVisible(product *models.Product, viewerID uuid.UUID) error {
	if product == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	if product.Status == enums.ProductStatusActive {
		return nil
	}
	if viewerID != uuid.Nil && product.SellerID == viewerID {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
}
