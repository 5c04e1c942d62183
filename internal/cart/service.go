package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agromart/agromart-backend/pkg/checkout"
	"github.com/agromart/agromart-backend/pkg/db"
	"github.com/agromart/agromart-backend/pkg/db/models"
	pkgerrors "github.com/agromart/agromart-backend/pkg/errors"
	"github.com/agromart/agromart-backend/pkg/visibility"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service keeps server-side cart lines consistent with product bounds.
type Service interface {
	List(ctx context.Context, userID uuid.UUID) (*CartDTO, error)
	Add(ctx context.Context, userID uuid.UUID, input AddInput) (*CartItemDTO, error)
	SetQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*CartItemDTO, error)
	Remove(ctx context.Context, userID, itemID uuid.UUID) error
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cart")
	}
	return toCartDTO(items), nil
}

// Add creates the line for (user, product) or grows the existing one. The
// bounds apply to the resulting quantity.
func (s *service) Add(ctx context.Context, userID uuid.UUID, input AddInput) (*CartItemDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if input.Quantity <= 0 {
		return nil, checkout.ValidateQuantity(checkout.QuantityInput{ProductID: input.ProductID, Quantity: input.Quantity})
	}

	var result models.CartItem
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		product, err := repo.LockProduct(ctx, input.ProductID)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		if err := visibility.EnsurePurchasable(product); err != nil {
			return err
		}

		existing, err := repo.FindByUserProduct(ctx, userID, input.ProductID)
		if err != nil && !db.IsNotFound(err) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart line")
		}

		quantity := input.Quantity
		if existing != nil {
			quantity += existing.Quantity
		}
		if err := checkout.ValidateQuantity(quantityInput(product, quantity)); err != nil {
			return err
		}

		if existing == nil {
			result = models.CartItem{UserID: userID, ProductID: product.ID, Quantity: quantity}
			if err := repo.Create(ctx, &result); err != nil {
				if db.IsUniqueViolation(err, "cart_items_user_product_key") {
					return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "cart line was modified concurrently, retry")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart line")
			}
		} else {
			if err := repo.UpdateQuantity(ctx, existing.ID, quantity); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart line")
			}
			result = *existing
			result.Quantity = quantity
		}
		result.Product = product
		return nil
	})
	if err != nil {
		return nil, err
	}
	dto := toItemDTO(result)
	return &dto, nil
}

// SetQuantity re-validates against the product as it is now, not as it was
// when the line was added.
func (s *service) SetQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*CartItemDTO, error) {
	item, err := s.owned(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, checkout.ValidateQuantity(checkout.QuantityInput{ProductID: item.ProductID, Quantity: quantity})
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		product, err := repo.LockProduct(ctx, item.ProductID)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		if err := visibility.EnsurePurchasable(product); err != nil {
			return err
		}
		if err := checkout.ValidateQuantity(quantityInput(product, quantity)); err != nil {
			return err
		}
		if err := repo.UpdateQuantity(ctx, item.ID, quantity); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart line")
		}
		item.Quantity = quantity
		item.Product = product
		return nil
	})
	if err != nil {
		return nil, err
	}
	dto := toItemDTO(*item)
	return &dto, nil
}

func (s *service) Remove(ctx context.Context, userID, itemID uuid.UUID) error {
	item, err := s.owned(ctx, userID, itemID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, item.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove cart line")
	}
	return nil
}

// owned loads a cart line and checks it belongs to userID. A missing line is
// NotFound; a line owned by someone else is Forbidden.
func (s *service) owned(ctx context.Context, userID, itemID uuid.UUID) (*models.CartItem, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if itemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart item id required")
	}
	item, err := s.repo.FindByID(ctx, itemID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart line")
	}
	if item.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "cart item belongs to another user")
	}
	return item, nil
}
