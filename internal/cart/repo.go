package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/agromart/agromart-backend/pkg/db/models"
	"github.com/agromart/agromart-backend/pkg/enums"
)

// Repository defines the persistence surface required by the cart service.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.CartItem, error)
	FindByUserProduct(ctx context.Context, userID, productID uuid.UUID) (*models.CartItem, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error)
	Create(ctx context.Context, item *models.CartItem) error
	UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) error
	Delete(ctx context.Context, id uuid.UUID) error
	ClearUser(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteForArchivedProducts(ctx context.Context) (int64, error)
	LockProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error)
}

// CartItemRepository manages persistent cart lines.
type CartItemRepository struct {
	db *gorm.DB
}

// NewRepository binds the repository to the provided DB handle.
func NewRepository(db *gorm.DB) *CartItemRepository {
	return &CartItemRepository{db: db}
}

// WithTx scopes the repository to the provided transaction.
func (r *CartItemRepository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &CartItemRepository{db: tx}
}

func (r *CartItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	if err := r.db.WithContext(ctx).Preload("Product").First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *CartItemRepository) FindByUserProduct(ctx context.Context, userID, productID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ListByUser returns the user's lines with their products, oldest first.
func (r *CartItemRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	var items []models.CartItem
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&items).Error
	return items, err
}

func (r *CartItemRepository) Create(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(item).Error
}

func (r *CartItemRepository) UpdateQuantity(ctx context.Context, id uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", id).
		Update("quantity", quantity).Error
}

func (r *CartItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.CartItem{}).Error
}

func (r *CartItemRepository) ClearUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{})
	return res.RowsAffected, res.Error
}

// DeleteForArchivedProducts drops lines whose product can never be bought again.
func (r *CartItemRepository) DeleteForArchivedProducts(ctx context.Context) (int64, error) {
	archived := r.db.Model(&models.Product{}).Select("id").Where("status = ?", enums.ProductStatusArchived)
	res := r.db.WithContext(ctx).
		Where("product_id IN (?)", archived).
		Delete(&models.CartItem{})
	return res.RowsAffected, res.Error
}

// LockProduct loads the product row with FOR UPDATE on dialects that support it.
func (r *CartItemRepository) LockProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	q := r.db.WithContext(ctx)
	if q.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := q.First(&product, "id = ?", productID).Error; err != nil {
		return nil, err
	}
	return &product, nil
}
