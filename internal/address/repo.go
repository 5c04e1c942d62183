package address

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agromart/agromart-backend/pkg/db"
	"github.com/agromart/agromart-backend/pkg/db/models"
)

// defaultFlag is the one-default-per-user rule on addresses.
var defaultFlag = db.ExclusiveFlag{
	Table:       "addresses",
	ScopeColumn: "user_id",
	FlagColumn:  "is_default",
}

// defaultIndex is the partial unique index backing defaultFlag.
const defaultIndex = "ux_addresses_user_default"

// Repository persists user addresses.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Address, error)
	FindOwned(ctx context.Context, userID, id uuid.UUID) (*models.Address, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	Create(ctx context.Context, address *models.Address) error
	Update(ctx context.Context, userID, id uuid.UUID, fields map[string]any) error
	Delete(ctx context.Context, userID, id uuid.UUID) (bool, error)
	AssignDefault(ctx context.Context, userID, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// ListByUser returns the default address first, then newest first.
func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Address, error) {
	var rows []models.Address
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC").
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

func (r *repository) FindOwned(ctx context.Context, userID, id uuid.UUID) (*models.Address, error) {
	var address models.Address
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&address).Error; err != nil {
		return nil, err
	}
	return &address, nil
}

func (r *repository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Address{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *repository) Create(ctx context.Context, address *models.Address) error {
	return r.db.WithContext(ctx).Create(address).Error
}

func (r *repository) Update(ctx context.Context, userID, id uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Address{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(fields).Error
}

func (r *repository) Delete(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Address{})
	return res.RowsAffected > 0, res.Error
}

// AssignDefault must run on a transaction-bound repository.
func (r *repository) AssignDefault(ctx context.Context, userID, id uuid.UUID) error {
	return defaultFlag.Assign(r.db.WithContext(ctx), userID, id)
}
