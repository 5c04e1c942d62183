package address

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agromart/agromart-backend/pkg/db"
	"github.com/agromart/agromart-backend/pkg/db/models"
	pkgerrors "github.com/agromart/agromart-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service manages a user's delivery addresses and their single default.
type Service interface {
	List(ctx context.Context, userID uuid.UUID) ([]AddressDTO, error)
	Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*AddressDTO, error)
	Update(ctx context.Context, userID, id uuid.UUID, input UpdateInput) (*AddressDTO, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	SetDefault(ctx context.Context, userID, id uuid.UUID) (*AddressDTO, error)
}

type service struct {
	repo Repository
	tx   txRunner
}

func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("address repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]AddressDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list addresses")
	}
	out := make([]AddressDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDTO(row))
	}
	return out, nil
}

// Create stores the address. A user's first address becomes the default
// even when isDefault is not requested.
func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateInput) (*AddressDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	country := strings.TrimSpace(input.Country)
	if country == "" {
		country = defaultCountry
	}
	row := &models.Address{
		UserID:       userID,
		Name:         strings.TrimSpace(input.Name),
		Phone:        strings.TrimSpace(input.Phone),
		AddressLine1: strings.TrimSpace(input.AddressLine1),
		AddressLine2: input.AddressLine2,
		City:         strings.TrimSpace(input.City),
		State:        strings.TrimSpace(input.State),
		PostalCode:   strings.TrimSpace(input.PostalCode),
		Country:      country,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		existing, err := repo.CountByUser(ctx, userID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count addresses")
		}
		if err := repo.Create(ctx, row); err != nil {
			if db.IsForeignKeyViolation(err) {
				return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "user not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create address")
		}
		if input.IsDefault || existing == 0 {
			if err := repo.AssignDefault(ctx, userID, row.ID); err != nil {
				return assignDefaultError(err)
			}
			row.IsDefault = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	dto := toDTO(*row)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, userID, id uuid.UUID, input UpdateInput) (*AddressDTO, error) {
	if _, err := s.owned(ctx, s.repo, userID, id); err != nil {
		return nil, err
	}

	var updated *models.Address
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		fields := input.fields()
		if input.IsDefault != nil && !*input.IsDefault {
			fields["is_default"] = false
		}
		if err := repo.Update(ctx, userID, id, fields); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update address")
		}
		if input.IsDefault != nil && *input.IsDefault {
			if err := repo.AssignDefault(ctx, userID, id); err != nil {
				return assignDefaultError(err)
			}
		}
		var err error
		updated, err = s.owned(ctx, repo, userID, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	dto := toDTO(*updated)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := requireIDs(userID, id); err != nil {
		return err
	}
	found, err := s.repo.Delete(ctx, userID, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "address is referenced by an order")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete address")
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
	}
	return nil
}

// SetDefault moves the default flag to id. Unsetting the previous default and
// setting the new one commit together; an address that is already the
// default is returned without a write.
func (s *service) SetDefault(ctx context.Context, userID, id uuid.UUID) (*AddressDTO, error) {
	current, err := s.owned(ctx, s.repo, userID, id)
	if err != nil {
		return nil, err
	}
	if current.IsDefault {
		dto := toDTO(*current)
		return &dto, nil
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).AssignDefault(ctx, userID, id); err != nil {
			return assignDefaultError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	current.IsDefault = true
	dto := toDTO(*current)
	return &dto, nil
}

// assignDefaultError maps a failed default assignment. A unique violation on
// the default index means another request committed a default first.
func assignDefaultError(err error) error {
	switch {
	case db.IsNotFound(err):
		return pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
	case db.IsUniqueViolation(err, defaultIndex):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "default address changed concurrently, retry")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "assign default address")
	}
}

// owned treats addresses of other users as missing.
func (s *service) owned(ctx context.Context, repo Repository, userID, id uuid.UUID) (*models.Address, error) {
	if err := requireIDs(userID, id); err != nil {
		return nil, err
	}
	row, err := repo.FindOwned(ctx, userID, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "address not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load address")
	}
	return row, nil
}

func requireIDs(userID, id uuid.UUID) error {
	if userID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "address id required")
	}
	return nil
}
