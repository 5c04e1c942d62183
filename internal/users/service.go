package users

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agromart/agromart-backend/pkg/db/models"
	pkgerrors "github.com/agromart/agromart-backend/pkg/errors"
)

type repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) (bool, error)
}

// SessionRevoker drops every live session of a user.
type SessionRevoker interface {
	RevokeUser(ctx context.Context, userID uuid.UUID) error
}

// Service covers the admin-facing user lifecycle.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*UserDTO, error)
	Deactivate(ctx context.Context, actorID, userID uuid.UUID) (*UserDTO, error)
}

type service struct {
	repo     repository
	sessions SessionRevoker
}

func NewService(repo repository, sessions SessionRevoker) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "users repository required")
	}
	return &service{repo: repo, sessions: sessions}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(user), nil
}

func (s *service) Deactivate(ctx context.Context, actorID, userID uuid.UUID) (*UserDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if actorID == userID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cannot deactivate your own account")
	}

	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.IsActive {
		if _, err := s.repo.SetActive(ctx, userID, false); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate user")
		}
		user.IsActive = false
	}

	if s.sessions != nil {
		if err := s.sessions.RevokeUser(ctx, userID); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "revoke user sessions")
		}
	}
	return FromModel(user), nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}
