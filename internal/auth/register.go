package auth

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/agromart/agromart-backend/internal/users"
	"github.com/agromart/agromart-backend/pkg/db"
	"github.com/agromart/agromart-backend/pkg/db/models"
	"github.com/agromart/agromart-backend/pkg/enums"
	pkgerrors "github.com/agromart/agromart-backend/pkg/errors"
)

const emailUniqueConstraint = "users_email_key"

// Register creates an active account for one of the self-registrable roles,
// greets the user and signs them in.
func (s *service) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	role := req.Role
	if role == "" {
		role = enums.RoleCustomer
	}
	if !role.SelfRegistrable() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "role cannot be self-registered").
			WithDetails(map[string]any{"role": role})
	}

	user, err := s.createUser(ctx, users.CreateUserDTO{
		Email: req.Email,
		Name:  req.Name,
		Phone: trimmedPtr(req.Phone),
		Role:  role,
	}, req.Password)
	if err != nil {
		return nil, err
	}

	if s.welcome != nil {
		if err := s.welcome.Welcome(ctx, user.ID, user.Name, user.Role); err != nil {
			s.logg.Error(s.logg.WithUserID(ctx, user.ID.String()), "welcome notification failed", err)
		}
	}

	return s.issue(ctx, user, s.now())
}

// createUser hashes the password and inserts the row. Both the pre-check and
// the unique constraint map a taken email to CONFLICT.
func (s *service) createUser(ctx context.Context, dto users.CreateUserDTO, password string) (*models.User, error) {
	dto.Email = normalizeEmail(dto.Email)
	if dto.Email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	dto.Name = strings.TrimSpace(dto.Name)
	if dto.Name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	if _, err := s.users.FindByEmail(ctx, dto.Email); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check user email")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	dto.PasswordHash = hash

	user, err := s.users.Create(ctx, dto)
	if err != nil {
		if db.IsUniqueViolation(err, emailUniqueConstraint) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}
	return user, nil
}

func trimmedPtr(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
