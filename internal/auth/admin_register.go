package auth

import (
	"context"

	"github.com/agromart/agromart-backend/internal/users"
	"github.com/agromart/agromart-backend/pkg/enums"
)

// AdminRegisterRequest contains the credentials for the dev-only admin registration flow.
type AdminRegisterRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
}

// RegisterAdmin seeds an admin account. The route is only mounted in dev;
// no welcome notification is sent and no session is issued.
func (s *service) RegisterAdmin(ctx context.Context, req AdminRegisterRequest) (*users.UserDTO, error) {
	user, err := s.createUser(ctx, users.CreateUserDTO{
		Email: req.Email,
		Name:  req.Name,
		Role:  enums.RoleAdmin,
	}, req.Password)
	if err != nil {
		return nil, err
	}
	return users.FromModel(user), nil
}
