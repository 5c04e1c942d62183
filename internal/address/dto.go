package address

import (
	"time"

	"github.com/google/uuid"

	"github.com/agromart/agromart-backend/pkg/db/models"
)

const defaultCountry = "Bangladesh"

// CreateInput is the payload for a new address.
type CreateInput struct {
	Name         string  `json:"name" validate:"required,max=120"`
	Phone        string  `json:"phone" validate:"required,min=6,max=20"`
	AddressLine1 string  `json:"addressLine1" validate:"required,max=255"`
	AddressLine2 *string `json:"addressLine2" validate:"omitempty,max=255"`
	City         string  `json:"city" validate:"required,max=100"`
	State        string  `json:"state" validate:"required,max=100"`
	PostalCode   string  `json:"postalCode" validate:"required,max=20"`
	Country      string  `json:"country" validate:"omitempty,max=100"`
	IsDefault    bool    `json:"isDefault"`
}

// UpdateInput changes only the provided fields.
type UpdateInput struct {
	Name         *string `json:"name" validate:"omitempty,min=1,max=120"`
	Phone        *string `json:"phone" validate:"omitempty,min=6,max=20"`
	AddressLine1 *string `json:"addressLine1" validate:"omitempty,min=1,max=255"`
	AddressLine2 *string `json:"addressLine2" validate:"omitempty,max=255"`
	City         *string `json:"city" validate:"omitempty,min=1,max=100"`
	State        *string `json:"state" validate:"omitempty,min=1,max=100"`
	PostalCode   *string `json:"postalCode" validate:"omitempty,min=1,max=20"`
	Country      *string `json:"country" validate:"omitempty,min=1,max=100"`
	IsDefault    *bool   `json:"isDefault"`
}

func (in UpdateInput) fields() map[string]any {
	fields := map[string]any{}
	put := func(column string, value *string) {
		if value != nil {
			fields[column] = *value
		}
	}
	put("name", in.Name)
	put("phone", in.Phone)
	put("address_line1", in.AddressLine1)
	put("address_line2", in.AddressLine2)
	put("city", in.City)
	put("state", in.State)
	put("postal_code", in.PostalCode)
	put("country", in.Country)
	return fields
}

// AddressDTO is the API shape of an address.
type AddressDTO struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone"`
	AddressLine1 string    `json:"addressLine1"`
	AddressLine2 *string   `json:"addressLine2,omitempty"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	PostalCode   string    `json:"postalCode"`
	Country      string    `json:"country"`
	IsDefault    bool      `json:"isDefault"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func toDTO(a models.Address) AddressDTO {
	return AddressDTO{
		ID:           a.ID,
		Name:         a.Name,
		Phone:        a.Phone,
		AddressLine1: a.AddressLine1,
		AddressLine2: a.AddressLine2,
		City:         a.City,
		State:        a.State,
		PostalCode:   a.PostalCode,
		Country:      a.Country,
		IsDefault:    a.IsDefault,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}
