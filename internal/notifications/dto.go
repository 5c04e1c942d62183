package notifications

import (
	"time"

	"github.com/google/uuid"

	"github.com/agromart/agromart-backend/pkg/db/models"
	"github.com/agromart/agromart-backend/pkg/enums"
	"github.com/agromart/agromart-backend/pkg/pagination"
	"github.com/agromart/agromart-backend/pkg/types"
)

// NotificationDTO is the API shape of a notification row.
type NotificationDTO struct {
	ID        uuid.UUID               `json:"id"`
	UserID    uuid.UUID               `json:"userId"`
	Type      enums.NotificationType  `json:"type"`
	Title     string                  `json:"title"`
	Message   string                  `json:"message"`
	Data      *types.NotificationData `json:"data,omitempty"`
	IsRead    bool                    `json:"isRead"`
	ReadAt    *time.Time              `json:"readAt,omitempty"`
	CreatedAt time.Time               `json:"createdAt"`
}

// ListResult is one page of a user's notifications.
type ListResult struct {
	Notifications []NotificationDTO `json:"notifications"`
	UnreadCount   int64             `json:"unreadCount"`
	Pagination    pagination.Page   `json:"pagination"`
}

// ListParams carries the raw listing inputs; zero values take defaults.
type ListParams struct {
	UserID uuid.UUID
	Page   int
	Limit  int
	Filter string
}

// CreateInput describes a single notification.
type CreateInput struct {
	UserID  uuid.UUID
	Type    enums.NotificationType
	Title   string
	Message string
	Data    *types.NotificationData
}

// BulkInput describes one notification fanned out to many users.
type BulkInput struct {
	UserIDs []uuid.UUID
	Type    enums.NotificationType
	Title   string
	Message string
	Data    *types.NotificationData
}

// PreferencesDTO exposes the per-type in-app toggles.
type PreferencesDTO struct {
	OrderPlaced bool `json:"orderPlaced"`
	OrderStatus bool `json:"orderStatus"`
	NewProduct  bool `json:"newProduct"`
	LowStock    bool `json:"lowStock"`
	Welcome     bool `json:"welcome"`
}

// UpdatePreferencesInput changes only the toggles that are set.
type UpdatePreferencesInput struct {
	OrderPlaced *bool `json:"orderPlaced"`
	OrderStatus *bool `json:"orderStatus"`
	NewProduct  *bool `json:"newProduct"`
	LowStock    *bool `json:"lowStock"`
	Welcome     *bool `json:"welcome"`
}

func (in UpdatePreferencesInput) apply(pref *models.NotificationPreference) {
	set := func(dst *bool, src *bool) {
		if src != nil {
			*dst = *src
		}
	}
	set(&pref.OrderPlaced, in.OrderPlaced)
	set(&pref.OrderStatus, in.OrderStatus)
	set(&pref.NewProduct, in.NewProduct)
	set(&pref.LowStock, in.LowStock)
	set(&pref.Welcome, in.Welcome)
}

func toDTO(n models.Notification) NotificationDTO {
	return NotificationDTO{
		ID:        n.ID,
		UserID:    n.UserID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Data:      n.Data,
		IsRead:    n.IsRead,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}

func toPreferencesDTO(p models.NotificationPreference) PreferencesDTO {
	return PreferencesDTO{
		OrderPlaced: p.OrderPlaced,
		OrderStatus: p.OrderStatus,
		NewProduct:  p.NewProduct,
		LowStock:    p.LowStock,
		Welcome:     p.Welcome,
	}
}
