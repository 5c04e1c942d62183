package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/agromart/agromart-backend/pkg/enums"
	"github.com/agromart/agromart-backend/pkg/types"
)

// Notification stores in-app notifications scoped to a single user.
type Notification struct {
	ID        uuid.UUID               `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID               `gorm:"type:uuid;not null"`
	Type      enums.NotificationType  `gorm:"type:notification_type;not null"`
	Title     string                  `gorm:"type:text;not null"`
	Message   string                  `gorm:"type:text;not null"`
	Data      *types.NotificationData `gorm:"type:jsonb;serializer:json"`
	IsRead    bool                    `gorm:"not null;default:false"`
	ReadAt    *time.Time              `gorm:"type:timestamptz"`
	CreatedAt time.Time               `gorm:"type:timestamptz;default:now()"`
}

func (n *Notification) BeforeCreate(*gorm.DB) error {
	ensureID(&n.ID)
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	return nil
}
