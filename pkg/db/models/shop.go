package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Shop belongs to exactly one owner.
type Shop struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID     uuid.UUID       `gorm:"column:owner_id;type:uuid;not null;uniqueIndex"`
	Name        string          `gorm:"column:name;not null"`
	Description *string         `gorm:"column:description"`
	IsVerified  bool            `gorm:"column:is_verified;not null;default:false"`
	Rating      decimal.Decimal `gorm:"column:rating;type:numeric(3,2);not null;default:0"`
	ReviewCount int             `gorm:"column:review_count;not null;default:0"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *Shop) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ID)
	return nil
}
