package model

import (
	"time"

	"github.com/google/uuid"
)

// WalkInName is the display name of the singleton walk-in customer.
const WalkInName = "Walk-in"

// Customer is a buyer. At most one row has IsWalkIn=true (partial unique index).
type Customer struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"not null"`
	Phone     *string
	Email     *string
	IsWalkIn  bool `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
