package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	NotifyLowStock   = "low_stock"
	NotifyOutOfStock = "out_of_stock"
	NotifyRestocked  = "restocked"
)

// StockNotification is an alert derived from a variant's quantity.
// At most one unread row per (variant, type): partial unique index idx_stock_notifications_open.
type StockNotification struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VariantID        uuid.UUID `gorm:"type:uuid;not null;index"`
	NotificationType string    `gorm:"type:varchar(20);not null"`
	Message          string    `gorm:"not null"`
	IsRead           bool      `gorm:"not null;default:false"`
	ReadAt           *time.Time
	ReadBy           *uuid.UUID `gorm:"type:uuid"`
	CreatedAt        time.Time  `gorm:"index"`

	Variant *Variant `gorm:"foreignKey:VariantID"`
}
