package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	LogRestock    = "restock"
	LogSale       = "sale"
	LogAdjustment = "adjustment"
)

const (
	ReasonIncrease = "increase"
	ReasonDecrease = "decrease"
)

// InventoryLog records every quantity change on a variant.
// Rows are append-only: never updated, never deleted while the variant exists.
type InventoryLog struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	VariantID uuid.UUID `gorm:"type:uuid;not null;index"`
	Type      string    `gorm:"type:varchar(20);not null;index"`
	// Quantity is the signed delta (negative for sales).
	Quantity       int    `gorm:"not null"`
	QuantityBefore int    `gorm:"not null"`
	QuantityAfter  int    `gorm:"not null"`
	Reason         string `gorm:"type:varchar(10);not null"`
	Note           *string
	RecordedBy     uuid.UUID `gorm:"type:uuid;not null"`
	CreatedAt      time.Time `gorm:"index"`

	Variant       *Variant `gorm:"foreignKey:VariantID"`
	RecordedByRef *Admin   `gorm:"foreignKey:RecordedBy"`
}
