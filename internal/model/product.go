package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product groups sellable variants. Threshold is the product-wide reorder point
// used when a variant has none of its own.
type Product struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"index;not null"`
	Brand     *string
	Unit      string `gorm:"not null;default:'unit'"`
	Threshold *int
	CreatedAt time.Time
	UpdatedAt time.Time

	Variants []Variant `gorm:"foreignKey:ProductID"`
}

// Variant is a sellable SKU. Quantity is materialized from InventoryLog rows and
// must never go negative (enforced by a CHECK constraint as well).
type Variant struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProductID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	SKU          string          `gorm:"column:sku;uniqueIndex;not null"`
	Barcode      *string         `gorm:"uniqueIndex"`
	CostPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	SellingPrice decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Quantity     int             `gorm:"not null;default:0"`
	// Threshold overrides Product.Threshold when set.
	Threshold *int
	IsActive  bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}

// EffectiveThreshold resolves the reorder point: variant, then product, then fallback.
func (v *Variant) EffectiveThreshold(fallback int) int {
	if v.Threshold != nil && *v.Threshold > 0 {
		return *v.Threshold
	}
	if v.Product != nil && v.Product.Threshold != nil && *v.Product.Threshold > 0 {
		return *v.Product.Threshold
	}
	return fallback
}

// DisplayName is "<product name> (<sku>)", or just the SKU when the product is not loaded.
func (v *Variant) DisplayName() string {
	if v.Product == nil || v.Product.Name == "" {
		return v.SKU
	}
	return v.Product.Name + " (" + v.SKU + ")"
}
