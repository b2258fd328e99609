package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	CreditFull    = "full"
	CreditPartial = "partial"
)

// CreditAccount tracks the unpaid part of a credit sale. One per order.
// Balance is fixed at sale time; there is no settlement flow yet.
type CreditAccount struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	CustomerID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	AmountPaid  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Balance     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreditType  string          `gorm:"type:varchar(10);not null"`
	// Status: "open" | "settled"
	Status    string `gorm:"type:varchar(10);not null;default:'open'"`
	IssuedAt  time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
