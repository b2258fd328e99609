package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	PlanActive    = "active"
	PlanCompleted = "completed"
	PlanDefaulted = "defaulted"
)

const (
	InstallmentPending = "pending"
	InstallmentPaid    = "paid"
	InstallmentLate    = "late"
)

const (
	InstallmentTypeDownPayment = "down_payment"
	InstallmentTypeScheduled   = "installment"
)

// InstallmentPlan is at most one per order. RemainingBalance may dip to -0.01
// from rounding; Status is "completed" exactly when RemainingBalance <= 0.
type InstallmentPlan struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID          uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	CustomerID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	TotalAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DownPayment      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	RemainingBalance decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	NumberOfPayments int             `gorm:"not null"`
	AmountPerPayment decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	// PaymentFrequency: "daily" | "weekly" | "monthly"
	PaymentFrequency string `gorm:"type:varchar(10);not null;default:'monthly'"`
	StartDate        time.Time
	Status           string `gorm:"type:varchar(10);not null;default:'active';index"`
	Notes            *string
	CreatedAt        time.Time
	UpdatedAt        time.Time

	Customer *Customer            `gorm:"foreignKey:CustomerID"`
	Order    *Order               `gorm:"foreignKey:OrderID"`
	Payments []InstallmentPayment `gorm:"foreignKey:InstallmentPlanID"`
}

// InstallmentPayment is payment #0 (down payment, created paid) or a scheduled installment.
type InstallmentPayment struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	InstallmentPlanID uuid.UUID       `gorm:"type:uuid;not null;index"`
	PaymentNumber     int             `gorm:"not null"`
	Amount            decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DueDate           time.Time       `gorm:"index"`
	PaidAt            *time.Time
	Status            string  `gorm:"type:varchar(10);not null;default:'pending'"`
	Type              string  `gorm:"type:varchar(20);not null"`
	Method            *string `gorm:"type:varchar(20)"`
	CreatedAt         time.Time
	UpdatedAt         time.Time

	Plan *InstallmentPlan `gorm:"foreignKey:InstallmentPlanID"`
}
