package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	OrderPending   = "pending"
	OrderCompleted = "completed"
	OrderCanceled  = "canceled"
)

const (
	PaymentCash        = "cash"
	PaymentCard        = "card"
	PaymentTransfer    = "transfer"
	PaymentCredit      = "credit"
	PaymentInstallment = "installment"
)

// Order is the header of one sale.
// Status: "pending" (installment not yet settled) | "completed" | "canceled"
type Order struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CustomerID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Subtotal      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TaxTotal      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	DiscountTotal decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CouponTotal   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status        string          `gorm:"type:varchar(20);not null;default:'pending';index"`
	AdminID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	// PurchaseType: "in_store" | "online_order"
	PurchaseType string `gorm:"type:varchar(20);not null;default:'in_store'"`
	Note         *string
	CreatedAt    time.Time `gorm:"index"`
	UpdatedAt    time.Time

	Customer        *Customer        `gorm:"foreignKey:CustomerID"`
	Items           []OrderItem      `gorm:"foreignKey:OrderID"`
	Payments        []OrderPayment   `gorm:"foreignKey:OrderID"`
	CreditAccount   *CreditAccount   `gorm:"foreignKey:OrderID"`
	InstallmentPlan *InstallmentPlan `gorm:"foreignKey:OrderID"`
}

// OrderItem is immutable once created.
type OrderItem struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	VariantID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity   int             `gorm:"not null"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalPrice decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt  time.Time

	Variant *Variant `gorm:"foreignKey:VariantID"`
}

// OrderPayment is one payment applied to an order. Meta links installment
// settlements back to their InstallmentPayment row.
type OrderPayment struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Method    string          `gorm:"type:varchar(20);not null"`
	Amount    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Reference *string
	// Status: "paid" | "pending"
	Status    string         `gorm:"type:varchar(20);not null;default:'paid'"`
	Meta      datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt time.Time
}

// PaymentMeta is the shape stored in OrderPayment.Meta for installment settlements.
type PaymentMeta struct {
	InstallmentPaymentID uuid.UUID `json:"installment_payment_id"`
	RecordedBy           uuid.UUID `json:"recorded_by"`
}
