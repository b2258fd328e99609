package dto

import "github.com/shopspring/decimal"

// CustomerInput creates a customer inline with the sale. IsWalkIn (or the name
// "Walk-in") attaches the sale to the singleton walk-in customer instead.
type CustomerInput struct {
	Name     string  `json:"name"`
	Phone    *string `json:"phone"`
	Email    *string `json:"email" validate:"omitempty,email"`
	IsWalkIn bool    `json:"is_walk_in"`
}

// AmountLine is a named per-item tax, discount or coupon.
type AmountLine struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount" validate:"min=0"`
}

type SaleItemRequest struct {
	VariantID string          `json:"variant_id" validate:"required,uuid"`
	Quantity  int             `json:"quantity"   validate:"required,gt=0"`
	UnitPrice decimal.Decimal `json:"unit_price" validate:"min=0"`
	// TotalPrice overrides UnitPrice*Quantity when present and non-zero.
	TotalPrice *decimal.Decimal `json:"total_price" validate:"omitempty,min=0"`
	Taxes      []AmountLine     `json:"taxes"     validate:"dive"`
	Discounts  []AmountLine     `json:"discounts" validate:"dive"`
	Coupons    []AmountLine     `json:"coupons"   validate:"dive"`
}

type SalePaymentRequest struct {
	Method    string          `json:"method"    validate:"required,oneof=cash card transfer credit installment"`
	Amount    decimal.Decimal `json:"amount"    validate:"min=0"`
	Reference *string         `json:"reference"`
}

type CreditRequest struct {
	Type string `json:"type" validate:"required"`
}

type InstallmentRequest struct {
	DownPayment      decimal.Decimal `json:"down_payment"       validate:"min=0"`
	NumberOfPayments int             `json:"number_of_payments"`
	PaymentFrequency string          `json:"payment_frequency"  validate:"omitempty,oneof=daily weekly monthly"`
	// StartDate is YYYY-MM-DD; defaults to the sale date.
	StartDate *string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	Notes     *string `json:"notes"`
}

// CreateSaleRequest is the payload for POST /v1/sales.
type CreateSaleRequest struct {
	CustomerID   *string              `json:"customer_id" validate:"omitempty,uuid"`
	Customer     *CustomerInput       `json:"customer"`
	Items        []SaleItemRequest    `json:"items"    validate:"dive"`
	Payments     []SalePaymentRequest `json:"payments" validate:"dive"`
	Credit       *CreditRequest       `json:"credit"`
	Installment  *InstallmentRequest  `json:"installment"`
	Taxes        decimal.Decimal      `json:"taxes"    validate:"min=0"`
	Discount     decimal.Decimal      `json:"discount" validate:"min=0"`
	Coupon       decimal.Decimal      `json:"coupon"   validate:"min=0"`
	PurchaseType string               `json:"purchase_type" validate:"omitempty,oneof=in_store online_order"`
	Note         *string              `json:"note"`
}

type CustomerResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Phone    *string `json:"phone,omitempty"`
	Email    *string `json:"email,omitempty"`
	IsWalkIn bool    `json:"is_walk_in"`
}

type SaleItemResponse struct {
	ID         string          `json:"id"`
	VariantID  string          `json:"variant_id"`
	SKU        string          `json:"sku,omitempty"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

type SalePaymentResponse struct {
	ID        string          `json:"id"`
	Method    string          `json:"method"`
	Amount    decimal.Decimal `json:"amount"`
	Reference *string         `json:"reference,omitempty"`
	Status    string          `json:"status"`
	CreatedAt string          `json:"created_at"`
}

type CreditAccountResponse struct {
	ID          string          `json:"id"`
	CreditType  string          `json:"credit_type"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	AmountPaid  decimal.Decimal `json:"amount_paid"`
	Balance     decimal.Decimal `json:"balance"`
	Status      string          `json:"status"`
}

// SaleResponse is the fully hydrated order.
type SaleResponse struct {
	ID              string                   `json:"id"`
	Status          string                   `json:"status"`
	PurchaseType    string                   `json:"purchase_type"`
	Subtotal        decimal.Decimal          `json:"subtotal"`
	TaxTotal        decimal.Decimal          `json:"tax_total"`
	DiscountTotal   decimal.Decimal          `json:"discount_total"`
	CouponTotal     decimal.Decimal          `json:"coupon_total"`
	TotalAmount     decimal.Decimal          `json:"total_amount"`
	AdminID         string                   `json:"admin_id"`
	Note            *string                  `json:"note,omitempty"`
	Customer        *CustomerResponse        `json:"customer,omitempty"`
	Items           []SaleItemResponse       `json:"items"`
	Payments        []SalePaymentResponse    `json:"payments"`
	CreditAccount   *CreditAccountResponse   `json:"credit_account,omitempty"`
	InstallmentPlan *InstallmentPlanResponse `json:"installment_plan,omitempty"`
	CreatedAt       string                   `json:"created_at"`
}

// SaleFilter drives GET /v1/sales. Period: today | week | month | year | custom.
type SaleFilter struct {
	Period    string `form:"filter"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
	Page      int    `form:"page"`
	Limit     int    `form:"limit"`
}

type SaleListResponse struct {
	Data       []SaleResponse `json:"data"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	TotalPages int            `json:"total_pages"`
}
