package dto

import "github.com/shopspring/decimal"

type PayInstallmentRequest struct {
	Amount    decimal.Decimal `json:"amount"    validate:"required,gt=0"`
	Method    string          `json:"method"    validate:"required,oneof=cash card transfer"`
	Reference *string         `json:"reference"`
}

type PayInstallmentResponse struct {
	Message   string          `json:"message"`
	Balance   decimal.Decimal `json:"balance"`
	Completed bool            `json:"completed"`
}

type InstallmentPaymentResponse struct {
	ID            string          `json:"id"`
	PaymentNumber int             `json:"payment_number"`
	Amount        decimal.Decimal `json:"amount"`
	DueDate       string          `json:"due_date"`
	PaidAt        *string         `json:"paid_at,omitempty"`
	Status        string          `json:"status"`
	Type          string          `json:"type"`
	Method        *string         `json:"method,omitempty"`
}

type InstallmentPlanResponse struct {
	ID               string                       `json:"id"`
	OrderID          string                       `json:"order_id"`
	CustomerID       string                       `json:"customer_id"`
	Customer         *CustomerResponse            `json:"customer,omitempty"`
	TotalAmount      decimal.Decimal              `json:"total_amount"`
	DownPayment      decimal.Decimal              `json:"down_payment"`
	RemainingBalance decimal.Decimal              `json:"remaining_balance"`
	NumberOfPayments int                          `json:"number_of_payments"`
	AmountPerPayment decimal.Decimal              `json:"amount_per_payment"`
	PaymentFrequency string                       `json:"payment_frequency"`
	StartDate        string                       `json:"start_date"`
	Status           string                       `json:"status"`
	Notes            *string                      `json:"notes,omitempty"`
	Payments         []InstallmentPaymentResponse `json:"payments"`
}

// InstallmentReceiptResponse describes one settled installment for printing.
type InstallmentReceiptResponse struct {
	PaymentID             string           `json:"payment_id"`
	PlanID                string           `json:"plan_id"`
	OrderID               string           `json:"order_id"`
	PaymentNumber         int              `json:"payment_number"`
	AmountPaid            decimal.Decimal  `json:"amount_paid"`
	PaymentMethod         string           `json:"payment_method"`
	PaidAt                *string          `json:"paid_at,omitempty"`
	Customer              CustomerResponse `json:"customer"`
	PaymentFrequency      string           `json:"payment_frequency"`
	NumberOfPayments      int              `json:"number_of_payments"`
	AmountPerPayment      decimal.Decimal  `json:"amount_per_payment"`
	DownPayment           decimal.Decimal  `json:"down_payment"`
	RemainingBalanceAfter decimal.Decimal  `json:"remaining_balance_after"`
}
