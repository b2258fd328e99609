package service

import (
	"time"

	"github.com/Qodebyte-Pro-Services/bmt.api/internal/dto"
	"github.com/Qodebyte-Pro-Services/bmt.api/internal/model"
)

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}

func customerToResponse(c *model.Customer) *dto.CustomerResponse {
	if c == nil {
		return nil
	}
	return &dto.CustomerResponse{
		ID:       c.ID.String(),
		Name:     c.Name,
		Phone:    c.Phone,
		Email:    c.Email,
		IsWalkIn: c.IsWalkIn,
	}
}

func orderToResponse(o *model.Order) *dto.SaleResponse {
	resp := &dto.SaleResponse{
		ID:            o.ID.String(),
		Status:        o.Status,
		PurchaseType:  o.PurchaseType,
		Subtotal:      o.Subtotal,
		TaxTotal:      o.TaxTotal,
		DiscountTotal: o.DiscountTotal,
		CouponTotal:   o.CouponTotal,
		TotalAmount:   o.TotalAmount,
		AdminID:       o.AdminID.String(),
		Note:          o.Note,
		Customer:      customerToResponse(o.Customer),
		Items:         make([]dto.SaleItemResponse, 0, len(o.Items)),
		Payments:      make([]dto.SalePaymentResponse, 0, len(o.Payments)),
		CreatedAt:     o.CreatedAt.Format(time.RFC3339),
	}
	for _, it := range o.Items {
		item := dto.SaleItemResponse{
			ID:         it.ID.String(),
			VariantID:  it.VariantID.String(),
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			TotalPrice: it.TotalPrice,
		}
		if it.Variant != nil {
			item.SKU = it.Variant.SKU
		}
		resp.Items = append(resp.Items, item)
	}
	for _, p := range o.Payments {
		resp.Payments = append(resp.Payments, dto.SalePaymentResponse{
			ID:        p.ID.String(),
			Method:    p.Method,
			Amount:    p.Amount,
			Reference: p.Reference,
			Status:    p.Status,
			CreatedAt: p.CreatedAt.Format(time.RFC3339),
		})
	}
	if ca := o.CreditAccount; ca != nil {
		resp.CreditAccount = &dto.CreditAccountResponse{
			ID:          ca.ID.String(),
			CreditType:  ca.CreditType,
			TotalAmount: ca.TotalAmount,
			AmountPaid:  ca.AmountPaid,
			Balance:     ca.Balance,
			Status:      ca.Status,
		}
	}
	if o.InstallmentPlan != nil {
		resp.InstallmentPlan = planToResponse(o.InstallmentPlan)
	}
	return resp
}

func planToResponse(p *model.InstallmentPlan) *dto.InstallmentPlanResponse {
	resp := &dto.InstallmentPlanResponse{
		ID:               p.ID.String(),
		OrderID:          p.OrderID.String(),
		CustomerID:       p.CustomerID.String(),
		Customer:         customerToResponse(p.Customer),
		TotalAmount:      p.TotalAmount,
		DownPayment:      p.DownPayment,
		RemainingBalance: p.RemainingBalance,
		NumberOfPayments: p.NumberOfPayments,
		AmountPerPayment: p.AmountPerPayment,
		PaymentFrequency: p.PaymentFrequency,
		StartDate:        p.StartDate.Format(dateLayout),
		Status:           p.Status,
		Notes:            p.Notes,
		Payments:         make([]dto.InstallmentPaymentResponse, 0, len(p.Payments)),
	}
	for _, ip := range p.Payments {
		resp.Payments = append(resp.Payments, dto.InstallmentPaymentResponse{
			ID:            ip.ID.String(),
			PaymentNumber: ip.PaymentNumber,
			Amount:        ip.Amount,
			DueDate:       ip.DueDate.Format(dateLayout),
			PaidAt:        formatTime(ip.PaidAt),
			Status:        ip.Status,
			Type:          ip.Type,
			Method:        ip.Method,
		})
	}
	return resp
}
