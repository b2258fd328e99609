package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Qodebyte-Pro-Services/bmt.api/internal/apierror"
	"github.com/Qodebyte-Pro-Services/bmt.api/internal/dto"
	"github.com/Qodebyte-Pro-Services/bmt.api/internal/model"
	"github.com/Qodebyte-Pro-Services/bmt.api/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	defaultSaleLimit = 20
	maxSaleLimit     = 100
)

type SaleService interface {
	CreateSale(ctx context.Context, adminID uuid.UUID, req dto.CreateSaleRequest) (*dto.SaleResponse, error)
	GetSale(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error)
	ListSales(ctx context.Context, adminID uuid.UUID, filter dto.SaleFilter) (*dto.SaleListResponse, error)
}

type saleService struct {
	orders       repository.OrderRepository
	customers    repository.CustomerRepository
	credits      repository.CreditAccountRepository
	installments repository.InstallmentRepository
	ledger       stockLedger
	watcher      StockWatcher
	now          func() time.Time
}

func NewSaleService(
	orders repository.OrderRepository,
	customers repository.CustomerRepository,
	credits repository.CreditAccountRepository,
	installments repository.InstallmentRepository,
	variants repository.VariantRepository,
	logs repository.InventoryLogRepository,
	watcher StockWatcher,
) SaleService {
	return &saleService{
		orders:       orders,
		customers:    customers,
		credits:      credits,
		installments: installments,
		ledger:       stockLedger{variants: variants, logs: logs},
		watcher:      watcher,
		now:          time.Now,
	}
}

// saleQuote is the priced, validated form of a CreateSaleRequest.
type saleQuote struct {
	lines    []quotedLine
	subtotal decimal.Decimal
	tax      decimal.Decimal
	discount decimal.Decimal
	coupon   decimal.Decimal
	total    decimal.Decimal
	paid     decimal.Decimal
}

type quotedLine struct {
	saleLine
	unitPrice  decimal.Decimal
	totalPrice decimal.Decimal
}

func (q *saleQuote) stockLines() []saleLine {
	out := make([]saleLine, len(q.lines))
	for i, l := range q.lines {
		out[i] = l.saleLine
	}
	return out
}

// ── CreateSale ────────────────────────────────────────────────────────────────
// Single transaction:
//   1. price items and validate the payment mode (no I/O)
//   2. resolve or create the customer
//   3. lock variants (ascending id) and check stock for every line
//   4. create order + items + payments, then credit account if any
//   5. decrement stock now, or create the installment plan and defer it
// Post-commit: hand touched variants to the stock watcher.

func (s *saleService) CreateSale(ctx context.Context, adminID uuid.UUID, req dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	q, err := quoteSale(req)
	if err != nil {
		return nil, err
	}

	order := model.Order{
		ID:            uuid.New(),
		Subtotal:      q.subtotal,
		TaxTotal:      q.tax,
		DiscountTotal: q.discount,
		CouponTotal:   q.coupon,
		TotalAmount:   q.total,
		Status:        model.OrderCompleted,
		AdminID:       adminID,
		PurchaseType:  "in_store",
		Note:          req.Note,
	}
	if req.PurchaseType != "" {
		order.PurchaseType = req.PurchaseType
	}
	if req.Installment != nil {
		order.Status = model.OrderPending
	}
	for _, l := range q.lines {
		order.Items = append(order.Items, model.OrderItem{
			VariantID:  l.variantID,
			Quantity:   l.quantity,
			UnitPrice:  l.unitPrice,
			TotalPrice: l.totalPrice,
		})
	}
	for _, p := range req.Payments {
		order.Payments = append(order.Payments, model.OrderPayment{
			Method:    p.Method,
			Amount:    round2(p.Amount),
			Reference: p.Reference,
			Status:    "paid",
		})
	}

	var touched []uuid.UUID
	txErr := runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		customer, err := s.resolveCustomerTx(tx, req)
		if err != nil {
			return err
		}
		order.CustomerID = customer.ID

		lines := q.stockLines()
		var locked map[uuid.UUID]*model.Variant
		if req.Installment == nil {
			locked, err = s.ledger.lockVariantsTx(tx, lines)
			if err != nil {
				return err
			}
			if _, err := ensureAvailable(lines, locked); err != nil {
				return err
			}
		} else if err := s.ensureVariantsExistTx(tx, lines); err != nil {
			return err
		}

		if err := s.orders.CreateTx(tx, &order); err != nil {
			return err
		}

		if req.Credit != nil {
			account := &model.CreditAccount{
				OrderID:     order.ID,
				CustomerID:  customer.ID,
				TotalAmount: q.total,
				AmountPaid:  q.paid,
				Balance:     round2(q.total.Sub(q.paid)),
				CreditType:  req.Credit.Type,
				Status:      "open",
				IssuedAt:    s.now(),
			}
			if err := s.credits.CreateTx(tx, account); err != nil {
				return err
			}
		}

		if req.Installment != nil {
			plan := buildInstallmentPlan(&order, req, q, s.now())
			return s.installments.CreatePlanTx(tx, plan)
		}

		note := "CASH_ORDER_" + order.ID.String()
		if req.Credit != nil {
			note = "CREDIT_ORDER_" + order.ID.String()
		}
		touched, err = s.ledger.decrementTx(tx, lines, locked, adminID, note)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	notifyStock(ctx, s.watcher, touched)

	full, err := s.orders.LoadWithDetails(ctx, order.ID)
	if err != nil {
		log.Error().Err(err).Str("order_id", order.ID.String()).Msg("sales: reload created order")
		return orderToResponse(&order), nil
	}
	return orderToResponse(full), nil
}

// quoteSale prices every line and checks the payment mode. It performs no I/O.
func quoteSale(req dto.CreateSaleRequest) (*saleQuote, error) {
	if len(req.Items) == 0 {
		return nil, apierror.Invalid("Sale must contain at least one item")
	}
	if req.Credit != nil && req.Installment != nil {
		return nil, apierror.Invalid("A sale cannot be both credit and installment")
	}

	q := &saleQuote{
		tax:      req.Taxes,
		discount: req.Discount,
		coupon:   req.Coupon,
	}
	for _, item := range req.Items {
		id, err := parseID(item.VariantID, "variant_id")
		if err != nil {
			return nil, err
		}
		if item.Quantity <= 0 {
			return nil, apierror.Invalid("Item quantity must be greater than zero")
		}

		lineTotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		if item.TotalPrice != nil && !item.TotalPrice.IsZero() {
			lineTotal = *item.TotalPrice
		}
		lineTotal = round2(lineTotal)
		if lineTotal.IsNegative() {
			return nil, apierror.Invalid("Item total cannot be negative")
		}
		q.subtotal = q.subtotal.Add(lineTotal)

		for _, t := range item.Taxes {
			q.tax = q.tax.Add(t.Amount)
		}
		for _, d := range item.Discounts {
			q.discount = q.discount.Add(d.Amount)
		}
		for _, c := range item.Coupons {
			q.coupon = q.coupon.Add(c.Amount)
		}

		q.lines = append(q.lines, quotedLine{
			saleLine:   saleLine{variantID: id, quantity: item.Quantity},
			unitPrice:  round2(item.UnitPrice),
			totalPrice: lineTotal,
		})
	}

	q.subtotal = round2(q.subtotal)
	q.tax = round2(q.tax)
	q.discount = round2(q.discount)
	q.coupon = round2(q.coupon)
	q.total = round2(q.subtotal.Add(q.tax).Sub(q.discount).Sub(q.coupon))
	if q.total.IsNegative() {
		return nil, apierror.Invalid("Sale total cannot be negative")
	}
	for _, p := range req.Payments {
		q.paid = q.paid.Add(round2(p.Amount))
	}
	q.paid = round2(q.paid)

	switch {
	case req.Installment != nil:
		down := round2(req.Installment.DownPayment)
		if !q.paid.Equal(down) {
			return nil, apierror.Invalid("Down payment mismatch")
		}
		if req.Installment.NumberOfPayments <= 1 {
			return nil, apierror.Invalid("Invalid installment count")
		}
		// Every scheduled installment must be at least 0.01.
		if down.GreaterThanOrEqual(q.total) {
			return nil, apierror.Invalid("Down payment must be less than total")
		}
		scheduled := decimal.NewFromInt(int64(req.Installment.NumberOfPayments - 1))
		if q.total.Sub(down).Div(scheduled).RoundFloor(2).IsZero() {
			return nil, apierror.Invalid("Installment amount too small")
		}
		if req.Installment.StartDate != nil {
			if _, err := time.Parse(dateLayout, *req.Installment.StartDate); err != nil {
				return nil, apierror.Invalid("Invalid installment start_date")
			}
		}
	case req.Credit != nil:
		switch req.Credit.Type {
		case model.CreditFull:
			if q.paid.IsPositive() {
				return nil, apierror.Invalid("Full credit cannot have upfront payment")
			}
		case model.CreditPartial:
			if q.paid.GreaterThanOrEqual(q.total) {
				return nil, apierror.Invalid("Partial credit must be less than total")
			}
		default:
			return nil, apierror.Invalid("Invalid credit type")
		}
	default:
		if !q.paid.Equal(q.total) {
			return nil, apierror.Invalidf("Payment mismatch (Expected %s, Paid %s)",
				q.total.StringFixed(2), q.paid.StringFixed(2))
		}
	}
	return q, nil
}

// buildInstallmentPlan lays out payment #0 (the down payment, already paid)
// and payments 1..N-1, due start+i calendar months.
func buildInstallmentPlan(order *model.Order, req dto.CreateSaleRequest, q *saleQuote, now time.Time) *model.InstallmentPlan {
	in := req.Installment
	down := round2(in.DownPayment)
	remaining := round2(q.total.Sub(down))
	amounts := splitInstallments(remaining, in.NumberOfPayments-1)

	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if in.StartDate != nil {
		if t, err := time.ParseInLocation(dateLayout, *in.StartDate, now.Location()); err == nil {
			start = t
		}
	}
	frequency := in.PaymentFrequency
	if frequency == "" {
		frequency = "monthly"
	}
	method := model.PaymentCash
	if len(req.Payments) > 0 {
		method = req.Payments[0].Method
	}

	paidAt := now
	plan := &model.InstallmentPlan{
		OrderID:          order.ID,
		CustomerID:       order.CustomerID,
		TotalAmount:      q.total,
		DownPayment:      down,
		RemainingBalance: remaining,
		NumberOfPayments: in.NumberOfPayments,
		AmountPerPayment: amounts[0],
		PaymentFrequency: frequency,
		StartDate:        start,
		Status:           model.PlanActive,
		Notes:            in.Notes,
	}
	plan.Payments = append(plan.Payments, model.InstallmentPayment{
		PaymentNumber: 0,
		Amount:        down,
		DueDate:       start,
		PaidAt:        &paidAt,
		Status:        model.InstallmentPaid,
		Type:          model.InstallmentTypeDownPayment,
		Method:        &method,
	})
	for i, amount := range amounts {
		plan.Payments = append(plan.Payments, model.InstallmentPayment{
			PaymentNumber: i + 1,
			Amount:        amount,
			DueDate:       start.AddDate(0, i+1, 0),
			Status:        model.InstallmentPending,
			Type:          model.InstallmentTypeScheduled,
		})
	}
	return plan
}

// resolveCustomerTx picks the order's customer: the given id, the walk-in
// singleton, or a new row from the inline data.
func (s *saleService) resolveCustomerTx(tx *gorm.DB, req dto.CreateSaleRequest) (*model.Customer, error) {
	if req.CustomerID != nil && *req.CustomerID != "" {
		id, err := parseID(*req.CustomerID, "customer_id")
		if err != nil {
			return nil, err
		}
		c, err := s.customers.FindByIDTx(tx, id)
		if err != nil {
			return nil, notFoundOr(err, "Customer not found")
		}
		return c, nil
	}

	in := req.Customer
	if in == nil || in.IsWalkIn || strings.EqualFold(strings.TrimSpace(in.Name), model.WalkInName) {
		c, err := s.customers.FindWalkInTx(tx)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return s.customers.CreateWalkInTx(tx)
	}

	if strings.TrimSpace(in.Name) == "" {
		return nil, apierror.Invalid("Customer name is required")
	}
	c := &model.Customer{Name: strings.TrimSpace(in.Name), Phone: in.Phone, Email: in.Email}
	if err := s.customers.CreateTx(tx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// ensureVariantsExistTx is the installment-sale check: stock is held, not
// decremented, so only existence is verified.
func (s *saleService) ensureVariantsExistTx(tx *gorm.DB, lines []saleLine) error {
	seen := make(map[uuid.UUID]bool, len(lines))
	for _, l := range lines {
		if seen[l.variantID] {
			continue
		}
		seen[l.variantID] = true
		if _, err := s.ledger.variants.FindByIDTx(tx, l.variantID); err != nil {
			return notFoundOr(err, "Variant not found")
		}
	}
	return nil
}

// ── Reads ─────────────────────────────────────────────────────────────────────

func (s *saleService) GetSale(ctx context.Context, id uuid.UUID) (*dto.SaleResponse, error) {
	o, err := s.orders.LoadWithDetails(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Sale not found")
	}
	return orderToResponse(o), nil
}

// ListSales returns the actor's sales, newest first.
func (s *saleService) ListSales(ctx context.Context, adminID uuid.UUID, filter dto.SaleFilter) (*dto.SaleListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultSaleLimit
	}
	if filter.Limit > maxSaleLimit {
		filter.Limit = maxSaleLimit
	}

	from, to, err := periodRange(filter.Period, filter.StartDate, filter.EndDate, s.now())
	if err != nil {
		return nil, err
	}

	orders, total, err := s.orders.List(ctx, repository.OrderFilter{
		AdminID: &adminID,
		From:    from,
		To:      to,
		Page:    filter.Page,
		Limit:   filter.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}

	data := make([]dto.SaleResponse, 0, len(orders))
	for i := range orders {
		data = append(data, *orderToResponse(&orders[i]))
	}
	pages := int(total) / filter.Limit
	if int(total)%filter.Limit != 0 {
		pages++
	}
	return &dto.SaleListResponse{
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		TotalPages: pages,
	}, nil
}
