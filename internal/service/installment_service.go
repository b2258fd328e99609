package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Qodebyte-Pro-Services/bmt.api/internal/apierror"
	"github.com/Qodebyte-Pro-Services/bmt.api/internal/dto"
	"github.com/Qodebyte-Pro-Services/bmt.api/internal/model"
	"github.com/Qodebyte-Pro-Services/bmt.api/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type InstallmentService interface {
	PayInstallment(ctx context.Context, adminID, paymentID uuid.UUID, req dto.PayInstallmentRequest) (*dto.PayInstallmentResponse, error)
	ListPlans(ctx context.Context) ([]dto.InstallmentPlanResponse, error)
	ListCustomerPlans(ctx context.Context, customerID uuid.UUID) ([]dto.InstallmentPlanResponse, error)
	GetPlan(ctx context.Context, id uuid.UUID) (*dto.InstallmentPlanResponse, error)
	GetReceipt(ctx context.Context, paymentID uuid.UUID) (*dto.InstallmentReceiptResponse, error)
	// MarkOverdue flags unpaid installments past their due date as late.
	MarkOverdue(ctx context.Context) (int64, error)
}

type installmentService struct {
	installments repository.InstallmentRepository
	orders       repository.OrderRepository
	ledger       stockLedger
	watcher      StockWatcher
	now          func() time.Time
}

func NewInstallmentService(
	installments repository.InstallmentRepository,
	orders repository.OrderRepository,
	variants repository.VariantRepository,
	logs repository.InventoryLogRepository,
	watcher StockWatcher,
) InstallmentService {
	return &installmentService{
		installments: installments,
		orders:       orders,
		ledger:       stockLedger{variants: variants, logs: logs},
		watcher:      watcher,
		now:          time.Now,
	}
}

// ── PayInstallment ────────────────────────────────────────────────────────────
// One transaction: lock installment and plan, settle exactly the scheduled
// amount, record an OrderPayment pointing back at the installment, and when
// the balance reaches zero complete the order and release its stock.

func (s *installmentService) PayInstallment(ctx context.Context, adminID, paymentID uuid.UUID, req dto.PayInstallmentRequest) (*dto.PayInstallmentResponse, error) {
	amount := round2(req.Amount)
	now := s.now()

	var (
		balance   decimal.Decimal
		completed bool
		touched   []uuid.UUID
	)
	txErr := runTx(ctx, s.orders.DB(), func(tx *gorm.DB) error {
		ip, err := s.installments.LockPaymentTx(tx, paymentID)
		if err != nil {
			return notFoundOr(err, "Installment payment not found")
		}
		if ip.Status == model.InstallmentPaid {
			return apierror.Invalid("Installment already paid")
		}
		if !amount.Equal(ip.Amount) {
			return apierror.Invalid("Installment amount mismatch")
		}

		plan, err := s.installments.LockPlanTx(tx, ip.InstallmentPlanID)
		if err != nil {
			return notFoundOr(err, "Installment plan not found")
		}
		balance = round2(plan.RemainingBalance.Sub(amount))
		if balance.LessThan(balanceTolerance) {
			return apierror.Invalid("Installment overpayment detected")
		}
		completed = !balance.IsPositive()

		if err := s.installments.MarkPaidTx(tx, ip.ID, req.Method, now); err != nil {
			return err
		}
		status := model.PlanActive
		if completed {
			status = model.PlanCompleted
		}
		if err := s.installments.UpdatePlanBalanceTx(tx, plan.ID, balance, status); err != nil {
			return err
		}

		meta, err := json.Marshal(model.PaymentMeta{InstallmentPaymentID: ip.ID, RecordedBy: adminID})
		if err != nil {
			return err
		}
		if err := s.orders.CreatePaymentTx(tx, &model.OrderPayment{
			OrderID:   plan.OrderID,
			Method:    req.Method,
			Amount:    amount,
			Reference: req.Reference,
			Status:    "paid",
			Meta:      datatypes.JSON(meta),
		}); err != nil {
			return err
		}

		if !completed {
			return nil
		}
		touched, err = s.releaseStockTx(tx, plan.OrderID, adminID)
		return err
	})
	if txErr != nil {
		return nil, txErr
	}

	notifyStock(ctx, s.watcher, touched)

	msg := "Installment payment recorded"
	if completed {
		msg = "Installment plan completed"
	}
	return &dto.PayInstallmentResponse{Message: msg, Balance: balance, Completed: completed}, nil
}

// releaseStockTx performs the stock decrement deferred at sale time. It is a
// no-op when the order is already completed.
func (s *installmentService) releaseStockTx(tx *gorm.DB, orderID, actor uuid.UUID) ([]uuid.UUID, error) {
	order, err := s.orders.LockByIDTx(tx, orderID)
	if err != nil {
		return nil, notFoundOr(err, "Sale not found")
	}
	if order.Status == model.OrderCompleted {
		return nil, nil
	}

	items, err := s.orders.ListItemsTx(tx, orderID)
	if err != nil {
		return nil, err
	}
	lines := make([]saleLine, 0, len(items))
	for _, it := range items {
		lines = append(lines, saleLine{variantID: it.VariantID, quantity: it.Quantity})
	}

	var touched []uuid.UUID
	if len(lines) > 0 {
		locked, err := s.ledger.lockVariantsTx(tx, lines)
		if err != nil {
			return nil, err
		}
		touched, err = s.ledger.decrementTx(tx, lines, locked, actor, "INSTALLMENT_COMPLETED_ORDER_"+orderID.String())
		if err != nil {
			return nil, err
		}
	}
	if err := s.orders.UpdateStatusTx(tx, orderID, model.OrderCompleted); err != nil {
		return nil, err
	}
	return touched, nil
}

// ── Reads ─────────────────────────────────────────────────────────────────────

func (s *installmentService) ListPlans(ctx context.Context) ([]dto.InstallmentPlanResponse, error) {
	plans, err := s.installments.ListPlans(ctx)
	if err != nil {
		return nil, err
	}
	return plansToResponse(plans), nil
}

func (s *installmentService) ListCustomerPlans(ctx context.Context, customerID uuid.UUID) ([]dto.InstallmentPlanResponse, error) {
	plans, err := s.installments.ListPlansByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	return plansToResponse(plans), nil
}

func (s *installmentService) GetPlan(ctx context.Context, id uuid.UUID) (*dto.InstallmentPlanResponse, error) {
	plan, err := s.installments.FindPlan(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Installment plan not found")
	}
	return planToResponse(plan), nil
}

func plansToResponse(plans []model.InstallmentPlan) []dto.InstallmentPlanResponse {
	out := make([]dto.InstallmentPlanResponse, 0, len(plans))
	for i := range plans {
		out = append(out, *planToResponse(&plans[i]))
	}
	return out
}

// GetReceipt describes one paid installment. The remaining balance is what
// was still owed right after this payment.
func (s *installmentService) GetReceipt(ctx context.Context, paymentID uuid.UUID) (*dto.InstallmentReceiptResponse, error) {
	ip, err := s.installments.FindPayment(ctx, paymentID)
	if err != nil {
		return nil, notFoundOr(err, "Installment payment not found")
	}
	if ip.Status != model.InstallmentPaid {
		return nil, apierror.Invalid("Installment has not been paid")
	}
	plan, err := s.installments.FindPlan(ctx, ip.InstallmentPlanID)
	if err != nil {
		return nil, notFoundOr(err, "Installment plan not found")
	}

	paidSoFar := decimal.Zero
	for _, p := range plan.Payments {
		if p.Status == model.InstallmentPaid && p.PaymentNumber <= ip.PaymentNumber {
			paidSoFar = paidSoFar.Add(p.Amount)
		}
	}

	method := ""
	if ip.Method != nil {
		method = *ip.Method
	}
	if ip.Type == model.InstallmentTypeScheduled {
		op, err := s.orders.FindInstallmentSettlement(ctx, plan.OrderID, ip.ID)
		switch {
		case err == nil && method == "":
			method = op.Method
		case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, err
		}
	}

	customer := dto.CustomerResponse{ID: plan.CustomerID.String()}
	if c := customerToResponse(plan.Customer); c != nil {
		customer = *c
	}
	return &dto.InstallmentReceiptResponse{
		PaymentID:             ip.ID.String(),
		PlanID:                plan.ID.String(),
		OrderID:               plan.OrderID.String(),
		PaymentNumber:         ip.PaymentNumber,
		AmountPaid:            ip.Amount,
		PaymentMethod:         method,
		PaidAt:                formatTime(ip.PaidAt),
		Customer:              customer,
		PaymentFrequency:      plan.PaymentFrequency,
		NumberOfPayments:      plan.NumberOfPayments,
		AmountPerPayment:      plan.AmountPerPayment,
		DownPayment:           plan.DownPayment,
		RemainingBalanceAfter: round2(plan.TotalAmount.Sub(paidSoFar)),
	}, nil
}

func (s *installmentService) MarkOverdue(ctx context.Context) (int64, error) {
	return s.installments.MarkOverdue(ctx, s.now())
}
