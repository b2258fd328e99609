package repository

import (
	"context"
	"time"

	"github.com/Qodebyte-Pro-Services/bmt.api/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InstallmentRepository interface {
	// CreatePlanTx inserts the plan and its Payments schedule.
	CreatePlanTx(tx *gorm.DB, p *model.InstallmentPlan) error

	LockPaymentTx(tx *gorm.DB, id uuid.UUID) (*model.InstallmentPayment, error)
	LockPlanTx(tx *gorm.DB, id uuid.UUID) (*model.InstallmentPlan, error)
	MarkPaidTx(tx *gorm.DB, id uuid.UUID, method string, paidAt time.Time) error
	UpdatePlanBalanceTx(tx *gorm.DB, id uuid.UUID, balance decimal.Decimal, status string) error

	FindPlan(ctx context.Context, id uuid.UUID) (*model.InstallmentPlan, error)
	ListPlans(ctx context.Context) ([]model.InstallmentPlan, error)
	ListPlansByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.InstallmentPlan, error)
	// FindPayment loads an installment with its plan and the plan's customer.
	FindPayment(ctx context.Context, id uuid.UUID) (*model.InstallmentPayment, error)

	// MarkOverdue flags pending installments of active plans due before now as late.
	MarkOverdue(ctx context.Context, now time.Time) (int64, error)
}

type installmentRepo struct{ db *gorm.DB }

func NewInstallmentRepository(db *gorm.DB) InstallmentRepository {
	return &installmentRepo{db: db}
}

func (r *installmentRepo) CreatePlanTx(tx *gorm.DB, p *model.InstallmentPlan) error {
	return tx.Create(p).Error
}

func (r *installmentRepo) LockPaymentTx(tx *gorm.DB, id uuid.UUID) (*model.InstallmentPayment, error) {
	var p model.InstallmentPayment
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, "id = ?", id).Error
	return &p, err
}

func (r *installmentRepo) LockPlanTx(tx *gorm.DB, id uuid.UUID) (*model.InstallmentPlan, error) {
	var p model.InstallmentPlan
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, "id = ?", id).Error
	return &p, err
}

func (r *installmentRepo) MarkPaidTx(tx *gorm.DB, id uuid.UUID, method string, paidAt time.Time) error {
	return tx.Model(&model.InstallmentPayment{}).Where("id = ?", id).Updates(map[string]any{
		"status":  model.InstallmentPaid,
		"paid_at": paidAt,
		"method":  method,
	}).Error
}

func (r *installmentRepo) UpdatePlanBalanceTx(tx *gorm.DB, id uuid.UUID, balance decimal.Decimal, status string) error {
	return tx.Model(&model.InstallmentPlan{}).Where("id = ?", id).Updates(map[string]any{
		"remaining_balance": balance,
		"status":            status,
	}).Error
}

func withPlanDetails(q *gorm.DB) *gorm.DB {
	return q.Preload("Customer").
		Preload("Order").
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("payment_number ASC") })
}

func (r *installmentRepo) FindPlan(ctx context.Context, id uuid.UUID) (*model.InstallmentPlan, error) {
	var p model.InstallmentPlan
	err := withPlanDetails(r.db.WithContext(ctx)).First(&p, "id = ?", id).Error
	return &p, err
}

func (r *installmentRepo) ListPlans(ctx context.Context) ([]model.InstallmentPlan, error) {
	var plans []model.InstallmentPlan
	err := withPlanDetails(r.db.WithContext(ctx)).Order("created_at DESC").Find(&plans).Error
	return plans, err
}

func (r *installmentRepo) ListPlansByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.InstallmentPlan, error) {
	var plans []model.InstallmentPlan
	err := withPlanDetails(r.db.WithContext(ctx)).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		Find(&plans).Error
	return plans, err
}

func (r *installmentRepo) FindPayment(ctx context.Context, id uuid.UUID) (*model.InstallmentPayment, error) {
	var p model.InstallmentPayment
	err := r.db.WithContext(ctx).Preload("Plan.Customer").First(&p, "id = ?", id).Error
	return &p, err
}

func (r *installmentRepo) MarkOverdue(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.InstallmentPayment{}).
		Where("status = ? AND due_date < ?", model.InstallmentPending, now).
		Where("installment_plan_id IN (?)",
			r.db.Model(&model.InstallmentPlan{}).Select("id").Where("status = ?", model.PlanActive)).
		Update("status", model.InstallmentLate)
	return res.RowsAffected, res.Error
}
