package repository

import (
	"context"
	"time"

	"github.com/Qodebyte-Pro-Services/bmt.api/internal/model"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderFilter narrows ListOrders. Zero times mean unbounded.
type OrderFilter struct {
	AdminID *uuid.UUID
	From    time.Time
	To      time.Time
	Page    int
	Limit   int
}

type OrderRepository interface {
	// CreateTx inserts the order together with its Items and Payments.
	CreateTx(tx *gorm.DB, o *model.Order) error
	CreatePaymentTx(tx *gorm.DB, p *model.OrderPayment) error
	LockByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Order, error)
	ListItemsTx(tx *gorm.DB, orderID uuid.UUID) ([]model.OrderItem, error)
	UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status string) error

	// LoadWithDetails returns the order with customer, items, payments,
	// credit account and installment plan (with its payments).
	LoadWithDetails(ctx context.Context, id uuid.UUID) (*model.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error)
	// FindInstallmentSettlement finds the OrderPayment recorded for an installment.
	FindInstallmentSettlement(ctx context.Context, orderID, installmentPaymentID uuid.UUID) (*model.OrderPayment, error)

	DB() *gorm.DB
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepository(db *gorm.DB) OrderRepository { return &orderRepo{db: db} }

func (r *orderRepo) DB() *gorm.DB { return r.db }

func (r *orderRepo) CreateTx(tx *gorm.DB, o *model.Order) error {
	return tx.Create(o).Error
}

func (r *orderRepo) CreatePaymentTx(tx *gorm.DB, p *model.OrderPayment) error {
	return tx.Create(p).Error
}

func (r *orderRepo) LockByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Order, error) {
	var o model.Order
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&o, "id = ?", id).Error
	return &o, err
}

func (r *orderRepo) ListItemsTx(tx *gorm.DB, orderID uuid.UUID) ([]model.OrderItem, error) {
	var items []model.OrderItem
	err := tx.Where("order_id = ?", orderID).Order("created_at ASC").Find(&items).Error
	return items, err
}

func (r *orderRepo) UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status string) error {
	return tx.Model(&model.Order{}).Where("id = ?", id).Update("status", status).Error
}

func withOrderDetails(q *gorm.DB) *gorm.DB {
	return q.Preload("Customer").
		Preload("Items.Variant").
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("CreditAccount").
		Preload("InstallmentPlan.Payments", func(db *gorm.DB) *gorm.DB { return db.Order("payment_number ASC") })
}

func (r *orderRepo) LoadWithDetails(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var o model.Order
	err := withOrderDetails(r.db.WithContext(ctx)).First(&o, "id = ?", id).Error
	return &o, err
}

func (r *orderRepo) List(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Order{})
	if filter.AdminID != nil {
		q = q.Where("admin_id = ?", *filter.AdminID)
	}
	if !filter.From.IsZero() {
		q = q.Where("created_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		q = q.Where("created_at <= ?", filter.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []model.Order
	err := withOrderDetails(q).
		Order("created_at DESC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&orders).Error
	return orders, total, err
}

func (r *orderRepo) FindInstallmentSettlement(ctx context.Context, orderID, installmentPaymentID uuid.UUID) (*model.OrderPayment, error) {
	var p model.OrderPayment
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Where(datatypes.JSONQuery("meta").Equals(installmentPaymentID.String(), "installment_payment_id")).
		First(&p).Error
	return &p, err
}
