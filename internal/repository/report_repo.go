package repository

import (
	"context"
	"time"

	"github.com/Qodebyte-Pro-Services/bmt.api/internal/dto"
	"github.com/Qodebyte-Pro-Services/bmt.api/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SalesWindow selects completed orders created in [From, To], optionally for one cashier.
type SalesWindow struct {
	From    time.Time
	To      time.Time
	AdminID *uuid.UUID
}

type ReportRepository interface {
	Create(ctx context.Context, r *model.Report) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Report, error)
	// ClaimPending moves up to limit pending reports (oldest first) to
	// processing and returns them. Rows claimed by another instance are skipped.
	ClaimPending(ctx context.Context, limit int, now time.Time) ([]model.Report, error)
	Complete(ctx context.Context, id uuid.UUID, resultPath string, at time.Time) error
	Fail(ctx context.Context, id uuid.UUID, reason string, at time.Time) error

	SalesSummary(ctx context.Context, w SalesWindow) (*dto.SalesSummary, error)
	PaymentMethodTotals(ctx context.Context, w SalesWindow) ([]dto.PaymentMethodTotal, error)
	ProductBreakdown(ctx context.Context, w SalesWindow) ([]dto.ProductSalesLine, error)
}

type reportRepo struct{ db *gorm.DB }

func NewReportRepository(db *gorm.DB) ReportRepository { return &reportRepo{db: db} }

func (r *reportRepo) Create(ctx context.Context, rpt *model.Report) error {
	return r.db.WithContext(ctx).Create(rpt).Error
}

func (r *reportRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Report, error) {
	var rpt model.Report
	err := r.db.WithContext(ctx).First(&rpt, "id = ?", id).Error
	return &rpt, err
}

func (r *reportRepo) ClaimPending(ctx context.Context, limit int, now time.Time) ([]model.Report, error) {
	var reports []model.Report
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("status = ?", model.ReportPending).
			Order("created_at ASC").
			Limit(limit).
			Find(&reports).Error; err != nil {
			return err
		}
		if len(reports) == 0 {
			return nil
		}
		ids := make([]uuid.UUID, len(reports))
		for i := range reports {
			ids[i] = reports[i].ID
			reports[i].Status = model.ReportProcessing
			reports[i].ProcessingStartedAt = &now
		}
		return tx.Model(&model.Report{}).Where("id IN ?", ids).Updates(map[string]any{
			"status":                model.ReportProcessing,
			"processing_started_at": now,
		}).Error
	})
	return reports, err
}

func (r *reportRepo) Complete(ctx context.Context, id uuid.UUID, resultPath string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Report{}).Where("id = ?", id).Updates(map[string]any{
		"status":                  model.ReportCompleted,
		"result_path":             resultPath,
		"processing_completed_at": at,
	}).Error
}

func (r *reportRepo) Fail(ctx context.Context, id uuid.UUID, reason string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&model.Report{}).Where("id = ?", id).Updates(map[string]any{
		"status":                  model.ReportFailed,
		"error":                   reason,
		"processing_completed_at": at,
	}).Error
}

// completedOrders scopes a query to the window; alias is the orders table alias.
func completedOrders(w SalesWindow, alias string) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		q = q.Where(alias+".status = ?", model.OrderCompleted).
			Where(alias+".created_at BETWEEN ? AND ?", w.From, w.To)
		if w.AdminID != nil {
			q = q.Where(alias+".admin_id = ?", *w.AdminID)
		}
		return q
	}
}

func (r *reportRepo) SalesSummary(ctx context.Context, w SalesWindow) (*dto.SalesSummary, error) {
	var s dto.SalesSummary
	err := r.db.WithContext(ctx).Table("orders AS o").
		Scopes(completedOrders(w, "o")).
		Select(`COUNT(o.id) AS total_orders,
			COALESCE(SUM(o.subtotal), 0) AS subtotal,
			COALESCE(SUM(o.tax_total), 0) AS total_tax,
			COALESCE(SUM(o.discount_total), 0) AS total_discount,
			COALESCE(SUM(o.total_amount), 0) AS total_sales`).
		Scan(&s).Error
	if err != nil {
		return nil, err
	}

	var cogs struct {
		TotalCOGS decimal.Decimal `gorm:"column:total_cogs"`
	}
	err = r.db.WithContext(ctx).Table("order_items AS oi").
		Joins("JOIN orders AS o ON o.id = oi.order_id").
		Joins("JOIN variants AS v ON v.id = oi.variant_id").
		Scopes(completedOrders(w, "o")).
		Select("COALESCE(SUM(oi.quantity * COALESCE(v.cost_price, 0)), 0) AS total_cogs").
		Scan(&cogs).Error
	if err != nil {
		return nil, err
	}
	s.TotalCOGS = cogs.TotalCOGS
	s.GrossProfit = s.TotalSales.Sub(s.TotalCOGS)
	return &s, nil
}

func (r *reportRepo) PaymentMethodTotals(ctx context.Context, w SalesWindow) ([]dto.PaymentMethodTotal, error) {
	var rows []dto.PaymentMethodTotal
	err := r.db.WithContext(ctx).Table("order_payments AS p").
		Joins("JOIN orders AS o ON o.id = p.order_id").
		Scopes(completedOrders(w, "o")).
		Select("p.method AS method, COUNT(p.id) AS count, COALESCE(SUM(p.amount), 0) AS amount").
		Group("p.method").
		Order("amount DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *reportRepo) ProductBreakdown(ctx context.Context, w SalesWindow) ([]dto.ProductSalesLine, error) {
	var rows []dto.ProductSalesLine
	err := r.db.WithContext(ctx).Table("order_items AS oi").
		Joins("JOIN orders AS o ON o.id = oi.order_id").
		Joins("JOIN variants AS v ON v.id = oi.variant_id").
		Joins("JOIN products AS pr ON pr.id = v.product_id").
		Scopes(completedOrders(w, "o")).
		Select(`v.id AS variant_id, v.sku AS sku, pr.name AS product_name,
			SUM(oi.quantity) AS quantity,
			COALESCE(SUM(oi.total_price), 0) AS revenue,
			COALESCE(SUM(oi.quantity * v.cost_price), 0) AS cogs`).
		Group("v.id, v.sku, pr.name").
		Order("revenue DESC").
		Scan(&rows).Error
	return rows, err
}
