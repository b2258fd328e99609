//go:build integration

package repository_test

// Exercises the GORM repositories and the schema patches against a real
// Postgres via testcontainers.
// Run with: go test -tags integration ./internal/repository/... -v

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/Qodebyte-Pro-Services/bmt.api/internal/dto"
	"github.com/Qodebyte-Pro-Services/bmt.api/internal/infra"
	"github.com/Qodebyte-Pro-Services/bmt.api/internal/model"
	"github.com/Qodebyte-Pro-Services/bmt.api/internal/repository"
	"github.com/Qodebyte-Pro-Services/bmt.api/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ── Setup ────────────────────────────────────────────────────────────────────

func startPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("bmt_test"),
		tcPostgres.WithUsername("bmt"),
		tcPostgres.WithPassword("bmt"),
		tcPostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	dsn, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := infra.NewDatabase(dsn)
	require.NoError(t, err)
	require.NoError(t, infra.RunMigrations(db))
	// Patches are idempotent.
	require.NoError(t, infra.RunMigrations(db))
	return db
}

type fixtures struct {
	db      *gorm.DB
	admin   model.Admin
	product model.Product
}

func newFixtures(t *testing.T, db *gorm.DB) *fixtures {
	t.Helper()
	f := &fixtures{db: db}
	f.admin = model.Admin{Email: uuid.NewString() + "@bmt.test", FullName: "Test Admin"}
	require.NoError(t, db.Create(&f.admin).Error)
	f.product = model.Product{Name: "Oxford Shirt"}
	require.NoError(t, db.Create(&f.product).Error)
	return f
}

func (f *fixtures) variant(t *testing.T, qty int, cost, price string) model.Variant {
	t.Helper()
	v := model.Variant{
		ProductID:    f.product.ID,
		SKU:          "SKU-" + uuid.NewString()[:8],
		CostPrice:    decimal.RequireFromString(cost),
		SellingPrice: decimal.RequireFromString(price),
		Quantity:     qty,
		IsActive:     true,
	}
	require.NoError(t, f.db.Create(&v).Error)
	return v
}

func (f *fixtures) customer(t *testing.T, name string) model.Customer {
	t.Helper()
	c := model.Customer{Name: name}
	require.NoError(t, f.db.Create(&c).Error)
	return c
}

func (f *fixtures) order(t *testing.T, c model.Customer, total, status string) model.Order {
	t.Helper()
	amt := decimal.RequireFromString(total)
	o := model.Order{
		CustomerID:  c.ID,
		Subtotal:    amt,
		TotalAmount: amt,
		Status:      status,
		AdminID:     f.admin.ID,
	}
	require.NoError(t, f.db.Create(&o).Error)
	return o
}

// ── Schema ───────────────────────────────────────────────────────────────────

func TestSchema_RejectsNegativeQuantity(t *testing.T) {
	db := startPostgres(t)
	f := newFixtures(t, db)
	v := f.variant(t, 2, "5", "10")

	err := db.Model(&model.Variant{}).Where("id = ?", v.ID).Update("quantity", -1).Error
	assert.Error(t, err)
}

// ── Customers ────────────────────────────────────────────────────────────────

func TestCustomerRepo_ConcurrentWalkInConverges(t *testing.T) {
	db := startPostgres(t)
	repo := repository.NewCustomerRepository(db)

	const n = 8
	ids := make([]uuid.UUID, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := db.Transaction(func(tx *gorm.DB) error {
				c, err := repo.CreateWalkInTx(tx)
				if err != nil {
					return err
				}
				ids[i] = c.ID
				return nil
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	var count int64
	require.NoError(t, db.Model(&model.Customer{}).Where("is_walk_in = true").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestCustomerRepo_FindWalkInMatchesLegacyName(t *testing.T) {
	db := startPostgres(t)
	f := newFixtures(t, db)
	legacy := f.customer(t, model.WalkInName)

	got, err := repository.NewCustomerRepository(db).FindWalkInTx(db)
	require.NoError(t, err)
	assert.Equal(t, legacy.ID, got.ID)
}

// ── Variants ─────────────────────────────────────────────────────────────────

func TestVariantRepo_LockAndAdjust(t *testing.T) {
	db := startPostgres(t)
	f := newFixtures(t, db)
	a := f.variant(t, 5, "2", "4")
	b := f.variant(t, 1, "2", "4")
	repo := repository.NewVariantRepository(db)

	err := db.Transaction(func(tx *gorm.DB) error {
		locked, err := repo.LockByIDsTx(tx, []uuid.UUID{a.ID, b.ID, uuid.New()})
		if err != nil {
			return err
		}
		assert.Len(t, locked, 2)
		assert.Equal(t, 5, locked[a.ID].Quantity)
		if err := repo.AddQuantityTx(tx, a.ID, -3); err != nil {
			return err
		}
		return repo.SetQuantityTx(tx, b.ID, 9)
	})
	require.NoError(t, err)

	got, err := repo.FindWithProduct(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Quantity)
	assert.Equal(t, "Oxford Shirt", got.Product.Name)

	got, err = repo.FindWithProduct(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, 9, got.Quantity)
}

// Two cashiers selling the last unit at once: exactly one sale goes through
// and quantity ends at zero.
func TestSaleService_ConcurrentSalesNeverOversell(t *testing.T) {
	db := startPostgres(t)
	f := newFixtures(t, db)
	v := f.variant(t, 1, "3", "10")

	svc := service.NewSaleService(
		repository.NewOrderRepository(db),
		repository.NewCustomerRepository(db),
		repository.NewCreditAccountRepository(db),
		repository.NewInstallmentRepository(db),
		repository.NewVariantRepository(db),
		repository.NewInventoryLogRepository(db),
		nil,
	)
	req := dto.CreateSaleRequest{
		Items:    []dto.SaleItemRequest{{VariantID: v.ID.String(), Quantity: 1, UnitPrice: decimal.NewFromInt(10)}},
		Payments: []dto.SalePaymentRequest{{Method: model.PaymentCash, Amount: decimal.NewFromInt(10)}},
	}

	const n = 4
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.CreateSale(context.Background(), f.admin.ID, req)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.EqualError(t, err, "Insufficient stock")
	}
	assert.Equal(t, 1, succeeded)

	var after model.Variant
	require.NoError(t, db.First(&after, "id = ?", v.ID).Error)
	assert.Equal(t, 0, after.Quantity)

	logs, total, err := repository.NewInventoryLogRepository(db).List(context.Background(),
		repository.InventoryLogFilter{VariantID: &v.ID, Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, logs, 1)
	assert.Equal(t, -1, logs[0].Quantity)
	assert.Equal(t, 1, logs[0].QuantityBefore)
	assert.Equal(t, 0, logs[0].QuantityAfter)
}

// ── Notifications ────────────────────────────────────────────────────────────

func TestStockNotificationRepo_OneUnreadPerType(t *testing.T) {
	db := startPostgres(t)
	f := newFixtures(t, db)
	v := f.variant(t, 0, "1", "2")
	repo := repository.NewStockNotificationRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, &model.StockNotification{VariantID: v.ID, NotificationType: model.NotifyOutOfStock, Message: "out"})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.Create(ctx, &model.StockNotification{VariantID: v.ID, NotificationType: model.NotifyOutOfStock, Message: "out again"})
	require.NoError(t, err)
	assert.False(t, created, "duplicate unread alert must be swallowed")

	has, err := repo.HasUnread(ctx, v.ID, model.NotifyOutOfStock)
	require.NoError(t, err)
	assert.True(t, has)

	resolved, err := repo.ResolveUnread(ctx, v.ID, []string{model.NotifyLowStock, model.NotifyOutOfStock}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), resolved)

	// Once read, a fresh alert of the same type is allowed.
	created, err = repo.Create(ctx, &model.StockNotification{VariantID: v.ID, NotificationType: model.NotifyOutOfStock, Message: "out once more"})
	require.NoError(t, err)
	assert.True(t, created)

	unread, err := repo.ListUnread(ctx, 10)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	require.NotNil(t, unread[0].Variant)
	assert.Equal(t, "Oxford Shirt", unread[0].Variant.Product.Name)

	stats, err := repo.Stats(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, model.NotifyOutOfStock, stats[0].NotificationType)
	assert.Equal(t, int64(2), stats[0].Total)
	assert.Equal(t, int64(1), stats[0].Unread)
}

// ── Orders & installments ────────────────────────────────────────────────────

func TestOrderRepo_FindInstallmentSettlementByMeta(t *testing.T) {
	db := startPostgres(t)
	f := newFixtures(t, db)
	o := f.order(t, f.customer(t, "Ada"), "300", model.OrderPending)
	repo := repository.NewOrderRepository(db)

	target := uuid.New()
	for _, id := range []uuid.UUID{uuid.New(), target} {
		meta, err := json.Marshal(model.PaymentMeta{InstallmentPaymentID: id, RecordedBy: f.admin.ID})
		require.NoError(t, err)
		p := model.OrderPayment{OrderID: o.ID, Method: model.PaymentCard, Amount: decimal.NewFromInt(100), Status: "paid", Meta: datatypes.JSON(meta)}
		require.NoError(t, repo.CreatePaymentTx(db, &p))
	}

	got, err := repo.FindInstallmentSettlement(context.Background(), o.ID, target)
	require.NoError(t, err)
	var meta model.PaymentMeta
	require.NoError(t, json.Unmarshal(got.Meta, &meta))
	assert.Equal(t, target, meta.InstallmentPaymentID)

	_, err = repo.FindInstallmentSettlement(context.Background(), o.ID, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestOrderRepo_ListFiltersByAdmin(t *testing.T) {
	db := startPostgres(t)
	f := newFixtures(t, db)
	c := f.customer(t, "Grace")
	f.order(t, c, "10", model.OrderCompleted)
	f.order(t, c, "20", model.OrderCompleted)
	other := model.Order{CustomerID: c.ID, Subtotal: decimal.NewFromInt(5), TotalAmount: decimal.NewFromInt(5), Status: model.OrderCompleted, AdminID: uuid.New()}
	require.NoError(t, db.Create(&other).Error)

	orders, total, err := repository.NewOrderRepository(db).List(context.Background(),
		repository.OrderFilter{AdminID: &f.admin.ID, Page: 1, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, orders, 1)
	assert.Equal(t, "Grace", orders[0].Customer.Name)
}

func TestInstallmentRepo_MarkOverdueOnlyTouchesActivePlans(t *testing.T) {
	db := startPostgres(t)
	f := newFixtures(t, db)
	c := f.customer(t, "Linus")
	repo := repository.NewInstallmentRepository(db)
	now := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)

	plan := func(status string) model.InstallmentPlan {
		o := f.order(t, c, "300", model.OrderPending)
		p := model.InstallmentPlan{
			OrderID:          o.ID,
			CustomerID:       c.ID,
			TotalAmount:      decimal.NewFromInt(300),
			DownPayment:      decimal.Zero,
			RemainingBalance: decimal.NewFromInt(300),
			NumberOfPayments: 3,
			AmountPerPayment: decimal.NewFromInt(100),
			StartDate:        time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
			Status:           status,
		}
		for i := 1; i <= 3; i++ {
			p.Payments = append(p.Payments, model.InstallmentPayment{
				PaymentNumber: i,
				Amount:        decimal.NewFromInt(100),
				DueDate:       p.StartDate.AddDate(0, i, 0),
				Status:        model.InstallmentPending,
			})
		}
		require.NoError(t, repo.CreatePlanTx(db, &p))
		return p
	}
	active := plan(model.PlanActive)
	plan(model.PlanDefaulted)

	n, err := repo.MarkOverdue(context.Background(), now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n, "Feb 15 and Mar 15 of the active plan")

	got, err := repo.FindPlan(context.Background(), active.ID)
	require.NoError(t, err)
	require.Len(t, got.Payments, 3)
	assert.Equal(t, model.InstallmentLate, got.Payments[0].Status)
	assert.Equal(t, model.InstallmentLate, got.Payments[1].Status)
	assert.Equal(t, model.InstallmentPending, got.Payments[2].Status)
	assert.Equal(t, "Linus", got.Customer.Name)
}

// ── Reports ──────────────────────────────────────────────────────────────────

func TestReportRepo_ClaimPendingOldestFirst(t *testing.T) {
	db := startPostgres(t)
	repo := repository.NewReportRepository(db)
	ctx := context.Background()

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		r := model.Report{Params: datatypes.JSON(`{"period":"year"}`), Format: "json", Status: model.ReportPending}
		require.NoError(t, repo.Create(ctx, &r))
		ids = append(ids, r.ID)
		time.Sleep(5 * time.Millisecond)
	}

	now := time.Now()
	first, err := repo.ClaimPending(ctx, 2, now)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, ids[0], first[0].ID)
	assert.Equal(t, ids[1], first[1].ID)
	assert.Equal(t, model.ReportProcessing, first[0].Status)

	second, err := repo.ClaimPending(ctx, 2, now)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, ids[2], second[0].ID)

	none, err := repo.ClaimPending(ctx, 2, now)
	require.NoError(t, err)
	assert.Empty(t, none)

	require.NoError(t, repo.Complete(ctx, ids[0], "/tmp/r.json", now))
	require.NoError(t, repo.Fail(ctx, ids[1], "boom", now))

	done, err := repo.FindByID(ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, model.ReportCompleted, done.Status)
	require.NotNil(t, done.ResultPath)
	assert.Equal(t, "/tmp/r.json", *done.ResultPath)

	failed, err := repo.FindByID(ctx, ids[1])
	require.NoError(t, err)
	assert.Equal(t, model.ReportFailed, failed.Status)
	require.NotNil(t, failed.Error)
	assert.Equal(t, "boom", *failed.Error)
}

func TestReportRepo_AggregatesCompletedOrdersOnly(t *testing.T) {
	db := startPostgres(t)
	f := newFixtures(t, db)
	c := f.customer(t, "Margaret")
	v := f.variant(t, 10, "4", "10")
	ctx := context.Background()

	sold := f.order(t, c, "30", model.OrderCompleted)
	require.NoError(t, db.Create(&model.OrderItem{OrderID: sold.ID, VariantID: v.ID, Quantity: 3, UnitPrice: decimal.NewFromInt(10), TotalPrice: decimal.NewFromInt(30)}).Error)
	require.NoError(t, db.Create(&model.OrderPayment{OrderID: sold.ID, Method: model.PaymentCash, Amount: decimal.NewFromInt(30), Status: "paid"}).Error)

	pending := f.order(t, c, "50", model.OrderPending)
	require.NoError(t, db.Create(&model.OrderItem{OrderID: pending.ID, VariantID: v.ID, Quantity: 5, UnitPrice: decimal.NewFromInt(10), TotalPrice: decimal.NewFromInt(50)}).Error)

	w := repository.SalesWindow{From: time.Now().Add(-time.Hour), To: time.Now().Add(time.Hour)}
	repo := repository.NewReportRepository(db)

	s, err := repo.SalesSummary(ctx, w)
	require.NoError(t, err)
	assert.Equal(t, int64(1), s.TotalOrders)
	assert.True(t, s.TotalSales.Equal(decimal.NewFromInt(30)), s.TotalSales.String())
	assert.True(t, s.TotalCOGS.Equal(decimal.NewFromInt(12)), s.TotalCOGS.String())
	assert.True(t, s.GrossProfit.Equal(decimal.NewFromInt(18)), s.GrossProfit.String())

	methods, err := repo.PaymentMethodTotals(ctx, w)
	require.NoError(t, err)
	require.Len(t, methods, 1)
	assert.Equal(t, model.PaymentCash, methods[0].Method)
	assert.Equal(t, int64(1), methods[0].Count)

	lines, err := repo.ProductBreakdown(ctx, w)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, int64(3), lines[0].Quantity)
	assert.Equal(t, "Oxford Shirt", lines[0].ProductName)

	other := uuid.New()
	empty, err := repo.SalesSummary(ctx, repository.SalesWindow{From: w.From, To: w.To, AdminID: &other})
	require.NoError(t, err)
	assert.Equal(t, int64(0), empty.TotalOrders)
	assert.True(t, empty.TotalSales.IsZero())
}
