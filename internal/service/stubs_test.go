package service

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/Qodebyte-Pro-Services/bmt.api/internal/dto"
	"github.com/Qodebyte-Pro-Services/bmt.api/internal/model"
	"github.com/Qodebyte-Pro-Services/bmt.api/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── Stubs ─────────────────────────────────────────────────────────────────────
// All stubs ignore the tx argument: DB() returns nil so runTx calls fn(nil).

// stubVariantRepo is an in-memory VariantRepository.
type stubVariantRepo struct {
	mu       sync.Mutex
	variants map[uuid.UUID]*model.Variant
	lockErr  error
}

func newStubVariantRepo(vs ...*model.Variant) *stubVariantRepo {
	r := &stubVariantRepo{variants: make(map[uuid.UUID]*model.Variant)}
	for _, v := range vs {
		r.variants[v.ID] = v
	}
	return r
}

func (r *stubVariantRepo) get(id uuid.UUID) (*model.Variant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.variants[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *stubVariantRepo) qty(id uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.variants[id].Quantity
}

func (r *stubVariantRepo) FindWithProduct(_ context.Context, id uuid.UUID) (*model.Variant, error) {
	return r.get(id)
}
func (r *stubVariantRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Variant, error) {
	return r.get(id)
}
func (r *stubVariantRepo) LockByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Variant, error) {
	return r.get(id)
}

func (r *stubVariantRepo) LockByIDsTx(_ *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]*model.Variant, error) {
	if r.lockErr != nil {
		return nil, r.lockErr
	}
	out := make(map[uuid.UUID]*model.Variant, len(ids))
	for _, id := range ids {
		if v, err := r.get(id); err == nil {
			out[id] = v
		}
	}
	return out, nil
}

func (r *stubVariantRepo) SetQuantityTx(_ *gorm.DB, id uuid.UUID, quantity int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.variants[id].Quantity = quantity
	return nil
}

func (r *stubVariantRepo) AddQuantityTx(_ *gorm.DB, id uuid.UUID, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.variants[id].Quantity += delta
	return nil
}

func (r *stubVariantRepo) ListActiveIDs(_ context.Context) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []uuid.UUID
	for id, v := range r.variants {
		if v.IsActive {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *stubVariantRepo) DB() *gorm.DB { return nil }

var _ repository.VariantRepository = (*stubVariantRepo)(nil)

// stubLogRepo records every inventory log written.
type stubLogRepo struct {
	logs       []model.InventoryLog
	lastFilter repository.InventoryLogFilter
}

func (r *stubLogRepo) CreateTx(_ *gorm.DB, l *model.InventoryLog) error {
	l.ID = uuid.New()
	r.logs = append(r.logs, *l)
	return nil
}

func (r *stubLogRepo) List(_ context.Context, f repository.InventoryLogFilter) ([]model.InventoryLog, int64, error) {
	r.lastFilter = f
	end := f.Limit
	if end > len(r.logs) {
		end = len(r.logs)
	}
	return r.logs[:end], int64(len(r.logs)), nil
}

var _ repository.InventoryLogRepository = (*stubLogRepo)(nil)

// stubCustomerRepo holds customers by id.
type stubCustomerRepo struct {
	customers     map[uuid.UUID]*model.Customer
	walkInCreates int
}

func newStubCustomerRepo() *stubCustomerRepo {
	return &stubCustomerRepo{customers: make(map[uuid.UUID]*model.Customer)}
}

func (r *stubCustomerRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

func (r *stubCustomerRepo) FindWalkInTx(_ *gorm.DB) (*model.Customer, error) {
	for _, c := range r.customers {
		if c.IsWalkIn {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubCustomerRepo) CreateTx(_ *gorm.DB, c *model.Customer) error {
	c.ID = uuid.New()
	r.customers[c.ID] = c
	return nil
}

func (r *stubCustomerRepo) CreateWalkInTx(tx *gorm.DB) (*model.Customer, error) {
	r.walkInCreates++
	c := &model.Customer{Name: model.WalkInName, IsWalkIn: true}
	return c, r.CreateTx(tx, c)
}

var _ repository.CustomerRepository = (*stubCustomerRepo)(nil)

// stubOrderRepo stores orders and their payments.
type stubOrderRepo struct {
	orders     map[uuid.UUID]*model.Order
	payments   []model.OrderPayment
	lastFilter repository.OrderFilter
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{orders: make(map[uuid.UUID]*model.Order)}
}

func (r *stubOrderRepo) CreateTx(_ *gorm.DB, o *model.Order) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	for i := range o.Items {
		o.Items[i].ID = uuid.New()
		o.Items[i].OrderID = o.ID
	}
	for i := range o.Payments {
		o.Payments[i].ID = uuid.New()
		o.Payments[i].OrderID = o.ID
	}
	o.CreatedAt = time.Now()
	r.orders[o.ID] = o
	return nil
}

func (r *stubOrderRepo) CreatePaymentTx(_ *gorm.DB, p *model.OrderPayment) error {
	p.ID = uuid.New()
	r.payments = append(r.payments, *p)
	return nil
}

func (r *stubOrderRepo) LockByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *stubOrderRepo) ListItemsTx(_ *gorm.DB, orderID uuid.UUID) ([]model.OrderItem, error) {
	o, ok := r.orders[orderID]
	if !ok {
		return nil, nil
	}
	return o.Items, nil
}

func (r *stubOrderRepo) UpdateStatusTx(_ *gorm.DB, id uuid.UUID, status string) error {
	r.orders[id].Status = status
	return nil
}

func (r *stubOrderRepo) LoadWithDetails(_ context.Context, id uuid.UUID) (*model.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return o, nil
}

func (r *stubOrderRepo) List(_ context.Context, f repository.OrderFilter) ([]model.Order, int64, error) {
	r.lastFilter = f
	var out []model.Order
	for _, o := range r.orders {
		if f.AdminID == nil || o.AdminID == *f.AdminID {
			out = append(out, *o)
		}
	}
	return out, int64(len(out)), nil
}

func (r *stubOrderRepo) FindInstallmentSettlement(_ context.Context, orderID, installmentPaymentID uuid.UUID) (*model.OrderPayment, error) {
	for i := range r.payments {
		p := &r.payments[i]
		if p.OrderID == orderID && containsID(p.Meta, installmentPaymentID) {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubOrderRepo) DB() *gorm.DB { return nil }

var _ repository.OrderRepository = (*stubOrderRepo)(nil)

func containsID(meta []byte, id uuid.UUID) bool {
	var m model.PaymentMeta
	return json.Unmarshal(meta, &m) == nil && m.InstallmentPaymentID == id
}

// stubCreditRepo records credit accounts.
type stubCreditRepo struct{ accounts []model.CreditAccount }

func (r *stubCreditRepo) CreateTx(_ *gorm.DB, a *model.CreditAccount) error {
	a.ID = uuid.New()
	r.accounts = append(r.accounts, *a)
	return nil
}

var _ repository.CreditAccountRepository = (*stubCreditRepo)(nil)

// stubInstallmentRepo keeps plans and their payments in separate maps, the way
// the tables are laid out.
type stubInstallmentRepo struct {
	plans    map[uuid.UUID]*model.InstallmentPlan
	payments map[uuid.UUID]*model.InstallmentPayment
}

func newStubInstallmentRepo() *stubInstallmentRepo {
	return &stubInstallmentRepo{
		plans:    make(map[uuid.UUID]*model.InstallmentPlan),
		payments: make(map[uuid.UUID]*model.InstallmentPayment),
	}
}

func (r *stubInstallmentRepo) CreatePlanTx(_ *gorm.DB, p *model.InstallmentPlan) error {
	p.ID = uuid.New()
	for i := range p.Payments {
		p.Payments[i].ID = uuid.New()
		p.Payments[i].InstallmentPlanID = p.ID
		ip := p.Payments[i]
		r.payments[ip.ID] = &ip
	}
	plan := *p
	plan.Payments = nil
	r.plans[p.ID] = &plan
	return nil
}

func (r *stubInstallmentRepo) LockPaymentTx(_ *gorm.DB, id uuid.UUID) (*model.InstallmentPayment, error) {
	p, ok := r.payments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubInstallmentRepo) LockPlanTx(_ *gorm.DB, id uuid.UUID) (*model.InstallmentPlan, error) {
	p, ok := r.plans[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubInstallmentRepo) MarkPaidTx(_ *gorm.DB, id uuid.UUID, method string, paidAt time.Time) error {
	p := r.payments[id]
	p.Status = model.InstallmentPaid
	p.PaidAt = &paidAt
	p.Method = &method
	return nil
}

func (r *stubInstallmentRepo) UpdatePlanBalanceTx(_ *gorm.DB, id uuid.UUID, balance decimal.Decimal, status string) error {
	p := r.plans[id]
	p.RemainingBalance = balance
	p.Status = status
	return nil
}

// schedule returns the plan's payments ordered by payment number.
func (r *stubInstallmentRepo) schedule(planID uuid.UUID) []model.InstallmentPayment {
	var out []model.InstallmentPayment
	for _, p := range r.payments {
		if p.InstallmentPlanID == planID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PaymentNumber < out[j].PaymentNumber })
	return out
}

func (r *stubInstallmentRepo) FindPlan(_ context.Context, id uuid.UUID) (*model.InstallmentPlan, error) {
	p, ok := r.plans[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	cp.Payments = r.schedule(id)
	return &cp, nil
}

func (r *stubInstallmentRepo) ListPlans(ctx context.Context) ([]model.InstallmentPlan, error) {
	var out []model.InstallmentPlan
	for id := range r.plans {
		p, _ := r.FindPlan(ctx, id)
		out = append(out, *p)
	}
	return out, nil
}

func (r *stubInstallmentRepo) ListPlansByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.InstallmentPlan, error) {
	var out []model.InstallmentPlan
	for id, p := range r.plans {
		if p.CustomerID == customerID {
			full, _ := r.FindPlan(ctx, id)
			out = append(out, *full)
		}
	}
	return out, nil
}

func (r *stubInstallmentRepo) FindPayment(_ context.Context, id uuid.UUID) (*model.InstallmentPayment, error) {
	p, ok := r.payments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *stubInstallmentRepo) MarkOverdue(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for _, p := range r.payments {
		plan := r.plans[p.InstallmentPlanID]
		if plan.Status == model.PlanActive && p.Status == model.InstallmentPending && p.DueDate.Before(now) {
			p.Status = model.InstallmentLate
			n++
		}
	}
	return n, nil
}

var _ repository.InstallmentRepository = (*stubInstallmentRepo)(nil)

// stubWatcher captures post-commit stock notifications.
type stubWatcher struct {
	mu    sync.Mutex
	calls [][]uuid.UUID
}

func (w *stubWatcher) VariantsChanged(_ context.Context, ids []uuid.UUID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.calls = append(w.calls, ids)
}

var _ StockWatcher = (*stubWatcher)(nil)

// stubNotificationRepo enforces one unread row per (variant, type).
type stubNotificationRepo struct {
	mu    sync.Mutex
	notes []model.StockNotification
}

func (r *stubNotificationRepo) HasUnread(_ context.Context, variantID uuid.UUID, kind string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notes {
		if n.VariantID == variantID && n.NotificationType == kind && !n.IsRead {
			return true, nil
		}
	}
	return false, nil
}

func (r *stubNotificationRepo) Create(_ context.Context, n *model.StockNotification) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.notes {
		if e.VariantID == n.VariantID && e.NotificationType == n.NotificationType && !e.IsRead {
			return false, nil
		}
	}
	n.ID = uuid.New()
	n.CreatedAt = time.Now()
	r.notes = append(r.notes, *n)
	return true, nil
}

func (r *stubNotificationRepo) ResolveUnread(_ context.Context, variantID uuid.UUID, types []string, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for i := range r.notes {
		e := &r.notes[i]
		if e.VariantID != variantID || e.IsRead {
			continue
		}
		for _, t := range types {
			if e.NotificationType == t {
				e.IsRead = true
				e.ReadAt = &at
				n++
			}
		}
	}
	return n, nil
}

func (r *stubNotificationRepo) ListUnread(_ context.Context, limit int) ([]model.StockNotification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.StockNotification
	for _, n := range r.notes {
		if !n.IsRead && len(out) < limit {
			out = append(out, n)
		}
	}
	return out, nil
}

func (r *stubNotificationRepo) MarkRead(_ context.Context, id, adminID uuid.UUID, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.notes {
		if r.notes[i].ID == id {
			r.notes[i].IsRead = true
			r.notes[i].ReadAt = &at
			r.notes[i].ReadBy = &adminID
			return 1, nil
		}
	}
	return 0, nil
}

func (r *stubNotificationRepo) Stats(_ context.Context) ([]dto.NotificationStat, error) {
	return nil, nil
}

// count returns how many rows of kind exist for the variant, read or not.
func (r *stubNotificationRepo) count(variantID uuid.UUID, kind string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.notes {
		if e.VariantID == variantID && e.NotificationType == kind {
			n++
		}
	}
	return n
}

var _ repository.StockNotificationRepository = (*stubNotificationRepo)(nil)

type stubAdminRepo struct {
	mu     sync.Mutex
	admins []model.Admin
	calls  int
}

func (r *stubAdminRepo) ListWithRoles(_ context.Context) ([]model.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return r.admins, nil
}

var _ repository.AdminRepository = (*stubAdminRepo)(nil)

// stubMailer records recipients.
type stubMailer struct {
	mu   sync.Mutex
	sent []string
	subj []string
}

func (m *stubMailer) SendNotificationEmail(_ context.Context, to, subject, _ string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to)
	m.subj = append(m.subj, subject)
	return true
}

var _ EmailSender = (*stubMailer)(nil)

// stubReportRepo stores report rows and returns canned aggregates.
type stubReportRepo struct {
	reports    map[uuid.UUID]*model.Report
	summary    dto.SalesSummary
	methods    []dto.PaymentMethodTotal
	lastWindow repository.SalesWindow
}

func newStubReportRepo() *stubReportRepo {
	return &stubReportRepo{reports: make(map[uuid.UUID]*model.Report)}
}

func (r *stubReportRepo) Create(_ context.Context, rpt *model.Report) error {
	rpt.CreatedAt = time.Now()
	r.reports[rpt.ID] = rpt
	return nil
}

func (r *stubReportRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Report, error) {
	rpt, ok := r.reports[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return rpt, nil
}

func (r *stubReportRepo) ClaimPending(_ context.Context, limit int, now time.Time) ([]model.Report, error) {
	var out []model.Report
	for _, rpt := range r.reports {
		if rpt.Status == model.ReportPending && len(out) < limit {
			rpt.Status = model.ReportProcessing
			rpt.ProcessingStartedAt = &now
			out = append(out, *rpt)
		}
	}
	return out, nil
}

func (r *stubReportRepo) Complete(_ context.Context, id uuid.UUID, path string, at time.Time) error {
	rpt := r.reports[id]
	rpt.Status = model.ReportCompleted
	rpt.ResultPath = &path
	rpt.ProcessingCompletedAt = &at
	return nil
}

func (r *stubReportRepo) Fail(_ context.Context, id uuid.UUID, reason string, at time.Time) error {
	rpt := r.reports[id]
	rpt.Status = model.ReportFailed
	rpt.Error = &reason
	rpt.ProcessingCompletedAt = &at
	return nil
}

func (r *stubReportRepo) SalesSummary(_ context.Context, w repository.SalesWindow) (*dto.SalesSummary, error) {
	r.lastWindow = w
	s := r.summary
	return &s, nil
}

func (r *stubReportRepo) PaymentMethodTotals(_ context.Context, w repository.SalesWindow) ([]dto.PaymentMethodTotal, error) {
	r.lastWindow = w
	return r.methods, nil
}

func (r *stubReportRepo) ProductBreakdown(_ context.Context, w repository.SalesWindow) ([]dto.ProductSalesLine, error) {
	r.lastWindow = w
	return nil, nil
}

var _ repository.ReportRepository = (*stubReportRepo)(nil)

// ── Fixtures ──────────────────────────────────────────────────────────────────

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newVariant(qty int, price string) *model.Variant {
	return &model.Variant{
		ID:           uuid.New(),
		SKU:          "SKU-" + uuid.NewString()[:6],
		SellingPrice: dec(price),
		CostPrice:    dec("1"),
		Quantity:     qty,
		IsActive:     true,
	}
}
