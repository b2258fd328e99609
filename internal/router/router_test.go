package router

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Qodebyte-Pro-Services/bmt.api/internal/apierror"
	"github.com/Qodebyte-Pro-Services/bmt.api/internal/dto"
	"github.com/Qodebyte-Pro-Services/bmt.api/internal/handler"
	"github.com/Qodebyte-Pro-Services/bmt.api/internal/middleware"
	"github.com/Qodebyte-Pro-Services/bmt.api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret-key"

// ── Fake services ─────────────────────────────────────────────────────────────

type fakeSales struct {
	createErr error
	gotActor  uuid.UUID
	gotReq    dto.CreateSaleRequest
}

func (f *fakeSales) CreateSale(_ context.Context, adminID uuid.UUID, req dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	f.gotActor, f.gotReq = adminID, req
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &dto.SaleResponse{ID: uuid.NewString(), Status: "completed", TotalAmount: req.Payments[0].Amount}, nil
}
func (f *fakeSales) GetSale(_ context.Context, _ uuid.UUID) (*dto.SaleResponse, error) {
	return nil, apierror.NotFound("Sale not found")
}
func (f *fakeSales) ListSales(_ context.Context, _ uuid.UUID, _ dto.SaleFilter) (*dto.SaleListResponse, error) {
	return &dto.SaleListResponse{Data: []dto.SaleResponse{}}, nil
}

var _ service.SaleService = (*fakeSales)(nil)

type fakeInstallments struct{ paid uuid.UUID }

func (f *fakeInstallments) PayInstallment(_ context.Context, _, paymentID uuid.UUID, req dto.PayInstallmentRequest) (*dto.PayInstallmentResponse, error) {
	f.paid = paymentID
	return &dto.PayInstallmentResponse{Message: "Installment payment recorded", Balance: req.Amount}, nil
}
func (f *fakeInstallments) ListPlans(context.Context) ([]dto.InstallmentPlanResponse, error) {
	return []dto.InstallmentPlanResponse{}, nil
}
func (f *fakeInstallments) ListCustomerPlans(context.Context, uuid.UUID) ([]dto.InstallmentPlanResponse, error) {
	return []dto.InstallmentPlanResponse{}, nil
}
func (f *fakeInstallments) GetPlan(context.Context, uuid.UUID) (*dto.InstallmentPlanResponse, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeInstallments) GetReceipt(context.Context, uuid.UUID) (*dto.InstallmentReceiptResponse, error) {
	return nil, apierror.Invalid("Installment has not been paid")
}
func (f *fakeInstallments) MarkOverdue(context.Context) (int64, error) { return 0, nil }

var _ service.InstallmentService = (*fakeInstallments)(nil)

type fakeInventory struct{ resp *dto.AdjustStockResponse }

func (f *fakeInventory) AdjustStock(context.Context, uuid.UUID, dto.AdjustStockRequest) (*dto.AdjustStockResponse, error) {
	return f.resp, nil
}
func (f *fakeInventory) AdjustTx(*gorm.DB, uuid.UUID, dto.StockAdjustmentItem) (*dto.StockAdjustmentResult, error) {
	return nil, nil
}
func (f *fakeInventory) Restock(_ context.Context, _, id uuid.UUID, req dto.RestockRequest) (*dto.StockAdjustmentResult, error) {
	return &dto.StockAdjustmentResult{VariantID: id.String(), NewQuantity: req.Quantity, Delta: req.Quantity}, nil
}
func (f *fakeInventory) ListMovements(_ context.Context, filter dto.MovementFilter) (*dto.MovementListResponse, error) {
	return &dto.MovementListResponse{Data: []dto.MovementResponse{}, Limit: filter.Limit}, nil
}

var _ service.InventoryService = (*fakeInventory)(nil)

type fakeNotifications struct {
	markErr error
	limit   int
}

func (f *fakeNotifications) VariantsChanged(context.Context, []uuid.UUID)     {}
func (f *fakeNotifications) ProcessVariant(context.Context, uuid.UUID) error  { return nil }
func (f *fakeNotifications) CheckAllStockLevels(context.Context) (int, error) { return 7, nil }
func (f *fakeNotifications) Stats(context.Context) ([]dto.NotificationStat, error) {
	return []dto.NotificationStat{}, nil
}
func (f *fakeNotifications) ListUnread(_ context.Context, limit int) ([]dto.StockNotificationResponse, error) {
	f.limit = limit
	return []dto.StockNotificationResponse{}, nil
}
func (f *fakeNotifications) MarkAsRead(context.Context, uuid.UUID, uuid.UUID) error { return f.markErr }

var _ service.NotificationService = (*fakeNotifications)(nil)

type fakeReports struct {
	queued bool
	file   string
}

func (f *fakeReports) BuildSalesReport(context.Context, uuid.UUID, dto.SalesReportQuery) (*dto.SalesReportResult, error) {
	if f.queued {
		return &dto.SalesReportResult{Queued: true, ReportID: uuid.NewString()}, nil
	}
	return &dto.SalesReportResult{Report: &dto.SalesReport{}}, nil
}
func (f *fakeReports) ReportStatus(context.Context, uuid.UUID) (*dto.ReportStatusResponse, error) {
	return &dto.ReportStatusResponse{Status: "pending"}, nil
}
func (f *fakeReports) DownloadReport(context.Context, uuid.UUID) (string, string, error) {
	if f.file == "" {
		return "", "", apierror.Invalid("Report not ready")
	}
	return f.file, "json", nil
}
func (f *fakeReports) ProcessPending(context.Context, int) (int, error) { return 0, nil }

var _ service.ReportService = (*fakeReports)(nil)

// ── Harness ───────────────────────────────────────────────────────────────────

type harness struct {
	engine        *gin.Engine
	token         string
	admin         uuid.UUID
	sales         *fakeSales
	installments  *fakeInstallments
	inventory     *fakeInventory
	notifications *fakeNotifications
	reports       *fakeReports
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	h := &harness{
		admin:         uuid.New(),
		sales:         &fakeSales{},
		installments:  &fakeInstallments{},
		inventory:     &fakeInventory{resp: &dto.AdjustStockResponse{Message: "Stock adjusted"}},
		notifications: &fakeNotifications{},
		reports:       &fakeReports{},
	}
	tok, err := middleware.IssueToken(testSecret, h.admin, "admin@example.com", "Super Admin", time.Hour)
	require.NoError(t, err)
	h.token = tok

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Recovery())
	v1 := r.Group("/v1", middleware.JWTAuth(testSecret))
	Register(v1,
		handler.NewSalesHandler(h.sales),
		handler.NewInstallmentsHandler(h.installments),
		handler.NewInventoryHandler(h.inventory),
		handler.NewNotificationsHandler(h.notifications),
		handler.NewReportsHandler(h.reports),
	)
	h.engine = r
	return h
}

func (h *harness) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+h.token)
	w := httptest.NewRecorder()
	h.engine.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func saleBody() map[string]any {
	return map[string]any{
		"items":    []map[string]any{{"variant_id": uuid.NewString(), "quantity": 2, "unit_price": "100.00"}},
		"payments": []map[string]any{{"method": "cash", "amount": "200.00"}},
	}
}

// ── Auth ──────────────────────────────────────────────────────────────────────

func TestAuth_RejectsMissingAndBadTokens(t *testing.T) {
	h := newHarness(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/sales", nil)
	w := httptest.NewRecorder()
	h.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Authentication required", decode(t, w)["detail"])

	bad, err := middleware.IssueToken("other-secret", uuid.New(), "x@example.com", "", time.Hour)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/v1/sales", nil)
	req.Header.Set("Authorization", "Bearer "+bad)
	w = httptest.NewRecorder()
	h.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid or expired token", decode(t, w)["detail"])

	expired, err := middleware.IssueToken(testSecret, uuid.New(), "x@example.com", "", -time.Minute)
	require.NoError(t, err)
	req = httptest.NewRequest(http.MethodGet, "/v1/sales", nil)
	req.Header.Set("Authorization", "Bearer "+expired)
	w = httptest.NewRecorder()
	h.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// ── Sales ─────────────────────────────────────────────────────────────────────

func TestCreateSale_Created(t *testing.T) {
	h := newHarness(t)
	w := h.do(t, http.MethodPost, "/v1/sales", saleBody())

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, h.admin, h.sales.gotActor)
	assert.Equal(t, 2, h.sales.gotReq.Items[0].Quantity)
	assert.Equal(t, "200", h.sales.gotReq.Payments[0].Amount.String())
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestCreateSale_ValidationFields(t *testing.T) {
	h := newHarness(t)
	body := saleBody()
	body["payments"] = []map[string]any{{"method": "barter", "amount": "200.00"}}

	w := h.do(t, http.MethodPost, "/v1/sales", body)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	out := decode(t, w)
	assert.Equal(t, "Validation failed", out["detail"])
	fields := out["fields"].(map[string]any)
	assert.Equal(t, "oneof", fields["CreateSaleRequest.Payments[0].Method"])
}

func TestCreateSale_DomainAndInternalErrors(t *testing.T) {
	h := newHarness(t)

	h.sales.createErr = apierror.Invalid("Insufficient stock")
	w := h.do(t, http.MethodPost, "/v1/sales", saleBody())
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Insufficient stock", decode(t, w)["detail"])

	h.sales.createErr = errors.New("pq: connection refused")
	w = h.do(t, http.MethodPost, "/v1/sales", saleBody())
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Internal server error", decode(t, w)["detail"])
}

func TestGetSale_NotFoundAndBadID(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, http.StatusNotFound, h.do(t, http.MethodGet, "/v1/sales/"+uuid.NewString(), nil).Code)

	w := h.do(t, http.MethodGet, "/v1/sales/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid id", decode(t, w)["detail"])
}

// ── Installments ──────────────────────────────────────────────────────────────

func TestPayInstallment(t *testing.T) {
	h := newHarness(t)
	id := uuid.New()

	w := h.do(t, http.MethodPost, "/v1/installments/payments/"+id.String()+"/pay",
		map[string]any{"amount": "83.33", "method": "card"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, id, h.installments.paid)

	w = h.do(t, http.MethodPost, "/v1/installments/payments/"+id.String()+"/pay",
		map[string]any{"amount": "0", "method": "card"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestInstallmentReads(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodGet, "/v1/installments/plans", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decode(t, w), "data")

	// Unwrapped gorm errors are internal, never leaked.
	w = h.do(t, http.MethodGet, "/v1/installments/plans/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = h.do(t, http.MethodGet, "/v1/installments/payments/"+uuid.NewString()+"/receipt", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(t, http.MethodGet, "/v1/customers/"+uuid.NewString()+"/installment-plans", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

// ── Inventory ─────────────────────────────────────────────────────────────────

func TestAdjustStock_AllFailedIs400(t *testing.T) {
	h := newHarness(t)
	h.inventory.resp = &dto.AdjustStockResponse{
		Message: "Stock adjustment completed with errors",
		Results: []dto.StockAdjustmentResult{},
		Errors:  []dto.StockAdjustmentError{{VariantID: "x", Error: "Variant not found"}},
	}
	body := map[string]any{"adjustments": []map[string]any{
		{"variant_id": uuid.NewString(), "new_quantity": 3, "reason": "decrease"},
	}}

	w := h.do(t, http.MethodPost, "/v1/inventory/adjustments", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Len(t, decode(t, w)["errors"], 1)
}

func TestRestockAndMovements(t *testing.T) {
	h := newHarness(t)
	id := uuid.NewString()

	w := h.do(t, http.MethodPost, "/v1/inventory/variants/"+id+"/restock", map[string]any{"quantity": 5})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, decode(t, w)["variant_id"])

	w = h.do(t, http.MethodPost, "/v1/inventory/variants/"+id+"/restock", map[string]any{"quantity": 0})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = h.do(t, http.MethodGet, "/v1/inventory/movements?limit=25&type=sale", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 25, decode(t, w)["limit"])
}

// ── Notifications ─────────────────────────────────────────────────────────────

func TestNotificationsRoutes(t *testing.T) {
	h := newHarness(t)

	w := h.do(t, http.MethodGet, "/v1/notifications?limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, h.notifications.limit)

	assert.Equal(t, http.StatusNoContent, h.do(t, http.MethodPatch, "/v1/notifications/"+uuid.NewString()+"/read", nil).Code)
	h.notifications.markErr = apierror.NotFound("Notification not found")
	assert.Equal(t, http.StatusNotFound, h.do(t, http.MethodPatch, "/v1/notifications/"+uuid.NewString()+"/read", nil).Code)

	w = h.do(t, http.MethodPost, "/v1/notifications/scan", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 7, decode(t, w)["scanned"])

	assert.Equal(t, http.StatusOK, h.do(t, http.MethodGet, "/v1/notifications/stats", nil).Code)
}

// ── Reports ───────────────────────────────────────────────────────────────────

func TestSalesReport(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, http.StatusOK, h.do(t, http.MethodGet, "/v1/reports/sales?period=day&summary=true", nil).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, h.do(t, http.MethodGet, "/v1/reports/sales?period=decade", nil).Code)

	h.reports.queued = true
	w := h.do(t, http.MethodGet, "/v1/reports/sales?period=year&format=xlsx", nil)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, true, decode(t, w)["queued"])
}

func TestReportDownload(t *testing.T) {
	h := newHarness(t)
	id := uuid.NewString()

	assert.Equal(t, http.StatusBadRequest, h.do(t, http.MethodGet, "/v1/reports/"+id+"/download", nil).Code)

	h.reports.file = filepath.Join(t.TempDir(), "sales_"+id+".json")
	require.NoError(t, os.WriteFile(h.reports.file, []byte(`{"meta":{}}`), 0o644))
	w := h.do(t, http.MethodGet, "/v1/reports/"+id+"/download", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "sales_"+id+".json")
	assert.Equal(t, `{"meta":{}}`, w.Body.String())

	assert.Equal(t, http.StatusOK, h.do(t, http.MethodGet, "/v1/reports/"+id, nil).Code)
}
