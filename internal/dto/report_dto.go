package dto

import "github.com/shopspring/decimal"

// SalesReportQuery mirrors GET /v1/reports/sales query parameters.
// Period: day | week | month | year | custom. Year and custom ranges are queued.
type SalesReportQuery struct {
	Period           string `form:"period"            json:"period"            validate:"required,oneof=day week month year custom"`
	StartDate        string `form:"start_date"        json:"start_date"        validate:"omitempty,datetime=2006-01-02"`
	EndDate          string `form:"end_date"          json:"end_date"          validate:"omitempty,datetime=2006-01-02"`
	Cashier          string `form:"cashier"           json:"cashier"`
	Summary          bool   `form:"summary"           json:"summary"`
	PaymentMethods   bool   `form:"payment_methods"   json:"payment_methods"`
	ProductBreakdown bool   `form:"product_breakdown" json:"product_breakdown"`
	Format           string `form:"format"            json:"format"            validate:"omitempty,oneof=json pdf xlsx"`
}

type ReportMeta struct {
	Period      string `json:"period"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Cashier     string `json:"cashier"`
	GeneratedAt string `json:"generated_at"`
}

type SalesSummary struct {
	TotalOrders   int64           `json:"total_orders"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TotalTax      decimal.Decimal `json:"total_tax"`
	TotalDiscount decimal.Decimal `json:"total_discount"`
	TotalSales    decimal.Decimal `json:"total_sales"`
	TotalCOGS     decimal.Decimal `json:"total_cogs"`
	GrossProfit   decimal.Decimal `json:"gross_profit"`
}

type PaymentMethodTotal struct {
	Method string          `json:"method"`
	Count  int64           `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

type ProductSalesLine struct {
	VariantID   string          `json:"variant_id"`
	SKU         string          `json:"sku"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	Revenue     decimal.Decimal `json:"revenue"`
	COGS        decimal.Decimal `json:"cogs"`
}

// SalesReport is the generated body, returned inline or written to a file.
type SalesReport struct {
	Meta             ReportMeta           `json:"meta"`
	Summary          *SalesSummary        `json:"summary,omitempty"`
	PaymentMethods   []PaymentMethodTotal `json:"payment_methods,omitempty"`
	ProductBreakdown []ProductSalesLine   `json:"product_breakdown,omitempty"`
}

// SalesReportResult is either an inline report or a queued job reference.
type SalesReportResult struct {
	Queued   bool         `json:"queued"`
	ReportID string       `json:"report_id,omitempty"`
	Report   *SalesReport `json:"report,omitempty"`
}

type ReportStatusResponse struct {
	ReportID              string  `json:"report_id"`
	Status                string  `json:"status"`
	Format                string  `json:"format"`
	CreatedAt             string  `json:"created_at"`
	ProcessingStartedAt   *string `json:"processing_started_at,omitempty"`
	ProcessingCompletedAt *string `json:"processing_completed_at,omitempty"`
	DownloadURL           *string `json:"download_url,omitempty"`
	Error                 *string `json:"error,omitempty"`
}
