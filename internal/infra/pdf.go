package infra

// pdf.go: sales report rendering with go-pdf/fpdf.
// Layout: A4 portrait, header with period and generation time, summary block,
// then optional payment-method and product tables.

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Qodebyte-Pro-Services/bmt.api/internal/dto"

	"github.com/go-pdf/fpdf"
)

// WriteSalesReportPDF renders report into dir/name and returns the file path.
func WriteSalesReportPDF(report *dto.SalesReport, dir, name string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	filePath := filepath.Join(dir, name)

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(contentW, 9, "Sales Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	period := report.Meta.Period
	if report.Meta.StartDate != "" {
		period = fmt.Sprintf("%s (%s to %s)", period, report.Meta.StartDate, report.Meta.EndDate)
	}
	pdf.CellFormat(contentW, 5, "Period: "+period, "", 1, "C", false, 0, "")
	pdf.CellFormat(contentW, 5, "Cashier: "+report.Meta.Cashier+"   Generated: "+report.Meta.GeneratedAt, "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// ── Summary ──────────────────────────────────────────────────────────────
	if s := report.Summary; s != nil {
		sectionTitle(pdf, contentW, "Summary")
		rows := [][2]string{
			{"Orders", fmt.Sprintf("%d", s.TotalOrders)},
			{"Subtotal", s.Subtotal.StringFixed(2)},
			{"Tax", s.TotalTax.StringFixed(2)},
			{"Discount", s.TotalDiscount.StringFixed(2)},
			{"Total sales", s.TotalSales.StringFixed(2)},
			{"Cost of goods", s.TotalCOGS.StringFixed(2)},
			{"Gross profit", s.GrossProfit.StringFixed(2)},
		}
		pdf.SetFont("Helvetica", "", 10)
		for _, r := range rows {
			pdf.CellFormat(contentW*0.6, 6, r[0], "B", 0, "L", false, 0, "")
			pdf.CellFormat(contentW*0.4, 6, r[1], "B", 1, "R", false, 0, "")
		}
		pdf.Ln(4)
	}

	// ── Payment methods ──────────────────────────────────────────────────────
	if len(report.PaymentMethods) > 0 {
		sectionTitle(pdf, contentW, "Payment methods")
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(contentW*0.5, 6, "Method", "B", 0, "L", false, 0, "")
		pdf.CellFormat(contentW*0.2, 6, "Count", "B", 0, "R", false, 0, "")
		pdf.CellFormat(contentW*0.3, 6, "Amount", "B", 1, "R", false, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		for _, pm := range report.PaymentMethods {
			pdf.CellFormat(contentW*0.5, 5, pm.Method, "", 0, "L", false, 0, "")
			pdf.CellFormat(contentW*0.2, 5, fmt.Sprintf("%d", pm.Count), "", 0, "R", false, 0, "")
			pdf.CellFormat(contentW*0.3, 5, pm.Amount.StringFixed(2), "", 1, "R", false, 0, "")
		}
		pdf.Ln(4)
	}

	// ── Products ─────────────────────────────────────────────────────────────
	if len(report.ProductBreakdown) > 0 {
		sectionTitle(pdf, contentW, "Products")
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(contentW*0.4, 6, "Product", "B", 0, "L", false, 0, "")
		pdf.CellFormat(contentW*0.15, 6, "Qty", "B", 0, "R", false, 0, "")
		pdf.CellFormat(contentW*0.225, 6, "Revenue", "B", 0, "R", false, 0, "")
		pdf.CellFormat(contentW*0.225, 6, "COGS", "B", 1, "R", false, 0, "")
		pdf.SetFont("Helvetica", "", 8)
		for _, p := range report.ProductBreakdown {
			label := p.ProductName + " (" + p.SKU + ")"
			if len(label) > 48 {
				label = label[:47] + "..."
			}
			pdf.CellFormat(contentW*0.4, 5, label, "", 0, "L", false, 0, "")
			pdf.CellFormat(contentW*0.15, 5, fmt.Sprintf("%d", p.Quantity), "", 0, "R", false, 0, "")
			pdf.CellFormat(contentW*0.225, 5, p.Revenue.StringFixed(2), "", 0, "R", false, 0, "")
			pdf.CellFormat(contentW*0.225, 5, p.COGS.StringFixed(2), "", 1, "R", false, 0, "")
		}
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}

func sectionTitle(pdf *fpdf.Fpdf, w float64, title string) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(w, 7, title, "", 1, "L", false, 0, "")
}
