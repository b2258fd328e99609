package infra

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/Qodebyte-Pro-Services/bmt.api/internal/dto"

	"github.com/xuri/excelize/v2"
)

// WriteSalesReportXLSX renders report as a workbook with one sheet per section.
func WriteSalesReportXLSX(report *dto.SalesReport, dir, name string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("xlsx: create storage dir: %w", err)
	}
	filePath := filepath.Join(dir, name)

	f := excelize.NewFile()
	defer f.Close()

	const summary = "Summary"
	if err := f.SetSheetName("Sheet1", summary); err != nil {
		return "", fmt.Errorf("xlsx: rename sheet: %w", err)
	}
	rows := [][]any{
		{"Period", report.Meta.Period},
		{"Start date", report.Meta.StartDate},
		{"End date", report.Meta.EndDate},
		{"Cashier", report.Meta.Cashier},
		{"Generated at", report.Meta.GeneratedAt},
	}
	if s := report.Summary; s != nil {
		rows = append(rows,
			[]any{},
			[]any{"Orders", s.TotalOrders},
			[]any{"Subtotal", s.Subtotal.InexactFloat64()},
			[]any{"Tax", s.TotalTax.InexactFloat64()},
			[]any{"Discount", s.TotalDiscount.InexactFloat64()},
			[]any{"Total sales", s.TotalSales.InexactFloat64()},
			[]any{"Cost of goods", s.TotalCOGS.InexactFloat64()},
			[]any{"Gross profit", s.GrossProfit.InexactFloat64()},
		)
	}
	if err := writeRows(f, summary, rows); err != nil {
		return "", err
	}

	if len(report.PaymentMethods) > 0 {
		const sheet = "Payment methods"
		if _, err := f.NewSheet(sheet); err != nil {
			return "", fmt.Errorf("xlsx: new sheet: %w", err)
		}
		pm := [][]any{{"Method", "Count", "Amount"}}
		for _, p := range report.PaymentMethods {
			pm = append(pm, []any{p.Method, p.Count, p.Amount.InexactFloat64()})
		}
		if err := writeRows(f, sheet, pm); err != nil {
			return "", err
		}
	}

	if len(report.ProductBreakdown) > 0 {
		const sheet = "Products"
		if _, err := f.NewSheet(sheet); err != nil {
			return "", fmt.Errorf("xlsx: new sheet: %w", err)
		}
		pb := [][]any{{"Variant", "SKU", "Product", "Quantity", "Revenue", "COGS"}}
		for _, p := range report.ProductBreakdown {
			pb = append(pb, []any{p.VariantID, p.SKU, p.ProductName, p.Quantity, p.Revenue.InexactFloat64(), p.COGS.InexactFloat64()})
		}
		if err := writeRows(f, sheet, pb); err != nil {
			return "", err
		}
	}

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("xlsx: write file: %w", err)
	}
	return filePath, nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("xlsx: write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
