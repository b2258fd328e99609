package service

import (
	"fmt"
	"html"

	"github.com/Qodebyte-Pro-Services/bmt.api/internal/model"
)

const emailFooter = `<hr><p style="font-size: 12px; color: #999;">This is an automated notification from BMT Inventory Management System.</p>`

func renderStockEmail(kind string, v *model.Variant, threshold int) (subject, body string) {
	name, sku := v.SKU, html.EscapeString(v.SKU)
	if v.Product != nil && v.Product.Name != "" {
		name = v.Product.Name
	}
	safeName := html.EscapeString(name)

	switch kind {
	case model.NotifyOutOfStock:
		subject = "🚨 URGENT: Out of Stock - " + name
		body = fmt.Sprintf(`<div style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
<h2 style="color: #d32f2f;">🚨 CRITICAL: Out of Stock</h2>
<p><strong>Product:</strong> %s</p>
<p><strong>SKU:</strong> %s</p>
<p style="color: #d32f2f; font-weight: bold; font-size: 16px;">This item is now OUT OF STOCK.</p>
<p style="color: #d32f2f; font-weight: bold;">Immediate action required to restock this item.</p>
%s</div>`, safeName, sku, emailFooter)
	case model.NotifyRestocked:
		subject = "✅ Back in Stock – " + name
		body = fmt.Sprintf(`<div style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
<h2 style="color: #2e7d32;">✅ Back in Stock</h2>
<p><strong>Product:</strong> %s</p>
<p><strong>SKU:</strong> %s</p>
<p><strong>Current Quantity:</strong> %d</p>
<p style="color: #2e7d32; font-weight: bold;">This item has been successfully restocked and is now available.</p>
%s</div>`, safeName, sku, v.Quantity, emailFooter)
	default:
		subject = "⚠️ Low Stock Alert - " + name
		body = fmt.Sprintf(`<div style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
<h2 style="color: #ff9800;">⚠️ Low Stock Alert</h2>
<p><strong>Product:</strong> %s</p>
<p><strong>SKU:</strong> %s</p>
<p><strong>Current Quantity:</strong> <span style="color: #ff9800; font-weight: bold;">%d</span></p>
<p><strong>Threshold:</strong> %d</p>
<p style="color: #d32f2f; font-weight: bold;">Please restock soon to avoid stockouts.</p>
%s</div>`, safeName, sku, v.Quantity, threshold, emailFooter)
	}
	return subject, body
}
