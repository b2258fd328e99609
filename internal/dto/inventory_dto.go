package dto

// StockAdjustmentItem sets a variant to an absolute quantity.
type StockAdjustmentItem struct {
	VariantID   string  `json:"variant_id"   validate:"required,uuid"`
	NewQuantity *int    `json:"new_quantity" validate:"required,min=0"`
	Reason      string  `json:"reason"       validate:"required,oneof=increase decrease"`
	Notes       *string `json:"notes"`
}

// AdjustStockRequest accepts either a batch or a single adjustment at the top
// level. Atomic=true rolls the whole batch back on the first failure.
type AdjustStockRequest struct {
	Adjustments []StockAdjustmentItem `json:"adjustments" validate:"dive"`
	VariantID   string                `json:"variant_id"   validate:"omitempty,uuid"`
	NewQuantity *int                  `json:"new_quantity" validate:"omitempty,min=0"`
	Reason      string                `json:"reason"       validate:"omitempty,oneof=increase decrease"`
	Notes       *string               `json:"notes"`
	Atomic      bool                  `json:"atomic"`
}

type StockAdjustmentResult struct {
	VariantID   string `json:"variant_id"`
	OldQuantity int    `json:"old_quantity"`
	NewQuantity int    `json:"new_quantity"`
	Delta       int    `json:"delta"`
}

type StockAdjustmentError struct {
	VariantID string `json:"variant_id"`
	Error     string `json:"error"`
}

type AdjustStockResponse struct {
	Message string                  `json:"message"`
	Results []StockAdjustmentResult `json:"results"`
	Errors  []StockAdjustmentError  `json:"errors,omitempty"`
}

type RestockRequest struct {
	Quantity int     `json:"quantity" validate:"required,gt=0"`
	Note     *string `json:"note"`
}

// MovementFilter drives GET /v1/inventory/movements.
type MovementFilter struct {
	VariantID string `form:"variant_id"`
	ProductID string `form:"product_id"`
	Type      string `form:"type"`
	Page      int    `form:"page"`
	Limit     int    `form:"limit"`
}

type MovementResponse struct {
	ID             string  `json:"id"`
	VariantID      string  `json:"variant_id"`
	SKU            string  `json:"sku,omitempty"`
	ProductID      string  `json:"product_id,omitempty"`
	Type           string  `json:"type"`
	Quantity       int     `json:"quantity"`
	QuantityBefore int     `json:"quantity_before"`
	QuantityAfter  int     `json:"quantity_after"`
	Reason         string  `json:"reason"`
	Note           *string `json:"note,omitempty"`
	RecordedBy     string  `json:"recorded_by"`
	RecordedByName string  `json:"recorded_by_name"`
	CreatedAt      string  `json:"created_at"`
}

type MovementListResponse struct {
	Data       []MovementResponse `json:"data"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
}
