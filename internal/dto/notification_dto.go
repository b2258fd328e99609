package dto

type StockNotificationResponse struct {
	ID               string  `json:"id"`
	VariantID        string  `json:"variant_id"`
	SKU              string  `json:"sku,omitempty"`
	ProductName      string  `json:"product_name,omitempty"`
	NotificationType string  `json:"notification_type"`
	Message          string  `json:"message"`
	IsRead           bool    `json:"is_read"`
	ReadAt           *string `json:"read_at,omitempty"`
	CreatedAt        string  `json:"created_at"`
}

// NotificationStat is one row of GET /v1/notifications/stats.
type NotificationStat struct {
	NotificationType string `json:"notification_type"`
	Total            int64  `json:"total"`
	Unread           int64  `json:"unread"`
}
