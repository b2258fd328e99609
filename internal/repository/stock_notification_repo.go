package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Qodebyte-Pro-Services/bmt.api/internal/dto"
	"github.com/Qodebyte-Pro-Services/bmt.api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StockNotificationRepository interface {
	HasUnread(ctx context.Context, variantID uuid.UUID, notificationType string) (bool, error)
	// Create inserts n. It returns created=false when an unread notification of
	// the same type already exists for the variant (partial unique index hit).
	Create(ctx context.Context, n *model.StockNotification) (created bool, err error)
	// ResolveUnread marks unread notifications of the given types read and
	// returns how many were resolved.
	ResolveUnread(ctx context.Context, variantID uuid.UUID, types []string, at time.Time) (int64, error)
	ListUnread(ctx context.Context, limit int) ([]model.StockNotification, error)
	MarkRead(ctx context.Context, id, adminID uuid.UUID, at time.Time) (int64, error)
	Stats(ctx context.Context) ([]dto.NotificationStat, error)
}

type stockNotificationRepo struct{ db *gorm.DB }

func NewStockNotificationRepository(db *gorm.DB) StockNotificationRepository {
	return &stockNotificationRepo{db: db}
}

func (r *stockNotificationRepo) HasUnread(ctx context.Context, variantID uuid.UUID, notificationType string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.StockNotification{}).
		Where("variant_id = ? AND notification_type = ? AND is_read = false", variantID, notificationType).
		Limit(1).
		Count(&count).Error
	return count > 0, err
}

func (r *stockNotificationRepo) Create(ctx context.Context, n *model.StockNotification) (bool, error) {
	err := r.db.WithContext(ctx).Create(n).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return false, nil
	}
	return err == nil, err
}

func (r *stockNotificationRepo) ResolveUnread(ctx context.Context, variantID uuid.UUID, types []string, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.StockNotification{}).
		Where("variant_id = ? AND notification_type IN ? AND is_read = false", variantID, types).
		Updates(map[string]any{"is_read": true, "read_at": at})
	return res.RowsAffected, res.Error
}

func (r *stockNotificationRepo) ListUnread(ctx context.Context, limit int) ([]model.StockNotification, error) {
	var rows []model.StockNotification
	err := r.db.WithContext(ctx).
		Preload("Variant.Product").
		Where("is_read = false").
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *stockNotificationRepo) MarkRead(ctx context.Context, id, adminID uuid.UUID, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.StockNotification{}).
		Where("id = ?", id).
		Updates(map[string]any{"is_read": true, "read_at": at, "read_by": adminID})
	return res.RowsAffected, res.Error
}

func (r *stockNotificationRepo) Stats(ctx context.Context) ([]dto.NotificationStat, error) {
	var stats []dto.NotificationStat
	err := r.db.WithContext(ctx).Model(&model.StockNotification{}).
		Select("notification_type, COUNT(id) AS total, COUNT(CASE WHEN is_read = false THEN 1 END) AS unread").
		Group("notification_type").
		Order("notification_type").
		Scan(&stats).Error
	return stats, err
}
