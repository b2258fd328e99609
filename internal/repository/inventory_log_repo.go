package repository

import (
	"context"

	"github.com/Qodebyte-Pro-Services/bmt.api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InventoryLogFilter defines filters for listing stock movements.
type InventoryLogFilter struct {
	VariantID *uuid.UUID
	ProductID *uuid.UUID
	Type      string
	Page      int
	Limit     int
}

type InventoryLogRepository interface {
	CreateTx(tx *gorm.DB, l *model.InventoryLog) error
	List(ctx context.Context, filter InventoryLogFilter) ([]model.InventoryLog, int64, error)
}

type inventoryLogRepo struct{ db *gorm.DB }

func NewInventoryLogRepository(db *gorm.DB) InventoryLogRepository {
	return &inventoryLogRepo{db: db}
}

func (r *inventoryLogRepo) CreateTx(tx *gorm.DB, l *model.InventoryLog) error {
	return tx.Create(l).Error
}

func (r *inventoryLogRepo) List(ctx context.Context, filter InventoryLogFilter) ([]model.InventoryLog, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.InventoryLog{})
	if filter.VariantID != nil {
		q = q.Where("variant_id = ?", *filter.VariantID)
	}
	if filter.ProductID != nil {
		q = q.Where("variant_id IN (?)",
			r.db.Model(&model.Variant{}).Select("id").Where("product_id = ?", *filter.ProductID))
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var logs []model.InventoryLog
	err := q.Preload("Variant").Preload("RecordedByRef").
		Order("created_at DESC").
		Offset((filter.Page - 1) * filter.Limit).
		Limit(filter.Limit).
		Find(&logs).Error
	return logs, total, err
}
