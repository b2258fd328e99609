package repository

import (
	"context"

	"github.com/Qodebyte-Pro-Services/bmt.api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VariantRepository defines the data access contract for variants.
// Quantity writes only happen inside a transaction on a row locked by LockByIDTx
// or LockByIDsTx.
type VariantRepository interface {
	// FindWithProduct loads a variant and its product outside any transaction.
	FindWithProduct(ctx context.Context, id uuid.UUID) (*model.Variant, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Variant, error)

	// LockByIDTx reads one variant with SELECT ... FOR UPDATE.
	LockByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Variant, error)
	// LockByIDsTx locks several variants in ascending id order so concurrent
	// sales touching overlapping SKUs cannot deadlock. Missing ids are absent
	// from the result map.
	LockByIDsTx(tx *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]*model.Variant, error)

	SetQuantityTx(tx *gorm.DB, id uuid.UUID, quantity int) error
	AddQuantityTx(tx *gorm.DB, id uuid.UUID, delta int) error

	ListActiveIDs(ctx context.Context) ([]uuid.UUID, error)

	DB() *gorm.DB
}

type variantRepo struct{ db *gorm.DB }

func NewVariantRepository(db *gorm.DB) VariantRepository { return &variantRepo{db: db} }

func (r *variantRepo) DB() *gorm.DB { return r.db }

func (r *variantRepo) FindWithProduct(ctx context.Context, id uuid.UUID) (*model.Variant, error) {
	var v model.Variant
	err := r.db.WithContext(ctx).Preload("Product").First(&v, "id = ?", id).Error
	return &v, err
}

func (r *variantRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Variant, error) {
	var v model.Variant
	err := tx.First(&v, "id = ?", id).Error
	return &v, err
}

func (r *variantRepo) LockByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Variant, error) {
	var v model.Variant
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&v, "id = ?", id).Error
	return &v, err
}

func (r *variantRepo) LockByIDsTx(tx *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]*model.Variant, error) {
	var rows []model.Variant
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]*model.Variant, len(rows))
	for i := range rows {
		out[rows[i].ID] = &rows[i]
	}
	return out, nil
}

func (r *variantRepo) SetQuantityTx(tx *gorm.DB, id uuid.UUID, quantity int) error {
	return tx.Model(&model.Variant{}).Where("id = ?", id).Update("quantity", quantity).Error
}

func (r *variantRepo) AddQuantityTx(tx *gorm.DB, id uuid.UUID, delta int) error {
	return tx.Model(&model.Variant{}).Where("id = ?", id).
		Update("quantity", gorm.Expr("quantity + ?", delta)).Error
}

func (r *variantRepo) ListActiveIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&model.Variant{}).
		Where("is_active = true").
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, err
}
