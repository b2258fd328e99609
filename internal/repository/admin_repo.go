package repository

import (
	"context"

	"github.com/Qodebyte-Pro-Services/bmt.api/internal/model"

	"gorm.io/gorm"
)

type AdminRepository interface {
	// ListWithRoles returns admins that have a role assigned, role preloaded.
	ListWithRoles(ctx context.Context) ([]model.Admin, error)
}

type adminRepo struct{ db *gorm.DB }

func NewAdminRepository(db *gorm.DB) AdminRepository { return &adminRepo{db: db} }

func (r *adminRepo) ListWithRoles(ctx context.Context) ([]model.Admin, error) {
	var admins []model.Admin
	err := r.db.WithContext(ctx).
		Preload("Role").
		Where("role_id IS NOT NULL").
		Find(&admins).Error
	return admins, err
}
