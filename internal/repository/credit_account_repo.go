package repository

import (
	"github.com/Qodebyte-Pro-Services/bmt.api/internal/model"

	"gorm.io/gorm"
)

type CreditAccountRepository interface {
	CreateTx(tx *gorm.DB, a *model.CreditAccount) error
}

type creditAccountRepo struct{ db *gorm.DB }

func NewCreditAccountRepository(db *gorm.DB) CreditAccountRepository {
	return &creditAccountRepo{db: db}
}

func (r *creditAccountRepo) CreateTx(tx *gorm.DB, a *model.CreditAccount) error {
	return tx.Create(a).Error
}
