package repository

import (
	"github.com/Qodebyte-Pro-Services/bmt.api/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CustomerRepository interface {
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Customer, error)
	// FindWalkInTx matches is_walk_in = true or the legacy "Walk-in" name.
	FindWalkInTx(tx *gorm.DB) (*model.Customer, error)
	CreateTx(tx *gorm.DB, c *model.Customer) error
	// CreateWalkInTx inserts the walk-in singleton if missing and returns
	// whichever row won; concurrent creators converge on the same id.
	CreateWalkInTx(tx *gorm.DB) (*model.Customer, error)
}

type customerRepo struct{ db *gorm.DB }

func NewCustomerRepository(db *gorm.DB) CustomerRepository { return &customerRepo{db: db} }

func (r *customerRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*model.Customer, error) {
	var c model.Customer
	err := tx.First(&c, "id = ?", id).Error
	return &c, err
}

func (r *customerRepo) FindWalkInTx(tx *gorm.DB) (*model.Customer, error) {
	var c model.Customer
	err := tx.Where("is_walk_in = true OR name = ?", model.WalkInName).
		Order("is_walk_in DESC, created_at ASC").
		First(&c).Error
	return &c, err
}

func (r *customerRepo) CreateTx(tx *gorm.DB, c *model.Customer) error {
	return tx.Create(c).Error
}

func (r *customerRepo) CreateWalkInTx(tx *gorm.DB) (*model.Customer, error) {
	c := model.Customer{Name: model.WalkInName, IsWalkIn: true}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&c).Error; err != nil {
		return nil, err
	}
	return r.FindWalkInTx(tx)
}
