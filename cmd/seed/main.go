// Command seed creates a demo admin, a small catalogue and the walk-in
// customer, then prints a bearer token for the admin.
// Usage: go run ./cmd/seed
package main

import (
	"fmt"
	"time"

	"github.com/Qodebyte-Pro-Services/bmt.api/internal/config"
	"github.com/Qodebyte-Pro-Services/bmt.api/internal/infra"
	"github.com/Qodebyte-Pro-Services/bmt.api/internal/middleware"
	"github.com/Qodebyte-Pro-Services/bmt.api/internal/model"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const adminEmail = "admin@bmt.local"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect error")
	}
	if err := infra.RunMigrations(db); err != nil {
		log.Fatal().Err(err).Msg("migrate error")
	}

	var admin model.Admin
	err = db.Transaction(func(tx *gorm.DB) error {
		role := model.Role{RoleName: model.SuperAdminRole}
		if err := tx.Where(model.Role{RoleName: role.RoleName}).FirstOrCreate(&role).Error; err != nil {
			return err
		}
		admin = model.Admin{Email: adminEmail, FullName: "Demo Admin", RoleID: &role.ID}
		if err := tx.Where(model.Admin{Email: adminEmail}).FirstOrCreate(&admin).Error; err != nil {
			return err
		}

		threshold := 10
		product := model.Product{Name: "Demo Tee", Unit: "unit", Threshold: &threshold}
		if err := tx.Where(model.Product{Name: product.Name}).FirstOrCreate(&product).Error; err != nil {
			return err
		}
		variants := []model.Variant{
			{ProductID: product.ID, SKU: "TEE-S", CostPrice: decimal.NewFromInt(4), SellingPrice: decimal.NewFromInt(10), Quantity: 25, IsActive: true},
			{ProductID: product.ID, SKU: "TEE-M", CostPrice: decimal.NewFromInt(4), SellingPrice: decimal.NewFromInt(10), Quantity: 25, IsActive: true},
			{ProductID: product.ID, SKU: "TEE-L", CostPrice: decimal.NewFromInt(5), SellingPrice: decimal.NewFromInt(12), Quantity: 5, IsActive: true},
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&variants).Error; err != nil {
			return err
		}

		walkIn := model.Customer{Name: model.WalkInName, IsWalkIn: true}
		return tx.Where(model.Customer{IsWalkIn: true}).FirstOrCreate(&walkIn).Error
	})
	if err != nil {
		log.Fatal().Err(err).Msg("seed error")
	}

	token, err := middleware.IssueToken(cfg.JWTSecret, admin.ID, admin.Email, model.SuperAdminRole, 24*time.Hour)
	if err != nil {
		log.Fatal().Err(err).Msg("token error")
	}
	fmt.Printf("✅ Admin '%s' (%s) seeded\nBearer %s\n", admin.Email, admin.ID, token)
}
