package infra

import (
	"fmt"

	"github.com/Qodebyte-Pro-Services/bmt.api/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens a GORM connection backed by pgx. TranslateError is on so
// unique violations surface as gorm.ErrDuplicatedKey.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	return db, nil
}

// RunMigrations creates/updates every table, then applies the constraints
// AutoMigrate cannot express.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Role{},
		&model.Admin{},
		&model.Customer{},
		&model.Product{},
		&model.Variant{},
		&model.InventoryLog{},
		&model.Order{},
		&model.OrderItem{},
		&model.OrderPayment{},
		&model.CreditAccount{},
		&model.InstallmentPlan{},
		&model.InstallmentPayment{},
		&model.StockNotification{},
		&model.Report{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL: every statement is guarded so
// re-running on an already-patched database is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		{"variants quantity non-negative", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_variants_quantity_non_negative') THEN
    ALTER TABLE variants ADD CONSTRAINT chk_variants_quantity_non_negative CHECK (quantity >= 0);
  END IF;
END $$`},
		{"one open notification per variant and type", `
CREATE UNIQUE INDEX IF NOT EXISTS idx_stock_notifications_open
    ON stock_notifications (variant_id, notification_type)
    WHERE is_read = false`},
		{"walk-in customer singleton", `
CREATE UNIQUE INDEX IF NOT EXISTS idx_customers_walk_in
    ON customers (is_walk_in)
    WHERE is_walk_in = true`},
		{"pending reports queue index", `
CREATE INDEX IF NOT EXISTS idx_reports_pending
    ON reports (created_at)
    WHERE status = 'pending'`},
		{"installment due sweep index", `
CREATE INDEX IF NOT EXISTS idx_installment_payments_due
    ON installment_payments (due_date)
    WHERE status = 'pending'`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
