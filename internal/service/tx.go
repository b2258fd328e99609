package service

import (
	"context"
	"errors"

	"github.com/Qodebyte-Pro-Services/bmt.api/internal/apierror"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
// The first error fn returns rolls the transaction back and is returned as is.
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// notFoundOr converts gorm.ErrRecordNotFound into a domain not-found error.
func notFoundOr(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apierror.NotFound(msg)
	}
	return err
}

// StockWatcher is told which variants changed once the change is committed.
// Implementations must not block the caller on failure.
type StockWatcher interface {
	VariantsChanged(ctx context.Context, variantIDs []uuid.UUID)
}

func notifyStock(ctx context.Context, w StockWatcher, ids []uuid.UUID) {
	if w == nil || len(ids) == 0 {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("stock watcher panicked")
		}
	}()
	w.VariantsChanged(ctx, ids)
}

func parseID(raw, field string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apierror.Invalidf("Invalid %s", field)
	}
	return id, nil
}
