package service

import (
	"context"
	"time"

	"github.com/Qodebyte-Pro-Services/bmt.api/internal/apierror"
	"github.com/Qodebyte-Pro-Services/bmt.api/internal/dto"
	"github.com/Qodebyte-Pro-Services/bmt.api/internal/model"
	"github.com/Qodebyte-Pro-Services/bmt.api/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const (
	defaultMovementLimit = 8
	maxMovementLimit     = 100
)

// InventoryService sets, adds and lists stock. Every quantity change writes
// exactly one InventoryLog row in the same transaction as the change.
type InventoryService interface {
	AdjustStock(ctx context.Context, actor uuid.UUID, req dto.AdjustStockRequest) (*dto.AdjustStockResponse, error)
	// AdjustTx sets one variant to an absolute quantity inside the caller's transaction.
	AdjustTx(tx *gorm.DB, actor uuid.UUID, item dto.StockAdjustmentItem) (*dto.StockAdjustmentResult, error)
	Restock(ctx context.Context, actor, variantID uuid.UUID, req dto.RestockRequest) (*dto.StockAdjustmentResult, error)
	ListMovements(ctx context.Context, filter dto.MovementFilter) (*dto.MovementListResponse, error)
}

type inventoryService struct {
	variants repository.VariantRepository
	logs     repository.InventoryLogRepository
	watcher  StockWatcher
}

func NewInventoryService(
	variants repository.VariantRepository,
	logs repository.InventoryLogRepository,
	watcher StockWatcher,
) InventoryService {
	return &inventoryService{variants: variants, logs: logs, watcher: watcher}
}

// ── AdjustStock ───────────────────────────────────────────────────────────────
// Single mode uses the top-level fields. Batch mode runs one transaction per
// item and reports failures next to successes, unless Atomic is set.

func (s *inventoryService) AdjustStock(ctx context.Context, actor uuid.UUID, req dto.AdjustStockRequest) (*dto.AdjustStockResponse, error) {
	if len(req.Adjustments) == 0 {
		if req.VariantID == "" || req.NewQuantity == nil || req.Reason == "" {
			return nil, apierror.Invalid("variant_id, new_quantity and reason are required")
		}
		item := dto.StockAdjustmentItem{
			VariantID:   req.VariantID,
			NewQuantity: req.NewQuantity,
			Reason:      req.Reason,
			Notes:       req.Notes,
		}
		var res *dto.StockAdjustmentResult
		err := runTx(ctx, s.variants.DB(), func(tx *gorm.DB) error {
			var err error
			res, err = s.AdjustTx(tx, actor, item)
			return err
		})
		if err != nil {
			return nil, err
		}
		notifyStock(ctx, s.watcher, []uuid.UUID{uuid.MustParse(res.VariantID)})
		return &dto.AdjustStockResponse{Message: "Stock adjusted", Results: []dto.StockAdjustmentResult{*res}}, nil
	}

	if req.Atomic {
		return s.adjustAtomic(ctx, actor, req.Adjustments)
	}

	resp := &dto.AdjustStockResponse{Results: []dto.StockAdjustmentResult{}}
	touched := make([]uuid.UUID, 0, len(req.Adjustments))
	for _, item := range req.Adjustments {
		var res *dto.StockAdjustmentResult
		err := runTx(ctx, s.variants.DB(), func(tx *gorm.DB) error {
			var err error
			res, err = s.AdjustTx(tx, actor, item)
			return err
		})
		if err != nil {
			resp.Errors = append(resp.Errors, dto.StockAdjustmentError{
				VariantID: item.VariantID,
				Error:     itemErrorMessage(err, item.VariantID),
			})
			continue
		}
		resp.Results = append(resp.Results, *res)
		touched = append(touched, uuid.MustParse(res.VariantID))
	}
	notifyStock(ctx, s.watcher, touched)

	resp.Message = "Stock adjusted"
	if len(resp.Errors) > 0 {
		resp.Message = "Stock adjustment completed with errors"
	}
	return resp, nil
}

func (s *inventoryService) adjustAtomic(ctx context.Context, actor uuid.UUID, items []dto.StockAdjustmentItem) (*dto.AdjustStockResponse, error) {
	results := make([]dto.StockAdjustmentResult, 0, len(items))
	err := runTx(ctx, s.variants.DB(), func(tx *gorm.DB) error {
		for _, item := range items {
			res, err := s.AdjustTx(tx, actor, item)
			if err != nil {
				return err
			}
			results = append(results, *res)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	touched := make([]uuid.UUID, 0, len(results))
	for _, r := range results {
		touched = append(touched, uuid.MustParse(r.VariantID))
	}
	notifyStock(ctx, s.watcher, touched)
	return &dto.AdjustStockResponse{Message: "Stock adjusted", Results: results}, nil
}

func itemErrorMessage(err error, variantID string) string {
	if apierror.IsKind(err, apierror.KindValidation) || apierror.IsKind(err, apierror.KindNotFound) {
		return err.Error()
	}
	log.Error().Err(err).Str("variant_id", variantID).Msg("inventory: adjustment failed")
	return "Internal server error"
}

func (s *inventoryService) AdjustTx(tx *gorm.DB, actor uuid.UUID, item dto.StockAdjustmentItem) (*dto.StockAdjustmentResult, error) {
	id, err := parseID(item.VariantID, "variant_id")
	if err != nil {
		return nil, err
	}
	if item.NewQuantity == nil || *item.NewQuantity < 0 {
		return nil, apierror.Invalid("new_quantity must be a non-negative integer")
	}
	if item.Reason != model.ReasonIncrease && item.Reason != model.ReasonDecrease {
		return nil, apierror.Invalid("reason must be increase or decrease")
	}

	v, err := s.variants.LockByIDTx(tx, id)
	if err != nil {
		return nil, notFoundOr(err, "Variant not found")
	}

	oldQty, newQty := v.Quantity, *item.NewQuantity
	if err := s.variants.SetQuantityTx(tx, id, newQty); err != nil {
		return nil, err
	}
	entry := &model.InventoryLog{
		VariantID:      id,
		Type:           model.LogAdjustment,
		Quantity:       newQty - oldQty,
		QuantityBefore: oldQty,
		QuantityAfter:  newQty,
		Reason:         item.Reason,
		Note:           item.Notes,
		RecordedBy:     actor,
	}
	if err := s.logs.CreateTx(tx, entry); err != nil {
		return nil, err
	}

	return &dto.StockAdjustmentResult{
		VariantID:   id.String(),
		OldQuantity: oldQty,
		NewQuantity: newQty,
		Delta:       newQty - oldQty,
	}, nil
}

// ── Restock ───────────────────────────────────────────────────────────────────

func (s *inventoryService) Restock(ctx context.Context, actor, variantID uuid.UUID, req dto.RestockRequest) (*dto.StockAdjustmentResult, error) {
	if req.Quantity <= 0 {
		return nil, apierror.Invalid("quantity must be greater than zero")
	}

	var res *dto.StockAdjustmentResult
	err := runTx(ctx, s.variants.DB(), func(tx *gorm.DB) error {
		v, err := s.variants.LockByIDTx(tx, variantID)
		if err != nil {
			return notFoundOr(err, "Variant not found")
		}
		if err := s.variants.AddQuantityTx(tx, variantID, req.Quantity); err != nil {
			return err
		}
		entry := &model.InventoryLog{
			VariantID:      variantID,
			Type:           model.LogRestock,
			Quantity:       req.Quantity,
			QuantityBefore: v.Quantity,
			QuantityAfter:  v.Quantity + req.Quantity,
			Reason:         model.ReasonIncrease,
			Note:           req.Note,
			RecordedBy:     actor,
		}
		if err := s.logs.CreateTx(tx, entry); err != nil {
			return err
		}
		res = &dto.StockAdjustmentResult{
			VariantID:   variantID.String(),
			OldQuantity: v.Quantity,
			NewQuantity: v.Quantity + req.Quantity,
			Delta:       req.Quantity,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	notifyStock(ctx, s.watcher, []uuid.UUID{variantID})
	return res, nil
}

// ── ListMovements ─────────────────────────────────────────────────────────────

func (s *inventoryService) ListMovements(ctx context.Context, filter dto.MovementFilter) (*dto.MovementListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = defaultMovementLimit
	}
	if filter.Limit > maxMovementLimit {
		filter.Limit = maxMovementLimit
	}

	q := repository.InventoryLogFilter{Type: filter.Type, Page: filter.Page, Limit: filter.Limit}
	if filter.VariantID != "" {
		id, err := parseID(filter.VariantID, "variant_id")
		if err != nil {
			return nil, err
		}
		q.VariantID = &id
	}
	if filter.ProductID != "" {
		id, err := parseID(filter.ProductID, "product_id")
		if err != nil {
			return nil, err
		}
		q.ProductID = &id
	}

	rows, total, err := s.logs.List(ctx, q)
	if err != nil {
		return nil, err
	}

	data := make([]dto.MovementResponse, 0, len(rows))
	for i := range rows {
		data = append(data, movementToResponse(&rows[i]))
	}
	pages := int(total) / filter.Limit
	if int(total)%filter.Limit != 0 {
		pages++
	}
	return &dto.MovementListResponse{
		Data:       data,
		Total:      total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalPages: pages,
	}, nil
}

func movementToResponse(l *model.InventoryLog) dto.MovementResponse {
	r := dto.MovementResponse{
		ID:             l.ID.String(),
		VariantID:      l.VariantID.String(),
		Type:           l.Type,
		Quantity:       l.Quantity,
		QuantityBefore: l.QuantityBefore,
		QuantityAfter:  l.QuantityAfter,
		Reason:         l.Reason,
		Note:           l.Note,
		RecordedBy:     l.RecordedBy.String(),
		RecordedByName: "Unknown",
		CreatedAt:      l.CreatedAt.Format(time.RFC3339),
	}
	if l.Variant != nil {
		r.SKU = l.Variant.SKU
		r.ProductID = l.Variant.ProductID.String()
	}
	if a := l.RecordedByRef; a != nil {
		r.RecordedByName = a.FullName
		if r.RecordedByName == "" {
			r.RecordedByName = a.Email
		}
	}
	return r
}
