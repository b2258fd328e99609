package worker

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// StockCheckPayload lists variants whose quantity changed in one commit.
type StockCheckPayload struct {
	VariantIDs []string `json:"variant_ids"`
}

// VariantProcessor re-evaluates stock alerts for one variant
// (service.NotificationService in production).
type VariantProcessor interface {
	ProcessVariant(ctx context.Context, variantID uuid.UUID) error
}

// StockCheckWorker consumes QueueStockCheck.
type StockCheckWorker struct {
	processor VariantProcessor
}

func NewStockCheckWorker(p VariantProcessor) *StockCheckWorker {
	return &StockCheckWorker{processor: p}
}

func (w *StockCheckWorker) Process(ctx context.Context, raw json.RawMessage) {
	var payload StockCheckPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Error().Err(err).Msg("stock_check_worker: invalid payload")
		return
	}
	for _, s := range payload.VariantIDs {
		id, err := uuid.Parse(s)
		if err != nil {
			log.Warn().Str("variant_id", s).Msg("stock_check_worker: invalid variant id")
			continue
		}
		if err := w.processor.ProcessVariant(ctx, id); err != nil {
			log.Error().Err(err).Str("variant_id", s).Msg("stock_check_worker: process variant failed")
		}
	}
}

// StockCheckPublisher hands committed stock changes to the queue. If the
// enqueue fails the variants are processed inline instead.
type StockCheckPublisher struct {
	dispatcher *Dispatcher
	inline     VariantProcessor
}

func NewStockCheckPublisher(d *Dispatcher, inline VariantProcessor) *StockCheckPublisher {
	return &StockCheckPublisher{dispatcher: d, inline: inline}
}

func (p *StockCheckPublisher) VariantsChanged(ctx context.Context, ids []uuid.UUID) {
	payload := StockCheckPayload{VariantIDs: make([]string, 0, len(ids))}
	for _, id := range ids {
		payload.VariantIDs = append(payload.VariantIDs, id.String())
	}
	// The request context may be cancelled right after the response is written.
	ctx = context.WithoutCancel(ctx)
	err := p.dispatcher.EnqueueStockCheck(ctx, payload)
	if err == nil {
		return
	}
	log.Error().Err(err).Int("variants", len(ids)).Msg("stock_check_worker: enqueue failed, processing inline")
	for _, id := range ids {
		if err := p.inline.ProcessVariant(ctx, id); err != nil {
			log.Error().Err(err).Str("variant_id", id.String()).Msg("stock_check_worker: inline process failed")
		}
	}
}
