package service

import (
	"sort"

	"github.com/Qodebyte-Pro-Services/bmt.api/internal/apierror"
	"github.com/Qodebyte-Pro-Services/bmt.api/internal/model"
	"github.com/Qodebyte-Pro-Services/bmt.api/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// saleLine is one quantity to take out of stock for an order.
type saleLine struct {
	variantID uuid.UUID
	quantity  int
}

// stockLedger bundles the repositories that move stock.
type stockLedger struct {
	variants repository.VariantRepository
	logs     repository.InventoryLogRepository
}

// lockVariantsTx locks every distinct variant in lines in ascending id order.
// Any missing variant fails with "Variant not found".
func (l stockLedger) lockVariantsTx(tx *gorm.DB, lines []saleLine) (map[uuid.UUID]*model.Variant, error) {
	seen := make(map[uuid.UUID]bool, len(lines))
	ids := make([]uuid.UUID, 0, len(lines))
	for _, ln := range lines {
		if !seen[ln.variantID] {
			seen[ln.variantID] = true
			ids = append(ids, ln.variantID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	locked, err := l.variants.LockByIDsTx(tx, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		if _, ok := locked[id]; !ok {
			return nil, apierror.NotFound("Variant not found")
		}
	}
	return locked, nil
}

// ensureAvailable fails with "Insufficient stock" unless every locked variant
// covers the summed quantity of its lines.
func ensureAvailable(lines []saleLine, locked map[uuid.UUID]*model.Variant) (map[uuid.UUID]int, error) {
	need := make(map[uuid.UUID]int, len(locked))
	for _, ln := range lines {
		need[ln.variantID] += ln.quantity
	}
	for id, qty := range need {
		v, ok := locked[id]
		if !ok {
			return nil, apierror.NotFound("Variant not found")
		}
		if v.Quantity < qty {
			return nil, apierror.Invalid("Insufficient stock")
		}
	}
	return need, nil
}

// decrementTx removes lines from stock as one sale. Sufficiency is checked for
// every variant before the first write, then one sale log and one decrement
// are written per line. Returns the touched ids.
func (l stockLedger) decrementTx(tx *gorm.DB, lines []saleLine, locked map[uuid.UUID]*model.Variant, actor uuid.UUID, note string) ([]uuid.UUID, error) {
	need, err := ensureAvailable(lines, locked)
	if err != nil {
		return nil, err
	}

	current := make(map[uuid.UUID]int, len(locked))
	for id, v := range locked {
		current[id] = v.Quantity
	}
	touched := make([]uuid.UUID, 0, len(need))
	for _, ln := range lines {
		before := current[ln.variantID]
		after := before - ln.quantity
		n := note
		entry := &model.InventoryLog{
			VariantID:      ln.variantID,
			Type:           model.LogSale,
			Quantity:       -ln.quantity,
			QuantityBefore: before,
			QuantityAfter:  after,
			Reason:         model.ReasonDecrease,
			Note:           &n,
			RecordedBy:     actor,
		}
		if err := l.logs.CreateTx(tx, entry); err != nil {
			return nil, err
		}
		if err := l.variants.AddQuantityTx(tx, ln.variantID, -ln.quantity); err != nil {
			return nil, err
		}
		current[ln.variantID] = after
	}
	for id := range need {
		touched = append(touched, id)
	}
	sort.Slice(touched, func(i, j int) bool { return touched[i].String() < touched[j].String() })
	return touched, nil
}
