package inventory

import (
	"context"

	"khaata/internal/core/apperror"
	"khaata/internal/core/id"
	"khaata/internal/domain/conversion"
)

// Direction tells whether an adjustment adds or removes stock.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// Adjustment is a manual stock change for one product, expressed in the
// product's unit.
type Adjustment struct {
	ProductID id.ID
	Direction Direction
	Quantity  *conversion.Quantity
	Variants  map[string]conversion.Quantity
}

// AdjustmentResult is the outcome for one product of a batch.
type AdjustmentResult struct {
	ProductID id.ID              `json:"productId"`
	Stock     *View              `json:"stock,omitempty"`
	Error     *apperror.AppError `json:"error,omitempty"`
}

// Applied reports whether the adjustment was committed.
func (r AdjustmentResult) Applied() bool {
	return r.Error == nil
}

// BatchApply applies every adjustment in its own transaction. A failure for
// one product does not affect the others.
func (l *Ledger) BatchApply(ctx context.Context, adjustments []Adjustment) []AdjustmentResult {
	results := make([]AdjustmentResult, 0, len(adjustments))
	for _, adj := range adjustments {
		res := AdjustmentResult{ProductID: adj.ProductID}

		err := l.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
			return l.adjust(ctx, adj)
		})
		if err == nil {
			res.Stock, err = l.Snapshot(ctx, adj.ProductID)
		}
		if err != nil {
			appErr, ok := apperror.AsAppError(err)
			if !ok {
				appErr = apperror.NewInternal(err)
			}
			res.Error = appErr
		}
		results = append(results, res)
	}
	return results
}

func (l *Ledger) adjust(ctx context.Context, adj Adjustment) error {
	p, err := l.products.Snapshot(ctx, adj.ProductID)
	if err != nil {
		return err
	}
	delta, err := FromRequest(p, adj.Quantity, adj.Variants)
	if err != nil {
		return err
	}

	switch adj.Direction {
	case DirectionIn, "":
	case DirectionOut:
		delta = delta.Neg()
	default:
		return apperror.NewValidation("direction must be in or out").WithDetail("field", "direction")
	}

	_, err = l.ApplyDelta(ctx, adj.ProductID, delta)
	return err
}
