package khaata

import (
	"context"

	"khaata/internal/core/apperror"
	"khaata/internal/core/id"
	"khaata/internal/domain/catalogs/product"
	"khaata/internal/domain/inventory"
)

// ProductLookup resolves live products into line snapshots.
type ProductLookup interface {
	Snapshot(ctx context.Context, productID id.ID) (product.Snapshot, error)
}

// ResolveLines turns requested lines into priced lines in base units.
// Products listed in known keep the snapshot already recorded for them.
func ResolveLines(ctx context.Context, products ProductLookup, inputs []LineInput, known map[id.ID]product.Snapshot) ([]Line, error) {
	if len(inputs) == 0 {
		return nil, apperror.NewValidation("at least one line is required").
			WithDetail("field", "lines")
	}

	lines := make([]Line, 0, len(inputs))
	for i, in := range inputs {
		if id.IsNil(in.ProductID) {
			return nil, apperror.NewValidation("product is required").
				WithDetail("field", "lines").
				WithDetail("line", i+1)
		}
		if in.Price.IsNegative() {
			return nil, apperror.NewValidation("price cannot be negative").
				WithDetail("field", "lines").
				WithDetail("line", i+1)
		}

		snap, ok := known[in.ProductID]
		if !ok {
			var err error
			if snap, err = products.Snapshot(ctx, in.ProductID); err != nil {
				return nil, withLine(err, i)
			}
		}

		amount, err := inventory.FromRequest(snap, in.Quantity, in.Variants)
		if err != nil {
			return nil, withLine(err, i)
		}
		if amount.Total() <= 0 {
			return nil, apperror.NewValidation("quantity must be positive").
				WithDetail("field", "lines").
				WithDetail("line", i+1)
		}

		lines = append(lines, Line{Product: snap, Amount: amount, Price: in.Price})
	}
	return lines, nil
}

func withLine(err error, i int) error {
	if appErr, ok := apperror.AsAppError(err); ok {
		return appErr.WithDetail("line", i+1)
	}
	return err
}

// Snapshots indexes the product snapshots recorded on lines.
func Snapshots(lines []Line) map[id.ID]product.Snapshot {
	out := make(map[id.ID]product.Snapshot, len(lines))
	for _, l := range lines {
		if _, ok := out[l.Product.ID]; !ok {
			out[l.Product.ID] = l.Product
		}
	}
	return out
}

// Delta is the net base-unit change of one product between two line sets.
type Delta struct {
	ProductID id.ID
	Amount    inventory.Amount
}

// NetDeltas returns next minus prev per product. Lines of the same product are
// summed on each side first. Products whose net change is zero are omitted.
// The result is ordered by first appearance in next, then in prev.
func NetDeltas(prev, next []Line) ([]Delta, error) {
	var order []id.ID
	sums := make(map[id.ID]inventory.Amount)

	add := func(l Line, sign int) error {
		current, ok := sums[l.Product.ID]
		if !ok {
			current = inventory.Zero(l.Product.Mode)
			order = append(order, l.Product.ID)
		}
		amount := l.Amount
		if sign < 0 {
			amount = amount.Neg()
		}
		sum, err := current.Add(amount)
		if err != nil {
			return err
		}
		sums[l.Product.ID] = sum
		return nil
	}

	for _, l := range next {
		if err := add(l, 1); err != nil {
			return nil, err
		}
	}
	for _, l := range prev {
		if err := add(l, -1); err != nil {
			return nil, err
		}
	}

	deltas := make([]Delta, 0, len(order))
	for _, productID := range order {
		if net := sums[productID].Pruned(); !net.IsZero() {
			deltas = append(deltas, Delta{ProductID: productID, Amount: net})
		}
	}
	return deltas, nil
}
