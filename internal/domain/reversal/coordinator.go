// Package reversal refunds part of a recorded line: it shrinks the line,
// reprices it in proportion and moves the refunded stock back.
package reversal

import (
	"context"
	"fmt"

	"khaata/internal/core/apperror"
	"khaata/internal/core/id"
	"khaata/internal/core/types"
	"khaata/internal/domain/inventory"
	"khaata/pkg/logger"
)

// StockApplier is the part of the inventory ledger used by refunds.
type StockApplier interface {
	ApplyDelta(ctx context.Context, productID id.ID, delta inventory.Amount) (*inventory.Record, error)
}

// Line is the refundable part of a recorded line item.
type Line struct {
	ProductID id.ID
	Amount    inventory.Amount
	Price     types.Money
}

// Request asks to refund Amount of a product.
type Request struct {
	ProductID id.ID
	Amount    inventory.Amount
}

// Outcome is the state of a line after refunds.
type Outcome struct {
	Amount inventory.Amount
	Price  types.Money
	// Remove is set when nothing is left on the line.
	Remove bool
}

// Prorate computes the line left after refunding amount from it. The price
// shrinks with the quantity: round(price / oldTotal * newTotal).
// what names the record kind in RefundExceedsOriginal messages.
func Prorate(line Line, amount inventory.Amount, what string) (Outcome, error) {
	oldTotal := line.Amount.Total()
	if oldTotal == 0 {
		return Outcome{}, apperror.NewDivisionByZeroQuantity(line.ProductID.String())
	}

	remaining, err := line.Amount.Sub(amount)
	if err != nil {
		return Outcome{}, err
	}
	if key, _, negative := remaining.FirstNegative(); negative {
		appErr := apperror.NewRefundExceedsOriginal(what).
			WithDetail("product_id", line.ProductID.String()).
			WithDetail("recorded", line.Amount.Get(key)).
			WithDetail("requested", amount.Get(key))
		if key != "" {
			appErr = appErr.WithDetail("variant", key)
		}
		return Outcome{}, appErr
	}
	remaining = remaining.Pruned()

	newTotal := remaining.Total()
	return Outcome{
		Amount: remaining,
		Price:  types.Prorate(line.Price, oldTotal, newTotal),
		Remove: newTotal == 0,
	}, nil
}

// Coordinator applies refunds for one ledger.
type Coordinator struct {
	stock StockApplier
	flow  inventory.Flow
	what  string
}

// NewCoordinator creates a coordinator for a ledger that moves stock in flow direction.
func NewCoordinator(stock StockApplier, flow inventory.Flow, what string) *Coordinator {
	return &Coordinator{stock: stock, flow: flow, what: what}
}

// Reverse refunds every request against lines and returns one Outcome per line,
// in the order of lines. A request targets the first line that still holds its
// product. All requests are validated before any stock moves; the caller's
// transaction must roll back if Reverse fails part way through stock updates.
func (c *Coordinator) Reverse(ctx context.Context, lines []Line, requests []Request) ([]Outcome, error) {
	if len(requests) == 0 {
		return nil, apperror.NewValidation("at least one refund line is required").
			WithDetail("field", "lines")
	}

	outcomes := make([]Outcome, len(lines))
	for i, l := range lines {
		outcomes[i] = Outcome{Amount: l.Amount, Price: l.Price}
	}

	for n, req := range requests {
		if req.Amount.IsZero() {
			return nil, apperror.NewValidation("refund quantity must be positive").
				WithDetail("line", n+1)
		}
		if _, _, negative := req.Amount.FirstNegative(); negative {
			return nil, apperror.NewValidation("refund quantity cannot be negative").
				WithDetail("line", n+1)
		}

		i := c.target(lines, outcomes, req.ProductID)
		if i < 0 {
			return nil, apperror.NewValidation(fmt.Sprintf("product is not part of this %s", c.what)).
				WithDetail("product_id", req.ProductID.String())
		}

		current := Line{ProductID: req.ProductID, Amount: outcomes[i].Amount, Price: outcomes[i].Price}
		out, err := Prorate(current, req.Amount, c.what)
		if err != nil {
			return nil, err
		}
		outcomes[i] = out
	}

	for _, req := range requests {
		if _, err := c.stock.ApplyDelta(ctx, req.ProductID, c.flow.Reversal(req.Amount)); err != nil {
			return nil, fmt.Errorf("reverse stock for %s: %w", req.ProductID, err)
		}
	}

	logger.Debug(ctx, "refund reversed", "kind", c.what, "lines", len(requests))
	return outcomes, nil
}

func (c *Coordinator) target(lines []Line, outcomes []Outcome, productID id.ID) int {
	for i, l := range lines {
		if l.ProductID == productID && !outcomes[i].Remove {
			return i
		}
	}
	return -1
}
