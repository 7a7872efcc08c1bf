// Package khaata holds what procurement and distribution records share: lines
// priced against a counterparty and a running balance of what is still owed.
package khaata

import (
	"context"
	"slices"

	"khaata/internal/core/apperror"
	"khaata/internal/core/entity"
	"khaata/internal/core/id"
	"khaata/internal/core/types"
	"khaata/internal/domain"
	"khaata/internal/domain/catalogs/counterparty"
	"khaata/internal/domain/catalogs/product"
	"khaata/internal/domain/conversion"
	"khaata/internal/domain/inventory"
)

// Line is one product entry of a record. The product snapshot, and with it
// the unit, never changes once the line is stored.
type Line struct {
	Product product.Snapshot `json:"product"`
	Amount  inventory.Amount `json:"amount"`
	Price   types.Money      `json:"price"`
}

// Record is a purchase or a sale.
type Record struct {
	entity.BaseDocument

	Counterparty counterparty.Snapshot `json:"counterparty"`
	Lines        []Line                `json:"lines"`

	// Total is the sum of line prices.
	Total types.Money `db:"total" json:"total"`
	Paid  types.Money `db:"paid" json:"paid"`
	// IsRemaining is always Paid < Total.
	IsRemaining bool `db:"is_remaining" json:"isRemaining"`
}

// Document is implemented by the ledger-specific record types.
type Document interface {
	domain.Identifiable
	Ledger() *Record
}

// Ledger returns r. Types embedding Record satisfy Document through it.
func (r *Record) Ledger() *Record {
	return r
}

// Validate implements entity.Validatable.
func (r *Record) Validate(ctx context.Context) error {
	if id.IsNil(r.Counterparty.ID) {
		return apperror.NewValidation("counterparty is required").
			WithDetail("field", "counterparty")
	}
	for i, l := range r.Lines {
		if l.Price.IsNegative() {
			return apperror.NewValidation("price cannot be negative").
				WithDetail("field", "lines").
				WithDetail("line", i+1)
		}
		if l.Amount.Mode() != l.Product.Mode {
			return apperror.NewValidation("quantity does not match product mode").
				WithDetail("field", "lines").
				WithDetail("line", i+1)
		}
	}
	if r.Paid.IsNegative() {
		return apperror.NewValidation("paid cannot be negative").WithDetail("field", "paid")
	}
	if r.Paid.GreaterThan(r.Total) {
		return apperror.NewOverpaymentRejected(r.Total)
	}
	return nil
}

// Retotal recomputes Total from the lines and IsRemaining from Paid.
func (r *Record) Retotal() {
	prices := make([]types.Money, len(r.Lines))
	for i, l := range r.Lines {
		prices[i] = l.Price
	}
	r.Total = types.SumMoney(prices...)
	r.IsRemaining = r.Paid.LessThan(r.Total)
}

// Remaining returns what is still owed.
func (r *Record) Remaining() types.Money {
	return r.Total.Sub(r.Paid)
}

// CheckPayment validates a payment of amount against the balance.
func (r *Record) CheckPayment(amount types.Money) error {
	if !amount.IsPositive() {
		return apperror.NewValidation("amount must be positive").WithDetail("field", "amount")
	}
	if !r.IsRemaining {
		return apperror.NewKhaataAlreadyCleared()
	}
	if r.Paid.Add(amount).GreaterThan(r.Total) {
		return apperror.NewOverpaymentRejected(r.Remaining())
	}
	return nil
}

// Pay adds amount to Paid.
func (r *Record) Pay(amount types.Money) error {
	if err := r.CheckPayment(amount); err != nil {
		return err
	}
	r.Paid = r.Paid.Add(amount)
	r.IsRemaining = r.Paid.LessThan(r.Total)
	return nil
}

// Settle lowers Paid to Total when a refund shrank the total below what was
// paid, and returns the excess owed back to the payer.
func (r *Record) Settle() types.Money {
	if !r.Paid.GreaterThan(r.Total) {
		r.IsRemaining = r.Paid.LessThan(r.Total)
		return types.Zero()
	}
	excess := r.Paid.Sub(r.Total)
	r.Paid = r.Total
	r.IsRemaining = false
	return excess
}

// Clone returns a copy that shares no slices with r.
func (r *Record) Clone() Record {
	c := *r
	c.Lines = slices.Clone(r.Lines)
	return c
}

// Summary is the audited view of the balance.
func (r *Record) Summary() map[string]any {
	return map[string]any{
		"total":       r.Total.String(),
		"paid":        r.Paid.String(),
		"isRemaining": r.IsRemaining,
		"lines":       len(r.Lines),
	}
}

// LineInput is a requested line before products are resolved and quantities converted.
type LineInput struct {
	ProductID id.ID
	Quantity  *conversion.Quantity
	Variants  map[string]conversion.Quantity
	Price     types.Money
}

// RefundInput asks to refund part of the line holding ProductID. Quantities are
// read against the unit recorded on that line.
type RefundInput struct {
	ProductID id.ID
	Quantity  *conversion.Quantity
	Variants  map[string]conversion.Quantity
}

// ListFilter narrows record listings.
type ListFilter struct {
	domain.ListFilter

	CounterpartyID *id.ID
	RemainingOnly  bool
}

// Matches reports whether r passes the non-paging part of the filter.
func (f ListFilter) Matches(r *Record) bool {
	if f.CounterpartyID != nil && r.Counterparty.ID != *f.CounterpartyID {
		return false
	}
	if f.RemainingOnly && !r.IsRemaining {
		return false
	}
	return f.InRange(r.CreatedAt)
}
