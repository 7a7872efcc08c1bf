// Package sale provides the distribution ledger: goods delivered to a customer
// and the khaata the customer owes.
package sale

import (
	"khaata/internal/core/types"
	"khaata/internal/domain/catalogs/counterparty"
	"khaata/internal/domain/documents/khaata"
)

// Sale is a distribution record. Line prices are retail prices.
type Sale struct {
	khaata.Record
}

// New allocates an empty sale.
func New() *Sale {
	return &Sale{}
}

// Customer returns the customer snapshot.
func (s *Sale) Customer() counterparty.Snapshot {
	return s.Counterparty
}

// TotalRetailPrice is the sum of line retail prices.
func (s *Sale) TotalRetailPrice() types.Money {
	return s.Total
}
