// Package purchase provides the procurement ledger: goods bought from a
// supplier and the khaata owed to that supplier.
package purchase

import (
	"khaata/internal/core/types"
	"khaata/internal/domain/catalogs/counterparty"
	"khaata/internal/domain/documents/khaata"
)

// Purchase is a procurement record. Line prices are source prices.
type Purchase struct {
	khaata.Record
}

// New allocates an empty purchase.
func New() *Purchase {
	return &Purchase{}
}

// Supplier returns the supplier snapshot.
func (p *Purchase) Supplier() counterparty.Snapshot {
	return p.Counterparty
}

// TotalSourcePrice is the sum of line source prices.
func (p *Purchase) TotalSourcePrice() types.Money {
	return p.Total
}
