package purchase

import (
	"context"

	"khaata/internal/core/id"
	"khaata/internal/core/numerator"
	"khaata/internal/core/tx"
	"khaata/internal/core/types"
	"khaata/internal/domain/audit"
	"khaata/internal/domain/catalogs/counterparty"
	"khaata/internal/domain/documents/khaata"
	"khaata/internal/domain/inventory"
)

// SupplierLookup resolves suppliers.
type SupplierLookup interface {
	Supplier(ctx context.Context, supplierID id.ID) (counterparty.Snapshot, error)
}

// Service provides the procurement ledger. Creating a purchase adds stock.
type Service struct {
	*khaata.Service[*Purchase]
}

// Deps are the collaborators of the procurement ledger.
type Deps struct {
	Repo      Repository
	TxManager tx.Manager
	Stock     khaata.StockApplier
	Products  khaata.ProductLookup
	Suppliers SupplierLookup
	Numerator numerator.Generator
	Audit     audit.Recorder
}

// NewService creates the procurement ledger service.
func NewService(d Deps) *Service {
	return &Service{
		Service: khaata.NewService(khaata.Config[*Purchase]{
			Kind:             "purchase",
			NumberPrefix:     NumberPrefix,
			Flow:             inventory.Inbound,
			Repo:             d.Repo,
			TxManager:        d.TxManager,
			Stock:            d.Stock,
			Products:         d.Products,
			Counterparties:   d.Suppliers.Supplier,
			Numerator:        d.Numerator,
			NumeratorOptions: &numerator.Options{Strategy: NumeratorStrategy},
			Audit:            d.Audit,
			New:              New,
		}),
	}
}

// CreateInput is a new purchase request.
type CreateInput struct {
	SupplierID id.ID
	Lines      []khaata.LineInput
	Paid       types.Money
}

// Create records goods received from a supplier. Unknown suppliers, unknown
// products and malformed quantities are rejected before stock moves.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Purchase, error) {
	return s.Service.Create(ctx, khaata.CreateInput{
		CounterpartyID: in.SupplierID,
		Lines:          in.Lines,
		Paid:           in.Paid,
	})
}
