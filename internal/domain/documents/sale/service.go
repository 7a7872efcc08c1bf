package sale

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

// CustomerLookup resolves customers.
type CustomerLookup interface {
	Customer(ctx context.Context, customerID id.ID) (counterparty.Snapshot, error)
}

// Service provides the distribution ledger. Creating a sale removes stock and
// fails with InsufficientStock when demand exceeds what is on hand.
type Service struct {
	*khaata.Service[*Sale]
}

// Deps are the collaborators of the distribution ledger.
type Deps struct {
	Repo      Repository
	TxManager tx.Manager
	Stock     khaata.StockApplier
	Products  khaata.ProductLookup
	Customers CustomerLookup
	Numerator numerator.Generator
	Audit     audit.Recorder
}

// NewService creates the distribution ledger service.
func NewService(d Deps) *Service {
	return &Service{
		Service: khaata.NewService(khaata.Config[*Sale]{
			Kind:             "sale",
			NumberPrefix:     NumberPrefix,
			Flow:             inventory.Outbound,
			Repo:             d.Repo,
			TxManager:        d.TxManager,
			Stock:            d.Stock,
			Products:         d.Products,
			Counterparties:   d.Customers.Customer,
			Numerator:        d.Numerator,
			NumeratorOptions: &numerator.Options{Strategy: NumeratorStrategy},
			Audit:            d.Audit,
			New:              New,
		}),
	}
}

// CreateInput is a new sale request.
type CreateInput struct {
	CustomerID id.ID
	Lines      []khaata.LineInput
	Paid       types.Money
}

// Create records goods delivered to a customer.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Sale, error) {
	return s.Service.Create(ctx, khaata.CreateInput{
		CounterpartyID: in.CustomerID,
		Lines:          in.Lines,
		Paid:           in.Paid,
	})
}
