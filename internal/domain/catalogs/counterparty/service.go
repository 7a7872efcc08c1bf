package counterparty

import (
	"context"

	"khaata/internal/core/apperror"
	"khaata/internal/core/id"
	"khaata/internal/core/tx"
	"khaata/internal/domain"
)

// Repository stores suppliers and customers in one table keyed by kind.
type Repository interface {
	Create(ctx context.Context, c *Counterparty) error
	GetByID(ctx context.Context, counterpartyID id.ID) (*Counterparty, error)
	Delete(ctx context.Context, counterpartyID id.ID) error
	List(ctx context.Context, kind Kind, filter domain.ListFilter) (domain.ListResult[*Counterparty], error)
}

// kindScoped narrows Repository to one kind so the generic catalog service can drive it.
type kindScoped struct {
	repo Repository
	kind Kind
}

func (k kindScoped) Create(ctx context.Context, c *Counterparty) error {
	c.Kind = k.kind
	return k.repo.Create(ctx, c)
}

func (k kindScoped) GetByID(ctx context.Context, counterpartyID id.ID) (*Counterparty, error) {
	c, err := k.repo.GetByID(ctx, counterpartyID)
	if err != nil {
		return nil, err
	}
	if c.Kind != k.kind {
		return nil, apperror.NewNotFound(string(k.kind), counterpartyID.String())
	}
	return c, nil
}

func (k kindScoped) Delete(ctx context.Context, counterpartyID id.ID) error {
	return k.repo.Delete(ctx, counterpartyID)
}

func (k kindScoped) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Counterparty], error) {
	return k.repo.List(ctx, k.kind, filter)
}

// Service exposes one catalog service per kind.
type Service struct {
	Suppliers *domain.CatalogService[*Counterparty]
	Customers *domain.CatalogService[*Counterparty]
}

// NewService creates the counterparty service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{
		Suppliers: domain.NewCatalogService(domain.CatalogServiceConfig[*Counterparty]{
			Repo:       kindScoped{repo: repo, kind: KindSupplier},
			TxManager:  txManager,
			EntityName: "supplier",
			NotFound:   func(v id.ID) error { return apperror.NewSupplierNotFound(v.String()) },
		}),
		Customers: domain.NewCatalogService(domain.CatalogServiceConfig[*Counterparty]{
			Repo:       kindScoped{repo: repo, kind: KindCustomer},
			TxManager:  txManager,
			EntityName: "customer",
			NotFound:   func(v id.ID) error { return apperror.NewCustomerNotFound(v.String()) },
		}),
	}
}

// Supplier returns the snapshot of a supplier or SupplierNotFound.
func (s *Service) Supplier(ctx context.Context, supplierID id.ID) (Snapshot, error) {
	c, err := s.Suppliers.GetByID(ctx, supplierID)
	if err != nil {
		return Snapshot{}, err
	}
	return c.Snapshot(), nil
}

// Customer returns the snapshot of a customer or CustomerNotFound.
func (s *Service) Customer(ctx context.Context, customerID id.ID) (Snapshot, error) {
	c, err := s.Customers.GetByID(ctx, customerID)
	if err != nil {
		return Snapshot{}, err
	}
	return c.Snapshot(), nil
}
