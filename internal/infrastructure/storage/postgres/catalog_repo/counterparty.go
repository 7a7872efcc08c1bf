package catalog_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"khaata/internal/domain"
	"khaata/internal/domain/catalogs/counterparty"
	"khaata/internal/infrastructure/storage/postgres"
)

const counterpartyTable = "cat_counterparties"

// CounterpartyRepo implements counterparty.Repository. Suppliers and
// customers share one table keyed by kind.
type CounterpartyRepo struct {
	*BaseCatalogRepo[*counterparty.Counterparty]
}

// NewCounterpartyRepo creates a new counterparty repository.
func NewCounterpartyRepo(txm *postgres.TxManager) *CounterpartyRepo {
	return &CounterpartyRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txm, counterpartyTable, "counterparty",
			postgres.ExtractDBColumns[counterparty.Counterparty](),
			[]string{"name", "company"},
			func() *counterparty.Counterparty { return &counterparty.Counterparty{} },
		),
	}
}

// List returns counterparties of one kind.
func (r *CounterpartyRepo) List(ctx context.Context, kind counterparty.Kind, filter domain.ListFilter) (domain.ListResult[*counterparty.Counterparty], error) {
	return r.ListWhere(ctx, filter, squirrel.Eq{"kind": string(kind)})
}

var _ counterparty.Repository = (*CounterpartyRepo)(nil)
