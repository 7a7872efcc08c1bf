package catalog_repo

import (
	"khaata/internal/domain/catalogs/unit"
	"khaata/internal/infrastructure/storage/postgres"
)

const unitTable = "cat_units"

// UnitRepo implements unit.Repository.
type UnitRepo struct {
	*BaseCatalogRepo[*unit.Unit]
}

// NewUnitRepo creates a new unit repository.
func NewUnitRepo(txm *postgres.TxManager) *UnitRepo {
	return &UnitRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txm, unitTable, "unit",
			postgres.ExtractDBColumns[unit.Unit](),
			[]string{"title"},
			func() *unit.Unit { return &unit.Unit{} },
		),
	}
}

var _ unit.Repository = (*UnitRepo)(nil)
