package catalog_repo

import (
	"khaata/internal/domain/catalogs/category"
	"khaata/internal/infrastructure/storage/postgres"
)

const categoryTable = "cat_categories"

// CategoryRepo implements category.Repository.
type CategoryRepo struct {
	*BaseCatalogRepo[*category.Category]
}

// NewCategoryRepo creates a new category repository.
func NewCategoryRepo(txm *postgres.TxManager) *CategoryRepo {
	return &CategoryRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txm, categoryTable, "category",
			postgres.ExtractDBColumns[category.Category](),
			[]string{"title"},
			func() *category.Category { return &category.Category{} },
		),
	}
}

var _ category.Repository = (*CategoryRepo)(nil)
