package catalog_repo

import (
	"context"
	"strings"

	"github.com/Masterminds/squirrel"

	"khaata/internal/domain/catalogs/product"
	"khaata/internal/infrastructure/storage/postgres"
)

const productTable = "cat_products"

// ProductRepo implements product.Repository.
type ProductRepo struct {
	*BaseCatalogRepo[*product.Product]
}

// NewProductRepo creates a new product repository.
func NewProductRepo(txm *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txm, productTable, "product",
			postgres.ExtractDBColumns[product.Product](),
			[]string{"model_number"},
			func() *product.Product { return &product.Product{} },
		),
	}
}

// GetByModelNumber finds a product by model number, ignoring case.
func (r *ProductRepo) GetByModelNumber(ctx context.Context, modelNumber string) (*product.Product, error) {
	modelNumber = strings.TrimSpace(modelNumber)
	q := r.baseSelect().
		Where(squirrel.Expr("LOWER(model_number) = LOWER(?)", modelNumber)).
		Limit(1)
	return r.findOne(ctx, q, modelNumber)
}

var _ product.Repository = (*ProductRepo)(nil)
