// Package inventory_repo provides PostgreSQL storage for current stock.
package inventory_repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"khaata/internal/core/apperror"
	"khaata/internal/core/id"
	"khaata/internal/domain"
	"khaata/internal/domain/catalogs/product"
	"khaata/internal/domain/inventory"
	"khaata/internal/infrastructure/storage/postgres"
)

const inventoryTable = "inventory"

var stockCols = []string{"product_id", "mode", "quantity", "variants", "version", "updated_at"}

type stockRow struct {
	ProductID id.ID        `db:"product_id"`
	Mode      product.Mode `db:"mode"`
	Quantity  int64        `db:"quantity"`
	Variants  []byte       `db:"variants"`
	Version   int          `db:"version"`
	UpdatedAt time.Time    `db:"updated_at"`
}

func toStockRow(rec *inventory.Record) (stockRow, error) {
	rw := stockRow{
		ProductID: rec.ProductID,
		Mode:      rec.Stock.Mode(),
		Quantity:  rec.Stock.Quantity(),
		Version:   rec.Version,
		UpdatedAt: rec.UpdatedAt,
	}
	if rec.Stock.IsVariants() {
		data, err := json.Marshal(rec.Stock.VariantCounts())
		if err != nil {
			return rw, fmt.Errorf("marshal variants: %w", err)
		}
		rw.Variants = data
	}
	return rw, nil
}

func (rw stockRow) record() (*inventory.Record, error) {
	rec := &inventory.Record{
		ProductID: rw.ProductID,
		Version:   rw.Version,
		UpdatedAt: rw.UpdatedAt,
		Stock:     inventory.Scalar(rw.Quantity),
	}
	if rw.Mode == product.ModeVariants {
		var counts map[string]int64
		if len(rw.Variants) > 0 {
			if err := json.Unmarshal(rw.Variants, &counts); err != nil {
				return nil, fmt.Errorf("unmarshal variants of %s: %w", rw.ProductID, err)
			}
		}
		rec.Stock = inventory.Variants(counts)
	}
	return rec, nil
}

// variantsArg is the JSONB parameter for a row; nil maps to SQL NULL.
func (rw stockRow) variantsArg() any {
	if rw.Variants == nil {
		return nil
	}
	return string(rw.Variants)
}

// StockRepo implements inventory.Repository.
type StockRepo struct {
	txm *postgres.TxManager
}

// NewStockRepo creates a new inventory repository.
func NewStockRepo(txm *postgres.TxManager) *StockRepo {
	return &StockRepo{txm: txm}
}

var _ inventory.Repository = (*StockRepo)(nil)

func (r *StockRepo) querier(ctx context.Context) postgres.Querier {
	return r.txm.GetQuerier(ctx)
}

// Get loads the stock of a product.
func (r *StockRepo) Get(ctx context.Context, productID id.ID) (*inventory.Record, error) {
	sql, args, err := postgres.Builder().
		Select(stockCols...).
		From(inventoryTable).
		Where(squirrel.Eq{"product_id": productID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rw stockRow
	if err := pgxscan.Get(ctx, r.querier(ctx), &rw, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("inventory", productID.String())
		}
		return nil, fmt.Errorf("get inventory: %w", err)
	}
	return rw.record()
}

// Insert creates the first stock row of a product. An existing row means
// another writer got there first.
func (r *StockRepo) Insert(ctx context.Context, rec *inventory.Record) error {
	rw, err := toStockRow(rec)
	if err != nil {
		return err
	}

	sql, args, err := postgres.Builder().
		Insert(inventoryTable).
		Columns(stockCols...).
		Values(rw.ProductID, string(rw.Mode), rw.Quantity, rw.variantsArg(), rw.Version, rw.UpdatedAt).
		Suffix("ON CONFLICT (product_id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(fmt.Errorf("insert inventory: %w", err), "inventory", rec.ProductID.String())
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("inventory", rec.ProductID.String())
	}
	return nil
}

// Update writes the stock where the version matches and bumps rec.Version.
func (r *StockRepo) Update(ctx context.Context, rec *inventory.Record) error {
	rw, err := toStockRow(rec)
	if err != nil {
		return err
	}

	sql, args, err := updateQuery(rw).ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(fmt.Errorf("update inventory: %w", err), "inventory", rec.ProductID.String())
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("inventory", rec.ProductID.String())
	}
	rec.Version++
	return nil
}

func updateQuery(rw stockRow) squirrel.UpdateBuilder {
	return postgres.Builder().
		Update(inventoryTable).
		Set("quantity", rw.Quantity).
		Set("variants", rw.variantsArg()).
		Set("updated_at", rw.UpdatedAt).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"product_id": rw.ProductID, "version": rw.Version})
}

// Delete removes the row of a product that reached zero.
func (r *StockRepo) Delete(ctx context.Context, productID id.ID, version int) error {
	sql, args, err := postgres.Builder().
		Delete(inventoryTable).
		Where(squirrel.Eq{"product_id": productID, "version": version}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete inventory: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("inventory", productID.String())
	}
	return nil
}

// listQuery selects stock rows of a category changed inside the filter's date range.
func listQuery(filter domain.ListFilter) squirrel.SelectBuilder {
	q := postgres.Builder().Select(stockCols...).From(inventoryTable)
	if filter.CategoryID != nil {
		q = q.Where(squirrel.Expr("product_id IN (SELECT id FROM cat_products WHERE category_id = ?)", *filter.CategoryID))
	}
	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"updated_at": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"updated_at": *filter.DateTo})
	}
	return q
}

// List returns stock rows, newest change first by default.
func (r *StockRepo) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*inventory.Record], error) {
	filter.Normalize()
	result := domain.ListResult[*inventory.Record]{
		Items:  []*inventory.Record{},
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := listQuery(filter)
	querier := r.querier(ctx)

	countSQL, countArgs, err := postgres.Builder().Select("COUNT(*)").FromSelect(q, "sub").ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count inventory: %w", err)
	}

	orderBy := "updated_at DESC"
	if filter.OrderBy != "" && filter.OrderBy != "-created_at" {
		if orderBy, err = postgres.ParseOrderBy(filter.OrderBy, stockCols); err != nil {
			return result, err
		}
	}
	sql, args, err := q.OrderBy(orderBy, "product_id").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset)).
		ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	var rows []stockRow
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return result, fmt.Errorf("list inventory: %w", err)
	}
	for _, rw := range rows {
		rec, err := rw.record()
		if err != nil {
			return result, err
		}
		result.Items = append(result.Items, rec)
	}
	return result, nil
}
