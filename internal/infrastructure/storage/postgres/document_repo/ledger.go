// Package document_repo provides PostgreSQL storage for purchase and sale records.
package document_repo

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"khaata/internal/core/apperror"
	"khaata/internal/core/entity"
	"khaata/internal/core/id"
	"khaata/internal/core/types"
	"khaata/internal/domain"
	"khaata/internal/domain/documents/khaata"
	"khaata/internal/domain/documents/purchase"
	"khaata/internal/domain/documents/sale"
	"khaata/internal/infrastructure/storage/postgres"
)

const (
	purchaseTable = "doc_purchases"
	saleTable     = "doc_sales"
)

var ledgerCols = []string{
	"id", "version", "number", "created_at", "updated_at", "created_by",
	"counterparty_id", "counterparty", "lines", "total", "paid", "is_remaining",
}

// row is the stored form of a khaata.Record. Counterparty and lines are
// snapshots kept as JSONB.
type row struct {
	ID             id.ID       `db:"id"`
	Version        int         `db:"version"`
	Number         string      `db:"number"`
	CreatedAt      time.Time   `db:"created_at"`
	UpdatedAt      time.Time   `db:"updated_at"`
	CreatedBy      string      `db:"created_by"`
	CounterpartyID id.ID       `db:"counterparty_id"`
	Counterparty   []byte      `db:"counterparty"`
	Lines          []byte      `db:"lines"`
	Total          types.Money `db:"total"`
	Paid           types.Money `db:"paid"`
	IsRemaining    bool        `db:"is_remaining"`
}

func toRow(rec *khaata.Record) (row, error) {
	cp, err := json.Marshal(rec.Counterparty)
	if err != nil {
		return row{}, fmt.Errorf("marshal counterparty: %w", err)
	}
	lines := rec.Lines
	if lines == nil {
		lines = []khaata.Line{}
	}
	ls, err := json.Marshal(lines)
	if err != nil {
		return row{}, fmt.Errorf("marshal lines: %w", err)
	}
	return row{
		ID:             rec.ID,
		Version:        rec.Version,
		Number:         rec.Number,
		CreatedAt:      rec.CreatedAt,
		UpdatedAt:      rec.UpdatedAt,
		CreatedBy:      rec.CreatedBy,
		CounterpartyID: rec.Counterparty.ID,
		Counterparty:   cp,
		Lines:          ls,
		Total:          rec.Total,
		Paid:           rec.Paid,
		IsRemaining:    rec.IsRemaining,
	}, nil
}

func (r row) record() (khaata.Record, error) {
	rec := khaata.Record{
		BaseDocument: entity.BaseDocument{
			BaseEntity: entity.BaseEntity{ID: r.ID, Version: r.Version},
			Number:     r.Number,
			CreatedAt:  r.CreatedAt,
			UpdatedAt:  r.UpdatedAt,
			CreatedBy:  r.CreatedBy,
		},
		Total:       r.Total,
		Paid:        r.Paid,
		IsRemaining: r.IsRemaining,
	}
	if err := json.Unmarshal(r.Counterparty, &rec.Counterparty); err != nil {
		return rec, fmt.Errorf("unmarshal counterparty of %s: %w", r.Number, err)
	}
	if err := json.Unmarshal(r.Lines, &rec.Lines); err != nil {
		return rec, fmt.Errorf("unmarshal lines of %s: %w", r.Number, err)
	}
	return rec, nil
}

// LedgerRepo implements khaata.Repository over one table.
type LedgerRepo[D khaata.Document] struct {
	txm       *postgres.TxManager
	tableName string
	kind      string
	alloc     func() D
}

// NewPurchaseRepo creates the purchase repository.
func NewPurchaseRepo(txm *postgres.TxManager) *LedgerRepo[*purchase.Purchase] {
	return &LedgerRepo[*purchase.Purchase]{txm: txm, tableName: purchaseTable, kind: "purchase", alloc: purchase.New}
}

// NewSaleRepo creates the sale repository.
func NewSaleRepo(txm *postgres.TxManager) *LedgerRepo[*sale.Sale] {
	return &LedgerRepo[*sale.Sale]{txm: txm, tableName: saleTable, kind: "sale", alloc: sale.New}
}

var (
	_ purchase.Repository = (*LedgerRepo[*purchase.Purchase])(nil)
	_ sale.Repository     = (*LedgerRepo[*sale.Sale])(nil)
)

func (r *LedgerRepo[D]) querier(ctx context.Context) postgres.Querier {
	return r.txm.GetQuerier(ctx)
}

func (r *LedgerRepo[D]) wrap(rw row) (D, error) {
	rec, err := rw.record()
	if err != nil {
		var zero D
		return zero, err
	}
	doc := r.alloc()
	*doc.Ledger() = rec
	return doc, nil
}

// Create inserts a record.
func (r *LedgerRepo[D]) Create(ctx context.Context, doc D) error {
	rec := doc.Ledger()
	rw, err := toRow(rec)
	if err != nil {
		return err
	}

	sql, args, err := r.insertQuery(rw).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(fmt.Errorf("insert %s: %w", r.tableName, err), r.kind, rec.Number)
	}
	return nil
}

func (r *LedgerRepo[D]) insertQuery(rw row) squirrel.InsertBuilder {
	return postgres.Builder().
		Insert(r.tableName).
		Columns(ledgerCols...).
		Values(rw.ID, rw.Version, rw.Number, rw.CreatedAt, rw.UpdatedAt, rw.CreatedBy,
			rw.CounterpartyID, string(rw.Counterparty), string(rw.Lines), rw.Total, rw.Paid, rw.IsRemaining)
}

// GetByID loads a record.
func (r *LedgerRepo[D]) GetByID(ctx context.Context, docID id.ID) (D, error) {
	var zero D
	sql, args, err := postgres.Builder().
		Select(ledgerCols...).
		From(r.tableName).
		Where(squirrel.Eq{"id": docID}).
		ToSql()
	if err != nil {
		return zero, fmt.Errorf("build query: %w", err)
	}

	var rw row
	if err := pgxscan.Get(ctx, r.querier(ctx), &rw, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return zero, apperror.NewNotFound(r.kind, docID.String())
		}
		return zero, fmt.Errorf("get %s: %w", r.kind, err)
	}
	return r.wrap(rw)
}

// Update rewrites lines and balance where the stored version matches, then
// bumps the version on doc.
func (r *LedgerRepo[D]) Update(ctx context.Context, doc D) error {
	rec := doc.Ledger()
	rw, err := toRow(rec)
	if err != nil {
		return err
	}

	sql, args, err := r.updateQuery(rw).ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(fmt.Errorf("update %s: %w", r.tableName, err), r.kind, rec.ID.String())
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification(r.kind, rec.ID.String())
	}
	rec.Version++
	return nil
}

func (r *LedgerRepo[D]) updateQuery(rw row) squirrel.UpdateBuilder {
	return postgres.Builder().
		Update(r.tableName).
		Set("lines", string(rw.Lines)).
		Set("total", rw.Total).
		Set("paid", rw.Paid).
		Set("is_remaining", rw.IsRemaining).
		Set("updated_at", rw.UpdatedAt).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": rw.ID, "version": rw.Version})
}

// AddPayment adds amount to paid in one conditional statement. It reports
// false when the record is cleared or the payment would exceed the total.
func (r *LedgerRepo[D]) AddPayment(ctx context.Context, docID id.ID, amount types.Money) (bool, error) {
	sql, args, err := r.paymentQuery(docID, amount).ToSql()
	if err != nil {
		return false, fmt.Errorf("build payment: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return false, postgres.MapError(fmt.Errorf("pay %s: %w", r.tableName, err), r.kind, docID.String())
	}
	if result.RowsAffected() > 0 {
		return true, nil
	}

	if _, err := r.GetByID(ctx, docID); err != nil {
		return false, err
	}
	return false, nil
}

func (r *LedgerRepo[D]) paymentQuery(docID id.ID, amount types.Money) squirrel.UpdateBuilder {
	return postgres.Builder().
		Update(r.tableName).
		Set("paid", squirrel.Expr("paid + ?", amount)).
		Set("is_remaining", squirrel.Expr("paid + ? < total", amount)).
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": docID, "is_remaining": true}).
		Where(squirrel.Expr("paid + ? <= total", amount))
}

// Delete removes a record.
func (r *LedgerRepo[D]) Delete(ctx context.Context, docID id.ID) error {
	sql, args, err := postgres.Builder().
		Delete(r.tableName).
		Where(squirrel.Eq{"id": docID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete %s: %w", r.tableName, err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound(r.kind, docID.String())
	}
	return nil
}

// List returns records matching filter.
func (r *LedgerRepo[D]) List(ctx context.Context, filter khaata.ListFilter) (domain.ListResult[D], error) {
	filter.Normalize()
	result := domain.ListResult[D]{
		Items:  []D{},
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.filtered(filter)
	countSQL, countArgs, err := postgres.Builder().Select("COUNT(*)").FromSelect(q, "sub").ToSql()
	if err != nil {
		return result, fmt.Errorf("build count: %w", err)
	}
	querier := r.querier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count %s: %w", r.tableName, err)
	}

	orderBy, err := postgres.ParseOrderBy(filter.OrderBy, ledgerCols)
	if err != nil {
		return result, err
	}
	sql, args, err := q.OrderBy(orderBy, "id").
		Limit(uint64(filter.Limit)).
		Offset(uint64(filter.Offset)).
		ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	var rows []row
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return result, fmt.Errorf("list %s: %w", r.tableName, err)
	}
	for _, rw := range rows {
		doc, err := r.wrap(rw)
		if err != nil {
			return result, err
		}
		result.Items = append(result.Items, doc)
	}
	return result, nil
}

func (r *LedgerRepo[D]) filtered(filter khaata.ListFilter) squirrel.SelectBuilder {
	q := postgres.Builder().Select(ledgerCols...).From(r.tableName)

	if filter.CounterpartyID != nil {
		q = q.Where(squirrel.Eq{"counterparty_id": *filter.CounterpartyID})
	}
	if filter.RemainingOnly {
		q = q.Where(squirrel.Eq{"is_remaining": true})
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"number": pattern},
			squirrel.ILike{"counterparty->>'name'": pattern},
		})
	}
	if filter.DateFrom != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.DateFrom})
	}
	if filter.DateTo != nil {
		q = q.Where(squirrel.LtOrEq{"created_at": *filter.DateTo})
	}
	return q
}

// Count returns the number of stored records.
func (r *LedgerRepo[D]) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.querier(ctx).QueryRow(ctx, "SELECT COUNT(*) FROM "+r.tableName).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", r.tableName, err)
	}
	return n, nil
}
