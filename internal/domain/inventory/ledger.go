// Package inventory keeps the current stock of every product in base units.
//
// Stock only changes through Ledger.ApplyDelta. Each change is checked against
// the stored version of the product's record, so two concurrent writers cannot
// both succeed from the same starting point. The loser retries from fresh state.
package inventory

import (
	"context"
	"fmt"
	"time"

	"khaata/internal/core/apperror"
	"khaata/internal/core/id"
	"khaata/internal/core/tx"
	"khaata/internal/domain"
	"khaata/internal/domain/catalogs/product"
	"khaata/internal/domain/conversion"
	"khaata/pkg/logger"
)

// Record is the stored stock of one product. Absence means zero stock.
type Record struct {
	ProductID id.ID     `db:"product_id" json:"productId"`
	Stock     Amount    `db:"-" json:"stock"`
	Version   int       `db:"version" json:"version"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// Repository persists inventory records.
//
// Insert, Update and Delete are conditional: Insert fails when a record already
// exists, Update and Delete fail when the stored version differs from the one
// given. All three report that case as a ConcurrentModification AppError.
type Repository interface {
	// Get returns a NotFound AppError when the product holds no stock.
	Get(ctx context.Context, productID id.ID) (*Record, error)
	Insert(ctx context.Context, rec *Record) error
	// Update writes rec.Stock where version = rec.Version and bumps rec.Version.
	Update(ctx context.Context, rec *Record) error
	Delete(ctx context.Context, productID id.ID, version int) error
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Record], error)
}

// ProductLookup resolves the live product used to display stock.
type ProductLookup interface {
	Snapshot(ctx context.Context, productID id.ID) (product.Snapshot, error)
}

// SnapshotCache holds rendered stock views. Misses and failures fall back to storage.
type SnapshotCache interface {
	Get(ctx context.Context, productID id.ID) (*View, bool, error)
	Set(ctx context.Context, view *View) error
	Invalidate(ctx context.Context, productID id.ID) error
}

// View is a product's stock prepared for display with the product's current unit.
type View struct {
	ProductID   id.ID           `json:"productId" msgpack:"product_id"`
	ModelNumber string          `json:"modelNumber" msgpack:"model_number"`
	Mode        product.Mode    `json:"mode" msgpack:"mode"`
	Unit        product.UnitRef `json:"unit" msgpack:"unit"`

	Quantity *conversion.Display           `json:"quantity,omitempty" msgpack:"quantity,omitempty"`
	Variants map[string]conversion.Display `json:"variants,omitempty" msgpack:"variants,omitempty"`

	BaseQuantity int64            `json:"baseQuantity" msgpack:"base_quantity"`
	BaseVariants map[string]int64 `json:"baseVariants,omitempty" msgpack:"base_variants,omitempty"`
}

// DefaultMaxRetries bounds how often ApplyDelta restarts after a version conflict.
const DefaultMaxRetries = 5

// Ledger applies stock changes.
type Ledger struct {
	repo       Repository
	products   ProductLookup
	txManager  tx.Manager
	cache      SnapshotCache
	maxRetries int
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithCache enables the snapshot cache.
func WithCache(c SnapshotCache) Option {
	return func(l *Ledger) { l.cache = c }
}

// WithMaxRetries sets the retry bound for version conflicts.
func WithMaxRetries(n int) Option {
	return func(l *Ledger) {
		if n >= 0 {
			l.maxRetries = n
		}
	}
}

// NewLedger creates an inventory ledger.
func NewLedger(repo Repository, products ProductLookup, txManager tx.Manager, opts ...Option) *Ledger {
	l := &Ledger{
		repo:       repo,
		products:   products,
		txManager:  txManager,
		maxRetries: DefaultMaxRetries,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// ApplyDelta adds delta to the product's stock and returns the new record.
//
// A missing record counts as zero. If any resulting count would be negative
// the call fails with InsufficientStock, and a count past the int64 range
// fails with MalformedQuantity; nothing is written in either case. Variant keys
// that reach zero are dropped and a record that reaches zero is deleted.
// ApplyDelta joins the caller's transaction when there is one; the cached view
// is dropped once that transaction commits.
func (l *Ledger) ApplyDelta(ctx context.Context, productID id.ID, delta Amount) (*Record, error) {
	for attempt := 0; ; attempt++ {
		rec, err := l.apply(ctx, productID, delta)
		if err == nil {
			tx.AfterCommit(ctx, func(ctx context.Context) { l.invalidate(ctx, productID) })
			logger.Debug(ctx, "inventory delta applied",
				"product_id", productID, "delta_total", delta.Total(), "stock_total", rec.Stock.Total())
			return rec, nil
		}
		if !apperror.IsConcurrentModification(err) || attempt >= l.maxRetries {
			return nil, err
		}
		logger.Debug(ctx, "inventory version conflict, retrying",
			"product_id", productID, "attempt", attempt+1)
	}
}

func (l *Ledger) apply(ctx context.Context, productID id.ID, delta Amount) (*Record, error) {
	current, err := l.repo.Get(ctx, productID)
	exists := err == nil
	switch {
	case apperror.IsNotFound(err):
		current = &Record{ProductID: productID, Stock: Zero(delta.Mode())}
	case err != nil:
		return nil, fmt.Errorf("load inventory: %w", err)
	}

	next, err := current.Stock.Add(delta)
	if err != nil {
		return nil, err
	}
	if key, _, negative := next.FirstNegative(); negative {
		appErr := apperror.NewInsufficientStock(productID.String(), -delta.Get(key), current.Stock.Get(key))
		if key != "" {
			appErr = appErr.WithDetail("variant", key)
		}
		return nil, appErr
	}
	next = next.Pruned()

	now := time.Now().UTC()
	switch {
	case next.IsZero() && exists:
		if err := l.repo.Delete(ctx, productID, current.Version); err != nil {
			return nil, err
		}
		return &Record{ProductID: productID, Stock: next, UpdatedAt: now}, nil
	case next.IsZero():
		return &Record{ProductID: productID, Stock: next, UpdatedAt: now}, nil
	case exists:
		updated := &Record{ProductID: productID, Stock: next, Version: current.Version, UpdatedAt: now}
		if err := l.repo.Update(ctx, updated); err != nil {
			return nil, err
		}
		return updated, nil
	default:
		created := &Record{ProductID: productID, Stock: next, Version: 1, UpdatedAt: now}
		if err := l.repo.Insert(ctx, created); err != nil {
			return nil, err
		}
		return created, nil
	}
}

func (l *Ledger) invalidate(ctx context.Context, productID id.ID) {
	if l.cache == nil {
		return
	}
	if err := l.cache.Invalidate(ctx, productID); err != nil {
		logger.Warn(ctx, "inventory cache invalidation failed", "product_id", productID, "error", err)
	}
}

// Get returns the raw stock of a product (zero when no record exists).
func (l *Ledger) Get(ctx context.Context, productID id.ID) (Amount, error) {
	rec, err := l.repo.Get(ctx, productID)
	if err == nil {
		return rec.Stock, nil
	}
	if !apperror.IsNotFound(err) {
		return Amount{}, err
	}
	p, err := l.products.Snapshot(ctx, productID)
	if err != nil {
		return Amount{}, err
	}
	return Zero(p.Mode), nil
}

// Snapshot returns the stock of a product converted with its current unit.
// Inside a transaction the cache is bypassed: uncommitted stock is never cached.
func (l *Ledger) Snapshot(ctx context.Context, productID id.ID) (*View, error) {
	useCache := l.cache != nil && !tx.InTransaction(ctx)
	if useCache {
		view, ok, err := l.cache.Get(ctx, productID)
		if err != nil {
			logger.Warn(ctx, "inventory cache read failed", "product_id", productID, "error", err)
		} else if ok {
			return view, nil
		}
	}

	p, err := l.products.Snapshot(ctx, productID)
	if err != nil {
		return nil, err
	}

	stock := Zero(p.Mode)
	rec, err := l.repo.Get(ctx, productID)
	switch {
	case err == nil:
		stock = rec.Stock
	case !apperror.IsNotFound(err):
		return nil, fmt.Errorf("load inventory: %w", err)
	}

	view := NewView(p, stock)
	if useCache {
		if err := l.cache.Set(ctx, view); err != nil {
			logger.Warn(ctx, "inventory cache write failed", "product_id", productID, "error", err)
		}
	}
	return view, nil
}

// NewView renders stock for p.
func NewView(p product.Snapshot, stock Amount) *View {
	view := &View{
		ProductID:   p.ID,
		ModelNumber: p.ModelNumber,
		Mode:        p.Mode,
		Unit:        p.Unit,
	}
	view.Quantity, view.Variants = stock.Display(p.Unit.Value)
	if stock.IsVariants() {
		view.BaseVariants = stock.VariantCounts()
	}
	view.BaseQuantity = stock.Total()
	return view
}

// List returns the stock views of all products holding stock.
func (l *Ledger) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*View], error) {
	filter.Normalize()
	recs, err := l.repo.List(ctx, filter)
	if err != nil {
		return domain.ListResult[*View]{}, err
	}

	out := domain.ListResult[*View]{
		Items:      make([]*View, 0, len(recs.Items)),
		TotalCount: recs.TotalCount,
		Limit:      recs.Limit,
		Offset:     recs.Offset,
	}
	for _, rec := range recs.Items {
		p, err := l.products.Snapshot(ctx, rec.ProductID)
		if err != nil {
			return domain.ListResult[*View]{}, err
		}
		out.Items = append(out.Items, NewView(p, rec.Stock))
	}
	return out, nil
}
