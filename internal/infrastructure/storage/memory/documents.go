package memory

import (
	"context"
	"time"

	"khaata/internal/core/apperror"
	"khaata/internal/core/id"
	"khaata/internal/core/types"
	"khaata/internal/domain"
	"khaata/internal/domain/documents/khaata"
	"khaata/internal/domain/documents/purchase"
	"khaata/internal/domain/documents/sale"
)

// DocumentRepo implements khaata.Repository for one ledger.
type DocumentRepo[D khaata.Document] struct {
	s     *Store
	kind  string
	alloc func() D
}

// Purchases returns the purchase repository.
func (s *Store) Purchases() *DocumentRepo[*purchase.Purchase] {
	return &DocumentRepo[*purchase.Purchase]{s: s, kind: "purchase", alloc: purchase.New}
}

// Sales returns the sale repository.
func (s *Store) Sales() *DocumentRepo[*sale.Sale] {
	return &DocumentRepo[*sale.Sale]{s: s, kind: "sale", alloc: sale.New}
}

func (r *DocumentRepo[D]) wrap(rec khaata.Record) D {
	doc := r.alloc()
	*doc.Ledger() = rec.Clone()
	return doc
}

func (r *DocumentRepo[D]) Create(ctx context.Context, doc D) error {
	rec := doc.Ledger()
	return r.s.view(ctx, func(st *state) error {
		docs := st.docs(r.kind)
		if _, ok := docs[rec.ID]; ok {
			return apperror.NewDuplicate(r.kind, "id", rec.ID.String())
		}
		for _, existing := range docs {
			if existing.Number == rec.Number {
				return apperror.NewDuplicate(r.kind, "number", rec.Number)
			}
		}
		docs[rec.ID] = rec.Clone()
		return nil
	})
}

func (r *DocumentRepo[D]) GetByID(ctx context.Context, docID id.ID) (D, error) {
	var out D
	err := r.s.view(ctx, func(st *state) error {
		rec, ok := st.docs(r.kind)[docID]
		if !ok {
			return apperror.NewNotFound(r.kind, docID.String())
		}
		out = r.wrap(rec)
		return nil
	})
	return out, err
}

func (r *DocumentRepo[D]) Update(ctx context.Context, doc D) error {
	rec := doc.Ledger()
	return r.s.view(ctx, func(st *state) error {
		docs := st.docs(r.kind)
		stored, ok := docs[rec.ID]
		if !ok {
			return apperror.NewNotFound(r.kind, rec.ID.String())
		}
		if stored.Version != rec.Version {
			return apperror.NewConcurrentModification(r.kind, rec.ID.String())
		}
		rec.Version++
		docs[rec.ID] = rec.Clone()
		return nil
	})
}

func (r *DocumentRepo[D]) AddPayment(ctx context.Context, docID id.ID, amount types.Money) (bool, error) {
	applied := false
	err := r.s.view(ctx, func(st *state) error {
		docs := st.docs(r.kind)
		rec, ok := docs[docID]
		if !ok {
			return apperror.NewNotFound(r.kind, docID.String())
		}
		paid := rec.Paid.Add(amount)
		if !rec.IsRemaining || paid.GreaterThan(rec.Total) {
			return nil
		}
		rec.Paid = paid
		rec.IsRemaining = paid.LessThan(rec.Total)
		rec.Version++
		rec.UpdatedAt = time.Now().UTC()
		docs[docID] = rec
		applied = true
		return nil
	})
	return applied, err
}

func (r *DocumentRepo[D]) Delete(ctx context.Context, docID id.ID) error {
	return r.s.view(ctx, func(st *state) error {
		docs := st.docs(r.kind)
		if _, ok := docs[docID]; !ok {
			return apperror.NewNotFound(r.kind, docID.String())
		}
		delete(docs, docID)
		return nil
	})
}

func (r *DocumentRepo[D]) List(ctx context.Context, f khaata.ListFilter) (domain.ListResult[D], error) {
	var recs []khaata.Record
	err := r.s.view(ctx, func(st *state) error {
		for _, rec := range st.docs(r.kind) {
			if f.Matches(&rec) && matchesSearch(rec.Number+" "+rec.Counterparty.Name, f.Search) {
				recs = append(recs, rec)
			}
		}
		return nil
	})
	if err != nil {
		return domain.ListResult[D]{}, err
	}

	sortByCreated(recs, f.OrderBy,
		func(rec khaata.Record) time.Time { return rec.CreatedAt },
		func(rec khaata.Record) id.ID { return rec.ID })

	items := make([]D, len(recs))
	for i, rec := range recs {
		items[i] = r.wrap(rec)
	}
	return page(items, f.ListFilter), nil
}

func (r *DocumentRepo[D]) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.s.view(ctx, func(st *state) error {
		n = int64(len(st.docs(r.kind)))
		return nil
	})
	return n, err
}

var (
	_ purchase.Repository = (*DocumentRepo[*purchase.Purchase])(nil)
	_ sale.Repository     = (*DocumentRepo[*sale.Sale])(nil)
)
