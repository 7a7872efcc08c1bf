package memory

import (
	"context"
	"time"

	"khaata/internal/core/apperror"
	"khaata/internal/core/id"
	"khaata/internal/domain"
	"khaata/internal/domain/inventory"
)

// InventoryRepo implements inventory.Repository.
type InventoryRepo struct{ s *Store }

// Inventory returns the inventory repository.
func (s *Store) Inventory() *InventoryRepo { return &InventoryRepo{s} }

func (r *InventoryRepo) Get(ctx context.Context, productID id.ID) (*inventory.Record, error) {
	var out *inventory.Record
	err := r.s.view(ctx, func(st *state) error {
		rec, ok := st.inventory[productID]
		if !ok {
			return apperror.NewNotFound("inventory", productID.String())
		}
		out = &rec
		return nil
	})
	return out, err
}

func (r *InventoryRepo) Insert(ctx context.Context, rec *inventory.Record) error {
	return r.s.view(ctx, func(st *state) error {
		if _, ok := st.inventory[rec.ProductID]; ok {
			return apperror.NewConcurrentModification("inventory", rec.ProductID.String())
		}
		st.inventory[rec.ProductID] = *rec
		return nil
	})
}

func (r *InventoryRepo) Update(ctx context.Context, rec *inventory.Record) error {
	return r.s.view(ctx, func(st *state) error {
		stored, ok := st.inventory[rec.ProductID]
		if !ok || stored.Version != rec.Version {
			return apperror.NewConcurrentModification("inventory", rec.ProductID.String())
		}
		rec.Version++
		st.inventory[rec.ProductID] = *rec
		return nil
	})
}

func (r *InventoryRepo) Delete(ctx context.Context, productID id.ID, version int) error {
	return r.s.view(ctx, func(st *state) error {
		stored, ok := st.inventory[productID]
		if !ok || stored.Version != version {
			return apperror.NewConcurrentModification("inventory", productID.String())
		}
		delete(st.inventory, productID)
		return nil
	})
}

// List filters by the product's category and by UpdatedAt, like the Postgres repository.
func (r *InventoryRepo) List(ctx context.Context, f domain.ListFilter) (domain.ListResult[*inventory.Record], error) {
	var items []*inventory.Record
	err := r.s.view(ctx, func(st *state) error {
		for _, rec := range st.inventory {
			if f.CategoryID != nil && st.products[rec.ProductID].CategoryID != *f.CategoryID {
				continue
			}
			if f.InRange(rec.UpdatedAt) {
				items = append(items, &rec)
			}
		}
		return nil
	})
	sortByCreated(items, f.OrderBy,
		func(rec *inventory.Record) time.Time { return rec.UpdatedAt },
		func(rec *inventory.Record) id.ID { return rec.ProductID })
	return page(items, f), err
}

var _ inventory.Repository = (*InventoryRepo)(nil)
