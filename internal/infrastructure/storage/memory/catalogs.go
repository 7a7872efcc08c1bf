package memory

import (
	"context"
	"strings"
	"time"

	"khaata/internal/core/apperror"
	"khaata/internal/core/id"
	"khaata/internal/domain"
	"khaata/internal/domain/catalogs/category"
	"khaata/internal/domain/catalogs/counterparty"
	"khaata/internal/domain/catalogs/product"
	"khaata/internal/domain/catalogs/unit"
)

// CategoryRepo implements category.Repository.
type CategoryRepo struct{ s *Store }

// Categories returns the category repository.
func (s *Store) Categories() *CategoryRepo { return &CategoryRepo{s} }

func (r *CategoryRepo) Create(ctx context.Context, c *category.Category) error {
	return r.s.view(ctx, func(st *state) error {
		if _, ok := st.categories[c.ID]; ok {
			return apperror.NewDuplicate("category", "id", c.ID.String())
		}
		for _, existing := range st.categories {
			if strings.EqualFold(existing.Title, c.Title) {
				return apperror.NewDuplicate("category", "title", c.Title)
			}
		}
		st.categories[c.ID] = *c
		return nil
	})
}

func (r *CategoryRepo) GetByID(ctx context.Context, categoryID id.ID) (*category.Category, error) {
	var out *category.Category
	err := r.s.view(ctx, func(st *state) error {
		c, ok := st.categories[categoryID]
		if !ok {
			return apperror.NewNotFound("category", categoryID.String())
		}
		out = &c
		return nil
	})
	return out, err
}

func (r *CategoryRepo) Delete(ctx context.Context, categoryID id.ID) error {
	return r.s.view(ctx, func(st *state) error {
		if _, ok := st.categories[categoryID]; !ok {
			return apperror.NewNotFound("category", categoryID.String())
		}
		for _, u := range st.units {
			if u.CategoryID == categoryID {
				return apperror.NewConflict("category is used by units")
			}
		}
		delete(st.categories, categoryID)
		return nil
	})
}

func (r *CategoryRepo) List(ctx context.Context, f domain.ListFilter) (domain.ListResult[*category.Category], error) {
	var items []*category.Category
	err := r.s.view(ctx, func(st *state) error {
		for _, c := range st.categories {
			if matchesSearch(c.Title, f.Search) && f.InRange(c.CreatedAt) {
				items = append(items, &c)
			}
		}
		return nil
	})
	sortByCreated(items, f.OrderBy,
		func(c *category.Category) time.Time { return c.CreatedAt },
		func(c *category.Category) id.ID { return c.ID })
	return page(items, f), err
}

// UnitRepo implements unit.Repository.
type UnitRepo struct{ s *Store }

// Units returns the unit repository.
func (s *Store) Units() *UnitRepo { return &UnitRepo{s} }

func (r *UnitRepo) Create(ctx context.Context, u *unit.Unit) error {
	return r.s.view(ctx, func(st *state) error {
		if _, ok := st.units[u.ID]; ok {
			return apperror.NewDuplicate("unit", "id", u.ID.String())
		}
		st.units[u.ID] = *u
		return nil
	})
}

func (r *UnitRepo) GetByID(ctx context.Context, unitID id.ID) (*unit.Unit, error) {
	var out *unit.Unit
	err := r.s.view(ctx, func(st *state) error {
		u, ok := st.units[unitID]
		if !ok {
			return apperror.NewNotFound("unit", unitID.String())
		}
		out = &u
		return nil
	})
	return out, err
}

func (r *UnitRepo) Delete(ctx context.Context, unitID id.ID) error {
	return r.s.view(ctx, func(st *state) error {
		if _, ok := st.units[unitID]; !ok {
			return apperror.NewNotFound("unit", unitID.String())
		}
		for _, p := range st.products {
			if p.UnitID == unitID {
				return apperror.NewConflict("unit is used by products")
			}
		}
		delete(st.units, unitID)
		return nil
	})
}

func (r *UnitRepo) List(ctx context.Context, f domain.ListFilter) (domain.ListResult[*unit.Unit], error) {
	var items []*unit.Unit
	err := r.s.view(ctx, func(st *state) error {
		for _, u := range st.units {
			if f.CategoryID != nil && u.CategoryID != *f.CategoryID {
				continue
			}
			if matchesSearch(u.Title, f.Search) && f.InRange(u.CreatedAt) {
				items = append(items, &u)
			}
		}
		return nil
	})
	sortByCreated(items, f.OrderBy,
		func(u *unit.Unit) time.Time { return u.CreatedAt },
		func(u *unit.Unit) id.ID { return u.ID })
	return page(items, f), err
}

// ProductRepo implements product.Repository.
type ProductRepo struct{ s *Store }

// Products returns the product repository.
func (s *Store) Products() *ProductRepo { return &ProductRepo{s} }

func (r *ProductRepo) Create(ctx context.Context, p *product.Product) error {
	return r.s.view(ctx, func(st *state) error {
		if _, ok := st.products[p.ID]; ok {
			return apperror.NewDuplicate("product", "id", p.ID.String())
		}
		for _, existing := range st.products {
			if strings.EqualFold(existing.ModelNumber, p.ModelNumber) {
				return apperror.NewDuplicate("product", "modelNumber", p.ModelNumber)
			}
		}
		st.products[p.ID] = *p
		return nil
	})
}

func (r *ProductRepo) GetByID(ctx context.Context, productID id.ID) (*product.Product, error) {
	var out *product.Product
	err := r.s.view(ctx, func(st *state) error {
		p, ok := st.products[productID]
		if !ok {
			return apperror.NewNotFound("product", productID.String())
		}
		out = &p
		return nil
	})
	return out, err
}

func (r *ProductRepo) GetByModelNumber(ctx context.Context, modelNumber string) (*product.Product, error) {
	var out *product.Product
	err := r.s.view(ctx, func(st *state) error {
		for _, p := range st.products {
			if strings.EqualFold(p.ModelNumber, modelNumber) {
				out = &p
				return nil
			}
		}
		return apperror.NewNotFound("product", modelNumber)
	})
	return out, err
}

func (r *ProductRepo) Delete(ctx context.Context, productID id.ID) error {
	return r.s.view(ctx, func(st *state) error {
		if _, ok := st.products[productID]; !ok {
			return apperror.NewNotFound("product", productID.String())
		}
		if _, ok := st.inventory[productID]; ok {
			return apperror.NewConflict("product still holds stock")
		}
		delete(st.products, productID)
		return nil
	})
}

func (r *ProductRepo) List(ctx context.Context, f domain.ListFilter) (domain.ListResult[*product.Product], error) {
	var items []*product.Product
	err := r.s.view(ctx, func(st *state) error {
		for _, p := range st.products {
			if f.CategoryID != nil && p.CategoryID != *f.CategoryID {
				continue
			}
			if matchesSearch(p.ModelNumber, f.Search) && f.InRange(p.CreatedAt) {
				items = append(items, &p)
			}
		}
		return nil
	})
	sortByCreated(items, f.OrderBy,
		func(p *product.Product) time.Time { return p.CreatedAt },
		func(p *product.Product) id.ID { return p.ID })
	return page(items, f), err
}

// CounterpartyRepo implements counterparty.Repository.
type CounterpartyRepo struct{ s *Store }

// Counterparties returns the supplier and customer repository.
func (s *Store) Counterparties() *CounterpartyRepo { return &CounterpartyRepo{s} }

func (r *CounterpartyRepo) Create(ctx context.Context, c *counterparty.Counterparty) error {
	return r.s.view(ctx, func(st *state) error {
		if _, ok := st.counterparties[c.ID]; ok {
			return apperror.NewDuplicate(string(c.Kind), "id", c.ID.String())
		}
		st.counterparties[c.ID] = *c
		return nil
	})
}

func (r *CounterpartyRepo) GetByID(ctx context.Context, counterpartyID id.ID) (*counterparty.Counterparty, error) {
	var out *counterparty.Counterparty
	err := r.s.view(ctx, func(st *state) error {
		c, ok := st.counterparties[counterpartyID]
		if !ok {
			return apperror.NewNotFound("counterparty", counterpartyID.String())
		}
		out = &c
		return nil
	})
	return out, err
}

func (r *CounterpartyRepo) Delete(ctx context.Context, counterpartyID id.ID) error {
	return r.s.view(ctx, func(st *state) error {
		if _, ok := st.counterparties[counterpartyID]; !ok {
			return apperror.NewNotFound("counterparty", counterpartyID.String())
		}
		delete(st.counterparties, counterpartyID)
		return nil
	})
}

func (r *CounterpartyRepo) List(ctx context.Context, kind counterparty.Kind, f domain.ListFilter) (domain.ListResult[*counterparty.Counterparty], error) {
	var items []*counterparty.Counterparty
	err := r.s.view(ctx, func(st *state) error {
		for _, c := range st.counterparties {
			if c.Kind != kind {
				continue
			}
			if (matchesSearch(c.Name, f.Search) || matchesSearch(c.Company, f.Search)) && f.InRange(c.CreatedAt) {
				items = append(items, &c)
			}
		}
		return nil
	})
	sortByCreated(items, f.OrderBy,
		func(c *counterparty.Counterparty) time.Time { return c.CreatedAt },
		func(c *counterparty.Counterparty) id.ID { return c.ID })
	return page(items, f), err
}

var (
	_ category.Repository     = (*CategoryRepo)(nil)
	_ unit.Repository         = (*UnitRepo)(nil)
	_ product.Repository      = (*ProductRepo)(nil)
	_ counterparty.Repository = (*CounterpartyRepo)(nil)
)
