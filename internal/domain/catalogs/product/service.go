package product

import (
	"context"

	"khaata/internal/core/apperror"
	"khaata/internal/core/id"
	"khaata/internal/core/tx"
	"khaata/internal/domain"
	"khaata/internal/domain/catalogs/category"
	"khaata/internal/domain/catalogs/unit"
)

// Repository defines product persistence.
type Repository interface {
	domain.CatalogRepository[*Product]

	// GetByModelNumber returns a NotFound AppError when absent.
	GetByModelNumber(ctx context.Context, modelNumber string) (*Product, error)
}

// UnitLookup resolves units.
type UnitLookup interface {
	GetByID(ctx context.Context, unitID id.ID) (*unit.Unit, error)
}

// CategoryLookup resolves categories.
type CategoryLookup interface {
	GetByID(ctx context.Context, categoryID id.ID) (*category.Category, error)
}

// Service provides business logic for products.
type Service struct {
	*domain.CatalogService[*Product]
	repo       Repository
	units      UnitLookup
	categories CategoryLookup
}

// NewService creates a product service.
func NewService(repo Repository, txManager tx.Manager, units UnitLookup, categories CategoryLookup) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Product]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "product",
		NotFound: func(v id.ID) error {
			return apperror.NewProductNotFound(v.String())
		},
	})

	svc := &Service{
		CatalogService: base,
		repo:           repo,
		units:          units,
		categories:     categories,
	}
	base.Hooks().OnBeforeCreate(svc.prepareForCreate)

	return svc
}

// prepareForCreate checks references and model number uniqueness.
func (s *Service) prepareForCreate(ctx context.Context, p *Product) error {
	if _, err := s.categories.GetByID(ctx, p.CategoryID); err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewValidation("category does not exist").
				WithDetail("field", "categoryId")
		}
		return err
	}

	u, err := s.units.GetByID(ctx, p.UnitID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewValidation("unit does not exist").
				WithDetail("field", "unitId")
		}
		return err
	}
	if u.CategoryID != p.CategoryID {
		return apperror.NewUnitIncompatible(u.ID.String(), p.CategoryID.String())
	}

	existing, err := s.repo.GetByModelNumber(ctx, p.ModelNumber)
	switch {
	case err == nil && existing.ID != p.ID:
		return apperror.NewDuplicate("product", "modelNumber", p.ModelNumber)
	case err != nil && !apperror.IsNotFound(err):
		return err
	}

	return nil
}

// Snapshot loads a product with its unit and category as an immutable copy.
// A missing product yields ProductNotFound.
func (s *Service) Snapshot(ctx context.Context, productID id.ID) (Snapshot, error) {
	p, err := s.GetByID(ctx, productID)
	if err != nil {
		return Snapshot{}, err
	}

	u, err := s.units.GetByID(ctx, p.UnitID)
	if err != nil {
		return Snapshot{}, apperror.NewInternal(err).WithDetail("unit_id", p.UnitID.String())
	}
	if u.CategoryID != p.CategoryID {
		return Snapshot{}, apperror.NewUnitIncompatible(u.ID.String(), p.CategoryID.String())
	}

	c, err := s.categories.GetByID(ctx, p.CategoryID)
	if err != nil {
		return Snapshot{}, apperror.NewInternal(err).WithDetail("category_id", p.CategoryID.String())
	}

	return Snapshot{
		ID:          p.ID,
		ModelNumber: p.ModelNumber,
		Mode:        p.Mode,
		Category:    CategoryRef{ID: c.ID, Title: c.Title},
		Unit:        UnitRef{ID: u.ID, Title: u.Title, Value: u.Value},
	}, nil
}
