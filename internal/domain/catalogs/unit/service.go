package unit

import (
	"context"

	"khaata/internal/core/apperror"
	"khaata/internal/core/id"
	"khaata/internal/core/tx"
	"khaata/internal/domain"
)

// Repository defines unit persistence.
type Repository interface {
	domain.CatalogRepository[*Unit]
}

// Service provides business logic for units.
type Service struct {
	*domain.CatalogService[*Unit]
}

// CategoryExists reports whether a category id refers to a stored category.
type CategoryExists func(ctx context.Context, categoryID id.ID) error

// NewService creates a unit service. categoryExists must return a not-found
// AppError for unknown categories.
func NewService(repo Repository, txManager tx.Manager, categoryExists CategoryExists) *Service {
	base := domain.NewCatalogService(domain.CatalogServiceConfig[*Unit]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "unit",
	})

	base.Hooks().OnBeforeCreate(func(ctx context.Context, u *Unit) error {
		if err := categoryExists(ctx, u.CategoryID); err != nil {
			if apperror.IsNotFound(err) {
				return apperror.NewValidation("category does not exist").
					WithDetail("field", "categoryId").
					WithDetail("id", u.CategoryID.String())
			}
			return err
		}
		return nil
	})

	return &Service{CatalogService: base}
}
