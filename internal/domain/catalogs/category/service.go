package category

import (
	"khaata/internal/core/tx"
	"khaata/internal/domain"
)

// Repository defines category persistence.
type Repository interface {
	domain.CatalogRepository[*Category]
}

// Service provides business logic for categories.
type Service struct {
	*domain.CatalogService[*Category]
}

// NewService creates a category service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{
		CatalogService: domain.NewCatalogService(domain.CatalogServiceConfig[*Category]{
			Repo:       repo,
			TxManager:  txManager,
			EntityName: "category",
		}),
	}
}
