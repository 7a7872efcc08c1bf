package domain

import (
	"context"
	"fmt"

	"khaata/internal/core/apperror"
	"khaata/internal/core/id"
	"khaata/internal/core/tx"
	"khaata/pkg/logger"
)

// CatalogService provides the create/get/delete/list lifecycle shared by all catalogs.
// Catalog-specific rules are attached through hooks.
type CatalogService[T Identifiable] struct {
	repo       CatalogRepository[T]
	txManager  tx.Manager
	hooks      *HookRegistry[T]
	entityName string
	notFound   func(id id.ID) error
}

// CatalogServiceConfig configures the catalog service.
type CatalogServiceConfig[T Identifiable] struct {
	Repo       CatalogRepository[T]
	TxManager  tx.Manager
	EntityName string
	// NotFound builds the error returned for a missing entity (optional).
	NotFound func(id id.ID) error
}

// NewCatalogService creates a new catalog service.
func NewCatalogService[T Identifiable](cfg CatalogServiceConfig[T]) *CatalogService[T] {
	notFound := cfg.NotFound
	if notFound == nil {
		name := cfg.EntityName
		notFound = func(v id.ID) error { return apperror.NewNotFound(name, v.String()) }
	}
	return &CatalogService[T]{
		repo:       cfg.Repo,
		txManager:  cfg.TxManager,
		hooks:      NewHookRegistry[T](),
		entityName: cfg.EntityName,
		notFound:   notFound,
	}
}

// Hooks returns the hook registry for external registration.
func (s *CatalogService[T]) Hooks() *HookRegistry[T] {
	return s.hooks
}

// Create validates and stores a new catalog entity.
func (s *CatalogService[T]) Create(ctx context.Context, entity T) error {
	if err := entity.Validate(ctx); err != nil {
		if apperror.IsAppError(err) {
			return err
		}
		return apperror.NewValidation(err.Error())
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.hooks.Run(ctx, BeforeCreate, entity); err != nil {
			return err
		}
		if err := s.repo.Create(ctx, entity); err != nil {
			return fmt.Errorf("create %s: %w", s.entityName, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.hooks.Run(ctx, AfterCreate, entity); err != nil {
		logger.Warn(ctx, "after-create hook failed", "entity", s.entityName, "error", err)
	}

	logger.Info(ctx, s.entityName+" created", "id", entity.GetID())
	return nil
}

// GetByID retrieves entity by ID.
func (s *CatalogService[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	entity, err := s.repo.GetByID(ctx, entityID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return entity, s.notFound(entityID)
		}
		return entity, err
	}
	return entity, nil
}

// Delete removes an entity.
func (s *CatalogService[T]) Delete(ctx context.Context, entityID id.ID) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		entity, err := s.GetByID(ctx, entityID)
		if err != nil {
			return err
		}
		if err := s.hooks.Run(ctx, BeforeDelete, entity); err != nil {
			return err
		}
		if err := s.repo.Delete(ctx, entityID); err != nil {
			return fmt.Errorf("delete %s: %w", s.entityName, err)
		}
		logger.Info(ctx, s.entityName+" deleted", "id", entityID)
		return nil
	})
}

// List retrieves entities with filtering.
func (s *CatalogService[T]) List(ctx context.Context, filter ListFilter) (ListResult[T], error) {
	filter.Normalize()
	return s.repo.List(ctx, filter)
}
