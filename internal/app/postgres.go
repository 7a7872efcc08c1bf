package app

import (
	"fmt"

	"khaata/internal/infrastructure/numerator"
	"khaata/internal/infrastructure/storage/postgres"
	"khaata/internal/infrastructure/storage/postgres/catalog_repo"
	"khaata/internal/infrastructure/storage/postgres/document_repo"
	"khaata/internal/infrastructure/storage/postgres/inventory_repo"
)

// PostgresStorage builds Storage on a connection pool. Run postgres.Migrate first.
func PostgresStorage(pool *postgres.Pool) (Storage, error) {
	txm := postgres.NewTxManager(pool)

	auditLog, err := postgres.NewAuditLog(txm)
	if err != nil {
		return Storage{}, fmt.Errorf("audit log: %w", err)
	}

	return Storage{
		TxManager:      txm,
		Categories:     catalog_repo.NewCategoryRepo(txm),
		Units:          catalog_repo.NewUnitRepo(txm),
		Products:       catalog_repo.NewProductRepo(txm),
		Counterparties: catalog_repo.NewCounterpartyRepo(txm),
		Inventory:      inventory_repo.NewStockRepo(txm),
		Purchases:      document_repo.NewPurchaseRepo(txm),
		Sales:          document_repo.NewSaleRepo(txm),
		Numerator:      numerator.New(pool),
		Audit:          auditLog,
	}, nil
}
