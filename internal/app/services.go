// Package app wires repositories into domain services.
package app

import (
	"context"

	"khaata/internal/core/id"
	"khaata/internal/core/numerator"
	"khaata/internal/core/tx"
	"khaata/internal/domain/audit"
	"khaata/internal/domain/catalogs/category"
	"khaata/internal/domain/catalogs/counterparty"
	"khaata/internal/domain/catalogs/product"
	"khaata/internal/domain/catalogs/unit"
	"khaata/internal/domain/documents/purchase"
	"khaata/internal/domain/documents/sale"
	"khaata/internal/domain/inventory"
	"khaata/internal/infrastructure/storage/memory"
)

// Storage is the set of repositories a backend provides.
type Storage struct {
	TxManager      tx.Manager
	Categories     category.Repository
	Units          unit.Repository
	Products       product.Repository
	Counterparties counterparty.Repository
	Inventory      inventory.Repository
	Purchases      purchase.Repository
	Sales          sale.Repository
	Numerator      numerator.Generator
	Audit          audit.Recorder
}

// MemoryStorage exposes an in-memory store as Storage.
func MemoryStorage(s *memory.Store) Storage {
	return Storage{
		TxManager:      s,
		Categories:     s.Categories(),
		Units:          s.Units(),
		Products:       s.Products(),
		Counterparties: s.Counterparties(),
		Inventory:      s.Inventory(),
		Purchases:      s.Purchases(),
		Sales:          s.Sales(),
		Numerator:      s.Numerator(),
		Audit:          s.Audit(),
	}
}

// Services holds every domain service.
type Services struct {
	Categories     *category.Service
	Units          *unit.Service
	Products       *product.Service
	Counterparties *counterparty.Service
	Inventory      *inventory.Ledger
	Purchases      *purchase.Service
	Sales          *sale.Service
}

// NewServices builds the services on top of st.
func NewServices(st Storage, inventoryOpts ...inventory.Option) *Services {
	categories := category.NewService(st.Categories, st.TxManager)
	units := unit.NewService(st.Units, st.TxManager, func(ctx context.Context, categoryID id.ID) error {
		_, err := st.Categories.GetByID(ctx, categoryID)
		return err
	})
	products := product.NewService(st.Products, st.TxManager, st.Units, st.Categories)
	counterparties := counterparty.NewService(st.Counterparties, st.TxManager)
	ledger := inventory.NewLedger(st.Inventory, products, st.TxManager, inventoryOpts...)

	return &Services{
		Categories:     categories,
		Units:          units,
		Products:       products,
		Counterparties: counterparties,
		Inventory:      ledger,
		Purchases: purchase.NewService(purchase.Deps{
			Repo:      st.Purchases,
			TxManager: st.TxManager,
			Stock:     ledger,
			Products:  products,
			Suppliers: counterparties,
			Numerator: st.Numerator,
			Audit:     st.Audit,
		}),
		Sales: sale.NewService(sale.Deps{
			Repo:      st.Sales,
			TxManager: st.TxManager,
			Stock:     ledger,
			Products:  products,
			Customers: counterparties,
			Numerator: st.Numerator,
			Audit:     st.Audit,
		}),
	}
}
