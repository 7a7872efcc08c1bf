// Package apptest builds fully wired services on the in-memory store for tests.
package apptest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"khaata/internal/app"
	"khaata/internal/core/id"
	"khaata/internal/domain/catalogs/category"
	"khaata/internal/domain/catalogs/counterparty"
	"khaata/internal/domain/catalogs/product"
	"khaata/internal/domain/catalogs/unit"
	"khaata/internal/domain/inventory"
	"khaata/internal/infrastructure/storage/memory"
)

// World is a set of services over one in-memory store.
type World struct {
	*app.Services
	Store *memory.Store
	Ctx   context.Context

	t        *testing.T
	category *category.Category
}

// New creates an empty world with one category ("Tiles").
func New(t *testing.T, opts ...inventory.Option) *World {
	t.Helper()

	store := memory.NewStore()
	w := &World{
		Services: app.NewServices(app.MemoryStorage(store), opts...),
		Store:    store,
		Ctx:      context.Background(),
		t:        t,
	}

	w.category = category.NewCategory("Tiles")
	require.NoError(t, w.Categories.Create(w.Ctx, w.category))
	return w
}

// CategoryID returns the default category.
func (w *World) CategoryID() id.ID {
	return w.category.ID
}

// Unit creates a unit of value base units in the default category.
func (w *World) Unit(title string, value int64) *unit.Unit {
	w.t.Helper()
	u := unit.NewUnit(title, value, w.category.ID)
	require.NoError(w.t, w.Units.Create(w.Ctx, u))
	return u
}

// Product creates a product using u.
func (w *World) Product(modelNumber string, u *unit.Unit, mode product.Mode) *product.Product {
	w.t.Helper()
	p := product.NewProduct(modelNumber, w.category.ID, u.ID, mode)
	require.NoError(w.t, w.Products.Create(w.Ctx, p))
	return p
}

// Supplier creates a supplier.
func (w *World) Supplier(name string) *counterparty.Counterparty {
	w.t.Helper()
	s := counterparty.NewSupplier(name, "0300-1234567", name+" Traders")
	require.NoError(w.t, w.Counterparties.Suppliers.Create(w.Ctx, s))
	return s
}

// Customer creates a customer.
func (w *World) Customer(name string) *counterparty.Counterparty {
	w.t.Helper()
	c := counterparty.NewCustomer(name, "0300-7654321", "Main Bazaar")
	require.NoError(w.t, w.Counterparties.Customers.Create(w.Ctx, c))
	return c
}

// Stock returns the raw stock of a product.
func (w *World) Stock(productID id.ID) inventory.Amount {
	w.t.Helper()
	a, err := w.Inventory.Get(w.Ctx, productID)
	require.NoError(w.t, err)
	return a
}
