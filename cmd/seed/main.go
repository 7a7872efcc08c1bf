// Package main provides a CLI tool for seeding the database with the default
// catalogs: tile and sanitary categories with their counting units. Set
// SEED_DEMO_DATA=true to add a demo supplier and customer as well.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"khaata/internal/app"
	appctx "khaata/internal/core/context"
	"khaata/internal/core/id"
	"khaata/internal/domain"
	"khaata/internal/domain/catalogs/category"
	"khaata/internal/domain/catalogs/counterparty"
	"khaata/internal/domain/catalogs/unit"
	"khaata/internal/infrastructure/storage/postgres"
	"khaata/pkg/logger"
)

type unitSeed struct {
	title string
	value int64
}

var defaultCatalog = map[string][]unitSeed{
	"Tiles":    {{"Piece", 1}, {"Box", 4}, {"Dozen", 12}},
	"Sanitary": {{"Piece", 1}, {"Set", 2}},
}

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := appctx.WithUser(context.Background(), &appctx.UserContext{UserID: "seed", Name: "seed"})
	ctx = logger.WithLogger(ctx, log)

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, postgres.NewTxManager(pool)); err != nil {
		log.Fatalw("failed to apply migrations", "error", err)
	}

	storage, err := app.PostgresStorage(pool)
	if err != nil {
		log.Fatalw("failed to build storage", "error", err)
	}
	services := app.NewServices(storage)

	for title, units := range defaultCatalog {
		categoryID, err := seedCategory(ctx, services, title)
		if err != nil {
			log.Fatalw("failed to seed category", "title", title, "error", err)
		}
		for _, u := range units {
			if err := seedUnit(ctx, services, categoryID, u); err != nil {
				log.Fatalw("failed to seed unit", "category", title, "unit", u.title, "error", err)
			}
		}
		log.Infow("category seeded", "title", title, "units", len(units))
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoParties(ctx, services); err != nil {
			log.Fatalw("failed to seed demo data", "error", err)
		}
		log.Info("demo supplier and customer seeded")
	}

	log.Info("seeding complete")
}

func seedCategory(ctx context.Context, services *app.Services, title string) (id.ID, error) {
	f := domain.DefaultListFilter()
	f.Search = title
	existing, err := services.Categories.List(ctx, f)
	if err != nil {
		return id.ID{}, err
	}
	for _, c := range existing.Items {
		if strings.EqualFold(c.Title, title) {
			return c.ID, nil
		}
	}

	c := category.NewCategory(title)
	if err := services.Categories.Create(ctx, c); err != nil {
		return id.ID{}, err
	}
	return c.ID, nil
}

func seedUnit(ctx context.Context, services *app.Services, categoryID id.ID, seed unitSeed) error {
	f := domain.DefaultListFilter()
	f.Search = seed.title
	f.CategoryID = &categoryID
	existing, err := services.Units.List(ctx, f)
	if err != nil {
		return err
	}
	for _, u := range existing.Items {
		if strings.EqualFold(u.Title, seed.title) {
			return nil
		}
	}
	return services.Units.Create(ctx, unit.NewUnit(seed.title, seed.value, categoryID))
}

func seedDemoParties(ctx context.Context, services *app.Services) error {
	suppliers, err := services.Counterparties.Suppliers.List(ctx, domain.DefaultListFilter())
	if err != nil {
		return err
	}
	if suppliers.TotalCount == 0 {
		if err := services.Counterparties.Suppliers.Create(ctx, counterparty.NewSupplier("Akbar", "0300-1234567", "Akbar Traders")); err != nil {
			return err
		}
	}

	customers, err := services.Counterparties.Customers.List(ctx, domain.DefaultListFilter())
	if err != nil {
		return err
	}
	if customers.TotalCount == 0 {
		return services.Counterparties.Customers.Create(ctx, counterparty.NewCustomer("Bilal", "0300-7654321", "Main Bazaar"))
	}
	return nil
}
