// Package main is the entry point for the khaata API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"khaata/internal/app"
	"khaata/internal/domain/auth"
	"khaata/internal/domain/inventory"
	"khaata/internal/infrastructure/cache"
	v1 "khaata/internal/infrastructure/http/v1"
	"khaata/internal/infrastructure/http/v1/handlers"
	"khaata/internal/infrastructure/storage/memory"
	"khaata/internal/infrastructure/storage/postgres"
	"khaata/pkg/logger"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Printf("invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.AppEnv == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx := logger.WithLogger(context.Background(), log)
	log.Infow("starting khaata server", "storage", cfg.Storage)

	// --- Storage ---
	var (
		storage app.Storage
		pool    *postgres.Pool
	)
	switch cfg.Storage {
	case "postgres":
		poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
		poolCfg.MaxConns = int32(cfg.DBMaxConns)
		pool, err = postgres.NewPool(ctx, poolCfg)
		if err != nil {
			log.Fatalw("failed to connect to database", "error", err)
		}
		defer pool.Close()

		if err := postgres.Migrate(ctx, postgres.NewTxManager(pool)); err != nil {
			log.Fatalw("failed to apply migrations", "error", err)
		}
		storage, err = app.PostgresStorage(pool)
		if err != nil {
			log.Fatalw("failed to build storage", "error", err)
		}
		log.Info("database connection established")
	default:
		storage = app.MemoryStorage(memory.NewStore())
		log.Warn("using in-memory storage, data is lost on restart")
	}

	// --- Inventory cache ---
	inventoryOpts := []inventory.Option{inventory.WithMaxRetries(cfg.InventoryMaxRetries)}
	var cachePinger handlers.Pinger
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer func() { _ = client.Close() }()

		if err := client.Ping(ctx).Err(); err != nil {
			log.Warnw("redis unavailable, inventory cache disabled", "addr", cfg.RedisAddr, "error", err)
		} else {
			inventoryOpts = append(inventoryOpts, inventory.WithCache(cache.NewInventoryCache(client, cfg.CacheTTL)))
			cachePinger = handlers.PingFunc(func(ctx context.Context) error { return client.Ping(ctx).Err() })
			log.Infow("inventory cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.CacheTTL)
		}
	}

	services := app.NewServices(storage, inventoryOpts...)

	// --- Router ---
	routerCfg := v1.RouterConfig{
		Services:     services,
		Health:       handlers.NewHealthHandler(cfg.Storage, pool, cachePinger),
		Logger:       log,
		AuthDisabled: cfg.AuthDisabled,
	}
	if !cfg.AuthDisabled {
		jwtCfg := auth.DefaultJWTConfig(cfg.JWTSecret)
		jwtCfg.Issuer = cfg.JWTIssuer
		routerCfg.JWTValidator = auth.NewJWTService(jwtCfg)
	} else {
		log.Warn("authentication disabled")
	}
	router := v1.NewRouter(routerCfg)

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
