// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"khaata/internal/app"
	"khaata/internal/infrastructure/http/v1/dto"
	"khaata/internal/infrastructure/http/v1/handlers"
	"khaata/internal/infrastructure/http/v1/middleware"
	"khaata/pkg/logger"
)

// AnonymousUserID is the caller recorded when authentication is disabled.
const AnonymousUserID = "anonymous"

// RouterConfig holds router dependencies.
type RouterConfig struct {
	Services *app.Services

	// Health serves /health; nil registers a storage-less handler.
	Health *handlers.HealthHandler

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// AuthDisabled skips token validation. Local runs only.
	AuthDisabled bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	dto.RegisterValidators()

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	if cfg.Logger != nil {
		router.Use(middleware.Logger(cfg.Logger))
	}
	router.Use(middleware.ErrorHandler())

	healthHandler := cfg.Health
	if healthHandler == nil {
		healthHandler = handlers.NewHealthHandler("unknown", nil, nil)
	}
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
	}

	v1 := router.Group("/api/v1")
	if cfg.AuthDisabled {
		v1.Use(middleware.Anonymous(AnonymousUserID))
	} else {
		v1.Use(middleware.Auth(cfg.JWTValidator))
	}

	registerCatalogRoutes(v1, cfg.Services)
	registerInventoryRoutes(v1, cfg.Services)
	registerLedgerRoutes(v1, cfg.Services)

	return router
}

func registerCatalogRoutes(rg *gin.RouterGroup, svc *app.Services) {
	catalogs := rg.Group("/catalog")
	base := handlers.NewBaseHandler()

	RegisterCatalogRoutes(catalogs.Group("/categories"), handlers.NewCategoryHandler(base, svc.Categories))
	RegisterCatalogRoutes(catalogs.Group("/units"), handlers.NewUnitHandler(base, svc.Units))
	RegisterCatalogRoutes(catalogs.Group("/products"), handlers.NewProductHandler(base, svc.Products))
	RegisterCatalogRoutes(catalogs.Group("/suppliers"), handlers.NewSupplierHandler(base, svc.Counterparties))
	RegisterCatalogRoutes(catalogs.Group("/customers"), handlers.NewCustomerHandler(base, svc.Counterparties))
}

func registerInventoryRoutes(rg *gin.RouterGroup, svc *app.Services) {
	handler := handlers.NewInventoryHandler(handlers.NewBaseHandler(), svc.Inventory)

	inv := rg.Group("/inventory")
	inv.GET("", handler.List)
	inv.POST("/adjust", handler.Adjust)
	inv.GET("/:productId", handler.Get)
}

func registerLedgerRoutes(rg *gin.RouterGroup, svc *app.Services) {
	base := handlers.NewBaseHandler()

	RegisterLedgerRoutes(rg.Group("/purchases"), handlers.NewPurchaseHandler(base, svc.Purchases))
	RegisterLedgerRoutes(rg.Group("/sales"), handlers.NewSaleHandler(base, svc.Sales))
}
