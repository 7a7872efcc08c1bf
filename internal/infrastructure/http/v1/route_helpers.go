package v1

import (
	"github.com/gin-gonic/gin"
)

// CatalogRouteHandler defines the interface for catalog handlers.
type CatalogRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Delete(c *gin.Context)
}

// LedgerRouteHandler defines the interface for purchase and sale handlers.
type LedgerRouteHandler interface {
	Create(c *gin.Context)
	List(c *gin.Context)
	Count(c *gin.Context)
	Get(c *gin.Context)
	Edit(c *gin.Context)
	Pay(c *gin.Context)
	Refund(c *gin.Context)
	Delete(c *gin.Context)
}

// RegisterCatalogRoutes registers the standard routes of a catalog.
func RegisterCatalogRoutes(group *gin.RouterGroup, handler CatalogRouteHandler) {
	group.GET("", handler.List)
	group.POST("", handler.Create)
	group.GET("/:id", handler.Get)
	group.DELETE("/:id", handler.Delete)
}

// RegisterLedgerRoutes registers the routes of a ledger. DELETE accepts a
// comma separated list of ids.
func RegisterLedgerRoutes(group *gin.RouterGroup, handler LedgerRouteHandler) {
	group.POST("", handler.Create)
	group.GET("", handler.List)
	group.GET("/count", handler.Count)
	group.GET("/:id", handler.Get)
	group.PUT("/:id", handler.Edit)
	group.POST("/:id/pay", handler.Pay)
	group.POST("/:id/refund", handler.Refund)
	group.DELETE("/:id", handler.Delete)
}
