package handlers

import (
	"github.com/gin-gonic/gin"

	"khaata/internal/domain/inventory"
	"khaata/internal/infrastructure/http/v1/dto"
)

// InventoryHandler serves stock reads and manual adjustments.
type InventoryHandler struct {
	*BaseHandler
	ledger *inventory.Ledger
}

// NewInventoryHandler creates the inventory handler.
func NewInventoryHandler(base *BaseHandler, ledger *inventory.Ledger) *InventoryHandler {
	return &InventoryHandler{BaseHandler: base, ledger: ledger}
}

// List handles GET /inventory.
func (h *InventoryHandler) List(c *gin.Context) {
	var q dto.ListQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter, err := q.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.ledger.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(result, func(v *inventory.View) *inventory.View { return v }))
}

// Get handles GET /inventory/:productId.
func (h *InventoryHandler) Get(c *gin.Context) {
	productID, ok := h.ParseID(c, "productId")
	if !ok {
		return
	}

	view, err := h.ledger.Snapshot(c.Request.Context(), productID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, view)
}

// Adjust handles POST /inventory/adjust. Every item is applied on its own;
// the response reports each outcome.
func (h *InventoryHandler) Adjust(c *gin.Context) {
	var req dto.AdjustRequest
	if !h.BindJSON(c, &req) {
		return
	}

	results := h.ledger.BatchApply(c.Request.Context(), req.ToAdjustments())
	h.OK(c, dto.NewAdjustResponse(results))
}
