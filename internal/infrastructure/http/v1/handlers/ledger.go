package handlers

import (
	"github.com/gin-gonic/gin"

	"khaata/internal/core/apperror"
	"khaata/internal/core/id"
	"khaata/internal/domain/documents/khaata"
	"khaata/internal/infrastructure/http/v1/dto"
)

// LedgerHandler serves one ledger (purchases or sales).
type LedgerHandler[D khaata.Document, CreateDTO any, ResponseDTO any] struct {
	*BaseHandler
	service *khaata.Service[D]

	mapCreateDTO func(req CreateDTO) khaata.CreateInput
	mapToDTO     func(doc D) ResponseDTO
}

// LedgerHandlerConfig configures the ledger handler.
type LedgerHandlerConfig[D khaata.Document, CreateDTO any, ResponseDTO any] struct {
	Service      *khaata.Service[D]
	MapCreateDTO func(req CreateDTO) khaata.CreateInput
	MapToDTO     func(doc D) ResponseDTO
}

// NewLedgerHandler creates a new ledger handler.
func NewLedgerHandler[D khaata.Document, CreateDTO any, ResponseDTO any](
	base *BaseHandler,
	cfg LedgerHandlerConfig[D, CreateDTO, ResponseDTO],
) *LedgerHandler[D, CreateDTO, ResponseDTO] {
	return &LedgerHandler[D, CreateDTO, ResponseDTO]{
		BaseHandler:  base,
		service:      cfg.Service,
		mapCreateDTO: cfg.MapCreateDTO,
		mapToDTO:     cfg.MapToDTO,
	}
}

// Create handles POST /{ledger}.
func (h *LedgerHandler[D, CreateDTO, ResponseDTO]) Create(c *gin.Context) {
	var req CreateDTO
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.service.Create(c.Request.Context(), h.mapCreateDTO(req))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, h.mapToDTO(doc))
}

// List handles GET /{ledger}.
func (h *LedgerHandler[D, CreateDTO, ResponseDTO]) List(c *gin.Context) {
	var q dto.LedgerQuery
	if !h.BindQuery(c, &q) {
		return
	}
	filter, err := q.ToFilter()
	if err != nil {
		h.Error(c, err)
		return
	}

	result, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.NewListResponse(result, h.mapToDTO))
}

// Count handles GET /{ledger}/count.
func (h *LedgerHandler[D, CreateDTO, ResponseDTO]) Count(c *gin.Context) {
	n, err := h.service.Count(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.CountResponse{Count: n})
}

// Get handles GET /{ledger}/:id.
func (h *LedgerHandler[D, CreateDTO, ResponseDTO]) Get(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	doc, err := h.service.GetByID(c.Request.Context(), docID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, h.mapToDTO(doc))
}

// Edit handles PUT /{ledger}/:id.
func (h *LedgerHandler[D, CreateDTO, ResponseDTO]) Edit(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.EditRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.service.Edit(c.Request.Context(), docID, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, h.mapToDTO(doc))
}

// Pay handles POST /{ledger}/:id/pay.
func (h *LedgerHandler[D, CreateDTO, ResponseDTO]) Pay(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.PayRequest
	if !h.BindJSON(c, &req) {
		return
	}

	doc, err := h.service.Pay(c.Request.Context(), docID, req.Amount)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, h.mapToDTO(doc))
}

// Refund handles POST /{ledger}/:id/refund.
func (h *LedgerHandler[D, CreateDTO, ResponseDTO]) Refund(c *gin.Context) {
	docID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}
	var req dto.RefundRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.service.Refund(c.Request.Context(), docID, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.RefundResponse{
		Record:     h.mapToDTO(result.Record),
		Settlement: result.Settlement,
	})
}

// Delete handles DELETE /{ledger}/:id where id may be a comma separated list.
func (h *LedgerHandler[D, CreateDTO, ResponseDTO]) Delete(c *gin.Context) {
	ids, err := id.ParseList(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id list").WithDetail("error", err.Error()))
		return
	}

	if err := h.service.Delete(c.Request.Context(), ids); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}
