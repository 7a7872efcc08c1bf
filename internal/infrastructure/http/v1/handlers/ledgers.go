package handlers

import (
	"khaata/internal/domain/documents/purchase"
	"khaata/internal/domain/documents/sale"
	"khaata/internal/infrastructure/http/v1/dto"
)

type (
	PurchaseHandler = LedgerHandler[*purchase.Purchase, dto.CreatePurchaseRequest, dto.PurchaseResponse]
	SaleHandler     = LedgerHandler[*sale.Sale, dto.CreateSaleRequest, dto.SaleResponse]
)

// NewPurchaseHandler creates the procurement ledger handler.
func NewPurchaseHandler(base *BaseHandler, service *purchase.Service) *PurchaseHandler {
	return NewLedgerHandler(base, LedgerHandlerConfig[*purchase.Purchase, dto.CreatePurchaseRequest, dto.PurchaseResponse]{
		Service:      service.Service,
		MapCreateDTO: dto.CreatePurchaseRequest.ToInput,
		MapToDTO:     dto.FromPurchase,
	})
}

// NewSaleHandler creates the distribution ledger handler.
func NewSaleHandler(base *BaseHandler, service *sale.Service) *SaleHandler {
	return NewLedgerHandler(base, LedgerHandlerConfig[*sale.Sale, dto.CreateSaleRequest, dto.SaleResponse]{
		Service:      service.Service,
		MapCreateDTO: dto.CreateSaleRequest.ToInput,
		MapToDTO:     dto.FromSale,
	})
}
