package handlers

import (
	"khaata/internal/domain/catalogs/category"
	"khaata/internal/domain/catalogs/counterparty"
	"khaata/internal/domain/catalogs/product"
	"khaata/internal/domain/catalogs/unit"
	"khaata/internal/infrastructure/http/v1/dto"
)

type (
	CategoryHandler = CatalogHandler[*category.Category, dto.CreateCategoryRequest, dto.CategoryResponse]
	UnitHandler     = CatalogHandler[*unit.Unit, dto.CreateUnitRequest, dto.UnitResponse]
	ProductHandler  = CatalogHandler[*product.Product, dto.CreateProductRequest, dto.ProductResponse]
	SupplierHandler = CatalogHandler[*counterparty.Counterparty, dto.CreateSupplierRequest, dto.CounterpartyResponse]
	CustomerHandler = CatalogHandler[*counterparty.Counterparty, dto.CreateCustomerRequest, dto.CounterpartyResponse]
)

// NewCategoryHandler creates the category handler.
func NewCategoryHandler(base *BaseHandler, service *category.Service) *CategoryHandler {
	return NewCatalogHandler(base, CatalogHandlerConfig[*category.Category, dto.CreateCategoryRequest, dto.CategoryResponse]{
		Service:      service,
		MapCreateDTO: dto.CreateCategoryRequest.ToEntity,
		MapToDTO:     dto.FromCategory,
	})
}

// NewUnitHandler creates the unit handler.
func NewUnitHandler(base *BaseHandler, service *unit.Service) *UnitHandler {
	return NewCatalogHandler(base, CatalogHandlerConfig[*unit.Unit, dto.CreateUnitRequest, dto.UnitResponse]{
		Service:      service,
		MapCreateDTO: dto.CreateUnitRequest.ToEntity,
		MapToDTO:     dto.FromUnit,
	})
}

// NewProductHandler creates the product handler.
func NewProductHandler(base *BaseHandler, service *product.Service) *ProductHandler {
	return NewCatalogHandler(base, CatalogHandlerConfig[*product.Product, dto.CreateProductRequest, dto.ProductResponse]{
		Service:      service,
		MapCreateDTO: dto.CreateProductRequest.ToEntity,
		MapToDTO:     dto.FromProduct,
	})
}

// NewSupplierHandler creates the supplier handler.
func NewSupplierHandler(base *BaseHandler, service *counterparty.Service) *SupplierHandler {
	return NewCatalogHandler(base, CatalogHandlerConfig[*counterparty.Counterparty, dto.CreateSupplierRequest, dto.CounterpartyResponse]{
		Service:      service.Suppliers,
		MapCreateDTO: dto.CreateSupplierRequest.ToEntity,
		MapToDTO:     dto.FromCounterparty,
	})
}

// NewCustomerHandler creates the customer handler.
func NewCustomerHandler(base *BaseHandler, service *counterparty.Service) *CustomerHandler {
	return NewCatalogHandler(base, CatalogHandlerConfig[*counterparty.Counterparty, dto.CreateCustomerRequest, dto.CounterpartyResponse]{
		Service:      service.Customers,
		MapCreateDTO: dto.CreateCustomerRequest.ToEntity,
		MapToDTO:     dto.FromCounterparty,
	})
}
