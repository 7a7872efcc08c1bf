package dto

import (
	"khaata/internal/core/id"
	"khaata/internal/core/types"
	"khaata/internal/domain/catalogs/category"
	"khaata/internal/domain/catalogs/counterparty"
	"khaata/internal/domain/catalogs/product"
	"khaata/internal/domain/catalogs/unit"
)

// --- Category ---

type CreateCategoryRequest struct {
	Title string `json:"title" binding:"required,min=3,max=25"`
}

func (r CreateCategoryRequest) ToEntity() *category.Category {
	return category.NewCategory(r.Title)
}

type CategoryResponse struct {
	BaseResponse
	Title string `json:"title"`
}

func FromCategory(c *category.Category) CategoryResponse {
	return CategoryResponse{BaseResponse: FromBaseCatalog(c.BaseCatalog), Title: c.Title}
}

// --- Unit ---

type CreateUnitRequest struct {
	Title      string `json:"title" binding:"required,min=3,max=25"`
	Value      int64  `json:"value" binding:"required,min=1"`
	CategoryID id.ID  `json:"categoryId" binding:"required"`
}

func (r CreateUnitRequest) ToEntity() *unit.Unit {
	return unit.NewUnit(r.Title, r.Value, r.CategoryID)
}

type UnitResponse struct {
	BaseResponse
	Title      string `json:"title"`
	Value      int64  `json:"value"`
	CategoryID string `json:"categoryId"`
}

func FromUnit(u *unit.Unit) UnitResponse {
	return UnitResponse{
		BaseResponse: FromBaseCatalog(u.BaseCatalog),
		Title:        u.Title,
		Value:        u.Value,
		CategoryID:   u.CategoryID.String(),
	}
}

// --- Product ---

type CreateProductRequest struct {
	ModelNumber string       `json:"modelNumber" binding:"required,max=64"`
	CategoryID  id.ID        `json:"categoryId" binding:"required"`
	UnitID      id.ID        `json:"unitId" binding:"required"`
	Mode        product.Mode `json:"mode" binding:"omitempty,oneof=scalar variants"`
	RetailPrice *types.Money `json:"retailPrice"`
}

// ToEntity builds the product. Mode defaults to scalar.
func (r CreateProductRequest) ToEntity() *product.Product {
	mode := r.Mode
	if mode == "" {
		mode = product.ModeScalar
	}
	p := product.NewProduct(r.ModelNumber, r.CategoryID, r.UnitID, mode)
	p.RetailPrice = r.RetailPrice
	return p
}

type ProductResponse struct {
	BaseResponse
	ModelNumber string       `json:"modelNumber"`
	CategoryID  string       `json:"categoryId"`
	UnitID      string       `json:"unitId"`
	Mode        product.Mode `json:"mode"`
	RetailPrice *types.Money `json:"retailPrice,omitempty"`
}

func FromProduct(p *product.Product) ProductResponse {
	return ProductResponse{
		BaseResponse: FromBaseCatalog(p.BaseCatalog),
		ModelNumber:  p.ModelNumber,
		CategoryID:   p.CategoryID.String(),
		UnitID:       p.UnitID.String(),
		Mode:         p.Mode,
		RetailPrice:  p.RetailPrice,
	}
}

// --- Counterparty ---

type CreateSupplierRequest struct {
	Name    string `json:"name" binding:"required,min=4,max=35"`
	Phone   string `json:"phone" binding:"required,max=20"`
	Company string `json:"company" binding:"required,min=4,max=35"`
}

func (r CreateSupplierRequest) ToEntity() *counterparty.Counterparty {
	return counterparty.NewSupplier(r.Name, r.Phone, r.Company)
}

type CreateCustomerRequest struct {
	Name    string `json:"name" binding:"required,max=50"`
	Phone   string `json:"phone" binding:"required,max=20"`
	Address string `json:"address" binding:"max=200"`
}

func (r CreateCustomerRequest) ToEntity() *counterparty.Counterparty {
	return counterparty.NewCustomer(r.Name, r.Phone, r.Address)
}

type CounterpartyResponse struct {
	BaseResponse
	Kind    counterparty.Kind `json:"kind"`
	Name    string            `json:"name"`
	Phone   string            `json:"phone"`
	Company string            `json:"company,omitempty"`
	Address string            `json:"address,omitempty"`
}

func FromCounterparty(c *counterparty.Counterparty) CounterpartyResponse {
	return CounterpartyResponse{
		BaseResponse: FromBaseCatalog(c.BaseCatalog),
		Kind:         c.Kind,
		Name:         c.Name,
		Phone:        c.Phone,
		Company:      c.Company,
		Address:      c.Address,
	}
}
