// Package product provides the product catalog. A product is identified by its
// model number and tracks stock either as one scalar quantity or per variant.
package product

import (
	"context"
	"strings"

	"khaata/internal/core/apperror"
	"khaata/internal/core/entity"
	"khaata/internal/core/id"
	"khaata/internal/core/types"
)

// Mode is fixed when the product is created.
type Mode string

const (
	// ModeScalar tracks one base-unit quantity.
	ModeScalar Mode = "scalar"
	// ModeVariants tracks an independent base-unit count per variant key (color, size...).
	ModeVariants Mode = "variants"
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeScalar || m == ModeVariants
}

// Product is a stocked item.
type Product struct {
	entity.BaseCatalog

	ModelNumber string       `db:"model_number" json:"modelNumber"`
	CategoryID  id.ID        `db:"category_id" json:"categoryId"`
	UnitID      id.ID        `db:"unit_id" json:"unitId"`
	Mode        Mode         `db:"mode" json:"mode"`
	RetailPrice *types.Money `db:"retail_price" json:"retailPrice,omitempty"`
}

// NewProduct creates a product with a generated id.
func NewProduct(modelNumber string, categoryID, unitID id.ID, mode Mode) *Product {
	return &Product{
		BaseCatalog: entity.NewBaseCatalog(),
		ModelNumber: strings.TrimSpace(modelNumber),
		CategoryID:  categoryID,
		UnitID:      unitID,
		Mode:        mode,
	}
}

// Validate implements entity.Validatable.
func (p *Product) Validate(ctx context.Context) error {
	if strings.TrimSpace(p.ModelNumber) == "" {
		return apperror.NewValidation("model number is required").
			WithDetail("field", "modelNumber")
	}
	if !p.Mode.Valid() {
		return apperror.NewValidation("mode must be scalar or variants").
			WithDetail("field", "mode")
	}
	if id.IsNil(p.CategoryID) {
		return apperror.NewValidation("category is required").
			WithDetail("field", "categoryId")
	}
	if id.IsNil(p.UnitID) {
		return apperror.NewValidation("unit is required").
			WithDetail("field", "unitId")
	}
	if p.RetailPrice != nil && p.RetailPrice.IsNegative() {
		return apperror.NewValidation("retail price cannot be negative").
			WithDetail("field", "retailPrice")
	}
	return nil
}

// CategoryRef is the category part of a Snapshot.
type CategoryRef struct {
	ID    id.ID  `json:"id"`
	Title string `json:"title"`
}

// UnitRef is the unit part of a Snapshot. Value is the number of base units.
type UnitRef struct {
	ID    id.ID  `json:"id"`
	Title string `json:"title"`
	Value int64  `json:"value"`
}

// Snapshot is the copy of a product stored inside transaction lines. It never
// changes after the line is written, even when the live product or unit does.
type Snapshot struct {
	ID          id.ID       `json:"id"`
	ModelNumber string      `json:"modelNumber"`
	Mode        Mode        `json:"mode"`
	Category    CategoryRef `json:"category"`
	Unit        UnitRef     `json:"unit"`
}
