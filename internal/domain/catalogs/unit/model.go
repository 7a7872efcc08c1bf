// Package unit provides conversion units. A unit states how many base
// (single) units it represents, e.g. "Dozen" = 12, and belongs to one category.
package unit

import (
	"context"
	"strings"
	"unicode/utf8"

	"khaata/internal/core/apperror"
	"khaata/internal/core/entity"
	"khaata/internal/core/id"
)

// Unit is a named multiple of the base unit.
type Unit struct {
	entity.BaseCatalog

	Title      string `db:"title" json:"title"`
	Value      int64  `db:"value" json:"value"`
	CategoryID id.ID  `db:"category_id" json:"categoryId"`
}

// NewUnit creates a unit with a generated id.
func NewUnit(title string, value int64, categoryID id.ID) *Unit {
	return &Unit{
		BaseCatalog: entity.NewBaseCatalog(),
		Title:       strings.TrimSpace(title),
		Value:       value,
		CategoryID:  categoryID,
	}
}

// Validate implements entity.Validatable.
func (u *Unit) Validate(ctx context.Context) error {
	n := utf8.RuneCountInString(strings.TrimSpace(u.Title))
	if n < 3 || n > 25 {
		return apperror.NewValidation("title must be 3 to 25 characters").
			WithDetail("field", "title")
	}
	if u.Value < 1 {
		return apperror.NewValidation("value must be at least 1").
			WithDetail("field", "value")
	}
	if id.IsNil(u.CategoryID) {
		return apperror.NewValidation("category is required").
			WithDetail("field", "categoryId")
	}
	return nil
}
