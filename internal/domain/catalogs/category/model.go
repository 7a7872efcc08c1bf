// Package category provides product categories ("types"). Every unit and
// product belongs to exactly one category.
package category

import (
	"context"
	"strings"
	"unicode/utf8"

	"khaata/internal/core/apperror"
	"khaata/internal/core/entity"
)

// Category groups products that share measurement units, e.g. "Tile" or "Pipe".
type Category struct {
	entity.BaseCatalog

	Title string `db:"title" json:"title"`
}

// NewCategory creates a category with a generated id.
func NewCategory(title string) *Category {
	return &Category{
		BaseCatalog: entity.NewBaseCatalog(),
		Title:       strings.TrimSpace(title),
	}
}

// Validate implements entity.Validatable.
func (c *Category) Validate(ctx context.Context) error {
	n := utf8.RuneCountInString(strings.TrimSpace(c.Title))
	if n < 3 || n > 25 {
		return apperror.NewValidation("title must be 3 to 25 characters").
			WithDetail("field", "title")
	}
	return nil
}
