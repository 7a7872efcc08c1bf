package inventory

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"

	"khaata/internal/core/apperror"
	"khaata/internal/domain/catalogs/product"
	"khaata/internal/domain/conversion"
)

// Amount is a stock quantity in base units. It is either Scalar (one count)
// or Variants (a count per variant key), matching the product's mode.
type Amount struct {
	mode     product.Mode
	quantity int64
	variants map[string]int64
}

// Scalar returns a scalar amount.
func Scalar(q int64) Amount {
	return Amount{mode: product.ModeScalar, quantity: q}
}

// Variants returns a per-variant amount. The map is copied.
func Variants(v map[string]int64) Amount {
	return Amount{mode: product.ModeVariants, variants: maps.Clone(nonNil(v))}
}

// Zero returns the empty amount of the given mode.
func Zero(mode product.Mode) Amount {
	if mode == product.ModeVariants {
		return Variants(nil)
	}
	return Scalar(0)
}

func nonNil(v map[string]int64) map[string]int64 {
	if v == nil {
		return map[string]int64{}
	}
	return v
}

// Mode returns the amount's tag.
func (a Amount) Mode() product.Mode {
	if a.mode == "" {
		return product.ModeScalar
	}
	return a.mode
}

// IsVariants reports whether a is tracked per variant.
func (a Amount) IsVariants() bool {
	return a.Mode() == product.ModeVariants
}

// Quantity returns the scalar count (0 for variant amounts).
func (a Amount) Quantity() int64 {
	return a.quantity
}

// VariantCounts returns a copy of the per-variant counts (nil for scalar amounts).
func (a Amount) VariantCounts() map[string]int64 {
	if !a.IsVariants() {
		return nil
	}
	return maps.Clone(nonNil(a.variants))
}

// Total returns the scalar count or the sum of all variant counts.
func (a Amount) Total() int64 {
	if !a.IsVariants() {
		return a.quantity
	}
	var total int64
	for _, v := range a.variants {
		total += v
	}
	return total
}

// IsZero reports whether nothing is held: scalar 0 or every variant 0.
func (a Amount) IsZero() bool {
	if !a.IsVariants() {
		return a.quantity == 0
	}
	for _, v := range a.variants {
		if v != 0 {
			return false
		}
	}
	return true
}

// Neg returns the amount with every count negated.
func (a Amount) Neg() Amount {
	if !a.IsVariants() {
		return Scalar(-a.quantity)
	}
	out := make(map[string]int64, len(a.variants))
	for k, v := range a.variants {
		out[k] = -v
	}
	return Amount{mode: product.ModeVariants, variants: out}
}

// Add returns a+d. Both must have the same mode. A count that leaves the
// int64 range is rejected as MalformedQuantity.
func (a Amount) Add(d Amount) (Amount, error) {
	return a.combine(d, addInt64)
}

// Sub returns a-d.
func (a Amount) Sub(d Amount) (Amount, error) {
	return a.combine(d, subInt64)
}

func (a Amount) combine(d Amount, op func(x, y int64) (int64, bool)) (Amount, error) {
	if a.Mode() != d.Mode() {
		return Amount{}, apperror.NewValidation(
			fmt.Sprintf("cannot combine %s stock with %s quantity", a.Mode(), d.Mode()))
	}
	if !a.IsVariants() {
		n, ok := op(a.quantity, d.quantity)
		if !ok {
			return Amount{}, outOfRange(d.quantity)
		}
		return Scalar(n), nil
	}
	out := maps.Clone(nonNil(a.variants))
	for k, v := range d.variants {
		n, ok := op(out[k], v)
		if !ok {
			return Amount{}, outOfRange(v).WithDetail("variant", k)
		}
		out[k] = n
	}
	return Amount{mode: product.ModeVariants, variants: out}, nil
}

func addInt64(x, y int64) (int64, bool) {
	s := x + y
	return s, (y >= 0) == (s >= x)
}

func subInt64(x, y int64) (int64, bool) {
	s := x - y
	return s, (y >= 0) == (s <= x)
}

func outOfRange(v int64) *apperror.AppError {
	return apperror.NewMalformedQuantity(strconv.FormatInt(v, 10), "stock count out of range")
}

// FirstNegative returns the first negative count in key order. For scalar
// amounts the key is empty.
func (a Amount) FirstNegative() (key string, value int64, ok bool) {
	if !a.IsVariants() {
		return "", a.quantity, a.quantity < 0
	}
	for _, k := range a.Keys() {
		if v := a.variants[k]; v < 0 {
			return k, v, true
		}
	}
	return "", 0, false
}

// Get returns the count for a variant key, or the scalar count when key is empty.
func (a Amount) Get(key string) int64 {
	if !a.IsVariants() {
		return a.quantity
	}
	return a.variants[key]
}

// Keys returns the variant keys in sorted order.
func (a Amount) Keys() []string {
	return slices.Sorted(maps.Keys(a.variants))
}

// Pruned drops variant keys whose count is zero.
func (a Amount) Pruned() Amount {
	if !a.IsVariants() {
		return a
	}
	out := make(map[string]int64, len(a.variants))
	for k, v := range a.variants {
		if v != 0 {
			out[k] = v
		}
	}
	return Amount{mode: product.ModeVariants, variants: out}
}

// Display converts the amount for showing against a unit of unitValue base units.
func (a Amount) Display(unitValue int64) (*conversion.Display, map[string]conversion.Display) {
	if !a.IsVariants() {
		d := conversion.ToDisplay(a.quantity, unitValue)
		return &d, nil
	}
	return nil, conversion.ToDisplayVariants(a.variants, unitValue)
}

type amountJSON struct {
	Quantity *int64           `json:"quantity,omitempty"`
	Variants map[string]int64 `json:"variants,omitempty"`
}

// MarshalJSON writes {"quantity": n} or {"variants": {...}}.
func (a Amount) MarshalJSON() ([]byte, error) {
	if a.IsVariants() {
		return json.Marshal(amountJSON{Variants: nonNil(a.variants)})
	}
	q := a.quantity
	return json.Marshal(amountJSON{Quantity: &q})
}

// UnmarshalJSON reads the form written by MarshalJSON.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var raw amountJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch {
	case raw.Quantity != nil && raw.Variants != nil:
		return fmt.Errorf("amount has both quantity and variants")
	case raw.Variants != nil:
		*a = Variants(raw.Variants)
	case raw.Quantity != nil:
		*a = Scalar(*raw.Quantity)
	default:
		return fmt.Errorf("amount has neither quantity nor variants")
	}
	return nil
}

// FromRequest converts a caller's quantity for a product into base units.
// Scalar products take quantity only; variant products take variants only.
func FromRequest(p product.Snapshot, quantity *conversion.Quantity, variants map[string]conversion.Quantity) (Amount, error) {
	switch p.Mode {
	case product.ModeVariants:
		if quantity != nil && !quantity.IsEmpty() {
			return Amount{}, apperror.NewMalformedQuantity(quantity.String(), "product is tracked by variants").
				WithDetail("product_id", p.ID.String())
		}
		if len(variants) == 0 {
			return Amount{}, apperror.NewMalformedQuantity("", "variants are required").
				WithDetail("product_id", p.ID.String())
		}
		counts, err := conversion.ToBaseVariants(variants, p.Unit.Value)
		if err != nil {
			return Amount{}, err
		}
		return Variants(counts), nil
	default:
		if len(variants) > 0 {
			return Amount{}, apperror.NewMalformedQuantity("", "product is not tracked by variants").
				WithDetail("product_id", p.ID.String())
		}
		if quantity == nil {
			return Amount{}, apperror.NewMalformedQuantity("", "quantity is required").
				WithDetail("product_id", p.ID.String())
		}
		q, err := conversion.ToBaseUnits(*quantity, p.Unit.Value)
		if err != nil {
			return Amount{}, err
		}
		return Scalar(q), nil
	}
}
