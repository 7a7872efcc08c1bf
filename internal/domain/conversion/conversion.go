// Package conversion converts quantities between the compound display form
// (whole units plus remainder) and the base-unit counts the ledgers store.
package conversion

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"khaata/internal/core/apperror"
)

// ToBaseUnits converts q to base units of a unit holding unitValue base units.
// A plain count is returned unchanged; "W.R" becomes W*unitValue + R.
func ToBaseUnits(q Quantity, unitValue int64) (int64, error) {
	if unitValue < 1 {
		return 0, apperror.NewMalformedQuantity(q.String(), "unit value must be at least 1")
	}
	if q.IsEmpty() {
		return 0, apperror.NewMalformedQuantity("", "quantity is required")
	}

	if !q.compound {
		n, err := parseCount(q.raw)
		if err != nil {
			return 0, apperror.NewMalformedQuantity(q.raw, err.Error())
		}
		return n, nil
	}

	wholeStr, remStr, hasDot := strings.Cut(strings.TrimSpace(q.raw), ".")
	whole, err := parseCount(wholeStr)
	if err != nil {
		return 0, apperror.NewMalformedQuantity(q.raw, "whole units: "+err.Error())
	}
	var rem int64
	if hasDot {
		rem, err = parseCount(remStr)
		if err != nil {
			return 0, apperror.NewMalformedQuantity(q.raw, "remainder: "+err.Error())
		}
	}

	if whole > (math.MaxInt64-rem)/unitValue {
		return 0, apperror.NewMalformedQuantity(q.raw, "quantity too large")
	}
	return whole*unitValue + rem, nil
}

// ToBaseVariants converts every variant quantity with ToBaseUnits.
func ToBaseVariants(in map[string]Quantity, unitValue int64) (map[string]int64, error) {
	out := make(map[string]int64, len(in))
	for key, q := range in {
		if strings.TrimSpace(key) == "" {
			return nil, apperror.NewMalformedQuantity(q.String(), "variant key is empty")
		}
		n, err := ToBaseUnits(q, unitValue)
		if err != nil {
			if appErr, ok := apperror.AsAppError(err); ok {
				appErr.WithDetail("variant", key)
			}
			return nil, err
		}
		out[key] = n
	}
	return out, nil
}

// Validate checks that s is a well-formed compound quantity without converting it.
func Validate(s string) error {
	_, err := ToBaseUnits(Compound(s), 1)
	return err
}

func parseCount(s string) (int64, error) {
	if s == "" {
		return 0, fmt.Errorf("missing digits")
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("must be a non-negative whole number")
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("out of range")
	}
	return n, nil
}

// Display is a base quantity prepared for showing: a plain count when it does
// not fill one whole unit, otherwise whole units and a remainder.
type Display struct {
	Whole     int64
	Remainder int64
	Compound  bool
	Base      int64
}

// ToDisplay decomposes a base quantity relative to a unit of unitValue base units.
func ToDisplay(base, unitValue int64) Display {
	if unitValue < 1 || base <= unitValue {
		return Display{Base: base}
	}
	whole := base / unitValue
	return Display{
		Whole:     whole,
		Remainder: base - whole*unitValue,
		Compound:  true,
		Base:      base,
	}
}

// ToDisplayVariants applies ToDisplay to every variant.
func ToDisplayVariants(variants map[string]int64, unitValue int64) map[string]Display {
	out := make(map[string]Display, len(variants))
	for key, v := range variants {
		out[key] = ToDisplay(v, unitValue)
	}
	return out
}

// Quantity re-encodes the display form so that ToBaseUnits recovers the base count.
func (d Display) Quantity() Quantity {
	if !d.Compound {
		return Base(d.Base)
	}
	return Compound(fmt.Sprintf("%d.%d", d.Whole, d.Remainder))
}

// String renders the display form, "2.3" or "7".
func (d Display) String() string {
	return d.Quantity().String()
}

// MarshalJSON renders a plain count as a number and a compound value as [whole, remainder].
func (d Display) MarshalJSON() ([]byte, error) {
	if !d.Compound {
		return []byte(strconv.FormatInt(d.Base, 10)), nil
	}
	return json.Marshal([2]int64{d.Whole, d.Remainder})
}
