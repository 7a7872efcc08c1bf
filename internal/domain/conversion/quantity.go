package conversion

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Quantity is a quantity as a caller states it: either a plain count of base
// units (a JSON number) or a compound "W.R" string meaning W whole units plus
// R base units.
type Quantity struct {
	raw      string
	compound bool
}

// Base returns a quantity of n base units.
func Base(n int64) Quantity {
	return Quantity{raw: strconv.FormatInt(n, 10)}
}

// Compound returns a compound "W.R" quantity. The string is validated on conversion.
func Compound(s string) Quantity {
	return Quantity{raw: s, compound: true}
}

// IsCompound reports whether q was given as a "W.R" string.
func (q Quantity) IsCompound() bool {
	return q.compound
}

// IsEmpty reports whether q was never set.
func (q Quantity) IsEmpty() bool {
	return q.raw == ""
}

// String returns the quantity as the caller wrote it.
func (q Quantity) String() string {
	return q.raw
}

// MarshalJSON writes compound quantities as strings and base counts as numbers.
func (q Quantity) MarshalJSON() ([]byte, error) {
	if q.compound {
		return json.Marshal(q.raw)
	}
	if q.raw == "" {
		return []byte("null"), nil
	}
	return []byte(q.raw), nil
}

// UnmarshalJSON accepts a JSON number (base units) or a JSON string (compound).
func (q *Quantity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*q = Quantity{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*q = Compound(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("quantity must be a number or a \"W.R\" string")
	}
	*q = Quantity{raw: n.String()}
	return nil
}
