package conversion

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"khaata/internal/core/apperror"
)

func TestToBaseUnits(t *testing.T) {
	tests := []struct {
		name  string
		in    Quantity
		unit  int64
		want  int64
		isErr bool
	}{
		{"dozen and three", Compound("2.3"), 12, 27, false},
		{"whole only", Compound("1.0"), 12, 12, false},
		{"no dot means whole units", Compound("2"), 12, 24, false},
		{"plain base count unchanged", Base(27), 12, 27, false},
		{"remainder larger than unit", Compound("2.15"), 12, 39, false},
		{"zero", Compound("0.0"), 12, 0, false},
		{"negative whole", Compound("-1.2"), 12, 0, true},
		{"letters", Compound("a.b"), 12, 0, true},
		{"missing remainder", Compound("2."), 12, 0, true},
		{"missing whole", Compound(".5"), 12, 0, true},
		{"two dots", Compound("1.2.3"), 12, 0, true},
		{"empty", Quantity{}, 12, 0, true},
		{"unit below one", Compound("1.0"), 0, 0, true},
		{"fractional base count", Quantity{raw: "2.5"}, 12, 0, true},
		{"overflow", Compound("9223372036854775807.0"), 12, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToBaseUnits(tt.in, tt.unit)
			if tt.isErr {
				require.Error(t, err)
				assert.True(t, apperror.HasCode(err, apperror.CodeMalformedQuantity))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToDisplay(t *testing.T) {
	assert.Equal(t, Display{Base: 7}, ToDisplay(7, 12))
	assert.Equal(t, Display{Base: 12}, ToDisplay(12, 12))
	assert.Equal(t, Display{Whole: 2, Remainder: 3, Compound: true, Base: 27}, ToDisplay(27, 12))
	assert.Equal(t, Display{Whole: 15, Remainder: 0, Compound: true, Base: 15}, ToDisplay(15, 1))
}

// Decomposing and re-encoding any base quantity yields the same quantity.
func TestDisplayRoundTrip(t *testing.T) {
	for _, unit := range []int64{1, 2, 5, 12, 100} {
		for q := int64(0); q <= 3*unit+7; q++ {
			d := ToDisplay(q, unit)
			back, err := ToBaseUnits(d.Quantity(), unit)
			require.NoError(t, err)
			assert.Equal(t, q, back, "q=%d unit=%d display=%s", q, unit, d)
		}
	}
}

func TestToBaseVariants(t *testing.T) {
	got, err := ToBaseVariants(map[string]Quantity{"red": Compound("0.10"), "blue": Base(5)}, 12)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"red": 10, "blue": 5}, got)

	_, err = ToBaseVariants(map[string]Quantity{"red": Compound("x")}, 12)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "red", appErr.Details["variant"])

	_, err = ToBaseVariants(map[string]Quantity{" ": Base(1)}, 12)
	assert.Error(t, err)
}

func TestQuantityJSON(t *testing.T) {
	var body struct {
		A Quantity `json:"a"`
		B Quantity `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"2.3","b":27}`), &body))
	assert.True(t, body.A.IsCompound())
	assert.False(t, body.B.IsCompound())

	a, err := ToBaseUnits(body.A, 12)
	require.NoError(t, err)
	assert.Equal(t, int64(27), a)

	out, err := json.Marshal(body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":"2.3","b":27}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"a":true}`), &body))
}

func TestDisplayJSON(t *testing.T) {
	out, err := json.Marshal(map[string]Display{"x": ToDisplay(27, 12), "y": ToDisplay(5, 12)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"x":[2,3],"y":5}`, string(out))
}
