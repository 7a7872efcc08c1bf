package inventory

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"khaata/internal/core/apperror"
	"khaata/internal/core/id"
	"khaata/internal/domain/catalogs/product"
	"khaata/internal/domain/conversion"
)

func TestAmountArithmetic(t *testing.T) {
	a := Variants(map[string]int64{"red": 3, "blue": 1})

	sum, err := a.Add(Variants(map[string]int64{"blue": -1, "green": 2}))
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"red": 3, "blue": 0, "green": 2}, sum.VariantCounts())
	assert.Equal(t, map[string]int64{"red": 3, "green": 2}, sum.Pruned().VariantCounts())
	assert.Equal(t, int64(5), sum.Total())

	_, err = a.Add(Scalar(1))
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	// a is unchanged by Add.
	assert.Equal(t, map[string]int64{"red": 3, "blue": 1}, a.VariantCounts())
}

func TestAmountOverflowRejected(t *testing.T) {
	tests := []struct {
		name string
		run  func() (Amount, error)
	}{
		{"scalar add", func() (Amount, error) { return Scalar(math.MaxInt64).Add(Scalar(1)) }},
		{"scalar add negative", func() (Amount, error) { return Scalar(math.MinInt64).Add(Scalar(-1)) }},
		{"scalar sub", func() (Amount, error) { return Scalar(0).Sub(Scalar(math.MinInt64)) }},
		{"scalar sub large", func() (Amount, error) { return Scalar(-2).Sub(Scalar(math.MaxInt64)) }},
		{"variant add", func() (Amount, error) {
			return Variants(map[string]int64{"red": math.MaxInt64 - 1}).Add(Variants(map[string]int64{"red": 2}))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.run()
			assert.True(t, apperror.HasCode(err, apperror.CodeMalformedQuantity), "%v", err)
		})
	}

	sum, err := Scalar(math.MaxInt64 - 1).Add(Scalar(1))
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), sum.Quantity())

	diff, err := Scalar(-1).Sub(Scalar(math.MaxInt64))
	require.NoError(t, err)
	assert.Equal(t, int64(math.MinInt64), diff.Quantity())
}

func TestAmountFirstNegative(t *testing.T) {
	key, v, ok := Variants(map[string]int64{"z": -1, "b": -2, "a": 4}).FirstNegative()
	assert.True(t, ok)
	assert.Equal(t, "b", key)
	assert.Equal(t, int64(-2), v)

	_, _, ok = Scalar(0).FirstNegative()
	assert.False(t, ok)

	key, v, ok = Scalar(-3).FirstNegative()
	assert.True(t, ok)
	assert.Empty(t, key)
	assert.Equal(t, int64(-3), v)
}

func TestAmountIsZero(t *testing.T) {
	assert.True(t, Zero(product.ModeScalar).IsZero())
	assert.True(t, Zero(product.ModeVariants).IsZero())
	assert.True(t, Variants(map[string]int64{"red": 0}).IsZero())
	assert.False(t, Variants(map[string]int64{"red": 1}).IsZero())
	assert.True(t, Amount{}.IsZero())
	assert.Equal(t, product.ModeScalar, Amount{}.Mode())
}

func TestAmountJSON(t *testing.T) {
	data, err := json.Marshal(Scalar(27))
	require.NoError(t, err)
	assert.JSONEq(t, `{"quantity":27}`, string(data))

	data, err = json.Marshal(Variants(map[string]int64{"red": 2}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"variants":{"red":2}}`, string(data))

	var a Amount
	require.NoError(t, json.Unmarshal([]byte(`{"variants":{"red":2}}`), &a))
	assert.True(t, a.IsVariants())
	assert.Equal(t, int64(2), a.Get("red"))

	assert.Error(t, json.Unmarshal([]byte(`{}`), &a))
	assert.Error(t, json.Unmarshal([]byte(`{"quantity":1,"variants":{}}`), &a))
}

func TestFromRequest(t *testing.T) {
	dozen := product.UnitRef{ID: id.New(), Title: "Dozen", Value: 12}
	scalar := product.Snapshot{ID: id.New(), Mode: product.ModeScalar, Unit: dozen}
	variants := product.Snapshot{ID: id.New(), Mode: product.ModeVariants, Unit: dozen}

	q := conversion.Compound("2.3")
	a, err := FromRequest(scalar, &q, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(27), a.Quantity())

	a, err = FromRequest(variants, nil, map[string]conversion.Quantity{"red": conversion.Compound("1.0"), "blue": conversion.Base(2)})
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"red": 12, "blue": 2}, a.VariantCounts())

	tests := []struct {
		name     string
		p        product.Snapshot
		quantity *conversion.Quantity
		variants map[string]conversion.Quantity
	}{
		{"scalar without quantity", scalar, nil, nil},
		{"scalar with variants", scalar, &q, map[string]conversion.Quantity{"red": conversion.Base(1)}},
		{"variants without variants", variants, nil, nil},
		{"variants with quantity", variants, &q, map[string]conversion.Quantity{"red": conversion.Base(1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromRequest(tt.p, tt.quantity, tt.variants)
			assert.True(t, apperror.HasCode(err, apperror.CodeMalformedQuantity), "got %v", err)
		})
	}
}

func TestFlow(t *testing.T) {
	assert.Equal(t, int64(5), Inbound.Delta(Scalar(5)).Quantity())
	assert.Equal(t, int64(-5), Inbound.Reversal(Scalar(5)).Quantity())
	assert.Equal(t, int64(-5), Outbound.Delta(Scalar(5)).Quantity())
	assert.Equal(t, int64(5), Outbound.Reversal(Scalar(5)).Quantity())
}
