package khaata

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"khaata/internal/core/apperror"
	"khaata/internal/core/id"
	"khaata/internal/core/types"
	"khaata/internal/domain/catalogs/counterparty"
	"khaata/internal/domain/catalogs/product"
	"khaata/internal/domain/inventory"
)

func snapshot(mode product.Mode) product.Snapshot {
	return product.Snapshot{
		ID:   id.New(),
		Mode: mode,
		Unit: product.UnitRef{ID: id.New(), Title: "Dozen", Value: 12},
	}
}

func record(total, paid string) *Record {
	r := &Record{
		Counterparty: counterparty.Snapshot{ID: id.New(), Name: "Akbar"},
		Lines: []Line{{
			Product: snapshot(product.ModeScalar),
			Amount:  inventory.Scalar(10),
			Price:   types.MustMoney(total),
		}},
		Paid: types.MustMoney(paid),
	}
	r.Retotal()
	return r
}

func TestPay(t *testing.T) {
	r := record("270", "100")
	require.True(t, r.IsRemaining)

	err := r.Pay(types.MustMoney("200"))
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "Cannot clear khaata more than remaining. Only 170 remaining.", appErr.Message)
	assert.True(t, types.MustMoney("100").Equal(r.Paid))

	require.NoError(t, r.Pay(types.MustMoney("170")))
	assert.False(t, r.IsRemaining)
	assert.True(t, r.Remaining().IsZero())

	assert.True(t, apperror.HasCode(r.Pay(types.MustMoney("1")), apperror.CodeKhaataAlreadyCleared))
}

func TestPayRejectsNonPositive(t *testing.T) {
	r := record("270", "0")
	assert.True(t, apperror.HasCode(r.Pay(types.Zero()), apperror.CodeValidation))
	assert.True(t, apperror.HasCode(r.Pay(types.MustMoney("-5")), apperror.CodeValidation))
}

func TestSettle(t *testing.T) {
	r := record("270", "270")
	r.Lines[0].Price = types.MustMoney("220")
	r.Retotal()

	excess := r.Settle()
	assert.True(t, types.MustMoney("50").Equal(excess))
	assert.True(t, types.MustMoney("220").Equal(r.Paid))
	assert.False(t, r.IsRemaining)

	r = record("270", "100")
	r.Lines[0].Price = types.MustMoney("220")
	r.Retotal()
	assert.True(t, r.Settle().IsZero())
	assert.True(t, r.IsRemaining)
}

func TestValidate(t *testing.T) {
	ctx := context.Background()
	require.NoError(t, record("270", "0").Validate(ctx))

	r := record("270", "300")
	assert.True(t, apperror.HasCode(r.Validate(ctx), apperror.CodeOverpaymentRejected))

	r = record("270", "-1")
	assert.True(t, apperror.HasCode(r.Validate(ctx), apperror.CodeValidation))

	r = record("270", "0")
	r.Counterparty = counterparty.Snapshot{}
	assert.True(t, apperror.HasCode(r.Validate(ctx), apperror.CodeValidation))

	r = record("270", "0")
	r.Lines[0].Amount = inventory.Variants(map[string]int64{"red": 1})
	assert.True(t, apperror.HasCode(r.Validate(ctx), apperror.CodeValidation))
}

func TestCloneIsIndependent(t *testing.T) {
	r := record("270", "0")
	c := r.Clone()
	c.Lines[0].Price = types.MustMoney("1")
	assert.True(t, types.MustMoney("270").Equal(r.Lines[0].Price))
}

func TestNetDeltas(t *testing.T) {
	tile := snapshot(product.ModeScalar)
	shirt := snapshot(product.ModeVariants)
	grout := snapshot(product.ModeScalar)

	prev := []Line{
		{Product: tile, Amount: inventory.Scalar(27)},
		{Product: shirt, Amount: inventory.Variants(map[string]int64{"red": 2})},
		{Product: grout, Amount: inventory.Scalar(4)},
	}
	next := []Line{
		{Product: shirt, Amount: inventory.Variants(map[string]int64{"red": 2, "blue": 1})},
		{Product: tile, Amount: inventory.Scalar(20)},
		{Product: tile, Amount: inventory.Scalar(10)},
		{Product: grout, Amount: inventory.Scalar(4)},
	}

	deltas, err := NetDeltas(prev, next)
	require.NoError(t, err)
	require.Len(t, deltas, 2)

	assert.Equal(t, shirt.ID, deltas[0].ProductID)
	assert.Equal(t, map[string]int64{"blue": 1}, deltas[0].Amount.VariantCounts())
	assert.Equal(t, tile.ID, deltas[1].ProductID)
	assert.Equal(t, int64(3), deltas[1].Amount.Quantity())
}

func TestNetDeltasFromNothing(t *testing.T) {
	tile := snapshot(product.ModeScalar)
	deltas, err := NetDeltas(nil, []Line{{Product: tile, Amount: inventory.Scalar(5)}})
	require.NoError(t, err)
	require.Len(t, deltas, 1)
	assert.Equal(t, int64(5), deltas[0].Amount.Quantity())

	deltas, err = NetDeltas([]Line{{Product: tile, Amount: inventory.Scalar(5)}}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(-5), deltas[0].Amount.Quantity())
}

func TestListFilterMatches(t *testing.T) {
	r := record("270", "270")
	other := id.New()

	assert.True(t, ListFilter{}.Matches(r))
	assert.False(t, ListFilter{RemainingOnly: true}.Matches(r))
	assert.False(t, ListFilter{CounterpartyID: &other}.Matches(r))
	assert.True(t, ListFilter{CounterpartyID: &r.Counterparty.ID}.Matches(r))
}
