package purchase_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"khaata/internal/app/apptest"
	"khaata/internal/core/apperror"
	"khaata/internal/core/id"
	"khaata/internal/core/types"
	"khaata/internal/domain"
	"khaata/internal/domain/audit"
	"khaata/internal/domain/catalogs/product"
	"khaata/internal/domain/conversion"
	"khaata/internal/domain/documents/khaata"
	"khaata/internal/domain/documents/purchase"
	"khaata/internal/domain/documents/sale"
)

func qty(s string) *conversion.Quantity {
	q := conversion.Compound(s)
	return &q
}

func base(n int64) *conversion.Quantity {
	q := conversion.Base(n)
	return &q
}

type fixture struct {
	*apptest.World
	supplierID id.ID
	dozen      *product.Product
}

func newFixture(t *testing.T) *fixture {
	w := apptest.New(t)
	return &fixture{
		World:      w,
		supplierID: w.Supplier("Akbar").ID,
		dozen:      w.Product("TL-100", w.Unit("Dozen", 12), product.ModeScalar),
	}
}

func (f *fixture) buy(t *testing.T, quantity, price, paid string) *purchase.Purchase {
	t.Helper()
	p, err := f.Purchases.Create(f.Ctx, purchase.CreateInput{
		SupplierID: f.supplierID,
		Lines:      []khaata.LineInput{{ProductID: f.dozen.ID, Quantity: qty(quantity), Price: types.MustMoney(price)}},
		Paid:       types.MustMoney(paid),
	})
	require.NoError(t, err)
	return p
}

func TestCreateConvertsCompoundQuantity(t *testing.T) {
	f := newFixture(t)

	p := f.buy(t, "2.3", "270", "270")

	assert.Equal(t, int64(27), f.Stock(f.dozen.ID).Quantity())
	assert.False(t, p.IsRemaining)
	assert.True(t, types.MustMoney("270").Equal(p.TotalSourcePrice()))
	assert.Equal(t, fmt.Sprintf("PU-%d-00001", time.Now().UTC().Year()), p.Number)
	require.Len(t, p.Lines, 1)
	assert.Equal(t, int64(27), p.Lines[0].Amount.Quantity())
	assert.Equal(t, int64(12), p.Lines[0].Product.Unit.Value)
	assert.Equal(t, "Akbar", p.Supplier().Name)

	stored, err := f.Purchases.GetByID(f.Ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Number, stored.Number)
}

func TestCreateOpenBalance(t *testing.T) {
	f := newFixture(t)

	p := f.buy(t, "1.0", "120", "20")
	assert.True(t, p.IsRemaining)
	assert.True(t, types.MustMoney("100").Equal(p.Remaining()))
}

func TestCreateRejectsBeforeAnyMutation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name  string
		input purchase.CreateInput
		code  string
	}{
		{
			name:  "unknown supplier",
			input: purchase.CreateInput{SupplierID: id.New(), Lines: []khaata.LineInput{{ProductID: f.dozen.ID, Quantity: qty("1.0"), Price: types.MustMoney("10")}}},
			code:  apperror.CodeSupplierNotFound,
		},
		{
			name:  "unknown product",
			input: purchase.CreateInput{SupplierID: f.supplierID, Lines: []khaata.LineInput{{ProductID: id.New(), Quantity: qty("1.0"), Price: types.MustMoney("10")}}},
			code:  apperror.CodeProductNotFound,
		},
		{
			name:  "malformed quantity",
			input: purchase.CreateInput{SupplierID: f.supplierID, Lines: []khaata.LineInput{{ProductID: f.dozen.ID, Quantity: qty("2.x"), Price: types.MustMoney("10")}}},
			code:  apperror.CodeMalformedQuantity,
		},
		{
			name:  "variants on a scalar product",
			input: purchase.CreateInput{SupplierID: f.supplierID, Lines: []khaata.LineInput{{ProductID: f.dozen.ID, Variants: map[string]conversion.Quantity{"red": conversion.Base(1)}, Price: types.MustMoney("10")}}},
			code:  apperror.CodeMalformedQuantity,
		},
		{
			name:  "paid above total",
			input: purchase.CreateInput{SupplierID: f.supplierID, Lines: []khaata.LineInput{{ProductID: f.dozen.ID, Quantity: qty("1.0"), Price: types.MustMoney("10")}}, Paid: types.MustMoney("11")},
			code:  apperror.CodeOverpaymentRejected,
		},
		{
			name:  "no lines",
			input: purchase.CreateInput{SupplierID: f.supplierID},
			code:  apperror.CodeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.Purchases.Create(f.Ctx, tt.input)
			require.Error(t, err)
			assert.True(t, apperror.HasCode(err, tt.code), "got %v", err)
		})
	}

	assert.True(t, f.Stock(f.dozen.ID).IsZero())
	n, err := f.Purchases.Count(f.Ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, f.Store.AuditEntries())
	n, err = f.Store.Purchases().Count(f.Ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestPaySequence(t *testing.T) {
	f := newFixture(t)
	p := f.buy(t, "2.3", "270", "0")

	p, err := f.Purchases.Pay(f.Ctx, p.ID, types.MustMoney("100"))
	require.NoError(t, err)
	assert.True(t, p.IsRemaining)

	_, err = f.Purchases.Pay(f.Ctx, p.ID, types.MustMoney("200"))
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeOverpaymentRejected, appErr.Code)
	assert.Equal(t, "Cannot clear khaata more than remaining. Only 170 remaining.", appErr.Message)

	_, err = f.Purchases.Pay(f.Ctx, p.ID, types.MustMoney("0"))
	assert.True(t, apperror.HasCode(err, apperror.CodeValidation))

	p, err = f.Purchases.Pay(f.Ctx, p.ID, types.MustMoney("170"))
	require.NoError(t, err)
	assert.False(t, p.IsRemaining)
	assert.True(t, types.MustMoney("270").Equal(p.Paid))

	_, err = f.Purchases.Pay(f.Ctx, p.ID, types.MustMoney("1"))
	assert.True(t, apperror.HasCode(err, apperror.CodeKhaataAlreadyCleared))

	_, err = f.Purchases.Pay(f.Ctx, id.New(), types.MustMoney("1"))
	assert.True(t, apperror.IsNotFound(err))
}

func TestPaidNeverExceedsTotal(t *testing.T) {
	f := newFixture(t)
	p := f.buy(t, "1.0", "100", "0")

	amounts := []string{"30", "50", "40", "20", "5", "1"}
	for _, a := range amounts {
		got, err := f.Purchases.Pay(f.Ctx, p.ID, types.MustMoney(a))
		if err == nil {
			p = got
		}
		assert.True(t, p.Paid.LessThanOrEqual(p.Total))
		assert.Equal(t, p.Paid.LessThan(p.Total), p.IsRemaining)
	}
	assert.True(t, types.MustMoney("100").Equal(p.Paid))
	assert.False(t, p.IsRemaining)
}

func TestRefundProratesPrice(t *testing.T) {
	f := newFixture(t)
	p := f.buy(t, "2.3", "270", "270")

	res, err := f.Purchases.Refund(f.Ctx, p.ID, []khaata.RefundInput{{ProductID: f.dozen.ID, Quantity: base(5)}})
	require.NoError(t, err)

	rec := res.Record
	require.Len(t, rec.Lines, 1)
	assert.Equal(t, int64(22), rec.Lines[0].Amount.Quantity())
	assert.True(t, types.MustMoney("220").Equal(rec.Lines[0].Price), "got %s", rec.Lines[0].Price)
	assert.Equal(t, int64(22), f.Stock(f.dozen.ID).Quantity())

	// 270 was paid against a total that is now 220.
	assert.True(t, types.MustMoney("220").Equal(rec.Total))
	assert.True(t, types.MustMoney("220").Equal(rec.Paid))
	assert.True(t, types.MustMoney("50").Equal(res.Settlement))
	assert.False(t, rec.IsRemaining)
}

func TestRefundCompoundQuantityUsesLineUnit(t *testing.T) {
	f := newFixture(t)
	p := f.buy(t, "2.3", "270", "0")

	res, err := f.Purchases.Refund(f.Ctx, p.ID, []khaata.RefundInput{{ProductID: f.dozen.ID, Quantity: qty("1.0")}})
	require.NoError(t, err)
	assert.Equal(t, int64(15), res.Record.Lines[0].Amount.Quantity())
	assert.True(t, types.MustMoney("150").Equal(res.Record.Total))
	assert.True(t, res.Record.IsRemaining)
	assert.True(t, res.Settlement.IsZero())
}

func TestFullRefundRemovesLineAndStock(t *testing.T) {
	f := newFixture(t)
	p := f.buy(t, "2.3", "270", "100")

	res, err := f.Purchases.Refund(f.Ctx, p.ID, []khaata.RefundInput{{ProductID: f.dozen.ID, Quantity: base(27)}})
	require.NoError(t, err)

	assert.Empty(t, res.Record.Lines)
	assert.True(t, res.Record.Total.IsZero())
	assert.True(t, res.Record.Paid.IsZero())
	assert.True(t, types.MustMoney("100").Equal(res.Settlement))
	assert.False(t, res.Record.IsRemaining)
	assert.True(t, f.Stock(f.dozen.ID).IsZero())

	// The emptied record is kept.
	_, err = f.Purchases.GetByID(f.Ctx, p.ID)
	assert.NoError(t, err)
}

func TestRefundVariantsBeyondOriginalLeavesStateUnchanged(t *testing.T) {
	f := newFixture(t)
	shirt := f.Product("SH-1", f.Unit("Piece", 1), product.ModeVariants)

	p, err := f.Purchases.Create(f.Ctx, purchase.CreateInput{
		SupplierID: f.supplierID,
		Lines: []khaata.LineInput{{
			ProductID: shirt.ID,
			Variants:  map[string]conversion.Quantity{"red": conversion.Base(10), "blue": conversion.Base(5)},
			Price:     types.MustMoney("150"),
		}},
	})
	require.NoError(t, err)

	_, err = f.Purchases.Refund(f.Ctx, p.ID, []khaata.RefundInput{{
		ProductID: shirt.ID,
		Variants:  map[string]conversion.Quantity{"red": conversion.Base(12)},
	}})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeRefundExceedsOriginal))

	stored, err := f.Purchases.GetByID(f.Ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"red": 10, "blue": 5}, stored.Lines[0].Amount.VariantCounts())
	assert.True(t, types.MustMoney("150").Equal(stored.Total))
	assert.Equal(t, p.Version, stored.Version)
	assert.Equal(t, map[string]int64{"red": 10, "blue": 5}, f.Stock(shirt.ID).VariantCounts())
}

func TestRefundFailsWhenStockAlreadySold(t *testing.T) {
	f := newFixture(t)
	customer := f.Customer("Bilal")
	p := f.buy(t, "2.3", "270", "0")

	_, err := f.Sales.Create(f.Ctx, sale.CreateInput{
		CustomerID: customer.ID,
		Lines:      []khaata.LineInput{{ProductID: f.dozen.ID, Quantity: qty("2.0"), Price: types.MustMoney("300")}},
	})
	require.NoError(t, err)

	_, err = f.Purchases.Refund(f.Ctx, p.ID, []khaata.RefundInput{{ProductID: f.dozen.ID, Quantity: base(5)}})
	assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientStock))

	stored, err := f.Purchases.GetByID(f.Ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(27), stored.Lines[0].Amount.Quantity())
	assert.Equal(t, int64(3), f.Stock(f.dozen.ID).Quantity())
}

func TestEditAppliesNetDelta(t *testing.T) {
	f := newFixture(t)
	customer := f.Customer("Bilal")
	p := f.buy(t, "2.3", "270", "270")

	p, err := f.Purchases.Edit(f.Ctx, p.ID, khaata.EditInput{
		Lines: []khaata.LineInput{{ProductID: f.dozen.ID, Quantity: qty("3.0"), Price: types.MustMoney("360")}},
		Paid:  types.MustMoney("270"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(36), f.Stock(f.dozen.ID).Quantity())
	assert.True(t, types.MustMoney("360").Equal(p.Total))
	assert.True(t, p.IsRemaining)

	_, err = f.Sales.Create(f.Ctx, sale.CreateInput{
		CustomerID: customer.ID,
		Lines:      []khaata.LineInput{{ProductID: f.dozen.ID, Quantity: qty("2.6"), Price: types.MustMoney("400")}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(6), f.Stock(f.dozen.ID).Quantity())

	// 36 -> 24 would need 12 back but only 6 are left.
	_, err = f.Purchases.Edit(f.Ctx, p.ID, khaata.EditInput{
		Lines: []khaata.LineInput{{ProductID: f.dozen.ID, Quantity: qty("2.0"), Price: types.MustMoney("240")}},
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeInsufficientStock))
	stored, err := f.Purchases.GetByID(f.Ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(36), stored.Lines[0].Amount.Quantity())
	assert.Equal(t, int64(6), f.Stock(f.dozen.ID).Quantity())

	// 36 -> 30 consumes exactly what is left.
	p, err = f.Purchases.Edit(f.Ctx, p.ID, khaata.EditInput{
		Lines: []khaata.LineInput{{ProductID: f.dozen.ID, Quantity: qty("2.6"), Price: types.MustMoney("300")}},
		Paid:  types.MustMoney("300"),
	})
	require.NoError(t, err)
	assert.True(t, f.Stock(f.dozen.ID).IsZero())
	assert.False(t, p.IsRemaining)
}

func TestEditAggregatesRepeatedProduct(t *testing.T) {
	f := newFixture(t)
	p := f.buy(t, "2.3", "270", "0")

	p, err := f.Purchases.Edit(f.Ctx, p.ID, khaata.EditInput{
		Lines: []khaata.LineInput{
			{ProductID: f.dozen.ID, Quantity: qty("1.0"), Price: types.MustMoney("120")},
			{ProductID: f.dozen.ID, Quantity: base(5), Price: types.MustMoney("50")},
		},
	})
	require.NoError(t, err)
	assert.Len(t, p.Lines, 2)
	assert.Equal(t, int64(17), f.Stock(f.dozen.ID).Quantity())
	assert.True(t, types.MustMoney("170").Equal(p.Total))
}

func TestEditRejectsPaidAboveTotal(t *testing.T) {
	f := newFixture(t)
	p := f.buy(t, "2.3", "270", "0")

	_, err := f.Purchases.Edit(f.Ctx, p.ID, khaata.EditInput{
		Lines: []khaata.LineInput{{ProductID: f.dozen.ID, Quantity: qty("1.0"), Price: types.MustMoney("120")}},
		Paid:  types.MustMoney("200"),
	})
	assert.True(t, apperror.HasCode(err, apperror.CodeOverpaymentRejected))
	assert.Equal(t, int64(27), f.Stock(f.dozen.ID).Quantity())
}

func TestDeleteKeepsStock(t *testing.T) {
	f := newFixture(t)
	a := f.buy(t, "1.0", "120", "0")
	b := f.buy(t, "1.0", "120", "0")

	err := f.Purchases.Delete(f.Ctx, []id.ID{a.ID, id.New()})
	assert.True(t, apperror.IsNotFound(err))
	n, err := f.Purchases.Count(f.Ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, f.Purchases.Delete(f.Ctx, []id.ID{a.ID, b.ID}))
	n, err = f.Purchases.Count(f.Ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, int64(24), f.Stock(f.dozen.ID).Quantity())
}

func TestListFilters(t *testing.T) {
	f := newFixture(t)
	other := f.Supplier("Rehman")

	open := f.buy(t, "1.0", "120", "0")
	f.buy(t, "1.0", "120", "120")
	_, err := f.Purchases.Create(f.Ctx, purchase.CreateInput{
		SupplierID: other.ID,
		Lines:      []khaata.LineInput{{ProductID: f.dozen.ID, Quantity: qty("1.0"), Price: types.MustMoney("120")}},
	})
	require.NoError(t, err)

	all, err := f.Purchases.List(f.Ctx, khaata.ListFilter{ListFilter: domain.DefaultListFilter()})
	require.NoError(t, err)
	assert.Equal(t, int64(3), all.TotalCount)

	remaining, err := f.Purchases.List(f.Ctx, khaata.ListFilter{
		ListFilter:     domain.DefaultListFilter(),
		CounterpartyID: &f.supplierID,
		RemainingOnly:  true,
	})
	require.NoError(t, err)
	require.Len(t, remaining.Items, 1)
	assert.Equal(t, open.ID, remaining.Items[0].ID)

	paged, err := f.Purchases.List(f.Ctx, khaata.ListFilter{ListFilter: domain.ListFilter{Limit: 2, Offset: 2}})
	require.NoError(t, err)
	assert.Len(t, paged.Items, 1)
	assert.Equal(t, int64(3), paged.TotalCount)
}

func TestAuditTrail(t *testing.T) {
	f := newFixture(t)
	p := f.buy(t, "2.3", "270", "0")

	_, err := f.Purchases.Pay(f.Ctx, p.ID, types.MustMoney("70"))
	require.NoError(t, err)
	_, err = f.Purchases.Refund(f.Ctx, p.ID, []khaata.RefundInput{{ProductID: f.dozen.ID, Quantity: base(7)}})
	require.NoError(t, err)
	require.NoError(t, f.Purchases.Delete(f.Ctx, []id.ID{p.ID}))

	entries := f.Store.AuditEntries()
	require.Len(t, entries, 4)
	actions := make([]audit.Action, len(entries))
	for i, e := range entries {
		actions[i] = e.Action
		assert.Equal(t, "purchase", e.EntityType)
		assert.Equal(t, p.ID, e.EntityID)
	}
	assert.Equal(t, []audit.Action{audit.ActionCreate, audit.ActionPay, audit.ActionRefund, audit.ActionDelete}, actions)
	assert.Equal(t, map[string]any{"old": "0", "new": "70"}, entries[1].Changes["paid"])
}

// brokenRepo fails every write after the stock has moved.
type brokenRepo struct {
	purchase.Repository
}

func (brokenRepo) Create(context.Context, *purchase.Purchase) error {
	return apperror.NewInternal(errors.New("disk full"))
}

func TestCreateStoreFailureRollsBackStock(t *testing.T) {
	f := newFixture(t)
	svc := purchase.NewService(purchase.Deps{
		Repo:      brokenRepo{f.Store.Purchases()},
		TxManager: f.Store,
		Stock:     f.Inventory,
		Products:  f.Products,
		Suppliers: f.Counterparties,
		Numerator: f.Store.Numerator(),
		Audit:     f.Store.Audit(),
	})

	_, err := svc.Create(f.Ctx, purchase.CreateInput{
		SupplierID: f.supplierID,
		Lines:      []khaata.LineInput{{ProductID: f.dozen.ID, Quantity: qty("2.3"), Price: types.MustMoney("270")}},
		Paid:       types.MustMoney("0"),
	})
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeInternal))
	assert.True(t, f.Stock(f.dozen.ID).IsZero())
	assert.Empty(t, f.Store.AuditEntries())
	n, err := f.Store.Purchases().Count(f.Ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
