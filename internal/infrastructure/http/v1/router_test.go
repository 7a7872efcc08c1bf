package v1_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"khaata/internal/app/apptest"
	"khaata/internal/domain/auth"
	"khaata/internal/domain/catalogs/product"
	v1 "khaata/internal/infrastructure/http/v1"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type api struct {
	t      *testing.T
	router *gin.Engine
	token  string
}

func newAPI(t *testing.T, w *apptest.World) *api {
	return &api{t: t, router: v1.NewRouter(v1.RouterConfig{Services: w.Services, AuthDisabled: true})}
}

func (a *api) do(method, path string, body any) (int, map[string]any) {
	a.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	var out map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(a.t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec.Code, out
}

func line(productID, quantity any, price string) map[string]any {
	return map[string]any{"productId": productID, "quantity": quantity, "price": price}
}

func TestPurchaseFlow(t *testing.T) {
	w := apptest.New(t)
	p := w.Product("TL-100", w.Unit("Dozen", 12), product.ModeScalar)
	supplier := w.Supplier("Akbar")
	a := newAPI(t, w)

	code, body := a.do(http.MethodPost, "/api/v1/purchases", map[string]any{
		"supplierId": supplier.ID,
		"lines":      []any{line(p.ID, "2.3", "270")},
		"paid":       "100",
	})
	require.Equal(t, http.StatusCreated, code, body)
	assert.Regexp(t, `^PU-\d{4}-00001$`, body["number"])
	assert.Equal(t, "270", body["totalSourcePrice"])
	assert.Equal(t, "170", body["remaining"])
	assert.Equal(t, true, body["isRemaining"])
	assert.Equal(t, "Akbar", body["supplier"].(map[string]any)["name"])
	assert.Equal(t, "anonymous", body["createdBy"])

	first := body["lines"].([]any)[0].(map[string]any)
	assert.Equal(t, []any{2.0, 3.0}, first["quantity"])
	assert.Equal(t, 27.0, first["baseQuantity"])

	purchaseID := body["id"].(string)

	code, body = a.do(http.MethodPost, "/api/v1/purchases/"+purchaseID+"/pay", map[string]any{"amount": "500"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "OVERPAYMENT_REJECTED", body["code"])
	assert.Equal(t, "state_conflict", body["class"])
	assert.Equal(t, "Cannot clear khaata more than remaining. Only 170 remaining.", body["message"])

	code, body = a.do(http.MethodPost, "/api/v1/purchases/"+purchaseID+"/refund", map[string]any{
		"items": []any{map[string]any{"productId": p.ID, "quantity": "1.0"}},
	})
	require.Equal(t, http.StatusOK, code, body)
	record := body["record"].(map[string]any)
	assert.Equal(t, "150", record["total"])
	assert.Equal(t, "50", record["remaining"])
	assert.Equal(t, "0", body["settlement"])

	code, body = a.do(http.MethodGet, "/api/v1/inventory/"+p.ID.String(), nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []any{1.0, 3.0}, body["quantity"])
	assert.Equal(t, 15.0, body["baseQuantity"])

	code, body = a.do(http.MethodPost, "/api/v1/purchases/"+purchaseID+"/pay", map[string]any{"amount": "50"})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, false, body["isRemaining"])

	code, body = a.do(http.MethodPost, "/api/v1/purchases/"+purchaseID+"/pay", map[string]any{"amount": "1"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "KHAATA_ALREADY_CLEARED", body["code"])
}

func TestMalformedQuantityRejectedAtBinding(t *testing.T) {
	w := apptest.New(t)
	p := w.Product("TL-100", w.Unit("Dozen", 12), product.ModeScalar)
	supplier := w.Supplier("Akbar")
	a := newAPI(t, w)

	for _, q := range []any{"2.x", "-1", -4} {
		code, body := a.do(http.MethodPost, "/api/v1/purchases", map[string]any{
			"supplierId": supplier.ID,
			"lines":      []any{line(p.ID, q, "10")},
			"paid":       "0",
		})
		assert.Equal(t, http.StatusBadRequest, code, "quantity %v", q)
		assert.Equal(t, "VALIDATION_ERROR", body["code"])
	}

	code, body := a.do(http.MethodGet, "/api/v1/purchases/count", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 0.0, body["count"])
}

func TestPriceAndPaidRequired(t *testing.T) {
	w := apptest.New(t)
	p := w.Product("TL-100", w.Unit("Dozen", 12), product.ModeScalar)
	supplier := w.Supplier("Akbar")
	customer := w.Customer("Bilal")
	a := newAPI(t, w)

	noPrice := map[string]any{"productId": p.ID, "quantity": "1.0"}

	tests := []struct {
		name string
		path string
		body map[string]any
	}{
		{
			name: "purchase without paid",
			path: "/api/v1/purchases",
			body: map[string]any{"supplierId": supplier.ID, "lines": []any{line(p.ID, "1.0", "120")}},
		},
		{
			name: "purchase line without price",
			path: "/api/v1/purchases",
			body: map[string]any{"supplierId": supplier.ID, "lines": []any{noPrice}, "paid": "0"},
		},
		{
			name: "purchase with null paid",
			path: "/api/v1/purchases",
			body: map[string]any{"supplierId": supplier.ID, "lines": []any{line(p.ID, "1.0", "120")}, "paid": nil},
		},
		{
			name: "sale without paid",
			path: "/api/v1/sales",
			body: map[string]any{"customerId": customer.ID, "lines": []any{line(p.ID, "1.0", "150")}},
		},
		{
			name: "sale line without price",
			path: "/api/v1/sales",
			body: map[string]any{"customerId": customer.ID, "lines": []any{noPrice}, "paid": "0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := a.do(http.MethodPost, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, code, body)
			assert.Equal(t, "VALIDATION_ERROR", body["code"])
			assert.Equal(t, "client_input", body["class"])
		})
	}

	for _, path := range []string{"/api/v1/purchases/count", "/api/v1/sales/count"} {
		code, body := a.do(http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, 0.0, body["count"], path)
	}
	assert.True(t, w.Stock(p.ID).IsZero())

	// A zero price and a zero payment are explicit values, not missing ones.
	code, body := a.do(http.MethodPost, "/api/v1/purchases", map[string]any{
		"supplierId": supplier.ID,
		"lines":      []any{line(p.ID, "1.0", "0")},
		"paid":       "0",
	})
	require.Equal(t, http.StatusCreated, code, body)
	purchaseID := body["id"].(string)

	code, body = a.do(http.MethodPut, "/api/v1/purchases/"+purchaseID, map[string]any{
		"lines": []any{line(p.ID, "2.0", "240")},
	})
	assert.Equal(t, http.StatusBadRequest, code, body)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])

	code, body = a.do(http.MethodPut, "/api/v1/purchases/"+purchaseID, map[string]any{
		"lines": []any{noPrice},
		"paid":  "0",
	})
	assert.Equal(t, http.StatusBadRequest, code, body)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])

	assert.Equal(t, int64(12), w.Stock(p.ID).Quantity())
}

func TestSaleInsufficientStock(t *testing.T) {
	w := apptest.New(t)
	p := w.Product("TL-100", w.Unit("Dozen", 12), product.ModeScalar)
	customer := w.Customer("Bilal")
	a := newAPI(t, w)

	code, body := a.do(http.MethodPost, "/api/v1/sales", map[string]any{
		"customerId": customer.ID,
		"lines":      []any{line(p.ID, 5, "50")},
		"paid":       "0",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "INSUFFICIENT_STOCK", body["code"])
	assert.Equal(t, "state_conflict", body["class"])
}

func TestLedgerBulkDelete(t *testing.T) {
	w := apptest.New(t)
	p := w.Product("TL-100", w.Unit("Dozen", 12), product.ModeScalar)
	supplier := w.Supplier("Akbar")
	a := newAPI(t, w)

	var ids []string
	for range 2 {
		code, body := a.do(http.MethodPost, "/api/v1/purchases", map[string]any{
			"supplierId": supplier.ID,
			"lines":      []any{line(p.ID, 12, "120")},
			"paid":       "0",
		})
		require.Equal(t, http.StatusCreated, code, body)
		ids = append(ids, body["id"].(string))
	}

	code, body := a.do(http.MethodGet, "/api/v1/purchases?remainingOnly=true&sort=-createdAt", nil)
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, 2.0, body["totalCount"])

	code, _ = a.do(http.MethodDelete, "/api/v1/purchases/"+ids[0]+","+ids[1], nil)
	assert.Equal(t, http.StatusNoContent, code)

	code, body = a.do(http.MethodGet, "/api/v1/purchases/count", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 0.0, body["count"])

	// Deleting the money record leaves the goods where they are.
	assert.Equal(t, int64(24), w.Stock(p.ID).Quantity())
}

func TestInventoryAdjustReportsEachItem(t *testing.T) {
	w := apptest.New(t)
	p := w.Product("TL-100", w.Unit("Dozen", 12), product.ModeScalar)
	a := newAPI(t, w)

	code, body := a.do(http.MethodPost, "/api/v1/inventory/adjust", map[string]any{
		"items": []any{
			map[string]any{"productId": p.ID, "direction": "in", "quantity": "1.2"},
			map[string]any{"productId": p.ID, "direction": "out", "quantity": 100},
		},
	})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, 1.0, body["applied"])
	assert.Equal(t, 1.0, body["failed"])

	results := body["results"].([]any)
	failed := results[1].(map[string]any)["error"].(map[string]any)
	assert.Equal(t, "INSUFFICIENT_STOCK", failed["code"])
	assert.Equal(t, int64(14), w.Stock(p.ID).Quantity())

	code, body = a.do(http.MethodGet, "/api/v1/inventory", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1.0, body["totalCount"])
}

func TestCatalogRoutes(t *testing.T) {
	w := apptest.New(t)
	a := newAPI(t, w)

	code, body := a.do(http.MethodPost, "/api/v1/catalog/categories", map[string]any{"title": "ab"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])

	code, body = a.do(http.MethodPost, "/api/v1/catalog/units", map[string]any{
		"title": "Dozen", "value": 12, "categoryId": w.CategoryID(),
	})
	require.Equal(t, http.StatusCreated, code, body)
	unitID := body["id"]

	code, body = a.do(http.MethodPost, "/api/v1/catalog/products", map[string]any{
		"modelNumber": "TL-100", "categoryId": w.CategoryID(), "unitId": unitID, "mode": "variants",
	})
	require.Equal(t, http.StatusCreated, code, body)
	assert.Equal(t, "variants", body["mode"])

	code, body = a.do(http.MethodGet, "/api/v1/catalog/products?search=tl", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1.0, body["totalCount"])

	code, _ = a.do(http.MethodGet, "/api/v1/catalog/products/not-an-id", nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = a.do(http.MethodGet, "/api/v1/catalog/suppliers?sort=name", nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", body["code"])
}

func TestAuthRequired(t *testing.T) {
	w := apptest.New(t)
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig("secret"))
	a := &api{t: t, router: v1.NewRouter(v1.RouterConfig{Services: w.Services, JWTValidator: jwtService})}

	code, body := a.do(http.MethodGet, "/api/v1/catalog/categories", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "UNAUTHORIZED", body["code"])

	a.token = "garbage"
	code, _ = a.do(http.MethodGet, "/api/v1/catalog/categories", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	token, _, err := jwtService.GenerateAccessToken("u-1", "Clerk", nil)
	require.NoError(t, err)
	a.token = token
	code, body = a.do(http.MethodGet, "/api/v1/catalog/categories", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 1.0, body["totalCount"])

	code, _ = a.do(http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestTraceHeaders(t *testing.T) {
	w := apptest.New(t)
	router := v1.NewRouter(v1.RouterConfig{Services: w.Services, AuthDisabled: true})

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", rec.Header().Get("X-Trace-ID"))
	assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Len(t, rec.Header().Get("X-Trace-ID"), 32)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
