package ecommerce

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openship/backend/internal/domain/integration"
)

type douyinCall struct {
	Path   string
	Method string
	Params map[string]any
	Sign   string
}

func newDouyinTestServer(t *testing.T, reply func(call douyinCall) any) (*httptest.Server, *[]douyinCall) {
	t.Helper()
	var calls []douyinCall
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "app", body["app_key"])
		assert.Equal(t, "token-1", body["access_token"])

		call := douyinCall{Path: r.URL.Path, Method: body["method"], Sign: body["sign"]}
		require.NoError(t, json.Unmarshal([]byte(body["param_json"]), &call.Params))
		calls = append(calls, call)

		_ = json.NewEncoder(w).Encode(reply(call))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func newTestDouyinModule() *DouyinModule {
	m := NewDouyinModule(DouyinConfig{AppKey: "app", AppSecret: "secret"}, nil)
	m.now = func() time.Time { return time.Unix(1700000000, 0) }
	return m
}

func douyinRequest(domain string, fields map[string]any) integration.AdapterRequest {
	return integration.NewAdapterRequest(integration.Credentials{Domain: domain, AccessToken: "token-1"}, fields)
}

func TestDouyinConfig_Sign(t *testing.T) {
	c := DouyinConfig{AppKey: "app", AppSecret: "secret"}
	s1 := c.Sign("/order/create", `{"a":1}`, "1700000000", "2")
	assert.Len(t, s1, 64)
	assert.Equal(t, s1, c.Sign("/order/create", `{"a":1}`, "1700000000", "2"))
	assert.NotEqual(t, s1, c.Sign("/order/create", `{"a":2}`, "1700000000", "2"))
}

func TestDouyinModule_CreatePurchase(t *testing.T) {
	srv, calls := newDouyinTestServer(t, func(call douyinCall) any {
		return map[string]any{"err_no": 0, "data": map[string]any{"order_id": "DY-9", "pay_url": "https://pay.example/DY-9"}}
	})

	out, err := newTestDouyinModule().CreatePurchase(context.Background(), douyinRequest(srv.URL, map[string]any{
		"orderId":        "ORD-1",
		"firstName":      "Li",
		"lastName":       "Lei",
		"streetAddress1": "1 Road",
		"city":           "Shanghai",
		"phone":          "139",
		"cartItems": []map[string]any{
			{"productId": "11", "variantId": "22", "quantity": 2},
			{"productId": "33", "quantity": 1},
		},
	}))
	require.NoError(t, err)
	assert.Equal(t, "DY-9", out.String("purchaseId"))
	assert.Equal(t, "https://pay.example/DY-9", out.String("url"))

	require.Len(t, *calls, 1)
	call := (*calls)[0]
	assert.Equal(t, "/order/create", call.Path)
	assert.Equal(t, "ORD-1", call.Params["out_order_no"])
	items, ok := call.Params["items"].([]any)
	require.True(t, ok)
	assert.Len(t, items, 2)
	receiver := call.Params["post_receiver"].(map[string]any)
	assert.Equal(t, "Li Lei", receiver["name"])
	assert.Len(t, call.Sign, 64)
}

func TestDouyinModule_CreatePurchase_Errors(t *testing.T) {
	t.Run("platform error becomes error field", func(t *testing.T) {
		srv, _ := newDouyinTestServer(t, func(douyinCall) any {
			return map[string]any{"err_no": 30001, "message": "sku sold out"}
		})
		out, err := newTestDouyinModule().CreatePurchase(context.Background(), douyinRequest(srv.URL, map[string]any{
			"cartItems": []map[string]any{{"productId": "11", "quantity": 1}},
		}))
		require.NoError(t, err)
		assert.Equal(t, "sku sold out", out.ErrorMessage())
	})

	t.Run("empty cart", func(t *testing.T) {
		out, err := newTestDouyinModule().CreatePurchase(context.Background(), douyinRequest("", map[string]any{}))
		require.NoError(t, err)
		assert.Equal(t, "No cart items to purchase", out.ErrorMessage())
	})

	t.Run("missing access token", func(t *testing.T) {
		req := integration.NewAdapterRequest(integration.Credentials{}, map[string]any{
			"cartItems": []map[string]any{{"productId": "11", "quantity": 1}},
		})
		_, err := newTestDouyinModule().CreatePurchase(context.Background(), req)
		assert.ErrorIs(t, err, ErrDouyinConfigMissingAccessToken)
	})
}

func TestDouyinModule_SearchProducts(t *testing.T) {
	srv, calls := newDouyinTestServer(t, func(douyinCall) any {
		return map[string]any{"err_no": 0, "data": map[string]any{
			"total": 1,
			"data": []map[string]any{
				{"product_id": 11, "name": "Mug", "discount_price": 1990, "status": 0,
					"sku_list": []map[string]any{{"sku_id": 22, "stock_num": 3, "price": 1990}}},
			},
		}}
	})

	out, err := newTestDouyinModule().SearchProducts(context.Background(), douyinRequest(srv.URL, map[string]any{"searchEntry": "mug"}))
	require.NoError(t, err)

	var body struct {
		Products []Product `json:"products"`
	}
	require.NoError(t, out.Decode(&body))
	require.Len(t, body.Products, 1)
	assert.Equal(t, "11", body.Products[0].ProductID)
	assert.Equal(t, "19.9", body.Products[0].Price.String())
	assert.Equal(t, int64(3), body.Products[0].Inventory)
	assert.Equal(t, "mug", (*calls)[0].Params["name"])
}

func TestDouyinModule_GetProduct(t *testing.T) {
	srv, _ := newDouyinTestServer(t, func(call douyinCall) any {
		assert.Equal(t, float64(11), call.Params["product_id"])
		return map[string]any{"err_no": 0, "data": map[string]any{"product": map[string]any{
			"product_id": 11, "name": "Mug", "discount_price": 1990, "status": 0,
			"sku_list": []map[string]any{
				{"sku_id": 22, "stock_num": 0, "price": 2500, "spec_detail": []map[string]any{{"spec_name": "color", "value_name": "red"}}},
			},
		}}}
	})

	out, err := newTestDouyinModule().GetProduct(context.Background(), douyinRequest(srv.URL, map[string]any{
		"productId": "11", "variantId": "22",
	}))
	require.NoError(t, err)

	var body struct {
		Product Product `json:"product"`
	}
	require.NoError(t, out.Decode(&body))
	assert.Equal(t, "Mug red", body.Product.Title)
	assert.Equal(t, "25", body.Product.Price.String())
	assert.False(t, body.Product.AvailableForSale)
}
