package handler

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	appintegration "github.com/openship/backend/internal/application/integration"
	"github.com/openship/backend/internal/domain/integration"
	"github.com/openship/backend/internal/interfaces/http/dto"
)

func TestPurchaseHandler_CreatePurchases(t *testing.T) {
	actor, channelA, channelB, itemID := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	purchases := new(MockPurchaseCreator)
	r := newTestRouter(actor)
	r.POST("/carts/purchases", NewPurchaseHandler(purchases).CreatePurchases)

	purchases.On("CreatePurchases", mock.Anything, actor, mock.MatchedBy(func(cmd appintegration.CreatePurchasesCommand) bool {
		return len(cmd.Items) == 2 &&
			cmd.Items[0].ID != nil && *cmd.Items[0].ID == itemID &&
			cmd.Items[0].ChannelID == channelA &&
			cmd.Items[0].Price.Equal(decimal.RequireFromString("9.99")) &&
			cmd.Items[1].ID == nil &&
			cmd.Purchase["email"] == "buyer@example.com"
	})).Return(&appintegration.PurchaseFanoutResult{Channels: []appintegration.ChannelPurchaseOutcome{
		{ChannelID: channelA, Success: true, PurchaseID: "P-1"},
		{ChannelID: channelB, Error: &appintegration.UnitError{Code: "UPSTREAM_FAILED", Message: "declined"}},
	}}, nil).Once()

	body := map[string]any{
		"items": []map[string]any{
			{"id": itemID.String(), "channelId": channelA.String(), "productId": "p1", "quantity": 1, "price": "9.99"},
			{"channelId": channelB.String(), "productId": "p2", "quantity": 2, "price": "1.00"},
		},
		"purchase": map[string]any{"email": "buyer@example.com"},
	}
	w := doRequest(r, http.MethodPost, "/carts/purchases", body)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, 2, resp.Meta.Total)
	assert.Equal(t, 1, resp.Meta.Failed)
	purchases.AssertExpectations(t)
}

func TestPurchaseHandler_CreatePurchasesValidation(t *testing.T) {
	r := newTestRouter(uuid.New())
	r.POST("/carts/purchases", NewPurchaseHandler(new(MockPurchaseCreator)).CreatePurchases)

	tests := map[string]any{
		"no items":       map[string]any{"items": []any{}},
		"bad channel":    map[string]any{"items": []map[string]any{{"channelId": "x", "productId": "p", "quantity": 1}}},
		"zero quantity":  map[string]any{"items": []map[string]any{{"channelId": uuid.NewString(), "productId": "p", "quantity": 0}}},
		"malformed json": "{",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			w := doRequest(r, http.MethodPost, "/carts/purchases", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			resp := decodeResponse(t, w)
			assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		})
	}
}

func TestPurchaseHandler_CreateChannelPurchase(t *testing.T) {
	actor, channelID := uuid.New(), uuid.New()
	purchases := new(MockPurchaseCreator)
	r := newTestRouter(actor)
	r.POST("/channels/:id/purchases", NewPurchaseHandler(purchases).CreateChannelPurchase)

	t.Run("success", func(t *testing.T) {
		purchases.On("CreateChannelPurchase", mock.Anything, actor, channelID, map[string]any{"note": "rush"}).
			Return(&appintegration.ChannelPurchaseResult{Success: true, PurchaseID: "P-9"}, nil).Once()

		w := doRequest(r, http.MethodPost, "/channels/"+channelID.String()+"/purchases", map[string]any{"note": "rush"})
		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, "P-9", resp.Data.(map[string]any)["purchaseId"])
	})

	t.Run("empty body", func(t *testing.T) {
		purchases.On("CreateChannelPurchase", mock.Anything, actor, channelID, map[string]any{}).
			Return(nil, integration.CapabilityNotConfigured(integration.CapabilityCreatePurchase)).Once()

		w := doRequest(r, http.MethodPost, "/channels/"+channelID.String()+"/purchases", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, "Create purchase function not configured.", resp.Error.Message)
	})

	t.Run("bad id", func(t *testing.T) {
		w := doRequest(r, http.MethodPost, "/channels/nope/purchases", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	purchases.AssertExpectations(t)
}
