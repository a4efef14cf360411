package handler

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	appintegration "github.com/openship/backend/internal/application/integration"
	"github.com/openship/backend/internal/domain/integration"
	"github.com/openship/backend/internal/domain/shared"
)

func newCapabilityRouter(actor uuid.UUID, exec CapabilityExecutor) http.Handler {
	h := NewCapabilityHandler(exec)
	r := newTestRouter(actor)
	r.POST("/shops/:id/capabilities/:capability", h.ExecuteForShop)
	r.POST("/channels/:id/capabilities/:capability", h.ExecuteForChannel)
	r.GET("/o-auth/:kind/:platformId", h.OAuthStart)
	r.GET("/o-auth/:kind/callback/:platformId", h.OAuthCallback)
	return r
}

func TestCapabilityHandler_Execute(t *testing.T) {
	actor, shopID, channelID := uuid.New(), uuid.New(), uuid.New()
	exec := new(MockCapabilityExecutor)
	r := newCapabilityRouter(actor, exec)

	t.Run("shop by export name", func(t *testing.T) {
		exec.On("ExecuteForShop", mock.Anything, actor, shopID, integration.CapabilitySearchProducts, map[string]any{"q": "ring"}).
			Return(integration.AdapterResult{"products": []any{}}, nil).Once()

		w := doRequest(r, http.MethodPost, "/shops/"+shopID.String()+"/capabilities/searchProducts", map[string]any{"q": "ring"})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("channel by config name", func(t *testing.T) {
		exec.On("ExecuteForChannel", mock.Anything, actor, channelID, integration.CapabilitySearchProducts, map[string]any{}).
			Return(integration.AdapterResult{"ok": true}, nil).Once()

		w := doRequest(r, http.MethodPost, "/channels/"+channelID.String()+"/capabilities/searchProductsFunction", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, true, resp.Data.(map[string]any)["ok"])
	})

	t.Run("rejected by service", func(t *testing.T) {
		exec.On("ExecuteForShop", mock.Anything, actor, shopID, integration.CapabilityCreatePurchase, map[string]any{}).
			Return(nil, shared.NewDomainError(shared.CodeInvalidInput, "capability not available")).Once()

		w := doRequest(r, http.MethodPost, "/shops/"+shopID.String()+"/capabilities/createPurchase", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown capability", func(t *testing.T) {
		w := doRequest(r, http.MethodPost, "/shops/"+shopID.String()+"/capabilities/launchRockets", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, "capability", resp.Error.Details[0].Field)
	})

	t.Run("non-object body", func(t *testing.T) {
		w := doRequest(r, http.MethodPost, "/shops/"+shopID.String()+"/capabilities/searchProducts", "[1,2]")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	exec.AssertExpectations(t)
}

func TestCapabilityHandler_OAuth(t *testing.T) {
	actor, platformID := uuid.New(), uuid.New()
	exec := new(MockCapabilityExecutor)
	r := newCapabilityRouter(actor, exec)

	t.Run("start", func(t *testing.T) {
		exec.On("OAuthURL", mock.Anything, actor, integration.PlatformKindShop, platformID, "acme.myshopify.com").
			Return("https://acme.myshopify.com/admin/oauth/authorize", nil).Once()

		w := doRequest(r, http.MethodGet, "/o-auth/shop/"+platformID.String()+"?domain=acme.myshopify.com", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, "https://acme.myshopify.com/admin/oauth/authorize", resp.Data.(map[string]any)["authUrl"])
	})

	t.Run("start without domain", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/o-auth/shop/"+platformID.String(), nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("start with bad kind", func(t *testing.T) {
		w := doRequest(r, http.MethodGet, "/o-auth/store/"+platformID.String()+"?domain=a", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("callback", func(t *testing.T) {
		account := &appintegration.OAuthAccount{Kind: integration.PlatformKindChannel, ID: uuid.New(), Name: "Acme", Domain: "acme.example.com"}
		exec.On("OAuthCallback", mock.Anything, actor, integration.PlatformKindChannel, platformID,
			map[string]string{"code": "abc", "shop": "acme.example.com"}).Return(account, nil).Once()

		w := doRequest(r, http.MethodGet, "/o-auth/channel/callback/"+platformID.String()+"?code=abc&shop=acme.example.com", nil)
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("callback platform missing", func(t *testing.T) {
		exec.On("OAuthCallback", mock.Anything, actor, integration.PlatformKindShop, platformID, map[string]string{}).
			Return(nil, &integration.NotFoundError{Kind: "Platform"}).Once()

		w := doRequest(r, http.MethodGet, "/o-auth/shop/callback/"+platformID.String(), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	exec.AssertExpectations(t)
}
