package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openship/backend/internal/domain/integration"
	"github.com/openship/backend/internal/infrastructure/auth"
	"github.com/openship/backend/internal/infrastructure/config"
	"github.com/openship/backend/internal/interfaces/http/handler"
	"github.com/openship/backend/internal/interfaces/http/middleware"
)

type recordingDispatcher struct {
	mu     sync.Mutex
	events []integration.WebhookEvent
}

func (d *recordingDispatcher) Dispatch(_ context.Context, e integration.WebhookEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, e)
}

func newTestEngine(t *testing.T, dispatcher handler.WebhookDispatcher, webhookLimit int) (http.Handler, *auth.JWTService) {
	t.Helper()
	jwtSvc := auth.NewJWTService(config.JWTConfig{Secret: "router-test-secret", AccessTokenExpiration: time.Minute})
	engine, err := NewEngine(Options{
		HTTP:             config.HTTPConfig{MaxBodySize: 1 << 10},
		ServiceName:      "openship-test",
		Metrics:          middleware.NewHTTPMetrics(prometheus.NewRegistry()),
		Auth:             jwtSvc,
		WebhookRateLimit: webhookLimit,
	}, Handlers{
		System:       handler.NewSystemHandler(nil, "test"),
		Orders:       handler.NewOrderHandler(nil),
		Purchases:    handler.NewPurchaseHandler(nil),
		Capabilities: handler.NewCapabilityHandler(nil),
		Webhooks:     handler.NewWebhookHandler(dispatcher),
	})
	require.NoError(t, err)
	return engine, jwtSvc
}

func TestNewEngine_PublicRoutes(t *testing.T) {
	engine, _ := newTestEngine(t, &recordingDispatcher{}, 0)

	w := serve(engine, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	w = serve(engine, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "openship_http_requests_total")
}

func TestNewEngine_AuthRequired(t *testing.T) {
	engine, _ := newTestEngine(t, &recordingDispatcher{}, 0)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/shops/orders/search"},
		{http.MethodPost, "/api/v1/carts/purchases"},
		{http.MethodPost, "/api/v1/channels/" + uuid.NewString() + "/purchases"},
		{http.MethodPost, "/api/v1/shops/" + uuid.NewString() + "/capabilities/getWebhooks"},
		{http.MethodGet, "/api/v1/o-auth/shop/" + uuid.NewString()},
	} {
		w := serve(engine, tc.method, tc.path)
		assert.Equal(t, http.StatusUnauthorized, w.Code, tc.path)
	}
}

func TestNewEngine_AuthenticatedValidation(t *testing.T) {
	engine, jwtSvc := newTestEngine(t, &recordingDispatcher{}, 0)
	token, _, err := jwtSvc.GenerateAccessToken(uuid.New(), "ada")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/carts/purchases", strings.NewReader(`{"items":[]}`))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNewEngine_Webhooks(t *testing.T) {
	dispatcher := &recordingDispatcher{}
	engine, _ := newTestEngine(t, dispatcher, 2)
	shopID := uuid.NewString()

	post := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{"id":1}`)))
		return w
	}

	w := post("/api/v1/webhooks/shop/" + shopID + "/cancel-order")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `{"received":true}`, w.Body.String())

	assert.Equal(t, http.StatusOK, post("/api/v1/webhooks/shop/"+shopID+"/create-order").Code)
	assert.Equal(t, http.StatusTooManyRequests, post("/api/v1/webhooks/shop/"+shopID+"/create-order").Code)
	assert.Equal(t, http.StatusOK, post("/api/v1/webhooks/shop/"+uuid.NewString()+"/create-order").Code)

	assert.Len(t, dispatcher.events, 3)
}

func TestNewEngine_BodyLimit(t *testing.T) {
	engine, _ := newTestEngine(t, &recordingDispatcher{}, 0)

	w := httptest.NewRecorder()
	body := strings.NewReader(strings.Repeat("x", 4<<10))
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/shop/"+uuid.NewString()+"/cancel-order", body))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
