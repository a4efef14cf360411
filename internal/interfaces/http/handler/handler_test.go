package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	appintegration "github.com/openship/backend/internal/application/integration"
	"github.com/openship/backend/internal/domain/integration"
	"github.com/openship/backend/internal/interfaces/http/dto"
	"github.com/openship/backend/internal/interfaces/http/middleware"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	if err := middleware.RegisterValidators(); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// newTestRouter authenticates every request as actor; uuid.Nil leaves it anonymous
func newTestRouter(actor uuid.UUID) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("request_id", "req-test")
		if actor != uuid.Nil {
			c.Set(middleware.UserIDKey, actor)
		}
		c.Next()
	})
	return r
}

func doRequest(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

type MockOrderSearcher struct{ mock.Mock }

func (m *MockOrderSearcher) Search(ctx context.Context, actorID uuid.UUID, q appintegration.SearchOrdersQuery) (*appintegration.OrderSearchResult, error) {
	args := m.Called(ctx, actorID, q)
	if r := args.Get(0); r != nil {
		return r.(*appintegration.OrderSearchResult), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockPurchaseCreator struct{ mock.Mock }

func (m *MockPurchaseCreator) CreatePurchases(ctx context.Context, actorID uuid.UUID, cmd appintegration.CreatePurchasesCommand) (*appintegration.PurchaseFanoutResult, error) {
	args := m.Called(ctx, actorID, cmd)
	if r := args.Get(0); r != nil {
		return r.(*appintegration.PurchaseFanoutResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPurchaseCreator) CreateChannelPurchase(ctx context.Context, actorID, channelID uuid.UUID, fields map[string]any) (*appintegration.ChannelPurchaseResult, error) {
	args := m.Called(ctx, actorID, channelID, fields)
	if r := args.Get(0); r != nil {
		return r.(*appintegration.ChannelPurchaseResult), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockCapabilityExecutor struct{ mock.Mock }

func (m *MockCapabilityExecutor) ExecuteForShop(ctx context.Context, actorID, shopID uuid.UUID, c integration.Capability, fields map[string]any) (integration.AdapterResult, error) {
	args := m.Called(ctx, actorID, shopID, c, fields)
	r, _ := args.Get(0).(integration.AdapterResult)
	return r, args.Error(1)
}

func (m *MockCapabilityExecutor) ExecuteForChannel(ctx context.Context, actorID, channelID uuid.UUID, c integration.Capability, fields map[string]any) (integration.AdapterResult, error) {
	args := m.Called(ctx, actorID, channelID, c, fields)
	r, _ := args.Get(0).(integration.AdapterResult)
	return r, args.Error(1)
}

func (m *MockCapabilityExecutor) OAuthURL(ctx context.Context, actorID uuid.UUID, kind integration.PlatformKind, platformID uuid.UUID, domain string) (string, error) {
	args := m.Called(ctx, actorID, kind, platformID, domain)
	return args.String(0), args.Error(1)
}

func (m *MockCapabilityExecutor) OAuthCallback(ctx context.Context, actorID uuid.UUID, kind integration.PlatformKind, platformID uuid.UUID, params map[string]string) (*appintegration.OAuthAccount, error) {
	args := m.Called(ctx, actorID, kind, platformID, params)
	if r := args.Get(0); r != nil {
		return r.(*appintegration.OAuthAccount), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockWebhookDispatcher struct{ mock.Mock }

func (m *MockWebhookDispatcher) Dispatch(ctx context.Context, event integration.WebhookEvent) {
	m.Called(ctx, event)
}
