package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/openship/backend/internal/domain/integration"
	"github.com/openship/backend/internal/infrastructure/telemetry"
)

func newTestInvoker(t *testing.T, timeout time.Duration) *Invoker {
	t.Helper()
	metrics, err := telemetry.NewCommerceMetrics(telemetry.CommerceMetricsConfig{
		Meter: noop.NewMeterProvider().Meter("test"),
	})
	require.NoError(t, err)
	return NewInvoker(InvokerConfig{CallTimeout: timeout, Metrics: metrics})
}

func remote(c integration.Capability, url string) Resolved {
	return Resolved{Namespace: NamespaceChannel, Capability: c, Target: integration.TargetRemote{URL: url}}
}

func local(c integration.Capability, fn integration.AdapterFunc) Resolved {
	return Resolved{Namespace: NamespaceChannel, Capability: c, Target: integration.TargetLocal{Module: "demo"}, Func: fn}
}

func TestInvoker_Remote(t *testing.T) {
	req := integration.NewAdapterRequest(
		integration.Credentials{Domain: "shop.example.com", AccessToken: "tok"},
		map[string]any{"email": "a@b.c", "domain": "ignored"},
	)

	t.Run("posts JSON once and returns the object verbatim", func(t *testing.T) {
		var calls int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "shop.example.com", body["domain"])
			assert.Equal(t, "tok", body["accessToken"])
			assert.Equal(t, "a@b.c", body["email"])

			_, _ = io.WriteString(w, `{"purchaseId":"P-1","url":"https://x"}`)
		}))
		defer srv.Close()

		inv := newTestInvoker(t, time.Second)
		out, err := inv.Invoke(context.Background(), remote(integration.CapabilityCreatePurchase, srv.URL), req)
		require.NoError(t, err)
		assert.Equal(t, "P-1", out.String("purchaseId"))
		assert.Equal(t, "https://x", out.String("url"))
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})

	t.Run("numeric ids keep every digit", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"orderId":5938227123456789012,"orders":[{"orderId":1001}],"hasNextPage":false}`)
		}))
		defer srv.Close()

		inv := newTestInvoker(t, time.Second)
		out, err := inv.Invoke(context.Background(), remote(integration.CapabilitySearchOrders, srv.URL), req)
		require.NoError(t, err)
		assert.Equal(t, "5938227123456789012", out.String("orderId"))

		var page integration.PlatformOrderPage
		require.NoError(t, out.Decode(&page))
		require.Len(t, page.Orders, 1)
		assert.Equal(t, "1001", page.Orders[0].OrderID.String())
	})

	t.Run("non-2xx becomes transport error with status text", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		inv := newTestInvoker(t, time.Second)
		_, err := inv.Invoke(context.Background(), remote(integration.CapabilityCreatePurchase, srv.URL), req)
		require.Error(t, err)

		var te *integration.TransportError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, http.StatusBadGateway, te.StatusCode)
		assert.Equal(t, "Failed to create purchase: Bad Gateway", err.Error())
	})

	t.Run("non-object body is an invalid response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `[1,2,3]`)
		}))
		defer srv.Close()

		inv := newTestInvoker(t, time.Second)
		_, err := inv.Invoke(context.Background(), remote(integration.CapabilitySearchOrders, srv.URL), req)
		require.Error(t, err)
		assert.True(t, integration.IsTransport(err))
		assert.ErrorIs(t, err, integration.ErrInvalidResponse)
	})

	t.Run("unparsable body is an invalid response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `<html>`)
		}))
		defer srv.Close()

		inv := newTestInvoker(t, time.Second)
		_, err := inv.Invoke(context.Background(), remote(integration.CapabilitySearchOrders, srv.URL), req)
		assert.ErrorIs(t, err, integration.ErrInvalidResponse)
	})

	t.Run("timeout is a transport error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		defer srv.Close()

		inv := newTestInvoker(t, 50*time.Millisecond)
		_, err := inv.Invoke(context.Background(), remote(integration.CapabilitySearchOrders, srv.URL), req)
		require.Error(t, err)
		assert.True(t, integration.IsTransport(err))
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestInvoker_Local(t *testing.T) {
	req := integration.NewAdapterRequest(integration.Credentials{Domain: "d", AccessToken: "t"}, nil)

	t.Run("returns the module result", func(t *testing.T) {
		inv := newTestInvoker(t, time.Second)
		fn := func(_ context.Context, r integration.AdapterRequest) (integration.AdapterResult, error) {
			assert.Equal(t, "d", r.Domain)
			return integration.AdapterResult{"purchaseId": "L-1"}, nil
		}
		out, err := inv.Invoke(context.Background(), local(integration.CapabilityCreatePurchase, fn), req)
		require.NoError(t, err)
		assert.Equal(t, "L-1", out.String("purchaseId"))
	})

	t.Run("explicit error field becomes adapter error", func(t *testing.T) {
		inv := newTestInvoker(t, time.Second)
		fn := okFunc(integration.ErrorResult("out of stock"))
		_, err := inv.Invoke(context.Background(), local(integration.CapabilityCreatePurchase, fn), req)
		require.Error(t, err)
		assert.True(t, integration.IsAdapter(err))
		assert.Equal(t, "out of stock", err.Error())
	})

	t.Run("plain error is wrapped as transport error", func(t *testing.T) {
		inv := newTestInvoker(t, time.Second)
		boom := errors.New("connection reset")
		fn := func(context.Context, integration.AdapterRequest) (integration.AdapterResult, error) {
			return nil, boom
		}
		_, err := inv.Invoke(context.Background(), local(integration.CapabilityGetProduct, fn), req)
		assert.True(t, integration.IsTransport(err))
		assert.ErrorIs(t, err, boom)
	})

	t.Run("function ignoring the deadline still times out", func(t *testing.T) {
		inv := newTestInvoker(t, 20*time.Millisecond)
		release := make(chan struct{})
		defer close(release)
		fn := func(context.Context, integration.AdapterRequest) (integration.AdapterResult, error) {
			<-release
			return integration.AdapterResult{}, nil
		}
		_, err := inv.Invoke(context.Background(), local(integration.CapabilityGetProduct, fn), req)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("panic is contained", func(t *testing.T) {
		inv := newTestInvoker(t, time.Second)
		fn := func(context.Context, integration.AdapterRequest) (integration.AdapterResult, error) {
			panic("boom")
		}
		_, err := inv.Invoke(context.Background(), local(integration.CapabilityGetProduct, fn), req)
		assert.True(t, integration.IsAdapter(err))
	})

	t.Run("nil result is an empty object", func(t *testing.T) {
		inv := newTestInvoker(t, time.Second)
		out, err := inv.Invoke(context.Background(), local(integration.CapabilityGetProduct, okFunc(nil)), req)
		require.NoError(t, err)
		assert.NotNil(t, out)
	})
}
