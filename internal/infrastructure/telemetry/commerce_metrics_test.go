package telemetry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/openship/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
)

func TestNewCommerceMetrics(t *testing.T) {
	cm, err := telemetry.NewCommerceMetrics(telemetry.CommerceMetricsConfig{
		Meter:  noop.NewMeterProvider().Meter("test"),
		Logger: zap.NewNop(),
	})

	require.NoError(t, err)
	require.NotNil(t, cm)
}

func TestNewCommerceMetrics_NilMeter(t *testing.T) {
	cm, err := telemetry.NewCommerceMetrics(telemetry.CommerceMetricsConfig{})

	require.Error(t, err)
	assert.Nil(t, cm)
	assert.Equal(t, "NewCommerceMetrics: meter cannot be nil", err.Error())
}

func TestCommerceMetrics_NilReceiver(t *testing.T) {
	var cm *telemetry.CommerceMetrics
	ctx := context.Background()

	assert.NotPanics(t, func() {
		cm.RecordAdapterCall(ctx, "searchOrdersFunction", "remote", nil, time.Second)
		cm.RecordShopSearch(ctx, errors.New("x"))
		cm.RecordPurchaseChannel(ctx, true)
		cm.RecordWebhookEvent(ctx, "cancel", "unmatched")
	})
}

func TestCommerceMetrics_Export(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	cm, err := telemetry.NewCommerceMetrics(telemetry.CommerceMetricsConfig{
		Meter: provider.Meter("test"),
	})
	require.NoError(t, err)

	ctx := context.Background()
	cm.RecordAdapterCall(ctx, "createPurchaseFunction", "local", nil, 20*time.Millisecond)
	cm.RecordAdapterCall(ctx, "createPurchaseFunction", "remote", errors.New("502"), time.Second)
	cm.RecordWebhookEvent(ctx, "cancel", "unmatched")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	found := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			found[m.Name] = m.Data
		}
	}

	calls, ok := found["openship_adapter_calls_total"].(metricdata.Sum[int64])
	require.True(t, ok)
	assert.Len(t, calls.DataPoints, 2)

	webhooks, ok := found["openship_webhook_events_total"].(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, webhooks.DataPoints, 1)
	outcome, _ := webhooks.DataPoints[0].Attributes.Value(attribute.Key("outcome"))
	assert.Equal(t, "unmatched", outcome.AsString())

	_, ok = found["openship_adapter_call_duration_seconds"]
	assert.True(t, ok)
}
