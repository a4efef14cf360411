package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// Outcome labels shared by the commerce metrics
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// CommerceMetrics tracks adapter dispatch, order search, purchase fan-out
// and webhook reconciliation. A nil *CommerceMetrics records nothing.
type CommerceMetrics struct {
	logger *zap.Logger

	adapterCalls     *Counter
	adapterDuration  *Histogram
	searchShops      *Counter
	purchaseChannels *Counter
	webhookEvents    *Counter
}

// CommerceMetricsConfig holds configuration for commerce metrics.
type CommerceMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// NewCommerceMetrics creates the commerce instruments on the given meter.
func NewCommerceMetrics(cfg CommerceMetricsConfig) (*CommerceMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	cm := &CommerceMetrics{logger: logger}

	var err error
	cm.adapterCalls, err = NewCounter(cfg.Meter,
		"openship_adapter_calls_total",
		"Total number of capability invocations",
		"{calls}",
	)
	if err != nil {
		return nil, err
	}

	cm.adapterDuration, err = NewHistogram(cfg.Meter, HistogramOpts{
		Name:        "openship_adapter_call_duration_seconds",
		Description: "Capability invocation latency",
		Unit:        "s",
		Boundaries:  AdapterDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	cm.searchShops, err = NewCounter(cfg.Meter,
		"openship_order_search_shops_total",
		"Per-shop order search results",
		"{shops}",
	)
	if err != nil {
		return nil, err
	}

	cm.purchaseChannels, err = NewCounter(cfg.Meter,
		"openship_purchase_channels_total",
		"Per-channel purchase outcomes",
		"{channels}",
	)
	if err != nil {
		return nil, err
	}

	cm.webhookEvents, err = NewCounter(cfg.Meter,
		"openship_webhook_events_total",
		"Webhook deliveries by reconcile outcome",
		"{events}",
	)
	if err != nil {
		return nil, err
	}

	return cm, nil
}

// RecordAdapterCall records one capability invocation.
func (cm *CommerceMetrics) RecordAdapterCall(ctx context.Context, capability, transport string, err error, d time.Duration) {
	if cm == nil {
		return
	}
	attrs := []attribute.KeyValue{
		AttrCapability.String(capability),
		AttrTransport.String(transport),
		AttrOutcome.String(outcomeOf(err)),
	}
	cm.adapterCalls.Inc(ctx, attrs...)
	cm.adapterDuration.RecordDuration(ctx, d, attrs...)
}

// RecordShopSearch records the result of searching a single shop.
func (cm *CommerceMetrics) RecordShopSearch(ctx context.Context, err error) {
	if cm == nil {
		return
	}
	cm.searchShops.Inc(ctx, AttrOutcome.String(outcomeOf(err)))
}

// RecordPurchaseChannel records the result of one channel purchase.
func (cm *CommerceMetrics) RecordPurchaseChannel(ctx context.Context, success bool) {
	if cm == nil {
		return
	}
	outcome := OutcomeSuccess
	if !success {
		outcome = OutcomeFailure
	}
	cm.purchaseChannels.Inc(ctx, AttrOutcome.String(outcome))
}

// RecordWebhookEvent records a webhook delivery with its reconcile outcome
// (cancelled, imported, duplicate, unmatched, failed).
func (cm *CommerceMetrics) RecordWebhookEvent(ctx context.Context, event, outcome string) {
	if cm == nil {
		return
	}
	cm.webhookEvents.Inc(ctx,
		AttrWebhookEvent.String(event),
		AttrOutcome.String(outcome),
	)
}

func outcomeOf(err error) string {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewCommerceMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
