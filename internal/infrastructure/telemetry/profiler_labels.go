package telemetry

import (
	"context"
	"sort"

	"github.com/grafana/pyroscope-go"
)

// Profiling label keys
const (
	ProfilingLabelCapability = "capability"
	ProfilingLabelTransport  = "transport"
	ProfilingLabelOperation  = "operation"
	ProfilingLabelRoute      = "route"
)

// MaxLabelValueLength caps label values to bound cardinality
const MaxLabelValueLength = 128

// highCardinalityLabels are dropped from profiling labels
var highCardinalityLabels = map[string]bool{
	"user_id":     true,
	"request_id":  true,
	"order_id":    true,
	"shop_id":     true,
	"channel_id":  true,
	"trace_id":    true,
	"span_id":     true,
	"delivery_id": true,
}

// WithProfilingLabels runs fn with pprof labels attached so Pyroscope can
// slice profiles, e.g. by capability and transport.
func WithProfilingLabels(ctx context.Context, labels map[string]string, fn func(context.Context)) {
	pairs := sanitizeLabels(labels)
	if len(pairs) == 0 {
		fn(ctx)
		return
	}
	pyroscope.TagWrapper(ctx, pyroscope.Labels(pairs...), fn)
}

// sanitizeLabels returns sorted key/value pairs without empty or
// high-cardinality entries.
func sanitizeLabels(labels map[string]string) []string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(labels)*2)
	for _, k := range keys {
		v := labels[k]
		if k == "" || v == "" || highCardinalityLabels[k] {
			continue
		}
		if len(v) > MaxLabelValueLength {
			v = v[:MaxLabelValueLength]
		}
		pairs = append(pairs, k, v)
	}
	return pairs
}
