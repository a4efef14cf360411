package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/openship/backend/internal/domain/integration"
	"github.com/openship/backend/internal/infrastructure/logger"
	"github.com/openship/backend/internal/infrastructure/telemetry"
)

// maxResponseSize caps the body read from a remote capability (10MB)
const maxResponseSize = 10 * 1024 * 1024

// DefaultCallTimeout bounds a single capability call
const DefaultCallTimeout = 30 * time.Second

// InvokerConfig configures an Invoker
type InvokerConfig struct {
	// CallTimeout applies to each call independently. Zero means DefaultCallTimeout.
	CallTimeout time.Duration
	// HTTPClient is used for remote targets. Its transport is wrapped with otelhttp.
	HTTPClient *http.Client
	Metrics    *telemetry.CommerceMetrics
	Logger     *zap.Logger
}

// Invoker executes resolved capabilities. Remote targets receive exactly one
// JSON POST; local targets call the registered function in-process.
type Invoker struct {
	client  *http.Client
	timeout time.Duration
	metrics *telemetry.CommerceMetrics
	logger  *zap.Logger
}

// NewInvoker creates an invoker
func NewInvoker(cfg InvokerConfig) *Invoker {
	timeout := cfg.CallTimeout
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}
	base := cfg.HTTPClient
	if base == nil {
		base = &http.Client{}
	}
	transport := base.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	client := *base
	client.Transport = otelhttp.NewTransport(transport)

	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Invoker{
		client:  &client,
		timeout: timeout,
		metrics: cfg.Metrics,
		logger:  log,
	}
}

// Timeout returns the per-call timeout
func (i *Invoker) Timeout() time.Duration {
	return i.timeout
}

// Invoke runs res with req and returns the capability payload.
//
// Errors are typed: *integration.TransportError for non-2xx responses,
// network failures, unparsable bodies and timeouts; *integration.AdapterError
// when a local module returns an explicit error.
func (i *Invoker) Invoke(ctx context.Context, res Resolved, req integration.AdapterRequest) (integration.AdapterResult, error) {
	if res.Target == nil {
		return nil, integration.CapabilityNotConfigured(res.Capability)
	}

	ctx, span := telemetry.StartSpan(ctx, "adapter.invoke",
		telemetry.WithSpanKind(trace.SpanKindClient),
		telemetry.WithAttribute(telemetry.SpanAttrCapability, res.Capability.String()),
		telemetry.WithAttribute(telemetry.SpanAttrTransport, res.Transport()),
		telemetry.WithAttribute(telemetry.SpanAttrModule, res.Module()),
	)
	defer span.End()

	callCtx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	start := time.Now()
	var (
		result integration.AdapterResult
		err    error
	)
	labels := map[string]string{
		telemetry.ProfilingLabelCapability: res.Capability.ExportName(),
		telemetry.ProfilingLabelTransport:  res.Transport(),
	}
	telemetry.WithProfilingLabels(callCtx, labels, func(ctx context.Context) {
		switch t := res.Target.(type) {
		case integration.TargetRemote:
			result, err = i.invokeRemote(ctx, res.Capability, t, req)
		case integration.TargetLocal:
			result, err = i.invokeLocal(ctx, res, req)
		default:
			err = integration.CapabilityNotConfigured(res.Capability)
		}
	})
	elapsed := time.Since(start)

	i.metrics.RecordAdapterCall(ctx, res.Capability.String(), res.Transport(), err, elapsed)
	if err != nil {
		telemetry.RecordError(span, err)
		logger.L(ctx).Warn("capability call failed",
			zap.String("capability", res.Capability.String()),
			zap.String("transport", res.Transport()),
			zap.String("module", res.Module()),
			zap.Duration("duration", elapsed),
			zap.Error(err),
		)
		return nil, err
	}
	return result, nil
}

func (i *Invoker) invokeRemote(ctx context.Context, c integration.Capability, t integration.TargetRemote, req integration.AdapterRequest) (integration.AdapterResult, error) {
	fail := func(err error) error {
		return &integration.TransportError{Target: t.URL, Verb: c.Verb(), Err: err}
	}

	body, err := json.Marshal(req.Payload())
	if err != nil {
		return nil, fmt.Errorf("adapter: failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fail(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := i.client.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fail(ctxErr)
		}
		return nil, fail(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))
		status := http.StatusText(resp.StatusCode)
		if status == "" {
			status = resp.Status
		}
		return nil, &integration.TransportError{
			Target:     t.URL,
			StatusCode: resp.StatusCode,
			Status:     status,
			Verb:       c.Verb(),
		}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fail(err)
	}

	var decoded any
	if err := integration.DecodeJSON(raw, &decoded); err != nil {
		return nil, fail(fmt.Errorf("%w: %v", integration.ErrInvalidResponse, err))
	}
	result, err := integration.ResultFrom(decoded)
	if err != nil {
		return nil, fail(err)
	}
	return result, nil
}

type localOutcome struct {
	result integration.AdapterResult
	err    error
}

func (i *Invoker) invokeLocal(ctx context.Context, res Resolved, req integration.AdapterRequest) (integration.AdapterResult, error) {
	if res.Func == nil {
		return nil, integration.CapabilityNotFound(res.Module())
	}

	// buffered so a function that ignores ctx never blocks after the deadline
	done := make(chan localOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				i.logger.Error("local adapter panicked",
					zap.String("module", res.Module()),
					zap.String("capability", res.Capability.String()),
					zap.Any("panic", r),
				)
				done <- localOutcome{err: &integration.AdapterError{Message: fmt.Sprintf("%s failed", res.Capability.Label())}}
			}
		}()
		out, err := res.Func(ctx, req)
		done <- localOutcome{result: out, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, &integration.TransportError{Target: res.Module(), Verb: res.Capability.Verb(), Err: ctx.Err()}
	case out := <-done:
		if out.err != nil {
			return nil, classifyLocalError(res, out.err)
		}
		if msg := out.result.ErrorMessage(); msg != "" {
			return nil, &integration.AdapterError{Message: msg}
		}
		if out.result == nil {
			return integration.AdapterResult{}, nil
		}
		return out.result, nil
	}
}

// classifyLocalError keeps typed domain errors and treats anything else as a
// failed upstream call made by the module.
func classifyLocalError(res Resolved, err error) error {
	if integration.IsAdapter(err) || integration.IsTransport(err) ||
		integration.IsConfiguration(err) || integration.IsNotFound(err) {
		return err
	}
	return &integration.TransportError{Target: res.Module(), Verb: res.Capability.Verb(), Err: err}
}
