package integration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/openship/backend/internal/domain/integration"
	"github.com/openship/backend/internal/domain/shared"
	"github.com/openship/backend/internal/infrastructure/logger"
	"github.com/openship/backend/internal/infrastructure/telemetry"
)

// Webhook processing defaults
const (
	DefaultWebhookProcessTimeout = 2 * time.Minute
	DefaultIdempotencyTTL        = 24 * time.Hour

	releaseTimeout = 5 * time.Second
)

// ErrInvalidWebhook is returned for events without a shop or with an unknown type
var ErrInvalidWebhook = shared.NewDomainError(shared.CodeInvalidInput, "Invalid webhook event")

// WebhookConfig configures a WebhookService
type WebhookConfig struct {
	// Async makes Dispatch reconcile in the background after the caller has acknowledged
	Async          bool
	ProcessTimeout time.Duration
	IdempotencyTTL time.Duration
	// Idempotency short-circuits redelivered events; nil disables it
	Idempotency shared.IdempotencyStore
	// Archive keeps raw bodies; nil disables it
	Archive integration.PayloadArchive
	// Logger receives background reconcile results
	Logger *zap.Logger
}

// WebhookResult describes what a delivery did to local state
type WebhookResult struct {
	Outcome         integration.ReconcileOutcome `json:"outcome"`
	OrderID         *uuid.UUID                   `json:"orderId,omitempty"`
	PlatformOrderID string                       `json:"platformOrderId,omitempty"`
	ArchiveKey      string                       `json:"archiveKey,omitempty"`
}

// WebhookService reconciles shop order webhooks with local orders
type WebhookService struct {
	serviceBase
	shops     integration.ShopRepository
	platforms integration.PlatformRepository
	orders    integration.OrderRepository
	caller    CapabilityCaller
	cfg       WebhookConfig
	locks     *keyedMutex
	wg        sync.WaitGroup
}

// NewWebhookService creates a WebhookService
func NewWebhookService(
	shops integration.ShopRepository,
	platforms integration.PlatformRepository,
	orders integration.OrderRepository,
	caller CapabilityCaller,
	cfg WebhookConfig,
	opts ...Option,
) *WebhookService {
	if cfg.ProcessTimeout <= 0 {
		cfg.ProcessTimeout = DefaultWebhookProcessTimeout
	}
	if cfg.IdempotencyTTL <= 0 {
		cfg.IdempotencyTTL = DefaultIdempotencyTTL
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &WebhookService{
		serviceBase: newServiceBase(opts),
		shops:       shops,
		platforms:   platforms,
		orders:      orders,
		caller:      caller,
		cfg:         cfg,
		locks:       newKeyedMutex(),
	}
}

// Dispatch reconciles event after the caller has already answered the sender.
// In async mode the work runs on a context detached from the request and
// bounded by the process timeout; errors are only logged.
func (s *WebhookService) Dispatch(ctx context.Context, event integration.WebhookEvent) {
	if !s.cfg.Async {
		s.run(ctx, event)
		return
	}

	detached := context.WithoutCancel(ctx)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(detached, event)
	}()
}

func (s *WebhookService) run(ctx context.Context, event integration.WebhookEvent) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ProcessTimeout)
	defer cancel()

	log := s.cfg.Logger.With(
		zap.String("shop_id", event.ShopID.String()),
		zap.String("event", event.Type.String()),
		zap.String("delivery_id", event.DeliveryID),
	)
	defer func() {
		if r := recover(); r != nil {
			log.Error("webhook reconcile panicked", zap.Any("panic", r))
		}
	}()

	res, err := s.Reconcile(logger.WithContext(ctx, log), event)
	if err != nil {
		log.Error("webhook reconcile failed", zap.Error(err))
		return
	}
	log.Info("webhook reconciled",
		zap.String("outcome", res.Outcome.String()),
		zap.String("platform_order_id", res.PlatformOrderID),
	)
}

// Wait blocks until background reconciles finish or ctx is done
func (s *WebhookService) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Reconcile applies one webhook delivery to local orders and reports the outcome.
// Cancelling a missing order, or one already cancelled, is not an error.
func (s *WebhookService) Reconcile(ctx context.Context, event integration.WebhookEvent) (*WebhookResult, error) {
	if event.ShopID == uuid.Nil || !event.Type.IsValid() {
		return nil, ErrInvalidWebhook
	}
	if event.DeliveryID == "" {
		event.DeliveryID = integration.DeliveryIDFromHeaders(event.Headers)
	}
	ctx = logger.WithShopID(ctx, event.ShopID.String())
	ctx, span := telemetry.StartSpan(ctx, "webhook.reconcile",
		telemetry.WithAttribute(telemetry.SpanAttrEvent, event.Type.String()),
		telemetry.WithAttribute(telemetry.SpanAttrShopID, event.ShopID.String()),
	)
	defer span.End()

	res, err := s.reconcile(ctx, event)
	if err != nil {
		telemetry.RecordError(span, err)
		s.metrics.RecordWebhookEvent(ctx, event.Type.String(), integration.OutcomeFailed.String())
		return &WebhookResult{Outcome: integration.OutcomeFailed}, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrOutcome, res.Outcome.String())
	s.metrics.RecordWebhookEvent(ctx, event.Type.String(), res.Outcome.String())
	return res, nil
}

func (s *WebhookService) reconcile(ctx context.Context, event integration.WebhookEvent) (_ *WebhookResult, retErr error) {
	result := &WebhookResult{}
	if s.cfg.Archive != nil {
		key, err := s.cfg.Archive.Store(ctx, event.ShopID, event.Type, event.DeliveryID, event.Payload)
		if err != nil {
			logger.L(ctx).Warn("failed to archive webhook payload", zap.Error(err))
		}
		result.ArchiveKey = key
	}

	if event.DeliveryID != "" && s.cfg.Idempotency != nil {
		key := fmt.Sprintf("%s:%s:%s", event.ShopID, event.Type, event.DeliveryID)
		isNew, err := s.cfg.Idempotency.MarkProcessed(ctx, key, s.cfg.IdempotencyTTL)
		switch {
		case err != nil:
			logger.L(ctx).Warn("idempotency check failed, processing anyway", zap.Error(err))
		case !isNew:
			logger.L(ctx).Debug("webhook delivery already processed", zap.String("delivery_id", event.DeliveryID))
			result.Outcome = integration.OutcomeDuplicate
			return result, nil
		default:
			// a failed delivery must stay retryable
			defer func() {
				if retErr != nil {
					s.release(ctx, key)
				}
			}()
		}
	}

	shop, err := s.shops.FindByID(ctx, event.ShopID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, integration.ShopNotFound(event.ShopID.String())
		}
		return nil, err
	}
	platform, err := loadPlatform(ctx, s.platforms, shop.PlatformID)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{
		"payload": decodePayload(event.Payload),
		"headers": event.Headers,
	}
	res, err := s.caller.Call(ctx, integration.PlatformKindShop, platform,
		event.Type.Capability(), integration.NewAdapterRequest(shop.Credentials(), fields))
	if err != nil {
		return nil, err
	}
	platformOrderID := res.String("orderId")
	if platformOrderID == "" {
		return nil, &integration.AdapterError{Message: integration.ErrMissingOrderID.Error()}
	}
	result.PlatformOrderID = platformOrderID

	unlock := s.locks.Lock(shop.ID.String() + ":" + platformOrderID)
	defer unlock()

	if event.Type == integration.WebhookEventCancel {
		err = s.applyCancel(ctx, shop, platformOrderID, result)
	} else {
		err = s.applyCreate(ctx, shop, platformOrderID, res, result)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// release clears a delivery mark, even when ctx has already expired
func (s *WebhookService) release(ctx context.Context, key string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()
	if err := s.cfg.Idempotency.Release(ctx, key); err != nil {
		logger.L(ctx).Warn("failed to release webhook delivery mark", zap.String("key", key), zap.Error(err))
	}
}

func (s *WebhookService) applyCancel(ctx context.Context, shop *integration.Shop, platformOrderID string, result *WebhookResult) error {
	order, err := s.orders.FindByPlatformOrderID(ctx, shop.ID, platformOrderID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			logger.L(ctx).Warn("cancel webhook for unknown order",
				zap.String("platform_order_id", platformOrderID))
			result.Outcome = integration.OutcomeUnmatched
			return nil
		}
		return err
	}
	result.OrderID = &order.ID

	changed, err := s.orders.CancelIfActive(ctx, order.ID)
	if err != nil {
		return err
	}
	if !changed {
		result.Outcome = integration.OutcomeDuplicate
		return nil
	}
	order.Cancel()
	result.Outcome = integration.OutcomeCancelled
	s.publish(ctx, integration.NewOrderCancelledEvent(order))
	return nil
}

func (s *WebhookService) applyCreate(ctx context.Context, shop *integration.Shop, platformOrderID string, res integration.AdapterResult, result *WebhookResult) error {
	existing, err := s.orders.FindByPlatformOrderID(ctx, shop.ID, platformOrderID)
	switch {
	case err == nil:
		result.OrderID = &existing.ID
		result.Outcome = integration.OutcomeDuplicate
		return nil
	case !errors.Is(err, shared.ErrNotFound):
		return err
	}

	raw, ok := res["order"]
	if !ok || raw == nil {
		result.Outcome = integration.OutcomeUnmatched
		return nil
	}
	po, err := decodePlatformOrder(raw)
	if err != nil {
		return err
	}
	if po.OrderID == "" {
		po.OrderID = integration.ExternalID(platformOrderID)
	}

	order, err := po.ToOrder(shop.ID, shop.OwnerID)
	if err != nil {
		return err
	}
	created, err := s.orders.UpsertImported(ctx, order)
	if err != nil {
		return err
	}
	result.OrderID = &order.ID
	if !created {
		result.Outcome = integration.OutcomeDuplicate
		return nil
	}
	result.Outcome = integration.OutcomeImported
	s.publish(ctx, integration.NewOrderImportedEvent(order))
	return nil
}

func decodePlatformOrder(raw any) (integration.PlatformOrder, error) {
	var po integration.PlatformOrder
	b, err := json.Marshal(raw)
	if err == nil {
		err = json.Unmarshal(b, &po)
	}
	if err != nil {
		return po, fmt.Errorf("%w: order: %v", integration.ErrInvalidResponse, err)
	}
	return po, nil
}

// decodePayload passes JSON bodies to adapters as objects and anything else as text
func decodePayload(body []byte) any {
	var v any
	if len(body) > 0 && integration.DecodeJSON(body, &v) == nil {
		return v
	}
	return string(body)
}
