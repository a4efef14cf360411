package integration

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// WebhookEventType is the kind of order lifecycle event a shop pushes
type WebhookEventType string

const (
	WebhookEventCancel WebhookEventType = "cancel"
	WebhookEventCreate WebhookEventType = "create"
)

// IsValid returns true if the event type is known
func (t WebhookEventType) IsValid() bool {
	return t == WebhookEventCancel || t == WebhookEventCreate
}

// String returns the string representation of WebhookEventType
func (t WebhookEventType) String() string {
	return string(t)
}

// Capability returns the shop capability that interprets this event
func (t WebhookEventType) Capability() Capability {
	if t == WebhookEventCreate {
		return CapabilityCreateOrderWebhook
	}
	return CapabilityCancelOrderWebhook
}

// deliveryHeaders are checked in order for a platform delivery id
var deliveryHeaders = []string{
	"X-Shopify-Webhook-Id",
	"X-Delivery-Id",
	"X-Webhook-Id",
	"X-Request-Id",
}

// WebhookEvent is an inbound webhook delivery for a shop
type WebhookEvent struct {
	ShopID     uuid.UUID
	Type       WebhookEventType
	Payload    []byte
	Headers    map[string]string
	DeliveryID string
}

// NewWebhookEvent builds an event and derives the delivery id from headers
func NewWebhookEvent(shopID uuid.UUID, typ WebhookEventType, payload []byte, headers map[string]string) WebhookEvent {
	return WebhookEvent{
		ShopID:     shopID,
		Type:       typ,
		Payload:    payload,
		Headers:    headers,
		DeliveryID: DeliveryIDFromHeaders(headers),
	}
}

// DeliveryIDFromHeaders returns the first known delivery header, case-insensitive
func DeliveryIDFromHeaders(headers map[string]string) string {
	for _, name := range deliveryHeaders {
		for k, v := range headers {
			if strings.EqualFold(k, name) && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		}
	}
	return ""
}

// ReconcileOutcome is the result of applying a webhook to local state
type ReconcileOutcome string

const (
	OutcomeCancelled ReconcileOutcome = "cancelled"
	OutcomeImported  ReconcileOutcome = "imported"
	OutcomeDuplicate ReconcileOutcome = "duplicate"
	OutcomeUnmatched ReconcileOutcome = "unmatched"
	OutcomeFailed    ReconcileOutcome = "failed"
)

// String returns the string representation of ReconcileOutcome
func (o ReconcileOutcome) String() string {
	return string(o)
}

// PayloadArchive keeps raw webhook bodies for audit and replay
type PayloadArchive interface {
	Store(ctx context.Context, shopID uuid.UUID, event WebhookEventType, deliveryID string, body []byte) (key string, err error)
}
