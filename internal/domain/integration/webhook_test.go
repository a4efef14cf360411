package integration

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestWebhookEventType(t *testing.T) {
	assert.True(t, WebhookEventCancel.IsValid())
	assert.True(t, WebhookEventCreate.IsValid())
	assert.False(t, WebhookEventType("update").IsValid())
	assert.Equal(t, CapabilityCancelOrderWebhook, WebhookEventCancel.Capability())
	assert.Equal(t, CapabilityCreateOrderWebhook, WebhookEventCreate.Capability())
}

func TestDeliveryIDFromHeaders(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"shopify", map[string]string{"x-shopify-webhook-id": "abc"}, "abc"},
		{"generic", map[string]string{"X-Delivery-Id": " d1 "}, "d1"},
		{"preference order", map[string]string{"X-Request-Id": "r", "X-Delivery-Id": "d"}, "d"},
		{"blank ignored", map[string]string{"X-Delivery-Id": "  "}, ""},
		{"none", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeliveryIDFromHeaders(tt.headers))
		})
	}
}

func TestNewWebhookEvent(t *testing.T) {
	shopID := uuid.New()
	ev := NewWebhookEvent(shopID, WebhookEventCancel, []byte(`{}`), map[string]string{"X-Shopify-Webhook-Id": "w1"})
	assert.Equal(t, "w1", ev.DeliveryID)
	assert.Equal(t, shopID, ev.ShopID)
}

func TestEvents(t *testing.T) {
	o, _ := NewOrder(uuid.New(), uuid.New(), "1001")

	cancelled := NewOrderCancelledEvent(o)
	assert.Equal(t, EventTypeOrderCancelled, cancelled.EventType())
	assert.Equal(t, o.ID, cancelled.AggregateID())
	assert.Equal(t, "1001", cancelled.PlatformOrderID)

	imported := NewOrderImportedEvent(o)
	assert.Equal(t, EventTypeOrderImported, imported.EventType())

	ch := uuid.New()
	created := NewPurchaseCreatedEvent(ch, "PO-1", []uuid.UUID{uuid.New()})
	assert.Equal(t, ch, created.AggregateID())
	assert.Equal(t, AggregateTypeChannel, created.AggregateType())
}
