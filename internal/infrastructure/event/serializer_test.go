package event

import (
	"testing"

	"github.com/google/uuid"
	"github.com/openship/backend/internal/domain/integration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCancelledEvent(t *testing.T) *integration.OrderCancelledEvent {
	t.Helper()
	o, err := integration.NewOrder(uuid.New(), uuid.New(), "T-100")
	require.NoError(t, err)
	return integration.NewOrderCancelledEvent(o)
}

func TestIntegrationEventSerializer_RegisteredTypes(t *testing.T) {
	s := NewIntegrationEventSerializer()
	assert.Equal(t, []string{
		integration.EventTypeOrderCancelled,
		integration.EventTypeOrderImported,
		integration.EventTypePurchaseCreated,
	}, s.RegisteredTypes())
	assert.False(t, s.IsRegistered("Unknown"))
}

func TestEventSerializer_RoundTrip(t *testing.T) {
	s := NewIntegrationEventSerializer()
	in := newCancelledEvent(t)

	data, err := s.Serialize(in)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"platform_order_id":"T-100"`)
	assert.Contains(t, string(data), `"type":"OrderCancelled"`)

	out, err := s.Deserialize(integration.EventTypeOrderCancelled, data)
	require.NoError(t, err)
	got, ok := out.(*integration.OrderCancelledEvent)
	require.True(t, ok)
	assert.Equal(t, in.OrderID, got.OrderID)
	assert.Equal(t, in.EventID(), got.EventID())
	assert.Equal(t, in.AggregateID(), got.AggregateID())
}

func TestEventSerializer_DeserializeErrors(t *testing.T) {
	s := NewIntegrationEventSerializer()

	_, err := s.Deserialize("Unknown", []byte(`{}`))
	assert.ErrorContains(t, err, "unknown event type: Unknown")

	_, err = s.Deserialize(integration.EventTypeOrderImported, []byte(`not json`))
	assert.ErrorContains(t, err, "decode OrderImported event")
}
