package event

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/openship/backend/internal/domain/integration"
	"github.com/openship/backend/internal/domain/shared"
	"github.com/openship/backend/internal/infrastructure/logger"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func header(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaPublisher(w, nil, nil)

	cancelled := newCancelledEvent(t)
	purchase := integration.NewPurchaseCreatedEvent(uuid.New(), "P-1", []uuid.UUID{uuid.New()})
	require.NoError(t, p.Publish(context.Background(), cancelled, purchase))

	require.Len(t, w.msgs, 2)
	assert.Equal(t, cancelled.OrderID.String(), string(w.msgs[0].Key))
	assert.Equal(t, integration.EventTypeOrderCancelled, header(w.msgs[0], HeaderEventType))
	assert.Equal(t, cancelled.EventID().String(), header(w.msgs[0], HeaderEventID))
	assert.Equal(t, integration.AggregateTypeChannel, header(w.msgs[1], HeaderAggregateType))

	decoded, err := NewIntegrationEventSerializer().Deserialize(integration.EventTypePurchaseCreated, w.msgs[1].Value)
	require.NoError(t, err)
	assert.Equal(t, "P-1", decoded.(*integration.PurchaseCreatedEvent).PurchaseID)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaPublisher_Errors(t *testing.T) {
	t.Run("nothing to publish", func(t *testing.T) {
		w := &fakeWriter{err: errors.New("unreachable")}
		assert.NoError(t, newKafkaPublisher(w, nil, nil).Publish(context.Background()))
	})

	t.Run("write failure", func(t *testing.T) {
		w := &fakeWriter{err: errors.New("leader not available")}
		err := newKafkaPublisher(w, nil, nil).Publish(context.Background(), newCancelledEvent(t))
		assert.ErrorContains(t, err, "leader not available")
	})

	t.Run("config", func(t *testing.T) {
		_, err := NewKafkaPublisher(KafkaConfig{Topic: "t"}, nil, nil)
		assert.Error(t, err)
		_, err = NewKafkaPublisher(KafkaConfig{Brokers: []string{"localhost:9092"}}, nil, nil)
		assert.Error(t, err)

		p, err := NewKafkaPublisher(KafkaConfig{Brokers: []string{"localhost:9092"}, Topic: "openship.events"}, nil, nil)
		require.NoError(t, err)
		assert.NoError(t, p.Close())
	})
}

func TestLogPublisher_Publish(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ctx := logger.WithContext(context.Background(), zap.New(core))

	e := newCancelledEvent(t)
	require.NoError(t, NewLogPublisher().Publish(ctx, e))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "domain event", entry.Message)
	assert.Equal(t, integration.EventTypeOrderCancelled, entry.ContextMap()["event_type"])
	assert.Equal(t, e.OrderID.String(), entry.ContextMap()["aggregate_id"])
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	return m.Called(ctx, events).Error(0)
}

func TestMultiPublisher_Publish(t *testing.T) {
	ctx := context.Background()
	e := newCancelledEvent(t)
	events := []shared.DomainEvent{e}

	failing := &mockPublisher{}
	failing.On("Publish", ctx, events).Return(errors.New("broker down")).Once()
	ok := &mockPublisher{}
	ok.On("Publish", ctx, events).Return(nil).Once()

	err := NewMultiPublisher(failing, nil, ok).Publish(ctx, e)
	assert.ErrorContains(t, err, "broker down")
	failing.AssertExpectations(t)
	ok.AssertExpectations(t)

	// empty batches are not forwarded
	assert.NoError(t, NewMultiPublisher(failing, ok).Publish(ctx))
}
