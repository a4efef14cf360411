package event

import (
	"context"

	"github.com/openship/backend/internal/domain/shared"
	"github.com/openship/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// LogPublisher records events in the application log. It is the publisher
// when no broker is configured.
type LogPublisher struct{}

// NewLogPublisher creates a LogPublisher
func NewLogPublisher() *LogPublisher {
	return &LogPublisher{}
}

// Publish logs one line per event through the context logger
func (p *LogPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	l := logger.L(ctx)
	for _, e := range events {
		l.Info("domain event",
			zap.String("event_type", e.EventType()),
			zap.String("event_id", e.EventID().String()),
			zap.String("aggregate_type", e.AggregateType()),
			zap.String("aggregate_id", e.AggregateID().String()),
		)
	}
	return nil
}

var _ shared.EventPublisher = (*LogPublisher)(nil)
