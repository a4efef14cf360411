package integration

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/openship/backend/internal/domain/integration"
	"github.com/openship/backend/internal/domain/shared"
	"github.com/openship/backend/internal/infrastructure/logger"
	"github.com/openship/backend/internal/infrastructure/telemetry"
)

// DefaultMaxConcurrency bounds parallel capability calls in one request
const DefaultMaxConcurrency = 8

// serviceBase holds the collaborators every service treats as optional
type serviceBase struct {
	publisher      shared.EventPublisher
	metrics        *telemetry.CommerceMetrics
	maxConcurrency int
}

// Option configures optional service collaborators
type Option func(*serviceBase)

// WithPublisher publishes domain events raised by the service
func WithPublisher(p shared.EventPublisher) Option {
	return func(b *serviceBase) { b.publisher = p }
}

// WithMetrics records commerce metrics
func WithMetrics(m *telemetry.CommerceMetrics) Option {
	return func(b *serviceBase) { b.metrics = m }
}

// WithMaxConcurrency limits how many shops or channels are called at once
func WithMaxConcurrency(n int) Option {
	return func(b *serviceBase) {
		if n > 0 {
			b.maxConcurrency = n
		}
	}
}

func newServiceBase(opts []Option) serviceBase {
	b := serviceBase{maxConcurrency: DefaultMaxConcurrency}
	for _, opt := range opts {
		opt(&b)
	}
	return b
}

// publish is best effort: a failed publish is logged, never returned
func (b *serviceBase) publish(ctx context.Context, events ...shared.DomainEvent) {
	if b.publisher == nil || len(events) == 0 {
		return
	}
	if err := b.publisher.Publish(ctx, events...); err != nil {
		logger.L(ctx).Warn("failed to publish domain events",
			zap.Int("count", len(events)),
			zap.String("event_type", events[0].EventType()),
			zap.Error(err),
		)
	}
}

// loadPlatform returns the account's platform, or nil when none is linked.
// A dangling platform id is treated as unlinked so dispatch reports
// "platform not configured".
func loadPlatform(ctx context.Context, repo integration.PlatformRepository, platformID *uuid.UUID) (*integration.Platform, error) {
	if platformID == nil || *platformID == uuid.Nil {
		return nil, nil
	}
	p, err := repo.FindByID(ctx, *platformID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}
