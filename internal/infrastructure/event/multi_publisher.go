package event

import (
	"context"
	"errors"

	"github.com/openship/backend/internal/domain/shared"
)

// MultiPublisher hands every batch to each publisher in turn. A failing
// publisher does not stop the others; their errors are joined.
type MultiPublisher struct {
	publishers []shared.EventPublisher
}

// NewMultiPublisher creates a MultiPublisher, skipping nil entries
func NewMultiPublisher(publishers ...shared.EventPublisher) *MultiPublisher {
	m := &MultiPublisher{}
	for _, p := range publishers {
		if p != nil {
			m.publishers = append(m.publishers, p)
		}
	}
	return m
}

// Publish forwards events to all publishers
func (m *MultiPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	if len(events) == 0 {
		return nil
	}
	var errs []error
	for _, p := range m.publishers {
		if err := p.Publish(ctx, events...); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ shared.EventPublisher = (*MultiPublisher)(nil)
