package event

import (
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/openship/backend/internal/domain/integration"
	"github.com/openship/backend/internal/domain/shared"
)

// EventSerializer is the JSON codec for Kafka message values. Decoding needs
// the event type, which travels in the message header.
type EventSerializer struct {
	mu        sync.RWMutex
	factories map[string]func() shared.DomainEvent
}

func NewEventSerializer() *EventSerializer {
	return &EventSerializer{factories: make(map[string]func() shared.DomainEvent)}
}

// NewIntegrationEventSerializer knows the order and purchase events
func NewIntegrationEventSerializer() *EventSerializer {
	s := NewEventSerializer()
	s.Register(integration.EventTypeOrderCancelled, func() shared.DomainEvent { return &integration.OrderCancelledEvent{} })
	s.Register(integration.EventTypeOrderImported, func() shared.DomainEvent { return &integration.OrderImportedEvent{} })
	s.Register(integration.EventTypePurchaseCreated, func() shared.DomainEvent { return &integration.PurchaseCreatedEvent{} })
	return s
}

// Register binds eventType to a constructor returning an empty pointer event
func (s *EventSerializer) Register(eventType string, newEvent func() shared.DomainEvent) {
	s.mu.Lock()
	s.factories[eventType] = newEvent
	s.mu.Unlock()
}

func (s *EventSerializer) Serialize(event shared.DomainEvent) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode %s event: %w", event.EventType(), err)
	}
	return data, nil
}

func (s *EventSerializer) Deserialize(eventType string, data []byte) (shared.DomainEvent, error) {
	s.mu.RLock()
	newEvent, ok := s.factories[eventType]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown event type: %s", eventType)
	}

	ev := newEvent()
	if err := json.Unmarshal(data, ev); err != nil {
		return nil, fmt.Errorf("decode %s event: %w", eventType, err)
	}
	return ev, nil
}

func (s *EventSerializer) IsRegistered(eventType string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.factories[eventType]
	return ok
}

// RegisteredTypes lists the known event types, sorted
func (s *EventSerializer) RegisteredTypes() []string {
	s.mu.RLock()
	types := make([]string, 0, len(s.factories))
	for t := range s.factories {
		types = append(types, t)
	}
	s.mu.RUnlock()
	slices.Sort(types)
	return types
}
