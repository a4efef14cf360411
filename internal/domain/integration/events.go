package integration

import (
	"github.com/google/uuid"

	"github.com/openship/backend/internal/domain/shared"
)

// Aggregate type names used in event envelopes
const (
	AggregateTypeOrder   = "Order"
	AggregateTypeChannel = "Channel"
)

// Event type names
const (
	EventTypeOrderCancelled  = "OrderCancelled"
	EventTypeOrderImported   = "OrderImported"
	EventTypePurchaseCreated = "PurchaseCreated"
)

// OrderCancelledEvent is raised when a platform cancellation flips a local order
type OrderCancelledEvent struct {
	shared.BaseDomainEvent
	OrderID         uuid.UUID `json:"order_id"`
	ShopID          uuid.UUID `json:"shop_id"`
	PlatformOrderID string    `json:"platform_order_id"`
}

// NewOrderCancelledEvent creates an OrderCancelledEvent for o
func NewOrderCancelledEvent(o *Order) *OrderCancelledEvent {
	return &OrderCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderCancelled, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		ShopID:          o.ShopID,
		PlatformOrderID: o.PlatformOrderID,
	}
}

// OrderImportedEvent is raised when a platform order is first stored locally
type OrderImportedEvent struct {
	shared.BaseDomainEvent
	OrderID         uuid.UUID `json:"order_id"`
	ShopID          uuid.UUID `json:"shop_id"`
	PlatformOrderID string    `json:"platform_order_id"`
}

// NewOrderImportedEvent creates an OrderImportedEvent for o
func NewOrderImportedEvent(o *Order) *OrderImportedEvent {
	return &OrderImportedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeOrderImported, AggregateTypeOrder, o.ID),
		OrderID:         o.ID,
		ShopID:          o.ShopID,
		PlatformOrderID: o.PlatformOrderID,
	}
}

// PurchaseCreatedEvent is raised when a channel accepts a purchase
type PurchaseCreatedEvent struct {
	shared.BaseDomainEvent
	ChannelID   uuid.UUID   `json:"channel_id"`
	PurchaseID  string      `json:"purchase_id"`
	CartItemIDs []uuid.UUID `json:"cart_item_ids,omitempty"`
}

// NewPurchaseCreatedEvent creates a PurchaseCreatedEvent
func NewPurchaseCreatedEvent(channelID uuid.UUID, purchaseID string, cartItemIDs []uuid.UUID) *PurchaseCreatedEvent {
	return &PurchaseCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseCreated, AggregateTypeChannel, channelID),
		ChannelID:       channelID,
		PurchaseID:      purchaseID,
		CartItemIDs:     cartItemIDs,
	}
}
