package integration

import (
	"context"

	"github.com/google/uuid"
)

// PlatformRepository persists platform configurations
type PlatformRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Platform, error)
	FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*Platform, error)
	ListByKind(ctx context.Context, ownerID uuid.UUID, kind PlatformKind) ([]Platform, error)
	Save(ctx context.Context, platform *Platform) error
}

// ShopRepository persists shops.
// Finders return shared.ErrNotFound when no row matches.
type ShopRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Shop, error)
	FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*Shop, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Shop, error)
	Save(ctx context.Context, shop *Shop) error
}

// ChannelRepository persists channels
type ChannelRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Channel, error)
	FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*Channel, error)
	FindByIDs(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]Channel, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Channel, error)
	Save(ctx context.Context, channel *Channel) error
}

// OrderRepository persists orders imported from shops
type OrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByPlatformOrderID(ctx context.Context, shopID uuid.UUID, platformOrderID string) (*Order, error)
	Save(ctx context.Context, order *Order) error
	// UpsertImported inserts or refreshes the order keyed by (shop, platform order id).
	// created is true only when a new row was inserted.
	UpsertImported(ctx context.Context, order *Order) (created bool, err error)
	// CancelIfActive flips status to CANCELLED unless it already is.
	CancelIfActive(ctx context.Context, id uuid.UUID) (changed bool, err error)
}

// CartItemRepository persists cart items
type CartItemRepository interface {
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]CartItem, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]CartItem, error)
	Save(ctx context.Context, item *CartItem) error
	// AttachPurchase sets purchase id on items that have none; returns rows changed.
	AttachPurchase(ctx context.Context, ids []uuid.UUID, purchaseID string) (int64, error)
}
