package integration

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/openship/backend/internal/domain/integration"
	"github.com/openship/backend/internal/domain/shared"
)

// MockShopRepository is a mock implementation of ShopRepository
type MockShopRepository struct {
	mock.Mock
}

func (m *MockShopRepository) FindByID(ctx context.Context, id uuid.UUID) (*integration.Shop, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.Shop), args.Error(1)
}

func (m *MockShopRepository) FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*integration.Shop, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.Shop), args.Error(1)
}

func (m *MockShopRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]integration.Shop, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.Shop), args.Error(1)
}

func (m *MockShopRepository) Save(ctx context.Context, shop *integration.Shop) error {
	return m.Called(ctx, shop).Error(0)
}

// MockChannelRepository is a mock implementation of ChannelRepository
type MockChannelRepository struct {
	mock.Mock
}

func (m *MockChannelRepository) FindByID(ctx context.Context, id uuid.UUID) (*integration.Channel, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.Channel), args.Error(1)
}

func (m *MockChannelRepository) FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*integration.Channel, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.Channel), args.Error(1)
}

func (m *MockChannelRepository) FindByIDs(ctx context.Context, ownerID uuid.UUID, ids []uuid.UUID) ([]integration.Channel, error) {
	args := m.Called(ctx, ownerID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.Channel), args.Error(1)
}

func (m *MockChannelRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]integration.Channel, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.Channel), args.Error(1)
}

func (m *MockChannelRepository) Save(ctx context.Context, channel *integration.Channel) error {
	return m.Called(ctx, channel).Error(0)
}

// MockPlatformRepository is a mock implementation of PlatformRepository
type MockPlatformRepository struct {
	mock.Mock
}

func (m *MockPlatformRepository) FindByID(ctx context.Context, id uuid.UUID) (*integration.Platform, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.Platform), args.Error(1)
}

func (m *MockPlatformRepository) FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*integration.Platform, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.Platform), args.Error(1)
}

func (m *MockPlatformRepository) ListByKind(ctx context.Context, ownerID uuid.UUID, kind integration.PlatformKind) ([]integration.Platform, error) {
	args := m.Called(ctx, ownerID, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.Platform), args.Error(1)
}

func (m *MockPlatformRepository) Save(ctx context.Context, platform *integration.Platform) error {
	return m.Called(ctx, platform).Error(0)
}

// MockOrderRepository is a mock implementation of OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*integration.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByPlatformOrderID(ctx context.Context, shopID uuid.UUID, platformOrderID string) (*integration.Order, error) {
	args := m.Called(ctx, shopID, platformOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*integration.Order), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, order *integration.Order) error {
	return m.Called(ctx, order).Error(0)
}

func (m *MockOrderRepository) UpsertImported(ctx context.Context, order *integration.Order) (bool, error) {
	args := m.Called(ctx, order)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) CancelIfActive(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockCartItemRepository is a mock implementation of CartItemRepository
type MockCartItemRepository struct {
	mock.Mock
}

func (m *MockCartItemRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]integration.CartItem, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.CartItem), args.Error(1)
}

func (m *MockCartItemRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]integration.CartItem, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]integration.CartItem), args.Error(1)
}

func (m *MockCartItemRepository) Save(ctx context.Context, item *integration.CartItem) error {
	return m.Called(ctx, item).Error(0)
}

func (m *MockCartItemRepository) AttachPurchase(ctx context.Context, ids []uuid.UUID, purchaseID string) (int64, error) {
	args := m.Called(ctx, ids, purchaseID)
	return args.Get(0).(int64), args.Error(1)
}

// MockCaller is a mock implementation of CapabilityCaller
type MockCaller struct {
	mock.Mock
}

func (m *MockCaller) Call(ctx context.Context, kind integration.PlatformKind, p *integration.Platform, c integration.Capability, req integration.AdapterRequest) (integration.AdapterResult, error) {
	args := m.Called(ctx, kind, p, c, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(integration.AdapterResult), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	return m.Called(ctx, events).Error(0)
}

// callerFunc adapts a function to CapabilityCaller for tests that need custom timing
type callerFunc func(ctx context.Context, kind integration.PlatformKind, p *integration.Platform, c integration.Capability, req integration.AdapterRequest) (integration.AdapterResult, error)

func (f callerFunc) Call(ctx context.Context, kind integration.PlatformKind, p *integration.Platform, c integration.Capability, req integration.AdapterRequest) (integration.AdapterResult, error) {
	return f(ctx, kind, p, c, req)
}

func newTestShop(owner uuid.UUID, platformID *uuid.UUID, name string) *integration.Shop {
	shop, err := integration.NewShop(name, name+".example.com", "token-"+name, platformID, owner)
	if err != nil {
		panic(err)
	}
	return shop
}

func newTestChannel(owner uuid.UUID, platformID *uuid.UUID, name string) *integration.Channel {
	ch, err := integration.NewChannel(name, name+".example.com", "token-"+name, platformID, owner)
	if err != nil {
		panic(err)
	}
	return ch
}

func newTestPlatform(kind integration.PlatformKind, owner uuid.UUID, functions map[integration.Capability]string) *integration.Platform {
	p, err := integration.NewPlatform(kind, "test-"+kind.String(), owner, functions)
	if err != nil {
		panic(err)
	}
	return p
}
