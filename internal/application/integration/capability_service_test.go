package integration

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/openship/backend/internal/domain/integration"
	"github.com/openship/backend/internal/domain/shared"
)

type capabilityFixture struct {
	shops     *MockShopRepository
	channels  *MockChannelRepository
	platforms *MockPlatformRepository
	caller    *MockCaller
	owner     uuid.UUID
}

func newCapabilityFixture() *capabilityFixture {
	return &capabilityFixture{
		shops:     new(MockShopRepository),
		channels:  new(MockChannelRepository),
		platforms: new(MockPlatformRepository),
		caller:    new(MockCaller),
		owner:     uuid.New(),
	}
}

func (f *capabilityFixture) service() *CapabilityService {
	return NewCapabilityService(f.shops, f.channels, f.platforms, f.caller, "https://app.example.com/")
}

func TestCapabilityService_ExecuteForShop(t *testing.T) {
	f := newCapabilityFixture()
	platform := newTestPlatform(integration.PlatformKindShop, f.owner, nil)
	shop := newTestShop(f.owner, &platform.ID, "tracked")
	f.shops.On("FindByIDForOwner", mock.Anything, f.owner, shop.ID).Return(shop, nil)
	f.platforms.On("FindByID", mock.Anything, platform.ID).Return(platform, nil)
	f.caller.On("Call", mock.Anything, integration.PlatformKindShop, platform, integration.CapabilityAddTracking,
		mock.MatchedBy(func(req integration.AdapterRequest) bool {
			return req.Domain == shop.Domain && req.Fields["trackingNumber"] == "1Z999"
		})).
		Return(integration.AdapterResult{"success": true}, nil)

	res, err := f.service().ExecuteForShop(context.Background(), f.owner, shop.ID, integration.CapabilityAddTracking,
		map[string]any{"trackingNumber": "1Z999"})
	require.NoError(t, err)
	assert.True(t, res.Bool("success"))
}

func TestCapabilityService_ExecuteRejectsCapabilities(t *testing.T) {
	f := newCapabilityFixture()
	svc := f.service()
	ctx := context.Background()
	id := uuid.New()

	cases := []struct {
		name string
		run  func() error
	}{
		{"unknown", func() error {
			_, err := svc.ExecuteForShop(ctx, f.owner, id, "launchRocketFunction", nil)
			return err
		}},
		{"channel-only on shop", func() error {
			_, err := svc.ExecuteForShop(ctx, f.owner, id, integration.CapabilityCreatePurchase, nil)
			return err
		}},
		{"shop-only on channel", func() error {
			_, err := svc.ExecuteForChannel(ctx, f.owner, id, integration.CapabilitySearchOrders, nil)
			return err
		}},
		{"webhook handler", func() error {
			_, err := svc.ExecuteForShop(ctx, f.owner, id, integration.CapabilityCancelOrderWebhook, nil)
			return err
		}},
		{"oauth", func() error {
			_, err := svc.ExecuteForChannel(ctx, f.owner, id, integration.CapabilityOAuth, nil)
			return err
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.run()
			require.Error(t, err)
			assert.Equal(t, shared.CodeInvalidInput, ErrorCode(err))
		})
	}
	f.caller.AssertNotCalled(t, "Call", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCapabilityService_ExecuteForChannel_NotFound(t *testing.T) {
	f := newCapabilityFixture()
	id := uuid.New()
	f.channels.On("FindByIDForOwner", mock.Anything, f.owner, id).Return(nil, shared.ErrNotFound)

	_, err := f.service().ExecuteForChannel(context.Background(), f.owner, id, integration.CapabilitySearchProducts, nil)
	require.Error(t, err)
	assert.Equal(t, "Channel not found", err.Error())
}

func TestCapabilityService_OAuthURL(t *testing.T) {
	f := newCapabilityFixture()
	platform := newTestPlatform(integration.PlatformKindShop, f.owner, nil)
	platform.AppKey = "key"
	platform.AppSecret = "secret"
	f.platforms.On("FindByIDForOwner", mock.Anything, f.owner, platform.ID).Return(platform, nil)

	var got integration.AdapterRequest
	f.caller.On("Call", mock.Anything, integration.PlatformKindShop, platform, integration.CapabilityOAuth, mock.Anything).
		Run(func(args mock.Arguments) { got = args.Get(4).(integration.AdapterRequest) }).
		Return(integration.AdapterResult{"authUrl": "https://store.example.com/oauth?client_id=key"}, nil)

	url, err := f.service().OAuthURL(context.Background(), f.owner, integration.PlatformKindShop, platform.ID, "store.example.com")
	require.NoError(t, err)
	assert.Equal(t, "https://store.example.com/oauth?client_id=key", url)
	assert.Equal(t, "store.example.com", got.Domain)
	assert.Equal(t, "key", got.Fields["appKey"])
	assert.Equal(t, "https://app.example.com/api/o-auth/shop/callback/"+platform.ID.String(), got.Fields["redirectUri"])
}

func TestCapabilityService_OAuthURL_KindMismatch(t *testing.T) {
	f := newCapabilityFixture()
	platform := newTestPlatform(integration.PlatformKindChannel, f.owner, nil)
	f.platforms.On("FindByIDForOwner", mock.Anything, f.owner, platform.ID).Return(platform, nil)

	_, err := f.service().OAuthURL(context.Background(), f.owner, integration.PlatformKindShop, platform.ID, "x")
	require.Error(t, err)
	assert.Equal(t, "Platform not found", err.Error())
}

func TestCapabilityService_OAuthURL_NoURL(t *testing.T) {
	f := newCapabilityFixture()
	platform := newTestPlatform(integration.PlatformKindChannel, f.owner, nil)
	f.platforms.On("FindByIDForOwner", mock.Anything, f.owner, platform.ID).Return(platform, nil)
	f.caller.On("Call", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(integration.AdapterResult{}, nil)

	_, err := f.service().OAuthURL(context.Background(), f.owner, integration.PlatformKindChannel, platform.ID, "x")
	assert.True(t, integration.IsAdapter(err))
}

func TestCapabilityService_OAuthCallback_CreatesShop(t *testing.T) {
	f := newCapabilityFixture()
	platform := newTestPlatform(integration.PlatformKindShop, f.owner, nil)
	f.platforms.On("FindByIDForOwner", mock.Anything, f.owner, platform.ID).Return(platform, nil)
	f.caller.On("Call", mock.Anything, integration.PlatformKindShop, platform, integration.CapabilityOAuthCallback,
		mock.MatchedBy(func(req integration.AdapterRequest) bool {
			return req.Domain == "store.example.com" && req.Fields["code"] == "abc"
		})).
		Return(integration.AdapterResult{"accessToken": "tok-1"}, nil)

	var saved *integration.Shop
	f.shops.On("Save", mock.Anything, mock.AnythingOfType("*integration.Shop")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*integration.Shop) }).
		Return(nil)

	acct, err := f.service().OAuthCallback(context.Background(), f.owner, integration.PlatformKindShop, platform.ID,
		map[string]string{"domain": "store.example.com", "code": "abc"})
	require.NoError(t, err)
	require.NotNil(t, saved)
	assert.Equal(t, saved.ID, acct.ID)
	assert.Equal(t, "store.example.com", acct.Name)
	assert.Equal(t, "tok-1", saved.AccessToken)
	assert.Equal(t, f.owner, saved.OwnerID)
	require.NotNil(t, saved.PlatformID)
	assert.Equal(t, platform.ID, *saved.PlatformID)
	f.channels.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCapabilityService_OAuthCallback_CreatesChannel(t *testing.T) {
	f := newCapabilityFixture()
	platform := newTestPlatform(integration.PlatformKindChannel, f.owner, nil)
	f.platforms.On("FindByIDForOwner", mock.Anything, f.owner, platform.ID).Return(platform, nil)
	f.caller.On("Call", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(integration.AdapterResult{"accessToken": "tok-2", "name": "Supplier", "domain": "supplier.example.com"}, nil)
	f.channels.On("Save", mock.Anything, mock.AnythingOfType("*integration.Channel")).Return(nil)

	acct, err := f.service().OAuthCallback(context.Background(), f.owner, integration.PlatformKindChannel, platform.ID,
		map[string]string{"code": "xyz"})
	require.NoError(t, err)
	assert.Equal(t, integration.PlatformKindChannel, acct.Kind)
	assert.Equal(t, "Supplier", acct.Name)
	assert.Equal(t, "supplier.example.com", acct.Domain)
}

func TestCapabilityService_OAuthCallback_NoToken(t *testing.T) {
	f := newCapabilityFixture()
	platform := newTestPlatform(integration.PlatformKindShop, f.owner, nil)
	f.platforms.On("FindByIDForOwner", mock.Anything, f.owner, platform.ID).Return(platform, nil)
	f.caller.On("Call", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(integration.AdapterResult{"error": "denied"}, nil)

	_, err := f.service().OAuthCallback(context.Background(), f.owner, integration.PlatformKindShop, platform.ID, nil)
	require.Error(t, err)
	f.shops.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}
