package integration

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPlatform(t *testing.T) {
	owner := uuid.New()

	t.Run("parses identifiers once", func(t *testing.T) {
		p, err := NewPlatform(PlatformKindShop, "Taobao", owner, map[Capability]string{
			CapabilitySearchOrders:       "taobao",
			CapabilityCancelOrderWebhook: "https://hooks.example.com/cancel",
			CapabilityGetProduct:         "",
		})
		require.NoError(t, err)

		target, ok := p.Target(CapabilitySearchOrders)
		require.True(t, ok)
		assert.Equal(t, TargetLocal{Module: "taobao"}, target)

		target, ok = p.Target(CapabilityCancelOrderWebhook)
		require.True(t, ok)
		assert.True(t, IsRemote(target))

		_, ok = p.Target(CapabilityGetProduct)
		assert.False(t, ok)
	})

	t.Run("invalid kind", func(t *testing.T) {
		_, err := NewPlatform(PlatformKind("warehouse"), "X", owner, nil)
		assert.ErrorIs(t, err, ErrInvalidPlatformKind)
	})

	t.Run("name required", func(t *testing.T) {
		_, err := NewPlatform(PlatformKindShop, " ", owner, nil)
		assert.ErrorIs(t, err, ErrPlatformNameRequired)
	})

	t.Run("purchase on shop rejected", func(t *testing.T) {
		_, err := NewPlatform(PlatformKindShop, "Shopify", owner, map[Capability]string{
			CapabilityCreatePurchase: "https://x.test",
		})
		assert.ErrorIs(t, err, ErrCapabilityNotSupported)
	})

	t.Run("bad remote url", func(t *testing.T) {
		_, err := NewPlatform(PlatformKindChannel, "Douyin", owner, map[Capability]string{
			CapabilityCreatePurchase: "http://",
		})
		assert.ErrorIs(t, err, ErrInvalidCapabilityTarget)
	})
}

func TestPlatform_SetCapabilityClears(t *testing.T) {
	p, err := NewPlatform(PlatformKindChannel, "Douyin", uuid.New(), map[Capability]string{
		CapabilityCreatePurchase: "douyin",
	})
	require.NoError(t, err)

	require.NoError(t, p.SetCapability(CapabilityCreatePurchase, ""))
	_, ok := p.Target(CapabilityCreatePurchase)
	assert.False(t, ok)

	assert.ErrorIs(t, p.SetCapability(Capability("nope"), "x"), ErrUnknownCapability)
}

func TestPlatform_TargetNilSafe(t *testing.T) {
	var p *Platform
	_, ok := p.Target(CapabilitySearchOrders)
	assert.False(t, ok)
}

func TestPlatform_Identifiers(t *testing.T) {
	ids := map[Capability]string{
		CapabilitySearchProducts: "https://api.example.com/search",
		CapabilityCreatePurchase: "douyin",
	}
	p, err := NewPlatform(PlatformKindChannel, "Douyin", uuid.New(), ids)
	require.NoError(t, err)
	assert.Equal(t, ids, p.Identifiers())
}

func TestPlatform_CallbackURL(t *testing.T) {
	p, err := NewPlatform(PlatformKindShop, "Shopify", uuid.New(), nil)
	require.NoError(t, err)
	assert.Equal(t, "https://app.example.com/api/o-auth/shop/callback/"+p.ID.String(), p.CallbackURL("https://app.example.com/"))
}

func TestPlatformKind_Label(t *testing.T) {
	assert.Equal(t, "Shop", PlatformKindShop.Label())
	assert.Equal(t, "Channel", PlatformKindChannel.Label())
	assert.Equal(t, "Platform", PlatformKind("warehouse").Label())
	assert.Equal(t, "Shop platform not configured.", PlatformNotConfigured(PlatformKindShop).Message)
}
