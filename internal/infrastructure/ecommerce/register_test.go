package ecommerce

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openship/backend/internal/domain/integration"
	"github.com/openship/backend/internal/infrastructure/adapter"
)

func TestRegister(t *testing.T) {
	reg := adapter.NewRegistry()
	require.NoError(t, Register(reg, ModulesConfig{}))

	assert.Equal(t, []string{TaobaoModuleName}, reg.Modules(adapter.NamespaceShop))
	assert.Equal(t, []string{DouyinModuleName}, reg.Modules(adapter.NamespaceChannel))

	_, ok := reg.Lookup(adapter.NamespaceShop, TaobaoModuleName, integration.CapabilityCancelOrderWebhook)
	assert.True(t, ok)
	_, ok = reg.Lookup(adapter.NamespaceChannel, DouyinModuleName, integration.CapabilityCreatePurchase)
	assert.True(t, ok)

	// a second registration collides
	assert.ErrorIs(t, Register(reg, ModulesConfig{}), adapter.ErrDuplicateRegistration)
}
