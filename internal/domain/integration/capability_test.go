package integration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapability_IsValid(t *testing.T) {
	for _, c := range AllCapabilities() {
		assert.True(t, c.IsValid(), c)
		assert.NotEmpty(t, c.ExportName(), c)
		assert.NotEmpty(t, c.Label(), c)
	}
	assert.False(t, Capability("fooFunction").IsValid())
	assert.False(t, Capability("").IsValid())
	assert.Len(t, AllCapabilities(), 15)
}

func TestParseCapability(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Capability
		ok    bool
	}{
		{"config name", "searchOrdersFunction", CapabilitySearchOrders, true},
		{"export name", "searchOrders", CapabilitySearchOrders, true},
		{"webhook handler", "cancelOrderWebhookHandler", CapabilityCancelOrderWebhook, true},
		{"padded", "  createPurchase ", CapabilityCreatePurchase, true},
		{"unknown", "launchRocket", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseCapability(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCapability_SupportedBy(t *testing.T) {
	assert.True(t, CapabilityCreatePurchase.SupportedBy(PlatformKindChannel))
	assert.False(t, CapabilityCreatePurchase.SupportedBy(PlatformKindShop))
	assert.True(t, CapabilitySearchOrders.SupportedBy(PlatformKindShop))
	assert.False(t, CapabilitySearchOrders.SupportedBy(PlatformKindChannel))
	assert.True(t, CapabilityGetProduct.SupportedBy(PlatformKindShop))
	assert.True(t, CapabilityGetProduct.SupportedBy(PlatformKindChannel))
	assert.False(t, CapabilityGetProduct.SupportedBy(PlatformKind("other")))
}

func TestCapability_LabelUsedInMessages(t *testing.T) {
	err := CapabilityNotConfigured(CapabilityCreatePurchase)
	require.NotNil(t, err)
	assert.Equal(t, "Create purchase function not configured.", err.Error())
}
