package integration

import "strings"

// Capability is one named operation a Platform may or may not support
type Capability string

const (
	CapabilityOrderLink              Capability = "orderLinkFunction"
	CapabilityUpdateProduct          Capability = "updateProductFunction"
	CapabilitySearchProducts         Capability = "searchProductsFunction"
	CapabilityGetProduct             Capability = "getProductFunction"
	CapabilityGetWebhooks            Capability = "getWebhooksFunction"
	CapabilityCreateWebhook          Capability = "createWebhookFunction"
	CapabilityDeleteWebhook          Capability = "deleteWebhookFunction"
	CapabilitySearchOrders           Capability = "searchOrdersFunction"
	CapabilityAddTracking            Capability = "addTrackingFunction"
	CapabilityAddCartToPlatformOrder Capability = "addCartToPlatformOrderFunction"
	CapabilityCancelOrderWebhook     Capability = "cancelOrderWebhookHandler"
	CapabilityCreateOrderWebhook     Capability = "createOrderWebhookHandler"
	CapabilityOAuth                  Capability = "oAuthFunction"
	CapabilityOAuthCallback          Capability = "oAuthCallbackFunction"
	CapabilityCreatePurchase         Capability = "createPurchaseFunction"
)

type capabilityInfo struct {
	export string
	label  string
	shop   bool
	chann  bool
}

var capabilities = map[Capability]capabilityInfo{
	CapabilityOrderLink:              {"orderLink", "Order link", true, false},
	CapabilityUpdateProduct:          {"updateProduct", "Update product", true, false},
	CapabilitySearchProducts:         {"searchProducts", "Search products", true, true},
	CapabilityGetProduct:             {"getProduct", "Get product", true, true},
	CapabilityGetWebhooks:            {"getWebhooks", "Get webhooks", true, true},
	CapabilityCreateWebhook:          {"createWebhook", "Create webhook", true, true},
	CapabilityDeleteWebhook:          {"deleteWebhook", "Delete webhook", true, true},
	CapabilitySearchOrders:           {"searchOrders", "Search orders", true, false},
	CapabilityAddTracking:            {"addTracking", "Add tracking", true, false},
	CapabilityAddCartToPlatformOrder: {"addCartToPlatformOrder", "Add cart to platform order", true, false},
	CapabilityCancelOrderWebhook:     {"cancelOrderWebhookHandler", "Cancel order webhook handler", true, false},
	CapabilityCreateOrderWebhook:     {"createOrderWebhookHandler", "Create order webhook handler", true, false},
	CapabilityOAuth:                  {"oAuth", "OAuth", true, true},
	CapabilityOAuthCallback:          {"oAuthCallback", "OAuth callback", true, true},
	CapabilityCreatePurchase:         {"createPurchase", "Create purchase", false, true},
}

// AllCapabilities returns every capability in a stable order
func AllCapabilities() []Capability {
	return []Capability{
		CapabilityOrderLink,
		CapabilityUpdateProduct,
		CapabilitySearchProducts,
		CapabilityGetProduct,
		CapabilityGetWebhooks,
		CapabilityCreateWebhook,
		CapabilityDeleteWebhook,
		CapabilitySearchOrders,
		CapabilityAddTracking,
		CapabilityAddCartToPlatformOrder,
		CapabilityCancelOrderWebhook,
		CapabilityCreateOrderWebhook,
		CapabilityOAuth,
		CapabilityOAuthCallback,
		CapabilityCreatePurchase,
	}
}

// ParseCapability accepts either the configuration name
// ("searchOrdersFunction") or the module export name ("searchOrders").
func ParseCapability(name string) (Capability, bool) {
	name = strings.TrimSpace(name)
	if c := Capability(name); c.IsValid() {
		return c, true
	}
	for c, info := range capabilities {
		if info.export == name {
			return c, true
		}
	}
	return "", false
}

// IsValid reports whether c is a known capability
func (c Capability) IsValid() bool {
	_, ok := capabilities[c]
	return ok
}

// String returns the configuration name
func (c Capability) String() string {
	return string(c)
}

// ExportName is the function name a local adapter module exposes for c
func (c Capability) ExportName() string {
	return capabilities[c].export
}

// Label is the human readable name used in error messages
func (c Capability) Label() string {
	return capabilities[c].label
}

// SupportedBy reports whether platforms of the given kind may configure c
func (c Capability) SupportedBy(kind PlatformKind) bool {
	info, ok := capabilities[c]
	if !ok {
		return false
	}
	switch kind {
	case PlatformKindShop:
		return info.shop
	case PlatformKindChannel:
		return info.chann
	default:
		return false
	}
}

// Verb is the lower-case action used in transport error messages,
// e.g. "Failed to create purchase: Bad Gateway".
func (c Capability) Verb() string {
	return strings.ToLower(c.Label())
}
