package dto

import "github.com/shopspring/decimal"

// CartLineRequest is one line of a purchase request
type CartLineRequest struct {
	ID        string          `json:"id" binding:"omitempty,uuid"`
	ChannelID string          `json:"channelId" binding:"required,uuid"`
	ProductID string          `json:"productId" binding:"required"`
	VariantID string          `json:"variantId"`
	Name      string          `json:"name"`
	Image     string          `json:"image"`
	Quantity  int             `json:"quantity" binding:"required,gt=0"`
	Price     decimal.Decimal `json:"price"`
}

// CreatePurchasesRequest buys a cart across its channels.
// Purchase carries customer and shipping fields passed to every channel.
type CreatePurchasesRequest struct {
	OrderID  string            `json:"orderId" binding:"omitempty,uuid"`
	Items    []CartLineRequest `json:"items" binding:"required,min=1,dive"`
	Purchase map[string]any    `json:"purchase"`
}

// AccountCapabilityURI addresses a capability on a shop or channel
type AccountCapabilityURI struct {
	ID         string `uri:"id" binding:"required,uuid"`
	Capability string `uri:"capability" binding:"required,capability"`
}

// IDURI addresses a shop or channel
type IDURI struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// OAuthURI addresses a platform for the OAuth handshake
type OAuthURI struct {
	Kind       string `uri:"kind" binding:"required,oneof=shop channel"`
	PlatformID string `uri:"platformId" binding:"required,uuid"`
}

// OAuthStartQuery is the shop domain to authorize
type OAuthStartQuery struct {
	Domain string `form:"domain" binding:"required"`
}

// OAuthURLResponse is the authorization URL the client should open
type OAuthURLResponse struct {
	AuthURL string `json:"authUrl"`
}
