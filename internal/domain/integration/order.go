package integration

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/openship/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the local lifecycle state of an order
type OrderStatus string

const (
	OrderStatusPending     OrderStatus = "PENDING"
	OrderStatusInProcess   OrderStatus = "INPROCESS"
	OrderStatusAwaiting    OrderStatus = "AWAITING"
	OrderStatusBackordered OrderStatus = "BACKORDERED"
	OrderStatusComplete    OrderStatus = "COMPLETE"
	OrderStatusCancelled   OrderStatus = "CANCELLED"
)

// IsValid checks if the order status is valid
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusInProcess, OrderStatusAwaiting,
		OrderStatusBackordered, OrderStatusComplete, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// IsActive reports whether the order is still being worked
func (s OrderStatus) IsActive() bool {
	return s.IsValid() && s != OrderStatusCancelled && s != OrderStatusComplete
}

// String returns the string representation
func (s OrderStatus) String() string {
	return string(s)
}

// ShippingAddress is the destination copied from the platform order
type ShippingAddress struct {
	FirstName      string `json:"firstName,omitempty"`
	LastName       string `json:"lastName,omitempty"`
	StreetAddress1 string `json:"streetAddress1,omitempty"`
	StreetAddress2 string `json:"streetAddress2,omitempty"`
	City           string `json:"city,omitempty"`
	State          string `json:"state,omitempty"`
	Zip            string `json:"zip,omitempty"`
	Country        string `json:"country,omitempty"`
	Phone          string `json:"phone,omitempty"`
	Email          string `json:"email,omitempty"`
}

// LineItem is a product line as sold on the shop platform
type LineItem struct {
	LineItemID string          `json:"lineItemId,omitempty"`
	ProductID  string          `json:"productId"`
	VariantID  string          `json:"variantId,omitempty"`
	Name       string          `json:"name"`
	Image      string          `json:"image,omitempty"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
}

// Fulfillment is tracking information attached to an order
type Fulfillment struct {
	Company string `json:"company"`
	Number  string `json:"number"`
	URL     string `json:"url,omitempty"`
}

// Order is the canonical local record of a shop order.
// Orders are never deleted, only status-transitioned.
type Order struct {
	shared.BaseEntity
	ShopID          uuid.UUID
	OwnerID         uuid.UUID
	PlatformOrderID string
	OrderName       string
	Link            string
	Status          OrderStatus
	ShippingAddress ShippingAddress
	LineItems       []LineItem
	CartItems       []CartItem
	Fulfillments    []Fulfillment
	Note            string
	TotalPrice      decimal.Decimal
	Cursor          string
	PlacedAt        *time.Time
}

// NewOrder creates a PENDING order imported from a shop
func NewOrder(shopID, ownerID uuid.UUID, platformOrderID string) (*Order, error) {
	if shopID == uuid.Nil {
		return nil, ErrShopRequired
	}
	if strings.TrimSpace(platformOrderID) == "" {
		return nil, ErrPlatformOrderIDRequired
	}
	return &Order{
		BaseEntity:      shared.NewBaseEntity(),
		ShopID:          shopID,
		OwnerID:         ownerID,
		PlatformOrderID: platformOrderID,
		Status:          OrderStatusPending,
		TotalPrice:      decimal.Zero,
	}, nil
}

// Cancel moves the order to CANCELLED. Cancelling an already cancelled
// order is a no-op and reports changed=false.
func (o *Order) Cancel() (changed bool) {
	if o.Status == OrderStatusCancelled {
		return false
	}
	o.Status = OrderStatusCancelled
	o.Touch()
	return true
}

// IsCancelled reports whether the order has been cancelled
func (o *Order) IsCancelled() bool {
	return o.Status == OrderStatusCancelled
}

// CartItem is a product line destined for a channel purchase.
// Once PurchaseID is set the item is immutable evidence of that purchase.
type CartItem struct {
	shared.BaseEntity
	OrderID    *uuid.UUID
	ChannelID  uuid.UUID
	ProductID  string
	VariantID  string
	Name       string
	Image      string
	Quantity   int
	Price      decimal.Decimal
	PurchaseID string
	URL        string
	Error      string
}

// NewCartItem creates a cart item targeting channelID
func NewCartItem(channelID uuid.UUID, productID, variantID string, quantity int, price decimal.Decimal) (*CartItem, error) {
	if channelID == uuid.Nil {
		return nil, ErrChannelRequired
	}
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	return &CartItem{
		BaseEntity: shared.NewBaseEntity(),
		ChannelID:  channelID,
		ProductID:  productID,
		VariantID:  variantID,
		Quantity:   quantity,
		Price:      price,
	}, nil
}

// IsPurchased reports whether a purchase has been recorded
func (c *CartItem) IsPurchased() bool {
	return c.PurchaseID != ""
}

// AttachPurchase records the purchase created for this item.
// Re-attaching the same id is a no-op; a different id is rejected.
func (c *CartItem) AttachPurchase(purchaseID string) error {
	if purchaseID == "" {
		return ErrPurchaseIDRequired
	}
	if c.PurchaseID != "" {
		if c.PurchaseID == purchaseID {
			return nil
		}
		return ErrCartItemAlreadyPurchased
	}
	c.PurchaseID = purchaseID
	c.Error = ""
	c.Touch()
	return nil
}

// RecordError stores a purchase failure message on a not yet purchased item
func (c *CartItem) RecordError(msg string) {
	if c.IsPurchased() {
		return
	}
	c.Error = msg
	c.Touch()
}
