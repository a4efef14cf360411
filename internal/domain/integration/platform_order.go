package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ExternalID is an identifier assigned by a platform. Platforms send ids
// either as JSON strings or as JSON numbers; numbers keep every digit.
type ExternalID string

// UnmarshalJSON accepts a string, a number or null
func (id *ExternalID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*id = ""
		return nil
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ExternalID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("%w: id must be a string or number, got %s", ErrInvalidResponse, b)
	}
	*id = ExternalID(n.String())
	return nil
}

// String returns the id as text
func (id ExternalID) String() string {
	return string(id)
}

// PlatformOrder is the normalized order shape every searchOrders
// adapter returns, remote or local.
type PlatformOrder struct {
	OrderID        ExternalID         `json:"orderId"`
	OrderName      string             `json:"orderName,omitempty"`
	Link           string             `json:"link,omitempty"`
	Date           string             `json:"date,omitempty"`
	FirstName      string             `json:"firstName,omitempty"`
	LastName       string             `json:"lastName,omitempty"`
	StreetAddress1 string             `json:"streetAddress1,omitempty"`
	StreetAddress2 string             `json:"streetAddress2,omitempty"`
	City           string             `json:"city,omitempty"`
	State          string             `json:"state,omitempty"`
	Zip            string             `json:"zip,omitempty"`
	Country        string             `json:"country,omitempty"`
	Phone          string             `json:"phone,omitempty"`
	Email          string             `json:"email,omitempty"`
	CartItems      []PlatformCartItem `json:"cartItems,omitempty"`
	LineItems      []LineItem         `json:"lineItems,omitempty"`
	Fulfillments   []Fulfillment      `json:"fulfillments,omitempty"`
	Note           string             `json:"note,omitempty"`
	TotalPrice     decimal.Decimal    `json:"totalPrice"`
	Cursor         string             `json:"cursor,omitempty"`
}

// ChannelRef is the channel summary embedded in platform cart items
type ChannelRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// PlatformCartItem is a cart line reported alongside a platform order
type PlatformCartItem struct {
	ProductID string          `json:"productId"`
	VariantID string          `json:"variantId,omitempty"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Name      string          `json:"name,omitempty"`
	Image     string          `json:"image,omitempty"`
	Channel   *ChannelRef     `json:"channel,omitempty"`
}

// PlatformOrderPage is one page of a single shop's searchOrders result
type PlatformOrderPage struct {
	Orders      []PlatformOrder `json:"orders"`
	HasNextPage bool            `json:"hasNextPage"`
}

// NextCursor is the cursor of the last order on the page, empty if none
func (p *PlatformOrderPage) NextCursor() string {
	if len(p.Orders) == 0 {
		return ""
	}
	return p.Orders[len(p.Orders)-1].Cursor
}

// ApplyTo copies platform fields onto a local order, keeping its identity and status
func (po *PlatformOrder) ApplyTo(o *Order) {
	o.OrderName = po.OrderName
	o.Link = po.Link
	o.Note = po.Note
	o.TotalPrice = po.TotalPrice
	o.Cursor = po.Cursor
	o.ShippingAddress = ShippingAddress{
		FirstName:      po.FirstName,
		LastName:       po.LastName,
		StreetAddress1: po.StreetAddress1,
		StreetAddress2: po.StreetAddress2,
		City:           po.City,
		State:          po.State,
		Zip:            po.Zip,
		Country:        po.Country,
		Phone:          po.Phone,
		Email:          po.Email,
	}
	o.LineItems = append([]LineItem(nil), po.LineItems...)
	o.Fulfillments = append([]Fulfillment(nil), po.Fulfillments...)
	if t, err := time.Parse(time.RFC3339, po.Date); err == nil {
		o.PlacedAt = &t
	}
	o.Touch()
}

// ToOrder builds a new local order for shopID from the platform order
func (po *PlatformOrder) ToOrder(shopID, ownerID uuid.UUID) (*Order, error) {
	o, err := NewOrder(shopID, ownerID, po.OrderID.String())
	if err != nil {
		return nil, err
	}
	po.ApplyTo(o)
	return o, nil
}
