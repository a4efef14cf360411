package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/openship/backend/internal/domain/integration"
	"github.com/shopspring/decimal"
)

// OrderModel is the persistence model for the Order domain entity.
// (shop_id, platform_order_id) is unique so imports can upsert.
type OrderModel struct {
	BaseModel
	ShopID              uuid.UUID               `gorm:"type:uuid;not null;uniqueIndex:idx_orders_shop_platform_order,priority:1"`
	OwnerID             uuid.UUID               `gorm:"type:uuid;not null;index"`
	PlatformOrderID     string                  `gorm:"type:varchar(100);not null;uniqueIndex:idx_orders_shop_platform_order,priority:2"`
	OrderName           string                  `gorm:"type:varchar(255)"`
	Link                string                  `gorm:"type:varchar(1000)"`
	Status              integration.OrderStatus `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	ShippingAddressJSON string                  `gorm:"type:jsonb;column:shipping_address;not null;default:'{}'"`
	LineItemsJSON       string                  `gorm:"type:jsonb;column:line_items;not null;default:'[]'"`
	FulfillmentsJSON    string                  `gorm:"type:jsonb;column:fulfillments;not null;default:'[]'"`
	Note                string                  `gorm:"type:text"`
	TotalPrice          decimal.Decimal         `gorm:"type:decimal(18,4);not null;default:0"`
	Cursor              string                  `gorm:"type:varchar(255)"`
	PlacedAt            *time.Time
}

// TableName returns the table name for GORM
func (OrderModel) TableName() string {
	return "orders"
}

// ToDomain converts the persistence model to a domain Order. Cart items are
// loaded separately.
func (m *OrderModel) ToDomain() *integration.Order {
	o := &integration.Order{
		BaseEntity:      m.BaseModel.ToDomain(),
		ShopID:          m.ShopID,
		OwnerID:         m.OwnerID,
		PlatformOrderID: m.PlatformOrderID,
		OrderName:       m.OrderName,
		Link:            m.Link,
		Status:          m.Status,
		Note:            m.Note,
		TotalPrice:      m.TotalPrice,
		Cursor:          m.Cursor,
		PlacedAt:        m.PlacedAt,
		LineItems:       []integration.LineItem{},
		Fulfillments:    []integration.Fulfillment{},
	}
	if m.ShippingAddressJSON != "" {
		_ = json.Unmarshal([]byte(m.ShippingAddressJSON), &o.ShippingAddress)
	}
	if m.LineItemsJSON != "" {
		_ = json.Unmarshal([]byte(m.LineItemsJSON), &o.LineItems)
	}
	if m.FulfillmentsJSON != "" {
		_ = json.Unmarshal([]byte(m.FulfillmentsJSON), &o.Fulfillments)
	}
	return o
}

// FromDomain populates the persistence model from a domain Order
func (m *OrderModel) FromDomain(o *integration.Order) {
	m.FromDomainBaseEntity(o.BaseEntity)
	m.ShopID = o.ShopID
	m.OwnerID = o.OwnerID
	m.PlatformOrderID = o.PlatformOrderID
	m.OrderName = o.OrderName
	m.Link = o.Link
	m.Status = o.Status
	m.Note = o.Note
	m.TotalPrice = o.TotalPrice
	m.Cursor = o.Cursor
	m.PlacedAt = o.PlacedAt
	m.ShippingAddressJSON = marshalOr(o.ShippingAddress, "{}")
	m.LineItemsJSON = marshalOr(o.LineItems, "[]")
	m.FulfillmentsJSON = marshalOr(o.Fulfillments, "[]")
}

// OrderModelFromDomain creates a new persistence model from a domain Order
func OrderModelFromDomain(o *integration.Order) *OrderModel {
	m := &OrderModel{}
	m.FromDomain(o)
	return m
}

// CartItemModel is the persistence model for the CartItem domain entity
type CartItemModel struct {
	BaseModel
	OrderID    *uuid.UUID      `gorm:"type:uuid;index"`
	ChannelID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID  string          `gorm:"type:varchar(100);not null"`
	VariantID  string          `gorm:"type:varchar(100)"`
	Name       string          `gorm:"type:varchar(500)"`
	Image      string          `gorm:"type:varchar(1000)"`
	Quantity   int             `gorm:"not null"`
	Price      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	PurchaseID string          `gorm:"type:varchar(100);not null;default:'';index"`
	URL        string          `gorm:"type:varchar(1000)"`
	Error      string          `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (CartItemModel) TableName() string {
	return "cart_items"
}

// ToDomain converts the persistence model to a domain CartItem
func (m *CartItemModel) ToDomain() *integration.CartItem {
	return &integration.CartItem{
		BaseEntity: m.BaseModel.ToDomain(),
		OrderID:    m.OrderID,
		ChannelID:  m.ChannelID,
		ProductID:  m.ProductID,
		VariantID:  m.VariantID,
		Name:       m.Name,
		Image:      m.Image,
		Quantity:   m.Quantity,
		Price:      m.Price,
		PurchaseID: m.PurchaseID,
		URL:        m.URL,
		Error:      m.Error,
	}
}

// FromDomain populates the persistence model from a domain CartItem
func (m *CartItemModel) FromDomain(c *integration.CartItem) {
	m.FromDomainBaseEntity(c.BaseEntity)
	m.OrderID = c.OrderID
	m.ChannelID = c.ChannelID
	m.ProductID = c.ProductID
	m.VariantID = c.VariantID
	m.Name = c.Name
	m.Image = c.Image
	m.Quantity = c.Quantity
	m.Price = c.Price
	m.PurchaseID = c.PurchaseID
	m.URL = c.URL
	m.Error = c.Error
}

// CartItemModelFromDomain creates a new persistence model from a domain CartItem
func CartItemModelFromDomain(c *integration.CartItem) *CartItemModel {
	m := &CartItemModel{}
	m.FromDomain(c)
	return m
}

func marshalOr(v any, empty string) string {
	b, err := json.Marshal(v)
	if err != nil || string(b) == "null" {
		return empty
	}
	return string(b)
}
