package models

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/openship/backend/internal/domain/integration"
)

// PlatformModel is the persistence model for the Platform domain entity.
// Capability identifiers are stored as one JSON object keyed by export name.
type PlatformModel struct {
	BaseModel
	Kind          integration.PlatformKind `gorm:"type:varchar(16);not null;index:idx_platform_owner_kind,priority:2"`
	Name          string                   `gorm:"type:varchar(100);not null"`
	AppKey        string                   `gorm:"type:varchar(255)"`
	AppSecret     string                   `gorm:"type:varchar(255)"`
	OwnerID       uuid.UUID                `gorm:"type:uuid;not null;index:idx_platform_owner_kind,priority:1"`
	FunctionsJSON string                   `gorm:"type:jsonb;column:functions;not null;default:'{}'"`
}

// TableName returns the table name for GORM
func (PlatformModel) TableName() string {
	return "platforms"
}

// ToDomain converts the persistence model to a domain Platform.
// Stored identifiers are re-parsed so a bad row surfaces here, not at dispatch.
func (m *PlatformModel) ToDomain() (*integration.Platform, error) {
	p := &integration.Platform{
		BaseEntity:   m.BaseModel.ToDomain(),
		Kind:         m.Kind,
		Name:         m.Name,
		AppKey:       m.AppKey,
		AppSecret:    m.AppSecret,
		OwnerID:      m.OwnerID,
		Capabilities: make(map[integration.Capability]integration.CapabilityTarget),
	}
	if m.FunctionsJSON == "" {
		return p, nil
	}
	var identifiers map[integration.Capability]string
	if err := json.Unmarshal([]byte(m.FunctionsJSON), &identifiers); err != nil {
		return nil, fmt.Errorf("platform %s: decode functions: %w", m.ID, err)
	}
	for c, id := range identifiers {
		if err := p.SetCapability(c, id); err != nil {
			return nil, fmt.Errorf("platform %s: %w", m.ID, err)
		}
	}
	// SetCapability touches the entity
	p.UpdatedAt = m.UpdatedAt
	return p, nil
}

// FromDomain populates the persistence model from a domain Platform
func (m *PlatformModel) FromDomain(p *integration.Platform) {
	m.FromDomainBaseEntity(p.BaseEntity)
	m.Kind = p.Kind
	m.Name = p.Name
	m.AppKey = p.AppKey
	m.AppSecret = p.AppSecret
	m.OwnerID = p.OwnerID
	m.FunctionsJSON = "{}"
	if ids := p.Identifiers(); len(ids) > 0 {
		if b, err := json.Marshal(ids); err == nil {
			m.FunctionsJSON = string(b)
		}
	}
}

// PlatformModelFromDomain creates a new persistence model from a domain Platform
func PlatformModelFromDomain(p *integration.Platform) *PlatformModel {
	m := &PlatformModel{}
	m.FromDomain(p)
	return m
}

// AccountModel holds the columns shared by shops and channels
type AccountModel struct {
	BaseModel
	Name         string     `gorm:"type:varchar(255);not null"`
	Domain       string     `gorm:"type:varchar(500)"`
	AccessToken  string     `gorm:"type:text"`
	PlatformID   *uuid.UUID `gorm:"type:uuid;index"`
	OwnerID      uuid.UUID  `gorm:"type:uuid;not null;index"`
	MetadataJSON string     `gorm:"type:jsonb;column:metadata;not null;default:'{}'"`
}

func (m *AccountModel) toDomain() integration.Account {
	acc := integration.Account{
		BaseEntity:  m.BaseModel.ToDomain(),
		Name:        m.Name,
		Domain:      m.Domain,
		AccessToken: m.AccessToken,
		PlatformID:  m.PlatformID,
		OwnerID:     m.OwnerID,
		Metadata:    map[string]any{},
	}
	if m.MetadataJSON != "" {
		_ = json.Unmarshal([]byte(m.MetadataJSON), &acc.Metadata)
	}
	return acc
}

func (m *AccountModel) fromDomain(a *integration.Account) {
	m.FromDomainBaseEntity(a.BaseEntity)
	m.Name = a.Name
	m.Domain = a.Domain
	m.AccessToken = a.AccessToken
	m.PlatformID = a.PlatformID
	m.OwnerID = a.OwnerID
	m.MetadataJSON = "{}"
	if len(a.Metadata) > 0 {
		if b, err := json.Marshal(a.Metadata); err == nil {
			m.MetadataJSON = string(b)
		}
	}
}

// ShopModel is the persistence model for the Shop domain entity
type ShopModel struct {
	AccountModel
}

// TableName returns the table name for GORM
func (ShopModel) TableName() string {
	return "shops"
}

// ToDomain converts the persistence model to a domain Shop
func (m *ShopModel) ToDomain() *integration.Shop {
	return &integration.Shop{Account: m.toDomain()}
}

// ShopModelFromDomain creates a new persistence model from a domain Shop
func ShopModelFromDomain(s *integration.Shop) *ShopModel {
	m := &ShopModel{}
	m.fromDomain(&s.Account)
	return m
}

// ChannelModel is the persistence model for the Channel domain entity
type ChannelModel struct {
	AccountModel
}

// TableName returns the table name for GORM
func (ChannelModel) TableName() string {
	return "channels"
}

// ToDomain converts the persistence model to a domain Channel
func (m *ChannelModel) ToDomain() *integration.Channel {
	return &integration.Channel{Account: m.toDomain()}
}

// ChannelModelFromDomain creates a new persistence model from a domain Channel
func ChannelModelFromDomain(c *integration.Channel) *ChannelModel {
	m := &ChannelModel{}
	m.fromDomain(&c.Account)
	return m
}
