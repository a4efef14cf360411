package integration

import (
	"strings"

	"github.com/google/uuid"
	"github.com/openship/backend/internal/domain/shared"
)

// Credentials are the per-instance values sent with every adapter call
type Credentials struct {
	Domain      string
	AccessToken string
}

// Account is the credentialed instance of a Platform shared by Shop and Channel
type Account struct {
	shared.BaseEntity
	Name        string
	Domain      string
	AccessToken string
	PlatformID  *uuid.UUID
	OwnerID     uuid.UUID
	Metadata    map[string]any
}

func newAccount(name, domain, accessToken string, platformID *uuid.UUID, ownerID uuid.UUID) (Account, error) {
	if strings.TrimSpace(name) == "" {
		return Account{}, ErrAccountNameRequired
	}
	if ownerID == uuid.Nil {
		return Account{}, ErrOwnerRequired
	}
	return Account{
		BaseEntity:  shared.NewBaseEntity(),
		Name:        name,
		Domain:      domain,
		AccessToken: accessToken,
		PlatformID:  platformID,
		OwnerID:     ownerID,
		Metadata:    map[string]any{},
	}, nil
}

// Credentials returns the values passed to adapters
func (a *Account) Credentials() Credentials {
	return Credentials{Domain: a.Domain, AccessToken: a.AccessToken}
}

// HasPlatform reports whether the account points at a platform
func (a *Account) HasPlatform() bool {
	return a.PlatformID != nil && *a.PlatformID != uuid.Nil
}

// OwnedBy reports whether userID owns the account
func (a *Account) OwnedBy(userID uuid.UUID) bool {
	return a.OwnerID == userID
}

// UpdateAccessToken stores a token returned by an OAuth callback
func (a *Account) UpdateAccessToken(token string) {
	a.AccessToken = token
	a.Touch()
}

// Shop is a credentialed instance of a shop platform; the unit of order search and sync
type Shop struct {
	Account
}

// NewShop creates a shop owned by ownerID. Ownership is always explicit.
func NewShop(name, domain, accessToken string, platformID *uuid.UUID, ownerID uuid.UUID) (*Shop, error) {
	acc, err := newAccount(name, domain, accessToken, platformID, ownerID)
	if err != nil {
		return nil, err
	}
	return &Shop{Account: acc}, nil
}

// Channel is a credentialed instance of a channel platform; the unit of purchase fan-out
type Channel struct {
	Account
}

// NewChannel creates a channel owned by ownerID
func NewChannel(name, domain, accessToken string, platformID *uuid.UUID, ownerID uuid.UUID) (*Channel, error) {
	acc, err := newAccount(name, domain, accessToken, platformID, ownerID)
	if err != nil {
		return nil, err
	}
	return &Channel{Account: acc}, nil
}
