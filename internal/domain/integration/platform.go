package integration

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/openship/backend/internal/domain/shared"
)

// PlatformKind separates shop platforms from channel platforms.
// Each kind resolves local modules from its own namespace.
type PlatformKind string

const (
	PlatformKindShop    PlatformKind = "shop"
	PlatformKindChannel PlatformKind = "channel"
)

// IsValid checks if the platform kind is valid
func (k PlatformKind) IsValid() bool {
	return k == PlatformKindShop || k == PlatformKindChannel
}

// String returns the string representation
func (k PlatformKind) String() string {
	return string(k)
}

// Label is the capitalised kind used in user facing messages
func (k PlatformKind) Label() string {
	if !k.IsValid() {
		return "Platform"
	}
	// a Caser is stateful, so one per call
	return cases.Title(language.English).String(string(k))
}

// Platform is a named integration descriptor holding one target per
// configured capability. Shops and channels reference it for dispatch.
type Platform struct {
	shared.BaseEntity
	Kind         PlatformKind
	Name         string
	AppKey       string
	AppSecret    string
	OwnerID      uuid.UUID
	Capabilities map[Capability]CapabilityTarget
}

// NewPlatform builds a platform from raw function identifiers.
// Every identifier is parsed once here so dispatch never re-parses strings.
func NewPlatform(kind PlatformKind, name string, ownerID uuid.UUID, identifiers map[Capability]string) (*Platform, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPlatformKind, kind)
	}
	if strings.TrimSpace(name) == "" {
		return nil, ErrPlatformNameRequired
	}
	p := &Platform{
		BaseEntity:   shared.NewBaseEntity(),
		Kind:         kind,
		Name:         name,
		OwnerID:      ownerID,
		Capabilities: make(map[Capability]CapabilityTarget),
	}
	for c, id := range identifiers {
		if err := p.SetCapability(c, id); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// SetCapability configures or clears (empty identifier) a capability
func (p *Platform) SetCapability(c Capability, identifier string) error {
	if !c.IsValid() {
		return fmt.Errorf("%w: %q", ErrUnknownCapability, c)
	}
	if !c.SupportedBy(p.Kind) {
		return fmt.Errorf("%w: %s on %s platform", ErrCapabilityNotSupported, c, p.Kind)
	}
	target, ok, err := ParseCapabilityTarget(identifier)
	if err != nil {
		return err
	}
	if p.Capabilities == nil {
		p.Capabilities = make(map[Capability]CapabilityTarget)
	}
	if !ok {
		delete(p.Capabilities, c)
	} else {
		p.Capabilities[c] = target
	}
	p.Touch()
	return nil
}

// Target returns the configured target; ok is false when the capability
// is not configured, which callers treat as "feature disabled".
func (p *Platform) Target(c Capability) (CapabilityTarget, bool) {
	if p == nil || p.Capabilities == nil {
		return nil, false
	}
	t, ok := p.Capabilities[c]
	return t, ok
}

// Identifiers flattens the capability map back to raw identifiers
func (p *Platform) Identifiers() map[Capability]string {
	out := make(map[Capability]string, len(p.Capabilities))
	for c, t := range p.Capabilities {
		out[c] = t.Identifier()
	}
	return out
}

// CallbackURL is the OAuth redirect URI registered with the platform
func (p *Platform) CallbackURL(frontendURL string) string {
	return fmt.Sprintf("%s/api/o-auth/%s/callback/%s", strings.TrimRight(frontendURL, "/"), p.Kind, p.ID)
}
