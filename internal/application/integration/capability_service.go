package integration

import (
	"context"
	"errors"
	"fmt"
	"maps"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/openship/backend/internal/domain/integration"
	"github.com/openship/backend/internal/domain/shared"
	"github.com/openship/backend/internal/infrastructure/logger"
)

// Capabilities with their own flows cannot be run through the generic endpoint
var dedicatedCapabilities = map[integration.Capability]bool{
	integration.CapabilityCancelOrderWebhook: true,
	integration.CapabilityCreateOrderWebhook: true,
	integration.CapabilityOAuth:              true,
	integration.CapabilityOAuthCallback:      true,
	integration.CapabilityCreatePurchase:     true,
}

// CapabilityService runs arbitrary capabilities against a shop or channel
// and drives the OAuth handshake that links new accounts.
type CapabilityService struct {
	serviceBase
	shops       integration.ShopRepository
	channels    integration.ChannelRepository
	platforms   integration.PlatformRepository
	caller      CapabilityCaller
	frontendURL string
}

// NewCapabilityService creates a CapabilityService. frontendURL is the
// public origin OAuth redirect URIs are built from.
func NewCapabilityService(
	shops integration.ShopRepository,
	channels integration.ChannelRepository,
	platforms integration.PlatformRepository,
	caller CapabilityCaller,
	frontendURL string,
	opts ...Option,
) *CapabilityService {
	return &CapabilityService{
		serviceBase: newServiceBase(opts),
		shops:       shops,
		channels:    channels,
		platforms:   platforms,
		caller:      caller,
		frontendURL: frontendURL,
	}
}

func checkGeneric(kind integration.PlatformKind, c integration.Capability) error {
	if !c.IsValid() {
		return shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("unknown capability %q", c))
	}
	if !c.SupportedBy(kind) || dedicatedCapabilities[c] {
		return shared.NewDomainError(shared.CodeInvalidInput,
			fmt.Sprintf("%s cannot be executed on a %s", c.Label(), kind))
	}
	return nil
}

// ExecuteForShop invokes c on the actor's shop and returns the payload verbatim
func (s *CapabilityService) ExecuteForShop(ctx context.Context, actorID, shopID uuid.UUID, c integration.Capability, fields map[string]any) (integration.AdapterResult, error) {
	if err := checkGeneric(integration.PlatformKindShop, c); err != nil {
		return nil, err
	}
	ctx = logger.WithShopID(ctx, shopID.String())

	shop, err := s.shops.FindByIDForOwner(ctx, actorID, shopID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, integration.ShopNotFound(shopID.String())
		}
		return nil, err
	}
	platform, err := loadPlatform(ctx, s.platforms, shop.PlatformID)
	if err != nil {
		return nil, err
	}
	return s.caller.Call(ctx, integration.PlatformKindShop, platform, c,
		integration.NewAdapterRequest(shop.Credentials(), fields))
}

// ExecuteForChannel invokes c on the actor's channel and returns the payload verbatim
func (s *CapabilityService) ExecuteForChannel(ctx context.Context, actorID, channelID uuid.UUID, c integration.Capability, fields map[string]any) (integration.AdapterResult, error) {
	if err := checkGeneric(integration.PlatformKindChannel, c); err != nil {
		return nil, err
	}
	ctx = logger.WithChannelID(ctx, channelID.String())

	channel, err := s.channels.FindByIDForOwner(ctx, actorID, channelID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, integration.ChannelNotFound(channelID.String())
		}
		return nil, err
	}
	platform, err := loadPlatform(ctx, s.platforms, channel.PlatformID)
	if err != nil {
		return nil, err
	}
	return s.caller.Call(ctx, integration.PlatformKindChannel, platform, c,
		integration.NewAdapterRequest(channel.Credentials(), fields))
}

// OAuthAccount is the shop or channel linked by an OAuth callback
type OAuthAccount struct {
	Kind   integration.PlatformKind `json:"kind"`
	ID     uuid.UUID                `json:"id"`
	Name   string                   `json:"name"`
	Domain string                   `json:"domain"`
}

func (s *CapabilityService) oauthPlatform(ctx context.Context, actorID uuid.UUID, kind integration.PlatformKind, platformID uuid.UUID) (*integration.Platform, error) {
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: %q", integration.ErrInvalidPlatformKind, kind)
	}
	p, err := s.platforms.FindByIDForOwner(ctx, actorID, platformID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, &integration.NotFoundError{Kind: "Platform", ID: platformID.String()}
		}
		return nil, err
	}
	if p.Kind != kind {
		return nil, &integration.NotFoundError{Kind: "Platform", ID: platformID.String()}
	}
	return p, nil
}

func (s *CapabilityService) oauthFields(p *integration.Platform, domain string, extra map[string]string) map[string]any {
	fields := make(map[string]any, len(extra)+3)
	for k, v := range extra {
		fields[k] = v
	}
	fields["domain"] = domain
	fields["appKey"] = p.AppKey
	fields["appSecret"] = p.AppSecret
	fields["redirectUri"] = p.CallbackURL(s.frontendURL)
	return fields
}

// OAuthURL asks the platform's oAuthFunction for the authorization URL the
// user should be redirected to for domain
func (s *CapabilityService) OAuthURL(ctx context.Context, actorID uuid.UUID, kind integration.PlatformKind, platformID uuid.UUID, domain string) (string, error) {
	p, err := s.oauthPlatform(ctx, actorID, kind, platformID)
	if err != nil {
		return "", err
	}
	res, err := s.caller.Call(ctx, kind, p, integration.CapabilityOAuth,
		integration.NewAdapterRequest(integration.Credentials{Domain: domain}, s.oauthFields(p, domain, nil)))
	if err != nil {
		return "", err
	}
	authURL := res.String("authUrl")
	if authURL == "" {
		authURL = res.String("url")
	}
	if authURL == "" {
		return "", &integration.AdapterError{Message: "OAuth function returned no authorization URL"}
	}
	return authURL, nil
}

// OAuthCallback exchanges the callback parameters for an access token via
// oAuthCallbackFunction and stores a new shop or channel owned by the actor
func (s *CapabilityService) OAuthCallback(ctx context.Context, actorID uuid.UUID, kind integration.PlatformKind, platformID uuid.UUID, params map[string]string) (*OAuthAccount, error) {
	p, err := s.oauthPlatform(ctx, actorID, kind, platformID)
	if err != nil {
		return nil, err
	}
	domain := params["domain"]
	if domain == "" {
		domain = params["shop"]
	}
	extra := maps.Clone(params)
	delete(extra, "domain")

	res, err := s.caller.Call(ctx, kind, p, integration.CapabilityOAuthCallback,
		integration.NewAdapterRequest(integration.Credentials{Domain: domain}, s.oauthFields(p, domain, extra)))
	if err != nil {
		return nil, err
	}
	token := res.String("accessToken")
	if token == "" {
		return nil, &integration.AdapterError{Message: "OAuth callback returned no access token"}
	}
	if d := res.String("domain"); d != "" {
		domain = d
	}
	name := res.String("name")
	if name == "" {
		name = domain
	}
	if name == "" {
		name = p.Name
	}

	out := &OAuthAccount{Kind: kind, Name: name, Domain: domain}
	if kind == integration.PlatformKindShop {
		shop, err := integration.NewShop(name, domain, token, &p.ID, actorID)
		if err != nil {
			return nil, err
		}
		if err := s.shops.Save(ctx, shop); err != nil {
			return nil, err
		}
		out.ID = shop.ID
	} else {
		channel, err := integration.NewChannel(name, domain, token, &p.ID, actorID)
		if err != nil {
			return nil, err
		}
		if err := s.channels.Save(ctx, channel); err != nil {
			return nil, err
		}
		out.ID = channel.ID
	}
	logger.L(ctx).Info("linked account via OAuth",
		zap.String("kind", kind.String()),
		zap.String("account_id", out.ID.String()),
		zap.String("platform_id", p.ID.String()),
	)
	return out, nil
}
