package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appintegration "github.com/openship/backend/internal/application/integration"
	"github.com/openship/backend/internal/domain/integration"
	"github.com/openship/backend/internal/interfaces/http/dto"
)

// CapabilityExecutor runs capabilities and the OAuth handshake
type CapabilityExecutor interface {
	ExecuteForShop(ctx context.Context, actorID, shopID uuid.UUID, c integration.Capability, fields map[string]any) (integration.AdapterResult, error)
	ExecuteForChannel(ctx context.Context, actorID, channelID uuid.UUID, c integration.Capability, fields map[string]any) (integration.AdapterResult, error)
	OAuthURL(ctx context.Context, actorID uuid.UUID, kind integration.PlatformKind, platformID uuid.UUID, domain string) (string, error)
	OAuthCallback(ctx context.Context, actorID uuid.UUID, kind integration.PlatformKind, platformID uuid.UUID, params map[string]string) (*appintegration.OAuthAccount, error)
}

// CapabilityHandler exposes generic capability calls and OAuth
type CapabilityHandler struct {
	BaseHandler
	capabilities CapabilityExecutor
}

// NewCapabilityHandler creates a CapabilityHandler
func NewCapabilityHandler(capabilities CapabilityExecutor) *CapabilityHandler {
	return &CapabilityHandler{capabilities: capabilities}
}

// ExecuteForShop handles POST /shops/:id/capabilities/:capability
//
// @ID           executeShopCapability
// @Summary      Run a capability on a shop
// @Tags         capabilities
// @Accept       json
// @Produce      json
// @Param        id          path  string  true   "Shop ID"  format(uuid)
// @Param        capability  path  string  true   "Capability name, e.g. searchProducts"
// @Param        request     body  object  false  "Fields forwarded to the adapter"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Failure      502 {object} dto.Response
// @Security     BearerAuth
// @Router       /shops/{id}/capabilities/{capability} [post]
func (h *CapabilityHandler) ExecuteForShop(c *gin.Context) {
	h.execute(c, integration.PlatformKindShop)
}

// ExecuteForChannel handles POST /channels/:id/capabilities/:capability
//
// @ID           executeChannelCapability
// @Summary      Run a capability on a channel
// @Tags         capabilities
// @Accept       json
// @Produce      json
// @Param        id          path  string  true   "Channel ID"  format(uuid)
// @Param        capability  path  string  true   "Capability name, e.g. getWebhooks"
// @Param        request     body  object  false  "Fields forwarded to the adapter"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Failure      502 {object} dto.Response
// @Security     BearerAuth
// @Router       /channels/{id}/capabilities/{capability} [post]
func (h *CapabilityHandler) ExecuteForChannel(c *gin.Context) {
	h.execute(c, integration.PlatformKindChannel)
}

func (h *CapabilityHandler) execute(c *gin.Context, kind integration.PlatformKind) {
	actorID, ok := h.actorID(c)
	if !ok {
		return
	}
	var uri dto.AccountCapabilityURI
	if err := c.ShouldBindUri(&uri); err != nil {
		h.ValidationError(c, err)
		return
	}
	fields, ok := h.bindFields(c)
	if !ok {
		return
	}
	capability, _ := integration.ParseCapability(uri.Capability)
	id := uuid.MustParse(uri.ID)

	var (
		result integration.AdapterResult
		err    error
	)
	if kind == integration.PlatformKindShop {
		result, err = h.capabilities.ExecuteForShop(c.Request.Context(), actorID, id, capability, fields)
	} else {
		result, err = h.capabilities.ExecuteForChannel(c.Request.Context(), actorID, id, capability, fields)
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// OAuthStart handles GET /o-auth/:kind/:platformId?domain=
//
// @ID           startOAuth
// @Summary      Build the platform authorization URL
// @Tags         oauth
// @Produce      json
// @Param        kind        path   string  true  "shop or channel"
// @Param        platformId  path   string  true  "Platform ID"  format(uuid)
// @Param        domain      query  string  true  "Account domain to authorize"
// @Success      200 {object} APIResponse[dto.OAuthURLResponse]
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /o-auth/{kind}/{platformId} [get]
func (h *CapabilityHandler) OAuthStart(c *gin.Context) {
	actorID, ok := h.actorID(c)
	if !ok {
		return
	}
	var uri dto.OAuthURI
	if err := c.ShouldBindUri(&uri); err != nil {
		h.ValidationError(c, err)
		return
	}
	var query dto.OAuthStartQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.ValidationError(c, err)
		return
	}

	url, err := h.capabilities.OAuthURL(c.Request.Context(), actorID,
		integration.PlatformKind(uri.Kind), uuid.MustParse(uri.PlatformID), query.Domain)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.OAuthURLResponse{AuthURL: url})
}

// OAuthCallback handles GET /o-auth/:kind/callback/:platformId.
// Every query parameter is forwarded to the platform.
//
// @ID           completeOAuth
// @Summary      Exchange the OAuth callback for an account
// @Tags         oauth
// @Produce      json
// @Param        kind        path  string  true  "shop or channel"
// @Param        platformId  path  string  true  "Platform ID"  format(uuid)
// @Success      201 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Failure      502 {object} dto.Response
// @Security     BearerAuth
// @Router       /o-auth/{kind}/callback/{platformId} [get]
func (h *CapabilityHandler) OAuthCallback(c *gin.Context) {
	actorID, ok := h.actorID(c)
	if !ok {
		return
	}
	var uri dto.OAuthURI
	if err := c.ShouldBindUri(&uri); err != nil {
		h.ValidationError(c, err)
		return
	}
	params := make(map[string]string)
	for k, v := range c.Request.URL.Query() {
		if len(v) > 0 {
			params[k] = v[0]
		}
	}

	account, err := h.capabilities.OAuthCallback(c.Request.Context(), actorID,
		integration.PlatformKind(uri.Kind), uuid.MustParse(uri.PlatformID), params)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, account)
}
