package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/openship/backend/internal/domain/integration"
	"github.com/openship/backend/internal/infrastructure/logger"
	"github.com/openship/backend/internal/interfaces/http/dto"
)

// WebhookDispatcher reconciles an acknowledged webhook
type WebhookDispatcher interface {
	Dispatch(ctx context.Context, event integration.WebhookEvent)
}

// WebhookHandler receives shop order webhooks
type WebhookHandler struct {
	BaseHandler
	dispatcher WebhookDispatcher
}

// NewWebhookHandler creates a WebhookHandler
func NewWebhookHandler(dispatcher WebhookDispatcher) *WebhookHandler {
	return &WebhookHandler{dispatcher: dispatcher}
}

// CancelOrder handles POST /webhooks/shop/:shopId/cancel-order
//
// @ID           cancelOrderWebhook
// @Summary      Receive an order cancellation webhook
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        shopId  path  string  true  "Shop ID"  format(uuid)
// @Success      200 {object} dto.WebhookAck
// @Failure      400 {object} dto.Response
// @Failure      429 {object} dto.Response
// @Router       /webhooks/shop/{shopId}/cancel-order [post]
func (h *WebhookHandler) CancelOrder(c *gin.Context) {
	h.receive(c, integration.WebhookEventCancel)
}

// CreateOrder handles POST /webhooks/shop/:shopId/create-order
//
// @ID           createOrderWebhook
// @Summary      Receive an order creation webhook
// @Tags         webhooks
// @Accept       json
// @Produce      json
// @Param        shopId  path  string  true  "Shop ID"  format(uuid)
// @Success      200 {object} dto.WebhookAck
// @Failure      400 {object} dto.Response
// @Failure      429 {object} dto.Response
// @Router       /webhooks/shop/{shopId}/create-order [post]
func (h *WebhookHandler) CreateOrder(c *gin.Context) {
	h.receive(c, integration.WebhookEventCreate)
}

// receive answers {"received": true} before reconciling. A missing or
// malformed shop id is the only error the sender ever sees.
func (h *WebhookHandler) receive(c *gin.Context, typ integration.WebhookEventType) {
	shopID, err := uuid.Parse(c.Param("shopId"))
	if err != nil {
		h.BadRequest(c, "Missing shop ID")
		return
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeBadRequest, "Unable to read request body")
		return
	}
	headers := make(map[string]string, len(c.Request.Header))
	for k := range c.Request.Header {
		headers[k] = c.Request.Header.Get(k)
	}

	c.JSON(http.StatusOK, dto.WebhookAck{Received: true})
	c.Writer.Flush()

	ctx := logger.WithShopID(c.Request.Context(), shopID.String())
	h.dispatcher.Dispatch(ctx, integration.NewWebhookEvent(shopID, typ, body, headers))
}
