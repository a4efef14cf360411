package handler

import (
	"context"
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appintegration "github.com/openship/backend/internal/application/integration"
	"github.com/openship/backend/internal/interfaces/http/dto"
)

// PurchaseCreator places purchases on channel platforms
type PurchaseCreator interface {
	CreatePurchases(ctx context.Context, actorID uuid.UUID, cmd appintegration.CreatePurchasesCommand) (*appintegration.PurchaseFanoutResult, error)
	CreateChannelPurchase(ctx context.Context, actorID, channelID uuid.UUID, fields map[string]any) (*appintegration.ChannelPurchaseResult, error)
}

// PurchaseHandler serves cart and single-channel purchases
type PurchaseHandler struct {
	BaseHandler
	purchases PurchaseCreator
}

// NewPurchaseHandler creates a PurchaseHandler
func NewPurchaseHandler(purchases PurchaseCreator) *PurchaseHandler {
	return &PurchaseHandler{purchases: purchases}
}

// CreatePurchases handles POST /carts/purchases.
// The response is 200 even when some channels failed; meta.failed says how many.
//
// @ID           createCartPurchases
// @Summary      Purchase a cart across its channels
// @Tags         purchases
// @Accept       json
// @Produce      json
// @Param        request  body  dto.CreatePurchasesRequest  true  "Cart lines and shared purchase fields"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /carts/purchases [post]
func (h *PurchaseHandler) CreatePurchases(c *gin.Context) {
	actorID, ok := h.actorID(c)
	if !ok {
		return
	}
	var req dto.CreatePurchasesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.ValidationError(c, err)
		return
	}

	cmd := appintegration.CreatePurchasesCommand{
		Items:    make([]appintegration.CartLine, 0, len(req.Items)),
		Purchase: req.Purchase,
	}
	if req.OrderID != "" {
		id := uuid.MustParse(req.OrderID)
		cmd.OrderID = &id
	}
	for _, item := range req.Items {
		line := appintegration.CartLine{
			ChannelID: uuid.MustParse(item.ChannelID),
			ProductID: item.ProductID,
			VariantID: item.VariantID,
			Name:      item.Name,
			Image:     item.Image,
			Quantity:  item.Quantity,
			Price:     item.Price,
		}
		if item.ID != "" {
			id := uuid.MustParse(item.ID)
			line.ID = &id
		}
		cmd.Items = append(cmd.Items, line)
	}

	result, err := h.purchases.CreatePurchases(c.Request.Context(), actorID, cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result, len(result.Channels), len(result.Channels)-result.SucceededCount())
}

// CreateChannelPurchase handles POST /channels/:id/purchases.
// The body is forwarded to the channel as-is.
//
// @ID           createChannelPurchase
// @Summary      Place a purchase on one channel
// @Tags         purchases
// @Accept       json
// @Produce      json
// @Param        id       path  string  true   "Channel ID"  format(uuid)
// @Param        request  body  object  false  "Fields forwarded to the channel"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Failure      502 {object} dto.Response
// @Security     BearerAuth
// @Router       /channels/{id}/purchases [post]
func (h *PurchaseHandler) CreateChannelPurchase(c *gin.Context) {
	actorID, ok := h.actorID(c)
	if !ok {
		return
	}
	var uri dto.IDURI
	if err := c.ShouldBindUri(&uri); err != nil {
		h.ValidationError(c, err)
		return
	}
	fields, ok := h.bindFields(c)
	if !ok {
		return
	}

	result, err := h.purchases.CreateChannelPurchase(c.Request.Context(), actorID, uuid.MustParse(uri.ID), fields)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// bindFields reads an optional JSON object body
func (h *BaseHandler) bindFields(c *gin.Context) (map[string]any, bool) {
	fields := map[string]any{}
	if err := c.ShouldBindJSON(&fields); err != nil && !errors.Is(err, io.EOF) {
		h.Error(c, dto.GetHTTPStatus(dto.ErrCodeInvalidJSON), dto.ErrCodeInvalidJSON, "Request body must be a JSON object")
		return nil, false
	}
	return fields, true
}
