package integration

import (
	"context"
	"errors"
	"fmt"
	"maps"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/openship/backend/internal/domain/integration"
	"github.com/openship/backend/internal/domain/shared"
	"github.com/openship/backend/internal/infrastructure/logger"
	"github.com/openship/backend/internal/infrastructure/telemetry"
)

// CartLine is one item to purchase. ID is set when the item is a stored
// cart item that should record the resulting purchase id.
type CartLine struct {
	ID        *uuid.UUID      `json:"id,omitempty"`
	ChannelID uuid.UUID       `json:"channelId"`
	ProductID string          `json:"productId"`
	VariantID string          `json:"variantId,omitempty"`
	Name      string          `json:"name,omitempty"`
	Image     string          `json:"image,omitempty"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

func (l CartLine) payload() map[string]any {
	return map[string]any{
		"productId": l.ProductID,
		"variantId": l.VariantID,
		"name":      l.Name,
		"image":     l.Image,
		"quantity":  l.Quantity,
		"price":     l.Price.String(),
	}
}

// CreatePurchasesCommand buys a cart across every channel it touches.
// Purchase holds the shared customer and shipping fields sent to each channel.
type CreatePurchasesCommand struct {
	OrderID  *uuid.UUID
	Items    []CartLine
	Purchase map[string]any
}

// ChannelPurchaseOutcome is the result for one channel.
// Warning reports a post-purchase bookkeeping problem; it never flips Success.
type ChannelPurchaseOutcome struct {
	ChannelID   uuid.UUID                 `json:"channelId"`
	ChannelName string                    `json:"channelName,omitempty"`
	Success     bool                      `json:"success"`
	PurchaseID  string                    `json:"purchaseId,omitempty"`
	Response    integration.AdapterResult `json:"response,omitempty"`
	Error       *UnitError                `json:"error,omitempty"`
	Warning     string                    `json:"warning,omitempty"`
}

// PurchaseFanoutResult lists channel outcomes in order of first appearance
type PurchaseFanoutResult struct {
	Channels []ChannelPurchaseOutcome `json:"channels"`
}

// SucceededCount returns how many channels accepted their purchase
func (r *PurchaseFanoutResult) SucceededCount() int {
	n := 0
	for i := range r.Channels {
		if r.Channels[i].Success {
			n++
		}
	}
	return n
}

// AllSucceeded reports whether every channel accepted its purchase
func (r *PurchaseFanoutResult) AllSucceeded() bool {
	return len(r.Channels) > 0 && r.SucceededCount() == len(r.Channels)
}

// ChannelPurchaseResult is the single-channel purchase response
type ChannelPurchaseResult struct {
	Success    bool                      `json:"success"`
	PurchaseID string                    `json:"purchaseId,omitempty"`
	Response   integration.AdapterResult `json:"response,omitempty"`
}

// ErrEmptyCart is returned when a purchase command has no items
var ErrEmptyCart = shared.NewDomainError(shared.CodeInvalidInput, "Cart has no items")

// PurchaseService creates purchases on channel platforms
type PurchaseService struct {
	serviceBase
	channels  integration.ChannelRepository
	platforms integration.PlatformRepository
	cartItems integration.CartItemRepository
	caller    CapabilityCaller
}

// NewPurchaseService creates a PurchaseService
func NewPurchaseService(
	channels integration.ChannelRepository,
	platforms integration.PlatformRepository,
	cartItems integration.CartItemRepository,
	caller CapabilityCaller,
	opts ...Option,
) *PurchaseService {
	return &PurchaseService{
		serviceBase: newServiceBase(opts),
		channels:    channels,
		platforms:   platforms,
		cartItems:   cartItems,
		caller:      caller,
	}
}

// channelGroup is the slice of a cart bound for one channel
type channelGroup struct {
	channelID uuid.UUID
	lines     []CartLine
}

// groupByChannel partitions lines by channel in order of first appearance
func groupByChannel(lines []CartLine) []channelGroup {
	index := make(map[uuid.UUID]int)
	var groups []channelGroup
	for _, l := range lines {
		i, ok := index[l.ChannelID]
		if !ok {
			i = len(groups)
			index[l.ChannelID] = i
			groups = append(groups, channelGroup{channelID: l.ChannelID})
		}
		groups[i].lines = append(groups[i].lines, l)
	}
	return groups
}

// CreatePurchases invokes createPurchase once per channel concurrently.
// Every channel runs to completion; one channel failing never aborts or
// rolls back another. The error return is reserved for invalid input and
// repository failures before dispatch; channels not reached because the
// request was cancelled report the cancellation in their own outcome.
func (s *PurchaseService) CreatePurchases(ctx context.Context, actorID uuid.UUID, cmd CreatePurchasesCommand) (*PurchaseFanoutResult, error) {
	if len(cmd.Items) == 0 {
		return nil, ErrEmptyCart
	}
	for _, l := range cmd.Items {
		if l.ChannelID == uuid.Nil {
			return nil, integration.ErrChannelRequired
		}
		if l.Quantity <= 0 {
			return nil, integration.ErrInvalidQuantity
		}
	}

	ctx, span := telemetry.StartSpan(ctx, "purchases.fanout")
	defer span.End()

	groups := groupByChannel(cmd.Items)
	telemetry.SetAttributes(span, telemetry.SpanAttrUnitCount, len(groups))

	ids := make([]uuid.UUID, len(groups))
	for i, g := range groups {
		ids[i] = g.channelID
	}
	found, err := s.channels.FindByIDs(ctx, actorID, ids)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	byID := make(map[uuid.UUID]*integration.Channel, len(found))
	for i := range found {
		byID[found[i].ID] = &found[i]
	}

	result := &PurchaseFanoutResult{Channels: make([]ChannelPurchaseOutcome, len(groups))}
	var g errgroup.Group
	g.SetLimit(s.maxConcurrency)
	for i, grp := range groups {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				result.Channels[i] = ChannelPurchaseOutcome{ChannelID: grp.channelID, Error: NewUnitError(err)}
				return nil
			}
			result.Channels[i] = s.purchaseGroup(ctx, byID[grp.channelID], grp, cmd)
			return nil
		})
	}
	_ = g.Wait()

	// purchases created before a cancellation must reach the caller
	return result, nil
}

func (s *PurchaseService) purchaseGroup(ctx context.Context, channel *integration.Channel, grp channelGroup, cmd CreatePurchasesCommand) ChannelPurchaseOutcome {
	ctx = logger.WithChannelID(ctx, grp.channelID.String())
	out := ChannelPurchaseOutcome{ChannelID: grp.channelID}

	res, err := s.invokeGroup(ctx, channel, grp, cmd)
	if channel != nil {
		out.ChannelName = channel.Name
	}
	s.metrics.RecordPurchaseChannel(ctx, err == nil)
	if err != nil {
		logger.L(ctx).Warn("channel purchase failed", zap.Error(err))
		out.Error = NewUnitError(err)
		s.recordLineErrors(ctx, grp.lines, err.Error())
		return out
	}

	out.Success = true
	out.PurchaseID = res.String("purchaseId")
	out.Response = res
	if out.PurchaseID == "" {
		return out
	}

	itemIDs := persistedIDs(grp.lines)
	if len(itemIDs) > 0 {
		if _, err := s.cartItems.AttachPurchase(ctx, itemIDs, out.PurchaseID); err != nil {
			logger.L(ctx).Error("failed to attach purchase to cart items",
				zap.String("purchase_id", out.PurchaseID),
				zap.Error(err),
			)
			out.Warning = fmt.Sprintf("purchase %s created but cart items were not updated: %v", out.PurchaseID, err)
		}
	}
	s.publish(ctx, integration.NewPurchaseCreatedEvent(grp.channelID, out.PurchaseID, itemIDs))
	return out
}

// invokeGroup checks the channel preconditions in order and calls createPurchase
func (s *PurchaseService) invokeGroup(ctx context.Context, channel *integration.Channel, grp channelGroup, cmd CreatePurchasesCommand) (integration.AdapterResult, error) {
	if channel == nil {
		return nil, integration.ChannelNotFound(grp.channelID.String())
	}
	platform, err := loadPlatform(ctx, s.platforms, channel.PlatformID)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]any, len(cmd.Purchase)+2)
	maps.Copy(fields, cmd.Purchase)
	if _, ok := fields["orderId"]; !ok && cmd.OrderID != nil {
		fields["orderId"] = cmd.OrderID.String()
	}
	items := make([]map[string]any, len(grp.lines))
	for i, l := range grp.lines {
		items[i] = l.payload()
	}
	fields["cartItems"] = items

	return s.caller.Call(ctx, integration.PlatformKindChannel, platform,
		integration.CapabilityCreatePurchase, integration.NewAdapterRequest(channel.Credentials(), fields))
}

// recordLineErrors stores the failure on stored cart items that have no purchase yet
func (s *PurchaseService) recordLineErrors(ctx context.Context, lines []CartLine, msg string) {
	ids := persistedIDs(lines)
	if len(ids) == 0 {
		return
	}
	items, err := s.cartItems.FindByIDs(ctx, ids)
	if err != nil {
		logger.L(ctx).Warn("failed to load cart items to record error", zap.Error(err))
		return
	}
	for i := range items {
		if items[i].IsPurchased() {
			continue
		}
		items[i].RecordError(msg)
		if err := s.cartItems.Save(ctx, &items[i]); err != nil {
			logger.L(ctx).Warn("failed to record cart item error",
				zap.String("cart_item_id", items[i].ID.String()),
				zap.Error(err),
			)
		}
	}
}

func persistedIDs(lines []CartLine) []uuid.UUID {
	var ids []uuid.UUID
	for _, l := range lines {
		if l.ID != nil && *l.ID != uuid.Nil {
			ids = append(ids, *l.ID)
		}
	}
	return ids
}

// CreateChannelPurchase invokes createPurchase on a single channel with
// caller-supplied fields. Errors are returned as-is, so callers see
// "Channel not found", "Channel platform not configured." and
// "Create purchase function not configured." verbatim.
func (s *PurchaseService) CreateChannelPurchase(ctx context.Context, actorID, channelID uuid.UUID, fields map[string]any) (*ChannelPurchaseResult, error) {
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

	res, err := s.caller.Call(ctx, integration.PlatformKindChannel, platform,
		integration.CapabilityCreatePurchase, integration.NewAdapterRequest(channel.Credentials(), fields))
	s.metrics.RecordPurchaseChannel(ctx, err == nil)
	if err != nil {
		return nil, err
	}

	out := &ChannelPurchaseResult{Success: true, PurchaseID: res.String("purchaseId"), Response: res}
	if out.PurchaseID != "" {
		s.publish(ctx, integration.NewPurchaseCreatedEvent(channelID, out.PurchaseID, nil))
	}
	return out, nil
}
