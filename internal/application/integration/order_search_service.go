package integration

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/openship/backend/internal/domain/integration"
	"github.com/openship/backend/internal/domain/shared"
	"github.com/openship/backend/internal/infrastructure/logger"
	"github.com/openship/backend/internal/infrastructure/telemetry"
)

// Page size bounds for order search
const (
	DefaultSearchTake = 10
	MaxSearchTake     = 100
)

// SearchOrdersQuery selects shops and the page to fetch from each.
// After holds a per-shop cursor taken from a previous NextCursor.
type SearchOrdersQuery struct {
	ShopIDs     []uuid.UUID
	SearchEntry string
	Take        int
	Skip        int
	After       map[uuid.UUID]string
	// Persist upserts every returned order locally
	Persist bool
}

func (q *SearchOrdersQuery) normalize() {
	if q.Take <= 0 {
		q.Take = DefaultSearchTake
	}
	if q.Take > MaxSearchTake {
		q.Take = MaxSearchTake
	}
	if q.Skip < 0 {
		q.Skip = 0
	}
}

// ShopOrders is one shop's page. Error is set, and Orders empty, when that
// shop failed.
type ShopOrders struct {
	ShopID      uuid.UUID                   `json:"shopId"`
	ShopName    string                      `json:"shopName,omitempty"`
	Orders      []integration.PlatformOrder `json:"orders"`
	HasNextPage bool                        `json:"hasNextPage"`
	NextCursor  string                      `json:"nextCursor,omitempty"`
	Error       *UnitError                  `json:"error,omitempty"`
}

// OrderSearchResult holds per-shop pages in request order.
// There is deliberately no combined ordering or combined hasNextPage.
type OrderSearchResult struct {
	Shops []ShopOrders `json:"shops"`
}

// FailedCount returns how many shops reported an error
func (r *OrderSearchResult) FailedCount() int {
	n := 0
	for i := range r.Shops {
		if r.Shops[i].Error != nil {
			n++
		}
	}
	return n
}

// OrderSearchService fans a search out to every selected shop's platform
type OrderSearchService struct {
	serviceBase
	shops     integration.ShopRepository
	platforms integration.PlatformRepository
	orders    integration.OrderRepository
	caller    CapabilityCaller
}

// NewOrderSearchService creates an OrderSearchService
func NewOrderSearchService(
	shops integration.ShopRepository,
	platforms integration.PlatformRepository,
	orders integration.OrderRepository,
	caller CapabilityCaller,
	opts ...Option,
) *OrderSearchService {
	return &OrderSearchService{
		serviceBase: newServiceBase(opts),
		shops:       shops,
		platforms:   platforms,
		orders:      orders,
		caller:      caller,
	}
}

// Search queries each shop concurrently and joins all results.
// A failing or cancelled shop is reported in its own entry and never fails
// the call; only listing the actor's shops returns an error.
func (s *OrderSearchService) Search(ctx context.Context, actorID uuid.UUID, q SearchOrdersQuery) (*OrderSearchResult, error) {
	q.normalize()

	ctx, span := telemetry.StartSpan(ctx, "orders.search")
	defer span.End()

	targets, err := s.targets(ctx, actorID, q.ShopIDs)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, telemetry.SpanAttrUnitCount, len(targets))

	result := &OrderSearchResult{Shops: make([]ShopOrders, len(targets))}
	var g errgroup.Group
	g.SetLimit(s.maxConcurrency)
	for i, t := range targets {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				result.Shops[i] = ShopOrders{ShopID: t.id, Orders: []integration.PlatformOrder{}, Error: NewUnitError(err)}
				return nil
			}
			result.Shops[i] = s.searchShop(ctx, actorID, t, q)
			return nil
		})
	}
	_ = g.Wait()

	// shops cut short by cancellation carry their own error; finished pages stay
	return result, nil
}

// searchTarget is a shop id plus the shop when it is already loaded
type searchTarget struct {
	id   uuid.UUID
	shop *integration.Shop
}

func (s *OrderSearchService) targets(ctx context.Context, actorID uuid.UUID, ids []uuid.UUID) ([]searchTarget, error) {
	if len(ids) == 0 {
		shops, err := s.shops.ListByOwner(ctx, actorID)
		if err != nil {
			return nil, err
		}
		out := make([]searchTarget, len(shops))
		for i := range shops {
			out[i] = searchTarget{id: shops[i].ID, shop: &shops[i]}
		}
		return out, nil
	}

	seen := make(map[uuid.UUID]bool, len(ids))
	out := make([]searchTarget, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, searchTarget{id: id})
	}
	return out, nil
}

func (s *OrderSearchService) searchShop(ctx context.Context, actorID uuid.UUID, t searchTarget, q SearchOrdersQuery) ShopOrders {
	ctx = logger.WithShopID(ctx, t.id.String())
	out := ShopOrders{ShopID: t.id, Orders: []integration.PlatformOrder{}}

	page, cursor, err := s.fetchPage(ctx, actorID, &t, q)
	if t.shop != nil {
		out.ShopName = t.shop.Name
	}
	if err == nil && q.Persist {
		err = s.persist(ctx, t.shop, page.Orders)
	}
	s.metrics.RecordShopSearch(ctx, err)
	if err != nil {
		logger.L(ctx).Warn("shop order search failed", zap.Error(err))
		out.Error = NewUnitError(err)
		return out
	}

	if page.Orders != nil {
		out.Orders = page.Orders
	}
	out.HasNextPage = page.HasNextPage
	out.NextCursor = cursor
	return out
}

func (s *OrderSearchService) fetchPage(ctx context.Context, actorID uuid.UUID, t *searchTarget, q SearchOrdersQuery) (*integration.PlatformOrderPage, string, error) {
	if t.shop == nil {
		shop, err := s.shops.FindByIDForOwner(ctx, actorID, t.id)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, "", integration.ShopNotFound(t.id.String())
			}
			return nil, "", err
		}
		t.shop = shop
	}

	platform, err := loadPlatform(ctx, s.platforms, t.shop.PlatformID)
	if err != nil {
		return nil, "", err
	}

	fields := map[string]any{
		"searchEntry": q.SearchEntry,
		"take":        q.Take,
		"skip":        q.Skip,
		"after":       q.After[t.id],
	}
	res, err := s.caller.Call(ctx, integration.PlatformKindShop, platform,
		integration.CapabilitySearchOrders, integration.NewAdapterRequest(t.shop.Credentials(), fields))
	if err != nil {
		return nil, "", err
	}

	var page integration.PlatformOrderPage
	if err := res.Decode(&page); err != nil {
		return nil, "", err
	}
	cursor := page.NextCursor()
	if cursor == "" {
		cursor = res.String("cursor")
	}
	return &page, cursor, nil
}

// persist upserts every order and raises OrderImported for the new ones
func (s *OrderSearchService) persist(ctx context.Context, shop *integration.Shop, orders []integration.PlatformOrder) error {
	var events []shared.DomainEvent
	for i := range orders {
		o, err := orders[i].ToOrder(shop.ID, shop.OwnerID)
		if err != nil {
			return err
		}
		created, err := s.orders.UpsertImported(ctx, o)
		if err != nil {
			return err
		}
		if created {
			events = append(events, integration.NewOrderImportedEvent(o))
		}
	}
	s.publish(ctx, events...)
	return nil
}
