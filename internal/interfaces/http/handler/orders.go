package handler

import (
	"context"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appintegration "github.com/openship/backend/internal/application/integration"
)

// OrderSearcher searches orders across shops
type OrderSearcher interface {
	Search(ctx context.Context, actorID uuid.UUID, q appintegration.SearchOrdersQuery) (*appintegration.OrderSearchResult, error)
}

// OrderHandler serves the aggregated order search
type OrderHandler struct {
	BaseHandler
	searcher OrderSearcher
}

// NewOrderHandler creates an OrderHandler
func NewOrderHandler(searcher OrderSearcher) *OrderHandler {
	return &OrderHandler{searcher: searcher}
}

// Search handles GET /shops/orders/search.
//
//	?shopIds=a,b&searchEntry=&take=&skip=&after[<shopId>]=<cursor>&persist=true
//
// Every shop gets its own page; meta.failed counts shops that errored.
//
// @ID           searchShopOrders
// @Summary      Search orders across shops
// @Tags         orders
// @Produce      json
// @Param        shopIds      query  string  false  "Comma separated shop ids; all owned shops when empty"
// @Param        searchEntry  query  string  false  "Free text filter"
// @Param        take         query  int     false  "Page size per shop"  default(10)  maximum(100)
// @Param        skip         query  int     false  "Offset per shop"
// @Param        persist      query  bool    false  "Upsert returned orders locally"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      401 {object} dto.Response
// @Security     BearerAuth
// @Router       /shops/orders/search [get]
func (h *OrderHandler) Search(c *gin.Context) {
	actorID, ok := h.actorID(c)
	if !ok {
		return
	}
	q, err := parseSearchQuery(c)
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.searcher.Search(c.Request.Context(), actorID, q)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result, len(result.Shops), result.FailedCount())
}

type queryError string

func (e queryError) Error() string { return string(e) }

func parseSearchQuery(c *gin.Context) (appintegration.SearchOrdersQuery, error) {
	q := appintegration.SearchOrdersQuery{SearchEntry: c.Query("searchEntry")}

	for _, raw := range strings.Split(c.Query("shopIds"), ",") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return q, queryError("shopIds must be a comma separated list of UUIDs")
		}
		q.ShopIDs = append(q.ShopIDs, id)
	}

	var err error
	if q.Take, err = intQuery(c, "take"); err != nil {
		return q, err
	}
	if q.Skip, err = intQuery(c, "skip"); err != nil {
		return q, err
	}
	if raw := c.Query("persist"); raw != "" {
		if q.Persist, err = strconv.ParseBool(raw); err != nil {
			return q, queryError("persist must be a boolean")
		}
	}

	if after := c.QueryMap("after"); len(after) > 0 {
		q.After = make(map[uuid.UUID]string, len(after))
		for k, v := range after {
			id, err := uuid.Parse(k)
			if err != nil {
				return q, queryError("after keys must be shop UUIDs")
			}
			q.After[id] = v
		}
	}
	return q, nil
}

func intQuery(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, queryError(name + " must be an integer")
	}
	return n, nil
}
