package scheduler

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appintegration "github.com/openship/backend/internal/application/integration"
	"github.com/openship/backend/internal/infrastructure/logger"
)

// OrderSearcher is the order search operation the importer drives
type OrderSearcher interface {
	Search(ctx context.Context, actorID uuid.UUID, q appintegration.SearchOrdersQuery) (*appintegration.OrderSearchResult, error)
}

// SearchOrderImporter imports orders by paging through order search with
// persistence enabled, acting as the shop's owner.
type SearchOrderImporter struct {
	searcher OrderSearcher
	pageSize int
	maxPages int
	logger   *zap.Logger
}

// NewSearchOrderImporter creates an importer. maxPages bounds the pages read
// per job; zero means one page.
func NewSearchOrderImporter(searcher OrderSearcher, pageSize, maxPages int, logger *zap.Logger) *SearchOrderImporter {
	if maxPages <= 0 {
		maxPages = 1
	}
	return &SearchOrderImporter{
		searcher: searcher,
		pageSize: pageSize,
		maxPages: maxPages,
		logger:   logger,
	}
}

// Execute pages through the shop's orders. Pages follow the adapter cursor
// when one is returned and fall back to offset paging otherwise.
func (e *SearchOrderImporter) Execute(ctx context.Context, job *OrderImportJob) error {
	ctx = logger.WithShopID(ctx, job.ShopID.String())

	pages, imported, skip := 0, 0, 0
	cursor := ""
	for pages < e.maxPages {
		q := appintegration.SearchOrdersQuery{
			ShopIDs: []uuid.UUID{job.ShopID},
			Take:    e.pageSize,
			Skip:    skip,
			Persist: true,
		}
		if cursor != "" {
			q.Skip = 0
			q.After = map[uuid.UUID]string{job.ShopID: cursor}
		}

		res, err := e.searcher.Search(ctx, job.OwnerID, q)
		if err == nil && len(res.Shops) == 0 {
			err = fmt.Errorf("%w: empty result", ErrImportFailed)
		}
		if err == nil && res.Shops[0].Error != nil {
			err = fmt.Errorf("%w: %s: %s", ErrImportFailed, res.Shops[0].Error.Code, res.Shops[0].Error.Message)
		}
		if err != nil {
			if pages == 0 {
				return err
			}
			job.Complete(pages, imported, err)
			return nil
		}

		page := res.Shops[0]
		pages++
		imported += len(page.Orders)
		e.logger.Debug("Imported page of orders",
			zap.String("job_id", job.ID.String()),
			zap.Int("page", pages),
			zap.Int("orders_in_page", len(page.Orders)),
		)

		if !page.HasNextPage || len(page.Orders) == 0 {
			break
		}
		cursor = page.NextCursor
		skip += len(page.Orders)
	}

	job.Complete(pages, imported, nil)
	return nil
}
