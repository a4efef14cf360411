package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appintegration "github.com/openship/backend/internal/application/integration"
	"github.com/openship/backend/internal/domain/integration"
)

// scriptedSearcher answers each Search call with the next scripted page
type scriptedSearcher struct {
	pages   []appintegration.ShopOrders
	errs    []error
	queries []appintegration.SearchOrdersQuery
	actors  []uuid.UUID
}

func (s *scriptedSearcher) Search(_ context.Context, actorID uuid.UUID, q appintegration.SearchOrdersQuery) (*appintegration.OrderSearchResult, error) {
	i := len(s.queries)
	s.queries = append(s.queries, q)
	s.actors = append(s.actors, actorID)
	if i < len(s.errs) && s.errs[i] != nil {
		return nil, s.errs[i]
	}
	return &appintegration.OrderSearchResult{Shops: []appintegration.ShopOrders{s.pages[i]}}, nil
}

func orders(n int) []integration.PlatformOrder {
	return make([]integration.PlatformOrder, n)
}

func TestSearchOrderImporter_FollowsCursor(t *testing.T) {
	searcher := &scriptedSearcher{pages: []appintegration.ShopOrders{
		{Orders: orders(2), HasNextPage: true, NextCursor: "c1"},
		{Orders: orders(2), HasNextPage: true, NextCursor: "c2"},
		{Orders: orders(1)},
	}}
	importer := NewSearchOrderImporter(searcher, 2, 10, zap.NewNop())
	job := NewOrderImportJob(uuid.New(), uuid.New(), 0)

	require.NoError(t, importer.Execute(context.Background(), job))

	assert.Equal(t, OrderImportJobStatusSuccess, job.Status)
	assert.Equal(t, 3, job.Pages)
	assert.Equal(t, 5, job.Imported)
	require.Len(t, searcher.queries, 3)
	for i, q := range searcher.queries {
		assert.True(t, q.Persist)
		assert.Equal(t, []uuid.UUID{job.ShopID}, q.ShopIDs)
		assert.Equal(t, 2, q.Take)
		assert.Equal(t, job.OwnerID, searcher.actors[i])
	}
	assert.Empty(t, searcher.queries[0].After)
	assert.Equal(t, "c1", searcher.queries[1].After[job.ShopID])
	assert.Equal(t, "c2", searcher.queries[2].After[job.ShopID])
}

func TestSearchOrderImporter_OffsetPagingWithoutCursor(t *testing.T) {
	searcher := &scriptedSearcher{pages: []appintegration.ShopOrders{
		{Orders: orders(3), HasNextPage: true},
		{Orders: orders(3), HasNextPage: true},
	}}
	importer := NewSearchOrderImporter(searcher, 3, 2, zap.NewNop())
	job := NewOrderImportJob(uuid.New(), uuid.New(), 0)

	require.NoError(t, importer.Execute(context.Background(), job))

	assert.Equal(t, 2, job.Pages, "stops at max pages")
	assert.Equal(t, 0, searcher.queries[0].Skip)
	assert.Equal(t, 3, searcher.queries[1].Skip)
}

func TestSearchOrderImporter_ShopErrorOnFirstPage(t *testing.T) {
	searcher := &scriptedSearcher{pages: []appintegration.ShopOrders{
		{Error: &appintegration.UnitError{Code: "UPSTREAM_FAILED", Message: "shop down"}},
	}}
	importer := NewSearchOrderImporter(searcher, 10, 5, zap.NewNop())
	job := NewOrderImportJob(uuid.New(), uuid.New(), 0)

	err := importer.Execute(context.Background(), job)

	require.ErrorIs(t, err, ErrImportFailed)
	assert.Contains(t, err.Error(), "shop down")
}

func TestSearchOrderImporter_LaterPageFailureIsPartial(t *testing.T) {
	searcher := &scriptedSearcher{
		pages: []appintegration.ShopOrders{{Orders: orders(4), HasNextPage: true, NextCursor: "c1"}, {}},
		errs:  []error{nil, errors.New("connection reset")},
	}
	importer := NewSearchOrderImporter(searcher, 4, 5, zap.NewNop())
	job := NewOrderImportJob(uuid.New(), uuid.New(), 0)

	require.NoError(t, importer.Execute(context.Background(), job))

	assert.Equal(t, OrderImportJobStatusPartial, job.Status)
	assert.Equal(t, 4, job.Imported)
	assert.Equal(t, "connection reset", job.Error)
}
