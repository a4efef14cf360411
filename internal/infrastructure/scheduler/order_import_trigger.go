package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/openship/backend/internal/domain/integration"
)

// ShopLister lists the shops that are linked to a platform
type ShopLister interface {
	ListLinked(ctx context.Context) ([]integration.Shop, error)
}

// ImportScheduler accepts import requests for a shop
type ImportScheduler interface {
	ScheduleImport(shopID, ownerID uuid.UUID) error
}

// OrderImportTriggerConfig holds configuration for the import trigger
type OrderImportTriggerConfig struct {
	// CheckInterval is how often linked shops are scanned
	CheckInterval time.Duration
	// ImportInterval is the minimum time between two imports of one shop
	ImportInterval time.Duration
}

// DefaultOrderImportTriggerConfig returns default configuration
func DefaultOrderImportTriggerConfig() OrderImportTriggerConfig {
	return OrderImportTriggerConfig{
		CheckInterval:  time.Minute,
		ImportInterval: 15 * time.Minute,
	}
}

// OrderImportTrigger periodically queues an import for every linked shop
type OrderImportTrigger struct {
	config    OrderImportTriggerConfig
	scheduler ImportScheduler
	shops     ShopLister
	logger    *zap.Logger
	now       func() time.Time

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool

	lastScheduledMu sync.RWMutex
	lastScheduled   map[uuid.UUID]time.Time
}

// NewOrderImportTrigger creates a new order import trigger
func NewOrderImportTrigger(
	config OrderImportTriggerConfig,
	scheduler ImportScheduler,
	shops ShopLister,
	logger *zap.Logger,
) *OrderImportTrigger {
	return &OrderImportTrigger{
		config:        config,
		scheduler:     scheduler,
		shops:         shops,
		logger:        logger,
		now:           time.Now,
		lastScheduled: make(map[uuid.UUID]time.Time),
	}
}

// Start starts the trigger loop. The first scan runs immediately.
func (t *OrderImportTrigger) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.isRunning {
		return nil
	}
	t.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	t.cancel = cancel

	t.wg.Add(1)
	go t.runLoop(ctx)

	t.logger.Info("Order import trigger started",
		zap.Duration("check_interval", t.config.CheckInterval),
		zap.Duration("import_interval", t.config.ImportInterval),
	)
	return nil
}

// Stop stops the trigger loop
func (t *OrderImportTrigger) Stop(ctx context.Context) error {
	t.mu.Lock()
	if !t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = false
	t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
	}

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.logger.Info("Order import trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *OrderImportTrigger) runLoop(ctx context.Context) {
	defer t.wg.Done()

	ticker := time.NewTicker(t.config.CheckInterval)
	defer ticker.Stop()

	t.checkAndSchedule(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.checkAndSchedule(ctx)
		}
	}
}

// checkAndSchedule queues every linked shop whose last import is older than
// the import interval. It returns how many shops were queued.
func (t *OrderImportTrigger) checkAndSchedule(ctx context.Context) int {
	shops, err := t.shops.ListLinked(ctx)
	if err != nil {
		t.logger.Error("Failed to list linked shops", zap.Error(err))
		return 0
	}

	now := t.now()
	queued := 0
	for i := range shops {
		shop := &shops[i]
		if !shop.HasPlatform() || !t.due(shop.ID, now) {
			continue
		}

		err := t.scheduler.ScheduleImport(shop.ID, shop.OwnerID)
		switch {
		case err == nil:
			queued++
			t.markScheduled(shop.ID, now)
		case errors.Is(err, ErrImportAlreadyQueued):
			t.logger.Debug("Order import still in flight", zap.String("shop_id", shop.ID.String()))
		default:
			t.logger.Error("Failed to schedule order import",
				zap.String("shop_id", shop.ID.String()),
				zap.Error(err),
			)
		}
	}

	if queued > 0 {
		t.logger.Info("Order imports scheduled", zap.Int("shops", queued))
	}
	return queued
}

func (t *OrderImportTrigger) due(shopID uuid.UUID, now time.Time) bool {
	t.lastScheduledMu.RLock()
	last, ok := t.lastScheduled[shopID]
	t.lastScheduledMu.RUnlock()
	return !ok || now.Sub(last) >= t.config.ImportInterval
}

func (t *OrderImportTrigger) markScheduled(shopID uuid.UUID, at time.Time) {
	t.lastScheduledMu.Lock()
	t.lastScheduled[shopID] = at
	t.lastScheduledMu.Unlock()
}

// TriggerImport queues an immediate import for one shop, ignoring the
// import interval.
func (t *OrderImportTrigger) TriggerImport(shopID, ownerID uuid.UUID) error {
	if err := t.scheduler.ScheduleImport(shopID, ownerID); err != nil {
		return err
	}
	t.markScheduled(shopID, t.now())
	t.logger.Info("Manual order import triggered", zap.String("shop_id", shopID.String()))
	return nil
}

// LastScheduled returns when the shop was last queued by this trigger
func (t *OrderImportTrigger) LastScheduled(shopID uuid.UUID) (time.Time, bool) {
	t.lastScheduledMu.RLock()
	defer t.lastScheduledMu.RUnlock()
	at, ok := t.lastScheduled[shopID]
	return at, ok
}
