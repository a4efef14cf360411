package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/openship/backend/internal/domain/integration"
	"go.uber.org/zap"
)

// DefaultPlatformTTL bounds how long a platform edit made by another instance can go unseen
const DefaultPlatformTTL = 30 * time.Second

// CachedPlatformRepository keeps recently loaded platforms in memory in front
// of another PlatformRepository. Every dispatch resolves a platform, so hot
// shops and channels hit the cache instead of the database.
type CachedPlatformRepository struct {
	next    integration.PlatformRepository
	entries sync.Map // uuid.UUID -> *platformEntry
	ttl     time.Duration
	logger  *zap.Logger
	now     func() time.Time

	hits   int64
	misses int64
}

type platformEntry struct {
	platform  *integration.Platform
	expiresAt time.Time
}

// PlatformCacheOption is a functional option for configuring the cache
type PlatformCacheOption func(*CachedPlatformRepository)

// WithPlatformTTL sets the entry lifetime
func WithPlatformTTL(ttl time.Duration) PlatformCacheOption {
	return func(c *CachedPlatformRepository) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithPlatformCacheLogger sets the logger for the cache
func WithPlatformCacheLogger(logger *zap.Logger) PlatformCacheOption {
	return func(c *CachedPlatformRepository) {
		c.logger = logger
	}
}

// NewCachedPlatformRepository wraps next
func NewCachedPlatformRepository(next integration.PlatformRepository, opts ...PlatformCacheOption) *CachedPlatformRepository {
	c := &CachedPlatformRepository{
		next:   next,
		ttl:    DefaultPlatformTTL,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FindByID returns a cached copy when fresh, otherwise loads and caches it
func (c *CachedPlatformRepository) FindByID(ctx context.Context, id uuid.UUID) (*integration.Platform, error) {
	if p, ok := c.get(id); ok {
		return p, nil
	}
	p, err := c.next.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.put(p)
	return clonePlatform(p), nil
}

// FindByIDForOwner serves from cache when the cached platform belongs to ownerID
func (c *CachedPlatformRepository) FindByIDForOwner(ctx context.Context, ownerID, id uuid.UUID) (*integration.Platform, error) {
	if p, ok := c.get(id); ok && p.OwnerID == ownerID {
		return p, nil
	}
	p, err := c.next.FindByIDForOwner(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	c.put(p)
	return clonePlatform(p), nil
}

// ListByKind always reads through
func (c *CachedPlatformRepository) ListByKind(ctx context.Context, ownerID uuid.UUID, kind integration.PlatformKind) ([]integration.Platform, error) {
	return c.next.ListByKind(ctx, ownerID, kind)
}

// Save writes through and drops the cached entry
func (c *CachedPlatformRepository) Save(ctx context.Context, platform *integration.Platform) error {
	c.entries.Delete(platform.ID)
	return c.next.Save(ctx, platform)
}

// Invalidate drops one platform from the cache
func (c *CachedPlatformRepository) Invalidate(id uuid.UUID) {
	c.entries.Delete(id)
}

// Stats returns the hit and miss counters
func (c *CachedPlatformRepository) Stats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

func (c *CachedPlatformRepository) get(id uuid.UUID) (*integration.Platform, bool) {
	if v, ok := c.entries.Load(id); ok {
		e := v.(*platformEntry)
		if c.now().Before(e.expiresAt) {
			atomic.AddInt64(&c.hits, 1)
			return clonePlatform(e.platform), true
		}
		c.entries.Delete(id)
	}
	atomic.AddInt64(&c.misses, 1)
	c.logger.Debug("platform cache miss", zap.String("platform_id", id.String()))
	return nil, false
}

func (c *CachedPlatformRepository) put(p *integration.Platform) {
	c.entries.Store(p.ID, &platformEntry{
		platform:  clonePlatform(p),
		expiresAt: c.now().Add(c.ttl),
	})
}

// clonePlatform copies p so callers can mutate their copy freely
func clonePlatform(p *integration.Platform) *integration.Platform {
	cp := *p
	cp.Capabilities = make(map[integration.Capability]integration.CapabilityTarget, len(p.Capabilities))
	for k, v := range p.Capabilities {
		cp.Capabilities[k] = v
	}
	return &cp
}

var _ integration.PlatformRepository = (*CachedPlatformRepository)(nil)
