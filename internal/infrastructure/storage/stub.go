package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/openship/backend/internal/domain/integration"
)

// MemoryPayloadArchive keeps archived payloads in process memory.
// It is used in development when no bucket is configured, and in tests.
type MemoryPayloadArchive struct {
	mu      sync.RWMutex
	objects map[string][]byte
	now     func() time.Time
}

// NewMemoryPayloadArchive creates an empty archive
func NewMemoryPayloadArchive() *MemoryPayloadArchive {
	return &MemoryPayloadArchive{
		objects: make(map[string][]byte),
		now:     time.Now,
	}
}

// Store copies body under the same key layout as the S3 archive
func (m *MemoryPayloadArchive) Store(ctx context.Context, shopID uuid.UUID, event integration.WebhookEventType, deliveryID string, body []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if deliveryID == "" {
		deliveryID = uuid.NewString()
	}
	key := ArchiveKey(shopID, event, deliveryID, m.now())

	cp := make([]byte, len(body))
	copy(cp, body)

	m.mu.Lock()
	m.objects[key] = cp
	m.mu.Unlock()
	return key, nil
}

// Get returns a stored payload
func (m *MemoryPayloadArchive) Get(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.objects[key]
	return b, ok
}

// Keys lists stored keys in sorted order
func (m *MemoryPayloadArchive) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var _ integration.PayloadArchive = (*MemoryPayloadArchive)(nil)
