package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/genzzone/storefront/internal/domain"
	"github.com/genzzone/storefront/internal/metric"
	"github.com/genzzone/storefront/internal/ports"
)

var _ ports.SnapshotStore = (*MemoryStore)(nil)

// MemoryStore is the single-process fallback used when no Redis address is
// configured. Orders are kept encoded so callers never share memory with it.
type MemoryStore struct {
	ttl time.Duration
	now func() time.Time

	mu      sync.Mutex
	entries map[int64]memoryEntry
}

type memoryEntry struct {
	data    []byte
	expires time.Time
}

// NewMemoryStore keeps snapshots for ttl, DefaultTTL when ttl is not positive.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{ttl: ttl, now: time.Now, entries: map[int64]memoryEntry{}}
}

// Put stores a JSON copy of order and drops expired entries.
func (m *MemoryStore) Put(_ context.Context, order *domain.CompletedOrder) error {
	if order == nil {
		return errors.New("snapshot: nil order")
	}
	data, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("snapshot: encode order %d: %w", order.ID, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	m.evict(now)
	m.entries[order.ID] = memoryEntry{data: data, expires: now.Add(m.ttl)}
	metric.SnapshotOpsTotal.WithLabelValues("put", "ok").Inc()
	return nil
}

// Get returns domain.ErrNotFound for unknown and expired orders.
func (m *MemoryStore) Get(_ context.Context, id int64) (*domain.CompletedOrder, error) {
	m.mu.Lock()
	e, ok := m.entries[id]
	if ok && !m.now().Before(e.expires) {
		delete(m.entries, id)
		ok = false
	}
	m.mu.Unlock()

	if !ok {
		metric.SnapshotOpsTotal.WithLabelValues("get", "miss").Inc()
		return nil, domain.ErrNotFound
	}
	metric.SnapshotOpsTotal.WithLabelValues("get", "hit").Inc()
	return decode(id, e.data)
}

// evict drops expired entries. Caller holds mu.
func (m *MemoryStore) evict(now time.Time) {
	for id, e := range m.entries {
		if !now.Before(e.expires) {
			delete(m.entries, id)
		}
	}
}
