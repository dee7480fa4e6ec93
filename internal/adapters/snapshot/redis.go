// Package snapshot keeps completed orders for the success screen and the
// receipt download after the draft that produced them is gone.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/genzzone/storefront/internal/domain"
	"github.com/genzzone/storefront/internal/metric"
	"github.com/genzzone/storefront/internal/ports"
)

// DefaultTTL is how long a completed order stays readable.
const DefaultTTL = 30 * time.Minute

var _ ports.SnapshotStore = (*RedisStore)(nil)

// RedisStore keeps completed-order snapshots in Redis with a TTL.
type RedisStore struct {
	client      *redis.Client
	serviceName string
	ttl         time.Duration
}

// NewRedisStore connects to addr. Keys are prefixed with serviceName.
func NewRedisStore(addr, serviceName string, ttl time.Duration) *RedisStore {
	return NewRedisStoreWithClient(redis.NewClient(&redis.Options{Addr: addr}), serviceName, ttl)
}

// NewRedisStoreWithClient wraps an existing client, e.g. one pointed at
// miniredis in tests.
func NewRedisStoreWithClient(client *redis.Client, serviceName string, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, serviceName: serviceName, ttl: ttl}
}

// Put stores the order under its id. Reads do not consume it; it lives until
// the TTL runs out.
func (r *RedisStore) Put(ctx context.Context, order *domain.CompletedOrder) error {
	if order == nil {
		return errors.New("snapshot: nil order")
	}
	data, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("snapshot: encode order %d: %w", order.ID, err)
	}
	if err := r.client.Set(ctx, r.GenerateKey("order", strconv.FormatInt(order.ID, 10)), data, r.ttl).Err(); err != nil {
		metric.SnapshotOpsTotal.WithLabelValues("put", "error").Inc()
		return fmt.Errorf("snapshot: put order %d: %w", order.ID, err)
	}
	metric.SnapshotOpsTotal.WithLabelValues("put", "ok").Inc()
	return nil
}

// Get reads a snapshot without consuming it. A missing or expired key is
// domain.ErrNotFound.
func (r *RedisStore) Get(ctx context.Context, id int64) (*domain.CompletedOrder, error) {
	data, err := r.client.Get(ctx, r.GenerateKey("order", strconv.FormatInt(id, 10))).Bytes()
	if err == redis.Nil {
		metric.SnapshotOpsTotal.WithLabelValues("get", "miss").Inc()
		return nil, domain.ErrNotFound
	}
	if err != nil {
		metric.SnapshotOpsTotal.WithLabelValues("get", "error").Inc()
		return nil, fmt.Errorf("snapshot: get order %d: %w", id, err)
	}
	metric.SnapshotOpsTotal.WithLabelValues("get", "hit").Inc()
	return decode(id, data)
}

// Ping checks the connection at startup.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

// GenerateKey builds "<service>:<operation>:<key>".
func (r *RedisStore) GenerateKey(operation, key string) string {
	return fmt.Sprintf("%s:%s:%s", r.serviceName, operation, key)
}

func decode(id int64, data []byte) (*domain.CompletedOrder, error) {
	var order domain.CompletedOrder
	if err := json.Unmarshal(data, &order); err != nil {
		return nil, fmt.Errorf("snapshot: decode order %d: %w", id, err)
	}
	return &order, nil
}
