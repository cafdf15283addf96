package app

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"barbershop-service/internal/metrics"
)

// View cache keys. Writes invalidate these so stale renderings are dropped;
// the signal is fire-and-forget, a failed invalidation only logs.
const (
	ViewBarberShops = "views:barbershops"
)

func ViewShop(shopID string) string {
	return "views:barbershops:" + shopID
}

func ViewUserBookings(userID string) string {
	return "views:bookings:" + userID
}

// ViewCache caches rendered JSON payloads in Redis. A nil *ViewCache or a
// cache without a client is a no-op, so the service runs without Redis.
type ViewCache struct {
	rdb *redis.Client
	ttl time.Duration
	log *zap.Logger
}

func NewViewCache(rdb *redis.Client, ttl time.Duration, log *zap.Logger) *ViewCache {
	return &ViewCache{rdb: rdb, ttl: ttl, log: log}
}

func (v *ViewCache) Get(ctx context.Context, key string) ([]byte, bool) {
	if v == nil || v.rdb == nil {
		return nil, false
	}
	data, err := v.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			v.log.Warn("view cache get failed", zap.String("key", key), zap.Error(err))
		}
		metrics.IncViewCache("miss")
		return nil, false
	}
	metrics.IncViewCache("hit")
	return data, true
}

func (v *ViewCache) Set(ctx context.Context, key string, data []byte) {
	if v == nil || v.rdb == nil {
		return
	}
	if err := v.rdb.Set(ctx, key, data, v.ttl).Err(); err != nil {
		v.log.Warn("view cache set failed", zap.String("key", key), zap.Error(err))
	}
}

// Invalidate drops cached views under the given keys.
func (v *ViewCache) Invalidate(ctx context.Context, keys ...string) {
	if v == nil || v.rdb == nil || len(keys) == 0 {
		return
	}
	if err := v.rdb.Del(ctx, keys...).Err(); err != nil {
		v.log.Warn("view invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
