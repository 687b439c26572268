package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"cryptoradar/internal/analytics"
	"cryptoradar/internal/models"
)

// QueryCache shields the database from the hottest dashboard reads (the hot
// list and the stats block). A nil *QueryCache is a no-op, so deployments
// without Redis skip caching entirely.
//
// Key schema:
//
//	opps:hot:{limit} - JSON array of opportunities
//	opps:stats       - JSON overview block
type QueryCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewQueryCache(c *Client, ttl time.Duration) *QueryCache {
	if c == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &QueryCache{rdb: c.Underlying(), ttl: ttl}
}

func hotKey(limit int) string { return "opps:hot:" + strconv.Itoa(limit) }

const statsKey = "opps:stats"

// GetHot returns the cached hot list, or (nil, false) on miss or error.
func (qc *QueryCache) GetHot(ctx context.Context, limit int) ([]models.Opportunity, bool) {
	if qc == nil {
		return nil, false
	}
	raw, err := qc.rdb.Get(ctx, hotKey(limit)).Bytes()
	if err != nil {
		return nil, false
	}
	var items []models.Opportunity
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	return items, true
}

// SetHot caches the hot list. Best effort.
func (qc *QueryCache) SetHot(ctx context.Context, limit int, items []models.Opportunity) error {
	if qc == nil {
		return nil
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("redis: marshal hot list: %w", err)
	}
	return qc.rdb.Set(ctx, hotKey(limit), raw, qc.ttl).Err()
}

// GetStats returns the cached stats block, or (zero, false) on miss.
func (qc *QueryCache) GetStats(ctx context.Context) (analytics.Overview, bool) {
	if qc == nil {
		return analytics.Overview{}, false
	}
	raw, err := qc.rdb.Get(ctx, statsKey).Bytes()
	if err != nil {
		return analytics.Overview{}, false
	}
	var stats analytics.Overview
	if err := json.Unmarshal(raw, &stats); err != nil {
		return analytics.Overview{}, false
	}
	return stats, true
}

// SetStats caches the stats block. Best effort.
func (qc *QueryCache) SetStats(ctx context.Context, stats analytics.Overview) error {
	if qc == nil {
		return nil
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("redis: marshal stats: %w", err)
	}
	return qc.rdb.Set(ctx, statsKey, raw, qc.ttl).Err()
}

// Invalidate drops all cached query results, called after an ingestion pass
// rewrites the store.
func (qc *QueryCache) Invalidate(ctx context.Context) error {
	if qc == nil {
		return nil
	}
	iter := qc.rdb.Scan(ctx, 0, "opps:*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("redis: scan query keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return qc.rdb.Del(ctx, keys...).Err()
}
