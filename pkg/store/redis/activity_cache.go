package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dealsense/dealsense/pkg/marketplace"
)

const activityListKey = "dealsense:marketplace:activities"

// ErrCacheMiss is returned when no activity list is cached. Callers fall
// through to the live marketplace API; the cache is never a correctness
// dependency.
var ErrCacheMiss = errors.New("redis: activity cache miss")

// ActivityCache keeps the marketplace activity list for a short TTL so one
// sourcing cycle does not refetch it for every vendor.
type ActivityCache struct {
	rdb redis.UniversalClient
	ttl time.Duration
}

func NewActivityCache(client *Client, ttl time.Duration) *ActivityCache {
	if ttl <= 0 {
		ttl = 90 * time.Second
	}
	return &ActivityCache{rdb: client.Client(), ttl: ttl}
}

func (c *ActivityCache) Get(ctx context.Context) ([]marketplace.Activity, error) {
	raw, err := c.rdb.Get(ctx, activityListKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}

	var activities []marketplace.Activity
	if err := json.Unmarshal(raw, &activities); err != nil {
		return nil, err
	}
	return activities, nil
}

func (c *ActivityCache) Set(ctx context.Context, activities []marketplace.Activity) error {
	raw, err := json.Marshal(activities)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, activityListKey, raw, c.ttl).Err()
}
