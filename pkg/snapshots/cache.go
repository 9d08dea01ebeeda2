package snapshots

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/arrivo/arrivo/pkg/redis_client"
	"github.com/arrivo/arrivo/pkg/transit"
	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
)

// CachedProvider wraps another Provider with a Redis backed read-through
// cache, keyed on the lookup minute. Snapshots arrive at a much coarser
// cadence than pings so this absorbs nearly all repeat lookups.
type CachedProvider struct {
	upstream Provider

	cache *cache.Cache[string]
}

func NewCachedProvider(upstream Provider) *CachedProvider {
	redisStore := redisstore.NewRedis(redis_client.Client, store.WithExpiration(30*time.Minute))

	return &CachedProvider{
		upstream: upstream,
		cache:    cache.New[string](redisStore),
	}
}

func (p *CachedProvider) LatestSnapshot(ctx context.Context, location *transit.Location, atOrBefore time.Time) *transit.ContextSnapshot {
	cacheKey := fmt.Sprintf("context-snapshot/%s", atOrBefore.UTC().Truncate(time.Minute).Format(time.RFC3339))

	cachedValue, _ := p.cache.Get(ctx, cacheKey)
	if cachedValue == "N/A" {
		return nil
	} else if cachedValue != "" {
		var snapshot *transit.ContextSnapshot
		if err := json.Unmarshal([]byte(cachedValue), &snapshot); err == nil {
			return snapshot
		}
	}

	snapshot := p.upstream.LatestSnapshot(ctx, location, atOrBefore)

	if snapshot == nil {
		// Cache the miss so we dont keep rechecking an empty window
		p.cache.Set(ctx, cacheKey, "N/A")
		return nil
	}

	if snapshotJson, err := json.Marshal(snapshot); err == nil {
		p.cache.Set(ctx, cacheKey, string(snapshotJson))
	}

	return snapshot
}
