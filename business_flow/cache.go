package businessflow

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shortsintel/shorts-intel-hub/app/dto"
	"github.com/shortsintel/shorts-intel-hub/models"
)

// top10CacheTTL bounds staleness when invalidation is missed.
const top10CacheTTL = 5 * time.Minute

// top10CacheKey returns the cache key for a segment's shortlist.
func top10CacheKey(segment models.Segment) string {
	return fmt.Sprintf("top10:%s:%s:%s", segment.Market, segment.Gender, segment.AgeBand)
}

// invalidateTop10 drops the cached shortlist of a segment. Cache errors are
// ignored; the next read repopulates from the store.
func invalidateTop10(ctx context.Context, rc *redis.Client, segment models.Segment) {
	if rc == nil {
		return
	}
	_ = rc.Del(ctx, top10CacheKey(segment)).Err()
}

// readTop10Cache returns the cached shortlist of a segment, if present.
// Cache errors read as a miss.
func readTop10Cache(ctx context.Context, rc *redis.Client, segment models.Segment) ([]dto.TopicItem, bool) {
	if rc == nil {
		return nil, false
	}
	raw, err := rc.Get(ctx, top10CacheKey(segment)).Bytes()
	if err != nil {
		return nil, false
	}
	var items []dto.TopicItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	return items, true
}

// writeTop10Cache stores the shortlist of a segment. Errors are ignored.
func writeTop10Cache(ctx context.Context, rc *redis.Client, segment models.Segment, items []dto.TopicItem) {
	if rc == nil {
		return
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return
	}
	_ = rc.Set(ctx, top10CacheKey(segment), raw, top10CacheTTL).Err()
}
