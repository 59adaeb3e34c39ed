package musicapi

import (
	"context"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	trackCacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "barsandbios_track_cache_hits_total",
		Help: "Track lookups served from the in-memory cache.",
	})
	trackCacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "barsandbios_track_cache_misses_total",
		Help: "Track lookups that went to the provider.",
	})
)

// CachedTracks is a TrackService that keeps successful lookups in an LRU
// with a TTL. Failures are never cached.
type CachedTracks struct {
	next  TrackService
	cache *expirable.LRU[string, Track]
}

// NewCachedTracks wraps next with a cache of at most size entries.
func NewCachedTracks(next TrackService, size int, ttl time.Duration) *CachedTracks {
	return &CachedTracks{
		next:  next,
		cache: expirable.NewLRU[string, Track](size, nil, ttl),
	}
}

func (c *CachedTracks) SearchTrack(ctx context.Context, query string) (Track, error) {
	key := "search:" + strings.ToLower(strings.TrimSpace(query))
	return c.lookup(key, func() (Track, error) { return c.next.SearchTrack(ctx, query) })
}

func (c *CachedTracks) GetTrack(ctx context.Context, id string) (Track, error) {
	return c.lookup("track:"+id, func() (Track, error) { return c.next.GetTrack(ctx, id) })
}

func (c *CachedTracks) lookup(key string, fetch func() (Track, error)) (Track, error) {
	if t, ok := c.cache.Get(key); ok {
		trackCacheHitsTotal.Inc()
		return t, nil
	}
	trackCacheMissesTotal.Inc()

	t, err := fetch()
	if err != nil {
		return Track{}, err
	}
	c.cache.Add(key, t)
	c.cache.Add("track:"+t.ExternalID, t)
	return t, nil
}
