package board

import (
	"time"

	"github.com/bluele/gcache"
)

const (
	departuresKey  = "departures"
	disruptionsKey = "disruptions"
)

// cacheEntry pairs a fetch result with the wall-clock instant it stops being served.
type cacheEntry[T any] struct {
	value     T
	expiresAt time.Time
}

func (e cacheEntry[T]) expiry() time.Time {
	return e.expiresAt
}

// resultCache holds at most one result per resource kind. Entries expire a
// fixed TTL after they were written, however often they are read.
type resultCache struct {
	store gcache.Cache
	clock gcache.Clock
	ttl   time.Duration
}

func newResultCache(ttl time.Duration, clock gcache.Clock) *resultCache {
	return &resultCache{
		store: gcache.New(2).Simple().Expiration(ttl).Clock(clock).Build(),
		clock: clock,
		ttl:   ttl,
	}
}

func (c *resultCache) Invalidate() {
	c.store.Purge()
}

// expiresAt reports when the entry under key expires, if there is a live one.
func (c *resultCache) expiresAt(key string) (time.Time, bool) {
	v, err := c.store.GetIFPresent(key)
	if err != nil {
		return time.Time{}, false
	}
	e, ok := v.(interface{ expiry() time.Time })
	if !ok {
		return time.Time{}, false
	}
	return e.expiry(), true
}

func cacheGet[T any](c *resultCache, key string) (T, bool) {
	var zero T
	v, err := c.store.GetIFPresent(key)
	if err != nil {
		return zero, false
	}
	entry, ok := v.(cacheEntry[T])
	if !ok {
		return zero, false
	}
	return entry.value, true
}

func cacheSet[T any](c *resultCache, key string, value T) {
	entry := cacheEntry[T]{value: value, expiresAt: c.clock.Now().Add(c.ttl)}
	// Set only fails for a nil key.
	_ = c.store.Set(key, entry)
}
