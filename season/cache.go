package season

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// DefaultCacheTTL is how long a loaded season stays fresh
const DefaultCacheTTL = 30 * time.Minute

// Clock returns the current time
type Clock func() time.Time

// Cache keeps loaded season packages in memory for a fixed TTL. It is
// owned by its caller and safe for concurrent use; concurrent misses for
// the same season share one load.
type Cache struct {
	loader Loader
	ttl    time.Duration
	now    Clock
	logger zerolog.Logger

	mu      sync.RWMutex
	entries map[string]*cachedPackage
	group   singleflight.Group

	hits   atomic.Int64
	misses atomic.Int64
}

// CacheStats counts lookups served from memory and loads
type CacheStats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Entries int   `json:"entries"`
}

type cachedPackage struct {
	pkg       *Package
	expiresAt time.Time
}

// CacheOption configures a Cache
type CacheOption func(*Cache)

// WithClock replaces time.Now, mostly for tests
func WithClock(clock Clock) CacheOption {
	return func(c *Cache) {
		c.now = clock
	}
}

// WithLogger attaches a logger for load and cleanup messages
func WithLogger(logger zerolog.Logger) CacheOption {
	return func(c *Cache) {
		c.logger = logger
	}
}

// NewCache creates a cache in front of loader. A ttl of zero or less
// uses DefaultCacheTTL.
func NewCache(loader Loader, ttl time.Duration, opts ...CacheOption) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	c := &Cache{
		loader:  loader,
		ttl:     ttl,
		now:     time.Now,
		logger:  zerolog.Nop(),
		entries: make(map[string]*cachedPackage),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the season, loading it on a miss or after expiry
func (c *Cache) Get(ctx context.Context, season string) (*Package, error) {
	if pkg, ok := c.lookup(season); ok {
		c.hits.Add(1)
		return pkg, nil
	}
	c.misses.Add(1)

	// the shared load outlives any one caller's cancellation
	loadCtx := context.WithoutCancel(ctx)
	ch := c.group.DoChan(season, func() (interface{}, error) {
		if pkg, ok := c.lookup(season); ok {
			return pkg, nil
		}

		start := c.now()
		pkg, err := c.loader.Load(loadCtx, season)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.entries[season] = &cachedPackage{pkg: pkg, expiresAt: c.now().Add(c.ttl)}
		c.mu.Unlock()

		c.logger.Info().
			Str("season", season).
			Int("batters", len(pkg.Batters)).
			Int("pitchers", len(pkg.Pitchers)).
			Dur("duration", c.now().Sub(start)).
			Msg("Season loaded")
		return pkg, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Package), nil
	}
}

func (c *Cache) lookup(season string) (*Package, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if cached, ok := c.entries[season]; ok && c.now().Before(cached.expiresAt) {
		return cached.pkg, true
	}
	return nil, false
}

// Invalidate drops one season so the next Get reloads it
func (c *Cache) Invalidate(season string) {
	c.mu.Lock()
	delete(c.entries, season)
	c.mu.Unlock()
}

// Purge removes expired entries and returns how many were dropped
func (c *Cache) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for key, cached := range c.entries {
		if !now.Before(cached.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of cached seasons, expired or not
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns the hit and miss counters
func (c *Cache) Stats() CacheStats {
	return CacheStats{Hits: c.hits.Load(), Misses: c.misses.Load(), Entries: c.Len()}
}

// StartCleanup purges expired entries every interval until ctx is done
func (c *Cache) StartCleanup(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if removed := c.Purge(); removed > 0 {
					c.logger.Debug().Int("removed", removed).Int("remaining", c.Len()).Msg("Season cache cleaned")
				}
			}
		}
	}()
}
