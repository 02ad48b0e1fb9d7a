package pricing

import (
	"context"
	"sync"
	"time"

	"github.com/promopress/promopress/internal/clock"
	"github.com/shopspring/decimal"
)

const DefaultCacheTTL = 60 * time.Second

// CachedSource wraps a Source with a single-entry TTL cache. At most one
// refresh is in flight at a time; while a refresh runs, readers keep serving
// the previous value until it lands. A refresh failure is surfaced, never
// papered over with a stale price.
type CachedSource struct {
	source Source
	clock  clock.Clock
	ttl    time.Duration

	mu        sync.RWMutex
	price     decimal.Decimal
	fetchedAt time.Time

	refreshMu sync.Mutex
}

func NewCachedSource(source Source, clk clock.Clock, ttl time.Duration) *CachedSource {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	return &CachedSource{
		source: source,
		clock:  clk,
		ttl:    ttl,
	}
}

func (c *CachedSource) CurrentPriceUSD(ctx context.Context) (decimal.Decimal, error) {
	if price, ok := c.cached(); ok {
		return price, nil
	}

	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	// Another request may have refreshed while we waited for the lock.
	if price, ok := c.cached(); ok {
		return price, nil
	}

	price, err := c.source.CurrentPriceUSD(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	c.mu.Lock()
	c.price = price
	c.fetchedAt = c.clock.Now()
	c.mu.Unlock()

	return price, nil
}

func (c *CachedSource) cached() (decimal.Decimal, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.fetchedAt.IsZero() || c.clock.Now().Sub(c.fetchedAt) >= c.ttl {
		return decimal.Zero, false
	}

	return c.price, true
}
