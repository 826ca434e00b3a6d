package realtime

import "sync"

// PriceCache holds the last seen price per scrip code, fed by candle
// events from the ingest stream and read by the mark-to-market job.
type PriceCache struct {
	mu     sync.RWMutex
	prices map[string]float64
}

// NewPriceCache creates a new PriceCache
func NewPriceCache() *PriceCache {
	return &PriceCache{
		prices: make(map[string]float64),
	}
}

// Set records the latest price for a scrip code
func (c *PriceCache) Set(scripCode string, price float64) {
	c.mu.Lock()
	c.prices[scripCode] = price
	c.mu.Unlock()
}

// Get returns the latest price for a scrip code
func (c *PriceCache) Get(scripCode string) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	price, ok := c.prices[scripCode]
	return price, ok
}

// Snapshot returns a copy of all cached prices
func (c *PriceCache) Snapshot() map[string]float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snapshot := make(map[string]float64, len(c.prices))
	for k, v := range c.prices {
		snapshot[k] = v
	}
	return snapshot
}
