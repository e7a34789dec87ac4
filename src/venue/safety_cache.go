package venue

import (
	"sync"
	"time"

	"papertrader/src/model"
)

// safetyCache keeps one verdict per token for ttl. A zero ttl caches forever.
type safetyCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	reports map[string]model.SafetyReport
}

func newSafetyCache(ttl time.Duration) *safetyCache {
	return &safetyCache{ttl: ttl, now: time.Now, reports: make(map[string]model.SafetyReport)}
}

func (c *safetyCache) get(tokenID string) (model.SafetyReport, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	r, ok := c.reports[tokenID]
	if !ok {
		return model.SafetyReport{}, false
	}
	if c.ttl > 0 && c.now().Sub(r.CheckedAt) > c.ttl {
		delete(c.reports, tokenID)
		return model.SafetyReport{}, false
	}
	return r, true
}

func (c *safetyCache) put(r model.SafetyReport) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reports[r.TokenID] = r
}
