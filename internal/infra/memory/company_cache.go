package memory

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"knowledge-check-service/internal/app"
	"golang.org/x/sync/singleflight"
)

// CompanyCache caches quiz -> company lookups with TTL to avoid repeated DB hits.
type CompanyCache struct {
	loader app.CompanyResolver
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rndMu  sync.Mutex // rand.Rand is not safe for concurrent use
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[int64]cachedCompany
}

type cachedCompany struct {
	companyID int64
	expiresAt time.Time
}

func NewCompanyCache(loader app.CompanyResolver, ttl time.Duration) *CompanyCache {
	return &CompanyCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[int64]cachedCompany),
	}
}

func (c *CompanyCache) QuizCompanyID(ctx context.Context, quizID int64) (int64, error) {
	if id, ok := c.lookup(quizID); ok {
		return id, nil
	}

	result, err, _ := c.sf.Do(strconv.FormatInt(quizID, 10), func() (interface{}, error) {
		if id, ok := c.lookup(quizID); ok {
			return id, nil
		}

		companyID, err := c.loader.QuizCompanyID(ctx, quizID)
		if err != nil {
			return int64(0), err
		}

		c.mu.Lock()
		c.cache[quizID] = cachedCompany{
			companyID: companyID,
			expiresAt: c.clock().Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return companyID, nil
	})
	if err != nil {
		return 0, err
	}
	return result.(int64), nil
}

func (c *CompanyCache) lookup(quizID int64) (int64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.cache[quizID]
	if !ok || !entry.expiresAt.After(c.clock()) {
		return 0, false
	}
	return entry.companyID, true
}

func (c *CompanyCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	jitter := c.rnd.Int63n(jitterMax + 1)
	c.rndMu.Unlock()
	return c.ttl + time.Duration(jitter)
}
