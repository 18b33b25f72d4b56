package redis

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"knowledge-check-service/internal/app"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// CompanyCache keeps quiz -> company lookups in Redis and falls back to a loader on miss.
// Entries are stored as: SET quiz:{quizID}:company {companyID}
type CompanyCache struct {
	client *redis.Client
	loader app.CompanyResolver
	ttl    time.Duration
	sf     singleflight.Group
	rndMu  sync.Mutex // rand.Rand is not safe for concurrent use
	rnd    *rand.Rand
}

func NewCompanyCache(client *redis.Client, loader app.CompanyResolver, ttl time.Duration) *CompanyCache {
	return &CompanyCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *CompanyCache) QuizCompanyID(ctx context.Context, quizID int64) (int64, error) {
	key := companyKey(quizID)
	if id, ok := c.cached(ctx, key); ok {
		return id, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if id, ok := c.cached(ctx, key); ok {
			return id, nil
		}

		companyID, err := c.loader.QuizCompanyID(ctx, quizID)
		if err != nil {
			return int64(0), err
		}
		_ = c.client.Set(ctx, key, companyID, c.ttlWithJitter()).Err()
		return companyID, nil
	})
	if err != nil {
		return 0, err
	}
	return result.(int64), nil
}

func (c *CompanyCache) cached(ctx context.Context, key string) (int64, bool) {
	raw, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// Invalidate drops the cached company of a quiz.
func (c *CompanyCache) Invalidate(ctx context.Context, quizID int64) error {
	if err := c.client.Del(ctx, companyKey(quizID)).Err(); err != nil {
		return fmt.Errorf("invalidate quiz %d: %w", quizID, err)
	}
	return nil
}

func companyKey(quizID int64) string {
	return "quiz:" + strconv.FormatInt(quizID, 10) + ":company"
}

func (c *CompanyCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	jitter := c.rnd.Int63n(jitterMax + 1)
	c.rndMu.Unlock()
	return c.ttl + time.Duration(jitter)
}
