package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"daily-challenge-service/internal/domain"
)

// ProblemLoader produces the problems of a (date, type), typically by generating them.
type ProblemLoader interface {
	Problems(ctx context.Context, date string, t domain.ChallengeType) ([]domain.Problem, error)
}

// DefaultMaxEntries bounds how many (date, type) sets are kept in memory.
const DefaultMaxEntries = 512

// ProblemCache keeps generated problem sets with a TTL. Generation is pure, so
// the cache only saves CPU and never changes results.
type ProblemCache struct {
	loader ProblemLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex

	maxEntries int
	mu         sync.RWMutex
	cache      map[domain.DayKey]cachedProblems
}

type cachedProblems struct {
	problems  []domain.Problem
	expiresAt time.Time
}

func NewProblemCache(loader ProblemLoader, ttl time.Duration) *ProblemCache {
	return &ProblemCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),

		maxEntries: DefaultMaxEntries,
		cache:      make(map[domain.DayKey]cachedProblems),
	}
}

func (c *ProblemCache) Problems(ctx context.Context, date string, t domain.ChallengeType) ([]domain.Problem, error) {
	key := domain.DayKey{Date: date, Type: t.Normalize()}
	if problems, ok := c.lookup(key); ok {
		return problems, nil
	}

	result, err, _ := c.sf.Do(key.Date+"/"+string(key.Type), func() (interface{}, error) {
		if problems, ok := c.lookup(key); ok {
			return problems, nil
		}
		problems, err := c.loader.Problems(ctx, key.Date, key.Type)
		if err != nil {
			return nil, err
		}
		now := c.clock()
		expiresAt := now.Add(c.ttlWithJitter())
		c.mu.Lock()
		if _, ok := c.cache[key]; !ok && len(c.cache) >= c.maxEntries {
			c.evictLocked(now)
		}
		c.cache[key] = cachedProblems{problems: problems, expiresAt: expiresAt}
		c.mu.Unlock()
		return problems, nil
	})
	if err != nil {
		return nil, err
	}
	return clone(result.([]domain.Problem)), nil
}

func (c *ProblemCache) lookup(key domain.DayKey) ([]domain.Problem, bool) {
	now := c.clock()
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.cache[key]
	if !ok || !entry.expiresAt.After(now) {
		return nil, false
	}
	return clone(entry.problems), true
}

// evictLocked drops expired sets; when none expired it drops the set that
// expires first.
func (c *ProblemCache) evictLocked(now time.Time) {
	var (
		oldestKey domain.DayKey
		oldestAt  time.Time
		found     bool
	)
	for key, entry := range c.cache {
		if !entry.expiresAt.After(now) {
			delete(c.cache, key)
			continue
		}
		if !found || entry.expiresAt.Before(oldestAt) {
			oldestKey, oldestAt, found = key, entry.expiresAt, true
		}
	}
	if len(c.cache) >= c.maxEntries && found {
		delete(c.cache, oldestKey)
	}
}

func clone(problems []domain.Problem) []domain.Problem {
	return append([]domain.Problem(nil), problems...)
}

func (c *ProblemCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
