package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"daily-challenge-service/internal/domain"
)

// ProblemLoader produces the problems of a (date, type), typically by generating them.
type ProblemLoader interface {
	Problems(ctx context.Context, date string, t domain.ChallengeType) ([]domain.Problem, error)
}

// ProblemCache shares generated problem sets across instances (hash per day and type)
// and falls back to the loader on a miss or a Redis failure.
// Problems are stored as: HSET daily:{date}:{type}:problems {index} {json}
type ProblemCache struct {
	client *redis.Client
	loader ProblemLoader
	ttl    time.Duration
	sf     singleflight.Group
	rndMu  sync.Mutex
	rnd    *rand.Rand
}

// cachedProblem keeps the exact answer, unlike the client-facing JSON of domain.Problem.
type cachedProblem struct {
	Index      int     `json:"i"`
	A          int64   `json:"a,omitempty"`
	B          int64   `json:"b,omitempty"`
	Expression string  `json:"e"`
	Exact      float64 `json:"x"`
}

func NewProblemCache(client *redis.Client, loader ProblemLoader, ttl time.Duration) *ProblemCache {
	return &ProblemCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *ProblemCache) Problems(ctx context.Context, date string, t domain.ChallengeType) ([]domain.Problem, error) {
	t = t.Normalize()
	key := c.problemsKey(date, t)

	if problems, ok := c.read(ctx, key); ok {
		return problems, nil
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if problems, ok := c.read(ctx, key); ok {
			return problems, nil
		}

		problems, err := c.loader.Problems(ctx, date, t)
		if err != nil {
			return nil, err
		}

		pipe := c.client.Pipeline()
		for _, p := range problems {
			data, err := json.Marshal(cachedProblem{Index: p.Index, A: p.A, B: p.B, Expression: p.Expression, Exact: p.ExactAnswer})
			if err != nil {
				return nil, err
			}
			pipe.HSet(ctx, key, strconv.Itoa(p.Index), data)
		}
		if ttl := c.ttlWithJitter(); ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		_, _ = pipe.Exec(ctx)

		return problems, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]domain.Problem(nil), result.([]domain.Problem)...), nil
}

// read returns a complete cached set; partial or corrupt hashes count as a miss.
func (c *ProblemCache) read(ctx context.Context, key string) ([]domain.Problem, bool) {
	fields, err := c.client.HGetAll(ctx, key).Result()
	if err != nil || len(fields) != domain.ProblemsPerDay {
		return nil, false
	}
	problems := make([]domain.Problem, domain.ProblemsPerDay)
	for i := range problems {
		raw, ok := fields[strconv.Itoa(i)]
		if !ok {
			return nil, false
		}
		var cp cachedProblem
		if err := json.Unmarshal([]byte(raw), &cp); err != nil || cp.Index != i {
			return nil, false
		}
		problems[i] = domain.Problem{Index: cp.Index, A: cp.A, B: cp.B, Expression: cp.Expression, ExactAnswer: cp.Exact}
	}
	return problems, true
}

func (c *ProblemCache) problemsKey(date string, t domain.ChallengeType) string {
	return "daily:" + date + ":" + string(t) + ":problems"
}

func (c *ProblemCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
