package redis

import (
	"context"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"daily-challenge-service/internal/challenge"
	"daily-challenge-service/internal/domain"
)

func TestProblemCacheCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{}
	cache := NewProblemCache(newClient(mr), loader, time.Minute)

	first, err := cache.Problems(context.Background(), "2025-01-15", domain.Equation)
	if err != nil {
		t.Fatalf("problems: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists("daily:2025-01-15:equation:problems") {
		t.Fatalf("expected redis hash to be written")
	}

	// A fresh cache instance (another process) must read the shared hash.
	other := NewProblemCache(newClient(mr), loader, time.Minute)
	second, err := other.Problems(context.Background(), "2025-01-15", domain.Equation)
	if err != nil {
		t.Fatalf("problems 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("problem %d differs after round trip: %+v vs %+v", i, first[i], second[i])
		}
	}
}

func TestProblemCacheIgnoresPartialHash(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	mr.HSet("daily:2025-01-15:division:problems", "0", `{"i":0,"e":"1 ÷ 1","x":1}`)

	loader := &countingLoader{}
	cache := NewProblemCache(newClient(mr), loader, time.Minute)
	problems, err := cache.Problems(context.Background(), "2025-01-15", domain.Division)
	if err != nil {
		t.Fatalf("problems: %v", err)
	}
	if loader.calls != 1 || len(problems) != domain.ProblemsPerDay {
		t.Fatalf("expected regeneration, calls=%d len=%d", loader.calls, len(problems))
	}
	want, _ := challenge.Generate("2025-01-15", domain.Division)
	if problems[0] != want[0] {
		t.Fatalf("expected generated problem, got %+v", problems[0])
	}
}

type countingLoader struct {
	mu    sync.Mutex
	calls int
}

func (l *countingLoader) Problems(_ context.Context, date string, t domain.ChallengeType) ([]domain.Problem, error) {
	l.mu.Lock()
	l.calls++
	l.mu.Unlock()
	return challenge.Generate(date, t)
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
