package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"daily-challenge-service/internal/app"
	"daily-challenge-service/internal/domain"
)

// BoardStore is a Redis-aware implementation of app.BoardRepository.
// Notes:
//   - Boards and their watchers stay in-process; the websocket fan-out is local.
//   - Redis holds a liveness marker per watched board so operators (and other
//     instances) can see which days have live watchers.
type BoardStore struct {
	client *redis.Client
	ttl    time.Duration
	mu     sync.RWMutex
	boards map[domain.DayKey]*app.Board
}

func NewBoardStore(client *redis.Client, ttl time.Duration) *BoardStore {
	return &BoardStore{
		client: client,
		ttl:    ttl,
		boards: make(map[domain.DayKey]*app.Board),
	}
}

func (s *BoardStore) GetOrCreate(key domain.DayKey) *app.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	if board, ok := s.boards[key]; ok {
		return board
	}
	board := app.NewBoard(key)
	s.boards[key] = board
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(key), "1", s.ttl).Err()
	return board
}

func (s *BoardStore) Get(key domain.DayKey) (*app.Board, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	board, ok := s.boards[key]
	return board, ok
}

func (s *BoardStore) DeleteIfIdle(key domain.DayKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	board, ok := s.boards[key]
	if !ok {
		return
	}
	if board.IsIdle() {
		delete(s.boards, key)
		_ = s.client.Del(context.Background(), s.key(key)).Err()
	}
}

func (s *BoardStore) key(key domain.DayKey) string {
	return "daily:board:" + key.Date + ":" + string(key.Type)
}
