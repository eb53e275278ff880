package memory

import (
	"sync"

	"daily-challenge-service/internal/app"
	"daily-challenge-service/internal/domain"
)

// BoardStore is an in-memory implementation of app.BoardRepository.
type BoardStore struct {
	mu     sync.RWMutex
	boards map[domain.DayKey]*app.Board
}

func NewBoardStore() *BoardStore {
	return &BoardStore{
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
	}
}
