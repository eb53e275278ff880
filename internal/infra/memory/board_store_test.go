package memory

import (
	"testing"

	"daily-challenge-service/internal/domain"
)

func TestBoardStoreLifecycle(t *testing.T) {
	store := NewBoardStore()
	key := domain.DayKey{Date: "2025-01-15", Type: domain.Division}

	board := store.GetOrCreate(key)
	if board == nil {
		t.Fatalf("expected board")
	}
	if store.GetOrCreate(key) != board {
		t.Fatalf("expected same board on second call")
	}

	_, cancel := board.Subscribe()
	store.DeleteIfIdle(key)
	if _, ok := store.Get(key); !ok {
		t.Fatalf("expected watched board kept")
	}

	cancel()
	store.DeleteIfIdle(key)
	if _, ok := store.Get(key); ok {
		t.Fatalf("expected idle board removed")
	}
}
