package app

import (
	"sync"
	"time"

	"daily-challenge-service/internal/domain"
)

// Board fans out leaderboard snapshots of one (date, type) to live watchers.
type Board struct {
	key         domain.DayKey
	now         func() time.Time
	mu          sync.RWMutex
	last        domain.Leaderboard
	subscribers map[chan domain.Leaderboard]struct{}
}

// NewBoard is exported for infrastructure layers that keep board registries.
func NewBoard(key domain.DayKey) *Board {
	return NewBoardWithClock(key, time.Now)
}

// NewBoardWithClock allows deterministic timestamps in tests.
func NewBoardWithClock(key domain.DayKey, now func() time.Time) *Board {
	return &Board{
		key:         key,
		now:         now,
		last:        domain.Leaderboard{Date: key.Date, Type: key.Type, Rows: []domain.LeaderboardRow{}},
		subscribers: make(map[chan domain.Leaderboard]struct{}),
	}
}

// Key identifies the board.
func (b *Board) Key() domain.DayKey {
	return b.key
}

// IsIdle reports whether nobody is watching.
func (b *Board) IsIdle() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers) == 0
}

// Publish stores rows as the latest snapshot and pushes it to every watcher.
func (b *Board) Publish(rows []domain.LeaderboardRow) domain.Leaderboard {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.last = domain.Leaderboard{
		Date:      b.key.Date,
		Type:      b.key.Type,
		Rows:      rows,
		UpdatedAt: b.now(),
	}
	return b.broadcastLocked()
}

// Subscribe registers a watcher. The channel first receives the latest
// snapshot; the caller must invoke cancel to release it.
func (b *Board) Subscribe() (<-chan domain.Leaderboard, func()) {
	ch := make(chan domain.Leaderboard, 8)

	// the buffer is empty, so this send cannot block while holding the lock
	b.mu.Lock()
	b.subscribers[ch] = struct{}{}
	ch <- b.last
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if _, ok := b.subscribers[ch]; ok {
			delete(b.subscribers, ch)
			close(ch)
		}
		b.mu.Unlock()
	}
	return ch, cancel
}

func (b *Board) broadcastLocked() domain.Leaderboard {
	lb := b.last
	for ch := range b.subscribers {
		select {
		case ch <- lb:
		default:
			// slow watcher: replace its oldest pending snapshot
			select {
			case <-ch:
			default:
			}
			ch <- lb
		}
	}
	return lb
}
