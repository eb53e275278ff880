package app

import (
	"testing"
	"time"

	"daily-challenge-service/internal/domain"
)

func rows(ids ...string) []domain.LeaderboardRow {
	out := make([]domain.LeaderboardRow, 0, len(ids))
	for i, id := range ids {
		out = append(out, domain.LeaderboardRow{Rank: i + 1, UserID: id})
	}
	return out
}

func TestBoardSubscribeGetsLatestSnapshot(t *testing.T) {
	at := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	board := NewBoardWithClock(domain.DayKey{Date: "2025-01-15", Type: domain.Division}, func() time.Time { return at })
	board.Publish(rows("u1"))

	ch, cancel := board.Subscribe()
	defer cancel()

	got := <-ch
	if len(got.Rows) != 1 || got.Rows[0].UserID != "u1" {
		t.Fatalf("expected latest snapshot, got %+v", got.Rows)
	}
	if !got.UpdatedAt.Equal(at) || got.Type != domain.Division {
		t.Fatalf("unexpected snapshot metadata %+v", got)
	}
	if board.IsIdle() {
		t.Fatalf("expected board to have a watcher")
	}
}

func TestBoardSlowWatcherKeepsNewest(t *testing.T) {
	board := NewBoard(domain.DayKey{Date: "2025-01-15", Type: domain.Equation})
	ch, cancel := board.Subscribe()
	defer cancel()

	// never read while publishing far more than the buffer holds
	for i := 0; i < 50; i++ {
		board.Publish(rows("u1", "u2")[:1+i%2])
	}
	board.Publish(rows("winner"))

	var last domain.Leaderboard
	for {
		select {
		case lb := <-ch:
			last = lb
			continue
		default:
		}
		break
	}
	if len(last.Rows) != 1 || last.Rows[0].UserID != "winner" {
		t.Fatalf("expected newest snapshot last, got %+v", last.Rows)
	}
}

func TestBoardCancelIsIdempotent(t *testing.T) {
	board := NewBoard(domain.DayKey{Date: "2025-01-15", Type: domain.Multiplication})
	ch, cancel := board.Subscribe()
	<-ch
	cancel()
	cancel()
	if _, ok := <-ch; ok {
		t.Fatalf("expected closed channel")
	}
	if !board.IsIdle() {
		t.Fatalf("expected idle board after cancel")
	}
	// publishing to an idle board must not block
	board.Publish(rows("u1"))
}

func TestBoardSubscribeNeverEndsOnStaleSnapshot(t *testing.T) {
	for i := 0; i < 2000; i++ {
		board := NewBoard(domain.DayKey{Date: "2025-01-15", Type: domain.Division})
		board.Publish(rows("old"))

		done := make(chan struct{})
		go func() {
			defer close(done)
			board.Publish(rows("new"))
		}()
		ch, cancel := board.Subscribe()
		<-done

		var last domain.Leaderboard
		for {
			select {
			case lb := <-ch:
				last = lb
				continue
			default:
			}
			break
		}
		cancel()
		if len(last.Rows) != 1 || last.Rows[0].UserID != "new" {
			t.Fatalf("iteration %d: watcher left on %+v", i, last.Rows)
		}
	}
}
