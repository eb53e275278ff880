package memory

import (
	"context"
	"sync"

	"daily-challenge-service/internal/aggregate"
	"daily-challenge-service/internal/domain"
)

type submissionKey struct {
	date   string
	typ    domain.ChallengeType
	userID string
}

// SubmissionStore is an in-memory implementation of app.SubmissionRepository.
// The composite map key plays the role of the unique (date, type, user) index.
type SubmissionStore struct {
	mu    sync.RWMutex
	byKey map[submissionKey]int
	rows  []domain.Submission // arrival order
}

func NewSubmissionStore() *SubmissionStore {
	return &SubmissionStore{
		byKey: make(map[submissionKey]int),
	}
}

func keyOf(date string, t domain.ChallengeType, userID string) submissionKey {
	return submissionKey{date: date, typ: t.Normalize(), userID: userID}
}

func (s *SubmissionStore) Create(_ context.Context, sub domain.Submission) error {
	sub.Type = sub.Type.Normalize()
	key := keyOf(sub.Date, sub.Type, sub.UserID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byKey[key]; ok {
		return domain.ErrSubmissionExists
	}
	sub.Breakdown = append([]domain.ProblemScore(nil), sub.Breakdown...)
	s.byKey[key] = len(s.rows)
	s.rows = append(s.rows, sub)
	return nil
}

func (s *SubmissionStore) Find(_ context.Context, day domain.DayKey, userID string) (domain.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.byKey[keyOf(day.Date, day.Type, userID)]
	if !ok {
		return domain.Submission{}, domain.ErrSubmissionNotFound
	}
	return s.rows[idx], nil
}

func (s *SubmissionStore) ListDay(_ context.Context, day domain.DayKey) ([]domain.Submission, error) {
	t := day.Type.Normalize()
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Submission, 0)
	for _, sub := range s.rows {
		if sub.Date == day.Date && sub.Type == t {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (s *SubmissionStore) ListUser(_ context.Context, userID, from, to string, t *domain.ChallengeType) ([]domain.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Submission, 0)
	for _, sub := range s.rows {
		if sub.UserID != userID || sub.Date < from || sub.Date > to {
			continue
		}
		if t != nil && sub.Type != t.Normalize() {
			continue
		}
		out = append(out, sub)
	}
	return out, nil
}

func (s *SubmissionStore) Tallies(_ context.Context, keys []domain.DayKey) (map[domain.DayKey]aggregate.Tally, error) {
	want := make(map[domain.DayKey]bool, len(keys))
	for _, k := range keys {
		want[domain.DayKey{Date: k.Date, Type: k.Type.Normalize()}] = true
	}
	s.mu.RLock()
	matching := make([]domain.Submission, 0, len(s.rows))
	for _, sub := range s.rows {
		if want[domain.DayKey{Date: sub.Date, Type: sub.Type.Normalize()}] {
			matching = append(matching, sub)
		}
	}
	s.mu.RUnlock()
	return aggregate.Tallies(matching), nil
}

func (s *SubmissionStore) DeleteDay(_ context.Context, date string, t *domain.ChallengeType) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.rows[:0]
	var deleted int64
	for _, sub := range s.rows {
		if sub.Date == date && (t == nil || sub.Type == t.Normalize()) {
			deleted++
			continue
		}
		kept = append(kept, sub)
	}
	s.rows = kept
	s.byKey = make(map[submissionKey]int, len(kept))
	for i, sub := range kept {
		s.byKey[keyOf(sub.Date, sub.Type, sub.UserID)] = i
	}
	return deleted, nil
}
