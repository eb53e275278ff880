// Package aggregate derives leaderboards and daily averages from stored
// submissions. Nothing here is persisted.
package aggregate

import (
	"sort"

	"daily-challenge-service/internal/domain"
	"daily-challenge-service/internal/scoring"
)

const (
	DefaultLimit = 20
	MaxLimit     = 50
)

// ClampLimit bounds a requested leaderboard size to [1, MaxLimit]. Zero means
// unset and gets DefaultLimit; negative sizes clamp to 1.
func ClampLimit(limit int) int {
	switch {
	case limit == 0:
		return DefaultLimit
	case limit < 1:
		return 1
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

// Rank sorts submissions by total score descending, keeping arrival order for
// ties, assigns 1-based ranks and truncates to limit.
func Rank(subs []domain.Submission, limit int) []domain.LeaderboardRow {
	sorted := make([]domain.Submission, len(subs))
	copy(sorted, subs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].TotalScore > sorted[j].TotalScore
	})
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}

	rows := make([]domain.LeaderboardRow, 0, len(sorted))
	for i, s := range sorted {
		name := s.DisplayName
		if name == "" {
			name = "Anonymous"
		}
		rows = append(rows, domain.LeaderboardRow{
			Rank:        i + 1,
			UserID:      s.UserID,
			DisplayName: name,
			TotalScore:  s.TotalScore,
		})
	}
	return rows
}

// Tally is the running sum and count of one (date, type).
type Tally struct {
	Sum   float64
	Count int
}

// Add folds one score into the tally.
func (t *Tally) Add(score float64) {
	t.Sum += score
	t.Count++
}

// Average converts a tally into the rounded daily mean.
func (t Tally) Average(key domain.DayKey) domain.DailyAverage {
	avg := domain.DailyAverage{Date: key.Date, Type: key.Type, ParticipantCount: t.Count}
	if t.Count > 0 {
		avg.MeanScore = scoring.Round2(t.Sum / float64(t.Count))
	}
	return avg
}

// Tallies groups submissions by (date, type).
func Tallies(subs []domain.Submission) map[domain.DayKey]Tally {
	out := make(map[domain.DayKey]Tally)
	for _, s := range subs {
		key := domain.DayKey{Date: s.Date, Type: s.Type.Normalize()}
		t := out[key]
		t.Add(s.TotalScore)
		out[key] = t
	}
	return out
}

// History pairs each of a user's submissions with its day average. Keys with
// no tally get a zero average for that key. Output is ordered by date then type.
func History(subs []domain.Submission, averages map[domain.DayKey]domain.DailyAverage) []domain.HistoryEntry {
	entries := make([]domain.HistoryEntry, 0, len(subs))
	for _, s := range subs {
		key := domain.DayKey{Date: s.Date, Type: s.Type.Normalize()}
		avg, ok := averages[key]
		if !ok {
			avg = domain.DailyAverage{Date: key.Date, Type: key.Type}
		}
		entries = append(entries, domain.HistoryEntry{
			Date:       key.Date,
			Type:       key.Type,
			Score:      s.TotalScore,
			DayAverage: avg,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Date != entries[j].Date {
			return entries[i].Date < entries[j].Date
		}
		return typeOrder(entries[i].Type) < typeOrder(entries[j].Type)
	})
	return entries
}

func typeOrder(t domain.ChallengeType) int {
	for i, known := range domain.ChallengeTypes {
		if known == t {
			return i
		}
	}
	return len(domain.ChallengeTypes)
}

// Keys returns the distinct (date, type) keys of subs in first-seen order.
func Keys(subs []domain.Submission) []domain.DayKey {
	seen := make(map[domain.DayKey]bool, len(subs))
	keys := make([]domain.DayKey, 0, len(subs))
	for _, s := range subs {
		key := domain.DayKey{Date: s.Date, Type: s.Type.Normalize()}
		if !seen[key] {
			seen[key] = true
			keys = append(keys, key)
		}
	}
	return keys
}
