package domain

import "time"

// ProblemsPerDay is the fixed size of every daily challenge.
const ProblemsPerDay = 10

// Problem is one generated challenge item. ExactAnswer stays on the server.
type Problem struct {
	Index       int     `json:"problemIndex"`
	A           int64   `json:"a,omitempty"`
	B           int64   `json:"b,omitempty"`
	Expression  string  `json:"expression"`
	ExactAnswer float64 `json:"-"`
}

// ProblemView is the client-facing shape of a problem.
type ProblemView struct {
	Index      int    `json:"problemIndex"`
	A          int64  `json:"a,omitempty"`
	B          int64  `json:"b,omitempty"`
	Expression string `json:"expression"`
}

// View strips the exact answer.
func (p Problem) View() ProblemView {
	return ProblemView{Index: p.Index, A: p.A, B: p.B, Expression: p.Expression}
}

// ProblemSet is the full set of problems for a (date, type).
type ProblemSet struct {
	Date     string        `json:"date"`
	Type     ChallengeType `json:"type"`
	Problems []ProblemView `json:"problems"`
}

// Answer is a single user response to a problem.
type Answer struct {
	ProblemIndex  int        `json:"problemIndex"`
	UserAnswer    UserAnswer `json:"userAnswer"`
	ElapsedMillis int64      `json:"elapsedMillis"`
}

// ProblemScore is the stored per-problem breakdown row.
type ProblemScore struct {
	ProblemIndex  int      `json:"problemIndex"`
	UserAnswer    *float64 `json:"userAnswer"`
	CorrectAnswer float64  `json:"correctAnswer"`
	ElapsedMillis int64    `json:"elapsedMillis"`
	ProblemScore  float64  `json:"problemScore"`
}

// ScoreResult is what scoring an attempt produces.
type ScoreResult struct {
	TotalScore float64        `json:"score"`
	Breakdown  []ProblemScore `json:"breakdown"`
}

// Submission is the single stored attempt of a user for a (date, type).
type Submission struct {
	ID          string         `json:"id"`
	Date        string         `json:"date"`
	Type        ChallengeType  `json:"type"`
	UserID      string         `json:"userId"`
	DisplayName string         `json:"displayName"`
	TotalScore  float64        `json:"score"`
	Breakdown   []ProblemScore `json:"breakdown"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// DayKey groups submissions by calendar day and challenge type.
type DayKey struct {
	Date string
	Type ChallengeType
}

// LeaderboardRow is a derived ranking entry.
type LeaderboardRow struct {
	Rank        int     `json:"rank"`
	UserID      string  `json:"userId"`
	DisplayName string  `json:"name"`
	TotalScore  float64 `json:"score"`
}

// Leaderboard is the ranked view for a (date, type).
type Leaderboard struct {
	Date      string           `json:"date"`
	Type      ChallengeType    `json:"type"`
	Rows      []LeaderboardRow `json:"leaderboard"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// DailyAverage is the mean total score across all submissions of a (date, type).
type DailyAverage struct {
	Date             string        `json:"date"`
	Type             ChallengeType `json:"type"`
	MeanScore        float64       `json:"meanScore"`
	ParticipantCount int           `json:"participantCount"`
}

// HistoryEntry compares one of the user's scores with the day's average.
type HistoryEntry struct {
	Date       string        `json:"date"`
	Type       ChallengeType `json:"type"`
	Score      float64       `json:"score"`
	DayAverage DailyAverage  `json:"dayAverage"`
}

// MySubmission reports whether a user already played a (date, type).
type MySubmission struct {
	Date      string        `json:"date"`
	Type      ChallengeType `json:"type"`
	Submitted bool          `json:"submitted"`
	Score     *float64      `json:"score"`
}
