package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"daily-challenge-service/internal/aggregate"
	"daily-challenge-service/internal/challenge"
	"daily-challenge-service/internal/domain"
	"daily-challenge-service/internal/scoring"
)

// MaxHistoryDays bounds how wide a history request may be.
const MaxHistoryDays = 366

// SubmissionRepository stores submissions behind a unique (date, type, user) key.
// Create must return domain.ErrSubmissionExists when the key is taken, also
// under concurrent inserts.
type SubmissionRepository interface {
	Create(ctx context.Context, sub domain.Submission) error
	Find(ctx context.Context, key domain.DayKey, userID string) (domain.Submission, error)
	ListDay(ctx context.Context, key domain.DayKey) ([]domain.Submission, error)
	ListUser(ctx context.Context, userID, from, to string, t *domain.ChallengeType) ([]domain.Submission, error)
	Tallies(ctx context.Context, keys []domain.DayKey) (map[domain.DayKey]aggregate.Tally, error)
	DeleteDay(ctx context.Context, date string, t *domain.ChallengeType) (int64, error)
}

// ProblemSource yields the daily problems (generated or cached).
type ProblemSource interface {
	Problems(ctx context.Context, date string, t domain.ChallengeType) ([]domain.Problem, error)
}

// BoardRepository abstracts where live leaderboards are kept.
type BoardRepository interface {
	GetOrCreate(key domain.DayKey) *Board
	Get(key domain.DayKey) (*Board, bool)
	DeleteIfIdle(key domain.DayKey)
}

// Recorder receives submission outcomes for metrics.
type Recorder interface {
	SubmissionAccepted(t domain.ChallengeType, score float64)
	SubmissionRejected(t domain.ChallengeType, reason string)
}

// Generator is the ProblemSource that regenerates problems on every call.
type Generator struct{}

func (Generator) Problems(_ context.Context, date string, t domain.ChallengeType) ([]domain.Problem, error) {
	return challenge.Generate(date, t)
}

// Attempt is an authenticated submission.
type Attempt struct {
	Date        string
	Type        domain.ChallengeType
	UserID      string
	DisplayName string
	Answers     []domain.Answer
}

// DailyChallengeService contains the daily challenge use cases.
type DailyChallengeService struct {
	submissions SubmissionRepository
	problems    ProblemSource
	boards      BoardRepository
	recorder    Recorder
	clock       func() time.Time
	zone        *time.Location
	liveTop     int
	newID       func() string
}

// Option configures a DailyChallengeService.
type Option func(*DailyChallengeService)

// WithProblemSource replaces on-demand generation, e.g. with a cache.
func WithProblemSource(src ProblemSource) Option {
	return func(s *DailyChallengeService) { s.problems = src }
}

// WithBoards enables live leaderboards.
func WithBoards(boards BoardRepository) Option {
	return func(s *DailyChallengeService) { s.boards = boards }
}

// WithRecorder attaches a metrics recorder.
func WithRecorder(r Recorder) Option {
	return func(s *DailyChallengeService) { s.recorder = r }
}

// WithClock is used by tests for deterministic "today".
func WithClock(now func() time.Time) Option {
	return func(s *DailyChallengeService) { s.clock = now }
}

// WithZone sets the reset time zone used to derive today's date.
func WithZone(loc *time.Location) Option {
	return func(s *DailyChallengeService) { s.zone = loc }
}

// WithLiveTop sets how many rows are pushed to live watchers.
func WithLiveTop(n int) Option {
	return func(s *DailyChallengeService) { s.liveTop = aggregate.ClampLimit(n) }
}

func NewDailyChallengeService(submissions SubmissionRepository, opts ...Option) *DailyChallengeService {
	s := &DailyChallengeService{
		submissions: submissions,
		problems:    Generator{},
		clock:       time.Now,
		zone:        time.UTC,
		liveTop:     aggregate.DefaultLimit,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Today is the current challenge date in the reset zone.
func (s *DailyChallengeService) Today() string {
	return challenge.Today(s.clock(), s.zone)
}

// resolveDate defaults an empty date to today and validates the rest.
func (s *DailyChallengeService) resolveDate(raw string) (string, error) {
	if raw == "" {
		return s.Today(), nil
	}
	if _, err := challenge.ParseDate(raw); err != nil {
		return "", err
	}
	return raw, nil
}

// GetProblems returns the day's problems without exact answers.
func (s *DailyChallengeService) GetProblems(ctx context.Context, date string, t domain.ChallengeType) (domain.ProblemSet, error) {
	date, err := s.resolveDate(date)
	if err != nil {
		return domain.ProblemSet{}, err
	}
	t = t.Normalize()
	problems, err := s.problems.Problems(ctx, date, t)
	if err != nil {
		return domain.ProblemSet{}, err
	}
	return domain.ProblemSet{Date: date, Type: t, Problems: challenge.Views(problems)}, nil
}

// ScorePreview scores answers without the uniqueness check or any write.
func (s *DailyChallengeService) ScorePreview(ctx context.Context, date string, t domain.ChallengeType, answers []domain.Answer) (domain.ScoreResult, error) {
	ordered, err := scoring.ValidateAnswers(answers)
	if err != nil {
		return domain.ScoreResult{}, err
	}
	date, err = s.resolveDate(date)
	if err != nil {
		return domain.ScoreResult{}, err
	}
	return s.score(ctx, date, t.Normalize(), ordered)
}

// Score scores and stores the first attempt of a user for a (date, type).
// Later attempts get an *domain.AlreadySubmittedError with the stored score.
func (s *DailyChallengeService) Score(ctx context.Context, attempt Attempt) (domain.ScoreResult, error) {
	t := attempt.Type.Normalize()
	ordered, err := scoring.ValidateAnswers(attempt.Answers)
	if err != nil {
		s.rejected(t, "invalid")
		return domain.ScoreResult{}, err
	}
	date, err := s.resolveDate(attempt.Date)
	if err != nil {
		s.rejected(t, "invalid")
		return domain.ScoreResult{}, err
	}
	if attempt.UserID == "" {
		return domain.ScoreResult{}, domain.Invalid("userId", errors.New("required"))
	}
	key := domain.DayKey{Date: date, Type: t}

	existing, err := s.submissions.Find(ctx, key, attempt.UserID)
	switch {
	case err == nil:
		s.rejected(t, "already_submitted")
		return domain.ScoreResult{}, alreadySubmitted(existing)
	case !errors.Is(err, domain.ErrSubmissionNotFound):
		return domain.ScoreResult{}, err
	}

	result, err := s.score(ctx, date, t, ordered)
	if err != nil {
		return domain.ScoreResult{}, err
	}

	sub := domain.Submission{
		ID:          s.newID(),
		Date:        date,
		Type:        t,
		UserID:      attempt.UserID,
		DisplayName: attempt.DisplayName,
		TotalScore:  result.TotalScore,
		Breakdown:   result.Breakdown,
		CreatedAt:   s.clock().UTC(),
	}
	if err := s.submissions.Create(ctx, sub); err != nil {
		if !errors.Is(err, domain.ErrSubmissionExists) {
			return domain.ScoreResult{}, err
		}
		// lost a concurrent race: report the winner's score
		s.rejected(t, "already_submitted")
		winner, findErr := s.submissions.Find(ctx, key, attempt.UserID)
		if findErr != nil {
			return domain.ScoreResult{}, &domain.AlreadySubmittedError{Date: date, Type: t, UserID: attempt.UserID}
		}
		return domain.ScoreResult{}, alreadySubmitted(winner)
	}

	if s.recorder != nil {
		s.recorder.SubmissionAccepted(t, result.TotalScore)
	}
	s.publish(ctx, key)
	return result, nil
}

func (s *DailyChallengeService) score(ctx context.Context, date string, t domain.ChallengeType, ordered []domain.Answer) (domain.ScoreResult, error) {
	problems, err := s.problems.Problems(ctx, date, t)
	if err != nil {
		return domain.ScoreResult{}, err
	}
	if len(problems) != domain.ProblemsPerDay {
		return domain.ScoreResult{}, fmt.Errorf("problem source returned %d problems", len(problems))
	}
	return scoring.ScoreAttempt(t, problems, ordered), nil
}

// Leaderboard ranks the submissions of a (date, type).
func (s *DailyChallengeService) Leaderboard(ctx context.Context, date string, t domain.ChallengeType, limit int) (domain.Leaderboard, error) {
	date, err := s.resolveDate(date)
	if err != nil {
		return domain.Leaderboard{}, err
	}
	key := domain.DayKey{Date: date, Type: t.Normalize()}
	subs, err := s.submissions.ListDay(ctx, key)
	if err != nil {
		return domain.Leaderboard{}, err
	}
	return domain.Leaderboard{
		Date:      key.Date,
		Type:      key.Type,
		Rows:      aggregate.Rank(subs, aggregate.ClampLimit(limit)),
		UpdatedAt: s.clock().UTC(),
	}, nil
}

// DailyAverage is the mean total score and participant count of a (date, type).
func (s *DailyChallengeService) DailyAverage(ctx context.Context, date string, t domain.ChallengeType) (domain.DailyAverage, error) {
	date, err := s.resolveDate(date)
	if err != nil {
		return domain.DailyAverage{}, err
	}
	key := domain.DayKey{Date: date, Type: t.Normalize()}
	tallies, err := s.submissions.Tallies(ctx, []domain.DayKey{key})
	if err != nil {
		return domain.DailyAverage{}, err
	}
	return tallies[key].Average(key), nil
}

// History lists the user's scores in [from, to] next to each day's average.
// An empty to means today; an empty from means 30 days ending at to.
func (s *DailyChallengeService) History(ctx context.Context, userID, from, to string, t *domain.ChallengeType) ([]domain.HistoryEntry, error) {
	to, err := s.resolveDate(to)
	if err != nil {
		return nil, domain.Invalid("to", domain.ErrInvalidDate)
	}
	end := challenge.MustParseDate(to)
	if from == "" {
		from = end.AddDays(-29).String()
	}
	start, err := challenge.ParseDate(from)
	if err != nil {
		return nil, domain.Invalid("from", domain.ErrInvalidDate)
	}
	if start.Time().After(end.Time()) || end.Time().Sub(start.Time()) > MaxHistoryDays*24*time.Hour {
		return nil, domain.Invalid("from", domain.ErrInvalidDateRange)
	}
	if t != nil {
		n := t.Normalize()
		t = &n
	}

	subs, err := s.submissions.ListUser(ctx, userID, from, to, t)
	if err != nil {
		return nil, err
	}
	keys := aggregate.Keys(subs)
	tallies, err := s.submissions.Tallies(ctx, keys)
	if err != nil {
		return nil, err
	}
	averages := make(map[domain.DayKey]domain.DailyAverage, len(keys))
	for _, key := range keys {
		averages[key] = tallies[key].Average(key)
	}
	return aggregate.History(subs, averages), nil
}

// MySubmission reports the user's stored score for a (date, type), if any.
func (s *DailyChallengeService) MySubmission(ctx context.Context, date string, t domain.ChallengeType, userID string) (domain.MySubmission, error) {
	date, err := s.resolveDate(date)
	if err != nil {
		return domain.MySubmission{}, err
	}
	key := domain.DayKey{Date: date, Type: t.Normalize()}
	out := domain.MySubmission{Date: key.Date, Type: key.Type}
	sub, err := s.submissions.Find(ctx, key, userID)
	switch {
	case errors.Is(err, domain.ErrSubmissionNotFound):
		return out, nil
	case err != nil:
		return domain.MySubmission{}, err
	}
	score := sub.TotalScore
	out.Submitted = true
	out.Score = &score
	return out, nil
}

// ResetDay deletes every submission of a date (or just one type of it),
// reopening the attempt slot for those users.
func (s *DailyChallengeService) ResetDay(ctx context.Context, date string, t *domain.ChallengeType) (int64, error) {
	date, err := s.resolveDate(date)
	if err != nil {
		return 0, err
	}
	if t != nil {
		n := t.Normalize()
		t = &n
	}
	deleted, err := s.submissions.DeleteDay(ctx, date, t)
	if err != nil {
		return 0, err
	}
	for _, typ := range domain.ChallengeTypes {
		if t == nil || *t == typ {
			s.publish(ctx, domain.DayKey{Date: date, Type: typ})
		}
	}
	return deleted, nil
}

// Subscribe returns a channel of live leaderboard snapshots for a (date, type).
// The caller must invoke the returned cancel function to avoid leaks.
func (s *DailyChallengeService) Subscribe(ctx context.Context, date string, t domain.ChallengeType) (<-chan domain.Leaderboard, func(), error) {
	if s.boards == nil {
		return nil, nil, domain.ErrBoardNotFound
	}
	date, err := s.resolveDate(date)
	if err != nil {
		return nil, nil, err
	}
	key := domain.DayKey{Date: date, Type: t.Normalize()}

	current, err := s.Leaderboard(ctx, key.Date, key.Type, s.liveTop)
	if err != nil {
		return nil, nil, err
	}
	board := s.boards.GetOrCreate(key)
	board.Publish(current.Rows)
	ch, cancel := board.Subscribe()
	return ch, func() {
		cancel()
		s.boards.DeleteIfIdle(key)
	}, nil
}

// publish refreshes a watched board; unwatched keys cost nothing.
func (s *DailyChallengeService) publish(ctx context.Context, key domain.DayKey) {
	if s.boards == nil {
		return
	}
	board, ok := s.boards.Get(key)
	if !ok {
		return
	}
	lb, err := s.Leaderboard(ctx, key.Date, key.Type, s.liveTop)
	if err != nil {
		return
	}
	board.Publish(lb.Rows)
}

func (s *DailyChallengeService) rejected(t domain.ChallengeType, reason string) {
	if s.recorder != nil {
		s.recorder.SubmissionRejected(t, reason)
	}
}

func alreadySubmitted(sub domain.Submission) error {
	return &domain.AlreadySubmittedError{
		Date:          sub.Date,
		Type:          sub.Type,
		UserID:        sub.UserID,
		ExistingScore: sub.TotalScore,
	}
}
