package app_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"daily-challenge-service/internal/app"
	"daily-challenge-service/internal/challenge"
	"daily-challenge-service/internal/domain"
	"daily-challenge-service/internal/infra/memory"
)

const day = "2025-01-15"

type recorder struct {
	mu       sync.Mutex
	accepted int
	rejected map[string]int
}

func (r *recorder) SubmissionAccepted(domain.ChallengeType, float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accepted++
}

func (r *recorder) SubmissionRejected(_ domain.ChallengeType, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rejected == nil {
		r.rejected = map[string]int{}
	}
	r.rejected[reason]++
}

func newService(t *testing.T, opts ...app.Option) (*app.DailyChallengeService, *memory.SubmissionStore) {
	t.Helper()
	store := memory.NewSubmissionStore()
	fixed := time.Date(2025, 1, 15, 18, 0, 0, 0, time.UTC)
	base := []app.Option{app.WithClock(func() time.Time { return fixed })}
	return app.NewDailyChallengeService(store, append(base, opts...)...), store
}

// answers returns ten answers where the first `correct` are exact and the
// rest are left blank.
func answers(t *testing.T, typ domain.ChallengeType, correct int) []domain.Answer {
	t.Helper()
	problems, err := challenge.Generate(day, typ)
	require.NoError(t, err)
	out := make([]domain.Answer, 0, len(problems))
	for i, p := range problems {
		a := domain.Answer{ProblemIndex: p.Index, ElapsedMillis: 2000}
		if i < correct {
			a.UserAnswer = domain.NumericAnswer(p.ExactAnswer)
		}
		out = append(out, a)
	}
	return out
}

func submit(t *testing.T, svc *app.DailyChallengeService, user, name string, typ domain.ChallengeType, correct int) domain.ScoreResult {
	t.Helper()
	res, err := svc.Score(context.Background(), app.Attempt{
		Date: day, Type: typ, UserID: user, DisplayName: name, Answers: answers(t, typ, correct),
	})
	require.NoError(t, err)
	return res
}

func TestGetProblemsIsStableAndHidesAnswers(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	for _, typ := range domain.ChallengeTypes {
		first, err := svc.GetProblems(ctx, day, typ)
		require.NoError(t, err)
		second, err := svc.GetProblems(ctx, day, typ)
		require.NoError(t, err)
		require.Equal(t, first, second)
		require.Len(t, first.Problems, domain.ProblemsPerDay)
		require.Equal(t, typ, first.Type)
	}

	unknown, err := svc.GetProblems(ctx, day, "trigonometry")
	require.NoError(t, err)
	division, err := svc.GetProblems(ctx, day, domain.Division)
	require.NoError(t, err)
	require.Equal(t, division, unknown)

	_, err = svc.GetProblems(ctx, "2025-1-15", domain.Division)
	require.True(t, domain.IsValidation(err))
}

func TestTodayUsesResetZone(t *testing.T) {
	la, err := challenge.LoadZone("America/Los_Angeles")
	require.NoError(t, err)
	late := time.Date(2025, 1, 16, 5, 0, 0, 0, time.UTC)
	svc := app.NewDailyChallengeService(memory.NewSubmissionStore(),
		app.WithZone(la),
		app.WithClock(func() time.Time { return late }),
	)
	require.Equal(t, "2025-01-15", svc.Today())

	set, err := svc.GetProblems(context.Background(), "", domain.Equation)
	require.NoError(t, err)
	require.Equal(t, "2025-01-15", set.Date)
}

func TestScoreOncePerDayAndType(t *testing.T) {
	rec := &recorder{}
	svc, store := newService(t, app.WithRecorder(rec))
	ctx := context.Background()

	first := submit(t, svc, "u1", "Alice", domain.Division, 10)
	require.Equal(t, 1000.0, first.TotalScore)
	require.Len(t, first.Breakdown, domain.ProblemsPerDay)

	_, err := svc.Score(ctx, app.Attempt{Date: day, Type: domain.Division, UserID: "u1", Answers: answers(t, domain.Division, 0)})
	already, ok := domain.AsAlreadySubmitted(err)
	require.True(t, ok, "got %v", err)
	require.Equal(t, 1000.0, already.ExistingScore)

	// other types and other users are separate slots
	submit(t, svc, "u1", "Alice", domain.Equation, 3)
	submit(t, svc, "u2", "Bob", domain.Division, 5)

	subs, err := store.ListDay(ctx, domain.DayKey{Date: day, Type: domain.Division})
	require.NoError(t, err)
	require.Len(t, subs, 2)
	require.Equal(t, 3, rec.accepted)
	require.Equal(t, 1, rec.rejected["already_submitted"])
}

func TestRejectedAttemptsDoNotConsumeSlot(t *testing.T) {
	rec := &recorder{}
	svc, store := newService(t, app.WithRecorder(rec))
	ctx := context.Background()

	short := answers(t, domain.Multiplication, 10)[:9]
	_, err := svc.Score(ctx, app.Attempt{Date: day, Type: domain.Multiplication, UserID: "u1", Answers: short})
	require.True(t, domain.IsValidation(err))
	require.ErrorIs(t, err, domain.ErrInvalidAnswerCount)

	dup := answers(t, domain.Multiplication, 10)
	dup[9].ProblemIndex = 0
	_, err = svc.Score(ctx, app.Attempt{Date: day, Type: domain.Multiplication, UserID: "u1", Answers: dup})
	require.ErrorIs(t, err, domain.ErrDuplicateProblemIndex)

	outOfRange := answers(t, domain.Multiplication, 10)
	outOfRange[4].ProblemIndex = 10
	_, err = svc.Score(ctx, app.Attempt{Date: day, Type: domain.Multiplication, UserID: "u1", Answers: outOfRange})
	require.ErrorIs(t, err, domain.ErrInvalidProblemIndex)

	_, err = svc.Score(ctx, app.Attempt{Date: "2025-02-29", Type: domain.Multiplication, UserID: "u1", Answers: answers(t, domain.Multiplication, 1)})
	require.ErrorIs(t, err, domain.ErrInvalidDate)

	subs, err := store.ListDay(ctx, domain.DayKey{Date: day, Type: domain.Multiplication})
	require.NoError(t, err)
	require.Empty(t, subs)
	require.Equal(t, 4, rec.rejected["invalid"])

	res := submit(t, svc, "u1", "Alice", domain.Multiplication, 10)
	require.Equal(t, 1000.0, res.TotalScore)
}

func TestConcurrentSubmitsStoreExactlyOne(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	const attempts = 24
	var (
		mu      sync.Mutex
		winners []float64
		losers  []float64
	)
	var g errgroup.Group
	for i := 0; i < attempts; i++ {
		correct := i % 11
		g.Go(func() error {
			res, err := svc.Score(ctx, app.Attempt{
				Date: day, Type: domain.Equation, UserID: "racer", Answers: answers(t, domain.Equation, correct),
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				winners = append(winners, res.TotalScore)
				return nil
			}
			already, ok := domain.AsAlreadySubmitted(err)
			if !ok {
				return err
			}
			losers = append(losers, already.ExistingScore)
			return nil
		})
	}
	require.NoError(t, g.Wait())
	require.Len(t, winners, 1)
	require.Len(t, losers, attempts-1)

	subs, err := store.ListDay(ctx, domain.DayKey{Date: day, Type: domain.Equation})
	require.NoError(t, err)
	require.Len(t, subs, 1)
	require.Equal(t, winners[0], subs[0].TotalScore)
	for _, score := range losers {
		require.Equal(t, winners[0], score)
	}
}

func TestScorePreviewDoesNotPersist(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		res, err := svc.ScorePreview(ctx, day, domain.Division, answers(t, domain.Division, 4))
		require.NoError(t, err)
		require.Equal(t, 400.0, res.TotalScore)
	}
	subs, err := store.ListDay(ctx, domain.DayKey{Date: day, Type: domain.Division})
	require.NoError(t, err)
	require.Empty(t, subs)

	// preview does not block the real attempt
	res := submit(t, svc, "u1", "Alice", domain.Division, 4)
	require.Equal(t, 400.0, res.TotalScore)
}

func TestScoreRevealsCorrectAnswers(t *testing.T) {
	svc, _ := newService(t)
	problems, err := challenge.Generate(day, domain.Multiplication)
	require.NoError(t, err)

	res := submit(t, svc, "u1", "Alice", domain.Multiplication, 0)
	require.Equal(t, 0.0, res.TotalScore)
	for i, row := range res.Breakdown {
		require.Equal(t, i, row.ProblemIndex)
		require.Nil(t, row.UserAnswer)
		require.Equal(t, problems[i].ExactAnswer, row.CorrectAnswer)
		require.Equal(t, 0.0, row.ProblemScore)
	}
}

func TestLeaderboardAndAverage(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	submit(t, svc, "u1", "Alice", domain.Division, 3)
	submit(t, svc, "u2", "", domain.Division, 9)
	submit(t, svc, "u3", "Carol", domain.Division, 3)
	submit(t, svc, "u4", "Dan", domain.Equation, 10)

	lb, err := svc.Leaderboard(ctx, day, domain.Division, 0)
	require.NoError(t, err)
	require.Len(t, lb.Rows, 3)
	require.Equal(t, "u2", lb.Rows[0].UserID)
	require.Equal(t, "Anonymous", lb.Rows[0].DisplayName)
	// ties keep arrival order
	require.Equal(t, "u1", lb.Rows[1].UserID)
	require.Equal(t, "u3", lb.Rows[2].UserID)
	for i, row := range lb.Rows {
		require.Equal(t, i+1, row.Rank)
	}

	top, err := svc.Leaderboard(ctx, day, domain.Division, 1)
	require.NoError(t, err)
	require.Len(t, top.Rows, 1)

	avg, err := svc.DailyAverage(ctx, day, domain.Division)
	require.NoError(t, err)
	require.Equal(t, 3, avg.ParticipantCount)
	require.InDelta(t, 500.0, avg.MeanScore, 1e-9)

	empty, err := svc.DailyAverage(ctx, "2025-01-14", domain.Division)
	require.NoError(t, err)
	require.Equal(t, 0, empty.ParticipantCount)
	require.Equal(t, 0.0, empty.MeanScore)
}

func TestMySubmission(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	mine, err := svc.MySubmission(ctx, day, domain.Division, "u1")
	require.NoError(t, err)
	require.False(t, mine.Submitted)
	require.Nil(t, mine.Score)

	submit(t, svc, "u1", "Alice", domain.Division, 2)
	mine, err = svc.MySubmission(ctx, "", domain.Division, "u1")
	require.NoError(t, err)
	require.True(t, mine.Submitted)
	require.Equal(t, day, mine.Date)
	require.NotNil(t, mine.Score)
	require.Equal(t, 200.0, *mine.Score)
}

func TestHistory(t *testing.T) {
	store := memory.NewSubmissionStore()
	ctx := context.Background()
	clock := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)
	svc := app.NewDailyChallengeService(store, app.WithClock(func() time.Time { return clock }))

	for _, d := range []string{"2025-01-05", "2025-01-10"} {
		problems, err := challenge.Generate(d, domain.Division)
		require.NoError(t, err)
		ans := make([]domain.Answer, 0, len(problems))
		for _, p := range problems {
			ans = append(ans, domain.Answer{ProblemIndex: p.Index, UserAnswer: domain.NumericAnswer(p.ExactAnswer)})
		}
		_, err = svc.Score(ctx, app.Attempt{Date: d, Type: domain.Division, UserID: "u1", Answers: ans})
		require.NoError(t, err)
		blank := make([]domain.Answer, 0, len(problems))
		for _, p := range problems {
			blank = append(blank, domain.Answer{ProblemIndex: p.Index})
		}
		_, err = svc.Score(ctx, app.Attempt{Date: d, Type: domain.Division, UserID: "u2", Answers: blank})
		require.NoError(t, err)
	}

	entries, err := svc.History(ctx, "u1", "", "", nil)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "2025-01-05", entries[0].Date)
	require.Equal(t, "2025-01-10", entries[1].Date)
	for _, e := range entries {
		require.Equal(t, 1000.0, e.Score)
		require.Equal(t, 2, e.DayAverage.ParticipantCount)
		require.Equal(t, 500.0, e.DayAverage.MeanScore)
	}

	narrow, err := svc.History(ctx, "u1", "2025-01-06", "2025-01-10", nil)
	require.NoError(t, err)
	require.Len(t, narrow, 1)

	eq := domain.Equation
	none, err := svc.History(ctx, "u1", "", "", &eq)
	require.NoError(t, err)
	require.Empty(t, none)

	_, err = svc.History(ctx, "u1", "2025-01-11", "2025-01-10", nil)
	require.ErrorIs(t, err, domain.ErrInvalidDateRange)
	_, err = svc.History(ctx, "u1", "2023-01-01", "2025-01-10", nil)
	require.ErrorIs(t, err, domain.ErrInvalidDateRange)
	_, err = svc.History(ctx, "u1", "yesterday", "", nil)
	require.True(t, domain.IsValidation(err))
}

func TestResetDayReopensSlots(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	submit(t, svc, "u1", "Alice", domain.Division, 1)
	submit(t, svc, "u1", "Alice", domain.Equation, 1)
	submit(t, svc, "u2", "Bob", domain.Division, 1)

	div := domain.Division
	deleted, err := svc.ResetDay(ctx, day, &div)
	require.NoError(t, err)
	require.Equal(t, int64(2), deleted)

	eqSubs, err := store.ListDay(ctx, domain.DayKey{Date: day, Type: domain.Equation})
	require.NoError(t, err)
	require.Len(t, eqSubs, 1)

	res := submit(t, svc, "u1", "Alice", domain.Division, 10)
	require.Equal(t, 1000.0, res.TotalScore)

	deleted, err = svc.ResetDay(ctx, day, nil)
	require.NoError(t, err)
	require.Equal(t, int64(2), deleted)
}

func TestSubscribeReceivesSubmissions(t *testing.T) {
	svc, _ := newService(t, app.WithBoards(memory.NewBoardStore()), app.WithLiveTop(2))
	ctx := context.Background()

	updates, cancel, err := svc.Subscribe(ctx, day, domain.Division)
	require.NoError(t, err)
	defer cancel()

	initial := <-updates
	require.Empty(t, initial.Rows)

	submit(t, svc, "u1", "Alice", domain.Division, 2)
	submit(t, svc, "u2", "Bob", domain.Division, 5)
	submit(t, svc, "u3", "Carol", domain.Division, 7)

	var last domain.Leaderboard
	require.Eventually(t, func() bool {
		for {
			select {
			case lb := <-updates:
				last = lb
			default:
				return len(last.Rows) == 2 && last.Rows[0].UserID == "u3"
			}
		}
	}, time.Second, 10*time.Millisecond)
	require.Equal(t, "u2", last.Rows[1].UserID)

	div := domain.Division
	_, err = svc.ResetDay(ctx, day, &div)
	require.NoError(t, err)
	select {
	case lb := <-updates:
		require.Empty(t, lb.Rows)
	case <-time.After(time.Second):
		t.Fatal("expected reset snapshot")
	}
}

func TestSubscribeWithoutBoards(t *testing.T) {
	svc, _ := newService(t)
	_, _, err := svc.Subscribe(context.Background(), day, domain.Division)
	require.True(t, errors.Is(err, domain.ErrBoardNotFound))
}
