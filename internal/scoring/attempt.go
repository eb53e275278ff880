package scoring

import (
	"fmt"

	"daily-challenge-service/internal/domain"
)

// ValidateAnswers checks that there is exactly one answer per problem index
// and returns them ordered by index.
func ValidateAnswers(answers []domain.Answer) ([]domain.Answer, error) {
	if len(answers) != domain.ProblemsPerDay {
		return nil, domain.Invalid("answers", domain.ErrInvalidAnswerCount)
	}
	ordered := make([]domain.Answer, domain.ProblemsPerDay)
	seen := make([]bool, domain.ProblemsPerDay)
	for _, a := range answers {
		if a.ProblemIndex < 0 || a.ProblemIndex >= domain.ProblemsPerDay {
			return nil, domain.Invalid("answers", fmt.Errorf("%w: %d", domain.ErrInvalidProblemIndex, a.ProblemIndex))
		}
		if seen[a.ProblemIndex] {
			return nil, domain.Invalid("answers", fmt.Errorf("%w: %d", domain.ErrDuplicateProblemIndex, a.ProblemIndex))
		}
		seen[a.ProblemIndex] = true
		if a.ElapsedMillis < 0 {
			a.ElapsedMillis = 0
		}
		ordered[a.ProblemIndex] = a
	}
	return ordered, nil
}

// ScoreAttempt scores ordered answers against the regenerated problems.
func ScoreAttempt(t domain.ChallengeType, problems []domain.Problem, ordered []domain.Answer) domain.ScoreResult {
	breakdown := make([]domain.ProblemScore, 0, len(problems))
	var total float64
	for i, p := range problems {
		a := ordered[i]
		s := ScoreProblem(a.UserAnswer, p.ExactAnswer, a.ElapsedMillis, t)
		total += s
		breakdown = append(breakdown, domain.ProblemScore{
			ProblemIndex:  p.Index,
			UserAnswer:    a.UserAnswer.Ptr(),
			CorrectAnswer: p.ExactAnswer,
			ElapsedMillis: a.ElapsedMillis,
			ProblemScore:  s,
		})
	}
	return domain.ScoreResult{TotalScore: Round2(total), Breakdown: breakdown}
}
