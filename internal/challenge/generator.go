// Package challenge builds the daily problem sets. Generation is a pure
// function of (date, type): nothing is stored and no clock is read.
package challenge

import "daily-challenge-service/internal/domain"

type builder func(seq *Sequence, index int) domain.Problem

var builders = map[domain.ChallengeType]builder{
	domain.Division:       buildDivision,
	domain.Equation:       buildEquation,
	domain.Multiplication: buildMultiplication,
}

// Generate returns the ten problems for a canonical date string and type,
// exact answers included. Unknown types fall back to division.
func Generate(date string, t domain.ChallengeType) ([]domain.Problem, error) {
	d, err := ParseDate(date)
	if err != nil {
		return nil, err
	}
	return GenerateFor(d, t), nil
}

// GenerateFor is Generate for an already validated date.
func GenerateFor(d Date, t domain.ChallengeType) []domain.Problem {
	t = t.Normalize()
	build := builders[t]
	seq := NewSequence(Seed(d, t))

	problems := make([]domain.Problem, 0, domain.ProblemsPerDay)
	for i := 0; i < domain.ProblemsPerDay; i++ {
		problems = append(problems, build(seq, i))
	}
	return problems
}

// Views strips exact answers for clients.
func Views(problems []domain.Problem) []domain.ProblemView {
	views := make([]domain.ProblemView, 0, len(problems))
	for _, p := range problems {
		views = append(views, p.View())
	}
	return views
}
