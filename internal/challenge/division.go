package challenge

import (
	"fmt"

	"daily-challenge-service/internal/domain"
)

// buildDivision draws divisor, integer quotient and quotient cents, three
// values per problem. The dividend is rounded so the division rarely comes out even.
func buildDivision(seq *Sequence, index int) domain.Problem {
	divisor := seq.IntRange(2, 99)
	whole := seq.IntRange(10, 89)
	cents := seq.IntRange(0, 99)

	// round(divisor * (whole + cents/100)) in integer arithmetic
	scaled := divisor * (whole*100 + cents)
	dividend := (scaled + 50) / 100

	return domain.Problem{
		Index:       index,
		A:           dividend,
		B:           divisor,
		Expression:  fmt.Sprintf("%d ÷ %d", dividend, divisor),
		ExactAnswer: float64(dividend) / float64(divisor),
	}
}
