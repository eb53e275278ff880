package challenge

import (
	"fmt"

	"daily-challenge-service/internal/domain"
)

// buildMultiplication draws a 2-3 digit and a 3-4 digit operand: a digit count
// and a value for each, four values per problem.
func buildMultiplication(seq *Sequence, index int) domain.Problem {
	a := drawDigits(seq, 2, 3)
	b := drawDigits(seq, 3, 4)
	return domain.Problem{
		Index:       index,
		A:           a,
		B:           b,
		Expression:  fmt.Sprintf("%d × %d", a, b),
		ExactAnswer: float64(a * b),
	}
}

func drawDigits(seq *Sequence, minDigits, maxDigits int64) int64 {
	digits := seq.IntRange(minDigits, maxDigits)
	lo := pow10(digits - 1)
	return seq.IntRange(lo, pow10(digits)-1)
}

func pow10(n int64) int64 {
	v := int64(1)
	for i := int64(0); i < n; i++ {
		v *= 10
	}
	return v
}
