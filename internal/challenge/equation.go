package challenge

import (
	"math"
	"strconv"
	"strings"

	"daily-challenge-service/internal/domain"
)

const (
	termPlain = iota
	termQuotient
	termProduct
	termProductOffset
	termKinds
)

// buildEquation draws a term count, then per term a kind and four operand
// draws (consumed whatever the kind), then one operator draw per join.
func buildEquation(seq *Sequence, index int) domain.Problem {
	count := int(seq.IntRange(3, 5))

	terms := make([]string, 0, count)
	for i := 0; i < count; i++ {
		terms = append(terms, drawTerm(seq))
	}
	ops := make([]string, 0, count-1)
	for i := 1; i < count; i++ {
		if seq.Next() < 0.5 {
			ops = append(ops, "+")
		} else {
			ops = append(ops, "-")
		}
	}

	var b strings.Builder
	b.WriteString(terms[0])
	for i, op := range ops {
		b.WriteString(" ")
		b.WriteString(op)
		b.WriteString(" ")
		b.WriteString(terms[i+1])
	}
	expr := b.String()

	return domain.Problem{
		Index:       index,
		Expression:  expr,
		ExactAnswer: exactValue(expr),
	}
}

func drawTerm(seq *Sequence) string {
	kind := int(seq.IntRange(0, termKinds-1))
	p := seq.Next()
	q := seq.Next()
	c := seq.Next()
	sign := seq.Next()

	scale := func(v float64, lo, hi int64) string {
		return strconv.FormatInt(lo+int64(v*float64(hi-lo+1)), 10)
	}

	switch kind {
	case termPlain:
		return scale(p, 2, 99)
	case termQuotient:
		return scale(p, 10, 99) + "/" + scale(q, 2, 12)
	case termProduct:
		return "(" + scale(p, 2, 19) + "*" + scale(q, 2, 19) + ")"
	default:
		op := "+"
		if sign >= 0.5 {
			op = "-"
		}
		return "(" + scale(p, 2, 19) + "*" + scale(q, 2, 19) + op + scale(c, 1, 50) + ")"
	}
}

// exactValue evaluates to four decimals. A malformed or non-finite expression
// yields zero.
func exactValue(expr string) float64 {
	v, err := Evaluate(expr)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	r := math.Round(v*1e4) / 1e4
	if r == 0 {
		return 0
	}
	return r
}
