// Package scoring turns an answer, the exact answer and the elapsed time into
// a per-problem score in [0, 100].
package scoring

import (
	"math"

	"daily-challenge-service/internal/domain"
)

// MaxProblemScore is the best possible score of a single problem.
const MaxProblemScore = 100

// AccuracyQuality is 1 - clamp(|user-exact|/|exact|, 0, 1). An exact answer of
// zero only accepts zero.
func AccuracyQuality(user, exact float64) float64 {
	var relErr float64
	if exact == 0 {
		if user != 0 {
			relErr = 1
		}
	} else {
		relErr = math.Abs(user-exact) / math.Abs(exact)
	}
	return 1 - clamp(relErr, 0, 1)
}

// SpeedQuality is 1 within the grace window, decays linearly to 0.5 at T1 and
// to 0 at T2. Negative elapsed times count as zero.
func SpeedQuality(elapsedMillis int64, p Params) float64 {
	if elapsedMillis < 0 {
		elapsedMillis = 0
	}
	sec := float64(elapsedMillis) / 1000
	switch {
	case sec <= p.GraceSeconds:
		return 1
	case sec <= p.T1:
		return 1 - 0.5*(sec-p.GraceSeconds)/(p.T1-p.GraceSeconds)
	case sec <= p.T2:
		return 0.5 - 0.5*(sec-p.T1)/(p.T2-p.T1)
	default:
		return 0
	}
}

// ScoreProblem combines both qualities for type t and scales to 0..100 with
// two decimals. Unparseable answers score zero.
func ScoreProblem(answer domain.UserAnswer, exact float64, elapsedMillis int64, t domain.ChallengeType) float64 {
	if !answer.Valid {
		return 0
	}
	p := ParamsFor(t)
	acc := AccuracyQuality(answer.Value, exact)
	speed := SpeedQuality(elapsedMillis, p)
	score := math.Pow(acc, p.AccuracyExponent) * math.Pow(speed, p.SpeedExponent)
	return Round2(score * MaxProblemScore)
}

// Round2 rounds to two decimals.
func Round2(v float64) float64 {
	r := math.Round(v*100) / 100
	if r == 0 {
		return 0
	}
	return r
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
