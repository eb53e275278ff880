package scoring

import "daily-challenge-service/internal/domain"

// Params tunes the scoring curve of one challenge type.
type Params struct {
	// GraceSeconds is the window with no speed penalty.
	GraceSeconds float64
	// T1 is where speed quality has decayed to 0.5.
	T1 float64
	// T2 is where speed quality reaches 0.
	T2 float64
	// AccuracyExponent and SpeedExponent weight the two qualities in
	// accuracy^a * speed^b.
	AccuracyExponent float64
	SpeedExponent    float64
}

var params = map[domain.ChallengeType]Params{
	domain.Division:       {GraceSeconds: 5, T1: 15, T2: 25, AccuracyExponent: 2, SpeedExponent: 1},
	domain.Equation:       {GraceSeconds: 10, T1: 25, T2: 45, AccuracyExponent: 3, SpeedExponent: 1},
	domain.Multiplication: {GraceSeconds: 8, T1: 20, T2: 35, AccuracyExponent: 3, SpeedExponent: 1},
}

// ParamsFor returns the parameters of t; unknown types use division's.
func ParamsFor(t domain.ChallengeType) Params {
	return params[t.Normalize()]
}
