package challenge

import "daily-challenge-service/internal/domain"

const (
	lcgMultiplier = 1103515245
	lcgIncrement  = 12345
	lcgModulus    = 1 << 31

	// typeSaltScale keeps every date number (8 digits) clear of the type salt.
	typeSaltScale = 100_000_000
)

// Sequence is a restartable linear congruential stream of values in [0, 1).
// A Sequence is owned by a single generation call and never shared.
type Sequence struct {
	state uint64
}

// NewSequence starts a stream at seed.
func NewSequence(seed int64) *Sequence {
	return &Sequence{state: uint64(seed) % lcgModulus}
}

// Next advances the recurrence and returns state/M.
func (s *Sequence) Next() float64 {
	s.state = (s.state*lcgMultiplier + lcgIncrement) % lcgModulus
	return float64(s.state) / lcgModulus
}

// IntRange draws an integer in [lo, hi].
func (s *Sequence) IntRange(lo, hi int64) int64 {
	return lo + int64(s.Next()*float64(hi-lo+1))
}

// Seed derives the stream seed for a (date, type).
func Seed(d Date, t domain.ChallengeType) int64 {
	return d.Number() + typeSalt(t.Normalize())*typeSaltScale
}

// typeSalt is the sum of the label's character codes.
func typeSalt(t domain.ChallengeType) int64 {
	var sum int64
	for _, r := range string(t) {
		sum += int64(r)
	}
	return sum
}
