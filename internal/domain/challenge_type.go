package domain

import "strings"

// ChallengeType tags the generator and scoring parameters of a daily challenge.
type ChallengeType string

const (
	Division       ChallengeType = "division"
	Equation       ChallengeType = "equation"
	Multiplication ChallengeType = "multiplication"
)

// ChallengeTypes lists every known type in display order.
var ChallengeTypes = []ChallengeType{Division, Equation, Multiplication}

// ParseChallengeType coerces unknown or empty labels to Division.
func ParseChallengeType(raw string) ChallengeType {
	switch t := ChallengeType(strings.ToLower(strings.TrimSpace(raw))); t {
	case Division, Equation, Multiplication:
		return t
	default:
		return Division
	}
}

// Known reports whether raw names one of the challenge types exactly.
func Known(raw string) bool {
	switch ChallengeType(raw) {
	case Division, Equation, Multiplication:
		return true
	}
	return false
}

// Normalize maps legacy untyped rows to Division.
func (t ChallengeType) Normalize() ChallengeType {
	return ParseChallengeType(string(t))
}

func (t ChallengeType) String() string {
	return string(t)
}
