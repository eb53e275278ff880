package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidAnswerCount is returned when a submission does not carry exactly ProblemsPerDay answers.
	ErrInvalidAnswerCount = fmt.Errorf("must submit exactly %d answers", ProblemsPerDay)
	// ErrInvalidProblemIndex is returned for answers outside 0..ProblemsPerDay-1.
	ErrInvalidProblemIndex = errors.New("problem index out of range")
	// ErrDuplicateProblemIndex is returned when two answers target the same problem.
	ErrDuplicateProblemIndex = errors.New("duplicate problem index")
	// ErrInvalidDate indicates a date that is not a real YYYY-MM-DD calendar day.
	ErrInvalidDate = errors.New("date must be a calendar day in YYYY-MM-DD form")
	// ErrInvalidDateRange indicates a history range with from after to, or one that is too wide.
	ErrInvalidDateRange = errors.New("invalid date range")
	// ErrSubmissionExists is the storage-level uniqueness violation for (date, type, user).
	ErrSubmissionExists = errors.New("submission already exists")
	// ErrSubmissionNotFound is returned by point lookups with no stored row.
	ErrSubmissionNotFound = errors.New("submission not found")
	// ErrBoardNotFound is returned when no live leaderboard exists for a key.
	ErrBoardNotFound = errors.New("live leaderboard not found")
)

// ValidationError rejects a request before any generation or scoring work.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Err.Error()
	}
	return e.Field + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Invalid wraps err as a ValidationError on field.
func Invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

// AlreadySubmittedError is the expected outcome of a second attempt. It carries
// the stored score so callers can display it.
type AlreadySubmittedError struct {
	Date          string
	Type          ChallengeType
	UserID        string
	ExistingScore float64
}

func (e *AlreadySubmittedError) Error() string {
	return fmt.Sprintf("already submitted %s challenge for %s (score %.2f)", e.Type, e.Date, e.ExistingScore)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// AsAlreadySubmitted extracts an AlreadySubmittedError from err.
func AsAlreadySubmitted(err error) (*AlreadySubmittedError, bool) {
	var a *AlreadySubmittedError
	if errors.As(err, &a) {
		return a, true
	}
	return nil, false
}
