package domain

import (
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUserAnswerJSON(t *testing.T) {
	cases := map[string]UserAnswer{
		`12.5`:       {Value: 12.5, Valid: true},
		`"  -3 "`:    {Value: -3, Valid: true},
		`null`:       {},
		`"abc"`:      {},
		`""`:         {},
		`true`:       {},
		`{"v": 1}`:   {},
		`[1, 2]`:     {},
		`"1e400"`:    {},
		`"Infinity"`: {},
	}
	for raw, want := range cases {
		var a Answer
		err := json.Unmarshal([]byte(`{"problemIndex":3,"userAnswer":`+raw+`,"elapsedMillis":1200}`), &a)
		require.NoError(t, err, raw)
		require.Equal(t, want, a.UserAnswer, raw)
		require.Equal(t, 3, a.ProblemIndex)
		require.Equal(t, int64(1200), a.ElapsedMillis)
	}
}

func TestUserAnswerMarshal(t *testing.T) {
	out, err := json.Marshal(ProblemScore{ProblemIndex: 1, UserAnswer: UserAnswer{}.Ptr(), CorrectAnswer: 2})
	require.NoError(t, err)
	require.JSONEq(t, `{"problemIndex":1,"userAnswer":null,"correctAnswer":2,"elapsedMillis":0,"problemScore":0}`, string(out))

	out, err = json.Marshal(NumericAnswer(4.25))
	require.NoError(t, err)
	require.Equal(t, "4.25", string(out))

	require.False(t, NumericAnswer(math.NaN()).Valid)
	require.False(t, NumericAnswer(math.Inf(-1)).Valid)
}

func TestParseChallengeType(t *testing.T) {
	require.Equal(t, Equation, ParseChallengeType(" Equation "))
	require.Equal(t, Multiplication, ParseChallengeType("multiplication"))
	require.Equal(t, Division, ParseChallengeType(""))
	require.Equal(t, Division, ParseChallengeType("algebra"))
	require.Equal(t, Division, ChallengeType("").Normalize())
	require.True(t, Known("equation"))
	require.False(t, Known("Equation"))
}

func TestErrorHelpers(t *testing.T) {
	err := Invalid("answers", ErrInvalidAnswerCount)
	require.True(t, IsValidation(err))
	require.True(t, errors.Is(err, ErrInvalidAnswerCount))
	require.Equal(t, "answers: must submit exactly 10 answers", err.Error())

	var already error = &AlreadySubmittedError{Date: "2025-01-15", Type: Division, UserID: "u1", ExistingScore: 812.5}
	got, ok := AsAlreadySubmitted(already)
	require.True(t, ok)
	require.Equal(t, 812.5, got.ExistingScore)
	require.False(t, IsValidation(already))

	_, ok = AsAlreadySubmitted(ErrSubmissionExists)
	require.False(t, ok)
}
