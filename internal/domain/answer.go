package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// UserAnswer is a numeric answer that may be unparseable. Unparseable answers
// are scored as zero accuracy and are never an error.
type UserAnswer struct {
	Value float64
	Valid bool
}

// NumericAnswer wraps v, rejecting NaN and infinities.
func NumericAnswer(v float64) UserAnswer {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return UserAnswer{}
	}
	return UserAnswer{Value: v, Valid: true}
}

// ParseUserAnswer parses free text as typed by the user.
func ParseUserAnswer(raw string) UserAnswer {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return UserAnswer{}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return UserAnswer{}
	}
	return NumericAnswer(v)
}

// Ptr returns nil for unparseable answers.
func (a UserAnswer) Ptr() *float64 {
	if !a.Valid {
		return nil
	}
	v := a.Value
	return &v
}

// UnmarshalJSON accepts numbers, numeric strings and null. Anything else
// decodes to an unparseable answer.
func (a *UserAnswer) UnmarshalJSON(data []byte) error {
	*a = UserAnswer{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		*a = ParseUserAnswer(s)
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return nil
	}
	*a = NumericAnswer(v)
	return nil
}

func (a UserAnswer) MarshalJSON() ([]byte, error) {
	if !a.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(a.Value)
}
