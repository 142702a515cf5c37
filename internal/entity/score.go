package entity

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// scoreUnavailable is the wire marker for a missing performance score.
const scoreUnavailable = "N/A"

// Score is a 0-100 performance score or the unavailable marker.
type Score struct {
	Value     int
	Available bool
}

// Unavailable is the zero Score.
var Unavailable = Score{}

// NewScore builds an available score clamped to 0-100.
func NewScore(value int) Score {
	if value < 0 {
		value = 0
	}
	if value > 100 {
		value = 100
	}
	return Score{Value: value, Available: true}
}

// Below reports whether the score is a number strictly below threshold.
func (s Score) Below(threshold int) bool {
	return s.Available && s.Value < threshold
}

func (s Score) String() string {
	if !s.Available {
		return scoreUnavailable
	}
	return strconv.Itoa(s.Value)
}

// MarshalJSON encodes the score as a number or "N/A".
func (s Score) MarshalJSON() ([]byte, error) {
	if !s.Available {
		return []byte(`"` + scoreUnavailable + `"`), nil
	}
	return []byte(strconv.Itoa(s.Value)), nil
}

// UnmarshalJSON never fails on shape: anything that is not a number or a
// numeric string decodes to Unavailable.
func (s *Score) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		*s = Unavailable
		return nil
	}
	*s = ParseScore(raw)
	return nil
}

// ParseScore converts a loosely typed value into a Score.
func ParseScore(raw any) Score {
	switch v := raw.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Unavailable
		}
		return NewScore(int(math.Round(math.Max(0, math.Min(100, v)))))
	case int:
		return NewScore(v)
	case int64:
		return NewScore(int(v))
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return Unavailable
		}
		return ParseScore(f)
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" || strings.EqualFold(trimmed, scoreUnavailable) {
			return Unavailable
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return Unavailable
		}
		return ParseScore(f)
	default:
		return Unavailable
	}
}

// PerformanceScore pairs the mobile and desktop Lighthouse scores.
type PerformanceScore struct {
	Mobile  Score `json:"mobile"`
	Desktop Score `json:"desktop"`
}
