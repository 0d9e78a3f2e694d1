package entities

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Sentiment is a score in [-1, 1]. It decodes from a JSON number or a numeric
// string; anything else decodes to 0.
type Sentiment float64

func (s *Sentiment) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	var f float64
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		f = 0
	case data[0] == '"':
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(str), 64)
		if err != nil {
			v = 0
		}
		f = v
	default:
		if err := json.Unmarshal(data, &f); err != nil {
			f = 0
		}
	}
	*s = Sentiment(f).Clamp()
	return nil
}

// Clamp bounds the score to [-1, 1]
func (s Sentiment) Clamp() Sentiment {
	switch {
	case s < -1:
		return -1
	case s > 1:
		return 1
	default:
		return s
	}
}
