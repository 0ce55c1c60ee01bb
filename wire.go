package pinfield

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// The backend serves numbers as JSON strings often enough that every numeric
// wire field is decoded through one of these tolerant types.

var jsonNull = []byte("null")

// flexFloat decodes a JSON number or numeric string. Blank strings and null
// decode as NaN.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	v, err := parseFlexNumber(data)
	if err != nil {
		return err
	}
	*f = flexFloat(v)
	return nil
}

// or returns the value, or def when f is nil or NaN.
func (f *flexFloat) or(def float64) float64 {
	if f == nil || math.IsNaN(float64(*f)) {
		return def
	}
	return float64(*f)
}

// flexInt decodes a JSON number or numeric string, truncating fractions.
// Values that do not parse decode as zero.
type flexInt int64

func (n *flexInt) UnmarshalJSON(data []byte) error {
	v, err := parseFlexNumber(data)
	if err != nil {
		return err
	}
	if math.IsNaN(v) {
		*n = 0
		return nil
	}
	*n = flexInt(v)
	return nil
}

// flexBool decodes true/false, 0/1 and their string forms.
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, jsonNull) {
		*b = false
		return nil
	}
	var asBool bool
	if err := json.Unmarshal(data, &asBool); err == nil {
		*b = flexBool(asBool)
		return nil
	}
	v, err := parseFlexNumber(data)
	if err != nil {
		var s string
		if json.Unmarshal(data, &s) == nil {
			s = strings.ToLower(strings.TrimSpace(s))
			*b = flexBool(s == "true" || s == "yes")
			return nil
		}
		return err
	}
	*b = flexBool(!math.IsNaN(v) && v != 0)
	return nil
}

func parseFlexNumber(data []byte) (float64, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, jsonNull) {
		return math.NaN(), nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return 0, err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return math.NaN(), nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN(), nil
		}
		return v, nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return 0, fmt.Errorf("decode number %s: %w", data, err)
	}
	return v, nil
}

// ParseReasons decodes a reasons field that may arrive as a JSON array or as
// a string holding a JSON array. Anything else yields an empty list.
func ParseReasons(data []byte) []string {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, jsonNull) {
		return []string{}
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return []string{}
		}
		return ParseReasons([]byte(s))
	}
	var list []any
	if err := json.Unmarshal(data, &list); err != nil {
		return []string{}
	}
	out := make([]string, 0, len(list))
	for _, v := range list {
		switch x := v.(type) {
		case string:
			out = append(out, x)
		case float64:
			out = append(out, strconv.FormatFloat(x, 'f', -1, 64))
		}
	}
	return out
}

// numberField decodes a record column through the flexFloat rules. Missing,
// malformed and non-finite values yield NaN.
func numberField(raw json.RawMessage) float64 {
	v, err := parseFlexNumber(raw)
	if err != nil || !finite(v) {
		return math.NaN()
	}
	return v
}

// intField is numberField truncated to an int, with zero for anything that
// does not parse.
func intField(raw json.RawMessage) int {
	v := numberField(raw)
	if math.IsNaN(v) || math.Abs(v) > math.MaxInt32 {
		return 0
	}
	return int(v)
}

func orZero(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}

// stringField decodes a string column. Numbers are formatted; anything else
// yields "".
func stringField(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	if v := numberField(raw); !math.IsNaN(v) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return ""
}

// ParseAnswers decodes an answers field that may arrive as a JSON object or
// as a string holding one. Entries that fail to decode are dropped, and
// anything that is not an object yields nil.
func ParseAnswers(data []byte) Answers {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, jsonNull) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		return ParseAnswers([]byte(s))
	}
	var entries map[string]json.RawMessage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil
	}
	out := make(Answers, len(entries))
	for k, raw := range entries {
		var a Answer
		if err := a.UnmarshalJSON(raw); err != nil {
			continue
		}
		out[k] = a
	}
	return out
}
