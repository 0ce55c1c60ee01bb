package pinfield

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/golang/geo/r3"
)

// PinID identifies a pin. Confirmed pins carry the backend's id; drafts carry
// a "local-<millis>" id until the backend assigns one.
type PinID string

const localPinPrefix = "local-"

// LocalPinID returns the provisional id for a draft placed at t.
func LocalPinID(t time.Time) PinID {
	return PinID(localPinPrefix + strconv.FormatInt(t.UnixMilli(), 10))
}

// IsDraft reports whether the id is a provisional draft id.
func (id PinID) IsDraft() bool {
	return strings.HasPrefix(string(id), localPinPrefix)
}

// --- Answers ---

// AnswerKind is the shape of a collected answer value.
type AnswerKind uint8

const (
	AnswerNone AnswerKind = iota
	AnswerNumber
	AnswerText
	AnswerChoices
)

// Answer is a single collected answer: a number (slider percent), a string
// (free text or single choice), a list of choice keys, or nothing.
type Answer struct {
	kind    AnswerKind
	num     float64
	text    string
	choices []string
}

// NumberAnswer returns a numeric answer. Non-finite values yield an empty answer.
func NumberAnswer(v float64) Answer {
	if !finite(v) {
		return Answer{}
	}
	return Answer{kind: AnswerNumber, num: v}
}

// TextAnswer returns a string answer.
func TextAnswer(s string) Answer {
	return Answer{kind: AnswerText, text: s}
}

// ChoicesAnswer returns a multi-select answer. A nil slice is stored as empty.
func ChoicesAnswer(keys []string) Answer {
	c := make([]string, len(keys))
	copy(c, keys)
	return Answer{kind: AnswerChoices, choices: c}
}

// Kind returns the answer's shape.
func (a Answer) Kind() AnswerKind { return a.kind }

// Number returns the numeric value, converting numeric strings.
func (a Answer) Number() (float64, bool) {
	switch a.kind {
	case AnswerNumber:
		return a.num, true
	case AnswerText:
		v, err := strconv.ParseFloat(strings.TrimSpace(a.text), 64)
		if err != nil || !finite(v) {
			return 0, false
		}
		return v, true
	}
	return 0, false
}

// Text returns the string value. Numbers are formatted; choices are joined with ", ".
func (a Answer) Text() string {
	switch a.kind {
	case AnswerText:
		return a.text
	case AnswerNumber:
		return strconv.FormatFloat(a.num, 'f', -1, 64)
	case AnswerChoices:
		return strings.Join(a.choices, ", ")
	}
	return ""
}

// Choices returns the selected keys. A non-empty text answer counts as one key.
func (a Answer) Choices() []string {
	switch a.kind {
	case AnswerChoices:
		c := make([]string, len(a.choices))
		copy(c, a.choices)
		return c
	case AnswerText:
		if a.text != "" {
			return []string{a.text}
		}
	}
	return nil
}

// IsEmpty reports whether the answer counts as unanswered: nothing, an empty
// list, or a blank string. Numbers are never empty.
func (a Answer) IsEmpty() bool {
	switch a.kind {
	case AnswerNumber:
		return false
	case AnswerText:
		return strings.TrimSpace(a.text) == ""
	case AnswerChoices:
		return len(a.choices) == 0
	}
	return true
}

// MarshalJSON encodes the answer as null, a number, a string or a string array.
func (a Answer) MarshalJSON() ([]byte, error) {
	switch a.kind {
	case AnswerNumber:
		return json.Marshal(a.num)
	case AnswerText:
		return json.Marshal(a.text)
	case AnswerChoices:
		if a.choices == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(a.choices)
	}
	return jsonNull, nil
}

// UnmarshalJSON accepts null, numbers, strings, booleans and arrays.
func (a *Answer) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, jsonNull) {
		*a = Answer{}
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = TextAnswer(s)
	case '[':
		*a = ChoicesAnswer(ParseReasons(data))
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*a = TextAnswer(strconv.FormatBool(b))
	default:
		var v float64
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*a = NumberAnswer(v)
	}
	return nil
}

// Answers maps question keys to collected answers.
type Answers map[string]Answer

// Clone returns a shallow copy.
func (a Answers) Clone() Answers {
	if a == nil {
		return nil
	}
	out := make(Answers, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// --- Pins ---

// Pin is an annotation anchored to a floor of the building.
type Pin struct {
	ID       PinID
	Floor    int
	Position r3.Vector
	Approved Approval
	Answers  Answers
	// Fields holds scalar values the backend stored as top-level record
	// columns rather than in answers, keyed by column name.
	Fields Answers
	// Wellbeing is the legacy percent field. NaN when absent.
	Wellbeing float64
	Reasons   []string
	GroupKey  string
	Note      string
	CreatedAt time.Time
}

// Answer returns the value for key, looking first at Answers and then at the
// record's top-level columns.
func (p Pin) Answer(key string) (Answer, bool) {
	if a, ok := p.Answers[key]; ok && a.Kind() != AnswerNone {
		return a, true
	}
	return p.column(key)
}

// column returns a value stored on the record itself: a legacy column or
// another top-level field.
func (p Pin) column(key string) (Answer, bool) {
	if a, ok := p.legacyAnswer(key); ok {
		return a, true
	}
	a, ok := p.Fields[key]
	return a, ok && a.Kind() != AnswerNone
}

func (p Pin) legacyAnswer(key string) (Answer, bool) {
	switch key {
	case legacyWellbeing:
		if finite(p.Wellbeing) {
			return NumberAnswer(p.Wellbeing), true
		}
	case legacyReasons:
		if p.Reasons != nil {
			return ChoicesAnswer(p.Reasons), true
		}
	case legacyGroup, "group_key":
		if p.GroupKey != "" {
			return TextAnswer(p.GroupKey), true
		}
	case legacyNote:
		if p.Note != "" {
			return TextAnswer(p.Note), true
		}
	}
	return Answer{}, false
}

// Keys that the backend stores as top-level pin columns rather than in
// generic_answers.
const (
	legacyWellbeing = "wellbeing"
	legacyReasons   = "reasons"
	legacyGroup     = "group"
	legacyNote      = "note"
)

func isLegacyKey(key string) bool {
	switch key {
	case legacyWellbeing, legacyReasons, legacyGroup, legacyNote:
		return true
	}
	return false
}

// pinColumns are the record keys decoded into dedicated Pin fields.
var pinColumns = map[string]bool{
	"id":          true,
	"floor_index": true,
	"position_x":  true,
	"position_y":  true,
	"position_z":  true,
	"wellbeing":   true,
	"approved":    true,
	"reasons":     true,
	"group_key":   true,
	"note":        true,
	"created_at":  true,
	"answers":     true,
}

// createdAtLayouts covers SQL DATETIME columns and RFC 3339.
var createdAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// UnmarshalJSON decodes a backend pin record. Numeric fields may arrive as
// strings, reasons and answers as JSON-encoded strings, and an empty group
// as "". A malformed column decodes as its zero value; only a record that is
// not a JSON object is an error.
func (p *Pin) UnmarshalJSON(data []byte) error {
	var rec map[string]json.RawMessage
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	*p = Pin{
		ID:    decodePinID(rec["id"]),
		Floor: intField(rec["floor_index"]),
		Position: r3.Vector{
			X: orZero(numberField(rec["position_x"])),
			Y: orZero(numberField(rec["position_y"])),
			Z: orZero(numberField(rec["position_z"])),
		},
		Approved:  decodeApproval(rec["approved"]),
		Answers:   ParseAnswers(rec["answers"]),
		Wellbeing: numberField(rec["wellbeing"]),
		Reasons:   ParseReasons(rec["reasons"]),
		GroupKey:  stringField(rec["group_key"]),
		Note:      stringField(rec["note"]),
	}
	if s := strings.TrimSpace(stringField(rec["created_at"])); s != "" {
		for _, layout := range createdAtLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				p.CreatedAt = t
				break
			}
		}
	}
	for k, raw := range rec {
		if pinColumns[k] {
			continue
		}
		var a Answer
		if err := a.UnmarshalJSON(raw); err != nil || a.Kind() == AnswerNone {
			continue
		}
		if p.Fields == nil {
			p.Fields = make(Answers)
		}
		p.Fields[k] = a
	}
	return nil
}

// MarshalJSON encodes the pin in the backend record format.
func (p Pin) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Fields)+12)
	for k, a := range p.Fields {
		if !pinColumns[k] {
			out[k] = a
		}
	}
	out["id"] = string(p.ID)
	out["floor_index"] = p.Floor
	out["position_x"] = p.Position.X
	out["position_y"] = p.Position.Y
	out["position_z"] = p.Position.Z
	out["approved"] = int(p.Approved)
	out["reasons"] = nonNil(p.Reasons)
	out["note"] = p.Note
	if finite(p.Wellbeing) {
		out["wellbeing"] = p.Wellbeing
	} else {
		out["wellbeing"] = nil
	}
	if p.GroupKey != "" {
		out["group_key"] = p.GroupKey
	} else {
		out["group_key"] = nil
	}
	if !p.CreatedAt.IsZero() {
		out["created_at"] = p.CreatedAt.UTC().Format(time.RFC3339)
	}
	if len(p.Answers) > 0 {
		out["answers"] = p.Answers
	}
	return json.Marshal(out)
}

// decodeApproval reads the approved column as a number, numeric string or
// boolean. Anything else is pending.
func decodeApproval(raw json.RawMessage) Approval {
	var b bool
	if json.Unmarshal(raw, &b) == nil {
		if b {
			return ApprovalApproved
		}
		return ApprovalPending
	}
	switch n := intField(raw); {
	case n > 0:
		return ApprovalApproved
	case n < 0:
		return ApprovalRejected
	}
	return ApprovalPending
}

func decodePinID(raw json.RawMessage) PinID {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, jsonNull) {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return PinID(strings.TrimSpace(s))
	}
	var n float64
	if json.Unmarshal(raw, &n) == nil {
		return PinID(strconv.FormatFloat(n, 'f', -1, 64))
	}
	return ""
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
