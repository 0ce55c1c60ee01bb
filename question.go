package pinfield

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// QuestionKind is the closed set of question types a questionnaire can carry.
type QuestionKind uint8

const (
	KindSlider QuestionKind = iota
	KindMulti
	KindText
)

// String returns the wire name of the kind.
func (k QuestionKind) String() string {
	switch k {
	case KindSlider:
		return "slider"
	case KindMulti:
		return "multi"
	case KindText:
		return "text"
	}
	return fmt.Sprintf("QuestionKind(%d)", k)
}

// ParseQuestionKind maps a wire type name to a QuestionKind.
func ParseQuestionKind(s string) (QuestionKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "slider":
		return KindSlider, nil
	case "multi":
		return KindMulti, nil
	case "text":
		return KindText, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownQuestionType, s)
}

// QuestionConfig is the kind-specific configuration of a question. The
// concrete type is one of SliderConfig, MultiConfig or TextConfig.
type QuestionConfig interface {
	Kind() QuestionKind
}

const (
	defaultSliderMin  = 0.0
	defaultSliderMax  = 1.0
	defaultSliderStep = 0.01
	defaultTextRows   = 3
)

// SliderConfig configures a numeric slider question. Min, Max and Step are
// always populated once a question has been decoded.
type SliderConfig struct {
	Min, Max, Step float64
	// Default is only meaningful when HasDefault is set.
	Default     float64
	HasDefault  bool
	UseForColor bool
}

// Kind returns KindSlider.
func (SliderConfig) Kind() QuestionKind { return KindSlider }

// NewSliderConfig returns a slider config over [min, max] with the given step.
// A non-positive step falls back to 0.01.
func NewSliderConfig(min, max, step float64) SliderConfig {
	if step <= 0 {
		step = defaultSliderStep
	}
	return SliderConfig{Min: min, Max: max, Step: step}
}

// WithDefault returns a copy with an explicit default value.
func (c SliderConfig) WithDefault(v float64) SliderConfig {
	c.Default = v
	c.HasDefault = true
	return c
}

// Range returns the slider's bounds as a color range.
func (c SliderConfig) Range() Range {
	lo, hi := c.bounds()
	return Range{Min: lo, Max: hi}
}

// bounds returns the effective [lo, hi]. The zero value behaves as [0, 1].
func (c SliderConfig) bounds() (lo, hi float64) {
	if c.Min == 0 && c.Max == 0 {
		return defaultSliderMin, defaultSliderMax
	}
	if c.Max < c.Min {
		return c.Max, c.Min
	}
	return c.Min, c.Max
}

func (c SliderConfig) step() float64 {
	if c.Step <= 0 {
		return defaultSliderStep
	}
	return c.Step
}

// MultiConfig configures a choice question.
type MultiConfig struct {
	AllowMultiple bool
}

// Kind returns KindMulti.
func (MultiConfig) Kind() QuestionKind { return KindMulti }

// TextConfig configures a free-text question.
type TextConfig struct {
	Rows int
}

// Kind returns KindText.
func (TextConfig) Kind() QuestionKind { return KindText }

// Option is one selectable answer of a choice question.
type Option struct {
	Key   string
	Label string
	Sort  int
}

// DisplayLabel returns Label, or Key when no label is set.
func (o Option) DisplayLabel() string {
	if o.Label != "" {
		return o.Label
	}
	return o.Key
}

// Question is one entry of a questionnaire.
type Question struct {
	Key        string
	Kind       QuestionKind
	Required   bool
	Sort       int
	Label      string
	LegendLow  string
	LegendHigh string
	Config     QuestionConfig
	Options    []Option
}

// DisplayLabel returns Label, or Key when no label is set.
func (q Question) DisplayLabel() string {
	if q.Label != "" {
		return q.Label
	}
	return q.Key
}

// Slider returns the slider config when the question is a slider.
func (q Question) Slider() (SliderConfig, bool) {
	c, ok := q.Config.(SliderConfig)
	return c, ok && q.Kind == KindSlider
}

// Multi returns the choice config when the question is a choice question.
func (q Question) Multi() (MultiConfig, bool) {
	c, ok := q.Config.(MultiConfig)
	return c, ok && q.Kind == KindMulti
}

// Text returns the text config when the question is a free-text question.
func (q Question) Text() (TextConfig, bool) {
	c, ok := q.Config.(TextConfig)
	return c, ok && q.Kind == KindText
}

// SortQuestions returns a copy of qs ordered by Sort. Ties keep their input order.
func SortQuestions(qs []Question) []Question {
	out := make([]Question, len(qs))
	copy(out, qs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Sort < out[j].Sort })
	return out
}

// --- Wire decoding ---

type optionJSON struct {
	Key   string  `json:"key"`
	Label string  `json:"label,omitempty"`
	Sort  flexInt `json:"sort,omitempty"`
}

type questionConfigJSON struct {
	Min           *flexFloat `json:"min,omitempty"`
	Max           *flexFloat `json:"max,omitempty"`
	Step          *flexFloat `json:"step,omitempty"`
	Default       *flexFloat `json:"default,omitempty"`
	UseForColor   flexBool   `json:"use_for_color,omitempty"`
	AllowMultiple flexBool   `json:"allow_multiple,omitempty"`
	Rows          flexInt    `json:"rows,omitempty"`
}

type questionJSON struct {
	Key        string              `json:"key"`
	Type       string              `json:"type"`
	Required   flexBool            `json:"required,omitempty"`
	Sort       flexInt             `json:"sort,omitempty"`
	Label      string              `json:"label,omitempty"`
	LegendLow  string              `json:"legend_low,omitempty"`
	LegendHigh string              `json:"legend_high,omitempty"`
	Config     *questionConfigJSON `json:"config,omitempty"`
	Options    []optionJSON        `json:"options,omitempty"`
}

// UnmarshalJSON decodes a questionnaire record and resolves its config with
// per-kind defaults, so later consumers never see a missing bound.
func (q *Question) UnmarshalJSON(data []byte) error {
	var raw questionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if strings.TrimSpace(raw.Key) == "" {
		return ErrQuestionKey
	}
	kind, err := ParseQuestionKind(raw.Type)
	if err != nil {
		return fmt.Errorf("question %q: %w", raw.Key, err)
	}
	cfg := raw.Config
	if cfg == nil {
		cfg = &questionConfigJSON{}
	}

	*q = Question{
		Key:        raw.Key,
		Kind:       kind,
		Required:   bool(raw.Required),
		Sort:       int(raw.Sort),
		Label:      raw.Label,
		LegendLow:  raw.LegendLow,
		LegendHigh: raw.LegendHigh,
	}
	switch kind {
	case KindSlider:
		sc := NewSliderConfig(cfg.Min.or(defaultSliderMin), cfg.Max.or(defaultSliderMax), cfg.Step.or(defaultSliderStep))
		if cfg.Default != nil {
			sc = sc.WithDefault(float64(*cfg.Default))
		}
		sc.UseForColor = bool(cfg.UseForColor)
		q.Config = sc
	case KindMulti:
		q.Config = MultiConfig{AllowMultiple: bool(cfg.AllowMultiple)}
		q.Options = make([]Option, 0, len(raw.Options))
		for _, o := range raw.Options {
			if o.Key == "" {
				continue
			}
			q.Options = append(q.Options, Option{Key: o.Key, Label: o.Label, Sort: int(o.Sort)})
		}
		sort.SliceStable(q.Options, func(i, j int) bool { return q.Options[i].Sort < q.Options[j].Sort })
	case KindText:
		rows := int(cfg.Rows)
		if rows <= 0 {
			rows = defaultTextRows
		}
		q.Config = TextConfig{Rows: rows}
	}
	return nil
}

// MarshalJSON encodes the question in the questionnaire wire format.
func (q Question) MarshalJSON() ([]byte, error) {
	out := questionJSON{
		Key:        q.Key,
		Type:       q.Kind.String(),
		Required:   flexBool(q.Required),
		Sort:       flexInt(q.Sort),
		Label:      q.Label,
		LegendLow:  q.LegendLow,
		LegendHigh: q.LegendHigh,
	}
	cfg := &questionConfigJSON{}
	switch c := q.Config.(type) {
	case SliderConfig:
		lo, hi := c.bounds()
		step := c.step()
		cfg.Min, cfg.Max, cfg.Step = (*flexFloat)(&lo), (*flexFloat)(&hi), (*flexFloat)(&step)
		if c.HasDefault {
			d := c.Default
			cfg.Default = (*flexFloat)(&d)
		}
		cfg.UseForColor = flexBool(c.UseForColor)
	case MultiConfig:
		cfg.AllowMultiple = flexBool(c.AllowMultiple)
	case TextConfig:
		cfg.Rows = flexInt(c.Rows)
	}
	out.Config = cfg
	for _, o := range q.Options {
		out.Options = append(out.Options, optionJSON{Key: o.Key, Label: o.Label, Sort: flexInt(o.Sort)})
	}
	return json.Marshal(out)
}

// ParseQuestionnaire decodes a JSON array of questions, sorted by Sort.
// Records that fail to decode are skipped; their errors are joined into the
// returned error alongside the questions that did decode.
func ParseQuestionnaire(data []byte) ([]Question, error) {
	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse questionnaire: %w", err)
	}
	out := make([]Question, 0, len(records))
	var errs []error
	for i, rec := range records {
		var q Question
		if err := json.Unmarshal(rec, &q); err != nil {
			errs = append(errs, fmt.Errorf("question %d: %w", i, err))
			continue
		}
		out = append(out, q)
	}
	return SortQuestions(out), errors.Join(errs...)
}
