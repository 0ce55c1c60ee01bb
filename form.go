package pinfield

import (
	"strings"

	"github.com/golang/geo/r3"
)

// Placement is the floor location a new pin is attached to.
type Placement struct {
	Floor    int
	Position r3.Vector
}

// Submission is the payload sent to the backend for a new pin. Answers holds
// every collected answer; GenericAnswers repeats the ones that have no
// dedicated backend column.
type Submission struct {
	FloorIndex     int     `json:"floor_index"`
	X              float64 `json:"x"`
	Y              float64 `json:"y"`
	Z              float64 `json:"z"`
	Answers        Answers `json:"answers"`
	StationKey     string  `json:"station_key,omitempty"`
	GenericAnswers Answers `json:"generic_answers,omitempty"`
}

// ChoiceOption is one option of a choice binding with its checked state.
type ChoiceOption struct {
	Key     string
	Label   string
	Checked bool
}

// Binding is the live input state for one question of the form.
type Binding struct {
	Question Question
	Disabled bool

	form    *Form
	slider  float64
	choices []ChoiceOption
	text    string
}

func newBinding(f *Form, q Question) *Binding {
	b := &Binding{Question: q, form: f}
	for _, o := range q.Options {
		b.choices = append(b.choices, ChoiceOption{Key: o.Key, Label: o.DisplayLabel()})
	}
	b.reset()
	return b
}

// Key returns the question key.
func (b *Binding) Key() string { return b.Question.Key }

// Label returns the question's display label.
func (b *Binding) Label() string { return b.Question.DisplayLabel() }

// Kind returns the question kind.
func (b *Binding) Kind() QuestionKind { return b.Question.Kind }

// Exclusive reports whether a choice binding accepts only one selection.
func (b *Binding) Exclusive() bool {
	mc, _ := b.Question.Multi()
	return !mc.AllowMultiple
}

// Rows is the suggested height of a text binding.
func (b *Binding) Rows() int {
	if tc, ok := b.Question.Text(); ok && tc.Rows > 0 {
		return tc.Rows
	}
	return defaultTextRows
}

func (b *Binding) reset() {
	b.Disabled = false
	b.text = ""
	for i := range b.choices {
		b.choices[i].Checked = false
	}
	if cfg, ok := b.Question.Slider(); ok {
		b.slider = SliderDefault(cfg)
	}
}

// SliderValue returns the current raw slider position.
func (b *Binding) SliderValue() float64 { return b.slider }

// SetSliderValue moves the slider, snapping to the step grid and clamping to
// the bounds. Disabled bindings ignore input.
func (b *Binding) SetSliderValue(v float64) {
	cfg, ok := b.Question.Slider()
	if !ok || b.Disabled || !finite(v) {
		return
	}
	b.slider = SnapToStep(v, cfg)
	b.form.changed(b)
}

// StepSlider moves the slider by n steps.
func (b *Binding) StepSlider(n int) {
	cfg, ok := b.Question.Slider()
	if !ok {
		return
	}
	b.SetSliderValue(b.slider + float64(n)*cfg.step())
}

// Options returns a copy of the choice options and their checked state.
func (b *Binding) Options() []ChoiceOption {
	out := make([]ChoiceOption, len(b.choices))
	copy(out, b.choices)
	return out
}

// Toggle flips an option of a choice binding. Exclusive bindings select the
// option and clear the others. It reports false for unknown options or when
// the binding is disabled.
func (b *Binding) Toggle(optionKey string) bool {
	if b.Disabled {
		return false
	}
	idx := -1
	for i := range b.choices {
		if b.choices[i].Key == optionKey {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	if b.Exclusive() {
		for i := range b.choices {
			b.choices[i].Checked = i == idx
		}
	} else {
		b.choices[idx].Checked = !b.choices[idx].Checked
	}
	b.form.changed(b)
	return true
}

// Selected returns the checked option keys in option order.
func (b *Binding) Selected() []string {
	var out []string
	for _, c := range b.choices {
		if c.Checked {
			out = append(out, c.Key)
		}
	}
	return out
}

// Text returns the current free-text value.
func (b *Binding) Text() string { return b.text }

// SetText replaces the free-text value.
func (b *Binding) SetText(s string) {
	if b.Disabled || b.Question.Kind != KindText {
		return
	}
	b.text = s
	b.form.changed(b)
}

// Value returns the collected answer: sliders as percent, text trimmed,
// choices as a list or, for exclusive bindings, the selected key or "".
func (b *Binding) Value() Answer {
	switch b.Question.Kind {
	case KindSlider:
		cfg, _ := b.Question.Slider()
		pct, ok := ToPercent(b.slider, cfg)
		if !ok {
			return Answer{}
		}
		return NumberAnswer(pct)
	case KindText:
		return TextAnswer(strings.TrimSpace(b.text))
	case KindMulti:
		sel := b.Selected()
		if b.Exclusive() {
			if len(sel) == 0 {
				return TextAnswer("")
			}
			return TextAnswer(sel[0])
		}
		if sel == nil {
			sel = []string{}
		}
		return ChoicesAnswer(sel)
	}
	return Answer{}
}

// SetAnswer loads a stored answer into the binding. Slider answers are
// percents and are converted back to a slider position. It does not fire
// change notifications and works on disabled bindings.
func (b *Binding) SetAnswer(a Answer) {
	switch b.Question.Kind {
	case KindSlider:
		cfg, _ := b.Question.Slider()
		if pct, ok := a.Number(); ok {
			if v, ok := FromPercent(pct, cfg); ok {
				b.slider = v
			}
		}
	case KindText:
		b.text = a.Text()
	case KindMulti:
		keys := a.Choices()
		for i := range b.choices {
			b.choices[i].Checked = false
			for _, k := range keys {
				if b.choices[i].Key == k {
					b.choices[i].Checked = true
					break
				}
			}
		}
	}
}

// --- Form ---

// Form holds one Binding per question plus the placement, station key, busy
// flag and inline error of the pin dialog.
type Form struct {
	bindings []*Binding
	index    map[string]*Binding

	placement  *Placement
	stationKey string
	message    string
	busy       bool

	onChange func(*Binding)
}

// NewForm returns an empty form.
func NewForm() *Form {
	return &Form{index: make(map[string]*Binding)}
}

// Render discards every existing binding and builds one per question, in
// order, with default values.
func (f *Form) Render(questions []Question) {
	f.bindings = make([]*Binding, 0, len(questions))
	f.index = make(map[string]*Binding, len(questions))
	for _, q := range questions {
		b := newBinding(f, q)
		f.bindings = append(f.bindings, b)
		f.index[q.Key] = b
	}
}

// Relabel refreshes question and option labels from questions without
// touching current values. Unknown keys are ignored.
func (f *Form) Relabel(questions []Question) {
	for _, q := range questions {
		b, ok := f.index[q.Key]
		if !ok {
			continue
		}
		b.Question.Label = q.Label
		b.Question.LegendLow = q.LegendLow
		b.Question.LegendHigh = q.LegendHigh
		for _, o := range q.Options {
			for i := range b.choices {
				if b.choices[i].Key == o.Key {
					b.choices[i].Label = o.DisplayLabel()
				}
			}
		}
	}
}

// Bindings returns the bindings in question order.
func (f *Form) Bindings() []*Binding { return f.bindings }

// Binding looks up a binding by question key.
func (f *Form) Binding(key string) (*Binding, bool) {
	b, ok := f.index[key]
	return b, ok
}

// Reset restores defaults, enables every binding and clears the error.
func (f *Form) Reset() {
	for _, b := range f.bindings {
		b.reset()
	}
	f.message = ""
	f.busy = false
}

// SetDisabled enables or disables every binding.
func (f *Form) SetDisabled(disabled bool) {
	for _, b := range f.bindings {
		b.Disabled = disabled
	}
}

// PopulateReadOnly loads a pin's answers into the bindings and disables
// them. Keys with no stored answer keep their defaults.
func (f *Form) PopulateReadOnly(p Pin) {
	for _, b := range f.bindings {
		if a, ok := p.Answer(b.Key()); ok {
			b.SetAnswer(a)
		}
		b.Disabled = true
	}
}

// SetPlacement sets or clears the location the submission is attached to.
func (f *Form) SetPlacement(p *Placement) { f.placement = p }

// Placement returns the current placement, if any.
func (f *Form) Placement() (Placement, bool) {
	if f.placement == nil {
		return Placement{}, false
	}
	return *f.placement, true
}

// SetStationKey sets the station key added to submissions.
func (f *Form) SetStationKey(key string) { f.stationKey = strings.TrimSpace(key) }

// Error returns the inline error message.
func (f *Form) Error() string { return f.message }

// Busy reports whether a submission is in flight.
func (f *Form) Busy() bool { return f.busy }

func (f *Form) setError(msg string) { f.message = msg }
func (f *Form) clearError()         { f.message = "" }
func (f *Form) setBusy(busy bool)   { f.busy = busy }

func (f *Form) changed(b *Binding) {
	if f.onChange != nil {
		f.onChange(b)
	}
}

// Collect gathers every binding's answer in question order. The first
// required question with an empty answer aborts with a *ValidationError.
func (f *Form) Collect() (Answers, error) {
	answers := make(Answers, len(f.bindings))
	for _, b := range f.bindings {
		a := b.Value()
		answers[b.Key()] = a
		if b.Question.Required && a.IsEmpty() {
			return nil, &ValidationError{Key: b.Key(), Label: b.Label()}
		}
	}
	return answers, nil
}

// Serialize builds the submission payload. It fails with ErrNoLocation when
// no placement is set, before looking at any answer.
func (f *Form) Serialize() (Submission, error) {
	if f.placement == nil || !finite(f.placement.Position.X) {
		return Submission{}, ErrNoLocation
	}
	answers, err := f.Collect()
	if err != nil {
		return Submission{}, err
	}
	sub := Submission{
		FloorIndex: f.placement.Floor,
		X:          f.placement.Position.X,
		Y:          f.placement.Position.Y,
		Z:          f.placement.Position.Z,
		Answers:    answers,
		StationKey: f.stationKey,
	}
	for k, v := range answers {
		if isLegacyKey(k) {
			continue
		}
		if sub.GenericAnswers == nil {
			sub.GenericAnswers = make(Answers)
		}
		sub.GenericAnswers[k] = v
	}
	return sub, nil
}
