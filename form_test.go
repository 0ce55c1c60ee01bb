package pinfield

import (
	"errors"
	"math"
	"testing"

	"github.com/golang/geo/r3"
)

func newFallbackForm() *Form {
	f := NewForm()
	f.Render(FallbackQuestions(NewCatalog("en")))
	return f
}

func TestFormRenderDefaults(t *testing.T) {
	f := newFallbackForm()
	if got := len(f.Bindings()); got != 4 {
		t.Fatalf("bindings = %d, want 4", got)
	}
	wb, _ := f.Binding("wellbeing")
	if wb.SliderValue() != 5 {
		t.Errorf("wellbeing default = %v, want 5", wb.SliderValue())
	}
	if !f.Bindings()[0].Question.Required {
		t.Error("wellbeing should be required")
	}
	group, _ := f.Binding("group")
	if !group.Exclusive() {
		t.Error("group should be single choice")
	}
	note, _ := f.Binding("note")
	if note.Rows() != 3 {
		t.Errorf("note rows = %d, want 3", note.Rows())
	}
}

func TestFormRenderReplacesBindings(t *testing.T) {
	f := newFallbackForm()
	f.Render([]Question{sliderQuestion("comfort", 0, 1, 0.01)})
	if _, ok := f.Binding("wellbeing"); ok {
		t.Error("old binding survived schema replacement")
	}
	if len(f.Bindings()) != 1 {
		t.Errorf("bindings = %d, want 1", len(f.Bindings()))
	}
}

func TestBindingToggle(t *testing.T) {
	f := newFallbackForm()
	reasons, _ := f.Binding("reasons")
	reasons.Toggle("ruhe")
	reasons.Toggle("licht")
	reasons.Toggle("ruhe")
	if got := reasons.Value().Choices(); len(got) != 1 || got[0] != "licht" {
		t.Errorf("reasons = %v, want [licht]", got)
	}

	group, _ := f.Binding("group")
	group.Toggle("staff")
	group.Toggle("studi")
	if got := group.Value(); got.Kind() != AnswerText || got.Text() != "studi" {
		t.Errorf("group = %v, want studi", got.Text())
	}
	if group.Toggle("nope") {
		t.Error("Toggle of unknown option returned true")
	}
}

func TestBindingSliderInput(t *testing.T) {
	f := newFallbackForm()
	var changed []string
	f.onChange = func(b *Binding) { changed = append(changed, b.Key()) }

	wb, _ := f.Binding("wellbeing")
	wb.SetSliderValue(7.4)
	if wb.SliderValue() != 7 {
		t.Errorf("snapped value = %v, want 7", wb.SliderValue())
	}
	wb.StepSlider(10)
	if wb.SliderValue() != 10 {
		t.Errorf("stepped value = %v, want 10", wb.SliderValue())
	}
	wb.SetSliderValue(math.NaN())
	if wb.SliderValue() != 10 {
		t.Error("NaN input changed the slider")
	}
	if len(changed) != 2 {
		t.Errorf("change notifications = %v, want 2", changed)
	}

	wb.Disabled = true
	wb.SetSliderValue(1)
	if wb.SliderValue() != 10 {
		t.Error("disabled slider accepted input")
	}
}

func TestFormCollectRequiredText(t *testing.T) {
	f := NewForm()
	f.Render([]Question{
		{Key: "note", Kind: KindText, Required: true, Label: "Note", Config: TextConfig{Rows: 3}},
	})
	f.SetPlacement(&Placement{Floor: 0, Position: r3.Vector{X: 1}})

	b, _ := f.Binding("note")
	b.SetText("   ")
	_, err := f.Serialize()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
	if verr.Key != "note" || !errors.Is(err, ErrRequired) {
		t.Errorf("verr = %+v", verr)
	}

	b.SetText(" hello ")
	sub, err := f.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if sub.Answers["note"].Text() != "hello" {
		t.Errorf("note = %q, want trimmed", sub.Answers["note"].Text())
	}
}

func TestFormSerializeNoLocation(t *testing.T) {
	f := NewForm()
	f.Render([]Question{{Key: "note", Kind: KindText, Required: true, Config: TextConfig{Rows: 3}}})
	// No placement wins over the empty required answer.
	if _, err := f.Serialize(); !errors.Is(err, ErrNoLocation) {
		t.Errorf("err = %v, want ErrNoLocation", err)
	}
}

func TestFormSerialize(t *testing.T) {
	f := newFallbackForm()
	f.Render(append(FallbackQuestions(NewCatalog("en")), sliderQuestion("light", 0, 1, 0.01)))
	f.SetStationKey("  lobby ")
	f.SetPlacement(&Placement{Floor: 2, Position: r3.Vector{X: 1, Y: 5.86, Z: -3}})

	wb, _ := f.Binding("wellbeing")
	wb.SetSliderValue(10)
	light, _ := f.Binding("light")
	light.SetSliderValue(0.25)

	sub, err := f.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if sub.FloorIndex != 2 || sub.X != 1 || sub.Z != -3 {
		t.Errorf("placement = %+v", sub)
	}
	if sub.StationKey != "lobby" {
		t.Errorf("station = %q", sub.StationKey)
	}
	if v, _ := sub.Answers["wellbeing"].Number(); v != 100 {
		t.Errorf("wellbeing = %v, want 100", v)
	}
	if v, _ := sub.Answers["light"].Number(); v != 25 {
		t.Errorf("light = %v, want 25", v)
	}
	if _, ok := sub.GenericAnswers["wellbeing"]; ok {
		t.Error("legacy key in generic answers")
	}
	if _, ok := sub.GenericAnswers["light"]; !ok || len(sub.GenericAnswers) != 1 {
		t.Errorf("generic answers = %v, want only light", sub.GenericAnswers)
	}
	if sub.Answers["group"].Text() != "" || sub.Answers["group"].Kind() != AnswerText {
		t.Error("unanswered single choice should be an empty string")
	}
	if c := sub.Answers["reasons"]; c.Kind() != AnswerChoices || len(c.Choices()) != 0 {
		t.Error("unanswered multi choice should be an empty list")
	}
}

func TestFormPopulateReadOnly(t *testing.T) {
	f := newFallbackForm()
	p := testPin("9", 0, 0, 0)
	p.Wellbeing = 60
	p.Reasons = []string{"ruhe", "licht"}
	p.GroupKey = "staff"
	p.Note = "nice"

	f.PopulateReadOnly(p)
	wb, _ := f.Binding("wellbeing")
	if math.Abs(wb.SliderValue()-6.4) > 1e-9 {
		t.Errorf("wellbeing = %v, want 6.4", wb.SliderValue())
	}
	reasons, _ := f.Binding("reasons")
	if got := reasons.Selected(); len(got) != 2 || got[0] != "licht" || got[1] != "ruhe" {
		t.Errorf("reasons = %v, want option order", got)
	}
	for _, b := range f.Bindings() {
		if !b.Disabled {
			t.Errorf("%s not disabled", b.Key())
		}
	}
	note, _ := f.Binding("note")
	note.SetText("edited")
	if note.Text() != "nice" {
		t.Error("read-only text accepted input")
	}

	f.Reset()
	if note.Disabled || note.Text() != "" || wb.SliderValue() != 5 {
		t.Error("Reset did not restore defaults")
	}
}

func TestFormRelabel(t *testing.T) {
	f := NewForm()
	f.Render(FallbackQuestions(NewCatalog("de")))
	reasons, _ := f.Binding("reasons")
	reasons.Toggle("ruhe")

	f.Relabel(FallbackQuestions(NewCatalog("en")))
	if reasons.Label() != "What contributes to your (un)wellbeing?" {
		t.Errorf("label = %q", reasons.Label())
	}
	if got := reasons.Selected(); len(got) != 1 || got[0] != "ruhe" {
		t.Errorf("relabel lost selection: %v", got)
	}
}
