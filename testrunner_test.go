package pinfield

import (
	"strings"
	"testing"
)

func TestLoadTestScript(t *testing.T) {
	data := []byte(`{
		"steps": [
			{"action": "toggle"},
			{"action": "click", "x": 100, "y": 200},
			{"action": "wait", "frames": 3},
			{"action": "slider", "key": "wellbeing", "value": 8}
		]
	}`)

	runner, err := LoadTestScript(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runner.steps) != 4 {
		t.Fatalf("expected 4 steps, got %d", len(runner.steps))
	}
	if runner.steps[1].Action != "click" || runner.steps[1].X != 100 || runner.steps[1].Y != 200 {
		t.Error("step 1 mismatch")
	}
	if runner.steps[2].Frames != 3 {
		t.Error("step 2 mismatch")
	}
	if runner.steps[3].Key != "wellbeing" || runner.steps[3].Value != 8 {
		t.Error("step 3 mismatch")
	}
}

func TestLoadTestScript_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"not json", `not json`, "parse test script"},
		{"empty", `{"steps": []}`, "no steps"},
		{"unknown action", `{"steps": [{"action": "click"}, {"action": "screenshot"}]}`, `step 1: unknown action "screenshot"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadTestScript([]byte(tt.data))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want %q", err, tt.want)
			}
		})
	}
}

func runScript(t *testing.T, a *Annotator, script string) *TestRunner {
	t.Helper()
	runner, err := LoadTestScript([]byte(script))
	if err != nil {
		t.Fatalf("LoadTestScript: %v", err)
	}
	a.SetTestRunner(runner)
	for i := 0; i < 50 && !runner.Done(); i++ {
		a.Update()
	}
	if !runner.Done() {
		t.Fatal("script did not finish")
	}
	a.Update()
	return runner
}

func TestRunnerPlacesAndSubmits(t *testing.T) {
	backend := &fakeBackend{}
	a, _ := newTestAnnotator(backend)
	runner := runScript(t, a, `{"steps": [
		{"action": "toggle"},
		{"action": "click", "x": 450, "y": 300},
		{"action": "slider", "key": "wellbeing", "value": 8},
		{"action": "choose", "key": "reasons", "text": "licht"},
		{"action": "choose", "key": "group", "text": "staff"},
		{"action": "text", "key": "note", "text": "bright"},
		{"action": "submit"}
	]}`)

	if errs := runner.Errors(); len(errs) != 0 {
		t.Fatalf("errors = %v", errs)
	}
	if len(backend.created) != 1 {
		t.Fatalf("created %d pins, want 1", len(backend.created))
	}
	sub := backend.created[0]
	if v, ok := sub.Answers["wellbeing"].Number(); !ok || v != 8 {
		t.Errorf("wellbeing = %v, %v", v, ok)
	}
	if got := sub.Answers["reasons"].Choices(); len(got) != 1 || got[0] != "licht" {
		t.Errorf("reasons = %v", got)
	}
	if got := sub.Answers["note"].Text(); got != "bright" {
		t.Errorf("note = %q", got)
	}
	if a.DraftState() != NoDraft || a.Mode() == ModeFormOpen {
		t.Errorf("after submit: draft %s mode %s", a.DraftState(), a.Mode())
	}
}

func TestRunnerSubmitWithoutDraft(t *testing.T) {
	a, _ := newTestAnnotator(&fakeBackend{})
	runner := runScript(t, a, `{"steps": [{"action": "submit"}]}`)
	errs := runner.Errors()
	if len(errs) != 1 || !strings.Contains(errs[0].Error(), "step 0") {
		t.Errorf("errors = %v", errs)
	}
}

func TestRunnerWaitAndEscape(t *testing.T) {
	a, _ := newTestAnnotator(&fakeBackend{})
	runner, err := LoadTestScript([]byte(`{"steps": [
		{"action": "toggle"},
		{"action": "wait", "frames": 3},
		{"action": "escape"}
	]}`))
	if err != nil {
		t.Fatal(err)
	}
	a.SetTestRunner(runner)

	a.Update() // toggle
	if a.Mode() != ModePlacementArmed {
		t.Fatalf("mode = %s after toggle", a.Mode())
	}
	for i := 0; i < 3; i++ {
		a.Update()
		if a.Mode() != ModePlacementArmed {
			t.Fatalf("escape ran during wait frame %d", i)
		}
	}
	a.Update()
	if a.Mode() != ModeIdle || !runner.Done() {
		t.Errorf("mode %s done %v", a.Mode(), runner.Done())
	}
}

func TestRunnerFloorStep(t *testing.T) {
	a, _ := newTestAnnotator(&fakeBackend{})
	runScript(t, a, `{"steps": [{"action": "floor", "floor": 2}]}`)
	if a.ActiveFloor() != 2 {
		t.Errorf("ActiveFloor = %d", a.ActiveFloor())
	}
}
