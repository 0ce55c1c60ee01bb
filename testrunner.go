package pinfield

import (
	"context"
	"encoding/json"
	"fmt"
)

// testStep represents a single action in a test script.
type testStep struct {
	Action string  `json:"action"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
	FromX  float64 `json:"fromX,omitempty"`
	FromY  float64 `json:"fromY,omitempty"`
	ToX    float64 `json:"toX,omitempty"`
	ToY    float64 `json:"toY,omitempty"`
	Frames int     `json:"frames,omitempty"`
	Floor  int     `json:"floor,omitempty"`
	Key    string  `json:"key,omitempty"`
	Value  float64 `json:"value,omitempty"`
	Text   string  `json:"text,omitempty"`
}

// testScript is the top-level JSON structure for a test script.
type testScript struct {
	Steps []testStep `json:"steps"`
}

var knownActions = map[string]bool{
	"click": true, "drag": true, "press": true, "move": true, "release": true,
	"touch": true, "untouch": true, "wait": true, "toggle": true, "escape": true,
	"floor": true, "slider": true, "choose": true, "text": true, "submit": true,
}

// TestRunner sequences injected input and form edits across frames for
// scripted interaction tests. Attach to an Annotator via SetTestRunner.
type TestRunner struct {
	steps     []testStep
	cursor    int
	waitCount int
	done      bool
	errs      []error
}

// LoadTestScript parses a JSON test script and returns a TestRunner ready
// to be attached via SetTestRunner.
func LoadTestScript(jsonData []byte) (*TestRunner, error) {
	var script testScript
	if err := json.Unmarshal(jsonData, &script); err != nil {
		return nil, fmt.Errorf("parse test script: %w", err)
	}
	if len(script.Steps) == 0 {
		return nil, fmt.Errorf("parse test script: no steps")
	}
	for i, st := range script.Steps {
		if !knownActions[st.Action] {
			return nil, fmt.Errorf("parse test script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &TestRunner{steps: script.Steps}, nil
}

// SetTestRunner attaches a TestRunner. Its step method is called from
// Update before injected input is processed.
func (a *Annotator) SetTestRunner(runner *TestRunner) {
	a.testRunner = runner
}

// Done reports whether all steps in the test script have been executed.
func (r *TestRunner) Done() bool {
	return r.done
}

// Errors returns the errors returned by submit steps.
func (r *TestRunner) Errors() []error {
	return r.errs
}

// step advances the test runner by one frame. Called from Update.
func (r *TestRunner) step(a *Annotator) {
	if r.done {
		return
	}
	// Wait for pending injections to drain before advancing.
	if len(a.injectQueue) > 0 {
		return
	}
	if r.waitCount > 0 {
		r.waitCount--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}

	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "click":
		a.InjectClick(st.X, st.Y)
	case "drag":
		a.InjectDrag(st.FromX, st.FromY, st.ToX, st.ToY, st.Frames)
	case "press":
		a.InjectPress(st.X, st.Y)
	case "move":
		a.InjectMove(st.X, st.Y)
	case "release":
		a.InjectRelease(st.X, st.Y)
	case "touch":
		a.InjectTouchPress(st.X, st.Y)
	case "untouch":
		a.InjectTouchRelease(st.X, st.Y)
	case "wait":
		if st.Frames > 0 {
			r.waitCount = st.Frames - 1 // this frame counts as one
		}
	case "toggle":
		a.TogglePlacement()
	case "escape":
		a.HandleKey(KeyEscape)
	case "floor":
		a.SetActiveFloor(st.Floor)
	case "slider":
		if b, ok := a.form.Binding(st.Key); ok {
			b.SetSliderValue(st.Value)
		}
	case "choose":
		if b, ok := a.form.Binding(st.Key); ok {
			b.Toggle(st.Text)
		}
	case "text":
		if b, ok := a.form.Binding(st.Key); ok {
			b.SetText(st.Text)
		}
	case "submit":
		if err := a.Submit(context.Background()); err != nil {
			r.errs = append(r.errs, fmt.Errorf("step %d: %w", r.cursor-1, err))
		}
	}

	if r.cursor >= len(r.steps) && r.waitCount == 0 && len(a.injectQueue) == 0 {
		r.done = true
	}
}
