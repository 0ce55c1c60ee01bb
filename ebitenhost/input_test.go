package ebitenhost

import (
	"testing"

	"github.com/golang/geo/r3"

	"github.com/phanxgames/pinfield"
)

func kinds(acts []pointerAction) []actionKind {
	out := make([]actionKind, len(acts))
	for i, a := range acts {
		out[i] = a.kind
	}
	return out
}

func equalKinds(a, b []actionKind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestPointerTrackerMouse(t *testing.T) {
	tr := newPointerTracker(nil)
	steps := []struct {
		name   string
		sample mouseSample
		want   []actionKind
	}{
		{"first sample only records", mouseSample{X: 10, Y: 10}, nil},
		{"still", mouseSample{X: 10, Y: 10}, nil},
		{"move", mouseSample{X: 12, Y: 10}, []actionKind{actionMove}},
		{"press", mouseSample{X: 12, Y: 10, Left: true}, []actionKind{actionDown}},
		{"hold", mouseSample{X: 12, Y: 10, Left: true}, nil},
		{"drag", mouseSample{X: 20, Y: 15, Left: true}, []actionKind{actionMove}},
		{"release", mouseSample{X: 20, Y: 15}, []actionKind{actionUp}},
	}
	for _, st := range steps {
		got := tr.frame(st.sample, nil)
		if !equalKinds(kinds(got), st.want) {
			t.Fatalf("%s: actions = %v, want %v", st.name, kinds(got), st.want)
		}
		for _, a := range got {
			if a.event.Type != pinfield.PointerMouse || a.event.ID != 0 {
				t.Errorf("%s: event = %+v", st.name, a.event)
			}
		}
	}
}

func TestPointerTrackerRightButton(t *testing.T) {
	tr := newPointerTracker(nil)
	tr.frame(mouseSample{}, nil)
	down := tr.frame(mouseSample{Right: true}, nil)
	// Pressing left while right is held does not change the pointer's button.
	tr.frame(mouseSample{Right: true, Left: true}, nil)
	up := tr.frame(mouseSample{}, nil)
	if len(down) != 1 || down[0].event.Button != pinfield.MouseButtonRight {
		t.Errorf("down = %+v", down)
	}
	if len(up) != 1 || up[0].event.Button != pinfield.MouseButtonRight {
		t.Errorf("up = %+v", up)
	}
}

func TestPointerTrackerTouches(t *testing.T) {
	tr := newPointerTracker(nil)
	mouse := mouseSample{}
	tr.frame(mouse, nil)

	got := tr.frame(mouse, []touchSample{{ID: 7, X: 100, Y: 100}})
	if len(got) != 1 || got[0].kind != actionDown || got[0].event.Type != pinfield.PointerTouch || got[0].event.ID != 1 {
		t.Fatalf("touch start = %+v", got)
	}

	got = tr.frame(mouse, []touchSample{{ID: 7, X: 104, Y: 100}, {ID: 9, X: 300, Y: 300}})
	if !equalKinds(kinds(got), []actionKind{actionMove, actionDown}) {
		t.Fatalf("second frame = %v", kinds(got))
	}
	if got[1].event.ID != 2 {
		t.Errorf("second touch id = %d, want 2", got[1].event.ID)
	}

	got = tr.frame(mouse, []touchSample{{ID: 9, X: 300, Y: 300}})
	if len(got) != 1 || got[0].kind != actionUp || got[0].event.ID != 1 || got[0].event.X != 104 {
		t.Errorf("lift = %+v", got)
	}
}

func TestPointerTrackerOverUI(t *testing.T) {
	tr := newPointerTracker(func(x, y float64) bool { return x < 50 })
	tr.frame(mouseSample{X: 10, Y: 10}, nil)
	got := tr.frame(mouseSample{X: 10, Y: 10, Left: true}, nil)
	if len(got) != 1 || !got[0].event.OverUI {
		t.Errorf("press over panel = %+v", got)
	}
	got = tr.frame(mouseSample{X: 80, Y: 10}, nil)
	if len(got) != 2 || got[0].event.OverUI || got[1].event.OverUI {
		t.Errorf("release off panel = %+v", got)
	}
}

func TestDispatchReachesAnnotator(t *testing.T) {
	a := pinfield.New(pinfield.Options{
		Camera: pinfield.NewOrbitCamera(r3.Vector{Y: 15, Z: 10}, r3.Vector{}, 800, 600),
		Go: func(f func()) { f() },
	})
	a.TogglePlacement()
	pointerAction{actionDown, pinfield.PointerEvent{X: 400, Y: 300}}.dispatch(a)
	pointerAction{actionUp, pinfield.PointerEvent{X: 400, Y: 300}}.dispatch(a)
	if a.DraftState() != pinfield.DraftPlaced {
		t.Errorf("draft = %s after dispatched click", a.DraftState())
	}
}

func r3Vec(x, y, z float64) r3.Vector { return r3.Vector{X: x, Y: y, Z: z} }
