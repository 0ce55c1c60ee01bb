package ebitenhost

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/pinfield"
)

// mouseSample is the mouse state read in one frame.
type mouseSample struct {
	X, Y  float64
	Left  bool
	Right bool
}

// touchSample is one active touch read in one frame.
type touchSample struct {
	ID   ebiten.TouchID
	X, Y float64
}

// pointerTracker turns per-frame polled input into pointer events. Mouse
// input is pointer 0; touches get stable ids starting at 1.
type pointerTracker struct {
	mouseDown   bool
	mouseButton pinfield.MouseButton
	lastX       float64
	lastY       float64
	seenMouse   bool

	touches map[ebiten.TouchID]trackedTouch
	nextID  int

	// overUI reports whether a surface point is covered by HUD chrome.
	overUI func(x, y float64) bool
}

type actionKind uint8

const (
	actionDown actionKind = iota
	actionMove
	actionUp
)

// pointerAction is one event produced by the tracker.
type pointerAction struct {
	kind  actionKind
	event pinfield.PointerEvent
}

// dispatch forwards the action to the annotator.
func (p pointerAction) dispatch(a *pinfield.Annotator) {
	switch p.kind {
	case actionDown:
		a.PointerDown(p.event)
	case actionMove:
		a.PointerMove(p.event)
	case actionUp:
		a.PointerUp(p.event)
	}
}

type trackedTouch struct {
	id   int
	x, y float64
}

func newPointerTracker(overUI func(x, y float64) bool) *pointerTracker {
	if overUI == nil {
		overUI = func(x, y float64) bool { return false }
	}
	return &pointerTracker{touches: make(map[ebiten.TouchID]trackedTouch), overUI: overUI}
}

// frame compares this frame's samples with the previous one and returns the
// actions in delivery order: mouse first, then touches.
func (t *pointerTracker) frame(m mouseSample, touches []touchSample) []pointerAction {
	var out []pointerAction
	out = t.mouseFrame(out, m)
	out = t.touchFrame(out, touches)
	return out
}

func (t *pointerTracker) mouseFrame(out []pointerAction, m mouseSample) []pointerAction {
	ev := pinfield.PointerEvent{Type: pinfield.PointerMouse, X: m.X, Y: m.Y, OverUI: t.overUI(m.X, m.Y)}
	if !t.seenMouse || m.X != t.lastX || m.Y != t.lastY {
		if t.seenMouse {
			out = append(out, pointerAction{actionMove, ev})
		}
		t.seenMouse = true
		t.lastX, t.lastY = m.X, m.Y
	}

	pressed := m.Left || m.Right
	switch {
	case pressed && !t.mouseDown:
		t.mouseDown = true
		t.mouseButton = pinfield.MouseButtonLeft
		if !m.Left {
			t.mouseButton = pinfield.MouseButtonRight
		}
		ev.Button = t.mouseButton
		out = append(out, pointerAction{actionDown, ev})
	case !pressed && t.mouseDown:
		t.mouseDown = false
		ev.Button = t.mouseButton
		out = append(out, pointerAction{actionUp, ev})
	}
	return out
}

func (t *pointerTracker) touchFrame(out []pointerAction, touches []touchSample) []pointerAction {
	active := make(map[ebiten.TouchID]bool, len(touches))
	for _, s := range touches {
		active[s.ID] = true
		ev := pinfield.PointerEvent{Type: pinfield.PointerTouch, X: s.X, Y: s.Y, OverUI: t.overUI(s.X, s.Y)}
		tr, ok := t.touches[s.ID]
		if !ok {
			t.nextID++
			tr = trackedTouch{id: t.nextID, x: s.X, y: s.Y}
			t.touches[s.ID] = tr
			ev.ID = tr.id
			out = append(out, pointerAction{actionDown, ev})
			continue
		}
		if tr.x != s.X || tr.y != s.Y {
			tr.x, tr.y = s.X, s.Y
			t.touches[s.ID] = tr
			ev.ID = tr.id
			out = append(out, pointerAction{actionMove, ev})
		}
	}
	for tid, tr := range t.touches {
		if active[tid] {
			continue
		}
		delete(t.touches, tid)
		out = append(out, pointerAction{actionUp, pinfield.PointerEvent{
			ID: tr.id, Type: pinfield.PointerTouch, X: tr.x, Y: tr.y, OverUI: t.overUI(tr.x, tr.y),
		}})
	}
	return out
}

// pollPointers reads mouse and touch state from ebiten.
func (t *pointerTracker) pollPointers(buf []ebiten.TouchID) ([]pointerAction, []ebiten.TouchID) {
	mx, my := ebiten.CursorPosition()
	m := mouseSample{
		X:     float64(mx),
		Y:     float64(my),
		Left:  ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft),
		Right: ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight),
	}
	buf = ebiten.AppendTouchIDs(buf[:0])
	touches := make([]touchSample, len(buf))
	for i, tid := range buf {
		tx, ty := ebiten.TouchPosition(tid)
		touches[i] = touchSample{ID: tid, X: float64(tx), Y: float64(ty)}
	}
	return t.frame(m, touches), buf
}
