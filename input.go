package pinfield

import (
	"time"

	"github.com/golang/geo/r3"
)

const defaultDragDeadZone = 4.0 // pixels

// PointerEvent is one pointer sample delivered by the host, in surface pixels.
type PointerEvent struct {
	// ID distinguishes simultaneous pointers. Mouse input uses 0.
	ID     int
	Type   PointerType
	X, Y   float64
	Button MouseButton
	// OverUI is set when the pointer is over interface chrome rather than
	// the 3D surface.
	OverUI bool
}

// --- Per-pointer state ---

type pointerState struct {
	down     bool
	startX   float64
	startY   float64
	dragging bool
	// consumed pointers never produce a click on release, e.g. after a
	// long press fired or a second finger joined.
	consumed bool
	button   MouseButton
	typ      PointerType
}

// --- Handler registry ---

// PinClickContext describes a click on an existing pin.
type PinClickContext struct {
	Pin Pin
	// Local is set for pins this session saved that the backend has not
	// listed yet.
	Local bool
}

// FloorClickContext describes a placement on the active floor.
type FloorClickContext struct {
	Floor    int
	Position r3.Vector
	// LongPress is set when the placement came from a held touch.
	LongPress bool
}

// SubmitContext describes the outcome of a submission.
type SubmitContext struct {
	Pin Pin
	Err error
}

type pinClickHandler struct {
	id uint32
	fn func(PinClickContext)
}

type floorClickHandler struct {
	id uint32
	fn func(FloorClickContext)
}

type submitHandler struct {
	id uint32
	fn func(SubmitContext)
}

type handlerRegistry struct {
	pinClicked   []pinClickHandler
	floorClicked []floorClickHandler
	submitted    []submitHandler
	nextID       uint32
}

// CallbackHandle allows removing a registered callback.
type CallbackHandle struct {
	id    uint32
	reg   *handlerRegistry
	event EventType
}

// Remove unregisters this callback so it no longer fires.
func (h CallbackHandle) Remove() {
	if h.reg == nil {
		return
	}
	switch h.event {
	case EventPinClicked:
		h.reg.pinClicked = removeHandler(h.reg.pinClicked, h.id, func(e pinClickHandler) uint32 { return e.id })
	case EventFloorClicked:
		h.reg.floorClicked = removeHandler(h.reg.floorClicked, h.id, func(e floorClickHandler) uint32 { return e.id })
	case EventSubmitted:
		h.reg.submitted = removeHandler(h.reg.submitted, h.id, func(e submitHandler) uint32 { return e.id })
	}
}

func removeHandler[T any](s []T, id uint32, idOf func(T) uint32) []T {
	for i := range s {
		if idOf(s[i]) == id {
			var zero T
			copy(s[i:], s[i+1:])
			s[len(s)-1] = zero
			return s[:len(s)-1]
		}
	}
	return s
}

// OnPinClicked registers a callback fired when an existing pin is clicked.
func (a *Annotator) OnPinClicked(fn func(PinClickContext)) CallbackHandle {
	a.handlers.nextID++
	id := a.handlers.nextID
	a.handlers.pinClicked = append(a.handlers.pinClicked, pinClickHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &a.handlers, event: EventPinClicked}
}

// OnFloorClicked registers a callback fired when a draft is placed on the floor.
func (a *Annotator) OnFloorClicked(fn func(FloorClickContext)) CallbackHandle {
	a.handlers.nextID++
	id := a.handlers.nextID
	a.handlers.floorClicked = append(a.handlers.floorClicked, floorClickHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &a.handlers, event: EventFloorClicked}
}

// OnSubmitted registers a callback fired when a submission completes, with
// or without error.
func (a *Annotator) OnSubmitted(fn func(SubmitContext)) CallbackHandle {
	a.handlers.nextID++
	id := a.handlers.nextID
	a.handlers.submitted = append(a.handlers.submitted, submitHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &a.handlers, event: EventSubmitted}
}

// --- Gesture recognition ---

// gestureTarget is what the gesture controller reads from and reports to.
type gestureTarget interface {
	interactionMode() Mode
	activeFloor() int
	pickables() []*Marker
	pinClicked(p Pin)
	floorClicked(floor int, at r3.Vector, longPress bool)
}

// GestureController turns raw pointer events into pin clicks, floor
// placements, hover state and touch long presses.
type GestureController struct {
	// DragDeadZone is how far in pixels a pointer may move and still click.
	DragDeadZone float64

	cam     Camera
	floors  FloorLayout
	target  gestureTarget
	haptics Haptics

	pointers  map[int]*pointerState
	touches   int
	longPress longPressTracker

	hoverPending bool
	hoverX       float64
	hoverY       float64
	hovered      *Marker

	controlsHold int
}

func newGestureController(cam Camera, floors FloorLayout, target gestureTarget, haptics Haptics) *GestureController {
	return &GestureController{
		DragDeadZone: defaultDragDeadZone,
		cam:          cam,
		floors:       floors,
		target:       target,
		haptics:      haptics,
		pointers:     make(map[int]*pointerState),
	}
}

func (g *GestureController) pointer(id int) *pointerState {
	st := g.pointers[id]
	if st == nil {
		st = &pointerState{}
		g.pointers[id] = st
	}
	return st
}

// PointerDown records a press. A single touch while idle starts the long
// press timer; a second touch cancels it and turns the gesture into a pinch.
// Touches over interface chrome still count toward the pinch but never click.
func (g *GestureController) PointerDown(e PointerEvent, now time.Time) {
	if e.Type != PointerTouch {
		if e.OverUI {
			return
		}
		st := g.pointer(e.ID)
		*st = pointerState{down: true, startX: e.X, startY: e.Y, button: e.Button, typ: e.Type}
		return
	}

	st := g.pointer(e.ID)
	*st = pointerState{down: true, startX: e.X, startY: e.Y, button: e.Button, typ: e.Type, consumed: e.OverUI}
	g.touches++
	if g.touches > 1 {
		g.longPress.cancel()
		for _, p := range g.pointers {
			if p.down && p.typ == PointerTouch {
				p.consumed = true
			}
		}
		return
	}
	if !e.OverUI && g.target.interactionMode() == ModeIdle {
		g.longPress.start(e.ID, e.X, e.Y, now)
	}
}

// PointerMove tracks drags and long-press drift, and schedules a hover pick
// for non-touch pointers. At most one hover pick is pending per frame; later
// moves only update its position.
func (g *GestureController) PointerMove(e PointerEvent) {
	g.longPress.move(e.ID, e.X, e.Y)

	if st := g.pointers[e.ID]; st != nil && st.down && !st.dragging {
		dx := e.X - st.startX
		dy := e.Y - st.startY
		if dx*dx+dy*dy > g.DragDeadZone*g.DragDeadZone {
			st.dragging = true
		}
	}

	if e.Type == PointerTouch {
		return
	}
	if e.OverUI {
		g.hoverPending = false
		g.setHover(nil)
		return
	}
	g.hoverPending = true
	g.hoverX, g.hoverY = e.X, e.Y
}

// PointerUp ends a press. A press that neither dragged nor was consumed is a
// click.
func (g *GestureController) PointerUp(e PointerEvent) {
	g.longPress.release(e.ID)
	st := g.pointers[e.ID]
	if st == nil {
		return
	}
	delete(g.pointers, e.ID)
	if st.typ == PointerTouch && g.touches > 0 {
		g.touches--
	}
	if !st.down || st.dragging || st.consumed || e.OverUI || st.button != MouseButtonLeft {
		return
	}
	g.click(e.X, e.Y)
}

// PointerCancel drops a pointer without clicking.
func (g *GestureController) PointerCancel(e PointerEvent) {
	g.longPress.release(e.ID)
	if st := g.pointers[e.ID]; st != nil {
		if st.typ == PointerTouch && g.touches > 0 {
			g.touches--
		}
		delete(g.pointers, e.ID)
	}
}

// PointerLeave clears hover when the pointer leaves the surface.
func (g *GestureController) PointerLeave() {
	g.hoverPending = false
	g.setHover(nil)
}

func (g *GestureController) click(x, y float64) {
	mode := g.target.interactionMode()
	if mode == ModeFormOpen {
		return
	}
	ray := g.rayAt(x, y)
	hits := IntersectMarkers(ray, g.target.pickables(), true)
	if len(hits) > 0 && hits[0].Marker.Kind == MarkerPin {
		g.target.pinClicked(hits[0].Marker.Pin)
		return
	}
	if mode == ModePlacementArmed {
		g.placeAt(ray, false)
	}
}

func (g *GestureController) placeAt(ray Ray, longPress bool) {
	floor := g.target.activeFloor()
	p, ok := ray.IntersectPlaneY(g.floors.SlabTop(floor))
	if !ok {
		return
	}
	g.target.floorClicked(floor, p, longPress)
}

func (g *GestureController) rayAt(x, y float64) Ray {
	w, h := g.cam.ViewportSize()
	return g.cam.PickRay(ScreenToNDC(x, y, w, h))
}

// update runs once per frame: it fires a due long press and flushes the
// pending hover pick.
func (g *GestureController) update(now time.Time) {
	if g.controlsHold > 0 {
		g.controlsHold--
	}
	id := g.longPress.pointerID
	if x, y, fired := g.longPress.tick(now); fired {
		if st := g.pointers[id]; st != nil {
			st.consumed = true
		}
		if g.haptics != nil {
			g.haptics.Vibrate(HapticPulse)
		}
		g.controlsHold = 1
		if g.target.interactionMode() == ModeIdle {
			g.placeAt(g.rayAt(x, y), true)
		}
	}
	if g.hoverPending {
		g.hoverPending = false
		g.flushHover()
	}
}

func (g *GestureController) flushHover() {
	if g.target.interactionMode() == ModeFormOpen {
		g.setHover(nil)
		return
	}
	hits := IntersectMarkers(g.rayAt(g.hoverX, g.hoverY), g.target.pickables(), false)
	if len(hits) == 0 {
		g.setHover(nil)
		return
	}
	g.setHover(hits[0].Marker)
}

func (g *GestureController) setHover(m *Marker) {
	if g.hovered == m {
		return
	}
	if g.hovered != nil {
		g.hovered.setHovered(false)
	}
	g.hovered = m
	if m != nil {
		m.setHovered(true)
	}
}

// rebind carries hover over to freshly built markers by pin id.
func (g *GestureController) rebind(markers []*Marker) {
	prev := g.hovered
	g.hovered = nil
	if prev == nil {
		return
	}
	for _, m := range markers {
		if m.Kind == prev.Kind && m.Kind != MarkerCluster && m.Pin.ID == prev.Pin.ID {
			m.Hovered = true
			m.Lift, m.Glow = hoverLift, glowHighlight
			g.hovered = m
			return
		}
	}
}

// Hovered returns the marker under the pointer, if any.
func (g *GestureController) Hovered() *Marker { return g.hovered }

// ControlsEnabled reports whether camera controls should react to pointer
// input: not while placement is armed and not on the frame after a long press.
func (g *GestureController) ControlsEnabled() bool {
	return g.target.interactionMode() != ModePlacementArmed && g.controlsHold == 0
}

// SuppressContextMenu reports whether the host should swallow a context
// menu request: during a held touch and shortly after a long press fired.
func (g *GestureController) SuppressContextMenu(now time.Time) bool {
	return g.longPress.suppressContextMenu(now)
}

// LongPressProgress returns the origin and completion of a held touch.
func (g *GestureController) LongPressProgress(now time.Time) (x, y, progress float64, ok bool) {
	if !g.longPress.active {
		return 0, 0, 0, false
	}
	return g.longPress.originX, g.longPress.originY, g.longPress.progress(now), true
}
