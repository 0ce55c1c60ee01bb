package pinfield

type injectKind uint8

const (
	injectDown injectKind = iota
	injectMove
	injectUp
)

// syntheticPointerEvent is a single queued pointer event in surface pixels.
type syntheticPointerEvent struct {
	kind  injectKind
	event PointerEvent
}

func (a *Annotator) inject(kind injectKind, x, y float64, typ PointerType) {
	a.injectQueue = append(a.injectQueue, syntheticPointerEvent{
		kind:  kind,
		event: PointerEvent{Type: typ, X: x, Y: y, Button: MouseButtonLeft},
	})
}

// InjectPress queues a left-button mouse press at the given surface
// coordinates. The event is consumed on the next Update.
func (a *Annotator) InjectPress(x, y float64) { a.inject(injectDown, x, y, PointerMouse) }

// InjectMove queues a mouse move. Between InjectPress and InjectRelease it
// drags; otherwise it hovers.
func (a *Annotator) InjectMove(x, y float64) { a.inject(injectMove, x, y, PointerMouse) }

// InjectRelease queues a left-button mouse release.
func (a *Annotator) InjectRelease(x, y float64) { a.inject(injectUp, x, y, PointerMouse) }

// InjectTouchPress queues a touch contact. Hold it across enough Updates and
// it becomes a long press.
func (a *Annotator) InjectTouchPress(x, y float64) { a.inject(injectDown, x, y, PointerTouch) }

// InjectTouchRelease queues the end of a touch contact.
func (a *Annotator) InjectTouchRelease(x, y float64) { a.inject(injectUp, x, y, PointerTouch) }

// InjectClick queues a press followed by a release at the same coordinates.
// Consumes two frames.
func (a *Annotator) InjectClick(x, y float64) {
	a.InjectPress(x, y)
	a.InjectRelease(x, y)
}

// InjectDrag queues a full drag: press at (fromX, fromY), frames-2
// interpolated moves and a release at (toX, toY). Minimum frames is 2.
func (a *Annotator) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	a.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		a.InjectMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
	a.InjectRelease(toX, toY)
}

// processInjected pops one event from the inject queue and feeds it to the
// gesture controller. It reports whether an event was consumed.
func (a *Annotator) processInjected() bool {
	if len(a.injectQueue) == 0 {
		return false
	}
	evt := a.injectQueue[0]
	copy(a.injectQueue, a.injectQueue[1:])
	a.injectQueue = a.injectQueue[:len(a.injectQueue)-1]

	switch evt.kind {
	case injectDown:
		a.gestures.PointerDown(evt.event, a.now())
	case injectMove:
		a.gestures.PointerMove(evt.event)
	case injectUp:
		a.gestures.PointerUp(evt.event)
	}
	return true
}
