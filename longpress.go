package pinfield

import "time"

const (
	// LongPressDuration is how long a touch must be held to place a pin.
	LongPressDuration = 600 * time.Millisecond
	// LongPressMoveTolerance is how far in pixels a held touch may drift.
	LongPressMoveTolerance = 10.0
	// HapticPulse is the vibration length emitted when a long press fires.
	HapticPulse = 50 * time.Millisecond
	// contextMenuHold keeps the context menu suppressed after a long press.
	contextMenuHold = 200 * time.Millisecond
)

// Haptics is implemented by hosts that can vibrate.
type Haptics interface {
	Vibrate(d time.Duration)
}

// longPressTracker times a single held touch. Only the first finger is
// tracked; a second finger cancels the gesture.
type longPressTracker struct {
	active     bool
	pointerID  int
	originX    float64
	originY    float64
	startedAt  time.Time
	suppressTo time.Time
}

func (l *longPressTracker) start(id int, x, y float64, now time.Time) {
	l.active = true
	l.pointerID = id
	l.originX, l.originY = x, y
	l.startedAt = now
}

func (l *longPressTracker) cancel() {
	l.active = false
}

// move cancels the press when the tracked pointer drifts beyond the tolerance.
func (l *longPressTracker) move(id int, x, y float64) {
	if !l.active || id != l.pointerID {
		return
	}
	dx := x - l.originX
	dy := y - l.originY
	if dx*dx+dy*dy > LongPressMoveTolerance*LongPressMoveTolerance {
		l.cancel()
	}
}

// release cancels the press when the tracked pointer lifts or is cancelled.
func (l *longPressTracker) release(id int) {
	if l.active && id == l.pointerID {
		l.cancel()
	}
}

// tick fires the press once the hold duration has elapsed and returns the
// origin. Firing ends tracking and opens the context-menu suppression window.
func (l *longPressTracker) tick(now time.Time) (x, y float64, fired bool) {
	if !l.active || now.Sub(l.startedAt) < LongPressDuration {
		return 0, 0, false
	}
	l.active = false
	l.suppressTo = now.Add(contextMenuHold)
	return l.originX, l.originY, true
}

// progress returns how far the hold has advanced in [0, 1].
func (l *longPressTracker) progress(now time.Time) float64 {
	if !l.active {
		return 0
	}
	return clamp01(float64(now.Sub(l.startedAt)) / float64(LongPressDuration))
}

// suppressContextMenu reports whether a context menu should be blocked: while
// a press is being held and briefly after one fired.
func (l *longPressTracker) suppressContextMenu(now time.Time) bool {
	return l.active || now.Before(l.suppressTo)
}
