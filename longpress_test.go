package pinfield

import (
	"testing"
	"time"
)

func TestLongPressFiresAfterHold(t *testing.T) {
	clock := newFakeClock()
	var l longPressTracker
	l.start(1, 100, 100, clock.Now())

	clock.Advance(599 * time.Millisecond)
	if _, _, fired := l.tick(clock.Now()); fired {
		t.Fatal("fired before 600ms")
	}
	if p := l.progress(clock.Now()); p < 0.99 || p >= 1 {
		t.Errorf("progress = %v", p)
	}
	l.move(1, 105, 105) // within tolerance
	clock.Advance(time.Millisecond)
	x, y, fired := l.tick(clock.Now())
	if !fired || x != 100 || y != 100 {
		t.Fatalf("tick = %v, %v, %v; want origin and fired", x, y, fired)
	}
	if _, _, again := l.tick(clock.Now()); again {
		t.Error("fired twice")
	}
	if !l.suppressContextMenu(clock.Now().Add(199 * time.Millisecond)) {
		t.Error("context menu not suppressed right after firing")
	}
	if l.suppressContextMenu(clock.Now().Add(201 * time.Millisecond)) {
		t.Error("context menu suppressed after the hold window")
	}
}

func TestLongPressCancellation(t *testing.T) {
	tests := []struct {
		name   string
		cancel func(l *longPressTracker)
	}{
		{"move beyond tolerance", func(l *longPressTracker) { l.move(1, 111, 100) }},
		{"release", func(l *longPressTracker) { l.release(1) }},
		{"explicit cancel", func(l *longPressTracker) { l.cancel() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := newFakeClock()
			var l longPressTracker
			l.start(1, 100, 100, clock.Now())
			tt.cancel(&l)
			clock.Advance(time.Second)
			if _, _, fired := l.tick(clock.Now()); fired {
				t.Error("cancelled press fired")
			}
		})
	}
}

func TestLongPressIgnoresOtherPointers(t *testing.T) {
	clock := newFakeClock()
	var l longPressTracker
	l.start(1, 100, 100, clock.Now())
	l.move(2, 500, 500)
	l.release(2)
	clock.Advance(LongPressDuration)
	if _, _, fired := l.tick(clock.Now()); !fired {
		t.Error("another pointer cancelled the press")
	}
}
