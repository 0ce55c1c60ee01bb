package ecs

import (
	"testing"

	"github.com/golang/geo/r3"
	"github.com/phanxgames/pinfield"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

func TestNewDonburiStore(t *testing.T) {
	world := donburi.NewWorld()
	store := NewDonburiStore(world)
	if store == nil {
		t.Fatal("NewDonburiStore returned nil")
	}
}

func TestDonburiStore_EmitEvent(t *testing.T) {
	world := donburi.NewWorld()
	store := NewDonburiStore(world)

	var received []pinfield.AnnotationEvent
	AnnotationEventType.Subscribe(world, func(w donburi.World, e pinfield.AnnotationEvent) {
		received = append(received, e)
	})

	store.EmitEvent(pinfield.AnnotationEvent{
		Type:     pinfield.EventPinClicked,
		PinID:    "42",
		Floor:    2,
		Position: r3.Vector{X: 1, Y: 5.9, Z: -3},
	})
	store.EmitEvent(pinfield.AnnotationEvent{
		Type: pinfield.EventModeChanged,
		Mode: pinfield.ModePlacementArmed,
	})

	// Events are queued until processed.
	if len(received) != 0 {
		t.Fatal("events delivered before ProcessEvents")
	}
	AnnotationEventType.ProcessEvents(world)

	if len(received) != 2 {
		t.Fatalf("expected 2 events, got %d", len(received))
	}
	e0 := received[0]
	if e0.Type != pinfield.EventPinClicked || e0.PinID != "42" || e0.Floor != 2 {
		t.Errorf("event 0: %+v", e0)
	}
	if e0.Position.X != 1 || e0.Position.Z != -3 {
		t.Errorf("event 0 position: %v", e0.Position)
	}
	if e1 := received[1]; e1.Type != pinfield.EventModeChanged || e1.Mode != pinfield.ModePlacementArmed {
		t.Errorf("event 1: %+v", e1)
	}
}

func TestDonburiStore_ImplementsEventSink(t *testing.T) {
	world := donburi.NewWorld()
	var sink pinfield.EventSink = NewDonburiStore(world)
	_ = sink // compile-time interface check
}

func TestDonburiStore_MultipleSubscribers(t *testing.T) {
	world := donburi.NewWorld()
	store := NewDonburiStore(world)

	var count1, count2 int
	AnnotationEventType.Subscribe(world, func(w donburi.World, e pinfield.AnnotationEvent) {
		count1++
	})
	AnnotationEventType.Subscribe(world, func(w donburi.World, e pinfield.AnnotationEvent) {
		count2++
	})

	store.EmitEvent(pinfield.AnnotationEvent{Type: pinfield.EventPinsLoaded})
	events.ProcessAllEvents(world)

	if count1 != 1 || count2 != 1 {
		t.Errorf("expected both subscribers called once, got %d and %d", count1, count2)
	}
}

func TestDraftMirror(t *testing.T) {
	world := donburi.NewWorld()
	store := NewDonburiStore(world)
	mirror := NewDraftMirror(world)

	store.EmitEvent(pinfield.AnnotationEvent{Type: pinfield.EventDraftPlaced, PinID: "local-1", Floor: 1, Position: r3.Vector{X: 2}})
	events.ProcessAllEvents(world)
	d, ok := mirror.Current()
	if !ok || d.PinID != "local-1" || d.Floor != 1 || d.Position.X != 2 {
		t.Fatalf("draft = %+v, %v", d, ok)
	}

	// Replacing the draft reuses the entity.
	store.EmitEvent(pinfield.AnnotationEvent{Type: pinfield.EventDraftPlaced, PinID: "local-2", Floor: 0})
	events.ProcessAllEvents(world)
	if d, _ := mirror.Current(); d.PinID != "local-2" {
		t.Errorf("draft after replace = %+v", d)
	}
	if n := world.Len(); n != 1 {
		t.Errorf("world has %d entities, want 1", n)
	}

	store.EmitEvent(pinfield.AnnotationEvent{Type: pinfield.EventSubmitted, PinID: "srv-1"})
	events.ProcessAllEvents(world)
	if _, ok := mirror.Current(); ok {
		t.Error("draft still mirrored after submit")
	}
	if n := world.Len(); n != 0 {
		t.Errorf("world has %d entities after submit", n)
	}
}
