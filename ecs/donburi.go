package ecs

import (
	"github.com/golang/geo/r3"
	"github.com/phanxgames/pinfield"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// AnnotationEventType is the Donburi event type for pinfield annotation events.
var AnnotationEventType = events.NewEventType[pinfield.AnnotationEvent]()

type donburiStore struct {
	world donburi.World
}

// NewDonburiStore creates an EventSink backed by a Donburi world.
// Annotation events are published to AnnotationEventType and can be
// consumed with events.Subscribe and ProcessEvents.
func NewDonburiStore(world donburi.World) pinfield.EventSink {
	return &donburiStore{world: world}
}

func (s *donburiStore) EmitEvent(event pinfield.AnnotationEvent) {
	AnnotationEventType.Publish(s.world, event)
}

// --- Draft mirror ---

// DraftData is the component stored on the draft entity.
type DraftData struct {
	PinID    pinfield.PinID
	Floor    int
	Position r3.Vector
}

// Draft is the component type of the draft entity.
var Draft = donburi.NewComponentType[DraftData]()

// DraftMirror keeps at most one entity carrying Draft in step with the
// annotator's unsent draft. It reacts to processed AnnotationEventType events.
type DraftMirror struct {
	world  donburi.World
	entity donburi.Entity
}

// NewDraftMirror subscribes a mirror to world's annotation events.
func NewDraftMirror(world donburi.World) *DraftMirror {
	m := &DraftMirror{world: world, entity: donburi.Null}
	AnnotationEventType.Subscribe(world, m.handle)
	return m
}

func (m *DraftMirror) handle(w donburi.World, e pinfield.AnnotationEvent) {
	switch e.Type {
	case pinfield.EventDraftPlaced:
		if !m.valid() {
			m.entity = w.Create(Draft)
		}
		Draft.SetValue(w.Entry(m.entity), DraftData{PinID: e.PinID, Floor: e.Floor, Position: e.Position})
	case pinfield.EventDraftDiscarded, pinfield.EventSubmitted:
		if m.valid() {
			w.Remove(m.entity)
		}
		m.entity = donburi.Null
	}
}

func (m *DraftMirror) valid() bool {
	return m.entity != donburi.Null && m.world.Valid(m.entity)
}

// Current returns the mirrored draft, if any.
func (m *DraftMirror) Current() (DraftData, bool) {
	if !m.valid() {
		return DraftData{}, false
	}
	return *Draft.Get(m.world.Entry(m.entity)), true
}
