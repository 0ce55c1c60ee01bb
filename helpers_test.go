package pinfield

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
)

// topDownCamera looks straight down at the XZ plane: one world unit is ten
// pixels and the world origin sits at the center of an 800x600 surface.
type topDownCamera struct {
	distance float64
}

const (
	topDownScale = 10.0
	topDownW     = 800.0
	topDownH     = 600.0
)

func newTopDownCamera() *topDownCamera { return &topDownCamera{distance: 20} }

func (c *topDownCamera) Project(world r3.Vector) (r2.Point, bool) {
	return r2.Point{X: topDownW/2 + world.X*topDownScale, Y: topDownH/2 + world.Z*topDownScale}, true
}

func (c *topDownCamera) PickRay(ndc r2.Point) Ray {
	sx := (ndc.X + 1) / 2 * topDownW
	sy := (1 - ndc.Y) / 2 * topDownH
	return Ray{
		Origin: r3.Vector{X: (sx - topDownW/2) / topDownScale, Y: 100, Z: (sy - topDownH/2) / topDownScale},
		Dir:    r3.Vector{Y: -1},
	}
}

func (c *topDownCamera) Distance() float64            { return c.distance }
func (c *topDownCamera) ViewportSize() (w, h float64) { return topDownW, topDownH }

// screenOf returns the surface pixel where a pin's marker is drawn.
func screenOf(p Pin) (x, y float64) {
	return topDownW/2 + p.Position.X*topDownScale, topDownH/2 + p.Position.Z*topDownScale
}

type fakeClock struct{ t time.Time }

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 5, 6, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type fakeBackend struct {
	pins      []Pin
	listErr   error
	createErr error
	created   []Submission
	lists     int
	nextID    int
	approved  Approval
}

func (b *fakeBackend) List(ctx context.Context) ([]Pin, error) {
	b.lists++
	if b.listErr != nil {
		return nil, b.listErr
	}
	out := make([]Pin, len(b.pins))
	copy(out, b.pins)
	return out, nil
}

func (b *fakeBackend) Create(ctx context.Context, sub Submission) (Pin, error) {
	b.created = append(b.created, sub)
	if b.createErr != nil {
		return Pin{}, b.createErr
	}
	b.nextID++
	return Pin{
		ID:        PinID("srv-" + string(rune('0'+b.nextID))),
		Approved:  b.approved,
		Wellbeing: math.NaN(),
	}, nil
}

type fakeQuestionnaire struct {
	questions map[string][]Question
	err       error
	calls     []string
}

func (f *fakeQuestionnaire) Questions(ctx context.Context, lang string) ([]Question, error) {
	f.calls = append(f.calls, lang)
	if f.err != nil {
		return nil, f.err
	}
	return f.questions[lang], nil
}

var errBoom = errors.New("boom")

type recordingSink struct {
	events []AnnotationEvent
}

func (s *recordingSink) EmitEvent(e AnnotationEvent) { s.events = append(s.events, e) }

func (s *recordingSink) types() []EventType {
	out := make([]EventType, len(s.events))
	for i, e := range s.events {
		out[i] = e.Type
	}
	return out
}

// newTestAnnotator returns an annotator over a top-down camera whose network
// work runs synchronously; results still apply on the next Update.
func newTestAnnotator(backend PinBackend) (*Annotator, *fakeClock) {
	clock := newFakeClock()
	a := New(Options{
		Camera:  newTopDownCamera(),
		Backend: backend,
		Clock:   clock.Now,
		Go:      func(f func()) { f() },
	})
	return a, clock
}

func testPin(id string, floor int, x, z float64) Pin {
	return Pin{
		ID:        PinID(id),
		Floor:     floor,
		Position:  r3.Vector{X: x, Y: DefaultBuildingFloors.SlabTop(floor), Z: z},
		Approved:  ApprovalApproved,
		Wellbeing: math.NaN(),
	}
}

func sliderQuestion(key string, min, max, step float64) Question {
	return Question{Key: key, Kind: KindSlider, Config: NewSliderConfig(min, max, step)}
}
