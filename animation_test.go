package pinfield

import (
	"math"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	"github.com/tanema/gween/ease"
)

func TestTweenHighlight(t *testing.T) {
	m := newPinMarker(testPin("1", 0, 0, 0), Palette[0])
	g := TweenHighlight(m, true, 0.5, ease.Linear)

	g.Update(0.25)
	if math.Abs(m.Lift-hoverLift/2) > 1e-6 {
		t.Errorf("Lift at half time = %v, want %v", m.Lift, hoverLift/2)
	}
	if g.Done {
		t.Error("Done before the duration elapsed")
	}
	g.Update(0.25)
	if !g.Done {
		t.Error("not Done after the duration")
	}
	if math.Abs(m.Lift-hoverLift) > 1e-6 || math.Abs(m.Glow-glowHighlight) > 1e-6 {
		t.Errorf("Lift %v Glow %v, want highlighted values", m.Lift, m.Glow)
	}

	back := TweenHighlight(m, false, 0.5, ease.Linear)
	back.Update(1)
	if math.Abs(m.Lift) > 1e-6 || math.Abs(m.Glow-glowRest) > 1e-6 {
		t.Errorf("Lift %v Glow %v, want rest values", m.Lift, m.Glow)
	}
}

func TestMarkerHoverAndSelection(t *testing.T) {
	m := newPinMarker(testPin("1", 0, 0, 0), Palette[0])
	m.setHovered(true)
	if m.tween == nil {
		t.Fatal("hover did not start a tween")
	}
	for i := 0; i < 10; i++ {
		m.update(0.1)
	}
	if m.tween != nil {
		t.Error("finished tween not cleared")
	}
	if math.Abs(m.Lift-hoverLift) > 1e-6 {
		t.Errorf("Lift = %v, want %v", m.Lift, hoverLift)
	}
	rest := m.Anchor.Y
	if got := m.Position().Y; math.Abs(got-(rest+hoverLift)) > 1e-6 {
		t.Errorf("Position().Y = %v", got)
	}

	// Selection keeps the highlight when hover ends.
	m.setSelected(true)
	m.setHovered(false)
	if m.tween != nil || !m.Highlighted() {
		t.Error("selected marker lost its highlight")
	}
	m.setSelected(false)
	if m.tween == nil {
		t.Error("clearing the last highlight did not tween back")
	}
}

func TestIntersectMarkers(t *testing.T) {
	near := newPinMarker(testPin("near", 0, 0, 0), Palette[0])
	far := newPinMarker(testPin("far", 0, 0, 0), Palette[0])
	far.Anchor.Y -= 1
	cluster := newClusterMarker(newCluster(testPin("c", 0, 0, 0), r2.Point{}, r3.Vector{}, true))

	down := Ray{Origin: r3.Vector{Y: 50}, Dir: r3.Vector{Y: -1}}
	hits := IntersectMarkers(down, []*Marker{far, cluster, near}, false)
	if len(hits) != 2 || hits[0].Marker != near || hits[1].Marker != far {
		t.Errorf("hits without clusters = %+v", hits)
	}
	hits = IntersectMarkers(down, []*Marker{far, cluster, near}, true)
	if len(hits) != 3 {
		t.Errorf("hits with clusters = %d, want 3", len(hits))
	}

	miss := Ray{Origin: r3.Vector{X: 1, Y: 50}, Dir: r3.Vector{Y: -1}}
	if hits := IntersectMarkers(miss, []*Marker{near}, true); len(hits) != 0 {
		t.Errorf("miss hit %d markers", len(hits))
	}
}
