package pinfield

import (
	"sort"

	"github.com/golang/geo/r3"
	"github.com/tanema/gween/ease"
)

const (
	pinBaseLift     = 0.35
	clusterLift     = 0.4
	pinOrbRadius    = 0.18
	pinHitRadius    = pinOrbRadius * 1.25
	clusterHitRange = 0.35
)

// MarkerKind distinguishes what a Marker stands for.
type MarkerKind uint8

const (
	MarkerPin MarkerKind = iota
	MarkerCluster
	MarkerDraft
)

// Marker is one drawable item of the pin layer: a single pin, a cluster
// badge, or the unsent draft.
type Marker struct {
	Kind MarkerKind
	// Pin is the represented pin for MarkerPin and MarkerDraft.
	Pin Pin
	// Count is the number of clustered pins for MarkerCluster.
	Count int
	// Anchor is the resting world position of the marker.
	Anchor r3.Vector
	Color  Color
	// Lift and Glow are animated by hover and selection.
	Lift float64
	Glow float64

	Hovered  bool
	Selected bool

	tween *TweenGroup
}

func newPinMarker(p Pin, c Color) *Marker {
	return &Marker{
		Kind:   MarkerPin,
		Pin:    p,
		Count:  1,
		Anchor: r3.Vector{X: p.Position.X, Y: p.Position.Y + pinBaseLift, Z: p.Position.Z},
		Color:  c,
		Glow:   glowRest,
	}
}

func newDraftMarker(p Pin, c Color) *Marker {
	m := newPinMarker(p, c)
	m.Kind = MarkerDraft
	return m
}

func newClusterMarker(cl Cluster) *Marker {
	return &Marker{
		Kind:   MarkerCluster,
		Count:  len(cl.Pins),
		Anchor: r3.Vector{X: cl.World.X, Y: cl.World.Y + clusterLift, Z: cl.World.Z},
		Color:  NeutralColor,
		Glow:   glowRest,
	}
}

// Position is the rendered world position: the anchor raised by Lift.
func (m *Marker) Position() r3.Vector {
	p := m.Anchor
	p.Y += m.Lift
	return p
}

// Emissive returns the marker color scaled by its glow.
func (m *Marker) Emissive() Color {
	return m.Color.Scale(m.Glow)
}

// Highlighted reports whether the marker is hovered or selected.
func (m *Marker) Highlighted() bool {
	return m.Hovered || m.Selected
}

// hitRadius is the picking radius, slightly larger than the drawn orb.
func (m *Marker) hitRadius() float64 {
	if m.Kind == MarkerCluster {
		return clusterHitRange
	}
	return pinHitRadius
}

func (m *Marker) setHovered(on bool) {
	if m.Hovered == on {
		return
	}
	was := m.Highlighted()
	m.Hovered = on
	m.retween(was)
}

func (m *Marker) setSelected(on bool) {
	if m.Selected == on {
		return
	}
	was := m.Highlighted()
	m.Selected = on
	m.retween(was)
}

func (m *Marker) retween(was bool) {
	if now := m.Highlighted(); now != was {
		m.tween = TweenHighlight(m, now, hoverDuration, ease.OutQuad)
	}
}

func (m *Marker) update(dt float32) {
	if m.tween == nil {
		return
	}
	m.tween.Update(dt)
	if m.tween.Done {
		m.tween = nil
	}
}

// Hit is one marker intersected by a picking ray.
type Hit struct {
	Marker   *Marker
	Distance float64
}

// IntersectMarkers returns the markers hit by ray, nearest first. Cluster
// badges are only included when withClusters is set.
func IntersectMarkers(ray Ray, markers []*Marker, withClusters bool) []Hit {
	var hits []Hit
	for _, m := range markers {
		if m.Kind == MarkerCluster && !withClusters {
			continue
		}
		if t, ok := ray.IntersectSphere(m.Position(), m.hitRadius()); ok {
			hits = append(hits, Hit{Marker: m, Distance: t})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	return hits
}
