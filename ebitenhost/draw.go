package ebitenhost

import (
	"image/color"
	"math"
	"strconv"

	"github.com/golang/geo/r3"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/phanxgames/pinfield"
)

const (
	orbRadius      = 0.18 // world units
	minOrbPixels   = 4.0
	badgeMinPixels = 9.0
	gridHalfExtent = 12
	circleSegments = 20
)

var (
	backgroundColor = color.RGBA{0x1b, 0x1f, 0x27, 0xff}
	gridColor       = color.RGBA{0x3a, 0x42, 0x52, 0xff}
	badgeColor      = color.RGBA{0x2c, 0x33, 0x40, 0xf0}
	ringColor       = color.RGBA{0xff, 0xff, 0xff, 0xc0}
)

// toRGBA converts a pinfield color with channels in [0, 1] to premultiplied
// 8-bit RGBA.
func toRGBA(c pinfield.Color) color.RGBA {
	ch := func(v float64) uint8 {
		return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
	}
	return color.RGBA{R: ch(c.R * c.A), G: ch(c.G * c.A), B: ch(c.B * c.A), A: ch(c.A)}
}

// brighten mixes c toward white by glow in [0, 1].
func brighten(c pinfield.Color, glow float64) pinfield.Color {
	glow = math.Max(0, math.Min(1, glow))
	return pinfield.Color{
		R: c.R + (1-c.R)*glow,
		G: c.G + (1-c.G)*glow,
		B: c.B + (1-c.B)*glow,
		A: c.A,
	}
}

// screenRadius is the projected pixel radius of a sphere of world radius r
// at p, measured against the offset of its top.
func screenRadius(cam pinfield.Camera, p r3.Vector, r, min float64) (float64, bool) {
	c, ok := cam.Project(p)
	if !ok {
		return 0, false
	}
	top, ok := cam.Project(r3.Vector{X: p.X, Y: p.Y + r, Z: p.Z})
	if !ok {
		return min, true
	}
	return math.Max(min, math.Hypot(top.X-c.X, top.Y-c.Y)), true
}

// floorGrid appends the active floor's slab as a line grid.
func floorGrid(b *shapeBatch, cam pinfield.Camera, y float64) {
	for i := -gridHalfExtent; i <= gridHalfExtent; i += 2 {
		f := float64(i)
		worldLine(b, cam, r3.Vector{X: f, Y: y, Z: -gridHalfExtent}, r3.Vector{X: f, Y: y, Z: gridHalfExtent})
		worldLine(b, cam, r3.Vector{X: -gridHalfExtent, Y: y, Z: f}, r3.Vector{X: gridHalfExtent, Y: y, Z: f})
	}
}

func worldLine(b *shapeBatch, cam pinfield.Camera, from, to r3.Vector) {
	pa, okA := cam.Project(from)
	pb, okB := cam.Project(to)
	if !okA || !okB {
		return
	}
	b.line(pa.X, pa.Y, pb.X, pb.Y, 1, gridColor)
}

// badgeLabel is a cluster count waiting to be printed over its badge.
type badgeLabel struct {
	text string
	x, y int
}

// marker appends a pin orb or a cluster badge. Cluster counts are returned
// for printing after the shapes are flushed.
func marker(b *shapeBatch, cam pinfield.Camera, m *pinfield.Marker) (badgeLabel, bool) {
	pos := m.Position()
	c, ok := cam.Project(pos)
	if !ok {
		return badgeLabel{}, false
	}

	if m.Kind == pinfield.MarkerCluster {
		r, _ := screenRadius(cam, pos, orbRadius*1.6, badgeMinPixels)
		b.circle(c.X, c.Y, r, circleSegments, badgeColor)
		b.ring(c.X, c.Y, r, 1.5, circleSegments, ringColor)
		text := strconv.Itoa(m.Count)
		return badgeLabel{text: text, x: int(c.X) - len(text)*3, y: int(c.Y) - 8}, true
	}

	r, _ := screenRadius(cam, pos, orbRadius, minOrbPixels)
	b.circle(c.X, c.Y, r, circleSegments, toRGBA(brighten(m.Color, m.Glow)))
	if m.Highlighted() {
		b.ring(c.X, c.Y, r+2, 1.5, circleSegments, ringColor)
	}
	if m.Kind == pinfield.MarkerDraft {
		b.ring(c.X, c.Y, r+5, 1, circleSegments, ringColor)
	}
	return badgeLabel{}, false
}

// longPressRing appends the hold progress ring around a held touch.
func longPressRing(b *shapeBatch, x, y, progress float64) {
	if progress <= 0 {
		return
	}
	start := -math.Pi / 2
	b.arc(x, y, 26, 4, start, start+progress*2*math.Pi, 32, ringColor)
}

// drawScene draws the floor grid, markers and touch feedback.
func drawScene(dst *ebiten.Image, b *shapeBatch, cam pinfield.Camera, floorY float64, markers []*pinfield.Marker, hold func() (x, y, p float64, ok bool)) {
	floorGrid(b, cam, floorY)
	var labels []badgeLabel
	for _, m := range markers {
		if l, ok := marker(b, cam, m); ok {
			labels = append(labels, l)
		}
	}
	if x, y, p, ok := hold(); ok {
		longPressRing(b, x, y, p)
	}
	b.flush(dst)
	for _, l := range labels {
		ebitenutil.DebugPrintAt(dst, l.text, l.x, l.y)
	}
}
