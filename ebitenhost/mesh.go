package ebitenhost

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// --- White pixel singleton (no sync.Once, the host is single-threaded) ---

var whitePixelImage *ebiten.Image

// ensureWhitePixel returns a lazily-initialized 1x1 white pixel image.
// Every shape below is drawn with it; color comes from the vertices.
func ensureWhitePixel() *ebiten.Image {
	if whitePixelImage == nil {
		whitePixelImage = ebiten.NewImage(1, 1)
		whitePixelImage.Fill(color.RGBA{R: 255, G: 255, B: 255, A: 255})
	}
	return whitePixelImage
}

// shapeBatch accumulates untextured triangles so a frame's markers go out in
// one DrawTriangles call.
type shapeBatch struct {
	verts []ebiten.Vertex
	inds  []uint16
}

func (b *shapeBatch) reset() {
	b.verts = b.verts[:0]
	b.inds = b.inds[:0]
}

// vertex appends one vertex mapped to the center of the white pixel and
// returns its index. Colors are premultiplied.
func (b *shapeBatch) vertex(x, y float64, c color.RGBA) uint16 {
	b.verts = append(b.verts, ebiten.Vertex{
		DstX:   float32(x),
		DstY:   float32(y),
		SrcX:   0.5,
		SrcY:   0.5,
		ColorR: float32(c.R) / 255,
		ColorG: float32(c.G) / 255,
		ColorB: float32(c.B) / 255,
		ColorA: float32(c.A) / 255,
	})
	return uint16(len(b.verts) - 1)
}

// circle appends a fan-triangulated disc. Vertex 0 of the fan is the hub.
func (b *shapeBatch) circle(cx, cy, r float64, segments int, c color.RGBA) {
	if segments < 3 || r <= 0 {
		return
	}
	hub := b.vertex(cx, cy, c)
	first := uint16(len(b.verts))
	for i := 0; i < segments; i++ {
		a := float64(i) / float64(segments) * 2 * math.Pi
		b.vertex(cx+r*math.Cos(a), cy+r*math.Sin(a), c)
	}
	for i := 0; i < segments; i++ {
		next := (i + 1) % segments
		b.inds = append(b.inds, hub, first+uint16(i), first+uint16(next))
	}
}

// arc appends a ring segment of the given width from angle start to end, in
// radians, as a triangle strip of quads.
func (b *shapeBatch) arc(cx, cy, r, width, start, end float64, segments int, c color.RGBA) {
	if segments < 1 || end == start {
		return
	}
	inner, outer := r-width/2, r+width/2
	var prevIn, prevOut uint16
	for i := 0; i <= segments; i++ {
		a := start + (end-start)*float64(i)/float64(segments)
		cos, sin := math.Cos(a), math.Sin(a)
		in := b.vertex(cx+inner*cos, cy+inner*sin, c)
		out := b.vertex(cx+outer*cos, cy+outer*sin, c)
		if i > 0 {
			b.inds = append(b.inds, prevIn, prevOut, out, prevIn, out, in)
		}
		prevIn, prevOut = in, out
	}
}

// ring appends a full circle outline.
func (b *shapeBatch) ring(cx, cy, r, width float64, segments int, c color.RGBA) {
	b.arc(cx, cy, r, width, 0, 2*math.Pi, segments, c)
}

// line appends a quad of the given width between two points.
func (b *shapeBatch) line(x0, y0, x1, y1, width float64, c color.RGBA) {
	dx, dy := x1-x0, y1-y0
	l := math.Hypot(dx, dy)
	if l == 0 {
		return
	}
	nx, ny := -dy/l*width/2, dx/l*width/2
	i0 := b.vertex(x0+nx, y0+ny, c)
	i1 := b.vertex(x1+nx, y1+ny, c)
	i2 := b.vertex(x1-nx, y1-ny, c)
	i3 := b.vertex(x0-nx, y0-ny, c)
	b.inds = append(b.inds, i0, i1, i2, i0, i2, i3)
}

// rect appends an axis-aligned filled rectangle.
func (b *shapeBatch) rect(x, y, w, h float64, c color.RGBA) {
	i0 := b.vertex(x, y, c)
	i1 := b.vertex(x+w, y, c)
	i2 := b.vertex(x+w, y+h, c)
	i3 := b.vertex(x, y+h, c)
	b.inds = append(b.inds, i0, i1, i2, i0, i2, i3)
}

// flush draws the accumulated shapes onto dst and resets the batch.
func (b *shapeBatch) flush(dst *ebiten.Image) {
	if len(b.inds) > 0 {
		var op ebiten.DrawTrianglesOptions
		op.AntiAlias = true
		dst.DrawTriangles(b.verts, b.inds, ensureWhitePixel(), &op)
	}
	b.reset()
}
