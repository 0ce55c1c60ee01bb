package pinfield

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

const (
	hoverLift     = 0.08
	glowRest      = 0.25
	glowHighlight = 0.5
	// hoverDuration approximates a 10% per-frame lerp at 60 fps.
	hoverDuration float32 = 0.35
)

// TweenGroup animates up to 2 float64 fields of a Marker simultaneously.
// The annotator advances every live group from its Update.
type TweenGroup struct {
	tweens [2]*gween.Tween
	count  int
	fields [2]*float64
	Done   bool
}

// Update advances all tweens by dt seconds and writes values to the target fields.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}
	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		*g.fields[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	g.Done = allDone
}

// TweenHighlight creates a TweenGroup that eases a marker's lift and glow
// toward their highlighted values, or back to rest when on is false.
func TweenHighlight(m *Marker, on bool, duration float32, fn ease.TweenFunc) *TweenGroup {
	toLift, toGlow := 0.0, glowRest
	if on {
		toLift, toGlow = hoverLift, glowHighlight
	}
	g := &TweenGroup{count: 2}
	g.tweens[0] = gween.New(float32(m.Lift), float32(toLift), duration, fn)
	g.tweens[1] = gween.New(float32(m.Glow), float32(toGlow), duration, fn)
	g.fields[0] = &m.Lift
	g.fields[1] = &m.Glow
	return g
}
