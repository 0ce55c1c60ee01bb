package ebitenhost

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/phanxgames/pinfield"
)

const (
	hudMargin     = 8
	hudLineHeight = 16
	panelWidth    = 300
	legendHeight  = 10
)

var panelColor = color.RGBA{0x10, 0x12, 0x18, 0xd8}

// fpsCounter refreshes its text about every half second.
type fpsCounter struct {
	elapsed float64
	text    string
	read    func() (fps, tps float64)
}

func newFPSCounter() *fpsCounter {
	return &fpsCounter{read: func() (float64, float64) { return ebiten.ActualFPS(), ebiten.ActualTPS() }}
}

func (f *fpsCounter) update(dt float64) {
	f.elapsed += dt
	if f.text != "" && f.elapsed < 0.5 {
		return
	}
	f.elapsed = 0
	fps, tps := f.read()
	f.text = fmt.Sprintf("FPS: %.1f\nTPS: %.1f", fps, tps)
}

// panelLines renders the pin panel as text lines. focus is the index of
// the form binding the keyboard edits.
func panelLines(p pinfield.Panel, form *pinfield.Form, focus int) []string {
	lines := []string{fmt.Sprintf("[Space] %s", p.ToggleLabel)}
	if len(p.ColorModes) > 0 {
		var modes []string
		for i, m := range p.ColorModes {
			mark := " "
			if m.Active {
				mark = "*"
			}
			modes = append(modes, fmt.Sprintf("%s%d %s", mark, i+1, m.Label))
		}
		lines = append(lines, "[F1-F9] "+strings.Join(modes, "  "))
	}
	if !p.FormVisible {
		return lines
	}
	lines = append(lines, "")

	if v := p.View; v != nil {
		lines = append(lines,
			v.WellbeingLabel+" "+v.Wellbeing,
			v.ReasonsLabel,
			"  "+v.Reasons,
		)
		if v.GroupVisible {
			lines = append(lines, v.GroupLabel+" "+v.Group)
		}
		lines = append(lines, v.NoteLabel+" "+v.Note, v.Timestamp)
		if v.Age != "" {
			lines = append(lines, v.Age)
		}
		if v.Pending {
			lines = append(lines, v.PendingNotice)
		}
		return append(lines, "", "[Esc] "+p.CloseLabel)
	}

	for i, b := range form.Bindings() {
		cursor := "  "
		if i == focus {
			cursor = "> "
		}
		lines = append(lines, cursor+b.Label()+": "+bindingValue(b))
	}
	lines = append(lines, "")
	if p.Error != "" {
		lines = append(lines, "! "+p.Error)
	}
	switch {
	case p.Busy:
		lines = append(lines, "...")
	case p.SubmitEnabled:
		lines = append(lines, "[Enter] "+p.SaveLabel+"  [Esc] "+p.CloseLabel)
	}
	return lines
}

// bindingValue renders a binding's current input.
func bindingValue(b *pinfield.Binding) string {
	switch b.Kind() {
	case pinfield.KindSlider:
		return fmt.Sprintf("%g", b.SliderValue())
	case pinfield.KindMulti:
		var parts []string
		for i, o := range b.Options() {
			box := "[ ]"
			if o.Checked {
				box = "[x]"
			}
			parts = append(parts, fmt.Sprintf("%d%s%s", i+1, box, o.Label))
		}
		return strings.Join(parts, " ")
	default:
		return b.Text() + "_"
	}
}

// panelBounds is the screen rectangle covered by the panel for the given
// number of lines.
func panelBounds(lines int) (x, y, w, h float64) {
	return hudMargin, hudMargin, panelWidth, float64((lines+1)*hudLineHeight + 3*hudMargin + legendHeight)
}

func drawHUD(dst *ebiten.Image, b *shapeBatch, lines []string, p pinfield.Panel, fps string) {
	x, y, w, h := panelBounds(len(lines))
	b.rect(x, y, w, h, panelColor)

	if p.LegendOK && len(p.Legend.Stops) > 0 {
		ly := y + h - legendHeight - hudMargin
		seg := (w - 2*hudMargin) / float64(len(p.Legend.Stops))
		for i, c := range p.Legend.Stops {
			b.rect(x+hudMargin+float64(i)*seg, ly, seg, legendHeight, toRGBA(c))
		}
	}
	if p.FormVisible && p.View == nil {
		b.rect(x+w-hudMargin-12, y+hudMargin, 12, 12, toRGBA(p.PreviewColor))
	}
	b.flush(dst)

	ebitenutil.DebugPrintAt(dst, strings.Join(lines, "\n"), int(x)+hudMargin, int(y)+hudMargin)
	if p.LegendOK {
		ly := int(y+h) - legendHeight - hudMargin - hudLineHeight
		ebitenutil.DebugPrintAt(dst, p.Legend.Low, int(x)+hudMargin, ly)
		ebitenutil.DebugPrintAt(dst, p.Legend.High, int(x+w)-hudMargin-len(p.Legend.High)*6, ly)
	}
	bw := dst.Bounds().Dx()
	ebitenutil.DebugPrintAt(dst, fps, bw-90, hudMargin)
}
