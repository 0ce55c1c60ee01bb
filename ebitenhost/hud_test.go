package ebitenhost

import (
	"strings"
	"testing"

	"github.com/phanxgames/pinfield"
)

func TestFPSCounterRefreshesEveryHalfSecond(t *testing.T) {
	calls := 0
	f := &fpsCounter{read: func() (float64, float64) {
		calls++
		return 60, 60
	}}
	f.update(0.016)
	if calls != 1 || f.text != "FPS: 60.0\nTPS: 60.0" {
		t.Fatalf("first update: calls %d text %q", calls, f.text)
	}
	for i := 0; i < 20; i++ {
		f.update(0.016)
	}
	if calls != 1 {
		t.Errorf("refreshed early: %d calls", calls)
	}
	f.update(0.2)
	if calls != 2 {
		t.Errorf("calls = %d after half a second", calls)
	}
}

func newPanelAnnotator() *pinfield.Annotator {
	return pinfield.New(pinfield.Options{
		Camera:     pinfield.NewOrbitCamera(r3Vec(0, 15, 10), r3Vec(0, 0, 0), 800, 600),
		Translator: pinfield.NewCatalog("en"),
		Go:         func(f func()) { f() },
	})
}

func TestPanelLinesIdle(t *testing.T) {
	a := newPanelAnnotator()
	lines := panelLines(a.Panel(), a.Form(), 0)
	if len(lines) != 1 || lines[0] != "[Space] + Pin" {
		t.Errorf("lines = %q", lines)
	}
}

func TestPanelLinesCreateForm(t *testing.T) {
	a := newPanelAnnotator()
	a.PlaceDraft(0, r3Vec(1, pinfield.DefaultBuildingFloors.SlabTop(0), 1))
	b, _ := a.Form().Binding("reasons")
	b.Toggle("ruhe")

	lines := panelLines(a.Panel(), a.Form(), 1)
	text := strings.Join(lines, "\n")
	for _, want := range []string{
		"  How do you feel here?: 5",
		"> What contributes to your (un)wellbeing?: 1[ ]Light 2[x]Quiet",
		"[Enter] Save  [Esc] Close",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("panel missing %q:\n%s", want, text)
		}
	}
}

func TestPanelBoundsGrowWithLines(t *testing.T) {
	_, _, _, h1 := panelBounds(1)
	_, _, _, h5 := panelBounds(5)
	if h5-h1 != 4*hudLineHeight {
		t.Errorf("height grows by %v, want %d", h5-h1, 4*hudLineHeight)
	}
}
