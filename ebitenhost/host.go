// Package ebitenhost runs a pinfield.Annotator inside an Ebitengine game:
// it polls mouse, touch and keyboard input, draws the pin markers over a
// floor grid and renders the pin panel as a text HUD.
package ebitenhost

import (
	"context"
	"log/slog"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/phanxgames/pinfield"
)

const (
	dollyStep    = 1.1
	focusSeconds = 0.6
)

// Config configures a Host.
type Config struct {
	Annotator *pinfield.Annotator
	Camera    *pinfield.OrbitCamera
	Floors    pinfield.BuildingFloors
	// MinFloor and MaxFloor bound PageUp/PageDown floor switching.
	MinFloor, MaxFloor int
	// SubmitTimeout bounds a submission started with Enter. Zero means 15s.
	SubmitTimeout time.Duration
	Logger        *slog.Logger
}

// Host implements ebiten.Game.
type Host struct {
	cfg Config
	a   *pinfield.Annotator
	cam *pinfield.OrbitCamera

	tracker  *pointerTracker
	touchBuf []ebiten.TouchID
	batch    shapeBatch
	fps      *fpsCounter

	// focus is the index of the form binding edited by the keyboard.
	focus     int
	lines     []string
	panel     pinfield.Panel
	panning   bool
	lastX     float64
	lastY     float64
	lastFrame time.Time
}

// New returns a host for cfg. Annotator and Camera are required.
func New(cfg Config) *Host {
	if cfg.SubmitTimeout <= 0 {
		cfg.SubmitTimeout = 15 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.MaxFloor < cfg.MinFloor {
		cfg.MinFloor, cfg.MaxFloor = cfg.MaxFloor, cfg.MinFloor
	}
	h := &Host{
		cfg: cfg,
		a:   cfg.Annotator,
		cam: cfg.Camera,
		fps: newFPSCounter(),
	}
	h.tracker = newPointerTracker(h.overPanel)
	return h
}

// overPanel reports whether a surface point is covered by the HUD panel.
func (h *Host) overPanel(x, y float64) bool {
	px, py, pw, ph := panelBounds(len(h.lines))
	return x >= px && x < px+pw && y >= py && y < py+ph
}

// Update implements ebiten.Game.
func (h *Host) Update() error {
	now := time.Now()
	if !h.lastFrame.IsZero() {
		h.fps.update(now.Sub(h.lastFrame).Seconds())
	}
	h.lastFrame = now

	var actions []pointerAction
	actions, h.touchBuf = h.tracker.pollPointers(h.touchBuf)
	for _, act := range actions {
		h.cameraControls(act)
		act.dispatch(h.a)
	}
	if _, dy := ebiten.Wheel(); dy != 0 && h.a.ControlsEnabled() {
		if dy > 0 {
			h.cam.Dolly(1 / dollyStep)
		} else {
			h.cam.Dolly(dollyStep)
		}
	}
	h.keys()

	h.a.Update()
	h.panel = h.a.Panel()
	h.lines = panelLines(h.panel, h.a.Form(), h.focus)

	if h.a.Cursor() == pinfield.CursorPointer {
		ebiten.SetCursorShape(ebiten.CursorShapePointer)
	} else {
		ebiten.SetCursorShape(ebiten.CursorShapeDefault)
	}
	return nil
}

// cameraControls pans the camera with a mouse drag while controls are enabled.
func (h *Host) cameraControls(act pointerAction) {
	e := act.event
	if e.Type != pinfield.PointerMouse {
		return
	}
	switch act.kind {
	case actionDown:
		h.panning = !e.OverUI && h.a.ControlsEnabled()
	case actionUp:
		h.panning = false
	case actionMove:
		if h.panning && h.a.ControlsEnabled() {
			h.cam.Pan(e.X-h.lastX, e.Y-h.lastY)
		}
	}
	h.lastX, h.lastY = e.X, e.Y
}

// --- Keyboard ---

var (
	colorModeKeys = []ebiten.Key{
		ebiten.KeyF1, ebiten.KeyF2, ebiten.KeyF3, ebiten.KeyF4, ebiten.KeyF5,
		ebiten.KeyF6, ebiten.KeyF7, ebiten.KeyF8, ebiten.KeyF9,
	}
	optionKeys = []ebiten.Key{
		ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3, ebiten.KeyDigit4, ebiten.KeyDigit5,
		ebiten.KeyDigit6, ebiten.KeyDigit7, ebiten.KeyDigit8, ebiten.KeyDigit9,
	}
)

func (h *Host) keys() {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		h.a.HandleKey(pinfield.KeyEscape)
		return
	case inpututil.IsKeyJustPressed(ebiten.KeyPageUp):
		h.setFloor(h.a.ActiveFloor() + 1)
	case inpututil.IsKeyJustPressed(ebiten.KeyPageDown):
		h.setFloor(h.a.ActiveFloor() - 1)
	}
	for i, k := range colorModeKeys {
		if inpututil.IsKeyJustPressed(k) {
			if modes := h.panel.ColorModes; i < len(modes) {
				h.a.SelectColorQuestion(modes[i].Key)
			}
		}
	}

	if h.a.Mode() != pinfield.ModeFormOpen || h.a.FormMode() != pinfield.FormCreate {
		if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
			h.a.TogglePlacement()
		}
		h.focus = 0
		return
	}
	h.formKeys()
}

// formKeys edits the create form: Up/Down moves focus, Left/Right steps a
// slider, digits toggle options, typing fills text, Enter submits.
func (h *Host) formKeys() {
	bindings := h.a.Form().Bindings()
	if len(bindings) == 0 {
		return
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) {
		h.focus = (h.focus + 1) % len(bindings)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) {
		h.focus = (h.focus - 1 + len(bindings)) % len(bindings)
	}
	if h.focus >= len(bindings) {
		h.focus = 0
	}
	b := bindings[h.focus]

	switch b.Kind() {
	case pinfield.KindSlider:
		if inpututil.IsKeyJustPressed(ebiten.KeyArrowRight) {
			b.StepSlider(1)
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft) {
			b.StepSlider(-1)
		}
	case pinfield.KindMulti:
		opts := b.Options()
		for i, k := range optionKeys {
			if i < len(opts) && inpututil.IsKeyJustPressed(k) {
				b.Toggle(opts[i].Key)
			}
		}
	case pinfield.KindText:
		text := b.Text()
		if chars := ebiten.AppendInputChars(nil); len(chars) > 0 {
			text += string(chars)
		}
		if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) && len(text) > 0 {
			r := []rune(text)
			text = string(r[:len(r)-1])
		}
		if text != b.Text() {
			b.SetText(text)
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		h.submit()
	}
}

func (h *Host) submit() {
	ctx, cancel := context.WithTimeout(context.Background(), h.cfg.SubmitTimeout)
	// Submit returns before the request finishes.
	time.AfterFunc(h.cfg.SubmitTimeout, cancel)
	if err := h.a.Submit(ctx); err != nil {
		h.cfg.Logger.Debug("submit rejected", "err", err)
	}
}

func (h *Host) setFloor(floor int) {
	if floor < h.cfg.MinFloor || floor > h.cfg.MaxFloor {
		return
	}
	h.a.SetActiveFloor(floor)
	h.cam.FocusFloor(floor, h.cfg.Floors, focusSeconds)
}

// --- Drawing ---

// Draw implements ebiten.Game.
func (h *Host) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)
	floorY := h.cfg.Floors.SlabTop(h.a.ActiveFloor())
	drawScene(screen, &h.batch, h.cam, floorY, h.a.Markers(), func() (float64, float64, float64, bool) {
		return h.a.Gestures().LongPressProgress(time.Now())
	})
	drawHUD(screen, &h.batch, h.lines, h.panel, h.fps.text)
}

// Layout implements ebiten.Game. The camera viewport follows the window.
func (h *Host) Layout(outsideWidth, outsideHeight int) (int, int) {
	w, hh := h.cam.ViewportSize()
	if int(w) != outsideWidth || int(hh) != outsideHeight {
		h.cam.SetViewport(float64(outsideWidth), float64(outsideHeight))
	}
	return outsideWidth, outsideHeight
}
