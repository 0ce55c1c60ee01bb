package pinfield

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/golang/geo/r3"
)

// PinBackend persists and lists pins.
type PinBackend interface {
	List(ctx context.Context) ([]Pin, error)
	Create(ctx context.Context, sub Submission) (Pin, error)
}

// EventSink is the interface for optional ECS integration.
// When set on an Annotator, annotation events are forwarded to it.
type EventSink interface {
	EmitEvent(event AnnotationEvent)
}

// AnnotationEvent carries annotation activity for an EventSink.
type AnnotationEvent struct {
	Type     EventType
	PinID    PinID
	Floor    int
	Position r3.Vector
	Mode     Mode
	Message  string
}

const maxFrameDelta = 0.25 // seconds

// Options configures an Annotator. Camera is required; everything else has
// a usable default.
type Options struct {
	Camera Camera
	// Floors maps floor indices to slab heights. Defaults to DefaultBuildingFloors.
	Floors FloorLayout
	// Backend persists pins. Without one, Submit and Reload fail with ErrNoBackend.
	Backend PinBackend
	// Questionnaire supplies questions per language. Without one, or when it
	// returns nothing, the built-in questionnaire is used.
	Questionnaire QuestionnaireSource
	// Translator resolves UI strings. Defaults to a German Catalog.
	Translator Translator
	// Locale drives number and date formatting when Translator is not a *Catalog.
	Locale string
	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time
	// Go runs network work off the frame loop. Defaults to a plain goroutine.
	Go func(func())
	// Haptics receives a pulse when a long press fires.
	Haptics Haptics
	// Logger receives warnings and debug output. Defaults to discarding.
	Logger *slog.Logger

	ActiveFloor int
	StationKey  string
	// DisableWellbeingFallback stops coloring pins by their legacy wellbeing
	// value when they have no answer for the active color question.
	DisableWellbeingFallback bool
}

// completionQueue hands results from network goroutines to Update.
type completionQueue struct {
	mu  sync.Mutex
	fns []func()
}

func (q *completionQueue) push(fn func()) {
	q.mu.Lock()
	q.fns = append(q.fns, fn)
	q.mu.Unlock()
}

func (q *completionQueue) drain() []func() {
	q.mu.Lock()
	fns := q.fns
	q.fns = nil
	q.mu.Unlock()
	return fns
}

// Annotator is the pin layer of a 3D building view. It owns the pin state,
// the questionnaire form and the draft lifecycle, turns pointer input into
// placements and selections, and produces Markers for the host to draw.
//
// All methods except those documented otherwise must be called from the
// goroutine that calls Update.
type Annotator struct {
	cam           Camera
	floors        FloorLayout
	backend       PinBackend
	questionnaire QuestionnaireSource
	tr            Translator
	locale        string
	now           func() time.Time
	spawn         func(func())
	log           *slog.Logger
	sink          EventSink
	debug         bool

	state     *State
	form      *Form
	gestures  *GestureController
	colors    ColorEncoder
	clusterer Clusterer
	markers   []*Marker

	draft       draftSlot
	draftMarker *Marker

	mode           Mode
	modeBeforeForm Mode
	formMode       FormMode
	viewPin        *Pin
	selected       PinID
	usingFallback  bool

	handlers    handlerRegistry
	completions completionQueue
	lastUpdate  time.Time
	reloadSeq   uint64
	appliedSeq  uint64
	loadSeq     uint64

	testRunner  *TestRunner
	injectQueue []syntheticPointerEvent

	unsubscribe func()
}

// New creates an Annotator. It does not contact the backend; call Reload
// and LoadQuestionnaire to populate it.
func New(opts Options) *Annotator {
	a := &Annotator{
		cam:           opts.Camera,
		floors:        opts.Floors,
		backend:       opts.Backend,
		questionnaire: opts.Questionnaire,
		tr:            opts.Translator,
		locale:        opts.Locale,
		now:           opts.Clock,
		spawn:         opts.Go,
		log:           opts.Logger,
		state:         NewState(opts.ActiveFloor),
		form:          NewForm(),
		colors:        ColorEncoder{WellbeingFallback: !opts.DisableWellbeingFallback},
	}
	if a.floors == nil {
		a.floors = DefaultBuildingFloors
	}
	if a.tr == nil {
		a.tr = NewCatalog(fallbackLanguage)
	}
	if a.now == nil {
		a.now = time.Now
	}
	if a.spawn == nil {
		a.spawn = func(f func()) { go f() }
	}
	if a.log == nil {
		a.log = slog.New(slog.DiscardHandler)
	}
	a.log = a.log.With("component", "pinfield")

	a.form.SetStationKey(opts.StationKey)
	a.form.onChange = a.formChanged
	a.gestures = newGestureController(a.cam, a.floors, a, opts.Haptics)

	if n, ok := a.tr.(LanguageNotifier); ok {
		a.unsubscribe = n.OnLanguageChange(func(lang string) {
			a.completions.push(func() { a.languageChanged(lang) })
		})
	}
	a.SetQuestionnaire(FallbackQuestions(a.tr))
	a.usingFallback = true
	return a
}

// Close detaches the annotator from its translator.
func (a *Annotator) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
}

// SetEventSink sets the optional event bridge.
func (a *Annotator) SetEventSink(sink EventSink) {
	a.sink = sink
}

// SetDebugMode enables or disables debug logging of marker rebuilds.
func (a *Annotator) SetDebugMode(enabled bool) {
	a.debug = enabled
}

// State exposes the underlying pin state for read access.
func (a *Annotator) State() *State { return a.state }

// Form exposes the questionnaire form.
func (a *Annotator) Form() *Form { return a.form }

// Gestures exposes the gesture controller.
func (a *Annotator) Gestures() *GestureController { return a.gestures }

// Mode returns the interaction mode.
func (a *Annotator) Mode() Mode { return a.mode }

// FormMode returns whether the open form creates or views a pin.
func (a *Annotator) FormMode() FormMode { return a.formMode }

// DraftState returns the lifecycle stage of the draft pin.
func (a *Annotator) DraftState() DraftState { return a.draft.state }

// Draft returns the current draft pin, if any.
func (a *Annotator) Draft() (Pin, bool) { return a.draft.current() }

// ViewedPin returns the pin shown in view mode, if any.
func (a *Annotator) ViewedPin() (Pin, bool) {
	if a.viewPin == nil {
		return Pin{}, false
	}
	return *a.viewPin, true
}

// Cursor returns the cursor shape the host should show.
func (a *Annotator) Cursor() Cursor {
	if a.gestures.Hovered() != nil {
		return CursorPointer
	}
	return CursorDefault
}

// ControlsEnabled reports whether camera controls should handle pointer input.
func (a *Annotator) ControlsEnabled() bool {
	return a.mode != ModeFormOpen && a.gestures.ControlsEnabled()
}

// --- Frame loop ---

// Update applies finished network work, advances input, hover and camera
// animation, and rebuilds markers when the camera distance changed enough.
// Call once per frame.
func (a *Annotator) Update() {
	now := a.now()
	var dt float32
	if !a.lastUpdate.IsZero() {
		dt = float32(math.Min(now.Sub(a.lastUpdate).Seconds(), maxFrameDelta))
	}
	a.lastUpdate = now

	for _, fn := range a.completions.drain() {
		fn()
	}
	if a.testRunner != nil {
		a.testRunner.step(a)
	}
	a.processInjected()

	if u, ok := a.cam.(interface{ Update(dt float32) }); ok {
		u.Update(dt)
	}
	a.gestures.update(now)

	if a.clusterer.NeedsRebuild(a.cam.Distance()) {
		a.renderMarkers()
	}
	for _, m := range a.pickables() {
		m.update(dt)
	}
}

// Markers returns the drawable markers of the active floor, the draft last.
func (a *Annotator) Markers() []*Marker {
	return a.pickables()
}

func (a *Annotator) pickables() []*Marker {
	if a.draftMarker == nil || a.draftMarker.Pin.Floor != a.state.ActiveFloor {
		return a.markers
	}
	out := make([]*Marker, 0, len(a.markers)+1)
	out = append(out, a.markers...)
	return append(out, a.draftMarker)
}

// --- Pointer and keyboard entry points ---

// PointerDown forwards a press to the gesture controller.
func (a *Annotator) PointerDown(e PointerEvent) { a.gestures.PointerDown(e, a.now()) }

// PointerMove forwards a move to the gesture controller.
func (a *Annotator) PointerMove(e PointerEvent) { a.gestures.PointerMove(e) }

// PointerUp forwards a release to the gesture controller.
func (a *Annotator) PointerUp(e PointerEvent) { a.gestures.PointerUp(e) }

// PointerCancel forwards a cancelled pointer to the gesture controller.
func (a *Annotator) PointerCancel(e PointerEvent) { a.gestures.PointerCancel(e) }

// PointerLeave clears hover when the pointer leaves the surface.
func (a *Annotator) PointerLeave() { a.gestures.PointerLeave() }

// HandleKey reacts to a key press and reports whether it was consumed.
// Escape closes an open form, otherwise it disarms placement.
func (a *Annotator) HandleKey(k Key) bool {
	if k != KeyEscape {
		return false
	}
	switch a.mode {
	case ModeFormOpen:
		a.CloseForm()
		return true
	case ModePlacementArmed:
		a.setMode(ModeIdle)
		return true
	}
	return false
}

// TogglePlacement arms or disarms placement. It does nothing while the form
// is open.
func (a *Annotator) TogglePlacement() {
	switch a.mode {
	case ModeIdle:
		a.setMode(ModePlacementArmed)
	case ModePlacementArmed:
		a.setMode(ModeIdle)
	}
}

// SetPlacementArmed arms or disarms placement explicitly.
func (a *Annotator) SetPlacementArmed(on bool) {
	if a.mode == ModeFormOpen {
		return
	}
	if on {
		a.setMode(ModePlacementArmed)
	} else {
		a.setMode(ModeIdle)
	}
}

func (a *Annotator) setMode(m Mode) {
	if a.mode == m {
		return
	}
	a.mode = m
	a.emit(AnnotationEvent{Type: EventModeChanged, Mode: m, Floor: a.state.ActiveFloor})
}

// --- Configuration ---

// SetActiveFloor switches the visible floor and rebuilds markers.
func (a *Annotator) SetActiveFloor(floor int) {
	a.state.ActiveFloor = floor
	a.clusterer.Invalidate()
	a.renderMarkers()
}

// ActiveFloor returns the visible floor.
func (a *Annotator) ActiveFloor() int { return a.state.ActiveFloor }

// SetStationKey sets the station key sent with every submission.
func (a *Annotator) SetStationKey(key string) {
	a.form.SetStationKey(key)
}

// SetQuestionnaire replaces the questionnaire. Every form binding is
// rebuilt; an open view form is repopulated from its pin.
func (a *Annotator) SetQuestionnaire(qs []Question) {
	a.usingFallback = false
	a.state.SetQuestionnaire(qs)
	a.form.Render(a.state.Questions())
	if a.mode == ModeFormOpen && a.formMode == FormView && a.viewPin != nil {
		a.form.PopulateReadOnly(*a.viewPin)
	}
	a.recolor()
}

// SelectColorQuestion makes key drive pin colors. It reports false when key
// is not an eligible color question.
func (a *Annotator) SelectColorQuestion(key string) bool {
	if !a.state.Color.Select(key) {
		return false
	}
	a.recolor()
	return true
}

// LoadQuestionnaire fetches the questionnaire for lang in the background.
// A failed or empty fetch installs the built-in questionnaire.
func (a *Annotator) LoadQuestionnaire(ctx context.Context, lang string) {
	if a.questionnaire == nil {
		a.SetQuestionnaire(FallbackQuestions(a.tr))
		a.usingFallback = true
		return
	}
	a.loadSeq++
	seq := a.loadSeq
	src := a.questionnaire
	a.spawn(func() {
		qs, err := src.Questions(ctx, lang)
		a.completions.push(func() { a.applyQuestionnaire(seq, qs, err) })
	})
}

func (a *Annotator) applyQuestionnaire(seq uint64, qs []Question, err error) {
	if seq != a.loadSeq {
		return
	}
	if err != nil || len(qs) == 0 {
		if err != nil {
			a.log.Warn("load questionnaire", "err", err)
		}
		a.SetQuestionnaire(FallbackQuestions(a.tr))
		a.usingFallback = true
		return
	}
	a.SetQuestionnaire(qs)
}

func (a *Annotator) languageChanged(lang string) {
	if a.questionnaire != nil {
		a.LoadQuestionnaire(context.Background(), lang)
		return
	}
	if a.usingFallback {
		a.SetQuestionnaire(FallbackQuestions(a.tr))
		a.usingFallback = true
	}
}

// --- Network ---

// Reload fetches the confirmed pin list in the background. On success the
// list replaces the confirmed pins and local pins the backend now reports
// are dropped; on failure the current pins stay.
func (a *Annotator) Reload(ctx context.Context) {
	if a.backend == nil {
		return
	}
	a.reloadSeq++
	seq := a.reloadSeq
	backend := a.backend
	a.spawn(func() {
		pins, err := backend.List(ctx)
		a.completions.push(func() { a.applyPins(seq, pins, err) })
	})
}

func (a *Annotator) applyPins(seq uint64, pins []Pin, err error) {
	if err != nil {
		a.log.Warn("load pins", "err", err)
		return
	}
	if seq < a.appliedSeq {
		return
	}
	a.appliedSeq = seq
	a.state.MergeConfirmed(pins)
	if a.viewPin != nil {
		if p, ok := a.state.FindPin(a.viewPin.ID); ok {
			a.viewPin = &p
		}
	}
	a.clusterer.Invalidate()
	a.renderMarkers()
	a.emit(AnnotationEvent{Type: EventPinsLoaded, Floor: a.state.ActiveFloor})
}

// Submit validates the create form and sends it in the background. Errors
// that stop the submission before any network call (ErrNoLocation, a
// *ValidationError, ErrNoDraft, ErrSubmitInFlight, ErrNoBackend) are
// returned and shown inline. The outcome of the network call arrives
// through Update.
func (a *Annotator) Submit(ctx context.Context) error {
	if a.mode != ModeFormOpen || a.formMode != FormCreate {
		return ErrNoDraft
	}
	sub, err := a.form.Serialize()
	if err != nil {
		a.form.setError(a.errorMessage(err))
		return err
	}
	if a.backend == nil {
		a.form.setError(a.tr.T("error.saveFailed"))
		return ErrNoBackend
	}
	token, err := a.draft.beginSubmit()
	if err != nil {
		return err
	}
	a.form.clearError()
	a.form.setBusy(true)

	backend := a.backend
	a.spawn(func() {
		pin, err := backend.Create(ctx, sub)
		a.completions.push(func() { a.finishSubmit(token, sub, pin, err) })
	})
	return nil
}

func (a *Annotator) finishSubmit(token uint64, sub Submission, pin Pin, err error) {
	if a.draft.state != DraftSubmitting || a.draft.token == token {
		a.form.setBusy(false)
	}
	if err != nil {
		current := a.draft.fail(token)
		a.log.Warn("submit pin", "err", err)
		if current && a.mode == ModeFormOpen && a.formMode == FormCreate {
			a.form.setError(a.errorMessage(err))
		}
		a.emit(AnnotationEvent{Type: EventSubmitFailed, Floor: sub.FloorIndex, Message: err.Error()})
		for _, h := range a.handlers.submitted {
			h.fn(SubmitContext{Err: err})
		}
		return
	}

	pin = completeSaved(pin, sub)
	current := a.draft.confirm(token)
	if current {
		a.draftMarker = nil
	}
	if pin.Approved == ApprovalPending && pin.ID != "" {
		a.state.AddLocal(pin)
	}
	a.clusterer.Invalidate()
	a.renderMarkers()
	a.emit(AnnotationEvent{Type: EventSubmitted, PinID: pin.ID, Floor: pin.Floor, Position: pin.Position})
	for _, h := range a.handlers.submitted {
		h.fn(SubmitContext{Pin: pin})
	}

	a.Reload(context.Background())
	if current && a.mode == ModeFormOpen && a.formMode == FormCreate {
		a.CloseForm()
	} else if a.mode == ModePlacementArmed {
		a.setMode(ModeIdle)
	}
}

// completeSaved fills fields the backend left out of its response from the
// submission.
func completeSaved(p Pin, sub Submission) Pin {
	if p.Position == (r3.Vector{}) {
		p.Floor = sub.FloorIndex
		p.Position = r3.Vector{X: sub.X, Y: sub.Y, Z: sub.Z}
	}
	if p.Answers == nil {
		p.Answers = sub.Answers.Clone()
	}
	if !finite(p.Wellbeing) || p.Wellbeing == 0 {
		if a, ok := sub.Answers[legacyWellbeing]; ok {
			if v, ok := a.Number(); ok {
				p.Wellbeing = v
			}
		}
	}
	return p
}

func (a *Annotator) errorMessage(err error) string {
	var verr *ValidationError
	switch {
	case errors.Is(err, ErrNoLocation):
		return a.tr.T("error.noLocation")
	case errors.As(err, &verr):
		label := verr.Label
		if label == "" {
			label = verr.Key
		}
		return a.tr.T("error.required") + ": " + label
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return a.tr.T("error.saveFailed")
}

// --- Form lifecycle ---

// CloseForm closes the form. Closing a create form discards the draft, even
// while it is being submitted; the submission result is still applied.
func (a *Annotator) CloseForm() {
	if a.mode != ModeFormOpen {
		return
	}
	if a.formMode == FormCreate {
		a.discardDraft()
	}
	a.form.SetPlacement(nil)
	a.form.clearError()
	next := ModeIdle
	if a.formMode == FormView {
		next = a.modeBeforeForm
	}
	a.viewPin = nil
	a.setSelected("")
	a.setMode(next)
}

func (a *Annotator) discardDraft() {
	p, had := a.draft.current()
	if !a.draft.discard() || !had {
		return
	}
	a.draftMarker = nil
	a.emit(AnnotationEvent{Type: EventDraftDiscarded, PinID: p.ID, Floor: p.Floor, Position: p.Position})
}

// pinClicked implements gestureTarget.
func (a *Annotator) pinClicked(p Pin) {
	local := a.state.IsLocal(p.ID)
	a.emit(AnnotationEvent{Type: EventPinClicked, PinID: p.ID, Floor: p.Floor, Position: p.Position})
	for _, h := range a.handlers.pinClicked {
		h.fn(PinClickContext{Pin: p, Local: local})
	}
	a.OpenPin(p)
}

// OpenPin shows p read-only in the form and highlights its marker.
func (a *Annotator) OpenPin(p Pin) {
	if a.mode == ModeFormOpen && a.formMode == FormCreate {
		return
	}
	a.form.Reset()
	a.form.PopulateReadOnly(p)
	a.form.SetPlacement(nil)
	a.formMode = FormView
	a.viewPin = &p
	a.setSelected(p.ID)
	if a.mode != ModeFormOpen {
		a.modeBeforeForm = a.mode
	}
	a.setMode(ModeFormOpen)
}

// floorClicked implements gestureTarget.
func (a *Annotator) floorClicked(floor int, at r3.Vector, longPress bool) {
	if a.mode == ModeFormOpen {
		return
	}
	a.emit(AnnotationEvent{Type: EventFloorClicked, Floor: floor, Position: at})
	for _, h := range a.handlers.floorClicked {
		h.fn(FloorClickContext{Floor: floor, Position: at, LongPress: longPress})
	}
	a.PlaceDraft(floor, at)
}

// PlaceDraft places a draft pin at a floor location and opens the create
// form for it. An unsent draft is replaced.
func (a *Annotator) PlaceDraft(floor int, at r3.Vector) {
	if a.mode == ModeFormOpen {
		return
	}
	a.form.Reset()
	a.form.SetPlacement(&Placement{Floor: floor, Position: at})

	pin := a.newDraftPin(floor, at)
	prev, hadPrev := a.draft.current()
	replaced, err := a.draft.place(pin)
	if err != nil {
		a.log.Warn("place draft", "err", err)
		return
	}
	if replaced && hadPrev {
		a.emit(AnnotationEvent{Type: EventDraftDiscarded, PinID: prev.ID, Floor: prev.Floor, Position: prev.Position})
	}
	a.draftMarker = newDraftMarker(pin, a.previewColor())
	a.emit(AnnotationEvent{Type: EventDraftPlaced, PinID: pin.ID, Floor: floor, Position: at})

	a.formMode = FormCreate
	a.viewPin = nil
	a.setSelected("")
	a.setMode(ModeFormOpen)
}

func (a *Annotator) newDraftPin(floor int, at r3.Vector) Pin {
	p := Pin{
		ID:        LocalPinID(a.now()),
		Floor:     floor,
		Position:  at,
		Approved:  ApprovalPending,
		Answers:   Answers{},
		Wellbeing: math.NaN(),
		Reasons:   []string{},
	}
	if q := a.state.ActiveColorQuestion(); q != nil {
		if b, ok := a.form.Binding(q.Key); ok {
			p.Answers[q.Key] = b.Value()
		}
	}
	if b, ok := a.form.Binding(legacyWellbeing); ok && b.Kind() == KindSlider {
		if v, ok := b.Value().Number(); ok {
			p.Wellbeing = v
		}
	}
	return p
}

func (a *Annotator) formChanged(b *Binding) {
	if a.draftMarker == nil {
		return
	}
	a.draftMarker.Color = a.previewColor()
	a.draftMarker.Pin.Answers[b.Key()] = b.Value()
}

// previewColor is the color of the color-question slider's current position.
func (a *Annotator) previewColor() Color {
	q := a.state.ActiveColorQuestion()
	if q == nil {
		return NeutralColor
	}
	b, ok := a.form.Binding(q.Key)
	if !ok {
		return NeutralColor
	}
	cfg, ok := q.Slider()
	if !ok {
		return NeutralColor
	}
	return ColorFor(b.SliderValue(), cfg.Range())
}

func (a *Annotator) setSelected(id PinID) {
	a.selected = id
	for _, m := range a.markers {
		m.setSelected(id != "" && m.Kind == MarkerPin && m.Pin.ID == id)
	}
}

// --- Markers ---

func (a *Annotator) renderMarkers() {
	start := time.Now()
	pins := a.state.VisiblePins()
	clusters := a.clusterer.Rebuild(pins, a.cam)
	q := a.state.ActiveColorQuestion()

	markers := make([]*Marker, 0, len(clusters))
	for _, cl := range clusters {
		if len(cl.Pins) != 1 {
			markers = append(markers, newClusterMarker(cl))
			continue
		}
		p := cl.Pins[0]
		m := newPinMarker(p, a.colors.PinColor(p, q))
		if a.selected != "" && p.ID == a.selected {
			m.Selected = true
			m.Lift, m.Glow = hoverLift, glowHighlight
		}
		markers = append(markers, m)
	}
	a.markers = markers
	a.gestures.rebind(a.pickables())

	if a.debug {
		a.debugLog(debugStats{
			rebuildTime: time.Since(start),
			pinCount:    len(pins),
			badgeCount:  countBadges(clusters),
			markerCount: len(markers),
			distance:    a.cam.Distance(),
		})
	}
}

// recolor refreshes marker colors after the color question or questionnaire changed.
func (a *Annotator) recolor() {
	q := a.state.ActiveColorQuestion()
	for _, m := range a.markers {
		if m.Kind == MarkerPin {
			m.Color = a.colors.PinColor(m.Pin, q)
		}
	}
	if a.draftMarker != nil {
		a.draftMarker.Color = a.previewColor()
	}
}

func (a *Annotator) emit(e AnnotationEvent) {
	if a.sink != nil {
		a.sink.EmitEvent(e)
	}
}

func (a *Annotator) interactionMode() Mode { return a.mode }
func (a *Annotator) activeFloor() int      { return a.state.ActiveFloor }
