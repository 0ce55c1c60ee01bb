package pinfield

import (
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/text/language"
)

// Panel is a snapshot of everything the host's pin UI shows. Build it with
// Annotator.Panel after Update and render it as is.
type Panel struct {
	ToggleLabel  string
	ToggleActive bool

	FormVisible bool
	FormMode    FormMode
	CloseLabel  string
	SaveLabel   string
	// SubmitVisible is false in view mode.
	SubmitVisible bool
	SubmitEnabled bool
	Busy          bool
	Error         string

	// PreviewColor is the palette color of the color question's current
	// slider position.
	PreviewColor Color
	Legend       Legend
	LegendOK     bool
	ColorModes   []ColorModeButton

	// View is set in view mode.
	View *ViewPanel
}

// ViewPanel describes an existing pin in read-only form.
type ViewPanel struct {
	WellbeingLabel string
	Wellbeing      string
	// ScoreFill is the width of the score bar in percent, 0 to 100.
	ScoreFill float64

	ReasonsLabel string
	Reasons      string

	GroupVisible bool
	GroupLabel   string
	Group        string

	NoteLabel string
	Note      string

	Timestamp string
	// Age is a relative rendering of the creation time, e.g. "3 minutes ago".
	Age string

	Pending       bool
	PendingNotice string
}

// Panel builds the UI view model from the current state.
func (a *Annotator) Panel() Panel {
	q := a.state.ActiveColorQuestion()
	legend, legendOK := LegendFor(q)
	p := Panel{
		ToggleActive:  a.mode == ModePlacementArmed,
		FormVisible:   a.mode == ModeFormOpen,
		FormMode:      a.formMode,
		CloseLabel:    a.tr.T("ui.close"),
		SaveLabel:     a.tr.T("ui.save"),
		Busy:          a.form.Busy(),
		Error:         a.form.Error(),
		PreviewColor:  a.previewColor(),
		Legend:        legend,
		LegendOK:      legendOK,
		ColorModes:    a.state.Color.Buttons(),
		SubmitVisible: a.formMode == FormCreate,
	}
	p.ToggleLabel = a.tr.T("ui.pinToggleIdle")
	if p.ToggleActive {
		p.ToggleLabel = a.tr.T("ui.pinToggleActive")
	}
	p.SubmitEnabled = p.FormVisible && p.SubmitVisible && !p.Busy
	if p.FormVisible && a.formMode == FormView && a.viewPin != nil {
		v := a.viewPanel(*a.viewPin)
		p.View = &v
	}
	return p
}

func (a *Annotator) localeTag() language.Tag {
	if c, ok := a.tr.(*Catalog); ok {
		return c.Locale()
	}
	return LocaleFor(a.locale)
}

func (a *Annotator) viewPanel(pin Pin) ViewPanel {
	empty := a.tr.T("ui.empty")
	loc := a.localeTag()

	v := ViewPanel{
		WellbeingLabel: a.questionLabel(legacyWellbeing, "ui.viewWellbeing"),
		ReasonsLabel:   a.questionLabel(legacyReasons, "ui.viewReasons"),
		GroupLabel:     a.questionLabel(legacyGroup, "questions.group.label"),
		NoteLabel:      a.questionLabel(legacyNote, "ui.viewNote"),
		Wellbeing:      FormatPercent(pin.Wellbeing, loc, empty),
		Reasons:        empty,
		Note:           empty,
		Timestamp:      FormatTimestamp(pin.CreatedAt, loc, empty),
		Pending:        a.state.IsLocal(pin.ID) && pin.Approved == ApprovalPending,
		PendingNotice:  a.tr.T("ui.viewPending"),
	}
	if finite(pin.Wellbeing) {
		v.ScoreFill = clamp(pin.Wellbeing, 0, 100)
	}
	if len(pin.Reasons) > 0 {
		labels := make([]string, len(pin.Reasons))
		for i, r := range pin.Reasons {
			labels[i] = a.state.OptionLabel(legacyReasons, r)
		}
		v.Reasons = strings.Join(labels, ", ")
	}
	if _, ok := a.state.Question(legacyGroup); ok {
		v.GroupVisible = true
		v.Group = empty
		if pin.GroupKey != "" {
			v.Group = a.state.OptionLabel(legacyGroup, pin.GroupKey)
		}
	}
	if note := strings.TrimSpace(pin.Note); note != "" {
		v.Note = note
	}
	if !pin.CreatedAt.IsZero() {
		v.Age = humanize.RelTime(pin.CreatedAt, a.now(), "ago", "from now")
	}
	return v
}

// questionLabel prefers the questionnaire's label for key over a UI default.
func (a *Annotator) questionLabel(key, fallback string) string {
	if q, ok := a.state.Question(key); ok && q.Label != "" {
		return q.Label
	}
	return a.tr.T(fallback)
}
