package pinfield

// Palette is the ten-step color scale pins are tinted with, low to high.
var Palette = [10]Color{
	mustHex("#440154"),
	mustHex("#482475"),
	mustHex("#414487"),
	mustHex("#355f8d"),
	mustHex("#2a788e"),
	mustHex("#21908d"),
	mustHex("#22a884"),
	mustHex("#42be71"),
	mustHex("#7ad151"),
	mustHex("#bddf26"),
}

// NeutralColor tints pins that have no score for the active color question.
var NeutralColor = mustHex("#9ca3af")

// Range is a min/max range used for color mapping. The zero value means [1, 10].
type Range struct {
	Min, Max float64
}

func (r Range) bounds() (lo, hi float64) {
	if r.Min == 0 && r.Max == 0 {
		return 1, 10
	}
	return r.Min, r.Max
}

// PaletteIndex returns the palette slot for value within r, or -1 when the
// value is NaN or infinite.
func PaletteIndex(value float64, r Range) int {
	if !finite(value) {
		return -1
	}
	lo, hi := r.bounds()
	v := clamp(value, lo, hi)
	ratio := 0.0
	if hi != lo {
		ratio = (v - lo) / (hi - lo)
	}
	idx := int(roundHalfUp(ratio * float64(len(Palette)-1)))
	if idx < 0 {
		idx = 0
	}
	if idx > len(Palette)-1 {
		idx = len(Palette) - 1
	}
	return idx
}

// ColorFor maps a raw slider value onto the palette. Non-finite values map
// to NeutralColor.
func ColorFor(value float64, r Range) Color {
	idx := PaletteIndex(value, r)
	if idx < 0 {
		return NeutralColor
	}
	return Palette[idx]
}

// ColorEncoder resolves pin scores and colors for a color question.
type ColorEncoder struct {
	// WellbeingFallback scores pins that lack an answer for the active
	// question with their legacy wellbeing percent.
	WellbeingFallback bool
}

// ScoreFor returns the pin's raw slider value for q, converted from the
// stored percent. A top-level record column named q.Key wins over the
// answers map. When neither holds a value and WellbeingFallback is set, the
// legacy wellbeing percent is used instead.
func (e ColorEncoder) ScoreFor(p Pin, q *Question) (float64, bool) {
	if q == nil {
		return 0, false
	}
	cfg, _ := q.Slider()
	a, ok := p.column(q.Key)
	if !ok {
		a, ok = p.Answers[q.Key]
		ok = ok && a.Kind() != AnswerNone
	}
	if ok {
		if pct, ok := a.Number(); ok {
			return FromPercent(pct, cfg)
		}
		return 0, false
	}
	if e.WellbeingFallback && finite(p.Wellbeing) {
		return FromPercent(p.Wellbeing, cfg)
	}
	return 0, false
}

// PinColor returns the color for p under the color question q. A nil q or a
// missing score yields NeutralColor.
func (e ColorEncoder) PinColor(p Pin, q *Question) Color {
	if q == nil {
		return NeutralColor
	}
	v, ok := e.ScoreFor(p, q)
	if !ok {
		return NeutralColor
	}
	cfg, _ := q.Slider()
	return ColorFor(v, cfg.Range())
}

// --- Color question selection ---

// EligibleColorQuestions returns the slider questions that may drive pin
// color: those flagged UseForColor, else the "wellbeing" slider, else the
// first slider.
func EligibleColorQuestions(questions []Question) []Question {
	var sliders, flagged []Question
	for _, q := range questions {
		cfg, ok := q.Slider()
		if !ok {
			continue
		}
		sliders = append(sliders, q)
		if cfg.UseForColor {
			flagged = append(flagged, q)
		}
	}
	if len(flagged) > 0 {
		return flagged
	}
	for _, q := range sliders {
		if q.Key == legacyWellbeing {
			return []Question{q}
		}
	}
	if len(sliders) > 0 {
		return sliders[:1]
	}
	return nil
}

// ColorSelection tracks which eligible question currently drives pin color.
type ColorSelection struct {
	Key      string
	Eligible []Question
}

// Refresh re-derives the eligible set from questions. The current key is kept
// if it is still eligible, otherwise the first eligible question is chosen.
func (s *ColorSelection) Refresh(questions []Question) {
	s.Eligible = EligibleColorQuestions(questions)
	if s.Key != "" && s.eligible(s.Key) {
		return
	}
	s.Key = ""
	if len(s.Eligible) > 0 {
		s.Key = s.Eligible[0].Key
	}
}

// Select makes key the active color question. It reports false and changes
// nothing when key is not eligible.
func (s *ColorSelection) Select(key string) bool {
	if !s.eligible(key) {
		return false
	}
	s.Key = key
	return true
}

// Active resolves the active key against the eligible set, then against
// questions. It returns nil when nothing matches.
func (s *ColorSelection) Active(questions []Question) *Question {
	if s.Key == "" {
		return nil
	}
	for i := range s.Eligible {
		if s.Eligible[i].Key == s.Key {
			q := s.Eligible[i]
			return &q
		}
	}
	for i := range questions {
		if questions[i].Key == s.Key {
			q := questions[i]
			return &q
		}
	}
	return nil
}

func (s *ColorSelection) eligible(key string) bool {
	for _, q := range s.Eligible {
		if q.Key == key {
			return true
		}
	}
	return false
}

// ColorModeButton is one entry of the color-mode switcher.
type ColorModeButton struct {
	Key    string
	Label  string
	Active bool
}

// Buttons returns one button per eligible question, or nil when there is at
// most one eligible question and the switcher should stay hidden.
func (s *ColorSelection) Buttons() []ColorModeButton {
	if len(s.Eligible) <= 1 {
		return nil
	}
	out := make([]ColorModeButton, len(s.Eligible))
	for i, q := range s.Eligible {
		out[i] = ColorModeButton{Key: q.Key, Label: q.DisplayLabel(), Active: q.Key == s.Key}
	}
	return out
}

// Legend describes the color scale of the active color question.
type Legend struct {
	Low, High string
	Stops     []Color
}

// LegendFor returns the legend for q, or false when q is nil.
func LegendFor(q *Question) (Legend, bool) {
	if q == nil {
		return Legend{}, false
	}
	return Legend{Low: q.LegendLow, High: q.LegendHigh, Stops: Palette[:]}, true
}
