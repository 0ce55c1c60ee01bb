package pinfield

import "context"

// QuestionnaireSource fetches the questionnaire for a language.
type QuestionnaireSource interface {
	Questions(ctx context.Context, lang string) ([]Question, error)
}

var (
	reasonOptionKeys = []string{"licht", "ruhe", "laerm", "aussicht", "sicherheit", "sauberkeit", "layout", "temperatur"}
	groupOptionKeys  = []string{"staff", "studi", "dozierend", "other"}
)

// FallbackQuestions returns the built-in questionnaire used when the backend
// provides none: a 1-10 wellbeing slider, a multi-select of reasons, a
// single-select group and a free-text note. Labels come from t.
func FallbackQuestions(t Translator) []Question {
	return []Question{
		{
			Key:        legacyWellbeing,
			Kind:       KindSlider,
			Required:   true,
			Sort:       10,
			Label:      t.T("questions.wellbeing.label"),
			LegendLow:  t.T("questions.wellbeing.legend_low"),
			LegendHigh: t.T("questions.wellbeing.legend_high"),
			Config:     NewSliderConfig(1, 10, 1).WithDefault(5),
		},
		{
			Key:     legacyReasons,
			Kind:    KindMulti,
			Sort:    20,
			Label:   t.T("questions.reasons.label"),
			Config:  MultiConfig{AllowMultiple: true},
			Options: fallbackOptions(t, legacyReasons, reasonOptionKeys),
		},
		{
			Key:     legacyGroup,
			Kind:    KindMulti,
			Sort:    30,
			Label:   t.T("questions.group.label"),
			Config:  MultiConfig{AllowMultiple: false},
			Options: fallbackOptions(t, legacyGroup, groupOptionKeys),
		},
		{
			Key:    legacyNote,
			Kind:   KindText,
			Sort:   40,
			Label:  t.T("questions.note.label"),
			Config: TextConfig{Rows: defaultTextRows},
		},
	}
}

func fallbackOptions(t Translator, question string, keys []string) []Option {
	out := make([]Option, len(keys))
	for i, k := range keys {
		out[i] = Option{Key: k, Label: t.T("options." + question + "." + k), Sort: (i + 1) * 10}
	}
	return out
}
