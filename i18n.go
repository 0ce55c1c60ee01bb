package pinfield

import (
	"strings"
	"sync"

	"golang.org/x/text/language"
)

// Translator resolves UI strings by key.
type Translator interface {
	T(key string) string
}

// LanguageNotifier is implemented by translators that announce language
// switches. The returned func unsubscribes.
type LanguageNotifier interface {
	OnLanguageChange(fn func(lang string)) (remove func())
}

const fallbackLanguage = "de"

var (
	swissGerman = language.MustParse("de-CH")
	supported   = []language.Tag{language.English, language.German}
	matcher     = language.NewMatcher(supported)
)

type langListener struct {
	id uint32
	fn func(string)
}

// Catalog is a Translator over per-language string tables. Lookups fall back
// from the current language to German and finally to the key itself.
type Catalog struct {
	mu        sync.RWMutex
	lang      string
	tables    map[string]map[string]string
	listeners []langListener
	nextID    uint32
}

// NewCatalog returns a catalog preloaded with the built-in German and English
// tables, set to lang.
func NewCatalog(lang string) *Catalog {
	c := &Catalog{
		lang:   normalizeLanguage(lang),
		tables: make(map[string]map[string]string, len(builtinTranslations)),
	}
	for l, entries := range builtinTranslations {
		t := make(map[string]string, len(entries))
		for k, v := range entries {
			t[k] = v
		}
		c.tables[l] = t
	}
	return c
}

// T implements Translator.
func (c *Catalog) T(key string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if v := c.tables[c.lang][key]; v != "" {
		return v
	}
	if v := c.tables[fallbackLanguage][key]; v != "" {
		return v
	}
	return key
}

// Language returns the current language code, e.g. "de".
func (c *Catalog) Language() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lang
}

// Locale returns the formatting locale for the current language: de-CH for
// German, en-GB otherwise.
func (c *Catalog) Locale() language.Tag {
	return LocaleFor(c.Language())
}

// SetLanguage switches the current language and notifies listeners when it
// changed. An empty value selects German.
func (c *Catalog) SetLanguage(lang string) {
	next := normalizeLanguage(lang)
	c.mu.Lock()
	changed := next != c.lang
	c.lang = next
	c.mu.Unlock()
	if changed {
		c.notify(next)
	}
}

// Merge adds entries to a language table. Listeners are notified when the
// merged language is the current one.
func (c *Catalog) Merge(lang string, entries map[string]string) {
	if len(entries) == 0 {
		return
	}
	lang = normalizeLanguage(lang)
	c.mu.Lock()
	t := c.tables[lang]
	if t == nil {
		t = make(map[string]string, len(entries))
		c.tables[lang] = t
	}
	for k, v := range entries {
		t[k] = v
	}
	current := lang == c.lang
	c.mu.Unlock()
	if current {
		c.notify(lang)
	}
}

// OnLanguageChange implements LanguageNotifier.
func (c *Catalog) OnLanguageChange(fn func(lang string)) (remove func()) {
	c.mu.Lock()
	c.nextID++
	id := c.nextID
	c.listeners = append(c.listeners, langListener{id: id, fn: fn})
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i := range c.listeners {
			if c.listeners[i].id == id {
				c.listeners = append(c.listeners[:i], c.listeners[i+1:]...)
				return
			}
		}
	}
}

func (c *Catalog) notify(lang string) {
	c.mu.RLock()
	ls := make([]langListener, len(c.listeners))
	copy(ls, c.listeners)
	c.mu.RUnlock()
	for _, l := range ls {
		l.fn(lang)
	}
}

// LocaleFor maps a language code to its formatting locale.
func LocaleFor(lang string) language.Tag {
	if normalizeLanguage(lang) == "de" {
		return swissGerman
	}
	return language.BritishEnglish
}

// DetectLanguage picks "de" or "en" from an Accept-Language style list.
// Anything that does not match German yields English.
func DetectLanguage(accept string) string {
	tags, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(tags) == 0 {
		return "en"
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return "en"
	}
	base, _ := supported[idx].Base()
	return base.String()
}

func normalizeLanguage(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		return fallbackLanguage
	}
	return lang
}

var builtinTranslations = map[string]map[string]string{
	"de": {
		"ui.pinToggleIdle":                "+ Pin",
		"ui.pinToggleActive":              "Pin platzieren",
		"ui.close":                        "Schliessen",
		"ui.save":                         "Speichern",
		"ui.viewWellbeing":                "Wohlbefinden:",
		"ui.viewReasons":                  "Was trägt zu deinem (Un-)Wohlbefinden bei?",
		"ui.viewNote":                     "Anmerkung:",
		"ui.viewGroup":                    "Gruppe:",
		"ui.viewPending":                  "Dieser Pin wartet auf Freigabe und ist für andere noch nicht sichtbar.",
		"ui.empty":                        "—",
		"error.saveFailed":                "Speichern fehlgeschlagen",
		"error.noLocation":                "Kein Standort gewählt",
		"error.required":                  "Bitte alle Pflichtfelder ausfüllen",
		"questions.wellbeing.label":       "Wie fühlst du dich hier?",
		"questions.wellbeing.legend_low":  "Gar nicht wohl",
		"questions.wellbeing.legend_high": "Sehr wohl",
		"questions.reasons.label":         "Was trägt zu deinem (Un-)Wohlbefinden bei?",
		"questions.group.label":           "Zu welcher Gruppe gehörst du?",
		"questions.note.label":            "Anmerkung",
		"options.reasons.licht":           "Licht",
		"options.reasons.ruhe":            "Ruhe",
		"options.reasons.laerm":           "Lärm",
		"options.reasons.aussicht":        "Aussicht",
		"options.reasons.sicherheit":      "Sicherheit",
		"options.reasons.sauberkeit":      "Sauberkeit",
		"options.reasons.layout":          "Layout",
		"options.reasons.temperatur":      "Temperatur",
		"options.group.staff":             "Staff",
		"options.group.studi":             "Studi",
		"options.group.dozierend":         "Dozierend",
		"options.group.other":             "Andere",
	},
	"en": {
		"ui.pinToggleIdle":                "+ Pin",
		"ui.pinToggleActive":              "Place pin",
		"ui.close":                        "Close",
		"ui.save":                         "Save",
		"ui.viewWellbeing":                "Wellbeing:",
		"ui.viewReasons":                  "What contributes to your (un)wellbeing?",
		"ui.viewNote":                     "Note:",
		"ui.viewGroup":                    "Group:",
		"ui.viewPending":                  "This pin is awaiting approval and is not visible to others yet.",
		"ui.empty":                        "—",
		"error.saveFailed":                "Failed to save",
		"error.noLocation":                "No location selected",
		"error.required":                  "Please fill in all required fields",
		"questions.wellbeing.label":       "How do you feel here?",
		"questions.wellbeing.legend_low":  "Not good at all",
		"questions.wellbeing.legend_high": "Very good",
		"questions.reasons.label":         "What contributes to your (un)wellbeing?",
		"questions.group.label":           "Which group do you belong to?",
		"questions.note.label":            "Note",
		"options.reasons.licht":           "Light",
		"options.reasons.ruhe":            "Quiet",
		"options.reasons.laerm":           "Noise",
		"options.reasons.aussicht":        "View",
		"options.reasons.sicherheit":      "Safety",
		"options.reasons.sauberkeit":      "Cleanliness",
		"options.reasons.layout":          "Layout",
		"options.reasons.temperatur":      "Temperature",
		"options.group.staff":             "Staff",
		"options.group.studi":             "Student",
		"options.group.dozierend":         "Lecturer",
		"options.group.other":             "Other",
	},
}
