package pinfield

// State is the shared annotation state: the pin collections, the
// questionnaire, the active floor and the color-question selection. It is
// owned by a single Annotator and only touched from its Update goroutine.
type State struct {
	// Pins holds the last confirmed list from the backend.
	Pins []Pin
	// LocalPins holds pins this session saved that the backend has not yet
	// listed back, newest first.
	LocalPins []Pin

	ActiveFloor int
	Color       ColorSelection

	questions []Question
	options   map[string][]Option
}

// NewState returns an empty state focused on activeFloor.
func NewState(activeFloor int) *State {
	return &State{
		ActiveFloor: activeFloor,
		options:     make(map[string][]Option),
	}
}

// Questions returns the current questionnaire, sorted.
func (s *State) Questions() []Question {
	return s.questions
}

// Question looks up a question by key.
func (s *State) Question(key string) (Question, bool) {
	for _, q := range s.questions {
		if q.Key == key {
			return q, true
		}
	}
	return Question{}, false
}

// SetQuestionnaire replaces the questionnaire, rebuilds the option index and
// refreshes the color selection.
func (s *State) SetQuestionnaire(qs []Question) {
	s.questions = SortQuestions(qs)
	s.options = make(map[string][]Option, len(s.questions))
	for _, q := range s.questions {
		if len(q.Options) > 0 {
			s.options[q.Key] = q.Options
		}
	}
	s.Color.Refresh(s.questions)
}

// OptionLabel returns the label of an option, or the option key itself when
// the question or option is unknown.
func (s *State) OptionLabel(questionKey, optionKey string) string {
	for _, o := range s.options[questionKey] {
		if o.Key == optionKey && o.Label != "" {
			return o.Label
		}
	}
	return optionKey
}

// ActiveColorQuestion returns the question currently driving pin color.
func (s *State) ActiveColorQuestion() *Question {
	return s.Color.Active(s.questions)
}

// MergeConfirmed replaces the confirmed list and drops every local pin whose
// id the backend now reports.
func (s *State) MergeConfirmed(pins []Pin) {
	s.Pins = pins
	confirmed := make(map[PinID]struct{}, len(pins))
	for _, p := range pins {
		confirmed[p.ID] = struct{}{}
	}
	kept := s.LocalPins[:0]
	for _, p := range s.LocalPins {
		if _, ok := confirmed[p.ID]; !ok {
			kept = append(kept, p)
		}
	}
	for i := len(kept); i < len(s.LocalPins); i++ {
		s.LocalPins[i] = Pin{}
	}
	s.LocalPins = kept
}

// AddLocal prepends a saved-but-unlisted pin. An existing local pin with the
// same id is replaced.
func (s *State) AddLocal(p Pin) {
	out := make([]Pin, 0, len(s.LocalPins)+1)
	out = append(out, p)
	for _, lp := range s.LocalPins {
		if lp.ID != p.ID {
			out = append(out, lp)
		}
	}
	s.LocalPins = out
}

// IsLocal reports whether id belongs to a local pin.
func (s *State) IsLocal(id PinID) bool {
	for _, p := range s.LocalPins {
		if p.ID == id {
			return true
		}
	}
	return false
}

// VisiblePins returns confirmed then local pins on the active floor.
// Rejected pins are never shown.
func (s *State) VisiblePins() []Pin {
	var out []Pin
	for _, p := range s.Pins {
		if p.Floor == s.ActiveFloor && p.Approved != ApprovalRejected {
			out = append(out, p)
		}
	}
	for _, p := range s.LocalPins {
		if p.Floor == s.ActiveFloor && p.Approved != ApprovalRejected {
			out = append(out, p)
		}
	}
	return out
}

// FindPin looks up a confirmed or local pin by id.
func (s *State) FindPin(id PinID) (Pin, bool) {
	for _, p := range s.Pins {
		if p.ID == id {
			return p, true
		}
	}
	for _, p := range s.LocalPins {
		if p.ID == id {
			return p, true
		}
	}
	return Pin{}, false
}
