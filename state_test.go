package pinfield

import "testing"

func TestStateMergeConfirmed(t *testing.T) {
	s := NewState(0)
	s.AddLocal(testPin("7", 0, 0, 0))
	s.AddLocal(testPin("8", 0, 1, 0))
	if ids := pinIDs(s.LocalPins); ids != "8,7" {
		t.Fatalf("local pins = %s, want newest first", ids)
	}

	s.MergeConfirmed([]Pin{testPin("1", 0, 2, 0), testPin("7", 0, 0, 0)})
	if ids := pinIDs(s.LocalPins); ids != "8" {
		t.Errorf("local pins after merge = %s, want 8", ids)
	}
	if !s.IsLocal("8") || s.IsLocal("7") {
		t.Error("IsLocal out of sync with LocalPins")
	}
	if ids := pinIDs(s.VisiblePins()); ids != "1,7,8" {
		t.Errorf("visible = %s, want confirmed then local", ids)
	}
}

func TestStateAddLocalReplaces(t *testing.T) {
	s := NewState(0)
	s.AddLocal(testPin("7", 0, 0, 0))
	updated := testPin("7", 0, 3, 0)
	s.AddLocal(updated)
	if len(s.LocalPins) != 1 || s.LocalPins[0].Position.X != 3 {
		t.Errorf("LocalPins = %+v", s.LocalPins)
	}
}

func TestStateVisiblePinsFiltersFloor(t *testing.T) {
	s := NewState(1)
	s.Pins = []Pin{testPin("a", 0, 0, 0), testPin("b", 1, 0, 0)}
	s.AddLocal(testPin("c", 2, 0, 0))
	if ids := pinIDs(s.VisiblePins()); ids != "b" {
		t.Errorf("visible on floor 1 = %s, want b", ids)
	}
	if _, ok := s.FindPin("c"); !ok {
		t.Error("FindPin should see local pins on other floors")
	}
}

func TestStateVisiblePinsHidesRejected(t *testing.T) {
	s := NewState(0)
	rejected := testPin("r", 0, 0, 0)
	rejected.Approved = ApprovalRejected
	s.Pins = []Pin{testPin("a", 0, 0, 0), rejected}
	if ids := pinIDs(s.VisiblePins()); ids != "a" {
		t.Errorf("visible = %s, want a", ids)
	}
	if got := rejected.Approved.String(); got != "rejected" {
		t.Errorf("String = %q", got)
	}
}

func TestStateOptionLabel(t *testing.T) {
	s := NewState(0)
	s.SetQuestionnaire(FallbackQuestions(NewCatalog("en")))
	if got := s.OptionLabel("reasons", "ruhe"); got != "Quiet" {
		t.Errorf("OptionLabel = %q, want Quiet", got)
	}
	if got := s.OptionLabel("reasons", "unknown"); got != "unknown" {
		t.Errorf("unknown option = %q, want key", got)
	}
	if got := s.OptionLabel("missing", "x"); got != "x" {
		t.Errorf("unknown question = %q, want key", got)
	}
}

func TestStateSetQuestionnaireSortsAndColors(t *testing.T) {
	s := NewState(0)
	note := Question{Key: "note", Kind: KindText, Sort: 1, Config: TextConfig{Rows: 3}}
	level := sliderQuestion("level", 0, 1, 0.01)
	level.Sort = 5
	s.SetQuestionnaire([]Question{level, note})

	qs := s.Questions()
	if qs[0].Key != "note" || qs[1].Key != "level" {
		t.Errorf("questions not sorted: %s, %s", qs[0].Key, qs[1].Key)
	}
	if q := s.ActiveColorQuestion(); q == nil || q.Key != "level" {
		t.Errorf("active color question = %v, want level", q)
	}

	s.SetQuestionnaire([]Question{note})
	if q := s.ActiveColorQuestion(); q != nil {
		t.Errorf("color question %q survived a schema without sliders", q.Key)
	}
}
