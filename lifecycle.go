package pinfield

import "fmt"

// DraftState is the lifecycle stage of the unsent draft pin.
type DraftState uint8

const (
	NoDraft DraftState = iota
	DraftPlaced
	DraftSubmitting
	DraftConfirmed
)

// String returns a short name for the state.
func (s DraftState) String() string {
	switch s {
	case NoDraft:
		return "none"
	case DraftPlaced:
		return "placed"
	case DraftSubmitting:
		return "submitting"
	case DraftConfirmed:
		return "confirmed"
	}
	return fmt.Sprintf("DraftState(%d)", s)
}

// draftTransitions lists the allowed moves between draft states.
var draftTransitions = map[DraftState][]DraftState{
	NoDraft:         {DraftPlaced},
	DraftPlaced:     {DraftPlaced, DraftSubmitting, NoDraft},
	DraftSubmitting: {DraftPlaced, DraftConfirmed, NoDraft},
	DraftConfirmed:  {NoDraft},
}

func canTransition(from, to DraftState) bool {
	for _, s := range draftTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// draftSlot owns at most one draft pin. Each placement gets a fresh token
// so a late submit result can tell whether its draft is still the current one.
type draftSlot struct {
	pin   Pin
	state DraftState
	token uint64
}

func (d *draftSlot) move(to DraftState) error {
	if !canTransition(d.state, to) {
		return fmt.Errorf("draft %s -> %s: invalid transition", d.state, to)
	}
	d.state = to
	return nil
}

// place installs p as the draft, replacing an unsent one. It reports
// whether a previous draft was discarded.
func (d *draftSlot) place(p Pin) (replaced bool, err error) {
	if d.state == DraftSubmitting {
		return false, ErrSubmitInFlight
	}
	replaced = d.state == DraftPlaced
	if err := d.move(DraftPlaced); err != nil {
		return false, err
	}
	d.pin = p
	d.token++
	return replaced, nil
}

// discard drops the draft in any state. It reports whether there was one.
func (d *draftSlot) discard() bool {
	if d.state == NoDraft {
		return false
	}
	d.state = NoDraft
	d.pin = Pin{}
	return true
}

// beginSubmit moves a placed draft to submitting and returns its token.
func (d *draftSlot) beginSubmit() (uint64, error) {
	switch d.state {
	case NoDraft, DraftConfirmed:
		return 0, ErrNoDraft
	case DraftSubmitting:
		return 0, ErrSubmitInFlight
	}
	if err := d.move(DraftSubmitting); err != nil {
		return 0, err
	}
	return d.token, nil
}

// fail returns a submitting draft to placed. Stale tokens are ignored.
func (d *draftSlot) fail(token uint64) bool {
	if d.state != DraftSubmitting || d.token != token {
		return false
	}
	return d.move(DraftPlaced) == nil
}

// confirm passes a submitting draft through confirmed and clears the slot.
// Stale tokens are ignored.
func (d *draftSlot) confirm(token uint64) bool {
	if d.state != DraftSubmitting || d.token != token {
		return false
	}
	if err := d.move(DraftConfirmed); err != nil {
		return false
	}
	d.pin = Pin{}
	return d.move(NoDraft) == nil
}

func (d *draftSlot) current() (Pin, bool) {
	if d.state == NoDraft {
		return Pin{}, false
	}
	return d.pin, true
}
