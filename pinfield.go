package pinfield

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Color represents an RGBA color with components in [0, 1].
type Color struct {
	R, G, B, A float64
}

// ParseHex parses a "#rrggbb" or "rrggbb" string into an opaque Color.
func ParseHex(s string) (Color, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return Color{}, fmt.Errorf("parse color %q: want 6 hex digits", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	return Color{
		R: float64((v>>16)&0xff) / 255,
		G: float64((v>>8)&0xff) / 255,
		B: float64(v&0xff) / 255,
		A: 1,
	}, nil
}

func mustHex(s string) Color {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Hex returns the color as a lowercase "#rrggbb" string. Alpha is dropped.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", channel8(c.R), channel8(c.G), channel8(c.B))
}

// RGBA8 returns the color as 8-bit channels, for hosts that draw with image/color.
func (c Color) RGBA8() (r, g, b, a uint8) {
	return channel8(c.R), channel8(c.G), channel8(c.B), channel8(c.A)
}

// Scale multiplies the RGB channels by f, used for emissive glow.
func (c Color) Scale(f float64) Color {
	return Color{R: clamp01(c.R * f), G: clamp01(c.G * f), B: clamp01(c.B * f), A: c.A}
}

func channel8(v float64) uint8 {
	return uint8(math.Floor(clamp01(v)*255 + 0.5))
}

// Approval is the moderation flag on a pin.
type Approval int8

const (
	ApprovalRejected Approval = -1
	ApprovalPending  Approval = 0
	ApprovalApproved Approval = 1
)

func (a Approval) String() string {
	switch a {
	case ApprovalApproved:
		return "approved"
	case ApprovalRejected:
		return "rejected"
	}
	return "pending"
}

// Mode is the interaction mode of an Annotator.
type Mode uint8

const (
	ModeIdle            Mode = iota // browsing, clicks select pins
	ModePlacementArmed              // next floor click places a draft
	ModeFormOpen                    // form visible, scene clicks ignored
)

// String returns a short name for the mode.
func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModePlacementArmed:
		return "placement-armed"
	case ModeFormOpen:
		return "form-open"
	}
	return fmt.Sprintf("Mode(%d)", m)
}

// FormMode selects between authoring a new pin and inspecting an existing one.
type FormMode uint8

const (
	FormCreate FormMode = iota
	FormView
)

// String returns "create" or "view".
func (m FormMode) String() string {
	if m == FormView {
		return "view"
	}
	return "create"
}

// PointerType identifies the device behind a pointer event.
type PointerType uint8

const (
	PointerMouse PointerType = iota
	PointerTouch
	PointerPen
)

// MouseButton identifies a mouse button. Touch and pen contacts report MouseButtonLeft.
type MouseButton uint8

const (
	MouseButtonLeft MouseButton = iota
	MouseButtonRight
	MouseButtonMiddle
)

// Key identifies the keyboard keys the annotator reacts to.
type Key uint8

const (
	KeyEscape Key = iota
)

// Cursor is the cursor shape the host should show over the scene.
type Cursor uint8

const (
	CursorDefault Cursor = iota
	CursorPointer
)

// EventType identifies the kind of annotation event.
type EventType uint8

const (
	EventPinClicked EventType = iota
	EventFloorClicked
	EventDraftPlaced
	EventDraftDiscarded
	EventSubmitted
	EventSubmitFailed
	EventPinsLoaded
	EventModeChanged
)

// String returns a short name for the event type.
func (e EventType) String() string {
	switch e {
	case EventPinClicked:
		return "pin-clicked"
	case EventFloorClicked:
		return "floor-clicked"
	case EventDraftPlaced:
		return "draft-placed"
	case EventDraftDiscarded:
		return "draft-discarded"
	case EventSubmitted:
		return "submitted"
	case EventSubmitFailed:
		return "submit-failed"
	case EventPinsLoaded:
		return "pins-loaded"
	case EventModeChanged:
		return "mode-changed"
	}
	return fmt.Sprintf("EventType(%d)", e)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// roundHalfUp rounds halves toward positive infinity, so -2.5 becomes -2.
// math.Round would give -3.
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}
